package server

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestCreateFriend(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, "POST", "/api/friends", `{"name":"Ada","notes":"violin"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}

	resp := decode(t, w)
	if resp["name"] != "Ada" {
		t.Errorf("name = %v, want Ada", resp["name"])
	}
	// Assumed 14-day gap at rate 5 derives a starting score of 30.
	if resp["health_score"] != float64(30) {
		t.Errorf("health_score = %v, want 30", resp["health_score"])
	}
	if resp["status"] != "fading" {
		t.Errorf("status = %v, want fading", resp["status"])
	}
}

func TestCreateFriendRememberedContact(t *testing.T) {
	srv := testServer(t)

	body := `{"name":"Ada","last_contact":"2025-03-08T12:00:00Z"}`
	w := do(t, srv, "POST", "/api/friends", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	resp := decode(t, w)
	if resp["health_score"] != float64(90) {
		t.Errorf("health_score = %v, want 90 (2 days at rate 5)", resp["health_score"])
	}
}

func TestCreateFriendEmptyName(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, "POST", "/api/friends", `{"name":"   "}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestGetFriendNotFound(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, "GET", "/api/friends/missing", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestListFriendsSortedByNeed(t *testing.T) {
	srv := testServer(t)

	// Ada thriving (contact today), Bea fading (assumed gap).
	createFriend(t, srv, `{"name":"Ada","last_contact":"2025-03-10T09:00:00Z"}`)
	createFriend(t, srv, `{"name":"Bea"}`)

	w := do(t, srv, "GET", "/api/friends", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decode(t, w)
	friends := resp["friends"].([]any)
	if len(friends) != 2 {
		t.Fatalf("friends = %d, want 2", len(friends))
	}
	first := friends[0].(map[string]any)
	if first["name"] != "Bea" {
		t.Errorf("first = %v, want Bea (most in need sorts first)", first["name"])
	}
}

func TestEditFriend(t *testing.T) {
	srv := testServer(t)
	id := createFriend(t, srv, `{"name":"Ada"}`)

	w := do(t, srv, "PATCH", "/api/friends/"+id, `{"notes":"cellist","phone":"+1555"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	resp := decode(t, w)
	if resp["notes"] != "cellist" || resp["phone"] != "+1555" {
		t.Errorf("notes/phone = %v/%v", resp["notes"], resp["phone"])
	}
	// Edits never touch the score.
	if resp["health_score"] != float64(30) {
		t.Errorf("health_score = %v, want 30", resp["health_score"])
	}
}

func TestDeleteFriendCascades(t *testing.T) {
	srv := testServer(t)
	id := createFriend(t, srv, `{"name":"Ada"}`)

	do(t, srv, "POST", "/api/friends/"+id+"/interactions", `{"type":"call"}`)

	w := do(t, srv, "DELETE", "/api/friends/"+id, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	w = do(t, srv, "GET", "/api/friends/"+id, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
}

func TestLogInteraction(t *testing.T) {
	srv := testServer(t)
	id := createFriend(t, srv, `{"name":"Ada"}`) // 30 points

	w := do(t, srv, "POST", "/api/friends/"+id+"/interactions", `{"type":"hangout","note":"coffee"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	resp := decode(t, w)
	if resp["score"] != float64(70) {
		t.Errorf("score = %v, want 70", resp["score"])
	}
	if resp["resurrected"] != false {
		t.Errorf("resurrected = %v, want false", resp["resurrected"])
	}

	w = do(t, srv, "GET", "/api/friends/"+id+"/interactions", "")
	resp = decode(t, w)
	ledger := resp["interactions"].([]any)
	if len(ledger) != 1 {
		t.Fatalf("ledger = %d rows, want 1", len(ledger))
	}
	entry := ledger[0].(map[string]any)
	if entry["type"] != "hangout" || entry["note"] != "coffee" {
		t.Errorf("entry = %v", entry)
	}
}

func TestLogInteractionUnknownType(t *testing.T) {
	srv := testServer(t)
	id := createFriend(t, srv, `{"name":"Ada"}`)

	w := do(t, srv, "POST", "/api/friends/"+id+"/interactions", `{"type":"telegraph"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestLogInteractionResurrects(t *testing.T) {
	srv := testServer(t)
	// 40 days without contact: score decays to 0 and the ghost threshold passes.
	id := createFriend(t, srv, `{"name":"Ada","last_contact":"2025-01-29T12:00:00Z"}`)

	w := do(t, srv, "GET", "/api/friends/"+id, "")
	if resp := decode(t, w); resp["is_ghost"] != true {
		t.Fatalf("is_ghost = %v, want true", resp["is_ghost"])
	}

	w = do(t, srv, "POST", "/api/friends/"+id+"/interactions", `{"type":"text"}`)
	resp := decode(t, w)
	if resp["was_ghost"] != true || resp["is_ghost"] != false || resp["resurrected"] != true {
		t.Errorf("transition = was %v / is %v / resurrected %v", resp["was_ghost"], resp["is_ghost"], resp["resurrected"])
	}
}

func TestPreview(t *testing.T) {
	srv := testServer(t)
	id := createFriend(t, srv, `{"name":"Ada"}`) // 30 points

	w := do(t, srv, "GET", "/api/friends/"+id+"/preview?type=hangout", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	resp := decode(t, w)
	if resp["score"] != float64(70) || resp["status"] != "okay" {
		t.Errorf("preview = %v/%v, want 70/okay", resp["score"], resp["status"])
	}

	// The friend is untouched.
	w = do(t, srv, "GET", "/api/friends/"+id, "")
	if resp := decode(t, w); resp["health_score"] != float64(30) {
		t.Errorf("health_score after preview = %v, want 30", resp["health_score"])
	}
}

func TestPreviewUnknownType(t *testing.T) {
	srv := testServer(t)
	id := createFriend(t, srv, `{"name":"Ada"}`)

	w := do(t, srv, "GET", "/api/friends/"+id+"/preview?type=nope", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestCategoriesLifecycle(t *testing.T) {
	srv := testServer(t)
	id := createFriend(t, srv, `{"name":"Ada"}`)

	w := do(t, srv, "POST", "/api/categories", `{"name":"Band","color_hex":"FF8800"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create category status = %d; body: %s", w.Code, w.Body.String())
	}
	catID := decode(t, w)["id"].(float64)

	w = do(t, srv, "PUT", "/api/friends/"+id+"/categories", fmt.Sprintf(`{"category_ids":[%d]}`, int64(catID)))
	if w.Code != http.StatusOK {
		t.Fatalf("set categories status = %d; body: %s", w.Code, w.Body.String())
	}
	resp := decode(t, w)
	if cats := resp["categories"].([]any); len(cats) != 1 {
		t.Errorf("categories = %d, want 1", len(cats))
	}

	// Deleting the category detaches the friend but never deletes them.
	w = do(t, srv, "DELETE", fmt.Sprintf("/api/categories/%d", int64(catID)), "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete category status = %d", w.Code)
	}

	w = do(t, srv, "GET", "/api/friends/"+id, "")
	if w.Code != http.StatusOK {
		t.Fatalf("friend gone after category delete: %d", w.Code)
	}
	if cats := decode(t, w)["categories"].([]any); len(cats) != 0 {
		t.Errorf("categories after delete = %d, want 0", len(cats))
	}
}

func TestDecayEndpoint(t *testing.T) {
	srv := testServer(t)
	// Contact today: 100 points, decay clock starts at baseTime.
	id := createFriend(t, srv, `{"name":"Ada","last_contact":"2025-03-10T12:00:00Z"}`)

	srv.engine.Now = func() time.Time { return baseTime.AddDate(0, 0, 2) }

	w := do(t, srv, "POST", "/api/decay", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	if resp := decode(t, w); resp["updated"] != float64(1) {
		t.Errorf("updated = %v, want 1", resp["updated"])
	}

	w = do(t, srv, "GET", "/api/friends/"+id, "")
	if resp := decode(t, w); resp["health_score"] != float64(90) {
		t.Errorf("health_score = %v, want 90", resp["health_score"])
	}

	// Same-day second pass is a no-op.
	w = do(t, srv, "POST", "/api/decay", "")
	if resp := decode(t, w); resp["updated"] != float64(0) {
		t.Errorf("second pass updated = %v, want 0", resp["updated"])
	}
}

func TestBirthdaysEndpoint(t *testing.T) {
	srv := testServer(t)
	createFriend(t, srv, `{"name":"Ada","birthday":"1990-03-15T00:00:00Z"}`)
	createFriend(t, srv, `{"name":"Bea","birthday":"1988-09-01T00:00:00Z"}`)
	createFriend(t, srv, `{"name":"Cal"}`)

	w := do(t, srv, "GET", "/api/birthdays", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decode(t, w)
	upcoming := resp["birthdays"].([]any)
	if len(upcoming) != 1 {
		t.Fatalf("birthdays = %d, want 1 (only Ada is within a week)", len(upcoming))
	}
	entry := upcoming[0].(map[string]any)
	if entry["name"] != "Ada" || entry["days_until"] != float64(5) {
		t.Errorf("entry = %v, want Ada in 5 days", entry)
	}
}
