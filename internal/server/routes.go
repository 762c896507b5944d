package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/avlund/tend/internal/engine"
	"github.com/avlund/tend/internal/friend"
	"github.com/avlund/tend/internal/health"
	"github.com/avlund/tend/internal/store"
)

// friendView is the JSON shape for a friend. Status, ghostliness, and recency
// are derived at render time, never read from storage.
type friendView struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	HealthScore      float64           `json:"health_score"`
	Status           health.Status     `json:"status"`
	IsGhost          bool              `json:"is_ghost"`
	DaysSinceContact int               `json:"days_since_contact"`
	LastContact      time.Time         `json:"last_contact"`
	Notes            string            `json:"notes,omitempty"`
	Phone            string            `json:"phone,omitempty"`
	Birthday         *time.Time        `json:"birthday,omitempty"`
	BirthdayToday    bool              `json:"birthday_today,omitempty"`
	BirthdaySoon     bool              `json:"birthday_soon,omitempty"`
	Categories       []categoryView    `json:"categories"`
	Interactions     []interactionView `json:"interactions,omitempty"`
}

type categoryView struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Icon      string `json:"icon"`
	ColorHex  string `json:"color_hex"`
	IsDefault bool   `json:"is_default"`
	SortOrder int    `json:"sort_order"`
}

type interactionView struct {
	ID   int64                  `json:"id"`
	Type health.InteractionType `json:"type"`
	Note string                 `json:"note,omitempty"`
	Date time.Time              `json:"date"`
}

func (s *Server) friendView(f *friend.Friend, withLedger bool) friendView {
	now := s.engine.Now()
	tn := s.engine.Tuning

	v := friendView{
		ID:               f.ID,
		Name:             f.Name,
		HealthScore:      f.HealthScore,
		Status:           f.Status(now, tn),
		IsGhost:          f.IsGhost(now, tn),
		DaysSinceContact: f.DaysSinceContact(now, tn),
		LastContact:      f.LastContact,
		Notes:            f.Notes,
		Phone:            f.Phone,
		Birthday:         f.Birthday,
		BirthdayToday:    f.BirthdayToday(now, tn),
		BirthdaySoon:     f.BirthdaySoon(now, tn),
		Categories:       []categoryView{},
	}
	for _, c := range f.Categories {
		v.Categories = append(v.Categories, categoryView{
			ID: c.ID, Name: c.Name, Icon: c.Icon, ColorHex: c.ColorHex,
			IsDefault: c.IsDefault, SortOrder: c.SortOrder,
		})
	}
	if withLedger {
		v.Interactions = []interactionView{}
		for _, in := range f.SortedInteractions() {
			v.Interactions = append(v.Interactions, interactionView{
				ID: in.ID, Type: in.Type, Note: in.Note, Date: in.Date,
			})
		}
	}
	return v
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to status codes: missing rows to 404,
// validation failures to 400, the rest to 500.
func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	if errors.Is(err, store.ErrNotFound) {
		code = http.StatusNotFound
	} else if errors.Is(err, friend.ErrEmptyName) {
		code = http.StatusBadRequest
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func (s *Server) handleListFriends(w http.ResponseWriter, r *http.Request) {
	friends, err := s.db.ListFriends()
	if err != nil {
		writeError(w, err)
		return
	}

	friend.SortByNeed(friends, s.engine.Now(), s.engine.Tuning)

	views := []friendView{}
	for i := range friends {
		views = append(views, s.friendView(&friends[i], false))
	}
	writeJSON(w, http.StatusOK, map[string]any{"friends": views})
}

func (s *Server) handleCreateFriend(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string     `json:"name"`
		LastContact *time.Time `json:"last_contact"`
		Notes       string     `json:"notes"`
		Phone       string     `json:"phone"`
		Birthday    *time.Time `json:"birthday"`
		CategoryIDs []int64    `json:"category_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}

	f, err := s.engine.CreateFriend(engine.CreateParams{
		Name:        req.Name,
		LastContact: req.LastContact,
		Notes:       req.Notes,
		Phone:       req.Phone,
		Birthday:    req.Birthday,
		CategoryIDs: req.CategoryIDs,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.friendView(f, true))
}

func (s *Server) handleGetFriend(w http.ResponseWriter, r *http.Request) {
	f, err := s.db.GetFriend(chi.URLParam(r, "friendID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.friendView(f, true))
}

func (s *Server) handleEditFriend(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          *string    `json:"name"`
		Notes         *string    `json:"notes"`
		Phone         *string    `json:"phone"`
		Birthday      *time.Time `json:"birthday"`
		ClearBirthday bool       `json:"clear_birthday"`
		CategoryIDs   *[]int64   `json:"category_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}

	f, err := s.engine.EditFriend(chi.URLParam(r, "friendID"), engine.ProfileEdit{
		Name:          req.Name,
		Notes:         req.Notes,
		Phone:         req.Phone,
		Birthday:      req.Birthday,
		ClearBirthday: req.ClearBirthday,
		CategoryIDs:   req.CategoryIDs,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.friendView(f, true))
}

func (s *Server) handleDeleteFriend(w http.ResponseWriter, r *http.Request) {
	if err := s.db.DeleteFriend(chi.URLParam(r, "friendID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleSetCategories(w http.ResponseWriter, r *http.Request) {
	friendID := chi.URLParam(r, "friendID")

	var req struct {
		CategoryIDs []int64 `json:"category_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}

	if _, err := s.db.GetFriend(friendID); err != nil {
		writeError(w, err)
		return
	}
	if err := s.db.SetCategories(friendID, req.CategoryIDs); err != nil {
		writeError(w, err)
		return
	}

	f, err := s.db.GetFriend(friendID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.friendView(f, false))
}

func (s *Server) handleLogInteraction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type health.InteractionType `json:"type"`
		Note string                 `json:"note"`
		Date *time.Time             `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if !req.Type.Valid() {
		http.Error(w, `{"error":"unknown interaction type"}`, http.StatusBadRequest)
		return
	}

	f, res, err := s.engine.LogInteraction(chi.URLParam(r, "friendID"), req.Type, req.Note, req.Date)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"friend":      s.friendView(f, false),
		"score":       res.Score,
		"status":      res.Status,
		"was_ghost":   res.WasGhost,
		"is_ghost":    res.IsGhost,
		"resurrected": res.Resurrected(),
	})
}

func (s *Server) handleListInteractions(w http.ResponseWriter, r *http.Request) {
	friendID := chi.URLParam(r, "friendID")
	if _, err := s.db.GetFriend(friendID); err != nil {
		writeError(w, err)
		return
	}

	ledger, err := s.db.ListInteractions(friendID)
	if err != nil {
		writeError(w, err)
		return
	}

	views := []interactionView{}
	for _, in := range ledger {
		views = append(views, interactionView{ID: in.ID, Type: in.Type, Note: in.Note, Date: in.Date})
	}
	writeJSON(w, http.StatusOK, map[string]any{"interactions": views})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	typ := health.InteractionType(r.URL.Query().Get("type"))
	status, score, err := s.engine.Preview(chi.URLParam(r, "friendID"), typ)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, err)
		} else {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"score": score, "status": status})
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.db.ListCategories()
	if err != nil {
		writeError(w, err)
		return
	}
	views := []categoryView{}
	for _, c := range cats {
		views = append(views, categoryView{
			ID: c.ID, Name: c.Name, Icon: c.Icon, ColorHex: c.ColorHex,
			IsDefault: c.IsDefault, SortOrder: c.SortOrder,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": views})
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string `json:"name"`
		Icon      string `json:"icon"`
		ColorHex  string `json:"color_hex"`
		SortOrder int    `json:"sort_order"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, `{"error":"name required"}`, http.StatusBadRequest)
		return
	}
	if req.Icon == "" {
		req.Icon = "tag"
	}
	if req.ColorHex == "" {
		req.ColorHex = "808080"
	}

	c := &friend.Category{Name: req.Name, Icon: req.Icon, ColorHex: req.ColorHex, SortOrder: req.SortOrder}
	if err := s.db.CreateCategory(c); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, categoryView{
		ID: c.ID, Name: c.Name, Icon: c.Icon, ColorHex: c.ColorHex,
		IsDefault: c.IsDefault, SortOrder: c.SortOrder,
	})
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "categoryID"), 10, 64)
	if err != nil {
		http.Error(w, `{"error":"invalid category id"}`, http.StatusBadRequest)
		return
	}
	if err := s.db.DeleteCategory(id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleDecay(w http.ResponseWriter, r *http.Request) {
	updated, err := s.engine.DecayAll()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"updated": updated})
}

func (s *Server) handleBirthdays(w http.ResponseWriter, r *http.Request) {
	friends, err := s.db.ListFriends()
	if err != nil {
		writeError(w, err)
		return
	}

	now := s.engine.Now()
	tn := s.engine.Tuning

	type birthdayView struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		DaysUntil int    `json:"days_until"`
		Today     bool   `json:"today"`
	}
	upcoming := []birthdayView{}
	for i := range friends {
		d, ok := friends[i].DaysUntilBirthday(now, tn)
		if !ok || d > 7 {
			continue
		}
		upcoming = append(upcoming, birthdayView{
			ID: friends[i].ID, Name: friends[i].Name, DaysUntil: d, Today: d == 0,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"birthdays": upcoming})
}
