// Package engine orchestrates the aggregate, the health tuning, and the
// store: the activation decay pass, friend creation with derived starting
// scores, and interaction logging. All mutations flow through here so the
// score bookkeeping stays consistent.
package engine

import (
	"fmt"
	"log"
	"time"

	"github.com/avlund/tend/internal/friend"
	"github.com/avlund/tend/internal/health"
	"github.com/avlund/tend/internal/store"
)

// Engine ties the store to the health tuning. The clock is a field so tests
// can pin time; production uses time.Now.
type Engine struct {
	DB     *store.DB
	Tuning health.Tuning
	Now    func() time.Time

	stopCh chan struct{}
}

// New creates an Engine with the given store and tuning.
func New(db *store.DB, tn health.Tuning) *Engine {
	return &Engine{
		DB:     db,
		Tuning: tn,
		Now:    time.Now,
		stopCh: make(chan struct{}),
	}
}

// Start seeds default categories, runs a decay pass immediately, and then
// repeats the pass daily. Every activation must decay before any score is
// displayed; the pass is idempotent within a day so overlap is harmless.
func (e *Engine) Start() {
	if err := e.DB.SeedDefaultCategories(); err != nil {
		log.Printf("seed categories: %v", err)
	}

	if updated, err := e.DecayAll(); err != nil {
		log.Printf("decay error: %v", err)
	} else if updated > 0 {
		log.Printf("decay: updated %d friends", updated)
	}

	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if updated, err := e.DecayAll(); err != nil {
					log.Printf("decay error: %v", err)
				} else if updated > 0 {
					log.Printf("decay: updated %d friends", updated)
				}
			case <-e.stopCh:
				return
			}
		}
	}()
}

// Stop shuts down the engine's background goroutine.
func (e *Engine) Stop() {
	close(e.stopCh)
}

// DecayAll applies time-based decay to every stored friend and persists the
// rows that changed. Returns how many were updated.
func (e *Engine) DecayAll() (int, error) {
	friends, err := e.DB.ListFriends()
	if err != nil {
		return 0, fmt.Errorf("list friends: %w", err)
	}

	now := e.Now()
	updated := 0
	for i := range friends {
		if !friends[i].ApplyDecay(now, e.Tuning) {
			continue
		}
		if err := e.DB.SaveHealth(&friends[i]); err != nil {
			return updated, fmt.Errorf("save %s: %w", friends[i].ID, err)
		}
		updated++
	}
	return updated, nil
}

// CreateParams carries the fields for a new friend. A nil LastContact means
// the caller doesn't remember and gets the assumed gap.
type CreateParams struct {
	Name        string
	LastContact *time.Time
	Notes       string
	Phone       string
	Birthday    *time.Time
	Photo       []byte
	CategoryIDs []int64
}

// CreateFriend builds the aggregate, derives its starting score, and
// persists it with any category links.
func (e *Engine) CreateFriend(p CreateParams) (*friend.Friend, error) {
	now := e.Now()
	lastContact := friend.AssumedLastContact(now, e.Tuning)
	if p.LastContact != nil {
		lastContact = *p.LastContact
	}

	f, err := friend.New(p.Name, lastContact, now, e.Tuning)
	if err != nil {
		return nil, err
	}
	f.Notes = p.Notes
	f.Phone = p.Phone
	f.Birthday = p.Birthday
	f.Photo = p.Photo

	if err := e.DB.CreateFriend(f); err != nil {
		return nil, err
	}
	if len(p.CategoryIDs) > 0 {
		if err := e.DB.SetCategories(f.ID, p.CategoryIDs); err != nil {
			return nil, err
		}
	}
	return e.DB.GetFriend(f.ID)
}

// LogInteraction loads the friend, runs the boost through the aggregate, and
// persists both the ledger row and the updated bookkeeping. A nil date means
// "now". The LogResult carries the ghost transition for resurrection effects.
func (e *Engine) LogInteraction(friendID string, typ health.InteractionType, note string, date *time.Time) (*friend.Friend, friend.LogResult, error) {
	f, err := e.DB.GetFriend(friendID)
	if err != nil {
		return nil, friend.LogResult{}, err
	}

	now := e.Now()
	when := now
	if date != nil {
		when = *date
	}

	res, err := f.LogInteraction(typ, note, when, now, e.Tuning)
	if err != nil {
		return nil, friend.LogResult{}, err
	}

	entry := &f.Interactions[len(f.Interactions)-1]
	if err := e.DB.AddInteraction(entry); err != nil {
		return nil, friend.LogResult{}, err
	}
	if err := e.DB.SaveHealth(f); err != nil {
		return nil, friend.LogResult{}, err
	}
	return f, res, nil
}

// ProfileEdit carries optional field updates. Nil pointers leave the field
// alone; ClearBirthday removes a set birthday.
type ProfileEdit struct {
	Name          *string
	Notes         *string
	Phone         *string
	Birthday      *time.Time
	ClearBirthday bool
	Photo         []byte
	CategoryIDs   *[]int64
}

// EditFriend applies plain field updates. No health math happens here.
func (e *Engine) EditFriend(friendID string, edit ProfileEdit) (*friend.Friend, error) {
	f, err := e.DB.GetFriend(friendID)
	if err != nil {
		return nil, err
	}

	if edit.Name != nil {
		if err := f.Rename(*edit.Name); err != nil {
			return nil, err
		}
	}
	if edit.Notes != nil {
		f.Notes = *edit.Notes
	}
	if edit.Phone != nil {
		f.Phone = *edit.Phone
	}
	if edit.Birthday != nil {
		f.Birthday = edit.Birthday
	}
	if edit.ClearBirthday {
		f.Birthday = nil
	}
	if edit.Photo != nil {
		f.Photo = edit.Photo
	}
	f.UpdatedAt = e.Now()

	if err := e.DB.UpdateProfile(f); err != nil {
		return nil, err
	}
	if edit.CategoryIDs != nil {
		if err := e.DB.SetCategories(f.ID, *edit.CategoryIDs); err != nil {
			return nil, err
		}
	}
	return e.DB.GetFriend(f.ID)
}

// Preview answers "if I log this interaction now, what happens?" without
// mutating anything.
func (e *Engine) Preview(friendID string, typ health.InteractionType) (health.Status, float64, error) {
	if !typ.Valid() {
		return "", 0, fmt.Errorf("unknown interaction type %q", typ)
	}
	f, err := e.DB.GetFriend(friendID)
	if err != nil {
		return "", 0, err
	}
	score := e.Tuning.Boost(f.HealthScore, typ)
	// A just-logged interaction means zero days since contact.
	return e.Tuning.StatusFor(score, 0), score, nil
}
