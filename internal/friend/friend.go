// Package friend holds the relationship aggregate: the Friend entity, its
// append-only interaction ledger, and the mutations that route every score
// change through the health engine.
package friend

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avlund/tend/internal/health"
)

// ErrEmptyName is returned when a friend is created or renamed with a blank name.
var ErrEmptyName = errors.New("friend name must not be empty")

// Friend is a tracked relationship. HealthScore, LastContact and LastDecay
// are the engine's bookkeeping; status is always derived from them, never
// stored.
type Friend struct {
	ID           string
	Name         string
	Photo        []byte
	HealthScore  float64
	LastContact  time.Time
	LastDecay    time.Time
	Notes        string
	Phone        string
	Birthday     *time.Time
	Categories   []Category
	Interactions []Interaction
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Interaction is one logged contact event. Rows are append-only; the ledger
// belongs to exactly one friend and is deleted with them.
type Interaction struct {
	ID        int64
	FriendID  string
	Type      health.InteractionType
	Note      string
	Date      time.Time
	CreatedAt time.Time
}

// LogResult reports the outcome of logging an interaction. WasGhost/IsGhost
// bracket the call so callers can react to a resurrection.
type LogResult struct {
	WasGhost bool
	IsGhost  bool
	Score    float64
	Status   health.Status
}

// Resurrected reports whether this log brought a ghost back.
func (r LogResult) Resurrected() bool {
	return r.WasGhost && !r.IsGhost
}

// AssumedLastContact returns the default last-contact date used when the
// caller does not remember one: AssumedGapDays before now.
func AssumedLastContact(now time.Time, tn health.Tuning) time.Time {
	return now.AddDate(0, 0, -tn.AssumedGapDays)
}

// New creates a friend whose starting score is derived by decaying a full
// baseline over the gap since lastContact, exactly as ongoing decay would
// have produced it. The decay clock starts at lastContact.
func New(name string, lastContact, now time.Time, tn health.Tuning) (*Friend, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	gap := tn.DaysBetween(lastContact, now)
	return &Friend{
		ID:          uuid.New().String(),
		Name:        name,
		HealthScore: tn.StartingScore(gap),
		LastContact: lastContact,
		LastDecay:   lastContact,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Rename updates the display name, rejecting blanks.
func (f *Friend) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	f.Name = name
	return nil
}

// DaysSinceContact returns whole calendar days since the last logged contact.
func (f *Friend) DaysSinceContact(now time.Time, tn health.Tuning) int {
	return tn.DaysBetween(f.LastContact, now)
}

// Status derives the current classification. Never cached.
func (f *Friend) Status(now time.Time, tn health.Tuning) health.Status {
	return tn.StatusFor(f.HealthScore, f.DaysSinceContact(now, tn))
}

// IsGhost reports whether the friend has ghosted: zero score and no contact
// past the configured threshold.
func (f *Friend) IsGhost(now time.Time, tn health.Tuning) bool {
	return f.Status(now, tn) == health.StatusGhost
}

// ApplyDecay decays the score by the calendar days elapsed since LastDecay.
// The decay stamp advances only when at least one day passed, so repeated
// same-day calls are no-ops and the pass is idempotent per day. Returns true
// when anything changed.
func (f *Friend) ApplyDecay(now time.Time, tn health.Tuning) bool {
	elapsed := tn.DaysBetween(f.LastDecay, now)
	if elapsed <= 0 {
		return false
	}
	f.HealthScore = tn.Decay(f.HealthScore, elapsed)
	f.LastDecay = now
	f.UpdatedAt = now
	return true
}

// LogInteraction appends a contact event to the ledger, boosts the score, and
// resets the contact clock to the interaction's date. The decay stamp is
// clamped to max(date, LastDecay): a backdated log counts as contact but
// cannot retroactively erase decay that already happened.
func (f *Friend) LogInteraction(typ health.InteractionType, note string, date, now time.Time, tn health.Tuning) (LogResult, error) {
	if !typ.Valid() {
		return LogResult{}, fmt.Errorf("unknown interaction type %q", typ)
	}

	wasGhost := f.IsGhost(now, tn)

	f.Interactions = append(f.Interactions, Interaction{
		FriendID:  f.ID,
		Type:      typ,
		Note:      note,
		Date:      date,
		CreatedAt: now,
	})
	f.HealthScore = tn.Boost(f.HealthScore, typ)
	f.LastContact = date
	if date.After(f.LastDecay) {
		f.LastDecay = date
	}
	f.UpdatedAt = now

	return LogResult{
		WasGhost: wasGhost,
		IsGhost:  f.IsGhost(now, tn),
		Score:    f.HealthScore,
		Status:   f.Status(now, tn),
	}, nil
}

// SortedInteractions returns the ledger newest-first. Sorting is a read-time
// concern; storage order stays insertion order.
func (f *Friend) SortedInteractions() []Interaction {
	out := make([]Interaction, len(f.Interactions))
	copy(out, f.Interactions)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// SortByNeed orders friends most-in-need-of-attention first: status rank,
// then lower score, then name for stability.
func SortByNeed(fs []Friend, now time.Time, tn health.Tuning) {
	sort.SliceStable(fs, func(i, j int) bool {
		ri, rj := fs[i].Status(now, tn).Rank(), fs[j].Status(now, tn).Rank()
		if ri != rj {
			return ri < rj
		}
		if fs[i].HealthScore != fs[j].HealthScore {
			return fs[i].HealthScore < fs[j].HealthScore
		}
		return fs[i].Name < fs[j].Name
	})
}

// Age returns the friend's age in whole years, or false if no birthday is set.
func (f *Friend) Age(now time.Time) (int, bool) {
	if f.Birthday == nil {
		return 0, false
	}
	b := *f.Birthday
	years := now.Year() - b.Year()
	anniversary := time.Date(now.Year(), b.Month(), b.Day(), 0, 0, 0, 0, now.Location())
	if now.Before(anniversary) {
		years--
	}
	if years < 0 {
		years = 0
	}
	return years, true
}

// DaysUntilBirthday returns days until the next birthday (0 = today), or
// false if no birthday is set.
func (f *Friend) DaysUntilBirthday(now time.Time, tn health.Tuning) (int, bool) {
	if f.Birthday == nil {
		return 0, false
	}
	b := *f.Birthday
	next := time.Date(now.Year(), b.Month(), b.Day(), 0, 0, 0, 0, now.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if next.Before(today) {
		next = time.Date(now.Year()+1, b.Month(), b.Day(), 0, 0, 0, 0, now.Location())
	}
	return tn.DaysBetween(today, next), true
}

// BirthdayToday reports whether today is the friend's birthday.
func (f *Friend) BirthdayToday(now time.Time, tn health.Tuning) bool {
	d, ok := f.DaysUntilBirthday(now, tn)
	return ok && d == 0
}

// BirthdaySoon reports whether the birthday falls within the next week.
func (f *Friend) BirthdaySoon(now time.Time, tn health.Tuning) bool {
	d, ok := f.DaysUntilBirthday(now, tn)
	return ok && d > 0 && d <= 7
}
