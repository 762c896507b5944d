// Package health implements the pure health-score engine: time-based decay,
// interaction boosts, and status classification. Nothing here touches a clock
// or a database — callers pass "now" in, which keeps every function
// deterministic under test.
package health

import (
	"math"
	"time"
)

// Status is the discrete classification of a friend's health.
type Status string

const (
	StatusThriving Status = "thriving"
	StatusOkay     Status = "okay"
	StatusFading   Status = "fading"
	StatusCritical Status = "critical"
	StatusGhost    Status = "ghost"
)

// Rank orders statuses most-in-need-of-attention first:
// ghost, critical, fading, okay, thriving.
func (s Status) Rank() int {
	switch s {
	case StatusGhost:
		return 0
	case StatusCritical:
		return 1
	case StatusFading:
		return 2
	case StatusOkay:
		return 3
	default:
		return 4
	}
}

// Emoji returns the display glyph for a status.
func (s Status) Emoji() string {
	switch s {
	case StatusThriving:
		return "💚"
	case StatusOkay:
		return "💛"
	case StatusFading:
		return "🧡"
	case StatusCritical:
		return "💔"
	default:
		return "👻"
	}
}

// InteractionType enumerates the kinds of contact that can be logged.
type InteractionType string

const (
	TypeHangout InteractionType = "hangout"
	TypeCall    InteractionType = "call"
	TypeText    InteractionType = "text"
	TypeSocial  InteractionType = "social"
)

// Valid reports whether t is a known interaction type.
func (t InteractionType) Valid() bool {
	switch t {
	case TypeHangout, TypeCall, TypeText, TypeSocial:
		return true
	}
	return false
}

// Label returns the human-readable name of an interaction type.
func (t InteractionType) Label() string {
	switch t {
	case TypeHangout:
		return "Hangout in person"
	case TypeCall:
		return "Phone/video call"
	case TypeText:
		return "Text conversation"
	case TypeSocial:
		return "Social media like/comment"
	}
	return string(t)
}

// Types lists all interaction types, richest contact first.
func Types() []InteractionType {
	return []InteractionType{TypeHangout, TypeCall, TypeText, TypeSocial}
}

// Tuning holds the balance knobs for the health engine. It is passed
// explicitly rather than read from globals so tests can vary it.
type Tuning struct {
	// DecayPerDay is how many points a score loses per calendar day
	// without contact.
	DecayPerDay float64
	// Points maps each interaction type to its boost amount.
	Points map[InteractionType]float64
	// GhostAfterDays is the contactless-day threshold for ghost status.
	GhostAfterDays int
	// AssumedGapDays is the backdate applied when a friend is created
	// without a remembered last-contact date.
	AssumedGapDays int
	// Location anchors calendar-day boundaries for elapsed-day math.
	Location *time.Location
}

// DefaultTuning returns the production balance values.
func DefaultTuning() Tuning {
	return Tuning{
		DecayPerDay: 1.5,
		Points: map[InteractionType]float64{
			TypeHangout: 40,
			TypeCall:    35,
			TypeText:    25,
			TypeSocial:  5,
		},
		GhostAfterDays: 30,
		AssumedGapDays: 14,
		Location:       time.UTC,
	}
}

// PointsFor returns the boost amount for an interaction type.
func (tn Tuning) PointsFor(t InteractionType) float64 {
	return tn.Points[t]
}

func (tn Tuning) location() *time.Location {
	if tn.Location != nil {
		return tn.Location
	}
	return time.UTC
}

// Clamp bounds a score to the [0, 100] domain.
func Clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// DaysBetween returns the number of whole calendar days from from to to,
// midnight to midnight in the tuning's location. Two timestamps on the same
// calendar day yield 0 regardless of time of day. Negative results (to
// before from) are clamped to 0 so clock skew never produces negative decay.
func (tn Tuning) DaysBetween(from, to time.Time) int {
	loc := tn.location()
	fromDay := startOfDay(from.In(loc))
	toDay := startOfDay(to.In(loc))
	// Round rather than truncate so DST-shortened days still count as one.
	days := int(math.Round(toDay.Sub(fromDay).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Decay returns the score after elapsedDays of decay. A no-op for
// elapsedDays <= 0.
func (tn Tuning) Decay(score float64, elapsedDays int) float64 {
	if elapsedDays <= 0 {
		return Clamp(score)
	}
	return Clamp(score - float64(elapsedDays)*tn.DecayPerDay)
}

// Boost returns the score after logging an interaction of the given type.
func (tn Tuning) Boost(score float64, t InteractionType) float64 {
	return Clamp(score + tn.PointsFor(t))
}

// StartingScore derives a new friend's initial score by decaying a full 100
// baseline over the given contactless gap, with the same rate ongoing decay
// uses.
func (tn Tuning) StartingScore(daysSinceContact int) float64 {
	return tn.Decay(100, daysSinceContact)
}

// StatusFor classifies a score. The ghost check takes precedence over the
// score bands: a friend is a ghost only when the score has bottomed out AND
// contact has lapsed past the ghost threshold. Safe to call for what-if
// previews; it never mutates anything.
func (tn Tuning) StatusFor(score float64, daysSinceContact int) Status {
	if score <= 0 && daysSinceContact >= tn.GhostAfterDays {
		return StatusGhost
	}
	switch {
	case score >= 75:
		return StatusThriving
	case score >= 50:
		return StatusOkay
	case score >= 25:
		return StatusFading
	default:
		return StatusCritical
	}
}
