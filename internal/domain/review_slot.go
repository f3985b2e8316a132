package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SlotType sizes a review session: micro slots are short (~5 minutes) and
// cap the queue lower than standard slots (~15-30 minutes).
type SlotType string

// Supported slot types.
const (
	SlotTypeMicro    SlotType = "micro"
	SlotTypeStandard SlotType = "standard"
)

// Valid reports whether t is a supported slot type.
func (t SlotType) Valid() bool {
	return t == SlotTypeMicro || t == SlotTypeStandard
}

// ReviewSlot validation errors
var (
	ErrSlotIDEmpty        = errors.New("review slot ID cannot be empty")
	ErrSlotChildIDEmpty   = errors.New("review slot child ID cannot be empty")
	ErrInvalidDayOfWeek   = errors.New("day of week must be between 1 (Monday) and 7 (Sunday)")
	ErrInvalidSlotType    = errors.New("slot type must be micro or standard")
	ErrInvalidSlotWindow  = errors.New("slot end time must be after start time")
	ErrInvalidClockString = errors.New("clock time must be in HH:MM format")
)

// ReviewSlot is a recurring weekly time window in which a child may take
// review sessions. Start and end are minutes from midnight in the server's
// local week; DayOfWeek is ISO numbering, Monday=1 through Sunday=7.
type ReviewSlot struct {
	ID           uuid.UUID `json:"id"`
	ChildID      uuid.UUID `json:"child_id"`
	DayOfWeek    int       `json:"day_of_week"`
	StartMinutes int       `json:"start_minutes"`
	EndMinutes   int       `json:"end_minutes"`
	SlotType     SlotType  `json:"slot_type"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewReviewSlot creates a weekly review slot for a child.
// Returns an error if validation fails.
func NewReviewSlot(
	childID uuid.UUID,
	dayOfWeek, startMinutes, endMinutes int,
	slotType SlotType,
) (*ReviewSlot, error) {
	now := time.Now().UTC()
	slot := &ReviewSlot{
		ID:           uuid.New(),
		ChildID:      childID,
		DayOfWeek:    dayOfWeek,
		StartMinutes: startMinutes,
		EndMinutes:   endMinutes,
		SlotType:     slotType,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := slot.Validate(); err != nil {
		return nil, err
	}

	return slot, nil
}

// Validate checks if the ReviewSlot has valid data.
func (s *ReviewSlot) Validate() error {
	if s.ID == uuid.Nil {
		return ErrSlotIDEmpty
	}

	if s.ChildID == uuid.Nil {
		return ErrSlotChildIDEmpty
	}

	if s.DayOfWeek < 1 || s.DayOfWeek > 7 {
		return ErrInvalidDayOfWeek
	}

	if !s.SlotType.Valid() {
		return ErrInvalidSlotType
	}

	if s.StartMinutes < 0 || s.EndMinutes > 24*60 || s.EndMinutes <= s.StartMinutes {
		return ErrInvalidSlotWindow
	}

	return nil
}

// Contains reports whether the given moment falls inside this weekly window.
// The window is half-open: start is inclusive, end exclusive.
func (s *ReviewSlot) Contains(t time.Time) bool {
	if ISOWeekday(t) != s.DayOfWeek {
		return false
	}
	minutes := t.Hour()*60 + t.Minute()
	return minutes >= s.StartMinutes && minutes < s.EndMinutes
}

// ISOWeekday converts t's weekday to ISO numbering, Monday=1 .. Sunday=7.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// ParseClock converts an "HH:MM" string to minutes from midnight.
func ParseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, ErrInvalidClockString
	}
	if h < 0 || h > 24 || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, ErrInvalidClockString
	}
	return h*60 + m, nil
}

// FormatClock converts minutes from midnight back to "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
