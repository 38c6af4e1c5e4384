package domain

import (
	"fmt"
	"strings"
)

// Status is the lane a task sits in.
type Status string

const (
	StatusUpcoming   Status = "upcoming"
	StatusInProgress Status = "inprogress"
	StatusInReview   Status = "inreview"
	StatusDone       Status = "done"
)

var statusOrder = []Status{StatusUpcoming, StatusInProgress, StatusInReview, StatusDone}

var statusLabels = map[Status]string{
	StatusUpcoming:   "UPCOMING",
	StatusInProgress: "ONGOING",
	StatusInReview:   "COMPLETED",
	StatusDone:       "ARCHIVED",
}

// Statuses returns the four lanes in board order.
func Statuses() []Status {
	out := make([]Status, len(statusOrder))
	copy(out, statusOrder)
	return out
}

// Valid reports whether s is one of the known lanes.
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label is the column heading shown on the board.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return strings.ToUpper(string(s))
}

// ParseStatus accepts wire values, hyphenated forms and lane labels.
func ParseStatus(raw string) (Status, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch v {
	case "upcoming":
		return StatusUpcoming, nil
	case "inprogress", "in-progress", "in_progress", "ongoing":
		return StatusInProgress, nil
	case "inreview", "in-review", "in_review", "completed":
		return StatusInReview, nil
	case "done", "archived":
		return StatusDone, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
}
