package message

import (
	"sort"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Message is a broadcast notice posted by the club administration. It has no
// relationship to bookings.
type Message struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Priority  Priority  `json:"priority"`
	IsActive  bool      `json:"isActive"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Sort orders messages for display: priority high > medium > low, then
// newest first within the same priority. Creation order never outranks
// priority.
func Sort(messages []Message) {
	sort.Slice(messages, func(i, j int) bool {
		if messages[i].Priority.weight() != messages[j].Priority.weight() {
			return messages[i].Priority.weight() > messages[j].Priority.weight()
		}
		if !messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].CreatedAt.After(messages[j].CreatedAt)
		}
		return messages[i].ID > messages[j].ID
	})
}
