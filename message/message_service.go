package message

import (
	"context"
	"errors"
	"fmt"
)

var ErrMessageNotFound = errors.New("admin message not found")

var ErrInvalidMessage = errors.New("invalid admin message")

type Store interface {
	CreateMessage(ctx context.Context, m Message) (Message, error)
	ListMessages(ctx context.Context, activeOnly bool) ([]Message, error)
	SetMessageActive(ctx context.Context, id string, active bool) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// CreateMessage validates and posts a notice. New messages are active and
// default to low priority.
func (s *Service) CreateMessage(ctx context.Context, m Message) (Message, error) {
	if m.Title == "" {
		return Message{}, fmt.Errorf("%w: title is required", ErrInvalidMessage)
	}
	if m.Content == "" {
		return Message{}, fmt.Errorf("%w: content is required", ErrInvalidMessage)
	}

	switch m.Priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
	case "":
		m.Priority = PriorityLow
	default:
		return Message{}, fmt.Errorf("%w: unknown priority %q", ErrInvalidMessage, m.Priority)
	}

	m.IsActive = true

	return s.store.CreateMessage(ctx, m)
}

// ListMessages returns notices ordered by priority desc, then newest first.
func (s *Service) ListMessages(ctx context.Context, activeOnly bool) ([]Message, error) {
	return s.store.ListMessages(ctx, activeOnly)
}

// SetMessageActive switches a notice on or off without deleting it.
func (s *Service) SetMessageActive(ctx context.Context, id string, active bool) error {
	return s.store.SetMessageActive(ctx, id, active)
}
