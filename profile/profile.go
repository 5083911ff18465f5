package profile

import (
	"context"
	"errors"
	"time"
)

var ErrProfileNotFound = errors.New("user profile not found")

// Profile holds member-supplied attributes keyed by the identity provider's
// user id. The core only passes these through to persistence.
type Profile struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	DisplayName      string    `json:"displayName"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	EmergencyContact string    `json:"emergencyContact"`
	EmergencyPhone   string    `json:"emergencyPhone"`
	HorseName        string    `json:"horseName"`
	MembershipType   string    `json:"membershipType"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Merge overlays the non-empty fields of partial onto existing, keeping
// identity and creation metadata.
func Merge(existing, partial Profile) Profile {
	merged := existing

	if partial.DisplayName != "" {
		merged.DisplayName = partial.DisplayName
	}
	if partial.Email != "" {
		merged.Email = partial.Email
	}
	if partial.Phone != "" {
		merged.Phone = partial.Phone
	}
	if partial.EmergencyContact != "" {
		merged.EmergencyContact = partial.EmergencyContact
	}
	if partial.EmergencyPhone != "" {
		merged.EmergencyPhone = partial.EmergencyPhone
	}
	if partial.HorseName != "" {
		merged.HorseName = partial.HorseName
	}
	if partial.MembershipType != "" {
		merged.MembershipType = partial.MembershipType
	}

	return merged
}

type Store interface {
	GetProfile(ctx context.Context, userID string) (Profile, error)
	UpsertProfile(ctx context.Context, userID string, partial Profile) (Profile, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) GetProfile(ctx context.Context, userID string) (Profile, error) {
	return s.store.GetProfile(ctx, userID)
}

func (s *Service) UpsertProfile(ctx context.Context, userID string, partial Profile) (Profile, error) {
	return s.store.UpsertProfile(ctx, userID, partial)
}
