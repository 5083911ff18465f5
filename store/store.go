// Package store provides the persistence gateway implementations: a remote
// PostgreSQL tier, an in-process local tier, and a two-tier Fallback that
// combines them with a remote-first policy.
package store

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/reitclub/arena-booking-backend/booking"
	"github.com/reitclub/arena-booking-backend/message"
	"github.com/reitclub/arena-booking-backend/profile"
)

// Gateway is the full persistence surface consumed by the services. Every
// implementation honors the same contract, so callers cannot tell the tiers
// apart.
type Gateway interface {
	booking.Store
	message.Store
	profile.Store
}

// ErrBackendUnavailable marks a failure of the remote tier itself rather
// than a domain outcome. The Fallback gateway never lets it reach callers;
// it demotes to the local tier instead.
var ErrBackendUnavailable = errors.New("remote store unavailable")

// withBookingDefaults fills the fields a submission may omit, the same way
// on every tier: fresh id, pending status, member type, at least one rider,
// capacity derived from the shared-riding flag, not deleted.
func withBookingDefaults(b booking.Booking, now time.Time) booking.Booking {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = booking.StatusPending
	}
	if b.BookingType == "" {
		b.BookingType = booking.TypeMember
	}
	if b.CurrentRiders < 1 {
		b.CurrentRiders = 1
	}
	b.MaxRiders = booking.MaxRidersFor(b.SharedRiding)
	b.IsDeleted = false
	b.DeletedAt = nil
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	return b
}

func withMessageDefaults(m message.Message, now time.Time) message.Message {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Priority == "" {
		m.Priority = message.PriorityLow
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	return m
}

func newProfile(userID string, partial profile.Profile, now time.Time) profile.Profile {
	created := profile.Merge(profile.Profile{}, partial)
	created.ID = uuid.NewString()
	created.UserID = userID
	created.CreatedAt = now
	created.UpdatedAt = now
	return created
}
