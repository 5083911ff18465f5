package store

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/reitclub/arena-booking-backend/booking"
	"github.com/reitclub/arena-booking-backend/message"
	"github.com/reitclub/arena-booking-backend/profile"
)

// Local is the in-process tier of the persistence gateway. It keeps full
// records, not evictable entries, so it can answer with the exact same
// contract as the remote tier when that one is unreachable.
type Local struct {
	bookings *cache.Cache
	messages *cache.Cache
	profiles *cache.Cache
	seq      atomic.Int64
}

func NewLocal() *Local {
	return &Local{
		bookings: cache.New(cache.NoExpiration, 0),
		messages: cache.New(cache.NoExpiration, 0),
		profiles: cache.New(cache.NoExpiration, 0),
	}
}

// localBooking tags each record with an insertion sequence so listings stay
// newest-created first even when timestamps collide within one submission.
type localBooking struct {
	seq int64
	booking.Booking
}

func (l *Local) CreateBooking(_ context.Context, b booking.Booking) (booking.Booking, error) {
	b = withBookingDefaults(b, time.Now())
	l.bookings.Set(b.ID, localBooking{seq: l.seq.Add(1), Booking: b}, cache.NoExpiration)
	return b, nil
}

func (l *Local) GetBooking(_ context.Context, id string) (booking.Booking, error) {
	v, ok := l.bookings.Get(id)
	if !ok {
		return booking.Booking{}, booking.ErrBookingNotFound
	}
	return v.(localBooking).Booking, nil
}

func (l *Local) ListBookings(_ context.Context, filter booking.ListFilter) ([]booking.Booking, error) {
	var records []localBooking

	for _, item := range l.bookings.Items() {
		rec := item.Object.(localBooking)
		if rec.IsDeleted && !filter.IncludeDeleted {
			continue
		}
		if filter.OwnerID != "" && rec.OwnerID != filter.OwnerID {
			continue
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].seq > records[j].seq })

	bookings := make([]booking.Booking, 0, len(records))
	for _, rec := range records {
		bookings = append(bookings, rec.Booking)
	}

	return bookings, nil
}

func (l *Local) UpdateBookingStatus(_ context.Context, id string, status booking.Status, sharedRiding *bool) error {
	v, ok := l.bookings.Get(id)
	if !ok {
		return booking.ErrBookingNotFound
	}

	rec := v.(localBooking)
	rec.Status = status
	if sharedRiding != nil {
		rec.SharedRiding = *sharedRiding
		rec.MaxRiders = booking.MaxRidersFor(*sharedRiding)
	}
	rec.UpdatedAt = time.Now()

	l.bookings.Set(id, rec, cache.NoExpiration)

	return nil
}

func (l *Local) SoftDeleteBooking(_ context.Context, id string) error {
	v, ok := l.bookings.Get(id)
	if !ok {
		return booking.ErrBookingNotFound
	}

	rec := v.(localBooking)
	now := time.Now()
	rec.IsDeleted = true
	rec.DeletedAt = &now
	rec.UpdatedAt = now

	l.bookings.Set(id, rec, cache.NoExpiration)

	return nil
}

func (l *Local) CreateMessage(_ context.Context, m message.Message) (message.Message, error) {
	m = withMessageDefaults(m, time.Now())
	l.messages.Set(m.ID, m, cache.NoExpiration)
	return m, nil
}

func (l *Local) ListMessages(_ context.Context, activeOnly bool) ([]message.Message, error) {
	var messages []message.Message

	for _, item := range l.messages.Items() {
		m := item.Object.(message.Message)
		if activeOnly && !m.IsActive {
			continue
		}
		messages = append(messages, m)
	}

	message.Sort(messages)

	return messages, nil
}

func (l *Local) SetMessageActive(_ context.Context, id string, active bool) error {
	v, ok := l.messages.Get(id)
	if !ok {
		return message.ErrMessageNotFound
	}

	m := v.(message.Message)
	m.IsActive = active
	m.UpdatedAt = time.Now()

	l.messages.Set(id, m, cache.NoExpiration)

	return nil
}

func (l *Local) GetProfile(_ context.Context, userID string) (profile.Profile, error) {
	v, ok := l.profiles.Get(userID)
	if !ok {
		return profile.Profile{}, profile.ErrProfileNotFound
	}
	return v.(profile.Profile), nil
}

func (l *Local) UpsertProfile(ctx context.Context, userID string, partial profile.Profile) (profile.Profile, error) {
	existing, err := l.GetProfile(ctx, userID)

	if errors.Is(err, profile.ErrProfileNotFound) {
		created := newProfile(userID, partial, time.Now())
		l.profiles.Set(userID, created, cache.NoExpiration)
		return created, nil
	}

	if err != nil {
		return profile.Profile{}, err
	}

	merged := profile.Merge(existing, partial)
	merged.UpdatedAt = time.Now()
	l.profiles.Set(userID, merged, cache.NoExpiration)

	return merged, nil
}
