package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/reitclub/arena-booking-backend/booking"
	"github.com/reitclub/arena-booking-backend/message"
	"github.com/reitclub/arena-booking-backend/metrics"
	"github.com/reitclub/arena-booking-backend/profile"
)

// Fallback is the two-tier gateway: remote-first with a per-call timeout,
// demoted to the local tier when the remote fails, promoted back by periodic
// probes. Successful remote writes are mirrored into the local tier so the
// fallback view stays warm. Domain outcomes (not-found) pass through
// untouched; only backend failures trigger a demotion, and those are never
// surfaced to the caller because the local tier answers instead.
type Fallback struct {
	remote     Gateway
	local      Gateway
	timeout    time.Duration
	retryAfter time.Duration
	logger     *slog.Logger

	mu        sync.Mutex
	demoted   bool
	nextProbe time.Time
}

func NewFallback(remote, local Gateway, timeout, retryAfter time.Duration, logger *slog.Logger) *Fallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fallback{
		remote:     remote,
		local:      local,
		timeout:    timeout,
		retryAfter: retryAfter,
		logger:     logger.With("component", "store"),
	}
}

// tryRemote reports whether this call should attempt the remote tier. While
// demoted, at most one probe per retry window goes through.
func (f *Fallback) tryRemote() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.demoted {
		return true
	}

	if time.Now().After(f.nextProbe) {
		f.nextProbe = time.Now().Add(f.retryAfter)
		return true
	}

	return false
}

func (f *Fallback) remoteSucceeded() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.demoted {
		f.demoted = false
		f.logger.Info("remote store recovered, promoted back")
	}
}

func (f *Fallback) remoteFailed(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.demoted {
		f.logger.Warn("remote store demoted to local fallback", "op", op, "err", err)
		metrics.IncStoreDemoted()
	}
	f.demoted = true
	f.nextProbe = time.Now().Add(f.retryAfter)
}

// isDomainOutcome separates not-found results from backend failures; the
// former must pass through without demoting.
func isDomainOutcome(err error) bool {
	return errors.Is(err, booking.ErrBookingNotFound) ||
		errors.Is(err, message.ErrMessageNotFound) ||
		errors.Is(err, profile.ErrProfileNotFound)
}

func (f *Fallback) CreateBooking(ctx context.Context, b booking.Booking) (booking.Booking, error) {
	if f.tryRemote() {
		rctx, cancel := context.WithTimeout(ctx, f.timeout)
		created, err := f.remote.CreateBooking(rctx, b)
		cancel()

		if err == nil {
			f.remoteSucceeded()
			f.mirrorBooking(ctx, created)
			return created, nil
		}

		f.remoteFailed("CreateBooking", err)
	}

	return f.local.CreateBooking(ctx, b)
}

func (f *Fallback) GetBooking(ctx context.Context, id string) (booking.Booking, error) {
	if f.tryRemote() {
		rctx, cancel := context.WithTimeout(ctx, f.timeout)
		b, err := f.remote.GetBooking(rctx, id)
		cancel()

		if err == nil || isDomainOutcome(err) {
			f.remoteSucceeded()
			return b, err
		}

		f.remoteFailed("GetBooking", err)
	}

	return f.local.GetBooking(ctx, id)
}

func (f *Fallback) ListBookings(ctx context.Context, filter booking.ListFilter) ([]booking.Booking, error) {
	if f.tryRemote() {
		rctx, cancel := context.WithTimeout(ctx, f.timeout)
		bookings, err := f.remote.ListBookings(rctx, filter)
		cancel()

		if err == nil {
			f.remoteSucceeded()
			return bookings, nil
		}

		f.remoteFailed("ListBookings", err)
	}

	return f.local.ListBookings(ctx, filter)
}

func (f *Fallback) UpdateBookingStatus(ctx context.Context, id string, status booking.Status, sharedRiding *bool) error {
	if f.tryRemote() {
		rctx, cancel := context.WithTimeout(ctx, f.timeout)
		err := f.remote.UpdateBookingStatus(rctx, id, status, sharedRiding)
		cancel()

		if err == nil || isDomainOutcome(err) {
			f.remoteSucceeded()
			if err == nil {
				if lerr := f.local.UpdateBookingStatus(ctx, id, status, sharedRiding); lerr != nil && !isDomainOutcome(lerr) {
					f.logger.Warn("failed to mirror status update locally", "id", id, "err", lerr)
				}
			}
			return err
		}

		f.remoteFailed("UpdateBookingStatus", err)
	}

	return f.local.UpdateBookingStatus(ctx, id, status, sharedRiding)
}

func (f *Fallback) SoftDeleteBooking(ctx context.Context, id string) error {
	if f.tryRemote() {
		rctx, cancel := context.WithTimeout(ctx, f.timeout)
		err := f.remote.SoftDeleteBooking(rctx, id)
		cancel()

		if err == nil || isDomainOutcome(err) {
			f.remoteSucceeded()
			if err == nil {
				if lerr := f.local.SoftDeleteBooking(ctx, id); lerr != nil && !isDomainOutcome(lerr) {
					f.logger.Warn("failed to mirror deletion locally", "id", id, "err", lerr)
				}
			}
			return err
		}

		f.remoteFailed("SoftDeleteBooking", err)
	}

	return f.local.SoftDeleteBooking(ctx, id)
}

func (f *Fallback) CreateMessage(ctx context.Context, m message.Message) (message.Message, error) {
	if f.tryRemote() {
		rctx, cancel := context.WithTimeout(ctx, f.timeout)
		created, err := f.remote.CreateMessage(rctx, m)
		cancel()

		if err == nil {
			f.remoteSucceeded()
			if _, lerr := f.local.CreateMessage(ctx, created); lerr != nil {
				f.logger.Warn("failed to mirror admin message locally", "id", created.ID, "err", lerr)
			}
			return created, nil
		}

		f.remoteFailed("CreateMessage", err)
	}

	return f.local.CreateMessage(ctx, m)
}

func (f *Fallback) ListMessages(ctx context.Context, activeOnly bool) ([]message.Message, error) {
	if f.tryRemote() {
		rctx, cancel := context.WithTimeout(ctx, f.timeout)
		messages, err := f.remote.ListMessages(rctx, activeOnly)
		cancel()

		if err == nil {
			f.remoteSucceeded()
			return messages, nil
		}

		f.remoteFailed("ListMessages", err)
	}

	return f.local.ListMessages(ctx, activeOnly)
}

func (f *Fallback) SetMessageActive(ctx context.Context, id string, active bool) error {
	if f.tryRemote() {
		rctx, cancel := context.WithTimeout(ctx, f.timeout)
		err := f.remote.SetMessageActive(rctx, id, active)
		cancel()

		if err == nil || isDomainOutcome(err) {
			f.remoteSucceeded()
			if err == nil {
				if lerr := f.local.SetMessageActive(ctx, id, active); lerr != nil && !isDomainOutcome(lerr) {
					f.logger.Warn("failed to mirror admin message update locally", "id", id, "err", lerr)
				}
			}
			return err
		}

		f.remoteFailed("SetMessageActive", err)
	}

	return f.local.SetMessageActive(ctx, id, active)
}

func (f *Fallback) GetProfile(ctx context.Context, userID string) (profile.Profile, error) {
	if f.tryRemote() {
		rctx, cancel := context.WithTimeout(ctx, f.timeout)
		pr, err := f.remote.GetProfile(rctx, userID)
		cancel()

		if err == nil || isDomainOutcome(err) {
			f.remoteSucceeded()
			return pr, err
		}

		f.remoteFailed("GetProfile", err)
	}

	return f.local.GetProfile(ctx, userID)
}

func (f *Fallback) UpsertProfile(ctx context.Context, userID string, partial profile.Profile) (profile.Profile, error) {
	if f.tryRemote() {
		rctx, cancel := context.WithTimeout(ctx, f.timeout)
		pr, err := f.remote.UpsertProfile(rctx, userID, partial)
		cancel()

		if err == nil {
			f.remoteSucceeded()
			if _, lerr := f.local.UpsertProfile(ctx, userID, partial); lerr != nil {
				f.logger.Warn("failed to mirror profile locally", "userId", userID, "err", lerr)
			}
			return pr, nil
		}

		f.remoteFailed("UpsertProfile", err)
	}

	return f.local.UpsertProfile(ctx, userID, partial)
}

// mirrorBooking copies a remotely created record into the local tier as-is.
func (f *Fallback) mirrorBooking(ctx context.Context, b booking.Booking) {
	if _, err := f.local.CreateBooking(ctx, b); err != nil {
		f.logger.Warn("failed to mirror booking locally", "id", b.ID, "err", err)
	}
}
