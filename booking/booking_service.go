package booking

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Store is the persistence gateway the booking core talks to. Implementations
// may be a remote database, a local fallback store, or a two-tier combination;
// the core assumes nothing about backend identity or latency beyond a bounded
// timeout owned by the gateway.
type Store interface {
	CreateBooking(ctx context.Context, b Booking) (Booking, error)
	GetBooking(ctx context.Context, id string) (Booking, error)
	ListBookings(ctx context.Context, filter ListFilter) ([]Booking, error)
	UpdateBookingStatus(ctx context.Context, id string, status Status, sharedRiding *bool) error
	SoftDeleteBooking(ctx context.Context, id string) error
}

type Service struct {
	store      Store
	projection *Projection
	logger     *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:      store,
		projection: NewProjection(),
		logger:     logger.With("component", "booking"),
	}
}

// ListBookings reads through the gateway and keeps the projection warm. When
// the gateway listing fails the projection snapshot is served instead, so a
// storage hiccup never blanks the caller's view.
func (s *Service) ListBookings(ctx context.Context, filter ListFilter) ([]Booking, error) {
	bookings, err := s.store.ListBookings(ctx, filter)
	if err != nil {
		s.logger.Warn("gateway listing failed, serving projection", "err", err)
		return s.projection.List(filter), nil
	}

	if filter == (ListFilter{}) {
		s.projection.ReplaceAll(bookings)
	}

	return bookings, nil
}

func (s *Service) GetBooking(ctx context.Context, id string) (Booking, error) {
	return s.store.GetBooking(ctx, id)
}

// SubmitBooking validates and persists a submission. A recurring submission
// is expanded into its full weekly series first; each instance is then
// persisted independently, so one failed insert never blocks the rest. The
// created instances are returned; a mixed outcome is reported through a
// *PartialError alongside them.
func (s *Service) SubmitBooking(ctx context.Context, b Booking) ([]Booking, error) {
	if err := ValidateSubmission(b); err != nil {
		return nil, err
	}

	if b.Status == "" {
		b.Status = StatusPending
	}

	if !b.IsSubscription {
		created, err := s.store.CreateBooking(ctx, b)
		if err != nil {
			return nil, fmt.Errorf("failed to create booking: %w", err)
		}

		s.projection.Upsert(created)
		s.refresh(ctx)

		return []Booking{created}, nil
	}

	series, err := ExpandSeries(b)
	if err != nil {
		return nil, err
	}

	var created []Booking
	var failures []MemberFailure

	for _, instance := range series {
		stored, err := s.store.CreateBooking(ctx, instance)
		if err != nil {
			s.logger.Error("failed to persist series instance", "id", instance.ID, "date", instance.Date, "err", err)
			failures = append(failures, MemberFailure{ID: instance.ID, Err: err})
			continue
		}
		created = append(created, stored)
	}

	s.projection.Upsert(created...)
	s.refresh(ctx)

	switch {
	case len(created) == 0:
		return nil, fmt.Errorf("failed to create subscription series: %w", failures[0].Err)
	case len(failures) != 0:
		return created, &PartialError{Op: "subscription submission", Applied: ids(created), Failures: failures}
	default:
		return created, nil
	}
}

// ApproveBooking transitions a booking, or the whole recurrence group when
// given the parent id, to approved. The shared-riding decision is applied to
// every member; approving an already-approved group re-applies the same
// terminal state without error. The returned count is the number of members
// updated.
func (s *Service) ApproveBooking(ctx context.Context, id string, sharedRiding bool) (int, error) {
	return s.applyStatus(ctx, id, StatusApproved, &sharedRiding, "approval")
}

// RejectBooking is the rejected counterpart of ApproveBooking. It has no side
// effects beyond status and timestamps.
func (s *Service) RejectBooking(ctx context.Context, id string) (int, error) {
	return s.applyStatus(ctx, id, StatusRejected, nil, "rejection")
}

// DeleteBooking soft-deletes a booking. Invoked with a group parent's id it
// cascades over the whole member set; invoked with a member or standalone id
// it only touches that one record. The returned count is the number of
// members deleted.
func (s *Service) DeleteBooking(ctx context.Context, id string, actor Actor) (int, error) {
	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return 0, err
	}

	if err := checkActorAllowed(b, actor); err != nil {
		return 0, err
	}

	if b.Kind() != KindGroupParent {
		if err := s.deleteOne(ctx, b.ID); err != nil {
			return 0, err
		}
		s.refresh(ctx)
		return 1, nil
	}

	members, err := s.collectMembers(ctx, b)
	if err != nil {
		return 0, err
	}

	var applied []string
	var failures []MemberFailure

	for _, m := range members {
		if err := s.deleteOne(ctx, m.ID); err != nil {
			s.logger.Error("failed to delete group member", "id", m.ID, "err", err)
			failures = append(failures, MemberFailure{ID: m.ID, Err: err})
			continue
		}
		applied = append(applied, m.ID)
	}

	s.refresh(ctx)

	switch {
	case len(failures) == 0:
		return len(applied), nil
	case len(applied) == 0:
		return 0, fmt.Errorf("deletion failed for all %d group members: %w", len(failures), failures[0].Err)
	default:
		return len(applied), &PartialError{Op: "group deletion", Applied: applied, Failures: failures}
	}
}

// DeleteOccurrence soft-deletes exactly one booking and never cascades, so a
// single appointment can be removed from a subscription without touching its
// siblings.
func (s *Service) DeleteOccurrence(ctx context.Context, id string, actor Actor) error {
	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return err
	}

	if err := checkActorAllowed(b, actor); err != nil {
		return err
	}

	if err := s.deleteOne(ctx, b.ID); err != nil {
		return err
	}

	s.refresh(ctx)

	return nil
}

// Stats counts the non-deleted bookings per status for the dashboard.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	bookings, err := s.ListBookings(ctx, ListFilter{})
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	for _, b := range bookings {
		stats.Total++
		switch b.Status {
		case StatusPending:
			stats.Pending++
		case StatusApproved:
			stats.Approved++
		case StatusRejected:
			stats.Rejected++
		}
		if b.IsSubscription {
			stats.Subscriptions++
		}
	}

	return stats, nil
}

// applyStatus resolves the member set for id and fans the transition out over
// it. Each member update is independent and failure-isolated; failures are
// collected and already-applied changes stay applied.
func (s *Service) applyStatus(ctx context.Context, id string, status Status, sharedRiding *bool, op string) (int, error) {
	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return 0, err
	}

	members := []Booking{b}
	if b.Kind() == KindGroupParent {
		members, err = s.collectMembers(ctx, b)
		if err != nil {
			return 0, err
		}
	}

	now := time.Now()

	var applied []string
	var failures []MemberFailure

	for _, m := range members {
		if err := s.store.UpdateBookingStatus(ctx, m.ID, status, sharedRiding); err != nil {
			s.logger.Error("failed to update group member status", "id", m.ID, "status", status, "err", err)
			failures = append(failures, MemberFailure{ID: m.ID, Err: err})
			continue
		}
		applied = append(applied, m.ID)
		s.projection.SetStatus(m.ID, status, sharedRiding, now)
	}

	s.refresh(ctx)

	switch {
	case len(failures) == 0:
		return len(applied), nil
	case len(applied) == 0:
		return 0, fmt.Errorf("%s failed for all %d group members: %w", op, len(failures), failures[0].Err)
	default:
		return len(applied), &PartialError{Op: "group " + op, Applied: applied, Failures: failures}
	}
}

// collectMembers resolves a parent's member set from whatever storage holds:
// the parent itself plus every booking pointing back at it. The series is
// never recomputed from the date range, so a group whose expansion partially
// failed is operated on as it actually exists.
func (s *Service) collectMembers(ctx context.Context, parent Booking) ([]Booking, error) {
	all, err := s.store.ListBookings(ctx, ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve subscription members: %w", err)
	}

	members := []Booking{parent}
	for _, other := range all {
		if other.ParentSubscriptionID == parent.ID {
			members = append(members, other)
		}
	}

	return members, nil
}

func (s *Service) deleteOne(ctx context.Context, id string) error {
	if err := s.store.SoftDeleteBooking(ctx, id); err != nil {
		return err
	}

	s.projection.MarkDeleted(id, time.Now())

	return nil
}

// refresh reconciles the projection against the gateway. Best effort only:
// a failed refresh keeps the optimistic state instead of silently losing the
// caller's action.
func (s *Service) refresh(ctx context.Context) {
	all, err := s.store.ListBookings(ctx, ListFilter{})
	if err != nil {
		s.logger.Warn("booking refresh failed, keeping optimistic state", "err", err)
		return
	}

	s.projection.ReplaceAll(all)
}

func checkActorAllowed(b Booking, actor Actor) error {
	if !actor.Admin && b.OwnerID != actor.ID {
		return ErrNotAllowed
	}
	return nil
}

func ids(bookings []Booking) []string {
	out := make([]string, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, b.ID)
	}
	return out
}
