package store_test

import (
	"context"
	"testing"

	bk "github.com/reitclub/arena-booking-backend/booking"
	msg "github.com/reitclub/arena-booking-backend/message"
	pf "github.com/reitclub/arena-booking-backend/profile"
	"github.com/reitclub/arena-booking-backend/store"
	"github.com/stretchr/testify/require"
)

func TestLocalBookings(t *testing.T) {
	ctx := context.Background()

	t.Run("create fills defaults", func(t *testing.T) {
		local := store.NewLocal()

		created, err := local.CreateBooking(ctx, bk.Booking{OwnerID: "user1ID", Arena: bk.ArenaIndoor})

		require.Nil(t, err)
		require.NotEmpty(t, created.ID)
		require.Equal(t, bk.StatusPending, created.Status)
		require.Equal(t, bk.TypeMember, created.BookingType)
		require.Equal(t, 1, created.CurrentRiders)
		require.Equal(t, 1, created.MaxRiders)
		require.False(t, created.CreatedAt.IsZero())
	})

	t.Run("shared riding raises capacity", func(t *testing.T) {
		local := store.NewLocal()

		created, err := local.CreateBooking(ctx, bk.Booking{OwnerID: "user1ID", SharedRiding: true})

		require.Nil(t, err)
		require.Equal(t, 6, created.MaxRiders)
	})

	t.Run("get round trip", func(t *testing.T) {
		local := store.NewLocal()

		created, _ := local.CreateBooking(ctx, bk.Booking{OwnerID: "user1ID"})

		got, err := local.GetBooking(ctx, created.ID)

		require.Nil(t, err)
		require.Equal(t, created, got)
	})

	t.Run("get unknown id", func(t *testing.T) {
		local := store.NewLocal()

		_, err := local.GetBooking(ctx, "missing")

		require.ErrorIs(t, err, bk.ErrBookingNotFound)
	})

	t.Run("list is newest first", func(t *testing.T) {
		local := store.NewLocal()

		first, _ := local.CreateBooking(ctx, bk.Booking{OwnerID: "user1ID"})
		second, _ := local.CreateBooking(ctx, bk.Booking{OwnerID: "user1ID"})

		listed, err := local.ListBookings(ctx, bk.ListFilter{})

		require.Nil(t, err)
		require.Len(t, listed, 2)
		require.Equal(t, second.ID, listed[0].ID)
		require.Equal(t, first.ID, listed[1].ID)
	})

	t.Run("soft deleted bookings drop out of listings", func(t *testing.T) {
		local := store.NewLocal()

		created, _ := local.CreateBooking(ctx, bk.Booking{OwnerID: "user1ID"})

		require.Nil(t, local.SoftDeleteBooking(ctx, created.ID))

		listed, _ := local.ListBookings(ctx, bk.ListFilter{})
		require.Empty(t, listed)

		all, _ := local.ListBookings(ctx, bk.ListFilter{IncludeDeleted: true})
		require.Len(t, all, 1)
		require.True(t, all[0].IsDeleted)
		require.NotNil(t, all[0].DeletedAt)
	})

	t.Run("owner filter", func(t *testing.T) {
		local := store.NewLocal()

		local.CreateBooking(ctx, bk.Booking{OwnerID: "user1ID"})
		local.CreateBooking(ctx, bk.Booking{OwnerID: "user2ID"})

		listed, err := local.ListBookings(ctx, bk.ListFilter{OwnerID: "user2ID"})

		require.Nil(t, err)
		require.Len(t, listed, 1)
		require.Equal(t, "user2ID", listed[0].OwnerID)
	})

	t.Run("status update applies the capacity decision", func(t *testing.T) {
		local := store.NewLocal()

		created, _ := local.CreateBooking(ctx, bk.Booking{OwnerID: "user1ID"})

		shared := true
		require.Nil(t, local.UpdateBookingStatus(ctx, created.ID, bk.StatusApproved, &shared))

		got, _ := local.GetBooking(ctx, created.ID)
		require.Equal(t, bk.StatusApproved, got.Status)
		require.True(t, got.SharedRiding)
		require.Equal(t, 6, got.MaxRiders)
	})

	t.Run("repeated status update is idempotent", func(t *testing.T) {
		local := store.NewLocal()

		created, _ := local.CreateBooking(ctx, bk.Booking{OwnerID: "user1ID"})

		shared := true
		require.Nil(t, local.UpdateBookingStatus(ctx, created.ID, bk.StatusApproved, &shared))
		require.Nil(t, local.UpdateBookingStatus(ctx, created.ID, bk.StatusApproved, &shared))

		got, _ := local.GetBooking(ctx, created.ID)
		require.Equal(t, bk.StatusApproved, got.Status)
		require.True(t, got.SharedRiding)
		require.Equal(t, 6, got.MaxRiders)
	})

	t.Run("status update on unknown id", func(t *testing.T) {
		local := store.NewLocal()

		err := local.UpdateBookingStatus(ctx, "missing", bk.StatusApproved, nil)

		require.ErrorIs(t, err, bk.ErrBookingNotFound)
	})
}

func TestLocalMessages(t *testing.T) {
	ctx := context.Background()

	t.Run("listing is ordered by priority", func(t *testing.T) {
		local := store.NewLocal()

		local.CreateMessage(ctx, msg.Message{Title: "a", Content: "c", Priority: msg.PriorityLow, IsActive: true})
		local.CreateMessage(ctx, msg.Message{Title: "b", Content: "c", Priority: msg.PriorityHigh, IsActive: true})
		local.CreateMessage(ctx, msg.Message{Title: "c", Content: "c", Priority: msg.PriorityMedium, IsActive: true})

		listed, err := local.ListMessages(ctx, false)

		require.Nil(t, err)
		require.Len(t, listed, 3)
		require.Equal(t, msg.PriorityHigh, listed[0].Priority)
		require.Equal(t, msg.PriorityMedium, listed[1].Priority)
		require.Equal(t, msg.PriorityLow, listed[2].Priority)
	})

	t.Run("active filter", func(t *testing.T) {
		local := store.NewLocal()

		created, _ := local.CreateMessage(ctx, msg.Message{Title: "a", Content: "c", IsActive: true})

		require.Nil(t, local.SetMessageActive(ctx, created.ID, false))

		active, _ := local.ListMessages(ctx, true)
		require.Empty(t, active)

		all, _ := local.ListMessages(ctx, false)
		require.Len(t, all, 1)
	})

	t.Run("toggle unknown message", func(t *testing.T) {
		local := store.NewLocal()

		err := local.SetMessageActive(ctx, "missing", false)

		require.ErrorIs(t, err, msg.ErrMessageNotFound)
	})
}

func TestLocalProfiles(t *testing.T) {
	ctx := context.Background()

	t.Run("upsert creates then merges", func(t *testing.T) {
		local := store.NewLocal()

		created, err := local.UpsertProfile(ctx, "user1ID", pf.Profile{DisplayName: "Anna", HorseName: "Luna"})

		require.Nil(t, err)
		require.NotEmpty(t, created.ID)
		require.Equal(t, "user1ID", created.UserID)

		updated, err := local.UpsertProfile(ctx, "user1ID", pf.Profile{Phone: "12345"})

		require.Nil(t, err)
		require.Equal(t, created.ID, updated.ID)
		require.Equal(t, "Anna", updated.DisplayName)
		require.Equal(t, "Luna", updated.HorseName)
		require.Equal(t, "12345", updated.Phone)
	})

	t.Run("get unknown user", func(t *testing.T) {
		local := store.NewLocal()

		_, err := local.GetProfile(ctx, "missing")

		require.ErrorIs(t, err, pf.ErrProfileNotFound)
	})
}
