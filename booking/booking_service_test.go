package booking_test

import (
	"context"
	"errors"
	"testing"
	"time"

	bk "github.com/reitclub/arena-booking-backend/booking"
	bk_mocks "github.com/reitclub/arena-booking-backend/booking/mocks"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var groupBookings = []bk.Booking{
	{
		ID:                  "parent1",
		OwnerID:             "user1ID",
		OwnerName:           "user1",
		Arena:               bk.ArenaIndoor,
		Date:                "2025-01-06",
		StartTime:           "10:00",
		EndTime:             "11:00",
		Status:              bk.StatusPending,
		IsSubscription:      true,
		SubscriptionEndDate: "2025-01-20",
		CreatedAt:           time.Now(),
	},
	{
		ID:                   "member2",
		OwnerID:              "user1ID",
		OwnerName:            "user1",
		Arena:                bk.ArenaIndoor,
		Date:                 "2025-01-13",
		StartTime:            "10:00",
		EndTime:              "11:00",
		Status:               bk.StatusPending,
		ParentSubscriptionID: "parent1",
		CreatedAt:            time.Now(),
	},
	{
		ID:                   "member3",
		OwnerID:              "user1ID",
		OwnerName:            "user1",
		Arena:                bk.ArenaIndoor,
		Date:                 "2025-01-20",
		StartTime:            "10:00",
		EndTime:              "11:00",
		Status:               bk.StatusPending,
		ParentSubscriptionID: "parent1",
		CreatedAt:            time.Now(),
	},
}

type testDeps struct {
	store   *bk_mocks.MockStore
	service *bk.Service
	ctx     context.Context
}

func newTestDeps(t *testing.T) (*gomock.Controller, testDeps) {
	t.Helper()
	ctrl := gomock.NewController(t)

	store := bk_mocks.NewMockStore(ctrl)
	svc := bk.NewService(store, nil)

	return ctrl, testDeps{
		store: store, service: svc, ctx: context.Background(),
	}
}

func TestSubmitBooking(t *testing.T) {

	t.Run("single booking", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		submitted := bk.Booking{
			OwnerID:   "user1ID",
			Arena:     bk.ArenaOutdoor,
			Date:      "2025-03-01",
			StartTime: "09:00",
			EndTime:   "10:00",
		}

		deps.store.EXPECT().CreateBooking(deps.ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, b bk.Booking) (bk.Booking, error) {
				require.Equal(t, bk.StatusPending, b.Status)
				b.ID = "created1"
				return b, nil
			}).Times(1)
		deps.store.EXPECT().ListBookings(deps.ctx, bk.ListFilter{}).Return(nil, nil).Times(1)

		created, err := deps.service.SubmitBooking(deps.ctx, submitted)

		require.Nil(t, err)
		require.Len(t, created, 1)
		require.Equal(t, "created1", created[0].ID)
	})

	t.Run("invalid booking never reaches the store", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.store.EXPECT().CreateBooking(gomock.Any(), gomock.Any()).Times(0)

		_, err := deps.service.SubmitBooking(deps.ctx, bk.Booking{})

		var invalid *bk.ValidationError
		require.ErrorAs(t, err, &invalid)
	})

	t.Run("subscription expands to the full series", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		submitted := bk.Booking{
			OwnerID:             "user1ID",
			Arena:               bk.ArenaIndoor,
			Date:                "2025-01-06",
			StartTime:           "10:00",
			EndTime:             "11:00",
			IsSubscription:      true,
			SubscriptionEndDate: "2025-02-03",
		}

		deps.store.EXPECT().CreateBooking(deps.ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, b bk.Booking) (bk.Booking, error) {
				return b, nil
			}).Times(5)
		deps.store.EXPECT().ListBookings(deps.ctx, bk.ListFilter{}).Return(nil, nil).Times(1)

		created, err := deps.service.SubmitBooking(deps.ctx, submitted)

		require.Nil(t, err)
		require.Len(t, created, 5)
		require.Equal(t, bk.KindGroupParent, created[0].Kind())
		for _, member := range created[1:] {
			require.Equal(t, created[0].ID, member.ParentSubscriptionID)
		}
	})

	t.Run("one failed instance does not block the rest", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		submitted := bk.Booking{
			OwnerID:             "user1ID",
			Arena:               bk.ArenaIndoor,
			Date:                "2025-01-06",
			StartTime:           "10:00",
			EndTime:             "11:00",
			IsSubscription:      true,
			SubscriptionEndDate: "2025-02-03",
		}

		deps.store.EXPECT().CreateBooking(deps.ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, b bk.Booking) (bk.Booking, error) {
				if b.Date == "2025-01-20" {
					return bk.Booking{}, errors.New("insert failed")
				}
				return b, nil
			}).Times(5)
		deps.store.EXPECT().ListBookings(deps.ctx, bk.ListFilter{}).Return(nil, nil).Times(1)

		created, err := deps.service.SubmitBooking(deps.ctx, submitted)

		require.Len(t, created, 4)

		var partial *bk.PartialError
		require.ErrorAs(t, err, &partial)
		require.Len(t, partial.Failures, 1)
		require.Len(t, partial.Applied, 4)
	})

	t.Run("all instances failing is an error", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		submitted := bk.Booking{
			OwnerID:             "user1ID",
			Arena:               bk.ArenaIndoor,
			Date:                "2025-01-06",
			StartTime:           "10:00",
			EndTime:             "11:00",
			IsSubscription:      true,
			SubscriptionEndDate: "2025-01-20",
		}

		deps.store.EXPECT().CreateBooking(deps.ctx, gomock.Any()).
			Return(bk.Booking{}, errors.New("insert failed")).Times(3)
		deps.store.EXPECT().ListBookings(deps.ctx, bk.ListFilter{}).Return(nil, nil).Times(1)

		created, err := deps.service.SubmitBooking(deps.ctx, submitted)

		require.Error(t, err)
		require.Empty(t, created)
	})
}

func TestApproveBooking(t *testing.T) {

	t.Run("approving the parent approves every member", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.store.EXPECT().GetBooking(deps.ctx, "parent1").Return(groupBookings[0], nil).Times(1)
		deps.store.EXPECT().ListBookings(deps.ctx, bk.ListFilter{}).Return(groupBookings, nil).Times(2)
		for _, member := range groupBookings {
			deps.store.EXPECT().UpdateBookingStatus(deps.ctx, member.ID, bk.StatusApproved, gomock.Any()).
				DoAndReturn(func(_ context.Context, _ string, _ bk.Status, sharedRiding *bool) error {
					require.NotNil(t, sharedRiding)
					require.True(t, *sharedRiding)
					return nil
				}).Times(1)
		}

		updated, err := deps.service.ApproveBooking(deps.ctx, "parent1", true)

		require.Nil(t, err)
		require.Equal(t, 3, updated)
	})

	t.Run("approving a member touches only that member", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.store.EXPECT().GetBooking(deps.ctx, "member2").Return(groupBookings[1], nil).Times(1)
		deps.store.EXPECT().UpdateBookingStatus(deps.ctx, "member2", bk.StatusApproved, gomock.Any()).Return(nil).Times(1)
		deps.store.EXPECT().ListBookings(deps.ctx, bk.ListFilter{}).Return(groupBookings, nil).Times(1)

		updated, err := deps.service.ApproveBooking(deps.ctx, "member2", false)

		require.Nil(t, err)
		require.Equal(t, 1, updated)
	})

	t.Run("one failed member leaves the others approved", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.store.EXPECT().GetBooking(deps.ctx, "parent1").Return(groupBookings[0], nil).Times(1)
		deps.store.EXPECT().ListBookings(deps.ctx, bk.ListFilter{}).Return(groupBookings, nil).Times(2)
		deps.store.EXPECT().UpdateBookingStatus(deps.ctx, "parent1", bk.StatusApproved, gomock.Any()).Return(nil).Times(1)
		deps.store.EXPECT().UpdateBookingStatus(deps.ctx, "member2", bk.StatusApproved, gomock.Any()).
			Return(errors.New("update failed")).Times(1)
		deps.store.EXPECT().UpdateBookingStatus(deps.ctx, "member3", bk.StatusApproved, gomock.Any()).Return(nil).Times(1)

		updated, err := deps.service.ApproveBooking(deps.ctx, "parent1", false)

		require.Equal(t, 2, updated)

		var partial *bk.PartialError
		require.ErrorAs(t, err, &partial)
		require.Equal(t, []string{"member2"}, partial.FailedIDs())
	})

	t.Run("re-approving an approved group yields the same state", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		approved := make([]bk.Booking, len(groupBookings))
		for i, b := range groupBookings {
			b.Status = bk.StatusApproved
			b.SharedRiding = true
			b.MaxRiders = 6
			approved[i] = b
		}

		deps.store.EXPECT().GetBooking(deps.ctx, "parent1").Return(approved[0], nil).Times(1)
		deps.store.EXPECT().ListBookings(deps.ctx, bk.ListFilter{}).Return(approved, nil).Times(2)
		for _, member := range approved {
			deps.store.EXPECT().UpdateBookingStatus(deps.ctx, member.ID, bk.StatusApproved, gomock.Any()).
				DoAndReturn(func(_ context.Context, _ string, _ bk.Status, sharedRiding *bool) error {
					require.NotNil(t, sharedRiding)
					require.True(t, *sharedRiding)
					return nil
				}).Times(1)
		}

		updated, err := deps.service.ApproveBooking(deps.ctx, "parent1", true)

		require.Nil(t, err)
		require.Equal(t, 3, updated)
	})

	t.Run("unknown booking", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.store.EXPECT().GetBooking(deps.ctx, "missing").Return(bk.Booking{}, bk.ErrBookingNotFound).Times(1)

		_, err := deps.service.ApproveBooking(deps.ctx, "missing", false)

		require.ErrorIs(t, err, bk.ErrBookingNotFound)
	})
}

func TestRejectBooking(t *testing.T) {

	t.Run("rejecting a member leaves the siblings alone", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.store.EXPECT().GetBooking(deps.ctx, "member3").Return(groupBookings[2], nil).Times(1)
		deps.store.EXPECT().UpdateBookingStatus(deps.ctx, "member3", bk.StatusRejected, nil).Return(nil).Times(1)
		deps.store.EXPECT().ListBookings(deps.ctx, bk.ListFilter{}).Return(groupBookings, nil).Times(1)

		updated, err := deps.service.RejectBooking(deps.ctx, "member3")

		require.Nil(t, err)
		require.Equal(t, 1, updated)
	})

	t.Run("rejecting the parent rejects the group", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.store.EXPECT().GetBooking(deps.ctx, "parent1").Return(groupBookings[0], nil).Times(1)
		deps.store.EXPECT().ListBookings(deps.ctx, bk.ListFilter{}).Return(groupBookings, nil).Times(2)
		for _, member := range groupBookings {
			deps.store.EXPECT().UpdateBookingStatus(deps.ctx, member.ID, bk.StatusRejected, nil).Return(nil).Times(1)
		}

		updated, err := deps.service.RejectBooking(deps.ctx, "parent1")

		require.Nil(t, err)
		require.Equal(t, 3, updated)
	})
}

func TestDeleteBooking(t *testing.T) {
	owner := bk.Actor{ID: "user1ID"}
	admin := bk.Actor{ID: "adminID", Admin: true}

	t.Run("deleting the parent cascades over the group", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.store.EXPECT().GetBooking(deps.ctx, "parent1").Return(groupBookings[0], nil).Times(1)
		deps.store.EXPECT().ListBookings(deps.ctx, bk.ListFilter{}).Return(groupBookings, nil).Times(2)
		for _, member := range groupBookings {
			deps.store.EXPECT().SoftDeleteBooking(deps.ctx, member.ID).Return(nil).Times(1)
		}

		deleted, err := deps.service.DeleteBooking(deps.ctx, "parent1", owner)

		require.Nil(t, err)
		require.Equal(t, 3, deleted)
	})

	t.Run("deleting a member never cascades", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.store.EXPECT().GetBooking(deps.ctx, "member2").Return(groupBookings[1], nil).Times(1)
		deps.store.EXPECT().SoftDeleteBooking(deps.ctx, "member2").Return(nil).Times(1)
		deps.store.EXPECT().ListBookings(deps.ctx, bk.ListFilter{}).Return(groupBookings, nil).Times(1)

		deleted, err := deps.service.DeleteBooking(deps.ctx, "member2", admin)

		require.Nil(t, err)
		require.Equal(t, 1, deleted)
	})

	t.Run("only the owner or an admin may delete", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.store.EXPECT().GetBooking(deps.ctx, "member2").Return(groupBookings[1], nil).Times(1)
		deps.store.EXPECT().SoftDeleteBooking(gomock.Any(), gomock.Any()).Times(0)

		_, err := deps.service.DeleteBooking(deps.ctx, "member2", bk.Actor{ID: "otherID"})

		require.ErrorIs(t, err, bk.ErrNotAllowed)
	})
}

func TestDeleteOccurrence(t *testing.T) {

	t.Run("removes one occurrence from the series", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		deps.store.EXPECT().GetBooking(deps.ctx, "parent1").Return(groupBookings[0], nil).Times(1)
		deps.store.EXPECT().SoftDeleteBooking(deps.ctx, "parent1").Return(nil).Times(1)
		deps.store.EXPECT().ListBookings(deps.ctx, bk.ListFilter{}).Return(groupBookings, nil).Times(1)

		err := deps.service.DeleteOccurrence(deps.ctx, "parent1", bk.Actor{ID: "user1ID"})

		require.Nil(t, err)
	})
}

func TestListBookings(t *testing.T) {

	t.Run("serves the projection when the gateway fails", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		gomock.InOrder(
			deps.store.EXPECT().ListBookings(deps.ctx, bk.ListFilter{}).Return(groupBookings, nil).Times(1),
			deps.store.EXPECT().ListBookings(deps.ctx, bk.ListFilter{}).Return(nil, errors.New("store down")).Times(1),
		)

		warm, err := deps.service.ListBookings(deps.ctx, bk.ListFilter{})
		require.Nil(t, err)
		require.Len(t, warm, 3)

		fallback, err := deps.service.ListBookings(deps.ctx, bk.ListFilter{})
		require.Nil(t, err)
		require.Len(t, fallback, 3)
	})
}

func TestStats(t *testing.T) {

	t.Run("counts per status", func(t *testing.T) {
		ctrl, deps := newTestDeps(t)
		defer ctrl.Finish()

		bookings := []bk.Booking{
			{ID: "1", Status: bk.StatusPending},
			{ID: "2", Status: bk.StatusApproved},
			{ID: "3", Status: bk.StatusApproved},
			{ID: "4", Status: bk.StatusRejected, IsSubscription: true},
		}

		deps.store.EXPECT().ListBookings(deps.ctx, bk.ListFilter{}).Return(bookings, nil).Times(1)

		stats, err := deps.service.Stats(deps.ctx)

		require.Nil(t, err)
		require.Equal(t, bk.Stats{Total: 4, Pending: 1, Approved: 2, Rejected: 1, Subscriptions: 1}, stats)
	})
}
