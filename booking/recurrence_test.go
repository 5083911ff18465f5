package booking_test

import (
	"testing"

	bk "github.com/reitclub/arena-booking-backend/booking"
	"github.com/stretchr/testify/require"
)

func seriesTemplate() bk.Booking {
	return bk.Booking{
		OwnerID:             "user1ID",
		OwnerName:           "user1",
		Arena:               bk.ArenaIndoor,
		Date:                "2025-01-06",
		StartTime:           "10:00",
		EndTime:             "11:00",
		Status:              bk.StatusPending,
		IsSubscription:      true,
		SubscriptionEndDate: "2025-02-03",
	}
}

func TestExpandSeries(t *testing.T) {

	t.Run("four weeks yield five weekly instances", func(t *testing.T) {
		series, err := bk.ExpandSeries(seriesTemplate())

		require.Nil(t, err)
		require.Len(t, series, 5)

		dates := make([]string, 0, len(series))
		for _, instance := range series {
			dates = append(dates, instance.Date)
		}

		require.Equal(t, []string{"2025-01-06", "2025-01-13", "2025-01-20", "2025-01-27", "2025-02-03"}, dates)
	})

	t.Run("first instance is the group parent", func(t *testing.T) {
		series, err := bk.ExpandSeries(seriesTemplate())

		require.Nil(t, err)

		parent := series[0]
		require.NotEmpty(t, parent.ID)
		require.True(t, parent.IsSubscription)
		require.Equal(t, "2025-02-03", parent.SubscriptionEndDate)
		require.Empty(t, parent.ParentSubscriptionID)
		require.Equal(t, bk.KindGroupParent, parent.Kind())
	})

	t.Run("members point back at the parent", func(t *testing.T) {
		series, err := bk.ExpandSeries(seriesTemplate())

		require.Nil(t, err)

		parent := series[0]
		for _, member := range series[1:] {
			require.NotEqual(t, parent.ID, member.ID)
			require.False(t, member.IsSubscription)
			require.Empty(t, member.SubscriptionEndDate)
			require.Equal(t, parent.ID, member.ParentSubscriptionID)
			require.Equal(t, bk.KindGroupMember, member.Kind())
		}
	})

	t.Run("members share the template fields", func(t *testing.T) {
		series, err := bk.ExpandSeries(seriesTemplate())

		require.Nil(t, err)

		for _, instance := range series {
			require.Equal(t, bk.ArenaIndoor, instance.Arena)
			require.Equal(t, "10:00", instance.StartTime)
			require.Equal(t, "11:00", instance.EndTime)
			require.Equal(t, "user1ID", instance.OwnerID)
		}
	})

	t.Run("end date equal to start date fails", func(t *testing.T) {
		template := seriesTemplate()
		template.SubscriptionEndDate = template.Date

		_, err := bk.ExpandSeries(template)

		require.ErrorIs(t, err, bk.ErrInvalidSeriesRange)
	})

	t.Run("partial last week is not scheduled", func(t *testing.T) {
		template := seriesTemplate()
		template.SubscriptionEndDate = "2025-01-10"

		series, err := bk.ExpandSeries(template)

		require.Nil(t, err)
		require.Len(t, series, 1)
		require.Equal(t, "2025-01-06", series[0].Date)
	})
}
