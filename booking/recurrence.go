package booking

import (
	"time"

	"github.com/google/uuid"
)

// ExpandSeries turns a recurring submission into the full set of weekly
// instances, from the template's date through its subscription end date
// inclusive. The first instance is the group parent and its id doubles as
// the group identifier; every later instance points back at it through
// ParentSubscriptionID. All other template fields are shared unchanged.
//
// The whole series is computed eagerly so the caller can persist it as one
// submission. The range must already have passed ValidateSubmission; an end
// date that is not strictly after the start date fails with
// ErrInvalidSeriesRange rather than producing a short series.
func ExpandSeries(template Booking) ([]Booking, error) {
	start, err := parseDate(template.Date)
	if err != nil {
		return nil, err
	}

	end, err := parseDate(template.SubscriptionEndDate)
	if err != nil {
		return nil, err
	}

	if !end.After(start) {
		return nil, ErrInvalidSeriesRange
	}

	parentID := uuid.NewString()

	var series []Booking
	for date, week := start, 0; !date.After(end); date, week = date.AddDate(0, 0, 7), week+1 {
		instance := template
		instance.Date = date.Format(time.DateOnly)

		if week == 0 {
			instance.ID = parentID
			instance.IsSubscription = true
			instance.ParentSubscriptionID = ""
		} else {
			instance.ID = uuid.NewString()
			instance.IsSubscription = false
			instance.SubscriptionEndDate = ""
			instance.ParentSubscriptionID = parentID
		}

		series = append(series, instance)
	}

	return series, nil
}
