package booking

import (
	"errors"
	"fmt"
	"strings"
)

var ErrBookingNotFound = errors.New("booking not found")

var ErrNotAllowed = errors.New("not allowed to perform this operation")

var ErrInvalidSeriesRange = errors.New("subscription end date must be after the start date")

// ValidationError collects every submission problem so the caller can show
// them all at once instead of fixing one field at a time.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid booking submission: " + strings.Join(e.Problems, "; ")
}

// MemberFailure records one failed persistence call during a group fan-out.
type MemberFailure struct {
	ID  string
	Err error
}

// PartialError reports a fan-out where at least one member succeeded and at
// least one failed. Applied changes are not rolled back.
type PartialError struct {
	Op       string
	Applied  []string
	Failures []MemberFailure
}

func (e *PartialError) Error() string {
	total := len(e.Applied) + len(e.Failures)
	return fmt.Sprintf("%s partially failed: %d of %d members failed", e.Op, len(e.Failures), total)
}

// FailedIDs lists the members the fan-out could not update.
func (e *PartialError) FailedIDs() []string {
	ids := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		ids = append(ids, f.ID)
	}
	return ids
}
