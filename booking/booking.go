package booking

import "time"

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

type Arena string

const (
	ArenaIndoor  Arena = "indoor"
	ArenaOutdoor Arena = "outdoor"
)

type Type string

const (
	TypeMember      Type = "member"
	TypeLesson      Type = "lesson"
	TypeMaintenance Type = "maintenance"
	TypeCourse      Type = "course"
	TypeEvent       Type = "event"
)

// Kind classifies a booking's position in a recurrence group.
type Kind string

const (
	KindStandalone  Kind = "standalone"
	KindGroupParent Kind = "group-parent"
	KindGroupMember Kind = "group-member"
)

// Booking is a single arena reservation. A weekly subscription is stored as
// one group parent (IsSubscription set, SubscriptionEndDate set) plus one
// booking per following week, each pointing back via ParentSubscriptionID.
type Booking struct {
	ID                   string     `json:"id"`
	OwnerID              string     `json:"ownerId"`
	OwnerName            string     `json:"ownerName"`
	Arena                Arena      `json:"arena"`
	Date                 string     `json:"date"`      // YYYY-MM-DD
	StartTime            string     `json:"startTime"` // HH:MM
	EndTime              string     `json:"endTime"`   // HH:MM
	Status               Status     `json:"status"`
	Purpose              string     `json:"purpose,omitempty"`
	RakeRequired         bool       `json:"rakeRequired"`
	SharedRiding         bool       `json:"sharedRiding"`
	CurrentRiders        int        `json:"currentRiders"`
	MaxRiders            int        `json:"maxRiders"`
	BookingType          Type       `json:"bookingType"`
	IsSubscription       bool       `json:"isSubscription"`
	SubscriptionEndDate  string     `json:"subscriptionEndDate,omitempty"`
	ParentSubscriptionID string     `json:"parentSubscriptionId,omitempty"`
	IsDeleted            bool       `json:"isDeleted"`
	DeletedAt            *time.Time `json:"deletedAt,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

// Kind derives the group role from the subscription fields, so callers never
// branch on id shapes.
func (b Booking) Kind() Kind {
	switch {
	case b.ParentSubscriptionID != "":
		return KindGroupMember
	case b.IsSubscription:
		return KindGroupParent
	default:
		return KindStandalone
	}
}

// MaxRidersFor derives the rider capacity from the shared-riding decision.
func MaxRidersFor(sharedRiding bool) int {
	if sharedRiding {
		return 6
	}
	return 1
}

// Actor identifies who is performing an operation, for ownership checks.
type Actor struct {
	ID    string
	Admin bool
}

// ListFilter narrows a gateway listing. The zero value lists every
// non-deleted booking, newest-created first.
type ListFilter struct {
	OwnerID        string
	IncludeDeleted bool
}

// Stats are the dashboard counters over non-deleted bookings.
type Stats struct {
	Total         int `json:"total"`
	Pending       int `json:"pending"`
	Approved      int `json:"approved"`
	Rejected      int `json:"rejected"`
	Subscriptions int `json:"subscriptions"`
}
