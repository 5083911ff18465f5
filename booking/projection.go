package booking

import (
	"sort"
	"sync"
	"time"
)

// Projection is the in-memory booking collection backing the UI-visible
// state. It is updated optimistically after each persistence result and
// reconciled by best-effort refreshes; when a refresh fails the optimistic
// state is kept rather than regressing to a stale snapshot.
//
// Handlers run concurrently, so access is guarded even though each logical
// operation has a single writer.
type Projection struct {
	mu   sync.RWMutex
	byID map[string]Booking
}

func NewProjection() *Projection {
	return &Projection{byID: make(map[string]Booking)}
}

// ReplaceAll swaps in a fresh snapshot from the gateway.
func (p *Projection) ReplaceAll(bookings []Booking) {
	next := make(map[string]Booking, len(bookings))
	for _, b := range bookings {
		next[b.ID] = b
	}

	p.mu.Lock()
	p.byID = next
	p.mu.Unlock()
}

func (p *Projection) Upsert(bookings ...Booking) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, b := range bookings {
		p.byID[b.ID] = b
	}
}

func (p *Projection) Get(id string) (Booking, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	b, ok := p.byID[id]
	return b, ok
}

// SetStatus applies a status transition optimistically. A nil sharedRiding
// leaves the capacity decision untouched.
func (p *Projection) SetStatus(id string, status Status, sharedRiding *bool, at time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	b, ok := p.byID[id]
	if !ok {
		return
	}

	b.Status = status
	if sharedRiding != nil {
		b.SharedRiding = *sharedRiding
		b.MaxRiders = MaxRidersFor(*sharedRiding)
	}
	b.UpdatedAt = at
	p.byID[id] = b
}

func (p *Projection) MarkDeleted(id string, at time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	b, ok := p.byID[id]
	if !ok {
		return
	}

	b.IsDeleted = true
	b.DeletedAt = &at
	b.UpdatedAt = at
	p.byID[id] = b
}

// List snapshots the projection with the same contract as the gateway
// listing: soft-deleted bookings excluded unless asked for, newest-created
// first.
func (p *Projection) List(filter ListFilter) []Booking {
	p.mu.RLock()
	bookings := make([]Booking, 0, len(p.byID))
	for _, b := range p.byID {
		if b.IsDeleted && !filter.IncludeDeleted {
			continue
		}
		if filter.OwnerID != "" && b.OwnerID != filter.OwnerID {
			continue
		}
		bookings = append(bookings, b)
	}
	p.mu.RUnlock()

	sort.Slice(bookings, func(i, j int) bool {
		if !bookings[i].CreatedAt.Equal(bookings[j].CreatedAt) {
			return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
		}
		return bookings[i].ID > bookings[j].ID
	})

	return bookings
}
