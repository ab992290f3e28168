// Package state holds the screen-local caches that push events and refreshes
// feed: the live request board and the admin approval queue. Both are
// read-mostly mirrors of server truth; pushed updates are applied
// last-applied-wins by id, and a full reload reconciles any optimistic
// drift.
package state

import (
	"sync"

	"patientcall/internal/models"
	"patientcall/internal/realtime"
)

// Board is the active-request list a dashboard works from, plus the
// completed-request counter it displays.
type Board struct {
	mu             sync.Mutex
	active         []models.CareRequest
	completedCount int
}

func NewBoard() *Board {
	return &Board{}
}

// Add upserts a request, for new_request events. A second event for the same
// id replaces the earlier entry.
func (b *Board) Add(req models.CareRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.upsert(req)
}

// ApplyAssignment replaces the matching entry with the assigned request, or
// adds it when the board has not seen the request yet.
func (b *Board) ApplyAssignment(ev realtime.AssignmentEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.upsert(ev.Request)
}

// ApplyStatusUpdate applies a pushed status transition by id. A completed
// update removes the entry from the active list and increments the completed
// counter by exactly one per event; the channel makes no delivery guarantee,
// so a duplicated event counts twice until the next reload reconciles. A
// cancelled update just removes the entry. Anything else replaces it in
// place.
func (b *Board) ApplyStatusUpdate(ev realtime.StatusUpdateEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch ev.NewStatus {
	case models.StatusCompleted:
		b.remove(ev.Request.ID)
		b.completedCount++
	case models.StatusCancelled:
		b.remove(ev.Request.ID)
	default:
		req := ev.Request
		req.Status = ev.NewStatus
		b.upsert(req)
	}
}

// Reload replaces the board with a server snapshot: active entries are the
// non-terminal requests, and the completed counter is recomputed from server
// truth, absorbing any optimistic drift.
func (b *Board) Reload(requests []models.CareRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.active = b.active[:0]
	completed := 0
	for _, req := range requests {
		switch {
		case req.Status == models.StatusCompleted:
			completed++
		case req.Status.Terminal():
			// cancelled: tracked nowhere
		default:
			b.active = append(b.active, req)
		}
	}
	b.completedCount = completed
}

// Active returns a copy of the active list.
func (b *Board) Active() []models.CareRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.CareRequest, len(b.active))
	copy(out, b.active)
	return out
}

func (b *Board) CompletedCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.completedCount
}

func (b *Board) upsert(req models.CareRequest) {
	for i := range b.active {
		if b.active[i].ID == req.ID {
			b.active[i] = req
			return
		}
	}
	b.active = append(b.active, req)
}

func (b *Board) remove(id string) {
	for i := range b.active {
		if b.active[i].ID == id {
			b.active = append(b.active[:i], b.active[i+1:]...)
			return
		}
	}
}
