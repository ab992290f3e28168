package state

import (
	"sync"

	"patientcall/internal/models"
)

// ApprovalQueue is the admin screen's pending-nurse list plus the
// active-nurses counter. Approve/reject are server-authoritative: the caller
// issues the transition first and mutates this queue only after a confirmed
// success, so a failed call leaves the list untouched.
type ApprovalQueue struct {
	mu           sync.Mutex
	pending      []models.NurseApplication
	activeNurses int
}

func NewApprovalQueue() *ApprovalQueue {
	return &ApprovalQueue{}
}

// Reload replaces the queue with a server snapshot. The active-nurse counter
// is recomputed from the approved records, reconciling earlier optimistic
// increments.
func (q *ApprovalQueue) Reload(apps []models.NurseApplication) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.pending = q.pending[:0]
	active := 0
	for _, app := range apps {
		switch app.Status {
		case models.ApplicationPending:
			q.pending = append(q.pending, app)
		case models.ApplicationApproved:
			active++
		}
	}
	q.activeNurses = active
}

// MarkApproved removes exactly the given record from the pending list and
// bumps the active-nurse counter. An unknown id is a no-op. The increment is
// optimistic and stands until the next Reload.
func (q *ApprovalQueue) MarkApproved(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.remove(id) {
		return false
	}
	q.activeNurses++
	return true
}

// MarkRejected removes exactly the given record from the pending list.
func (q *ApprovalQueue) MarkRejected(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.remove(id)
}

func (q *ApprovalQueue) Pending() []models.NurseApplication {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]models.NurseApplication, len(q.pending))
	copy(out, q.pending)
	return out
}

func (q *ApprovalQueue) ActiveNurses() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.activeNurses
}

func (q *ApprovalQueue) remove(id string) bool {
	for i := range q.pending {
		if q.pending[i].ID == id {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return true
		}
	}
	return false
}
