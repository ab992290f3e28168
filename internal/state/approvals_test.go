package state

import (
	"testing"

	"patientcall/internal/models"
)

func application(id string, status models.ApplicationStatus) models.NurseApplication {
	return models.NurseApplication{
		ID:        id,
		FullName:  "Nurse " + id,
		Email:     id + "@hospital.local",
		NurseRole: "general",
		Status:    status,
	}
}

func TestMarkApprovedRemovesExactlyOne(t *testing.T) {
	queue := NewApprovalQueue()
	queue.Reload([]models.NurseApplication{
		application("n1", models.ApplicationPending),
		application("n2", models.ApplicationPending),
		application("n3", models.ApplicationPending),
	})

	if !queue.MarkApproved("n2") {
		t.Fatal("MarkApproved returned false for pending id")
	}

	pending := queue.Pending()
	if len(pending) != 2 {
		t.Fatalf("pending = %+v, want two entries", pending)
	}
	if pending[0].ID != "n1" || pending[1].ID != "n3" {
		t.Errorf("remaining ids = %s,%s; want n1,n3", pending[0].ID, pending[1].ID)
	}
	if got := queue.ActiveNurses(); got != 1 {
		t.Errorf("active nurses = %d, want 1", got)
	}
}

func TestMarkApprovedUnknownIdIsNoOp(t *testing.T) {
	// A failed transition call never reaches the queue; this covers the
	// defensive path where the id is already gone.
	queue := NewApprovalQueue()
	queue.Reload([]models.NurseApplication{application("n1", models.ApplicationPending)})

	if queue.MarkApproved("missing") {
		t.Fatal("MarkApproved returned true for unknown id")
	}
	if len(queue.Pending()) != 1 {
		t.Errorf("pending list changed: %+v", queue.Pending())
	}
	if queue.ActiveNurses() != 0 {
		t.Errorf("active nurses = %d, want 0", queue.ActiveNurses())
	}
}

func TestMarkRejectedRemovesWithoutCounting(t *testing.T) {
	queue := NewApprovalQueue()
	queue.Reload([]models.NurseApplication{
		application("n1", models.ApplicationPending),
		application("n2", models.ApplicationPending),
	})

	if !queue.MarkRejected("n1") {
		t.Fatal("MarkRejected returned false for pending id")
	}
	if len(queue.Pending()) != 1 {
		t.Errorf("pending = %+v, want one entry", queue.Pending())
	}
	if queue.ActiveNurses() != 0 {
		t.Errorf("active nurses = %d, want 0", queue.ActiveNurses())
	}
}

func TestReloadRecomputesActiveCount(t *testing.T) {
	queue := NewApprovalQueue()
	queue.Reload([]models.NurseApplication{application("n1", models.ApplicationPending)})
	queue.MarkApproved("n1")

	// Server truth: the approval landed plus one legacy approved nurse.
	queue.Reload([]models.NurseApplication{
		application("n1", models.ApplicationApproved),
		application("n2", models.ApplicationApproved),
		application("n3", models.ApplicationPending),
		application("n4", models.ApplicationRejected),
	})

	if got := queue.ActiveNurses(); got != 2 {
		t.Errorf("active nurses = %d, want 2", got)
	}
	pending := queue.Pending()
	if len(pending) != 1 || pending[0].ID != "n3" {
		t.Errorf("pending = %+v, want only n3", pending)
	}
}
