package state

import (
	"testing"

	"patientcall/internal/models"
	"patientcall/internal/realtime"
)

func request(id string, status models.RequestStatus) models.CareRequest {
	return models.CareRequest{
		ID:          id,
		Description: "water",
		Priority:    models.PriorityMedium,
		Status:      status,
	}
}

func TestCompletedUpdateRemovesAndCounts(t *testing.T) {
	board := NewBoard()
	board.Reload([]models.CareRequest{
		request("r1", models.StatusInProgress),
		request("r2", models.StatusPending),
	})

	board.ApplyStatusUpdate(realtime.StatusUpdateEvent{
		Request:   request("r1", models.StatusCompleted),
		OldStatus: models.StatusInProgress,
		NewStatus: models.StatusCompleted,
	})

	active := board.Active()
	if len(active) != 1 || active[0].ID != "r2" {
		t.Fatalf("active = %+v, want only r2", active)
	}
	if got := board.CompletedCount(); got != 1 {
		t.Errorf("completed count = %d, want 1", got)
	}
}

func TestDuplicateCompletedEventCountsTwice(t *testing.T) {
	// The channel gives no delivery guarantee and the board does not dedup;
	// a repeated event inflates the counter until the next reload.
	board := NewBoard()
	board.Reload([]models.CareRequest{request("r1", models.StatusInProgress)})

	ev := realtime.StatusUpdateEvent{
		Request:   request("r1", models.StatusCompleted),
		OldStatus: models.StatusInProgress,
		NewStatus: models.StatusCompleted,
	}
	board.ApplyStatusUpdate(ev)
	board.ApplyStatusUpdate(ev)

	if got := board.CompletedCount(); got != 2 {
		t.Errorf("completed count = %d, want 2", got)
	}
	if len(board.Active()) != 0 {
		t.Errorf("active = %+v, want empty", board.Active())
	}
}

func TestStatusUpdatesAreLastAppliedWins(t *testing.T) {
	board := NewBoard()
	board.Reload([]models.CareRequest{request("r1", models.StatusPending)})

	board.ApplyStatusUpdate(realtime.StatusUpdateEvent{
		Request:   request("r1", models.StatusAssigned),
		OldStatus: models.StatusPending,
		NewStatus: models.StatusAssigned,
	})
	board.ApplyStatusUpdate(realtime.StatusUpdateEvent{
		Request:   request("r1", models.StatusInProgress),
		OldStatus: models.StatusAssigned,
		NewStatus: models.StatusInProgress,
	})

	active := board.Active()
	if len(active) != 1 {
		t.Fatalf("active = %+v, want one entry", active)
	}
	if active[0].Status != models.StatusInProgress {
		t.Errorf("status = %s, want in_progress", active[0].Status)
	}
}

func TestCancelledUpdateRemovesWithoutCounting(t *testing.T) {
	board := NewBoard()
	board.Reload([]models.CareRequest{request("r1", models.StatusPending)})

	board.ApplyStatusUpdate(realtime.StatusUpdateEvent{
		Request:   request("r1", models.StatusCancelled),
		OldStatus: models.StatusPending,
		NewStatus: models.StatusCancelled,
	})

	if len(board.Active()) != 0 {
		t.Errorf("active = %+v, want empty", board.Active())
	}
	if got := board.CompletedCount(); got != 0 {
		t.Errorf("completed count = %d, want 0", got)
	}
}

func TestAddUpsertsById(t *testing.T) {
	board := NewBoard()
	board.Add(request("r1", models.StatusPending))
	board.Add(request("r1", models.StatusAssigned))
	board.Add(request("r2", models.StatusPending))

	active := board.Active()
	if len(active) != 2 {
		t.Fatalf("active = %+v, want two entries", active)
	}
	if active[0].Status != models.StatusAssigned {
		t.Errorf("r1 status = %s, want assigned after upsert", active[0].Status)
	}
}

func TestReloadReconcilesOptimisticDrift(t *testing.T) {
	board := NewBoard()
	board.Reload([]models.CareRequest{request("r1", models.StatusInProgress)})

	// Duplicate delivery drives the counter to 2.
	ev := realtime.StatusUpdateEvent{
		Request:   request("r1", models.StatusCompleted),
		OldStatus: models.StatusInProgress,
		NewStatus: models.StatusCompleted,
	}
	board.ApplyStatusUpdate(ev)
	board.ApplyStatusUpdate(ev)

	board.Reload([]models.CareRequest{
		request("r1", models.StatusCompleted),
		request("r2", models.StatusPending),
		request("r3", models.StatusCancelled),
	})

	if got := board.CompletedCount(); got != 1 {
		t.Errorf("completed count after reload = %d, want server truth 1", got)
	}
	active := board.Active()
	if len(active) != 1 || active[0].ID != "r2" {
		t.Errorf("active = %+v, want only r2", active)
	}
}
