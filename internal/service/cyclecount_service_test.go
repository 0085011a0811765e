package service

import (
	"testing"

	"go-almoxarifado/internal/invariant"
	"go-almoxarifado/internal/model"
	"go-almoxarifado/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCycleCountService(store *repository.MemoryStore) CycleCountService {
	return NewCycleCountService(store.CountSessionRepo(), store, store.MovementRepo(), store, store.AuditRepo(), nil, nil)
}

func TestCycleCountFullFlow(t *testing.T) {
	store := newTestStore(t)
	itemA := seedItem(t, store, "Parafuso", 10)
	itemB := seedItem(t, store, "Porca", 20)
	svc := newCycleCountService(store)

	session, err := svc.Start("monthly", 10, "tester")
	require.NoError(t, err)
	assert.Equal(t, model.CountCounting, session.Status)
	require.Len(t, session.Lines, 2)

	counts := make([]SubmitCountRequest, 0, 2)
	for _, line := range session.Lines {
		switch line.ItemID {
		case itemA.ID:
			assert.Equal(t, 10, line.SystemQuantity)
			counts = append(counts, SubmitCountRequest{LineID: line.ID, CountedQuantity: 8})
		case itemB.ID:
			assert.Equal(t, 20, line.SystemQuantity)
			counts = append(counts, SubmitCountRequest{LineID: line.ID, CountedQuantity: 20})
		}
	}

	session, err = svc.SubmitCounts(session.ID, counts, "tester")
	require.NoError(t, err)
	assert.Equal(t, model.CountReviewing, session.Status)
	for _, line := range session.Lines {
		if line.ItemID == itemA.ID {
			assert.Equal(t, -2, line.Discrepancy)
		}
	}

	committed, movements, err := svc.Commit(session.ID, "tester")
	require.NoError(t, err)
	assert.Equal(t, model.CountCommitted, committed.Status)
	// Only the discrepant line produces an adjustment.
	require.Len(t, movements, 1)
	assert.Equal(t, model.MovementAdjustment, movements[0].Type)
	assert.Equal(t, -2, movements[0].Quantity)

	current, err := store.FindByID(itemA.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 8, current.Quantity)
	current, err = store.FindByID(itemB.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 20, current.Quantity)
}

// A movement landing between count and commit is absorbed: commit adjusts
// against the quantity current at commit time, not the frozen baseline.
func TestCycleCountAbsorbsConcurrentMovement(t *testing.T) {
	store := newTestStore(t)
	item := seedItem(t, store, "Rebite", 10)
	countSvc := newCycleCountService(store)
	ledgerSvc := newLedgerService(store)

	session, err := countSvc.Start("spot check", 5, "tester")
	require.NoError(t, err)
	require.Len(t, session.Lines, 1)
	line := session.Lines[0]
	assert.Equal(t, 10, line.SystemQuantity)

	// Counter sees 9 on the shelf.
	session, err = countSvc.SubmitCounts(session.ID,
		[]SubmitCountRequest{{LineID: line.ID, CountedQuantity: 9}}, "tester")
	require.NoError(t, err)

	// Meanwhile 3 units go out through the ledger.
	_, _, err = ledgerSvc.RecordMovement(&MovementRequest{
		ItemID:   item.ID,
		Type:     model.MovementOut,
		Quantity: 3,
	}, "someone else")
	require.NoError(t, err)

	// The baseline stays frozen at 10.
	stored, err := countSvc.GetByID(session.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, stored.Lines[0].SystemQuantity)

	_, movements, err := countSvc.Commit(session.ID, "tester")
	require.NoError(t, err)
	require.Len(t, movements, 1)
	// Quantity is 7 at commit time; the counted 9 becomes a +2 adjustment.
	assert.Equal(t, 2, movements[0].Quantity)
	assert.Equal(t, 9, movements[0].Balance)

	current, err := store.FindByID(item.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 9, current.Quantity)
}

func TestRecountRebaselinesLine(t *testing.T) {
	store := newTestStore(t)
	item := seedItem(t, store, "Mola", 10)
	countSvc := newCycleCountService(store)
	ledgerSvc := newLedgerService(store)

	session, err := countSvc.Start("spot check", 5, "tester")
	require.NoError(t, err)
	line := session.Lines[0]

	session, err = countSvc.SubmitCounts(session.ID,
		[]SubmitCountRequest{{LineID: line.ID, CountedQuantity: 4}}, "tester")
	require.NoError(t, err)
	assert.Equal(t, -6, session.Lines[0].Discrepancy)

	_, _, err = ledgerSvc.RecordMovement(&MovementRequest{
		ItemID:   item.ID,
		Type:     model.MovementOut,
		Quantity: 5,
	}, "someone else")
	require.NoError(t, err)

	// The re-baselined line picks up the current quantity and loses its count.
	session, err = countSvc.Recount(session.ID, line.ID, "tester")
	require.NoError(t, err)
	assert.Equal(t, 5, session.Lines[0].SystemQuantity)
	assert.Nil(t, session.Lines[0].CountedQuantity)
	assert.Equal(t, 0, session.Lines[0].Discrepancy)

	_, err = countSvc.Recount(session.ID, session.ID, "tester")
	assert.ErrorIs(t, err, invariant.ErrInvalidInput)
}

func TestCycleCountStateMachine(t *testing.T) {
	store := newTestStore(t)
	seedItem(t, store, "Arruela", 5)
	svc := newCycleCountService(store)

	session, err := svc.Start("audit", 5, "tester")
	require.NoError(t, err)

	// Commit straight from counting is not allowed.
	_, _, err = svc.Commit(session.ID, "tester")
	assert.ErrorIs(t, err, invariant.ErrInvalidState)

	require.NoError(t, svc.Cancel(session.ID, "tester"))
	// Cancelling twice is fine.
	require.NoError(t, svc.Cancel(session.ID, "tester"))

	// A cancelled session accepts nothing further.
	_, err = svc.SubmitCounts(session.ID,
		[]SubmitCountRequest{{LineID: session.Lines[0].ID, CountedQuantity: 5}}, "tester")
	assert.ErrorIs(t, err, invariant.ErrInvalidState)
	_, _, err = svc.Commit(session.ID, "tester")
	assert.ErrorIs(t, err, invariant.ErrInvalidState)
}

func TestSubmitCountsValidation(t *testing.T) {
	store := newTestStore(t)
	seedItem(t, store, "Fita", 5)
	svc := newCycleCountService(store)

	session, err := svc.Start("audit", 5, "tester")
	require.NoError(t, err)

	_, err = svc.SubmitCounts(session.ID,
		[]SubmitCountRequest{{LineID: session.Lines[0].ID, CountedQuantity: -1}}, "tester")
	assert.ErrorIs(t, err, invariant.ErrInvalidInput)

	_, err = svc.SubmitCounts(session.ID,
		[]SubmitCountRequest{{LineID: session.ID, CountedQuantity: 1}}, "tester")
	assert.ErrorIs(t, err, invariant.ErrInvalidInput)

	// A committed session is terminal.
	_, err = svc.SubmitCounts(session.ID,
		[]SubmitCountRequest{{LineID: session.Lines[0].ID, CountedQuantity: 5}}, "tester")
	require.NoError(t, err)
	_, _, err = svc.Commit(session.ID, "tester")
	require.NoError(t, err)
	assert.ErrorIs(t, svc.Cancel(session.ID, "tester"), invariant.ErrInvalidState)
}

func TestHeuristicSelectorPrefersLowStock(t *testing.T) {
	low := model.Item{Quantity: 1, ReorderPoint: 5}
	low.EnsureBase()
	ok := model.Item{Quantity: 50, ReorderPoint: 5}
	ok.EnsureBase()
	busy := model.Item{Quantity: 40, ReorderPoint: 5}
	busy.EnsureBase()

	moves := []model.Movement{{ItemID: busy.ID, Type: model.MovementOut, Quantity: -2}}

	picked := HeuristicSelector{}.Select([]model.Item{ok, busy, low}, moves, 2)
	require.Len(t, picked, 2)
	assert.Equal(t, low.ID, picked[0].ID)
	assert.Equal(t, busy.ID, picked[1].ID)
}
