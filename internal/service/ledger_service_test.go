package service

import (
	"testing"

	"go-almoxarifado/internal/invariant"
	"go-almoxarifado/internal/model"
	"go-almoxarifado/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *repository.MemoryStore {
	t.Helper()
	store := repository.NewMemoryStore()
	require.NoError(t, store.AddCategories([]string{"Ferramentas", model.DefaultCategory}))
	return store
}

func seedItem(t *testing.T, store *repository.MemoryStore, name string, quantity int) *model.Item {
	t.Helper()
	item := &model.Item{Name: name, Category: "Ferramentas", Quantity: quantity, ReorderPoint: 2}
	require.NoError(t, store.Create(item, false))
	return item
}

func newLedgerService(store *repository.MemoryStore) LedgerService {
	return NewLedgerService(store, store.MovementRepo(), nil)
}

func TestRecordMovementOutboundThenRejectOverdraw(t *testing.T) {
	store := newTestStore(t)
	item := seedItem(t, store, "Chave de fenda", 10)
	svc := newLedgerService(store)

	movement, updated, err := svc.RecordMovement(&MovementRequest{
		ItemID:   item.ID,
		Type:     model.MovementOut,
		Quantity: 4,
	}, "tester")
	require.NoError(t, err)
	assert.Equal(t, -4, movement.Quantity)
	assert.Equal(t, 6, movement.Balance)
	assert.Equal(t, 6, updated.Quantity)

	// 10 more out of a balance of 6 must be rejected and change nothing.
	_, _, err = svc.RecordMovement(&MovementRequest{
		ItemID:   item.ID,
		Type:     model.MovementOut,
		Quantity: 10,
	}, "tester")
	require.Error(t, err)
	assert.ErrorIs(t, err, invariant.ErrNegativeStock)

	current, err := store.FindByID(item.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 6, current.Quantity)

	history, err := svc.History(item.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestAdjustToCurrentQuantityStillWritesMovement(t *testing.T) {
	store := newTestStore(t)
	item := seedItem(t, store, "Alicate", 6)
	svc := newLedgerService(store)

	movement, updated, err := svc.AdjustQuantity(item.ID, 6, "cycle count", false, "tester")
	require.NoError(t, err)
	assert.Equal(t, model.MovementAdjustment, movement.Type)
	assert.Equal(t, 0, movement.Quantity)
	assert.Equal(t, 6, movement.Balance)
	assert.Equal(t, 6, updated.Quantity)

	history, err := svc.History(item.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 0, history[0].Quantity)
}

func TestAdjustQuantityRejectsNegativeTarget(t *testing.T) {
	store := newTestStore(t)
	item := seedItem(t, store, "Martelo", 3)
	svc := newLedgerService(store)

	_, _, err := svc.AdjustQuantity(item.ID, -1, "", false, "tester")
	assert.ErrorIs(t, err, invariant.ErrNegativeStock)
}

func TestRecordMovementValidation(t *testing.T) {
	store := newTestStore(t)
	item := seedItem(t, store, "Serra", 5)
	svc := newLedgerService(store)

	cases := []struct {
		name string
		req  MovementRequest
	}{
		{"missing item", MovementRequest{Type: model.MovementIn, Quantity: 1}},
		{"zero quantity", MovementRequest{ItemID: item.ID, Type: model.MovementIn, Quantity: 0}},
		{"negative quantity", MovementRequest{ItemID: item.ID, Type: model.MovementIn, Quantity: -3}},
		{"adjustment type not allowed here", MovementRequest{ItemID: item.ID, Type: model.MovementAdjustment, Quantity: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.RecordMovement(&tc.req, "tester")
			assert.ErrorIs(t, err, invariant.ErrInvalidInput)
		})
	}
}

func TestRecordMovementUnknownItem(t *testing.T) {
	store := newTestStore(t)
	svc := newLedgerService(store)

	_, _, err := svc.RecordMovement(&MovementRequest{
		ItemID:   uuid.New(),
		Type:     model.MovementIn,
		Quantity: 1,
	}, "tester")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// Replaying the signed quantities from zero must land on the stored quantity,
// and each entry's balance must match the running sum.
func TestLedgerReplayReconstructsQuantity(t *testing.T) {
	store := newTestStore(t)
	item := seedItem(t, store, "Parafusadeira", 0)
	svc := newLedgerService(store)

	steps := []struct {
		movementType model.MovementType
		quantity     int
	}{
		{model.MovementIn, 20},
		{model.MovementOut, 7},
		{model.MovementIn, 3},
		{model.MovementOut, 16},
	}
	for _, step := range steps {
		_, _, err := svc.RecordMovement(&MovementRequest{
			ItemID:   item.ID,
			Type:     step.movementType,
			Quantity: step.quantity,
		}, "tester")
		require.NoError(t, err)
	}
	_, _, err := svc.AdjustQuantity(item.ID, 5, "recount", false, "tester")
	require.NoError(t, err)

	history, err := svc.History(item.ID)
	require.NoError(t, err)

	running := 0
	for _, mv := range history {
		running += mv.Quantity
		assert.Equal(t, mv.Balance, running)
	}

	current, err := store.FindByID(item.ID, false)
	require.NoError(t, err)
	assert.Equal(t, current.Quantity, running)
	assert.Equal(t, 5, current.Quantity)
}

// Every accepted ledger write leaves exactly one audit entry behind.
func TestLedgerWritesAudit(t *testing.T) {
	store := newTestStore(t)
	item := seedItem(t, store, "Trena", 2)
	svc := newLedgerService(store)

	_, _, err := svc.RecordMovement(&MovementRequest{
		ItemID:   item.ID,
		Type:     model.MovementIn,
		Quantity: 5,
	}, "tester")
	require.NoError(t, err)
	_, _, err = svc.AdjustQuantity(item.ID, 4, "", false, "tester")
	require.NoError(t, err)

	logs, err := store.FindAllAuditLogs()
	require.NoError(t, err)
	require.Len(t, logs, 2)
	// Newest first.
	assert.Equal(t, "adjustment", logs[0].Action)
	assert.Equal(t, "movement:in", logs[1].Action)
}
