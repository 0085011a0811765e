package service

import (
	"strings"
	"testing"

	"go-almoxarifado/internal/invariant"
	"go-almoxarifado/internal/model"
	"go-almoxarifado/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorkflowService(store *repository.MemoryStore) WorkflowService {
	return NewWorkflowService(store.PurchaseOrderRepo(), store.PickingListRepo(),
		store.ReservationRepo(), store, store.AuditRepo(), nil)
}

func seedSupplier(t *testing.T, store *repository.MemoryStore) *model.Supplier {
	t.Helper()
	supplier := &model.Supplier{Name: "Fornecedor"}
	require.NoError(t, store.CreateSupplier(supplier))
	return supplier
}

func TestPurchaseOrderLifecycle(t *testing.T) {
	store := newTestStore(t)
	item := seedItem(t, store, "Parafuso", 2)
	supplier := seedSupplier(t, store)
	svc := newWorkflowService(store)

	po, err := svc.CreatePurchaseOrder(&PurchaseOrderRequest{
		SupplierID: supplier.ID,
		Lines:      []PurchaseOrderLineReq{{ItemID: item.ID, Quantity: 10}},
	}, "tester")
	require.NoError(t, err)
	assert.Equal(t, model.POStatusDraft, po.Status)
	assert.True(t, strings.HasPrefix(po.PONumber, "PO-"))

	// Receiving a draft is invalid; it must be submitted first.
	_, _, err = svc.ReceivePurchaseOrder(po.ID, "tester")
	assert.ErrorIs(t, err, invariant.ErrInvalidState)

	po, err = svc.SubmitPurchaseOrder(po.ID, "tester")
	require.NoError(t, err)
	assert.Equal(t, model.POStatusSubmitted, po.Status)

	received, movements, err := svc.ReceivePurchaseOrder(po.ID, "tester")
	require.NoError(t, err)
	assert.Equal(t, model.POStatusReceived, received.Status)
	require.Len(t, movements, 1)
	assert.Equal(t, model.MovementIn, movements[0].Type)
	assert.Equal(t, 10, movements[0].Quantity)
	assert.Equal(t, 12, movements[0].Balance)
	assert.Equal(t, 10, received.Lines[0].ReceivedQuantity)

	current, err := store.FindByID(item.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 12, current.Quantity)

	// Terminal states stay terminal.
	_, err = svc.SubmitPurchaseOrder(po.ID, "tester")
	assert.ErrorIs(t, err, invariant.ErrInvalidState)
	_, err = svc.CancelPurchaseOrder(po.ID, "tester")
	assert.ErrorIs(t, err, invariant.ErrInvalidState)
}

func TestPickingListCompleteBooksOutbound(t *testing.T) {
	store := newTestStore(t)
	item := seedItem(t, store, "Cabo", 10)
	svc := newWorkflowService(store)

	list, err := svc.CreatePickingList(&PickingListRequest{
		Lines: []PickingListLineReq{{ItemID: item.ID, RequestedQuantity: 4}},
	}, "tester")
	require.NoError(t, err)
	assert.Equal(t, model.PickingOpen, list.Status)

	// Completing before starting is invalid.
	_, _, err = svc.CompletePickingList(list.ID, nil, "tester")
	assert.ErrorIs(t, err, invariant.ErrInvalidState)

	list, err = svc.StartPickingList(list.ID, "tester")
	require.NoError(t, err)

	// Pick 3 of the 4 requested.
	completed, movements, err := svc.CompletePickingList(list.ID,
		map[uuid.UUID]int{list.Lines[0].ID: 3}, "tester")
	require.NoError(t, err)
	assert.Equal(t, model.PickingCompleted, completed.Status)
	assert.Equal(t, 3, completed.Lines[0].PickedQuantity)
	require.Len(t, movements, 1)
	assert.Equal(t, -3, movements[0].Quantity)

	current, err := store.FindByID(item.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 7, current.Quantity)
}

func TestPickingListFulfillsLinkedReservation(t *testing.T) {
	store := newTestStore(t)
	item := seedItem(t, store, "Sensor", 10)
	resSvc := newReservationService(store)
	svc := newWorkflowService(store)

	res, err := resSvc.ReserveItem(&ReserveItemRequest{ItemID: item.ID, Quantity: 4}, "tester")
	require.NoError(t, err)

	list, err := svc.CreatePickingList(&PickingListRequest{
		Lines: []PickingListLineReq{{
			ItemID:            item.ID,
			RequestedQuantity: 4,
			ReservationID:     &res.ID,
		}},
	}, "tester")
	require.NoError(t, err)
	_, err = svc.StartPickingList(list.ID, "tester")
	require.NoError(t, err)

	_, movements, err := svc.CompletePickingList(list.ID, nil, "tester")
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, -4, movements[0].Quantity)

	// The reservation converted to an outbound movement exactly once.
	updated, err := store.FindReservationByID(res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationFulfilled, updated.Status)

	current, err := store.FindByID(item.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 6, current.Quantity)

	available, err := resSvc.AvailableQuantity(item.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 6, available)
}

func TestCompletePickingListRejectsOverpick(t *testing.T) {
	store := newTestStore(t)
	item := seedItem(t, store, "Rolamento", 10)
	svc := newWorkflowService(store)

	list, err := svc.CreatePickingList(&PickingListRequest{
		Lines: []PickingListLineReq{{ItemID: item.ID, RequestedQuantity: 2}},
	}, "tester")
	require.NoError(t, err)
	_, err = svc.StartPickingList(list.ID, "tester")
	require.NoError(t, err)

	_, _, err = svc.CompletePickingList(list.ID,
		map[uuid.UUID]int{list.Lines[0].ID: 3}, "tester")
	assert.ErrorIs(t, err, invariant.ErrInvalidInput)
}

func TestCreatePurchaseOrderValidation(t *testing.T) {
	store := newTestStore(t)
	supplier := seedSupplier(t, store)
	svc := newWorkflowService(store)

	_, err := svc.CreatePurchaseOrder(&PurchaseOrderRequest{SupplierID: supplier.ID}, "tester")
	assert.ErrorIs(t, err, invariant.ErrInvalidInput)

	_, err = svc.CreatePurchaseOrder(&PurchaseOrderRequest{
		Lines: []PurchaseOrderLineReq{{ItemID: uuid.New(), Quantity: 1}},
	}, "tester")
	assert.ErrorIs(t, err, invariant.ErrInvalidInput)
}
