package service

import (
	"testing"

	"go-almoxarifado/internal/invariant"
	"go-almoxarifado/internal/model"
	"go-almoxarifado/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInventoryService(store *repository.MemoryStore) InventoryService {
	return NewInventoryService(store, store.CategoryRepo(), store.ReservationRepo(),
		store.PurchaseOrderRepo(), store.PickingListRepo(), store.AuditRepo(), nil)
}

func TestCreateItemRejectsUnknownCategory(t *testing.T) {
	store := newTestStore(t)
	svc := newInventoryService(store)

	_, err := svc.CreateItem(&ItemRequest{Name: "Coisa", Category: "Inexistente", Quantity: 1}, false, "tester")
	assert.ErrorIs(t, err, invariant.ErrUnknownCategory)

	item, err := svc.CreateItem(&ItemRequest{Name: "Coisa", Category: "Ferramentas", Quantity: 3}, false, "tester")
	require.NoError(t, err)
	assert.Equal(t, 3, item.Quantity)
}

func TestUpdateItemCannotTouchQuantity(t *testing.T) {
	store := newTestStore(t)
	item := seedItem(t, store, "Chave", 7)
	svc := newInventoryService(store)

	updated, err := svc.UpdateItem(item.ID, &ItemRequest{
		Name:     "Chave Philips",
		Category: "Ferramentas",
		Quantity: 999,
	}, false, "tester")
	require.NoError(t, err)
	assert.Equal(t, "Chave Philips", updated.Name)
	assert.Equal(t, 7, updated.Quantity)
}

func TestBatchIntakeValidatesWholeBatch(t *testing.T) {
	store := newTestStore(t)
	svc := newInventoryService(store)

	_, err := svc.CreateItems([]ItemRequest{
		{Name: "A", Category: "Ferramentas"},
		{Name: "B", Category: "Inexistente"},
	}, false, "tester")
	assert.ErrorIs(t, err, invariant.ErrUnknownCategory)

	items, err := store.FindAll(false)
	require.NoError(t, err)
	assert.Empty(t, items)

	created, err := svc.CreateItems([]ItemRequest{
		{Name: "A", Category: "Ferramentas", Quantity: 1},
		{Name: "B", Category: "Ferramentas", Quantity: 2},
	}, false, "tester")
	require.NoError(t, err)
	assert.Len(t, created, 2)
}

func TestDeleteItemGuards(t *testing.T) {
	store := newTestStore(t)
	item := seedItem(t, store, "Disputado", 10)
	svc := newInventoryService(store)
	resSvc := newReservationService(store)

	res, err := resSvc.ReserveItem(&ReserveItemRequest{ItemID: item.ID, Quantity: 1}, "tester")
	require.NoError(t, err)
	assert.ErrorIs(t, svc.DeleteItem(item.ID, false, "tester"), invariant.ErrItemInUse)

	require.NoError(t, resSvc.Release(res.ID, "tester"))

	// An open purchase order line still blocks deletion.
	supplier := &model.Supplier{Name: "F"}
	require.NoError(t, store.CreateSupplier(supplier))
	wfSvc := NewWorkflowService(store.PurchaseOrderRepo(), store.PickingListRepo(),
		store.ReservationRepo(), store, store.AuditRepo(), nil)
	po, err := wfSvc.CreatePurchaseOrder(&PurchaseOrderRequest{
		SupplierID: supplier.ID,
		Lines:      []PurchaseOrderLineReq{{ItemID: item.ID, Quantity: 5}},
	}, "tester")
	require.NoError(t, err)
	assert.ErrorIs(t, svc.DeleteItem(item.ID, false, "tester"), invariant.ErrItemInUse)

	// Once the order is out of the open states the item can go.
	_, err = wfSvc.CancelPurchaseOrder(po.ID, "tester")
	require.NoError(t, err)
	require.NoError(t, svc.DeleteItem(item.ID, false, "tester"))

	_, err = store.FindByID(item.ID, false)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteCategoryReassignsItems(t *testing.T) {
	store := newTestStore(t)
	svc := newInventoryService(store)
	require.NoError(t, svc.AddCategory("Descontinuada", "tester"))

	item, err := svc.CreateItem(&ItemRequest{Name: "Velho", Category: "Descontinuada"}, false, "tester")
	require.NoError(t, err)
	redItem, err := svc.CreateItem(&ItemRequest{Name: "Velho crítico", Category: "Descontinuada"}, true, "tester")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCategory("Descontinuada", "tester"))

	moved, err := store.FindByID(item.ID, false)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultCategory, moved.Category)
	movedRed, err := store.FindByID(redItem.ID, true)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultCategory, movedRed.Category)

	names, err := svc.GetCategories()
	require.NoError(t, err)
	assert.NotContains(t, names, "Descontinuada")
}

func TestCannotDeleteDefaultCategory(t *testing.T) {
	store := newTestStore(t)
	svc := newInventoryService(store)
	assert.ErrorIs(t, svc.DeleteCategory(model.DefaultCategory, "tester"), invariant.ErrInvalidInput)
}

func TestPoolsAreIndependent(t *testing.T) {
	store := newTestStore(t)
	svc := newInventoryService(store)

	_, err := svc.CreateItem(&ItemRequest{Name: "Normal", Category: "Ferramentas", Quantity: 5}, false, "tester")
	require.NoError(t, err)
	_, err = svc.CreateItem(&ItemRequest{Name: "Crítico", Category: "Ferramentas", Quantity: 1}, true, "tester")
	require.NoError(t, err)

	regular, err := svc.GetAllItems(false)
	require.NoError(t, err)
	redShelf, err := svc.GetAllItems(true)
	require.NoError(t, err)
	require.Len(t, regular, 1)
	require.Len(t, redShelf, 1)
	assert.Equal(t, "Normal", regular[0].Name)
	assert.Equal(t, "Crítico", redShelf[0].Name)
}
