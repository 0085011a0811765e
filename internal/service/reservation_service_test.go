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

func newReservationService(store *repository.MemoryStore) ReservationService {
	return NewReservationService(store.ReservationRepo(), store, store.KitRepo(), store, store.AuditRepo(), nil)
}

func seedKit(t *testing.T, store *repository.MemoryStore, name string, components ...model.KitComponent) *model.Kit {
	t.Helper()
	kit := &model.Kit{Name: name, Components: components}
	require.NoError(t, store.CreateKit(kit))
	return kit
}

func TestReserveItemWithinAvailability(t *testing.T) {
	store := newTestStore(t)
	item := seedItem(t, store, "Cabo HDMI", 10)
	svc := newReservationService(store)

	res, err := svc.ReserveItem(&ReserveItemRequest{ItemID: item.ID, Quantity: 4}, "tester")
	require.NoError(t, err)
	assert.Equal(t, model.ReservationActive, res.Status)

	available, err := svc.AvailableQuantity(item.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 6, available)

	// Stock itself is untouched: reservations hold, they do not move.
	current, err := store.FindByID(item.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 10, current.Quantity)
}

func TestReserveItemRejectsOverAllocation(t *testing.T) {
	store := newTestStore(t)
	item := seedItem(t, store, "Fonte 12V", 10)
	svc := newReservationService(store)

	_, err := svc.ReserveItem(&ReserveItemRequest{ItemID: item.ID, Quantity: 6}, "tester")
	require.NoError(t, err)
	_, err = svc.ReserveItem(&ReserveItemRequest{ItemID: item.ID, Quantity: 5}, "tester")
	assert.ErrorIs(t, err, invariant.ErrInsufficientAvailable)

	// 4 still fits.
	_, err = svc.ReserveItem(&ReserveItemRequest{ItemID: item.ID, Quantity: 4}, "tester")
	require.NoError(t, err)

	available, err := svc.AvailableQuantity(item.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 0, available)
}

func TestReserveKitExplodesAtomically(t *testing.T) {
	store := newTestStore(t)
	bolt := seedItem(t, store, "Parafuso", 8)
	plate := seedItem(t, store, "Placa", 1)
	kit := seedKit(t, store, "Kit Montagem",
		model.KitComponent{ItemID: bolt.ID, QuantityPerKit: 4},
		model.KitComponent{ItemID: plate.ID, QuantityPerKit: 1},
	)
	svc := newReservationService(store)

	// Two kits need 8 bolts and 2 plates; the plate shortage must reject the
	// whole batch, including the bolts.
	_, _, err := svc.ReserveKit(&ReserveKitRequest{KitID: kit.ID, Quantity: 2}, "tester")
	assert.ErrorIs(t, err, invariant.ErrInsufficientAvailable)

	boltAvailable, err := svc.AvailableQuantity(bolt.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 8, boltAvailable)

	// One kit fits.
	parent, components, err := svc.ReserveKit(&ReserveKitRequest{KitID: kit.ID, Quantity: 1}, "tester")
	require.NoError(t, err)
	assert.Nil(t, parent.ItemID)
	require.Len(t, components, 2)
	for _, c := range components {
		require.NotNil(t, c.ParentID)
		assert.Equal(t, parent.ID, *c.ParentID)
	}

	boltAvailable, err = svc.AvailableQuantity(bolt.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 4, boltAvailable)
}

func TestKitAvailabilityAccountsForReservations(t *testing.T) {
	store := newTestStore(t)
	bolt := seedItem(t, store, "Parafuso", 12)
	plate := seedItem(t, store, "Placa", 3)
	kit := seedKit(t, store, "Kit Fixação",
		model.KitComponent{ItemID: bolt.ID, QuantityPerKit: 4},
		model.KitComponent{ItemID: plate.ID, QuantityPerKit: 1},
	)
	svc := newReservationService(store)

	available, err := svc.KitAvailability(kit.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, available)

	// A direct reservation on a component shrinks kit availability too.
	_, err = svc.ReserveItem(&ReserveItemRequest{ItemID: bolt.ID, Quantity: 5}, "tester")
	require.NoError(t, err)

	available, err = svc.KitAvailability(kit.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, available)
}

func TestReleaseIsIdempotentAndCancelsComponents(t *testing.T) {
	store := newTestStore(t)
	bolt := seedItem(t, store, "Parafuso", 8)
	kit := seedKit(t, store, "Kit Simples",
		model.KitComponent{ItemID: bolt.ID, QuantityPerKit: 2},
	)
	svc := newReservationService(store)

	parent, _, err := svc.ReserveKit(&ReserveKitRequest{KitID: kit.ID, Quantity: 2}, "tester")
	require.NoError(t, err)

	require.NoError(t, svc.Release(parent.ID, "tester"))
	// Second release is a no-op, not an error.
	require.NoError(t, svc.Release(parent.ID, "tester"))

	available, err := svc.AvailableQuantity(bolt.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 8, available)

	all, err := svc.GetAll()
	require.NoError(t, err)
	for _, r := range all {
		assert.Equal(t, model.ReservationCancelled, r.Status)
	}
}

func TestFulfillConvertsHeldStockToOutbound(t *testing.T) {
	store := newTestStore(t)
	item := seedItem(t, store, "Bateria", 10)
	svc := newReservationService(store)

	res, err := svc.ReserveItem(&ReserveItemRequest{ItemID: item.ID, Quantity: 3}, "tester")
	require.NoError(t, err)

	movement, err := svc.Fulfill(res.ID, "tester")
	require.NoError(t, err)
	assert.Equal(t, model.MovementOut, movement.Type)
	assert.Equal(t, -3, movement.Quantity)
	assert.Equal(t, 7, movement.Balance)

	current, err := store.FindByID(item.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 7, current.Quantity)

	// Fulfilled rows stop counting against availability.
	available, err := svc.AvailableQuantity(item.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 7, available)

	// A fulfilled reservation can be neither fulfilled again nor released.
	_, err = svc.Fulfill(res.ID, "tester")
	assert.ErrorIs(t, err, invariant.ErrInvalidState)
	assert.ErrorIs(t, svc.Release(res.ID, "tester"), invariant.ErrInvalidState)
}

func TestReserveValidation(t *testing.T) {
	store := newTestStore(t)
	svc := newReservationService(store)

	_, err := svc.ReserveItem(&ReserveItemRequest{Quantity: 1}, "tester")
	assert.ErrorIs(t, err, invariant.ErrInvalidInput)

	item := seedItem(t, store, "Cabo", 5)
	_, err = svc.ReserveItem(&ReserveItemRequest{ItemID: item.ID, Quantity: 0}, "tester")
	assert.ErrorIs(t, err, invariant.ErrInvalidInput)

	_, _, err = svc.ReserveKit(&ReserveKitRequest{KitID: uuid.New(), Quantity: 1}, "tester")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
