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

func newKitService(store *repository.MemoryStore) KitService {
	return NewKitService(store.KitRepo(), store, store.ReservationRepo(), store.AuditRepo())
}

func TestCreateKitChecksComponents(t *testing.T) {
	store := newTestStore(t)
	bolt := seedItem(t, store, "Parafuso", 8)
	svc := newKitService(store)

	// A component must point at an existing warehouse item.
	_, err := svc.Create(&KitRequest{
		Name:       "Kit Fantasma",
		Components: []KitComponentReq{{ItemID: uuid.New(), QuantityPerKit: 1}},
	}, "tester")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// The same item cannot appear twice.
	_, err = svc.Create(&KitRequest{
		Name: "Kit Duplicado",
		Components: []KitComponentReq{
			{ItemID: bolt.ID, QuantityPerKit: 1},
			{ItemID: bolt.ID, QuantityPerKit: 2},
		},
	}, "tester")
	assert.ErrorIs(t, err, invariant.ErrInvalidInput)

	kit, err := svc.Create(&KitRequest{
		Name:       "Kit Fixação",
		Components: []KitComponentReq{{ItemID: bolt.ID, QuantityPerKit: 4}},
	}, "tester")
	require.NoError(t, err)
	require.Len(t, kit.Components, 1)
	assert.Equal(t, 0, kit.Components[0].Position)
}

func TestUpdateKitRebuildsComponents(t *testing.T) {
	store := newTestStore(t)
	bolt := seedItem(t, store, "Parafuso", 8)
	plate := seedItem(t, store, "Placa", 3)
	svc := newKitService(store)

	kit, err := svc.Create(&KitRequest{
		Name:       "Kit",
		Components: []KitComponentReq{{ItemID: bolt.ID, QuantityPerKit: 4}},
	}, "tester")
	require.NoError(t, err)

	updated, err := svc.Update(kit.ID, &KitRequest{
		Name: "Kit Completo",
		Components: []KitComponentReq{
			{ItemID: plate.ID, QuantityPerKit: 1},
			{ItemID: bolt.ID, QuantityPerKit: 2},
		},
	}, "tester")
	require.NoError(t, err)
	require.Len(t, updated.Components, 2)
	assert.Equal(t, plate.ID, updated.Components[0].ItemID)
	assert.Equal(t, 1, updated.Components[1].Position)
}

func TestDeleteKitRefusesWhileReserved(t *testing.T) {
	store := newTestStore(t)
	bolt := seedItem(t, store, "Parafuso", 8)
	kit := seedKit(t, store, "Kit Reservado",
		model.KitComponent{ItemID: bolt.ID, QuantityPerKit: 2},
	)
	kitSvc := newKitService(store)
	resSvc := newReservationService(store)

	parent, _, err := resSvc.ReserveKit(&ReserveKitRequest{KitID: kit.ID, Quantity: 1}, "tester")
	require.NoError(t, err)

	assert.ErrorIs(t, kitSvc.Delete(kit.ID, "tester"), invariant.ErrItemInUse)

	require.NoError(t, resSvc.Release(parent.ID, "tester"))
	require.NoError(t, kitSvc.Delete(kit.ID, "tester"))

	_, err = store.FindKitByID(kit.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
