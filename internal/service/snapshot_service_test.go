package service

import (
	"testing"

	"go-almoxarifado/internal/model"
	"go-almoxarifado/internal/repository"
	"go-almoxarifado/internal/snapshot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSnapshotService(store *repository.MemoryStore) SnapshotService {
	return NewSnapshotService(store, store.AuditRepo(), nil)
}

func populate(t *testing.T, store *repository.MemoryStore) {
	t.Helper()
	item := seedItem(t, store, "Parafuso", 10)
	redShelf := &model.Item{Name: "Peça crítica", Category: model.DefaultCategory, Quantity: 2}
	require.NoError(t, store.Create(redShelf, true))

	supplier := &model.Supplier{Name: "Fornecedor A"}
	require.NoError(t, store.CreateSupplier(supplier))
	technician := &model.Technician{Name: "João", Matricula: "T-100"}
	require.NoError(t, store.CreateTechnician(technician))

	ledger := newLedgerService(store)
	_, _, err := ledger.RecordMovement(&MovementRequest{
		ItemID:   item.ID,
		Type:     model.MovementOut,
		Quantity: 4,
	}, "tester")
	require.NoError(t, err)
}

func TestSnapshotRoundTrip(t *testing.T) {
	source := newTestStore(t)
	populate(t, source)
	exported, err := newSnapshotService(source).Export("tester")
	require.NoError(t, err)

	// Restore into a fresh store seeded with unrelated junk that must vanish.
	target := repository.NewMemoryStore()
	require.NoError(t, target.AddCategories([]string{"Lixo"}))
	seedItem(t, target, "Sobras", 99)

	require.NoError(t, newSnapshotService(target).Import(exported, "tester"))

	items, err := target.FindAll(false)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Parafuso", items[0].Name)
	assert.Equal(t, 6, items[0].Quantity)

	redShelf, err := target.FindAll(true)
	require.NoError(t, err)
	require.Len(t, redShelf, 1)
	assert.Equal(t, "Peça crítica", redShelf[0].Name)

	categories, err := target.Names()
	require.NoError(t, err)
	assert.NotContains(t, categories, "Lixo")
	assert.Contains(t, categories, model.DefaultCategory)

	movements, err := target.FindAllMovements()
	require.NoError(t, err)
	assert.Len(t, movements, 1)

	suppliers, err := target.FindAllSuppliers()
	require.NoError(t, err)
	assert.Len(t, suppliers, 1)
}

// The restore walks tables dependents-first on delete, then the reverse on
// insert, exactly as documented.
func TestImportFollowsTableOrders(t *testing.T) {
	source := newTestStore(t)
	populate(t, source)
	exported, err := newSnapshotService(source).Export("tester")
	require.NoError(t, err)

	target := repository.NewMemoryStore()
	require.NoError(t, newSnapshotService(target).Import(exported, "tester"))

	var wantOps []string
	for _, table := range snapshot.DeleteOrder {
		wantOps = append(wantOps, "delete:"+table)
	}
	for _, table := range snapshot.InsertOrder {
		wantOps = append(wantOps, "insert:"+table)
	}
	assert.Equal(t, wantOps, target.ReplaceOps)
}

// A restore invalidates any count in flight: sessions are cleared, not
// carried over.
func TestImportClearsCountSessions(t *testing.T) {
	store := newTestStore(t)
	seedItem(t, store, "Arruela", 5)
	countSvc := newCycleCountService(store)
	_, err := countSvc.Start("pre-restore", 5, "tester")
	require.NoError(t, err)

	exported, err := newSnapshotService(store).Export("tester")
	require.NoError(t, err)
	require.NoError(t, newSnapshotService(store).Import(exported, "tester"))

	sessions, err := countSvc.GetAll()
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestExportOmitsPasswords(t *testing.T) {
	store := newTestStore(t)
	user := &model.User{Email: "a@b.c", FullName: "A", Role: model.RoleAdmin, IsActive: true}
	require.NoError(t, user.SetPassword("hunter2secret"))
	require.NoError(t, store.CreateUser(user))

	exported, err := newSnapshotService(store).Export("tester")
	require.NoError(t, err)
	data, err := snapshot.MarshalWire(exported)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "password")
	assert.NotContains(t, string(data), user.Password)
}
