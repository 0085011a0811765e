package repository

import (
	"time"

	"go-almoxarifado/internal/model"

	"github.com/google/uuid"
)

// The repository interfaces reuse method names (FindAll, Delete, ...) across
// entities, so MemoryStore exposes each contract through a thin view instead
// of implementing them all on one receiver. MemoryStore itself satisfies
// ItemRepository, LedgerStore and SnapshotStore.

func (m *MemoryStore) MovementRepo() MovementRepository           { return memMovements{m} }
func (m *MemoryStore) AuditRepo() AuditLogRepository              { return memAudits{m} }
func (m *MemoryStore) CategoryRepo() CategoryRepository           { return memCategories{m} }
func (m *MemoryStore) SupplierRepo() SupplierRepository           { return memSuppliers{m} }
func (m *MemoryStore) TechnicianRepo() TechnicianRepository       { return memTechnicians{m} }
func (m *MemoryStore) UserRepo() UserRepository                   { return memUsers{m} }
func (m *MemoryStore) KitRepo() KitRepository                     { return memKits{m} }
func (m *MemoryStore) ReservationRepo() ReservationRepository     { return memReservations{m} }
func (m *MemoryStore) PurchaseOrderRepo() PurchaseOrderRepository { return memPurchaseOrders{m} }
func (m *MemoryStore) PickingListRepo() PickingListRepository     { return memPickingLists{m} }
func (m *MemoryStore) CountSessionRepo() CountSessionRepository   { return memCountSessions{m} }

type memMovements struct{ s *MemoryStore }

func (v memMovements) FindAll() ([]model.Movement, error) { return v.s.FindAllMovements() }
func (v memMovements) FindByItem(itemID uuid.UUID) ([]model.Movement, error) {
	return v.s.FindByItem(itemID)
}
func (v memMovements) StockMovement(startDate, endDate time.Time) ([]StockMovementData, error) {
	return v.s.StockMovement(startDate, endDate)
}

type memAudits struct{ s *MemoryStore }

func (v memAudits) Append(action, details, user string) (*model.AuditLog, error) {
	return v.s.Append(action, details, user)
}
func (v memAudits) FindAll() ([]model.AuditLog, error) { return v.s.FindAllAuditLogs() }

type memCategories struct{ s *MemoryStore }

func (v memCategories) Names() ([]string, error)     { return v.s.Names() }
func (v memCategories) Add(name string) error        { return v.s.AddCategory(name) }
func (v memCategories) AddMany(names []string) error { return v.s.AddCategories(names) }
func (v memCategories) Delete(name string) error     { return v.s.DeleteCategory(name) }

type memSuppliers struct{ s *MemoryStore }

func (v memSuppliers) FindAll() ([]model.Supplier, error) { return v.s.FindAllSuppliers() }
func (v memSuppliers) FindByID(id uuid.UUID) (*model.Supplier, error) {
	return v.s.FindSupplierByID(id)
}
func (v memSuppliers) Create(supplier *model.Supplier) error { return v.s.CreateSupplier(supplier) }
func (v memSuppliers) Update(supplier *model.Supplier) error { return v.s.UpdateSupplier(supplier) }
func (v memSuppliers) Delete(id uuid.UUID) error             { return v.s.DeleteSupplier(id) }

type memTechnicians struct{ s *MemoryStore }

func (v memTechnicians) FindAll() ([]model.Technician, error) { return v.s.FindAllTechnicians() }
func (v memTechnicians) FindByID(id uuid.UUID) (*model.Technician, error) {
	return v.s.FindTechnicianByID(id)
}
func (v memTechnicians) Create(t *model.Technician) error { return v.s.CreateTechnician(t) }
func (v memTechnicians) Update(t *model.Technician) error { return v.s.UpdateTechnician(t) }
func (v memTechnicians) Delete(id uuid.UUID) error        { return v.s.DeleteTechnician(id) }

type memUsers struct{ s *MemoryStore }

func (v memUsers) FindAll() ([]model.User, error)                { return v.s.FindAllUsers() }
func (v memUsers) FindByID(id uuid.UUID) (*model.User, error)    { return v.s.FindUserByID(id) }
func (v memUsers) FindByEmail(email string) (*model.User, error) { return v.s.FindByEmail(email) }
func (v memUsers) Create(user *model.User) error                 { return v.s.CreateUser(user) }
func (v memUsers) Update(user *model.User) error                 { return v.s.UpdateUser(user) }
func (v memUsers) Delete(id uuid.UUID) error                     { return v.s.DeleteUser(id) }

type memKits struct{ s *MemoryStore }

func (v memKits) FindAll() ([]model.Kit, error)             { return v.s.FindAllKits() }
func (v memKits) FindByID(id uuid.UUID) (*model.Kit, error) { return v.s.FindKitByID(id) }
func (v memKits) Create(kit *model.Kit) error               { return v.s.CreateKit(kit) }
func (v memKits) Update(kit *model.Kit) error               { return v.s.UpdateKit(kit) }
func (v memKits) Delete(id uuid.UUID) error                 { return v.s.DeleteKit(id) }

type memReservations struct{ s *MemoryStore }

func (v memReservations) FindAll() ([]model.Reservation, error) { return v.s.FindAllReservations() }
func (v memReservations) FindByID(id uuid.UUID) (*model.Reservation, error) {
	return v.s.FindReservationByID(id)
}
func (v memReservations) FindByParent(parentID uuid.UUID) ([]model.Reservation, error) {
	return v.s.FindByParent(parentID)
}
func (v memReservations) ActiveByItem(itemID uuid.UUID, redShelf bool) ([]model.Reservation, error) {
	return v.s.ActiveByItem(itemID, redShelf)
}
func (v memReservations) ActiveQuantities(redShelf bool) (map[uuid.UUID]int, error) {
	return v.s.ActiveQuantities(redShelf)
}
func (v memReservations) Allocate(rows []model.Reservation) error { return v.s.Allocate(rows) }
func (v memReservations) UpdateStatus(id uuid.UUID, status model.ReservationStatus, actor string) error {
	return v.s.UpdateStatus(id, status, actor)
}

type memPurchaseOrders struct{ s *MemoryStore }

func (v memPurchaseOrders) FindAll() ([]model.PurchaseOrder, error) {
	return v.s.FindAllPurchaseOrders()
}
func (v memPurchaseOrders) FindByID(id uuid.UUID) (*model.PurchaseOrder, error) {
	return v.s.FindPurchaseOrderByID(id)
}
func (v memPurchaseOrders) Create(po *model.PurchaseOrder) error { return v.s.CreatePurchaseOrder(po) }
func (v memPurchaseOrders) Update(po *model.PurchaseOrder) error { return v.s.UpdatePurchaseOrder(po) }
func (v memPurchaseOrders) OpenLineExists(itemID uuid.UUID) (bool, error) {
	return v.s.OpenPOLineExists(itemID)
}

type memPickingLists struct{ s *MemoryStore }

func (v memPickingLists) FindAll() ([]model.PickingList, error) { return v.s.FindAllPickingLists() }
func (v memPickingLists) FindByID(id uuid.UUID) (*model.PickingList, error) {
	return v.s.FindPickingListByID(id)
}
func (v memPickingLists) Create(list *model.PickingList) error { return v.s.CreatePickingList(list) }
func (v memPickingLists) Update(list *model.PickingList) error { return v.s.UpdatePickingList(list) }
func (v memPickingLists) OpenLineExists(itemID uuid.UUID) (bool, error) {
	return v.s.OpenPickLineExists(itemID)
}

type memCountSessions struct{ s *MemoryStore }

func (v memCountSessions) FindAll() ([]model.CountSession, error) {
	return v.s.FindAllCountSessions()
}
func (v memCountSessions) FindByID(id uuid.UUID) (*model.CountSession, error) {
	return v.s.FindCountSessionByID(id)
}
func (v memCountSessions) Create(session *model.CountSession) error {
	return v.s.CreateCountSession(session)
}
func (v memCountSessions) Update(session *model.CountSession) error {
	return v.s.UpdateCountSession(session)
}
