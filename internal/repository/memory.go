package repository

import (
	"sort"
	"sync"
	"time"

	"go-almoxarifado/internal/invariant"
	"go-almoxarifado/internal/model"
	"go-almoxarifado/internal/snapshot"

	"github.com/google/uuid"
)

// MemoryStore implements every repository interface plus LedgerStore and
// SnapshotStore on plain maps behind one mutex. It backs the engine tests and
// the demo mode; atomicity of the privileged procedures falls out of the lock.
type MemoryStore struct {
	mu             sync.RWMutex
	items          map[uuid.UUID]model.Item
	redShelfItems  map[uuid.UUID]model.Item
	movements      []model.Movement
	auditLogs      []model.AuditLog
	categories     []string
	suppliers      map[uuid.UUID]model.Supplier
	technicians    map[uuid.UUID]model.Technician
	users          map[uuid.UUID]model.User
	kits           map[uuid.UUID]model.Kit
	reservations   map[uuid.UUID]model.Reservation
	purchaseOrders map[uuid.UUID]model.PurchaseOrder
	pickingLists   map[uuid.UUID]model.PickingList
	countSessions  map[uuid.UUID]model.CountSession

	// ReplaceOps records the table order of the last ReplaceAll, newest run
	// only. Exists so restore ordering is observable.
	ReplaceOps []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:          map[uuid.UUID]model.Item{},
		redShelfItems:  map[uuid.UUID]model.Item{},
		suppliers:      map[uuid.UUID]model.Supplier{},
		technicians:    map[uuid.UUID]model.Technician{},
		users:          map[uuid.UUID]model.User{},
		kits:           map[uuid.UUID]model.Kit{},
		reservations:   map[uuid.UUID]model.Reservation{},
		purchaseOrders: map[uuid.UUID]model.PurchaseOrder{},
		pickingLists:   map[uuid.UUID]model.PickingList{},
		countSessions:  map[uuid.UUID]model.CountSession{},
	}
}

func (m *MemoryStore) pool(redShelf bool) map[uuid.UUID]model.Item {
	if redShelf {
		return m.redShelfItems
	}
	return m.items
}

// ---- ItemRepository ----

func (m *MemoryStore) FindAll(redShelf bool) ([]model.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := make([]model.Item, 0, len(m.pool(redShelf)))
	for _, item := range m.pool(redShelf) {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (m *MemoryStore) FindByID(id uuid.UUID, redShelf bool) (*model.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.pool(redShelf)[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (m *MemoryStore) Create(item *model.Item, redShelf bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item.EnsureBase()
	m.pool(redShelf)[item.ID] = *item
	return nil
}

func (m *MemoryStore) CreateMany(items []model.Item, redShelf bool) ([]model.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range items {
		items[i].EnsureBase()
		m.pool(redShelf)[items[i].ID] = items[i]
	}
	return items, nil
}

func (m *MemoryStore) Update(item *model.Item, redShelf bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.pool(redShelf)[item.ID]
	if !ok {
		return ErrNotFound
	}
	// Quantity stays whatever the ledger last wrote.
	current.Name = item.Name
	current.Category = item.Category
	current.ReorderPoint = item.ReorderPoint
	current.Price = item.Price
	current.PreferredSupplierID = item.PreferredSupplierID
	current.Barcode = item.Barcode
	current.Location = item.Location
	current.UpdatedBy = item.UpdatedBy
	current.UpdatedAt = time.Now()
	m.pool(redShelf)[item.ID] = current
	return nil
}

func (m *MemoryStore) Delete(id uuid.UUID, redShelf bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.pool(redShelf)[id]; !ok {
		return ErrNotFound
	}
	delete(m.pool(redShelf), id)
	return nil
}

func (m *MemoryStore) ReassignCategory(from, to string, redShelf bool) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, item := range m.pool(redShelf) {
		if item.Category == from {
			item.Category = to
			m.pool(redShelf)[id] = item
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) Stats(redShelf bool) (*ItemStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var stats ItemStats
	for _, item := range m.pool(redShelf) {
		stats.TotalItems++
		if item.Quantity <= item.ReorderPoint {
			stats.LowStockCount++
		}
		stats.TotalValuation += int64(item.Quantity) * item.Price
	}
	return &stats, nil
}

// ---- MovementRepository ----

func (m *MemoryStore) FindAllMovements() ([]model.Movement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	movements := make([]model.Movement, len(m.movements))
	copy(movements, m.movements)
	for i, j := 0, len(movements)-1; i < j; i, j = i+1, j-1 {
		movements[i], movements[j] = movements[j], movements[i]
	}
	return movements, nil
}

func (m *MemoryStore) FindByItem(itemID uuid.UUID) ([]model.Movement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var movements []model.Movement
	for _, mv := range m.movements {
		if mv.ItemID == itemID {
			movements = append(movements, mv)
		}
	}
	return movements, nil
}

func (m *MemoryStore) StockMovement(startDate, endDate time.Time) ([]StockMovementData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	byDay := map[string]*StockMovementData{}
	for _, mv := range m.movements {
		if mv.CreatedAt.Before(startDate) || mv.CreatedAt.After(endDate) {
			continue
		}
		day := mv.CreatedAt.Format("2006-01-02")
		data, ok := byDay[day]
		if !ok {
			data = &StockMovementData{Date: day}
			byDay[day] = data
		}
		switch mv.Type {
		case model.MovementIn:
			data.Inbound += mv.Quantity
		case model.MovementOut:
			data.Outbound += -mv.Quantity
		}
	}
	results := make([]StockMovementData, 0, len(byDay))
	for _, data := range byDay {
		results = append(results, *data)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Date < results[j].Date })
	return results, nil
}

// ---- AuditLogRepository ----

func (m *MemoryStore) Append(action, details, user string) (*model.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendAuditLocked(action, details, user), nil
}

func (m *MemoryStore) appendAuditLocked(action, details, user string) *model.AuditLog {
	entry := model.AuditLog{Action: action, Details: details, User: user}
	entry.EnsureID()
	m.auditLogs = append(m.auditLogs, entry)
	return &entry
}

func (m *MemoryStore) FindAllAuditLogs() ([]model.AuditLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	logs := make([]model.AuditLog, len(m.auditLogs))
	copy(logs, m.auditLogs)
	for i, j := 0, len(logs)-1; i < j; i, j = i+1, j-1 {
		logs[i], logs[j] = logs[j], logs[i]
	}
	return logs, nil
}

// ---- CategoryRepository ----

func (m *MemoryStore) Names() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, len(m.categories))
	copy(names, m.categories)
	sort.Strings(names)
	return names, nil
}

func (m *MemoryStore) AddCategory(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addCategoryLocked(name)
	return nil
}

func (m *MemoryStore) AddCategories(names []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, name := range names {
		m.addCategoryLocked(name)
	}
	return nil
}

func (m *MemoryStore) addCategoryLocked(name string) {
	for _, existing := range m.categories {
		if existing == name {
			return
		}
	}
	m.categories = append(m.categories, name)
}

func (m *MemoryStore) DeleteCategory(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.categories {
		if existing == name {
			m.categories = append(m.categories[:i], m.categories[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// ---- SupplierRepository / TechnicianRepository / UserRepository ----

func (m *MemoryStore) FindAllSuppliers() ([]model.Supplier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	suppliers := make([]model.Supplier, 0, len(m.suppliers))
	for _, supplier := range m.suppliers {
		suppliers = append(suppliers, supplier)
	}
	sort.Slice(suppliers, func(i, j int) bool { return suppliers[i].Name < suppliers[j].Name })
	return suppliers, nil
}

func (m *MemoryStore) FindSupplierByID(id uuid.UUID) (*model.Supplier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	supplier, ok := m.suppliers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &supplier, nil
}

func (m *MemoryStore) CreateSupplier(supplier *model.Supplier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	supplier.EnsureBase()
	m.suppliers[supplier.ID] = *supplier
	return nil
}

func (m *MemoryStore) UpdateSupplier(supplier *model.Supplier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.suppliers[supplier.ID]; !ok {
		return ErrNotFound
	}
	supplier.UpdatedAt = time.Now()
	m.suppliers[supplier.ID] = *supplier
	return nil
}

func (m *MemoryStore) DeleteSupplier(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.suppliers[id]; !ok {
		return ErrNotFound
	}
	delete(m.suppliers, id)
	return nil
}

func (m *MemoryStore) FindAllTechnicians() ([]model.Technician, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	technicians := make([]model.Technician, 0, len(m.technicians))
	for _, technician := range m.technicians {
		technicians = append(technicians, technician)
	}
	sort.Slice(technicians, func(i, j int) bool { return technicians[i].Name < technicians[j].Name })
	return technicians, nil
}

func (m *MemoryStore) FindTechnicianByID(id uuid.UUID) (*model.Technician, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	technician, ok := m.technicians[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &technician, nil
}

func (m *MemoryStore) CreateTechnician(technician *model.Technician) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	technician.EnsureBase()
	m.technicians[technician.ID] = *technician
	return nil
}

func (m *MemoryStore) UpdateTechnician(technician *model.Technician) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.technicians[technician.ID]; !ok {
		return ErrNotFound
	}
	technician.UpdatedAt = time.Now()
	m.technicians[technician.ID] = *technician
	return nil
}

func (m *MemoryStore) DeleteTechnician(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.technicians[id]; !ok {
		return ErrNotFound
	}
	delete(m.technicians, id)
	return nil
}

func (m *MemoryStore) FindAllUsers() ([]model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	users := make([]model.User, 0, len(m.users))
	for _, user := range m.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].FullName < users[j].FullName })
	return users, nil
}

func (m *MemoryStore) FindUserByID(id uuid.UUID) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (m *MemoryStore) FindByEmail(email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, user := range m.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) CreateUser(user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user.EnsureBase()
	m.users[user.ID] = *user
	return nil
}

func (m *MemoryStore) UpdateUser(user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return ErrNotFound
	}
	user.UpdatedAt = time.Now()
	m.users[user.ID] = *user
	return nil
}

func (m *MemoryStore) DeleteUser(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	return nil
}

// ---- KitRepository ----

func (m *MemoryStore) FindAllKits() ([]model.Kit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	kits := make([]model.Kit, 0, len(m.kits))
	for _, kit := range m.kits {
		kits = append(kits, cloneKit(kit))
	}
	sort.Slice(kits, func(i, j int) bool { return kits[i].Name < kits[j].Name })
	return kits, nil
}

func (m *MemoryStore) FindKitByID(id uuid.UUID) (*model.Kit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	kit, ok := m.kits[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := cloneKit(kit)
	return &clone, nil
}

func (m *MemoryStore) CreateKit(kit *model.Kit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kit.EnsureBase()
	for i := range kit.Components {
		kit.Components[i].EnsureBase()
		kit.Components[i].KitID = kit.ID
	}
	m.kits[kit.ID] = cloneKit(*kit)
	return nil
}

func (m *MemoryStore) UpdateKit(kit *model.Kit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.kits[kit.ID]; !ok {
		return ErrNotFound
	}
	kit.UpdatedAt = time.Now()
	for i := range kit.Components {
		kit.Components[i].EnsureBase()
		kit.Components[i].KitID = kit.ID
	}
	m.kits[kit.ID] = cloneKit(*kit)
	return nil
}

func (m *MemoryStore) DeleteKit(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.kits[id]; !ok {
		return ErrNotFound
	}
	delete(m.kits, id)
	return nil
}

func cloneKit(kit model.Kit) model.Kit {
	kit.Components = append([]model.KitComponent(nil), kit.Components...)
	return kit
}

// ---- ReservationRepository ----

func (m *MemoryStore) FindAllReservations() ([]model.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	reservations := make([]model.Reservation, 0, len(m.reservations))
	for _, reservation := range m.reservations {
		reservations = append(reservations, reservation)
	}
	sort.Slice(reservations, func(i, j int) bool {
		return reservations[i].CreatedAt.After(reservations[j].CreatedAt)
	})
	return reservations, nil
}

func (m *MemoryStore) FindReservationByID(id uuid.UUID) (*model.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	reservation, ok := m.reservations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &reservation, nil
}

func (m *MemoryStore) FindByParent(parentID uuid.UUID) ([]model.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var reservations []model.Reservation
	for _, reservation := range m.reservations {
		if reservation.ParentID != nil && *reservation.ParentID == parentID {
			reservations = append(reservations, reservation)
		}
	}
	return reservations, nil
}

func (m *MemoryStore) ActiveByItem(itemID uuid.UUID, redShelf bool) ([]model.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var reservations []model.Reservation
	for _, reservation := range m.reservations {
		if reservation.Status == model.ReservationActive &&
			reservation.ItemID != nil && *reservation.ItemID == itemID &&
			reservation.IsRedShelf == redShelf {
			reservations = append(reservations, reservation)
		}
	}
	return reservations, nil
}

func (m *MemoryStore) ActiveQuantities(redShelf bool) (map[uuid.UUID]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeQuantitiesLocked(redShelf), nil
}

func (m *MemoryStore) activeQuantitiesLocked(redShelf bool) map[uuid.UUID]int {
	result := map[uuid.UUID]int{}
	for _, reservation := range m.reservations {
		if reservation.Status == model.ReservationActive &&
			reservation.ItemID != nil && reservation.IsRedShelf == redShelf {
			result[*reservation.ItemID] += reservation.Quantity
		}
	}
	return result
}

func (m *MemoryStore) Allocate(rows []model.Reservation) error {
	if len(rows) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	type demand struct {
		itemID   uuid.UUID
		redShelf bool
	}
	requested := map[demand]int{}
	for i := range rows {
		if rows[i].ItemID == nil {
			continue
		}
		requested[demand{*rows[i].ItemID, rows[i].IsRedShelf}] += rows[i].Quantity
	}
	for key, quantity := range requested {
		item, ok := m.pool(key.redShelf)[key.itemID]
		if !ok {
			return ErrNotFound
		}
		reserved := m.activeQuantitiesLocked(key.redShelf)[key.itemID]
		if err := invariant.CheckReservation(item.Quantity, reserved, quantity); err != nil {
			return err
		}
	}
	for i := range rows {
		rows[i].EnsureBase()
		m.reservations[rows[i].ID] = rows[i]
	}
	return nil
}

func (m *MemoryStore) UpdateStatus(id uuid.UUID, status model.ReservationStatus, actor string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	reservation, ok := m.reservations[id]
	if !ok {
		return ErrNotFound
	}
	reservation.Status = status
	reservation.UpdatedBy = actor
	reservation.UpdatedAt = time.Now()
	m.reservations[id] = reservation
	return nil
}

// ---- PurchaseOrderRepository ----

func (m *MemoryStore) FindAllPurchaseOrders() ([]model.PurchaseOrder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	orders := make([]model.PurchaseOrder, 0, len(m.purchaseOrders))
	for _, order := range m.purchaseOrders {
		orders = append(orders, clonePO(order))
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}

func (m *MemoryStore) FindPurchaseOrderByID(id uuid.UUID) (*model.PurchaseOrder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	order, ok := m.purchaseOrders[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := clonePO(order)
	return &clone, nil
}

func (m *MemoryStore) CreatePurchaseOrder(po *model.PurchaseOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	po.EnsureBase()
	for i := range po.Lines {
		po.Lines[i].EnsureBase()
		po.Lines[i].PurchaseOrderID = po.ID
	}
	m.purchaseOrders[po.ID] = clonePO(*po)
	return nil
}

func (m *MemoryStore) UpdatePurchaseOrder(po *model.PurchaseOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.purchaseOrders[po.ID]; !ok {
		return ErrNotFound
	}
	po.UpdatedAt = time.Now()
	m.purchaseOrders[po.ID] = clonePO(*po)
	return nil
}

func (m *MemoryStore) OpenPOLineExists(itemID uuid.UUID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, order := range m.purchaseOrders {
		if order.Status != model.POStatusDraft && order.Status != model.POStatusSubmitted {
			continue
		}
		for _, line := range order.Lines {
			if line.ItemID == itemID {
				return true, nil
			}
		}
	}
	return false, nil
}

func clonePO(po model.PurchaseOrder) model.PurchaseOrder {
	po.Lines = append([]model.PurchaseOrderLine(nil), po.Lines...)
	return po
}

// ---- PickingListRepository ----

func (m *MemoryStore) FindAllPickingLists() ([]model.PickingList, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	lists := make([]model.PickingList, 0, len(m.pickingLists))
	for _, list := range m.pickingLists {
		lists = append(lists, clonePickingList(list))
	}
	sort.Slice(lists, func(i, j int) bool { return lists[i].CreatedAt.After(lists[j].CreatedAt) })
	return lists, nil
}

func (m *MemoryStore) FindPickingListByID(id uuid.UUID) (*model.PickingList, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list, ok := m.pickingLists[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := clonePickingList(list)
	return &clone, nil
}

func (m *MemoryStore) CreatePickingList(list *model.PickingList) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list.EnsureBase()
	for i := range list.Lines {
		list.Lines[i].EnsureBase()
		list.Lines[i].PickingListID = list.ID
	}
	m.pickingLists[list.ID] = clonePickingList(*list)
	return nil
}

func (m *MemoryStore) UpdatePickingList(list *model.PickingList) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.pickingLists[list.ID]; !ok {
		return ErrNotFound
	}
	list.UpdatedAt = time.Now()
	m.pickingLists[list.ID] = clonePickingList(*list)
	return nil
}

func (m *MemoryStore) OpenPickLineExists(itemID uuid.UUID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, list := range m.pickingLists {
		if list.Status == model.PickingCompleted {
			continue
		}
		for _, line := range list.Lines {
			if line.ItemID == itemID {
				return true, nil
			}
		}
	}
	return false, nil
}

func clonePickingList(list model.PickingList) model.PickingList {
	list.Lines = append([]model.PickingListLine(nil), list.Lines...)
	return list
}

// ---- CountSessionRepository ----

func (m *MemoryStore) FindAllCountSessions() ([]model.CountSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sessions := make([]model.CountSession, 0, len(m.countSessions))
	for _, session := range m.countSessions {
		sessions = append(sessions, cloneCountSession(session))
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].CreatedAt.After(sessions[j].CreatedAt) })
	return sessions, nil
}

func (m *MemoryStore) FindCountSessionByID(id uuid.UUID) (*model.CountSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.countSessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := cloneCountSession(session)
	return &clone, nil
}

func (m *MemoryStore) CreateCountSession(session *model.CountSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	session.EnsureBase()
	for i := range session.Lines {
		session.Lines[i].EnsureBase()
		session.Lines[i].CountSessionID = session.ID
	}
	m.countSessions[session.ID] = cloneCountSession(*session)
	return nil
}

func (m *MemoryStore) UpdateCountSession(session *model.CountSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.countSessions[session.ID]; !ok {
		return ErrNotFound
	}
	session.UpdatedAt = time.Now()
	m.countSessions[session.ID] = cloneCountSession(*session)
	return nil
}

func cloneCountSession(session model.CountSession) model.CountSession {
	session.Lines = append([]model.CountLine(nil), session.Lines...)
	return session
}

// ---- LedgerStore ----

func (m *MemoryStore) AddMovement(p AddMovementParams) (*model.Movement, *model.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.pool(p.RedShelf)[p.ItemID]
	if !ok {
		return nil, nil, ErrNotFound
	}
	delta := SignedDelta(p.Type, p.Quantity)
	if err := invariant.CheckQuantityChange(item.Quantity, delta); err != nil {
		return nil, nil, err
	}

	item.Quantity += delta
	item.UpdatedBy = p.Actor
	item.UpdatedAt = time.Now()
	m.pool(p.RedShelf)[p.ItemID] = item

	movement := model.Movement{
		ItemID:       p.ItemID,
		IsRedShelf:   p.RedShelf,
		Type:         p.Type,
		Quantity:     delta,
		Balance:      item.Quantity,
		Date:         p.Date,
		TechnicianID: p.TechnicianID,
		Notes:        p.Notes,
	}
	movement.CreatedBy = p.Actor
	movement.UpdatedBy = p.Actor
	movement.EnsureBase()
	m.movements = append(m.movements, movement)

	m.appendAuditLocked("movement:"+string(p.Type),
		movementDetails(item.Name, delta, item.Quantity, p.Notes), p.Actor)

	return &movement, &item, nil
}

func (m *MemoryStore) AdjustQuantity(itemID uuid.UUID, newQuantity int, notes string, redShelf bool, actor string) (*model.Movement, *model.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	movements, items, err := m.adjustLocked([]Adjustment{{
		ItemID: itemID, RedShelf: redShelf, NewQuantity: newQuantity, Notes: notes,
	}}, "", actor)
	if err != nil {
		return nil, nil, err
	}
	return &movements[0], &items[0], nil
}

func (m *MemoryStore) AdjustMany(adjs []Adjustment, notes, actor string) ([]model.Movement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	movements, _, err := m.adjustLocked(adjs, notes, actor)
	return movements, err
}

// adjustLocked validates the whole batch before touching anything, keeping
// AdjustMany all-or-nothing.
func (m *MemoryStore) adjustLocked(adjs []Adjustment, notes, actor string) ([]model.Movement, []model.Item, error) {
	for _, adj := range adjs {
		item, ok := m.pool(adj.RedShelf)[adj.ItemID]
		if !ok {
			return nil, nil, ErrNotFound
		}
		if err := invariant.CheckQuantityChange(item.Quantity, adj.NewQuantity-item.Quantity); err != nil {
			return nil, nil, err
		}
	}

	movements := make([]model.Movement, 0, len(adjs))
	items := make([]model.Item, 0, len(adjs))
	for _, adj := range adjs {
		item := m.pool(adj.RedShelf)[adj.ItemID]
		delta := adj.NewQuantity - item.Quantity
		item.Quantity = adj.NewQuantity
		item.UpdatedBy = actor
		item.UpdatedAt = time.Now()
		m.pool(adj.RedShelf)[adj.ItemID] = item

		lineNotes := adj.Notes
		if lineNotes == "" {
			lineNotes = notes
		}
		movement := model.Movement{
			ItemID:     adj.ItemID,
			IsRedShelf: adj.RedShelf,
			Type:       model.MovementAdjustment,
			Quantity:   delta,
			Balance:    adj.NewQuantity,
			Date:       time.Now(),
			Notes:      lineNotes,
		}
		movement.CreatedBy = actor
		movement.UpdatedBy = actor
		movement.EnsureBase()
		m.movements = append(m.movements, movement)

		m.appendAuditLocked("adjustment",
			movementDetails(item.Name, delta, adj.NewQuantity, lineNotes), actor)

		movements = append(movements, movement)
		items = append(items, item)
	}
	return movements, items, nil
}

// ---- SnapshotStore ----

func (m *MemoryStore) ExportAll() (*snapshot.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := &snapshot.Snapshot{}
	snap.Items = sortedByCreation(m.items)
	snap.RedShelfItems = sortedByCreation(m.redShelfItems)
	snap.Technicians = sortedByCreationTech(m.technicians)
	snap.Suppliers = sortedByCreationSupplier(m.suppliers)
	snap.Movements = append([]model.Movement(nil), m.movements...)
	snap.Categories = append([]string(nil), m.categories...)
	sort.Strings(snap.Categories)
	snap.AuditLogs = append([]model.AuditLog(nil), m.auditLogs...)
	snap.Users = sortedByCreationUser(m.users)
	for _, kit := range m.kits {
		snap.Kits = append(snap.Kits, cloneKit(kit))
	}
	for _, reservation := range m.reservations {
		snap.Reservations = append(snap.Reservations, reservation)
	}
	for _, order := range m.purchaseOrders {
		snap.PurchaseOrders = append(snap.PurchaseOrders, clonePO(order))
	}
	for _, list := range m.pickingLists {
		snap.PickingLists = append(snap.PickingLists, clonePickingList(list))
	}
	sort.Slice(snap.Kits, func(i, j int) bool { return snap.Kits[i].CreatedAt.Before(snap.Kits[j].CreatedAt) })
	sort.Slice(snap.Reservations, func(i, j int) bool {
		return snap.Reservations[i].CreatedAt.Before(snap.Reservations[j].CreatedAt)
	})
	sort.Slice(snap.PurchaseOrders, func(i, j int) bool {
		return snap.PurchaseOrders[i].CreatedAt.Before(snap.PurchaseOrders[j].CreatedAt)
	})
	sort.Slice(snap.PickingLists, func(i, j int) bool {
		return snap.PickingLists[i].CreatedAt.Before(snap.PickingLists[j].CreatedAt)
	})
	return snap, nil
}

func (m *MemoryStore) ReplaceAll(snap *snapshot.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ReplaceOps = nil
	for _, table := range snapshot.DeleteOrder {
		m.clearTable(table)
		m.ReplaceOps = append(m.ReplaceOps, "delete:"+table)
	}
	for _, table := range snapshot.InsertOrder {
		m.loadTable(table, snap)
		m.ReplaceOps = append(m.ReplaceOps, "insert:"+table)
	}
	return nil
}

func (m *MemoryStore) clearTable(table string) {
	switch table {
	case "movements":
		m.movements = nil
	case "count_lines":
		// lines live inside their sessions here
	case "count_sessions":
		m.countSessions = map[uuid.UUID]model.CountSession{}
	case "picking_lists":
		m.pickingLists = map[uuid.UUID]model.PickingList{}
	case "purchase_orders":
		m.purchaseOrders = map[uuid.UUID]model.PurchaseOrder{}
	case "reservations":
		m.reservations = map[uuid.UUID]model.Reservation{}
	case "kits":
		m.kits = map[uuid.UUID]model.Kit{}
	case "items":
		m.items = map[uuid.UUID]model.Item{}
	case "red_shelf_items":
		m.redShelfItems = map[uuid.UUID]model.Item{}
	case "technicians":
		m.technicians = map[uuid.UUID]model.Technician{}
	case "suppliers":
		m.suppliers = map[uuid.UUID]model.Supplier{}
	case "users":
		m.users = map[uuid.UUID]model.User{}
	case "audit_logs":
		m.auditLogs = nil
	case "categories":
		m.categories = nil
	}
}

func (m *MemoryStore) loadTable(table string, snap *snapshot.Snapshot) {
	switch table {
	case "categories":
		for _, name := range snap.Categories {
			m.addCategoryLocked(name)
		}
	case "audit_logs":
		m.auditLogs = append(m.auditLogs, snap.AuditLogs...)
	case "users":
		for _, user := range snap.Users {
			user.EnsureBase()
			m.users[user.ID] = user
		}
	case "suppliers":
		for _, supplier := range snap.Suppliers {
			supplier.EnsureBase()
			m.suppliers[supplier.ID] = supplier
		}
	case "technicians":
		for _, technician := range snap.Technicians {
			technician.EnsureBase()
			m.technicians[technician.ID] = technician
		}
	case "red_shelf_items":
		for _, item := range snap.RedShelfItems {
			item.EnsureBase()
			m.redShelfItems[item.ID] = item
		}
	case "items":
		for _, item := range snap.Items {
			item.EnsureBase()
			m.items[item.ID] = item
		}
	case "kits":
		for _, kit := range snap.Kits {
			kit.EnsureBase()
			m.kits[kit.ID] = cloneKit(kit)
		}
	case "reservations":
		for _, reservation := range snap.Reservations {
			reservation.EnsureBase()
			m.reservations[reservation.ID] = reservation
		}
	case "purchase_orders":
		for _, order := range snap.PurchaseOrders {
			order.EnsureBase()
			m.purchaseOrders[order.ID] = clonePO(order)
		}
	case "picking_lists":
		for _, list := range snap.PickingLists {
			list.EnsureBase()
			m.pickingLists[list.ID] = clonePickingList(list)
		}
	case "movements":
		m.movements = append(m.movements, snap.Movements...)
	}
}

func sortedByCreation(pool map[uuid.UUID]model.Item) []model.Item {
	items := make([]model.Item, 0, len(pool))
	for _, item := range pool {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return items
}

func sortedByCreationTech(pool map[uuid.UUID]model.Technician) []model.Technician {
	rows := make([]model.Technician, 0, len(pool))
	for _, row := range pool {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.Before(rows[j].CreatedAt) })
	return rows
}

func sortedByCreationSupplier(pool map[uuid.UUID]model.Supplier) []model.Supplier {
	rows := make([]model.Supplier, 0, len(pool))
	for _, row := range pool {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.Before(rows[j].CreatedAt) })
	return rows
}

func sortedByCreationUser(pool map[uuid.UUID]model.User) []model.User {
	rows := make([]model.User, 0, len(pool))
	for _, row := range pool {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.Before(rows[j].CreatedAt) })
	return rows
}
