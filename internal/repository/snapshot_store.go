package repository

import (
	"go-almoxarifado/internal/model"
	"go-almoxarifado/internal/snapshot"

	"gorm.io/gorm"
)

// SnapshotStore moves the whole database in and out. ReplaceAll walks the
// documented table orders; each table operation is atomic on its own, the two
// phases together are not. Callers must not run it concurrently with any
// other mutating operation.
type SnapshotStore interface {
	ExportAll() (*snapshot.Snapshot, error)
	ReplaceAll(snap *snapshot.Snapshot) error
}

type gormSnapshotStore struct {
	db *gorm.DB
}

func NewSnapshotStore(db *gorm.DB) SnapshotStore {
	return &gormSnapshotStore{db}
}

func (s *gormSnapshotStore) ExportAll() (*snapshot.Snapshot, error) {
	var snap snapshot.Snapshot

	reads := []struct {
		name string
		load func() error
	}{
		{"items", func() error {
			return s.db.Table("items").Order("created_at ASC").Find(&snap.Items).Error
		}},
		{"red_shelf_items", func() error {
			return s.db.Table("red_shelf_items").Order("created_at ASC").Find(&snap.RedShelfItems).Error
		}},
		{"technicians", func() error { return s.db.Order("created_at ASC").Find(&snap.Technicians).Error }},
		{"suppliers", func() error { return s.db.Order("created_at ASC").Find(&snap.Suppliers).Error }},
		{"movements", func() error { return s.db.Order("created_at ASC").Find(&snap.Movements).Error }},
		{"categories", func() error {
			return s.db.Model(&model.Category{}).Order("name ASC").Pluck("name", &snap.Categories).Error
		}},
		{"audit_logs", func() error { return s.db.Order("created_at ASC").Find(&snap.AuditLogs).Error }},
		{"purchase_orders", func() error {
			return s.db.Preload("Lines").Order("created_at ASC").Find(&snap.PurchaseOrders).Error
		}},
		{"picking_lists", func() error {
			return s.db.Preload("Lines").Order("created_at ASC").Find(&snap.PickingLists).Error
		}},
		{"kits", func() error {
			return s.db.Preload("Components").Order("created_at ASC").Find(&snap.Kits).Error
		}},
		{"reservations", func() error { return s.db.Order("created_at ASC").Find(&snap.Reservations).Error }},
		{"users", func() error { return s.db.Order("created_at ASC").Find(&snap.Users).Error }},
	}
	for _, read := range reads {
		if err := read.load(); err != nil {
			return nil, translate(err)
		}
	}
	return &snap, nil
}

func (s *gormSnapshotStore) ReplaceAll(snap *snapshot.Snapshot) error {
	for _, table := range snapshot.DeleteOrder {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return &snapshot.ImportError{Phase: "delete", Table: table, Err: err}
		}
	}

	// GORM inserts nested lines together with their aggregate, so the line
	// tables need no entries of their own in the walk.
	for _, table := range snapshot.InsertOrder {
		if err := s.insertTable(table, snap); err != nil {
			return &snapshot.ImportError{Phase: "insert", Table: table, Err: err}
		}
	}
	return nil
}

func (s *gormSnapshotStore) insertTable(table string, snap *snapshot.Snapshot) error {
	const batch = 200
	switch table {
	case "categories":
		if len(snap.Categories) == 0 {
			return nil
		}
		categories := make([]model.Category, len(snap.Categories))
		for i, name := range snap.Categories {
			categories[i] = model.Category{Name: name}
		}
		return s.db.CreateInBatches(categories, batch).Error
	case "audit_logs":
		return createAll(s.db, snap.AuditLogs, batch)
	case "users":
		return createAll(s.db, snap.Users, batch)
	case "suppliers":
		return createAll(s.db, snap.Suppliers, batch)
	case "technicians":
		return createAll(s.db, snap.Technicians, batch)
	case "red_shelf_items":
		if len(snap.RedShelfItems) == 0 {
			return nil
		}
		return s.db.Table("red_shelf_items").CreateInBatches(snap.RedShelfItems, batch).Error
	case "items":
		if len(snap.Items) == 0 {
			return nil
		}
		return s.db.Table("items").CreateInBatches(snap.Items, batch).Error
	case "kits":
		return createAll(s.db, snap.Kits, batch)
	case "reservations":
		return createAll(s.db, snap.Reservations, batch)
	case "purchase_orders":
		return createAll(s.db, snap.PurchaseOrders, batch)
	case "picking_lists":
		return createAll(s.db, snap.PickingLists, batch)
	case "movements":
		return createAll(s.db, snap.Movements, batch)
	}
	return nil
}

func createAll[T any](db *gorm.DB, rows []T, batch int) error {
	if len(rows) == 0 {
		return nil
	}
	return db.CreateInBatches(rows, batch).Error
}
