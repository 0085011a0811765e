// Package snapshot defines the full-database backup aggregate and the wire
// codec used at the exchange boundary. The wire format uses camelCase keys;
// storage and internal JSON use snake_case.
package snapshot

import "go-almoxarifado/internal/model"

// Snapshot mirrors every collection. Categories travel as bare names, the
// rest as full records. Count sessions are not part of a backup: a restore
// invalidates any count in flight, so the import clears them instead.
type Snapshot struct {
	Items          []model.Item          `json:"items"`
	RedShelfItems  []model.Item          `json:"red_shelf_items"`
	Technicians    []model.Technician    `json:"technicians"`
	Suppliers      []model.Supplier      `json:"suppliers"`
	Movements      []model.Movement      `json:"movements"`
	Categories     []string              `json:"categories"`
	AuditLogs      []model.AuditLog      `json:"audit_logs"`
	PurchaseOrders []model.PurchaseOrder `json:"purchase_orders"`
	PickingLists   []model.PickingList   `json:"picking_lists"`
	Kits           []model.Kit           `json:"kits"`
	Reservations   []model.Reservation   `json:"reservations"`
	Users          []model.User          `json:"users"`
}

// DeleteOrder lists tables dependents-first so no delete transiently breaks a
// foreign key. InsertOrder is the reverse walk: every referenced row exists
// before anything references it. Line tables ride directly before their
// parent aggregate on delete and directly after it on insert.
var DeleteOrder = []string{
	"movements",
	"count_lines",
	"count_sessions",
	"picking_list_lines",
	"picking_lists",
	"purchase_order_lines",
	"purchase_orders",
	"reservations",
	"kit_components",
	"kits",
	"items",
	"red_shelf_items",
	"technicians",
	"suppliers",
	"users",
	"audit_logs",
	"categories",
}

var InsertOrder = []string{
	"categories",
	"audit_logs",
	"users",
	"suppliers",
	"technicians",
	"red_shelf_items",
	"items",
	"kits",
	"reservations",
	"purchase_orders",
	"picking_lists",
	"movements",
}

// ImportError reports where a destructive replace stopped. There is no
// automatic rollback; the operator re-runs the import from a known-good
// snapshot.
type ImportError struct {
	Phase string // "delete" or "insert"
	Table string
	Err   error
}

func (e *ImportError) Error() string {
	return "snapshot import failed during " + e.Phase + " of " + e.Table + ": " + e.Err.Error()
}

func (e *ImportError) Unwrap() error {
	return e.Err
}
