package service

import (
	"fmt"

	"go-almoxarifado/internal/repository"
	"go-almoxarifado/internal/snapshot"
	"go-almoxarifado/internal/ws"
)

// SnapshotService exports and restores the whole dataset. Import is
// destructive and all-or-nothing per table, not per snapshot; a failed import
// reports exactly where it stopped so the operator can re-run from a
// known-good file.
type SnapshotService interface {
	Export(actor string) (*snapshot.Snapshot, error)
	Import(snap *snapshot.Snapshot, actor string) error
}

type snapshotService struct {
	store  repository.SnapshotStore
	audits repository.AuditLogRepository
	wsHub  *ws.Hub
}

func NewSnapshotService(store repository.SnapshotStore, audits repository.AuditLogRepository, hub *ws.Hub) SnapshotService {
	return &snapshotService{store: store, audits: audits, wsHub: hub}
}

func (s *snapshotService) Export(actor string) (*snapshot.Snapshot, error) {
	snap, err := s.store.ExportAll()
	if err != nil {
		return nil, err
	}
	s.audits.Append("snapshot:export",
		fmt.Sprintf("exported %d items, %d movements", len(snap.Items), len(snap.Movements)), actor)
	return snap, nil
}

func (s *snapshotService) Import(snap *snapshot.Snapshot, actor string) error {
	if err := s.store.ReplaceAll(snap); err != nil {
		return err
	}
	// The delete phase wiped the audit trail; this entry is the first row of
	// the restored one.
	s.audits.Append("snapshot:import",
		fmt.Sprintf("restored %d items, %d movements", len(snap.Items), len(snap.Movements)), actor)
	s.wsHub.Publish(ws.Event{
		Type:    "system",
		Action:  "snapshot_restored",
		Actor:   actor,
		Message: "database restored from snapshot",
	})
	return nil
}
