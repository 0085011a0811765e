package service

import (
	"fmt"
	"sort"

	"go-almoxarifado/internal/invariant"
	"go-almoxarifado/internal/model"
	"go-almoxarifado/internal/repository"
	"go-almoxarifado/internal/ws"

	"github.com/google/uuid"
)

// CountSelector picks which items a new cycle count should cover.
type CountSelector interface {
	Select(items []model.Item, recentMoves []model.Movement, limit int) []model.Item
}

// HeuristicSelector prefers items at or below their reorder point, then items
// with the most recent ledger activity, up to the limit.
type HeuristicSelector struct{}

func (HeuristicSelector) Select(items []model.Item, recentMoves []model.Movement, limit int) []model.Item {
	lastMove := make(map[uuid.UUID]int, len(recentMoves))
	for i, mv := range recentMoves {
		// FindAll is newest first, so a lower index means fresher activity.
		if _, seen := lastMove[mv.ItemID]; !seen {
			lastMove[mv.ItemID] = i
		}
	}

	ranked := make([]model.Item, len(items))
	copy(ranked, items)
	sort.SliceStable(ranked, func(i, j int) bool {
		lowI := ranked[i].Quantity <= ranked[i].ReorderPoint
		lowJ := ranked[j].Quantity <= ranked[j].ReorderPoint
		if lowI != lowJ {
			return lowI
		}
		mi, okI := lastMove[ranked[i].ID]
		mj, okJ := lastMove[ranked[j].ID]
		if okI != okJ {
			return okI
		}
		return mi < mj
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// SubmitCountRequest carries one counted line.
type SubmitCountRequest struct {
	LineID          uuid.UUID `json:"line_id"`
	CountedQuantity int       `json:"counted_quantity"`
}

// CycleCountService drives a count session through counting, reviewing and
// commit. The per-line baseline is frozen when the session starts; commit
// reconciles counted quantities against whatever the quantity is at commit
// time, so concurrent movements are absorbed into the adjustment delta.
type CycleCountService interface {
	GetAll() ([]model.CountSession, error)
	GetByID(id uuid.UUID) (*model.CountSession, error)
	Start(reason string, limit int, actor string) (*model.CountSession, error)
	SubmitCounts(sessionID uuid.UUID, counts []SubmitCountRequest, actor string) (*model.CountSession, error)
	Recount(sessionID, lineID uuid.UUID, actor string) (*model.CountSession, error)
	Commit(sessionID uuid.UUID, actor string) (*model.CountSession, []model.Movement, error)
	Cancel(sessionID uuid.UUID, actor string) error
}

type cycleCountService struct {
	sessions  repository.CountSessionRepository
	items     repository.ItemRepository
	movements repository.MovementRepository
	ledger    repository.LedgerStore
	audits    repository.AuditLogRepository
	selector  CountSelector
	wsHub     *ws.Hub
}

func NewCycleCountService(
	sessions repository.CountSessionRepository,
	items repository.ItemRepository,
	movements repository.MovementRepository,
	ledger repository.LedgerStore,
	audits repository.AuditLogRepository,
	selector CountSelector,
	hub *ws.Hub,
) CycleCountService {
	if selector == nil {
		selector = HeuristicSelector{}
	}
	return &cycleCountService{
		sessions:  sessions,
		items:     items,
		movements: movements,
		ledger:    ledger,
		audits:    audits,
		selector:  selector,
		wsHub:     hub,
	}
}

const defaultCountSize = 10

func (s *cycleCountService) GetAll() ([]model.CountSession, error) {
	return s.sessions.FindAll()
}

func (s *cycleCountService) GetByID(id uuid.UUID) (*model.CountSession, error) {
	return s.sessions.FindByID(id)
}

func (s *cycleCountService) Start(reason string, limit int, actor string) (*model.CountSession, error) {
	if limit <= 0 {
		limit = defaultCountSize
	}
	items, err := s.items.FindAll(false)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no items to count", invariant.ErrInvalidInput)
	}
	moves, err := s.movements.FindAll()
	if err != nil {
		return nil, err
	}

	picked := s.selector.Select(items, moves, limit)

	session := &model.CountSession{
		Status: model.CountCounting,
		Reason: reason,
	}
	session.EnsureBase()
	session.CreatedBy = actor
	session.UpdatedBy = actor
	for _, item := range picked {
		line := model.CountLine{
			CountSessionID: session.ID,
			ItemID:         item.ID,
			ItemName:       item.Name,
			SystemQuantity: item.Quantity,
		}
		line.EnsureBase()
		line.CreatedBy = actor
		line.UpdatedBy = actor
		session.Lines = append(session.Lines, line)
	}

	if err := s.sessions.Create(session); err != nil {
		return nil, err
	}
	s.audits.Append("count:start",
		fmt.Sprintf("started cycle count %s over %d items", session.ID, len(session.Lines)), actor)
	return session, nil
}

// SubmitCounts records counted quantities and moves the session to reviewing.
func (s *cycleCountService) SubmitCounts(sessionID uuid.UUID, counts []SubmitCountRequest, actor string) (*model.CountSession, error) {
	session, err := s.sessions.FindByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.CountCounting && session.Status != model.CountReviewing {
		return nil, fmt.Errorf("%w: session is %s", invariant.ErrInvalidState, session.Status)
	}

	byLine := make(map[uuid.UUID]int, len(counts))
	for _, c := range counts {
		if c.CountedQuantity < 0 {
			return nil, fmt.Errorf("%w: counted quantity must not be negative", invariant.ErrInvalidInput)
		}
		byLine[c.LineID] = c.CountedQuantity
	}

	matched := 0
	for i := range session.Lines {
		counted, ok := byLine[session.Lines[i].ID]
		if !ok {
			continue
		}
		matched++
		q := counted
		session.Lines[i].CountedQuantity = &q
		session.Lines[i].Discrepancy = counted - session.Lines[i].SystemQuantity
		session.Lines[i].UpdatedBy = actor
	}
	if matched != len(byLine) {
		return nil, fmt.Errorf("%w: unknown count line submitted", invariant.ErrInvalidInput)
	}

	session.Status = model.CountReviewing
	session.UpdatedBy = actor
	if err := s.sessions.Update(session); err != nil {
		return nil, err
	}
	s.audits.Append("count:submit",
		fmt.Sprintf("submitted %d counted lines for session %s", matched, sessionID), actor)
	return session, nil
}

// Recount re-baselines one line against the current quantity and clears its
// count, for operators who want to re-verify a suspicious discrepancy instead
// of letting commit absorb it.
func (s *cycleCountService) Recount(sessionID, lineID uuid.UUID, actor string) (*model.CountSession, error) {
	session, err := s.sessions.FindByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.CountCounting && session.Status != model.CountReviewing {
		return nil, fmt.Errorf("%w: session is %s", invariant.ErrInvalidState, session.Status)
	}

	found := false
	for i := range session.Lines {
		if session.Lines[i].ID != lineID {
			continue
		}
		item, err := s.items.FindByID(session.Lines[i].ItemID, false)
		if err != nil {
			return nil, err
		}
		session.Lines[i].SystemQuantity = item.Quantity
		session.Lines[i].CountedQuantity = nil
		session.Lines[i].Discrepancy = 0
		session.Lines[i].UpdatedBy = actor
		found = true
		break
	}
	if !found {
		return nil, fmt.Errorf("%w: unknown count line", invariant.ErrInvalidInput)
	}

	if err := s.sessions.Update(session); err != nil {
		return nil, err
	}
	s.audits.Append("count:recount",
		fmt.Sprintf("re-baselined line %s in session %s", lineID, sessionID), actor)
	return session, nil
}

// Commit turns every counted discrepancy into an absolute adjustment, applied
// as one batch. Lines whose counted quantity matches the current quantity
// produce no movement; uncounted lines are skipped.
func (s *cycleCountService) Commit(sessionID uuid.UUID, actor string) (*model.CountSession, []model.Movement, error) {
	session, err := s.sessions.FindByID(sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session.Status != model.CountReviewing {
		return nil, nil, fmt.Errorf("%w: session is %s", invariant.ErrInvalidState, session.Status)
	}

	var adjs []repository.Adjustment
	for _, line := range session.Lines {
		if line.CountedQuantity == nil {
			continue
		}
		item, err := s.items.FindByID(line.ItemID, false)
		if err != nil {
			return nil, nil, err
		}
		if *line.CountedQuantity == item.Quantity {
			continue
		}
		adjs = append(adjs, repository.Adjustment{
			ItemID:      line.ItemID,
			NewQuantity: *line.CountedQuantity,
			Notes:       fmt.Sprintf("cycle count %s", sessionID),
		})
	}

	var movements []model.Movement
	if len(adjs) > 0 {
		movements, err = s.ledger.AdjustMany(adjs, fmt.Sprintf("cycle count %s", sessionID), actor)
		if err != nil {
			return nil, nil, err
		}
	}

	session.Status = model.CountCommitted
	session.UpdatedBy = actor
	if err := s.sessions.Update(session); err != nil {
		return nil, nil, err
	}

	s.audits.Append("count:commit",
		fmt.Sprintf("committed cycle count %s with %d adjustments", sessionID, len(movements)), actor)
	s.wsHub.Publish(ws.Event{
		Type:   "stock_update",
		Action: "count_committed",
		Payload: map[string]interface{}{
			"session_id":  sessionID,
			"adjustments": len(movements),
		},
		Actor: actor,
	})
	return session, movements, nil
}

func (s *cycleCountService) Cancel(sessionID uuid.UUID, actor string) error {
	session, err := s.sessions.FindByID(sessionID)
	if err != nil {
		return err
	}
	switch session.Status {
	case model.CountCommitted:
		return fmt.Errorf("%w: session already committed", invariant.ErrInvalidState)
	case model.CountCancelled:
		return nil
	}
	session.Status = model.CountCancelled
	session.UpdatedBy = actor
	if err := s.sessions.Update(session); err != nil {
		return err
	}
	s.audits.Append("count:cancel", fmt.Sprintf("cancelled cycle count %s", sessionID), actor)
	return nil
}
