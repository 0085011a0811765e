package service

import (
	"fmt"

	"go-almoxarifado/internal/invariant"
	"go-almoxarifado/internal/model"
	"go-almoxarifado/internal/repository"
	"go-almoxarifado/pkg/validator"

	"github.com/google/uuid"
)

type KitRequest struct {
	Name        string            `json:"name" validate:"required"`
	Description string            `json:"description,omitempty"`
	Components  []KitComponentReq `json:"components" validate:"required,min=1,dive"`
}

type KitComponentReq struct {
	ItemID         uuid.UUID `json:"item_id" validate:"uuid_required"`
	QuantityPerKit int       `json:"quantity_per_kit" validate:"required,gt=0"`
}

type KitService interface {
	GetAll() ([]model.Kit, error)
	GetByID(id uuid.UUID) (*model.Kit, error)
	Create(req *KitRequest, actor string) (*model.Kit, error)
	Update(id uuid.UUID, req *KitRequest, actor string) (*model.Kit, error)
	Delete(id uuid.UUID, actor string) error
}

type kitService struct {
	kits         repository.KitRepository
	items        repository.ItemRepository
	reservations repository.ReservationRepository
	audits       repository.AuditLogRepository
}

func NewKitService(
	kits repository.KitRepository,
	items repository.ItemRepository,
	reservations repository.ReservationRepository,
	audits repository.AuditLogRepository,
) KitService {
	return &kitService{kits: kits, items: items, reservations: reservations, audits: audits}
}

func (s *kitService) GetAll() ([]model.Kit, error) {
	return s.kits.FindAll()
}

func (s *kitService) GetByID(id uuid.UUID) (*model.Kit, error) {
	return s.kits.FindByID(id)
}

// checkRequest validates the payload and confirms every component references
// a real warehouse item. Kits never draw from the red shelf pool.
func (s *kitService) checkRequest(req *KitRequest) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return fmt.Errorf("%w: field '%s' failed on tag '%s'",
			invariant.ErrInvalidInput, first.FailedField, first.Tag)
	}
	seen := make(map[uuid.UUID]bool, len(req.Components))
	for _, c := range req.Components {
		if seen[c.ItemID] {
			return fmt.Errorf("%w: duplicate component item", invariant.ErrInvalidInput)
		}
		seen[c.ItemID] = true
		if _, err := s.items.FindByID(c.ItemID, false); err != nil {
			return err
		}
	}
	return nil
}

func (s *kitService) Create(req *KitRequest, actor string) (*model.Kit, error) {
	if err := s.checkRequest(req); err != nil {
		return nil, err
	}
	kit := &model.Kit{
		Name:        req.Name,
		Description: req.Description,
	}
	kit.EnsureBase()
	kit.CreatedBy = actor
	kit.UpdatedBy = actor
	for i, c := range req.Components {
		component := model.KitComponent{
			KitID:          kit.ID,
			ItemID:         c.ItemID,
			QuantityPerKit: c.QuantityPerKit,
			Position:       i,
		}
		component.EnsureBase()
		component.CreatedBy = actor
		component.UpdatedBy = actor
		kit.Components = append(kit.Components, component)
	}

	if err := s.kits.Create(kit); err != nil {
		return nil, err
	}
	s.audits.Append("kit:create", fmt.Sprintf("created kit %q with %d components", kit.Name, len(kit.Components)), actor)
	return kit, nil
}

func (s *kitService) Update(id uuid.UUID, req *KitRequest, actor string) (*model.Kit, error) {
	if err := s.checkRequest(req); err != nil {
		return nil, err
	}
	kit, err := s.kits.FindByID(id)
	if err != nil {
		return nil, err
	}
	kit.Name = req.Name
	kit.Description = req.Description
	kit.UpdatedBy = actor
	kit.Components = kit.Components[:0]
	for i, c := range req.Components {
		component := model.KitComponent{
			KitID:          kit.ID,
			ItemID:         c.ItemID,
			QuantityPerKit: c.QuantityPerKit,
			Position:       i,
		}
		component.EnsureBase()
		component.CreatedBy = actor
		component.UpdatedBy = actor
		kit.Components = append(kit.Components, component)
	}
	if err := s.kits.Update(kit); err != nil {
		return nil, err
	}
	s.audits.Append("kit:update", fmt.Sprintf("updated kit %q", kit.Name), actor)
	return kit, nil
}

// Delete refuses while an active reservation still holds the kit.
func (s *kitService) Delete(id uuid.UUID, actor string) error {
	kit, err := s.kits.FindByID(id)
	if err != nil {
		return err
	}
	reservations, err := s.reservations.FindAll()
	if err != nil {
		return err
	}
	for _, r := range reservations {
		if r.KitID != nil && *r.KitID == id && r.Status == model.ReservationActive && r.ParentID == nil {
			return fmt.Errorf("%w: kit held by an active reservation", invariant.ErrItemInUse)
		}
	}
	if err := s.kits.Delete(id); err != nil {
		return err
	}
	s.audits.Append("kit:delete", fmt.Sprintf("deleted kit %q", kit.Name), actor)
	return nil
}
