package service

import (
	"fmt"

	"go-almoxarifado/internal/invariant"
	"go-almoxarifado/internal/model"
	"go-almoxarifado/internal/repository"
	"go-almoxarifado/internal/ws"
	"go-almoxarifado/pkg/validator"

	"github.com/google/uuid"
)

// ItemRequest is the write payload for an item. Quantity is honored only at
// creation, as the opening balance; updates ignore it.
type ItemRequest struct {
	Name                string     `json:"name" validate:"required"`
	Category            string     `json:"category" validate:"required"`
	Quantity            int        `json:"quantity" validate:"gte=0"`
	ReorderPoint        int        `json:"reorder_point" validate:"gte=0"`
	Price               int64      `json:"price" validate:"gte=0"`
	PreferredSupplierID *uuid.UUID `json:"preferred_supplier_id,omitempty"`
	Barcode             string     `json:"barcode,omitempty"`
	Location            string     `json:"location,omitempty"`
}

// InventoryService manages items across both pools and the category registry.
type InventoryService interface {
	GetAllItems(redShelf bool) ([]model.Item, error)
	GetItemByID(id uuid.UUID, redShelf bool) (*model.Item, error)
	CreateItem(req *ItemRequest, redShelf bool, actor string) (*model.Item, error)
	CreateItems(reqs []ItemRequest, redShelf bool, actor string) ([]model.Item, error)
	UpdateItem(id uuid.UUID, req *ItemRequest, redShelf bool, actor string) (*model.Item, error)
	DeleteItem(id uuid.UUID, redShelf bool, actor string) error

	GetCategories() ([]string, error)
	AddCategory(name, actor string) error
	AddCategories(names []string, actor string) error
	DeleteCategory(name, actor string) error
}

type inventoryService struct {
	items        repository.ItemRepository
	categories   repository.CategoryRepository
	reservations repository.ReservationRepository
	purchaseRepo repository.PurchaseOrderRepository
	pickingRepo  repository.PickingListRepository
	audits       repository.AuditLogRepository
	wsHub        *ws.Hub
}

func NewInventoryService(
	items repository.ItemRepository,
	categories repository.CategoryRepository,
	reservations repository.ReservationRepository,
	purchaseRepo repository.PurchaseOrderRepository,
	pickingRepo repository.PickingListRepository,
	audits repository.AuditLogRepository,
	hub *ws.Hub,
) InventoryService {
	return &inventoryService{
		items:        items,
		categories:   categories,
		reservations: reservations,
		purchaseRepo: purchaseRepo,
		pickingRepo:  pickingRepo,
		audits:       audits,
		wsHub:        hub,
	}
}

func (s *inventoryService) GetAllItems(redShelf bool) ([]model.Item, error) {
	return s.items.FindAll(redShelf)
}

func (s *inventoryService) GetItemByID(id uuid.UUID, redShelf bool) (*model.Item, error) {
	return s.items.FindByID(id, redShelf)
}

func (s *inventoryService) checkRequest(req *ItemRequest) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return fmt.Errorf("%w: field '%s' failed on tag '%s'",
			invariant.ErrInvalidInput, first.FailedField, first.Tag)
	}
	known, err := s.categories.Names()
	if err != nil {
		return err
	}
	return invariant.CheckCategoryReference(req.Category, known)
}

func (s *inventoryService) CreateItem(req *ItemRequest, redShelf bool, actor string) (*model.Item, error) {
	if err := s.checkRequest(req); err != nil {
		return nil, err
	}
	item := itemFromRequest(req, actor)
	if err := s.items.Create(item, redShelf); err != nil {
		return nil, err
	}
	s.audits.Append("item:create", fmt.Sprintf("created item %q with %d units", item.Name, item.Quantity), actor)
	s.wsHub.Publish(ws.Event{
		Type:    "inventory_update",
		Action:  "item_created",
		Payload: map[string]interface{}{"item_id": item.ID, "name": item.Name},
		Actor:   actor,
	})
	return item, nil
}

// CreateItems is the batch intake path. The whole batch is validated first and
// a single audit entry covers the intake.
func (s *inventoryService) CreateItems(reqs []ItemRequest, redShelf bool, actor string) ([]model.Item, error) {
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: empty batch", invariant.ErrInvalidInput)
	}
	for i := range reqs {
		if err := s.checkRequest(&reqs[i]); err != nil {
			return nil, err
		}
	}
	items := make([]model.Item, len(reqs))
	for i := range reqs {
		items[i] = *itemFromRequest(&reqs[i], actor)
	}
	created, err := s.items.CreateMany(items, redShelf)
	if err != nil {
		return nil, err
	}
	s.audits.Append("item:create_batch", fmt.Sprintf("created %d items", len(created)), actor)
	s.wsHub.Publish(ws.Event{
		Type:    "inventory_update",
		Action:  "items_created",
		Payload: map[string]interface{}{"count": len(created)},
		Actor:   actor,
	})
	return created, nil
}

func (s *inventoryService) UpdateItem(id uuid.UUID, req *ItemRequest, redShelf bool, actor string) (*model.Item, error) {
	if err := s.checkRequest(req); err != nil {
		return nil, err
	}
	current, err := s.items.FindByID(id, redShelf)
	if err != nil {
		return nil, err
	}
	current.Name = req.Name
	current.Category = req.Category
	current.ReorderPoint = req.ReorderPoint
	current.Price = req.Price
	current.PreferredSupplierID = req.PreferredSupplierID
	current.Barcode = req.Barcode
	current.Location = req.Location
	current.UpdatedBy = actor

	if err := s.items.Update(current, redShelf); err != nil {
		return nil, err
	}
	s.audits.Append("item:update", fmt.Sprintf("updated item %q", current.Name), actor)
	return s.items.FindByID(id, redShelf)
}

// DeleteItem refuses while active reservations or open workflow lines still
// reference the item. Movements referencing it survive: the ledger is history
// and history is not rewritten.
func (s *inventoryService) DeleteItem(id uuid.UUID, redShelf bool, actor string) error {
	item, err := s.items.FindByID(id, redShelf)
	if err != nil {
		return err
	}

	active, err := s.reservations.ActiveByItem(id, redShelf)
	if err != nil {
		return err
	}
	if len(active) > 0 {
		return fmt.Errorf("%w: %d active reservations", invariant.ErrItemInUse, len(active))
	}
	inPO, err := s.purchaseRepo.OpenLineExists(id)
	if err != nil {
		return err
	}
	if inPO {
		return fmt.Errorf("%w: referenced by an open purchase order", invariant.ErrItemInUse)
	}
	inPicking, err := s.pickingRepo.OpenLineExists(id)
	if err != nil {
		return err
	}
	if inPicking {
		return fmt.Errorf("%w: referenced by an open picking list", invariant.ErrItemInUse)
	}

	if err := s.items.Delete(id, redShelf); err != nil {
		return err
	}
	s.audits.Append("item:delete", fmt.Sprintf("deleted item %q", item.Name), actor)
	s.wsHub.Publish(ws.Event{
		Type:    "inventory_update",
		Action:  "item_deleted",
		Payload: map[string]interface{}{"item_id": id},
		Actor:   actor,
	})
	return nil
}

func (s *inventoryService) GetCategories() ([]string, error) {
	return s.categories.Names()
}

func (s *inventoryService) AddCategory(name, actor string) error {
	if name == "" {
		return fmt.Errorf("%w: category name required", invariant.ErrInvalidInput)
	}
	if err := s.categories.Add(name); err != nil {
		return err
	}
	s.audits.Append("category:create", fmt.Sprintf("created category %q", name), actor)
	return nil
}

func (s *inventoryService) AddCategories(names []string, actor string) error {
	for _, name := range names {
		if name == "" {
			return fmt.Errorf("%w: category name required", invariant.ErrInvalidInput)
		}
	}
	if err := s.categories.AddMany(names); err != nil {
		return err
	}
	s.audits.Append("category:create_batch", fmt.Sprintf("imported %d categories", len(names)), actor)
	return nil
}

// DeleteCategory reassigns the category's items, in both pools, to the
// catch-all before removing the name. The catch-all itself cannot go.
func (s *inventoryService) DeleteCategory(name, actor string) error {
	if name == model.DefaultCategory {
		return fmt.Errorf("%w: cannot delete the default category", invariant.ErrInvalidInput)
	}
	// AddMany upserts, so the catch-all existing already is fine.
	if err := s.categories.AddMany([]string{model.DefaultCategory}); err != nil {
		return err
	}
	moved := int64(0)
	for _, redShelf := range []bool{false, true} {
		n, err := s.items.ReassignCategory(name, model.DefaultCategory, redShelf)
		if err != nil {
			return err
		}
		moved += n
	}
	if err := s.categories.Delete(name); err != nil {
		return err
	}
	s.audits.Append("category:delete",
		fmt.Sprintf("deleted category %q, reassigned %d items to %q", name, moved, model.DefaultCategory), actor)
	return nil
}

func itemFromRequest(req *ItemRequest, actor string) *model.Item {
	item := &model.Item{
		Name:                req.Name,
		Category:            req.Category,
		Quantity:            req.Quantity,
		ReorderPoint:        req.ReorderPoint,
		Price:               req.Price,
		PreferredSupplierID: req.PreferredSupplierID,
		Barcode:             req.Barcode,
		Location:            req.Location,
	}
	item.EnsureBase()
	item.CreatedBy = actor
	item.UpdatedBy = actor
	return item
}
