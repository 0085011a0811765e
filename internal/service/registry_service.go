package service

import (
	"fmt"

	"go-almoxarifado/internal/invariant"
	"go-almoxarifado/internal/model"
	"go-almoxarifado/internal/repository"
	"go-almoxarifado/pkg/validator"

	"github.com/google/uuid"
)

// RegistryService manages the small lookup entities: suppliers, technicians
// and the read side of the audit trail.
type RegistryService interface {
	GetSuppliers() ([]model.Supplier, error)
	CreateSupplier(supplier *model.Supplier, actor string) (*model.Supplier, error)
	UpdateSupplier(id uuid.UUID, supplier *model.Supplier, actor string) (*model.Supplier, error)
	DeleteSupplier(id uuid.UUID, actor string) error

	GetTechnicians() ([]model.Technician, error)
	CreateTechnician(technician *model.Technician, actor string) (*model.Technician, error)
	UpdateTechnician(id uuid.UUID, technician *model.Technician, actor string) (*model.Technician, error)
	DeleteTechnician(id uuid.UUID, actor string) error

	GetAuditLogs() ([]model.AuditLog, error)
}

type registryService struct {
	suppliers   repository.SupplierRepository
	technicians repository.TechnicianRepository
	audits      repository.AuditLogRepository
}

func NewRegistryService(
	suppliers repository.SupplierRepository,
	technicians repository.TechnicianRepository,
	audits repository.AuditLogRepository,
) RegistryService {
	return &registryService{suppliers: suppliers, technicians: technicians, audits: audits}
}

func validateEntity(data interface{}) error {
	if errs := validator.ValidateStruct(data); len(errs) > 0 {
		first := errs[0]
		return fmt.Errorf("%w: field '%s' failed on tag '%s'",
			invariant.ErrInvalidInput, first.FailedField, first.Tag)
	}
	return nil
}

func (s *registryService) GetSuppliers() ([]model.Supplier, error) {
	return s.suppliers.FindAll()
}

func (s *registryService) CreateSupplier(supplier *model.Supplier, actor string) (*model.Supplier, error) {
	if err := validateEntity(supplier); err != nil {
		return nil, err
	}
	supplier.EnsureBase()
	supplier.CreatedBy = actor
	supplier.UpdatedBy = actor
	if err := s.suppliers.Create(supplier); err != nil {
		return nil, err
	}
	s.audits.Append("supplier:create", fmt.Sprintf("created supplier %q", supplier.Name), actor)
	return supplier, nil
}

func (s *registryService) UpdateSupplier(id uuid.UUID, supplier *model.Supplier, actor string) (*model.Supplier, error) {
	if err := validateEntity(supplier); err != nil {
		return nil, err
	}
	current, err := s.suppliers.FindByID(id)
	if err != nil {
		return nil, err
	}
	current.Name = supplier.Name
	current.Email = supplier.Email
	current.Phone = supplier.Phone
	current.UpdatedBy = actor
	if err := s.suppliers.Update(current); err != nil {
		return nil, err
	}
	s.audits.Append("supplier:update", fmt.Sprintf("updated supplier %q", current.Name), actor)
	return current, nil
}

func (s *registryService) DeleteSupplier(id uuid.UUID, actor string) error {
	supplier, err := s.suppliers.FindByID(id)
	if err != nil {
		return err
	}
	if err := s.suppliers.Delete(id); err != nil {
		return err
	}
	s.audits.Append("supplier:delete", fmt.Sprintf("deleted supplier %q", supplier.Name), actor)
	return nil
}

func (s *registryService) GetTechnicians() ([]model.Technician, error) {
	return s.technicians.FindAll()
}

func (s *registryService) CreateTechnician(technician *model.Technician, actor string) (*model.Technician, error) {
	if err := validateEntity(technician); err != nil {
		return nil, err
	}
	technician.EnsureBase()
	technician.CreatedBy = actor
	technician.UpdatedBy = actor
	if err := s.technicians.Create(technician); err != nil {
		return nil, err
	}
	s.audits.Append("technician:create", fmt.Sprintf("created technician %q", technician.Name), actor)
	return technician, nil
}

func (s *registryService) UpdateTechnician(id uuid.UUID, technician *model.Technician, actor string) (*model.Technician, error) {
	if err := validateEntity(technician); err != nil {
		return nil, err
	}
	current, err := s.technicians.FindByID(id)
	if err != nil {
		return nil, err
	}
	current.Name = technician.Name
	current.Matricula = technician.Matricula
	current.UpdatedBy = actor
	if err := s.technicians.Update(current); err != nil {
		return nil, err
	}
	s.audits.Append("technician:update", fmt.Sprintf("updated technician %q", current.Name), actor)
	return current, nil
}

func (s *registryService) DeleteTechnician(id uuid.UUID, actor string) error {
	technician, err := s.technicians.FindByID(id)
	if err != nil {
		return err
	}
	if err := s.technicians.Delete(id); err != nil {
		return err
	}
	s.audits.Append("technician:delete", fmt.Sprintf("deleted technician %q", technician.Name), actor)
	return nil
}

func (s *registryService) GetAuditLogs() ([]model.AuditLog, error) {
	return s.audits.FindAll()
}
