package service

import (
	"time"

	"go-almoxarifado/internal/model"
	"go-almoxarifado/internal/repository"
)

// DashboardStats is the overview card payload.
type DashboardStats struct {
	Warehouse *repository.ItemStats `json:"warehouse"`
	RedShelf  *repository.ItemStats `json:"red_shelf"`
	LowStock  []model.Item          `json:"low_stock"`
}

type DashboardService interface {
	GetStats() (*DashboardStats, error)
	GetStockMovement(days int) ([]repository.StockMovementData, error)
}

type dashboardService struct {
	items     repository.ItemRepository
	movements repository.MovementRepository
}

func NewDashboardService(items repository.ItemRepository, movements repository.MovementRepository) DashboardService {
	return &dashboardService{items: items, movements: movements}
}

func (s *dashboardService) GetStats() (*DashboardStats, error) {
	warehouse, err := s.items.Stats(false)
	if err != nil {
		return nil, err
	}
	redShelf, err := s.items.Stats(true)
	if err != nil {
		return nil, err
	}

	all, err := s.items.FindAll(false)
	if err != nil {
		return nil, err
	}
	var low []model.Item
	for _, item := range all {
		if item.Quantity <= item.ReorderPoint {
			low = append(low, item)
		}
	}

	return &DashboardStats{
		Warehouse: warehouse,
		RedShelf:  redShelf,
		LowStock:  low,
	}, nil
}

func (s *dashboardService) GetStockMovement(days int) ([]repository.StockMovementData, error) {
	if days <= 0 {
		days = 30
	}
	end := time.Now()
	start := end.AddDate(0, 0, -days)
	return s.movements.StockMovement(start, end)
}
