// Package invariant holds the pure consistency checks the ledger runs before
// accepting any mutation. Functions here have no side effects and touch no
// storage; both store implementations call them inside their atomic sections.
package invariant

import (
	"errors"
	"fmt"

	"go-almoxarifado/internal/model"

	"github.com/google/uuid"
)

var (
	ErrNegativeStock         = errors.New("movement would drive stock below zero")
	ErrInsufficientAvailable = errors.New("insufficient available quantity")
	ErrUnknownCategory       = errors.New("unknown category")
	ErrItemInUse             = errors.New("item is referenced by open workflows")
	ErrInvalidState          = errors.New("invalid state transition")
	ErrInvalidInput          = errors.New("invalid input")
)

// CheckQuantityChange rejects a delta that would leave on-hand stock negative.
func CheckQuantityChange(current, delta int) error {
	if current+delta < 0 {
		return fmt.Errorf("%w: current %d, delta %d", ErrNegativeStock, current, delta)
	}
	return nil
}

// CheckReservation enforces that active allocations never exceed on-hand
// stock: reserved + requested must stay within onHand.
func CheckReservation(onHand, reserved, requested int) error {
	if requested > onHand-reserved {
		return fmt.Errorf("%w: on-hand %d, reserved %d, requested %d",
			ErrInsufficientAvailable, onHand, reserved, requested)
	}
	return nil
}

// CheckCategoryReference rejects item writes that point at a category the
// registry does not know.
func CheckCategoryReference(category string, known []string) error {
	for _, name := range known {
		if name == category {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
}

// KitAvailability computes how many whole kits the given per-item available
// quantities can assemble: min over components of floor(available / perKit).
// A kit with no components has zero availability.
func KitAvailability(components []model.KitComponent, availableByItem map[uuid.UUID]int) int {
	if len(components) == 0 {
		return 0
	}
	kits := -1
	for _, c := range components {
		if c.QuantityPerKit <= 0 {
			return 0
		}
		n := availableByItem[c.ItemID] / c.QuantityPerKit
		if n < 0 {
			n = 0
		}
		if kits < 0 || n < kits {
			kits = n
		}
	}
	return kits
}
