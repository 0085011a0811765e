package repository

import (
	"errors"

	"go-almoxarifado/internal/invariant"

	"gorm.io/gorm"
)

var (
	// ErrNotFound means the referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConcurrentModification means the optimistic update loop exhausted
	// its retries against concurrent writers.
	ErrConcurrentModification = errors.New("concurrent modification")
	// ErrStore wraps provider-level failures (connection lost, constraint
	// blew up mid-write). Callers decide whether to retry.
	ErrStore = errors.New("store unavailable")
)

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return errors.Join(ErrStore, err)
}

// isDomainErr keeps invariant violations raised inside a store transaction
// from being masked as store failures.
func isDomainErr(err error) bool {
	return errors.Is(err, invariant.ErrNegativeStock) ||
		errors.Is(err, invariant.ErrInsufficientAvailable)
}
