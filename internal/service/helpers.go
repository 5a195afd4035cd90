package service

import (
	"errors"
	"fmt"

	"github.com/grachmannico95/shopease-be/internal/domain"
	"github.com/grachmannico95/shopease-be/internal/ingest"
	"github.com/shopspring/decimal"
)

func checkOptionalID(name, value string) error {
	if value == "" || domain.IsIdentifier(value) {
		return nil
	}
	return fmt.Errorf("%w: %s must be a UUID", domain.ErrInvalidID, name)
}

func checkRequiredID(name, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s is required", domain.ErrInvalidInput, name)
	}
	return checkOptionalID(name, value)
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

func asStorageError(op string, err error) error {
	var storageErr *domain.StorageError
	if errors.As(err, &storageErr) {
		return err
	}
	return &domain.StorageError{Op: op, Err: err}
}

func checkPrices(original, offer *decimal.Decimal) error {
	for _, p := range []struct {
		name  string
		value *decimal.Decimal
	}{{"original_price", original}, {"offer_price", offer}} {
		if p.value != nil && !ingest.InRange(*p.value) {
			return fmt.Errorf("%w: %s is out of range", domain.ErrInvalidInput, p.name)
		}
	}
	return nil
}
