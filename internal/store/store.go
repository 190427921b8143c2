// Package store holds the GORM-backed repositories used by the reporting
// and management endpoints.
package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrDataAccess = errors.New("data access error")
	ErrNotFound   = errors.New("record not found")
)

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrDataAccess, err)
}
