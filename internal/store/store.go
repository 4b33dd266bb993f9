// Package store holds the gorm repositories behind orders, products, profiles and load sessions.
package store

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a row does not exist
var ErrNotFound = errors.New("record not found")

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
