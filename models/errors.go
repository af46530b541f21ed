package models

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrUnavailable    = errors.New("product is not available")
	ErrStatusConflict = errors.New("order status changed concurrently")
)
