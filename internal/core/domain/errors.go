package domain

import "errors"

var (
	ErrUnknownSection = errors.New("unknown section type")
	ErrUnknownSpot    = errors.New("unknown spot type")
	ErrInvalidAmount  = errors.New("invalid money amount")
	ErrNoUsername     = errors.New("username is required")
	ErrNoProductID    = errors.New("product_id is required")
)
