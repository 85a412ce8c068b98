package domain

import "errors"

var (
	ErrImageTypeNotSupported = errors.New("image type not supported")
	ErrImageEmpty            = errors.New("image is empty")
	ErrImageTooLarge         = errors.New("image too large")
)
