package services

import "errors"

// Service errors
var (
	ErrUnknownView = errors.New("unknown view")
	ErrNoDataset   = errors.New("dataset not loaded")
)
