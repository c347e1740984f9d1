// Package shared holds code used across chartlens packages that belongs to
// no single layer.
//
// The testutil subpackage provides:
//
//	- chart fixtures: a small in-memory dataset and a matching CSV file
//	- a buffered slog handler for asserting on log output
//
// It must not import business packages other than pkg/contracts/domain.
package shared
