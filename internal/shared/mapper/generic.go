// Package mapper converts slices between persistence models, domain entities
// and DTOs.
package mapper

import "fmt"

// MapSlice applies fn to every item. The result is never nil so that empty
// lists render as [] in JSON.
func MapSlice[T, R any](items []T, fn func(T) R) []R {
	out := make([]R, len(items))
	for i, item := range items {
		out[i] = fn(item)
	}
	return out
}

// MapSlicePtrWithID maps rows loaded from the database. Nil rows are skipped
// and a failing row is reported by its id.
func MapSlicePtrWithID[T, R, ID any](items []*T, fn func(*T) (*R, error), idOf func(*T) ID) ([]*R, error) {
	out := make([]*R, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		mapped, err := fn(item)
		if err != nil {
			return nil, fmt.Errorf("failed to map row %v: %w", idOf(item), err)
		}
		if mapped != nil {
			out = append(out, mapped)
		}
	}
	return out, nil
}
