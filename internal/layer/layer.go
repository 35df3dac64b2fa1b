// Package layer provides the layered grid used to composite partial key,
// encoder and icon mappings contributed by the active modes.
//
// A Map holds any number of named layers of identical shape. Reading a cell
// walks the layers from the most recently pushed to the oldest and returns
// the first non-empty value, so every cell is resolved independently: a top
// layer that leaves a cell empty lets the layers below show through.
package layer

import (
	"errors"
	"fmt"
)

// Errors returned by layer operations.
var (
	// ErrDimensionMismatch indicates a pushed grid does not match the map shape.
	ErrDimensionMismatch = errors.New("layer dimension mismatch")

	// ErrUnknownLayer indicates a layer name is not present in the map.
	ErrUnknownLayer = errors.New("unknown layer")
)

// DimensionError describes a grid whose shape does not match the map.
type DimensionError struct {
	// Layer is the name of the rejected layer.
	Layer string
	// Width and Height are the dimensions of the map.
	Width, Height int
	// Row is the offending row, or -1 if the row count is wrong.
	Row int
	// Got is the offending row length or row count.
	Got int
}

// Error implements the error interface.
func (e *DimensionError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("layer %q has %d rows, want %d", e.Layer, e.Got, e.Height)
	}
	return fmt.Sprintf("layer %q row %d has %d columns, want %d", e.Layer, e.Row, e.Got, e.Width)
}

// Unwrap returns ErrDimensionMismatch.
func (e *DimensionError) Unwrap() error {
	return ErrDimensionMismatch
}

// Grid is a row-major two dimensional slice of cells.
type Grid[T comparable] [][]T

// NewGrid creates an empty grid with the given dimensions.
func NewGrid[T comparable](width, height int) Grid[T] {
	g := make(Grid[T], height)
	for i := range g {
		g[i] = make([]T, width)
	}
	return g
}

// Clone creates a copy of the grid that shares no rows with the original.
func (g Grid[T]) Clone() Grid[T] {
	if g == nil {
		return nil
	}
	out := make(Grid[T], len(g))
	for i, row := range g {
		out[i] = append([]T(nil), row...)
	}
	return out
}

// At returns the cell at row, column. Out of range positions are empty.
func (g Grid[T]) At(row, col int) T {
	var zero T
	if row < 0 || row >= len(g) || col < 0 || col >= len(g[row]) {
		return zero
	}
	return g[row][col]
}

// namedLayer is a single layer stored in a Map.
type namedLayer[T comparable] struct {
	name  string
	cells Grid[T]
}
