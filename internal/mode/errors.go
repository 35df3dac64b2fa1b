package mode

import "errors"

// Mode errors.
var (
	// ErrNotFound indicates no instance of a kind is registered.
	ErrNotFound = errors.New("mode: not found")

	// ErrDuplicateName indicates two kinds share a layer name.
	ErrDuplicateName = errors.New("mode: duplicate name")
)
