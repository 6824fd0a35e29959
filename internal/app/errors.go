package app

import "errors"

// Editor errors. The engine reports preconditions as boolean results;
// these cover host-facing operations that can actually fail.
var (
	// ErrInvalidContent indicates content that could not be parsed.
	ErrInvalidContent = errors.New("invalid content")
)
