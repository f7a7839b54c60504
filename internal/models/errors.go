package models

import "errors"

// ErrNotFound is returned by stores when a requested row does not exist.
// Callers distinguish it from transport failures with errors.Is.
var ErrNotFound = errors.New("not found")
