package batch

import "errors"

// ErrStrideMismatch is returned when an encoder produces a record whose
// size differs from the buffer stride.
var ErrStrideMismatch = errors.New("batch: encoded record size does not match stride")
