package pool

import "github.com/pkg/errors"

// ErrPoolNotOpen is returned by Find and Close when the pool has not been
// opened (or has already been closed).
var ErrPoolNotOpen = errors.New("pool: not open")

// ErrPoolAlreadyOpen is returned by Open when the pool is already open.
var ErrPoolAlreadyOpen = errors.New("pool: already open")
