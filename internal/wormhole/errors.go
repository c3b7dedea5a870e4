package wormhole

import "errors"

var (
	// ErrInvalidParams indicates camera parameters outside their valid range.
	ErrInvalidParams = errors.New("wormhole: invalid camera parameters")
)
