package pebble

import "errors"

var (
	ErrTxnDone         = errors.New("pebble: transaction already ended")
	ErrIteratorInvalid = errors.New("pebble: iterator is not positioned")
)

const (
	ErrEnvOpen            = "pebble: open environment %s: %w"
	ErrInIteratorCreation = "pebble: failed to create iterator: %w"
	ErrIteratorValue      = "pebble: failed to get value from iterator: %w"
)
