package io

import (
	"errors"

	"github.com/ezrec/xor64/translate"
)

var f = translate.From

var (
	// Device errors
	ErrTempFull    = errors.New(f("temporary full"))
	ErrTempEmpty   = errors.New(f("temporary empty"))
	ErrRingFull    = errors.New(f("ring full"))
	ErrRingRequest = errors.New(f("ring request invalid"))
	ErrTapeMissing = errors.New(f("tape missing"))
)
