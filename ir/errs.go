package ir

import "errors"

var (
	ErrNotObject = errors.New("not an object")
	ErrNotArray  = errors.New("not an array")
	ErrNoPath    = errors.New("path does not exist")
)
