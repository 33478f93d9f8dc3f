package main

import "errors"

// Sentinel errors for CLI operations.
var (
	ErrUsage              = errors.New("invalid usage")
	ErrUnknownCommand     = errors.New("unknown command")
	ErrNoInput            = errors.New("no input specified")
	ErrReadInput          = errors.New("failed to read input")
	ErrWriteOutput        = errors.New("failed to write output")
	ErrUnknownType        = errors.New("cannot determine input type")
	ErrNoSerializer       = errors.New("no serializer for target type")
	ErrInvalidFilter      = errors.New("invalid filter expression")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrRoundTripDiffers   = errors.New("round trip differs from input")
)
