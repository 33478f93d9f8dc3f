package markdown

import "errors"

// Sentinel errors for markdown processing.
var (
	ErrRender = errors.New("markdown rendering failed")
)
