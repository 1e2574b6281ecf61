package site

import "errors"

// Sentinel errors of the HTML site.
var (
	ErrRender     = errors.New("render page")
	ErrBadRequest = errors.New("bad request")
)
