package apperr

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrRootMissing = errors.New("store root does not exist")
)
