package domain

import "errors"

var (
	ErrNotFound     = errors.New("project not found")
	ErrDuplicate    = errors.New("project id already exists")
	ErrInvalidInput = errors.New("invalid project")
)
