package apperrors

import "errors"

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotFound       = errors.New("not found")
	ErrNoConnector    = errors.New("no connector available")
	ErrNotConnectable = errors.New("node is not connectable")
)
