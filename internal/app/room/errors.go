package room

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrServer         = errors.New("server_error")
)
