package classes

import "errors"

// Error types.
var (
	ErrClassNotFound          = errors.New("class not found")
	ErrInvalidClass           = errors.New("invalid class")
	ErrNoSuchMethod           = errors.New("no such method")
	ErrInvalidMethod          = errors.New("invalid method")
	ErrMethodAlreadyDefined   = errors.New("method has already defined")
	ErrIllegalAccess          = errors.New("illegal access")
	ErrIncorrectArgumentCount = errors.New("incorrect number of arguments")
	ErrInvalidArgumentValue   = errors.New("invalid argument value")
)
