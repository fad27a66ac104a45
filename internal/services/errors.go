package services

import "errors"

// Sentinel errors returned by the service layer. Handlers translate these
// into HTTP status codes; anything unrecognized is treated as an internal
// failure and its detail never reaches the client.
var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateEmail     = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")
	ErrUnsupportedMedia   = errors.New("only image files are allowed")
	ErrReservedAsset      = errors.New("the placeholder image cannot be deleted")
)
