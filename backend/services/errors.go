package services

import "errors"

var (
	// ErrDataUnavailable is returned by a Provider when the catalogue cannot
	// be produced. Store-specific causes are wrapped beneath it.
	ErrDataUnavailable = errors.New("services data unavailable")

	// ErrConnectionFailure indicates no pooled connection could be obtained.
	ErrConnectionFailure = errors.New("store connection failed")

	// ErrQueryFailure indicates the services query or row mapping failed.
	ErrQueryFailure = errors.New("services query failed")
)
