package checkin

import "errors"

var (
	ErrMalformedCredential = errors.New("credential payload is malformed")
)
