package strava

import "errors"

var (
	// ErrRateLimited maps an upstream 429. Callers should back off and
	// surface a temporarily-unavailable response, not retry in a loop.
	ErrRateLimited = errors.New("strava: rate limited")

	// ErrInvalidToken means the upstream accepted the request but the
	// athlete payload lacked an id, which in practice means the token
	// no longer identifies anyone. Requires a fresh login.
	ErrInvalidToken = errors.New("strava: invalid token")
)
