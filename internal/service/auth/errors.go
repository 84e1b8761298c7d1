package auth

import "errors"

// Token validation failures. Callers match them with errors.Is; the HTTP
// layer maps all of them to 401 and the websocket hub rejects the upgrade.
var (
	ErrMissingToken     = errors.New("auth: no token presented")
	ErrInvalidToken     = errors.New("auth: token malformed or signature mismatch")
	ErrExpiredToken     = errors.New("auth: token expired")
	ErrTokenNotYetValid = errors.New("auth: token used before its nbf time")

	// ErrWrongTokenType rejects refresh tokens and anything else that is
	// not an access token.
	ErrWrongTokenType = errors.New("auth: not an access token")
)
