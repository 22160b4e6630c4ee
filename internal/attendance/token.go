package attendance

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "dziennik-obecnosci"

// SignToken derives the opaque scannable token for a session. The token is an
// HS256-signed JWT whose subject is the session ID, so a garbled or tampered
// code is rejected before any store lookup. Expiry is deliberately not baked
// into the token: the validity window is checked against the stored session,
// never against whatever a client-side clock decoded.
func SignToken(sessionID uuid.UUID, secret string) (string, error) {
	claims := &jwt.RegisteredClaims{
		Subject: sessionID.String(),
		Issuer:  tokenIssuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken verifies the signature and returns the embedded session ID.
// Any failure maps to ErrSessionNotFound: callers cannot distinguish a forged
// token from an unknown one.
func ParseToken(tokenString, secret string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return uuid.Nil, ErrSessionNotFound
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return uuid.Nil, ErrSessionNotFound
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrSessionNotFound
	}

	return id, nil
}
