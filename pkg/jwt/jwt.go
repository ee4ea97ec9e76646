// Copyright (c) DeviceHub
// SPDX-License-Identifier: Apache-2.0

// Package jwt provides a JWT based token issuer and verifier.
package jwt

import (
	"time"

	"github.com/DeviceHubLabs/devicehub/pkg/errors"
	"github.com/golang-jwt/jwt/v4"
)

const issuerName = "devicehub.auth"

var (
	// ErrSignToken indicates that the token signing failed.
	ErrSignToken = errors.New("failed to sign token")

	// ErrInvalidToken indicates that the token is missing, malformed,
	// expired, or carries an invalid signature.
	ErrInvalidToken = errors.New("missing or invalid token")
)

// Tokenizer specifies the API for issuing and verifying bearer tokens.
type Tokenizer interface {
	// Issue creates a signed token carrying the given subject.
	Issue(subject string, issuedAt time.Time) (string, error)

	// Parse verifies the token signature and expiry, and returns its subject.
	Parse(token string) (string, error)
}

var _ Tokenizer = (*tokenizer)(nil)

type tokenizer struct {
	secret   []byte
	duration time.Duration
}

// New returns a new JWT tokenizer signing tokens with the given secret.
func New(secret string, duration time.Duration) Tokenizer {
	return &tokenizer{secret: []byte(secret), duration: duration}
}

func (t *tokenizer) Issue(subject string, issuedAt time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    issuerName,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(t.duration)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(t.secret)
	if err != nil {
		return "", errors.Wrap(ErrSignToken, err)
	}

	return token, nil
}

func (t *tokenizer) Parse(token string) (string, error) {
	claims := jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(token, &claims, func(tkn *jwt.Token) (interface{}, error) {
		if _, ok := tkn.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	})
	if err != nil {
		return "", errors.Wrap(ErrInvalidToken, err)
	}

	if !tkn.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
