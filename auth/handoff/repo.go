// Package handoff holds the PKCE verifier across the authorization redirect.
package handoff

import (
	"context"
	"time"
)

// Handoff is written once by Login and consumed once by CompleteLogin.
type Handoff struct {
	CodeVerifier string
	State        string
	CreatedAt    time.Time
}

// Repo is a single-slot store. Take is destructive: a second Take returns ok == false.
type Repo interface {
	Put(ctx context.Context, h Handoff) error
	Take(ctx context.Context) (h Handoff, ok bool, err error)
	Clear(ctx context.Context) error
}
