package auth

import (
	"context"
	"net/url"
)

// UserAgent is whatever displays the identity provider's pages to the user.
//
// Navigate leaves the application; the session must not expect control to come back
// through the same call. Location is the address the user agent is currently showing,
// which after a successful authorization carries the code in its query.
// ReplaceLocation changes that visible address without a new navigation.
type UserAgent interface {
	Navigate(ctx context.Context, target *url.URL) error
	Location() *url.URL
	ReplaceLocation(u *url.URL)
}
