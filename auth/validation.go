package auth

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateIssuer checks that issuer is an absolute http(s) URL usable as a discovery base.
func ValidateIssuer(issuer string) error {
	u, err := url.Parse(strings.TrimSpace(issuer))
	if err != nil {
		return fmt.Errorf("issuer is not a URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("issuer must use http or https scheme")
	}
	if u.Host == "" {
		return fmt.Errorf("issuer must be an absolute URL")
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("issuer must not contain a query or fragment")
	}
	return nil
}

// ValidateRedirectURI validates redirect URI format
func ValidateRedirectURI(uri string) error {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return fmt.Errorf("redirect_uri is required")
	}

	u, err := url.Parse(uri)
	if err != nil {
		return fmt.Errorf("redirect_uri is not a URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("redirect_uri must use http or https scheme")
	}
	if u.Host == "" {
		return fmt.Errorf("redirect_uri must be an absolute URL")
	}

	// Should not contain fragments
	if strings.Contains(uri, "#") {
		return fmt.Errorf("redirect_uri must not contain fragments")
	}

	return nil
}

// ValidateScopes validates individual scope tokens
func ValidateScopes(scopes []string) error {
	for _, s := range scopes {
		if s == "" {
			return fmt.Errorf("scope tokens must not be empty")
		}
		if strings.ContainsAny(s, " \n\r\t") {
			return fmt.Errorf("scope %q contains whitespace", s)
		}
	}
	return nil
}

func validateConfig(config Config) error {
	if err := ValidateIssuer(config.Issuer); err != nil {
		return err
	}
	if err := ValidateRedirectURI(config.RedirectURI); err != nil {
		return err
	}
	if config.PostLogoutRedirectURI != "" {
		if err := ValidateRedirectURI(config.PostLogoutRedirectURI); err != nil {
			return fmt.Errorf("post logout: %w", err)
		}
	}
	return ValidateScopes(config.Scopes)
}
