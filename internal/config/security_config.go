package config

const (
	tokenSecretVar   = "TOKEN_SECRET"
	tokenIssuerVar   = "TOKEN_ISSUER"
	tokenAudienceVar = "TOKEN_AUDIENCE"
	rateLimitVar     = "RATE_LIMIT_PER_MINUTE"
	rateBurstVar     = "RATE_BURST"

	defaultRateLimitPerMinute = 120
	defaultRateBurst          = 20
)

// SecurityConfig selects how the backend verifies bearer tokens. An issuer selects
// OIDC verification; otherwise a secret selects HS256.
type SecurityConfig interface {
	GetTokenSecret() string
	GetTokenIssuer() string
	GetTokenAudience() string
	GetRateLimitPerMinute() int
	GetRateBurst() int
}

type SecurityFile struct {
	TokenSecret   string `yaml:"token_secret"`
	TokenIssuer   string `yaml:"token_issuer"`
	TokenAudience string `yaml:"token_audience"`
	RatePerMinute int    `yaml:"rate_limit_per_minute"`
	RateBurst     int    `yaml:"rate_burst"`
}

type Security struct {
	file *SecurityFile
}

var _ SecurityConfig = Security{}

func (s Security) GetTokenSecret() string {
	return GetEnv(tokenSecretVar, s.file.TokenSecret)
}

func (s Security) GetTokenIssuer() string {
	return GetEnv(tokenIssuerVar, s.file.TokenIssuer)
}

func (s Security) GetTokenAudience() string {
	return GetEnv(tokenAudienceVar, s.file.TokenAudience)
}

// GetRateLimitPerMinute is the sustained request rate allowed per token subject.
// Zero or less disables rate limiting.
func (s Security) GetRateLimitPerMinute() int {
	fallback := s.file.RatePerMinute
	if fallback == 0 {
		fallback = defaultRateLimitPerMinute
	}
	return GetEnvInt(rateLimitVar, fallback)
}

func (s Security) GetRateBurst() int {
	fallback := s.file.RateBurst
	if fallback <= 0 {
		fallback = defaultRateBurst
	}
	burst := GetEnvInt(rateBurstVar, fallback)
	if burst <= 0 {
		return defaultRateBurst
	}
	return burst
}
