package config

import "time"

// Timeout constants
const (
	// HTTP timeouts
	DefaultHTTPTimeout = 60 * time.Second

	// ProviderCallTimeout bounds a single generation call to one
	// (credential, model) pair. Exceeding it counts as a transient network
	// failure and advances the tier.
	ProviderCallTimeout = 10 * time.Second

	// ServerShutdownTimeout bounds graceful HTTP server shutdown.
	ServerShutdownTimeout = 30 * time.Second

	// Database timeouts
	DatabaseConnMaxLifetime = 5 * time.Minute

	// Session timeouts
	SessionMaxAge = 7 * 24 * time.Hour // 7 days
)

// Chat constants
const (
	// DefaultMaxHistory is the number of recent turns sent as generation context.
	DefaultMaxHistory = 10

	// DefaultQuizRoundLength is the number of answered questions per quiz round.
	DefaultQuizRoundLength = 5

	// ConversationTitleMaxLen caps the auto-derived conversation title length.
	ConversationTitleMaxLen = 30
)

// Session configuration constants
const (
	// Session settings
	SessionPath     = "/"
	SessionHTTPOnly = true
	SessionSecure   = false // Set to true in production with HTTPS

	// Session name
	SessionName = "advisor-session"
)

// Security configuration constants
const (
	// Content Security Policy
	DefaultCSP = "default-src 'self'; style-src 'self' 'unsafe-inline'; script-src 'self' 'unsafe-inline'; img-src 'self' data:; media-src 'self' blob: data:;"
)
