package config

import "time"

// Application-wide constants organized by domain

// Database and Performance Constants
const (
	DefaultQueryTimeout = 30 * time.Second
	NetworkDialTimeout  = 5 * time.Second

	// Cache settings
	CardCacheSize = 10000
)

// Trading Constants
const (
	// Confirmation window measured from accepted_at; evaluated lazily on
	// the first Complete call after it lapses.
	DefaultConfirmationWindow = 48 * time.Hour

	// Cap on simultaneous proposed/accepted trades between one user pair.
	DefaultMaxActiveTradesPerPair = 3

	// Expiry sweeper cadence when enabled.
	DefaultSweepInterval = 5 * time.Minute
)

// Pagination Constants
const (
	DefaultHistoryPageSize = 20
	MaxHistoryPageSize     = 100
)
