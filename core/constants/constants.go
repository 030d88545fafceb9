package constants

import "time"

const (
	ContextTokenData = "token_data"
	ContextRequestID = "request_id"
)

const (
	DefaultTimeout        = 10 * time.Second
	DefaultRequestTimeout = 15 * time.Second
)

const (
	ScopeTokenAccess  = "access"
	ScopeTokenRefresh = "refresh"
)

const (
	RedisKeyInvitationLock = "lock:invitation:project:"
	InvitationLockTTL      = 10 * time.Second
)

const (
	DefaultPageNumber = 1
	DefaultPageSize   = 20
	MaxPageSize       = 100
)

const (
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 5
	DatabaseConnMaxLifetime = 30
)
