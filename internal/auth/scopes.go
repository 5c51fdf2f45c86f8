package auth

// Known OAuth scopes used by the lockout service.
const (
	ScopeLockoutRead  = "lockout:read"
	ScopeLockoutWrite = "lockout:write"
	ScopeLockoutForce = "lockout:force"
)
