package utils

// ContextKey is the type used for values the JWT middleware stores on the
// request context (userId, username, role, expiresAt).
type ContextKey string
