package utils

// contextKey is a type used for context keys to avoid conflicts with other
// packages' context keys.
type contextKey struct {
	name string
}

// String returns the string representation of the context key.
func (c *contextKey) String() string {
	return c.name
}

// PrincipalKey stores the authenticated account resolved by the access
// guard.
var PrincipalKey = &contextKey{"principal"}

// TraceIdKey stores the per-request trace id.
var TraceIdKey = &contextKey{"traceId"}

// SanitizedPayloadKey stores the validated and sanitized request body.
var SanitizedPayloadKey = &contextKey{"sanitizedPayload"}
