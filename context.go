package zammad

import (
	"context"
)

// Context keys for values the middleware and audit trail carry.
type contextKey string

const (
	contextKeyOwnerID   contextKey = "zammad:owner_id"
	contextKeyIPAddress contextKey = "zammad:ip_address"
	contextKeyUserAgent contextKey = "zammad:user_agent"
	contextKeyRequestID contextKey = "zammad:request_id"
	contextKeyChecker   contextKey = "zammad:checker"
)

// WithOwnerID adds an owner id to the context. This is the owner whose
// access is being checked.
func WithOwnerID(ctx context.Context, ownerID int64) context.Context {
	return context.WithValue(ctx, contextKeyOwnerID, ownerID)
}

// GetOwnerID retrieves the owner id from context. Returns 0 if not set.
func GetOwnerID(ctx context.Context) int64 {
	if v := ctx.Value(contextKeyOwnerID); v != nil {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}

// MustGetOwnerID retrieves the owner id from context. Panics if not set.
func MustGetOwnerID(ctx context.Context) int64 {
	ownerID := GetOwnerID(ctx)
	if ownerID == 0 {
		panic("zammad: owner id not in context")
	}
	return ownerID
}

// WithIPAddress adds the client IP address to the context (for audit).
func WithIPAddress(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, contextKeyIPAddress, ip)
}

// GetIPAddress retrieves the IP address from context.
func GetIPAddress(ctx context.Context) string {
	if v := ctx.Value(contextKeyIPAddress); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithUserAgent adds the user agent to the context (for audit).
func WithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, contextKeyUserAgent, ua)
}

// GetUserAgent retrieves the user agent from context.
func GetUserAgent(ctx context.Context) string {
	if v := ctx.Value(contextKeyUserAgent); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithRequestID adds a request id to the context (for audit and
// correlation).
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, requestID)
}

// GetRequestID retrieves the request id from context.
func GetRequestID(ctx context.Context) string {
	if v := ctx.Value(contextKeyRequestID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithChecker adds a Checker to the context. Set by the middleware,
// retrieved in handlers.
func WithChecker(ctx context.Context, checker *Checker) context.Context {
	return context.WithValue(ctx, contextKeyChecker, checker)
}

// GetChecker retrieves the Checker from context. Returns nil if not set.
func GetChecker(ctx context.Context) *Checker {
	if v := ctx.Value(contextKeyChecker); v != nil {
		if c, ok := v.(*Checker); ok {
			return c
		}
	}
	return nil
}

// FromContext retrieves the Checker from context. Alias for GetChecker.
func FromContext(ctx context.Context) *Checker {
	return GetChecker(ctx)
}

// RequestMetadata holds the request information recorded on audit
// entries.
type RequestMetadata struct {
	IPAddress string
	UserAgent string
	RequestID string
}

// GetRequestMetadata extracts all audit-relevant request information from
// context.
func GetRequestMetadata(ctx context.Context) RequestMetadata {
	return RequestMetadata{
		IPAddress: GetIPAddress(ctx),
		UserAgent: GetUserAgent(ctx),
		RequestID: GetRequestID(ctx),
	}
}

// WithRequestMetadata adds all audit-relevant request information to
// context at once.
func WithRequestMetadata(ctx context.Context, meta RequestMetadata) context.Context {
	if meta.IPAddress != "" {
		ctx = WithIPAddress(ctx, meta.IPAddress)
	}
	if meta.UserAgent != "" {
		ctx = WithUserAgent(ctx, meta.UserAgent)
	}
	if meta.RequestID != "" {
		ctx = WithRequestID(ctx, meta.RequestID)
	}
	return ctx
}
