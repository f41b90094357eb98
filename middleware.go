package zammad

import (
	"errors"
	"net/http"
	"strconv"
)

// Middleware provides HTTP middleware for group access checking.
type Middleware struct {
	service      AccessChecker
	getOwnerID   func(*http.Request) int64
	errorHandler func(http.ResponseWriter, *http.Request, error)
}

// MiddlewareOption configures the Middleware.
type MiddlewareOption func(*Middleware)

// NewMiddleware creates a new Middleware instance.
//
// Example:
//
//	mw := zammad.NewMiddleware(service,
//	    zammad.WithOwnerIDExtractor(func(r *http.Request) int64 {
//	        return sessionUserID(r)
//	    }),
//	)
func NewMiddleware(service AccessChecker, opts ...MiddlewareOption) *Middleware {
	m := &Middleware{
		service:      service,
		getOwnerID:   defaultGetOwnerID,
		errorHandler: defaultErrorHandler,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// WithOwnerIDExtractor sets a custom function to extract the owner id from a request.
func WithOwnerIDExtractor(fn func(*http.Request) int64) MiddlewareOption {
	return func(m *Middleware) {
		m.getOwnerID = fn
	}
}

// WithErrorHandler sets a custom error handler for middleware.
func WithErrorHandler(fn func(http.ResponseWriter, *http.Request, error)) MiddlewareOption {
	return func(m *Middleware) {
		m.errorHandler = fn
	}
}

func defaultGetOwnerID(r *http.Request) int64 {
	return GetOwnerID(r.Context())
}

func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrNoOwnerID) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if IsAccessDenied(err) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if IsInvalidArgument(err) {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// GroupExtractor extracts the target group from an HTTP request.
type GroupExtractor func(*http.Request) (GroupRef, error)

// GroupFromParam creates a GroupExtractor that reads the group id from URL parameters.
// Compatible with chi, gorilla/mux, and standard library patterns.
//
// Example:
//
//	// For route /groups/{groupID}/tickets
//	mw.RequireAccess(zammad.GroupFromParam("groupID"), "read")
func GroupFromParam(paramName string) GroupExtractor {
	return func(r *http.Request) (GroupRef, error) {
		// Try chi/go-chi style
		raw := r.PathValue(paramName)
		if raw == "" {
			// Try context (set by router middleware)
			if v := r.Context().Value(paramName); v != nil {
				if s, ok := v.(string); ok {
					raw = s
				}
			}
		}
		if raw == "" {
			return nil, NewError(ErrInvalidArgument, "group id not found in request")
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, NewError(ErrInvalidArgument, "group id is not numeric").WithCause(err)
		}
		return GroupID(id), nil
	}
}

// GroupFromQuery creates a GroupExtractor that reads the group id from query parameters.
//
// Example:
//
//	// For route /api/tickets?group_id=42
//	mw.RequireAccess(zammad.GroupFromQuery("group_id"), "read")
func GroupFromQuery(queryParam string) GroupExtractor {
	return func(r *http.Request) (GroupRef, error) {
		raw := r.URL.Query().Get(queryParam)
		if raw == "" {
			return nil, NewError(ErrInvalidArgument, "group id not found in query")
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, NewError(ErrInvalidArgument, "group id is not numeric").WithCause(err)
		}
		return GroupID(id), nil
	}
}

// GroupFromHeader creates a GroupExtractor that reads the group id from a header.
//
// Example:
//
//	// For header X-Group-ID: 42
//	mw.RequireAccess(zammad.GroupFromHeader("X-Group-ID"), "change")
func GroupFromHeader(headerName string) GroupExtractor {
	return func(r *http.Request) (GroupRef, error) {
		raw := r.Header.Get(headerName)
		if raw == "" {
			return nil, NewError(ErrInvalidArgument, "group id not found in header")
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, NewError(ErrInvalidArgument, "group id is not numeric").WithCause(err)
		}
		return GroupID(id), nil
	}
}

// StaticGroup creates a GroupExtractor that always returns the same group.
// Useful for endpoints bound to a fixed group.
//
// Example:
//
//	mw.RequireAccess(zammad.StaticGroup(zammad.GroupID(1)), "full")
func StaticGroup(group GroupRef) GroupExtractor {
	return func(r *http.Request) (GroupRef, error) {
		return group, nil
	}
}

// RequireAccess creates middleware that requires any of the given access levels
// on the group the extractor resolves from the request.
//
// Example:
//
//	router.With(mw.RequireAccess(zammad.GroupFromParam("groupID"), "read")).
//	    Get("/groups/{groupID}/tickets", listTicketsHandler)
func (m *Middleware) RequireAccess(extractor GroupExtractor, access ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ownerID := m.getOwnerID(r)
			if ownerID == 0 {
				m.errorHandler(w, r, ErrNoOwnerID)
				return
			}

			group, err := extractor(r)
			if err != nil {
				m.errorHandler(w, r, err)
				return
			}

			allowed, err := m.service.HasAccess(ctx, ownerID, group, access...)
			if err != nil {
				m.errorHandler(w, r, err)
				return
			}
			if !allowed {
				groupID, _ := group.ResolveGroupID()
				m.errorHandler(w, r, NewError(ErrAccessDenied, "missing required group access").
					WithOwner(ownerID).
					WithGroup(groupID).
					WithAccess(access))
				return
			}

			// Add checker to context for use in handlers
			if svc, ok := m.service.(*Service); ok {
				ctx = WithChecker(ctx, svc.GetChecker(ownerID))
				r = r.WithContext(ctx)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// LoadChecker creates middleware that loads the owner's Checker into context.
// Use this when you want to do access checks in the handler rather than middleware.
//
// Example:
//
//	router.With(mw.LoadChecker()).Get("/dashboard", dashboardHandler)
//
//	func dashboardHandler(w http.ResponseWriter, r *http.Request) {
//	    checker := zammad.FromContext(r.Context())
//	    if checker.Can(r.Context(), zammad.GroupID(42), "overview") {
//	        // Show the group overview
//	    }
//	}
func (m *Middleware) LoadChecker() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ownerID := m.getOwnerID(r)
			if ownerID == 0 {
				// No owner, continue without checker
				next.ServeHTTP(w, r)
				return
			}

			svc, ok := m.service.(*Service)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithChecker(r.Context(), svc.GetChecker(ownerID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// InjectRequestMetadata creates middleware that extracts audit information from
// the request and adds it to the context for use in grant operations.
//
// Example:
//
//	router.Use(mw.InjectRequestMetadata())
func (m *Middleware) InjectRequestMetadata() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// Extract IP address
			ip := r.Header.Get("X-Forwarded-For")
			if ip == "" {
				ip = r.Header.Get("X-Real-IP")
			}
			if ip == "" {
				ip = r.RemoteAddr
			}
			ctx = WithIPAddress(ctx, ip)

			// Extract User Agent
			ctx = WithUserAgent(ctx, r.UserAgent())

			// Extract Request ID (commonly set by other middleware)
			requestID := r.Header.Get("X-Request-ID")
			if requestID != "" {
				ctx = WithRequestID(ctx, requestID)
			}

			// Propagate the owner id when the extractor finds one
			ownerID := m.getOwnerID(r)
			if ownerID != 0 {
				ctx = WithOwnerID(ctx, ownerID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
