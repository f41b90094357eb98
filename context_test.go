package zammad

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWithOwnerID tests adding an owner id to context
func TestWithOwnerID(t *testing.T) {
	ctx := context.Background()

	result := WithOwnerID(ctx, 7)

	assert.Equal(t, int64(7), GetOwnerID(result))
	assert.Equal(t, int64(7), MustGetOwnerID(result))
}

// TestGetOwnerID tests retrieving the owner id from context
func TestGetOwnerID(t *testing.T) {
	t.Run("Without owner id", func(t *testing.T) {
		assert.Equal(t, int64(0), GetOwnerID(context.Background()))
	})

	t.Run("With owner id", func(t *testing.T) {
		ctx := WithOwnerID(context.Background(), 42)
		assert.Equal(t, int64(42), GetOwnerID(ctx))
	})

	t.Run("Wrong value type under the key", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), contextKeyOwnerID, "not-an-int")
		assert.Equal(t, int64(0), GetOwnerID(ctx))
	})
}

// TestMustGetOwnerID tests the panicking owner id accessor
func TestMustGetOwnerID(t *testing.T) {
	assert.Panics(t, func() {
		MustGetOwnerID(context.Background())
	})
}

// TestWithIPAddress tests adding an IP address to context
func TestWithIPAddress(t *testing.T) {
	ctx := WithIPAddress(context.Background(), "192.168.1.1")
	assert.Equal(t, "192.168.1.1", GetIPAddress(ctx))
}

// TestGetIPAddressEmpty tests the default IP address
func TestGetIPAddressEmpty(t *testing.T) {
	assert.Equal(t, "", GetIPAddress(context.Background()))
}

// TestWithUserAgent tests adding a user agent to context
func TestWithUserAgent(t *testing.T) {
	ctx := WithUserAgent(context.Background(), "Mozilla/5.0")
	assert.Equal(t, "Mozilla/5.0", GetUserAgent(ctx))
}

// TestWithRequestID tests adding a request id to context
func TestWithRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	assert.Equal(t, "req-123", GetRequestID(ctx))
}

// TestWithChecker tests storing a Checker in context
func TestWithChecker(t *testing.T) {
	service, err := NewService(NewOwnerType("User"), nil)
	require.NoError(t, err)
	checker := service.GetChecker(7)

	ctx := WithChecker(context.Background(), checker)

	assert.Same(t, checker, GetChecker(ctx))
	assert.Same(t, checker, FromContext(ctx))
}

// TestGetCheckerEmpty tests Checker retrieval from a bare context
func TestGetCheckerEmpty(t *testing.T) {
	assert.Nil(t, GetChecker(context.Background()))
	assert.Nil(t, FromContext(context.Background()))
}

// TestGetRequestMetadata tests extracting all audit fields at once
func TestGetRequestMetadata(t *testing.T) {
	t.Run("Full metadata", func(t *testing.T) {
		ctx := context.Background()
		ctx = WithIPAddress(ctx, "10.0.0.1")
		ctx = WithUserAgent(ctx, "curl/8.0")
		ctx = WithRequestID(ctx, "req-456")

		meta := GetRequestMetadata(ctx)
		assert.Equal(t, "10.0.0.1", meta.IPAddress)
		assert.Equal(t, "curl/8.0", meta.UserAgent)
		assert.Equal(t, "req-456", meta.RequestID)
	})

	t.Run("Empty context", func(t *testing.T) {
		meta := GetRequestMetadata(context.Background())
		assert.Equal(t, RequestMetadata{}, meta)
	})
}

// TestWithRequestMetadata tests attaching all audit fields at once
func TestWithRequestMetadata(t *testing.T) {
	t.Run("Full metadata round-trips", func(t *testing.T) {
		meta := RequestMetadata{
			IPAddress: "10.0.0.2",
			UserAgent: "Go-http-client/2.0",
			RequestID: "req-789",
		}

		ctx := WithRequestMetadata(context.Background(), meta)
		assert.Equal(t, meta, GetRequestMetadata(ctx))
	})

	t.Run("Empty fields leave the context untouched", func(t *testing.T) {
		base := WithIPAddress(context.Background(), "10.0.0.3")

		ctx := WithRequestMetadata(base, RequestMetadata{})
		assert.Equal(t, "10.0.0.3", GetIPAddress(ctx))
	})

	t.Run("Partial metadata", func(t *testing.T) {
		ctx := WithRequestMetadata(context.Background(), RequestMetadata{RequestID: "req-1"})

		meta := GetRequestMetadata(ctx)
		assert.Equal(t, "req-1", meta.RequestID)
		assert.Equal(t, "", meta.IPAddress)
		assert.Equal(t, "", meta.UserAgent)
	})
}
