package zammad

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSentinelErrors tests that all sentinel errors are properly defined
func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		msg  string
	}{
		{"ErrInvalidArgument", ErrInvalidArgument, "zammad: invalid argument"},
		{"ErrStoreFailure", ErrStoreFailure, "zammad: store failure"},
		{"ErrAccessDenied", ErrAccessDenied, "zammad: access denied"},
		{"ErrNoOwnerID", ErrNoOwnerID, "zammad: owner id not in context"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.msg, tt.err.Error())
			assert.NotNil(t, tt.err)
		})
	}
}

// TestError_Error tests the Error method of Error struct
func TestError_Error(t *testing.T) {
	t.Run("With message", func(t *testing.T) {
		err := &Error{
			Err:     ErrInvalidArgument,
			Message: "access list must not be empty",
		}
		expected := "zammad: invalid argument: access list must not be empty"
		assert.Equal(t, expected, err.Error())
	})

	t.Run("Without message", func(t *testing.T) {
		err := &Error{
			Err: ErrInvalidArgument,
		}
		assert.Equal(t, "zammad: invalid argument", err.Error())
	})

	t.Run("With cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := &Error{
			Err:     ErrStoreFailure,
			Message: "deleting relations",
			Cause:   cause,
		}
		expected := "zammad: store failure: deleting relations: connection refused"
		assert.Equal(t, expected, err.Error())
	})
}

// TestError_Unwrap tests that both the sentinel and the cause are exposed
func TestError_Unwrap(t *testing.T) {
	t.Run("Without cause", func(t *testing.T) {
		err := NewError(ErrInvalidArgument, "test message")
		assert.Equal(t, []error{ErrInvalidArgument}, err.Unwrap())
	})

	t.Run("With cause", func(t *testing.T) {
		cause := errors.New("duplicate key value")
		err := NewError(ErrStoreFailure, "inserting relations").WithCause(cause)
		assert.Equal(t, []error{ErrStoreFailure, cause}, err.Unwrap())
	})

	t.Run("errors.Is sees the cause", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := storeErr(cause, "checking direct access")

		assert.True(t, errors.Is(err, ErrStoreFailure))
		assert.True(t, errors.Is(err, cause))
		assert.False(t, errors.Is(err, ErrInvalidArgument))
	})
}

// TestNewError tests creating new Error instances
func TestNewError(t *testing.T) {
	err := NewError(ErrInvalidArgument, "group reference is nil")

	assert.Equal(t, ErrInvalidArgument, err.Err)
	assert.Equal(t, "group reference is nil", err.Message)
	assert.Equal(t, "zammad: invalid argument: group reference is nil", err.Error())
}

// TestError_WithMethods tests the fluent context setters
func TestError_WithMethods(t *testing.T) {
	t.Run("WithOwner", func(t *testing.T) {
		err := NewError(ErrStoreFailure, "test")
		result := err.WithOwner(7)

		assert.Same(t, err, result)
		assert.Equal(t, int64(7), result.OwnerID)
	})

	t.Run("WithGroup", func(t *testing.T) {
		err := NewError(ErrStoreFailure, "test")
		result := err.WithGroup(42)

		assert.Same(t, err, result)
		assert.Equal(t, int64(42), result.GroupID)
	})

	t.Run("WithGroupName", func(t *testing.T) {
		err := NewError(ErrStoreFailure, "test")
		result := err.WithGroupName("Sales")

		assert.Same(t, err, result)
		assert.Equal(t, "Sales", result.Group)
	})

	t.Run("WithAccess", func(t *testing.T) {
		err := NewError(ErrStoreFailure, "test")
		result := err.WithAccess([]string{"read", "full"})

		assert.Same(t, err, result)
		assert.Equal(t, []string{"read", "full"}, result.Access)
	})

	t.Run("WithCause", func(t *testing.T) {
		cause := errors.New("boom")
		err := NewError(ErrStoreFailure, "test")
		result := err.WithCause(cause)

		assert.Same(t, err, result)
		assert.Equal(t, cause, result.Cause)
	})
}

// TestError_Chaining tests chaining multiple With methods
func TestError_Chaining(t *testing.T) {
	cause := errors.New("foreign key violation")
	err := NewError(ErrStoreFailure, "inserting relations").
		WithOwner(7).
		WithGroup(3).
		WithGroupName("Support").
		WithAccess([]string{"read", "full"}).
		WithCause(cause)

	assert.Equal(t, ErrStoreFailure, err.Err)
	assert.Equal(t, "inserting relations", err.Message)
	assert.Equal(t, int64(7), err.OwnerID)
	assert.Equal(t, int64(3), err.GroupID)
	assert.Equal(t, "Support", err.Group)
	assert.Equal(t, []string{"read", "full"}, err.Access)
	assert.Equal(t, cause, err.Cause)
}

// TestIsInvalidArgument tests checking for invalid-input errors
func TestIsInvalidArgument(t *testing.T) {
	t.Run("Direct sentinel error", func(t *testing.T) {
		assert.True(t, IsInvalidArgument(ErrInvalidArgument))
		assert.False(t, IsInvalidArgument(ErrStoreFailure))
	})

	t.Run("Wrapped error", func(t *testing.T) {
		err := NewError(ErrInvalidArgument, "access level must not be blank")
		assert.True(t, IsInvalidArgument(err))
		assert.False(t, IsInvalidArgument(NewError(ErrStoreFailure, "boom")))
	})

	t.Run("Nil error", func(t *testing.T) {
		assert.False(t, IsInvalidArgument(nil))
	})

	t.Run("Different error", func(t *testing.T) {
		assert.False(t, IsInvalidArgument(errors.New("some other error")))
	})
}

// TestIsStoreFailure tests checking for store failures
func TestIsStoreFailure(t *testing.T) {
	t.Run("Direct sentinel error", func(t *testing.T) {
		assert.True(t, IsStoreFailure(ErrStoreFailure))
		assert.False(t, IsStoreFailure(ErrInvalidArgument))
	})

	t.Run("Wrapped error", func(t *testing.T) {
		err := storeErr(errors.New("timeout"), "reading access map")
		assert.True(t, IsStoreFailure(err))
	})

	t.Run("Nil error", func(t *testing.T) {
		assert.False(t, IsStoreFailure(nil))
	})
}

// TestIsAccessDenied tests checking for middleware denials
func TestIsAccessDenied(t *testing.T) {
	t.Run("Direct sentinel error", func(t *testing.T) {
		assert.True(t, IsAccessDenied(ErrAccessDenied))
		assert.False(t, IsAccessDenied(ErrStoreFailure))
	})

	t.Run("Wrapped error", func(t *testing.T) {
		err := NewError(ErrAccessDenied, "missing required group access").WithOwner(7)
		assert.True(t, IsAccessDenied(err))
	})

	t.Run("Nil error", func(t *testing.T) {
		assert.False(t, IsAccessDenied(nil))
	})
}

// TestStoreErr tests the internal store-failure wrapper
func TestStoreErr(t *testing.T) {
	cause := errors.New("relation \"groups\" does not exist")
	err := storeErr(cause, "listing direct group ids")

	assert.Equal(t, ErrStoreFailure, err.Err)
	assert.Equal(t, "listing direct group ids", err.Message)
	assert.Equal(t, cause, err.Cause)
	assert.True(t, IsStoreFailure(err))
}

// TestError_CompatibilityWithStandardErrors tests compatibility with Go's error handling
func TestError_CompatibilityWithStandardErrors(t *testing.T) {
	err := NewError(ErrInvalidArgument, "test message")

	// Test with errors.Is
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	assert.False(t, errors.Is(err, ErrStoreFailure))

	// Test with errors.As
	var target *Error
	require.True(t, errors.As(err, &target))
	assert.Same(t, err, target)

	// Test with custom error
	customErr := errors.New("custom error")
	assert.False(t, errors.As(customErr, &target))
}

// TestError_EdgeCases tests edge cases and special values
func TestError_EdgeCases(t *testing.T) {
	t.Run("Empty strings in fields", func(t *testing.T) {
		err := &Error{
			Err:     ErrInvalidArgument,
			Message: "",
			Group:   "",
		}
		assert.Equal(t, "zammad: invalid argument", err.Error())
	})

	t.Run("Special characters in message", func(t *testing.T) {
		err := NewError(ErrInvalidArgument, "Gruppe 'Vertrieb' nicht gefunden")
		expected := "zammad: invalid argument: Gruppe 'Vertrieb' nicht gefunden"
		assert.Equal(t, expected, err.Error())
	})

	t.Run("Independent instances", func(t *testing.T) {
		err1 := NewError(ErrInvalidArgument, "test1")
		err2 := NewError(ErrStoreFailure, "test2")

		err1.WithOwner(7).WithGroup(3)

		assert.Equal(t, int64(0), err2.OwnerID)
		assert.Equal(t, int64(0), err2.GroupID)
	})
}
