package zammad

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestNewAuditLogFilter tests creating a new audit log filter
func TestNewAuditLogFilter(t *testing.T) {
	filter := NewAuditLogFilter()

	assert.Equal(t, 100, filter.Limit)
	assert.Equal(t, 0, filter.Offset)
	assert.Equal(t, "", filter.OwnerType)
	assert.Equal(t, int64(0), filter.OwnerID)
	assert.Equal(t, "", filter.RequestID)
	assert.True(t, filter.Since.IsZero())
	assert.True(t, filter.Until.IsZero())
}

// TestAuditLogFilterWithOwnerType tests the owner type filter
func TestAuditLogFilterWithOwnerType(t *testing.T) {
	filter := NewAuditLogFilter().WithOwnerType("User")
	assert.Equal(t, "User", filter.OwnerType)
}

// TestAuditLogFilterWithOwner tests the owner id filter
func TestAuditLogFilterWithOwner(t *testing.T) {
	filter := NewAuditLogFilter().WithOwner(7)
	assert.Equal(t, int64(7), filter.OwnerID)
}

// TestAuditLogFilterWithRequestID tests the request id filter
func TestAuditLogFilterWithRequestID(t *testing.T) {
	filter := NewAuditLogFilter().WithRequestID("req-123")
	assert.Equal(t, "req-123", filter.RequestID)
}

// TestAuditLogFilterWithTimeRange tests the time range filter
func TestAuditLogFilterWithTimeRange(t *testing.T) {
	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	filter := NewAuditLogFilter().WithTimeRange(since, until)
	assert.Equal(t, since, filter.Since)
	assert.Equal(t, until, filter.Until)
}

// TestAuditLogFilterWithSinceUntil tests the one-sided time filters
func TestAuditLogFilterWithSinceUntil(t *testing.T) {
	since := time.Now().Add(-time.Hour)
	until := time.Now()

	filter := NewAuditLogFilter().WithSince(since)
	assert.Equal(t, since, filter.Since)
	assert.True(t, filter.Until.IsZero())

	filter = NewAuditLogFilter().WithUntil(until)
	assert.Equal(t, until, filter.Until)
	assert.True(t, filter.Since.IsZero())
}

// TestAuditLogFilterPagination tests limit and offset setters
func TestAuditLogFilterPagination(t *testing.T) {
	filter := NewAuditLogFilter().WithLimit(10).WithOffset(20)
	assert.Equal(t, 10, filter.Limit)
	assert.Equal(t, 20, filter.Offset)

	filter = NewAuditLogFilter().WithPagination(25, 50)
	assert.Equal(t, 25, filter.Limit)
	assert.Equal(t, 50, filter.Offset)
}

// TestAuditLogFilterChaining tests combining every filter
func TestAuditLogFilterChaining(t *testing.T) {
	since := time.Now().Add(-24 * time.Hour)
	until := time.Now()

	filter := NewAuditLogFilter().
		WithOwnerType("User").
		WithOwner(7).
		WithRequestID("req-123").
		WithTimeRange(since, until).
		WithPagination(10, 5)

	assert.Equal(t, "User", filter.OwnerType)
	assert.Equal(t, int64(7), filter.OwnerID)
	assert.Equal(t, "req-123", filter.RequestID)
	assert.Equal(t, since, filter.Since)
	assert.Equal(t, until, filter.Until)
	assert.Equal(t, 10, filter.Limit)
	assert.Equal(t, 5, filter.Offset)
}

// TestAuditLogFilterValueSemantics tests that filters don't share state
func TestAuditLogFilterValueSemantics(t *testing.T) {
	base := NewAuditLogFilter()

	withOwner := base.WithOwner(7)
	withRequest := base.WithRequestID("req-123")

	assert.Equal(t, int64(0), base.OwnerID)
	assert.Equal(t, "", base.RequestID)
	assert.Equal(t, int64(7), withOwner.OwnerID)
	assert.Equal(t, "", withOwner.RequestID)
	assert.Equal(t, "req-123", withRequest.RequestID)
}

// TestNewGroupFilter tests creating a new group filter
func TestNewGroupFilter(t *testing.T) {
	filter := NewGroupFilter()

	assert.Equal(t, 100, filter.Limit)
	assert.Equal(t, 0, filter.Offset)
	assert.Nil(t, filter.Active)
	assert.Empty(t, filter.Names)
}

// TestGroupFilterWithNames tests the names filter
func TestGroupFilterWithNames(t *testing.T) {
	filter := NewGroupFilter().WithNames("Sales", "Support")
	assert.Equal(t, []string{"Sales", "Support"}, filter.Names)
}

// TestGroupFilterWithActive tests the active flag filter
func TestGroupFilterWithActive(t *testing.T) {
	active := NewGroupFilter().WithActive(true)
	if assert.NotNil(t, active.Active) {
		assert.True(t, *active.Active)
	}

	inactive := NewGroupFilter().WithActive(false)
	if assert.NotNil(t, inactive.Active) {
		assert.False(t, *inactive.Active)
	}
}

// TestGroupFilterPagination tests limit and offset setters
func TestGroupFilterPagination(t *testing.T) {
	filter := NewGroupFilter().WithLimit(5).WithOffset(10)
	assert.Equal(t, 5, filter.Limit)
	assert.Equal(t, 10, filter.Offset)
}
