package zammad

import "context"

// Checker provides access checking capabilities for a specific owner.
// It is typically created by the Service and stored in context for use in handlers.
type Checker struct {
	ownerID int64
	service *Service
}

// NewChecker creates a new Checker for an owner.
func NewChecker(ownerID int64, service *Service) *Checker {
	return &Checker{
		ownerID: ownerID,
		service: service,
	}
}

// OwnerID returns the owner id this checker is for.
func (c *Checker) OwnerID() int64 {
	return c.ownerID
}

// Can checks if the owner has any of the given access levels on a group.
// Lookup failures count as denial.
//
// Example:
//
//	if checker.Can(ctx, zammad.GroupID(42), "read") {
//	    // Owner can read tickets in group 42
//	}
func (c *Checker) Can(ctx context.Context, group GroupRef, access ...string) bool {
	allowed, err := c.service.HasAccess(ctx, c.ownerID, group, access...)
	if err != nil {
		return false
	}
	return allowed
}

// CanAll checks if the owner has every one of the given access levels on a group.
// An empty level list is denied, matching Can.
//
// Example:
//
//	if checker.CanAll(ctx, zammad.GroupID(42), "read", "change") {
//	    // Owner holds both levels
//	}
func (c *Checker) CanAll(ctx context.Context, group GroupRef, access ...string) bool {
	if len(access) == 0 {
		return false
	}
	for _, level := range access {
		if !c.Can(ctx, group, level) {
			return false
		}
	}
	return true
}

// GroupIDs returns the ids of all groups the owner can reach with the given access.
func (c *Checker) GroupIDs(ctx context.Context, access ...string) ([]int64, error) {
	return c.service.AccessibleGroupIDs(ctx, c.ownerID, access...)
}

// Groups returns all groups the owner can reach with the given access.
//
// Example:
//
//	groups, err := checker.Groups(ctx, "overview")
//	// groups might be [Sales, Support]
func (c *Checker) Groups(ctx context.Context, access ...string) ([]Group, error) {
	return c.service.AccessibleGroups(ctx, c.ownerID, access...)
}

// AccessMap returns the owner's stored grants keyed by group id.
func (c *Checker) AccessMap(ctx context.Context) (map[int64][]string, error) {
	return c.service.AccessMapByID(ctx, c.ownerID)
}

// IsEmpty returns true if the owner holds no stored grants at all.
func (c *Checker) IsEmpty(ctx context.Context) bool {
	m, err := c.service.AccessMapByID(ctx, c.ownerID)
	if err != nil {
		return true
	}
	return len(m) == 0
}

// GetChecker creates a Checker bound to the given owner.
func (s *Service) GetChecker(ownerID int64) *Checker {
	return NewChecker(ownerID, s)
}

// GetCheckerFromContext creates a Checker for the owner id stored in the context.
// Returns ErrNoOwnerID when the context carries no owner.
func (s *Service) GetCheckerFromContext(ctx context.Context) (*Checker, error) {
	ownerID := GetOwnerID(ctx)
	if ownerID == 0 {
		return nil, ErrNoOwnerID
	}
	return NewChecker(ownerID, s), nil
}
