package zammad

// Access levels form an open string set; these are the levels the stock
// permission screens use. Callers may store and query any other level.
const (
	AccessRead     = "read"
	AccessWrite    = "write"
	AccessCreate   = "create"
	AccessChange   = "change"
	AccessOverview = "overview"

	// AccessFull is the sentinel level. Every query access list and every
	// stored grant set is normalized to include it, so a "full" grant
	// satisfies any requested level and any grant satisfies a "full" query.
	AccessFull = "full"
)

// NormalizeAccess returns a de-duplicated copy of the given access levels
// that is guaranteed to contain AccessFull exactly once. First-occurrence
// order is preserved; the sentinel is appended when absent.
//
// An empty list or a blank level fails with ErrInvalidArgument. This is the
// single entry point for access-level validation: every read and write
// operation of the Service runs its access input through it.
func NormalizeAccess(access ...string) ([]string, error) {
	normalized, err := normalizeAccess(access)
	if err != nil {
		return nil, err
	}
	return normalized, nil
}

func normalizeAccess(access []string) ([]string, *Error) {
	if len(access) == 0 {
		return nil, NewError(ErrInvalidArgument, "access list must not be empty")
	}

	normalized := make([]string, 0, len(access)+1)
	seen := make(map[string]struct{}, len(access)+1)
	for _, level := range access {
		if level == "" {
			return nil, NewError(ErrInvalidArgument, "access level must not be blank").WithAccess(access)
		}
		if _, ok := seen[level]; ok {
			continue
		}
		seen[level] = struct{}{}
		normalized = append(normalized, level)
	}

	if _, ok := seen[AccessFull]; !ok {
		normalized = append(normalized, AccessFull)
	}

	return normalized, nil
}

// GroupRef identifies a group either by raw id or by a loaded record, so
// operations accept both without the caller unpacking ids by hand.
//
//	svc.HasAccess(ctx, userID, zammad.GroupID(1), zammad.AccessRead)
//	svc.HasAccess(ctx, userID, group, zammad.AccessRead)
type GroupRef interface {
	// ResolveGroupID returns the referenced group id.
	ResolveGroupID() (int64, error)
}

// GroupID is a raw group id usable wherever a GroupRef is expected.
type GroupID int64

// ResolveGroupID implements GroupRef.
func (id GroupID) ResolveGroupID() (int64, error) {
	if id <= 0 {
		return 0, NewError(ErrInvalidArgument, "group id must be positive")
	}
	return int64(id), nil
}

// ResolveGroupID implements GroupRef for a loaded Group record.
func (g *Group) ResolveGroupID() (int64, error) {
	if g == nil {
		return 0, NewError(ErrInvalidArgument, "group reference is nil")
	}
	if g.ID <= 0 {
		return 0, NewError(ErrInvalidArgument, "group record has no id")
	}
	return g.ID, nil
}

// resolveGroupRef unwraps a GroupRef, rejecting nil references before any
// store access happens.
func resolveGroupRef(ref GroupRef) (int64, error) {
	if ref == nil {
		return 0, NewError(ErrInvalidArgument, "group reference is nil")
	}
	return ref.ResolveGroupID()
}
