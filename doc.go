// Package zammad provides group-based access control for ticket systems.
//
// Owners (users, organizations, or any other entity with a numeric id) hold
// access levels on groups. Access is granted either directly, through rows in
// a per-owner-type relation table, or indirectly through the roles the owner
// belongs to. Access checks and group listings return the union of both
// sources; access maps report stored grants only.
//
// # Core Concepts
//
// Group: A named partition of work (e.g. "Sales", "2nd Level Support") with
// an active flag. Inactive groups grant no access at all, direct or
// role-derived.
//
// Access level: One of "read", "write", "create", "change", "overview" or the
// sentinel "full". Every query list and every stored grant set is normalized
// to contain "full", so a "full" grant satisfies any requested level and any
// grant satisfies a "full" query.
//
// Owner type: Describes where an entity keeps its grants: the relation table,
// the foreign key column, and optionally a role bridge for indirect access.
// The default relation binding is the user table ("groups_users" keyed by
// "user_id").
//
// Grant set: A staging buffer for grant changes. Grants are staged first and
// then committed in a single transaction that replaces the owner's stored
// grants atomically.
//
// # Key Features
//
//   - Entity-agnostic: Works with any owner type you define
//   - Union semantics: Direct and role-derived access combine, never conflict
//   - Normalized storage: every stored grant set carries the "full" sentinel
//   - Atomic replacement: Commit destroys and recreates grants in one transaction
//   - Detailed audit logging: Previous state, applied state, request metadata
//   - Optional caching: Plug in a TTL cache for hot single checks
//   - DBKit integration: Uses your existing database connection
//
// # Basic Usage
//
//	// 1. Describe the owner type (at application startup)
//	owner := zammad.NewOwnerType("User").WithRoles(zammad.NewRoleBridge(db))
//
//	// 2. Create the service
//	service, err := zammad.NewService(owner, db)
//
//	// 3. Run migrations
//	zammad.NewMigrationService(service).Run(ctx)
//
//	// 4. Grant access
//	applied, err := service.SetAccessMapByName(ctx, userID, map[string][]string{
//	    "Sales":   {"read", "write"},
//	    "Support": {"full"},
//	})
//
//	// 5. Check access
//	ok, err := service.HasAccess(ctx, userID, zammad.GroupID(42), "read")
//
//	// 6. List what the user can reach
//	groups, err := service.AccessibleGroups(ctx, userID, "overview")
//
// # Staged Grants
//
// For finer control over the replacement, stage grants explicitly and commit
// them when ready:
//
//	grants := zammad.NewGrantSet()
//	err := service.StageByName(ctx, grants, map[string][]string{
//	    "Sales": {"read", "write"},  // stored with the "full" sentinel added
//	})
//	err = service.Commit(ctx, userID, grants)
//
// An unstaged grant set commits as a no-op. A staged but empty grant set
// removes every stored grant.
//
// # Middleware Usage
//
//	mw := zammad.NewMiddleware(service)
//
//	router.Use(mw.InjectRequestMetadata())
//	router.With(mw.RequireAccess(zammad.GroupFromParam("groupID"), "read")).
//	    Get("/groups/{groupID}/tickets", listTicketsHandler)
//
// Handlers behind the middleware can pull a Checker from the request context:
//
//	checker := zammad.FromContext(r.Context())
//	if checker.Can(r.Context(), zammad.GroupID(42), "change") {
//	    // Owner may update tickets in this group
//	}
//
// # Role-Derived Access
//
// When the owner type has roles enabled, access checks also consult the
// owner's active roles and the group grants attached to them. Role-derived
// access is read-only: it widens HasAccess, AccessibleGroups and
// OwnerIDsWithAccess, but never appears in AccessMapByID or AccessMapByName,
// which report stored grants only.
//
// # Audit Log
//
// Every commit is logged with:
//   - Owner type and owner id
//   - Previous grants (what the replacement destroyed)
//   - Applied grants
//   - Timestamp
//   - Request metadata (IP, user agent, request ID)
package zammad
