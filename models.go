package zammad

import (
	"strconv"
	"time"

	"github.com/uptrace/bun"
)

// Group is an access-controlled resource. Only active groups participate in
// access resolution; relations to inactive groups stay stored but behave as
// if they did not exist.
type Group struct {
	bun.BaseModel `bun:"table:groups,alias:g"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,notnull"`
	Active    bool      `bun:"active,notnull,default:true"`
	Note      string    `bun:"note"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// GroupRelation is one direct access grant: (owner, group, access level).
// An owner holding several levels on one group is stored as several rows.
// Rows live in the relation table declared by the OwnerType and are only
// ever written as a whole set, by Commit.
type GroupRelation struct {
	OwnerID int64
	GroupID int64
	Access  string
}

// Role is part of the standard role bridge schema. Roles are administered
// by the role subsystem; this module only reads them, and only active roles
// contribute indirect group access.
type Role struct {
	bun.BaseModel `bun:"table:roles,alias:r"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,notnull"`
	Active    bool      `bun:"active,notnull,default:true"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// RoleRelation links an owner to a role in the standard bridge schema
// (`roles_users`). Bridges declared over other tables query by name instead
// of through this model.
type RoleRelation struct {
	bun.BaseModel `bun:"table:roles_users,alias:ru"`

	OwnerID int64 `bun:"user_id,pk"`
	RoleID  int64 `bun:"role_id,pk"`
}

// RoleGroupRelation is one role-derived access grant: (role, group, access
// level). Structurally the role-side twin of GroupRelation, replaced as a
// whole per role by SetRoleAccessMap.
type RoleGroupRelation struct {
	bun.BaseModel `bun:"table:roles_groups,alias:rg"`

	RoleID  int64  `bun:"role_id,pk"`
	GroupID int64  `bun:"group_id,pk"`
	Access  string `bun:"access,pk"`
}

// AccessAuditLog records one atomic replace of an owner's direct relation
// set: the full map before and after, plus request metadata for forensics.
// Written best-effort after a successful commit.
type AccessAuditLog struct {
	bun.BaseModel `bun:"table:group_access_audit_log,alias:gal"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Timestamp time.Time `bun:"timestamp,notnull,default:current_timestamp"`

	OwnerType string `bun:"owner_type,notnull"`
	OwnerID   int64  `bun:"owner_id,notnull"`

	// Access maps keyed by decimal group id, one level list per group.
	Previous map[string][]string `bun:"previous,type:jsonb"`
	Applied  map[string][]string `bun:"applied,type:jsonb"`

	// Request metadata, taken from context when present.
	IPAddress string `bun:"ip_address"`
	UserAgent string `bun:"user_agent"`
	RequestID string `bun:"request_id"`
}

// AuditEntry is used to create new audit log entries.
type AuditEntry struct {
	OwnerType string
	OwnerID   int64
	Previous  map[int64][]string
	Applied   map[int64][]string
	IPAddress string
	UserAgent string
	RequestID string
}

// ToModel converts an AuditEntry to an AccessAuditLog model.
func (e *AuditEntry) ToModel() *AccessAuditLog {
	return &AccessAuditLog{
		OwnerType: e.OwnerType,
		OwnerID:   e.OwnerID,
		Previous:  auditMap(e.Previous),
		Applied:   auditMap(e.Applied),
		IPAddress: e.IPAddress,
		UserAgent: e.UserAgent,
		RequestID: e.RequestID,
		Timestamp: time.Now(),
	}
}

// auditMap re-keys an id-keyed access map for JSONB storage.
func auditMap(m map[int64][]string) map[string][]string {
	if m == nil {
		return nil
	}
	out := make(map[string][]string, len(m))
	for id, access := range m {
		out[strconv.FormatInt(id, 10)] = access
	}
	return out
}
