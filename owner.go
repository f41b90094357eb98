package zammad

import "fmt"

// Default relation binding, matching the stock schema shipped by
// Migrations. Owner types bound to other entities declare their own names.
const (
	DefaultRelationTable = "groups_users"
	DefaultForeignKey    = "user_id"
)

// OwnerType declares an entity type that can hold group access: its name,
// the relation table storing its direct grants, the foreign-key column
// pointing at the owner, and optionally a RoleBridge for indirect access.
//
// Table and column names are declared here explicitly and never derived
// from model reflection. An OwnerType is created at startup and treated as
// immutable once a Service is built on it.
type OwnerType struct {
	name          string
	relationTable string
	foreignKey    string
	bridge        RoleBridge
}

// NewOwnerType declares an owner entity type bound to the default relation
// table. Returns the declaration for fluent configuration.
//
// Example:
//
//	owner := zammad.NewOwnerType("User").
//	    Relation("groups_users", "user_id").
//	    WithRoles(bridge)
func NewOwnerType(name string) *OwnerType {
	return &OwnerType{
		name:          name,
		relationTable: DefaultRelationTable,
		foreignKey:    DefaultForeignKey,
	}
}

// Relation declares the direct relation table and the owner foreign-key
// column within it.
func (t *OwnerType) Relation(table, foreignKey string) *OwnerType {
	t.relationTable = table
	t.foreignKey = foreignKey
	return t
}

// WithRoles attaches a RoleBridge, enabling role-derived access for this
// owner type. Owner types without a bridge resolve direct access only.
func (t *OwnerType) WithRoles(bridge RoleBridge) *OwnerType {
	t.bridge = bridge
	return t
}

// Name returns the declared entity name.
func (t *OwnerType) Name() string {
	return t.name
}

// RelationTable returns the declared direct relation table.
func (t *OwnerType) RelationTable() string {
	return t.relationTable
}

// ForeignKey returns the declared owner foreign-key column.
func (t *OwnerType) ForeignKey() string {
	return t.foreignKey
}

// Roles returns the attached RoleBridge, or nil when the owner type has no
// role support.
func (t *OwnerType) Roles() RoleBridge {
	return t.bridge
}

// HasRoles reports whether role-derived access applies to this owner type.
// The capability is resolved here, once, not probed per call.
func (t *OwnerType) HasRoles() bool {
	return t != nil && t.bridge != nil
}

// validate rejects declarations a Service cannot query.
func (t *OwnerType) validate() error {
	if t == nil {
		return NewError(ErrInvalidArgument, "owner type is nil")
	}
	if t.name == "" {
		return NewError(ErrInvalidArgument, "owner type name must not be empty")
	}
	if t.relationTable == "" || t.foreignKey == "" {
		return NewError(ErrInvalidArgument, fmt.Sprintf("owner type %q needs a relation table and foreign key", t.name))
	}
	return nil
}
