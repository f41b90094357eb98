package zammad

import (
	"fmt"
	"slices"
	"sync"

	"github.com/fernandezvara/dbkit"
)

// Registry holds the owner type definitions for the application.
// It is created at startup and should be treated as immutable after initialization.
type Registry struct {
	mu     sync.RWMutex
	owners map[string]*OwnerType
}

// NewRegistry creates a new owner type registry.
func NewRegistry() *Registry {
	return &Registry{
		owners: make(map[string]*OwnerType),
	}
}

// Register validates and adds an owner type to the registry.
//
// Example:
//
//	registry := zammad.NewRegistry()
//	registry.Register(zammad.NewOwnerType("User").
//	    WithRoles(zammad.NewRoleBridge(db)))
//	registry.Register(zammad.NewOwnerType("Organization").
//	    Relation("groups_organizations", "organization_id"))
func (r *Registry) Register(owner *OwnerType) error {
	if owner == nil {
		return NewError(ErrInvalidArgument, "owner type must not be nil")
	}
	if err := owner.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.owners[owner.Name()]; exists {
		return NewError(ErrInvalidArgument, fmt.Sprintf("owner type %q already registered", owner.Name()))
	}
	r.owners[owner.Name()] = owner
	return nil
}

// Get returns the owner type with the given name.
// Returns nil if the owner type is not registered.
func (r *Registry) Get(name string) *OwnerType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.owners[name]
}

// MustGet returns the owner type with the given name and panics when it is
// not registered. Intended for startup wiring.
func (r *Registry) MustGet(name string) *OwnerType {
	owner := r.Get(name)
	if owner == nil {
		panic(fmt.Sprintf("zammad: owner type %q not registered", name))
	}
	return owner
}

// Names returns all registered owner type names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.owners))
	for name := range r.owners {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Validate checks if an owner type name is registered.
func (r *Registry) Validate(name string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, exists := r.owners[name]; !exists {
		return NewError(ErrInvalidArgument, fmt.Sprintf("owner type %q not registered", name))
	}
	return nil
}

// Migrations returns the relation table migrations for every registered owner
// type, in a stable order.
func (r *Registry) Migrations() []dbkit.Migration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.owners))
	for name := range r.owners {
		names = append(names, name)
	}
	slices.Sort(names)

	var migrations []dbkit.Migration
	for _, name := range names {
		migrations = append(migrations, RelationMigrations(r.owners[name])...)
	}
	return migrations
}
