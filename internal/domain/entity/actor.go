package entity

import "github.com/google/uuid"

// Capability is a permission granted to a role. Access decisions dispatch on
// capability membership rather than on role names.
type Capability uint8

const (
	CapabilityReadOwn Capability = 1 << iota
	CapabilityMutateOwn
	CapabilityReadAll
	CapabilityOverride
)

// roleCapabilities is the closed mapping from role to granted capabilities.
var roleCapabilities = map[int]Capability{
	RoleIDAdmin:   CapabilityReadOwn | CapabilityMutateOwn | CapabilityReadAll | CapabilityOverride,
	RoleIDDoctor:  CapabilityReadOwn | CapabilityMutateOwn,
	RoleIDPatient: CapabilityReadOwn | CapabilityMutateOwn,
}

// Actor is the authenticated identity attempting an operation, resolved by
// the auth middleware from token claims.
type Actor struct {
	UserID uuid.UUID
	RoleID int
}

// Can reports whether the actor's role grants the capability.
func (a Actor) Can(c Capability) bool {
	return roleCapabilities[a.RoleID]&c == c
}

// IsDoctor reports whether the actor acts in the doctor role.
func (a Actor) IsDoctor() bool {
	return a.RoleID == RoleIDDoctor
}

// IsPatient reports whether the actor acts in the patient role.
func (a Actor) IsPatient() bool {
	return a.RoleID == RoleIDPatient
}
