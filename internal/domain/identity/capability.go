package identity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/bondledger/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Capability is a single action class an identity may perform.
type Capability string

const (
	CapabilityOwner          Capability = "OWNER"           // Platform owner: role administration, emergency paths
	CapabilityProjectManager Capability = "PROJECT_MANAGER" // Create projects and plan milestones
	CapabilityVerifier       Capability = "VERIFIER"        // Independent auditor completing milestones
	CapabilityMinter         Capability = "MINTER"          // Mint bond tokens
	CapabilityBurner         Capability = "BURNER"          // Burn bond tokens
	CapabilityPauser         Capability = "PAUSER"          // Pause/unpause token transfers
)

// IsValid checks if the capability is a known one
func (c Capability) IsValid() bool {
	switch c {
	case CapabilityOwner, CapabilityProjectManager, CapabilityVerifier,
		CapabilityMinter, CapabilityBurner, CapabilityPauser:
		return true
	}
	return false
}

// String returns the string representation of the capability
func (c Capability) String() string {
	return string(c)
}

// CapabilitySet is the set of capabilities held by a binding.
// Stored as a JSONB array; implements GORM Scanner/Valuer.
type CapabilitySet []Capability

// Value implements driver.Valuer for JSONB storage
func (s CapabilitySet) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSONB retrieval
func (s *CapabilitySet) Scan(value interface{}) error {
	if value == nil {
		*s = CapabilitySet{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan CapabilitySet: unsupported type")
	}

	if len(bytes) == 0 {
		*s = CapabilitySet{}
		return nil
	}

	return json.Unmarshal(bytes, s)
}

// Contains returns true if the set holds the given capability
func (s CapabilitySet) Contains(c Capability) bool {
	for _, held := range s {
		if held == c {
			return true
		}
	}
	return false
}

// RoleBinding binds an identity to a set of capabilities, either
// globally (ProjectID nil) or scoped to a single project.
// It is the aggregate root for access-control state; only an Owner
// may mutate bindings (enforced in the application layer).
type RoleBinding struct {
	shared.BaseAggregateRoot
	IdentityID   uuid.UUID     `gorm:"type:uuid;not null;index" json:"identity_id"`
	ProjectID    *uuid.UUID    `gorm:"type:uuid;index" json:"project_id,omitempty"` // nil = global scope
	Capabilities CapabilitySet `gorm:"type:jsonb" json:"capabilities"`
}

// TableName returns the table name for GORM
func (RoleBinding) TableName() string {
	return "role_bindings"
}

// NewRoleBinding creates a binding for an identity with an initial capability set
func NewRoleBinding(identityID uuid.UUID, projectID *uuid.UUID, caps ...Capability) (*RoleBinding, error) {
	if identityID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_IDENTITY", "Identity ID cannot be empty")
	}
	for _, c := range caps {
		if !c.IsValid() {
			return nil, shared.NewDomainError("INVALID_CAPABILITY", "Unknown capability: "+c.String())
		}
	}

	rb := &RoleBinding{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		IdentityID:        identityID,
		ProjectID:         projectID,
		Capabilities:      append(CapabilitySet{}, caps...),
	}

	rb.AddDomainEvent(NewCapabilityGrantedEvent(rb, caps...))

	return rb, nil
}

// Grant adds a capability to the binding. Granting an already-held
// capability is a no-op.
func (rb *RoleBinding) Grant(c Capability) error {
	if !c.IsValid() {
		return shared.NewDomainError("INVALID_CAPABILITY", "Unknown capability: "+c.String())
	}
	if rb.Capabilities.Contains(c) {
		return nil
	}

	rb.Capabilities = append(rb.Capabilities, c)
	rb.UpdatedAt = time.Now()
	rb.IncrementVersion()

	rb.AddDomainEvent(NewCapabilityGrantedEvent(rb, c))

	return nil
}

// Revoke removes a capability from the binding. Revoking a capability
// that is not held is a no-op.
func (rb *RoleBinding) Revoke(c Capability) error {
	if !c.IsValid() {
		return shared.NewDomainError("INVALID_CAPABILITY", "Unknown capability: "+c.String())
	}
	if !rb.Capabilities.Contains(c) {
		return nil
	}

	remaining := make(CapabilitySet, 0, len(rb.Capabilities)-1)
	for _, held := range rb.Capabilities {
		if held != c {
			remaining = append(remaining, held)
		}
	}
	rb.Capabilities = remaining
	rb.UpdatedAt = time.Now()
	rb.IncrementVersion()

	rb.AddDomainEvent(NewCapabilityRevokedEvent(rb, c))

	return nil
}

// Has returns true if the binding holds the capability
func (rb *RoleBinding) Has(c Capability) bool {
	return rb.Capabilities.Contains(c)
}

// IsGlobal returns true for platform-wide bindings
func (rb *RoleBinding) IsGlobal() bool {
	return rb.ProjectID == nil
}

// AppliesTo returns true if the binding covers the given project.
// Global bindings cover every project.
func (rb *RoleBinding) AppliesTo(projectID uuid.UUID) bool {
	return rb.ProjectID == nil || *rb.ProjectID == projectID
}

// Authorize is the pure authorization check at the top of every command:
// it scans the caller's bindings for one that covers the project and
// holds the required capability. A global Owner binding passes every
// check, so the platform owner can always operate the escape hatches.
func Authorize(bindings []RoleBinding, required Capability, projectID uuid.UUID) error {
	for i := range bindings {
		rb := &bindings[i]
		if rb.IsGlobal() && rb.Has(CapabilityOwner) {
			return nil
		}
		if rb.AppliesTo(projectID) && rb.Has(required) {
			return nil
		}
	}
	return shared.ErrUnauthorized
}
