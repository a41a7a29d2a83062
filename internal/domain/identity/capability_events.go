package identity

import (
	"github.com/bondledger/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CapabilityGrantedEvent is raised when capabilities are granted to an identity
type CapabilityGrantedEvent struct {
	shared.BaseDomainEvent
	BindingID    uuid.UUID    `json:"binding_id"`
	IdentityID   uuid.UUID    `json:"identity_id"`
	ProjectID    *uuid.UUID   `json:"project_id,omitempty"`
	Capabilities []Capability `json:"capabilities"`
}

// EventType returns the event type name
func (e *CapabilityGrantedEvent) EventType() string {
	return "CapabilityGranted"
}

// NewCapabilityGrantedEvent creates a new CapabilityGrantedEvent
func NewCapabilityGrantedEvent(rb *RoleBinding, caps ...Capability) *CapabilityGrantedEvent {
	return &CapabilityGrantedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("CapabilityGranted", "RoleBinding", rb.ID),
		BindingID:       rb.ID,
		IdentityID:      rb.IdentityID,
		ProjectID:       rb.ProjectID,
		Capabilities:    caps,
	}
}

// CapabilityRevokedEvent is raised when a capability is revoked from an identity
type CapabilityRevokedEvent struct {
	shared.BaseDomainEvent
	BindingID  uuid.UUID  `json:"binding_id"`
	IdentityID uuid.UUID  `json:"identity_id"`
	ProjectID  *uuid.UUID `json:"project_id,omitempty"`
	Capability Capability `json:"capability"`
}

// EventType returns the event type name
func (e *CapabilityRevokedEvent) EventType() string {
	return "CapabilityRevoked"
}

// NewCapabilityRevokedEvent creates a new CapabilityRevokedEvent
func NewCapabilityRevokedEvent(rb *RoleBinding, c Capability) *CapabilityRevokedEvent {
	return &CapabilityRevokedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("CapabilityRevoked", "RoleBinding", rb.ID),
		BindingID:       rb.ID,
		IdentityID:      rb.IdentityID,
		ProjectID:       rb.ProjectID,
		Capability:      c,
	}
}
