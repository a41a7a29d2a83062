package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bondledger/backend/internal/application/bond"
	"github.com/bondledger/backend/internal/domain/identity"
)

// RoleHandler handles capability grant, revoke and listing endpoints
type RoleHandler struct {
	BaseHandler
	roleService *bond.RoleService
}

// NewRoleHandler creates a new RoleHandler
func NewRoleHandler(roleService *bond.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

// RegisterRoutes registers role routes
func (h *RoleHandler) RegisterRoutes(r *gin.RouterGroup) {
	roles := r.Group("/roles")
	{
		roles.POST("/grant", h.Grant)
		roles.POST("/revoke", h.Revoke)
		roles.GET("/identities/:identity_id", h.ListCapabilities)
	}
}

// CapabilityRequest is the request body for grant and revoke operations
type CapabilityRequest struct {
	IdentityID string `json:"identity_id" binding:"required,uuid"`
	Capability string `json:"capability" binding:"required,oneof=OWNER PROJECT_MANAGER VERIFIER MINTER BURNER PAUSER"`
	ProjectID  string `json:"project_id" binding:"omitempty,uuid"` // empty grants at global scope
}

func (h *RoleHandler) bindCapabilityRequest(c *gin.Context) (uuid.UUID, identity.Capability, *uuid.UUID, bool) {
	var req CapabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return uuid.Nil, "", nil, false
	}

	identityID, err := parseUUIDParam(req.IdentityID)
	if err != nil {
		h.BadRequest(c, "Invalid identity ID")
		return uuid.Nil, "", nil, false
	}

	var projectID *uuid.UUID
	if req.ProjectID != "" {
		id, err := parseUUIDParam(req.ProjectID)
		if err != nil {
			h.BadRequest(c, "Invalid project ID")
			return uuid.Nil, "", nil, false
		}
		projectID = &id
	}

	return identityID, identity.Capability(req.Capability), projectID, true
}

// Grant grants a capability to an identity. Owner only.
func (h *RoleHandler) Grant(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	identityID, capability, projectID, ok := h.bindCapabilityRequest(c)
	if !ok {
		return
	}

	if err := h.roleService.GrantCapability(c.Request.Context(), bond.GrantCapabilityRequest{
		ActorID:    actorID,
		IdentityID: identityID,
		Capability: capability,
		ProjectID:  projectID,
	}); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// Revoke removes a capability from an identity. Owner only.
func (h *RoleHandler) Revoke(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	identityID, capability, projectID, ok := h.bindCapabilityRequest(c)
	if !ok {
		return
	}

	if err := h.roleService.RevokeCapability(c.Request.Context(), bond.RevokeCapabilityRequest{
		ActorID:    actorID,
		IdentityID: identityID,
		Capability: capability,
		ProjectID:  projectID,
	}); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// ListCapabilities lists all role bindings held by an identity
func (h *RoleHandler) ListCapabilities(c *gin.Context) {
	identityID, err := parseUUIDParam(c.Param("identity_id"))
	if err != nil {
		h.BadRequest(c, "Invalid identity ID")
		return
	}

	bindings, err := h.roleService.ListCapabilities(c.Request.Context(), identityID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, bindings)
}
