package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bondledger/backend/internal/application/bond"
	"github.com/bondledger/backend/internal/domain/funding"
	"github.com/bondledger/backend/internal/domain/shared"
	"github.com/bondledger/backend/internal/interfaces/http/dto"
)

// ProjectHandler handles project lifecycle, investment and milestone endpoints
type ProjectHandler struct {
	BaseHandler
	issuanceService  *bond.IssuanceService
	milestoneService *bond.MilestoneService
	queryService     *bond.ProjectQueryService
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(
	issuanceService *bond.IssuanceService,
	milestoneService *bond.MilestoneService,
	queryService *bond.ProjectQueryService,
) *ProjectHandler {
	return &ProjectHandler{
		issuanceService:  issuanceService,
		milestoneService: milestoneService,
		queryService:     queryService,
	}
}

// RegisterRoutes registers project routes
func (h *ProjectHandler) RegisterRoutes(r *gin.RouterGroup) {
	projects := r.Group("/projects")
	{
		projects.POST("", h.CreateProject)
		projects.GET("", h.ListProjects)
		projects.GET("/:id", h.GetProject)
		projects.GET("/:id/summary", h.GetSummary)
		projects.POST("/:id/activate", h.ActivateProject)
		projects.POST("/:id/cancel", h.CancelProject)
		projects.POST("/:id/invest", h.Invest)
		projects.GET("/:id/milestones", h.ListMilestones)
		projects.POST("/:id/milestones", h.CreateMilestone)
		projects.POST("/:id/milestones/:sequence/complete", h.CompleteMilestone)
		projects.POST("/:id/emergency-withdraw", h.EmergencyWithdraw)
	}
}

// CreateProjectRequest is the request body for creating a project
type CreateProjectRequest struct {
	Name           string `json:"name" binding:"required,max=200"`
	Description    string `json:"description" binding:"max=2000"`
	FundingGoal    string `json:"funding_goal" binding:"required"`
	RateBps        int64  `json:"rate_bps" binding:"required,min=1"`
	DurationMonths int    `json:"duration_months" binding:"required,min=1"`
	WalletAddress  string `json:"wallet_address" binding:"required,max=128"`
	TokenPrice     string `json:"token_price"`
}

// CreateProject creates a new financing project in draft state
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	fundingGoal, err := toDecimal(req.FundingGoal)
	if err != nil {
		h.BadRequest(c, "Invalid funding_goal")
		return
	}
	tokenPrice, err := toDecimal(req.TokenPrice)
	if err != nil {
		h.BadRequest(c, "Invalid token_price")
		return
	}

	result, err := h.issuanceService.CreateProject(c.Request.Context(), bond.CreateProjectRequest{
		ActorID:        actorID,
		Name:           req.Name,
		Description:    req.Description,
		FundingGoal:    fundingGoal,
		RateBps:        req.RateBps,
		DurationMonths: req.DurationMonths,
		WalletAddress:  req.WalletAddress,
		TokenPrice:     tokenPrice,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// ListProjectsRequest is the query shape for listing projects
type ListProjectsRequest struct {
	dto.ListRequest
	Status    string `form:"status" binding:"omitempty,oneof=DRAFT ACTIVE FUNDED COMPLETED CANCELLED"`
	ManagerID string `form:"manager_id" binding:"omitempty,uuid"`
}

// ListProjects lists projects with optional status and manager filters
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	var req ListProjectsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	filter := funding.ProjectFilter{
		Filter: shared.Filter{
			Page:     req.Page,
			PageSize: req.PageSize,
			OrderBy:  req.OrderBy,
			OrderDir: req.OrderDir,
		},
	}
	if req.Status != "" {
		status := funding.ProjectStatus(req.Status)
		filter.Status = &status
	}
	if req.ManagerID != "" {
		managerID, err := parseUUIDParam(req.ManagerID)
		if err != nil {
			h.BadRequest(c, "Invalid manager_id")
			return
		}
		filter.ManagerID = &managerID
	}

	projects, total, err := h.queryService.ListProjects(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, projects, total, req.Page, req.PageSize)
}

// GetProject returns a single project aggregate
func (h *ProjectHandler) GetProject(c *gin.Context) {
	projectID, err := parseUUIDParam(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	project, err := h.queryService.GetProject(c.Request.Context(), projectID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, project)
}

// GetSummary returns the cached dashboard summary for a project
func (h *ProjectHandler) GetSummary(c *gin.Context) {
	projectID, err := parseUUIDParam(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	summary, err := h.queryService.GetSummary(c.Request.Context(), projectID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, summary)
}

// ActivateProject opens a draft project for investment
func (h *ProjectHandler) ActivateProject(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	projectID, err := parseUUIDParam(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	if err := h.issuanceService.ActivateProject(c.Request.Context(), actorID, projectID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// CancelProjectRequest is the request body for cancelling a project
type CancelProjectRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// CancelProject cancels a project that has not raised any funds
func (h *ProjectHandler) CancelProject(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	projectID, err := parseUUIDParam(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	var req CancelProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.issuanceService.CancelProject(c.Request.Context(), actorID, projectID, req.Reason); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// InvestRequest is the request body for investing in a project
type InvestRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// Invest records an investment: funds enter escrow and bond tokens are
// minted to the caller at the project's token price.
func (h *ProjectHandler) Invest(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	projectID, err := parseUUIDParam(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	var req InvestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	amount, err := toDecimal(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount")
		return
	}

	result, err := h.issuanceService.Invest(c.Request.Context(), bond.InvestRequest{
		InvestorID: actorID,
		ProjectID:  projectID,
		Amount:     amount,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// ListMilestones returns a project's milestones, optionally filtered to
// the pending or completed view
func (h *ProjectHandler) ListMilestones(c *gin.Context) {
	projectID, err := parseUUIDParam(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	project, err := h.queryService.GetProject(c.Request.Context(), projectID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	var milestones []funding.Milestone
	switch c.Query("status") {
	case "":
		milestones = project.Milestones
	case "pending":
		milestones = project.PendingMilestones()
	case "completed":
		milestones = project.CompletedMilestones()
	default:
		h.BadRequest(c, "Invalid status filter")
		return
	}

	h.Success(c, gin.H{
		"project_id": projectID,
		"milestones": milestones,
	})
}

// CreateMilestoneRequest is the request body for planning a milestone
type CreateMilestoneRequest struct {
	Name          string    `json:"name" binding:"required,max=200"`
	Description   string    `json:"description" binding:"max=2000"`
	ReleaseAmount string    `json:"release_amount" binding:"required"`
	TargetDate    time.Time `json:"target_date" binding:"required"`
}

// CreateMilestone plans a milestone on a project
func (h *ProjectHandler) CreateMilestone(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	projectID, err := parseUUIDParam(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	var req CreateMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	releaseAmount, err := toDecimal(req.ReleaseAmount)
	if err != nil {
		h.BadRequest(c, "Invalid release_amount")
		return
	}

	result, err := h.milestoneService.CreateMilestone(c.Request.Context(), bond.CreateMilestoneRequest{
		ActorID:       actorID,
		ProjectID:     projectID,
		Name:          req.Name,
		Description:   req.Description,
		ReleaseAmount: releaseAmount,
		TargetDate:    req.TargetDate,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// CompleteMilestoneRequest is the request body for completing a milestone
type CompleteMilestoneRequest struct {
	DeliverableRefs []string `json:"deliverable_refs" binding:"max=20"`
}

// CompleteMilestone marks a milestone complete and releases its escrow
// tranche to the project wallet. Requires the verifier capability.
func (h *ProjectHandler) CompleteMilestone(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	projectID, err := parseUUIDParam(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	sequence, err := parseSequenceParam(c.Param("sequence"))
	if err != nil {
		h.BadRequest(c, "Invalid milestone sequence")
		return
	}

	var req CompleteMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.milestoneService.CompleteMilestone(c.Request.Context(), bond.CompleteMilestoneRequest{
		ActorID:         actorID,
		ProjectID:       projectID,
		Sequence:        sequence,
		DeliverableRefs: req.DeliverableRefs,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// EmergencyWithdrawRequest is the request body for an emergency withdrawal
type EmergencyWithdrawRequest struct {
	Amount string `json:"amount" binding:"required"`
	Reason string `json:"reason" binding:"required,max=500"`
}

// EmergencyWithdraw releases escrowed funds bypassing milestone gating.
// Owner only.
func (h *ProjectHandler) EmergencyWithdraw(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	projectID, err := parseUUIDParam(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	var req EmergencyWithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	amount, err := toDecimal(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount")
		return
	}

	result, err := h.milestoneService.EmergencyWithdraw(c.Request.Context(), bond.EmergencyWithdrawRequest{
		ActorID:   actorID,
		ProjectID: projectID,
		Amount:    amount,
		Reason:    req.Reason,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}
