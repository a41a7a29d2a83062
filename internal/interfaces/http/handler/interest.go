package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bondledger/backend/internal/application/bond"
)

// InterestHandler handles interest accrual and claim endpoints
type InterestHandler struct {
	BaseHandler
	interestService *bond.InterestService
}

// NewInterestHandler creates a new InterestHandler
func NewInterestHandler(interestService *bond.InterestService) *InterestHandler {
	return &InterestHandler{interestService: interestService}
}

// RegisterRoutes registers interest routes
func (h *InterestHandler) RegisterRoutes(r *gin.RouterGroup) {
	interest := r.Group("/projects/:id/interest")
	{
		interest.GET("/accrued", h.GetAccrued)
		interest.POST("/accrue", h.UpdateAccrual)
		interest.POST("/accrue-all", h.BatchUpdateAccrual)
		interest.POST("/claim", h.Claim)
	}
}

// GetAccrued returns the caller's accrual state including interest
// pending since the last checkpoint. Read-only; nothing is settled.
func (h *InterestHandler) GetAccrued(c *gin.Context) {
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

	info, err := h.interestService.GetAccrualInfo(c.Request.Context(), actorID, projectID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, info)
}

// UpdateAccrual settles the caller's accrued interest up to now
func (h *InterestHandler) UpdateAccrual(c *gin.Context) {
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

	earned, err := h.interestService.UpdateAccrual(c.Request.Context(), actorID, projectID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, gin.H{
		"investor_id": actorID,
		"project_id":  projectID,
		"earned":      earned,
	})
}

// BatchAccrualRequest optionally narrows a batch accrual run to a set
// of investors; an empty or absent body settles everyone on the project.
type BatchAccrualRequest struct {
	InvestorIDs []string `json:"investor_ids" binding:"omitempty,max=500,dive,uuid"`
}

// BatchUpdateAccrual settles accrual for the requested investors, or
// for every investor on the project when none are named. Per-investor
// failures are reported in the outcome list, not as an overall error.
func (h *InterestHandler) BatchUpdateAccrual(c *gin.Context) {
	projectID, err := parseUUIDParam(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	var req BatchAccrualRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	investorIDs := make([]uuid.UUID, 0, len(req.InvestorIDs))
	for _, raw := range req.InvestorIDs {
		id, err := parseUUIDParam(raw)
		if err != nil {
			h.BadRequest(c, "Invalid investor ID")
			return
		}
		investorIDs = append(investorIDs, id)
	}

	outcomes, err := h.interestService.BatchUpdateAccrual(c.Request.Context(), projectID, investorIDs)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, gin.H{
		"project_id": projectID,
		"outcomes":   outcomes,
	})
}

// Claim settles and pays out the caller's entire unclaimed interest
func (h *InterestHandler) Claim(c *gin.Context) {
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

	result, err := h.interestService.ClaimInterest(c.Request.Context(), actorID, projectID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}
