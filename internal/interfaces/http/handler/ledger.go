package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bondledger/backend/internal/application/bond"
)

// LedgerHandler handles bond token ledger endpoints
type LedgerHandler struct {
	BaseHandler
	ledgerService *bond.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledgerService *bond.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// RegisterRoutes registers ledger routes
func (h *LedgerHandler) RegisterRoutes(r *gin.RouterGroup) {
	ledgers := r.Group("/projects/:id/ledger")
	{
		ledgers.GET("/supply", h.TotalSupply)
		ledgers.GET("/balances/:holder_id", h.Balance)
		ledgers.POST("/transfer", h.Transfer)
		ledgers.POST("/mint", h.Mint)
		ledgers.POST("/burn", h.Burn)
		ledgers.POST("/pause", h.Pause)
		ledgers.POST("/unpause", h.Unpause)
	}
}

// TotalSupply returns the token supply of a project's ledger
func (h *LedgerHandler) TotalSupply(c *gin.Context) {
	projectID, err := parseUUIDParam(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	supply, err := h.ledgerService.TotalSupply(c.Request.Context(), projectID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, gin.H{
		"project_id":   projectID,
		"total_supply": supply,
	})
}

// Balance returns a holder's token balance on a project's ledger
func (h *LedgerHandler) Balance(c *gin.Context) {
	projectID, err := parseUUIDParam(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	holderID, err := parseUUIDParam(c.Param("holder_id"))
	if err != nil {
		h.BadRequest(c, "Invalid holder ID")
		return
	}

	balance, err := h.ledgerService.Balance(c.Request.Context(), projectID, holderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, gin.H{
		"project_id": projectID,
		"holder_id":  holderID,
		"balance":    balance,
	})
}

// TransferRequest is the request body for a token transfer
type TransferRequest struct {
	To     string `json:"to" binding:"required,uuid"`
	Amount string `json:"amount" binding:"required"`
}

// Transfer moves tokens from the caller to another holder. Interest is
// settled for both parties before balances change.
func (h *LedgerHandler) Transfer(c *gin.Context) {
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

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	to, err := parseUUIDParam(req.To)
	if err != nil {
		h.BadRequest(c, "Invalid recipient ID")
		return
	}

	amount, err := toDecimal(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount")
		return
	}

	result, err := h.ledgerService.Transfer(c.Request.Context(), bond.TransferRequest{
		ActorID:   actorID,
		ProjectID: projectID,
		From:      actorID,
		To:        to,
		Amount:    amount,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// MintBurnRequest is the request body for mint and burn operations
type MintBurnRequest struct {
	HolderID string `json:"holder_id" binding:"required,uuid"`
	Amount   string `json:"amount" binding:"required"`
}

func (h *LedgerHandler) bindMintBurn(c *gin.Context) (uuid.UUID, decimal.Decimal, bool) {
	var req MintBurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return uuid.Nil, decimal.Zero, false
	}

	holderID, err := parseUUIDParam(req.HolderID)
	if err != nil {
		h.BadRequest(c, "Invalid holder ID")
		return uuid.Nil, decimal.Zero, false
	}

	amount, err := toDecimal(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount")
		return uuid.Nil, decimal.Zero, false
	}

	return holderID, amount, true
}

// Mint creates tokens for a holder. Requires the minter capability.
func (h *LedgerHandler) Mint(c *gin.Context) {
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

	holderID, amount, ok := h.bindMintBurn(c)
	if !ok {
		return
	}

	if err := h.ledgerService.Mint(c.Request.Context(), actorID, projectID, holderID, amount); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// Burn destroys tokens held by a holder. Requires the burner capability.
func (h *LedgerHandler) Burn(c *gin.Context) {
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

	holderID, amount, ok := h.bindMintBurn(c)
	if !ok {
		return
	}

	if err := h.ledgerService.Burn(c.Request.Context(), actorID, projectID, holderID, amount); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// Pause halts transfers on a project's ledger. Requires the pauser capability.
func (h *LedgerHandler) Pause(c *gin.Context) {
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

	if err := h.ledgerService.Pause(c.Request.Context(), actorID, projectID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// Unpause resumes transfers on a project's ledger. Requires the pauser capability.
func (h *LedgerHandler) Unpause(c *gin.Context) {
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

	if err := h.ledgerService.Unpause(c.Request.Context(), actorID, projectID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
