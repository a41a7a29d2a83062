package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// Ledger and escrow errors
var (
	ErrInvalidAmount             = NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	ErrInsufficientBalance       = NewDomainError("INSUFFICIENT_BALANCE", "Insufficient token balance")
	ErrTransfersPaused           = NewDomainError("TRANSFERS_PAUSED", "Token transfers are paused")
	ErrInvalidGoal               = NewDomainError("INVALID_GOAL", "Funding goal must be positive")
	ErrInvalidRate               = NewDomainError("INVALID_RATE", "Interest rate is outside the allowed band")
	ErrProjectInactive           = NewDomainError("PROJECT_INACTIVE", "Project is not accepting investments")
	ErrExceedsFundingGoal        = NewDomainError("EXCEEDS_FUNDING_GOAL", "Investment would exceed the funding goal")
	ErrExceedsRaised             = NewDomainError("EXCEEDS_RAISED", "Release would exceed the raised amount")
	ErrInsufficientEscrowBalance = NewDomainError("INSUFFICIENT_ESCROW_BALANCE", "Insufficient escrow balance for release")
	ErrZeroReleaseAmount         = NewDomainError("ZERO_RELEASE_AMOUNT", "Milestone release amount must be positive")
	ErrTargetDateInPast          = NewDomainError("TARGET_DATE_IN_PAST", "Milestone target date must be in the future")
	ErrInvalidMilestoneID        = NewDomainError("INVALID_MILESTONE_ID", "Milestone does not exist")
	ErrAlreadyCompleted          = NewDomainError("ALREADY_COMPLETED", "Milestone has already been completed")
	ErrNothingToClaim            = NewDomainError("NOTHING_TO_CLAIM", "No accrued interest to claim")
)
