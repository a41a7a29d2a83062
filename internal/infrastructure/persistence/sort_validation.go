package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed
// fields. Returns the defaultField if the input is invalid, empty, or not in
// the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ProjectSortFields contains allowed sort fields for projects
var ProjectSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"name":           true,
	"status":         true,
	"funding_goal":   true,
	"total_raised":   true,
	"total_released": true,
	"rate_bps":       true,
	"manager_id":     true,
}

// AccrualRecordSortFields contains allowed sort fields for accrual records
var AccrualRecordSortFields = map[string]bool{
	"id":                true,
	"created_at":        true,
	"updated_at":        true,
	"investor_id":       true,
	"project_id":        true,
	"last_accrual_at":   true,
	"accrued_unclaimed": true,
	"total_claimed":     true,
}
