package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when it is whitelisted, otherwise defaultField.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// orderClause builds a whitelisted ORDER BY expression
func orderClause(field, dir string, allowed map[string]bool, defaultField string) string {
	return ValidateSortField(field, allowed, defaultField) + " " + ValidateSortOrder(dir)
}

// BatchSortFields contains allowed sort fields for payment batches
var BatchSortFields = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"batch_number": true,
	"batch_date":   true,
	"crop_year":    true,
	"status":       true,
	"total_amount": true,
}

// DistributionSortFields contains allowed sort fields for distributions
var DistributionSortFields = map[string]bool{
	"created_at":          true,
	"distribution_number": true,
	"distribution_date":   true,
	"status":              true,
	"total_amount":        true,
}

// ChequeSortFields contains allowed sort fields for cheques
var ChequeSortFields = map[string]bool{
	"created_at":    true,
	"cheque_number": true,
	"cheque_date":   true,
	"status":        true,
	"cheque_amount": true,
	"grower_number": true,
}
