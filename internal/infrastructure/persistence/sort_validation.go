package persistence

import (
	"fmt"
	"strings"

	"github.com/utilitrack/backend/internal/domain/shared"
	"gorm.io/gorm"
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

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
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

// CustomerSortFields contains allowed sort fields for customers
var CustomerSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"account_number":  true,
	"name":            true,
	"customer_type":   true,
	"city":            true,
	"status":          true,
	"connection_date": true,
}

// MeterSortFields contains allowed sort fields for meters
var MeterSortFields = map[string]bool{
	"id":                true,
	"created_at":        true,
	"meter_number":      true,
	"utility_type":      true,
	"installation_date": true,
	"status":            true,
}

// ReadingSortFields contains allowed sort fields for meter readings
var ReadingSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"reading_date":    true,
	"consumption":     true,
	"current_reading": true,
	"reading_type":    true,
}

// TariffSortFields contains allowed sort fields for tariffs
var TariffSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"name":           true,
	"utility_type":   true,
	"rate_per_unit":  true,
	"effective_from": true,
}

// BillSortFields contains allowed sort fields for bills
var BillSortFields = map[string]bool{
	"id":                 true,
	"created_at":         true,
	"bill_number":        true,
	"bill_date":          true,
	"due_date":           true,
	"billing_period":     true,
	"total_amount":       true,
	"outstanding_amount": true,
	"status":             true,
}

// PaymentSortFields contains allowed sort fields for payments
var PaymentSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"payment_date":   true,
	"amount":         true,
	"payment_method": true,
	"status":         true,
}

// ComplaintSortFields contains allowed sort fields for complaints
var ComplaintSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"complaint_number": true,
	"priority":         true,
	"status":           true,
}

// applyOrderAndPage adds a whitelisted ORDER BY and LIMIT/OFFSET to the query
func applyOrderAndPage(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	order := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", field, order))

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize).Offset(filter.Offset())
	}
	return query
}
