package models

// Canonical record field names, matching the header of a bank export.
const (
	FieldStartedDate   = "Started Date"
	FieldCompletedDate = "Completed Date"
	FieldDescription   = "Description"
	FieldAmount        = "Amount"
	FieldFee           = "Fee"
	FieldBalance       = "Balance"
	FieldCurrency      = "Currency"
	FieldType          = "Type"
	FieldProduct       = "Product"
	FieldState         = "State"
)

// FieldLine is the transient marker holding the 1-based source line of a record.
const FieldLine = "_line"

// TransientPrefix marks internal record keys that are never persisted.
const TransientPrefix = "_"

var (
	// NumericFields are normalized to canonical decimal strings.
	NumericFields = []string{FieldAmount, FieldFee, FieldBalance}
	// TextFields default to the empty string.
	TextFields = []string{FieldType, FieldProduct, FieldDescription, FieldCurrency, FieldState}
	// DateFields pass through unchanged and are absent when missing.
	DateFields = []string{FieldStartedDate, FieldCompletedDate}
	// RequiredFields must be non-empty for a record to be kept.
	RequiredFields = []string{FieldType, FieldProduct, FieldStartedDate}
	// CanonicalFields is the column order used for export.
	CanonicalFields = []string{
		FieldStartedDate, FieldCompletedDate, FieldDescription, FieldAmount, FieldFee,
		FieldBalance, FieldCurrency, FieldType, FieldProduct, FieldState,
	}
)

// UnknownLabel is the bucket label for records without a grouping value.
const UnknownLabel = "unknown"

// File permissions
const (
	PermissionDirectory = 0750
)
