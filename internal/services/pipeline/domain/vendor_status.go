package domain

import "strings"

// vendorStatusTable maps vendor case codes onto internal statuses. Unmapped
// codes fall back to in-progress so a vendor-side addition never advances or
// clears a case by accident.
var vendorStatusTable = map[string]BackgroundCheckStatus{
	"CLEAR":       BackgroundCheckCompleted,
	"COMPLETED":   BackgroundCheckCompleted,
	"PASSED":      BackgroundCheckCompleted,
	"DENIED":      BackgroundCheckFailed,
	"FAILED":      BackgroundCheckFailed,
	"CONSIDER":    BackgroundCheckReview,
	"REVIEW":      BackgroundCheckReview,
	"DISPUTE":     BackgroundCheckReview,
	"PENDING":     BackgroundCheckInProgress,
	"QUEUED":      BackgroundCheckInProgress,
	"PROCESSING":  BackgroundCheckInProgress,
	"IN_PROGRESS": BackgroundCheckInProgress,
}

// MapVendorStatus converts one vendor case code to an internal status. The
// second result reports whether the code was recognized; unknown codes map to
// in-progress and should be logged by the caller.
func MapVendorStatus(code string) (BackgroundCheckStatus, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	normalized = strings.ReplaceAll(normalized, " ", "_")
	if status, ok := vendorStatusTable[normalized]; ok {
		return status, true
	}
	return BackgroundCheckInProgress, false
}
