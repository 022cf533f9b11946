package domain

import "errors"

var (
	// ErrNameRequired indicates a candidate name is required.
	ErrNameRequired = errors.New("candidate name is required")
	// ErrEmailRequired indicates a candidate email is required.
	ErrEmailRequired = errors.New("candidate email is required")
	// ErrEmailInvalid indicates a candidate email is malformed.
	ErrEmailInvalid = errors.New("candidate email is invalid")
	// ErrPhoneRequired indicates a candidate phone number is required.
	ErrPhoneRequired = errors.New("candidate phone is required")
	// ErrInvalidCallCenter indicates an unknown call center value.
	ErrInvalidCallCenter = errors.New("call center is invalid")
	// ErrInvalidLicenseStatus indicates an unknown license status value.
	ErrInvalidLicenseStatus = errors.New("license status is invalid")
	// ErrInvalidCandidateStatus indicates an unknown candidate status value.
	ErrInvalidCandidateStatus = errors.New("candidate status is invalid")
	// ErrInvalidClassType indicates an unknown class type value.
	ErrInvalidClassType = errors.New("class type is invalid")
	// ErrCandidateIDRequired indicates a candidate id is required.
	ErrCandidateIDRequired = errors.New("candidate id is required")

	// ErrInterviewNotCompleted indicates a result was requested before the
	// interview finished.
	ErrInterviewNotCompleted = errors.New("interview is not completed")
	// ErrEvaluationManagerRequired indicates a scorecard is missing its manager.
	ErrEvaluationManagerRequired = errors.New("evaluation manager name is required")
	// ErrEvaluationScoreOutOfRange indicates a scorecard value outside 0.0-5.0.
	ErrEvaluationScoreOutOfRange = errors.New("evaluation score must be between 0.0 and 5.0")

	// ErrCaseAlreadyOpen indicates the candidate already has an open vendor case.
	ErrCaseAlreadyOpen = errors.New("background check case is already open")
	// ErrInterviewNotPassed indicates a background check was requested before
	// a passed interview.
	ErrInterviewNotPassed = errors.New("interview has not been passed")

	// ErrOfferAlreadySigned indicates a signed offer cannot be re-sent.
	ErrOfferAlreadySigned = errors.New("offer is already signed")
	// ErrFullAgentOfferIneligible indicates the candidate has not cleared the
	// licensing requirement for a full agent offer.
	ErrFullAgentOfferIneligible = errors.New("candidate is not eligible for a full agent offer")

	// ErrDateNotInCalendar indicates a class start date outside the fixed calendar.
	ErrDateNotInCalendar = errors.New("start date is not in the class calendar")
	// ErrCalendarExhausted indicates no calendar date remains after today.
	ErrCalendarExhausted = errors.New("class calendar has no future start date")

	// ErrStoreNotConfigured indicates the service is missing persistence wiring.
	ErrStoreNotConfigured = errors.New("candidate store is not configured")
	// ErrVendorNotConfigured indicates the reconciler is missing its vendor client.
	ErrVendorNotConfigured = errors.New("background check vendor client is not configured")
)

type permanentError struct {
	cause error
}

func (e permanentError) Error() string {
	if e.cause == nil {
		return "permanent error"
	}
	return e.cause.Error()
}

func (e permanentError) Unwrap() error {
	return e.cause
}

// Permanent marks an error as non-retryable.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{cause: err}
}

// IsPermanent reports whether err was explicitly marked as non-retryable.
func IsPermanent(err error) bool {
	var target permanentError
	return errors.As(err, &target)
}
