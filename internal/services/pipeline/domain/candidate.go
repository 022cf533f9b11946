package domain

import "time"

// CallCenter identifies the hiring site a candidate belongs to.
type CallCenter string

const (
	// CallCenterCLT is the Charlotte call center.
	CallCenterCLT CallCenter = "CLT"
	// CallCenterATX is the Austin call center.
	CallCenterATX CallCenter = "ATX"
)

// LicenseStatus identifies the licensing track a candidate follows.
type LicenseStatus string

const (
	// LicenseStatusLicensed means the candidate already holds an insurance license.
	LicenseStatusLicensed LicenseStatus = "licensed"
	// LicenseStatusUnlicensed means the candidate must pass the license exam first.
	LicenseStatusUnlicensed LicenseStatus = "unlicensed"
)

// CandidateStatus identifies one candidate lifecycle state.
type CandidateStatus string

const (
	// CandidateStatusActive means the candidate is moving through the pipeline.
	CandidateStatusActive CandidateStatus = "active"
	// CandidateStatusCompleted means the candidate finished onboarding.
	CandidateStatusCompleted CandidateStatus = "completed"
	// CandidateStatusDropped means the candidate left or was removed.
	CandidateStatusDropped CandidateStatus = "dropped"
	// CandidateStatusOnHold means the candidate is paused.
	CandidateStatusOnHold CandidateStatus = "on_hold"
)

// InterviewStatus identifies one interview scheduling state.
type InterviewStatus string

const (
	// InterviewStatusNotStarted means no interview has been arranged yet.
	InterviewStatusNotStarted InterviewStatus = "not_started"
	// InterviewStatusScheduled means an interview date is booked.
	InterviewStatusScheduled InterviewStatus = "scheduled"
	// InterviewStatusInProgress means the interview is underway.
	InterviewStatusInProgress InterviewStatus = "in_progress"
	// InterviewStatusCompleted means the interview finished.
	InterviewStatusCompleted InterviewStatus = "completed"
)

// InterviewResult identifies the outcome of a completed interview.
type InterviewResult string

const (
	// InterviewResultNone means no outcome has been recorded.
	InterviewResultNone InterviewResult = ""
	// InterviewResultPassed means the candidate cleared the interview.
	InterviewResultPassed InterviewResult = "passed"
	// InterviewResultFailed means the candidate did not clear the interview.
	InterviewResultFailed InterviewResult = "failed"
)

// BackgroundCheckStatus identifies one background-check case state.
type BackgroundCheckStatus string

const (
	// BackgroundCheckPending means the case has not been picked up by the vendor.
	BackgroundCheckPending BackgroundCheckStatus = "pending"
	// BackgroundCheckInProgress means the vendor is working the case.
	BackgroundCheckInProgress BackgroundCheckStatus = "in_progress"
	// BackgroundCheckCompleted means the case cleared.
	BackgroundCheckCompleted BackgroundCheckStatus = "completed"
	// BackgroundCheckFailed means the case was denied.
	BackgroundCheckFailed BackgroundCheckStatus = "failed"
	// BackgroundCheckReview means the case needs manual review.
	BackgroundCheckReview BackgroundCheckStatus = "review"
)

// ClassType identifies one training class track.
type ClassType string

const (
	// ClassTypeUNL is the unlicensed pre-licensing class track.
	ClassTypeUNL ClassType = "UNL"
	// ClassTypeAgent is the licensed agent class track.
	ClassTypeAgent ClassType = "AGENT"
)

// Evaluation captures one manager's interview scorecard.
type Evaluation struct {
	ManagerName          string
	CommunicationScore   float64
	ProfessionalismScore float64
	ExperienceScore      float64
	CultureFitScore      float64
	RecordedAt           time.Time
}

// Interview holds one candidate's interview sub-state.
type Interview struct {
	Status         InterviewStatus
	Result         InterviewResult
	ScheduledAt    *time.Time
	CompletedAt    *time.Time
	CompositeScore *float64
	Evaluations    []Evaluation
}

// BackgroundCheck holds one candidate's background-check sub-state. A
// candidate has at most one open vendor case at a time.
type BackgroundCheck struct {
	Initiated bool
	Status    BackgroundCheckStatus
	CaseID    string
	Notes     string
	PassedAt  *time.Time
}

// OfferState holds the send/sign lifecycle of the pre-license offer letter.
type OfferState struct {
	Sent     bool
	Signed   bool
	SentAt   *time.Time
	SignedAt *time.Time
}

// FullAgentOffer holds the full agent offer lifecycle. Eligibility requires
// the licensed track or a passed license exam.
type FullAgentOffer struct {
	Eligible bool
	Sent     bool
	Signed   bool
	SentAt   *time.Time
	SignedAt *time.Time
}

// Offers groups both offer sub-states for one candidate.
type Offers struct {
	PreLicense OfferState
	FullAgent  FullAgentOffer
}

// Licensing holds one candidate's license exam sub-state.
type Licensing struct {
	ExamPassed      bool
	ExamPassedAt    *time.Time
	LicenseObtained bool
}

// ClassAssignment holds one candidate's training class sub-state. StartDate,
// once confirmed, must be a member of the fixed calendar for its ClassType.
type ClassAssignment struct {
	ClassType             ClassType
	StartDate             *time.Time
	PreStartCallCompleted bool
	StartConfirmed        bool
	SystemsOnboarded      bool
	TrainingCompleted     bool
}

// Candidate is one hire moving through the onboarding pipeline.
type Candidate struct {
	ID              string
	Name            string
	Email           string
	Phone           string
	AltPhone        string
	Location        string
	CallCenter      CallCenter
	LicenseStatus   LicenseStatus
	Status          CandidateStatus
	ReadyToGo       bool
	Interview       Interview
	BackgroundCheck BackgroundCheck
	Offers          Offers
	Licensing       Licensing
	ClassAssignment ClassAssignment
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// InterviewPatch updates a subset of interview fields.
type InterviewPatch struct {
	Status         *InterviewStatus
	Result         *InterviewResult
	ScheduledAt    *time.Time
	CompletedAt    *time.Time
	CompositeScore *float64
	Evaluations    []Evaluation
	EvaluationsSet bool
}

// BackgroundCheckPatch updates a subset of background-check fields.
type BackgroundCheckPatch struct {
	Initiated   *bool
	Status      *BackgroundCheckStatus
	CaseID      *string
	Notes       *string
	PassedAt    *time.Time
	PassedAtSet bool
}

// OfferPatch updates a subset of pre-license offer fields.
type OfferPatch struct {
	Sent        *bool
	Signed      *bool
	SentAt      *time.Time
	SentAtSet   bool
	SignedAt    *time.Time
	SignedAtSet bool
}

// FullAgentOfferPatch updates a subset of full agent offer fields.
type FullAgentOfferPatch struct {
	Eligible    *bool
	Sent        *bool
	Signed      *bool
	SentAt      *time.Time
	SentAtSet   bool
	SignedAt    *time.Time
	SignedAtSet bool
}

// LicensingPatch updates a subset of licensing fields.
type LicensingPatch struct {
	ExamPassed      *bool
	ExamPassedAt    *time.Time
	ExamPassedAtSet bool
	LicenseObtained *bool
}

// ClassAssignmentPatch updates a subset of class assignment fields.
type ClassAssignmentPatch struct {
	ClassType             *ClassType
	StartDate             *time.Time
	StartDateSet          bool
	PreStartCallCompleted *bool
	StartConfirmed        *bool
	SystemsOnboarded      *bool
	TrainingCompleted     *bool
}

// CandidatePatch is one field-level partial update of a candidate record.
// Subsystems write disjoint branches: the reconciliation loop owns
// BackgroundCheck, the offer listener owns PreLicenseOffer.
type CandidatePatch struct {
	Status          *CandidateStatus
	ReadyToGo       *bool
	Notes           *string
	Interview       *InterviewPatch
	BackgroundCheck *BackgroundCheckPatch
	PreLicenseOffer *OfferPatch
	FullAgentOffer  *FullAgentOfferPatch
	Licensing       *LicensingPatch
	ClassAssignment *ClassAssignmentPatch
}

// IsZero reports whether the patch carries no field updates.
func (p CandidatePatch) IsZero() bool {
	return p.Status == nil &&
		p.ReadyToGo == nil &&
		p.Notes == nil &&
		p.Interview == nil &&
		p.BackgroundCheck == nil &&
		p.PreLicenseOffer == nil &&
		p.FullAgentOffer == nil &&
		p.Licensing == nil &&
		p.ClassAssignment == nil
}

// HasOpenBackgroundCheck reports whether the candidate has a vendor case
// worth polling.
func (c Candidate) HasOpenBackgroundCheck() bool {
	if !c.BackgroundCheck.Initiated || c.BackgroundCheck.CaseID == "" {
		return false
	}
	switch c.BackgroundCheck.Status {
	case BackgroundCheckPending, BackgroundCheckInProgress:
		return true
	default:
		return false
	}
}
