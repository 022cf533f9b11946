package domain

// StageID identifies one step of the fixed onboarding sequence.
type StageID string

const (
	// StageInterview is the interview step.
	StageInterview StageID = "interview"
	// StageBackgroundCheck is the background-check step.
	StageBackgroundCheck StageID = "background-check"
	// StagePreLicenseOffer is the pre-license offer step (unlicensed track only).
	StagePreLicenseOffer StageID = "pre-license-offer"
	// StageLicensing is the license exam step (unlicensed track only).
	StageLicensing StageID = "licensing"
	// StageFullOffer is the full agent offer step.
	StageFullOffer StageID = "full-offer"
	// StageClassAssignment is the training class assignment step.
	StageClassAssignment StageID = "class-assignment"
)

// StageState identifies one stage progress state.
type StageState string

const (
	// StagePending means the stage has not been reached or started.
	StagePending StageState = "pending"
	// StageActive means the stage is the candidate's current step.
	StageActive StageState = "active"
	// StageComplete means the stage requirement is satisfied.
	StageComplete StageState = "complete"
)

// Stage pairs one stage id with its derived progress state.
type Stage struct {
	ID    StageID
	State StageState
}

// FunnelBucket is the single current stage used for dashboard aggregation.
type FunnelBucket string

const (
	// BucketInterview groups candidates still clearing the interview.
	BucketInterview FunnelBucket = "interview"
	// BucketBackgroundCheck groups candidates with an unresolved check.
	BucketBackgroundCheck FunnelBucket = "background-check"
	// BucketPreLicenseOffer groups unlicensed candidates with an unsigned offer.
	BucketPreLicenseOffer FunnelBucket = "pre-license-offer"
	// BucketLicensing groups unlicensed candidates still studying for the exam.
	BucketLicensing FunnelBucket = "licensing"
	// BucketFullOffer groups candidates with an unsigned full agent offer.
	BucketFullOffer FunnelBucket = "full-offer"
	// BucketClassAssignment groups candidates without a confirmed class date.
	BucketClassAssignment FunnelBucket = "class-assignment"
	// BucketReady groups candidates fully cleared for class.
	BucketReady FunnelBucket = "ready"
)

// DerivePipelineStages computes the ordered applicable stage list for one
// candidate. It is pure and total: every candidate shape, however sparse,
// maps to a non-empty well-formed list. Licensed candidates skip the
// pre-license offer and licensing stages entirely. A failed interview halts
// forward progress regardless of any later sub-state.
func DerivePipelineStages(candidate Candidate) []Stage {
	order := applicableStages(candidate)
	stages := make([]Stage, 0, len(order))

	halted := interviewFailed(candidate)
	activeAssigned := false
	for _, id := range order {
		state := StagePending
		switch {
		case stageComplete(candidate, id):
			state = StageComplete
		case halted:
			state = StagePending
		case id == StageInterview:
			// The interview stage is active only while it is underway, never
			// merely because it is next.
			if candidate.Interview.Status == InterviewStatusScheduled ||
				candidate.Interview.Status == InterviewStatusInProgress {
				state = StageActive
			}
			activeAssigned = true
		case !activeAssigned:
			state = StageActive
			activeAssigned = true
		}
		stages = append(stages, Stage{ID: id, State: state})
	}
	return stages
}

// DeriveFunnelBucket computes the single current stage for one candidate:
// the first incomplete applicable stage in the fixed order, or ready when
// none remains. A failed interview pins the candidate to the interview
// bucket forever.
func DeriveFunnelBucket(candidate Candidate) FunnelBucket {
	if interviewFailed(candidate) {
		return BucketInterview
	}
	for _, id := range applicableStages(candidate) {
		if !stageComplete(candidate, id) {
			return FunnelBucket(id)
		}
	}
	return BucketReady
}

// ReadyToGo reports whether every applicable stage is complete for the
// candidate's track.
func ReadyToGo(candidate Candidate) bool {
	return DeriveFunnelBucket(candidate) == BucketReady
}

// ProgressPercent computes a 0-100 completion figure over the candidate's
// applicable stages.
func ProgressPercent(candidate Candidate) int {
	order := applicableStages(candidate)
	if len(order) == 0 {
		return 0
	}
	complete := 0
	for _, id := range order {
		if stageComplete(candidate, id) {
			complete++
		}
	}
	return complete * 100 / len(order)
}

func applicableStages(candidate Candidate) []StageID {
	if candidate.LicenseStatus == LicenseStatusLicensed {
		return []StageID{
			StageInterview,
			StageBackgroundCheck,
			StageFullOffer,
			StageClassAssignment,
		}
	}
	return []StageID{
		StageInterview,
		StageBackgroundCheck,
		StagePreLicenseOffer,
		StageLicensing,
		StageFullOffer,
		StageClassAssignment,
	}
}

func interviewFailed(candidate Candidate) bool {
	return candidate.Interview.Result == InterviewResultFailed
}

func interviewPassed(candidate Candidate) bool {
	return candidate.Interview.Status == InterviewStatusCompleted &&
		candidate.Interview.Result == InterviewResultPassed
}

func stageComplete(candidate Candidate, id StageID) bool {
	switch id {
	case StageInterview:
		return candidate.Interview.Status == InterviewStatusCompleted
	case StageBackgroundCheck:
		// Reachable only through a passed interview: a completed case behind
		// a failed or unfinished interview never counts.
		return interviewPassed(candidate) &&
			candidate.BackgroundCheck.Status == BackgroundCheckCompleted
	case StagePreLicenseOffer:
		return candidate.Offers.PreLicense.Signed
	case StageLicensing:
		return candidate.Licensing.ExamPassed
	case StageFullOffer:
		return candidate.Offers.FullAgent.Signed
	case StageClassAssignment:
		return candidate.ClassAssignment.StartDate != nil &&
			candidate.ClassAssignment.StartConfirmed
	default:
		return false
	}
}
