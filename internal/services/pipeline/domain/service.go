package domain

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/hirecrest/talentline/internal/platform/id"
)

// PassingCompositeScore is the interview threshold: composites at or above
// it pass when no explicit result is recorded.
const PassingCompositeScore = 4.0

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// CandidateFilter narrows candidate listings.
type CandidateFilter struct {
	Status     *CandidateStatus
	CallCenter *CallCenter
	Bucket     *FunnelBucket
}

// Store is the candidate persistence boundary for pipeline use-cases.
type Store interface {
	PutCandidate(ctx context.Context, candidate Candidate) error
	GetCandidate(ctx context.Context, candidateID string) (Candidate, error)
	ListCandidates(ctx context.Context, filter CandidateFilter) ([]Candidate, error)
	PatchCandidate(ctx context.Context, candidateID string, patch CandidatePatch) error
	ListOpenBackgroundChecks(ctx context.Context) ([]Candidate, error)
}

// OfferDocumentStore owns the e-signature offer aggregate.
type OfferDocumentStore interface {
	PutOfferDocument(ctx context.Context, doc OfferDocument) error
	GetOfferDocument(ctx context.Context, candidateID string) (OfferDocument, error)
}

// CohortStore persists training cohort records.
type CohortStore interface {
	PutCohort(ctx context.Context, cohort Cohort) error
	GetCohort(ctx context.Context, cohortID string) (Cohort, error)
	FindCohortByStart(ctx context.Context, classType ClassType, callCenter CallCenter, startDate time.Time) (Cohort, error)
	AddParticipant(ctx context.Context, cohortID string, candidateID string) error
	ListCohorts(ctx context.Context, status *CohortStatus) ([]Cohort, error)
}

// VendorSubmitter opens one background-check case with the vendor.
type VendorSubmitter interface {
	Submit(ctx context.Context, candidate Candidate) (string, error)
}

// ErrRecordNotFound is returned by stores for missing records. It aliases
// the storage sentinel so domain callers need not import the storage
// package.
var ErrRecordNotFound = errors.New("record not found")

// Service orchestrates candidate pipeline use-cases.
type Service struct {
	store          Store
	offers         OfferDocumentStore
	cohorts        CohortStore
	vendor         VendorSubmitter
	resolver       *CohortResolver
	offerListeners *OfferListenerManager
	clock          func() time.Time
	newID          func() (string, error)
}

// NewService constructs the pipeline service.
func NewService(store Store, offers OfferDocumentStore, cohorts CohortStore, vendor VendorSubmitter, resolver *CohortResolver, clock func() time.Time, newID func() (string, error)) *Service {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = id.NewID
	}
	if resolver == nil {
		resolver = NewCohortResolver(nil, clock)
	}
	return &Service{
		store:    store,
		offers:   offers,
		cohorts:  cohorts,
		vendor:   vendor,
		resolver: resolver,
		clock:    clock,
		newID:    newID,
	}
}

// SetOfferListeners wires signature watching for offers sent through this
// service. Without a manager, sends still persist and a listener can be
// attached later.
func (s *Service) SetOfferListeners(listeners *OfferListenerManager) {
	if s == nil {
		return
	}
	s.offerListeners = listeners
}

// Resolver exposes the cohort date resolver the service was built with.
func (s *Service) Resolver() *CohortResolver {
	if s == nil {
		return nil
	}
	return s.resolver
}

// CreateCandidateInput is one new-hire intake request.
type CreateCandidateInput struct {
	Name          string
	Email         string
	Phone         string
	AltPhone      string
	Location      string
	CallCenter    CallCenter
	LicenseStatus LicenseStatus
	Notes         string
}

// CreateCandidate validates intake fields and stores a new candidate in the
// interview bucket.
func (s *Service) CreateCandidate(ctx context.Context, input CreateCandidateInput) (Candidate, error) {
	if s == nil || s.store == nil {
		return Candidate{}, ErrStoreNotConfigured
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Candidate{}, ErrNameRequired
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return Candidate{}, ErrEmailRequired
	}
	if !emailPattern.MatchString(email) {
		return Candidate{}, ErrEmailInvalid
	}
	phone := strings.TrimSpace(input.Phone)
	if phone == "" {
		return Candidate{}, ErrPhoneRequired
	}
	if !isValidCallCenter(input.CallCenter) {
		return Candidate{}, ErrInvalidCallCenter
	}
	if !isValidLicenseStatus(input.LicenseStatus) {
		return Candidate{}, ErrInvalidLicenseStatus
	}

	candidateID, err := s.newID()
	if err != nil {
		return Candidate{}, fmt.Errorf("generate candidate id: %w", err)
	}

	now := s.clock().UTC()
	candidate := Candidate{
		ID:            candidateID,
		Name:          name,
		Email:         email,
		Phone:         phone,
		AltPhone:      strings.TrimSpace(input.AltPhone),
		Location:      strings.TrimSpace(input.Location),
		CallCenter:    input.CallCenter,
		LicenseStatus: input.LicenseStatus,
		Status:        CandidateStatusActive,
		Interview:     Interview{Status: InterviewStatusNotStarted},
		BackgroundCheck: BackgroundCheck{
			Status: BackgroundCheckPending,
		},
		ClassAssignment: ClassAssignment{
			ClassType: classTypeForTrack(input.LicenseStatus),
		},
		Notes:     strings.TrimSpace(input.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.PutCandidate(ctx, candidate); err != nil {
		return Candidate{}, fmt.Errorf("put candidate: %w", err)
	}
	return candidate, nil
}

// GetCandidate loads one candidate by id.
func (s *Service) GetCandidate(ctx context.Context, candidateID string) (Candidate, error) {
	if s == nil || s.store == nil {
		return Candidate{}, ErrStoreNotConfigured
	}
	candidateID = strings.TrimSpace(candidateID)
	if candidateID == "" {
		return Candidate{}, ErrCandidateIDRequired
	}
	return s.store.GetCandidate(ctx, candidateID)
}

// ListCandidates lists candidates matching the filter.
func (s *Service) ListCandidates(ctx context.Context, filter CandidateFilter) ([]Candidate, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	if filter.Status != nil && !isValidCandidateStatus(*filter.Status) {
		return nil, ErrInvalidCandidateStatus
	}
	if filter.CallCenter != nil && !isValidCallCenter(*filter.CallCenter) {
		return nil, ErrInvalidCallCenter
	}
	return s.store.ListCandidates(ctx, filter)
}

// UpdateStatus moves one candidate to a new lifecycle status.
func (s *Service) UpdateStatus(ctx context.Context, candidateID string, status CandidateStatus) error {
	if s == nil || s.store == nil {
		return ErrStoreNotConfigured
	}
	candidateID = strings.TrimSpace(candidateID)
	if candidateID == "" {
		return ErrCandidateIDRequired
	}
	if !isValidCandidateStatus(status) {
		return ErrInvalidCandidateStatus
	}
	return s.store.PatchCandidate(ctx, candidateID, CandidatePatch{Status: &status})
}

// ScheduleInterview books an interview date for one candidate.
func (s *Service) ScheduleInterview(ctx context.Context, candidateID string, scheduledAt time.Time) error {
	if s == nil || s.store == nil {
		return ErrStoreNotConfigured
	}
	candidateID = strings.TrimSpace(candidateID)
	if candidateID == "" {
		return ErrCandidateIDRequired
	}
	status := InterviewStatusScheduled
	when := scheduledAt.UTC()
	return s.store.PatchCandidate(ctx, candidateID, CandidatePatch{
		Interview: &InterviewPatch{Status: &status, ScheduledAt: &when},
	})
}

// RecordEvaluation appends one manager scorecard and recomputes the
// composite score.
func (s *Service) RecordEvaluation(ctx context.Context, candidateID string, evaluation Evaluation) (Candidate, error) {
	if s == nil || s.store == nil {
		return Candidate{}, ErrStoreNotConfigured
	}
	candidateID = strings.TrimSpace(candidateID)
	if candidateID == "" {
		return Candidate{}, ErrCandidateIDRequired
	}
	evaluation.ManagerName = strings.TrimSpace(evaluation.ManagerName)
	if evaluation.ManagerName == "" {
		return Candidate{}, ErrEvaluationManagerRequired
	}
	for _, score := range []float64{
		evaluation.CommunicationScore,
		evaluation.ProfessionalismScore,
		evaluation.ExperienceScore,
		evaluation.CultureFitScore,
	} {
		if score < 0 || score > 5 {
			return Candidate{}, ErrEvaluationScoreOutOfRange
		}
	}

	candidate, err := s.store.GetCandidate(ctx, candidateID)
	if err != nil {
		return Candidate{}, err
	}

	if evaluation.RecordedAt.IsZero() {
		evaluation.RecordedAt = s.clock().UTC()
	}
	evaluations := append(append([]Evaluation(nil), candidate.Interview.Evaluations...), evaluation)
	composite := CompositeScore(evaluations)

	status := candidate.Interview.Status
	if status == InterviewStatusNotStarted || status == InterviewStatusScheduled {
		status = InterviewStatusInProgress
	}
	if err := s.store.PatchCandidate(ctx, candidateID, CandidatePatch{
		Interview: &InterviewPatch{
			Status:         &status,
			CompositeScore: &composite,
			Evaluations:    evaluations,
			EvaluationsSet: true,
		},
	}); err != nil {
		return Candidate{}, fmt.Errorf("patch interview evaluations: %w", err)
	}

	candidate.Interview.Status = status
	candidate.Interview.CompositeScore = &composite
	candidate.Interview.Evaluations = evaluations
	return candidate, nil
}

// CompleteInterview closes the interview. When no explicit result is given
// the composite score decides: at or above the passing threshold passes.
// An explicit result always wins, matching long-standing manual override
// behavior.
func (s *Service) CompleteInterview(ctx context.Context, candidateID string, explicit *InterviewResult) (InterviewResult, error) {
	if s == nil || s.store == nil {
		return InterviewResultNone, ErrStoreNotConfigured
	}
	candidateID = strings.TrimSpace(candidateID)
	if candidateID == "" {
		return InterviewResultNone, ErrCandidateIDRequired
	}

	candidate, err := s.store.GetCandidate(ctx, candidateID)
	if err != nil {
		return InterviewResultNone, err
	}

	result := InterviewResultFailed
	switch {
	case explicit != nil:
		if *explicit != InterviewResultPassed && *explicit != InterviewResultFailed {
			return InterviewResultNone, ErrInterviewNotCompleted
		}
		result = *explicit
	case candidate.Interview.CompositeScore != nil && *candidate.Interview.CompositeScore >= PassingCompositeScore:
		result = InterviewResultPassed
	}

	status := InterviewStatusCompleted
	completedAt := s.clock().UTC()
	if err := s.store.PatchCandidate(ctx, candidateID, CandidatePatch{
		Interview: &InterviewPatch{
			Status:      &status,
			Result:      &result,
			CompletedAt: &completedAt,
		},
	}); err != nil {
		return InterviewResultNone, fmt.Errorf("patch interview completion: %w", err)
	}
	return result, nil
}

// InitiateBackgroundCheck opens one vendor case for a candidate who passed
// the interview. A candidate has at most one open case at a time.
func (s *Service) InitiateBackgroundCheck(ctx context.Context, candidateID string) (string, error) {
	if s == nil || s.store == nil {
		return "", ErrStoreNotConfigured
	}
	if s.vendor == nil {
		return "", ErrVendorNotConfigured
	}
	candidateID = strings.TrimSpace(candidateID)
	if candidateID == "" {
		return "", ErrCandidateIDRequired
	}

	candidate, err := s.store.GetCandidate(ctx, candidateID)
	if err != nil {
		return "", err
	}
	if !interviewPassed(candidate) {
		return "", ErrInterviewNotPassed
	}
	if candidate.HasOpenBackgroundCheck() {
		return "", ErrCaseAlreadyOpen
	}

	caseID, err := s.vendor.Submit(ctx, candidate)
	if err != nil {
		return "", fmt.Errorf("submit background check: %w", err)
	}

	initiated := true
	status := BackgroundCheckPending
	if err := s.store.PatchCandidate(ctx, candidateID, CandidatePatch{
		BackgroundCheck: &BackgroundCheckPatch{
			Initiated: &initiated,
			Status:    &status,
			CaseID:    &caseID,
		},
	}); err != nil {
		return "", fmt.Errorf("patch background check case: %w", err)
	}
	return caseID, nil
}

// SendPreLicenseOffer issues the pre-license offer document. The offer is
// its own aggregate: the signature listener merges its state back into the
// candidate record.
func (s *Service) SendPreLicenseOffer(ctx context.Context, candidateID string) error {
	if s == nil || s.store == nil || s.offers == nil {
		return ErrStoreNotConfigured
	}
	candidateID = strings.TrimSpace(candidateID)
	if candidateID == "" {
		return ErrCandidateIDRequired
	}

	candidate, err := s.store.GetCandidate(ctx, candidateID)
	if err != nil {
		return err
	}
	if candidate.Offers.PreLicense.Signed {
		return ErrOfferAlreadySigned
	}

	now := s.clock().UTC()
	doc := OfferDocument{
		CandidateID: candidateID,
		Sent:        true,
		SentAt:      &now,
		UpdatedAt:   now,
	}
	if existing, getErr := s.offers.GetOfferDocument(ctx, candidateID); getErr == nil {
		if existing.Signed {
			return ErrOfferAlreadySigned
		}
		doc.SentAt = existing.SentAt
		if doc.SentAt == nil {
			doc.SentAt = &now
		}
	} else if !errors.Is(getErr, ErrRecordNotFound) {
		return fmt.Errorf("get offer document: %w", getErr)
	}
	if err := s.offers.PutOfferDocument(ctx, doc); err != nil {
		return fmt.Errorf("put offer document: %w", err)
	}
	if s.offerListeners != nil {
		if _, err := s.offerListeners.Attach(candidateID); err != nil {
			return fmt.Errorf("attach offer listener: %w", err)
		}
	}
	return nil
}

// SendFullAgentOffer issues the full agent offer directly on the candidate
// record. Eligibility requires the licensed track or a passed license exam.
func (s *Service) SendFullAgentOffer(ctx context.Context, candidateID string) error {
	if s == nil || s.store == nil {
		return ErrStoreNotConfigured
	}
	candidateID = strings.TrimSpace(candidateID)
	if candidateID == "" {
		return ErrCandidateIDRequired
	}

	candidate, err := s.store.GetCandidate(ctx, candidateID)
	if err != nil {
		return err
	}
	if candidate.LicenseStatus != LicenseStatusLicensed && !candidate.Licensing.ExamPassed {
		return ErrFullAgentOfferIneligible
	}
	if candidate.Offers.FullAgent.Signed {
		return ErrOfferAlreadySigned
	}

	eligible := true
	sent := true
	sentAt := s.clock().UTC()
	return s.store.PatchCandidate(ctx, candidateID, CandidatePatch{
		FullAgentOffer: &FullAgentOfferPatch{
			Eligible:  &eligible,
			Sent:      &sent,
			SentAt:    &sentAt,
			SentAtSet: true,
		},
	})
}

// RecordLicenseExamResult stores one license exam outcome.
func (s *Service) RecordLicenseExamResult(ctx context.Context, candidateID string, passed bool) error {
	if s == nil || s.store == nil {
		return ErrStoreNotConfigured
	}
	candidateID = strings.TrimSpace(candidateID)
	if candidateID == "" {
		return ErrCandidateIDRequired
	}

	patch := LicensingPatch{ExamPassed: &passed}
	if passed {
		passedAt := s.clock().UTC()
		patch.ExamPassedAt = &passedAt
		patch.ExamPassedAtSet = true
	}
	return s.store.PatchCandidate(ctx, candidateID, CandidatePatch{Licensing: &patch})
}

// AssignCandidateToCohort confirms one class start date for a candidate.
// The date must be a member of the fixed calendar for the candidate's
// class type; the cohort roster is joined when a matching cohort exists.
func (s *Service) AssignCandidateToCohort(ctx context.Context, candidateID string, startDate time.Time) error {
	if s == nil || s.store == nil {
		return ErrStoreNotConfigured
	}
	candidateID = strings.TrimSpace(candidateID)
	if candidateID == "" {
		return ErrCandidateIDRequired
	}

	candidate, err := s.store.GetCandidate(ctx, candidateID)
	if err != nil {
		return err
	}

	classType := candidate.ClassAssignment.ClassType
	if classType == "" {
		classType = classTypeForTrack(candidate.LicenseStatus)
	}
	if err := s.resolver.ValidateStartDate(classType, startDate); err != nil {
		return err
	}

	confirmed := true
	chosen := midnightUTC(startDate)
	if err := s.store.PatchCandidate(ctx, candidateID, CandidatePatch{
		ClassAssignment: &ClassAssignmentPatch{
			ClassType:      &classType,
			StartDate:      &chosen,
			StartDateSet:   true,
			StartConfirmed: &confirmed,
		},
	}); err != nil {
		return fmt.Errorf("patch class assignment: %w", err)
	}

	if s.cohorts != nil {
		cohort, findErr := s.cohorts.FindCohortByStart(ctx, classType, candidate.CallCenter, chosen)
		switch {
		case findErr == nil:
			if err := s.cohorts.AddParticipant(ctx, cohort.ID, candidateID); err != nil {
				return fmt.Errorf("add cohort participant: %w", err)
			}
		case errors.Is(findErr, ErrRecordNotFound):
			// No cohort record yet; assignment stands on the candidate alone.
		default:
			return fmt.Errorf("find cohort by start date: %w", findErr)
		}
	}

	return s.refreshReadyToGo(ctx, candidateID)
}

// CreateCohortInput is one new training class request.
type CreateCohortInput struct {
	Name        string
	CallCenter  CallCenter
	ClassType   ClassType
	StartDate   time.Time
	TrainerName string
}

// CreateCohort stores one training class instance with a calendar-validated
// start date.
func (s *Service) CreateCohort(ctx context.Context, input CreateCohortInput) (Cohort, error) {
	if s == nil || s.cohorts == nil {
		return Cohort{}, ErrStoreNotConfigured
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Cohort{}, ErrNameRequired
	}
	if !isValidCallCenter(input.CallCenter) {
		return Cohort{}, ErrInvalidCallCenter
	}
	if err := s.resolver.ValidateStartDate(input.ClassType, input.StartDate); err != nil {
		return Cohort{}, err
	}

	cohortID, err := s.newID()
	if err != nil {
		return Cohort{}, fmt.Errorf("generate cohort id: %w", err)
	}

	now := s.clock().UTC()
	start := midnightUTC(input.StartDate)
	cohort := Cohort{
		ID:              cohortID,
		Name:            name,
		CallCenter:      input.CallCenter,
		ClassType:       input.ClassType,
		StartDate:       start,
		ExpectedEndDate: ExpectedEndDate(start),
		TrainerName:     strings.TrimSpace(input.TrainerName),
		WeekNumber:      WeekNumber(start, now),
		Status:          CohortStatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.cohorts.PutCohort(ctx, cohort); err != nil {
		return Cohort{}, fmt.Errorf("put cohort: %w", err)
	}
	return cohort, nil
}

func (s *Service) refreshReadyToGo(ctx context.Context, candidateID string) error {
	candidate, err := s.store.GetCandidate(ctx, candidateID)
	if err != nil {
		return err
	}
	ready := ReadyToGo(candidate)
	if ready == candidate.ReadyToGo {
		return nil
	}
	return s.store.PatchCandidate(ctx, candidateID, CandidatePatch{ReadyToGo: &ready})
}

// CompositeScore averages all scorecards into one 0.0-5.0 figure rounded to
// two decimals.
func CompositeScore(evaluations []Evaluation) float64 {
	if len(evaluations) == 0 {
		return 0
	}
	total := 0.0
	for _, evaluation := range evaluations {
		total += (evaluation.CommunicationScore +
			evaluation.ProfessionalismScore +
			evaluation.ExperienceScore +
			evaluation.CultureFitScore) / 4
	}
	return math.Round(total/float64(len(evaluations))*100) / 100
}

func classTypeForTrack(licenseStatus LicenseStatus) ClassType {
	if licenseStatus == LicenseStatusLicensed {
		return ClassTypeAgent
	}
	return ClassTypeUNL
}

func isValidCallCenter(callCenter CallCenter) bool {
	switch callCenter {
	case CallCenterCLT, CallCenterATX:
		return true
	default:
		return false
	}
}

func isValidLicenseStatus(licenseStatus LicenseStatus) bool {
	switch licenseStatus {
	case LicenseStatusLicensed, LicenseStatusUnlicensed:
		return true
	default:
		return false
	}
}

func isValidCandidateStatus(status CandidateStatus) bool {
	switch status {
	case CandidateStatusActive, CandidateStatusCompleted, CandidateStatusDropped, CandidateStatusOnHold:
		return true
	default:
		return false
	}
}
