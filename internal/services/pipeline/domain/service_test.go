package domain

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeStore struct {
	mu         sync.Mutex
	candidates map[string]Candidate
	offerDocs  map[string]OfferDocument
	cohorts    map[string]Cohort
	rosters    map[string][]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		candidates: make(map[string]Candidate),
		offerDocs:  make(map[string]OfferDocument),
		cohorts:    make(map[string]Cohort),
		rosters:    make(map[string][]string),
	}
}

func (s *fakeStore) PutCandidate(_ context.Context, candidate Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates[candidate.ID] = candidate
	return nil
}

func (s *fakeStore) GetCandidate(_ context.Context, candidateID string) (Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	candidate, ok := s.candidates[candidateID]
	if !ok {
		return Candidate{}, ErrRecordNotFound
	}
	return candidate, nil
}

func (s *fakeStore) ListCandidates(_ context.Context, filter CandidateFilter) ([]Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Candidate
	for _, candidate := range s.candidates {
		if filter.Status != nil && candidate.Status != *filter.Status {
			continue
		}
		if filter.CallCenter != nil && candidate.CallCenter != *filter.CallCenter {
			continue
		}
		if filter.Bucket != nil && DeriveFunnelBucket(candidate) != *filter.Bucket {
			continue
		}
		out = append(out, candidate)
	}
	return out, nil
}

func (s *fakeStore) PatchCandidate(_ context.Context, candidateID string, patch CandidatePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	candidate, ok := s.candidates[candidateID]
	if !ok {
		return ErrRecordNotFound
	}
	if patch.Status != nil {
		candidate.Status = *patch.Status
	}
	if patch.ReadyToGo != nil {
		candidate.ReadyToGo = *patch.ReadyToGo
	}
	if iv := patch.Interview; iv != nil {
		if iv.Status != nil {
			candidate.Interview.Status = *iv.Status
		}
		if iv.Result != nil {
			candidate.Interview.Result = *iv.Result
		}
		if iv.ScheduledAt != nil {
			candidate.Interview.ScheduledAt = iv.ScheduledAt
		}
		if iv.CompletedAt != nil {
			candidate.Interview.CompletedAt = iv.CompletedAt
		}
		if iv.CompositeScore != nil {
			candidate.Interview.CompositeScore = iv.CompositeScore
		}
		if iv.EvaluationsSet {
			candidate.Interview.Evaluations = iv.Evaluations
		}
	}
	if bg := patch.BackgroundCheck; bg != nil {
		if bg.Initiated != nil {
			candidate.BackgroundCheck.Initiated = *bg.Initiated
		}
		if bg.Status != nil {
			candidate.BackgroundCheck.Status = *bg.Status
		}
		if bg.CaseID != nil {
			candidate.BackgroundCheck.CaseID = *bg.CaseID
		}
		if bg.PassedAtSet {
			candidate.BackgroundCheck.PassedAt = bg.PassedAt
		}
	}
	if offer := patch.PreLicenseOffer; offer != nil {
		if offer.Sent != nil {
			candidate.Offers.PreLicense.Sent = *offer.Sent
		}
		if offer.Signed != nil {
			candidate.Offers.PreLicense.Signed = *offer.Signed
		}
		if offer.SentAtSet {
			candidate.Offers.PreLicense.SentAt = offer.SentAt
		}
		if offer.SignedAtSet {
			candidate.Offers.PreLicense.SignedAt = offer.SignedAt
		}
	}
	if offer := patch.FullAgentOffer; offer != nil {
		if offer.Eligible != nil {
			candidate.Offers.FullAgent.Eligible = *offer.Eligible
		}
		if offer.Sent != nil {
			candidate.Offers.FullAgent.Sent = *offer.Sent
		}
		if offer.Signed != nil {
			candidate.Offers.FullAgent.Signed = *offer.Signed
		}
		if offer.SentAtSet {
			candidate.Offers.FullAgent.SentAt = offer.SentAt
		}
		if offer.SignedAtSet {
			candidate.Offers.FullAgent.SignedAt = offer.SignedAt
		}
	}
	if lic := patch.Licensing; lic != nil {
		if lic.ExamPassed != nil {
			candidate.Licensing.ExamPassed = *lic.ExamPassed
		}
		if lic.ExamPassedAtSet {
			candidate.Licensing.ExamPassedAt = lic.ExamPassedAt
		}
	}
	if class := patch.ClassAssignment; class != nil {
		if class.ClassType != nil {
			candidate.ClassAssignment.ClassType = *class.ClassType
		}
		if class.StartDateSet {
			candidate.ClassAssignment.StartDate = class.StartDate
		}
		if class.StartConfirmed != nil {
			candidate.ClassAssignment.StartConfirmed = *class.StartConfirmed
		}
	}
	s.candidates[candidateID] = candidate
	return nil
}

func (s *fakeStore) ListOpenBackgroundChecks(_ context.Context) ([]Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Candidate
	for _, candidate := range s.candidates {
		if candidate.HasOpenBackgroundCheck() {
			out = append(out, candidate)
		}
	}
	return out, nil
}

func (s *fakeStore) PutOfferDocument(_ context.Context, doc OfferDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offerDocs[doc.CandidateID] = doc
	return nil
}

func (s *fakeStore) GetOfferDocument(_ context.Context, candidateID string) (OfferDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.offerDocs[candidateID]
	if !ok {
		return OfferDocument{}, ErrRecordNotFound
	}
	return doc, nil
}

func (s *fakeStore) PutCohort(_ context.Context, cohort Cohort) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cohorts[cohort.ID] = cohort
	return nil
}

func (s *fakeStore) GetCohort(_ context.Context, cohortID string) (Cohort, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cohort, ok := s.cohorts[cohortID]
	if !ok {
		return Cohort{}, ErrRecordNotFound
	}
	return cohort, nil
}

func (s *fakeStore) FindCohortByStart(_ context.Context, classType ClassType, callCenter CallCenter, startDate time.Time) (Cohort, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cohort := range s.cohorts {
		if cohort.ClassType == classType && cohort.CallCenter == callCenter && cohort.StartDate.Equal(startDate) {
			return cohort, nil
		}
	}
	return Cohort{}, ErrRecordNotFound
}

func (s *fakeStore) AddParticipant(_ context.Context, cohortID string, candidateID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rosters[cohortID] = append(s.rosters[cohortID], candidateID)
	return nil
}

func (s *fakeStore) ListCohorts(_ context.Context, status *CohortStatus) ([]Cohort, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Cohort
	for _, cohort := range s.cohorts {
		if status != nil && cohort.Status != *status {
			continue
		}
		out = append(out, cohort)
	}
	return out, nil
}

type fakeSubmitter struct {
	caseID  string
	err     error
	submits int
}

func (v *fakeSubmitter) Submit(_ context.Context, _ Candidate) (string, error) {
	v.submits++
	if v.err != nil {
		return "", v.err
	}
	return v.caseID, nil
}

func sequentialIDs(prefix string) func() (string, error) {
	n := 0
	return func() (string, error) {
		n++
		return fmt.Sprintf("%s-%d", prefix, n), nil
	}
}

func newTestService(store *fakeStore, vendor VendorSubmitter, now time.Time) *Service {
	clock := func() time.Time { return now }
	return NewService(store, store, store, vendor, NewCohortResolver(DefaultCalendars(), clock), clock, sequentialIDs("id"))
}

func validIntake() CreateCandidateInput {
	return CreateCandidateInput{
		Name:          "  Dana Whitfield  ",
		Email:         "Dana.Whitfield@Example.com",
		Phone:         "704-555-0182",
		CallCenter:    CallCenterCLT,
		LicenseStatus: LicenseStatusUnlicensed,
	}
}

func TestCreateCandidateDefaults(t *testing.T) {
	now := time.Date(2025, time.August, 1, 9, 0, 0, 0, time.UTC)
	store := newFakeStore()
	svc := newTestService(store, nil, now)

	candidate, err := svc.CreateCandidate(context.Background(), validIntake())
	if err != nil {
		t.Fatalf("create candidate: %v", err)
	}
	if candidate.Name != "Dana Whitfield" {
		t.Fatalf("name = %q, want trimmed", candidate.Name)
	}
	if candidate.Email != "dana.whitfield@example.com" {
		t.Fatalf("email = %q, want lowercased", candidate.Email)
	}
	if candidate.Status != CandidateStatusActive {
		t.Fatalf("status = %q, want %q", candidate.Status, CandidateStatusActive)
	}
	if candidate.Interview.Status != InterviewStatusNotStarted {
		t.Fatalf("interview status = %q, want %q", candidate.Interview.Status, InterviewStatusNotStarted)
	}
	if candidate.BackgroundCheck.Status != BackgroundCheckPending {
		t.Fatalf("background check status = %q, want %q", candidate.BackgroundCheck.Status, BackgroundCheckPending)
	}
	if candidate.ClassAssignment.ClassType != ClassTypeUNL {
		t.Fatalf("class type = %q, want %q for unlicensed track", candidate.ClassAssignment.ClassType, ClassTypeUNL)
	}
	if bucket := DeriveFunnelBucket(candidate); bucket != BucketInterview {
		t.Fatalf("bucket = %q, want %q", bucket, BucketInterview)
	}
}

func TestCreateCandidateValidation(t *testing.T) {
	svc := newTestService(newFakeStore(), nil, time.Now())

	tests := []struct {
		name    string
		mutate  func(*CreateCandidateInput)
		wantErr error
	}{
		{"missing name", func(in *CreateCandidateInput) { in.Name = " " }, ErrNameRequired},
		{"missing email", func(in *CreateCandidateInput) { in.Email = "" }, ErrEmailRequired},
		{"malformed email", func(in *CreateCandidateInput) { in.Email = "not-an-email" }, ErrEmailInvalid},
		{"missing phone", func(in *CreateCandidateInput) { in.Phone = "" }, ErrPhoneRequired},
		{"unknown call center", func(in *CreateCandidateInput) { in.CallCenter = "NYC" }, ErrInvalidCallCenter},
		{"unknown license status", func(in *CreateCandidateInput) { in.LicenseStatus = "pending" }, ErrInvalidLicenseStatus},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			input := validIntake()
			tc.mutate(&input)
			if _, err := svc.CreateCandidate(context.Background(), input); !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestCompositeScore(t *testing.T) {
	evaluations := []Evaluation{
		{CommunicationScore: 4, ProfessionalismScore: 5, ExperienceScore: 3, CultureFitScore: 4},
		{CommunicationScore: 5, ProfessionalismScore: 5, ExperienceScore: 4, CultureFitScore: 5},
	}
	if got := CompositeScore(evaluations); got != 4.38 {
		t.Fatalf("composite = %v, want 4.38", got)
	}
	if got := CompositeScore(nil); got != 0 {
		t.Fatalf("composite of no evaluations = %v, want 0", got)
	}
}

func TestRecordEvaluationRecomputesComposite(t *testing.T) {
	now := time.Date(2025, time.August, 1, 9, 0, 0, 0, time.UTC)
	store := newFakeStore()
	svc := newTestService(store, nil, now)

	candidate, err := svc.CreateCandidate(context.Background(), validIntake())
	if err != nil {
		t.Fatalf("create candidate: %v", err)
	}

	updated, err := svc.RecordEvaluation(context.Background(), candidate.ID, Evaluation{
		ManagerName:          "Priya Shah",
		CommunicationScore:   4,
		ProfessionalismScore: 4,
		ExperienceScore:      4,
		CultureFitScore:      4,
	})
	if err != nil {
		t.Fatalf("record evaluation: %v", err)
	}
	if updated.Interview.Status != InterviewStatusInProgress {
		t.Fatalf("interview status = %q, want %q", updated.Interview.Status, InterviewStatusInProgress)
	}
	if updated.Interview.CompositeScore == nil || *updated.Interview.CompositeScore != 4.0 {
		t.Fatalf("composite = %v, want 4.0", updated.Interview.CompositeScore)
	}

	if _, err := svc.RecordEvaluation(context.Background(), candidate.ID, Evaluation{
		ManagerName:        "Priya Shah",
		CommunicationScore: 6,
	}); !errors.Is(err, ErrEvaluationScoreOutOfRange) {
		t.Fatalf("err = %v, want ErrEvaluationScoreOutOfRange", err)
	}
	if _, err := svc.RecordEvaluation(context.Background(), candidate.ID, Evaluation{}); !errors.Is(err, ErrEvaluationManagerRequired) {
		t.Fatalf("err = %v, want ErrEvaluationManagerRequired", err)
	}
}

func TestCompleteInterviewThreshold(t *testing.T) {
	tests := []struct {
		name      string
		composite float64
		explicit  *InterviewResult
		want      InterviewResult
	}{
		{"composite at threshold passes", 4.0, nil, InterviewResultPassed},
		{"composite below threshold fails", 3.99, nil, InterviewResultFailed},
		{"explicit fail overrides high composite", 4.8, resultPtr(InterviewResultFailed), InterviewResultFailed},
		{"explicit pass overrides low composite", 2.0, resultPtr(InterviewResultPassed), InterviewResultPassed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore()
			svc := newTestService(store, nil, time.Now())
			candidate, err := svc.CreateCandidate(context.Background(), validIntake())
			if err != nil {
				t.Fatalf("create candidate: %v", err)
			}
			composite := tc.composite
			stored := store.candidates[candidate.ID]
			stored.Interview.CompositeScore = &composite
			store.candidates[candidate.ID] = stored

			result, err := svc.CompleteInterview(context.Background(), candidate.ID, tc.explicit)
			if err != nil {
				t.Fatalf("complete interview: %v", err)
			}
			if result != tc.want {
				t.Fatalf("result = %q, want %q", result, tc.want)
			}
			if store.candidates[candidate.ID].Interview.Status != InterviewStatusCompleted {
				t.Fatal("interview should be marked completed")
			}
		})
	}
}

func resultPtr(result InterviewResult) *InterviewResult {
	return &result
}

func TestInitiateBackgroundCheck(t *testing.T) {
	store := newFakeStore()
	vendor := &fakeSubmitter{caseID: "case-77"}
	svc := newTestService(store, vendor, time.Now())

	candidate, err := svc.CreateCandidate(context.Background(), validIntake())
	if err != nil {
		t.Fatalf("create candidate: %v", err)
	}

	if _, err := svc.InitiateBackgroundCheck(context.Background(), candidate.ID); !errors.Is(err, ErrInterviewNotPassed) {
		t.Fatalf("err = %v, want ErrInterviewNotPassed before a passed interview", err)
	}

	stored := store.candidates[candidate.ID]
	stored.Interview.Status = InterviewStatusCompleted
	stored.Interview.Result = InterviewResultPassed
	store.candidates[candidate.ID] = stored

	caseID, err := svc.InitiateBackgroundCheck(context.Background(), candidate.ID)
	if err != nil {
		t.Fatalf("initiate background check: %v", err)
	}
	if caseID != "case-77" {
		t.Fatalf("caseID = %q, want case-77", caseID)
	}
	got := store.candidates[candidate.ID].BackgroundCheck
	if !got.Initiated || got.CaseID != "case-77" || got.Status != BackgroundCheckPending {
		t.Fatalf("background check = %+v, want initiated pending case-77", got)
	}

	if _, err := svc.InitiateBackgroundCheck(context.Background(), candidate.ID); !errors.Is(err, ErrCaseAlreadyOpen) {
		t.Fatalf("err = %v, want ErrCaseAlreadyOpen", err)
	}
	if vendor.submits != 1 {
		t.Fatalf("vendor submits = %d, want 1", vendor.submits)
	}
}

func TestSendPreLicenseOfferWritesDocumentOnly(t *testing.T) {
	now := time.Date(2025, time.August, 5, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	svc := newTestService(store, nil, now)

	candidate, err := svc.CreateCandidate(context.Background(), validIntake())
	if err != nil {
		t.Fatalf("create candidate: %v", err)
	}

	if err := svc.SendPreLicenseOffer(context.Background(), candidate.ID); err != nil {
		t.Fatalf("send offer: %v", err)
	}
	doc, ok := store.offerDocs[candidate.ID]
	if !ok {
		t.Fatal("offer document not written")
	}
	if !doc.Sent || doc.Signed {
		t.Fatalf("document = %+v, want sent and unsigned", doc)
	}
	// The candidate record is only updated by the signature listener.
	if store.candidates[candidate.ID].Offers.PreLicense.Sent {
		t.Fatal("candidate record must not be written directly by offer issuance")
	}

	doc.Signed = true
	store.offerDocs[candidate.ID] = doc
	if err := svc.SendPreLicenseOffer(context.Background(), candidate.ID); !errors.Is(err, ErrOfferAlreadySigned) {
		t.Fatalf("err = %v, want ErrOfferAlreadySigned", err)
	}
}

func TestSendFullAgentOfferEligibility(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil, time.Now())

	candidate, err := svc.CreateCandidate(context.Background(), validIntake())
	if err != nil {
		t.Fatalf("create candidate: %v", err)
	}

	if err := svc.SendFullAgentOffer(context.Background(), candidate.ID); !errors.Is(err, ErrFullAgentOfferIneligible) {
		t.Fatalf("err = %v, want ErrFullAgentOfferIneligible for unlicensed without exam", err)
	}

	if err := svc.RecordLicenseExamResult(context.Background(), candidate.ID, true); err != nil {
		t.Fatalf("record exam result: %v", err)
	}
	if err := svc.SendFullAgentOffer(context.Background(), candidate.ID); err != nil {
		t.Fatalf("send full agent offer: %v", err)
	}
	offer := store.candidates[candidate.ID].Offers.FullAgent
	if !offer.Eligible || !offer.Sent || offer.SentAt == nil {
		t.Fatalf("full agent offer = %+v, want eligible sent with timestamp", offer)
	}
}

func TestAssignCandidateToCohort(t *testing.T) {
	now := time.Date(2025, time.July, 1, 9, 0, 0, 0, time.UTC)
	store := newFakeStore()
	svc := newTestService(store, nil, now)

	candidate, err := svc.CreateCandidate(context.Background(), validIntake())
	if err != nil {
		t.Fatalf("create candidate: %v", err)
	}

	start := time.Date(2025, time.August, 4, 0, 0, 0, 0, time.UTC)
	cohort, err := svc.CreateCohort(context.Background(), CreateCohortInput{
		Name:       "CLT August UNL",
		CallCenter: CallCenterCLT,
		ClassType:  ClassTypeUNL,
		StartDate:  start,
	})
	if err != nil {
		t.Fatalf("create cohort: %v", err)
	}

	offCalendar := start.AddDate(0, 0, 1)
	if err := svc.AssignCandidateToCohort(context.Background(), candidate.ID, offCalendar); !errors.Is(err, ErrDateNotInCalendar) {
		t.Fatalf("err = %v, want ErrDateNotInCalendar", err)
	}

	if err := svc.AssignCandidateToCohort(context.Background(), candidate.ID, start); err != nil {
		t.Fatalf("assign candidate: %v", err)
	}
	assignment := store.candidates[candidate.ID].ClassAssignment
	if assignment.StartDate == nil || !assignment.StartDate.Equal(start) || !assignment.StartConfirmed {
		t.Fatalf("assignment = %+v, want confirmed %s", assignment, start)
	}
	roster := store.rosters[cohort.ID]
	if len(roster) != 1 || roster[0] != candidate.ID {
		t.Fatalf("roster = %v, want [%s]", roster, candidate.ID)
	}
}

func TestAssignCandidateWithoutCohortRecord(t *testing.T) {
	now := time.Date(2025, time.July, 1, 9, 0, 0, 0, time.UTC)
	store := newFakeStore()
	svc := newTestService(store, nil, now)

	candidate, err := svc.CreateCandidate(context.Background(), validIntake())
	if err != nil {
		t.Fatalf("create candidate: %v", err)
	}

	start := time.Date(2025, time.August, 4, 0, 0, 0, 0, time.UTC)
	if err := svc.AssignCandidateToCohort(context.Background(), candidate.ID, start); err != nil {
		t.Fatalf("assign without cohort record: %v", err)
	}
	if !store.candidates[candidate.ID].ClassAssignment.StartConfirmed {
		t.Fatal("assignment should stand on the candidate record alone")
	}
}

func TestListCandidatesByBucket(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, nil, time.Now())

	first, err := svc.CreateCandidate(context.Background(), validIntake())
	if err != nil {
		t.Fatalf("create candidate: %v", err)
	}
	input := validIntake()
	input.Email = "second@example.com"
	if _, err := svc.CreateCandidate(context.Background(), input); err != nil {
		t.Fatalf("create second candidate: %v", err)
	}

	stored := store.candidates[first.ID]
	stored.Interview.Status = InterviewStatusCompleted
	stored.Interview.Result = InterviewResultPassed
	store.candidates[first.ID] = stored

	bucket := BucketBackgroundCheck
	listed, err := svc.ListCandidates(context.Background(), CandidateFilter{Bucket: &bucket})
	if err != nil {
		t.Fatalf("list candidates: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != first.ID {
		t.Fatalf("listed = %d candidates, want only the passed one", len(listed))
	}
}
