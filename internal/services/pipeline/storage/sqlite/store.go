package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	sqlitemigrate "github.com/hirecrest/talentline/internal/platform/storage/sqlitemigrate"
	"github.com/hirecrest/talentline/internal/services/pipeline/domain"
	"github.com/hirecrest/talentline/internal/services/pipeline/storage"
	"github.com/hirecrest/talentline/internal/services/pipeline/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for pipeline state.
type Store struct {
	sqlDB *sql.DB

	subMu     sync.Mutex
	offerSubs map[string]map[int]func(domain.OfferDocument)
	nextSubID int
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a pipeline SQLite store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := ensureForeignKeysEnabled(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	store := &Store{
		sqlDB:     sqlDB,
		offerSubs: make(map[string]map[int]func(domain.OfferDocument)),
	}
	if err := store.runMigrations(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) runMigrations() error {
	return sqlitemigrate.ApplyMigrations(s.sqlDB, migrations.FS, "")
}

func ensureForeignKeysEnabled(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("sqlite db is required")
	}
	var enabled int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled); err != nil {
		return fmt.Errorf("check sqlite foreign key pragma: %w", err)
	}
	if enabled != 1 {
		return fmt.Errorf("sqlite foreign keys are disabled")
	}
	return nil
}

const candidateColumns = `id, name, email, phone, alt_phone, location, call_center, license_status, status, ready_to_go,
interview_status, interview_result, interview_scheduled_at, interview_completed_at, interview_composite_score, interview_evaluations_json,
check_initiated, check_status, check_case_id, check_notes, check_passed_at,
pre_offer_sent, pre_offer_signed, pre_offer_sent_at, pre_offer_signed_at,
full_offer_eligible, full_offer_sent, full_offer_signed, full_offer_sent_at, full_offer_signed_at,
exam_passed, exam_passed_at, license_obtained,
class_type, class_start_date, pre_start_call_completed, class_start_confirmed, systems_onboarded, training_completed,
notes, created_at, updated_at`

// PutCandidate persists one candidate row, replacing any existing state.
func (s *Store) PutCandidate(ctx context.Context, candidate domain.Candidate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	candidate.ID = strings.TrimSpace(candidate.ID)
	if candidate.ID == "" {
		return fmt.Errorf("candidate id is required")
	}
	if candidate.CreatedAt.IsZero() || candidate.UpdatedAt.IsZero() {
		return fmt.Errorf("candidate timestamps are required")
	}

	evaluationsJSON, err := marshalEvaluations(candidate.Interview.Evaluations)
	if err != nil {
		return err
	}

	_, err = s.sqlDB.ExecContext(ctx, `
	INSERT INTO candidates (`+candidateColumns+`
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name,
		email = excluded.email,
		phone = excluded.phone,
		alt_phone = excluded.alt_phone,
		location = excluded.location,
		call_center = excluded.call_center,
		license_status = excluded.license_status,
		status = excluded.status,
		ready_to_go = excluded.ready_to_go,
		interview_status = excluded.interview_status,
		interview_result = excluded.interview_result,
		interview_scheduled_at = excluded.interview_scheduled_at,
		interview_completed_at = excluded.interview_completed_at,
		interview_composite_score = excluded.interview_composite_score,
		interview_evaluations_json = excluded.interview_evaluations_json,
		check_initiated = excluded.check_initiated,
		check_status = excluded.check_status,
		check_case_id = excluded.check_case_id,
		check_notes = excluded.check_notes,
		check_passed_at = excluded.check_passed_at,
		pre_offer_sent = excluded.pre_offer_sent,
		pre_offer_signed = excluded.pre_offer_signed,
		pre_offer_sent_at = excluded.pre_offer_sent_at,
		pre_offer_signed_at = excluded.pre_offer_signed_at,
		full_offer_eligible = excluded.full_offer_eligible,
		full_offer_sent = excluded.full_offer_sent,
		full_offer_signed = excluded.full_offer_signed,
		full_offer_sent_at = excluded.full_offer_sent_at,
		full_offer_signed_at = excluded.full_offer_signed_at,
		exam_passed = excluded.exam_passed,
		exam_passed_at = excluded.exam_passed_at,
		license_obtained = excluded.license_obtained,
		class_type = excluded.class_type,
		class_start_date = excluded.class_start_date,
		pre_start_call_completed = excluded.pre_start_call_completed,
		class_start_confirmed = excluded.class_start_confirmed,
		systems_onboarded = excluded.systems_onboarded,
		training_completed = excluded.training_completed,
		notes = excluded.notes,
		created_at = excluded.created_at,
		updated_at = excluded.updated_at
	`,
		candidate.ID,
		candidate.Name,
		candidate.Email,
		candidate.Phone,
		candidate.AltPhone,
		candidate.Location,
		string(candidate.CallCenter),
		string(candidate.LicenseStatus),
		string(candidate.Status),
		boolToInt(candidate.ReadyToGo),
		string(candidate.Interview.Status),
		string(candidate.Interview.Result),
		nullMillis(candidate.Interview.ScheduledAt),
		nullMillis(candidate.Interview.CompletedAt),
		nullFloat(candidate.Interview.CompositeScore),
		evaluationsJSON,
		boolToInt(candidate.BackgroundCheck.Initiated),
		string(candidate.BackgroundCheck.Status),
		candidate.BackgroundCheck.CaseID,
		candidate.BackgroundCheck.Notes,
		nullMillis(candidate.BackgroundCheck.PassedAt),
		boolToInt(candidate.Offers.PreLicense.Sent),
		boolToInt(candidate.Offers.PreLicense.Signed),
		nullMillis(candidate.Offers.PreLicense.SentAt),
		nullMillis(candidate.Offers.PreLicense.SignedAt),
		boolToInt(candidate.Offers.FullAgent.Eligible),
		boolToInt(candidate.Offers.FullAgent.Sent),
		boolToInt(candidate.Offers.FullAgent.Signed),
		nullMillis(candidate.Offers.FullAgent.SentAt),
		nullMillis(candidate.Offers.FullAgent.SignedAt),
		boolToInt(candidate.Licensing.ExamPassed),
		nullMillis(candidate.Licensing.ExamPassedAt),
		boolToInt(candidate.Licensing.LicenseObtained),
		string(candidate.ClassAssignment.ClassType),
		nullMillis(candidate.ClassAssignment.StartDate),
		boolToInt(candidate.ClassAssignment.PreStartCallCompleted),
		boolToInt(candidate.ClassAssignment.StartConfirmed),
		boolToInt(candidate.ClassAssignment.SystemsOnboarded),
		boolToInt(candidate.ClassAssignment.TrainingCompleted),
		candidate.Notes,
		toMillis(candidate.CreatedAt),
		toMillis(candidate.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put candidate: %w", err)
	}
	return nil
}

// GetCandidate loads one candidate by id.
func (s *Store) GetCandidate(ctx context.Context, candidateID string) (domain.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return domain.Candidate{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Candidate{}, fmt.Errorf("storage is not configured")
	}
	candidateID = strings.TrimSpace(candidateID)
	if candidateID == "" {
		return domain.Candidate{}, fmt.Errorf("candidate id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+candidateColumns+`
FROM candidates
WHERE id = ?
`, candidateID)
	candidate, err := scanCandidate(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Candidate{}, storage.ErrNotFound
		}
		return domain.Candidate{}, fmt.Errorf("get candidate: %w", err)
	}
	return candidate, nil
}

// ListCandidates lists candidates by creation time, newest first. Status and
// call-center filters apply in SQL; the funnel bucket filter is derived per
// row after the load.
func (s *Store) ListCandidates(ctx context.Context, filter domain.CandidateFilter) ([]domain.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	query := `
SELECT ` + candidateColumns + `
FROM candidates
WHERE 1 = 1`
	args := []any{}
	if filter.Status != nil {
		query += " AND status = ?"
		args = append(args, string(*filter.Status))
	}
	if filter.CallCenter != nil {
		query += " AND call_center = ?"
		args = append(args, string(*filter.CallCenter))
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	var results []domain.Candidate
	for rows.Next() {
		candidate, scanErr := scanCandidate(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("scan candidate row: %w", scanErr)
		}
		if filter.Bucket != nil && domain.DeriveFunnelBucket(candidate) != *filter.Bucket {
			continue
		}
		results = append(results, candidate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidate rows: %w", err)
	}
	return results, nil
}

// ListOpenBackgroundChecks lists candidates whose vendor case is still open.
func (s *Store) ListOpenBackgroundChecks(ctx context.Context) ([]domain.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT `+candidateColumns+`
FROM candidates
WHERE check_initiated = 1
  AND check_case_id != ''
  AND check_status IN (?, ?)
ORDER BY created_at ASC, id ASC
`, string(domain.BackgroundCheckPending), string(domain.BackgroundCheckInProgress))
	if err != nil {
		return nil, fmt.Errorf("list open background checks: %w", err)
	}
	defer rows.Close()

	var results []domain.Candidate
	for rows.Next() {
		candidate, scanErr := scanCandidate(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("scan candidate row: %w", scanErr)
		}
		results = append(results, candidate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidate rows: %w", err)
	}
	return results, nil
}

// PatchCandidate applies a field-level partial update. Absent patch fields
// leave their columns untouched, so writers of disjoint branches never
// clobber each other.
func (s *Store) PatchCandidate(ctx context.Context, candidateID string, patch domain.CandidatePatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	candidateID = strings.TrimSpace(candidateID)
	if candidateID == "" {
		return fmt.Errorf("candidate id is required")
	}
	if patch.IsZero() {
		return nil
	}

	var setClauses []string
	var args []any
	set := func(column string, value any) {
		setClauses = append(setClauses, column+" = ?")
		args = append(args, value)
	}

	if patch.Status != nil {
		set("status", string(*patch.Status))
	}
	if patch.ReadyToGo != nil {
		set("ready_to_go", boolToInt(*patch.ReadyToGo))
	}
	if patch.Notes != nil {
		set("notes", strings.TrimSpace(*patch.Notes))
	}
	if iv := patch.Interview; iv != nil {
		if iv.Status != nil {
			set("interview_status", string(*iv.Status))
		}
		if iv.Result != nil {
			set("interview_result", string(*iv.Result))
		}
		if iv.ScheduledAt != nil {
			set("interview_scheduled_at", toMillis(*iv.ScheduledAt))
		}
		if iv.CompletedAt != nil {
			set("interview_completed_at", toMillis(*iv.CompletedAt))
		}
		if iv.CompositeScore != nil {
			set("interview_composite_score", *iv.CompositeScore)
		}
		if iv.EvaluationsSet {
			evaluationsJSON, err := marshalEvaluations(iv.Evaluations)
			if err != nil {
				return err
			}
			set("interview_evaluations_json", evaluationsJSON)
		}
	}
	if bg := patch.BackgroundCheck; bg != nil {
		if bg.Initiated != nil {
			set("check_initiated", boolToInt(*bg.Initiated))
		}
		if bg.Status != nil {
			set("check_status", string(*bg.Status))
		}
		if bg.CaseID != nil {
			set("check_case_id", strings.TrimSpace(*bg.CaseID))
		}
		if bg.Notes != nil {
			set("check_notes", strings.TrimSpace(*bg.Notes))
		}
		if bg.PassedAtSet {
			set("check_passed_at", nullMillis(bg.PassedAt))
		}
	}
	if offer := patch.PreLicenseOffer; offer != nil {
		if offer.Sent != nil {
			set("pre_offer_sent", boolToInt(*offer.Sent))
		}
		if offer.Signed != nil {
			set("pre_offer_signed", boolToInt(*offer.Signed))
		}
		if offer.SentAtSet {
			set("pre_offer_sent_at", nullMillis(offer.SentAt))
		}
		if offer.SignedAtSet {
			set("pre_offer_signed_at", nullMillis(offer.SignedAt))
		}
	}
	if offer := patch.FullAgentOffer; offer != nil {
		if offer.Eligible != nil {
			set("full_offer_eligible", boolToInt(*offer.Eligible))
		}
		if offer.Sent != nil {
			set("full_offer_sent", boolToInt(*offer.Sent))
		}
		if offer.Signed != nil {
			set("full_offer_signed", boolToInt(*offer.Signed))
		}
		if offer.SentAtSet {
			set("full_offer_sent_at", nullMillis(offer.SentAt))
		}
		if offer.SignedAtSet {
			set("full_offer_signed_at", nullMillis(offer.SignedAt))
		}
	}
	if lic := patch.Licensing; lic != nil {
		if lic.ExamPassed != nil {
			set("exam_passed", boolToInt(*lic.ExamPassed))
		}
		if lic.ExamPassedAtSet {
			set("exam_passed_at", nullMillis(lic.ExamPassedAt))
		}
		if lic.LicenseObtained != nil {
			set("license_obtained", boolToInt(*lic.LicenseObtained))
		}
	}
	if class := patch.ClassAssignment; class != nil {
		if class.ClassType != nil {
			set("class_type", string(*class.ClassType))
		}
		if class.StartDateSet {
			set("class_start_date", nullMillis(class.StartDate))
		}
		if class.PreStartCallCompleted != nil {
			set("pre_start_call_completed", boolToInt(*class.PreStartCallCompleted))
		}
		if class.StartConfirmed != nil {
			set("class_start_confirmed", boolToInt(*class.StartConfirmed))
		}
		if class.SystemsOnboarded != nil {
			set("systems_onboarded", boolToInt(*class.SystemsOnboarded))
		}
		if class.TrainingCompleted != nil {
			set("training_completed", boolToInt(*class.TrainingCompleted))
		}
	}

	set("updated_at", toMillis(time.Now()))
	args = append(args, candidateID)

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE candidates
SET `+strings.Join(setClauses, ", ")+`
WHERE id = ?
`, args...)
	if err != nil {
		return fmt.Errorf("patch candidate: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("patch candidate rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

type scanner func(dest ...any) error

type evaluationRow struct {
	ManagerName          string  `json:"managerName"`
	CommunicationScore   float64 `json:"communicationScore"`
	ProfessionalismScore float64 `json:"professionalismScore"`
	ExperienceScore      float64 `json:"experienceScore"`
	CultureFitScore      float64 `json:"cultureFitScore"`
	RecordedAtMillis     int64   `json:"recordedAt"`
}

func marshalEvaluations(evaluations []domain.Evaluation) (string, error) {
	rows := make([]evaluationRow, 0, len(evaluations))
	for _, evaluation := range evaluations {
		rows = append(rows, evaluationRow{
			ManagerName:          evaluation.ManagerName,
			CommunicationScore:   evaluation.CommunicationScore,
			ProfessionalismScore: evaluation.ProfessionalismScore,
			ExperienceScore:      evaluation.ExperienceScore,
			CultureFitScore:      evaluation.CultureFitScore,
			RecordedAtMillis:     toMillis(evaluation.RecordedAt),
		})
	}
	encoded, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("marshal evaluations: %w", err)
	}
	return string(encoded), nil
}

func unmarshalEvaluations(encoded string) ([]domain.Evaluation, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" || encoded == "[]" {
		return nil, nil
	}
	var rows []evaluationRow
	if err := json.Unmarshal([]byte(encoded), &rows); err != nil {
		return nil, fmt.Errorf("unmarshal evaluations: %w", err)
	}
	evaluations := make([]domain.Evaluation, 0, len(rows))
	for _, row := range rows {
		evaluations = append(evaluations, domain.Evaluation{
			ManagerName:          row.ManagerName,
			CommunicationScore:   row.CommunicationScore,
			ProfessionalismScore: row.ProfessionalismScore,
			ExperienceScore:      row.ExperienceScore,
			CultureFitScore:      row.CultureFitScore,
			RecordedAt:           fromMillis(row.RecordedAtMillis),
		})
	}
	return evaluations, nil
}

func scanCandidate(scan scanner) (domain.Candidate, error) {
	var candidate domain.Candidate
	var callCenter, licenseStatus, status string
	var readyToGo int
	var interviewStatus, interviewResult string
	var interviewScheduledAt, interviewCompletedAt sql.NullInt64
	var compositeScore sql.NullFloat64
	var evaluationsJSON string
	var checkInitiated int
	var checkStatus string
	var checkPassedAt sql.NullInt64
	var preSent, preSigned int
	var preSentAt, preSignedAt sql.NullInt64
	var fullEligible, fullSent, fullSigned int
	var fullSentAt, fullSignedAt sql.NullInt64
	var examPassed int
	var examPassedAt sql.NullInt64
	var licenseObtained int
	var classType string
	var classStartDate sql.NullInt64
	var preStartCall, startConfirmed, systemsOnboarded, trainingCompleted int
	var createdAt, updatedAt int64

	if err := scan(
		&candidate.ID,
		&candidate.Name,
		&candidate.Email,
		&candidate.Phone,
		&candidate.AltPhone,
		&candidate.Location,
		&callCenter,
		&licenseStatus,
		&status,
		&readyToGo,
		&interviewStatus,
		&interviewResult,
		&interviewScheduledAt,
		&interviewCompletedAt,
		&compositeScore,
		&evaluationsJSON,
		&checkInitiated,
		&checkStatus,
		&candidate.BackgroundCheck.CaseID,
		&candidate.BackgroundCheck.Notes,
		&checkPassedAt,
		&preSent,
		&preSigned,
		&preSentAt,
		&preSignedAt,
		&fullEligible,
		&fullSent,
		&fullSigned,
		&fullSentAt,
		&fullSignedAt,
		&examPassed,
		&examPassedAt,
		&licenseObtained,
		&classType,
		&classStartDate,
		&preStartCall,
		&startConfirmed,
		&systemsOnboarded,
		&trainingCompleted,
		&candidate.Notes,
		&createdAt,
		&updatedAt,
	); err != nil {
		return domain.Candidate{}, err
	}

	evaluations, err := unmarshalEvaluations(evaluationsJSON)
	if err != nil {
		return domain.Candidate{}, err
	}

	candidate.CallCenter = domain.CallCenter(callCenter)
	candidate.LicenseStatus = domain.LicenseStatus(licenseStatus)
	candidate.Status = domain.CandidateStatus(status)
	candidate.ReadyToGo = readyToGo != 0
	candidate.Interview = domain.Interview{
		Status:         domain.InterviewStatus(interviewStatus),
		Result:         domain.InterviewResult(interviewResult),
		ScheduledAt:    timePtr(interviewScheduledAt),
		CompletedAt:    timePtr(interviewCompletedAt),
		CompositeScore: floatPtr(compositeScore),
		Evaluations:    evaluations,
	}
	candidate.BackgroundCheck.Initiated = checkInitiated != 0
	candidate.BackgroundCheck.Status = domain.BackgroundCheckStatus(checkStatus)
	candidate.BackgroundCheck.PassedAt = timePtr(checkPassedAt)
	candidate.Offers.PreLicense = domain.OfferState{
		Sent:     preSent != 0,
		Signed:   preSigned != 0,
		SentAt:   timePtr(preSentAt),
		SignedAt: timePtr(preSignedAt),
	}
	candidate.Offers.FullAgent = domain.FullAgentOffer{
		Eligible: fullEligible != 0,
		Sent:     fullSent != 0,
		Signed:   fullSigned != 0,
		SentAt:   timePtr(fullSentAt),
		SignedAt: timePtr(fullSignedAt),
	}
	candidate.Licensing = domain.Licensing{
		ExamPassed:      examPassed != 0,
		ExamPassedAt:    timePtr(examPassedAt),
		LicenseObtained: licenseObtained != 0,
	}
	candidate.ClassAssignment = domain.ClassAssignment{
		ClassType:             domain.ClassType(classType),
		StartDate:             timePtr(classStartDate),
		PreStartCallCompleted: preStartCall != 0,
		StartConfirmed:        startConfirmed != 0,
		SystemsOnboarded:      systemsOnboarded != 0,
		TrainingCompleted:     trainingCompleted != 0,
	}
	candidate.CreatedAt = fromMillis(createdAt)
	candidate.UpdatedAt = fromMillis(updatedAt)
	return candidate, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func nullMillis(value *time.Time) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(*value), Valid: true}
}

func nullFloat(value *float64) sql.NullFloat64 {
	if value == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *value, Valid: true}
}

func timePtr(value sql.NullInt64) *time.Time {
	if !value.Valid {
		return nil
	}
	converted := fromMillis(value.Int64)
	return &converted
}

func floatPtr(value sql.NullFloat64) *float64 {
	if !value.Valid {
		return nil
	}
	converted := value.Float64
	return &converted
}
