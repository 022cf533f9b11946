package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hirecrest/talentline/internal/services/pipeline/domain"
	"github.com/hirecrest/talentline/internal/services/pipeline/storage"
)

const cohortColumns = `id, name, call_center, class_type, start_date, expected_end_date, trainer_name, current_stage, week_number, status, created_at, updated_at`

// PutCohort upserts one training cohort row.
func (s *Store) PutCohort(ctx context.Context, cohort domain.Cohort) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	cohort.ID = strings.TrimSpace(cohort.ID)
	if cohort.ID == "" {
		return fmt.Errorf("cohort id is required")
	}
	if cohort.StartDate.IsZero() {
		return fmt.Errorf("cohort start date is required")
	}
	if cohort.CreatedAt.IsZero() || cohort.UpdatedAt.IsZero() {
		return fmt.Errorf("cohort timestamps are required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
	INSERT INTO cohorts (`+cohortColumns+`)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name,
		call_center = excluded.call_center,
		class_type = excluded.class_type,
		start_date = excluded.start_date,
		expected_end_date = excluded.expected_end_date,
		trainer_name = excluded.trainer_name,
		current_stage = excluded.current_stage,
		week_number = excluded.week_number,
		status = excluded.status,
		created_at = excluded.created_at,
		updated_at = excluded.updated_at
	`,
		cohort.ID,
		cohort.Name,
		string(cohort.CallCenter),
		string(cohort.ClassType),
		toMillis(cohort.StartDate),
		toMillis(cohort.ExpectedEndDate),
		cohort.TrainerName,
		cohort.CurrentStage,
		cohort.WeekNumber,
		string(cohort.Status),
		toMillis(cohort.CreatedAt),
		toMillis(cohort.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put cohort: %w", err)
	}
	return nil
}

// GetCohort loads one cohort with its participant roster.
func (s *Store) GetCohort(ctx context.Context, cohortID string) (domain.Cohort, error) {
	if err := ctx.Err(); err != nil {
		return domain.Cohort{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Cohort{}, fmt.Errorf("storage is not configured")
	}
	cohortID = strings.TrimSpace(cohortID)
	if cohortID == "" {
		return domain.Cohort{}, fmt.Errorf("cohort id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+cohortColumns+`
FROM cohorts
WHERE id = ?
`, cohortID)
	cohort, err := scanCohort(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Cohort{}, storage.ErrNotFound
		}
		return domain.Cohort{}, fmt.Errorf("get cohort: %w", err)
	}

	cohort.ParticipantIDs, err = s.listParticipants(ctx, cohortID)
	if err != nil {
		return domain.Cohort{}, err
	}
	return cohort, nil
}

// FindCohortByStart finds the cohort for one class type, site and start date.
func (s *Store) FindCohortByStart(ctx context.Context, classType domain.ClassType, callCenter domain.CallCenter, startDate time.Time) (domain.Cohort, error) {
	if err := ctx.Err(); err != nil {
		return domain.Cohort{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.Cohort{}, fmt.Errorf("storage is not configured")
	}
	if startDate.IsZero() {
		return domain.Cohort{}, fmt.Errorf("start date is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+cohortColumns+`
FROM cohorts
WHERE class_type = ? AND call_center = ? AND start_date = ?
ORDER BY created_at ASC
LIMIT 1
`, string(classType), string(callCenter), toMillis(startDate))
	cohort, err := scanCohort(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Cohort{}, storage.ErrNotFound
		}
		return domain.Cohort{}, fmt.Errorf("find cohort by start: %w", err)
	}

	cohort.ParticipantIDs, err = s.listParticipants(ctx, cohort.ID)
	if err != nil {
		return domain.Cohort{}, err
	}
	return cohort, nil
}

// AddParticipant adds one candidate to a cohort roster. Re-adding an existing
// participant is a no-op.
func (s *Store) AddParticipant(ctx context.Context, cohortID string, candidateID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	cohortID = strings.TrimSpace(cohortID)
	candidateID = strings.TrimSpace(candidateID)
	if cohortID == "" {
		return fmt.Errorf("cohort id is required")
	}
	if candidateID == "" {
		return fmt.Errorf("candidate id is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
	INSERT INTO cohort_participants (cohort_id, candidate_id, added_at)
	VALUES (?, ?, ?)
	ON CONFLICT(cohort_id, candidate_id) DO NOTHING
	`, cohortID, candidateID, toMillis(time.Now()))
	if err != nil {
		if isForeignKeyConstraintError(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("add cohort participant: %w", err)
	}
	return nil
}

// ListCohorts lists cohorts by start date ascending, optionally by status.
func (s *Store) ListCohorts(ctx context.Context, status *domain.CohortStatus) ([]domain.Cohort, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	query := `
SELECT ` + cohortColumns + `
FROM cohorts`
	args := []any{}
	if status != nil {
		query += " WHERE status = ?"
		args = append(args, string(*status))
	}
	query += " ORDER BY start_date ASC, id ASC"

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cohorts: %w", err)
	}
	defer rows.Close()

	var results []domain.Cohort
	for rows.Next() {
		cohort, scanErr := scanCohort(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("scan cohort row: %w", scanErr)
		}
		results = append(results, cohort)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cohort rows: %w", err)
	}

	for i := range results {
		results[i].ParticipantIDs, err = s.listParticipants(ctx, results[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (s *Store) listParticipants(ctx context.Context, cohortID string) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT candidate_id
FROM cohort_participants
WHERE cohort_id = ?
ORDER BY added_at ASC, candidate_id ASC
`, cohortID)
	if err != nil {
		return nil, fmt.Errorf("list cohort participants: %w", err)
	}
	defer rows.Close()

	var participantIDs []string
	for rows.Next() {
		var candidateID string
		if err := rows.Scan(&candidateID); err != nil {
			return nil, fmt.Errorf("scan participant row: %w", err)
		}
		participantIDs = append(participantIDs, candidateID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participant rows: %w", err)
	}
	return participantIDs, nil
}

func scanCohort(scan scanner) (domain.Cohort, error) {
	var cohort domain.Cohort
	var callCenter, classType, status string
	var startDate, expectedEndDate, createdAt, updatedAt int64
	if err := scan(
		&cohort.ID,
		&cohort.Name,
		&callCenter,
		&classType,
		&startDate,
		&expectedEndDate,
		&cohort.TrainerName,
		&cohort.CurrentStage,
		&cohort.WeekNumber,
		&status,
		&createdAt,
		&updatedAt,
	); err != nil {
		return domain.Cohort{}, err
	}
	cohort.CallCenter = domain.CallCenter(callCenter)
	cohort.ClassType = domain.ClassType(classType)
	cohort.Status = domain.CohortStatus(status)
	cohort.StartDate = fromMillis(startDate)
	cohort.ExpectedEndDate = fromMillis(expectedEndDate)
	cohort.CreatedAt = fromMillis(createdAt)
	cohort.UpdatedAt = fromMillis(updatedAt)
	return cohort, nil
}

func isForeignKeyConstraintError(err error) bool {
	if err == nil {
		return false
	}
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "foreign key constraint failed")
}
