// internal/organizer/postgres.go
package organizer

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"go.uber.org/zap"
)

// PostgresStore persists patterns in PostgreSQL. Reinforcement is a
// single upsert statement so concurrent reinforcements of the same
// pattern stay additive; feedback updates use the version column.
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresStore creates a store over an open connection.
func NewPostgresStore(db *sql.DB, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger}
}

const patternColumns = `
	id, owner_id, kind, trigger_key,
	mime_type, extension, name_regexp, source_folder_id, project_label,
	hour_of_day, day_of_week,
	destination_folder_id, destination_folder_name,
	confidence, occurrences, first_seen, last_occurrence,
	preceding_action, minutes_since_upload, size_band,
	ai_explanation, accepted_count, rejected_count, ignored_count,
	recent_feedback, is_active, version`

// ReinforceOrCreate implements PatternStore.
func (s *PostgresStore) ReinforceOrCreate(ctx context.Context, p *OrganizationPattern, step float64) (*OrganizationPattern, bool, error) {
	recent, err := json.Marshal(p.Feedback.Recent)
	if err != nil {
		return nil, false, StorageError{Op: "reinforce", Err: err}
	}

	// xmax = 0 distinguishes a fresh insert from a conflict update.
	query := `
		INSERT INTO organization_patterns (` + patternColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
		        $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24,
		        $25, $26, $27)
		ON CONFLICT (owner_id, trigger_key) WHERE is_active
		DO UPDATE SET
			occurrences = organization_patterns.occurrences + 1,
			last_occurrence = GREATEST(
				organization_patterns.last_occurrence,
				EXCLUDED.last_occurrence),
			confidence = LEAST(1.0,
				organization_patterns.confidence
				+ $28 * (1.0 - organization_patterns.confidence)),
			preceding_action = EXCLUDED.preceding_action,
			minutes_since_upload = EXCLUDED.minutes_since_upload,
			size_band = EXCLUDED.size_band,
			version = organization_patterns.version + 1
		RETURNING ` + patternColumns + `, (xmax = 0) AS inserted`

	row := s.db.QueryRowContext(ctx, query,
		p.ID, p.OwnerID, string(p.Kind), p.MatchKey(),
		nullable(p.Trigger.MimeType), nullable(p.Trigger.Extension),
		nullable(p.Trigger.NameRegexp), nullable(p.Trigger.SourceFolderID),
		nullable(p.Trigger.ProjectLabel),
		p.Trigger.HourOfDay, p.Trigger.DayOfWeek,
		p.DestinationFolderID, p.DestinationFolderName,
		p.Confidence, p.Occurrences, p.FirstSeen, p.LastOccurrence,
		nullable(p.Context.PrecedingAction), p.Context.MinutesSinceUpload,
		nullable(p.Context.SizeBand),
		nullable(p.AIExplanation),
		p.Feedback.AcceptedCount, p.Feedback.RejectedCount, p.Feedback.IgnoredCount,
		recent, p.IsActive, int64(1),
		step,
	)

	var inserted bool
	out, err := scanPattern(row, &inserted)
	if err != nil {
		return nil, false, StorageError{Op: "reinforce", Err: err}
	}
	return out, inserted, nil
}

// ListActive implements PatternStore.
func (s *PostgresStore) ListActive(ctx context.Context, ownerID string) ([]*OrganizationPattern, error) {
	query := `SELECT ` + patternColumns + `
		FROM organization_patterns
		WHERE owner_id = $1 AND is_active
		ORDER BY last_occurrence DESC`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, StorageError{Op: "list", Err: err}
	}
	defer func() { _ = rows.Close() }()

	patterns := make([]*OrganizationPattern, 0)
	for rows.Next() {
		p, err := scanPattern(rows, nil)
		if err != nil {
			return nil, StorageError{Op: "list", Err: err}
		}
		patterns = append(patterns, p)
	}
	if err := rows.Err(); err != nil {
		return nil, StorageError{Op: "list", Err: err}
	}
	return patterns, nil
}

// Get implements PatternStore.
func (s *PostgresStore) Get(ctx context.Context, ownerID, patternID string) (*OrganizationPattern, error) {
	query := `SELECT ` + patternColumns + `
		FROM organization_patterns
		WHERE id = $1 AND owner_id = $2`

	p, err := scanPattern(s.db.QueryRowContext(ctx, query, patternID, ownerID), nil)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFoundError{OwnerID: ownerID, PatternID: patternID}
	}
	if err != nil {
		return nil, StorageError{Op: "get", Err: err}
	}
	return p, nil
}

// Update implements PatternStore.
func (s *PostgresStore) Update(ctx context.Context, p *OrganizationPattern) error {
	recent, err := json.Marshal(p.Feedback.Recent)
	if err != nil {
		return StorageError{Op: "update", Err: err}
	}

	query := `
		UPDATE organization_patterns SET
			confidence = $1,
			occurrences = $2,
			last_occurrence = $3,
			ai_explanation = $4,
			accepted_count = $5,
			rejected_count = $6,
			ignored_count = $7,
			recent_feedback = $8,
			is_active = $9,
			version = version + 1
		WHERE id = $10 AND owner_id = $11 AND version = $12`

	res, err := s.db.ExecContext(ctx, query,
		p.Confidence, p.Occurrences, p.LastOccurrence,
		nullable(p.AIExplanation),
		p.Feedback.AcceptedCount, p.Feedback.RejectedCount, p.Feedback.IgnoredCount,
		recent, p.IsActive,
		p.ID, p.OwnerID, p.Version,
	)
	if err != nil {
		return StorageError{Op: "update", Err: err}
	}

	n, err := res.RowsAffected()
	if err != nil {
		return StorageError{Op: "update", Err: err}
	}
	if n == 0 {
		// Either the row moved under us or it is not ours; let the
		// caller reload to find out.
		if _, gerr := s.Get(ctx, p.OwnerID, p.ID); gerr != nil {
			return gerr
		}
		return ErrConflict
	}
	p.Version++
	return nil
}

// SetExplanation implements PatternStore.
func (s *PostgresStore) SetExplanation(ctx context.Context, ownerID, patternID, text string) error {
	query := `UPDATE organization_patterns
		SET ai_explanation = $1, version = version + 1
		WHERE id = $2 AND owner_id = $3`

	if _, err := s.db.ExecContext(ctx, query, text, patternID, ownerID); err != nil {
		return StorageError{Op: "set_explanation", Err: err}
	}
	return nil
}

// RenameFolder implements PatternStore.
func (s *PostgresStore) RenameFolder(ctx context.Context, ownerID, folderID, name string) (int64, error) {
	query := `UPDATE organization_patterns
		SET destination_folder_name = $1, version = version + 1
		WHERE owner_id = $2 AND destination_folder_id = $3`

	res, err := s.db.ExecContext(ctx, query, name, ownerID, folderID)
	if err != nil {
		return 0, StorageError{Op: "rename_folder", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, StorageError{Op: "rename_folder", Err: err}
	}
	return n, nil
}

// OwnerStats implements PatternStore.
func (s *PostgresStore) OwnerStats(ctx context.Context, ownerID string) (*OwnerStats, error) {
	query := `SELECT
			COUNT(*) FILTER (WHERE is_active),
			COUNT(*),
			COALESCE(AVG(confidence) FILTER (WHERE is_active), 0)
		FROM organization_patterns
		WHERE owner_id = $1`

	stats := &OwnerStats{OwnerID: ownerID}
	err := s.db.QueryRowContext(ctx, query, ownerID).Scan(
		&stats.ActivePatterns, &stats.TotalPatterns, &stats.MeanConfidence,
	)
	if err != nil {
		return nil, StorageError{Op: "stats", Err: err}
	}
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPattern(row rowScanner, inserted *bool) (*OrganizationPattern, error) {
	var (
		p                                      OrganizationPattern
		kind                                   string
		triggerKey                             string
		mimeType, extension, nameRegexp        sql.NullString
		sourceFolder, projectLabel             sql.NullString
		precedingAction, sizeBand, aiExplained sql.NullString
		recent                                 []byte
	)

	dest := []interface{}{
		&p.ID, &p.OwnerID, &kind, &triggerKey,
		&mimeType, &extension, &nameRegexp, &sourceFolder, &projectLabel,
		&p.Trigger.HourOfDay, &p.Trigger.DayOfWeek,
		&p.DestinationFolderID, &p.DestinationFolderName,
		&p.Confidence, &p.Occurrences, &p.FirstSeen, &p.LastOccurrence,
		&precedingAction, &p.Context.MinutesSinceUpload, &sizeBand,
		&aiExplained, &p.Feedback.AcceptedCount, &p.Feedback.RejectedCount,
		&p.Feedback.IgnoredCount, &recent, &p.IsActive, &p.Version,
	}
	if inserted != nil {
		dest = append(dest, inserted)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	p.Kind = PatternKind(kind)
	p.Trigger.MimeType = mimeType.String
	p.Trigger.Extension = extension.String
	p.Trigger.NameRegexp = nameRegexp.String
	p.Trigger.SourceFolderID = sourceFolder.String
	p.Trigger.ProjectLabel = projectLabel.String
	p.Context.PrecedingAction = precedingAction.String
	p.Context.SizeBand = sizeBand.String
	p.AIExplanation = aiExplained.String

	if len(recent) > 0 {
		if err := json.Unmarshal(recent, &p.Feedback.Recent); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ PatternStore = (*PostgresStore)(nil)
