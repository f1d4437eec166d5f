package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MarloweDigital/Stature/internal/assessment"
	"github.com/MarloweDigital/Stature/internal/scoring"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &PostgresStore{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS analyses (
			analysis_id      UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			subject_id       TEXT NOT NULL,
			domain           TEXT NOT NULL,
			modality         TEXT NOT NULL,
			relational_state TEXT NOT NULL,
			final_score      INT NOT NULL,
			label            TEXT NOT NULL,
			assessment       JSONB NOT NULL,
			score            JSONB NOT NULL,
			repairs          TEXT[] NOT NULL DEFAULT '{}',
			created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS analyses_subject_idx ON analyses (subject_id, created_at);
		CREATE INDEX IF NOT EXISTS analyses_domain_idx ON analyses (domain);
	`)
	return err
}

const analysisColumns = `analysis_id, subject_id, domain, modality, relational_state,
	final_score, label, assessment, score, repairs, created_at`

func (s *PostgresStore) CreateAnalysis(ctx context.Context, a *Analysis) error {
	assessmentJSON, err := json.Marshal(a.Assessment)
	if err != nil {
		return fmt.Errorf("marshal assessment: %w", err)
	}
	scoreJSON, err := json.Marshal(a.Score)
	if err != nil {
		return fmt.Errorf("marshal score: %w", err)
	}
	repairs := a.Repairs
	if repairs == nil {
		repairs = []string{}
	}

	return s.pool.QueryRow(ctx, `
		INSERT INTO analyses (subject_id, domain, modality, relational_state,
			final_score, label, assessment, score, repairs)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING analysis_id, created_at`,
		a.SubjectID, a.Domain, a.Modality, a.RelationalState,
		a.FinalScore, a.Label, assessmentJSON, scoreJSON, repairs,
	).Scan(&a.ID, &a.CreatedAt)
}

func (s *PostgresStore) GetAnalysis(ctx context.Context, id uuid.UUID) (*Analysis, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+analysisColumns+` FROM analyses WHERE analysis_id = $1`, id)
	a, err := scanAnalysis(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *PostgresStore) ListAnalyses(ctx context.Context, filter AnalysisFilter) ([]*Analysis, error) {
	query, args := buildListQuery(filter)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SubjectScores(ctx context.Context, subjectID string, limit int) ([]ScorePoint, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT analysis_id, domain, final_score, label, created_at
		FROM analyses WHERE subject_id = $1
		ORDER BY created_at DESC LIMIT $2`, subjectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []ScorePoint
	for rows.Next() {
		var p ScorePoint
		if err := rows.Scan(&p.AnalysisID, &p.Domain, &p.FinalScore, &p.Label, &p.CreatedAt); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (s *PostgresStore) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{}
	err := s.pool.QueryRow(ctx, `
		SELECT count(*),
			count(*) FILTER (WHERE label = 'positive'),
			count(*) FILTER (WHERE label = 'negative'),
			count(*) FILTER (WHERE label = 'mixed'),
			COALESCE(avg(final_score), 0)
		FROM analyses`,
	).Scan(&st.Total, &st.Positive, &st.Negative, &st.Mixed, &st.AvgScore)
	if err != nil {
		return nil, err
	}
	return st, nil
}

// buildListQuery assembles the filtered listing statement. Split out so the
// parameter numbering can be tested without a database.
func buildListQuery(filter AnalysisFilter) (string, []interface{}) {
	query := `SELECT ` + analysisColumns + ` FROM analyses WHERE 1=1`
	args := []interface{}{}
	n := 0

	if filter.SubjectID != "" {
		n++
		query += fmt.Sprintf(" AND subject_id = $%d", n)
		args = append(args, filter.SubjectID)
	}
	if filter.Domain != "" {
		n++
		query += fmt.Sprintf(" AND domain = $%d", n)
		args = append(args, filter.Domain)
	}
	if filter.Label != "" {
		n++
		query += fmt.Sprintf(" AND label = $%d", n)
		args = append(args, filter.Label)
	}

	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	n++
	query += fmt.Sprintf(" LIMIT $%d", n)
	args = append(args, limit)

	if filter.Offset > 0 {
		n++
		query += fmt.Sprintf(" OFFSET $%d", n)
		args = append(args, filter.Offset)
	}

	return query, args
}

func scanAnalysis(row pgx.Row) (*Analysis, error) {
	a := &Analysis{}
	var assessmentJSON, scoreJSON []byte
	err := row.Scan(
		&a.ID, &a.SubjectID, &a.Domain, &a.Modality, &a.RelationalState,
		&a.FinalScore, &a.Label, &assessmentJSON, &scoreJSON, &a.Repairs, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if assessmentJSON != nil {
		a.Assessment = &assessment.RawAssessment{}
		if err := json.Unmarshal(assessmentJSON, a.Assessment); err != nil {
			return nil, fmt.Errorf("unmarshal assessment: %w", err)
		}
	}
	if scoreJSON != nil {
		a.Score = &scoring.CompositeScore{}
		if err := json.Unmarshal(scoreJSON, a.Score); err != nil {
			return nil, fmt.Errorf("unmarshal score: %w", err)
		}
	}
	return a, nil
}
