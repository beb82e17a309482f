package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// sessionColumns is the select list shared by all session queries; scanSession
// depends on its order.
var sessionColumns = []string{
	"id", "owner_id", "role", "difficulty", "status",
	"max_questions", "question_count", "questions",
	"total_score", "average_score", "readiness_label", "confidence_score",
	"version", "created_at", "updated_at", "completed_at",
}

// sessionRepo implements SessionRepo using ent's SQL builder.
type sessionRepo struct {
	drv *entsql.Driver
}

func (r *sessionRepo) Create(ctx context.Context, rec *SessionRecord) error {
	questions, err := marshalQuestions(rec.Questions)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(sessionsTable).
		Columns(sessionColumns...).
		Values(
			rec.ID, rec.OwnerID, rec.Role, rec.Difficulty, rec.Status,
			rec.MaxQuestions, rec.QuestionCount, questions,
			rec.TotalScore, rec.AverageScore, rec.ReadinessLabel, nullFloat(rec.ConfidenceScore),
			rec.Version, rec.CreatedAt, rec.UpdatedAt, nullTime(rec.CompletedAt),
		).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *sessionRepo) Get(ctx context.Context, id string) (*SessionRecord, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(sessionColumns...).
		From(entsql.Table(sessionsTable)).
		Where(entsql.EQ("id", id)).
		Query()

	recs, err := r.query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	if len(recs) == 0 {
		return nil, ErrNotFound
	}
	return recs[0], nil
}

func (r *sessionRepo) Update(ctx context.Context, rec *SessionRecord) error {
	questions, err := marshalQuestions(rec.Questions)
	if err != nil {
		return err
	}

	updatedAt := time.Now().UTC()
	query, args := entsql.Dialect(dialect.SQLite).
		Update(sessionsTable).
		Set("difficulty", rec.Difficulty).
		Set("status", rec.Status).
		Set("question_count", rec.QuestionCount).
		Set("questions", questions).
		Set("total_score", rec.TotalScore).
		Set("average_score", rec.AverageScore).
		Set("readiness_label", rec.ReadinessLabel).
		Set("confidence_score", nullFloat(rec.ConfidenceScore)).
		Set("version", rec.Version+1).
		Set("updated_at", updatedAt).
		Set("completed_at", nullTime(rec.CompletedAt)).
		Where(entsql.And(
			entsql.EQ("id", rec.ID),
			entsql.EQ("version", rec.Version),
		)).
		Query()

	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if n == 0 {
		if _, err := r.Get(ctx, rec.ID); err != nil {
			return err
		}
		return ErrVersionConflict
	}

	rec.Version++
	rec.UpdatedAt = updatedAt
	return nil
}

func (r *sessionRepo) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*SessionRecord, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(sessionColumns...).
		From(entsql.Table(sessionsTable)).
		Where(entsql.EQ("owner_id", ownerID)).
		OrderBy(entsql.Desc("created_at"))
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	query, args := sel.Query()

	recs, err := r.query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return recs, nil
}

func (r *sessionRepo) query(ctx context.Context, query string, args []any) ([]*SessionRecord, error) {
	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanSession(rows *entsql.Rows) (*SessionRecord, error) {
	var (
		rec         SessionRecord
		questions   []byte
		confidence  sql.NullFloat64
		completedAt sql.NullTime
	)
	err := rows.Scan(
		&rec.ID, &rec.OwnerID, &rec.Role, &rec.Difficulty, &rec.Status,
		&rec.MaxQuestions, &rec.QuestionCount, &questions,
		&rec.TotalScore, &rec.AverageScore, &rec.ReadinessLabel, &confidence,
		&rec.Version, &rec.CreatedAt, &rec.UpdatedAt, &completedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}

	if len(questions) > 0 {
		if err := json.Unmarshal(questions, &rec.Questions); err != nil {
			return nil, fmt.Errorf("unmarshal questions of session %s: %w", rec.ID, err)
		}
	}
	if confidence.Valid {
		v := confidence.Float64
		rec.ConfidenceScore = &v
	}
	if completedAt.Valid {
		t := completedAt.Time
		rec.CompletedAt = &t
	}
	return &rec, nil
}

func marshalQuestions(qs []QuestionRecord) (string, error) {
	if qs == nil {
		qs = []QuestionRecord{}
	}
	b, err := json.Marshal(qs)
	if err != nil {
		return "", fmt.Errorf("marshal questions: %w", err)
	}
	return string(b), nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// IsNotFound reports whether err is (or wraps) ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
