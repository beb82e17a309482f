// Package session runs multi-round interview practice sessions: it issues
// questions one at a time, scores answers, adapts difficulty and classifies
// readiness when the session ends.
package session

import (
	"time"

	"github.com/somilnegi/AI-Interview-Prep-App/internal/difficulty"
	"github.com/somilnegi/AI-Interview-Prep-App/internal/readiness"
	"github.com/somilnegi/AI-Interview-Prep-App/internal/store"
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusOngoing   Status = "ONGOING"
	StatusCompleted Status = "COMPLETED"
)

// QuestionRecord is one asked question and, once answered, its evaluation.
type QuestionRecord struct {
	QuestionText   string           `json:"questionText"`
	Difficulty     difficulty.Level `json:"difficulty"`
	UserAnswer     string           `json:"userAnswer,omitempty"`
	Critique       string           `json:"critique,omitempty"`
	ImprovedAnswer string           `json:"improvedAnswer,omitempty"`
	Score          *float64         `json:"score"`
	AskedAt        time.Time        `json:"askedAt"`
	AnsweredAt     *time.Time       `json:"answeredAt,omitempty"`
}

// Scored reports whether the record has been evaluated.
func (q *QuestionRecord) Scored() bool { return q.Score != nil }

// Session is one interview practice run owned by a single user.
type Session struct {
	ID              string           `json:"id"`
	OwnerID         string           `json:"ownerId"`
	Role            string           `json:"role"`
	Difficulty      difficulty.Level `json:"difficulty"`
	Status          Status           `json:"status"`
	MaxQuestions    int              `json:"maxQuestions"`
	QuestionCount   int              `json:"questionCount"`
	Questions       []QuestionRecord `json:"questions"`
	TotalScore      float64          `json:"totalScore"`
	AverageScore    float64          `json:"averageScore"`
	ReadinessLabel  readiness.Label  `json:"readinessLabel,omitempty"`
	ConfidenceScore *float64         `json:"confidenceScore,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
	CompletedAt     *time.Time       `json:"completedAt,omitempty"`

	version int64
}

// Pending returns the latest record if it is still awaiting an answer.
func (s *Session) Pending() *QuestionRecord {
	if len(s.Questions) == 0 {
		return nil
	}
	last := &s.Questions[len(s.Questions)-1]
	if last.Scored() {
		return nil
	}
	return last
}

// Exhausted reports whether the question budget is used up.
func (s *Session) Exhausted() bool {
	return s.QuestionCount >= s.MaxQuestions
}

// aggregate sums the scored records.
func (s *Session) aggregate() (total float64, scored int) {
	for i := range s.Questions {
		if q := s.Questions[i]; q.Scored() {
			total += *q.Score
			scored++
		}
	}
	return total, scored
}

func fromRecord(rec *store.SessionRecord) *Session {
	s := &Session{
		ID:              rec.ID,
		OwnerID:         rec.OwnerID,
		Role:            rec.Role,
		Difficulty:      difficulty.Coerce(rec.Difficulty),
		Status:          Status(rec.Status),
		MaxQuestions:    rec.MaxQuestions,
		QuestionCount:   rec.QuestionCount,
		Questions:       make([]QuestionRecord, len(rec.Questions)),
		TotalScore:      rec.TotalScore,
		AverageScore:    rec.AverageScore,
		ReadinessLabel:  readiness.Label(rec.ReadinessLabel),
		ConfidenceScore: rec.ConfidenceScore,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
		CompletedAt:     rec.CompletedAt,
		version:         rec.Version,
	}
	for i, q := range rec.Questions {
		s.Questions[i] = QuestionRecord{
			QuestionText:   q.QuestionText,
			Difficulty:     difficulty.Coerce(q.Difficulty),
			UserAnswer:     q.UserAnswer,
			Critique:       q.Critique,
			ImprovedAnswer: q.ImprovedAnswer,
			Score:          q.Score,
			AskedAt:        q.AskedAt,
			AnsweredAt:     q.AnsweredAt,
		}
	}
	return s
}

func (s *Session) toRecord() *store.SessionRecord {
	rec := &store.SessionRecord{
		ID:              s.ID,
		OwnerID:         s.OwnerID,
		Role:            s.Role,
		Difficulty:      string(s.Difficulty),
		Status:          string(s.Status),
		MaxQuestions:    s.MaxQuestions,
		QuestionCount:   s.QuestionCount,
		Questions:       make([]store.QuestionRecord, len(s.Questions)),
		TotalScore:      s.TotalScore,
		AverageScore:    s.AverageScore,
		ReadinessLabel:  string(s.ReadinessLabel),
		ConfidenceScore: s.ConfidenceScore,
		Version:         s.version,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
		CompletedAt:     s.CompletedAt,
	}
	for i, q := range s.Questions {
		rec.Questions[i] = store.QuestionRecord{
			QuestionText:   q.QuestionText,
			Difficulty:     string(q.Difficulty),
			UserAnswer:     q.UserAnswer,
			Critique:       q.Critique,
			ImprovedAnswer: q.ImprovedAnswer,
			Score:          q.Score,
			AskedAt:        q.AskedAt,
			AnsweredAt:     q.AnsweredAt,
		}
	}
	return rec
}
