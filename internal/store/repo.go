package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no session exists with the given ID.
	ErrNotFound = errors.New("session not found")

	// ErrVersionConflict is returned by Update when the stored session was
	// written by someone else after it was loaded.
	ErrVersionConflict = errors.New("session version conflict")
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit     int       // max results (0 = unlimited)
	Purpose   string    // exact purpose match ("" = any)
	SessionID string    // exact session match ("" = any)
	From      time.Time // timestamp >= From
	To        time.Time // timestamp <= To
}

// SessionRecord is the persisted form of an interview session.
// Question records are owned by the session and stored inline.
type SessionRecord struct {
	ID              string           `json:"id" bson:"_id"`
	OwnerID         string           `json:"ownerId" bson:"ownerId"`
	Role            string           `json:"role" bson:"role"`
	Difficulty      string           `json:"difficulty" bson:"difficulty"`
	Status          string           `json:"status" bson:"status"`
	MaxQuestions    int              `json:"maxQuestions" bson:"maxQuestions"`
	QuestionCount   int              `json:"questionCount" bson:"questionCount"`
	Questions       []QuestionRecord `json:"questions" bson:"questions"`
	TotalScore      float64          `json:"totalScore" bson:"totalScore"`
	AverageScore    float64          `json:"averageScore" bson:"averageScore"`
	ReadinessLabel  string           `json:"readinessLabel,omitempty" bson:"readinessLabel,omitempty"`
	ConfidenceScore *float64         `json:"confidenceScore,omitempty" bson:"confidenceScore,omitempty"`
	Version         int64            `json:"version" bson:"version"`
	CreatedAt       time.Time        `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt" bson:"updatedAt"`
	CompletedAt     *time.Time       `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
}

// QuestionRecord is one question/answer/evaluation triple.
type QuestionRecord struct {
	QuestionText   string     `json:"questionText" bson:"questionText"`
	Difficulty     string     `json:"difficulty" bson:"difficulty"`
	UserAnswer     string     `json:"userAnswer,omitempty" bson:"userAnswer,omitempty"`
	Critique       string     `json:"critique,omitempty" bson:"critique,omitempty"`
	ImprovedAnswer string     `json:"improvedAnswer,omitempty" bson:"improvedAnswer,omitempty"`
	Score          *float64   `json:"score,omitempty" bson:"score,omitempty"`
	AskedAt        time.Time  `json:"askedAt" bson:"askedAt"`
	AnsweredAt     *time.Time `json:"answeredAt,omitempty" bson:"answeredAt,omitempty"`
}

// SessionRepo persists interview sessions.
type SessionRepo interface {
	// Create stores a new session. The record's Version is left as given.
	Create(ctx context.Context, rec *SessionRecord) error

	// Get loads a session by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (*SessionRecord, error)

	// Update overwrites the mutable fields of a session, provided the stored
	// version still equals rec.Version. On success rec.Version is incremented.
	// Returns ErrNotFound or ErrVersionConflict otherwise.
	Update(ctx context.Context, rec *SessionRecord) error

	// ListByOwner returns the owner's sessions, newest first.
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]*SessionRecord, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	SessionID    string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request event.
type LLMRequestEvent struct {
	ID        int
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates LLM usage for one purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates LLM token usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns a single event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)

	// LLMUsageByPurpose aggregates calls and tokens per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)

	// LLMUsageByModel aggregates calls and tokens per model.
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}
