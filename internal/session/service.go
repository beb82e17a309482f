package session

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/somilnegi/AI-Interview-Prep-App/internal/difficulty"
	"github.com/somilnegi/AI-Interview-Prep-App/internal/interview"
	"github.com/somilnegi/AI-Interview-Prep-App/internal/llm"
	"github.com/somilnegi/AI-Interview-Prep-App/internal/lock"
	"github.com/somilnegi/AI-Interview-Prep-App/internal/metrics"
	"github.com/somilnegi/AI-Interview-Prep-App/internal/readiness"
	"github.com/somilnegi/AI-Interview-Prep-App/internal/store"
)

// Score bounds applied to every evaluation.
const (
	MinScore = 0.0
	MaxScore = 10.0
)

// Config tunes the session service.
type Config struct {
	// MaxQuestions is the question budget of new sessions. Default: 5.
	MaxQuestions int
	// UpstreamTimeout bounds each gateway or classifier call. Default: 30s.
	UpstreamTimeout time.Duration
	// Thresholds drive adaptive difficulty.
	Thresholds difficulty.Thresholds
}

// DefaultConfig returns the standard session settings.
func DefaultConfig() Config {
	return Config{
		MaxQuestions:    5,
		UpstreamTimeout: 30 * time.Second,
		Thresholds:      difficulty.DefaultThresholds(),
	}
}

// Deps are the collaborators of a Service.
type Deps struct {
	Repo       store.SessionRepo
	Gateway    interview.Gateway
	Classifier readiness.Classifier
	// Locker serializes operations per session. Default: in-process.
	Locker lock.Locker
	Logger *zap.Logger
}

// NextQuestionResult is either a new question or the exhausted sentinel.
type NextQuestionResult struct {
	Question  string `json:"question,omitempty"`
	Exhausted bool   `json:"exhausted,omitempty"`
}

// Summary is the outcome of ending a session.
type Summary struct {
	TotalScore      float64         `json:"totalScore"`
	AverageScore    float64         `json:"averageScore"`
	ReadinessLabel  readiness.Label `json:"readinessLabel"`
	ConfidenceScore float64         `json:"confidenceScore"`
}

// Service is the interview session state machine. Operations on the same
// session are serialized; different sessions proceed independently.
type Service struct {
	repo       store.SessionRepo
	gateway    interview.Gateway
	classifier readiness.Classifier
	locker     lock.Locker
	controller *difficulty.Controller
	cfg        Config
	logger     *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewService creates a Service. Zero config values take their defaults.
func NewService(deps Deps, cfg Config) *Service {
	def := DefaultConfig()
	if cfg.MaxQuestions <= 0 {
		cfg.MaxQuestions = def.MaxQuestions
	}
	if cfg.UpstreamTimeout <= 0 {
		cfg.UpstreamTimeout = def.UpstreamTimeout
	}
	if cfg.Thresholds == (difficulty.Thresholds{}) {
		cfg.Thresholds = def.Thresholds
	}
	if deps.Locker == nil {
		deps.Locker = lock.NewKeyedMutex()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Service{
		repo:       deps.Repo,
		gateway:    deps.Gateway,
		classifier: deps.Classifier,
		locker:     deps.Locker,
		controller: difficulty.NewController(cfg.Thresholds),
		cfg:        cfg,
		logger:     deps.Logger,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      uuid.NewString,
	}
}

// Start creates a session for ownerID. An unknown or empty difficulty
// starts at MEDIUM.
func (s *Service) Start(ctx context.Context, ownerID, role, requestedDifficulty string) (*Session, error) {
	const op = "start"

	role = strings.TrimSpace(role)
	if role == "" {
		return nil, newError(ErrValidation, op, "role is required", nil)
	}
	if strings.TrimSpace(ownerID) == "" {
		return nil, newError(ErrValidation, op, "owner is required", nil)
	}

	now := s.now()
	sess := &Session{
		ID:           s.newID(),
		OwnerID:      ownerID,
		Role:         role,
		Difficulty:   difficulty.Coerce(requestedDifficulty),
		Status:       StatusOngoing,
		MaxQuestions: s.cfg.MaxQuestions,
		Questions:    []QuestionRecord{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	rec := sess.toRecord()
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, newError(ErrStorage, op, "create session", err)
	}
	sess.UpdatedAt = rec.UpdatedAt

	metrics.SessionStarted(string(sess.Difficulty))
	s.logger.Info("session started",
		zap.String("sessionId", sess.ID),
		zap.String("ownerId", ownerID),
		zap.String("role", role),
		zap.String("difficulty", string(sess.Difficulty)),
	)
	return sess, nil
}

// NextQuestion issues the next question, or reports exhaustion once the
// budget is used. A question cannot be issued while the previous one is
// unanswered.
func (s *Service) NextQuestion(ctx context.Context, sessionID, callerID string) (NextQuestionResult, error) {
	const op = "next question"

	unlock, err := s.lock(ctx, op, sessionID)
	if err != nil {
		return NextQuestionResult{}, err
	}
	defer unlock()

	sess, err := s.load(ctx, op, sessionID, callerID)
	if err != nil {
		return NextQuestionResult{}, err
	}
	if sess.Status == StatusCompleted {
		return NextQuestionResult{}, newError(ErrInvalidState, op, "session is completed", nil)
	}
	if sess.Exhausted() {
		return NextQuestionResult{Exhausted: true}, nil
	}
	if sess.Pending() != nil {
		return NextQuestionResult{}, newError(ErrInvalidState, op, "previous question has not been answered", nil)
	}

	uctx, cancel := s.upstreamContext(ctx, sessionID)
	text, err := s.gateway.AskQuestion(uctx, sess.Role, sess.Difficulty)
	cancel()
	if err != nil {
		return NextQuestionResult{}, s.upstreamError(op, "question", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		metrics.UpstreamFailure("question", "format")
		return NextQuestionResult{}, newError(ErrUpstreamFormat, op, "empty question text", nil)
	}

	sess.Questions = append(sess.Questions, QuestionRecord{
		QuestionText: text,
		Difficulty:   sess.Difficulty,
		AskedAt:      s.now(),
	})
	sess.QuestionCount++

	if err := s.save(ctx, op, sess); err != nil {
		return NextQuestionResult{}, err
	}

	metrics.QuestionAsked(string(sess.Difficulty))
	s.logger.Debug("question issued",
		zap.String("sessionId", sessionID),
		zap.Int("questionCount", sess.QuestionCount),
		zap.String("difficulty", string(sess.Difficulty)),
	)
	return NextQuestionResult{Question: text}, nil
}

// SubmitAnswer scores the answer to the open question and adapts the
// session difficulty to the score.
func (s *Service) SubmitAnswer(ctx context.Context, sessionID, callerID, answer string) (interview.Evaluation, error) {
	const op = "submit answer"

	unlock, err := s.lock(ctx, op, sessionID)
	if err != nil {
		return interview.Evaluation{}, err
	}
	defer unlock()

	sess, err := s.load(ctx, op, sessionID, callerID)
	if err != nil {
		return interview.Evaluation{}, err
	}
	if sess.Status == StatusCompleted {
		return interview.Evaluation{}, newError(ErrInvalidState, op, "session is completed", nil)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return interview.Evaluation{}, newError(ErrValidation, op, "answer is required", nil)
	}
	pending := sess.Pending()
	if pending == nil {
		return interview.Evaluation{}, newError(ErrInvalidState, op, "no question is awaiting an answer", nil)
	}

	uctx, cancel := s.upstreamContext(ctx, sessionID)
	ev, err := s.gateway.ScoreAnswer(uctx, pending.QuestionText, answer)
	cancel()
	if err != nil {
		return interview.Evaluation{}, s.upstreamError(op, "score", err)
	}
	if math.IsNaN(ev.Score) || math.IsInf(ev.Score, 0) {
		metrics.UpstreamFailure("score", "format")
		return interview.Evaluation{}, newError(ErrUpstreamFormat, op, "score is not a finite number", nil)
	}
	ev.Score = clamp(ev.Score)

	score := ev.Score
	answeredAt := s.now()
	pending.UserAnswer = answer
	pending.Critique = ev.KeyMistakes
	pending.ImprovedAnswer = ev.ImprovedAnswer
	pending.Score = &score
	pending.AnsweredAt = &answeredAt

	prev := sess.Difficulty
	sess.Difficulty = s.controller.Next(sess.Difficulty, score)

	if err := s.save(ctx, op, sess); err != nil {
		return interview.Evaluation{}, err
	}

	metrics.AnswerScored(score)
	s.logger.Debug("answer scored",
		zap.String("sessionId", sessionID),
		zap.Float64("score", score),
		zap.String("difficulty", string(prev)),
		zap.String("nextDifficulty", string(sess.Difficulty)),
	)
	return ev, nil
}

// End aggregates the scored answers, classifies readiness and completes the
// session. Ending is allowed once, and only after at least one answer.
func (s *Service) End(ctx context.Context, sessionID, callerID string) (Summary, error) {
	const op = "end"

	unlock, err := s.lock(ctx, op, sessionID)
	if err != nil {
		return Summary{}, err
	}
	defer unlock()

	sess, err := s.load(ctx, op, sessionID, callerID)
	if err != nil {
		return Summary{}, err
	}
	if sess.Status == StatusCompleted {
		return Summary{}, newError(ErrInvalidState, op, "session is already completed", nil)
	}
	total, scored := sess.aggregate()
	if scored == 0 {
		return Summary{}, newError(ErrInvalidState, op, "no answers have been scored", nil)
	}
	avg := total / float64(scored)

	uctx, cancel := s.upstreamContext(ctx, sessionID)
	verdict, err := s.classifier.Classify(uctx, avg, sess.Difficulty.Ordinal())
	cancel()
	if err != nil {
		return Summary{}, s.upstreamError(op, "classify", err)
	}

	completedAt := s.now()
	confidence := verdict.Confidence
	sess.TotalScore = total
	sess.AverageScore = avg
	sess.ReadinessLabel = verdict.Label
	sess.ConfidenceScore = &confidence
	sess.Status = StatusCompleted
	sess.CompletedAt = &completedAt

	if err := s.save(ctx, op, sess); err != nil {
		return Summary{}, err
	}

	metrics.SessionCompleted(string(verdict.Label))
	s.logger.Info("session completed",
		zap.String("sessionId", sessionID),
		zap.Float64("averageScore", avg),
		zap.String("difficulty", string(sess.Difficulty)),
		zap.String("readiness", string(verdict.Label)),
		zap.Float64("confidence", confidence),
	)
	return Summary{
		TotalScore:      total,
		AverageScore:    avg,
		ReadinessLabel:  verdict.Label,
		ConfidenceScore: confidence,
	}, nil
}

// Get returns a session owned by callerID.
func (s *Service) Get(ctx context.Context, sessionID, callerID string) (*Session, error) {
	return s.load(ctx, "get", sessionID, callerID)
}

func (s *Service) lock(ctx context.Context, op, sessionID string) (func(), error) {
	unlock, err := s.locker.Lock(ctx, sessionID)
	if err != nil {
		return nil, newError(ErrStorage, op, "acquire session lock", err)
	}
	return unlock, nil
}

func (s *Service) load(ctx context.Context, op, sessionID, callerID string) (*Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, newError(ErrValidation, op, "session id is required", nil)
	}
	rec, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, newError(ErrNotFound, op, "", err)
		}
		return nil, newError(ErrStorage, op, "load session", err)
	}
	if rec.OwnerID != callerID {
		return nil, newError(ErrAuthorization, op, "session belongs to another user", nil)
	}
	return fromRecord(rec), nil
}

func (s *Service) save(ctx context.Context, op string, sess *Session) error {
	rec := sess.toRecord()
	if err := s.repo.Update(ctx, rec); err != nil {
		return newError(ErrStorage, op, "save session", err)
	}
	sess.version = rec.Version
	sess.UpdatedAt = rec.UpdatedAt
	return nil
}

func (s *Service) upstreamContext(ctx context.Context, sessionID string) (context.Context, context.CancelFunc) {
	return context.WithTimeout(llm.WithSession(ctx, sessionID), s.cfg.UpstreamTimeout)
}

// upstreamError classifies a gateway or classifier failure.
func (s *Service) upstreamError(op, call string, err error) error {
	if interview.IsFormatError(err) || readiness.IsFormatError(err) {
		metrics.UpstreamFailure(call, "format")
		s.logger.Warn("undecodable upstream response", zap.String("op", op), zap.Error(err))
		return newError(ErrUpstreamFormat, op, "", err)
	}
	metrics.UpstreamFailure(call, "error")
	s.logger.Warn("upstream call failed", zap.String("op", op), zap.Error(err))
	return newError(ErrUpstream, op, "", err)
}

func clamp(score float64) float64 {
	return math.Max(MinScore, math.Min(MaxScore, score))
}
