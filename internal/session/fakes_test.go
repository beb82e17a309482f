package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/somilnegi/AI-Interview-Prep-App/internal/difficulty"
	"github.com/somilnegi/AI-Interview-Prep-App/internal/interview"
	"github.com/somilnegi/AI-Interview-Prep-App/internal/readiness"
	"github.com/somilnegi/AI-Interview-Prep-App/internal/store"
)

// stubGateway returns scripted questions and evaluations and records calls.
type stubGateway struct {
	mu        sync.Mutex
	questions []string
	evals     []interview.Evaluation
	askErr    error
	scoreErr  error
	delay     time.Duration

	askCalls   []difficulty.Level
	scoreCalls []string
}

func (g *stubGateway) AskQuestion(ctx context.Context, role string, level difficulty.Level) (string, error) {
	g.mu.Lock()
	g.askCalls = append(g.askCalls, level)
	n := len(g.askCalls)
	g.mu.Unlock()

	if g.askErr != nil {
		return "", g.askErr
	}
	if len(g.questions) == 0 {
		return fmt.Sprintf("Question %d for %s?", n, role), nil
	}
	return g.questions[(n-1)%len(g.questions)], nil
}

func (g *stubGateway) ScoreAnswer(ctx context.Context, question, answer string) (interview.Evaluation, error) {
	g.mu.Lock()
	g.scoreCalls = append(g.scoreCalls, answer)
	n := len(g.scoreCalls)
	g.mu.Unlock()

	if g.delay > 0 {
		select {
		case <-ctx.Done():
			return interview.Evaluation{}, ctx.Err()
		case <-time.After(g.delay):
		}
	}
	if g.scoreErr != nil {
		return interview.Evaluation{}, g.scoreErr
	}
	if len(g.evals) == 0 {
		return interview.Evaluation{Score: 5, KeyMistakes: "none", ImprovedAnswer: "better"}, nil
	}
	return g.evals[(n-1)%len(g.evals)], nil
}

func (g *stubGateway) askCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.askCalls)
}

func (g *stubGateway) scoreCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.scoreCalls)
}

type classifyCall struct {
	avg     float64
	ordinal int
}

// stubClassifier returns a fixed verdict and records calls.
type stubClassifier struct {
	mu      sync.Mutex
	verdict readiness.Verdict
	err     error
	calls   []classifyCall
}

func (c *stubClassifier) Classify(_ context.Context, avg float64, ordinal int) (readiness.Verdict, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, classifyCall{avg, ordinal})
	if c.err != nil {
		return readiness.Verdict{}, c.err
	}
	return c.verdict, nil
}

// failingRepo wraps a SessionRepo and fails updates on demand.
type failingRepo struct {
	store.SessionRepo
	failUpdate bool
}

var errDiskFull = errors.New("disk full")

func (r *failingRepo) Update(ctx context.Context, rec *store.SessionRecord) error {
	if r.failUpdate {
		return errDiskFull
	}
	return r.SessionRepo.Update(ctx, rec)
}

func openRepo(t *testing.T) store.SessionRepo {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s.SessionRepo()
}

type fixture struct {
	svc        *Service
	repo       store.SessionRepo
	gateway    *stubGateway
	classifier *stubClassifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:       openRepo(t),
		gateway:    &stubGateway{},
		classifier: &stubClassifier{verdict: readiness.Verdict{Label: readiness.Ready, Confidence: 87.5}},
	}
	f.svc = NewService(Deps{
		Repo:       f.repo,
		Gateway:    f.gateway,
		Classifier: f.classifier,
	}, DefaultConfig())
	return f
}

// stored reloads a session directly from the repo.
func (f *fixture) stored(t *testing.T, id string) *Session {
	t.Helper()
	rec, err := f.repo.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("reload session: %v", err)
	}
	return fromRecord(rec)
}
