package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/somilnegi/AI-Interview-Prep-App/internal/difficulty"
	"github.com/somilnegi/AI-Interview-Prep-App/internal/interview"
	"github.com/somilnegi/AI-Interview-Prep-App/internal/lock"
	"github.com/somilnegi/AI-Interview-Prep-App/internal/readiness"
)

const owner = "user-1"

func eval(score float64) interview.Evaluation {
	return interview.Evaluation{Score: score, KeyMistakes: "Missed edge cases.", ImprovedAnswer: "Cover the edge cases."}
}

func assertCountInvariant(t *testing.T, f *fixture, id string) {
	t.Helper()
	s := f.stored(t, id)
	assert.Equal(t, len(s.Questions), s.QuestionCount, "questionCount must equal len(questions)")
}

func TestScenario_BackendEngineer(t *testing.T) {
	f := newFixture(t)
	f.gateway.evals = []interview.Evaluation{eval(9)}
	ctx := context.Background()

	sess, err := f.svc.Start(ctx, owner, "Backend Engineer", "easy")
	require.NoError(t, err)
	assert.Equal(t, difficulty.Easy, sess.Difficulty)

	next, err := f.svc.NextQuestion(ctx, sess.ID, owner)
	require.NoError(t, err)
	assert.NotEmpty(t, next.Question)
	assert.False(t, next.Exhausted)

	stored := f.stored(t, sess.ID)
	assert.Equal(t, 1, stored.QuestionCount)
	assert.Equal(t, difficulty.Easy, stored.Difficulty)

	ev, err := f.svc.SubmitAnswer(ctx, sess.ID, owner, "I would shard by user id.")
	require.NoError(t, err)
	assert.Equal(t, 9.0, ev.Score)
	assert.Equal(t, difficulty.Medium, f.stored(t, sess.ID).Difficulty)

	sum, err := f.svc.End(ctx, sess.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, 9.0, sum.TotalScore)
	assert.Equal(t, 9.0, sum.AverageScore)
	assert.Equal(t, readiness.Ready, sum.ReadinessLabel)
	assert.Equal(t, 87.5, sum.ConfidenceScore)
	require.Len(t, f.classifier.calls, 1)
	assert.Equal(t, classifyCall{9.0, 2}, f.classifier.calls[0])

	final := f.stored(t, sess.ID)
	assert.Equal(t, StatusCompleted, final.Status)
	require.NotNil(t, final.CompletedAt)
	require.NotNil(t, final.ConfidenceScore)
	assert.Equal(t, 87.5, *final.ConfidenceScore)
	assertCountInvariant(t, f, sess.ID)
}

func TestStart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		requested string
		want      difficulty.Level
	}{
		{"", difficulty.Medium},
		{"hard", difficulty.Hard},
		{"EASY", difficulty.Easy},
		{"impossible", difficulty.Medium},
	}
	for _, tt := range tests {
		sess, err := f.svc.Start(ctx, owner, "  Data Engineer ", tt.requested)
		require.NoError(t, err)
		assert.Equal(t, tt.want, sess.Difficulty, "requested %q", tt.requested)
		assert.Equal(t, "Data Engineer", sess.Role)
		assert.Equal(t, StatusOngoing, sess.Status)
		assert.Equal(t, 5, sess.MaxQuestions)
		assert.Zero(t, sess.QuestionCount)

		stored := f.stored(t, sess.ID)
		assert.Equal(t, owner, stored.OwnerID)
		assert.Equal(t, tt.want, stored.Difficulty)
	}
}

func TestStart_EmptyRole(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Start(context.Background(), owner, "   ", "easy")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNextQuestion_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess, err := f.svc.Start(ctx, owner, "SRE", "")
	require.NoError(t, err)

	_, err = f.svc.NextQuestion(ctx, "missing", owner)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.NextQuestion(ctx, sess.ID, "intruder")
	assert.ErrorIs(t, err, ErrAuthorization)

	_, err = f.svc.NextQuestion(ctx, sess.ID, owner)
	require.NoError(t, err)

	_, err = f.svc.NextQuestion(ctx, sess.ID, owner)
	assert.ErrorIs(t, err, ErrInvalidState, "second question before answering")
	assert.Equal(t, 1, f.gateway.askCount())
	assertCountInvariant(t, f, sess.ID)
}

func TestNextQuestion_Exhausted(t *testing.T) {
	f := newFixture(t)
	f.svc = NewService(Deps{Repo: f.repo, Gateway: f.gateway, Classifier: f.classifier}, Config{MaxQuestions: 2})
	ctx := context.Background()

	sess, err := f.svc.Start(ctx, owner, "SRE", "")
	require.NoError(t, err)
	for range 2 {
		_, err := f.svc.NextQuestion(ctx, sess.ID, owner)
		require.NoError(t, err)
		_, err = f.svc.SubmitAnswer(ctx, sess.ID, owner, "answer")
		require.NoError(t, err)
	}
	require.Equal(t, 2, f.gateway.askCount())

	res, err := f.svc.NextQuestion(ctx, sess.ID, owner)
	require.NoError(t, err)
	assert.True(t, res.Exhausted)
	assert.Empty(t, res.Question)
	assert.Equal(t, 2, f.gateway.askCount(), "gateway must not be called once exhausted")

	stored := f.stored(t, sess.ID)
	assert.Equal(t, 2, stored.QuestionCount)
	assert.Len(t, stored.Questions, 2)
}

func TestNextQuestion_UpstreamFailures(t *testing.T) {
	tests := []struct {
		name    string
		askErr  error
		stubQ   []string
		wantErr error
	}{
		{"call failure", errors.New("connection refused"), nil, ErrUpstream},
		{"format failure", &interview.FormatError{What: "question", Err: errors.New("bad json")}, nil, ErrUpstreamFormat},
		{"blank question", nil, []string{"   \n"}, ErrUpstreamFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.gateway.askErr = tt.askErr
			f.gateway.questions = tt.stubQ
			ctx := context.Background()
			sess, err := f.svc.Start(ctx, owner, "SRE", "")
			require.NoError(t, err)

			_, err = f.svc.NextQuestion(ctx, sess.ID, owner)
			assert.ErrorIs(t, err, tt.wantErr)

			stored := f.stored(t, sess.ID)
			assert.Zero(t, stored.QuestionCount, "nothing persisted on upstream failure")
			assert.Empty(t, stored.Questions)
		})
	}
}

func TestNextQuestion_TrimsQuestion(t *testing.T) {
	f := newFixture(t)
	f.gateway.questions = []string{"\n  What is a mutex?  \n"}
	ctx := context.Background()
	sess, _ := f.svc.Start(ctx, owner, "SRE", "")

	res, err := f.svc.NextQuestion(ctx, sess.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, "What is a mutex?", res.Question)
	assert.Equal(t, "What is a mutex?", f.stored(t, sess.ID).Questions[0].QuestionText)
}

func TestSubmitAnswer_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess, _ := f.svc.Start(ctx, owner, "SRE", "")

	_, err := f.svc.SubmitAnswer(ctx, sess.ID, owner, "an answer")
	assert.ErrorIs(t, err, ErrInvalidState, "no question asked yet")

	_, err = f.svc.NextQuestion(ctx, sess.ID, owner)
	require.NoError(t, err)

	_, err = f.svc.SubmitAnswer(ctx, sess.ID, owner, "   ")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.SubmitAnswer(ctx, sess.ID, "intruder", "an answer")
	assert.ErrorIs(t, err, ErrAuthorization)

	_, err = f.svc.SubmitAnswer(ctx, "missing", owner, "an answer")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.SubmitAnswer(ctx, sess.ID, owner, "an answer")
	require.NoError(t, err)

	_, err = f.svc.SubmitAnswer(ctx, sess.ID, owner, "again")
	assert.ErrorIs(t, err, ErrInvalidState, "record already scored")
	assert.Equal(t, 1, f.gateway.scoreCount())
}

func TestSubmitAnswer_ClampsScore(t *testing.T) {
	for _, tt := range []struct{ raw, want float64 }{{14, 10}, {-3, 0}, {7.5, 7.5}} {
		f := newFixture(t)
		f.gateway.evals = []interview.Evaluation{eval(tt.raw)}
		ctx := context.Background()
		sess, _ := f.svc.Start(ctx, owner, "SRE", "")
		_, err := f.svc.NextQuestion(ctx, sess.ID, owner)
		require.NoError(t, err)

		ev, err := f.svc.SubmitAnswer(ctx, sess.ID, owner, "answer")
		require.NoError(t, err)
		assert.Equal(t, tt.want, ev.Score)

		rec := f.stored(t, sess.ID).Questions[0]
		require.NotNil(t, rec.Score)
		assert.Equal(t, tt.want, *rec.Score)
		assert.Equal(t, "answer", rec.UserAnswer)
		assert.Equal(t, "Missed edge cases.", rec.Critique)
		assert.Equal(t, "Cover the edge cases.", rec.ImprovedAnswer)
		assert.NotNil(t, rec.AnsweredAt)
	}
}

func TestSubmitAnswer_AdaptsDifficulty(t *testing.T) {
	f := newFixture(t)
	f.gateway.evals = []interview.Evaluation{eval(9), eval(9), eval(6), eval(3), eval(2)}
	ctx := context.Background()
	sess, _ := f.svc.Start(ctx, owner, "SRE", "medium")

	want := []difficulty.Level{difficulty.Hard, difficulty.Hard, difficulty.Hard, difficulty.Medium, difficulty.Easy}
	for i, w := range want {
		_, err := f.svc.NextQuestion(ctx, sess.ID, owner)
		require.NoError(t, err)
		_, err = f.svc.SubmitAnswer(ctx, sess.ID, owner, "answer")
		require.NoError(t, err)
		assert.Equal(t, w, f.stored(t, sess.ID).Difficulty, "after answer %d", i+1)
	}

	// Each question is generated at the difficulty in force when it was asked.
	assert.Equal(t, []difficulty.Level{
		difficulty.Medium, difficulty.Hard, difficulty.Hard, difficulty.Hard, difficulty.Medium,
	}, f.gateway.askCalls)
}

func TestSubmitAnswer_UpstreamFailures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		score   float64
		wantErr error
	}{
		{"call failure", errors.New("503"), 0, ErrUpstream},
		{"format failure", &interview.FormatError{What: "evaluation", Err: errors.New("no json")}, 0, ErrUpstreamFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			sess, _ := f.svc.Start(ctx, owner, "SRE", "")
			_, err := f.svc.NextQuestion(ctx, sess.ID, owner)
			require.NoError(t, err)

			f.gateway.scoreErr = tt.err
			_, err = f.svc.SubmitAnswer(ctx, sess.ID, owner, "answer")
			assert.ErrorIs(t, err, tt.wantErr)

			stored := f.stored(t, sess.ID)
			assert.Nil(t, stored.Questions[0].Score, "record stays unscored")
			assert.Equal(t, difficulty.Medium, stored.Difficulty)

			// The operation can be retried once the upstream recovers.
			f.gateway.scoreErr = nil
			_, err = f.svc.SubmitAnswer(ctx, sess.ID, owner, "answer")
			assert.NoError(t, err)
		})
	}
}

func TestSubmitAnswer_Timeout(t *testing.T) {
	f := newFixture(t)
	f.gateway.delay = time.Second
	f.svc = NewService(Deps{Repo: f.repo, Gateway: f.gateway, Classifier: f.classifier}, Config{UpstreamTimeout: 20 * time.Millisecond})
	ctx := context.Background()
	sess, _ := f.svc.Start(ctx, owner, "SRE", "")
	_, err := f.svc.NextQuestion(ctx, sess.ID, owner)
	require.NoError(t, err)

	_, err = f.svc.SubmitAnswer(ctx, sess.ID, owner, "answer")
	assert.ErrorIs(t, err, ErrUpstream)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestEnd_AverageExcludesUnscored(t *testing.T) {
	f := newFixture(t)
	f.gateway.evals = []interview.Evaluation{eval(6), eval(7)}
	ctx := context.Background()
	sess, _ := f.svc.Start(ctx, owner, "SRE", "")

	for range 2 {
		_, err := f.svc.NextQuestion(ctx, sess.ID, owner)
		require.NoError(t, err)
		_, err = f.svc.SubmitAnswer(ctx, sess.ID, owner, "answer")
		require.NoError(t, err)
	}
	// A trailing unanswered question.
	_, err := f.svc.NextQuestion(ctx, sess.ID, owner)
	require.NoError(t, err)

	sum, err := f.svc.End(ctx, sess.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, 13.0, sum.TotalScore)
	assert.Equal(t, 6.5, sum.AverageScore)
	assert.Equal(t, classifyCall{6.5, 2}, f.classifier.calls[0])
	assertCountInvariant(t, f, sess.ID)
}

func TestEnd_Twice(t *testing.T) {
	f := newFixture(t)
	f.gateway.evals = []interview.Evaluation{eval(8)}
	ctx := context.Background()
	sess, _ := f.svc.Start(ctx, owner, "SRE", "")
	_, _ = f.svc.NextQuestion(ctx, sess.ID, owner)
	_, err := f.svc.SubmitAnswer(ctx, sess.ID, owner, "answer")
	require.NoError(t, err)

	first, err := f.svc.End(ctx, sess.ID, owner)
	require.NoError(t, err)
	before := f.stored(t, sess.ID)

	f.classifier.verdict = readiness.Verdict{Label: readiness.NotReady, Confidence: 1}
	_, err = f.svc.End(ctx, sess.ID, owner)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Len(t, f.classifier.calls, 1, "classifier is not called again")

	after := f.stored(t, sess.ID)
	assert.Equal(t, before.TotalScore, after.TotalScore)
	assert.Equal(t, before.AverageScore, after.AverageScore)
	assert.Equal(t, first.ReadinessLabel, after.ReadinessLabel)
	assert.Equal(t, *before.ConfidenceScore, *after.ConfidenceScore)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
}

func TestEnd_RequiresScoredAnswer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess, _ := f.svc.Start(ctx, owner, "SRE", "")

	_, err := f.svc.End(ctx, sess.ID, owner)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, _ = f.svc.NextQuestion(ctx, sess.ID, owner)
	_, err = f.svc.End(ctx, sess.ID, owner)
	assert.ErrorIs(t, err, ErrInvalidState, "asked but unanswered")
	assert.Empty(t, f.classifier.calls)
}

func TestEnd_ClassifierFailures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{"call failure", errors.New("exit status 1"), ErrUpstream},
		{"format failure", &readiness.FormatError{Raw: "??", Err: errors.New("expected 2 fields")}, ErrUpstreamFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			sess, _ := f.svc.Start(ctx, owner, "SRE", "")
			_, _ = f.svc.NextQuestion(ctx, sess.ID, owner)
			_, err := f.svc.SubmitAnswer(ctx, sess.ID, owner, "answer")
			require.NoError(t, err)

			f.classifier.err = tt.err
			_, err = f.svc.End(ctx, sess.ID, owner)
			assert.ErrorIs(t, err, tt.wantErr)

			stored := f.stored(t, sess.ID)
			assert.Equal(t, StatusOngoing, stored.Status)
			assert.Empty(t, stored.ReadinessLabel)
			assert.Nil(t, stored.ConfidenceScore)
		})
	}
}

func TestEnd_UsesCurrentDifficulty(t *testing.T) {
	f := newFixture(t)
	f.gateway.evals = []interview.Evaluation{eval(2)}
	ctx := context.Background()
	sess, _ := f.svc.Start(ctx, owner, "SRE", "medium")
	_, _ = f.svc.NextQuestion(ctx, sess.ID, owner)
	_, err := f.svc.SubmitAnswer(ctx, sess.ID, owner, "answer")
	require.NoError(t, err)

	_, err = f.svc.End(ctx, sess.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, classifyCall{2, 1}, f.classifier.calls[0])
}

func TestCompletedSessionRejectsOperations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess, _ := f.svc.Start(ctx, owner, "SRE", "")
	_, _ = f.svc.NextQuestion(ctx, sess.ID, owner)
	_, _ = f.svc.SubmitAnswer(ctx, sess.ID, owner, "answer")
	_, err := f.svc.End(ctx, sess.ID, owner)
	require.NoError(t, err)

	_, err = f.svc.NextQuestion(ctx, sess.ID, owner)
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = f.svc.SubmitAnswer(ctx, sess.ID, owner, "answer")
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, 1, f.gateway.askCount())
}

func TestStorageFailure(t *testing.T) {
	f := newFixture(t)
	repo := &failingRepo{SessionRepo: f.repo}
	f.svc = NewService(Deps{Repo: repo, Gateway: f.gateway, Classifier: f.classifier, Logger: zaptest.NewLogger(t)}, DefaultConfig())
	ctx := context.Background()
	sess, err := f.svc.Start(ctx, owner, "SRE", "")
	require.NoError(t, err)

	repo.failUpdate = true
	_, err = f.svc.NextQuestion(ctx, sess.ID, owner)
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, errDiskFull)
}

func TestConcurrentSubmitAnswer(t *testing.T) {
	f := newFixture(t)
	f.gateway.delay = 30 * time.Millisecond
	ctx := context.Background()
	sess, _ := f.svc.Start(ctx, owner, "SRE", "")
	_, err := f.svc.NextQuestion(ctx, sess.ID, owner)
	require.NoError(t, err)

	errs := submitConcurrently(t, []*Service{f.svc, f.svc}, sess.ID)
	assertOneWinner(t, errs)
	assert.Equal(t, 1, f.gateway.scoreCount())
	assertCountInvariant(t, f, sess.ID)
}

func TestConcurrentSubmitAnswer_AcrossInstances(t *testing.T) {
	f := newFixture(t)
	f.gateway.delay = 30 * time.Millisecond

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	newInstance := func() *Service {
		return NewService(Deps{
			Repo:       f.repo,
			Gateway:    f.gateway,
			Classifier: f.classifier,
			Locker:     lock.NewRedisLocker(rdb, lock.RedisOptions{Poll: time.Millisecond}, nil),
		}, DefaultConfig())
	}
	a, b := newInstance(), newInstance()

	ctx := context.Background()
	sess, _ := a.Start(ctx, owner, "SRE", "")
	_, err = a.NextQuestion(ctx, sess.ID, owner)
	require.NoError(t, err)

	errs := submitConcurrently(t, []*Service{a, b}, sess.ID)
	assertOneWinner(t, errs)
	assert.Equal(t, 1, f.gateway.scoreCount())
}

func TestDifferentSessionsDoNotBlock(t *testing.T) {
	f := newFixture(t)
	f.gateway.delay = 100 * time.Millisecond
	ctx := context.Background()

	var ids []string
	for range 4 {
		sess, _ := f.svc.Start(ctx, owner, "SRE", "")
		_, err := f.svc.NextQuestion(ctx, sess.ID, owner)
		require.NoError(t, err)
		ids = append(ids, sess.ID)
	}

	start := time.Now()
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.SubmitAnswer(ctx, id, owner, "answer")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Less(t, time.Since(start), 350*time.Millisecond, "sessions should be scored in parallel")
}

func submitConcurrently(t *testing.T, svcs []*Service, id string) []error {
	t.Helper()
	errs := make([]error, len(svcs))
	var wg sync.WaitGroup
	for i, svc := range svcs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.SubmitAnswer(context.Background(), id, owner, "concurrent answer")
		}()
	}
	wg.Wait()
	return errs
}

func assertOneWinner(t *testing.T, errs []error) {
	t.Helper()
	var ok, invalid int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrInvalidState):
			invalid++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, invalid)
}

func TestGetAndHistory(t *testing.T) {
	f := newFixture(t)
	f.gateway.evals = []interview.Evaluation{eval(8), eval(4)}
	ctx := context.Background()

	run := func(score float64) string {
		f.gateway.evals = []interview.Evaluation{eval(score)}
		sess, err := f.svc.Start(ctx, owner, "SRE", "")
		require.NoError(t, err)
		_, _ = f.svc.NextQuestion(ctx, sess.ID, owner)
		_, err = f.svc.SubmitAnswer(ctx, sess.ID, owner, "answer")
		require.NoError(t, err)
		_, err = f.svc.End(ctx, sess.ID, owner)
		require.NoError(t, err)
		return sess.ID
	}
	first := run(8)
	time.Sleep(5 * time.Millisecond)
	second := run(4)
	time.Sleep(5 * time.Millisecond)
	open, _ := f.svc.Start(ctx, owner, "SRE", "")
	_, _ = f.svc.Start(ctx, "someone-else", "SRE", "")

	got, err := f.svc.Get(ctx, first, owner)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	require.Len(t, got.Questions, 1)

	_, err = f.svc.Get(ctx, first, "someone-else")
	assert.ErrorIs(t, err, ErrAuthorization)

	h, err := f.svc.History(ctx, owner, 0)
	require.NoError(t, err)
	require.Len(t, h.Sessions, 3)
	assert.Equal(t, open.ID, h.Sessions[0].ID)
	assert.Equal(t, second, h.Sessions[1].ID)
	assert.Equal(t, 2, h.TotalInterviews)
	assert.Equal(t, 6.0, h.AveragePerformance)

	limited, err := f.svc.History(ctx, owner, 1)
	require.NoError(t, err)
	assert.Len(t, limited.Sessions, 1)
	assert.Equal(t, 2, limited.TotalInterviews)
}

func TestErrorKinds(t *testing.T) {
	cause := errors.New("boom")
	err := newError(ErrUpstream, "end", "", cause)

	assert.ErrorIs(t, err, ErrUpstream)
	assert.NotErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ErrUpstream, KindOf(err))
	assert.Nil(t, KindOf(cause))
	assert.Equal(t, "end: upstream call failed: boom", err.Error())
}
