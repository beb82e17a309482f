package session

import (
	"context"
	"strings"
)

// History is a caller's sessions, newest first, with aggregate stats over
// the completed ones.
type History struct {
	Sessions           []*Session `json:"sessions"`
	TotalInterviews    int        `json:"totalInterviews"`
	AveragePerformance float64    `json:"averagePerformance"`
}

// History lists callerID's sessions. limit <= 0 returns all of them; the
// aggregate stats always cover every session.
func (s *Service) History(ctx context.Context, callerID string, limit int) (*History, error) {
	const op = "history"

	if strings.TrimSpace(callerID) == "" {
		return nil, newError(ErrValidation, op, "caller is required", nil)
	}
	recs, err := s.repo.ListByOwner(ctx, callerID, 0)
	if err != nil {
		return nil, newError(ErrStorage, op, "list sessions", err)
	}

	h := &History{Sessions: make([]*Session, 0, len(recs))}
	var sum float64
	for i, rec := range recs {
		sess := fromRecord(rec)
		if limit <= 0 || i < limit {
			h.Sessions = append(h.Sessions, sess)
		}
		if sess.Status == StatusCompleted {
			h.TotalInterviews++
			sum += sess.AverageScore
		}
	}
	if h.TotalInterviews > 0 {
		h.AveragePerformance = sum / float64(h.TotalInterviews)
	}
	return h, nil
}
