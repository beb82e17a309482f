package difficulty

// Thresholds are the score boundaries for adapting difficulty.
type Thresholds struct {
	// StepUp is the minimum score that moves one level harder.
	StepUp float64

	// StepDown is the maximum score that moves one level easier.
	StepDown float64
}

// DefaultThresholds returns the standard 8/4 boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{StepUp: 8, StepDown: 4}
}

// Controller computes the next difficulty from the score just submitted.
type Controller struct {
	t Thresholds
}

// NewController creates a Controller with the given thresholds.
func NewController(t Thresholds) *Controller {
	return &Controller{t: t}
}

// Next returns the level for the following question. It moves at most one
// level per call and never past EASY or HARD.
func (c *Controller) Next(current Level, latestScore float64) Level {
	switch {
	case latestScore >= c.t.StepUp && current != Hard:
		return current.up()
	case latestScore <= c.t.StepDown && current != Easy:
		return current.down()
	default:
		return current
	}
}

// Next applies the default thresholds.
func Next(current Level, latestScore float64) Level {
	return NewController(DefaultThresholds()).Next(current, latestScore)
}
