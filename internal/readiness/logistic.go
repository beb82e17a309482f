package readiness

import (
	"context"
	"math"
)

// Sample is one labelled training example.
type Sample struct {
	AvgScore   float64
	Difficulty int
	Ready      bool
}

// ReferenceSamples is the dataset the readiness model is trained on.
var ReferenceSamples = []Sample{
	{3.0, 1, false}, {4.5, 1, false}, {5.0, 2, false}, {6.0, 2, true}, {6.5, 2, true},
	{7.0, 2, true}, {7.5, 3, true}, {8.0, 3, true}, {8.5, 3, true}, {9.0, 3, true},
	{4.0, 1, false}, {5.5, 2, false}, {6.8, 2, true}, {7.2, 3, true}, {9.5, 3, true},
}

const (
	trainIterations = 20000
	learningRate    = 0.05
	// l2 is the inverse of the regularization strength C=1.
	l2 = 1.0
)

// LogisticClassifier is an L2-regularized logistic regression over
// standardized (avgScore, difficulty) features.
type LogisticClassifier struct {
	mean, std [2]float64
	weights   [2]float64
	bias      float64
}

// NewLogisticClassifier trains a model on ReferenceSamples.
func NewLogisticClassifier() *LogisticClassifier {
	return Train(ReferenceSamples)
}

// Train fits a model by batch gradient descent on the penalized log loss.
func Train(samples []Sample) *LogisticClassifier {
	m := &LogisticClassifier{}
	n := float64(len(samples))
	if n == 0 {
		m.std = [2]float64{1, 1}
		return m
	}

	for _, s := range samples {
		m.mean[0] += s.AvgScore
		m.mean[1] += float64(s.Difficulty)
	}
	m.mean[0] /= n
	m.mean[1] /= n
	for _, s := range samples {
		d0 := s.AvgScore - m.mean[0]
		d1 := float64(s.Difficulty) - m.mean[1]
		m.std[0] += d0 * d0
		m.std[1] += d1 * d1
	}
	for i := range m.std {
		m.std[i] = math.Sqrt(m.std[i] / n)
		if m.std[i] == 0 {
			m.std[i] = 1
		}
	}

	xs := make([][2]float64, len(samples))
	for i, s := range samples {
		xs[i] = m.scale(s.AvgScore, s.Difficulty)
	}

	for range trainIterations {
		g := [2]float64{l2 * m.weights[0], l2 * m.weights[1]}
		var gb float64
		for i, s := range samples {
			y := 0.0
			if s.Ready {
				y = 1
			}
			diff := m.prob(xs[i]) - y
			g[0] += diff * xs[i][0]
			g[1] += diff * xs[i][1]
			gb += diff
		}
		m.weights[0] -= learningRate * g[0]
		m.weights[1] -= learningRate * g[1]
		m.bias -= learningRate * gb
	}
	return m
}

// Probability returns P(READY) for the given features.
func (m *LogisticClassifier) Probability(avgScore float64, difficultyOrdinal int) float64 {
	return m.prob(m.scale(avgScore, difficultyOrdinal))
}

// Classify labels the session READY when P(READY) >= 0.5 and reports
// P(READY) as a percentage rounded to two decimals.
func (m *LogisticClassifier) Classify(_ context.Context, avgScore float64, difficultyOrdinal int) (Verdict, error) {
	p := m.Probability(avgScore, difficultyOrdinal)
	v := Verdict{Label: NotReady, Confidence: math.Round(p*100*100) / 100}
	if p >= 0.5 {
		v.Label = Ready
	}
	return v, nil
}

func (m *LogisticClassifier) scale(avg float64, ord int) [2]float64 {
	return [2]float64{
		(avg - m.mean[0]) / m.std[0],
		(float64(ord) - m.mean[1]) / m.std[1],
	}
}

func (m *LogisticClassifier) prob(x [2]float64) float64 {
	z := m.bias + m.weights[0]*x[0] + m.weights[1]*x[1]
	return 1 / (1 + math.Exp(-z))
}
