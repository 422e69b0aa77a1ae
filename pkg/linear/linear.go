// Package linear evaluates the flat linear-feature policy and value models
// the search core consumes at expansion time: a trained weight vector dotted
// against a feature vector extracted by an external collaborator (a
// position.Position implementation), never a neural network.
package linear

import (
	"github.com/chewxy/math32"
	"gorgonia.org/vecf32"
)

// ValueModel scores a position's value features against a trained weight
// vector and returns a win probability in [0, 1].
type ValueModel struct {
	Weights []float32
	Bias    float32
}

// Eval computes sigmoid(w . features + bias), then rescales it through
// CpToWinPercentage so the result behaves like a centipawn-derived win rate
// rather than a raw logistic output.
func (m ValueModel) Eval(features []float32) float32 {
	logit := dot(m.Weights, features) + m.Bias
	return CpToWinPercentage(sigmoid(logit))
}

// CpToWinPercentage rescales an already-sigmoid-shaped score toward the
// extremes, centred on 0.5: with c = 2p-1 it maps c to c/(1-0.15|c|),
// shifts the result back to [0, 1] and clamps it there.
func CpToWinPercentage(p float32) float32 {
	if p <= 0 {
		return 0
	}
	if p >= 1 {
		return 1
	}
	centered := 2*p - 1
	stretched := centered / (1 - math32.Abs(centered)*0.15)
	return clamp01((stretched + 1) / 2)
}

// PolicyModel scores move features against a trained weight vector to
// produce one softmax logit per legal move.
type PolicyModel struct {
	Weights []float32
	Bias    float32
}

// Logit computes w . features + bias for one move's feature vector.
func (m PolicyModel) Logit(features []float32) float32 {
	return dot(m.Weights, features) + m.Bias
}

// Softmax normalises a slice of logits into priors summing to 1, using
// the standard subtract-max-then-exponentiate trick for numerical
// stability, so the result stays well-normalised regardless of how
// large or small the raw logits are.
func Softmax(logits []float32) []float32 {
	out := make([]float32, len(logits))
	if len(logits) == 0 {
		return out
	}
	max := logits[0]
	for _, v := range logits[1:] {
		if v > max {
			max = v
		}
	}
	var sum float32
	for i, v := range logits {
		e := math32.Exp(v - max)
		out[i] = e
		sum += e
	}
	// The negated comparison also catches a NaN sum, which infinite
	// logits produce (e.g. -Inf - -Inf).
	if !(sum > math32.SmallestNonzeroFloat32) {
		uniform := 1 / float32(len(out))
		for i := range out {
			out[i] = uniform
		}
		return out
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func dot(w, x []float32) float32 {
	n := len(w)
	if len(x) < n {
		n = len(x)
	}
	if n == 0 {
		return 0
	}
	return vecf32.Dot(w[:n], x[:n])
}

func sigmoid(x float32) float32 {
	return 1 / (1 + math32.Exp(-x))
}

func clamp01(v float32) float32 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
