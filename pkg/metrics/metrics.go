package metrics

import (
	"errors"
	"fmt"
	"strings"
)

var ErrLengthMismatch = errors.New("truth and predictions differ in length")

// Report is a confusion matrix of a binary classifier,
// counted against a designated positive label.
type Report struct {
	Positive string

	TruePositive  int
	TrueNegative  int
	FalsePositive int
	FalseNegative int
}

// BinaryReport counts the confusion matrix of predicted against truth.
//
// Labels other than positive are all treated as negative.
func BinaryReport(truth []string, predicted []string, positive string) (Report, error) {
	if len(truth) != len(predicted) {
		return Report{}, fmt.Errorf(
			"%w: truth = %d, predictions = %d",
			ErrLengthMismatch, len(truth), len(predicted),
		)
	}

	rep := Report{Positive: positive}
	for i, tr := range truth {
		actual := tr == positive
		guessed := predicted[i] == positive

		switch {
		case actual && guessed:
			rep.TruePositive += 1
		case actual && !guessed:
			rep.FalseNegative += 1
		case !actual && guessed:
			rep.FalsePositive += 1
		default:
			rep.TrueNegative += 1
		}
	}

	return rep, nil
}

func (r Report) Total() int {
	return r.TruePositive + r.TrueNegative + r.FalsePositive + r.FalseNegative
}

func (r Report) Accuracy() float64 {
	if r.Total() == 0 {
		return 0
	}
	return float64(r.TruePositive+r.TrueNegative) / float64(r.Total())
}

// Precision is TP / (TP + FP). When nothing is predicted positive, it is 0.
func (r Report) Precision() float64 {
	denom := r.TruePositive + r.FalsePositive
	if denom == 0 {
		return 0
	}
	return float64(r.TruePositive) / float64(denom)
}

// Recall is TP / (TP + FN). When there are no actual positives, it is 0.
func (r Report) Recall() float64 {
	denom := r.TruePositive + r.FalseNegative
	if denom == 0 {
		return 0
	}
	return float64(r.TruePositive) / float64(denom)
}

// F1 is the harmonic mean of Precision and Recall.
func (r Report) F1() float64 {
	p, rc := r.Precision(), r.Recall()
	if p+rc == 0 {
		return 0
	}
	return 2 * p * rc / (p + rc)
}

func (r Report) Equal(o Report) bool {
	return r == o
}

func (r Report) String() string {
	lines := []string{
		fmt.Sprintf("positive label: %s", r.Positive),
		fmt.Sprintf(
			"confusion matrix: TP = %d, FP = %d, TN = %d, FN = %d",
			r.TruePositive, r.FalsePositive, r.TrueNegative, r.FalseNegative,
		),
		fmt.Sprintf("accuracy : %.4f", r.Accuracy()),
		fmt.Sprintf("precision: %.4f", r.Precision()),
		fmt.Sprintf("recall   : %.4f", r.Recall()),
		fmt.Sprintf("F1       : %.4f", r.F1()),
	}
	return strings.Join(lines, "\n")
}
