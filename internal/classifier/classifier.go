package classifier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
)

var (
	ErrNoLabels        = errors.New("label table is empty")
	ErrLabelMismatch   = errors.New("prediction length does not match label table")
	ErrEmptyPrediction = errors.New("model returned an empty prediction")
)

// Predictor runs one forward pass of the pretrained model and returns
// one probability per class.
type Predictor interface {
	Predict(ctx context.Context, input *Tensor) ([]float32, error)
}

// classCounter is implemented by predictors that know their output size.
type classCounter interface {
	NumClasses() int
}

type ClassScore struct {
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
}

type Result struct {
	Prediction     string       `json:"prediction"`
	Confidence     string       `json:"confidence"`
	AllPredictions []ClassScore `json:"all_predictions"`

	// Score is the raw probability of the predicted class.
	Score float32 `json:"-"`
}

// Classifier pairs a model with the label table used to read its output.
// It holds no mutable state and is safe to share between requests.
type Classifier struct {
	predictor Predictor
	labels    Labels
}

func New(predictor Predictor, labels Labels) (*Classifier, error) {
	if predictor == nil {
		return nil, errors.New("predictor is required")
	}
	if len(labels) == 0 {
		return nil, ErrNoLabels
	}
	if cc, ok := predictor.(classCounter); ok {
		if n := cc.NumClasses(); n > 0 && n != len(labels) {
			return nil, fmt.Errorf("%w: model has %d classes, table has %d", ErrLabelMismatch, n, len(labels))
		}
	}

	return &Classifier{
		predictor: predictor,
		labels:    append(Labels(nil), labels...),
	}, nil
}

// Labels returns a copy of the label table.
func (c *Classifier) Labels() Labels {
	return append(Labels(nil), c.labels...)
}

// Classify decodes and classifies an in-memory image.
func (c *Classifier) Classify(ctx context.Context, r io.Reader) (*Result, error) {
	input, err := Preprocess(r)
	if err != nil {
		return nil, err
	}
	return c.ClassifyTensor(ctx, input)
}

// ClassifyFile decodes and classifies an image stored at path.
func (c *Classifier) ClassifyFile(ctx context.Context, path string) (*Result, error) {
	input, err := PreprocessFile(path)
	if err != nil {
		return nil, err
	}
	return c.ClassifyTensor(ctx, input)
}

func (c *Classifier) ClassifyTensor(ctx context.Context, input *Tensor) (*Result, error) {
	scores, err := c.predictor.Predict(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	return Rank(scores, c.labels)
}

// Rank picks the arg-max class and lists every class with its
// confidence in percent, highest first. Ties keep label order.
func Rank(scores []float32, labels Labels) (*Result, error) {
	if len(scores) == 0 {
		return nil, ErrEmptyPrediction
	}
	if len(scores) != len(labels) {
		return nil, fmt.Errorf("%w: got %d scores for %d labels", ErrLabelMismatch, len(scores), len(labels))
	}

	best := 0
	for i, s := range scores {
		if s > scores[best] {
			best = i
		}
	}

	all := make([]ClassScore, len(scores))
	for i, s := range scores {
		all[i] = ClassScore{Class: labels[i], Confidence: float64(s) * 100}
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Confidence > all[j].Confidence
	})

	return &Result{
		Prediction:     labels[best],
		Confidence:     fmt.Sprintf("%.2f%%", float64(scores[best])*100),
		AllPredictions: all,
		Score:          scores[best],
	}, nil
}
