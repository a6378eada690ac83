package plugins

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
)

// Transformer is one stage of a pipeline. Instance implements it; tests may
// substitute their own.
type Transformer interface {
	Name() string
	Apply(ctx context.Context, text string) (string, error)
}

// Pipeline is an ordered, possibly empty sequence of transformers folded over
// an input text.
type Pipeline struct {
	stages []Transformer
}

// NewPipeline builds a pipeline from the given stages, applied left to right.
func NewPipeline(stages ...Transformer) *Pipeline {
	return &Pipeline{stages: stages}
}

// LoadPipeline resolves and instantiates one plugin per specifier, in order.
// If any plugin fails to load, instances constructed so far are torn down
// before the error is returned.
func LoadPipeline(ctx context.Context, specifiers []string, pluginDir string) (*Pipeline, error) {
	stages := make([]Transformer, 0, len(specifiers))

	for _, specifier := range specifiers {
		inst, err := NewInstance(ctx, specifier, pluginDir)
		if err != nil {
			for _, stage := range stages {
				if closer, ok := stage.(*Instance); ok {
					_ = closer.Close(ctx)
				}
			}

			return nil, err
		}

		stages = append(stages, inst)
	}

	return NewPipeline(stages...), nil
}

// Run threads input through every stage in order. The first failing stage
// aborts the fold and its error is surfaced unchanged.
func (p *Pipeline) Run(ctx context.Context, input string) (string, error) {
	text := input

	for _, stage := range p.stages {
		out, err := stage.Apply(ctx, text)
		if err != nil {
			log.Debug().
				Str("event", "pipeline_abort").
				Str("plugin", stage.Name()).
				Err(err).
				Msg("pipeline stage failed")

			return "", err
		}

		text = out
	}

	return text, nil
}

// Close tears down every stage that owns resources.
func (p *Pipeline) Close(ctx context.Context) error {
	var errs []error

	for _, stage := range p.stages {
		if closer, ok := stage.(*Instance); ok {
			if err := closer.Close(ctx); err != nil {
				errs = append(errs, err)
			}
		}
	}

	return errors.Join(errs...)
}
