package plugins

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTransformer applies a plain function as a pipeline stage.
type stubTransformer struct {
	name  string
	apply func(string) (string, error)
}

func (s *stubTransformer) Name() string { return s.name }

func (s *stubTransformer) Apply(_ context.Context, text string) (string, error) {
	return s.apply(text)
}

func TestPipelineEmpty(t *testing.T) {
	t.Parallel()

	out, err := NewPipeline().Run(context.Background(), "Hello world")
	require.NoError(t, err)
	assert.Equal(t, "Hello world", out)
}

func TestPipelineAppliesStagesInOrder(t *testing.T) {
	t.Parallel()

	upper := &stubTransformer{name: "upper", apply: func(s string) (string, error) {
		return strings.ToUpper(s), nil
	}}
	world := &stubTransformer{name: "world", apply: func(s string) (string, error) {
		return s + " world", nil
	}}

	out, err := NewPipeline(upper, world).Run(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "HELLO world", out)

	// Composition equals applying the stages by hand in order.
	out, err = NewPipeline(world, upper).Run(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "HELLO WORLD", out)
}

func TestPipelineShortCircuitsOnError(t *testing.T) {
	t.Parallel()

	stageErr := errors.New("stage failed")
	calls := 0

	failing := &stubTransformer{name: "failing", apply: func(string) (string, error) {
		return "", stageErr
	}}
	never := &stubTransformer{name: "never", apply: func(s string) (string, error) {
		calls++

		return s, nil
	}}

	_, err := NewPipeline(failing, never).Run(context.Background(), "hello")
	require.ErrorIs(t, err, stageErr)
	assert.Zero(t, calls)
}

func TestPipelineIdentityIdempotent(t *testing.T) {
	t.Parallel()

	identity := &stubTransformer{name: "identity", apply: func(s string) (string, error) {
		return s, nil
	}}

	for n := range 4 {
		stages := make([]Transformer, n)
		for i := range stages {
			stages[i] = identity
		}

		out, err := NewPipeline(stages...).Run(context.Background(), "déjà vu")
		require.NoError(t, err)
		assert.Equal(t, "déjà vu", out)
	}
}

func TestLoadPipelineUnresolvableSpecifier(t *testing.T) {
	t.Parallel()

	_, err := LoadPipeline(context.Background(), []string{"nonexistent"}, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not find plugin nonexistent")
}

func TestLoadPipelineRejectsInvalidBytecode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir+"/garbage.wasm", []byte("not wasm at all"))

	_, err := LoadPipeline(context.Background(), []string{"garbage"}, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to compile plugin garbage")
}
