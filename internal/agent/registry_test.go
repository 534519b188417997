package agent_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/honeypot/internal/agent"
)

func stubFactory(reply string) agent.BackendFactory {
	return func(agent.BackendOptions) (agent.Generator, error) {
		return agent.GeneratorFunc(func(context.Context, agent.Prompt) (string, error) {
			return reply, nil
		}), nil
	}
}

func TestRegistry_RegisterAndCreate(t *testing.T) {
	t.Parallel()

	t.Run("happy path", func(t *testing.T) {
		t.Parallel()

		reg := agent.NewRegistry()
		reg.Register("canned", stubFactory("hello"))

		gen, err := reg.Create("canned", agent.BackendOptions{})

		require.NoError(t, err)
		out, err := gen.Generate(context.Background(), agent.Prompt{})
		require.NoError(t, err)
		assert.Equal(t, "hello", out)
	})

	t.Run("names are case-insensitive", func(t *testing.T) {
		t.Parallel()

		reg := agent.NewRegistry()
		reg.Register("Gemini", stubFactory("hi"))

		_, err := reg.Create("GEMINI", agent.BackendOptions{})

		require.NoError(t, err)
		assert.Equal(t, []string{"gemini"}, reg.Available())
	})

	t.Run("unknown backend returns ErrUnknownBackend", func(t *testing.T) {
		t.Parallel()

		reg := agent.NewRegistry()

		gen, err := reg.Create("nonexistent", agent.BackendOptions{})

		require.Error(t, err)
		assert.Nil(t, gen)
		assert.ErrorIs(t, err, agent.ErrUnknownBackend)
	})

	t.Run("factory error propagated", func(t *testing.T) {
		t.Parallel()

		reg := agent.NewRegistry()
		reg.Register("broken", func(agent.BackendOptions) (agent.Generator, error) {
			return nil, errors.New("factory boom")
		})

		gen, err := reg.Create("broken", agent.BackendOptions{})

		require.Error(t, err)
		assert.Nil(t, gen)
		assert.Contains(t, err.Error(), "factory boom")
	})

	t.Run("Available returns sorted names", func(t *testing.T) {
		t.Parallel()

		reg := agent.NewRegistry()
		reg.Register("ollama", stubFactory(""))
		reg.Register("canned", stubFactory(""))
		reg.Register("gemini", stubFactory(""))

		assert.Equal(t, []string{"canned", "gemini", "ollama"}, reg.Available())
	})
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	reg := agent.NewRegistry()
	reg.Register("canned", stubFactory("hi"))

	var wg sync.WaitGroup

	for range 10 {
		wg.Go(func() {
			reg.Register("backend-"+uuid.New().String()[:8], stubFactory("x"))
		})
	}

	for range 10 {
		wg.Go(func() {
			gen, err := reg.Create("canned", agent.BackendOptions{})
			assert.NoError(t, err)
			assert.NotNil(t, gen)
		})
	}

	for range 5 {
		wg.Go(func() {
			_ = reg.Available()
		})
	}

	wg.Wait()

	assert.Len(t, reg.Available(), 11)
}
