package provider

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newLocalFixture(t *testing.T, files map[string]string) *LocalProvider {
	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
	return NewLocalProvider(fs, "/resources", nil, zap.NewNop())
}

func TestLocalProviderLoad(t *testing.T) {
	t.Run("Reads packaged resource", func(t *testing.T) {
		p := newLocalFixture(t, map[string]string{
			"/resources/sprites/enemy.json": `{"hp": 10}`,
		})

		v, err := p.Load(context.Background(), "sprites/enemy.json")
		require.NoError(t, err)

		blob, ok := v.(*Blob)
		require.True(t, ok)
		assert.Equal(t, "sprites/enemy.json", blob.Key)
		assert.Equal(t, `{"hp": 10}`, string(blob.Data))
		assert.Contains(t, blob.ContentType, "application/json")
	})

	t.Run("Missing file", func(t *testing.T) {
		p := newLocalFixture(t, nil)

		_, err := p.Load(context.Background(), "sprites/ghost.json")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Path escape rejected", func(t *testing.T) {
		p := newLocalFixture(t, map[string]string{
			"/secret.txt": "nope",
		})

		_, err := p.Load(context.Background(), "../secret.txt")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Custom materializer", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/resources/greeting.txt", []byte("hello"), 0o644))

		mat := MaterializeFunc(func(key string, data []byte, _ string) (any, error) {
			return string(data), nil
		})
		p := NewLocalProvider(fs, "/resources", mat, zap.NewNop())

		v, err := p.Load(context.Background(), "greeting.txt")
		require.NoError(t, err)
		assert.Equal(t, "hello", v)
	})
}
