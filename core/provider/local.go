package provider

import (
	"context"
	"fmt"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// LocalProvider resolves keys against resources packaged alongside the
// application. It is the synchronous fallback at the end of the provider
// chain.
type LocalProvider struct {
	fs     afero.Fs
	root   string
	mat    Materializer
	logger *zap.Logger
}

// NewLocalProvider creates a fallback provider rooted at dir on fs. Tests pass
// an in-memory filesystem; production passes afero.NewOsFs(). A nil mat
// defaults to BlobMaterializer.
func NewLocalProvider(fs afero.Fs, dir string, mat Materializer, logger *zap.Logger) *LocalProvider {
	if mat == nil {
		mat = BlobMaterializer{}
	}
	return &LocalProvider{fs: fs, root: dir, mat: mat, logger: logger}
}

// Name returns the name of the provider.
func (p *LocalProvider) Name() string {
	return "local"
}

// Load reads the asset for key from the local resource tree.
func (p *LocalProvider) Load(ctx context.Context, key string) (any, error) {
	// Keys are slash paths; never let one climb out of the root.
	clean := path.Clean("/" + key)
	if strings.Contains(key, "..") {
		return nil, notFound(p.Name(), key)
	}
	full := filepath.Join(p.root, filepath.FromSlash(clean))

	exists, err := afero.Exists(p.fs, full)
	if err != nil || !exists {
		return nil, notFound(p.Name(), key)
	}

	data, err := afero.ReadFile(p.fs, full)
	if err != nil {
		return nil, fmt.Errorf("local read %q: %w", key, err)
	}

	contentType := mime.TypeByExtension(path.Ext(clean))
	obj, err := p.mat.Materialize(key, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("materialize %q: %w", key, err)
	}
	return obj, nil
}
