package lexicon

import (
	"context"
	"sync/atomic"

	"github.com/hyperjump/rentassist/internal/watcher"
	"github.com/hyperjump/rentassist/pkg/utils"
	"go.uber.org/zap"
)

// Provider serves the current lexicon and swaps it atomically on reload.
type Provider struct {
	path    string
	current atomic.Pointer[Lexicon]
	logger  *zap.Logger
}

// NewProvider loads tables from path, or the built-in tables when path is empty.
func NewProvider(path string, logger *zap.Logger) (*Provider, error) {
	p := &Provider{path: path, logger: utils.OrNop(logger)}
	if path == "" {
		p.current.Store(Default())
		return p, nil
	}
	lx, err := Load(path)
	if err != nil {
		return nil, err
	}
	p.current.Store(lx)
	return p, nil
}

// Static wraps a fixed lexicon.
func Static(lx *Lexicon) *Provider {
	p := &Provider{logger: zap.NewNop()}
	p.current.Store(lx)
	return p
}

// Current returns the lexicon in effect.
func (p *Provider) Current() *Lexicon {
	return p.current.Load()
}

// Reload re-reads the tables file. On error the previous tables stay in effect.
func (p *Provider) Reload() error {
	if p.path == "" {
		return nil
	}
	lx, err := Load(p.path)
	if err != nil {
		p.logger.Warn("lexicon reload failed, keeping previous tables", zap.String("path", p.path), zap.Error(err))
		return err
	}
	p.current.Store(lx)
	p.logger.Info("lexicon reloaded", zap.String("path", p.path), zap.Int("version", lx.Version()))
	return nil
}

// Watch reloads the tables whenever the file changes, until ctx is done.
// It returns nil when the provider has no backing file.
func (p *Provider) Watch(ctx context.Context, opts ...watcher.Option) (*watcher.Watcher, error) {
	if p.path == "" {
		return nil, nil
	}
	opts = append([]watcher.Option{watcher.WithLogger(p.logger)}, opts...)
	w := watcher.New([]string{p.path}, nil, func(string) { _ = p.Reload() }, opts...)
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return w, nil
}
