package resolver

import (
	"os"

	"asset-resolver/core/handle"

	"go.uber.org/zap"
)

// Reset unconditionally drops all cached state after an environment reload.
// Unlike ClearCache it never releases the retained handles: the environment
// that issued them is gone and touching their resources could fault. The
// handles are invalidated instead, so any copy still held by a caller fails
// softly on access. In-flight preloads see the generation bump and discard
// their results.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.generation++
	for _, h := range r.retained {
		h.Invalidate()
	}
	r.cached = make(map[string]any)
	r.retained = make(map[string]*handle.Handle)
	r.pending = make(map[string]*preloadTask)
}

// ListenReload registers the resolver on the host's reload notification
// channel and calls Reset once per signal. Exactly one listener is started
// per resolver; repeated calls are no-ops so the reset cannot run twice for
// one event.
func (r *Resolver) ListenReload(ch <-chan os.Signal) {
	r.reloadOnce.Do(func() {
		go func() {
			for sig := range ch {
				r.logger.Info("Reload signal received, dropping all cached assets",
					zap.String("signal", sig.String()))
				r.Reset()
			}
		}()
	})
}
