package reaction

import (
	"context"
	"time"

	"anoa.com/portalnoticias/internal/identity"
	"anoa.com/portalnoticias/internal/model"
)

// onIdentity reacts to identity transitions. Absence of identity is
// definitive: mine resets to empty and is immediately loaded, with no network
// call. Becoming authenticated starts the retrying loader, but only while
// mine is still unresolved — the token or profile may not be settled yet the
// first time the flag flips, which is exactly what the retries absorb.
func (e *Engine) onIdentity(s identity.Snapshot) {
	if !s.Authenticated {
		e.mu.Lock()
		e.mine = model.MinhaReacao{}
		e.mineLoaded = true
		e.mu.Unlock()
		return
	}

	e.mu.Lock()
	loaded := e.mineLoaded
	e.mu.Unlock()
	if loaded {
		return
	}
	go e.loadMineWithRetry()
}

// loadMineWithRetry resolves mine with linear backoff (attempt × base).
// After the final attempt, loaded is marked unconditionally: toggling must
// not stay blocked forever behind a persistently failing read.
func (e *Engine) loadMineWithRetry() {
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		if e.closed() || e.isMineLoaded() {
			return
		}

		mine, err := e.api.Mine(context.Background())
		if err == nil {
			e.setMine(mine)
			return
		}

		if attempt == e.maxAttempts {
			e.setMine(model.MinhaReacao{})
			return
		}

		select {
		case <-e.done:
			return
		case <-time.After(time.Duration(attempt) * e.retryBase):
		}
	}
}

// loadMineOnce is the post-mutation re-sync: one authoritative fetch, no
// retries. An error resolves to "no reaction" but still counts as loaded.
func (e *Engine) loadMineOnce(ctx context.Context) {
	mine, err := e.api.Mine(ctx)
	if err != nil {
		mine = model.MinhaReacao{}
	}
	e.setMine(mine)
}

// setMine writes the resolved state unless the engine was torn down in the
// meantime; a stale retry never writes into a closed engine.
func (e *Engine) setMine(mine model.MinhaReacao) {
	if e.closed() {
		return
	}
	e.mu.Lock()
	e.mine = mine
	e.mineLoaded = true
	e.mu.Unlock()
}

func (e *Engine) isMineLoaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mineLoaded
}
