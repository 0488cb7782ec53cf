package reaction

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"anoa.com/portalnoticias/internal/identity"
	"anoa.com/portalnoticias/internal/model"
	"anoa.com/portalnoticias/pkg/avisos"
)

// API is the slice of the facade one subject's engine consumes. Adapters for
// article and comment subjects live in subject.go.
type API interface {
	Counts(ctx context.Context) (map[model.TipoReacao]int64, error)
	Mine(ctx context.Context) (model.MinhaReacao, error)
	Create(ctx context.Context, tipo model.TipoReacao) error
	Delete(ctx context.Context) error
	DeleteByID(ctx context.Context, id int64) error
}

// Engine owns {aggregate, mine} for exactly one subject and serializes
// user-intent toggles against the network. One instance per mounted subject;
// no state survives Close.
//
// Failures never escape: read failures keep the previous state and are
// logged, write failures become advisories on the notifier.
type Engine struct {
	api      API
	ident    identity.Watcher
	notifier avisos.Notifier
	kinds    []model.TipoReacao

	retryBase   time.Duration
	maxAttempts int

	// inFlight is the synchronous latch: set before any suspension point,
	// released in a defer. A burst of triggers mutates at most once; the
	// extras are dropped, not queued.
	inFlight atomic.Bool

	mu         sync.Mutex
	aggregate  map[model.TipoReacao]int64
	mine       model.MinhaReacao
	mineLoaded bool

	done        chan struct{}
	closeOnce   sync.Once
	unsubscribe func()
}

type Option func(*Engine)

// WithRetry overrides the my-reaction loader's backoff base and total
// attempt budget.
func WithRetry(base time.Duration, attempts int) Option {
	return func(e *Engine) {
		if base > 0 {
			e.retryBase = base
		}
		if attempts > 0 {
			e.maxAttempts = attempts
		}
	}
}

func New(subjectAPI API, ident identity.Watcher, notifier avisos.Notifier, kinds []model.TipoReacao, opts ...Option) *Engine {
	e := &Engine{
		api:         subjectAPI,
		ident:       ident,
		notifier:    notifier,
		kinds:       kinds,
		retryBase:   300 * time.Millisecond,
		maxAttempts: 3,
		aggregate:   zeroAggregate(kinds),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.unsubscribe = ident.Subscribe(e.onIdentity)
	e.onIdentity(ident.Snapshot())
	return e
}

// LoadAggregate fetches the authoritative counts and normalizes sparse
// responses so that every kind of the subject's enumeration is present.
// On failure the previous aggregate stays in place; counts are read-only.
func (e *Engine) LoadAggregate(ctx context.Context) {
	counts, err := e.api.Counts(ctx)
	if err != nil {
		log.Printf("failed to load reaction counts: %v", err)
		return
	}

	normalized := zeroAggregate(e.kinds)
	for _, kind := range e.kinds {
		if value, ok := counts[kind]; ok && value > 0 {
			normalized[kind] = value
		}
	}

	if e.closed() {
		return
	}
	e.mu.Lock()
	e.aggregate = normalized
	e.mu.Unlock()
}

// Toggle applies one user intent: re-selecting the active kind removes the
// reaction, anything else creates/replaces it. The server is authoritative;
// after the mutation both aggregate and mine are re-fetched, never predicted.
func (e *Engine) Toggle(ctx context.Context, tipo model.TipoReacao) {
	if !containsKind(e.kinds, tipo) {
		log.Printf("ignoring unknown reaction kind %q", tipo)
		return
	}

	if !e.ident.Snapshot().Authenticated {
		e.notifier.Aviso("Faça login para reagir", "Você precisa estar logado para reagir.")
		return
	}

	e.mu.Lock()
	loaded := e.mineLoaded
	mine := e.mine
	e.mu.Unlock()

	if !loaded {
		e.notifier.Aviso("Aguardando estado",
			"Aguardando verificação da sua reação. Tente novamente em alguns instantes.")
		return
	}

	if !e.inFlight.CompareAndSwap(false, true) {
		return
	}
	defer e.inFlight.Store(false)

	var err error
	if mine.Tipo != nil && *mine.Tipo == tipo {
		// Removal: prefer deletion by id when known.
		if mine.ID != nil {
			err = e.api.DeleteByID(ctx, *mine.ID)
		} else {
			err = e.api.Delete(ctx)
		}
	} else {
		// Create or switch; the server replaces any prior reaction for
		// this (subject, user) pair.
		err = e.api.Create(ctx, tipo)
	}
	if err != nil {
		e.notifier.Erro("Erro ao reagir", "Não foi possível registrar sua reação. Tente novamente.")
		return
	}

	e.LoadAggregate(ctx)
	if e.ident.Snapshot().Authenticated {
		e.loadMineOnce(ctx)
	}
}

// Aggregate returns a copy of the current counts.
func (e *Engine) Aggregate() map[model.TipoReacao]int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[model.TipoReacao]int64, len(e.aggregate))
	for kind, count := range e.aggregate {
		out[kind] = count
	}
	return out
}

// Mine returns the current user's reaction and whether it has been resolved
// at all. Mutating actions are refused until loaded is true.
func (e *Engine) Mine() (mine model.MinhaReacao, loaded bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mine, e.mineLoaded
}

func (e *Engine) Kinds() []model.TipoReacao {
	out := make([]model.TipoReacao, len(e.kinds))
	copy(out, e.kinds)
	return out
}

// Close detaches the engine from the identity context and stops any pending
// retry. Late results are discarded, never written.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		close(e.done)
		if e.unsubscribe != nil {
			e.unsubscribe()
		}
	})
}

func (e *Engine) closed() bool {
	select {
	case <-e.done:
		return true
	default:
		return false
	}
}

func zeroAggregate(kinds []model.TipoReacao) map[model.TipoReacao]int64 {
	aggregate := make(map[model.TipoReacao]int64, len(kinds))
	for _, kind := range kinds {
		aggregate[kind] = 0
	}
	return aggregate
}

func containsKind(kinds []model.TipoReacao, tipo model.TipoReacao) bool {
	for _, kind := range kinds {
		if kind == tipo {
			return true
		}
	}
	return false
}
