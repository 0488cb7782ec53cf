package reaction

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"anoa.com/portalnoticias/internal/identity"
	"anoa.com/portalnoticias/internal/model"
)

type fakeIdentity struct {
	mu   sync.Mutex
	snap identity.Snapshot
	subs []func(identity.Snapshot)
}

func (f *fakeIdentity) Snapshot() identity.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeIdentity) Subscribe(fn func(identity.Snapshot)) func() {
	f.mu.Lock()
	f.subs = append(f.subs, fn)
	f.mu.Unlock()
	return func() {}
}

func (f *fakeIdentity) set(snap identity.Snapshot) {
	f.mu.Lock()
	f.snap = snap
	fns := append([]func(identity.Snapshot){}, f.subs...)
	f.mu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

func loggedIn() *fakeIdentity {
	return &fakeIdentity{snap: identity.Snapshot{Authenticated: true, UserID: 7, Login: "ana"}}
}

type fakeNotifier struct {
	mu     sync.Mutex
	avisos []string
	erros  []string
}

func (f *fakeNotifier) Aviso(titulo, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.avisos = append(f.avisos, titulo)
}

func (f *fakeNotifier) Erro(titulo, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.erros = append(f.erros, titulo)
}

func (f *fakeNotifier) lastAviso() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.avisos) == 0 {
		return ""
	}
	return f.avisos[len(f.avisos)-1]
}

type fakeAPI struct {
	mu          sync.Mutex
	counts       map[model.TipoReacao]int64
	countsErr    error
	mine         model.MinhaReacao
	mineErr      error
	mineFailures int // fail the first N Mine calls, then succeed
	mineCalls    int
	creates     []model.TipoReacao
	createErr   error
	deletes     int
	deleteIDs   []int64
	createGate  chan struct{} // when set, Create blocks until the gate closes
	createEnter chan struct{} // signals that Create was entered
}

func (f *fakeAPI) Counts(context.Context) (map[model.TipoReacao]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.countsErr != nil {
		return nil, f.countsErr
	}
	out := make(map[model.TipoReacao]int64, len(f.counts))
	for k, v := range f.counts {
		out[k] = v
	}
	return out, nil
}

func (f *fakeAPI) Mine(context.Context) (model.MinhaReacao, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mineCalls++
	if f.mineFailures > 0 {
		f.mineFailures--
		return model.MinhaReacao{}, errors.New("not ready")
	}
	if f.mineErr != nil {
		return model.MinhaReacao{}, f.mineErr
	}
	return f.mine, nil
}

func (f *fakeAPI) Create(_ context.Context, tipo model.TipoReacao) error {
	f.mu.Lock()
	gate, enter := f.createGate, f.createEnter
	f.mu.Unlock()
	if enter != nil {
		enter <- struct{}{}
	}
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.creates = append(f.creates, tipo)
	id := int64(len(f.creates))
	f.mine = model.MinhaReacao{ID: &id, Tipo: &tipo}
	return nil
}

func (f *fakeAPI) Delete(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	f.mine = model.MinhaReacao{}
	return nil
}

func (f *fakeAPI) DeleteByID(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteIDs = append(f.deleteIDs, id)
	f.mine = model.MinhaReacao{}
	return nil
}

func (f *fakeAPI) createCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.creates)
}

func newTestEngine(t *testing.T, api *fakeAPI, ident *fakeIdentity, notifier *fakeNotifier) *Engine {
	t.Helper()
	e := New(api, ident, notifier, model.TiposReacaoArtigo(), WithRetry(time.Millisecond, 3))
	t.Cleanup(e.Close)
	return e
}

func waitLoaded(t *testing.T, e *Engine) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, loaded := e.Mine(); loaded {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("my-reaction state never resolved")
}

func TestLoadAggregateNormalizesSparse(t *testing.T) {
	api := &fakeAPI{counts: map[model.TipoReacao]int64{model.ReacaoCurtida: 3}}
	e := newTestEngine(t, api, loggedIn(), &fakeNotifier{})
	e.LoadAggregate(context.Background())

	got := e.Aggregate()
	if len(got) != len(model.TiposReacaoArtigo()) {
		t.Fatalf("expected every kind present, got %v", got)
	}
	if got[model.ReacaoCurtida] != 3 {
		t.Errorf("CURTIDA = %d, want 3", got[model.ReacaoCurtida])
	}
	if got[model.ReacaoAmei] != 0 {
		t.Errorf("AMEI = %d, want 0", got[model.ReacaoAmei])
	}
}

func TestLoadAggregateKeepsPreviousOnError(t *testing.T) {
	api := &fakeAPI{counts: map[model.TipoReacao]int64{model.ReacaoAmei: 2}}
	e := newTestEngine(t, api, loggedIn(), &fakeNotifier{})
	e.LoadAggregate(context.Background())

	api.mu.Lock()
	api.countsErr = errors.New("boom")
	api.mu.Unlock()
	e.LoadAggregate(context.Background())

	if got := e.Aggregate()[model.ReacaoAmei]; got != 2 {
		t.Errorf("AMEI = %d after failed reload, want previous value 2", got)
	}
}

func TestToggleCreatesThenRemovesByID(t *testing.T) {
	api := &fakeAPI{}
	e := newTestEngine(t, api, loggedIn(), &fakeNotifier{})
	waitLoaded(t, e)

	e.Toggle(context.Background(), model.ReacaoCurtida)
	if api.createCount() != 1 {
		t.Fatalf("creates = %d, want 1", api.createCount())
	}
	mine, _ := e.Mine()
	if mine.Tipo == nil || *mine.Tipo != model.ReacaoCurtida {
		t.Fatalf("mine = %+v, want CURTIDA", mine)
	}

	e.Toggle(context.Background(), model.ReacaoCurtida)
	api.mu.Lock()
	deleteIDs := api.deleteIDs
	api.mu.Unlock()
	if len(deleteIDs) != 1 {
		t.Fatalf("deleteIDs = %v, want one deletion by id", deleteIDs)
	}
	mine, _ = e.Mine()
	if mine.Tipo != nil {
		t.Errorf("mine = %+v after removal, want empty", mine)
	}
}

func TestToggleSwitchesKindWithoutDelete(t *testing.T) {
	api := &fakeAPI{}
	e := newTestEngine(t, api, loggedIn(), &fakeNotifier{})
	waitLoaded(t, e)

	e.Toggle(context.Background(), model.ReacaoCurtida)
	e.Toggle(context.Background(), model.ReacaoAmei)

	api.mu.Lock()
	defer api.mu.Unlock()
	if len(api.creates) != 2 || api.creates[1] != model.ReacaoAmei {
		t.Errorf("creates = %v, want [CURTIDA AMEI]", api.creates)
	}
	if api.deletes != 0 || len(api.deleteIDs) != 0 {
		t.Errorf("switching kinds must not delete first (deletes=%d byID=%v)", api.deletes, api.deleteIDs)
	}
}

func TestToggleUnknownKindIgnored(t *testing.T) {
	api := &fakeAPI{}
	e := newTestEngine(t, api, loggedIn(), &fakeNotifier{})
	waitLoaded(t, e)

	e.Toggle(context.Background(), model.ReacaoGostei) // comment kind, not an article kind
	if api.createCount() != 0 {
		t.Errorf("creates = %d, want 0 for unknown kind", api.createCount())
	}
}

func TestToggleUnauthenticatedAdvises(t *testing.T) {
	api := &fakeAPI{}
	notifier := &fakeNotifier{}
	e := newTestEngine(t, api, &fakeIdentity{}, notifier)

	e.Toggle(context.Background(), model.ReacaoCurtida)
	if api.createCount() != 0 {
		t.Fatalf("creates = %d, want 0 while logged out", api.createCount())
	}
	if got := notifier.lastAviso(); got != "Faça login para reagir" {
		t.Errorf("aviso = %q, want login advisory", got)
	}
}

func TestToggleBlockedUntilMineResolved(t *testing.T) {
	api := &fakeAPI{mineErr: errors.New("profile not ready")}
	notifier := &fakeNotifier{}
	ident := loggedIn()
	e := New(api, ident, notifier, model.TiposReacaoArtigo(), WithRetry(time.Hour, 3))
	defer e.Close()

	e.Toggle(context.Background(), model.ReacaoCurtida)
	if api.createCount() != 0 {
		t.Fatalf("creates = %d, want 0 before mine resolves", api.createCount())
	}
	if got := notifier.lastAviso(); got != "Aguardando estado" {
		t.Errorf("aviso = %q, want waiting advisory", got)
	}
}

func TestToggleSingleMutationPerBurst(t *testing.T) {
	api := &fakeAPI{
		createGate:  make(chan struct{}),
		createEnter: make(chan struct{}, 1),
	}
	e := newTestEngine(t, api, loggedIn(), &fakeNotifier{})
	waitLoaded(t, e)

	first := make(chan struct{})
	go func() {
		e.Toggle(context.Background(), model.ReacaoCurtida)
		close(first)
	}()
	<-api.createEnter // first toggle is now suspended inside Create

	// Burst of extra triggers while the first is in flight: all dropped.
	for i := 0; i < 5; i++ {
		e.Toggle(context.Background(), model.ReacaoAmei)
	}

	close(api.createGate)
	<-first

	if got := api.createCount(); got != 1 {
		t.Errorf("creates = %d, want exactly 1 for the whole burst", got)
	}
}

func TestMineRetryRecoversWithinBudget(t *testing.T) {
	tipo := model.ReacaoSurpreso
	id := int64(42)
	// Fails twice, succeeds on the third and final attempt.
	api := &fakeAPI{
		mineFailures: 2,
		mine:         model.MinhaReacao{ID: &id, Tipo: &tipo},
	}
	e := newTestEngine(t, api, loggedIn(), &fakeNotifier{})

	waitLoaded(t, e)
	mine, _ := e.Mine()
	if mine.Tipo == nil || *mine.Tipo != tipo {
		t.Errorf("mine = %+v, want recovered %s", mine, tipo)
	}

	api.mu.Lock()
	calls := api.mineCalls
	api.mu.Unlock()
	if calls != 3 {
		t.Errorf("mine fetch attempts = %d, want exactly 3", calls)
	}
}

func TestMineRetryExhaustionStillLoads(t *testing.T) {
	api := &fakeAPI{mineErr: errors.New("permanently down")}
	e := newTestEngine(t, api, loggedIn(), &fakeNotifier{})

	waitLoaded(t, e)
	mine, loaded := e.Mine()
	if !loaded {
		t.Fatal("loaded must flip true after the final attempt")
	}
	if mine.Tipo != nil || mine.ID != nil {
		t.Errorf("mine = %+v after exhausted retries, want empty", mine)
	}

	api.mu.Lock()
	calls := api.mineCalls
	api.mu.Unlock()
	if calls != 3 {
		t.Errorf("mine fetch attempts = %d, want 3", calls)
	}
}

func TestLogoutResetsMine(t *testing.T) {
	api := &fakeAPI{}
	ident := loggedIn()
	e := newTestEngine(t, api, ident, &fakeNotifier{})
	waitLoaded(t, e)

	e.Toggle(context.Background(), model.ReacaoCurtida)
	ident.set(identity.Snapshot{})

	mine, loaded := e.Mine()
	if !loaded {
		t.Fatal("logged-out state is definitive and must count as loaded")
	}
	if mine.Tipo != nil {
		t.Errorf("mine = %+v after logout, want empty", mine)
	}
}

func TestToggleErrorAdvisesAndKeepsState(t *testing.T) {
	api := &fakeAPI{createErr: errors.New("network down")}
	notifier := &fakeNotifier{}
	e := newTestEngine(t, api, loggedIn(), notifier)
	waitLoaded(t, e)

	e.Toggle(context.Background(), model.ReacaoCurtida)

	notifier.mu.Lock()
	erros := notifier.erros
	notifier.mu.Unlock()
	if len(erros) != 1 || erros[0] != "Erro ao reagir" {
		t.Errorf("erros = %v, want one reaction failure advisory", erros)
	}
	mine, _ := e.Mine()
	if mine.Tipo != nil {
		t.Errorf("mine = %+v after failed create, want unchanged empty", mine)
	}
}
