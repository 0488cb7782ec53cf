package identity

import (
	"context"
	"log"
	"sync"
	"time"

	"anoa.com/portalnoticias/internal/api"
	"anoa.com/portalnoticias/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

// Snapshot is the read-only identity state consumed by the engagement
// components. They subscribe and react to transitions; nothing downstream
// ever mutates identity.
type Snapshot struct {
	Authenticated bool
	UserID        int64
	Login         string
	Nome          string
	Papel         model.Papel
}

// Watcher is the observable identity dependency injected into the engagement
// components.
type Watcher interface {
	Snapshot() Snapshot
	// Subscribe registers fn for identity transitions (login, logout,
	// profile-load completion) and returns a cancel function. A cancelled
	// subscription receives nothing.
	Subscribe(fn func(Snapshot)) (cancel func())
}

// Context owns the session: token, profile, and the user's own role request.
type Context struct {
	client *api.Client

	mu            sync.Mutex
	user          *model.Usuario
	loading       bool
	mySolicitacao *model.Solicitacao
	subs          map[int]func(Snapshot)
	nextSub       int
}

func NewContext(client *api.Client) *Context {
	return &Context{
		client:  client,
		loading: true,
		subs:    make(map[int]func(Snapshot)),
	}
}

func (c *Context) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Context) snapshotLocked() Snapshot {
	if c.user == nil {
		return Snapshot{}
	}
	return Snapshot{
		Authenticated: true,
		UserID:        c.user.ID,
		Login:         c.user.Login,
		Nome:          c.user.Nome,
		Papel:         c.user.Papel,
	}
}

func (c *Context) Subscribe(fn func(Snapshot)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Context) notify() {
	c.mu.Lock()
	snapshot := c.snapshotLocked()
	fns := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}

// LoadUser resolves the profile for an existing token (e.g. restored from a
// previous session). An invalid or expired token is discarded silently.
func (c *Context) LoadUser(ctx context.Context) {
	token := c.client.Token()
	if token == "" || tokenExpired(token) {
		c.client.ClearToken()
		c.setLoading(false)
		return
	}

	user, err := c.client.Profile(ctx)
	if err != nil {
		c.client.ClearToken()
		c.mu.Lock()
		c.user = nil
		c.mySolicitacao = nil
		c.loading = false
		c.mu.Unlock()
		c.notify()
		return
	}

	c.mu.Lock()
	c.user = &user
	c.loading = false
	c.mu.Unlock()
	c.notify()

	if err := c.RefreshSolicitacao(ctx); err != nil {
		log.Printf("failed to load solicitação: %v", err)
	}
}

func (c *Context) Login(ctx context.Context, login, senha string) error {
	resp, err := c.client.Login(ctx, login, senha)
	if err != nil {
		return err
	}
	c.client.SetToken(resp.Token)

	c.mu.Lock()
	user := resp.Usuario
	c.user = &user
	c.loading = false
	c.mu.Unlock()
	c.notify()

	if err := c.RefreshSolicitacao(ctx); err != nil {
		log.Printf("failed to load solicitação: %v", err)
	}
	return nil
}

func (c *Context) Register(ctx context.Context, input api.RegisterInput) error {
	resp, err := c.client.Register(ctx, input)
	if err != nil {
		return err
	}
	c.client.SetToken(resp.Token)

	c.mu.Lock()
	user := resp.Usuario
	c.user = &user
	c.loading = false
	c.mu.Unlock()
	c.notify()
	return nil
}

// Logout clears local state even when the backend call fails.
func (c *Context) Logout(ctx context.Context) {
	if err := c.client.Logout(ctx); err != nil {
		log.Printf("logout request failed: %v", err)
	}
	c.client.ClearToken()

	c.mu.Lock()
	c.user = nil
	c.mySolicitacao = nil
	c.mu.Unlock()
	c.notify()
}

// RefreshSolicitacao re-resolves the user's own role request from the full
// list (the backend has no "mine" endpoint).
func (c *Context) RefreshSolicitacao(ctx context.Context) error {
	c.mu.Lock()
	user := c.user
	c.mu.Unlock()
	if user == nil {
		return nil
	}

	all, err := c.client.Solicitacoes(ctx)
	if err != nil {
		c.mu.Lock()
		c.mySolicitacao = nil
		c.mu.Unlock()
		return err
	}

	var mine *model.Solicitacao
	for i := range all {
		if all[i].UsuarioID == user.ID {
			mine = &all[i]
			break
		}
	}
	c.mu.Lock()
	c.mySolicitacao = mine
	c.mu.Unlock()
	return nil
}

func (c *Context) CreateSolicitacao(ctx context.Context, tipo model.TipoSolicitacao, mensagem string) (model.Solicitacao, error) {
	created, err := c.client.CreateSolicitacao(ctx, tipo, mensagem)
	if err != nil {
		return model.Solicitacao{}, err
	}
	if err := c.RefreshSolicitacao(ctx); err != nil {
		log.Printf("failed to refresh solicitação: %v", err)
	}
	return created, nil
}

func (c *Context) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *Context) setLoading(v bool) {
	c.mu.Lock()
	c.loading = v
	c.mu.Unlock()
}

// User returns a copy of the loaded profile, or nil.
func (c *Context) User() *model.Usuario {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return nil
	}
	user := *c.user
	return &user
}

func (c *Context) MySolicitacao() *model.Solicitacao {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mySolicitacao == nil {
		return nil
	}
	s := *c.mySolicitacao
	return &s
}

func (c *Context) IsAuthenticated() bool {
	return c.Snapshot().Authenticated
}

func (c *Context) IsAdmin() bool {
	return c.papel() == model.PapelAdministrador
}

// CanPublish covers every role allowed into the authoring dashboard.
func (c *Context) CanPublish() bool {
	switch c.papel() {
	case model.PapelDocente, model.PapelProfessor, model.PapelServidor,
		model.PapelTecnico, model.PapelBolsista, model.PapelAdministrador:
		return true
	}
	return false
}

// IsProfessor accepts both the backend token and the legacy frontend one.
func (c *Context) IsProfessor() bool {
	p := c.papel()
	return p == model.PapelDocente || p == model.PapelProfessor
}

// IsTecnico keeps backwards compatibility with the legacy SERVIDOR role.
func (c *Context) IsTecnico() bool {
	p := c.papel()
	return p == model.PapelServidor || p == model.PapelTecnico
}

func (c *Context) IsBolsista() bool {
	return c.papel() == model.PapelBolsista
}

// IsApproved prefers the backend flag and falls back to the status of the
// user's own solicitação, tolerating the legacy ACEITA status.
func (c *Context) IsApproved() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user != nil && c.user.IsApproved != nil && *c.user.IsApproved {
		return true
	}
	if c.mySolicitacao == nil {
		return false
	}
	return c.mySolicitacao.Status == model.SolicitacaoAprovada ||
		c.mySolicitacao.Status == model.SolicitacaoAceita
}

func (c *Context) papel() model.Papel {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return ""
	}
	return c.user.Papel
}

// tokenExpired inspects the token's registered claims without verifying the
// signature; verification is the backend's job.
func tokenExpired(token string) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(time.Now())
}
