// Package stub is an in-memory rendition of the portal backend, complete
// enough to develop and test the engagement client against. Durable entities
// live in maps behind one mutex; reaction tallies live in Redis hashes so the
// count bookkeeping matches the production layout.
package stub

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"anoa.com/portalnoticias/internal/model"
)

type usuarioConta struct {
	model.Usuario
	senhaHash []byte
}

type artigoRec struct {
	model.Artigo
	AutorID  int64
	CriadoEm time.Time
}

type comentarioRec struct {
	ID          int64
	ArtigoID    int64
	AutorID     int64
	Conteudo    string
	PaiID       *int64 // always a top-level comment when set
	RespondeAID *int64
	CriadoEm    time.Time
}

type reacaoRec struct {
	ID   int64
	Tipo model.TipoReacao
}

// Server holds the whole backend state. All entity maps are guarded by mu;
// reaction counts are delegated to Redis and are not part of the lock's scope.
type Server struct {
	rdb       *redis.Client
	secret    []byte
	sanitizer *bluemonday.Policy

	mu          sync.Mutex
	nextID      int64
	usuarios    map[int64]*usuarioConta
	artigos     map[int64]*artigoRec
	comentarios map[int64]*comentarioRec
	// subject id -> user id -> reaction row
	reacoesArtigo     map[int64]map[int64]reacaoRec
	reacoesComentario map[int64]map[int64]reacaoRec
	solicitacoes      map[int64]*model.Solicitacao
	resetTokens       map[string]int64
}

func NewServer(secret string, rdb *redis.Client) *Server {
	return &Server{
		rdb:               rdb,
		secret:            []byte(secret),
		sanitizer:         bluemonday.StrictPolicy(),
		usuarios:          make(map[int64]*usuarioConta),
		artigos:           make(map[int64]*artigoRec),
		comentarios:       make(map[int64]*comentarioRec),
		reacoesArtigo:     make(map[int64]map[int64]reacaoRec),
		reacoesComentario: make(map[int64]map[int64]reacaoRec),
		solicitacoes:      make(map[int64]*model.Solicitacao),
		resetTokens:       make(map[string]int64),
	}
}

// allocID must be called with mu held.
func (s *Server) allocID() int64 {
	s.nextID++
	return s.nextID
}

func (s *Server) userByLogin(login string) *usuarioConta {
	for _, u := range s.usuarios {
		if u.Login == login {
			return u
		}
	}
	return nil
}

func (s *Server) userByEmail(email string) *usuarioConta {
	for _, u := range s.usuarios {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (s *Server) artigoBySlug(slug string) *artigoRec {
	for _, a := range s.artigos {
		if a.Slug == slug {
			return a
		}
	}
	return nil
}

// countsKey follows the counts:<type>:<id> hash layout.
func countsKey(tipo string, id int64) string {
	return fmt.Sprintf("counts:%s:%d", tipo, id)
}

// applyReaction replaces the user's reaction for one subject and adjusts the
// Redis hash in a single pipeline: decrement the old kind when switching,
// increment the new one.
func (s *Server) applyReaction(ctx context.Context, table map[int64]map[int64]reacaoRec, key string, subjectID, userID int64, tipo model.TipoReacao) reacaoRec {
	s.mu.Lock()
	byUser := table[subjectID]
	if byUser == nil {
		byUser = make(map[int64]reacaoRec)
		table[subjectID] = byUser
	}
	old, had := byUser[userID]
	rec := reacaoRec{ID: s.allocID(), Tipo: tipo}
	byUser[userID] = rec
	s.mu.Unlock()

	pipe := s.rdb.Pipeline()
	if had {
		pipe.HIncrBy(ctx, key, string(old.Tipo), -1)
	}
	pipe.HIncrBy(ctx, key, string(tipo), 1)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("failed to update reaction counts for %s: %v", key, err)
	}
	return rec
}

// removeReaction drops the user's reaction, if any, and decrements its kind.
func (s *Server) removeReaction(ctx context.Context, table map[int64]map[int64]reacaoRec, key string, subjectID, userID int64) bool {
	s.mu.Lock()
	byUser := table[subjectID]
	old, had := byUser[userID]
	if had {
		delete(byUser, userID)
	}
	s.mu.Unlock()

	if !had {
		return false
	}
	if err := s.rdb.HIncrBy(ctx, key, string(old.Tipo), -1).Err(); err != nil {
		log.Printf("failed to decrement reaction count for %s: %v", key, err)
	}
	return true
}

// readCounts returns the non-positive-filtered hash, so responses stay sparse
// the way the production backend answers.
func (s *Server) readCounts(ctx context.Context, key string) (map[model.TipoReacao]int64, error) {
	raw, err := s.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read counts: %w", err)
	}
	counts := make(map[model.TipoReacao]int64, len(raw))
	for kind, value := range raw {
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n <= 0 {
			continue
		}
		counts[model.TipoReacao(kind)] = n
	}
	return counts, nil
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(titulo string) string {
	slug := strings.ToLower(titulo)
	slug = slugStrip.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "artigo"
	}
	return slug
}

// uniqueSlug must be called with mu held.
func (s *Server) uniqueSlug(base string, ignoreID int64) string {
	slug := base
	for i := 2; ; i++ {
		taken := false
		for _, a := range s.artigos {
			if a.Slug == slug && a.ID != ignoreID {
				taken = true
				break
			}
		}
		if !taken {
			return slug
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// Seed creates the bootstrap admin plus one published article so a fresh
// environment is immediately usable. Idempotent on the admin login.
func (s *Server) Seed(adminLogin, adminSenha string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userByLogin(adminLogin) != nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminSenha), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	approved := true
	admin := &usuarioConta{
		Usuario: model.Usuario{
			ID:         s.allocID(),
			Login:      adminLogin,
			Email:      adminLogin + "@portal.local",
			Nome:       "Administrador",
			Papel:      model.PapelAdministrador,
			IsApproved: &approved,
			CriadoEm:   time.Now().UTC().Format(time.RFC3339),
		},
		senhaHash: hash,
	}
	s.usuarios[admin.ID] = admin

	artigo := &artigoRec{
		Artigo: model.Artigo{
			ID:          s.allocID(),
			Titulo:      "Bem-vindo ao portal",
			Slug:        "bem-vindo-ao-portal",
			Resumo:      "Primeira publicação do ambiente de desenvolvimento.",
			Categoria:   model.CategoriaAvisos,
			Publicado:   true,
			PublicadoEm: time.Now().UTC().Format(time.RFC3339),
			Sessoes: []model.ArtigoSessao{
				{Ordem: 0, Tipo: model.SessaoParagrafo, Texto: "Este artigo existe para validar o fluxo de reações e comentários."},
			},
		},
		AutorID:  admin.ID,
		CriadoEm: time.Now(),
	}
	s.artigos[artigo.ID] = artigo
	return nil
}
