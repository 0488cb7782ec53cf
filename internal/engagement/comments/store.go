package comments

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/go-playground/validator/v10"

	"anoa.com/portalnoticias/internal/api"
	"anoa.com/portalnoticias/internal/identity"
	"anoa.com/portalnoticias/internal/model"
	"anoa.com/portalnoticias/pkg/apperror"
	"anoa.com/portalnoticias/pkg/avisos"
)

// API is the comment slice of the facade for one article.
type API interface {
	List(ctx context.Context) ([]model.Comentario, error)
	Create(ctx context.Context, conteudo string, comentarioPaiID *int64) (model.Comentario, error)
	Update(ctx context.Context, commentID int64, conteudo string) error
	Delete(ctx context.Context, commentID int64) error
}

// ClientAPI binds the facade client to one article's comment endpoints.
func ClientAPI(client *api.Client, articleID int64) API {
	return &clientAPI{client: client, articleID: articleID}
}

type clientAPI struct {
	client    *api.Client
	articleID int64
}

func (a *clientAPI) List(ctx context.Context) ([]model.Comentario, error) {
	return a.client.Comments(ctx, a.articleID)
}

func (a *clientAPI) Create(ctx context.Context, conteudo string, comentarioPaiID *int64) (model.Comentario, error) {
	return a.client.CreateComment(ctx, a.articleID, conteudo, comentarioPaiID)
}

func (a *clientAPI) Update(ctx context.Context, commentID int64, conteudo string) error {
	return a.client.UpdateComment(ctx, commentID, conteudo)
}

func (a *clientAPI) Delete(ctx context.Context, commentID int64) error {
	return a.client.DeleteComment(ctx, commentID)
}

// Store owns the comment tree of one article. Every mutation triggers a full
// reload instead of a local patch, trading latency for structural
// correctness of the nested reply layout. Reloads are tagged with a
// monotonic sequence; a reload that was superseded while in flight discards
// its result instead of overwriting newer data.
type Store struct {
	api      API
	ident    identity.Watcher
	notifier avisos.Notifier
	validate *validator.Validate
	boundTag string

	mu        sync.Mutex
	comments  []model.Comentario
	reloadSeq uint64
}

func NewStore(commentAPI API, ident identity.Watcher, notifier avisos.Notifier) *Store {
	return &Store{
		api:      commentAPI,
		ident:    ident,
		notifier: notifier,
		validate: validator.New(),
		boundTag: fmt.Sprintf("min=%d,max=%d", model.ComentarioMinLen, model.ComentarioMaxLen),
	}
}

// Load fetches the full tree. On failure the previous tree stays in place.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	s.reloadSeq++
	seq := s.reloadSeq
	s.mu.Unlock()

	comments, err := s.api.List(ctx)
	if err != nil {
		log.Printf("failed to load comments: %v", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.reloadSeq {
		// A newer reload started while this one was in flight.
		return nil
	}
	s.comments = comments
	return nil
}

// Comments returns the top-level comments (replies attached).
func (s *Store) Comments() []model.Comentario {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Comentario, len(s.comments))
	copy(out, s.comments)
	return out
}

// Total counts top-level comments plus their direct replies.
func (s *Store) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for i := range s.comments {
		total += 1 + len(s.comments[i].Respostas)
	}
	return total
}

// FindByID searches the whole tree depth-first.
func (s *Store) FindByID(id int64) *model.Comentario {
	s.mu.Lock()
	defer s.mu.Unlock()
	return findByID(s.comments, id)
}

func findByID(list []model.Comentario, id int64) *model.Comentario {
	for i := range list {
		if list[i].ID == id {
			found := list[i]
			return &found
		}
		if len(list[i].Respostas) > 0 {
			if found := findByID(list[i].Respostas, id); found != nil {
				return found
			}
		}
	}
	return nil
}

// TopLevelParentOf returns the id of the top-level comment that either is id
// or contains id among its direct replies. Storage keeps exactly one level
// of nesting, so only direct replies are inspected.
func (s *Store) TopLevelParentOf(id int64) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.comments {
		root := &s.comments[i]
		if root.ID == id {
			return root.ID, true
		}
		for j := range root.Respostas {
			if root.Respostas[j].ID == id {
				return root.ID, true
			}
		}
	}
	return 0, false
}

// ParticipantHandles lists the distinct author handles of one thread: the
// top-level comment plus its direct replies, in first-seen order.
func (s *Store) ParticipantHandles(topLevelID int64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var root *model.Comentario
	for i := range s.comments {
		if s.comments[i].ID == topLevelID {
			root = &s.comments[i]
			break
		}
	}
	if root == nil {
		return nil
	}

	seen := make(map[string]bool)
	handles := []string{root.Autor.Login}
	seen[root.Autor.Login] = true
	for i := range root.Respostas {
		login := root.Respostas[i].Autor.Login
		if !seen[login] {
			seen[login] = true
			handles = append(handles, login)
		}
	}
	return handles
}

// AuthorLogin resolves the handle of a comment's author anywhere in the tree.
func (s *Store) AuthorLogin(id int64) (string, bool) {
	if found := s.FindByID(id); found != nil {
		return found.Autor.Login, true
	}
	return "", false
}

// CreateComment validates, submits and reloads. Advisory messages go to the
// notifier; the returned error lets the caller branch without re-reporting.
func (s *Store) CreateComment(ctx context.Context, conteudo string, comentarioPaiID *int64) error {
	if !s.ident.Snapshot().Authenticated {
		s.notifier.Aviso("Faça login para comentar", "Você precisa estar logado para comentar.")
		return apperror.ErrUnauthorized
	}
	if err := s.ValidateConteudo(conteudo); err != nil {
		s.notifier.Erro("Comentário inválido", err.Error())
		return err
	}

	if _, err := s.api.Create(ctx, conteudo, comentarioPaiID); err != nil {
		s.notifier.Erro("Erro ao comentar", "Não foi possível publicar seu comentário.")
		return err
	}

	s.notifier.Aviso("Comentário publicado!", "")
	return s.Load(ctx)
}

func (s *Store) UpdateComment(ctx context.Context, commentID int64, conteudo string) error {
	if err := s.ValidateConteudo(conteudo); err != nil {
		s.notifier.Erro("Comentário inválido", err.Error())
		return err
	}

	if err := s.api.Update(ctx, commentID, conteudo); err != nil {
		s.notifier.Erro("Erro ao atualizar", "Não foi possível atualizar o comentário.")
		return err
	}

	s.notifier.Aviso("Comentário atualizado!", "")
	return s.Load(ctx)
}

func (s *Store) DeleteComment(ctx context.Context, commentID int64) error {
	if err := s.api.Delete(ctx, commentID); err != nil {
		s.notifier.Erro("Erro ao remover", "Não foi possível remover o comentário.")
		return err
	}

	s.notifier.Aviso("Comentário removido!", "")
	return s.Load(ctx)
}

// ValidateConteudo enforces the [10,500] content bounds before any network
// call, with a distinct message per bound.
func (s *Store) ValidateConteudo(conteudo string) error {
	err := s.validate.Var(conteudo, s.boundTag)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch verrs[0].Tag() {
		case "min":
			return fmt.Errorf("o comentário deve ter no mínimo %d caracteres: %w",
				model.ComentarioMinLen, apperror.ErrInvalidInput)
		case "max":
			return fmt.Errorf("o comentário deve ter no máximo %d caracteres: %w",
				model.ComentarioMaxLen, apperror.ErrInvalidInput)
		}
	}
	return fmt.Errorf("comentário inválido: %w", apperror.ErrInvalidInput)
}

// CanEdit exposes the authorization rule without enforcing it: only the
// author edits. The backend remains authoritative.
func CanEdit(comment *model.Comentario, who identity.Snapshot) bool {
	return who.Authenticated && comment != nil && comment.Autor.ID == who.UserID
}

// CanDelete: the author, or an administrator.
func CanDelete(comment *model.Comentario, who identity.Snapshot) bool {
	if !who.Authenticated || comment == nil {
		return false
	}
	return comment.Autor.ID == who.UserID || who.Papel == model.PapelAdministrador
}
