package reaction

import (
	"context"

	"anoa.com/portalnoticias/internal/api"
	"anoa.com/portalnoticias/internal/identity"
	"anoa.com/portalnoticias/internal/model"
	"anoa.com/portalnoticias/pkg/avisos"
)

// ArticleSubject binds the facade client to one article's reaction endpoints.
func ArticleSubject(client *api.Client, articleID int64) API {
	return &articleSubject{client: client, articleID: articleID}
}

// CommentSubject binds the facade client to one comment's reaction endpoints.
func CommentSubject(client *api.Client, articleID, commentID int64) API {
	return &commentSubject{client: client, articleID: articleID, commentID: commentID}
}

// NewArticleEngine builds an engine over the article kind enumeration
// (CURTIDA, AMEI, TRISTE, SURPRESO, PARABENS).
func NewArticleEngine(client *api.Client, ident identity.Watcher, notifier avisos.Notifier, articleID int64, opts ...Option) *Engine {
	return New(ArticleSubject(client, articleID), ident, notifier, model.TiposReacaoArtigo(), opts...)
}

// NewCommentEngine builds an engine over the comment kind enumeration
// (GOSTEI, NAO_GOSTEI).
func NewCommentEngine(client *api.Client, ident identity.Watcher, notifier avisos.Notifier, articleID, commentID int64, opts ...Option) *Engine {
	return New(CommentSubject(client, articleID, commentID), ident, notifier, model.TiposReacaoComentario(), opts...)
}

type articleSubject struct {
	client    *api.Client
	articleID int64
}

func (s *articleSubject) Counts(ctx context.Context) (map[model.TipoReacao]int64, error) {
	return s.client.Reactions(ctx, s.articleID)
}

func (s *articleSubject) Mine(ctx context.Context) (model.MinhaReacao, error) {
	return s.client.MyReaction(ctx, s.articleID)
}

func (s *articleSubject) Create(ctx context.Context, tipo model.TipoReacao) error {
	return s.client.CreateReaction(ctx, s.articleID, tipo)
}

func (s *articleSubject) Delete(ctx context.Context) error {
	return s.client.DeleteReaction(ctx, s.articleID)
}

func (s *articleSubject) DeleteByID(ctx context.Context, id int64) error {
	return s.client.DeleteReactionByID(ctx, s.articleID, id)
}

type commentSubject struct {
	client    *api.Client
	articleID int64
	commentID int64
}

func (s *commentSubject) Counts(ctx context.Context) (map[model.TipoReacao]int64, error) {
	return s.client.CommentReactions(ctx, s.articleID, s.commentID)
}

func (s *commentSubject) Mine(ctx context.Context) (model.MinhaReacao, error) {
	return s.client.MyCommentReaction(ctx, s.articleID, s.commentID)
}

func (s *commentSubject) Create(ctx context.Context, tipo model.TipoReacao) error {
	return s.client.CreateCommentReaction(ctx, s.articleID, s.commentID, tipo)
}

func (s *commentSubject) Delete(ctx context.Context) error {
	return s.client.DeleteCommentReaction(ctx, s.articleID, s.commentID)
}

func (s *commentSubject) DeleteByID(ctx context.Context, id int64) error {
	return s.client.DeleteCommentReactionByID(ctx, s.articleID, s.commentID, id)
}
