package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"anoa.com/portalnoticias/internal/model"
)

// Reactions returns the per-kind counts for one article. The backend may
// answer sparsely (only non-zero kinds); normalization against the kind
// enumeration is the reaction engine's job.
func (c *Client) Reactions(ctx context.Context, articleID int64) (map[model.TipoReacao]int64, error) {
	var counts map[model.TipoReacao]int64
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/news/%d/reacoes", articleID), nil, &counts)
	return counts, err
}

// MyReaction resolves the current user's reaction for one article. Older
// backends answer with null, a bare kind string, or the {id, tipo} object;
// all three shapes normalize to MinhaReacao.
func (c *Client) MyReaction(ctx context.Context, articleID int64) (model.MinhaReacao, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/news/%d/reacao", articleID), nil, &raw); err != nil {
		return model.MinhaReacao{}, err
	}
	return decodeMinhaReacao(raw), nil
}

func (c *Client) CreateReaction(ctx context.Context, articleID int64, tipo model.TipoReacao) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/news/%d/reacoes", articleID),
		map[string]model.TipoReacao{"tipo": tipo}, nil)
}

func (c *Client) DeleteReaction(ctx context.Context, articleID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/news/%d/reacoes", articleID), nil, nil)
}

func (c *Client) DeleteReactionByID(ctx context.Context, articleID, reacaoID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/news/%d/reacoes/%d", articleID, reacaoID), nil, nil)
}

func (c *Client) CommentReactions(ctx context.Context, articleID, commentID int64) (map[model.TipoReacao]int64, error) {
	var counts map[model.TipoReacao]int64
	err := c.do(ctx, http.MethodGet,
		fmt.Sprintf("/news/%d/comentarios/%d/reacoes", articleID, commentID), nil, &counts)
	return counts, err
}

func (c *Client) MyCommentReaction(ctx context.Context, articleID, commentID int64) (model.MinhaReacao, error) {
	var raw json.RawMessage
	err := c.do(ctx, http.MethodGet,
		fmt.Sprintf("/news/%d/comentarios/%d/reacao", articleID, commentID), nil, &raw)
	if err != nil {
		return model.MinhaReacao{}, err
	}
	return decodeMinhaReacao(raw), nil
}

func (c *Client) CreateCommentReaction(ctx context.Context, articleID, commentID int64, tipo model.TipoReacao) error {
	return c.do(ctx, http.MethodPost,
		fmt.Sprintf("/news/%d/comentarios/%d/reacoes", articleID, commentID),
		map[string]model.TipoReacao{"tipo": tipo}, nil)
}

func (c *Client) DeleteCommentReaction(ctx context.Context, articleID, commentID int64) error {
	return c.do(ctx, http.MethodDelete,
		fmt.Sprintf("/news/%d/comentarios/%d/reacoes", articleID, commentID), nil, nil)
}

func (c *Client) DeleteCommentReactionByID(ctx context.Context, articleID, commentID, reacaoID int64) error {
	return c.do(ctx, http.MethodDelete,
		fmt.Sprintf("/news/%d/comentarios/%d/reacoes/%d", articleID, commentID, reacaoID), nil, nil)
}

func decodeMinhaReacao(raw json.RawMessage) model.MinhaReacao {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return model.MinhaReacao{}
	}
	if trimmed[0] == '"' {
		var tipo model.TipoReacao
		if err := json.Unmarshal(trimmed, &tipo); err != nil || tipo == "" {
			return model.MinhaReacao{}
		}
		return model.MinhaReacao{Tipo: &tipo}
	}
	var mine model.MinhaReacao
	if err := json.Unmarshal(trimmed, &mine); err != nil {
		return model.MinhaReacao{}
	}
	return mine
}
