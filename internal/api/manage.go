package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"anoa.com/portalnoticias/internal/model"
)

// ArticleInput is the create/update payload for the authoring dashboard.
// Pointer fields are omitted when nil so PATCH stays partial.
type ArticleInput struct {
	Titulo    *string              `json:"titulo,omitempty"`
	Slug      *string              `json:"slug,omitempty"`
	Resumo    *string              `json:"resumo,omitempty"`
	CapaURL   *string              `json:"capaUrl,omitempty"`
	Categoria *model.Categoria     `json:"categoria,omitempty"`
	Publicado *bool                `json:"publicado,omitempty"`
	Sessoes   []model.ArtigoSessao `json:"artigoSessoes,omitempty"`
}

func (c *Client) ManageArticles(ctx context.Context, filter *NewsFilter) (model.ArtigoList, error) {
	var list model.ArtigoList
	err := c.do(ctx, http.MethodGet, "/gerenciar/artigos"+filter.query(), nil, &list)
	return list, err
}

func (c *Client) CreateArticle(ctx context.Context, input ArticleInput) (model.Artigo, error) {
	var artigo model.Artigo
	err := c.do(ctx, http.MethodPost, "/gerenciar/artigos", input, &artigo)
	return artigo, err
}

func (c *Client) ManageArticle(ctx context.Context, id int64) (model.Artigo, error) {
	var artigo model.Artigo
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/gerenciar/artigos/%d", id), nil, &artigo)
	return artigo, err
}

// SlugAvailable reports whether a slug is free. Some deployments answer a
// bare boolean, others {available: bool}.
func (c *Client) SlugAvailable(ctx context.Context, slug string, ignoreID *int64) (bool, error) {
	values := url.Values{}
	values.Set("slug", slug)
	if ignoreID != nil {
		values.Set("ignoreId", strconv.FormatInt(*ignoreID, 10))
	}

	var raw json.RawMessage
	err := c.do(ctx, http.MethodGet, "/gerenciar/artigos/slug-available?"+values.Encode(), nil, &raw)
	if err != nil {
		return false, err
	}

	var direct bool
	if json.Unmarshal(raw, &direct) == nil {
		return direct, nil
	}
	var wrapped struct {
		Available bool `json:"available"`
	}
	if json.Unmarshal(raw, &wrapped) == nil {
		return wrapped.Available, nil
	}
	return false, nil
}

func (c *Client) UpdateArticle(ctx context.Context, id int64, input ArticleInput) (model.Artigo, error) {
	var artigo model.Artigo
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/gerenciar/artigos/%d", id), input, &artigo)
	return artigo, err
}

func (c *Client) DeleteArticle(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/gerenciar/artigos/%d", id), nil, nil)
}

type UpdateUserInput struct {
	Nome  *string `json:"nome,omitempty"`
	Login *string `json:"login,omitempty"`
	Email *string `json:"email,omitempty"`
}

type CreateUserInput struct {
	Nome  string      `json:"nome"`
	Login string      `json:"login"`
	Email string      `json:"email"`
	Senha string      `json:"senha,omitempty"`
	Papel model.Papel `json:"papel,omitempty"`
}

func (c *Client) Users(ctx context.Context) ([]model.Usuario, error) {
	var users []model.Usuario
	err := c.do(ctx, http.MethodGet, "/users", nil, &users)
	return users, err
}

// CreateUserAdmin hits the admin-only user creation endpoint.
func (c *Client) CreateUserAdmin(ctx context.Context, input CreateUserInput) (model.Usuario, error) {
	var user model.Usuario
	err := c.do(ctx, http.MethodPost, "/admin/users", input, &user)
	return user, err
}

func (c *Client) UpdateUser(ctx context.Context, id int64, input UpdateUserInput) (model.Usuario, error) {
	var user model.Usuario
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/users/%d", id), input, &user)
	return user, err
}

func (c *Client) UpdateUserRole(ctx context.Context, id int64, papel model.Papel) (model.Usuario, error) {
	var user model.Usuario
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/users/%d/role", id),
		map[string]model.Papel{"papel": papel}, &user)
	return user, err
}

func (c *Client) Solicitacoes(ctx context.Context) ([]model.Solicitacao, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/solicitacoes", nil, &raw); err != nil {
		return nil, err
	}
	return decodeSolicitacoes(raw), nil
}

func (c *Client) SolicitacoesPendentes(ctx context.Context) ([]model.Solicitacao, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/solicitacoes/pending", nil, &raw); err != nil {
		return nil, err
	}
	return decodeSolicitacoes(raw), nil
}

func (c *Client) CreateSolicitacao(ctx context.Context, tipo model.TipoSolicitacao, mensagem string) (model.Solicitacao, error) {
	body := struct {
		Tipo     model.TipoSolicitacao `json:"tipo"`
		Mensagem string                `json:"mensagem,omitempty"`
	}{Tipo: tipo, Mensagem: mensagem}

	var created model.Solicitacao
	err := c.do(ctx, http.MethodPost, "/solicitacoes", body, &created)
	return created, err
}

func (c *Client) AceitarSolicitacao(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/solicitacoes/%d/aceitar", id), struct{}{}, nil)
}

func (c *Client) RejeitarSolicitacao(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/solicitacoes/%d/rejeitar", id), struct{}{}, nil)
}

// decodeSolicitacoes tolerates the three historical list shapes: a bare
// array, {data: [...]} and {solicitacoes: [...]}.
func decodeSolicitacoes(raw json.RawMessage) []model.Solicitacao {
	var direct []model.Solicitacao
	if json.Unmarshal(raw, &direct) == nil && direct != nil {
		return direct
	}
	var wrapped struct {
		Data         []model.Solicitacao `json:"data"`
		Solicitacoes []model.Solicitacao `json:"solicitacoes"`
	}
	if json.Unmarshal(raw, &wrapped) == nil {
		if wrapped.Data != nil {
			return wrapped.Data
		}
		if wrapped.Solicitacoes != nil {
			return wrapped.Solicitacoes
		}
	}
	return []model.Solicitacao{}
}
