package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"anoa.com/portalnoticias/internal/model"
)

// NewsFilter mirrors the backend's listing query parameters; zero values are
// omitted from the query string.
type NewsFilter struct {
	Limite      int
	Cursor      int64
	Pagina      int
	Busca       string
	Categoria   model.Categoria
	DataInicial string
	DataFinal   string
	AutorID     int64
}

func (f *NewsFilter) query() string {
	if f == nil {
		return ""
	}
	values := url.Values{}
	if f.Limite > 0 {
		values.Set("limite", strconv.Itoa(f.Limite))
	}
	if f.Cursor > 0 {
		values.Set("cursor", strconv.FormatInt(f.Cursor, 10))
	}
	if f.Pagina > 0 {
		values.Set("pagina", strconv.Itoa(f.Pagina))
	}
	if f.Busca != "" {
		values.Set("busca", f.Busca)
	}
	if f.Categoria != "" {
		values.Set("categoria", string(f.Categoria))
	}
	if f.DataInicial != "" {
		values.Set("dataInicial", f.DataInicial)
	}
	if f.DataFinal != "" {
		values.Set("dataFinal", f.DataFinal)
	}
	if f.AutorID > 0 {
		values.Set("autorId", strconv.FormatInt(f.AutorID, 10))
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}

func (c *Client) News(ctx context.Context, filter *NewsFilter) (model.ArtigoList, error) {
	var list model.ArtigoList
	err := c.do(ctx, http.MethodGet, "/news"+filter.query(), nil, &list)
	return list, err
}

func (c *Client) NewsBySlug(ctx context.Context, slug string) (model.Artigo, error) {
	var artigo model.Artigo
	err := c.do(ctx, http.MethodGet, "/news/"+url.PathEscape(slug), nil, &artigo)
	return artigo, err
}

func (c *Client) NewsPreview(ctx context.Context, slug string) (model.Artigo, error) {
	var artigo model.Artigo
	err := c.do(ctx, http.MethodGet, "/news/"+url.PathEscape(slug)+"/preview", nil, &artigo)
	return artigo, err
}

func (c *Client) Comments(ctx context.Context, articleID int64) ([]model.Comentario, error) {
	var comments []model.Comentario
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/news/%d/comentarios", articleID), nil, &comments)
	return comments, err
}

func (c *Client) CreateComment(ctx context.Context, articleID int64, conteudo string, comentarioPaiID *int64) (model.Comentario, error) {
	body := struct {
		Conteudo        string `json:"conteudo"`
		ComentarioPaiID *int64 `json:"comentarioPaiId,omitempty"`
	}{Conteudo: conteudo, ComentarioPaiID: comentarioPaiID}

	var created model.Comentario
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/news/%d/comentarios", articleID), body, &created)
	return created, err
}

func (c *Client) UpdateComment(ctx context.Context, commentID int64, conteudo string) error {
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/comentarios/%d", commentID),
		map[string]string{"conteudo": conteudo}, nil)
}

func (c *Client) DeleteComment(ctx context.Context, commentID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/comentarios/%d", commentID), nil, nil)
}
