package stub

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"anoa.com/portalnoticias/internal/model"
	"anoa.com/portalnoticias/pkg/validacao"
)

// RequirePublisher gates the authoring surface: admins and approved
// non-visitor accounts may manage articles.
func (s *Server) RequirePublisher() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := s.currentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "autenticação necessária"})
			return
		}
		if user.Papel == model.PapelAdministrador {
			c.Next()
			return
		}
		if user.Papel == model.PapelVisitante || user.IsApproved == nil || !*user.IsApproved {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "sua conta não pode publicar artigos"})
			return
		}
		c.Next()
	}
}

func (s *Server) handleManageList(c *gin.Context) {
	user := s.currentUser(c)
	restrict := user.ID
	if user.Papel == model.PapelAdministrador {
		restrict = 0
	}
	s.listArticles(c, false, restrict)
}

type articleRequest struct {
	Titulo    *string              `json:"titulo"`
	Slug      *string              `json:"slug"`
	Resumo    *string              `json:"resumo"`
	CapaURL   *string              `json:"capaUrl"`
	Categoria *model.Categoria     `json:"categoria"`
	Publicado *bool                `json:"publicado"`
	Sessoes   []model.ArtigoSessao `json:"artigoSessoes"`
}

func (s *Server) sanitizeSessoes(sessoes []model.ArtigoSessao) []model.ArtigoSessao {
	out := make([]model.ArtigoSessao, len(sessoes))
	for i, sessao := range sessoes {
		sessao.Texto = s.sanitizer.Sanitize(sessao.Texto)
		out[i] = sessao
	}
	return out
}

func (s *Server) handleCreateArticle(c *gin.Context) {
	var req articleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validacao.FormatValidationError(err)})
		return
	}
	if req.Titulo == nil || *req.Titulo == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Título é obrigatório"})
		return
	}
	user := s.currentUser(c)

	s.mu.Lock()
	base := slugify(*req.Titulo)
	if req.Slug != nil && *req.Slug != "" {
		base = slugify(*req.Slug)
	}

	artigo := &artigoRec{
		Artigo: model.Artigo{
			ID:        s.allocID(),
			Titulo:    s.sanitizer.Sanitize(*req.Titulo),
			Slug:      s.uniqueSlug(base, 0),
			Categoria: model.CategoriaOutros,
			Sessoes:   s.sanitizeSessoes(req.Sessoes),
		},
		AutorID:  user.ID,
		CriadoEm: time.Now(),
	}
	if req.Resumo != nil {
		artigo.Resumo = s.sanitizer.Sanitize(*req.Resumo)
	}
	if req.CapaURL != nil {
		artigo.CapaURL = *req.CapaURL
	}
	if req.Categoria != nil {
		artigo.Categoria = *req.Categoria
	}
	if req.Publicado != nil && *req.Publicado {
		artigo.Publicado = true
		artigo.PublicadoEm = time.Now().UTC().Format(time.RFC3339)
	}
	s.artigos[artigo.ID] = artigo
	out := artigo.Artigo
	s.mu.Unlock()

	c.JSON(http.StatusCreated, out)
}

// manageTarget resolves the article and enforces ownership (admins see all).
func (s *Server) manageTarget(c *gin.Context) *artigoRec {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id inválido"})
		return nil
	}
	user := s.currentUser(c)

	s.mu.Lock()
	artigo, exists := s.artigos[id]
	s.mu.Unlock()
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "artigo não encontrado"})
		return nil
	}
	if artigo.AutorID != user.ID && user.Papel != model.PapelAdministrador {
		c.JSON(http.StatusForbidden, gin.H{"error": "você não pode gerenciar este artigo"})
		return nil
	}
	return artigo
}

func (s *Server) handleManageGet(c *gin.Context) {
	artigo := s.manageTarget(c)
	if artigo == nil {
		return
	}
	c.JSON(http.StatusOK, artigo.Artigo)
}

func (s *Server) handleSlugAvailable(c *gin.Context) {
	slug := c.Query("slug")
	if slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slug é obrigatório"})
		return
	}
	var ignoreID int64
	if raw := c.Query("ignoreId"); raw != "" {
		ignoreID, _ = strconv.ParseInt(raw, 10, 64)
	}

	s.mu.Lock()
	available := true
	for _, a := range s.artigos {
		if a.Slug == slug && a.ID != ignoreID {
			available = false
			break
		}
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"available": available})
}

func (s *Server) handleUpdateArticle(c *gin.Context) {
	artigo := s.manageTarget(c)
	if artigo == nil {
		return
	}

	var req articleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validacao.FormatValidationError(err)})
		return
	}

	s.mu.Lock()
	if req.Titulo != nil {
		artigo.Titulo = s.sanitizer.Sanitize(*req.Titulo)
	}
	if req.Slug != nil && *req.Slug != "" {
		artigo.Slug = s.uniqueSlug(slugify(*req.Slug), artigo.ID)
	}
	if req.Resumo != nil {
		artigo.Resumo = s.sanitizer.Sanitize(*req.Resumo)
	}
	if req.CapaURL != nil {
		artigo.CapaURL = *req.CapaURL
	}
	if req.Categoria != nil {
		artigo.Categoria = *req.Categoria
	}
	if req.Sessoes != nil {
		artigo.Sessoes = s.sanitizeSessoes(req.Sessoes)
	}
	if req.Publicado != nil {
		if *req.Publicado && !artigo.Publicado {
			artigo.PublicadoEm = time.Now().UTC().Format(time.RFC3339)
		}
		artigo.Publicado = *req.Publicado
	}
	out := artigo.Artigo
	s.mu.Unlock()

	c.JSON(http.StatusOK, out)
}

func (s *Server) handleDeleteArticle(c *gin.Context) {
	artigo := s.manageTarget(c)
	if artigo == nil {
		return
	}

	s.mu.Lock()
	var comments []int64
	for id, rec := range s.comentarios {
		if rec.ArtigoID == artigo.ID {
			comments = append(comments, id)
		}
	}
	for _, id := range comments {
		delete(s.comentarios, id)
		delete(s.reacoesComentario, id)
	}
	delete(s.reacoesArtigo, artigo.ID)
	delete(s.artigos, artigo.ID)
	s.mu.Unlock()

	keys := []string{countsKey("artigo", artigo.ID)}
	for _, id := range comments {
		keys = append(keys, countsKey("comentario", id))
	}
	s.rdb.Del(c.Request.Context(), keys...)

	c.Status(http.StatusNoContent)
}
