package stub

import (
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"anoa.com/portalnoticias/internal/model"
	"anoa.com/portalnoticias/pkg/validacao"
)

const defaultPageSize = 10

type newsQuery struct {
	Limite    int    `form:"limite"`
	Pagina    int    `form:"pagina"`
	Busca     string `form:"busca"`
	Categoria string `form:"categoria"`
	AutorID   int64  `form:"autorId"`
}

func (s *Server) handleListNews(c *gin.Context) {
	s.listArticles(c, true, 0)
}

// listArticles serves both the public feed and the authoring dashboard. The
// dashboard includes drafts and, for non-admins, only the caller's own work.
func (s *Server) listArticles(c *gin.Context, publishedOnly bool, restrictToAutor int64) {
	var q newsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "parâmetros de busca inválidos"})
		return
	}
	if q.Limite <= 0 {
		q.Limite = defaultPageSize
	}
	if q.Pagina <= 0 {
		q.Pagina = 1
	}

	s.mu.Lock()
	var matched []*artigoRec
	for _, a := range s.artigos {
		if publishedOnly && !a.Publicado {
			continue
		}
		if restrictToAutor != 0 && a.AutorID != restrictToAutor {
			continue
		}
		if q.Categoria != "" && string(a.Categoria) != q.Categoria {
			continue
		}
		if q.AutorID != 0 && a.AutorID != q.AutorID {
			continue
		}
		if q.Busca != "" {
			needle := strings.ToLower(q.Busca)
			if !strings.Contains(strings.ToLower(a.Titulo), needle) &&
				!strings.Contains(strings.ToLower(a.Resumo), needle) {
				continue
			}
		}
		matched = append(matched, a)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CriadoEm.After(matched[j].CriadoEm)
	})

	start := (q.Pagina - 1) * q.Limite
	if start > len(matched) {
		start = len(matched)
	}
	end := start + q.Limite
	if end > len(matched) {
		end = len(matched)
	}

	items := make([]model.Artigo, 0, end-start)
	for _, a := range matched[start:end] {
		items = append(items, a.Artigo)
	}
	s.mu.Unlock()

	list := model.ArtigoList{Items: items}
	if end < len(matched) {
		next := int64(q.Pagina + 1)
		list.NextPage = &next
	}
	c.JSON(http.StatusOK, list)
}

// resolveArticle accepts either the slug or the numeric id, since nested
// engagement routes address articles by id on the same path segment.
func (s *Server) resolveArticle(ref string) *artigoRec {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a := s.artigoBySlug(ref); a != nil {
		return a
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return s.artigos[id]
	}
	return nil
}

func (s *Server) handleGetNews(c *gin.Context) {
	artigo := s.resolveArticle(c.Param("artigo"))
	if artigo == nil || !artigo.Publicado {
		c.JSON(http.StatusNotFound, gin.H{"error": "artigo não encontrado"})
		return
	}

	out := artigo.Artigo
	if counts, err := s.readCounts(c.Request.Context(), countsKey("artigo", artigo.ID)); err == nil {
		out.Reacoes = counts
	}
	c.JSON(http.StatusOK, out)
}

// handlePreviewNews serves drafts to their author (or an admin) ahead of
// publication.
func (s *Server) handlePreviewNews(c *gin.Context) {
	artigo := s.resolveArticle(c.Param("artigo"))
	if artigo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "artigo não encontrado"})
		return
	}
	user := s.currentUser(c)
	if user == nil || (artigo.AutorID != user.ID && user.Papel != model.PapelAdministrador) {
		c.JSON(http.StatusForbidden, gin.H{"error": "você não tem acesso a este rascunho"})
		return
	}
	c.JSON(http.StatusOK, artigo.Artigo)
}

// buildCommentTree assembles the one-level tree: top-level comments ordered
// by creation, each carrying its flat replies. Must be called with mu held.
func (s *Server) buildCommentTree(artigoID int64) []model.Comentario {
	toModel := func(rec *comentarioRec) model.Comentario {
		out := model.Comentario{
			ID:              rec.ID,
			Conteudo:        rec.Conteudo,
			ComentarioPaiID: rec.PaiID,
			RespondeAID:     rec.RespondeAID,
			CriadoEm:        rec.CriadoEm.UTC().Format(time.RFC3339),
		}
		if autor, exists := s.usuarios[rec.AutorID]; exists {
			out.Autor = model.Autor{ID: autor.ID, Nome: autor.Nome, Login: autor.Login}
		}
		return out
	}

	var roots []*comentarioRec
	replies := make(map[int64][]*comentarioRec)
	for _, rec := range s.comentarios {
		if rec.ArtigoID != artigoID {
			continue
		}
		if rec.PaiID == nil {
			roots = append(roots, rec)
		} else {
			replies[*rec.PaiID] = append(replies[*rec.PaiID], rec)
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].CriadoEm.Before(roots[j].CriadoEm) })

	tree := make([]model.Comentario, 0, len(roots))
	for _, root := range roots {
		node := toModel(root)
		children := replies[root.ID]
		sort.Slice(children, func(i, j int) bool { return children[i].CriadoEm.Before(children[j].CriadoEm) })
		for _, child := range children {
			node.Respostas = append(node.Respostas, toModel(child))
		}
		tree = append(tree, node)
	}
	return tree
}

func (s *Server) handleListComments(c *gin.Context) {
	artigo := s.resolveArticle(c.Param("artigo"))
	if artigo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "artigo não encontrado"})
		return
	}

	s.mu.Lock()
	tree := s.buildCommentTree(artigo.ID)
	s.mu.Unlock()
	c.JSON(http.StatusOK, tree)
}

type createCommentRequest struct {
	Conteudo        string `json:"conteudo" binding:"required,min=10,max=500"`
	ComentarioPaiID *int64 `json:"comentarioPaiId"`
}

func (s *Server) handleCreateComment(c *gin.Context) {
	artigo := s.resolveArticle(c.Param("artigo"))
	if artigo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "artigo não encontrado"})
		return
	}

	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validacao.FormatValidationError(err)})
		return
	}
	user := s.currentUser(c)

	s.mu.Lock()
	// Nesting is capped at one level: replying to a reply reparents the new
	// comment under the top-level ancestor and records the actual target.
	var paiID, respondeA *int64
	if req.ComentarioPaiID != nil {
		pai, exists := s.comentarios[*req.ComentarioPaiID]
		if !exists || pai.ArtigoID != artigo.ID {
			s.mu.Unlock()
			c.JSON(http.StatusNotFound, gin.H{"error": "comentário pai não encontrado"})
			return
		}
		if pai.PaiID != nil {
			paiID = pai.PaiID
			target := pai.ID
			respondeA = &target
		} else {
			target := pai.ID
			paiID = &target
		}
	}

	rec := &comentarioRec{
		ID:          s.allocID(),
		ArtigoID:    artigo.ID,
		AutorID:     user.ID,
		Conteudo:    s.sanitizer.Sanitize(req.Conteudo),
		PaiID:       paiID,
		RespondeAID: respondeA,
		CriadoEm:    time.Now(),
	}
	s.comentarios[rec.ID] = rec

	created := model.Comentario{
		ID:              rec.ID,
		Conteudo:        rec.Conteudo,
		Autor:           model.Autor{ID: user.ID, Nome: user.Nome, Login: user.Login},
		ComentarioPaiID: rec.PaiID,
		RespondeAID:     rec.RespondeAID,
		CriadoEm:        rec.CriadoEm.UTC().Format(time.RFC3339),
	}
	s.mu.Unlock()

	c.JSON(http.StatusCreated, created)
}

type updateCommentRequest struct {
	Conteudo string `json:"conteudo" binding:"required,min=10,max=500"`
}

func (s *Server) handleUpdateComment(c *gin.Context) {
	commentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id inválido"})
		return
	}

	var req updateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validacao.FormatValidationError(err)})
		return
	}
	user := s.currentUser(c)

	s.mu.Lock()
	rec, exists := s.comentarios[commentID]
	if !exists {
		s.mu.Unlock()
		c.JSON(http.StatusNotFound, gin.H{"error": "comentário não encontrado"})
		return
	}
	if rec.AutorID != user.ID {
		s.mu.Unlock()
		c.JSON(http.StatusForbidden, gin.H{"error": "apenas o autor pode editar o comentário"})
		return
	}
	rec.Conteudo = s.sanitizer.Sanitize(req.Conteudo)
	s.mu.Unlock()

	c.Status(http.StatusNoContent)
}

func (s *Server) handleDeleteComment(c *gin.Context) {
	commentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id inválido"})
		return
	}
	user := s.currentUser(c)

	s.mu.Lock()
	rec, exists := s.comentarios[commentID]
	if !exists {
		s.mu.Unlock()
		c.JSON(http.StatusNotFound, gin.H{"error": "comentário não encontrado"})
		return
	}
	if rec.AutorID != user.ID && user.Papel != model.PapelAdministrador {
		s.mu.Unlock()
		c.JSON(http.StatusForbidden, gin.H{"error": "você não pode remover este comentário"})
		return
	}

	removed := []int64{rec.ID}
	if rec.PaiID == nil {
		// Removing a top-level comment takes its replies with it.
		for id, other := range s.comentarios {
			if other.PaiID != nil && *other.PaiID == rec.ID {
				removed = append(removed, id)
			}
		}
	}
	for _, id := range removed {
		delete(s.comentarios, id)
		delete(s.reacoesComentario, id)
	}
	s.mu.Unlock()

	// Orphaned tallies are dropped alongside the rows.
	for _, id := range removed {
		if err := s.rdb.Del(c.Request.Context(), countsKey("comentario", id)).Err(); err != nil {
			log.Printf("failed to drop counts for comment %d: %v", id, err)
		}
	}
	c.Status(http.StatusNoContent)
}
