package stub

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"anoa.com/portalnoticias/internal/model"
	"anoa.com/portalnoticias/pkg/validacao"
)

type reactionRequest struct {
	Tipo model.TipoReacao `json:"tipo" binding:"required"`
}

func validKind(kinds []model.TipoReacao, tipo model.TipoReacao) bool {
	for _, kind := range kinds {
		if kind == tipo {
			return true
		}
	}
	return false
}

func (s *Server) handleArticleCounts(c *gin.Context) {
	artigo := s.resolveArticle(c.Param("artigo"))
	if artigo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "artigo não encontrado"})
		return
	}
	counts, err := s.readCounts(c.Request.Context(), countsKey("artigo", artigo.ID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "falha ao consultar reações"})
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (s *Server) handleMyArticleReaction(c *gin.Context) {
	artigo := s.resolveArticle(c.Param("artigo"))
	if artigo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "artigo não encontrado"})
		return
	}
	user := s.currentUser(c)

	s.mu.Lock()
	rec, has := s.reacoesArtigo[artigo.ID][user.ID]
	s.mu.Unlock()
	if !has {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, model.MinhaReacao{ID: &rec.ID, Tipo: &rec.Tipo})
}

func (s *Server) handleCreateArticleReaction(c *gin.Context) {
	artigo := s.resolveArticle(c.Param("artigo"))
	if artigo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "artigo não encontrado"})
		return
	}

	var req reactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validacao.FormatValidationError(err)})
		return
	}
	if !validKind(model.TiposReacaoArtigo(), req.Tipo) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tipo de reação inválido"})
		return
	}

	user := s.currentUser(c)
	rec := s.applyReaction(c.Request.Context(), s.reacoesArtigo,
		countsKey("artigo", artigo.ID), artigo.ID, user.ID, req.Tipo)
	c.JSON(http.StatusCreated, model.MinhaReacao{ID: &rec.ID, Tipo: &rec.Tipo})
}

func (s *Server) handleDeleteArticleReaction(c *gin.Context) {
	artigo := s.resolveArticle(c.Param("artigo"))
	if artigo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "artigo não encontrado"})
		return
	}
	user := s.currentUser(c)
	if !s.removeReaction(c.Request.Context(), s.reacoesArtigo,
		countsKey("artigo", artigo.ID), artigo.ID, user.ID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "reação não encontrada"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleDeleteArticleReactionByID(c *gin.Context) {
	artigo := s.resolveArticle(c.Param("artigo"))
	if artigo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "artigo não encontrado"})
		return
	}
	reacaoID, err := strconv.ParseInt(c.Param("reacao"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id inválido"})
		return
	}
	user := s.currentUser(c)

	s.mu.Lock()
	rec, has := s.reacoesArtigo[artigo.ID][user.ID]
	s.mu.Unlock()
	if !has || rec.ID != reacaoID {
		c.JSON(http.StatusNotFound, gin.H{"error": "reação não encontrada"})
		return
	}
	s.removeReaction(c.Request.Context(), s.reacoesArtigo,
		countsKey("artigo", artigo.ID), artigo.ID, user.ID)
	c.Status(http.StatusNoContent)
}

// resolveComment checks that the addressed comment exists under the given
// article before any reaction operation proceeds.
func (s *Server) resolveComment(c *gin.Context, artigoID int64) (int64, bool) {
	commentID, err := strconv.ParseInt(c.Param("comentario"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id inválido"})
		return 0, false
	}
	s.mu.Lock()
	rec, exists := s.comentarios[commentID]
	s.mu.Unlock()
	if !exists || rec.ArtigoID != artigoID {
		c.JSON(http.StatusNotFound, gin.H{"error": "comentário não encontrado"})
		return 0, false
	}
	return commentID, true
}

func (s *Server) handleCommentCounts(c *gin.Context) {
	artigo := s.resolveArticle(c.Param("artigo"))
	if artigo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "artigo não encontrado"})
		return
	}
	commentID, ok := s.resolveComment(c, artigo.ID)
	if !ok {
		return
	}
	counts, err := s.readCounts(c.Request.Context(), countsKey("comentario", commentID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "falha ao consultar reações"})
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (s *Server) handleMyCommentReaction(c *gin.Context) {
	artigo := s.resolveArticle(c.Param("artigo"))
	if artigo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "artigo não encontrado"})
		return
	}
	commentID, ok := s.resolveComment(c, artigo.ID)
	if !ok {
		return
	}
	user := s.currentUser(c)

	s.mu.Lock()
	rec, has := s.reacoesComentario[commentID][user.ID]
	s.mu.Unlock()
	if !has {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, model.MinhaReacao{ID: &rec.ID, Tipo: &rec.Tipo})
}

func (s *Server) handleCreateCommentReaction(c *gin.Context) {
	artigo := s.resolveArticle(c.Param("artigo"))
	if artigo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "artigo não encontrado"})
		return
	}
	commentID, ok := s.resolveComment(c, artigo.ID)
	if !ok {
		return
	}

	var req reactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validacao.FormatValidationError(err)})
		return
	}
	if !validKind(model.TiposReacaoComentario(), req.Tipo) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tipo de reação inválido"})
		return
	}

	user := s.currentUser(c)
	rec := s.applyReaction(c.Request.Context(), s.reacoesComentario,
		countsKey("comentario", commentID), commentID, user.ID, req.Tipo)
	c.JSON(http.StatusCreated, model.MinhaReacao{ID: &rec.ID, Tipo: &rec.Tipo})
}

func (s *Server) handleDeleteCommentReaction(c *gin.Context) {
	artigo := s.resolveArticle(c.Param("artigo"))
	if artigo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "artigo não encontrado"})
		return
	}
	commentID, ok := s.resolveComment(c, artigo.ID)
	if !ok {
		return
	}
	user := s.currentUser(c)
	if !s.removeReaction(c.Request.Context(), s.reacoesComentario,
		countsKey("comentario", commentID), commentID, user.ID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "reação não encontrada"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleDeleteCommentReactionByID(c *gin.Context) {
	artigo := s.resolveArticle(c.Param("artigo"))
	if artigo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "artigo não encontrado"})
		return
	}
	commentID, ok := s.resolveComment(c, artigo.ID)
	if !ok {
		return
	}
	reacaoID, err := strconv.ParseInt(c.Param("reacao"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id inválido"})
		return
	}
	user := s.currentUser(c)

	s.mu.Lock()
	rec, has := s.reacoesComentario[commentID][user.ID]
	s.mu.Unlock()
	if !has || rec.ID != reacaoID {
		c.JSON(http.StatusNotFound, gin.H{"error": "reação não encontrada"})
		return
	}
	s.removeReaction(c.Request.Context(), s.reacoesComentario,
		countsKey("comentario", commentID), commentID, user.ID)
	c.Status(http.StatusNoContent)
}
