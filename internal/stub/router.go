package stub

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Router wires every portal endpoint onto a gin engine. The route shapes
// mirror the production backend so the facade client works against either.
func (s *Server) Router(allowedOrigins string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	setupCORS(router, allowedOrigins)

	auth := router.Group("/auth")
	{
		auth.POST("/login", s.handleLogin)
		auth.POST("/register", s.handleRegister)
		auth.POST("/logout", s.handleLogout)
		auth.POST("/forgot-password", s.handleForgotPassword)
		auth.POST("/reset-password", s.handleResetPassword)
		auth.GET("/profile", s.RequireAuth(), s.handleProfile)
	}

	// Public reading surface. The :artigo segment accepts slug or id.
	router.GET("/news", s.handleListNews)
	router.GET("/news/:artigo", s.handleGetNews)
	router.GET("/news/:artigo/reacoes", s.handleArticleCounts)
	router.GET("/news/:artigo/comentarios", s.handleListComments)
	router.GET("/news/:artigo/comentarios/:comentario/reacoes", s.handleCommentCounts)

	engaged := router.Group("", s.RequireAuth())
	{
		engaged.GET("/news/:artigo/preview", s.handlePreviewNews)

		engaged.GET("/news/:artigo/reacao", s.handleMyArticleReaction)
		engaged.POST("/news/:artigo/reacoes", s.handleCreateArticleReaction)
		engaged.DELETE("/news/:artigo/reacoes", s.handleDeleteArticleReaction)
		engaged.DELETE("/news/:artigo/reacoes/:reacao", s.handleDeleteArticleReactionByID)

		engaged.POST("/news/:artigo/comentarios", s.handleCreateComment)
		engaged.PATCH("/comentarios/:id", s.handleUpdateComment)
		engaged.DELETE("/comentarios/:id", s.handleDeleteComment)

		engaged.GET("/news/:artigo/comentarios/:comentario/reacao", s.handleMyCommentReaction)
		engaged.POST("/news/:artigo/comentarios/:comentario/reacoes", s.handleCreateCommentReaction)
		engaged.DELETE("/news/:artigo/comentarios/:comentario/reacoes", s.handleDeleteCommentReaction)
		engaged.DELETE("/news/:artigo/comentarios/:comentario/reacoes/:reacao", s.handleDeleteCommentReactionByID)

		gerenciar := engaged.Group("/gerenciar", s.RequirePublisher())
		{
			gerenciar.GET("/artigos", s.handleManageList)
			gerenciar.POST("/artigos", s.handleCreateArticle)
			gerenciar.GET("/artigos/slug-available", s.handleSlugAvailable)
			gerenciar.GET("/artigos/:id", s.handleManageGet)
			gerenciar.PATCH("/artigos/:id", s.handleUpdateArticle)
			gerenciar.DELETE("/artigos/:id", s.handleDeleteArticle)
		}

		engaged.GET("/users", s.RequireAdmin(), s.handleListUsers)
		engaged.PATCH("/users/:id", s.handleUpdateUser)
		engaged.PATCH("/users/:id/role", s.RequireAdmin(), s.handleUpdateUserRole)
		engaged.POST("/admin/users", s.RequireAdmin(), s.handleCreateUser)

		engaged.GET("/solicitacoes", s.handleListSolicitacoes)
		engaged.POST("/solicitacoes", s.handleCreateSolicitacao)
		engaged.GET("/solicitacoes/pending", s.RequireAdmin(), s.handleListSolicitacoesPendentes)
		engaged.PATCH("/solicitacoes/:id/aceitar", s.RequireAdmin(), s.handleAceitarSolicitacao)
		engaged.PATCH("/solicitacoes/:id/rejeitar", s.RequireAdmin(), s.handleRejeitarSolicitacao)
	}

	return router
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	origins := []string{"http://localhost:5173"}
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
