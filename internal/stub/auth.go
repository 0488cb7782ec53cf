package stub

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"anoa.com/portalnoticias/internal/model"
	"anoa.com/portalnoticias/pkg/validacao"
)

const contextUserKey = "user_id"

func (s *Server) issueToken(userID int64) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Server) parseToken(tokenString string) (int64, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("invalid token")
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return 0, fmt.Errorf("invalid claims")
	}
	return strconv.ParseInt(claims.Subject, 10, 64)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// subject's user id in the context.
func (s *Server) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "autenticação necessária"})
			return
		}
		userID, err := s.parseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token inválido ou expirado"})
			return
		}

		s.mu.Lock()
		_, exists := s.usuarios[userID]
		s.mu.Unlock()
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "usuário não encontrado"})
			return
		}

		c.Set(contextUserKey, userID)
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func (s *Server) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := s.currentUser(c)
		if user == nil || user.Papel != model.PapelAdministrador {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "acesso restrito a administradores"})
			return
		}
		c.Next()
	}
}

// currentUser returns a snapshot of the authenticated account, nil when the
// request carries no identity.
func (s *Server) currentUser(c *gin.Context) *usuarioConta {
	value, exists := c.Get(contextUserKey)
	if !exists {
		return nil
	}
	userID, ok := value.(int64)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user, exists := s.usuarios[userID]
	if !exists {
		return nil
	}
	copied := *user
	return &copied
}

type loginRequest struct {
	Login string `json:"login" binding:"required"`
	Senha string `json:"senha" binding:"required"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validacao.FormatValidationError(err)})
		return
	}

	s.mu.Lock()
	user := s.userByLogin(req.Login)
	s.mu.Unlock()
	if user == nil || bcrypt.CompareHashAndPassword(user.senhaHash, []byte(req.Senha)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login ou senha incorretos"})
		return
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "falha ao emitir token"})
		return
	}
	c.JSON(http.StatusOK, model.AuthResponse{Token: token, Usuario: user.Usuario})
}

type registerRequest struct {
	Nome   string `json:"nome" binding:"required"`
	Login  string `json:"login" binding:"required,min=3"`
	Email  string `json:"email" binding:"required,email"`
	Senha  string `json:"senha" binding:"required,min=6"`
	Perfil string `json:"perfil" binding:"required,oneof=estudante docente servidor bolsista visitante"`
}

var perfilToPapel = map[string]model.Papel{
	"estudante": model.PapelEstudante,
	"docente":   model.PapelDocente,
	"servidor":  model.PapelServidor,
	"bolsista":  model.PapelBolsista,
	"visitante": model.PapelVisitante,
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validacao.FormatValidationError(err)})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Senha), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "falha ao processar senha"})
		return
	}

	s.mu.Lock()
	if s.userByLogin(req.Login) != nil {
		s.mu.Unlock()
		c.JSON(http.StatusConflict, gin.H{"error": "login já está em uso"})
		return
	}
	if s.userByEmail(req.Email) != nil {
		s.mu.Unlock()
		c.JSON(http.StatusConflict, gin.H{"error": "email já está em uso"})
		return
	}
	user := &usuarioConta{
		Usuario: model.Usuario{
			ID:       s.allocID(),
			Login:    req.Login,
			Email:    req.Email,
			Nome:     s.sanitizer.Sanitize(req.Nome),
			Papel:    perfilToPapel[req.Perfil],
			CriadoEm: time.Now().UTC().Format(time.RFC3339),
		},
		senhaHash: hash,
	}
	s.usuarios[user.ID] = user
	s.mu.Unlock()

	token, err := s.issueToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "falha ao emitir token"})
		return
	}
	c.JSON(http.StatusCreated, model.AuthResponse{Token: token, Usuario: user.Usuario})
}

func (s *Server) handleLogout(c *gin.Context) {
	// Tokens are stateless; logout is a client-side concern.
	c.Status(http.StatusNoContent)
}

func (s *Server) handleProfile(c *gin.Context) {
	user := s.currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "autenticação necessária"})
		return
	}
	c.JSON(http.StatusOK, user.Usuario)
}

func (s *Server) handleForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validacao.FormatValidationError(err)})
		return
	}

	s.mu.Lock()
	user := s.userByEmail(req.Email)
	if user != nil {
		token := uuid.NewString()
		s.resetTokens[token] = user.ID
		// No mailer here; the token goes to the log instead.
		fmt.Printf("reset token para %s: %s\n", req.Email, token)
	}
	s.mu.Unlock()

	// Same answer whether or not the account exists.
	c.JSON(http.StatusOK, gin.H{"message": "se o email existir, um link de redefinição foi enviado"})
}

func (s *Server) handleResetPassword(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
		Senha string `json:"senha" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validacao.FormatValidationError(err)})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Senha), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "falha ao processar senha"})
		return
	}

	s.mu.Lock()
	userID, ok := s.resetTokens[req.Token]
	if ok {
		delete(s.resetTokens, req.Token)
		if user, exists := s.usuarios[userID]; exists {
			user.senhaHash = hash
		}
	}
	s.mu.Unlock()

	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token de redefinição inválido"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "senha redefinida com sucesso"})
}
