package stub

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"anoa.com/portalnoticias/internal/model"
	"anoa.com/portalnoticias/pkg/validacao"
)

func (s *Server) handleListUsers(c *gin.Context) {
	s.mu.Lock()
	users := make([]model.Usuario, 0, len(s.usuarios))
	for _, u := range s.usuarios {
		users = append(users, u.Usuario)
	}
	s.mu.Unlock()

	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	c.JSON(http.StatusOK, users)
}

type createUserRequest struct {
	Nome  string      `json:"nome" binding:"required"`
	Login string      `json:"login" binding:"required,min=3"`
	Email string      `json:"email" binding:"required,email"`
	Senha string      `json:"senha"`
	Papel model.Papel `json:"papel"`
}

func (s *Server) handleCreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validacao.FormatValidationError(err)})
		return
	}
	if req.Senha == "" {
		// Admin-created accounts get a throwaway password; the owner resets it.
		req.Senha = uuid.NewString()
	}
	if req.Papel == "" {
		req.Papel = model.PapelVisitante
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Senha), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "falha ao processar senha"})
		return
	}

	s.mu.Lock()
	if s.userByLogin(req.Login) != nil || s.userByEmail(req.Email) != nil {
		s.mu.Unlock()
		c.JSON(http.StatusConflict, gin.H{"error": "login ou email já está em uso"})
		return
	}
	user := &usuarioConta{
		Usuario: model.Usuario{
			ID:       s.allocID(),
			Login:    req.Login,
			Email:    req.Email,
			Nome:     s.sanitizer.Sanitize(req.Nome),
			Papel:    req.Papel,
			CriadoEm: time.Now().UTC().Format(time.RFC3339),
		},
		senhaHash: hash,
	}
	s.usuarios[user.ID] = user
	out := user.Usuario
	s.mu.Unlock()

	c.JSON(http.StatusCreated, out)
}

type updateUserRequest struct {
	Nome  *string `json:"nome"`
	Login *string `json:"login"`
	Email *string `json:"email"`
}

func (s *Server) handleUpdateUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id inválido"})
		return
	}
	caller := s.currentUser(c)
	if caller.ID != id && caller.Papel != model.PapelAdministrador {
		c.JSON(http.StatusForbidden, gin.H{"error": "você só pode editar o próprio perfil"})
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validacao.FormatValidationError(err)})
		return
	}

	s.mu.Lock()
	user, exists := s.usuarios[id]
	if !exists {
		s.mu.Unlock()
		c.JSON(http.StatusNotFound, gin.H{"error": "usuário não encontrado"})
		return
	}
	if req.Login != nil && *req.Login != user.Login {
		if s.userByLogin(*req.Login) != nil {
			s.mu.Unlock()
			c.JSON(http.StatusConflict, gin.H{"error": "login já está em uso"})
			return
		}
		user.Login = *req.Login
	}
	if req.Email != nil && *req.Email != user.Email {
		if s.userByEmail(*req.Email) != nil {
			s.mu.Unlock()
			c.JSON(http.StatusConflict, gin.H{"error": "email já está em uso"})
			return
		}
		user.Email = *req.Email
	}
	if req.Nome != nil {
		user.Nome = s.sanitizer.Sanitize(*req.Nome)
	}
	user.AtualizadoEm = time.Now().UTC().Format(time.RFC3339)
	out := user.Usuario
	s.mu.Unlock()

	c.JSON(http.StatusOK, out)
}

func (s *Server) handleUpdateUserRole(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id inválido"})
		return
	}

	var req struct {
		Papel model.Papel `json:"papel" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validacao.FormatValidationError(err)})
		return
	}

	s.mu.Lock()
	user, exists := s.usuarios[id]
	if !exists {
		s.mu.Unlock()
		c.JSON(http.StatusNotFound, gin.H{"error": "usuário não encontrado"})
		return
	}
	user.Papel = req.Papel
	user.AtualizadoEm = time.Now().UTC().Format(time.RFC3339)
	out := user.Usuario
	s.mu.Unlock()

	c.JSON(http.StatusOK, out)
}

// handleListSolicitacoes answers the caller's own requests; admins see all.
func (s *Server) handleListSolicitacoes(c *gin.Context) {
	caller := s.currentUser(c)

	s.mu.Lock()
	list := make([]model.Solicitacao, 0, len(s.solicitacoes))
	for _, sol := range s.solicitacoes {
		if caller.Papel == model.PapelAdministrador || sol.UsuarioID == caller.ID {
			list = append(list, *sol)
		}
	}
	s.mu.Unlock()

	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	c.JSON(http.StatusOK, list)
}

func (s *Server) handleListSolicitacoesPendentes(c *gin.Context) {
	s.mu.Lock()
	list := make([]model.Solicitacao, 0)
	for _, sol := range s.solicitacoes {
		if sol.Status == model.SolicitacaoPendente {
			list = append(list, *sol)
		}
	}
	s.mu.Unlock()

	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	c.JSON(http.StatusOK, gin.H{"data": list})
}

type createSolicitacaoRequest struct {
	Tipo     model.TipoSolicitacao `json:"tipo" binding:"required,oneof=PROFESSOR TECNICO BOLSISTA"`
	Mensagem string                `json:"mensagem"`
}

func (s *Server) handleCreateSolicitacao(c *gin.Context) {
	var req createSolicitacaoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validacao.FormatValidationError(err)})
		return
	}
	caller := s.currentUser(c)

	s.mu.Lock()
	for _, sol := range s.solicitacoes {
		if sol.UsuarioID == caller.ID && sol.Status == model.SolicitacaoPendente {
			s.mu.Unlock()
			c.JSON(http.StatusConflict, gin.H{"error": "você já possui uma solicitação pendente"})
			return
		}
	}
	sol := &model.Solicitacao{
		ID:          s.allocID(),
		UsuarioID:   caller.ID,
		UsuarioNome: caller.Nome,
		Tipo:        req.Tipo,
		Status:      model.SolicitacaoPendente,
		Mensagem:    s.sanitizer.Sanitize(req.Mensagem),
		CriadoEm:    time.Now().UTC().Format(time.RFC3339),
	}
	s.solicitacoes[sol.ID] = sol
	out := *sol
	s.mu.Unlock()

	c.JSON(http.StatusCreated, out)
}

var solicitacaoPapel = map[model.TipoSolicitacao]model.Papel{
	model.SolicitacaoProfessor: model.PapelDocente,
	model.SolicitacaoTecnico:   model.PapelTecnico,
	model.SolicitacaoBolsista:  model.PapelBolsista,
}

func (s *Server) handleAceitarSolicitacao(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id inválido"})
		return
	}

	s.mu.Lock()
	sol, exists := s.solicitacoes[id]
	if !exists {
		s.mu.Unlock()
		c.JSON(http.StatusNotFound, gin.H{"error": "solicitação não encontrada"})
		return
	}
	if sol.Status != model.SolicitacaoPendente {
		s.mu.Unlock()
		c.JSON(http.StatusConflict, gin.H{"error": "solicitação já resolvida"})
		return
	}
	sol.Status = model.SolicitacaoAprovada
	// Approval promotes the account to the requested role.
	if user, ok := s.usuarios[sol.UsuarioID]; ok {
		if papel, known := solicitacaoPapel[sol.Tipo]; known {
			user.Papel = papel
		}
		approved := true
		user.IsApproved = &approved
	}
	out := *sol
	s.mu.Unlock()

	c.JSON(http.StatusOK, out)
}

func (s *Server) handleRejeitarSolicitacao(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id inválido"})
		return
	}

	s.mu.Lock()
	sol, exists := s.solicitacoes[id]
	if !exists {
		s.mu.Unlock()
		c.JSON(http.StatusNotFound, gin.H{"error": "solicitação não encontrada"})
		return
	}
	if sol.Status != model.SolicitacaoPendente {
		s.mu.Unlock()
		c.JSON(http.StatusConflict, gin.H{"error": "solicitação já resolvida"})
		return
	}
	sol.Status = model.SolicitacaoRejeitada
	out := *sol
	s.mu.Unlock()

	c.JSON(http.StatusOK, out)
}
