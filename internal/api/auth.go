package api

import (
	"context"
	"net/http"

	"anoa.com/portalnoticias/internal/model"
)

type RegisterInput struct {
	Nome  string `json:"nome"`
	Login string `json:"login"`
	Email string `json:"email"`
	Senha string `json:"senha"`
	// Lowercase on the wire: estudante, docente, servidor, bolsista, visitante.
	Perfil string `json:"perfil"`
}

func (c *Client) Login(ctx context.Context, login, senha string) (model.AuthResponse, error) {
	var resp model.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{"login": login, "senha": senha}, &resp)
	return resp, err
}

func (c *Client) Register(ctx context.Context, input RegisterInput) (model.AuthResponse, error) {
	var resp model.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", input, &resp)
	return resp, err
}

// Logout tells the backend to drop the session. Clearing the local token is
// the identity context's job, even when this call fails.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", struct{}{}, nil)
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/auth/forgot-password", map[string]string{"email": email}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, token, senha string) error {
	return c.do(ctx, http.MethodPost, "/auth/reset-password", map[string]string{"token": token, "senha": senha}, nil)
}

func (c *Client) Profile(ctx context.Context) (model.Usuario, error) {
	var user model.Usuario
	err := c.do(ctx, http.MethodGet, "/auth/profile", nil, &user)
	return user, err
}
