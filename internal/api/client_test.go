package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"anoa.com/portalnoticias/internal/model"
	"anoa.com/portalnoticias/pkg/apperror"
)

func TestAuthorizationHeaderFollowsToken(t *testing.T) {
	var gotAuth, gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"items":[]}`)
	}))
	defer server.Close()

	client := New(server.URL)
	if _, err := client.News(context.Background(), nil); err != nil {
		t.Fatalf("News: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q before login, want empty", gotAuth)
	}
	if gotRequestID == "" {
		t.Error("X-Request-ID missing")
	}

	client.SetToken("abc123")
	if _, err := client.News(context.Background(), nil); err != nil {
		t.Fatalf("News: %v", err)
	}
	if gotAuth != "Bearer abc123" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer abc123")
	}

	client.ClearToken()
	if _, err := client.News(context.Background(), nil); err != nil {
		t.Fatalf("News: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q after ClearToken, want empty", gotAuth)
	}
}

func TestErrorsMapToSentinels(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, apperror.ErrNotFound},
		{http.StatusUnauthorized, apperror.ErrUnauthorized},
		{http.StatusForbidden, apperror.ErrForbidden},
		{http.StatusTooManyRequests, apperror.ErrRateLimitExceeded},
		{http.StatusUnprocessableEntity, apperror.ErrBadRequest},
		{http.StatusInternalServerError, apperror.ErrInternal},
	}

	for _, tc := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(tc.status)
			fmt.Fprint(w, `{"error":"deu ruim"}`)
		}))
		client := New(server.URL)

		_, err := client.NewsBySlug(context.Background(), "qualquer")
		if !errors.Is(err, tc.want) {
			t.Errorf("status %d: err = %v, want %v", tc.status, err, tc.want)
		}
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Message != "deu ruim" {
			t.Errorf("status %d: err = %v, want APIError carrying the backend message", tc.status, err)
		}
		server.Close()
	}
}

func TestMyReactionNormalizesShapes(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		wantTipo *model.TipoReacao
		wantID   *int64
	}{
		{"null", `null`, nil, nil},
		{"bare string", `"CURTIDA"`, ptr(model.ReacaoCurtida), nil},
		{"object", `{"id":9,"tipo":"AMEI"}`, ptr(model.ReacaoAmei), ptrInt(9)},
		{"empty object", `{}`, nil, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, tc.body)
			}))
			defer server.Close()

			mine, err := New(server.URL).MyReaction(context.Background(), 1)
			if err != nil {
				t.Fatalf("MyReaction: %v", err)
			}
			if (mine.Tipo == nil) != (tc.wantTipo == nil) ||
				(mine.Tipo != nil && *mine.Tipo != *tc.wantTipo) {
				t.Errorf("Tipo = %v, want %v", mine.Tipo, tc.wantTipo)
			}
			if (mine.ID == nil) != (tc.wantID == nil) ||
				(mine.ID != nil && *mine.ID != *tc.wantID) {
				t.Errorf("ID = %v, want %v", mine.ID, tc.wantID)
			}
		})
	}
}

func TestSolicitacoesToleratesListShapes(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"bare array", `[{"id":1,"usuarioId":2,"tipo":"PROFESSOR","status":"PENDENTE"}]`},
		{"data wrapper", `{"data":[{"id":1,"usuarioId":2,"tipo":"PROFESSOR","status":"PENDENTE"}]}`},
		{"solicitacoes wrapper", `{"solicitacoes":[{"id":1,"usuarioId":2,"tipo":"PROFESSOR","status":"PENDENTE"}]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, tc.body)
			}))
			defer server.Close()

			got, err := New(server.URL).Solicitacoes(context.Background())
			if err != nil {
				t.Fatalf("Solicitacoes: %v", err)
			}
			if len(got) != 1 || got[0].Tipo != model.SolicitacaoProfessor {
				t.Errorf("got %+v, want one PROFESSOR request", got)
			}
		})
	}
}

func TestSlugAvailableToleratesBothShapes(t *testing.T) {
	for _, body := range []string{`true`, `{"available":true}`} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("slug"); got != "meu-artigo" {
				t.Errorf("slug query = %q", got)
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, body)
		}))

		ok, err := New(server.URL).SlugAvailable(context.Background(), "meu-artigo", nil)
		if err != nil {
			t.Fatalf("SlugAvailable(%s): %v", body, err)
		}
		if !ok {
			t.Errorf("SlugAvailable(%s) = false, want true", body)
		}
		server.Close()
	}
}

func ptr(t model.TipoReacao) *model.TipoReacao { return &t }

func ptrInt(v int64) *int64 { return &v }
