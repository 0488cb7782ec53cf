package stub_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"anoa.com/portalnoticias/internal/api"
	"anoa.com/portalnoticias/internal/engagement/comments"
	"anoa.com/portalnoticias/internal/engagement/reaction"
	"anoa.com/portalnoticias/internal/identity"
	"anoa.com/portalnoticias/internal/model"
	"anoa.com/portalnoticias/internal/stub"
	"anoa.com/portalnoticias/pkg/avisos"
)

func newTestBackend(t *testing.T) *api.Client {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	server := stub.NewServer("test-secret", rdb)
	if err := server.Seed("admin", "admin123"); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	ts := httptest.NewServer(server.Router(""))
	t.Cleanup(ts.Close)
	return api.New(ts.URL)
}

func login(t *testing.T, client *api.Client) *identity.Context {
	t.Helper()
	ident := identity.NewContext(client)
	if err := ident.Login(context.Background(), "admin", "admin123"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	return ident
}

func firstArticleID(t *testing.T, client *api.Client) int64 {
	t.Helper()
	list, err := client.News(context.Background(), nil)
	if err != nil {
		t.Fatalf("News: %v", err)
	}
	if len(list.Items) == 0 {
		t.Fatal("seeded article missing from the feed")
	}
	return list.Items[0].ID
}

func waitLoaded(t *testing.T, e *reaction.Engine) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, loaded := e.Mine(); loaded {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("my-reaction state never resolved")
}

func TestArticleReactionRoundTrip(t *testing.T) {
	client := newTestBackend(t)
	ident := login(t, client)
	articleID := firstArticleID(t, client)

	e := reaction.NewArticleEngine(client, ident, avisos.LogNotifier{}, articleID)
	defer e.Close()
	waitLoaded(t, e)

	ctx := context.Background()
	e.LoadAggregate(ctx)
	if got := e.Aggregate()[model.ReacaoCurtida]; got != 0 {
		t.Fatalf("CURTIDA = %d before any reaction, want 0", got)
	}

	e.Toggle(ctx, model.ReacaoCurtida)
	if got := e.Aggregate()[model.ReacaoCurtida]; got != 1 {
		t.Errorf("CURTIDA = %d after toggle on, want 1", got)
	}
	mine, _ := e.Mine()
	if mine.Tipo == nil || *mine.Tipo != model.ReacaoCurtida {
		t.Errorf("mine = %+v, want CURTIDA", mine)
	}

	// Switching kind replaces the previous reaction server-side.
	e.Toggle(ctx, model.ReacaoAmei)
	counts := e.Aggregate()
	if counts[model.ReacaoCurtida] != 0 || counts[model.ReacaoAmei] != 1 {
		t.Errorf("counts = %v after switch, want AMEI 1 and CURTIDA 0", counts)
	}

	// Same kind again toggles off.
	e.Toggle(ctx, model.ReacaoAmei)
	if got := e.Aggregate()[model.ReacaoAmei]; got != 0 {
		t.Errorf("AMEI = %d after toggle off, want 0", got)
	}
	mine, _ = e.Mine()
	if mine.Tipo != nil {
		t.Errorf("mine = %+v after toggle off, want empty", mine)
	}
}

func TestReplyToReplyIsFlattened(t *testing.T) {
	client := newTestBackend(t)
	ident := login(t, client)
	articleID := firstArticleID(t, client)
	ctx := context.Background()

	store := comments.NewStore(comments.ClientAPI(client, articleID), ident, avisos.LogNotifier{})
	if err := store.CreateComment(ctx, "comentário inicial da discussão", nil); err != nil {
		t.Fatalf("CreateComment: %v", err)
	}
	root := store.Comments()[0]

	// A second account joins the thread.
	other := api.New(client.BaseURL())
	otherIdent := identity.NewContext(other)
	err := otherIdent.Register(ctx, api.RegisterInput{
		Nome: "Bruna Lima", Login: "bruna", Email: "bruna@portal.local",
		Senha: "senha123", Perfil: "estudante",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	otherStore := comments.NewStore(comments.ClientAPI(other, articleID), otherIdent, avisos.LogNotifier{})
	if err := otherStore.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := otherStore.CreateComment(ctx, "respondendo ao comentário inicial", &root.ID); err != nil {
		t.Fatalf("reply: %v", err)
	}

	// Admin answers bruna's nested reply.
	if err := store.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	reply := store.Comments()[0].Respostas[0]
	if err := store.CreateComment(ctx, "respondendo à resposta da bruna", &reply.ID); err != nil {
		t.Fatalf("reply to reply: %v", err)
	}

	tree := store.Comments()
	if len(tree) != 1 {
		t.Fatalf("top-level comments = %d, want 1 (nesting must stay flat)", len(tree))
	}
	if len(tree[0].Respostas) != 2 {
		t.Fatalf("replies = %d, want 2 flat replies", len(tree[0].Respostas))
	}
	nested := tree[0].Respostas[1]
	if nested.ComentarioPaiID == nil || *nested.ComentarioPaiID != root.ID {
		t.Errorf("reply-to-reply parent = %v, want top-level %d", nested.ComentarioPaiID, root.ID)
	}
	if nested.RespondeAID == nil || *nested.RespondeAID != reply.ID {
		t.Errorf("respondeA = %v, want the answered reply %d", nested.RespondeAID, reply.ID)
	}

	if rootID, ok := store.TopLevelParentOf(nested.ID); !ok || rootID != root.ID {
		t.Errorf("TopLevelParentOf(%d) = %d,%v, want %d,true", nested.ID, rootID, ok, root.ID)
	}
	handles := store.ParticipantHandles(root.ID)
	if len(handles) != 2 || handles[0] != "admin" || handles[1] != "bruna" {
		t.Errorf("ParticipantHandles = %v, want [admin bruna]", handles)
	}
}

func TestCommentReactionRoundTrip(t *testing.T) {
	client := newTestBackend(t)
	ident := login(t, client)
	articleID := firstArticleID(t, client)
	ctx := context.Background()

	store := comments.NewStore(comments.ClientAPI(client, articleID), ident, avisos.LogNotifier{})
	if err := store.CreateComment(ctx, "comentário para receber reações", nil); err != nil {
		t.Fatalf("CreateComment: %v", err)
	}
	commentID := store.Comments()[0].ID

	e := reaction.NewCommentEngine(client, ident, avisos.LogNotifier{}, articleID, commentID)
	defer e.Close()
	waitLoaded(t, e)

	e.Toggle(ctx, model.ReacaoGostei)
	if got := e.Aggregate()[model.ReacaoGostei]; got != 1 {
		t.Errorf("GOSTEI = %d, want 1", got)
	}

	// Article kinds are rejected on the comment surface before any request.
	e.Toggle(ctx, model.ReacaoCurtida)
	if got := e.Aggregate()[model.ReacaoGostei]; got != 1 {
		t.Errorf("GOSTEI = %d after invalid kind, want unchanged 1", got)
	}
}

func TestCommentValidationRejectedByBackend(t *testing.T) {
	client := newTestBackend(t)
	login(t, client)
	articleID := firstArticleID(t, client)

	// Bypass the store's client-side validation to prove the stub enforces
	// the same bounds.
	_, err := client.CreateComment(context.Background(), articleID, "curto", nil)
	if err == nil {
		t.Fatal("backend accepted a 5-character comment")
	}
}
