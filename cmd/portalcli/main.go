// portalcli is an interactive terminal client for the news portal, focused on
// the engagement flows: reading articles, reacting and commenting.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"anoa.com/portalnoticias/internal/api"
	"anoa.com/portalnoticias/internal/config"
	"anoa.com/portalnoticias/internal/engagement/comments"
	"anoa.com/portalnoticias/internal/engagement/mention"
	"anoa.com/portalnoticias/internal/engagement/reaction"
	"anoa.com/portalnoticias/internal/identity"
	"anoa.com/portalnoticias/internal/model"
	"anoa.com/portalnoticias/pkg/avisos"
)

type app struct {
	cfg      *config.Config
	client   *api.Client
	ident    *identity.Context
	notifier avisos.Notifier
	in       *bufio.Scanner

	article  *model.Artigo
	engine   *reaction.Engine
	store    *comments.Store
	composer *mention.Composer
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	a := &app{
		cfg:      cfg,
		client:   api.New(cfg.APIBaseURL),
		notifier: &avisos.ConsoleNotifier{Out: os.Stdout},
		in:       bufio.NewScanner(os.Stdin),
	}
	a.ident = identity.NewContext(a.client)

	fmt.Printf("portal de notícias (%s)\n", cfg.APIBaseURL)
	fmt.Println(`digite "ajuda" para ver os comandos`)

	ctx := context.Background()
	for {
		fmt.Print(a.prompt())
		if !a.in.Scan() {
			break
		}
		line := strings.TrimSpace(a.in.Text())
		if line == "" {
			continue
		}
		if line == "sair" {
			break
		}
		a.dispatch(ctx, line)
	}
	a.closeArticle()
}

func (a *app) prompt() string {
	if snap := a.ident.Snapshot(); snap.Authenticated {
		return fmt.Sprintf("%s> ", snap.Login)
	}
	return "> "
}

func (a *app) dispatch(ctx context.Context, line string) {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "ajuda":
		a.printHelp()
	case "login":
		a.cmdLogin(ctx, args)
	case "logout":
		a.ident.Logout(ctx)
		fmt.Println("sessão encerrada")
	case "news":
		a.cmdNews(ctx, args)
	case "abrir":
		a.cmdOpen(ctx, args)
	case "reagir":
		a.cmdReact(ctx, args)
	case "comentarios":
		a.cmdComments()
	case "comentar":
		a.cmdComment(ctx)
	case "responder":
		a.cmdReply(ctx, args)
	case "editar":
		a.cmdEdit(ctx, args)
	case "excluir":
		a.cmdDelete(ctx, args)
	default:
		fmt.Printf("comando desconhecido: %s\n", cmd)
	}
}

func (a *app) printHelp() {
	fmt.Println(`comandos:
  login <login> <senha>   autenticar
  logout                  encerrar sessão
  news [busca]            listar artigos publicados
  abrir <slug|id>         abrir um artigo
  reagir <tipo>           alternar reação no artigo aberto
  comentarios             listar comentários do artigo aberto
  comentar                escrever um comentário
  responder <id>          responder a um comentário
  editar <id>             editar um comentário próprio
  excluir <id>            remover um comentário
  sair`)
}

func (a *app) cmdLogin(ctx context.Context, args []string) {
	if len(args) != 2 {
		fmt.Println("uso: login <login> <senha>")
		return
	}
	if err := a.ident.Login(ctx, args[0], args[1]); err != nil {
		fmt.Printf("falha no login: %v\n", err)
		return
	}
	fmt.Printf("bem-vindo, %s\n", a.ident.Snapshot().Nome)
}

func (a *app) cmdNews(ctx context.Context, args []string) {
	filter := &api.NewsFilter{Limite: 20}
	if len(args) > 0 {
		filter.Busca = strings.Join(args, " ")
	}
	list, err := a.client.News(ctx, filter)
	if err != nil {
		fmt.Printf("falha ao listar artigos: %v\n", err)
		return
	}
	for _, artigo := range list.Items {
		fmt.Printf("  [%d] %s (%s)\n", artigo.ID, artigo.Titulo, artigo.Slug)
	}
	if len(list.Items) == 0 {
		fmt.Println("  nenhum artigo encontrado")
	}
}

func (a *app) cmdOpen(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("uso: abrir <slug|id>")
		return
	}
	artigo, err := a.client.NewsBySlug(ctx, args[0])
	if err != nil {
		fmt.Printf("falha ao abrir artigo: %v\n", err)
		return
	}

	a.closeArticle()
	a.article = &artigo
	a.engine = reaction.NewArticleEngine(a.client, a.ident, a.notifier, artigo.ID,
		reaction.WithRetry(a.cfg.ReactionRetryBase, a.cfg.ReactionRetryAttempts))
	a.store = comments.NewStore(comments.ClientAPI(a.client, artigo.ID), a.ident, a.notifier)
	a.composer = mention.NewComposer(a.store)

	a.engine.LoadAggregate(ctx)
	if err := a.store.Load(ctx); err != nil {
		fmt.Printf("falha ao carregar comentários: %v\n", err)
	}

	fmt.Printf("%s\n\n", artigo.Titulo)
	for _, sessao := range artigo.Sessoes {
		if sessao.Texto != "" {
			fmt.Println(sessao.Texto)
		}
	}
	a.printReactions()
	fmt.Printf("%d comentário(s)\n", a.store.Total())
}

func (a *app) closeArticle() {
	if a.engine != nil {
		a.engine.Close()
	}
	a.article = nil
	a.engine = nil
	a.store = nil
	a.composer = nil
}

func (a *app) requireArticle() bool {
	if a.article == nil {
		fmt.Println("abra um artigo primeiro")
		return false
	}
	return true
}

func (a *app) printReactions() {
	counts := a.engine.Aggregate()
	var parts []string
	for _, kind := range a.engine.Kinds() {
		parts = append(parts, fmt.Sprintf("%s %d", kind, counts[kind]))
	}
	line := strings.Join(parts, "  ")
	if mine, loaded := a.engine.Mine(); loaded && mine.Tipo != nil {
		line += fmt.Sprintf("  (sua reação: %s)", *mine.Tipo)
	}
	fmt.Println(line)
}

func (a *app) cmdReact(ctx context.Context, args []string) {
	if !a.requireArticle() {
		return
	}
	if len(args) != 1 {
		fmt.Println("uso: reagir <tipo>")
		return
	}
	a.engine.Toggle(ctx, model.TipoReacao(strings.ToUpper(args[0])))
	a.printReactions()
}

func (a *app) cmdComments() {
	if !a.requireArticle() {
		return
	}
	for _, comment := range a.store.Comments() {
		fmt.Printf("  [%d] %s: %s\n", comment.ID, comment.Autor.Login, comment.Conteudo)
		for _, reply := range comment.Respostas {
			fmt.Printf("      [%d] %s: %s\n", reply.ID, reply.Autor.Login, reply.Conteudo)
		}
	}
	fmt.Printf("%d comentário(s)\n", a.store.Total())
}

func (a *app) readLine(prompt string) (string, bool) {
	fmt.Print(prompt)
	if !a.in.Scan() {
		return "", false
	}
	return a.in.Text(), true
}

func (a *app) cmdComment(ctx context.Context) {
	if !a.requireArticle() {
		return
	}
	text, ok := a.readLine("comentário: ")
	if !ok {
		return
	}
	_ = a.store.CreateComment(ctx, strings.TrimSpace(text), nil)
}

// cmdReply drives the composer: the draft starts with the protected @mention
// prefix, and an @token at the end of the typed text offers thread-scoped
// completions.
func (a *app) cmdReply(ctx context.Context, args []string) {
	if !a.requireArticle() {
		return
	}
	if len(args) != 1 {
		fmt.Println("uso: responder <id>")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Println("id inválido")
		return
	}
	if !a.composer.BeginReply(id) {
		fmt.Println("comentário não encontrado")
		return
	}
	defer a.composer.CancelReply()

	text, ok := a.readLine(a.composer.Prefix())
	if !ok {
		return
	}
	a.composer.SetDraft(a.composer.Prefix() + text)

	if a.composer.Showing() && len(a.composer.Suggestions()) > 0 {
		fmt.Printf("participantes: %s\n", strings.Join(a.composer.Suggestions(), ", "))
		if choice, ok := a.readLine("completar com (ENTER ignora): "); ok {
			choice = strings.TrimSpace(choice)
			if choice != "" {
				a.composer.Accept(choice)
			}
		}
	}

	replyTo, _ := a.composer.ReplyTo()
	_ = a.store.CreateComment(ctx, strings.TrimSpace(a.composer.Draft()), &replyTo)
}

func (a *app) cmdEdit(ctx context.Context, args []string) {
	if !a.requireArticle() {
		return
	}
	if len(args) != 1 {
		fmt.Println("uso: editar <id>")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Println("id inválido")
		return
	}
	comment := a.store.FindByID(id)
	if comment == nil {
		fmt.Println("comentário não encontrado")
		return
	}
	if !comments.CanEdit(comment, a.ident.Snapshot()) {
		fmt.Println("apenas o autor pode editar o comentário")
		return
	}
	text, ok := a.readLine("novo texto: ")
	if !ok {
		return
	}
	_ = a.store.UpdateComment(ctx, id, strings.TrimSpace(text))
}

func (a *app) cmdDelete(ctx context.Context, args []string) {
	if !a.requireArticle() {
		return
	}
	if len(args) != 1 {
		fmt.Println("uso: excluir <id>")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Println("id inválido")
		return
	}
	comment := a.store.FindByID(id)
	if comment == nil {
		fmt.Println("comentário não encontrado")
		return
	}
	if !comments.CanDelete(comment, a.ident.Snapshot()) {
		fmt.Println("você não pode remover este comentário")
		return
	}
	_ = a.store.DeleteComment(ctx, id)
}
