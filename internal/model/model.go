package model

// Papel is the role assigned to a portal user.
type Papel string

const (
	PapelEstudante     Papel = "ESTUDANTE"
	PapelDocente       Papel = "DOCENTE"
	PapelProfessor     Papel = "PROFESSOR"
	PapelServidor      Papel = "SERVIDOR"
	PapelTecnico       Papel = "TECNICO_ADMINISTRATIVO"
	PapelBolsista      Papel = "BOLSISTA"
	PapelAdministrador Papel = "ADMINISTRADOR"
	PapelVisitante     Papel = "VISITANTE"
)

// Categoria classifies an article.
type Categoria string

const (
	CategoriaEventos       Categoria = "EVENTOS"
	CategoriaOportunidades Categoria = "OPORTUNIDADES"
	CategoriaPesquisa      Categoria = "PESQUISA"
	CategoriaProjetos      Categoria = "PROJETOS"
	CategoriaAvisos        Categoria = "AVISOS"
	CategoriaOutros        Categoria = "OUTROS"
)

// TipoReacao is one reaction kind. Articles and comments have distinct
// closed enumerations; membership is enforced by the reaction engine against
// the subject's kind set, never by this type.
type TipoReacao string

const (
	ReacaoCurtida  TipoReacao = "CURTIDA"
	ReacaoAmei     TipoReacao = "AMEI"
	ReacaoTriste   TipoReacao = "TRISTE"
	ReacaoSurpreso TipoReacao = "SURPRESO"
	ReacaoParabens TipoReacao = "PARABENS"

	ReacaoGostei    TipoReacao = "GOSTEI"
	ReacaoNaoGostei TipoReacao = "NAO_GOSTEI"
)

// TiposReacaoArtigo returns the article reaction enumeration in display order.
func TiposReacaoArtigo() []TipoReacao {
	return []TipoReacao{ReacaoCurtida, ReacaoAmei, ReacaoTriste, ReacaoSurpreso, ReacaoParabens}
}

// TiposReacaoComentario returns the comment reaction enumeration (mutually
// exclusive like/dislike).
func TiposReacaoComentario() []TipoReacao {
	return []TipoReacao{ReacaoGostei, ReacaoNaoGostei}
}

// MinhaReacao is the current user's reaction against one subject. Both fields
// nil means no reaction. Whether this value has been resolved at all is
// tracked separately by the engine (loaded flag), not folded into nil.
type MinhaReacao struct {
	ID   *int64      `json:"id"`
	Tipo *TipoReacao `json:"tipo"`
}

// TipoSessao is the kind of one article body section.
type TipoSessao string

const (
	SessaoParagrafo TipoSessao = "PARAGRAFO"
	SessaoTopico    TipoSessao = "TOPICO"
	SessaoImagem    TipoSessao = "IMAGEM"
)

type ArtigoSessao struct {
	Ordem     int        `json:"ordem"`
	Tipo      TipoSessao `json:"tipo"`
	Texto     string     `json:"texto,omitempty"`
	ImagemURL string     `json:"imagemUrl,omitempty"`
}

type Artigo struct {
	ID          int64                `json:"id"`
	Titulo      string               `json:"titulo"`
	Slug        string               `json:"slug"`
	Resumo      string               `json:"resumo,omitempty"`
	CapaURL     string               `json:"capaUrl,omitempty"`
	Categoria   Categoria            `json:"categoria"`
	Publicado   bool                 `json:"publicado"`
	PublicadoEm string               `json:"publicadoEm,omitempty"`
	Sessoes     []ArtigoSessao       `json:"sessoes"`
	Reacoes     map[TipoReacao]int64 `json:"reacoes,omitempty"`
}

type ArtigoList struct {
	Items      []Artigo `json:"items"`
	NextCursor *int64   `json:"nextCursor,omitempty"`
	NextPage   *int64   `json:"nextPage,omitempty"`
}

type Autor struct {
	ID    int64  `json:"id"`
	Nome  string `json:"nome"`
	Login string `json:"login"`
}

// Comment content bounds, validated client-side before any network call.
const (
	ComentarioMinLen = 10
	ComentarioMaxLen = 500
)

// Comentario is one node of an article's comment tree. Storage keeps exactly
// one level of nesting: a reply to a reply lives flat under the original
// top-level comment, with RespondeAID recording which comment was answered.
type Comentario struct {
	ID              int64        `json:"id"`
	Conteudo        string       `json:"conteudo"`
	Autor           Autor        `json:"autor"`
	ComentarioPaiID *int64       `json:"comentarioPaiId,omitempty"`
	RespondeAID     *int64       `json:"respondeAId,omitempty"`
	Respostas       []Comentario `json:"respostas,omitempty"`
	CriadoEm        string       `json:"criadoEm,omitempty"`
}

type Usuario struct {
	ID           int64  `json:"id"`
	Login        string `json:"login"`
	Email        string `json:"email"`
	Nome         string `json:"nome"`
	Papel        Papel  `json:"papel"`
	IsApproved   *bool  `json:"isApproved,omitempty"`
	CriadoEm     string `json:"criadoEm,omitempty"`
	AtualizadoEm string `json:"atualizadoEm,omitempty"`
}

type AuthResponse struct {
	Token   string  `json:"token"`
	Usuario Usuario `json:"user"`
}

type TipoSolicitacao string

const (
	SolicitacaoProfessor TipoSolicitacao = "PROFESSOR"
	SolicitacaoTecnico   TipoSolicitacao = "TECNICO"
	SolicitacaoBolsista  TipoSolicitacao = "BOLSISTA"
)

type StatusSolicitacao string

const (
	SolicitacaoPendente  StatusSolicitacao = "PENDENTE"
	SolicitacaoAprovada  StatusSolicitacao = "APROVADA"
	SolicitacaoRejeitada StatusSolicitacao = "REJEITADA"
	// Legacy status still emitted by older backends.
	SolicitacaoAceita StatusSolicitacao = "ACEITA"
)

type Solicitacao struct {
	ID          int64             `json:"id"`
	UsuarioID   int64             `json:"usuarioId"`
	UsuarioNome string            `json:"usuarioNome,omitempty"`
	Tipo        TipoSolicitacao   `json:"tipo"`
	Status      StatusSolicitacao `json:"status"`
	Mensagem    string            `json:"mensagem,omitempty"`
	CriadoEm    string            `json:"criadoEm,omitempty"`
}
