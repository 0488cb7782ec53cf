package avisos

import (
	"fmt"
	"io"
	"log"
)

// Notifier receives user-visible advisory messages. The engagement components
// never let a failure escape as an unhandled error to the hosting view; they
// convert it to an advisory here (or to silence, on read paths).
type Notifier interface {
	// Aviso reports a non-error advisory (wait, success confirmation, hint).
	Aviso(titulo, descricao string)
	// Erro reports a user-visible, non-fatal failure.
	Erro(titulo, descricao string)
}

// LogNotifier writes advisories to the standard logger. Used where no
// interactive surface exists.
type LogNotifier struct{}

func (LogNotifier) Aviso(titulo, descricao string) { log.Printf("[aviso] %s: %s", titulo, descricao) }
func (LogNotifier) Erro(titulo, descricao string)  { log.Printf("[erro] %s: %s", titulo, descricao) }

// ConsoleNotifier prints advisories to the given writer, one per line.
type ConsoleNotifier struct {
	Out io.Writer
}

func (n ConsoleNotifier) Aviso(titulo, descricao string) {
	fmt.Fprintf(n.Out, "• %s: %s\n", titulo, descricao)
}

func (n ConsoleNotifier) Erro(titulo, descricao string) {
	fmt.Fprintf(n.Out, "✗ %s: %s\n", titulo, descricao)
}
