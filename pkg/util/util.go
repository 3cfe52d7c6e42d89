package util

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/xplshn/omnia/pkg/config"
	"github.com/xplshn/omnia/pkg/errs"
	"github.com/xplshn/omnia/pkg/token"
)

const (
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorReset  = "\033[0m"
)

// SourceFileRecord tracks the name and content of a single source file.
type SourceFileRecord struct {
	Name    string
	Content []rune
}

// Printer renders diagnostics for a set of source files. Token positions
// index into Files through Token.FileIndex.
type Printer struct {
	Out   io.Writer
	Files []SourceFileRecord
	Color bool
}

func NewPrinter(out io.Writer, files ...SourceFileRecord) *Printer {
	return &Printer{Out: out, Files: files, Color: IsTerminal(out)}
}

// IsTerminal reports whether w is a terminal that understands ANSI colors.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// AddFile registers a source file and returns its index.
func (p *Printer) AddFile(name string, content []byte) int {
	p.Files = append(p.Files, SourceFileRecord{Name: name, Content: []rune(string(content))})
	return len(p.Files) - 1
}

func (p *Printer) paint(color, s string) string {
	if !p.Color {
		return s
	}
	return color + s + colorReset
}

// findFileAndLine converts a global token to a file-specific location
func (p *Printer) findFileAndLine(tok token.Token) (filename string, line, col int) {
	if tok.FileIndex < 0 || tok.FileIndex >= len(p.Files) {
		return "unknown", tok.Line, tok.Column
	}
	return p.Files[tok.FileIndex].Name, tok.Line, tok.Column
}

// printErrorLine prints the source line and a caret indicating the error position
func (p *Printer) printErrorLine(tok token.Token) {
	if tok.FileIndex < 0 || tok.FileIndex >= len(p.Files) || tok.Line == 0 {
		return
	}

	content := p.Files[tok.FileIndex].Content
	lineNum := tok.Line
	lineStart := 0
	for i, r := range content {
		if lineNum <= 1 {
			break
		}
		if r == '\n' {
			lineNum--
			lineStart = i + 1
		}
	}
	if lineNum > 1 {
		return
	}

	lineEnd := len(content)
	for i := lineStart; i < len(content); i++ {
		if content[i] == '\n' {
			lineEnd = i
			break
		}
	}

	fmt.Fprintf(p.Out, "  %s\n", string(content[lineStart:lineEnd]))

	caret := "^"
	if tok.Len > 1 {
		caret += strings.Repeat("~", tok.Len-1)
	}
	fmt.Fprintf(p.Out, "  %s%s\n", strings.Repeat(" ", max(tok.Column-1, 0)), p.paint(colorGreen, caret))
}

func (p *Printer) prefix(tok token.Token) string {
	if tok.IsZero() {
		return ""
	}
	filename, line, col := p.findFileAndLine(tok)
	return fmt.Sprintf("%s:%d:%d: ", filename, line, col)
}

// Error prints a formatted error message at tok.
func (p *Printer) Error(tok token.Token, format string, args ...interface{}) {
	fmt.Fprintf(p.Out, "%s%s ", p.prefix(tok), p.paint(colorRed, "error:"))
	fmt.Fprintf(p.Out, format, args...)
	fmt.Fprintln(p.Out)
	p.printErrorLine(tok)
}

// Warn prints a formatted warning message if the corresponding warning is enabled
func (p *Printer) Warn(cfg *config.Config, wt config.Warning, tok token.Token, format string, args ...interface{}) {
	if !cfg.IsWarningEnabled(wt) {
		return
	}
	fmt.Fprintf(p.Out, "%s%s ", p.prefix(tok), p.paint(colorYellow, "warning:"))
	fmt.Fprintf(p.Out, format, args...)
	fmt.Fprintf(p.Out, " [-W%s]\n", cfg.Warnings[wt].Name)
	p.printErrorLine(tok)
}

// Report prints err. Evaluation errors carry their kind and, when known, the
// position of the node that failed.
func (p *Printer) Report(err error) {
	if err == nil {
		return
	}
	var e *errs.Error
	if errors.As(err, &e) {
		p.Error(e.Tok, "%s [%s]", err, e.Kind)
		return
	}
	p.Error(token.Token{}, "%s", err)
}
