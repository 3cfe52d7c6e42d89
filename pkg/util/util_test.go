package util

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/xplshn/omnia/pkg/config"
	"github.com/xplshn/omnia/pkg/errs"
	"github.com/xplshn/omnia/pkg/token"
)

const src = "op: add\nleft: {kind: int, value: \"2147483647\"}\nright: {kind: int, value: \"1\"}\n"

func TestReportPositionedError(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out)
	idx := p.AddFile("overflow.yaml", []byte(src))

	err := errs.Range("int", "adding")
	err.Op, err.Left, err.Right = "+", "int", "int"
	p.Report(fmt.Errorf("evaluating: %w", err.At(token.Token{FileIndex: idx, Line: 1, Column: 5, Len: 3})))

	want := "overflow.yaml:1:5: error: evaluating: got value out of int bounds while adding (int + int) [range-exceeded]\n" +
		"  op: add\n" +
		"      ^~~\n"
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Fatalf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestReportWithoutPosition(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out)
	p.Report(fmt.Errorf("could not read tree"))
	if diff := cmp.Diff("error: could not read tree\n", out.String()); diff != "" {
		t.Fatalf("report mismatch (-want +got):\n%s", diff)
	}
	out.Reset()
	p.Report(nil)
	if out.Len() != 0 {
		t.Fatalf("nil errors print nothing, got %q", out.String())
	}
}

func TestWarnHonorsConfig(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out)
	idx := p.AddFile("t.yaml", []byte(src))
	tok := token.Token{FileIndex: idx, Line: 3, Column: 8, Len: 1}

	cfg := config.NewConfig()
	p.Warn(cfg, config.WarnNarrowing, tok, "%s operand is narrowed to %s", "long", "int")
	want := "t.yaml:3:8: warning: long operand is narrowed to int [-Wnarrowing]\n" +
		"  right: {kind: int, value: \"1\"}\n" +
		"         ^\n"
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Fatalf("warning mismatch (-want +got):\n%s", diff)
	}

	out.Reset()
	cfg.SetWarning(config.WarnNarrowing, false)
	p.Warn(cfg, config.WarnNarrowing, tok, "ignored")
	if out.Len() != 0 {
		t.Fatalf("disabled warnings print nothing, got %q", out.String())
	}
}

func TestUnknownFileAndColor(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out)
	if p.Color {
		t.Fatalf("buffers are not terminals")
	}
	p.Color = true
	p.Error(token.Token{FileIndex: 7, Line: 2, Column: 1}, "lost")
	if diff := cmp.Diff("unknown:2:1: \033[31merror:\033[0m lost\n", out.String()); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}
