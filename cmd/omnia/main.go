package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goforj/godump"

	"github.com/xplshn/omnia/pkg/ast"
	"github.com/xplshn/omnia/pkg/cli"
	"github.com/xplshn/omnia/pkg/config"
	"github.com/xplshn/omnia/pkg/eval"
	"github.com/xplshn/omnia/pkg/token"
	"github.com/xplshn/omnia/pkg/treefile"
	"github.com/xplshn/omnia/pkg/util"
	"github.com/xplshn/omnia/pkg/value"
)

var errFailed = errors.New("one or more trees failed")

type options struct {
	dumpTree bool
	emit     bool
	verbose  bool
}

func main() {
	app := cli.NewApp("omnia")
	app.Synopsis = "[options] <tree.yaml> ..."
	app.Description = "Evaluates expression trees over the omnia value model and prints each result as 'kind: value'. Trees are YAML or JSON documents."
	app.Examples = []string{
		"omnia testdata/add_int.yaml",
		"omnia -Wall -Ffold --emit tree.yaml",
		"omnia -c omnia.yaml --max-depth 64 a.yaml b.json",
	}

	var (
		configPath string
		maxDepth   int
		opts       options
	)

	fs := app.FlagSet
	fs.String(&configPath, "config", "c", "", "Read settings from a YAML <file>.", "file")
	fs.Int(&maxDepth, "max-depth", "", 0, "Limit expression nesting; 0 keeps the configured limit.", "n")
	fs.Bool(&opts.dumpTree, "dump-tree", "d", false, "Dump each decoded tree before evaluating it.")
	fs.Bool(&opts.emit, "emit", "e", false, "Print each tree, folded when -Ffold is on, instead of evaluating it.")
	fs.Bool(&opts.verbose, "verbose", "v", false, "Log each step of the pipeline.")

	cfg := config.NewConfig()
	warningFlags, featureFlags := cfg.SetupFlagGroups(fs)

	app.Action = func(inputFiles []string) error {
		printer := util.NewPrinter(os.Stderr)

		if configPath != "" {
			loaded, err := config.Load(configPath)
			if err != nil {
				printer.Error(token.Token{}, "%v", err)
				return err
			}
			*cfg = *loaded
		}
		// Command line flags override the config file
		if err := cfg.ApplyFlagGroups(fs, warningFlags, featureFlags); err != nil {
			printer.Error(token.Token{}, "%v", err)
			return err
		}
		if maxDepth > 0 {
			cfg.MaxDepth = maxDepth
		}

		if len(inputFiles) == 0 {
			printer.Error(token.Token{}, "no input files specified.")
			return errFailed
		}

		failed := false
		for _, path := range inputFiles {
			if err := run(os.Stdout, printer, cfg, opts, path, len(inputFiles) > 1); err != nil {
				failed = true
			}
		}
		if failed {
			return errFailed
		}
		return nil
	}

	if err := app.Run(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

func infof(opts options, format string, args ...interface{}) {
	if opts.verbose {
		fmt.Fprintf(os.Stderr, "omnia: info: "+format+"\n", args...)
	}
}

func run(out io.Writer, printer *util.Printer, cfg *config.Config, opts options, path string, named bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		printer.Error(token.Token{}, "could not read file '%s': %v", path, err)
		return err
	}
	idx := printer.AddFile(path, data)

	infof(opts, "decoding %s", path)
	doc, err := treefile.Parse(data, idx)
	if err != nil {
		printer.Error(token.Token{}, "%s: %v", path, err)
		return err
	}
	scope, err := doc.Scope()
	if err != nil {
		printer.Error(token.Token{}, "%s: %v", path, err)
		return err
	}
	if len(doc.Vars) > 0 {
		infof(opts, "defined %v", treefile.VarNames(doc.Vars))
	}

	if opts.dumpTree {
		godump.Dump(doc.Tree)
	}

	for _, d := range eval.Lint(cfg, scope, doc.Tree) {
		printer.Warn(cfg, d.Warning, d.Tok, "%s", d.Msg)
	}

	ev := eval.New(cfg, scope)
	if opts.emit {
		tree := doc.Tree
		if cfg.IsFeatureEnabled(config.FeatFold) {
			infof(opts, "folding constants")
			tree = ev.Fold(tree)
		}
		return treefile.Encode(out, tree, doc.Vars, doc.Expect)
	}

	infof(opts, "evaluating %s (depth %d, limit %d)", doc.Tree, ast.Depth(doc.Tree), cfg.Depth())
	v, err := ev.Calc(doc.Tree)
	if err != nil {
		printer.Report(err)
		return err
	}
	if named {
		fmt.Fprintf(out, "%s: ", path)
	}
	fmt.Fprintf(out, "%s: %s\n", value.KindOf(v), v)
	return nil
}
