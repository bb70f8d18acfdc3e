// Package repl is Noolang's interactive Read-Eval-Print Loop (spec.md
// §6/§7): it re-checks and re-evaluates one input at a time against a
// persistent environment, snapshotting type/value scope and the trait
// Registry before each input so a failed input leaves no trace.
// Grounded on the teacher's internal/repl.REPL (liner-based prompt loop,
// history file in os.TempDir, fatih/color banner), generalized from
// AILANG's capability-prompt (`λ[IO,FS]>`) to Noolang's effect-prompt
// and from its `:`-prefixed commands to spec.md §6's `.`-prefixed ones.
package repl

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/jethrolarson/noolang-sub000/internal/ast"
	"github.com/jethrolarson/noolang-sub000/internal/checker"
	"github.com/jethrolarson/noolang-sub000/internal/config"
	nerrors "github.com/jethrolarson/noolang-sub000/internal/errors"
	"github.com/jethrolarson/noolang-sub000/internal/eval"
	"github.com/jethrolarson/noolang-sub000/internal/lexer"
	"github.com/jethrolarson/noolang-sub000/internal/module"
	"github.com/jethrolarson/noolang-sub000/internal/parser"
	"github.com/jethrolarson/noolang-sub000/internal/types"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

// REPL holds the session's persistent state. typeEnv/valueEnv grow one
// child frame per successful input; a failed input's child frame is
// simply discarded (spec.md §7's snapshot/restore).
type REPL struct {
	Loader   *module.Loader
	typeEnv  *types.Env
	valueEnv *eval.Env

	history          []string
	showErrorDetail  bool
	showErrorContext bool

	// grantedEffects labels the prompt with the project's default
	// effects (from `.noorc.yaml`, internal/config), the same role
	// AILANG's `λ[IO,FS]>` capability prompt plays for its own effect
	// system — sorted for a deterministic prompt across runs.
	grantedEffects []string

	Version string
}

// New builds a REPL with a fresh Loader (which bootstraps the stdlib
// prelude) writing program output to out. It also loads an optional
// `.noorc.yaml` (internal/config): its searchPaths widen import
// resolution and its effects annotate the prompt.
func New(out io.Writer, version string) (*REPL, error) {
	loader, err := module.New(out, rand.New(rand.NewSource(1)))
	if err != nil {
		return nil, err
	}
	if version == "" {
		version = "dev"
	}
	r := &REPL{
		Loader:   loader,
		typeEnv:  loader.PreludeTypeEnv.Child(),
		valueEnv: loader.PreludeValueEnv.Child(),
		Version:  version,
	}
	if cfg, err := config.Load(); err == nil {
		loader.SetSearchPaths(cfg.SearchPaths)
		for _, e := range cfg.EffectSet().Sorted() {
			r.grantedEffects = append(r.grantedEffects, string(e))
		}
	}
	return r, nil
}

func (r *REPL) prompt() string {
	if len(r.grantedEffects) == 0 {
		return "λ> "
	}
	return fmt.Sprintf("λ[%s]> ", strings.Join(r.grantedEffects, ","))
}

// Start runs the REPL loop against in/out until the user quits or EOF.
func (r *REPL) Start(in io.Reader, out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(true)

	historyFile := filepath.Join(os.TempDir(), ".noolang_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	fmt.Fprintf(out, "%s %s\n", bold("Noolang"), bold(r.Version))
	fmt.Fprintln(out, dim("Type .help for help, .quit to exit"))
	fmt.Fprintln(out)

	line.SetCompleter(func(in string) (c []string) {
		if !strings.HasPrefix(in, ".") {
			return nil
		}
		for _, cmd := range commandNames {
			if strings.HasPrefix(cmd, in) {
				c = append(c, cmd)
			}
		}
		return
	})

	for {
		input, err := line.Prompt(r.prompt())
		if err == io.EOF {
			fmt.Fprintln(out, green("Goodbye!"))
			break
		}
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
			continue
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)
		r.history = append(r.history, input)

		if strings.HasPrefix(input, ".") {
			if input == ".quit" || input == ".exit" {
				fmt.Fprintln(out, green("Goodbye!"))
				break
			}
			r.HandleCommand(input, out)
			continue
		}

		r.ProcessInput(input, out)
	}

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}

var commandNames = []string{
	".help", ".quit", ".exit", ".env", ".env-json", ".clear-env", ".types",
	".tokens", ".tokens-file", ".ast", ".ast-file", ".ast-json",
	".error-detail", ".error-context",
}

// ProcessInput checks and evaluates one line of source, printing its
// final value (and type, per spec.md §7) on success. Failure leaves the
// REPL's persistent env and Registry untouched.
func (r *REPL) ProcessInput(input string, out io.Writer) {
	prog, err := parser.Parse(input)
	if err != nil {
		r.printError(out, err)
		return
	}

	registrySnapshot := r.Loader.Registry.Clone()
	childType := r.typeEnv.Child()
	childValue := r.valueEnv.Child()

	c := checker.New(r.Loader.Registry)
	c.Importer = func(path string) (types.Type, types.EffectSet, error) {
		t, eff, _, err := r.Loader.Load(path, "")
		return t, eff, err
	}
	resultT, _, err := c.CheckProgram(prog, childType)
	if err != nil {
		*r.Loader.Registry = *registrySnapshot
		r.printError(out, err)
		return
	}

	prevImporter := r.Loader.Evaluator.Importer
	r.Loader.Evaluator.Importer = func(path string) (eval.Value, error) {
		_, _, v, err := r.Loader.Load(path, "")
		return v, err
	}
	result, trace, err := r.Loader.Evaluator.EvaluateProgram(prog, childValue)
	r.Loader.Evaluator.Importer = prevImporter
	if err != nil {
		*r.Loader.Registry = *registrySnapshot
		r.printError(out, err)
		return
	}

	r.typeEnv = childType
	r.valueEnv = childValue

	// A multi-statement input shows every intermediate statement's result
	// before the final one, per the execution-trace contract.
	if len(trace) > 1 {
		for _, tr := range trace[:len(trace)-1] {
			fmt.Fprintln(out, dim(eval.Display(tr.Result)))
		}
	}
	fmt.Fprintf(out, "%s : %s\n", eval.Display(result), cyan(resultT.String()))
}

func (r *REPL) printError(out io.Writer, err error) {
	rep, ok := nerrors.As(err)
	if !ok {
		fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
		return
	}
	fmt.Fprintf(out, "%s: %s\n", red(string(rep.Kind)), rep.Message)
	if rep.Pos != nil {
		fmt.Fprintf(out, "  %s\n", dim(fmt.Sprintf("at %d:%d", rep.Pos.Line, rep.Pos.Column)))
	}
	if r.showErrorDetail && rep.Suggestion != "" {
		fmt.Fprintf(out, "  %s %s\n", yellow("suggestion:"), rep.Suggestion)
	}
	if r.showErrorContext && rep.Context != "" {
		fmt.Fprintf(out, "  %s\n", dim(rep.Context))
	}
}

// HandleCommand dispatches a `.`-prefixed REPL command (spec.md §6).
func (r *REPL) HandleCommand(input string, out io.Writer) {
	fields := strings.Fields(input)
	cmd := fields[0]
	rest := strings.TrimSpace(strings.TrimPrefix(input, cmd))

	switch cmd {
	case ".help":
		r.printHelp(out)

	case ".env":
		for _, name := range r.typeEnv.AllNames() {
			scheme, _ := r.typeEnv.Lookup(name)
			fmt.Fprintf(out, "%s : %s\n", name, scheme.Type.String())
		}

	case ".env-json":
		names := r.typeEnv.AllNames()
		parts := make([]string, 0, len(names))
		for _, name := range names {
			scheme, _ := r.typeEnv.Lookup(name)
			parts = append(parts, fmt.Sprintf("{\"name\":%q,\"type\":%q}", name, scheme.Type.String()))
		}
		fmt.Fprintf(out, "[%s]\n", strings.Join(parts, ","))

	case ".clear-env":
		r.typeEnv = r.Loader.PreludeTypeEnv.Child()
		r.valueEnv = r.Loader.PreludeValueEnv.Child()
		fmt.Fprintln(out, dim("environment cleared"))

	case ".types":
		names := r.typeEnv.AllNames()
		sort.Strings(names)
		for _, name := range names {
			scheme, _ := r.typeEnv.Lookup(name)
			fmt.Fprintf(out, "%s : %s\n", name, scheme.Type.String())
		}

	case ".tokens":
		r.printTokens(out, lexer.Tokenize(rest))

	case ".tokens-file":
		src, err := os.ReadFile(strings.TrimSpace(rest))
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
			return
		}
		r.printTokens(out, lexer.Tokenize(string(src)))

	case ".ast":
		r.printAST(out, rest)

	case ".ast-file":
		src, err := os.ReadFile(strings.TrimSpace(rest))
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
			return
		}
		r.printAST(out, string(src))

	case ".ast-json":
		prog, err := parser.Parse(rest)
		if err != nil {
			r.printError(out, err)
			return
		}
		fmt.Fprintln(out, ast.PrintProgramJSON(prog))

	case ".error-detail":
		r.showErrorDetail = !r.showErrorDetail
		fmt.Fprintf(out, "error detail: %v\n", r.showErrorDetail)

	case ".error-context":
		r.showErrorContext = !r.showErrorContext
		fmt.Fprintf(out, "error context: %v\n", r.showErrorContext)

	default:
		fmt.Fprintf(out, "%s: unknown command %q (try .help)\n", red("Error"), cmd)
	}
}

func (r *REPL) printTokens(out io.Writer, toks []lexer.Token) {
	for _, t := range toks {
		fmt.Fprintf(out, "%-12s %q\n", t.Kind, t.Value)
	}
}

func (r *REPL) printAST(out io.Writer, src string) {
	prog, err := parser.Parse(src)
	if err != nil {
		r.printError(out, err)
		return
	}
	fmt.Fprintln(out, ast.PrintProgramJSON(prog))
}

func (r *REPL) printHelp(out io.Writer) {
	fmt.Fprintln(out, bold("Commands:"))
	for _, line := range []string{
		".help                 show this message",
		".quit, .exit          leave the REPL",
		".env                  list bindings in scope as `name : type`",
		".env-json             list bindings in scope as a JSON array",
		".clear-env            reset to the prelude-only environment",
		".types                like .env, sorted by name",
		".tokens <expr>        lex <expr> and print its tokens",
		".tokens-file <file>   lex a file and print its tokens",
		".ast <expr>           parse <expr> and print its AST as JSON",
		".ast-file <file>      parse a file and print its AST as JSON",
		".ast-json <expr>      alias for .ast",
		".error-detail         toggle showing error suggestions",
		".error-context        toggle showing error context",
	} {
		fmt.Fprintln(out, "  "+line)
	}
}
