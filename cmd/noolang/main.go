// Command noolang is the Noolang CLI (spec.md §6): evaluate a file or an
// inline expression, dump lexer/parser output, or start the REPL.
// Grounded on the teacher's cmd/ailang/main.go flag-based dispatch,
// trimmed to spec.md's exact invocation surface and migrated from
// cobra to a hand-parsed loop over os.Args — Noolang's CLI has no
// subcommands, just a handful of mutually exclusive flags, so cobra's
// command tree buys nothing here (see DESIGN.md).
package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/jethrolarson/noolang-sub000/internal/ast"
	"github.com/jethrolarson/noolang-sub000/internal/config"
	nerrors "github.com/jethrolarson/noolang-sub000/internal/errors"
	"github.com/jethrolarson/noolang-sub000/internal/eval"
	"github.com/jethrolarson/noolang-sub000/internal/lexer"
	"github.com/jethrolarson/noolang-sub000/internal/module"
	"github.com/jethrolarson/noolang-sub000/internal/parser"
	"github.com/jethrolarson/noolang-sub000/internal/repl"
)

var Version = "dev"

var red = color.New(color.FgRed).SprintFunc()

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var (
		evalExpr   string
		tokens     string
		tokensFile string
		astExpr    string
		astFile    string
		fileArg    string
	)

	i := 0
	for i < len(args) {
		a := args[i]
		needArg := func() (string, bool) {
			i++
			if i >= len(args) {
				fmt.Fprintf(os.Stderr, "%s: %s requires an argument\n", red("Error"), a)
				return "", false
			}
			return args[i], true
		}
		switch a {
		case "--eval", "-e":
			v, ok := needArg()
			if !ok {
				return 1
			}
			evalExpr = v
		case "--tokens":
			v, ok := needArg()
			if !ok {
				return 1
			}
			tokens = v
		case "--tokens-file":
			v, ok := needArg()
			if !ok {
				return 1
			}
			tokensFile = v
		case "--ast":
			v, ok := needArg()
			if !ok {
				return 1
			}
			astExpr = v
		case "--ast-file":
			v, ok := needArg()
			if !ok {
				return 1
			}
			astFile = v
		case "--help", "-h":
			printHelp()
			return 0
		case "--version", "-v":
			fmt.Println("noolang " + Version)
			return 0
		default:
			if fileArg == "" && len(a) > 0 && a[0] != '-' {
				fileArg = a
			} else {
				fmt.Fprintf(os.Stderr, "%s: unrecognized argument %q\n", red("Error"), a)
				return 1
			}
		}
		i++
	}

	switch {
	case tokens != "":
		dumpTokens(tokens)
		return 0

	case tokensFile != "":
		src, err := os.ReadFile(tokensFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
			return 1
		}
		dumpTokens(string(src))
		return 0

	case astExpr != "":
		return printAST(astExpr)

	case astFile != "":
		src, err := os.ReadFile(astFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
			return 1
		}
		return printAST(string(src))

	case evalExpr != "":
		return evaluateSource(evalExpr, "")

	case fileArg != "":
		src, err := os.ReadFile(fileArg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
			return 1
		}
		return evaluateSource(string(src), fileArg)

	default:
		r, err := repl.New(os.Stdout, Version)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
			return 1
		}
		r.Start(os.Stdin, os.Stdout)
		return 0
	}
}

func dumpTokens(src string) {
	for _, t := range lexer.Tokenize(src) {
		fmt.Printf("%-12s %q\n", t.Kind, t.Value)
	}
}

func printAST(src string) int {
	prog, err := parser.Parse(src)
	if err != nil {
		printErr(err)
		return 1
	}
	fmt.Println(ast.PrintProgramJSON(prog))
	return 0
}

// evaluateSource parses, type-checks, and evaluates src (a whole file
// when path is non-empty, an inline --eval expression otherwise),
// printing its final value.
func evaluateSource(src, path string) int {
	loader, err := module.New(os.Stdout, rand.New(rand.NewSource(time.Now().UnixNano())))
	if err != nil {
		printErr(err)
		return 1
	}
	if cfg, err := config.Load(); err == nil {
		loader.SetSearchPaths(cfg.SearchPaths)
	}

	resultT, _, result, err := loader.EvalString(src, path)
	if err != nil {
		printErr(err)
		return 1
	}

	fmt.Printf("%s : %s\n", eval.Display(result), resultT.String())
	return 0
}

func printErr(err error) {
	if rep, ok := nerrors.As(err); ok {
		fmt.Fprintf(os.Stderr, "%s: %s\n", red(string(rep.Kind)), rep.Message)
		if rep.Pos != nil {
			fmt.Fprintf(os.Stderr, "  at %s\n", rep.Pos)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
}

func printHelp() {
	fmt.Println(`noolang - a statically typed, effect-tracked functional language

Usage:
  noolang <file.noo>             evaluate a file, print its final value
  noolang --eval|-e <expr>       evaluate an inline expression
  noolang --tokens <expr>        dump the lexer's output for <expr>
  noolang --tokens-file <file>   dump the lexer's output for a file
  noolang --ast <expr>           dump the parsed AST as JSON
  noolang --ast-file <file>      dump a file's parsed AST as JSON
  noolang                        start the REPL`)
}
