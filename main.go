package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"Core/lexer"
	"Core/parser"
)

var (
	printTree = flag.Bool("print", false, "print the program listing after checking")
	emitPath  = flag.String("emit", "", "write LLVM IR to `file` instead of executing")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: core [-print] [-emit file] program [datafile]")
		os.Exit(2)
	}

	if err := run(flag.Args(), *printTree, *emitPath, os.Stdout); err != nil {
		log.Fatalln(err)
	}
}

// run drives the whole pipeline: parse, check, then print, emit, or
// execute. Tests call it directly with their own arguments and writer.
func run(args []string, printTree bool, emitPath string, out io.Writer) error {
	file, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer file.Close()

	lex := lexer.NewLexer(bufio.NewReader(file))
	prog, err := parser.NewParser(lex).ParseProgram()
	if err != nil {
		return err
	}

	if err := parser.Check(prog); err != nil {
		return err
	}

	if printTree {
		fmt.Fprint(out, prog.String())
	}

	if emitPath != "" {
		module, err := parser.Compile(prog)
		if err != nil {
			return err
		}
		return os.WriteFile(emitPath, []byte(module.String()), 0644)
	}

	if len(args) < 2 {
		return fmt.Errorf("no data file to execute against")
	}
	input, err := readInput(args[1])
	if err != nil {
		return err
	}

	return parser.Execute(prog, input, out)
}

// readInput loads the queue of input values for execution: whitespace
// separated signed decimal integers.
func readInput(path string) ([]int64, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var values []int64
	for _, field := range strings.Fields(string(text)) {
		v, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad input value %q in %s", field, path)
		}
		values = append(values, v)
	}
	return values, nil
}
