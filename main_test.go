package main

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"Core/errors"
)

// writeFile drops contents into dir under name and returns the full path.
func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

const doubler = `
program
  int x, y;
begin
  input x;
  y = x+x;
  output y;
end
`

func TestRunExecutes(t *testing.T) {
	dir := t.TempDir()
	prog := writeFile(t, dir, "doubler.core", doubler)
	data := writeFile(t, dir, "doubler.data", "21\n")

	var out bytes.Buffer
	if err := run([]string{prog, data}, false, "", &out); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got := out.String(); got != "42\n" {
		t.Errorf("got output %q, want %q", got, "42\n")
	}
}

func TestRunPrintsListing(t *testing.T) {
	dir := t.TempDir()
	prog := writeFile(t, dir, "doubler.core", doubler)
	data := writeFile(t, dir, "doubler.data", "21\n")

	var out bytes.Buffer
	if err := run([]string{prog, data}, true, "", &out); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	got := out.String()
	if !strings.HasPrefix(got, "program\n") {
		t.Errorf("listing should lead the output, got %q", got)
	}
	if !strings.HasSuffix(got, "end\n42\n") {
		t.Errorf("execution output should follow the listing, got %q", got)
	}
}

func TestRunEmitsIR(t *testing.T) {
	dir := t.TempDir()
	prog := writeFile(t, dir, "doubler.core", doubler)
	irPath := filepath.Join(dir, "doubler.ll")

	// Emitting skips execution, so no data file is needed.
	var out bytes.Buffer
	if err := run([]string{prog}, false, irPath, &out); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("emit should not execute, got output %q", out.String())
	}

	ir, err := os.ReadFile(irPath)
	if err != nil {
		t.Fatalf("reading emitted IR: %v", err)
	}
	if !strings.Contains(string(ir), "define i32 @main()") {
		t.Errorf("emitted IR has no main definition:\n%s", ir)
	}
}

func TestRunReportsPipelineErrors(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "empty.data", "")

	cases := []struct {
		name   string
		source string
		kind   errors.Kind
	}{
		{
			name:   "parse error",
			source: "program int x begin x = 1; end",
			kind:   errors.UnexpectedToken,
		},
		{
			name:   "check error",
			source: "program int x; begin y = 1; end",
			kind:   errors.UndeclaredVariable,
		},
		{
			name:   "execution error",
			source: "program int x; begin input x; end",
			kind:   errors.InputExhausted,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			prog := writeFile(t, dir, c.name+".core", c.source)

			var out bytes.Buffer
			err := run([]string{prog, data}, false, "", &out)
			if err == nil {
				t.Fatal("expected an error, got none")
			}
			if got := errors.KindOf(err); got != c.kind {
				t.Errorf("got error kind %q, want %q (err: %v)", got, c.kind, err)
			}
		})
	}
}

func TestRunRequiresDataFileToExecute(t *testing.T) {
	dir := t.TempDir()
	prog := writeFile(t, dir, "doubler.core", doubler)

	var out bytes.Buffer
	if err := run([]string{prog}, false, "", &out); err == nil {
		t.Fatal("expected an error without a data file, got none")
	}
}

func TestRunRejectsMissingProgram(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{filepath.Join(t.TempDir(), "no-such.core")}, false, "", &out)
	if err == nil {
		t.Fatal("expected an error for a missing program file, got none")
	}
}

func TestReadInput(t *testing.T) {
	dir := t.TempDir()

	good := writeFile(t, dir, "good.data", " 1 -2\n3\t4 ")
	values, err := readInput(good)
	if err != nil {
		t.Fatalf("readInput failed: %v", err)
	}
	if want := []int64{1, -2, 3, 4}; !reflect.DeepEqual(values, want) {
		t.Errorf("got %v, want %v", values, want)
	}

	empty := writeFile(t, dir, "empty.data", "\n\n")
	values, err = readInput(empty)
	if err != nil {
		t.Fatalf("readInput failed on empty file: %v", err)
	}
	if len(values) != 0 {
		t.Errorf("empty file should yield no values, got %v", values)
	}

	bad := writeFile(t, dir, "bad.data", "1 two 3")
	if _, err := readInput(bad); err == nil {
		t.Fatal("expected an error for a non-numeric value, got none")
	}
}
