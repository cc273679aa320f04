package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"netir/internal/backend"
	"netir/internal/netlist"
)

const counterSource = `
module "top"
cell 0 top { input "clk" 0 1 output "count" [ @2:3 ] }
cell 1 op "+" 3 [ @2:3 ] [ 001 ] in 0
cell 2 dff [ @1:3 ] clk @0+0 in 0
name 0 "count" = [ @2:3 ]
`

func TestRunEmitWritesText(t *testing.T) {
	tmp := t.TempDir()
	src := writeFile(t, tmp, "counter.nl", counterSource)
	out := filepath.Join(tmp, "out", "counter.ir")

	if err := run([]string{"emit", "-o", out, src}); err != nil {
		t.Fatalf("emit failed: %v", err)
	}
	want := strings.Join([]string{
		`!0 = scope "top"`,
		`%0:1 = input "clk" !0`,
		`%1:4 = adc %5:3 001 0 !0`,
		`%5:3 = dff [ %1+2 %1+1 %1+0 ] clk=%0 init=000 !0`,
		`%8:0 = output "count" %5:3 !0`,
		`!1 = ident "count" in=!0`,
		`%9:0 = name "top count" %5:3 !1`,
	}, "\n") + "\n"
	if diff := cmp.Diff(want, readFile(t, out)); diff != "" {
		t.Fatalf("emitted text mismatch (-want +got):\n%s", diff)
	}
}

func TestRunEmitWithoutMetadata(t *testing.T) {
	tmp := t.TempDir()
	src := writeFile(t, tmp, "counter.nl", counterSource)
	out := filepath.Join(tmp, "counter.ir")

	if err := run([]string{"emit", "-no-meta", "-o", out, src}); err != nil {
		t.Fatalf("emit failed: %v", err)
	}
	if text := readFile(t, out); strings.Contains(text, "!") {
		t.Fatalf("expected no metadata, got:\n%s", text)
	}
}

func TestRunEmitRejectsInvalidNetlist(t *testing.T) {
	tmp := t.TempDir()
	src := writeFile(t, tmp, "bad.nl", `
cell 0 top { output "y" [ @1:2 ] }
cell 1 op "&" 2 [ @0:2 ] [ 11 ]
`)
	out := filepath.Join(tmp, "bad.ir")
	err := run([]string{"emit", "-diag-format", "json", "-o", out, src})
	if err == nil {
		t.Fatalf("expected validation failure")
	}
	if _, statErr := os.Stat(out); statErr == nil {
		t.Fatalf("no output should be written for an invalid netlist")
	}
}

func TestRunEmitRejectsNegativeWidth(t *testing.T) {
	tmp := t.TempDir()
	src := writeFile(t, tmp, "part.nl", `
cell 0 top { input "a" 0 4 output "y" [ @1:1 ] }
cell 1 part [ @0:4 ] offset [ @0+0 ] stride 1 width -1
`)
	out := filepath.Join(tmp, "part.ir")
	for _, args := range [][]string{
		{"emit", "-o", out, src},
		{"emit", "-no-check", "-o", out, src},
	} {
		if err := run(args); err == nil {
			t.Fatalf("%v: expected negative width to be rejected", args)
		}
	}
	if _, err := os.Stat(out); err == nil {
		t.Fatalf("no output should be written for a negative width")
	}
}

func TestRunDump(t *testing.T) {
	tmp := t.TempDir()
	src := writeFile(t, tmp, "counter.nl", counterSource)
	out := filepath.Join(tmp, "counter.txt")

	if err := run([]string{"dump", "-o", out, src}); err != nil {
		t.Fatalf("dump failed: %v", err)
	}
	text := readFile(t, out)
	for _, want := range []string{"modules:", "cells:", "dff"} {
		if !strings.Contains(text, want) {
			t.Fatalf("dump missing %q:\n%s", want, text)
		}
	}
}

func TestRunLint(t *testing.T) {
	tmp := t.TempDir()
	good := writeFile(t, tmp, "good.nl", counterSource)
	bad := writeFile(t, tmp, "bad.nl", `cell 0 op "~" 1 [ 1 ]`)

	if err := run([]string{"lint", good}); err != nil {
		t.Fatalf("lint of a valid netlist failed: %v", err)
	}
	err := run([]string{"lint", good, bad})
	if err == nil || !strings.Contains(err.Error(), "1 of 2 netlists failed") {
		t.Fatalf("expected lint failure summary, got %v", err)
	}
}

func TestRunJSONUsesBackend(t *testing.T) {
	tmp := t.TempDir()
	src := writeFile(t, tmp, "counter.nl", counterSource)
	out := filepath.Join(tmp, "counter.json")

	var got backend.Options
	prev := convertJSON
	convertJSON = func(nl *netlist.Netlist, opts backend.Options) (backend.Result, error) {
		got = opts
		return backend.Result{JSON: []byte(`{"modules": {}}`)}, nil
	}
	t.Cleanup(func() { convertJSON = prev })

	args := []string{"json", "-yosys", "/opt/yosys", "-passes", "opt_clean; check", "-o", out, src}
	if err := run(args); err != nil {
		t.Fatalf("json failed: %v", err)
	}
	if got.YosysPath != "/opt/yosys" {
		t.Fatalf("yosys path not forwarded: %+v", got)
	}
	if diff := cmp.Diff([]string{"opt_clean", "check"}, got.ExtraPasses); diff != "" {
		t.Fatalf("extra passes mismatch (-want +got):\n%s", diff)
	}
	if text := readFile(t, out); text != `{"modules": {}}` {
		t.Fatalf("unexpected json output %q", text)
	}
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	if err := run(nil); err == nil {
		t.Fatalf("expected error without a command")
	}
	if err := run([]string{"frobnicate"}); err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
	if err := run([]string{"emit"}); err == nil {
		t.Fatalf("expected error without an input file")
	}
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write file %s: %v", path, err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestSplitPasses(t *testing.T) {
	cases := map[string][]string{
		"":                    nil,
		" ; ;":                nil,
		"opt":                 {"opt"},
		"opt_clean;  check ;": {"opt_clean", "check"},
	}
	for raw, want := range cases {
		if diff := cmp.Diff(want, splitPasses(raw)); diff != "" {
			t.Fatalf("splitPasses(%q) mismatch (-want +got):\n%s", raw, diff)
		}
	}
}
