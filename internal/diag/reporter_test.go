package diag

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestReporterText(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	var out bytes.Buffer
	r := NewReporter(&out, "text")
	r.Error(Location{File: "a.nl", Line: 3, Column: 7}, "bad cell")
	r.Warning(Location{File: "a.nl", Line: 4}, "unused signal")
	r.Errorf("cell %d is broken", 2)

	want := strings.Join([]string{
		"a.nl:3:7: error: bad cell",
		"a.nl:4: warning: unused signal",
		"error: cell 2 is broken",
	}, "\n") + "\n"
	if got := out.String(); got != want {
		t.Fatalf("unexpected text output:\n%s\nwant:\n%s", got, want)
	}

	errs, warns := r.Counts()
	if errs != 2 || warns != 1 {
		t.Fatalf("Counts() = %d, %d; want 2, 1", errs, warns)
	}
	if !r.HasErrors() {
		t.Fatalf("expected HasErrors")
	}
}

func TestReporterJSON(t *testing.T) {
	var out bytes.Buffer
	r := NewReporter(&out, "json")
	r.Warning(Location{File: "b.nl", Line: 1, Column: 2}, "odd")
	r.Errorf("no location")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 json lines, got %d:\n%s", len(lines), out.String())
	}
	var first, second Diagnostic
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("decode first: %v", err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("decode second: %v", err)
	}
	if first != (Diagnostic{Severity: SeverityWarning, Message: "odd", File: "b.nl", Line: 1, Column: 2}) {
		t.Fatalf("unexpected first diagnostic %+v", first)
	}
	if second.Severity != SeverityError || second.File != "" {
		t.Fatalf("unexpected second diagnostic %+v", second)
	}
	if strings.Contains(lines[1], `"file"`) {
		t.Fatalf("empty location should be omitted: %s", lines[1])
	}
}

func TestNilReporter(t *testing.T) {
	var r *Reporter
	r.Errorf("ignored")
	if r.HasErrors() {
		t.Fatalf("nil reporter must not report errors")
	}
}

func TestLocationString(t *testing.T) {
	cases := map[Location]string{
		{}:                                 "",
		{File: "x.nl"}:                     "x.nl",
		{File: "x.nl", Line: 2}:            "x.nl:2",
		{File: "x.nl", Line: 2, Column: 5}: "x.nl:2:5",
	}
	for loc, want := range cases {
		if got := loc.String(); got != want {
			t.Fatalf("%#v.String() = %q, want %q", loc, got, want)
		}
	}
}
