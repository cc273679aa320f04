package textir

import (
	"math/rand"
	"testing"
)

func TestEscapePrintable(t *testing.T) {
	cases := map[string]string{
		"":          `""`,
		"clk":       `"clk"`,
		"a b":       `"a b"`,
		"~!@#$%^&*": `"~!@#$%^&*"`,
	}
	for in, want := range cases {
		if got := Escape(in); got != want {
			t.Fatalf("Escape(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestEscapeNonPrintable(t *testing.T) {
	cases := map[string]string{
		"name \xff":  `"name \ff"`,
		"tab\there":  `"tab\09here"`,
		"nl\n":       `"nl\0a"`,
		"\x7f":       `"\7f"`,
		`say "hi"`:   `"say \22hi\22"`,
		`back\slash`: `"back\5cslash"`,
	}
	for in, want := range cases {
		if got := Escape(in); got != want {
			t.Fatalf("Escape(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestEscapeRoundTrip(t *testing.T) {
	all := make([]byte, 256)
	for i := range all {
		all[i] = byte(i)
	}
	inputs := []string{string(all), "", "plain", "caf\xc3\xa9"}

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		buf := make([]byte, rng.Intn(24))
		rng.Read(buf)
		inputs = append(inputs, string(buf))
	}

	for _, in := range inputs {
		out, err := Unescape(Escape(in))
		if err != nil {
			t.Fatalf("Unescape(Escape(%q)) failed: %v", in, err)
		}
		if out != in {
			t.Fatalf("round trip mismatch: got %q, want %q", out, in)
		}
	}
}

func TestUnescapeRejectsMalformed(t *testing.T) {
	for _, in := range []string{
		``,
		`"`,
		`abc`,
		`"abc`,
		`"\f"`,
		`"\zz"`,
	} {
		if _, err := Unescape(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}
