package label

import (
	"errors"
	"modcurves/pkg/domain"
	"testing"
)

func TestParse(t *testing.T) {
	p, err := Parse("12.24.0.c.1")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Level != 12 || p.Index != 24 || p.Genus != 0 || p.Tail != "c.1" {
		t.Fatalf("unexpected parts %+v", p)
	}
	if p.String() != "12.24.0.c.1" {
		t.Fatalf("round trip: %s", p.String())
	}
	if p, err := Parse("4.1.0"); err != nil || p.Tail != "" {
		t.Fatalf("three component label: %+v %v", p, err)
	}
}

func TestParseMalformed(t *testing.T) {
	for _, lbl := range []string{"", "12", "12.24", "a.24.0.c", "12.x.0.c", "12.24.g.c", "0.1.0.a", "12.0.0.a", "12.24.-1.a"} {
		_, err := Parse(lbl)
		var me *domain.MalformedLabelError
		if !errors.As(err, &me) {
			t.Fatalf("expected MalformedLabelError for %q, got %v", lbl, err)
		}
		if me.Label != lbl {
			t.Fatalf("error carries label %q, want %q", me.Label, lbl)
		}
	}
}

func TestCanonicalize(t *testing.T) {
	cases := map[string]string{
		"":          "",
		"X0(11)":    "X0(11)",
		"x_ns^+(7)": "Xns+(7)",
		"XNS+(13)":  "Xns+(13)",
		"Xs4(5)":    "XS4(5)",
		"XS4(13)":   "XS4(13)",
		"Xsp(3)":    "Xsp(3)",
		"Y1(4)":     "X1(4)",
	}
	for in, want := range cases {
		if got := Canonicalize(in); got != want {
			t.Fatalf("Canonicalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	for _, in := range []string{"", "X", "x_ns^+(7)", "Xs4(5)", "XS4(5)", "X_sp+(11)", "Xarith(8)", "Ö1(2)"} {
		once := Canonicalize(in)
		if twice := Canonicalize(once); twice != once {
			t.Fatalf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestNameToLatex(t *testing.T) {
	cases := map[string]string{
		"":         "",
		"X0(11)":   "$X_0(11)$",
		"Xns+(7)":  `$X_{\mathrm{ns}}^+(7)$`,
		"Xsp(3)":   `$X_{\mathrm{sp}}(3)$`,
		"Xsp+(5)":  `$X_{\mathrm{sp}}^+(5)$`,
		"Xs4(5)":   `$X_{S_4}(5)$`,
		"X(5)":     "$X(5)$",
		"X":        "$X_$",
		"Xnssp(3)": `$X_{\mathrm{ns}}sp(3)$`,
	}
	for in, want := range cases {
		if got := NameToLatex(in); got != want {
			t.Fatalf("NameToLatex(%q) = %q, want %q", in, got, want)
		}
		if again := NameToLatex(in); again != want {
			t.Fatalf("NameToLatex(%q) not deterministic", in)
		}
	}
}

func TestDisplayNameFallsBackToLabel(t *testing.T) {
	if got := DisplayName("", "4.1.0.a.1"); got != "4.1.0.a.1" {
		t.Fatalf("got %q", got)
	}
	if got := DisplayName("X0(2)", "2.3.0.a.1"); got != "$X_0(2)$" {
		t.Fatalf("got %q", got)
	}
}

func TestShowExp(t *testing.T) {
	if ShowExp(1, true) != "" || ShowExp(1, false) != "" {
		t.Fatalf("exponent 1 must render empty")
	}
	if got := ShowExp(3, false); got != "^3" {
		t.Fatalf("got %q", got)
	}
	if got := ShowExp(12, false); got != "^{12}" {
		t.Fatalf("got %q", got)
	}
	if got := ShowExp(2, true); got != "$^2$" {
		t.Fatalf("got %q", got)
	}
}
