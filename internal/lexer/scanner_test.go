package lexer

import (
	"testing"

	"ouroboros/internal/diag"
)

func scan(t *testing.T, source string) []Token {
	t.Helper()
	sink := diag.NewSink()
	toks := NewScanner(source, "t.ouro", sink).ScanTokens()
	if sink.HasErrors() {
		t.Fatalf("unexpected scan errors for %q: %v", source, sink.Diagnostics())
	}
	return toks
}

func TestScanDecimalSuffixPreservesUndecodedText(t *testing.T) {
	for _, src := range []string{"1.5m", "1.5M", "1.5d", "1.5D"} {
		toks := scan(t, src)
		if len(toks) == 0 || toks[0].Kind != DecimalLiteral {
			t.Fatalf("%q: expected a DecimalLiteral, got %v", src, toks)
		}
		if toks[0].Value.Decimal != "1.5" {
			t.Fatalf("%q: expected undecoded decimal text \"1.5\", got %q", src, toks[0].Value.Decimal)
		}
	}
}

func TestScanFloatSuffixStillYieldsFloatLiteral(t *testing.T) {
	toks := scan(t, "1.5f")
	if len(toks) == 0 || toks[0].Kind != FloatLiteral {
		t.Fatalf("expected a FloatLiteral for the f suffix, got %v", toks)
	}
	if toks[0].Value.Float != 1.5 {
		t.Fatalf("expected Value.Float 1.5, got %v", toks[0].Value.Float)
	}
}

func TestScanPlainFloatYieldsDoubleLiteral(t *testing.T) {
	toks := scan(t, "1.5")
	if len(toks) == 0 || toks[0].Kind != DoubleLiteral {
		t.Fatalf("expected a DoubleLiteral with no suffix, got %v", toks)
	}
}

func TestScanIntegerLiteral(t *testing.T) {
	toks := scan(t, "42")
	if len(toks) == 0 || toks[0].Kind != IntLiteral || toks[0].Value.Int != 42 {
		t.Fatalf("expected IntLiteral(42), got %v", toks)
	}
}
