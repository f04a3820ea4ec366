package lsp

import "testing"

func openDoc(s *Server, uri, content string) {
	s.mu.Lock()
	s.docs[uri] = &Document{URI: uri, Content: content, Version: 1}
	s.mu.Unlock()
}

func TestLexDiagnosticsEmptyForCleanSource(t *testing.T) {
	diags := lexDiagnostics("let x = 1", "file:///a.ouro")
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics for a lexically clean line, got %d", len(diags))
	}
}

func TestLexDiagnosticsReportsUnterminatedString(t *testing.T) {
	diags := lexDiagnostics(`let s = "unterminated`, "file:///a.ouro")
	if len(diags) == 0 {
		t.Fatalf("expected at least one diagnostic for an unterminated string literal")
	}
}

func TestDocumentSymbolsFindsFunctionAndLet(t *testing.T) {
	s := NewServer(nil)
	openDoc(s, "file:///a.ouro", "fn main() {\n  let total = 1\n}\n")

	symbols := s.DocumentSymbols("file:///a.ouro")
	var sawFn, sawLet bool
	for _, sym := range symbols {
		if sym.Kind == "function" && sym.Name == "main" {
			sawFn = true
		}
		if sym.Kind == "variable" && sym.Name == "total" {
			sawLet = true
		}
	}
	if !sawFn {
		t.Fatalf("expected to find function symbol main, got %+v", symbols)
	}
	if !sawLet {
		t.Fatalf("expected to find variable symbol total, got %+v", symbols)
	}
}

func TestDocumentSymbolsUnknownURIReturnsNil(t *testing.T) {
	s := NewServer(nil)
	if symbols := s.DocumentSymbols("file:///missing.ouro"); symbols != nil {
		t.Fatalf("expected nil symbols for an unopened document, got %+v", symbols)
	}
}

func TestHoverDescribesKeywordAtPosition(t *testing.T) {
	s := NewServer(nil)
	openDoc(s, "file:///a.ouro", "fn main() {}\n")

	hover := s.Hover("file:///a.ouro", 1, 1)
	if hover == "" {
		t.Fatalf("expected a hover description for the fn keyword")
	}
}
