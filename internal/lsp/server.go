// Package lsp is the thin shim spec.md §1/§6 names as an external
// collaborator: its line-editor and JSON-RPC method surface are out of
// scope, but it re-invokes the lexer on every textDocument/didChange and
// publishes the resulting diagnostics. Transport is a gorilla/websocket
// connection, grounded on the teacher's internal/network websocket server
// (Upgrader.Upgrade, a per-connection read loop, text-frame writes)
// instead of the teacher's own stdio-framed JSON-RPC loop.
package lsp

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"ouroboros/internal/diag"
	"ouroboros/internal/lexer"
)

// Server holds one document store shared across every connected client,
// mirroring the teacher's WebSocketServer{Clients map[string]*WebSocketConn}
// shape but keyed by document URI instead of client ID.
type Server struct {
	upgrader websocket.Upgrader
	logger   *log.Logger

	mu   sync.Mutex
	docs map[string]*Document
}

// Document is an open text document tracked across edits.
type Document struct {
	URI     string
	Content string
	Version int
}

// NewServer constructs a Server that logs to logger (stderr if nil), per
// SPEC_FULL.md's ambient logging section ("internal/diag exposes a Sink
// that formats to log.Logger writers").
func NewServer(logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
		docs:   make(map[string]*Document),
	}
}

// Handler returns the http.HandlerFunc to mount at the LSP endpoint,
// upgrading each incoming connection and running its read loop, the same
// shape as the teacher's WebSocketListen handler.
func (s *Server) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.logger.Printf("lsp: upgrade failed: %v", err)
			return
		}
		s.serveConn(conn)
	}
}

// message is the subset of JSON-RPC this shim understands: document
// lifecycle notifications that trigger a diagnostics republish. Everything
// else named in full LSP (completion, hover, go-to-definition) is the
// method-dispatch surface spec.md §1 calls out of scope.
type message struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

func (s *Server) serveConn(conn *websocket.Conn) {
	defer conn.Close()
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg message
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.logger.Printf("lsp: malformed message: %v", err)
			continue
		}
		switch msg.Method {
		case "textDocument/didOpen":
			s.handleDidOpen(conn, msg.Params)
		case "textDocument/didChange":
			s.handleDidChange(conn, msg.Params)
		case "textDocument/didClose":
			s.handleDidClose(msg.Params)
		}
	}
}

type textDocumentItem struct {
	URI     string `json:"uri"`
	Version int    `json:"version"`
	Text    string `json:"text"`
}

type didOpenParams struct {
	TextDocument textDocumentItem `json:"textDocument"`
}

type contentChange struct {
	Text string `json:"text"`
}

type didChangeParams struct {
	TextDocument   textDocumentItem `json:"textDocument"`
	ContentChanges []contentChange  `json:"contentChanges"`
}

type didCloseParams struct {
	TextDocument struct {
		URI string `json:"uri"`
	} `json:"textDocument"`
}

func (s *Server) handleDidOpen(conn *websocket.Conn, raw json.RawMessage) {
	var params didOpenParams
	if err := json.Unmarshal(raw, &params); err != nil {
		s.logger.Printf("lsp: bad didOpen params: %v", err)
		return
	}
	s.mu.Lock()
	s.docs[params.TextDocument.URI] = &Document{
		URI:     params.TextDocument.URI,
		Content: params.TextDocument.Text,
		Version: params.TextDocument.Version,
	}
	s.mu.Unlock()
	s.publishDiagnostics(conn, params.TextDocument.URI)
}

func (s *Server) handleDidChange(conn *websocket.Conn, raw json.RawMessage) {
	var params didChangeParams
	if err := json.Unmarshal(raw, &params); err != nil {
		s.logger.Printf("lsp: bad didChange params: %v", err)
		return
	}
	s.mu.Lock()
	doc, ok := s.docs[params.TextDocument.URI]
	if !ok {
		doc = &Document{URI: params.TextDocument.URI}
		s.docs[params.TextDocument.URI] = doc
	}
	if len(params.ContentChanges) > 0 {
		doc.Content = params.ContentChanges[len(params.ContentChanges)-1].Text
	}
	doc.Version = params.TextDocument.Version
	s.mu.Unlock()
	s.publishDiagnostics(conn, params.TextDocument.URI)
}

func (s *Server) handleDidClose(raw json.RawMessage) {
	var params didCloseParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return
	}
	s.mu.Lock()
	delete(s.docs, params.TextDocument.URI)
	s.mu.Unlock()
}

// publishDiagnosticsParams is the wire shape of a
// textDocument/publishDiagnostics notification.
type publishDiagnosticsParams struct {
	URI         string    `json:"uri"`
	Diagnostics []diag.LSP `json:"diagnostics"`
}

func (s *Server) publishDiagnostics(conn *websocket.Conn, uri string) {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	s.mu.Unlock()
	if !ok {
		return
	}

	diagnostics := lexDiagnostics(doc.Content, uri)

	notification := struct {
		Method string                   `json:"method"`
		Params publishDiagnosticsParams `json:"params"`
	}{
		Method: "textDocument/publishDiagnostics",
		Params: publishDiagnosticsParams{URI: uri, Diagnostics: diagnostics},
	}
	if err := conn.WriteJSON(notification); err != nil {
		s.logger.Printf("lsp: failed to publish diagnostics for %s: %v", uri, err)
	}
}

// lexDiagnostics re-invokes the lexer (the type checker needs an AST the
// external parser hasn't produced yet, per spec.md §1/§6) and converts its
// diag.Sink entries to the LSP wire shape.
func lexDiagnostics(content, uri string) []diag.LSP {
	sink := diag.NewSink()
	scanner := lexer.NewScanner(content, uri, sink)
	scanner.ScanTokens()

	out := make([]diag.LSP, 0, sink.Len())
	for _, d := range sink.Diagnostics() {
		out = append(out, d.ToLSP())
	}
	return out
}

// DocumentSymbols extracts a lightweight outline from a document's tokens
// using simple keyword-adjacency heuristics ("fn <name>", "let <name>",
// "var <name>", "const <name>") rather than an AST walk, since the parser
// that would build one is external per spec.md §1.
type DocumentSymbol struct {
	Name string
	Kind string // "function" | "variable"
	Line int
}

func (s *Server) DocumentSymbols(uri string) []DocumentSymbol {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	s.mu.Unlock()
	if !ok {
		return nil
	}

	sink := diag.NewSink()
	scanner := lexer.NewScanner(doc.Content, uri, sink)
	tokens := scanner.ScanTokens()

	var symbols []DocumentSymbol
	for i := 0; i+1 < len(tokens); i++ {
		tok := tokens[i]
		if tok.Kind != lexer.Keyword {
			continue
		}
		next := tokens[i+1]
		if next.Kind != lexer.Identifier {
			continue
		}
		switch strings.ToLower(tok.Lexeme) {
		case "fn":
			symbols = append(symbols, DocumentSymbol{Name: next.Lexeme, Kind: "function", Line: tok.Line})
		case "let", "var", "const":
			symbols = append(symbols, DocumentSymbol{Name: next.Lexeme, Kind: "variable", Line: tok.Line})
		}
	}
	return symbols
}

// Hover renders a one-line description (token class plus lexeme) of the
// first token on line whose span covers column, the narrowest
// useful slice of "hover" this lexer-only shim can serve without a parsed
// AST or type environment.
func (s *Server) Hover(uri string, line, column int) string {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	s.mu.Unlock()
	if !ok {
		return ""
	}

	sink := diag.NewSink()
	scanner := lexer.NewScanner(doc.Content, uri, sink)
	tokens := scanner.ScanTokens()

	for _, tok := range tokens {
		if tok.Line != line {
			continue
		}
		if column < tok.Column || column > tok.Column+len(tok.Lexeme) {
			continue
		}
		return fmt.Sprintf("%s `%s`", describeTokenKind(tok.Kind), tok.Lexeme)
	}
	return ""
}

func describeTokenKind(k lexer.TokenKind) string {
	switch k {
	case lexer.Keyword:
		return "keyword"
	case lexer.Identifier:
		return "identifier"
	case lexer.IntLiteral, lexer.LongLiteral:
		return "integer literal"
	case lexer.FloatLiteral, lexer.DoubleLiteral:
		return "floating-point literal"
	case lexer.DecimalLiteral:
		return "decimal literal"
	case lexer.StringLit, lexer.InterpolatedStringLit:
		return "string literal"
	case lexer.UnitLit:
		return "unit literal"
	case lexer.Attribute:
		return "attribute"
	case lexer.SyntaxPragma:
		return "syntax pragma"
	default:
		return "token"
	}
}
