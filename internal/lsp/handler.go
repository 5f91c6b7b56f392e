package lsp

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/torokati44/binaryen/grammar"
	"github.com/torokati44/binaryen/internal/wat"
)

var log = commonlog.GetLogger("bulkmem.lsp")

// Define the set of supported semantic token types advertised in the legend
var SemanticTokenTypes = []string{
	"keyword",
	"type",
	"function",
	"variable",
	"parameter",
	"number",
	"property",
}

// Define the set of supported semantic token modifiers
var SemanticTokenModifiers = []string{
	"declaration",
}

// WatHandler implements the LSP server handlers for the text IR
type WatHandler struct {
	mu    sync.RWMutex
	files map[string]*grammar.File
}

// NewWatHandler creates and returns a new WatHandler instance
func NewWatHandler() *WatHandler {
	return &WatHandler{
		files: make(map[string]*grammar.File),
	}
}

// Initialize responds to the LSP client's initialize request and advertises the server's capabilities
func (h *WatHandler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Infof("initialize requested")

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
			CompletionProvider: &protocol.CompletionOptions{
				ResolveProvider: ptrBool(false),
			},
			SemanticTokensProvider: &protocol.SemanticTokensOptions{
				Legend: protocol.SemanticTokensLegend{
					TokenTypes:     SemanticTokenTypes,
					TokenModifiers: SemanticTokenModifiers,
				},
				Full: ptrBool(true),
			},
		},
	}, nil
}

func (h *WatHandler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Infof("initialized")
	return nil
}

func (h *WatHandler) Shutdown(ctx *glsp.Context) error {
	log.Infof("shutdown")
	return nil
}

func (h *WatHandler) SetTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// TextDocumentDidOpen checks the opened document and publishes its diagnostics
func (h *WatHandler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	log.Infof("opened file: %s", params.TextDocument.URI)
	return h.update(ctx, params.TextDocument.URI, params.TextDocument.Text)
}

// TextDocumentDidChange re-checks the document using the full text sent by the editor
func (h *WatHandler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	log.Debugf("changed file: %s", params.TextDocument.URI)

	for i := len(params.ContentChanges) - 1; i >= 0; i-- {
		switch change := params.ContentChanges[i].(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			return h.update(ctx, params.TextDocument.URI, change.Text)
		case *protocol.TextDocumentContentChangeEventWhole:
			return h.update(ctx, params.TextDocument.URI, change.Text)
		}
	}
	return nil
}

func (h *WatHandler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	log.Infof("closed file: %s", params.TextDocument.URI)

	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return fmt.Errorf("failed to convert URI %s: %w", params.TextDocument.URI, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.files, path)

	return nil
}

// TextDocumentCompletion offers every known instruction
func (h *WatHandler) TextDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	kind := protocol.CompletionItemKindKeyword
	var items []protocol.CompletionItem
	for _, name := range wat.KnownInstructions() {
		items = append(items, protocol.CompletionItem{Label: name, Kind: &kind})
	}
	return &protocol.CompletionList{
		IsIncomplete: false,
		Items:        items,
	}, nil
}

// TextDocumentSemanticTokensFull handles semantic token requests for the entire document
func (h *WatHandler) TextDocumentSemanticTokensFull(ctx *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, fmt.Errorf("failed to convert URI %s: %w", params.TextDocument.URI, err)
	}

	file, err := h.getOrLoad(ctx, path, params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	return &protocol.SemanticTokens{Data: encodeSemanticTokens(collectSemanticTokens(file))}, nil
}

// getOrLoad returns the last good parse of path, reading it from disk when
// the editor has not sent it yet
func (h *WatHandler) getOrLoad(ctx *glsp.Context, path string, uri protocol.DocumentUri) (*grammar.File, error) {
	h.mu.RLock()
	file, ok := h.files[path]
	h.mu.RUnlock()
	if ok {
		return file, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	if err := h.update(ctx, uri, string(content)); err != nil {
		return nil, err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.files[path], nil
}

// update parses and lowers text and publishes the resulting diagnostics.
// A syntax error keeps the previous parse for semantic tokens.
func (h *WatHandler) update(ctx *glsp.Context, uri protocol.DocumentUri, text string) error {
	path, err := uriToPath(uri)
	if err != nil {
		return fmt.Errorf("failed to convert URI %s: %w", uri, err)
	}

	var diagnostics []protocol.Diagnostic
	file, err := grammar.ParseString(path, text)
	if err != nil {
		diagnostics = ConvertParseError(err)
	} else {
		_, diags := wat.Load(file)
		diagnostics = ConvertCompilerErrors(diags)

		h.mu.Lock()
		h.files[path] = file
		h.mu.Unlock()
	}

	sendDiagnosticNotification(ctx, uri, diagnostics)
	return nil
}

// Convert URI to platform-local file path
func uriToPath(rawURI string) (string, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}

	path := u.Path

	// On Windows, remove leading slash (e.g., /C:/...) -> C:/...
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}

	return filepath.FromSlash(path), nil
}

func sendDiagnosticNotification(ctx *glsp.Context, uri protocol.DocumentUri, diagnostics []protocol.Diagnostic) {
	if diagnostics == nil {
		// an empty list clears stale diagnostics in the editor
		diagnostics = []protocol.Diagnostic{}
	}
	log.Debugf("sending %d diagnostics for %s", len(diagnostics), uri)

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func ptrBool(b bool) *bool {
	return &b
}

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
