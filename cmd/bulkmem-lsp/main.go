// SPDX-License-Identifier: Apache-2.0
package main

import (
	"flag"
	"log"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/torokati44/binaryen/internal/lsp"
)

const lsName = "bulkmem" // Name identifier for the language server

var (
	version = "0.1.0"        // Server version
	handler protocol.Handler // Protocol handler instance (wired up below)
)

func main() {
	verbosity := flag.Int("v", 1, "log verbosity")
	logFile := flag.String("log", "", "write logs to this file instead of stderr")
	flag.Parse()

	if *logFile == "" {
		logFile = nil
	}
	commonlog.Configure(*verbosity, logFile)

	watHandler := lsp.NewWatHandler()

	handler = protocol.Handler{
		Initialize:                     watHandler.Initialize,
		Initialized:                    watHandler.Initialized,
		Shutdown:                       watHandler.Shutdown,
		SetTrace:                       watHandler.SetTrace,
		TextDocumentDidOpen:            watHandler.TextDocumentDidOpen,
		TextDocumentDidClose:           watHandler.TextDocumentDidClose,
		TextDocumentDidChange:          watHandler.TextDocumentDidChange,
		TextDocumentCompletion:         watHandler.TextDocumentCompletion,
		TextDocumentSemanticTokensFull: watHandler.TextDocumentSemanticTokensFull,
	}

	// stdout carries the protocol, so the server only ever logs to stderr
	s := server.NewServer(&handler, lsName, false)

	log.Printf("Starting bulkmem LSP server %s...", version)

	if err := s.RunStdio(); err != nil {
		log.Println("Error starting bulkmem LSP server:", err)
		os.Exit(1)
	}
}
