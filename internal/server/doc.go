// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server provides a self-contained chat and knowledge base backend
// that speaks the same HTTP protocol as the production backend.
//
// Endpoints:
//   - GET  /health        - Liveness probe
//   - POST /chat          - {history, prompt} -> {response}
//   - POST /admin/upload  - Multipart document upload (field "file")
//   - POST /admin/reset   - Drop all documents and conversation memory
//   - GET  /admin/stats   - Knowledge base statistics
//
// Uploaded .txt, .md and .pdf documents are converted to plain text, split
// into overlapping chunks and stored in an in-memory vector collection.
// Chat prompts retrieve the closest chunks. Answers come from an Ollama
// model when one is configured, otherwise the best matching passages are
// returned verbatim.
//
// # Usage
//
//	srv, err := server.New(server.Options{Addr: "127.0.0.1:5000"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	go srv.Start()
//	defer srv.Shutdown(ctx)
package server
