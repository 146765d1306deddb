// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jeranaias/ragchat/internal/server"
)

// mockBackendOptions derives server options from flags, falling back to the
// host and port of the configured backend URL so the client and the mock
// agree without extra flags.
func mockBackendOptions(env *Env, args Args) server.Options {
	opts := server.Options{
		Addr:      args.Addr,
		OllamaURL: args.OllamaURL,
		Model:     args.Model,
	}
	if opts.Addr == "" && env.Config != nil {
		if u, err := url.Parse(env.Config.Backend.URL); err == nil && u.Port() != "" {
			opts.Addr = u.Hostname() + ":" + u.Port()
		}
	}
	return opts
}

// HandleMockBackend runs the development backend until ctx is cancelled.
func HandleMockBackend(ctx context.Context, env *Env, args Args) error {
	srv, err := server.New(mockBackendOptions(env, args))
	if err != nil {
		return fmt.Errorf("create backend: %w", err)
	}

	fmt.Fprintf(env.Stdout, "%s listening on http://%s (Ctrl+C to stop)\n",
		TitleStyle.UnsetMarginBottom().Render("mock backend"), srv.Addr())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown failed")
	}
	return <-errCh
}
