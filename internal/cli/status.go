// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jeranaias/ragchat/internal/health"
	"github.com/jeranaias/ragchat/internal/model"
	"github.com/jeranaias/ragchat/internal/util"
)

// OfflineBanner is printed by the status command when the backend is down.
const OfflineBanner = health.OfflineBanner

// =============================================================================
// STATUS COMMAND
// =============================================================================

type statusResult struct {
	Backend   string `json:"backend"`
	State     string `json:"state"`
	LatencyMS int64  `json:"latencyMs"`
}

// HandleStatus runs one health check. Offline exits with code 1.
func HandleStatus(ctx context.Context, env *Env, args Args) error {
	start := time.Now()
	poller := health.NewPoller(env.Backend, env.Config.Backend.HealthInterval())
	state := poller.CheckNow(ctx)
	latency := time.Since(start)

	if args.JSON {
		err := NewJSONResponse("status", statusResult{
			Backend:   env.Backend.BaseURL(),
			State:     state.String(),
			LatencyMS: latency.Milliseconds(),
		}).Print(env.Stdout)
		if err != nil {
			return err
		}
	} else {
		fmt.Fprintln(env.Stdout, RenderField("Backend", env.Backend.BaseURL()))
		fmt.Fprintln(env.Stdout, LabelStyle.Render("Status")+RenderStatus(state.String())+" "+ValueStyle.Render(state.String()))
		if state == health.StateOnline {
			fmt.Fprintln(env.Stdout, RenderField("Latency", latency.Round(time.Millisecond).String()))
		} else {
			fmt.Fprintln(env.Stdout)
			fmt.Fprintln(env.Stdout, WarningStyle.Render(OfflineBanner))
		}
	}

	if state != health.StateOnline {
		return &ExitError{Code: ExitGeneralError}
	}
	return nil
}

// =============================================================================
// STATS COMMAND
// =============================================================================

// HandleStats prints knowledge base statistics. The backend client falls
// back to placeholder figures when the backend is unreachable, so this
// command always succeeds.
func HandleStats(ctx context.Context, env *Env, args Args) error {
	stats := env.Backend.GetStats(ctx)

	if args.JSON {
		return NewJSONResponse("stats", stats).Print(env.Stdout)
	}

	printStats(env, stats)
	return nil
}

func printStats(env *Env, stats model.EmbeddingStats) {
	fmt.Fprintln(env.Stdout, TitleStyle.Render("Knowledge Base"))
	fmt.Fprintln(env.Stdout, RenderField("Documents", util.FormatCount(stats.TotalDocuments)))
	fmt.Fprintln(env.Stdout, RenderField("Chunks", util.FormatCount(stats.TotalChunks)))
	fmt.Fprintln(env.Stdout, RenderField("Disk usage", stats.DiskUsageString()))

	updated := stats.LastUpdated
	if t, ok := stats.LastUpdatedTime(); ok {
		updated = t.Local().Format("2006-01-02 15:04:05")
	}
	fmt.Fprintln(env.Stdout, RenderField("Last updated", updated))
}
