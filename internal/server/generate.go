// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/schema"

	"github.com/jeranaias/ragchat/internal/model"
)

// NoContextReply is returned by the extractive generator when nothing in the
// knowledge base matches the prompt.
const NoContextReply = "I don't have any documents that cover that yet. Upload some in the admin dashboard and ask again."

// DefaultSystemPrompt frames every Ollama request.
const DefaultSystemPrompt = "You are a helpful assistant. Answer the user's question using the provided context when it is relevant. If the context does not contain the answer, say so briefly."

// Generator turns a prompt, its conversation history and retrieved context
// into a reply.
type Generator interface {
	Generate(ctx context.Context, history []model.Message, prompt string, passages []Passage) (string, error)
}

// =============================================================================
// EXTRACTIVE
// =============================================================================

// extractiveGenerator answers with the best matching passages. It is used
// when no language model is configured.
type extractiveGenerator struct {
	maxPassages int
}

func (g extractiveGenerator) Generate(_ context.Context, _ []model.Message, _ string, passages []Passage) (string, error) {
	var kept []string
	for _, p := range passages {
		if p.Similarity <= 0 {
			continue
		}
		kept = append(kept, strings.TrimSpace(p.Content))
		if len(kept) == g.maxPassages {
			break
		}
	}
	if len(kept) == 0 {
		return NoContextReply, nil
	}
	return "Here is what I found:\n\n" + strings.Join(kept, "\n\n"), nil
}

// =============================================================================
// OLLAMA
// =============================================================================

type ollamaGenerator struct {
	llm    llms.Model
	system string
}

func newOllamaGenerator(serverURL, modelName string) (*ollamaGenerator, error) {
	llm, err := ollama.New(ollama.WithModel(modelName), ollama.WithServerURL(serverURL))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	return &ollamaGenerator{llm: llm, system: DefaultSystemPrompt}, nil
}

func (g *ollamaGenerator) Generate(ctx context.Context, history []model.Message, prompt string, passages []Passage) (string, error) {
	content := buildMessages(g.system, history, prompt, passages)

	resp, err := g.llm.GenerateContent(ctx, content)
	if err != nil {
		return "", fmt.Errorf("chat error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat error: empty response")
	}
	return resp.Choices[0].Content, nil
}

// buildMessages converts the conversation into langchaingo messages. The
// retrieved context is attached to the final human turn.
func buildMessages(system string, history []model.Message, prompt string, passages []Passage) []llms.MessageContent {
	content := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, system),
	}

	for _, m := range history {
		switch m.Role {
		case model.RoleUser:
			content = append(content, llms.TextParts(schema.ChatMessageTypeHuman, m.Content))
		case model.RoleAssistant:
			content = append(content, llms.TextParts(schema.ChatMessageTypeAI, m.Content))
		}
	}

	var b strings.Builder
	if len(passages) > 0 {
		b.WriteString("Relevant context:\n")
		for _, p := range passages {
			fmt.Fprintf(&b, "Source: %s\n%s\n\n", p.Source, p.Content)
		}
		b.WriteString("Question: ")
	}
	b.WriteString(prompt)

	return append(content, llms.TextParts(schema.ChatMessageTypeHuman, b.String()))
}
