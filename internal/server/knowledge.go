// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"cmp"
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/philippgille/chromem-go"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/textsplitter"

	"github.com/jeranaias/ragchat/internal/model"
)

const (
	documentsCollection = "documents"
	memoryCollection    = "memory"

	// hashDimensions is the size of the local embedding vectors.
	hashDimensions = 256
)

// =============================================================================
// LOCAL EMBEDDINGS
// =============================================================================

// hashEmbedder is a langchaingo EmbedderClient that maps text to a
// normalized bag-of-words vector using feature hashing. It needs no model
// and is deterministic, so identical text always lands on the same vector.
type hashEmbedder struct{}

// CreateEmbedding embeds each text.
func (hashEmbedder) CreateEmbedding(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = hashVector(t)
	}
	return out, nil
}

func hashVector(s string) []float32 {
	vec := make([]float32, hashDimensions)
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		sum := h.Sum32()
		sign := float32(1)
		if sum&1 == 1 {
			sign = -1
		}
		vec[(sum>>1)%hashDimensions] += sign
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	if norm == 0 {
		// chromem rejects zero vectors; give empty text a fixed direction.
		vec[0] = 1
		return vec
	}
	inv := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= inv
	}
	return vec
}

// =============================================================================
// KNOWLEDGE BASE
// =============================================================================

type documentInfo struct {
	chunks int
	bytes  int
}

// KnowledgeBase stores document chunks and conversation memory in chromem
// collections.
type KnowledgeBase struct {
	db       *chromem.DB
	embed    chromem.EmbeddingFunc
	splitter textsplitter.TextSplitter

	mu        sync.RWMutex
	documents *chromem.Collection
	memory    *chromem.Collection
	docs      map[string]documentInfo
	nextID    int
	updated   time.Time
}

// NewKnowledgeBase creates an empty in-memory knowledge base. chunkSize and
// overlap are measured in characters.
func NewKnowledgeBase(chunkSize, overlap int) (*KnowledgeBase, error) {
	embedder, err := embeddings.NewEmbedder(hashEmbedder{})
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	kb := &KnowledgeBase{
		db: chromem.NewDB(),
		embed: func(ctx context.Context, text string) ([]float32, error) {
			return embedder.EmbedQuery(ctx, text)
		},
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(overlap),
		),
	}
	if err := kb.Reset(); err != nil {
		return nil, err
	}
	return kb, nil
}

// Reset drops every document and all conversation memory.
func (kb *KnowledgeBase) Reset() error {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	for _, name := range []string{documentsCollection, memoryCollection} {
		if err := kb.db.DeleteCollection(name); err != nil {
			return fmt.Errorf("drop %s: %w", name, err)
		}
	}

	docs, err := kb.db.GetOrCreateCollection(documentsCollection, nil, kb.embed)
	if err != nil {
		return fmt.Errorf("create %s: %w", documentsCollection, err)
	}
	memory, err := kb.db.GetOrCreateCollection(memoryCollection, nil, kb.embed)
	if err != nil {
		return fmt.Errorf("create %s: %w", memoryCollection, err)
	}

	kb.documents = docs
	kb.memory = memory
	kb.docs = make(map[string]documentInfo)
	kb.updated = time.Now()
	return nil
}

// AddDocument splits content into chunks and indexes them under name.
// Uploading a name again adds its chunks again. It returns the number of
// chunks stored.
func (kb *KnowledgeBase) AddDocument(ctx context.Context, name, content string) (int, error) {
	chunks, err := kb.splitter.SplitText(content)
	if err != nil {
		return 0, fmt.Errorf("split %s: %w", name, err)
	}

	kb.mu.Lock()
	defer kb.mu.Unlock()

	var docs []chromem.Document
	for i, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		kb.nextID++
		docs = append(docs, chromem.Document{
			ID:      fmt.Sprintf("doc-%d", kb.nextID),
			Content: chunk,
			Metadata: map[string]string{
				"source": name,
				"chunk":  fmt.Sprint(i),
			},
		})
	}
	if len(docs) == 0 {
		return 0, nil
	}

	if err := kb.documents.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return 0, fmt.Errorf("index %s: %w", name, err)
	}

	info := kb.docs[name]
	info.chunks += len(docs)
	info.bytes += len(content)
	kb.docs[name] = info
	kb.updated = time.Now()
	return len(docs), nil
}

// Remember stores one chat exchange so later prompts can recall it.
func (kb *KnowledgeBase) Remember(ctx context.Context, prompt, reply string) error {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	kb.nextID++
	doc := chromem.Document{
		ID:      fmt.Sprintf("mem-%d", kb.nextID),
		Content: "Q: " + prompt + "\nA: " + reply,
		Metadata: map[string]string{
			"source": "conversation",
		},
	}
	return kb.memory.AddDocument(ctx, doc)
}

// Passage is a retrieved chunk with its similarity to the query.
type Passage struct {
	Source     string
	Content    string
	Similarity float32
}

// Search returns up to k passages from documents and memory, most similar
// first.
func (kb *KnowledgeBase) Search(ctx context.Context, query string, k int) ([]Passage, error) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	var out []Passage
	for _, c := range []*chromem.Collection{kb.documents, kb.memory} {
		n := min(k, c.Count())
		if n == 0 {
			continue
		}
		results, err := c.Query(ctx, query, n, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", c.Name, err)
		}
		for _, r := range results {
			out = append(out, Passage{
				Source:     r.Metadata["source"],
				Content:    r.Content,
				Similarity: r.Similarity,
			})
		}
	}

	sortPassages(out)
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

// sortPassages orders passages by descending similarity, keeping the
// original order of ties.
func sortPassages(p []Passage) {
	slices.SortStableFunc(p, func(a, b Passage) int {
		return cmp.Compare(b.Similarity, a.Similarity)
	})
}

// Stats summarizes the stored documents.
func (kb *KnowledgeBase) Stats() model.EmbeddingStats {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	var chunks, size int
	for _, info := range kb.docs {
		chunks += info.chunks
		size += info.bytes
	}
	// Vector storage dominates: 4 bytes per dimension per chunk.
	size += chunks * hashDimensions * 4

	return model.EmbeddingStats{
		TotalDocuments: len(kb.docs),
		TotalChunks:    chunks,
		LastUpdated:    kb.updated.UTC().Format(time.RFC3339),
		DiskUsageMB:    diskUsageMB(size),
	}
}

// diskUsageMB converts bytes to megabytes rounded to the nearest kilobyte. A
// non-empty store never reports zero.
func diskUsageMB(size int) float64 {
	if size <= 0 {
		return 0
	}
	return math.Max(math.Round(float64(size)/(1<<20)*1000)/1000, 0.001)
}
