package document

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/querymind-labs/querymind/internal/embed"
	"github.com/querymind-labs/querymind/internal/state"
	"github.com/querymind-labs/querymind/internal/vector"
)

// maxConcurrentFiles bounds batch ingestion parallelism.
const maxConcurrentFiles = 4

// File is one uploaded file to process.
type File struct {
	Name string
	Data []byte
}

// Result reports the outcome for one file in a batch. A failed file
// carries its error message and never aborts the rest of the batch.
type Result struct {
	Name       string `json:"name"`
	DocumentID string `json:"document_id,omitempty"`
	Chunks     int    `json:"chunks"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

// SearchResult is one semantic search hit.
type SearchResult struct {
	DocumentID string  `json:"document_id"`
	Document   string  `json:"document"`
	ChunkSeq   int     `json:"chunk_seq"`
	ChunkType  string  `json:"chunk_type"`
	Content    string  `json:"content"`
	Similarity float32 `json:"similarity"`
	Rank       int     `json:"rank"`
}

// Processor ingests documents into the store and vector index and
// answers semantic searches over them.
type Processor struct {
	store    state.Store
	embedder embed.Embedder
	index    *vector.Index
	logger   *slog.Logger

	mu       sync.RWMutex
	docNames map[string]string
}

// NewProcessor wires a processor to its store, embedder and index.
func NewProcessor(store state.Store, embedder embed.Embedder, index *vector.Index, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Processor{
		store:    store,
		embedder: embedder,
		index:    index,
		logger:   logger,
		docNames: make(map[string]string),
	}
}

// RebuildIndex reloads every stored chunk embedding into the in-memory
// index. Call at startup; the index is cleared first.
func (p *Processor) RebuildIndex() error {
	p.index.Clear()

	count := 0
	err := p.store.ForEachChunk(func(c *state.Chunk) error {
		count++
		return p.index.Add(c.Embedding, vector.Entry{DocumentID: c.DocumentID, ChunkSeq: c.Seq})
	})
	if err != nil {
		return fmt.Errorf("failed to rebuild index: %w", err)
	}

	docs, err := p.store.ListDocuments()
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	p.mu.Lock()
	p.docNames = make(map[string]string, len(docs))
	for _, d := range docs {
		p.docNames[d.ID] = d.Name
	}
	p.mu.Unlock()

	p.logger.Info("vector index rebuilt", "chunks", count, "documents", len(docs))
	return nil
}

// ProcessFile extracts, chunks, embeds and stores one file.
func (p *Processor) ProcessFile(ctx context.Context, name string, data []byte) (*state.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ex, err := Extract(name, data)
	if err != nil {
		return nil, err
	}

	pieces := Split(ex)
	if len(pieces) == 0 {
		return nil, fmt.Errorf("file %s produced no chunks", name)
	}

	texts := make([]string, len(pieces))
	for i, c := range pieces {
		texts[i] = c.Content
	}
	vectors := p.embedder.EmbedBatch(texts)

	chunks := make([]*state.Chunk, len(pieces))
	for i, c := range pieces {
		chunks[i] = &state.Chunk{Type: c.Type, Content: c.Content, Embedding: vectors[i]}
	}

	doc := &state.Document{Name: name, Type: ex.Format, Size: int64(len(data))}
	if err := p.store.SaveDocument(doc, chunks); err != nil {
		return nil, err
	}

	for _, c := range chunks {
		if err := p.index.Add(c.Embedding, vector.Entry{DocumentID: c.DocumentID, ChunkSeq: c.Seq}); err != nil {
			return nil, fmt.Errorf("failed to index chunk: %w", err)
		}
	}

	p.mu.Lock()
	p.docNames[doc.ID] = doc.Name
	p.mu.Unlock()

	p.logger.Info("document ingested", "name", name, "format", ex.Format, "chunks", len(chunks))
	return doc, nil
}

// ProcessFiles ingests a batch concurrently. Each file succeeds or fails
// on its own; results come back in input order.
func (p *Processor) ProcessFiles(ctx context.Context, files []File) []Result {
	results := make([]Result, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFiles)
	for i, f := range files {
		g.Go(func() error {
			doc, err := p.ProcessFile(ctx, f.Name, f.Data)
			if err != nil {
				p.logger.Warn("document ingestion failed", "name", f.Name, "error", err)
				results[i] = Result{Name: f.Name, Status: "failed", Error: err.Error()}
				return nil
			}
			results[i] = Result{Name: f.Name, DocumentID: doc.ID, Chunks: doc.ChunkCount, Status: "completed"}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Search embeds the query and returns the topK most similar chunks.
func (p *Processor) Search(query string, topK int) ([]SearchResult, error) {
	vec := p.embedder.Embed(query)
	matches, err := p.index.Search(vec, topK)
	if err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	results := make([]SearchResult, 0, len(matches))
	for _, m := range matches {
		chunk, err := p.store.GetChunk(m.Entry.DocumentID, m.Entry.ChunkSeq)
		if err != nil {
			return nil, err
		}
		results = append(results, SearchResult{
			DocumentID: m.Entry.DocumentID,
			Document:   p.docNames[m.Entry.DocumentID],
			ChunkSeq:   m.Entry.ChunkSeq,
			ChunkType:  chunk.Type,
			Content:    chunk.Content,
			Similarity: m.Similarity,
			Rank:       m.Rank,
		})
	}
	return results, nil
}

// Documents lists ingested documents from the store.
func (p *Processor) Documents() ([]*state.Document, error) {
	return p.store.ListDocuments()
}

// Remove deletes one document from the store and drops its vectors from
// the index.
func (p *Processor) Remove(documentID string) error {
	if err := p.store.DeleteDocument(documentID); err != nil {
		return err
	}
	p.index.RemoveDocument(documentID)

	p.mu.Lock()
	delete(p.docNames, documentID)
	p.mu.Unlock()

	p.logger.Info("document removed", "id", documentID)
	return nil
}

// Clear removes every document from the store and the index.
func (p *Processor) Clear() error {
	if err := p.store.ClearDocuments(); err != nil {
		return err
	}
	p.index.Clear()

	p.mu.Lock()
	p.docNames = make(map[string]string)
	p.mu.Unlock()

	p.logger.Info("documents cleared")
	return nil
}
