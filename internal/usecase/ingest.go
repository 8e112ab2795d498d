package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"docrag/internal/domain"
	"docrag/internal/port"
)

// ProgressFunc reports pipeline progress to the caller. currentFile is
// the path being processed when the callback fires.
type ProgressFunc func(processed, total int, currentFile string)

// IngestUseCase runs the full pipeline: discover files, convert them,
// chunk, embed, and upsert into the vector store. Per-file failures are
// recorded and skipped so one bad document never aborts the run.
type IngestUseCase struct {
	walker   port.FileWalker
	convert  port.Converter
	chunker  port.Chunker
	embedder port.Embedder
	store    port.VectorStore
	log      *slog.Logger
}

func NewIngestUseCase(
	walker port.FileWalker,
	convert port.Converter,
	chunker port.Chunker,
	embedder port.Embedder,
	store port.VectorStore,
	log *slog.Logger,
) *IngestUseCase {
	return &IngestUseCase{
		walker:   walker,
		convert:  convert,
		chunker:  chunker,
		embedder: embedder,
		store:    store,
		log:      log,
	}
}

// IngestResult contains the results of one ingestion run.
type IngestResult struct {
	FilesDiscovered int
	FilesIngested   int
	FilesFailed     int
	ChunksIndexed   int
	Errors          []string
}

// Ingest processes every discovered file under root into the given
// collection. progress may be nil.
func (u *IngestUseCase) Ingest(ctx context.Context, root, collection string, progress ProgressFunc) (*IngestResult, error) {
	result := &IngestResult{}

	files, walkErrs := u.walker.Walk(root)
	for _, err := range walkErrs {
		result.Errors = append(result.Errors, err.Error())
	}
	result.FilesDiscovered = len(files)

	if err := u.store.EnsureCollection(ctx, collection, u.embedder.Dimension()); err != nil {
		return nil, fmt.Errorf("failed to ensure collection: %w", err)
	}

	for i, file := range files {
		if progress != nil {
			progress(i, len(files), file.Path)
		}

		n, err := u.ingestFile(ctx, file)
		if err != nil {
			u.log.Warn("skipping file", "path", file.Path, "error", err)
			result.FilesFailed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", file.Path, err))
			continue
		}
		result.FilesIngested++
		result.ChunksIndexed += n
		u.log.Debug("ingested file", "path", file.Path, "chunks", n)
	}

	if progress != nil {
		progress(len(files), len(files), "")
	}
	return result, nil
}

func (u *IngestUseCase) ingestFile(ctx context.Context, file domain.DiscoveredFile) (int, error) {
	conv, err := u.convert.Convert(ctx, file)
	if err != nil {
		return 0, fmt.Errorf("conversion failed: %w", err)
	}

	chunks, err := u.chunker.Chunk(ctx, conv)
	if err != nil {
		return 0, fmt.Errorf("chunking failed: %w", err)
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	// Identity metadata travels with every chunk so search hits can be
	// traced back to their source without a side lookup.
	for i := range chunks {
		if chunks[i].Metadata == nil {
			chunks[i].Metadata = make(map[string]any, 4)
		}
		chunks[i].Metadata["source_path"] = file.Path
		chunks[i].Metadata["file_name"] = filepath.Base(file.Path)
		chunks[i].Metadata["sha256"] = file.SHA256
		chunks[i].Metadata["doc_id"] = conv.DocID
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := u.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embedding failed: %w", err)
	}

	records, err := BuildRecords(file.Path, file.SHA256, chunks, vectors)
	if err != nil {
		return 0, err
	}

	if err := u.store.Upsert(ctx, records); err != nil {
		return 0, fmt.Errorf("upsert failed: %w", err)
	}
	return len(records), nil
}
