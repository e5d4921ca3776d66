package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/MayTheStar/EVAL/config"
	"github.com/MayTheStar/EVAL/internal/chunking"
	coreingest "github.com/MayTheStar/EVAL/internal/core/ingest"
	"github.com/MayTheStar/EVAL/internal/database"
	"github.com/MayTheStar/EVAL/internal/database/model"
	"github.com/MayTheStar/EVAL/pkg/logger"
)

// RunIngestion orchestrates the ingestion pipeline for a document ID:
// fetch -> extract structural units -> annotate -> merge under the token
// budget -> embed -> Milvus -> MySQL. Status moves uploaded -> processing ->
// ready|failed.
func RunIngestion(docID int64, force bool) {
	db, err := database.GetDB()
	if err != nil {
		logger.Error(err, "ingest: db unavailable")
		return
	}

	doc, err := GetDocumentByID(db, docID)
	if err != nil {
		logger.Error(err, "ingest: get document failed")
		return
	}
	if doc == nil || doc.FilePath == nil {
		logger.Error(errors.New("not found"), "ingest: document %d not found or has no file", docID)
		return
	}
	logger.WithFields(map[string]interface{}{
		"doc_id":    docID,
		"file_path": *doc.FilePath,
	}).Info("ingest: start")

	// Idempotency
	exists, err := HasChunks(db, docID)
	if err != nil {
		logger.Error(err, "ingest: check chunks failed")
		return
	}
	if exists && !force {
		logger.Info("ingest: chunks already exist; skip (no force)")
		return
	}
	if exists && force {
		if err := DeleteChunksByDocID(db, docID); err != nil {
			logger.Error(err, "ingest: cleanup chunks failed")
			return
		}
	}

	_ = UpdateDocumentStatus(db, docID, model.StatusProcessing)

	tmpPath, cleanup, err := coreingest.FetchToLocalTemp(*doc.FilePath)
	if err != nil {
		logger.Error(err, "ingest: fetch file failed")
		_ = UpdateDocumentStatus(db, docID, model.StatusFailed)
		return
	}
	defer cleanup()

	title := ""
	if doc.OriginalFilename != nil {
		title = *doc.OriginalFilename
	}
	units, pages, err := coreingest.ExtractUnits(tmpPath, title)
	if err != nil {
		logger.Error(err, "ingest: extract units failed")
		_ = UpdateDocumentStatus(db, docID, model.StatusFailed)
		return
	}
	_ = UpdateDocumentPages(db, docID, pages)
	logger.WithFields(map[string]interface{}{
		"doc_id": docID,
		"pages":  pages,
		"units":  len(units),
	}).Info("ingest: extracted structural units")

	// Annotate and merge under the token budget. The budget invariant
	// (min < max) was validated at config load.
	counter := chunking.NewTokenCounter(config.Cfg.Chunking.TokenizerEncoding)
	budget := chunking.Config{
		MinTokens: config.Cfg.Chunking.MinTokens,
		MaxTokens: config.Cfg.Chunking.MaxTokens,
	}
	annotated := chunking.Annotate(units, counter)

	approx := 0
	for _, u := range annotated {
		if u.Approx {
			approx++
		}
	}
	if approx > 0 {
		logger.Warn("ingest: %d/%d unit token counts are word-count approximations", approx, len(annotated))
	}

	chunks := chunking.MergeForward(annotated, budget)
	logger.WithFields(map[string]interface{}{
		"doc_id":     docID,
		"units":      len(annotated),
		"chunks":     len(chunks),
		"min_tokens": budget.MinTokens,
		"max_tokens": budget.MaxTokens,
	}).Info("ingest: merge pass complete")

	// Embed the contextualized text so breadcrumbs contribute to retrieval.
	inputs := make([]string, 0, len(chunks))
	for _, ch := range chunks {
		if ch.ContextText != "" {
			inputs = append(inputs, ch.ContextText)
		} else {
			inputs = append(inputs, ch.Text)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()
	vectors, err := coreingest.EmbedOpenAI(ctx, inputs)
	if err != nil {
		logger.Error(err, "ingest: embedding failed")
		_ = UpdateDocumentStatus(db, docID, model.StatusFailed)
		return
	}
	if len(vectors) != len(chunks) {
		logger.Error(errors.New("mismatch"), "ingest: embedding count mismatch")
		_ = UpdateDocumentStatus(db, docID, model.StatusFailed)
		return
	}

	milvusIDs, collection, err := coreingest.UpsertMilvusVectors(ctx, vectors, docID, chunks)
	if err != nil {
		logger.Error(err, "ingest: milvus upsert failed")
		_ = UpdateDocumentStatus(db, docID, model.StatusFailed)
		return
	}

	if err := InsertChunks(db, docID, chunks, milvusIDs, collection); err != nil {
		logger.Error(err, "ingest: db insert chunks failed")
		_ = UpdateDocumentStatus(db, docID, model.StatusFailed)
		return
	}

	_ = UpdateDocumentStatus(db, docID, model.StatusReady)
	logger.WithFields(map[string]interface{}{
		"doc_id": docID,
		"chunks": len(chunks),
	}).Info("ingest: done")
}
