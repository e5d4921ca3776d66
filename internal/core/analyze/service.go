package analyze

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MayTheStar/EVAL/config"
	"github.com/MayTheStar/EVAL/internal/database"
	"github.com/MayTheStar/EVAL/internal/database/model"
	"github.com/MayTheStar/EVAL/pkg/logger"

	"gorm.io/gorm"
)

// RunAnalysis extracts requirements (RFP) or capability claims (vendor) from
// every stored chunk of a document and persists them as Requirement rows.
func RunAnalysis(ctx context.Context, docID int64) (int, error) {
	db, err := database.GetDB()
	if err != nil {
		return 0, err
	}

	doc, err := database.GetEntityByID[model.Document](ctx, docID)
	if err != nil {
		return 0, err
	}
	docType := DocTypeRFP
	if doc.SourceType == model.SourceTypeVendorResponse {
		docType = DocTypeVendor
	}

	var chunks []model.Chunk
	if err := db.Where("document_id = ?", docID).Order("chunk_index").Find(&chunks).Error; err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		return 0, fmt.Errorf("document %d has no chunks; ingest it first", docID)
	}

	// The model calls run outside the transaction; only the row replacement
	// is atomic.
	var records []model.Requirement
	for _, ch := range chunks {
		text := ch.ContextText
		if text == "" {
			text = ch.Content
		}
		result, err := AnalyzeChunk(ctx, text, docType)
		if err != nil {
			logger.Error(err, "%v: chunk %d analysis failed", config.ModuleAnalyze, ch.ChunkIndex)
			return 0, err
		}

		labels, _ := json.Marshal(result.EvaluationLabels)
		for _, req := range result.Requirements {
			if req.Text == "" {
				continue
			}
			chunkID := ch.ID
			records = append(records, model.Requirement{
				DocumentID:      docID,
				ChunkID:         &chunkID,
				Section:         firstHeading(ch.Headings),
				RequirementText: req.Text,
				Priority:        priorityFor(req.Type),
				Labels:          string(labels),
			})
		}
	}

	// Re-analysis replaces previous results.
	err = database.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", docID).Delete(&model.Requirement{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.Create(&records).Error
	})
	if err != nil {
		return 0, err
	}
	total := len(records)

	logger.WithFields(map[string]interface{}{
		"doc_id":       docID,
		"doc_type":     docType,
		"chunks":       len(chunks),
		"requirements": total,
	}).Info("analyze: extraction complete")
	return total, nil
}

func priorityFor(reqType string) *string {
	var p string
	switch reqType {
	case "mandatory":
		p = "must"
	case "optional":
		p = "nice"
	default:
		return nil
	}
	return &p
}

// firstHeading pulls the leaf heading out of the stored JSON breadcrumb.
func firstHeading(headingsJSON string) *string {
	var headings []string
	if err := json.Unmarshal([]byte(headingsJSON), &headings); err != nil || len(headings) == 0 {
		return nil
	}
	leaf := headings[len(headings)-1]
	return &leaf
}
