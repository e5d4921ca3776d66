package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"unicode"

	"github.com/MayTheStar/EVAL/internal/chunking"
	"github.com/MayTheStar/EVAL/internal/database/model"

	"gorm.io/gorm"
)

func GetDocumentByID(db *gorm.DB, docID int64) (*model.Document, error) {
	var doc model.Document
	if err := db.First(&doc, docID).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func HasChunks(db *gorm.DB, docID int64) (bool, error) {
	var count int64
	if err := db.Model(&model.Chunk{}).Where("document_id = ?", docID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func DeleteChunksByDocID(db *gorm.DB, docID int64) error {
	return db.Where("document_id = ?", docID).Delete(&model.Chunk{}).Error
}

func UpdateDocumentStatus(db *gorm.DB, docID int64, status string) error {
	return db.Model(&model.Document{}).Where("id = ?", docID).Update("status", status).Error
}

func UpdateDocumentPages(db *gorm.DB, docID int64, pages int) error {
	return db.Model(&model.Document{}).Where("id = ?", docID).Update("pages", pages).Error
}

// InsertChunks persists merged chunks with their lineage (orig_indices),
// breadcrumbs and token counts serialized verbatim.
func InsertChunks(db *gorm.DB, docID int64, chunks []chunking.MergedChunk, milvusIDs []int64, collection string) error {
	records := make([]model.Chunk, 0, len(chunks))
	for i, ch := range chunks {
		preview := buildContentPreview(ch.Text, 512)
		h := sha256.Sum256([]byte(ch.Text))
		hash := hex.EncodeToString(h[:])

		origIndices, _ := json.Marshal(ch.OrigIndices)
		headings, _ := json.Marshal(ch.Headings)

		var milvusID int64
		if i < len(milvusIDs) {
			milvusID = milvusIDs[i]
		}
		tokenCount := ch.TokenCount
		var pageNumber *int32
		if ch.PageNumber != nil {
			p := int32(*ch.PageNumber)
			pageNumber = &p
		}
		records = append(records, model.Chunk{
			DocumentID:       docID,
			ChunkIndex:       int32(i),
			OrigIndices:      string(origIndices),
			Content:          ch.Text,
			ContextText:      ch.ContextText,
			ContentPreview:   &preview,
			TokenCount:       &tokenCount,
			ApproxTokens:     ch.Approx,
			PageNumber:       pageNumber,
			Headings:         string(headings),
			MilvusCollection: collection,
			MilvusID:         milvusID,
			ContentHash:      hash,
		})
	}
	return db.Create(&records).Error
}

// buildContentPreview sanitizes the preview to printable characters and
// truncates by runes to avoid splitting multi-byte sequences.
func buildContentPreview(s string, maxRunes int) string {
	var b strings.Builder
	b.Grow(len(s))
	count := 0
	for _, r := range s {
		if r == '\uFEFF' { // BOM
			continue
		}
		if r == '\n' || r == '\t' || r == '\r' {
			// keep common whitespace
		} else if !unicode.IsPrint(r) {
			continue
		}
		b.WriteRune(r)
		count++
		if count >= maxRunes {
			break
		}
	}
	return strings.TrimSpace(b.String())
}
