package analyze

import (
	"context"
	"fmt"
	"math"

	"github.com/MayTheStar/EVAL/config"
	"github.com/MayTheStar/EVAL/internal/core/ingest"
	"github.com/MayTheStar/EVAL/internal/database"
	"github.com/MayTheStar/EVAL/internal/database/model"
	"github.com/MayTheStar/EVAL/pkg/logger"

	"gorm.io/gorm"
)

// claimMatch is the best vendor claim found for one requirement.
type claimMatch struct {
	ClaimIndex int
	Score      float64
	Matched    bool
}

// CheckCompliance compares a vendor response against the mandatory
// requirements of an RFP. Both sides must already be analyzed: requirements
// come from the RFP's Requirement rows, claims from the vendor document's.
// Matches are persisted as VendorClaim rows and summarized in the report.
func CheckCompliance(ctx context.Context, rfpDocID, vendorDocID int64) (*ComplianceReport, error) {
	db, err := database.GetDB()
	if err != nil {
		return nil, err
	}

	var requirements []model.Requirement
	if err := db.Where("document_id = ? AND priority = ?", rfpDocID, "must").
		Order("id").Find(&requirements).Error; err != nil {
		return nil, err
	}
	if len(requirements) == 0 {
		return nil, fmt.Errorf("no mandatory requirements found for document %d; run analysis first", rfpDocID)
	}

	var claims []model.Requirement
	if err := db.Where("document_id = ?", vendorDocID).
		Order("id").Find(&claims).Error; err != nil {
		return nil, err
	}

	reqTexts := make([]string, len(requirements))
	for i := range requirements {
		reqTexts[i] = requirements[i].RequirementText
	}
	claimTexts := make([]string, len(claims))
	for i := range claims {
		claimTexts[i] = claims[i].RequirementText
	}

	reqVecs, err := ingest.EmbedOpenAI(ctx, reqTexts)
	if err != nil {
		return nil, err
	}
	var claimVecs [][]float32
	if len(claimTexts) > 0 {
		claimVecs, err = ingest.EmbedOpenAI(ctx, claimTexts)
		if err != nil {
			return nil, err
		}
	}

	threshold := config.Cfg.Retriever.ComplianceMinScore
	matches := matchClaims(reqVecs, claimVecs, threshold)

	report := buildReport(vendorDocID, requirements, matches)

	// Re-checking replaces earlier verdicts for this vendor document.
	err = database.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("vendor_document_id = ?", vendorDocID).
			Delete(&model.VendorClaim{}).Error; err != nil {
			return err
		}
		for i, m := range matches {
			verdict := "non_compliant"
			var claimText *string
			if m.Matched {
				verdict = "compliant"
				claimText = &claims[m.ClaimIndex].RequirementText
			}
			score := m.Score
			row := model.VendorClaim{
				VendorDocumentID: vendorDocID,
				RequirementID:    requirements[i].ID,
				ClaimText:        claimText,
				Score:            &score,
				Compliance:       &verdict,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"rfp_doc_id":    rfpDocID,
		"vendor_doc_id": vendorDocID,
		"mandatory":     report.TotalMandatory,
		"matched":       report.Matched,
		"threshold":     threshold,
	}).Info("compliance: check complete")
	return report, nil
}

// matchClaims finds, for each requirement vector, the highest-scoring claim
// vector. A requirement counts as matched when that score clears threshold.
func matchClaims(reqVecs, claimVecs [][]float32, threshold float64) []claimMatch {
	matches := make([]claimMatch, len(reqVecs))
	for i, rv := range reqVecs {
		best := claimMatch{ClaimIndex: -1}
		for j, cv := range claimVecs {
			score := cosine(rv, cv)
			if best.ClaimIndex == -1 || score > best.Score {
				best.ClaimIndex = j
				best.Score = score
			}
		}
		best.Matched = best.ClaimIndex >= 0 && best.Score >= threshold
		matches[i] = best
	}
	return matches
}

func buildReport(vendorDocID int64, requirements []model.Requirement, matches []claimMatch) *ComplianceReport {
	report := &ComplianceReport{VendorDocID: vendorDocID, TotalMandatory: len(requirements)}
	for i, m := range matches {
		if m.Matched {
			report.Matched++
		} else {
			report.Missing++
			report.MissingRequirements = append(report.MissingRequirements, requirements[i].RequirementText)
		}
	}
	report.Compliant = report.Missing == 0
	return report
}

// cosine returns the cosine similarity of two vectors, 0 when either is zero
// or the lengths differ.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
