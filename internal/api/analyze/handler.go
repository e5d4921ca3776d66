package analyze

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/MayTheStar/EVAL/config"
	coreanalyze "github.com/MayTheStar/EVAL/internal/core/analyze"
	"github.com/MayTheStar/EVAL/pkg/apperror"
	"github.com/MayTheStar/EVAL/pkg/apperror/status"
	"github.com/MayTheStar/EVAL/pkg/logger"

	"github.com/gofiber/fiber/v3"
)

type analyzeResponse struct {
	DocID int64 `json:"doc_id"`
}

type complianceRequest struct {
	RfpDocID    int64 `json:"rfp_doc_id"`
	VendorDocID int64 `json:"vendor_doc_id"`
}

// HandleAnalyze starts requirement extraction over a document's chunks. The
// per-chunk model calls are slow, so the work runs in the background like
// ingestion does.
func HandleAnalyze(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")

	docIDStr := c.Params("docID")
	if docIDStr == "" {
		return apperror.BadRequest(config.ModuleAnalyze, c, status.MissingParams, "docID is required")
	}
	docID, err := strconv.ParseInt(docIDStr, 10, 64)
	if err != nil {
		return apperror.BadRequest(config.ModuleAnalyze, c, status.InvalidRequestBody, "invalid docID")
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := coreanalyze.RunAnalysis(ctx, docID); err != nil {
			logger.Error(err, "%v: analysis of document %d failed", config.ModuleAnalyze, docID)
		}
	}()

	return apperror.Success(config.ModuleAnalyze, c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    "analysis started",
		TrackingID: trackingID,
		Data:       analyzeResponse{DocID: docID},
	})
}

// HandleCompliance runs the vendor-vs-RFP compliance check and returns the
// report synchronously.
func HandleCompliance(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")

	var req complianceRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return apperror.BadRequest(config.ModuleCompliance, c, status.InvalidRequestBody, err.Error())
	}
	if req.RfpDocID == 0 || req.VendorDocID == 0 {
		return apperror.BadRequest(config.ModuleCompliance, c, status.MissingParams,
			"rfp_doc_id and vendor_doc_id are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	report, err := coreanalyze.CheckCompliance(ctx, req.RfpDocID, req.VendorDocID)
	if err != nil {
		return apperror.InternalError(config.ModuleCompliance, c, err)
	}

	return apperror.Success(config.ModuleCompliance, c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    "compliance ok",
		TrackingID: trackingID,
		Data:       report,
	})
}
