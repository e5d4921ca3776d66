package ingest

import (
	"strconv"

	"github.com/MayTheStar/EVAL/config"
	"github.com/MayTheStar/EVAL/internal/services/ingest"
	"github.com/MayTheStar/EVAL/pkg/apperror"
	"github.com/MayTheStar/EVAL/pkg/apperror/status"

	"github.com/gofiber/fiber/v3"
)

type ingestResponse struct {
	DocID int64 `json:"doc_id"`
}

// HandleIngest kicks off chunking and indexing for an uploaded document.
// The pipeline runs in the background; poll the document status for progress.
func HandleIngest(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")

	docIDStr := c.Params("docID")
	if docIDStr == "" {
		return apperror.BadRequest(config.ModuleIngest, c, status.MissingParams, "docID is required")
	}
	docID, err := strconv.ParseInt(docIDStr, 10, 64)
	if err != nil {
		return apperror.BadRequest(config.ModuleIngest, c, status.InvalidRequestBody, "invalid docID")
	}

	q := c.Query("force")
	force := q == "1" || q == "true" || q == "yes"

	go ingest.RunIngestion(docID, force)

	return apperror.Success(config.ModuleIngest, c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    "ingest started",
		TrackingID: trackingID,
		Data:       ingestResponse{DocID: docID},
	})
}
