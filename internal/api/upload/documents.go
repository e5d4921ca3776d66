package upload

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/MayTheStar/EVAL/config"
	"github.com/MayTheStar/EVAL/internal/database"
	"github.com/MayTheStar/EVAL/internal/database/model"
	"github.com/MayTheStar/EVAL/pkg/apperror"
	"github.com/MayTheStar/EVAL/pkg/apperror/status"
	s3client "github.com/MayTheStar/EVAL/pkg/s3"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gofiber/fiber/v3"
	"gorm.io/gorm"
)

type documentSummary struct {
	DocID            int64   `json:"doc_id"`
	UUID             string  `json:"uuid"`
	OriginalFilename *string `json:"original_filename"`
	SourceType       string  `json:"source_type"`
	VendorName       *string `json:"vendor_name"`
	Pages            *int    `json:"pages"`
	Status           string  `json:"status"`
}

type documentPatch struct {
	SourceType *string `json:"source_type"`
	VendorName *string `json:"vendor_name"`
}

func toSummary(d *model.Document) documentSummary {
	return documentSummary{
		DocID:            d.ID,
		UUID:             d.UUID,
		OriginalFilename: d.OriginalFilename,
		SourceType:       d.SourceType,
		VendorName:       d.VendorName,
		Pages:            d.Pages,
		Status:           d.Status,
	}
}

func HandleListDocuments(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")

	db, err := database.GetDB()
	if err != nil {
		return apperror.InternalError(config.ModuleUpload, c, err)
	}
	q := db.Order("id")
	if st := strings.TrimSpace(c.Query("source_type")); st != "" {
		q = q.Where("source_type = ?", st)
	}
	var docs []model.Document
	if err := q.Find(&docs).Error; err != nil {
		return apperror.InternalError(config.ModuleUpload, c, err)
	}

	out := make([]documentSummary, 0, len(docs))
	for i := range docs {
		out = append(out, toSummary(&docs[i]))
	}
	return apperror.Success(config.ModuleUpload, c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    "documents listed",
		TrackingID: trackingID,
		Data:       out,
	})
}

func HandleGetDocument(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")

	docID, err := parseDocID(c)
	if err != nil {
		return apperror.BadRequest(config.ModuleUpload, c, status.InvalidRequestBody, err.Error())
	}
	doc, err := database.GetEntityByID[model.Document](context.Background(), docID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound(config.ModuleUpload, c, status.MissingParams, "document not found")
		}
		return apperror.InternalError(config.ModuleUpload, c, err)
	}
	return apperror.Success(config.ModuleUpload, c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    "document ok",
		TrackingID: trackingID,
		Data:       toSummary(doc),
	})
}

// HandlePatchDocument updates the mutable metadata fields (source_type,
// vendor_name) of a document.
func HandlePatchDocument(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")

	docID, err := parseDocID(c)
	if err != nil {
		return apperror.BadRequest(config.ModuleUpload, c, status.InvalidRequestBody, err.Error())
	}
	var patch documentPatch
	if err := json.Unmarshal(c.Body(), &patch); err != nil {
		return apperror.BadRequest(config.ModuleUpload, c, status.InvalidRequestBody, err.Error())
	}

	updates := map[string]interface{}{}
	if patch.SourceType != nil {
		switch *patch.SourceType {
		case model.SourceTypeRFP, model.SourceTypeVendorResponse, model.SourceTypeOther:
			updates["source_type"] = *patch.SourceType
		default:
			return apperror.BadRequest(config.ModuleUpload, c, status.InvalidRequestBody,
				"source_type must be one of: rfp, vendor_response, other")
		}
	}
	if patch.VendorName != nil {
		updates["vendor_name"] = strings.TrimSpace(*patch.VendorName)
	}
	if len(updates) == 0 {
		return apperror.BadRequest(config.ModuleUpload, c, status.MissingParams, "nothing to update")
	}

	if err := database.UpdateEntityByID[model.Document](context.Background(), docID, updates); err != nil {
		return apperror.InternalError(config.ModuleUpload, c, err)
	}
	return apperror.Success(config.ModuleUpload, c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    "document updated",
		TrackingID: trackingID,
	})
}

// HandleDeleteDocument removes a document and its derived rows. The Milvus
// vectors stay behind until the collection is rebuilt; search filters them out
// once the MySQL rows are gone.
func HandleDeleteDocument(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")

	docID, err := parseDocID(c)
	if err != nil {
		return apperror.BadRequest(config.ModuleUpload, c, status.InvalidRequestBody, err.Error())
	}

	ctx := context.Background()
	err = database.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", docID).Delete(&model.Chunk{}).Error; err != nil {
			return err
		}
		if err := tx.Where("document_id = ?", docID).Delete(&model.Requirement{}).Error; err != nil {
			return err
		}
		if err := tx.Where("vendor_document_id = ?", docID).Delete(&model.VendorClaim{}).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return apperror.InternalError(config.ModuleUpload, c, err)
	}
	if err := database.DeleteEntityByID[model.Document](ctx, docID); err != nil {
		return apperror.InternalError(config.ModuleUpload, c, err)
	}

	return apperror.Success(config.ModuleUpload, c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    "document deleted",
		TrackingID: trackingID,
	})
}

// HandleDownloadDocument returns a presigned download URL for S3-stored
// files, or the local path for filesystem storage.
func HandleDownloadDocument(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")

	docID, err := parseDocID(c)
	if err != nil {
		return apperror.BadRequest(config.ModuleUpload, c, status.InvalidRequestBody, err.Error())
	}
	doc, err := database.GetEntityByID[model.Document](context.Background(), docID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound(config.ModuleUpload, c, status.MissingParams, "document not found")
		}
		return apperror.InternalError(config.ModuleUpload, c, err)
	}
	if doc.FilePath == nil {
		return apperror.NotFound(config.ModuleUpload, c, status.MissingParams, "document has no stored file")
	}

	location := *doc.FilePath
	if strings.HasPrefix(location, "s3://") {
		u, err := url.Parse(location)
		if err != nil {
			return apperror.InternalError(config.ModuleUpload, c, err)
		}
		presigner, err := s3client.GetPresignClient()
		if err != nil {
			return apperror.InternalError(config.ModuleUpload, c, err)
		}
		req, err := presigner.PresignGetObject(context.Background(), &s3.GetObjectInput{
			Bucket: aws.String(u.Host),
			Key:    aws.String(strings.TrimPrefix(u.Path, "/")),
		}, s3.WithPresignExpires(15*time.Minute))
		if err != nil {
			return apperror.InternalError(config.ModuleUpload, c, err)
		}
		location = req.URL
	}

	return apperror.Success(config.ModuleUpload, c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    "download url",
		TrackingID: trackingID,
		Data:       fiber.Map{"url": location},
	})
}

func parseDocID(c fiber.Ctx) (int64, error) {
	docIDStr := c.Params("docID")
	if docIDStr == "" {
		return 0, errors.New("docID is required")
	}
	docID, err := strconv.ParseInt(docIDStr, 10, 64)
	if err != nil {
		return 0, errors.New("invalid docID")
	}
	return docID, nil
}
