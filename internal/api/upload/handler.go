package upload

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
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
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gofiber/fiber/v3"
)

type uploadResponse struct {
	DocID      int64  `json:"doc_id"`
	UUID       string `json:"uuid"`
	SourceType string `json:"source_type"`
}

// HandleUpload accepts a multipart PDF plus optional source_type (rfp,
// vendor_response, other) and vendor_name form fields, stores the file in S3
// or on disk keyed by its sha256, and records a Document row.
func HandleUpload(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")

	fh, err := c.FormFile("file")
	if err != nil {
		return apperror.BadRequest(config.ModuleUpload, c, status.MissingParams, "file is required")
	}
	if fh == nil || fh.Size == 0 {
		return apperror.BadRequest(config.ModuleUpload, c, status.MissingParams, "empty file")
	}

	sourceType := strings.TrimSpace(c.FormValue("source_type"))
	if sourceType == "" {
		sourceType = model.SourceTypeRFP
	}
	switch sourceType {
	case model.SourceTypeRFP, model.SourceTypeVendorResponse, model.SourceTypeOther:
	default:
		return apperror.BadRequest(config.ModuleUpload, c, status.InvalidRequestBody,
			"source_type must be one of: rfp, vendor_response, other")
	}
	vendorName := strings.TrimSpace(c.FormValue("vendor_name"))
	if sourceType == model.SourceTypeVendorResponse && vendorName == "" {
		return apperror.BadRequest(config.ModuleUpload, c, status.MissingParams,
			"vendor_name is required for vendor_response documents")
	}

	file, err := fh.Open()
	if err != nil {
		return apperror.BadRequest(config.ModuleUpload, c, status.InvalidRequestBody, "cannot open file")
	}
	defer file.Close()

	db, err := database.GetDB()
	if err != nil {
		return apperror.InternalError(config.ModuleUpload, c, err)
	}
	userID, err := EnsureDefaultUser(db)
	if err != nil {
		return apperror.InternalError(config.ModuleUpload, c, err)
	}

	useS3 := strings.TrimSpace(config.Cfg.S3.Bucket) != ""

	hasher := sha256.New()
	var storedPath, sha256Hex string
	if useS3 {
		storedPath, sha256Hex, err = storeToS3(file, fh, hasher)
	} else {
		storedPath, sha256Hex, err = storeToLocal(file, fh, hasher)
	}
	if err != nil {
		return apperror.InternalError(config.ModuleUpload, c, err)
	}

	original := fh.Filename
	now := time.Now()
	doc := model.Document{
		UserID:           userID,
		OriginalFilename: &original,
		FilePath:         &storedPath,
		Sha256:           &sha256Hex,
		SourceType:       sourceType,
		Status:           model.StatusUploaded,
		UploadedAt:       &now,
	}
	if vendorName != "" {
		doc.VendorName = &vendorName
	}
	if err := db.Create(&doc).Error; err != nil {
		return apperror.InternalError(config.ModuleUpload, c, err)
	}

	return apperror.Success(config.ModuleUpload, c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    "file uploaded",
		TrackingID: trackingID,
		Data:       uploadResponse{DocID: doc.ID, UUID: doc.UUID, SourceType: doc.SourceType},
	})
}

func storeToLocal(r io.Reader, fh *multipart.FileHeader, hasher hash.Hash) (string, string, error) {
	baseDir := filepath.Join("storage", "documents")
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create storage dir: %w", err)
	}

	// Buffer to a temp file while hashing, then rename to the hash-keyed name.
	tmpFile, err := os.CreateTemp(baseDir, "upload-*.tmp")
	if err != nil {
		return "", "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		tmpFile.Close()
		_ = os.Remove(tmpFile.Name())
	}()

	mw := io.MultiWriter(tmpFile, hasher)
	if _, err := io.Copy(mw, r); err != nil {
		return "", "", fmt.Errorf("failed to write file: %w", err)
	}

	shaHex := hex.EncodeToString(hasher.Sum(nil))
	finalPath := filepath.Join(baseDir, shaHex+fileExt(fh))
	if err := os.Rename(tmpFile.Name(), finalPath); err != nil {
		return "", "", fmt.Errorf("failed to finalize file: %w", err)
	}
	return finalPath, shaHex, nil
}

func storeToS3(r io.Reader, fh *multipart.FileHeader, hasher hash.Hash) (string, string, error) {
	client, err := s3client.GetClient()
	if err != nil {
		return "", "", fmt.Errorf("s3 client: %w", err)
	}

	bucket := config.Cfg.S3.Bucket
	ctx := context.Background()
	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)}); err != nil {
		_, crtErr := client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)})
		if crtErr != nil {
			var bErr *s3types.BucketAlreadyOwnedByYou
			if !errors.As(crtErr, &bErr) {
				return "", "", fmt.Errorf("create bucket: %w", crtErr)
			}
		}
	}

	// The body is needed twice (hash, then upload), so spool it to a temp file.
	tmp, err := os.CreateTemp("", "s3-upload-*.tmp")
	if err != nil {
		return "", "", fmt.Errorf("tempfile: %w", err)
	}
	defer func() {
		tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	mw := io.MultiWriter(tmp, hasher)
	if _, err := io.Copy(mw, r); err != nil {
		return "", "", fmt.Errorf("stream copy: %w", err)
	}

	shaHex := hex.EncodeToString(hasher.Sum(nil))
	key := fmt.Sprintf("documents/%s%s", shaHex, fileExt(fh))

	if _, err := tmp.Seek(0, 0); err != nil {
		return "", "", fmt.Errorf("seek: %w", err)
	}
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        tmp,
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return "", "", fmt.Errorf("put object: %w", err)
	}
	return fmt.Sprintf("s3://%s/%s", bucket, key), shaHex, nil
}

func fileExt(fh *multipart.FileHeader) string {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ext == "" {
		ext = ".pdf"
	}
	return ext
}
