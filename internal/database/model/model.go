package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document source types and statuses.
const (
	SourceTypeRFP            = "rfp"
	SourceTypeVendorResponse = "vendor_response"
	SourceTypeOther          = "other"

	StatusUploaded   = "uploaded"
	StatusProcessing = "processing"
	StatusReady      = "ready"
	StatusFailed     = "failed"
)

type User struct {
	ID        int64      `gorm:"primaryKey;autoIncrement"`
	Email     string     `gorm:"size:255;uniqueIndex"`
	CreatedAt *time.Time `gorm:"autoCreateTime"`
}

// Document is an uploaded RFP or vendor response file.
type Document struct {
	ID               int64      `gorm:"primaryKey;autoIncrement"`
	UUID             string     `gorm:"size:36;uniqueIndex"`
	UserID           int64      `gorm:"index"`
	OriginalFilename *string    `gorm:"type:text"`
	FilePath         *string    `gorm:"type:text"`
	Sha256           *string    `gorm:"size:64;index"`
	SourceType       string     `gorm:"size:32;default:rfp"`
	VendorName       *string    `gorm:"size:255"`
	Pages            *int       ``
	Status           string     `gorm:"size:32;default:uploaded"`
	UploadedAt       *time.Time `gorm:"autoCreateTime"`
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.UUID == "" {
		d.UUID = uuid.NewString()
	}
	return nil
}

// Chunk is one merged, budget-bounded span of a document. OrigIndices and
// Headings are stored as JSON arrays so the pre-merge lineage survives
// round-trips to the API.
type Chunk struct {
	ID               int64      `gorm:"primaryKey;autoIncrement"`
	DocumentID       int64      `gorm:"index:idx_chunks_doc"`
	ChunkIndex       int32      `gorm:"index:idx_chunks_doc"`
	OrigIndices      string     `gorm:"type:json"`
	Content          string     `gorm:"type:mediumtext"`
	ContextText      string     `gorm:"column:contextualized_text;type:mediumtext"`
	ContentPreview   *string    `gorm:"size:512"`
	TokenCount       *int       ``
	ApproxTokens     bool       ``
	PageNumber       *int32     ``
	Headings         string     `gorm:"type:json"`
	MilvusCollection string     `gorm:"size:255"`
	MilvusID         int64      `gorm:"index"`
	ContentHash      string     `gorm:"size:64"`
	CreatedAt        *time.Time `gorm:"autoCreateTime"`
}

// Requirement is one extracted RFP requirement.
type Requirement struct {
	ID              int64      `gorm:"primaryKey;autoIncrement"`
	DocumentID      int64      `gorm:"index"`
	ChunkID         *int64     `gorm:"index"`
	Section         *string    `gorm:"type:text"`
	RequirementText string     `gorm:"type:text"`
	Priority        *string    `gorm:"size:16"` // must | should | nice
	Labels          string     `gorm:"type:json"`
	CreatedAt       *time.Time `gorm:"autoCreateTime"`
}

// VendorClaim links a vendor capability statement to an RFP requirement with
// a similarity score and compliance verdict.
type VendorClaim struct {
	ID               int64      `gorm:"primaryKey;autoIncrement"`
	VendorDocumentID int64      `gorm:"uniqueIndex:uq_vendor_req"`
	RequirementID    int64      `gorm:"uniqueIndex:uq_vendor_req"`
	ClaimText        *string    `gorm:"type:text"`
	EvidencePages    *string    `gorm:"type:text"`
	Score            *float64   ``
	Compliance       *string    `gorm:"size:16"` // compliant | partially | non_compliant | unclear
	CreatedAt        *time.Time `gorm:"autoCreateTime"`
}

// Message is one turn of the RAG chat history.
type Message struct {
	ID         int64      `gorm:"primaryKey;autoIncrement"`
	UserID     int64      `gorm:"index"`
	Role       string     `gorm:"size:16"` // user | assistant | context
	Content    string     `gorm:"type:mediumtext"`
	DocumentID *int64     `gorm:"index"`
	CreatedAt  *time.Time `gorm:"autoCreateTime"`
}
