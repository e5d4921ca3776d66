package analyze

// DocType selects the extraction prompt variant.
type DocType string

const (
	DocTypeRFP    DocType = "rfp"
	DocTypeVendor DocType = "vendor"
)

// RequirementItem is one extracted requirement or vendor capability.
type RequirementItem struct {
	Text string `json:"text"`
	Type string `json:"type"` // mandatory | optional
}

// ChunkAnalysis is the model output for a single chunk.
type ChunkAnalysis struct {
	Requirements     []RequirementItem `json:"requirements"`
	Summary          string            `json:"summary"`
	EvaluationLabels []string          `json:"evaluation_labels"`
}

// ComplianceReport summarizes how a vendor response covers the RFP's
// mandatory requirements.
type ComplianceReport struct {
	VendorDocID         int64    `json:"vendor_doc_id"`
	TotalMandatory      int      `json:"total_mandatory"`
	Matched             int      `json:"matched"`
	Missing             int      `json:"missing"`
	Compliant           bool     `json:"compliant"`
	MissingRequirements []string `json:"missing_requirements"`
}
