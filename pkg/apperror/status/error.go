package status

// ErrorCode is a numeric code to classify API errors in a stable way
type ErrorCode int

// Reserved ranges by domain:
//   0-999:     client/validation errors
//   1000-1999: Upload
//   2000-2999: Ingest
//   3000-3999: Analyze / Compliance
//   4000-4999: Query

const (
	BadRequestBase    ErrorCode = 0
	InternalErrorBase ErrorCode = 1000
)

// Client/validation errors start at 0
const (
	InvalidRequestBody ErrorCode = BadRequestBase + iota // 0
	MissingParams                                        // 1
)

// Upload internal errors start at 1000
const (
	UploadInternal      ErrorCode = InternalErrorBase + iota // 1000
	UploadStorageFailed                                      // 1001
)

// Ingest internal errors start at 2000
const (
	IngestInternal        ErrorCode = 2000 + iota // 2000
	IngestExtractFailed                           // 2001
	IngestEmbeddingFailed                         // 2002
)

// Analyze internal errors start at 3000
const (
	AnalyzeInternal     ErrorCode = 3000 + iota // 3000
	AnalyzeModelFailed                          // 3001
	ComplianceNoBaseline                        // 3002
)

// Query internal errors start at 4000
const (
	QueryInternal ErrorCode = 4000 + iota // 4000
)

const (
	ErrorCodeInternal ErrorCode = 9000
)

// CodedError represents an error with an associated ErrorCode
type CodedError interface {
	error
	ErrorCode() ErrorCode
}

type codedError struct {
	code ErrorCode
	err  error
}

func (e codedError) Error() string        { return e.err.Error() }
func (e codedError) Unwrap() error        { return e.err }
func (e codedError) ErrorCode() ErrorCode { return e.code }

// New creates a new CodedError with the given code and underlying error
func New(code ErrorCode, err error) error {
	if err == nil {
		return nil
	}
	return codedError{code: code, err: err}
}
