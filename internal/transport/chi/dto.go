package chi

// QueryRequest is the body of a select request.
//
// Predicates on "__"-prefixed fields filter file names. In the default pattern
// mode they compare against the file's date suffix without the underscore
// ("20240131" for sales_20240131.csv).
type QueryRequest struct {
	Fields     []string `json:"fields"`
	Predicates []string `json:"predicates"`
}

// QueryResponse is one page of a select result.
type QueryResponse struct {
	Header  []string   `json:"header"`
	Rows    [][]string `json:"rows"`
	Page    int        `json:"page"`
	PerPage int        `json:"per_page"`
	Total   int        `json:"total"`
}

// CreateFileRequest is the body of an insert request.
type CreateFileRequest struct {
	Filename string     `json:"filename"`
	Header   []string   `json:"header"`
	Rows     [][]string `json:"rows"`
}

// RenderResponse is the parsed form of uploaded CSV.
type RenderResponse struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// ErrorCode classifies an error response.
type ErrorCode string

// Error codes returned to clients.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeInvalidPredicate ErrorCode = "invalid_predicate"
	ErrorCodeInvalidQuery     ErrorCode = "invalid_query"
	ErrorCodeInvalidName      ErrorCode = "invalid_name"
	ErrorCodeNotFound         ErrorCode = "not_found"
	ErrorCodeInternal         ErrorCode = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}
