package schemas

// Every endpoint answers with one of the envelope shapes below. Success
// responses carry `data` (and `count`/`pagination` on list endpoints);
// failures carry `error` and are produced exclusively by the error
// normalizer middleware.

// DataResponse is the envelope for single-resource success responses.
type DataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// TokenResponse is the envelope returned by every flow that issues a
// session token (register, login, password update, password reset).
type TokenResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

// ListResponse is the envelope for paginated list endpoints. Count is the
// number of records on the current page, not the total.
type ListResponse struct {
	Success    bool       `json:"success"`
	Count      int        `json:"count"`
	Pagination Pagination `json:"pagination"`
	Data       []Document `json:"data"`
}

// ErrorResponse is the failure envelope. Error is either a single message
// string or, for validation failures, a list of per-field messages.
type ErrorResponse struct {
	Success bool `json:"success"`
	Error   any  `json:"error"`
}

// Pagination points at the neighboring pages when they exist.
type Pagination struct {
	Next *PageCursor `json:"next,omitempty"`
	Prev *PageCursor `json:"prev,omitempty"`
}

// PageCursor identifies a page by number and size.
type PageCursor struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// NewDataResponse wraps a payload in the success envelope.
func NewDataResponse(data any) *DataResponse {
	return &DataResponse{Success: true, Data: data}
}
