package handler

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// Meta carries list-level information alongside the payload. FromCache marks
// results served from the local cache after a remote failure so clients can
// surface the offline state.
type Meta struct {
	Total     int    `json:"total"`
	FromCache bool   `json:"from_cache,omitempty"`
	Notice    string `json:"notice,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewListResponse(data interface{}, meta *Meta) *Response {
	return &Response{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}
