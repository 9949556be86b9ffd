package main

import (
	"encoding/json"
	"net/http"
)

// CustomResponseWriter is a wrapper for http.ResponseWriter. It is
// used to record response details like status code and body size
// for the statistics middleware.
type CustomResponseWriter struct {
	http.ResponseWriter
	code  int
	bytes int
	wrote bool
}

// NewCustomResponseWriter provides CustomResponseWriter with 200 as status code.
func NewCustomResponseWriter(rw http.ResponseWriter) *CustomResponseWriter {
	return &CustomResponseWriter{
		ResponseWriter: rw,
		code:           200,
	}
}

// WriteHeader implements http.WriteHeader interface.
func (cw *CustomResponseWriter) WriteHeader(code int) {
	if !cw.wrote {
		cw.code = code
		cw.wrote = true
		cw.ResponseWriter.WriteHeader(code)
	}
}

// Write implements http.Write interface.
func (cw *CustomResponseWriter) Write(bytes []byte) (int, error) {
	if !cw.wrote {
		cw.WriteHeader(cw.code)
	}
	n, err := cw.ResponseWriter.Write(bytes)
	cw.bytes += n
	return n, err
}

// Status returns the written status code.
func (cw *CustomResponseWriter) Status() int {
	return cw.code
}

// Bytes returns bytes written as response body.
func (cw *CustomResponseWriter) Bytes() int {
	return cw.bytes
}

// Unwrap returns native response writer and used by
// the http.ResponseController during its operation.
func (cw *CustomResponseWriter) Unwrap() http.ResponseWriter {
	return cw.ResponseWriter
}

// APIError is the data model sent when an error occurred during request
// processing. It never carries internal details like sql text or stack data.
type APIError struct {
	RequestID string      `json:"requestid"`
	Status    int         `json:"status"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
}

func NewAPIError(requestid string, status int, message string, data interface{}) *APIError {
	return &APIError{
		RequestID: requestid,
		Status:    status,
		Message:   message,
		Data:      data,
	}
}

// WriteErrorResponse is used to send error response to client.
func WriteErrorResponse(w http.ResponseWriter, errResp *APIError) error {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(errResp.Status)
	return json.NewEncoder(w).Encode(errResp)
}

// WriteJSONResponse sends the canonical representation of the affected
// record (or list of records) without any wrapping envelope.
func WriteJSONResponse(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteNotFoundResponse sends a 404 with an empty body.
func WriteNotFoundResponse(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNotFound)
}

// WriteNoContentResponse sends a 204 with an empty body.
func WriteNoContentResponse(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// StatusResponse is the data model sent when status endpoint is called.
type StatusResponse struct {
	RequestID string `json:"requestid"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}
