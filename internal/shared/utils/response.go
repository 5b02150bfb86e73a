package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteJSON writes payload as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteError writes an ErrorResponse. err is optional and only used to fill Details.
func WriteError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	WriteJSON(w, status, resp)
}

const maxBodyBytes = 1 << 20

// DecodeJSON decodes the request body into dst, rejecting unknown fields and bodies over 1MB.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// MaxPageSize caps the limit a client may request.
const MaxPageSize = 100

// Pagination reads limit/offset query parameters. ok is false when neither was supplied.
// The limit never exceeds MaxPageSize.
func Pagination(r *http.Request, defaultLimit int) (limit, offset int, ok bool) {
	q := r.URL.Query()
	limit = defaultLimit
	if l := q.Get("limit"); l != "" {
		ok = true
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			limit = min(v, MaxPageSize)
		}
	}
	if o := q.Get("offset"); o != "" {
		ok = true
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			offset = v
		}
	}
	return limit, offset, ok
}
