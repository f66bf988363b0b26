/*
Package req provides helper functions for HTTP request parsing and data binding.

It encapsulates the logic for parsing JSON request bodies and integrates error
handling to ensure data format correctness before business logic processing.
*/
package req

import (
	"encoding/json"
	"net/http"
	"strings"

	"lia/internal/pkg/errs"
)

// MaxBodySize defines the maximum allowed size (1 MB) for JSON request bodies.
const MaxBodySize int64 = 1 << 20

// BindJSON attempts to bind the JSON data from the HTTP request body to the destination struct dst.
func BindJSON(r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, MaxBodySize))

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}

// BindJSONMap binds the request body to a free-form JSON object. It is used by
// endpoints that accept deep-partial updates where the field set is not fixed.
func BindJSONMap(r *http.Request) (map[string]any, *errs.CustomError) {
	patch := map[string]any{}
	if customErr := BindJSON(r, &patch); customErr != nil {
		return nil, customErr
	}
	return patch, nil
}
