/*
Package resp provides helper functions for constructing and sending HTTP responses.

The wire contract is payload-first: successful responses carry the serialized entity
directly (no envelope), 204 is used for acknowledged mutations without a payload,
and error responses carry the status code plus a plain-text detail body that clients
surface verbatim.
*/
package resp

import (
	"encoding/json"
	"net/http"

	"lia/internal/pkg/errs"
	"lia/internal/pkg/logx"
)

// RespondJSON serializes payload and writes it with the given HTTP status.
func RespondJSON(w http.ResponseWriter, r *http.Request, httpStatus int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	response, err := json.Marshal(payload)
	if err != nil {
		logx.Error(
			err,
			"Error encoding JSON response",
			"http_status", httpStatus,
		)

		http.Error(w, "Error encoding JSON response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(httpStatus)
	w.Write(response)
}

// RespondSuccess sends the payload as the entire response body with HTTP 200 OK.
func RespondSuccess(w http.ResponseWriter, r *http.Request, data any) {
	RespondJSON(w, r, http.StatusOK, data)
}

// RespondNoContent acknowledges a mutation with HTTP 204 and an empty body.
func RespondNoContent(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// RespondError sends the error's HTTP status with its detail message as a plain-text body.
func RespondError(w http.ResponseWriter, r *http.Request, customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(customErr.Status)
	w.Write([]byte(customErr.Message))
}
