/*
Package req provides helpers for HTTP request parsing and data binding.

It wraps strict JSON decoding with the application's error taxonomy so
handlers report malformed bodies consistently.
*/
package req

import (
	"encoding/json"
	"net/http"
	"strings"

	"mchat/internal/pkg/errs"
)

// MaxBodyBytes caps the request body size for JSON endpoints (1 MB).
const MaxBodyBytes int64 = 1 << 20

// BindJSON binds the JSON request body to dst. Unknown fields and
// trailing content are rejected.
func BindJSON(r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(nil, r.Body, MaxBodyBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}
