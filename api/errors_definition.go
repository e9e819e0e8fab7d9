//nolint:lll
package api

import (
	"fmt"
	"net/http"
)

// Error codes 40001-49999 are client errors, 50001-59999 server errors.
// Codes are never changed nor reused, new errors are appended after the
// last code of their range. The code and the HTTP status are unrelated.
var (
	ErrResourceNotFound        = Error{Code: 40001, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("resource not found")}
	ErrMalformedBody           = Error{Code: 40004, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed JSON body")}
	ErrMalformedCommitment     = Error{Code: 40006, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed commitment")}
	ErrCommitmentNotFound      = Error{Code: 40007, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("commitment not found")}
	ErrCommitmentAlreadyExists = Error{Code: 40008, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("commitment already registered")}

	ErrMarshalingServerJSONFailed = Error{Code: 50001, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("marshaling (server-side) JSON failed")}
	ErrGenericInternalServerError = Error{Code: 50002, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("internal server error")}
)
