package api

import (
	"fmt"
	"net/http"
)

// The custom Error type satisfies the error interface.
// Error() returns a human-readable description of the error.
//
// Error codes in the 40001-49999 range are the user's fault,
// and they return HTTP Status 400 or 404 (or even 204), whatever is most appropriate.
//
// Error codes 50001-59999 are the server's fault
// and they return HTTP Status 500 or 503, whatever is most appropriate.
//
// The list of errors is strictly append-only: don't reuse a code,
// don't insert new codes in the middle of the list.
//
//nolint:lll
var (
	ErrResourceNotFound           = Error{Code: 40001, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("resource not found")}
	ErrMalformedBody              = Error{Code: 40002, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed JSON body")}
	ErrMalformedWallet            = Error{Code: 40003, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed wallet address")}
	ErrUnknownTag                 = Error{Code: 40004, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("unknown interest tag")}
	ErrInvalidSignature           = Error{Code: 40005, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid attestation signature")}
	ErrMalformedAttestation       = Error{Code: 40006, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed attestation")}
	ErrAttestationExists          = Error{Code: 40007, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("attestation already exists")}
	ErrInvalidThreshold           = Error{Code: 40008, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid threshold")}
	ErrMalformedJobID             = Error{Code: 40009, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed job id")}
	ErrJobNotFound                = Error{Code: 40010, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("proof job not found")}
	ErrPublisherNotFound          = Error{Code: 40011, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("publisher not found")}
	ErrMarshalingServerJSONFailed = Error{Code: 50001, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("marshaling (server-side) JSON failed")}
	ErrGenericInternalServerError = Error{Code: 50002, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("internal server error")}
)
