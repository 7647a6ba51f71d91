package api

import (
	"encoding/json"
	"net/http"

	"github.com/zkaffinity/zkaffinity/log"
)

// httpWriteJSON encodes data as JSON and writes it to the response with the
// proper Content-Type header.
func httpWriteJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	body, err := json.Marshal(data)
	if err != nil {
		ErrMarshalingServerJSONFailed.WithErr(err).Write(w)
		return
	}
	if _, err := w.Write(body); err != nil {
		log.Warnw("failed to write response", "error", err)
		return
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		log.Warnw("failed to write response", "error", err)
	}
	if log.Level() == log.LogLevelDebug {
		log.Debugw("api response", "data", data)
	}
}

// httpWriteOK writes a plain "OK" response.
func httpWriteOK(w http.ResponseWriter) {
	if _, err := w.Write([]byte("OK")); err != nil {
		log.Warnw("failed to write response", "error", err)
	}
}
