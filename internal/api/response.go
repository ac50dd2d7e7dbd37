package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gyaneshwarpardhi/scrimstats/internal/summary"
)

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeCSV renders rows as one CSV table. Rows must share a header.
func writeCSV(w http.ResponseWriter, rows []*summary.Row) {
	var buf bytes.Buffer
	if err := summary.WriteCSV(&buf, rows...); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// errorResponse is the standard error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
