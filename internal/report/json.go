package report

import (
	"encoding/json"
	"io"

	"github.com/wonny/precinho/internal/contracts"
)

// WriteJSON writes the full run report as indented JSON
func WriteJSON(w io.Writer, report *contracts.RunReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
