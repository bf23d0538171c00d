package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gridsig/app"
)

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func writeJSONTo(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// markdownSummary renders the audit result as markdown for the HTML export.
func markdownSummary(result *app.AuditResult) string {
	return result.Document.Markdown() + fmt.Sprintf(
		"\nBest pulse **%d** with score **%.4f** over %d cells.\n",
		result.Scan.BestPulse, result.Scan.Score, result.Scan.Region.CellCount())
}
