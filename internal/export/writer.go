package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/subcue/subcue-agent/internal/snapshot"
)

// DocumentExt is the suffix given to exported caption documents.
const DocumentExt = ".captions.json"

// WriteDocument writes a snapshot document into dir under the sanitized
// name. The file lands under a temporary name first and is renamed into
// place, so a crash mid-write cannot leave a truncated export behind.
func WriteDocument(dir, name string, doc snapshot.Document) (string, error) {
	if err := ValidateOutputDir(dir); err != nil {
		return "", err
	}

	stem := SanitizeFileStem(name, 120)
	if stem == "" {
		stem = "session"
	}

	data, err := snapshot.Encode(doc)
	if err != nil {
		return "", err
	}

	outputPath := filepath.Join(dir, stem+DocumentExt)
	tmp := outputPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	if err := os.Rename(tmp, outputPath); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to finalize export file: %w", err)
	}
	return outputPath, nil
}
