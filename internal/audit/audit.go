package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Archive keeps full reconciliation reports as JSON files next to the
// summary rows written by Service.
type Archive struct {
	Dir string
}

func NewArchive(dir string) *Archive {
	return &Archive{Dir: dir}
}

// SaveJSON writes data to <Dir>/<uuid>.json and returns the file name.
func (a *Archive) SaveJSON(data any) (string, error) {
	if err := os.MkdirAll(a.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	filename := uuid.NewString() + ".json"
	path := filepath.Join(a.Dir, filename)

	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	log.Printf("Saved report %s", path)
	return filename, nil
}
