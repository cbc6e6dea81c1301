// Package export writes generation artifacts to disk as CSV or JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/synthlab/synthlink/internal/models"
)

// Format selects the on-disk representation of an artifact.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat maps a user-supplied format string to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown export format %q, expected csv or json", s)
	}
}

// WriteArtifact writes the artifact to path in the given format. The write
// is atomic: data lands in a temp file first and is renamed into place, so
// a failure mid-write never leaves a truncated export behind.
func WriteArtifact(artifact *models.GenerateResult, path string, format Format) error {
	if artifact == nil {
		return fmt.Errorf("nil artifact")
	}

	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmpPath, err)
	}

	switch format {
	case FormatCSV:
		err = writeCSV(f, artifact.SyntheticData)
	case FormatJSON:
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		err = enc.Encode(artifact)
	default:
		err = fmt.Errorf("unknown export format %q", format)
	}

	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move export into place: %w", err)
	}
	return nil
}

// LoadArtifact reads a previously exported JSON artifact back.
func LoadArtifact(path string) (*models.GenerateResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var artifact models.GenerateResult
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to parse artifact %s: %w", filepath.Base(path), err)
	}
	return &artifact, nil
}

// writeCSV flattens the records into one CSV table. The header is the sorted
// union of all keys so ragged records still export cleanly.
func writeCSV(f *os.File, records []map[string]any) error {
	w := csv.NewWriter(f)

	keys := map[string]struct{}{}
	for _, rec := range records {
		for k := range rec {
			keys[k] = struct{}{}
		}
	}
	header := make([]string, 0, len(keys))
	for k := range keys {
		header = append(header, k)
	}
	sort.Strings(header)

	if err := w.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for _, rec := range records {
		for i, k := range header {
			row[i] = formatCell(rec[k])
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		// JSON numbers decode as float64; keep integral values clean.
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", x)
	}
}
