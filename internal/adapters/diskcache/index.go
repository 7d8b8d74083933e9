package diskcache

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/natefinch/atomic"
	"go.trai.ch/iconsmith/internal/core/domain"
	"go.trai.ch/zerr"
)

// IndexEntry is one record of the on-disk side index.
type IndexEntry struct {
	Fname    string  `json:"fname"`
	Size     int64   `json:"size"`
	LastUsed float64 `json:"last_used"` // unix seconds; zero sorts as oldest
	Source   string  `json:"source,omitempty"`
	Px       int     `json:"px,omitempty"`
	MTime    int64   `json:"mtime,omitempty"`
}

// Index maps a fingerprint key to its entry.
type Index map[string]IndexEntry

// TotalBytes sums the recorded blob sizes.
func (idx Index) TotalBytes() int64 {
	var total int64
	for _, e := range idx {
		total += e.Size
	}
	return total
}

// readIndex loads the index. Missing or malformed files yield an empty index,
// and a legacy list-shaped index is rekeyed by blob file stem.
// The returned error is informational only.
func readIndex(path string) (Index, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is derived from the cache directory
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Index{}, nil
		}
		return Index{}, domain.Classify(domain.ErrIndexReadFailed, zerr.With(err, "path", path))
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Index{}, nil
	}

	var idx Index
	if err := json.Unmarshal(data, &idx); err == nil {
		if idx == nil {
			idx = Index{}
		}
		return idx, nil
	}

	var legacy []IndexEntry
	if err := json.Unmarshal(data, &legacy); err == nil {
		healed := make(Index, len(legacy))
		for _, e := range legacy {
			if e.Fname == "" {
				continue
			}
			healed[strings.TrimSuffix(e.Fname, blobExt)] = e
		}
		return healed, nil
	}

	return Index{}, domain.Classify(domain.ErrIndexReadFailed, zerr.With(zerr.New("malformed index"), "path", path))
}

func writeIndex(path string, idx Index) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return domain.Classify(domain.ErrIndexWriteFailed, err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return domain.Classify(domain.ErrIndexWriteFailed, zerr.With(err, "path", path))
	}
	return nil
}
