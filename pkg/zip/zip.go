// Package zip bundles generated media assets into a single archive for
// download endpoints.
package zip

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// Asset is one archive entry.
type Asset struct {
	FileName string
	MIME     string
	Data     []byte
}

// Archive writes all assets into an in-memory zip. Duplicate file names
// are disambiguated with a numeric suffix so no entry is silently lost.
func Archive(assets []Asset) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	seen := make(map[string]int, len(assets))
	for _, asset := range assets {
		name := asset.FileName
		if name == "" {
			name = "asset"
		}
		if n := seen[name]; n > 0 {
			name = fmt.Sprintf("%d-%s", n, name)
		}
		seen[asset.FileName]++
		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("zip: create entry %s: %w", name, err)
		}
		if _, err := w.Write(asset.Data); err != nil {
			return nil, fmt.Errorf("zip: write entry %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip: close archive: %w", err)
	}
	return buf.Bytes(), nil
}
