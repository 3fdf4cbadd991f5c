// Package zip bundles history images and a JSON manifest into one archive.
package zip

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

const manifestName = "manifest.json"

// Asset is one file in the archive.
type Asset struct {
	Filename string
	Data     []byte
}

// ArchiveAssets writes assets plus a manifest to w. Filenames are flattened
// to their base name and de-duplicated with a numeric suffix.
func ArchiveAssets(w io.Writer, assets []Asset, manifest any, modified time.Time) error {
	zw := zip.NewWriter(w)
	used := map[string]int{manifestName: 1}
	for _, asset := range assets {
		name := uniqueName(used, asset.Filename)
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: modified})
		if err != nil {
			return fmt.Errorf("zip: create %s: %w", name, err)
		}
		if _, err := fw.Write(asset.Data); err != nil {
			return fmt.Errorf("zip: write %s: %w", name, err)
		}
	}
	if manifest != nil {
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: manifestName, Method: zip.Deflate, Modified: modified})
		if err != nil {
			return fmt.Errorf("zip: create manifest: %w", err)
		}
		enc := json.NewEncoder(fw)
		enc.SetIndent("", "  ")
		if err := enc.Encode(manifest); err != nil {
			return fmt.Errorf("zip: encode manifest: %w", err)
		}
	}
	return zw.Close()
}

func uniqueName(used map[string]int, name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "" || name == "." || name == "/" {
		name = "file"
	}
	n := used[name]
	used[name] = n + 1
	if n == 0 {
		return name
	}
	ext := path.Ext(name)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), n, ext)
}
