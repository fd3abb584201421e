// Package fileid derives stable product ids for rows read from import files,
// so importing the same file again updates its products instead of adding
// new ones.
package fileid

import (
	"path/filepath"

	"github.com/google/uuid"
)

var namespace = uuid.MustParse("3d9a7c55-0f4e-4b8a-a1c2-8e5f6b7d9a01")

// RowID returns a stable UUID for the row identified by key in the file at
// absolutePath. The same cleaned path and key always yield the same id.
func RowID(absolutePath, key string) string {
	normalized := filepath.Clean(absolutePath)
	return uuid.NewSHA1(namespace, []byte(normalized+"#"+key)).String()
}
