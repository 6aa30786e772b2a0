package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/starford/raido/internal/models"
)

// PinID builds the stable pin identifier from a file path and a 1-based
// headline line number. External order persistence depends on this exact
// derivation staying put across scans.
func PinID(path string, line int) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return fmt.Sprintf("%s-%d", stem, line)
}

// ConvertToPins projects pinned headlines of a file into Pin records.
// The pin timestamp is the file's modification time, which gives the
// recency-based default ordering at file granularity.
func ConvertToPins(file models.OutlineFile, pinned []models.Headline) []models.Pin {
	pins := make([]models.Pin, 0, len(pinned))
	for _, h := range pinned {
		pins = append(pins, models.Pin{
			ID:              PinID(file.Path, h.LineNumber),
			Content:         h.Title,
			LineNumber:      h.LineNumber,
			Timestamp:       file.ModTime.UnixMilli(),
			FilePath:        file.Path,
			SourceFile:      file.Name,
			OrgHeadline:     h.Raw,
			Tags:            h.Tags,
			DetailedContent: strings.TrimSpace(h.Body),
			OrgTimestamps:   h.Timestamps,
		})
	}
	return pins
}
