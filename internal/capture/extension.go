package capture

import (
	"path/filepath"
	"strings"
)

// Format is an output image encoding.
type Format string

const (
	JPEG Format = "jpeg"
	BMP  Format = "bmp"
	PNG  Format = "png"
	GIF  Format = "gif"
	TIFF Format = "tiff"
)

// Formats lists the accepted output encodings in match order.
var Formats = []Format{JPEG, BMP, PNG, GIF, TIFF}

// MatchFormat picks the output encoding for path.
//
// In the default mode an extension name matches anywhere in the path as long
// as at least one character precedes it, case-sensitively, and the leftmost
// match wins. In strict mode the path must end in "."+name, compared without
// regard to case.
func MatchFormat(path string, strict bool) (Format, bool) {
	if strict {
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
		for _, f := range Formats {
			if ext == string(f) {
				return f, true
			}
		}
		return "", false
	}

	best, bestAt := Format(""), -1
	for _, f := range Formats {
		at := strings.Index(path, string(f))
		if at == 0 {
			// Needs a leading character; look past the first occurrence.
			if next := strings.Index(path[1:], string(f)); next >= 0 {
				at = next + 1
			} else {
				at = -1
			}
		}
		if at > 0 && (bestAt < 0 || at < bestAt) {
			best, bestAt = f, at
		}
	}
	return best, bestAt > 0
}
