package capture

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchFormat(t *testing.T) {
	tests := []struct {
		path   string
		strict bool
		want   Format
		ok     bool
	}{
		{"frame.png", false, PNG, true},
		{"shot.jpeg", false, JPEG, true},
		{"x.tiff", false, TIFF, true},
		{"out.txt", false, "", false},
		{"png", false, "", false},
		{"pngpng", false, PNG, true},
		{"x.PNG", false, "", false},
		{"x.PNG", true, PNG, true},
		{"a.png.bak", false, PNG, true},
		{"a.png.bak", true, "", false},
		{"dir.gif/x.tiff", false, GIF, true},
		{"dir.gif/x.tiff", true, TIFF, true},
		{"", false, "", false},
	}
	for _, tt := range tests {
		got, ok := MatchFormat(tt.path, tt.strict)
		if ok != tt.ok || got != tt.want {
			t.Errorf("MatchFormat(%q, %v) = %q, %v; want %q, %v", tt.path, tt.strict, got, ok, tt.want, tt.ok)
		}
	}
}

func TestEncode_Decodable(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 6, 4))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	for _, f := range Formats {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, img, f, 0), f)

		cfg, name, err := image.DecodeConfig(&buf)
		require.NoError(t, err, f)
		assert.Equal(t, string(f), name)
		assert.Equal(t, 6, cfg.Width)
		assert.Equal(t, 4, cfg.Height)
	}

	assert.Error(t, Encode(&bytes.Buffer{}, img, Format("webp"), 0))
}

func TestWriteFile_ReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frame.jpeg")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	img := image.NewGray(image.Rect(0, 0, 3, 3))
	require.NoError(t, writeFile(path, img, JPEG, 75))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, "old", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	assert.Error(t, writeFile(filepath.Join(dir, "missing", "f.png"), img, PNG, 0))
}
