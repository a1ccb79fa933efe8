package tracker

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 80, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test png: %v", err)
	}
	return buf.Bytes()
}

func TestProcessIconResizesToSquare(t *testing.T) {
	src := pngBytes(t, 300, 120)

	icon, data, err := processIcon(bytes.NewReader(src), "keto-cookbook", "banner.png")
	if err != nil {
		t.Fatalf("processIcon failed: %v", err)
	}

	if icon.Width != iconSize || icon.Height != iconSize {
		t.Errorf("icon dimensions = %dx%d, want %dx%d", icon.Width, icon.Height, iconSize, iconSize)
	}
	if !strings.HasPrefix(icon.Filename, "keto-cookbook-") || !strings.HasSuffix(icon.Filename, ".jpg") {
		t.Errorf("unexpected filename %q", icon.Filename)
	}
	if icon.OriginalName != "banner.png" {
		t.Errorf("OriginalName = %q", icon.OriginalName)
	}
	if icon.Size != len(data) {
		t.Errorf("Size = %d, want %d", icon.Size, len(data))
	}

	out, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a decodable jpeg: %v", err)
	}
	b := out.Bounds()
	if b.Dx() != iconSize || b.Dy() != iconSize {
		t.Errorf("output bounds = %dx%d, want %dx%d", b.Dx(), b.Dy(), iconSize, iconSize)
	}
}

func TestProcessIconFilenameTracksContent(t *testing.T) {
	a := pngBytes(t, 64, 64)
	b := pngBytes(t, 200, 200)

	iconA, _, err := processIcon(bytes.NewReader(a), "camp", "a.png")
	if err != nil {
		t.Fatalf("processIcon failed: %v", err)
	}
	iconASame, _, err := processIcon(bytes.NewReader(a), "camp", "a.png")
	if err != nil {
		t.Fatalf("processIcon failed: %v", err)
	}
	iconB, _, err := processIcon(bytes.NewReader(b), "camp", "b.png")
	if err != nil {
		t.Fatalf("processIcon failed: %v", err)
	}

	if iconA.Filename != iconASame.Filename {
		t.Errorf("same input produced different filenames: %q vs %q", iconA.Filename, iconASame.Filename)
	}
	if iconA.Filename == iconB.Filename {
		t.Errorf("different inputs produced the same filename %q", iconA.Filename)
	}
}

func TestProcessIconRejectsGarbage(t *testing.T) {
	_, _, err := processIcon(strings.NewReader("not an image at all"), "camp", "x.png")
	if err == nil {
		t.Fatal("expected an error for non-image input")
	}
}
