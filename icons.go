package tracker

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
)

const (
	iconSize      = 128
	jpegQuality   = 85
	maxIconUpload = 2 << 20 // 2MB
	iconsSubdir   = "icons"
)

// processIcon decodes an uploaded image, center-crops it to a square, scales
// it to iconSize, and encodes it as JPEG. The filename carries a content hash
// so replaced icons get a fresh URL past the immutable asset cache.
func processIcon(src io.Reader, entrySlug, originalName string) (Icon, []byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return Icon{}, nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	side := w
	if h < side {
		side = h
	}
	crop := image.Rect(
		bounds.Min.X+(w-side)/2,
		bounds.Min.Y+(h-side)/2,
		bounds.Min.X+(w-side)/2+side,
		bounds.Min.Y+(h-side)/2+side,
	)

	dst := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, crop, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return Icon{}, nil, fmt.Errorf("encode jpeg: %w", err)
	}

	sum := sha256.Sum256(buf.Bytes())
	filename := entrySlug + "-" + hex.EncodeToString(sum[:4]) + ".jpg"

	return Icon{
		Filename:     filename,
		EntrySlug:    entrySlug,
		OriginalName: originalName,
		Width:        iconSize,
		Height:       iconSize,
		Size:         buf.Len(),
		UploadedAt:   time.Now().UTC().Format(time.RFC3339),
	}, buf.Bytes(), nil
}

func (a *App) iconPath(filename string) string {
	return filepath.Join(a.staticDir, iconsSubdir, filename)
}

// sweepOrphanIcons removes icon files no metadata row references. Upload
// writes the file before the row, so a crash in between leaves one behind.
func (a *App) sweepOrphanIcons() error {
	icons, err := a.Store.ListIcons()
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(icons))
	for _, ic := range icons {
		known[ic.Filename] = true
	}

	dir := filepath.Join(a.staticDir, iconsSubdir)
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, f := range files {
		if f.IsDir() || known[f.Name()] {
			continue
		}
		_ = os.Remove(filepath.Join(dir, f.Name()))
	}
	return nil
}

// removeIconFile deletes an icon from disk, ignoring already-gone files.
func (a *App) removeIconFile(filename string) {
	if filename == "" {
		return
	}
	_ = os.Remove(a.iconPath(filename))
}

func (a *App) handleIconUpload(c echo.Context) error {
	slug := c.Param("slug")
	entry, err := a.Store.GetEntry(slug)
	if err != nil {
		if err == ErrNotFound {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}

	file, err := c.FormFile("icon")
	if err != nil {
		return c.String(http.StatusBadRequest, "No icon file provided")
	}
	if file.Size > maxIconUpload {
		return c.String(http.StatusBadRequest, "File too large (max 2MB)")
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	icon, data, err := processIcon(src, slug, file.Filename)
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid image: "+err.Error())
	}

	dir := filepath.Join(a.staticDir, iconsSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create icons dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, icon.Filename), data, 0o644); err != nil {
		return fmt.Errorf("write icon: %w", err)
	}

	if entry.Icon != "" && entry.Icon != icon.Filename {
		a.removeIconFile(entry.Icon)
		if err := a.Store.DeleteIcon(entry.Icon); err != nil {
			return err
		}
	}
	if err := a.Store.SaveIcon(icon); err != nil {
		return err
	}
	if err := a.Store.SetEntryIcon(slug, icon.Filename); err != nil {
		return err
	}
	a.Cache.Invalidate()

	return c.Redirect(http.StatusSeeOther, "/app/entries/"+slug+"/?msg=Icon+updated")
}
