package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func createTestJPEG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	var buf bytes.Buffer
	jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func createTestPNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{0, 0, 255, 255})
		}
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func TestProcessPNGOutputsJPEG(t *testing.T) {
	data, err := Process(bytes.NewReader(createTestPNG(100, 100)))
	if err != nil {
		t.Fatalf("Process PNG: %v", err)
	}
	if ct := http.DetectContentType(data); ct != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %s", ct)
	}
}

func TestProcessDownscales(t *testing.T) {
	data, err := Process(bytes.NewReader(createTestJPEG(2048, 1024)))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != MaxDimension || b.Dy() != MaxDimension/2 {
		t.Errorf("expected %dx%d, got %dx%d", MaxDimension, MaxDimension/2, b.Dx(), b.Dy())
	}
}

func TestProcessRejectsNonImage(t *testing.T) {
	if _, err := Process(strings.NewReader("definitely not an image")); err == nil {
		t.Error("expected error for non-image data")
	}
}

func TestProcessRejectsTooLarge(t *testing.T) {
	big := bytes.Repeat([]byte{0}, MaxUploadSize+10)
	if _, err := Process(bytes.NewReader(big)); !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}

func TestSaveAndServe(t *testing.T) {
	u, err := NewUploads(t.TempDir())
	if err != nil {
		t.Fatalf("NewUploads: %v", err)
	}
	u.now = func() time.Time { return time.UnixMilli(1700000000000) }

	public, err := u.Save(bytes.NewReader(createTestJPEG(10, 10)), `C:\zdjęcia\hełm wz.93.png`)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if public != "/uploads/1700000000000-hem_wz_93.jpg" {
		t.Errorf("unexpected public path %q", public)
	}
	if _, err := os.Stat(filepath.Join(u.Dir(), "1700000000000-hem_wz_93.jpg")); err != nil {
		t.Errorf("expected stored file: %v", err)
	}

	rec := httptest.NewRecorder()
	u.Handler().ServeHTTP(rec, httptest.NewRequest("GET", public, nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 serving image, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	u.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/uploads/", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for directory listing, got %d", rec.Code)
	}

	if err := u.Remove(public); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := u.Remove(public); err != nil {
		t.Errorf("expected removing a missing image to succeed, got %v", err)
	}
}

func TestSanitize(t *testing.T) {
	tests := map[string]string{
		"photo.png":        "photo",
		"../../etc/passwd": "passwd",
		"...":              "image",
		"a b.c.jpg":        "a_b_c",
	}
	for in, want := range tests {
		if got := sanitize(in); got != want {
			t.Errorf("sanitize(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestSaveKeepsSameNameUploadsApart(t *testing.T) {
	u, err := NewUploads(t.TempDir())
	if err != nil {
		t.Fatalf("NewUploads: %v", err)
	}
	u.now = func() time.Time { return time.UnixMilli(1700000000000) }

	first, err := u.Save(bytes.NewReader(createTestJPEG(10, 10)), "helm.jpg")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	second, err := u.Save(bytes.NewReader(createTestJPEG(20, 20)), "helm.jpg")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if first != "/uploads/1700000000000-helm.jpg" || second != "/uploads/1700000000000-helm-2.jpg" {
		t.Errorf("unexpected paths %q and %q", first, second)
	}

	if err := u.Remove(second); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(u.Dir(), path.Base(first))); err != nil {
		t.Errorf("expected first image to survive: %v", err)
	}
}
