// Package imaging stores item photos. Uploads are sniffed, downscaled and
// re-encoded as JPEG before they are written to the uploads directory.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/image/draw"
)

const (
	// MaxDimension is the maximum width or height of a stored image.
	MaxDimension = 1024
	// JPEGQuality is the compression quality of stored images.
	JPEGQuality = 85
	// MaxUploadSize limits accepted uploads.
	MaxUploadSize = 10 << 20
	// PublicPrefix is the URL path images are served under.
	PublicPrefix = "/uploads/"
)

// ErrTooLarge is returned for uploads over MaxUploadSize.
var ErrTooLarge = errors.New("image too large")

var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// Uploads is the directory item images are kept in.
type Uploads struct {
	dir string
	now func() time.Time
}

// NewUploads creates the uploads directory if needed.
func NewUploads(dir string) (*Uploads, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating uploads directory: %w", err)
	}
	return &Uploads{dir: dir, now: time.Now}, nil
}

// Dir returns the uploads directory.
func (u *Uploads) Dir() string {
	return u.dir
}

// Save processes an uploaded image and writes it as
// "<unix millis>-<sanitized name>.jpg". It returns the public path.
func (u *Uploads) Save(r io.Reader, originalName string) (string, error) {
	data, err := Process(r)
	if err != nil {
		return "", err
	}

	base := strconv.FormatInt(u.now().UnixMilli(), 10) + "-" + sanitize(originalName)
	name, err := u.create(base, data)
	if err != nil {
		return "", err
	}
	return PublicPrefix + name, nil
}

// create writes data to base+".jpg", adding a numeric suffix if that name is
// already taken. Existing files are never replaced.
func (u *Uploads) create(base string, data []byte) (string, error) {
	name := base + ".jpg"
	for n := 2; ; n++ {
		f, err := os.OpenFile(filepath.Join(u.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			if _, err := f.Write(data); err != nil {
				f.Close()
				os.Remove(f.Name())
				return "", fmt.Errorf("writing image: %w", err)
			}
			if err := f.Close(); err != nil {
				os.Remove(f.Name())
				return "", fmt.Errorf("closing image: %w", err)
			}
			return name, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("creating image: %w", err)
		}
		name = base + "-" + strconv.Itoa(n) + ".jpg"
	}
}

// Remove deletes the file behind a public path. Paths outside the uploads
// prefix and files that are already gone are ignored.
func (u *Uploads) Remove(publicPath string) error {
	if !strings.HasPrefix(publicPath, PublicPrefix) {
		return nil
	}
	name := path.Base(publicPath)
	if name == "." || name == "/" {
		return nil
	}
	err := os.Remove(filepath.Join(u.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing image: %w", err)
	}
	return nil
}

// Handler serves stored images under PublicPrefix without directory listings.
func (u *Uploads) Handler() http.Handler {
	files := http.StripPrefix(PublicPrefix, http.FileServer(http.Dir(u.dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}

// Process reads image data, validates the format by sniffing bytes,
// downscales if larger than MaxDimension and re-encodes as JPEG.
func Process(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}
	if len(data) > MaxUploadSize {
		return nil, ErrTooLarge
	}

	// Client headers are not trusted.
	detected := http.DetectContentType(data)
	if !allowedMIME[detected] {
		return nil, fmt.Errorf("unsupported image format: %s", detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	img = downscale(img, MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// downscale resizes img so neither dimension exceeds maxDim, keeping the
// aspect ratio. Images within bounds are returned as they are.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := maxDim, maxDim
	if w > h {
		newH = max(1, h*maxDim/w)
	} else {
		newW = max(1, w*maxDim/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// sanitize turns an uploaded file name into a safe base name without extension.
func sanitize(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.TrimSuffix(name, filepath.Ext(name))

	var b strings.Builder
	for _, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '-', r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r), r == '.':
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), "_")
	if len(out) > 64 {
		out = out[:64]
	}
	if out == "" {
		out = "image"
	}
	return out
}

func init() {
	image.RegisterFormat("jpeg", "\xff\xd8", jpeg.Decode, jpeg.DecodeConfig)
	image.RegisterFormat("png", "\x89PNG", png.Decode, png.DecodeConfig)
	image.RegisterFormat("gif", "GIF8?a", gif.Decode, gif.DecodeConfig)
}
