package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"nutrilog/internal/config"
	"nutrilog/internal/fileutil"
	"nutrilog/internal/logging"
	"nutrilog/internal/services"
)

const (
	DefaultMaxDimension = 1024
	DefaultJPEGQuality  = 70

	fileExt = ".jpg"
)

// ErrInvalidID reports an id that is not a single path segment.
var ErrInvalidID = fmt.Errorf("media: invalid id: %w", services.ErrValidation)

// Options tunes photo processing.
type Options struct {
	MaxDimension int
	JPEGQuality  int
	Logger       *slog.Logger
}

// Store persists processed photos under one directory.
type Store struct {
	dir          string
	maxDimension int
	quality      int
	logger       *slog.Logger

	// writes to the same id are serialized; different ids proceed in parallel.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates the directory if needed and returns a Store rooted there.
func New(dir string, opts Options) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, services.Wrap(services.ErrConfiguration, "media", "open", "media directory is empty", nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrStorage, "media", "open", dir, err)
	}
	if opts.MaxDimension <= 0 {
		opts.MaxDimension = DefaultMaxDimension
	}
	if opts.JPEGQuality <= 0 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = DefaultJPEGQuality
	}
	return &Store{
		dir:          dir,
		maxDimension: opts.MaxDimension,
		quality:      opts.JPEGQuality,
		logger:       logging.NewComponentLogger(opts.Logger, "media"),
		locks:        make(map[string]*sync.Mutex),
	}, nil
}

// NewFromConfig builds a Store from the [media] and [paths] sections.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) (*Store, error) {
	return New(cfg.Paths.MediaDir, Options{
		MaxDimension: cfg.Media.MaxDimension,
		JPEGQuality:  cfg.Media.JPEGQuality,
		Logger:       logger,
	})
}

// Dir returns the root directory.
func (s *Store) Dir() string { return s.dir }

// Prepare decodes raw, downsizes it and returns JPEG bytes.
func (s *Store) Prepare(raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return nil, services.Wrap(services.ErrValidation, "media", "prepare", "empty image", nil)
	}
	src, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, services.Wrap(services.ErrDecode, "media", "prepare", "decode image", err)
	}
	dst := s.resize(src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: s.quality}); err != nil {
		return nil, services.Wrap(services.ErrDecode, "media", "prepare", "encode jpeg", err)
	}
	s.logger.Debug("image prepared",
		logging.String("source_format", format),
		logging.Int("source_width", src.Bounds().Dx()),
		logging.Int("source_height", src.Bounds().Dy()),
		logging.Int("width", dst.Bounds().Dx()),
		logging.Int("height", dst.Bounds().Dy()),
		logging.Int("bytes", buf.Len()),
	)
	return buf.Bytes(), nil
}

// resize fits src within maxDimension on a white canvas so transparent
// regions do not turn black in the JPEG.
func (s *Store) resize(src image.Image) *image.RGBA {
	bounds := src.Bounds()
	w, h := fitWithin(bounds.Dx(), bounds.Dy(), s.maxDimension)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	if w == bounds.Dx() && h == bounds.Dy() {
		draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Over)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}

func fitWithin(w, h, limit int) (int, int) {
	longest := max(w, h)
	if longest <= limit || longest == 0 {
		return w, h
	}
	scale := float64(limit) / float64(longest)
	nw := max(1, int(float64(w)*scale+0.5))
	nh := max(1, int(float64(h)*scale+0.5))
	return nw, nh
}

// Save processes raw and writes it for id, replacing any earlier photo.
func (s *Store) Save(ctx context.Context, id string, raw []byte) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := s.Prepare(raw)
	if err != nil {
		return err
	}

	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return services.Wrap(services.ErrStorage, "media", "save", id, err)
	}
	return nil
}

// Load returns the stored JPEG for id.
func (s *Store) Load(id string) ([]byte, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, services.Wrap(services.ErrNotFound, "media", "load", id, nil)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "media", "load", id, err)
	}
	return data, nil
}

// Exists reports whether a photo is stored for id.
func (s *Store) Exists(id string) bool {
	path, err := s.path(id)
	if err != nil {
		return false
	}
	return fileutil.Exists(path)
}

// Delete removes the photo for id. Missing photos are not an error.
func (s *Store) Delete(id string) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()
	removed, err := fileutil.RemoveIfExists(path)
	if err != nil {
		return services.Wrap(services.ErrStorage, "media", "delete", id, err)
	}
	if removed {
		s.logger.Debug("photo deleted", logging.String(logging.FieldEntryID, id))
	}
	return nil
}

func (s *Store) path(id string) (string, error) {
	if err := validateID(id); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, id+fileExt), nil
}

func (s *Store) lockFor(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}

func validateID(id string) error {
	switch {
	case strings.TrimSpace(id) == "", id == ".", id == "..":
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	case strings.ContainsAny(id, `/\`+"\x00"):
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	case filepath.Base(id) != id:
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}
