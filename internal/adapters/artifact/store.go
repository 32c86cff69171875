// Package artifact persists trained models as versioned, immutable
// directories. Each version holds the compressed classifier, its encoder
// bundle and a manifest with checksums and training metadata. A version is
// published by renaming a fully written temp directory, so readers never see
// a partial artifact.
package artifact

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"

	"github.com/Ritik-JS/alumni-careerpath/internal/domain/encoding"
	"github.com/Ritik-JS/alumni-careerpath/internal/domain/forest"
	"github.com/Ritik-JS/alumni-careerpath/internal/domain/model"
	"github.com/Ritik-JS/alumni-careerpath/internal/domain/training"
	"github.com/Ritik-JS/alumni-careerpath/pkg/logger"
	"github.com/Ritik-JS/alumni-careerpath/pkg/metrics"
	"github.com/Ritik-JS/alumni-careerpath/pkg/retry"
)

// File names inside a version directory.
const (
	ClassifierFile = "classifier.gob.zst"
	EncodersFile   = "encoders.gob.zst"
	ManifestFile   = "manifest.json"

	formatVersion = 1
	tempPrefix    = ".tmp-"
	dirPerm       = 0o750
	filePerm      = 0o640
)

// FileInfo describes one stored file.
type FileInfo struct {
	SHA256    string `json:"sha256"`
	SizeBytes int64  `json:"size_bytes"`
}

// Manifest is the JSON sidecar of a version. It is written last, so a
// directory without one is never considered complete.
type Manifest struct {
	FormatVersion   int                     `json:"format_version"`
	Version         string                  `json:"version"`
	CreatedAt       time.Time               `json:"created_at"`
	Files           map[string]FileInfo     `json:"files"`
	Metrics         training.Metrics        `json:"metrics"`
	Hyperparameters forest.Params           `json:"hyperparameters"`
	Strategy        training.SearchStrategy `json:"strategy"`
	TrainSamples    int                     `json:"train_samples"`
	TestSamples     int                     `json:"test_samples"`
	Stratified      bool                    `json:"stratified"`
	FeatureNames    []string                `json:"feature_names"`
}

// SizeBytes is the total size of the stored files.
func (m *Manifest) SizeBytes() int64 {
	var n int64
	for _, f := range m.Files {
		n += f.SizeBytes
	}
	return n
}

// Store reads and writes artifacts under a base directory.
type Store struct {
	dir    string
	enc    *zstd.Encoder
	dec    *zstd.Decoder
	retry  retry.Policy
	logger logger.Logger
}

// NewStore creates the base directory if needed and returns a Store.
func NewStore(dir string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("create artifact directory: %w", err)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	s := &Store{
		dir:   dir,
		enc:   enc,
		dec:   dec,
		retry: retry.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("artifact")
	}
	return s, nil
}

// Close releases the codec resources.
func (s *Store) Close() error {
	s.dec.Close()
	return s.enc.Close()
}

// Dir returns the base directory.
func (s *Store) Dir() string {
	return s.dir
}

// Publish writes a into a temp directory and renames it to its version.
// An existing version is never overwritten.
func (s *Store) Publish(ctx context.Context, a *training.Artifact) error {
	if a == nil || a.Forest == nil || a.Bundle == nil {
		return ErrIncomplete
	}
	if !validVersion(a.Version) {
		return fmt.Errorf("%w: %q", ErrInvalidVersion, a.Version)
	}
	final := filepath.Join(s.dir, a.Version)
	if _, err := os.Stat(final); err == nil {
		return fmt.Errorf("%w: %s", ErrVersionExists, a.Version)
	}

	tmp, err := os.MkdirTemp(s.dir, tempPrefix+a.Version+"-")
	if err != nil {
		return fmt.Errorf("create temp directory: %w", err)
	}
	published := false
	defer func() {
		if !published {
			_ = os.RemoveAll(tmp)
		}
	}()

	m := Manifest{
		FormatVersion:   formatVersion,
		Version:         a.Version,
		CreatedAt:       a.CreatedAt,
		Files:           make(map[string]FileInfo, 2),
		Metrics:         a.Metrics,
		Hyperparameters: a.Params,
		Strategy:        a.Strategy,
		TrainSamples:    a.TrainSamples,
		TestSamples:     a.TestSamples,
		Stratified:      a.Stratified,
		FeatureNames:    a.Bundle.FeatureNames,
	}
	for name, v := range map[string]any{ClassifierFile: a.Forest, EncodersFile: a.Bundle} {
		info, err := s.writeGob(filepath.Join(tmp, name), v)
		if err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		m.Files[name] = info
	}

	raw, err := json.MarshalIndent(&m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := writeFileSync(filepath.Join(tmp, ManifestFile), raw); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("publish %s: %w", a.Version, err)
	}
	published = true

	s.logger.Info(ctx, "artifact published",
		logger.String("version", a.Version),
		logger.String("path", final),
		logger.Int("bytes", int(m.SizeBytes())),
	)
	return nil
}

// List returns the manifests of complete versions, newest first.
func (s *Store) List(ctx context.Context) ([]Manifest, error) {
	versions, err := s.versions()
	if err != nil {
		return nil, err
	}
	out := make([]Manifest, 0, len(versions))
	for _, v := range versions {
		m, err := s.manifest(v)
		if err != nil {
			s.logger.Debug(ctx, "skipping incomplete artifact", logger.String("version", v), logger.Error(err))
			continue
		}
		out = append(out, *m)
	}
	return out, nil
}

// Latest loads the newest version that loads cleanly. Versions that fail
// their checksums or decoding are skipped with a warning. With no versions
// it returns ErrNotFound; when every version fails it returns the error of
// the newest one.
func (s *Store) Latest(ctx context.Context) (*training.Artifact, error) {
	versions, err := s.versions()
	if err != nil {
		return nil, err
	}
	var firstErr error
	for _, v := range versions {
		a, err := s.Load(ctx, v)
		if err == nil {
			return a, nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if ctx.Err() != nil {
			return nil, err
		}
		metrics.RecordErrorByComponent("artifact", "load")
		s.logger.Warn(ctx, "skipping unloadable artifact version", logger.String("version", v), logger.Error(err))
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return nil, ErrNotFound
}

// Load reads one version and verifies its checksums. Transient read errors
// are retried; missing files, checksum and decode failures are not.
func (s *Store) Load(ctx context.Context, version string) (*training.Artifact, error) {
	if !validVersion(version) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVersion, version)
	}
	var art *training.Artifact
	err := retry.Do(ctx, s.retry, func() error {
		a, err := s.load(version)
		if err != nil {
			// Only filesystem errors other than absence are transient.
			var pathErr *fs.PathError
			if errors.As(err, &pathErr) && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			return retry.Permanent(err)
		}
		art = a
		return nil
	}, func(err error, wait time.Duration) {
		metrics.RecordDatasourceRetry("artifact_load")
		s.logger.Warn(ctx, "artifact load retry", logger.String("version", version), logger.Duration("wait", wait), logger.Error(err))
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, version, err)
		}
		return nil, err
	}
	return art, nil
}

func (s *Store) load(version string) (*training.Artifact, error) {
	m, err := s.manifest(version)
	if err != nil {
		return nil, err
	}
	var f forest.Forest
	if err := s.readGob(version, ClassifierFile, m.Files[ClassifierFile], &f); err != nil {
		return nil, err
	}
	var b encoding.Bundle
	if err := s.readGob(version, EncodersFile, m.Files[EncodersFile], &b); err != nil {
		return nil, err
	}
	return &training.Artifact{
		Version:      m.Version,
		CreatedAt:    m.CreatedAt,
		Forest:       &f,
		Bundle:       &b,
		Metrics:      m.Metrics,
		Params:       m.Hyperparameters,
		Strategy:     m.Strategy,
		TrainSamples: m.TrainSamples,
		TestSamples:  m.TestSamples,
		Stratified:   m.Stratified,
	}, nil
}

func (s *Store) manifest(version string) (*Manifest, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, version, ManifestFile))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", version, err)
	}
	return &m, nil
}

// versions lists version directory names, newest first.
func (s *Store) versions() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read artifact directory: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && validVersion(e.Name()) {
			out = append(out, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out, nil
}

func (s *Store) writeGob(path string, v any) (FileInfo, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return FileInfo{}, err
	}
	compressed := s.enc.EncodeAll(buf.Bytes(), nil)
	if err := writeFileSync(path, compressed); err != nil {
		return FileInfo{}, err
	}
	sum := sha256.Sum256(compressed)
	return FileInfo{SHA256: hex.EncodeToString(sum[:]), SizeBytes: int64(len(compressed))}, nil
}

func (s *Store) readGob(version, name string, info FileInfo, v any) error {
	compressed, err := os.ReadFile(filepath.Join(s.dir, version, name))
	if err != nil {
		return err
	}
	sum := sha256.Sum256(compressed)
	if hex.EncodeToString(sum[:]) != info.SHA256 {
		return fmt.Errorf("%w: %s/%s", ErrChecksumMismatch, version, name)
	}
	raw, err := s.dec.DecodeAll(compressed, nil)
	if err != nil {
		return fmt.Errorf("decompress %s: %w", name, err)
	}
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func writeFileSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, filePerm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// validVersion accepts names produced by model.NewVersion.
func validVersion(v string) bool {
	if strings.HasPrefix(v, tempPrefix) || v == "" {
		return false
	}
	_, err := time.Parse(model.VersionLayout, v)
	return err == nil
}
