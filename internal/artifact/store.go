// Package artifact persists the trained model, the encoders and the
// evaluation metrics in one output directory.
package artifact

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jengzang/flight-delay-backend-go/internal/encoder"
	"github.com/jengzang/flight-delay-backend-go/internal/gbm"
	"github.com/jengzang/flight-delay-backend-go/internal/models"
)

// Artifact file names inside the output directory
const (
	ModelFile    = "delay_duration_model.json"
	EncodersFile = "label_encoders.json"
	MetricsFile  = "metrics.json"
	ReportFile   = "training_report.xlsx"
)

// Store reads and writes artifacts in a directory
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the artifact directory
func (s *Store) Dir() string { return s.dir }

// Path returns the full path of an artifact file
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// SaveModel writes the fitted model
func (s *Store) SaveModel(m *gbm.Model) error {
	return WriteAtomic(s.Path(ModelFile), m.Save)
}

// LoadModel reads the model. A missing file yields an error matching
// fs.ErrNotExist.
func (s *Store) LoadModel(opts ...gbm.Option) (*gbm.Model, error) {
	f, err := os.Open(s.Path(ModelFile))
	if err != nil {
		return nil, fmt.Errorf("open model: %w", err)
	}
	defer f.Close()
	return gbm.Load(f, opts...)
}

// SaveEncoders writes the encoder set
func (s *Store) SaveEncoders(enc *encoder.Set) error {
	return WriteAtomic(s.Path(EncodersFile), enc.Write)
}

// LoadEncoders reads the encoder set
func (s *Store) LoadEncoders() (*encoder.Set, error) {
	f, err := os.Open(s.Path(EncodersFile))
	if err != nil {
		return nil, fmt.Errorf("open encoders: %w", err)
	}
	defer f.Close()
	return encoder.Read(f)
}

// SaveMetrics writes the evaluation summary
func (s *Store) SaveMetrics(m *models.EvaluationMetrics) error {
	return WriteAtomic(s.Path(MetricsFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	})
}

// LoadMetrics reads the evaluation summary
func (s *Store) LoadMetrics() (*models.EvaluationMetrics, error) {
	data, err := os.ReadFile(s.Path(MetricsFile))
	if err != nil {
		return nil, fmt.Errorf("read metrics: %w", err)
	}

	var m models.EvaluationMetrics
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode metrics: %w", err)
	}
	return &m, nil
}

// WriteAtomic writes a file through a temporary sibling and renames it into
// place, so readers never observe a partial artifact
func WriteAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
