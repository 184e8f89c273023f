package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	contractx "github.com/tanpawarit/trip-planner-agent/agent/contract"
	"github.com/tanpawarit/trip-planner-agent/agent/eval"
)

const EvaluationFile = "evaluation_results.json"

// Config is read with the ARCHIVE prefix.
type Config struct {
	Dir         string `default:"."`
	PostgresDSN string `envconfig:"POSTGRES_DSN"`

	// HistoryLimit caps how many archived trips feed similar-trip lookups.
	HistoryLimit int `split_words:"true" default:"10"`
}

// Archive persists finished itineraries.
type Archive interface {
	SaveItinerary(ctx context.Context, it *contractx.Itinerary) error
}

var _ Archive = (*FileArchive)(nil)

// FileArchive writes one JSON document per itinerary into a directory.
// Writes go through a temp file and a rename so readers never see a partial
// document.
type FileArchive struct {
	dir string
}

func NewFileArchive(dir string) (*FileArchive, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	return &FileArchive{dir: dir}, nil
}

func (a *FileArchive) Dir() string {
	return a.dir
}

// ItineraryPath is where the itinerary with id is written.
func (a *FileArchive) ItineraryPath(id string) string {
	return filepath.Join(a.dir, "itinerary-"+id+".json")
}

func (a *FileArchive) SaveItinerary(ctx context.Context, it *contractx.Itinerary) error {
	if it == nil {
		return fmt.Errorf("%w: itinerary is required", contractx.ErrValidation)
	}
	if err := validID(it.ID); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return writeJSONAtomic(a.ItineraryPath(it.ID), it)
}

func (a *FileArchive) LoadItinerary(ctx context.Context, id string) (*contractx.Itinerary, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(a.ItineraryPath(id))
	if err != nil {
		return nil, err
	}
	var it contractx.Itinerary
	if err := json.Unmarshal(raw, &it); err != nil {
		return nil, fmt.Errorf("decode itinerary %s: %w", id, err)
	}
	return &it, nil
}

// SaveEvaluation writes the suite summary to evaluation_results.json and
// returns the path.
func (a *FileArchive) SaveEvaluation(ctx context.Context, summary eval.SuiteSummary) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := filepath.Join(a.dir, EvaluationFile)
	if err := writeJSONAtomic(path, summary); err != nil {
		return "", err
	}
	return path, nil
}

func validID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: itinerary id is required", contractx.ErrValidation)
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return fmt.Errorf("%w: invalid itinerary id %q", contractx.ErrValidation, id)
	}
	return nil
}

func writeJSONAtomic(path string, v any) (err error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(append(raw, '\n')); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", filepath.Base(path), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Multi saves to every archive and joins their errors.
type Multi []Archive

func (m Multi) SaveItinerary(ctx context.Context, it *contractx.Itinerary) error {
	var errs []error
	for _, a := range m {
		if a == nil {
			continue
		}
		if err := a.SaveItinerary(ctx, it); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
