package ops

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/hpungsan/slate/internal/compliance"
	"github.com/hpungsan/slate/internal/config"
	"github.com/hpungsan/slate/internal/deck"
	"github.com/hpungsan/slate/internal/drafts"
	"github.com/hpungsan/slate/internal/errors"
)

// ExportSchemaVersion is written into every backup header.
const ExportSchemaVersion = "1.0"

// ExportInput contains parameters for the ExportDrafts operation.
type ExportInput struct {
	Path string // optional, default: ~/.slate/exports/<type|all>-<timestamp>.jsonl
	Type string // optional filter by draft type
}

// ExportOutput contains the result of the ExportDrafts operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Count      int    `json:"count"`
	ExportedAt int64  `json:"exported_at"`
}

// ExportHeader is the first line of a draft backup file.
type ExportHeader struct {
	SlateExport   bool   `json:"_slate_export"`
	SchemaVersion string `json:"schema_version"`
	ExportedAt    int64  `json:"exported_at"`
}

// ExportDrafts writes drafts to a JSONL backup: a header line, then one
// draft per line, newest first.
func ExportDrafts(ctx context.Context, store drafts.Store, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	now := time.Now()
	typ := NormalizeType(input.Type)

	exportPath := input.Path
	if exportPath == "" {
		var err error
		exportPath, err = defaultExportPath(typ, ExtBackup, now)
		if err != nil {
			return nil, err
		}
	}

	// Default paths are validated too: the type is user input.
	if err := ValidatePath(exportPath, PathCheckWrite, cfg, ExtBackup); err != nil {
		return nil, err
	}

	all, err := store.ListByType(ctx, typ)
	if err != nil {
		return nil, err
	}

	header := ExportHeader{
		SlateExport:   true,
		SchemaVersion: ExportSchemaVersion,
		ExportedAt:    now.UnixMilli(),
	}

	err = writeFileAtomic(exportPath, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		if err := enc.Encode(header); err != nil {
			return errors.NewInternal(err)
		}
		for _, d := range all {
			select {
			case <-ctx.Done():
				return errors.NewCancelled("export")
			default:
			}
			if err := enc.Encode(d); err != nil {
				return errors.NewInternal(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ExportOutput{
		Path:       exportPath,
		Count:      len(all),
		ExportedAt: header.ExportedAt,
	}, nil
}

// ExportOutlineInput contains parameters for the ExportOutline operation.
type ExportOutlineInput struct {
	Outline json.RawMessage // required
	Path    string          // optional, default: ~/.slate/exports/<title>-<timestamp>.json
}

// ExportOutlineOutput contains the result of the ExportOutline operation.
type ExportOutlineOutput struct {
	Path    string             `json:"path"`
	Slides  int                `json:"slides"`
	Summary compliance.Summary `json:"summary"`
}

// ExportOutline writes an outline as indented JSON. Export is refused with
// EXPORT_BLOCKED while the outline has compliance errors.
func ExportOutline(ctx context.Context, cfg *config.Config, input ExportOutlineInput) (*ExportOutlineOutput, error) {
	o, err := parseOutline("outline", input.Outline)
	if err != nil {
		return nil, err
	}

	opts := compliance.Options{}
	if cfg != nil {
		opts.MinSlideCount = cfg.MinSlideCount
	}
	res := compliance.Check(o, opts)
	if err := compliance.GateExport(res); err != nil {
		return nil, err
	}

	exportPath := input.Path
	if exportPath == "" {
		name := o.Title
		if name == "" {
			name = "outline"
		}
		exportPath, err = defaultExportPath(name, ExtOutline, time.Now())
		if err != nil {
			return nil, err
		}
	}
	if err := ValidatePath(exportPath, PathCheckWrite, cfg, ExtOutline); err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	err = writeFileAtomic(exportPath, func(w io.Writer) error {
		if ctx.Err() != nil {
			return errors.NewCancelled("export")
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return errors.NewInternal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ExportOutlineOutput{
		Path:    exportPath,
		Slides:  len(o.Slides),
		Summary: res.Summary,
	}, nil
}

// writeFileAtomic writes to a temp file beside path, then renames it into
// place. An existing file survives any failure.
func writeFileAtomic(path string, write func(w io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		return err
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	bw := bufio.NewWriter(file)
	if err := write(bw); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return errors.NewInternal(err)
	}

	// Close before rename (required on Windows).
	if err := file.Close(); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlinked destination.
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("export path is a symlink")
	}

	if err := os.Rename(tempPath, path); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(path); statErr == nil {
				return errors.NewInvalidRequest("export destination already exists; overwriting is not supported on Windows (choose a new path or delete the existing file)")
			}
		}
		return errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return nil
}

// defaultExportPath builds ~/.slate/exports/<name>-<timestamp><ext>.
func defaultExportPath(name, ext string, now time.Time) (string, error) {
	dir, err := DefaultExportsDir()
	if err != nil {
		return "", err
	}
	if name == "" {
		name = "all"
	}
	filename := fmt.Sprintf("%s-%s%s", SanitizeForFilename(name), now.Format("2006-01-02T150405"), ext)
	return filepath.Join(dir, filename), nil
}

// OutlineWriter returns a persist function for editor.Session.Export that
// writes the outline to path through ExportOutline.
func OutlineWriter(ctx context.Context, cfg *config.Config, path string) func(deck.Outline) error {
	return func(o deck.Outline) error {
		data, err := json.Marshal(o)
		if err != nil {
			return errors.NewInternal(err)
		}
		_, err = ExportOutline(ctx, cfg, ExportOutlineInput{Outline: data, Path: path})
		return err
	}
}
