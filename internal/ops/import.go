package ops

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/hpungsan/slate/internal/config"
	"github.com/hpungsan/slate/internal/deck"
	"github.com/hpungsan/slate/internal/drafts"
	"github.com/hpungsan/slate/internal/errors"
)

// maxImportLine bounds a single backup line (one serialized draft).
const maxImportLine = 16 << 20

// ImportMode controls collision behavior during import.
type ImportMode string

const (
	ImportModeError   ImportMode = "error"   // fail on collision, write nothing
	ImportModeReplace ImportMode = "replace" // overwrite on collision
	ImportModeRename  ImportMode = "rename"  // new ID on collision
)

// ImportInput contains parameters for the ImportDrafts operation.
type ImportInput struct {
	Path string     // required
	Mode ImportMode // default: error
}

// ImportOutput contains the result of the ImportDrafts operation.
type ImportOutput struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors"`
}

// ImportError describes a line that could not be imported.
type ImportError struct {
	Line    int    `json:"line"`
	ID      string `json:"id,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type importRecord struct {
	line  int
	draft drafts.Draft
}

// ImportDrafts restores drafts from a JSONL backup written by ExportDrafts.
func ImportDrafts(ctx context.Context, store drafts.Store, cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	if input.Mode == "" {
		input.Mode = ImportModeError
	}
	if input.Mode != ImportModeError && input.Mode != ImportModeReplace && input.Mode != ImportModeRename {
		return nil, errors.NewInvalidRequest("mode must be one of: error, replace, rename")
	}
	if err := ValidatePath(input.Path, PathCheckRead, cfg, ExtBackup); err != nil {
		return nil, err
	}

	file, err := openNoFollow(input.Path, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, parseErrors := parseBackup(file)

	switch input.Mode {
	case ImportModeError:
		return importAllOrNothing(ctx, store, records, parseErrors)
	case ImportModeReplace:
		return importEach(ctx, store, records, parseErrors, false)
	default:
		return importEach(ctx, store, records, parseErrors, true)
	}
}

// parseBackup reads every line, skipping the header.
func parseBackup(r io.Reader) ([]importRecord, []ImportError) {
	var records []importRecord
	var parseErrors []ImportError

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxImportLine)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		if !gjson.ValidBytes(line) {
			parseErrors = append(parseErrors, ImportError{
				Line:    lineNum,
				Code:    "PARSE_ERROR",
				Message: "invalid JSON",
			})
			continue
		}
		if gjson.GetBytes(line, "_slate_export").Bool() {
			continue
		}

		var d drafts.Draft
		if err := json.Unmarshal(line, &d); err != nil {
			parseErrors = append(parseErrors, ImportError{
				Line:    lineNum,
				Code:    "PARSE_ERROR",
				Message: fmt.Sprintf("invalid draft: %v", err),
			})
			continue
		}
		if msg := checkImportedDraft(&d); msg != "" {
			parseErrors = append(parseErrors, ImportError{
				Line:    lineNum,
				ID:      d.ID,
				Code:    "INVALID_RECORD",
				Message: msg,
			})
			continue
		}
		records = append(records, importRecord{line: lineNum, draft: d})
	}

	if err := scanner.Err(); err != nil {
		parseErrors = append(parseErrors, ImportError{
			Line:    lineNum + 1,
			Code:    "READ_ERROR",
			Message: fmt.Sprintf("failed to read file: %v", err),
		})
	}

	return records, parseErrors
}

// checkImportedDraft normalizes d and returns a problem description, or "".
func checkImportedDraft(d *drafts.Draft) string {
	d.ID = strings.TrimSpace(d.ID)
	if d.ID == "" {
		return "missing id field"
	}
	d.Type = NormalizeType(d.Type)
	if d.Type == "" {
		d.Type = DefaultDraftType
	}
	if len(d.Data) == 0 || !json.Valid(d.Data) {
		return "missing or invalid data field"
	}
	if d.Type == DefaultDraftType {
		if _, err := deck.ParseOutline(d.Data); err != nil {
			return fmt.Sprintf("data is not an outline: %v", err)
		}
	}
	return ""
}

// importAllOrNothing writes nothing if any line is bad or any ID is taken.
func importAllOrNothing(ctx context.Context, store drafts.Store, records []importRecord, parseErrors []ImportError) (*ImportOutput, error) {
	if len(parseErrors) > 0 {
		return &ImportOutput{Errors: parseErrors}, nil
	}

	seen := make(map[string]int, len(records))
	for _, rec := range records {
		if first, ok := seen[rec.draft.ID]; ok {
			return &ImportOutput{Errors: []ImportError{{
				Line:    rec.line,
				ID:      rec.draft.ID,
				Code:    "DUPLICATE_ID",
				Message: fmt.Sprintf("id %q already appears on line %d", rec.draft.ID, first),
			}}}, nil
		}
		seen[rec.draft.ID] = rec.line

		exists, err := draftExists(ctx, store, rec.draft.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return &ImportOutput{Errors: []ImportError{{
				Line:    rec.line,
				ID:      rec.draft.ID,
				Code:    "ID_COLLISION",
				Message: fmt.Sprintf("draft with id %q already exists", rec.draft.ID),
			}}}, nil
		}
	}

	imported := 0
	for _, rec := range records {
		if ctx.Err() != nil {
			return nil, errors.NewCancelled("import")
		}
		if err := store.Save(ctx, rec.draft); err != nil {
			return nil, err
		}
		imported++
	}
	return &ImportOutput{Imported: imported, Errors: []ImportError{}}, nil
}

// importEach writes records one by one. Colliding IDs are overwritten, or
// given a fresh ID when rename is set.
func importEach(ctx context.Context, store drafts.Store, records []importRecord, parseErrors []ImportError, rename bool) (*ImportOutput, error) {
	out := &ImportOutput{
		Skipped: len(parseErrors),
		Errors:  append([]ImportError{}, parseErrors...),
	}

	for _, rec := range records {
		if ctx.Err() != nil {
			return nil, errors.NewCancelled("import")
		}
		d := rec.draft
		if rename {
			exists, err := draftExists(ctx, store, d.ID)
			if err != nil {
				return nil, err
			}
			if exists {
				id, err := generateULID()
				if err != nil {
					return nil, errors.NewInternal(err)
				}
				d.ID = id
			}
		}
		if err := store.Save(ctx, d); err != nil {
			out.Errors = append(out.Errors, ImportError{
				Line:    rec.line,
				ID:      d.ID,
				Code:    "SAVE_FAILED",
				Message: err.Error(),
			})
			out.Skipped++
			continue
		}
		out.Imported++
	}
	return out, nil
}

func draftExists(ctx context.Context, store drafts.Store, id string) (bool, error) {
	_, err := store.Get(ctx, id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, errors.ErrNotFound) {
		return false, nil
	}
	return false, err
}
