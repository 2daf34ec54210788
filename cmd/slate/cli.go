package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v2"

	"github.com/hpungsan/slate/internal/config"
	"github.com/hpungsan/slate/internal/deck"
	"github.com/hpungsan/slate/internal/drafts"
	"github.com/hpungsan/slate/internal/errors"
	"github.com/hpungsan/slate/internal/geometry"
	"github.com/hpungsan/slate/internal/ops"
	"github.com/hpungsan/slate/internal/web"
)

// maxInputBytes caps documents read from stdin or a file argument.
const maxInputBytes = 16 << 20

// newCLIApp creates the CLI application with all commands.
func newCLIApp(store drafts.Store, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "slate",
		Usage:   "Structured slide documents: compliance checks, canvas sync and drafts",
		Version: Version,
		Commands: []*cli.Command{
			checkCmd(cfg),
			schemaCmd(),
			exportOutlineCmd(cfg),
			elementsCmd(cfg),
			syncCmd(cfg),
			geometryCmd(),
			draftCmd(store, cfg),
			serveCmd(store, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// checkCmd creates the check command.
func checkCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Validate an outline against the compliance rules (exits 1 when not compliant)",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "report", Aliases: []string{"r"}, Usage: "Print a markdown report instead of JSON"},
		},
		Action: func(c *cli.Context) error {
			data, err := readInput(c, maxInputBytes)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Check(cfg, ops.CheckInput{Outline: data, Report: c.Bool("report")})
			if err != nil {
				return outputError(err)
			}

			if c.Bool("report") {
				if _, err := fmt.Fprint(c.App.Writer, output.Report); err != nil {
					return err
				}
			} else if err := outputJSON(c.App.Writer, output); err != nil {
				return err
			}

			if !output.Compliant {
				return cli.Exit(fmt.Sprintf("outline is not compliant: %d error(s)", output.Summary.Errors), 1)
			}
			return nil
		},
	}
}

// schemaCmd creates the schema command.
func schemaCmd() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print the outline JSON Schema and the known layouts",
		Action: func(c *cli.Context) error {
			return outputJSON(c.App.Writer, ops.Schema())
		},
	}
}

// exportOutlineCmd creates the export-outline command.
func exportOutlineCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "export-outline",
		Usage:     "Write a compliant outline to a .json file",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.slate/exports/<title>-<timestamp>.json)"},
		},
		Action: func(c *cli.Context) error {
			data, err := readInput(c, maxInputBytes)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.ExportOutline(c.Context, cfg, ops.ExportOutlineInput{
				Outline: data,
				Path:    c.String("path"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// elementsCmd creates the elements command.
func elementsCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "elements",
		Usage:     "Generate the canvas elements for one slide",
		ArgsUsage: "[file]",
		Action: func(c *cli.Context) error {
			data, err := readInput(c, maxInputBytes)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Elements(cfg, ops.ElementsInput{Slide: data})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// syncCmd creates the sync command.
func syncCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "sync",
		Usage:     `Re-derive a slide from an edited canvas; input is {"slide": {...}, "elements": [...]}`,
		ArgsUsage: "[file]",
		Action: func(c *cli.Context) error {
			data, err := readInput(c, maxInputBytes)
			if err != nil {
				return outputError(err)
			}

			slide := gjson.GetBytes(data, "slide")
			if !slide.IsObject() {
				return outputError(errors.NewInvalidRequest("slide object is required"))
			}
			var elements []deck.Element
			if raw := gjson.GetBytes(data, "elements"); raw.Exists() {
				if err := json.Unmarshal([]byte(raw.Raw), &elements); err != nil {
					return outputError(errors.NewInvalidRequest(fmt.Sprintf("elements: %v", err)))
				}
			}

			output, err := ops.Sync(cfg, ops.SyncInput{
				Slide:    json.RawMessage(slide.Raw),
				Elements: elements,
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// geometryCmd creates the geometry command and its subcommands. Each reads
// a box array (or an object with a "boxes" array).
func geometryCmd() *cli.Command {
	run := func(c *cli.Context, apply func([]geometry.Box) (*ops.GeometryOutput, error)) error {
		data, err := readInput(c, maxInputBytes)
		if err != nil {
			return outputError(err)
		}
		boxes, err := parseBoxes(data)
		if err != nil {
			return outputError(err)
		}
		output, err := apply(boxes)
		if err != nil {
			return outputError(err)
		}
		return outputJSON(c.App.Writer, output)
	}

	return &cli.Command{
		Name:  "geometry",
		Usage: "Align, distribute, resize or snap boxes",
		Subcommands: []*cli.Command{
			{
				Name:      "align",
				Usage:     "Align boxes to a shared edge or midpoint",
				ArgsUsage: "[file]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "edge", Aliases: []string{"e"}, Required: true, Usage: "left|right|top|bottom|center|middle"},
				},
				Action: func(c *cli.Context) error {
					return run(c, func(boxes []geometry.Box) (*ops.GeometryOutput, error) {
						return ops.Align(ops.AlignInput{Boxes: boxes, Edge: c.String("edge")})
					})
				},
			},
			{
				Name:      "distribute",
				Usage:     "Space three or more boxes evenly",
				ArgsUsage: "[file]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "axis", Aliases: []string{"a"}, Required: true, Usage: "horizontal|vertical"},
				},
				Action: func(c *cli.Context) error {
					return run(c, func(boxes []geometry.Box) (*ops.GeometryOutput, error) {
						return ops.Distribute(ops.DistributeInput{Boxes: boxes, Axis: c.String("axis")})
					})
				},
			},
			{
				Name:      "match-size",
				Usage:     "Copy one box's size onto every box",
				ArgsUsage: "[file]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "dimension", Aliases: []string{"d"}, Value: "both", Usage: "width|height|both"},
					&cli.StringFlag{Name: "target", Aliases: []string{"t"}, Required: true, Usage: "ID of the box whose size is copied"},
				},
				Action: func(c *cli.Context) error {
					return run(c, func(boxes []geometry.Box) (*ops.GeometryOutput, error) {
						return ops.MatchSize(ops.MatchSizeInput{Boxes: boxes, Dimension: c.String("dimension"), TargetID: c.String("target")})
					})
				},
			},
			{
				Name:      "snap",
				Usage:     "Round box positions to a grid",
				ArgsUsage: "[file]",
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "grid", Aliases: []string{"g"}, Value: 0.25, Usage: "Grid size in slide units"},
				},
				Action: func(c *cli.Context) error {
					return run(c, func(boxes []geometry.Box) (*ops.GeometryOutput, error) {
						return ops.Snap(ops.SnapInput{Boxes: boxes, Grid: c.Float64("grid")})
					})
				},
			},
		},
	}
}

// draftCmd creates the draft command and its subcommands.
func draftCmd(store drafts.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "draft",
		Usage: "Manage recoverable drafts",
		Subcommands: []*cli.Command{
			draftSaveCmd(store),
			draftGetCmd(store),
			draftListCmd(store),
			draftDeleteCmd(store),
			draftPurgeCmd(store),
			draftExportCmd(store, cfg),
			draftImportCmd(store, cfg),
		},
	}
}

// draftSaveCmd creates the draft save command.
func draftSaveCmd(store drafts.Store) *cli.Command {
	return &cli.Command{
		Name:      "save",
		Usage:     "Save a draft (reads the document from a file or stdin)",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "id", Usage: "Draft key (default: a new ULID)"},
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "Draft type (default: outline)"},
			&cli.StringFlag{Name: "title", Usage: "Recovery label (default: the outline title)"},
		},
		Action: func(c *cli.Context) error {
			data, err := readInput(c, maxInputBytes)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.DraftSave(c.Context, store, ops.DraftSaveInput{
				ID:    c.String("id"),
				Type:  c.String("type"),
				Title: c.String("title"),
				Data:  data,
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// draftGetCmd creates the draft get command.
func draftGetCmd(store drafts.Store) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Fetch a draft by ID",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "data", Usage: "Print only the document"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.DraftGet(c.Context, store, ops.DraftGetInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}

			if c.Bool("data") {
				return outputJSON(c.App.Writer, output.Data)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// draftListCmd creates the draft list command.
func draftListCmd(store drafts.Store) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List drafts, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "Filter by draft type"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 20, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.DraftList(c.Context, store, ops.DraftListInput{
				Type:   c.String("type"),
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// draftDeleteCmd creates the draft delete command.
func draftDeleteCmd(store drafts.Store) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Discard a draft",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.DraftDelete(c.Context, store, ops.DraftDeleteInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// draftPurgeCmd creates the draft purge command.
func draftPurgeCmd(store drafts.Store) *cli.Command {
	return &cli.Command{
		Name:  "purge",
		Usage: "Permanently delete old drafts",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "older-than", Usage: "Only purge drafts saved more than N days ago (e.g., 7d)"},
			&cli.BoolFlag{Name: "all", Usage: "Delete every draft"},
		},
		Action: func(c *cli.Context) error {
			var (
				output *ops.PurgeOutput
				err    error
			)
			switch olderThan := c.String("older-than"); {
			case olderThan != "" && c.Bool("all"):
				return outputError(errors.NewInvalidRequest("--older-than and --all are mutually exclusive"))
			case olderThan != "":
				days, perr := parseDuration(olderThan)
				if perr != nil {
					return outputError(errors.NewInvalidRequest(perr.Error()))
				}
				output, err = ops.DraftPurge(c.Context, store, ops.DraftPurgeInput{OlderThanDays: days})
			case c.Bool("all"):
				output, err = ops.DraftClear(c.Context, store)
			default:
				return outputError(errors.NewInvalidRequest("--older-than or --all is required"))
			}
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// draftExportCmd creates the draft export command.
func draftExportCmd(store drafts.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Back up drafts to a JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.slate/exports/<type|all>-<timestamp>.jsonl)"},
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "Only export drafts of this type"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ExportDrafts(c.Context, store, cfg, ops.ExportInput{
				Path: c.String("path"),
				Type: c.String("type"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// draftImportCmd creates the draft import command.
func draftImportCmd(store drafts.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Restore drafts from a JSONL backup",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Import file path"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "error", Usage: "Collision mode: error|replace|rename"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ImportDrafts(c.Context, store, cfg, ops.ImportInput{
				Path: c.String("path"),
				Mode: ops.ImportMode(c.String("mode")),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c.App.Writer, output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(store drafts.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web UI for browsing drafts and checking outlines",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Aliases: []string{"b"}, Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Value: 7373, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			port := c.Int("port")
			if port <= 0 || port > 65535 {
				return outputError(errors.NewInvalidRequest("port must be between 1 and 65535"))
			}
			return web.Run(c.Context, web.NewServer(store, cfg, Version, c.String("bind"), port))
		},
	}
}

// Helper functions

// outputJSON marshals v to w as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var sErr *errors.SlateError
	if stderrors.As(err, &sErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", sErr.Code, sErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// readInput returns the document named by the first argument, or piped stdin
// when no argument is given.
func readInput(c *cli.Context, limit int64) (json.RawMessage, error) {
	if path := c.Args().First(); path != "" && path != "-" {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.NewFileNotFound(path)
			}
			return nil, errors.NewInvalidRequest(err.Error())
		}
		if info.Size() > limit {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("%s exceeds %d bytes", path, limit))
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.NewInvalidRequest(err.Error())
		}
		return json.RawMessage(strings.TrimSpace(string(data))), nil
	}

	if !stdinHasData() {
		return nil, errors.NewInvalidRequest("input must be piped via stdin or given as a file argument")
	}
	text, err := readStdin(limit)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	if text == "" {
		return nil, errors.NewInvalidRequest("input is empty")
	}
	return json.RawMessage(text), nil
}

// parseBoxes accepts a bare box array or an object with a "boxes" array.
func parseBoxes(data []byte) ([]geometry.Box, error) {
	raw := gjson.ParseBytes(data)
	if raw.IsObject() {
		raw = raw.Get("boxes")
	}
	if !raw.IsArray() {
		return nil, errors.NewInvalidRequest("expected a box array or {\"boxes\": [...]}")
	}
	var boxes []geometry.Box
	if err := json.Unmarshal([]byte(raw.Raw), &boxes); err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("boxes: %v", err))
	}
	return boxes, nil
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads at most limit bytes from stdin.
func readStdin(limit int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(os.Stdin, limit+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("input exceeds %d bytes", limit)
	}
	return strings.TrimSpace(string(data)), nil
}

// parseDuration parses "7d" format to days.
func parseDuration(s string) (int, error) {
	if numStr, ok := strings.CutSuffix(s, "d"); ok {
		days, err := strconv.Atoi(numStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		if days <= 0 {
			return 0, fmt.Errorf("duration must be positive")
		}
		return days, nil
	}
	return 0, fmt.Errorf("duration must end with 'd' (days), e.g., 7d")
}
