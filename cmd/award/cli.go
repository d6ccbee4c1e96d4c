package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/tylertestin/InnovationAward/internal/clock"
	"github.com/tylertestin/InnovationAward/internal/config"
	"github.com/tylertestin/InnovationAward/internal/engine"
	"github.com/tylertestin/InnovationAward/internal/errors"
	"github.com/tylertestin/InnovationAward/internal/impact"
	"github.com/tylertestin/InnovationAward/internal/ingest"
	"github.com/tylertestin/InnovationAward/internal/model"
	"github.com/tylertestin/InnovationAward/internal/outlook"
	"github.com/tylertestin/InnovationAward/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(eng *engine.Engine, pl *ingest.Pipeline, cfg *config.Config, clk clock.Clock) *cli.App {
	app := &cli.App{
		Name:    "award",
		Usage:   "Local stakeholder relationship tracker",
		Version: Version,
		Commands: []*cli.Command{
			addCmd(pl),
			noteCmd(pl),
			importCmd(pl, cfg),
			capturePageCmd(pl, cfg),
			captureSlideCmd(pl),
			listCmd(eng),
			timelineCmd(eng),
			impactCmd(eng, cfg),
			exportCmd(eng),
			importStateCmd(eng),
			resetCmd(eng),
			serveCmd(eng, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// addCmd creates the add command.
func addCmd(pl *ingest.Pipeline) *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Add or update a stakeholder (deduplicated by email)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Email address (optional)"},
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Display name"},
		},
		Action: func(c *cli.Context) error {
			email := c.String("email")
			name := c.String("name")
			if email == "" && name == "" {
				return outputError(errors.NewInvalidRequest("provide --email and/or --name"))
			}
			st := pl.AddStakeholder(email, name)
			return outputJSON(st)
		},
	}
}

// noteCmd creates the note command.
func noteCmd(pl *ingest.Pipeline) *cli.Command {
	return &cli.Command{
		Name:      "note",
		Usage:     "Attach a note to a stakeholder (text from args or stdin)",
		ArgsUsage: "<stakeholder-id> [text]",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("stakeholder id is required"))
			}
			id := c.Args().First()

			text := strings.Join(c.Args().Slice()[1:], " ")
			if text == "" && stdinHasData() {
				var err error
				text, err = readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
			}

			if err := pl.AddNote(id, text); err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]string{"stakeholder_id": id})
		},
	}
}

// importCmd creates the import command.
func importCmd(pl *ingest.Pipeline, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import an Outlook CSV export (first 200 rows of larger files)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Required: true, Usage: "CSV file path"},
			&cli.StringFlag{Name: "kind", Aliases: []string{"k"}, Value: "email", Usage: "Record kind: email|calendar"},
			&cli.StringFlag{Name: "internal-domain", Usage: "Override the configured internal domain filter"},
			&cli.StringFlag{Name: "surface", Value: string(model.SurfaceWeb), Usage: "Provenance surface: web|doc-panel|slide-panel"},
		},
		Action: func(c *cli.Context) error {
			surface, err := parseSurface(c.String("surface"))
			if err != nil {
				return outputError(err)
			}

			domain := c.String("internal-domain")
			if domain == "" {
				domain = cfg.InternalDomain
			}
			keep := ingest.ExternalOnly(domain)

			f, err := os.Open(c.String("file"))
			if err != nil {
				return outputError(errors.NewInvalidRequest(fmt.Sprintf("cannot open file: %v", err)))
			}
			defer f.Close()

			var result *ingest.BatchResult
			switch c.String("kind") {
			case "email":
				emails, err := outlook.ParseInbox(f)
				if err != nil {
					return outputError(err)
				}
				result = pl.ImportEmails(emails, keep, surface)
			case "calendar":
				events, err := outlook.ParseCalendar(f)
				if err != nil {
					return outputError(err)
				}
				result = pl.ImportEvents(events, keep, surface)
			default:
				return outputError(errors.NewInvalidRequest("kind must be one of: email, calendar"))
			}

			return outputJSON(result)
		},
	}
}

// capturePageCmd creates the capture-page command.
func capturePageCmd(pl *ingest.Pipeline, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "capture-page",
		Usage: "Record a captured document page (text from stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Document title"},
			&cli.StringFlag{Name: "internal-domain", Usage: "Override the configured internal domain filter"},
		},
		Action: func(c *cli.Context) error {
			if !stdinHasData() {
				return outputError(errors.NewInvalidRequest("page text must be piped via stdin"))
			}
			text, err := readStdin()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}

			domain := c.String("internal-domain")
			if domain == "" {
				domain = cfg.InternalDomain
			}

			rec, err := pl.CapturePage(ingest.PageCapture{
				Title:      c.String("title"),
				TextSample: text,
			}, ingest.ExternalOnly(domain), model.SurfaceDocPanel)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(rec)
		},
	}
}

// captureSlideCmd creates the capture-slide command.
func captureSlideCmd(pl *ingest.Pipeline) *cli.Command {
	return &cli.Command{
		Name:  "capture-slide",
		Usage: "Record a captured slide (text from stdin)",
		Action: func(c *cli.Context) error {
			if !stdinHasData() {
				return outputError(errors.NewInvalidRequest("slide text must be piped via stdin"))
			}
			text, err := readStdin()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}

			rec, err := pl.CaptureSlide(ingest.SlideCapture{SlideText: text}, model.SurfaceSlidePanel)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(rec)
		},
	}
}

// listCmd creates the list command.
func listCmd(eng *engine.Engine) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List stakeholders",
		Action: func(c *cli.Context) error {
			s := eng.Snapshot()
			return outputJSON(map[string]any{"stakeholders": s.Stakeholders})
		},
	}
}

// timelineCmd creates the timeline command.
func timelineCmd(eng *engine.Engine) *cli.Command {
	return &cli.Command{
		Name:  "timeline",
		Usage: "List interactions, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 50, Usage: "Maximum rows"},
		},
		Action: func(c *cli.Context) error {
			s := eng.Snapshot()
			items := s.Interactions
			if limit := c.Int("limit"); limit > 0 && len(items) > limit {
				items = items[:limit]
			}
			return outputJSON(map[string]any{"interactions": items})
		},
	}
}

// impactCmd creates the impact command.
func impactCmd(eng *engine.Engine, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "impact",
		Usage: "Predict stakeholder reactions to slide text (from stdin)",
		Action: func(c *cli.Context) error {
			if cfg.AIBaseURL == "" {
				return outputError(errors.NewInvalidRequest("ai_base_url is not configured"))
			}
			if !stdinHasData() {
				return outputError(errors.NewInvalidRequest("slide text must be piped via stdin"))
			}
			text, err := readStdin()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}

			s := eng.Snapshot()
			client := impact.NewClient(cfg.AIBaseURL, os.Getenv(cfg.AIKeyEnv), cfg.AIModel)
			impacts, err := client.Predict(context.Background(), s.Stakeholders, text, s.Interactions)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(map[string]any{"impacts": impact.FilterKnown(impacts, s)})
		},
	}
}

// exportCmd creates the export command.
func exportCmd(eng *engine.Engine) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the full state as pretty-printed JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Write to file instead of stdout"},
		},
		Action: func(c *cli.Context) error {
			data, err := eng.ExportState()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			if out := c.String("out"); out != "" {
				if err := os.WriteFile(out, data, 0600); err != nil {
					return outputError(errors.NewInternal(err))
				}
				return outputJSON(map[string]string{"path": out})
			}
			fmt.Println(string(data))
			return nil
		},
	}
}

// importStateCmd creates the import-state command.
func importStateCmd(eng *engine.Engine) *cli.Command {
	return &cli.Command{
		Name:  "import-state",
		Usage: "Replace the full state from an export file (destructive)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Required: true, Usage: "Export file path"},
		},
		Action: func(c *cli.Context) error {
			raw, err := os.ReadFile(c.String("file"))
			if err != nil {
				return outputError(errors.NewInvalidRequest(fmt.Sprintf("cannot read file: %v", err)))
			}
			s, err := eng.ImportState(raw)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{
				"stakeholders": len(s.Stakeholders),
				"interactions": len(s.Interactions),
			})
		},
	}
}

// resetCmd creates the reset command.
func resetCmd(eng *engine.Engine) *cli.Command {
	return &cli.Command{
		Name:  "reset",
		Usage: "Erase all stakeholders and interactions",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force", Usage: "Skip confirmation"},
		},
		Action: func(c *cli.Context) error {
			if !c.Bool("force") {
				return outputError(errors.NewInvalidRequest("pass --force to confirm the reset"))
			}
			eng.Reset()
			return outputJSON(map[string]string{"status": "reset"})
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(eng *engine.Engine, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the timeline UI and the sync endpoint",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8787, Usage: "Port"},
		},
		Action: func(c *cli.Context) error {
			// The pull schedule lives exactly as long as the server.
			stop := eng.StartPull(context.Background(), cfg.PollInterval())
			defer stop()

			srv := web.NewServer(eng, Version, c.String("bind"), c.Int("port"))
			return web.Run(srv)
		},
	}
}

// parseSurface validates a surface flag against the closed set.
func parseSurface(s string) (model.Surface, error) {
	surface := model.Surface(s)
	if !model.KnownSurface(surface) {
		return "", errors.NewInvalidRequest("surface must be one of: web, doc-panel, slide-panel")
	}
	return surface, nil
}

// outputJSON prints data as indented JSON to stdout.
func outputJSON(data any) error {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return outputError(errors.NewInternal(err))
	}
	fmt.Println(string(out))
	return nil
}

// outputError formats error for CLI.
func outputError(err error) error {
	if tErr, ok := err.(*errors.TrackerError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", tErr.Code, tErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
