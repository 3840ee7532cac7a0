package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"

	"prodcal/internal/capture"
	"prodcal/internal/config"
	"prodcal/internal/export"
	"prodcal/internal/ics"
	appLog "prodcal/internal/log"
	"prodcal/internal/render"
	"prodcal/internal/schedule"
	"prodcal/internal/source"
	"prodcal/internal/web"
)

const version = "0.1.0"

// flagConfig holds CLI flag values. Set flags override the config file.
type flagConfig struct {
	configPath string
	input      string
	rulesURL   string
	year       int
	format     string
	out        string
	logLevel   string
	serve      bool
	listen     string
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	applyFlags(conf, flags)

	if err := appLog.Configure(conf.LogOptions()); err != nil {
		appLog.Error("failed to configure logger", err)
		os.Exit(1)
	}
	defer appLog.Sync()

	appLog.Info("prodcal starting", "version", version)
	appLog.Debug("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"week_start", conf.WeekStart,
		"refresh", conf.RefreshCron,
		"year", conf.Year,
		"rules_path", conf.RulesPath,
		"rules_url_set", conf.RulesURL != "",
		"format", flags.format,
		"serve", flags.serve,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if flags.serve {
		err = serve(ctx, conf)
	} else {
		err = generate(ctx, conf, flags)
	}
	if err != nil {
		appLog.Error("prodcal failed", err)
		appLog.Sync()
		os.Exit(1)
	}
	appLog.Info("prodcal exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "./prodcal.yaml", "Path to config file")
	flag.StringVar(&cfg.input, "input", "", `Rule list file ("-" reads stdin); overrides rules_path`)
	flag.StringVar(&cfg.rulesURL, "rules-url", "", "Rule list URL (overrides config if set)")
	flag.IntVar(&cfg.year, "year", 0, "Calendar year (default: config year or current year)")
	flag.StringVar(&cfg.format, "format", formatGrid, "Output format: grid, csv, ics, json or pdf")
	flag.StringVar(&cfg.out, "out", "", "Output file (default: stdout; pdf defaults to business-calendar-<year>.pdf)")
	flag.StringVar(&cfg.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config if set)")
	flag.BoolVar(&cfg.serve, "serve", false, "Run the HTTP server instead of generating once")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")

	flag.Parse()

	return cfg
}

func applyFlags(conf *config.Config, flags flagConfig) {
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if flags.logLevel != "" {
		conf.Logging.Level = flags.logLevel
	}
	if flags.rulesURL != "" {
		conf.RulesURL = flags.rulesURL
		conf.RulesPath = ""
	}
	if flags.input != "" && flags.input != "-" {
		conf.RulesPath = flags.input
	}
	if flags.year != 0 {
		conf.Year = flags.year
	}
}

// generate runs one pass: load rules, expand them, write the chosen format.
func generate(ctx context.Context, conf *config.Config, flags flagConfig) error {
	if err := validFormat(flags.format); err != nil {
		return err
	}
	year := conf.ResolveYear(time.Now())
	if err := config.ValidateYear(year); err != nil {
		return err
	}

	text, err := readRules(ctx, conf, flags.input)
	if err != nil {
		return err
	}

	res := schedule.Generate(schedule.ParseLines(text), year)
	appLog.Info(fmt.Sprintf("Generated %d events for %d", len(res.Events), year))

	path := outputPath(flags.format, flags.out, year)
	w, closeOut, err := openOutput(path)
	if err != nil {
		return err
	}
	if err := writeFormat(ctx, w, conf, flags.format, res); err != nil {
		closeOut()
		return err
	}
	if err := closeOut(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if path != "" {
		appLog.Info("calendar written", "format", flags.format, "path", path)
	}
	return nil
}

func readRules(ctx context.Context, conf *config.Config, input string) (string, error) {
	if input == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	rules, err := source.NewLoader(conf.CacheDir).Load(ctx, source.Spec{Path: conf.RulesPath, URL: conf.RulesURL})
	if err != nil {
		return "", err
	}
	appLog.Debug("rules loaded", "origin", string(rules.Origin), "bytes", len(rules.Text))
	return rules.Text, nil
}

func writeFormat(ctx context.Context, w io.Writer, conf *config.Config, format string, res schedule.Result) error {
	opts := renderOptions(conf, time.Now())
	switch format {
	case formatGrid:
		return render.RenderTerminal(w, res.Year, res.Events, opts)
	case formatCSV:
		return export.WriteCSV(w, res.Events)
	case formatICS:
		return ics.Write(w, res.Events, ics.Options{
			Year:            res.Year,
			Title:           conf.Title,
			UIDDomain:       conf.UIDDomain,
			ReminderTrigger: conf.ReminderTrigger,
		})
	case formatJSON:
		return export.WriteJSON(w, res.Year, res.Events, res.Unrecognized)
	case formatPDF:
		data, err := export.PDF(ctx, newPrinter(conf), res.Year, res.Events, opts)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("unknown format %q", format)
}

// serve runs the HTTP server with a cron job that reloads the rules and
// refreshes the PNG preview.
func serve(ctx context.Context, conf *config.Config) error {
	loader := source.NewLoader(conf.CacheDir)
	srv := web.NewServer(conf, loader, newPrinter(conf))

	c := cron.New(cron.WithLocation(conf.Location()))
	if _, err := c.AddFunc(conf.RefreshCron, func() { refresh(ctx, conf, srv) }); err != nil {
		return fmt.Errorf("schedule refresh %q: %w", conf.RefreshCron, err)
	}
	c.Start()
	defer func() { <-c.Stop().Done() }()

	// First preview once the listener is likely up.
	go func() {
		select {
		case <-time.After(2 * time.Second):
			refresh(ctx, conf, srv)
		case <-ctx.Done():
		}
	}()

	err := srv.ListenAndServe(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// refresh drops cached calendars, regenerates the current year and captures
// /calendar to the preview path.
func refresh(ctx context.Context, conf *config.Config, srv *web.Server) {
	srv.Invalidate()
	year := conf.ResolveYear(time.Now())
	res, err := srv.Events(ctx, year)
	if err != nil {
		appLog.Error("refresh: generate failed", err, "year", year)
		return
	}
	appLog.Info("refresh: calendar regenerated", "year", year, "events", len(res.Events))

	err = capture.CaptureCalendarPNG(ctx, capture.CaptureOptions{
		URL:        previewURL(conf, year),
		OutputPath: conf.Capture.PreviewPath,
		Timeout:    conf.Capture.Timeout(),
		ExecPath:   conf.Capture.ChromePath,
	})
	if err != nil {
		appLog.Error("refresh: preview capture failed", err, "path", conf.Capture.PreviewPath)
	}
}

func newPrinter(conf *config.Config) export.Printer {
	return export.ChromePrinter{Options: capture.PDFOptions{
		Timeout:  conf.Capture.Timeout(),
		ExecPath: conf.Capture.ChromePath,
	}}
}

func renderOptions(conf *config.Config, now time.Time) render.Options {
	return render.Options{
		Title:     conf.Title,
		WeekStart: render.ParseWeekStart(conf.WeekStart),
		Today:     now.In(conf.Location()),
		Highlight: conf.HighlightRed,
	}
}
