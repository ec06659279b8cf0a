package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rewired-gh/bikestats/internal/config"
	"github.com/rewired-gh/bikestats/internal/filter"
	"github.com/rewired-gh/bikestats/internal/logger"
	"github.com/rewired-gh/bikestats/internal/models"
	"github.com/rewired-gh/bikestats/internal/pager"
	"github.com/rewired-gh/bikestats/internal/report"
	"github.com/rewired-gh/bikestats/internal/stats"
	"github.com/rewired-gh/bikestats/internal/storage"
	"github.com/rewired-gh/bikestats/internal/telegram"
)

var (
	configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")
	cityFlag   = flag.String("city", "", "City to analyze (chicago, new york city, washington); prompts when empty")
	monthFlag  = flag.String("month", "", "Month filter (january to june, or all)")
	dayFlag    = flag.String("day", "", "Day of week filter (monday to sunday, or all)")
	formatFlag = flag.String("format", "", "Output format (text or json); overrides the config file")
	rawFlag    = flag.Bool("raw", false, "Print every raw record window without prompting")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *formatFlag != "" {
		cfg.Output.Format = *formatFlag
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	defer logger.Sync()
	logger.Info("Configuration loaded from %s", *configPath)

	renderer, err := report.New(cfg.Output.Format)
	if err != nil {
		logger.Fatal("Failed to create renderer: %v", err)
	}

	var telegramClient *telegram.Client
	if cfg.Telegram.Enabled {
		telegramClient, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxRetries, cfg.Telegram.RetryDelayBase)
		if err != nil {
			logger.Fatal("Failed to initialize Telegram client: %v", err)
		}
		logger.Info("Telegram client initialized successfully")
	} else {
		logger.Debug("Telegram reports disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{
		loader:   storage.NewLoader(cfg.Sources()),
		engine:   stats.New(),
		renderer: renderer,
		telegram: telegramClient,
		pageSize: cfg.Pager.PageSize,
		out:      os.Stdout,
	}

	if *cityFlag != "" {
		err = a.runOnce(ctx, *cityFlag, orAll(*monthFlag), orAll(*dayFlag), *rawFlag)
	} else {
		err = a.interactive(ctx, newPrompter(os.Stdin, os.Stdout), *monthFlag, *dayFlag)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		logger.Fatal("%v", err)
	}
}

func orAll(s string) string {
	if s == "" {
		return models.All
	}
	return s
}

// app holds the components one exploration session needs.
type app struct {
	loader   *storage.Loader
	engine   *stats.Engine
	renderer report.Renderer
	telegram *telegram.Client
	pageSize int
	out      io.Writer
}

// runOnce analyzes a selection given entirely on the command line.
func (a *app) runOnce(ctx context.Context, city, month, day string, raw bool) error {
	sel, err := models.ParseSelection(city, month, day)
	if err != nil {
		return err
	}
	view, err := a.analyze(ctx, sel)
	if err != nil {
		return err
	}
	if !raw {
		return nil
	}
	pg := pager.New(view, a.pageSize)
	for {
		win := pg.Advance()
		if err := a.renderer.Window(a.out, win, view.Schema); err != nil {
			return err
		}
		if win.Done {
			return nil
		}
	}
}

// interactive prompts for selections until the user declines to restart.
// Preset month and day apply to the first pass only. Loading errors are
// reported and the session starts over.
func (a *app) interactive(ctx context.Context, p *prompter, month, day string) error {
	for {
		sel, err := p.selection("", month, day)
		if err != nil {
			return err
		}
		month, day = "", ""

		view, err := a.analyze(ctx, sel)
		switch {
		case errors.Is(err, context.Canceled):
			return err
		case err != nil:
			logger.Error("Analysis of %s failed: %v", sel.Dataset, err)
			fmt.Fprintf(p.out, "Could not analyze %s: %v\n", sel.Dataset.Title(), err)
		default:
			show := func(win pager.Window) error {
				return a.renderer.Window(a.out, win, view.Schema)
			}
			if err := p.page(pager.New(view, a.pageSize), a.pageSize, show); err != nil {
				return err
			}
		}

		again, err := p.restart()
		if err != nil || !again {
			return err
		}
	}
}

// analyze loads, filters and summarizes one selection and writes the report.
func (a *app) analyze(ctx context.Context, sel models.Selection) (*models.Table, error) {
	table, err := a.loader.Load(ctx, sel.Dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", sel.Dataset, err)
	}
	view, err := filter.ApplySelection(table, sel)
	if err != nil {
		return nil, err
	}

	summary := a.engine.Summary(sel, view)
	logger.Info("Run %s: selected %d of %d trips (%s, month=%s, day=%s)",
		summary.RunID, view.Len(), table.Len(), sel.Dataset, sel.Month, sel.Day)
	if err := a.renderer.Summary(a.out, summary); err != nil {
		return nil, err
	}

	if a.telegram != nil {
		var buf bytes.Buffer
		if err := report.NewTextRenderer().Summary(&buf, summary); err != nil {
			return nil, err
		}
		title := fmt.Sprintf("%s (%s/%s)", sel.Dataset.Title(), sel.Month, sel.Day)
		if err := a.telegram.SendReport(title, buf.String()); err != nil {
			logger.Warn("Failed to send report to Telegram: %v", err)
		}
	}
	return view, nil
}
