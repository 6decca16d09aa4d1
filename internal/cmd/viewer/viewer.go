// Package viewer parses viewer command flags and starts the scene
// runtime: registry, gauge, reconciler, event source, and the web and
// terminal views.
package viewer

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/boardroomhq/boardroom/internal/demo"
	entrypoint "github.com/boardroomhq/boardroom/internal/platform/cmd"
	"github.com/boardroomhq/boardroom/internal/scene/metrics"
	"github.com/boardroomhq/boardroom/internal/scene/participant"
	"github.com/boardroomhq/boardroom/internal/scene/reconcile"
	"github.com/boardroomhq/boardroom/internal/storage"
	"github.com/boardroomhq/boardroom/internal/storage/sqlite"
	"github.com/boardroomhq/boardroom/internal/transport/bus"
	"github.com/boardroomhq/boardroom/internal/view/tui"
	"github.com/boardroomhq/boardroom/internal/view/web"
)

// Config holds viewer command configuration.
type Config struct {
	BusURL        string  `env:"BOARDROOM_BUS_URL"`
	HTTPAddr      string  `env:"BOARDROOM_HTTP_ADDR" envDefault:":8080"`
	JournalPath   string  `env:"BOARDROOM_JOURNAL_PATH"`
	HistoryWindow int     `env:"BOARDROOM_HISTORY_WINDOW" envDefault:"10"`
	TurnLingerMS  int     `env:"BOARDROOM_TURN_LINGER_MS" envDefault:"500"`
	SeatRadius    float64 `env:"BOARDROOM_SEAT_RADIUS" envDefault:"220"`
	TUI           bool    `env:"BOARDROOM_TUI"`
	Demo          bool    `env:"BOARDROOM_DEMO"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.BusURL, "bus", cfg.BusURL, "Websocket URL of the meeting event bus")
	fs.StringVar(&cfg.HTTPAddr, "addr", cfg.HTTPAddr, "Listen address for the web viewer")
	fs.StringVar(&cfg.JournalPath, "journal", cfg.JournalPath, "SQLite journal path (empty disables the journal)")
	fs.IntVar(&cfg.HistoryWindow, "window", cfg.HistoryWindow, "Novelty history window size")
	fs.IntVar(&cfg.TurnLingerMS, "linger-ms", cfg.TurnLingerMS, "How long a finished turn stays visible, in milliseconds")
	fs.Float64Var(&cfg.SeatRadius, "seat-radius", cfg.SeatRadius, "Seat circle radius in layout units")
	fs.BoolVar(&cfg.TUI, "tui", cfg.TUI, "Render the scene in the terminal")
	fs.BoolVar(&cfg.Demo, "demo", cfg.Demo, "Replay the built-in demo meeting instead of consuming the bus")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the viewer runtime.
func Run(ctx context.Context, cfg Config) error {
	if cfg.BusURL == "" && !cfg.Demo {
		return errors.New("viewer needs an event source: set -bus or -demo")
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceViewer, func(ctx context.Context) error {
		return run(ctx, cfg)
	})
}

func run(ctx context.Context, cfg Config) error {
	registry := participant.NewRegistry(participant.Options{SeatRadius: cfg.SeatRadius})
	gauge := metrics.NewGauge(cfg.HistoryWindow)

	var journal storage.JournalStore
	if cfg.JournalPath != "" {
		store, err := sqlite.Open(cfg.JournalPath)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Printf("viewer: close journal: %v", err)
			}
		}()
		journal = store
	}

	reconciler := reconcile.NewReconciler(reconcile.Options{
		Registry:   registry,
		Gauge:      gauge,
		Journal:    journal,
		TurnLinger: time.Duration(cfg.TurnLingerMS) * time.Millisecond,
	})
	defer reconciler.Close()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	errc := make(chan error, 4)

	webServer := web.NewServer(web.Options{
		Registry:   registry,
		Gauge:      gauge,
		Reconciler: reconciler,
		Journal:    journal,
	})
	go webServer.Run(runCtx)
	go func() { errc <- serveHTTP(runCtx, cfg.HTTPAddr, webServer.Handler()) }()

	if cfg.Demo {
		driver := demo.NewDriver(demo.Options{Handler: reconciler.Handle, Loop: true})
		go func() { errc <- driver.Run(runCtx) }()
	} else {
		client, err := bus.NewClient(bus.Options{URL: cfg.BusURL, Handler: reconciler.Handle})
		if err != nil {
			return err
		}
		go func() { errc <- client.Run(runCtx) }()
	}

	if cfg.TUI {
		// The terminal view owns the session: quitting it shuts the
		// viewer down.
		err := tui.Run(runCtx, registry, gauge, reconciler)
		cancel()
		drain(errc)
		return err
	}

	err := <-errc
	cancel()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func serveHTTP(ctx context.Context, addr string, handler http.Handler) error {
	server := &http.Server{Addr: addr, Handler: handler}
	errc := make(chan error, 1)
	go func() { errc <- server.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	case err := <-errc:
		return err
	}
}

// drain empties outstanding component results so their goroutines can
// exit. Shutdown errors after a user quit are informational only.
func drain(errc chan error) {
	for {
		select {
		case err := <-errc:
			if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("viewer: shutdown: %v", err)
			}
		case <-time.After(time.Second):
			return
		}
	}
}
