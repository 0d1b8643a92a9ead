// Package racesim runs race cards from the command line.
package racesim

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	platformcmd "github.com/louisbranch/racesim/internal/platform/cmd"
	apperrors "github.com/louisbranch/racesim/internal/platform/errors"
	"github.com/louisbranch/racesim/internal/platform/random"
	"github.com/louisbranch/racesim/internal/platform/timeouts"
	"github.com/louisbranch/racesim/internal/services/race/app"
	"github.com/louisbranch/racesim/internal/services/race/storage/sqlite"
	"github.com/louisbranch/racesim/internal/services/race/stream"
	"github.com/louisbranch/racesim/internal/tools/racecard"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Config holds racesim command configuration.
type Config struct {
	Card       string        `env:"CARD"`
	Seed       int64         `env:"SEED"`
	Step       float64       `env:"TICK"        envDefault:"0.05"`
	DBPath     string        `env:"DB_PATH"`
	Runs       int           `env:"RUNS"        envDefault:"1"`
	Parallel   int           `env:"PARALLEL"`
	Variance   bool          `env:"VARIANCE"`
	Cadence    time.Duration `env:"CADENCE"`
	ListenAddr string        `env:"LISTEN_ADDR"`
	Verbose    bool          `env:"VERBOSE"`
	MaxTicks   int           `env:"MAX_TICKS"`
	Replay     string
	History    int
}

// ParseConfig loads RACESIM_* defaults and then parses flags.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Card, "card", cfg.Card, "path to a .lua or .yaml race card")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "race seed (0 = card seed, else random)")
	fs.Float64Var(&cfg.Step, "dt", cfg.Step, "simulated seconds per tick")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "sqlite path for saved races")
	fs.IntVar(&cfg.Runs, "runs", cfg.Runs, "number of races to run with consecutive seeds")
	fs.IntVar(&cfg.Parallel, "parallel", cfg.Parallel, "max concurrent races when -runs > 1 (0 = unlimited)")
	fs.BoolVar(&cfg.Variance, "variance", cfg.Variance, "enable start delays, section variance and rushing")
	fs.DurationVar(&cfg.Cadence, "cadence", cfg.Cadence, "wall-clock pause between frames")
	fs.StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "serve frames over websocket at /race on this address")
	fs.StringVar(&cfg.Replay, "replay", "", "replay a saved race by id and verify its results")
	fs.IntVar(&cfg.History, "history", 0, "list the last N saved races")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "log phases, skill activations and mode changes")
	fs.IntVar(&cfg.MaxTicks, "max-ticks", cfg.MaxTicks, "abort races that run longer (0 = default)")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch {
	case c.Replay != "" && c.History > 0:
		return apperrors.New(apperrors.CodeInvalidConfig, "-replay and -history are exclusive")
	case (c.Replay != "" || c.History > 0) && c.DBPath == "":
		return apperrors.New(apperrors.CodeInvalidConfig, "-replay and -history need -db")
	case c.Replay == "" && c.History <= 0 && c.Card == "":
		return apperrors.New(apperrors.CodeInvalidConfig, "race card path is required")
	case c.Runs < 1:
		return apperrors.New(apperrors.CodeInvalidConfig, fmt.Sprintf("runs must be at least 1, got %d", c.Runs))
	case c.Seed < 0:
		return apperrors.New(apperrors.CodeInvalidConfig, fmt.Sprintf("seed must not be negative, got %d", c.Seed))
	}
	return nil
}

// Run executes the racesim command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if err := cfg.validate(); err != nil {
		return err
	}
	logger := log.New(errOut, "", 0)
	return platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceRacesim, func(ctx context.Context) error {
		return run(ctx, cfg, message.NewPrinter(language.English), out, logger)
	})
}

func run(ctx context.Context, cfg Config, p *message.Printer, out io.Writer, logger *log.Logger) error {
	runnerCfg := app.Config{
		Step:     cfg.Step,
		Variance: cfg.Variance,
		MaxTicks: cfg.MaxTicks,
		Cadence:  cfg.Cadence,
		Parallel: cfg.Parallel,
		Verbose:  cfg.Verbose,
		Logger:   logger,
	}
	if cfg.DBPath != "" {
		store, err := sqlite.Open(ctx, cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open race store: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Printf("close race store: %v", err)
			}
		}()
		runnerCfg.Store = store
	}
	if cfg.ListenAddr != "" && cfg.Replay == "" && cfg.History <= 0 {
		hub, stop, err := serveFrames(cfg.ListenAddr, logger)
		if err != nil {
			return err
		}
		defer stop()
		runnerCfg.Sinks = append(runnerCfg.Sinks, hub)
	}

	runner, err := app.NewRunner(runnerCfg)
	if err != nil {
		return err
	}

	switch {
	case cfg.History > 0:
		return history(ctx, runner, cfg.History, p, out)
	case cfg.Replay != "":
		return replay(ctx, runner, cfg.Replay, p, out)
	}

	race, src, err := racecard.Load(cfg.Card)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidCard, "load card", err)
	}
	for _, name := range race.BelowThreshold {
		logger.Printf("entrant %q is below the stat threshold %d", name, race.Config.StatThreshold)
	}
	seed, err := pickSeed(cfg.Seed, race)
	if err != nil {
		return err
	}
	if cfg.Runs > 1 {
		seeds := make([]int64, cfg.Runs)
		for i := range seeds {
			seeds[i] = seed + int64(i)
		}
		outs, err := runner.RunBatch(ctx, raceFromCard(race, src), seeds)
		if err != nil {
			return err
		}
		printBatch(p, out, race.Name, outs)
		return nil
	}
	outcome, err := runner.Run(ctx, raceFromCard(race, src), seed)
	if err != nil {
		return err
	}
	printOutcome(p, out, race, outcome)
	return nil
}

func pickSeed(flagSeed int64, race *racecard.Race) (int64, error) {
	switch {
	case flagSeed != 0:
		return flagSeed, nil
	case race.HasSeed:
		return race.Seed, nil
	default:
		return random.NewSeed()
	}
}

func raceFromCard(race *racecard.Race, src racecard.Source) app.Race {
	return app.Race{
		Name:     race.Name,
		Config:   race.Config,
		Catalog:  race.Catalog,
		Entrants: race.Entrants,
		Card: app.Card{
			Name:   src.Name,
			Format: string(src.Format),
			Source: src.Text,
		},
	}
}

func history(ctx context.Context, runner *app.Runner, limit int, p *message.Printer, out io.Writer) error {
	races, err := runner.History(ctx, limit)
	if err != nil {
		return err
	}
	if len(races) == 0 {
		p.Fprintln(out, "no saved races")
		return nil
	}
	p.Fprintf(out, "%-26s  %-19s  %-20s  %8s  %-10s  %s\n", "ID", "CREATED", "RACE", "DISTANCE", "COURSE", "SEED")
	for _, r := range races {
		course := r.Course
		if course == "" {
			course = "-"
		}
		p.Fprintf(out, "%-26s  %-19s  %-20s  %6.0f m  %-10s  %s\n",
			r.ID, r.CreatedAt.Format(time.DateTime), r.Name, r.Distance, course, strconv.FormatInt(r.Seed, 10))
	}
	return nil
}

func replay(ctx context.Context, runner *app.Runner, raceID string, p *message.Printer, out io.Writer) error {
	stored, err := runner.Stored(ctx, raceID)
	if err != nil {
		return err
	}
	src := racecard.Source{
		Name:   stored.CardName,
		Format: racecard.Format(stored.CardFormat),
		Text:   stored.CardSource,
	}
	race, err := racecard.Compile(src)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidCard, "compile stored card", err)
	}
	outcome, err := runner.Replay(ctx, stored, raceFromCard(race, src))
	if err != nil {
		return err
	}
	printOutcome(p, out, race, outcome)
	p.Fprintf(out, "replay of %s matches the stored results\n", raceID)
	return nil
}

func serveFrames(addr string, logger *log.Logger) (*stream.Hub, func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	hub := stream.NewHub(logger)
	mux := http.NewServeMux()
	mux.Handle("/race", hub)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: timeouts.ReadHeader}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("frame server: %v", err)
		}
	}()
	logger.Printf("streaming frames at ws://%s/race", ln.Addr())

	stop := func() {
		_ = hub.Close()
		ctx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Printf("frame server shutdown: %v", err)
		}
	}
	return hub, stop, nil
}
