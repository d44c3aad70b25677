package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"golang.org/x/term"

	"github.com/scipunch/freegames/config"
	"github.com/scipunch/freegames/fetcher"
	"github.com/scipunch/freegames/filter"
	"github.com/scipunch/freegames/history"
	"github.com/scipunch/freegames/metrics"
	"github.com/scipunch/freegames/render"
	"github.com/scipunch/freegames/report"
)

const fetchFailureMessage = "Failed to fetch Epic Games data"

var errInteractiveInput = errors.New("render expects a report on stdin; pipe the output of 'fetch' or use --latest")

type globalOptions struct {
	Config string `short:"c" long:"config" description:"path to a TOML config"`
	Debug  bool   `long:"debug" description:"enable debug logging (same as DEBUG=1)"`
}

var opts globalOptions

type fetchCommand struct {
	Clean bool `long:"clean" description:"remove all stored reports and exit"`
}

type renderCommand struct {
	Latest     bool   `long:"latest" description:"render the newest stored report instead of stdin"`
	Locale     string `long:"locale" description:"message locale, overrides render.locale"`
	ExitPolicy string `long:"exit-policy" choice:"strict" choice:"lenient" description:"exit status on malformed input, overrides render.exit_policy"`
}

type runCommand struct {
	Locale     string `long:"locale" description:"message locale, overrides render.locale"`
	ExitPolicy string `long:"exit-policy" choice:"strict" choice:"lenient" description:"exit status on malformed input, overrides render.exit_policy"`
}

// exitError carries a process status out of a command
type exitError struct {
	code int
	err  error
}

func (e exitError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit status %d", e.code)
}

func (e exitError) Unwrap() error { return e.err }

func main() {
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "freegames"

	mustAddCommand(parser, "fetch", "Fetch promotions and print a JSON report",
		"Fetches the storefront promotions feed and writes the report to stdout. Exits 1 on fetch failure or when no free games were found.",
		&fetchCommand{})
	mustAddCommand(parser, "render", "Render a JSON report into a chat message",
		"Reads a report from stdin and writes the notification text to stdout.",
		&renderCommand{})
	mustAddCommand(parser, "run", "Fetch and render in one step", "", &runCommand{})

	_, err := parser.Parse()
	if err == nil {
		return
	}

	var exit exitError
	if errors.As(err, &exit) {
		if exit.err != nil {
			slog.Error("run failed", "error", exit.err)
		}
		os.Exit(exitCode(exit))
	}

	var flagsErr *flags.Error
	if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
		fmt.Fprintln(os.Stdout, flagsErr.Message)
		return
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(2)
}

func mustAddCommand(parser *flags.Parser, name, short, long string, data any) {
	if _, err := parser.AddCommand(name, short, long, data); err != nil {
		log.Fatalf("failed to register command '%s' with %s", name, err)
	}
}

func (c *fetchCommand) Execute(_ []string) error {
	conf := setup()

	if c.Clean {
		store, err := history.NewStore(conf.History.Path)
		if err != nil {
			log.Fatalf("failed to open history: %s", err)
		}
		defer store.Close()
		if err := store.Clear(); err != nil {
			log.Fatalf("failed to clear history: %s", err)
		}
		slog.Info("history cleared successfully")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return fetchTo(ctx, conf, os.Stdout)
}

func (c *renderCommand) Execute(_ []string) error {
	conf := setup()
	renderer := newRenderer(conf, c.Locale, c.ExitPolicy)

	var input []byte
	if c.Latest {
		input = latestReport(conf)
	} else {
		var err error
		input, err = readReport(os.Stdin)
		if err != nil {
			return err
		}
	}

	return emit(renderer, input, os.Stdout)
}

func (c *runCommand) Execute(_ []string) error {
	conf := setup()
	renderer := newRenderer(conf, c.Locale, c.ExitPolicy)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return runTo(ctx, conf, renderer, os.Stdout)
}

// fetchTo writes the report, or the failure document, to w. Both a failed
// fetch and an empty report exit 1.
func fetchTo(ctx context.Context, conf config.Config, w io.Writer) error {
	rep, err := fetchReport(ctx, conf)
	if err != nil {
		if encErr := report.Encode(w, report.FailureDocument{Error: fetchFailureMessage}); encErr != nil {
			slog.Error("failed to write failure document", "error", encErr)
		}
		return exitError{code: 1, err: err}
	}

	if err := report.Encode(w, rep); err != nil {
		return exitError{code: 1, err: err}
	}
	if rep.Empty() {
		slog.Info("no free games found")
		return exitError{code: 1}
	}
	return nil
}

// runTo chains both stages. The fetch status wins over the render status.
func runTo(ctx context.Context, conf config.Config, renderer *render.Renderer, w io.Writer) error {
	rep, fetchErr := fetchReport(ctx, conf)

	// The renderer only ever sees the serialized document
	var doc any = rep
	if fetchErr != nil {
		doc = report.FailureDocument{Error: fetchFailureMessage}
	}
	input, err := report.Marshal(doc)
	if err != nil {
		return exitError{code: 1, err: err}
	}

	renderErr := emit(renderer, input, w)
	switch {
	case fetchErr != nil:
		return exitError{code: 1, err: fetchErr}
	case rep.Empty():
		slog.Info("no free games found")
		return exitError{code: 1}
	default:
		return renderErr
	}
}

// readReport reads the report piped into the render stage. An interactive
// terminal is refused so a misconfigured job does not block forever.
func readReport(f *os.File) ([]byte, error) {
	if term.IsTerminal(int(f.Fd())) {
		return nil, exitError{code: 2, err: errInteractiveInput}
	}
	input, err := io.ReadAll(f)
	if err != nil {
		return nil, exitError{code: 1, err: fmt.Errorf("failed to read stdin: %w", err)}
	}
	return input, nil
}

func setup() config.Config {
	if opts.Debug || os.Getenv("DEBUG") != "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cfgPath := opts.Config
	if cfgPath == "" {
		cfgPath = config.DefaultPath()
	}

	// Read config and create if default is missing
	conf, err := config.Read(cfgPath)
	if errors.Is(err, os.ErrNotExist) && cfgPath == config.DefaultPath() {
		if err := config.Write(cfgPath, conf); err != nil {
			slog.Warn("failed to write default config", "path", cfgPath, "error", err)
		}
	} else if err != nil {
		log.Fatalf("failed to read config with %s", err)
	}
	return conf
}

func newRenderer(conf config.Config, locale, policy string) *render.Renderer {
	if locale == "" {
		locale = conf.Render.Locale
	}
	if policy == "" {
		policy = conf.Render.ExitPolicy
	}
	exitPolicy, err := render.ParseExitPolicy(policy)
	if err != nil {
		log.Fatalf("invalid render configuration: %s", err)
	}
	renderer, err := render.New(locale, exitPolicy)
	if err != nil {
		log.Fatalf("failed to initialize renderer: %s", err)
	}
	return renderer
}

// emit prints the rendered message and maps a render error to an exit status
func emit(renderer *render.Renderer, input []byte, w io.Writer) error {
	text, err := renderer.RenderInput(input)
	fmt.Fprintln(w, text)
	if err == nil {
		return nil
	}
	code := renderer.ExitCode(err)
	if code == 0 {
		slog.Debug("rendered fallback message", "error", err)
		return nil
	}
	return exitError{code: code, err: err}
}

// exitCode is the process status a command error maps to
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exit exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	return 1
}

func latestReport(conf config.Config) []byte {
	store, err := history.NewStore(conf.History.Path)
	if err != nil {
		log.Fatalf("failed to open history: %s", err)
	}
	defer store.Close()

	body, found, err := store.Latest()
	if err != nil {
		log.Fatalf("failed to read history: %s", err)
	}
	if !found {
		slog.Warn("history is empty", "path", conf.History.Path)
	}
	return body
}

// fetchReport runs the fetch half of the pipeline: fetch, filter, classify, assemble.
// The report is recorded in history and metrics when those are configured.
func fetchReport(ctx context.Context, conf config.Config) (report.Report, error) {
	f, err := fetcher.GetFetcher(conf.Source)
	if err != nil {
		log.Fatalf("failed to initialize fetcher with %s", err)
	}

	filterPipeline, err := filter.NewFilterPipeline(conf.Filters)
	if err != nil {
		log.Fatalf("failed to initialize filters: %s", err)
	}
	if len(conf.ApplyFilters) > 0 {
		slog.Info("initialized filters", "count", len(conf.ApplyFilters))
	}

	run := metrics.NewRun()
	started := time.Now()

	feed, err := f.Fetch(ctx)
	if err != nil {
		run.ObserveFailure(started, time.Now())
		writeMetrics(conf, run)
		return report.Report{}, err
	}

	assembler := report.Assembler{Filters: filterPipeline, FilterNames: conf.ApplyFilters}
	rep := assembler.Assemble(feed.Elements(), time.Now())

	run.ObserveReport(rep, started, time.Now())
	writeMetrics(conf, run)
	saveHistory(conf, rep)

	return rep, nil
}

func writeMetrics(conf config.Config, run *metrics.Run) {
	if conf.MetricsTextfile == "" {
		return
	}
	if err := run.WriteTextfile(conf.MetricsTextfile); err != nil {
		slog.Warn("failed to write metrics", "error", err)
	}
}

func saveHistory(conf config.Config, rep report.Report) {
	if !conf.History.Enabled {
		return
	}
	store, err := history.NewStore(conf.History.Path)
	if err != nil {
		slog.Warn("failed to open history", "error", err)
		return
	}
	defer store.Close()

	if err := store.Save(rep); err != nil {
		slog.Warn("failed to store report", "error", err)
		return
	}
	if _, err := store.Prune(conf.History.Keep); err != nil {
		slog.Warn("failed to prune history", "error", err)
	}

	stats, err := store.Stats()
	if err != nil {
		slog.Warn("failed to get history stats", "error", err)
	} else {
		slog.Debug("report stored", "reports", stats.Reports, "oldest", stats.OldestReport)
	}
}
