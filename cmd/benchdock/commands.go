package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/adf-bdd/benchdock/internal/batch"
	"github.com/adf-bdd/benchdock/internal/config"
	"github.com/adf-bdd/benchdock/internal/domain"
	"github.com/adf-bdd/benchdock/internal/driver"
	"github.com/adf-bdd/benchdock/internal/notify"
	"github.com/adf-bdd/benchdock/internal/observer"
	"github.com/adf-bdd/benchdock/internal/resultstore"
	"github.com/adf-bdd/benchdock/internal/runner"
	"github.com/adf-bdd/benchdock/internal/suite"
	"github.com/adf-bdd/benchdock/tui"
	"github.com/adf-bdd/benchdock/web/api"
)

var (
	runImage    string
	runTimeout  string
	runFolder   string
	runMatch    string
	runParallel int
	runResults  string
	runLive     bool
	suiteFile   string
	listBatch   string
	listLimit   int
	servePort   int
)

func init() {
	// run command
	runCmd := &cobra.Command{
		Use:   "run -- [solver args...]",
		Short: "Run one benchmark batch",
		RunE:  runRun,
	}
	addBatchFlags(runCmd)
	runCmd.Flags().BoolVar(&runLive, "live", false, "stream run events over the web API while the batch runs")
	rootCmd.AddCommand(runCmd)

	// suite command
	suiteCmd := &cobra.Command{
		Use:   "suite NAME",
		Short: "Run a named suite from the suites manifest",
		Args:  cobra.ExactArgs(1),
		RunE:  runSuite,
	}
	suiteCmd.Flags().StringVar(&suiteFile, "file", "", "suites manifest path")
	rootCmd.AddCommand(suiteCmd)

	// list command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded batches or a batch's runs",
		RunE:  runList,
	}
	listCmd.Flags().StringVar(&listBatch, "batch", "", "show runs of this batch")
	listCmd.Flags().IntVar(&listLimit, "limit", 20, "max batches to show")
	rootCmd.AddCommand(listCmd)

	// watch command
	watchCmd := &cobra.Command{
		Use:   "watch -- [solver args...]",
		Short: "Watch the corpus folder and benchmark new instances",
		RunE:  runWatch,
	}
	addBatchFlags(watchCmd)
	rootCmd.AddCommand(watchCmd)

	// schedule command
	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run configured suites on their cron schedules",
		RunE:  runSchedule,
	}
	scheduleCmd.Flags().StringVar(&suiteFile, "file", "", "suites manifest path")
	rootCmd.AddCommand(scheduleCmd)

	// serve command
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve recorded results over HTTP",
		RunE:  runServe,
	}
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on")
	rootCmd.AddCommand(serveCmd)

	// tui command
	tuiCmd := &cobra.Command{
		Use:   "tui -- [solver args...]",
		Short: "Run one batch with a live dashboard",
		RunE:  runTUI,
	}
	addBatchFlags(tuiCmd)
	rootCmd.AddCommand(tuiCmd)
}

func addBatchFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&runImage, "docker-image", "", "solver image reference")
	cmd.Flags().StringVar(&runTimeout, "timeout", "", "per-run timeout (duration or seconds)")
	cmd.Flags().StringVar(&runFolder, "folder", "", "folder of input instances")
	cmd.Flags().StringVar(&runMatch, "match", "", "glob pattern for input file names")
	cmd.Flags().IntVar(&runParallel, "parallel", 0, "concurrent runs")
	cmd.Flags().StringVar(&runResults, "results", "", "results directory")
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	return config.Load(path)
}

// batchOptions merges flags over config defaults
func batchOptions(cfg *config.Config) (driver.Options, error) {
	timeoutStr := runTimeout
	if timeoutStr == "" {
		timeoutStr = cfg.General.Timeout
	}
	timeout, err := domain.ParseTimeout(timeoutStr)
	if err != nil {
		return driver.Options{}, err
	}

	parallel := runParallel
	if parallel == 0 {
		parallel = cfg.General.Parallel
	}

	results := runResults
	if results == "" {
		results = cfg.General.ResultsDir
	}

	return driver.Options{
		Image:       runImage,
		Folder:      runFolder,
		Pattern:     runMatch,
		Timeout:     timeout,
		Parallelism: parallel,
		ResultsDir:  results,
	}, nil
}

// extraArgs returns the solver arguments after the -- separator
func extraArgs(cmd *cobra.Command, args []string) []string {
	if at := cmd.ArgsLenAtDash(); at >= 0 {
		return args[at:]
	}
	return nil
}

func notifierFromConfig(cfg *config.Config) notify.Notifier {
	return notify.NewMultiNotifier(
		notify.NewDesktopNotifier(cfg.Notifications.Desktop),
		notify.NewSlackNotifier(cfg.Notifications.SlackWebhook),
	)
}

// finishBatch persists and announces a finished batch. Recording failures
// are warnings: the artifacts on disk are the ground truth.
func finishBatch(cfg *config.Config, res *driver.BatchResult) {
	store, err := resultstore.New(cfg.General.DatabasePath)
	if err != nil {
		log.Printf("[benchdock] opening result store: %v", err)
	} else {
		defer store.Close()
		if err := store.SaveBatch(res.Batch, res.BatchDir, res.Runs); err != nil {
			log.Printf("[benchdock] recording batch: %v", err)
		}
	}

	s := res.Summary
	kind := notify.NotifySuccess
	if s.TimedOut+s.LaunchFailed+s.Interrupted > 0 {
		kind = notify.NotifyWarning
	}
	n := notifierFromConfig(cfg)
	if err := n.Send(notify.Notification{
		Title:    fmt.Sprintf("Batch finished: %s", res.Batch.Image),
		Message:  fmt.Sprintf("%d runs over %s", s.Total, res.Batch.Folder),
		Type:     kind,
		BatchID:  res.Batch.ID,
		BatchDir: res.BatchDir,
		Fields: []notify.Field{
			{Name: "completed", Value: strconv.Itoa(s.Completed)},
			{Name: "timed out", Value: strconv.Itoa(s.TimedOut)},
			{Name: "launch failed", Value: strconv.Itoa(s.LaunchFailed)},
			{Name: "interrupted", Value: strconv.Itoa(s.Interrupted)},
		},
	}); err != nil {
		log.Printf("[benchdock] notification: %v", err)
	}
}

func printSummary(res *driver.BatchResult) {
	s := res.Summary
	fmt.Printf("Batch %s: %d runs | %d completed | %d timed out | %d launch failures | %d interrupted\n",
		res.Batch.ID, s.Total, s.Completed, s.TimedOut, s.LaunchFailed, s.Interrupted)
	fmt.Printf("Results in %s\n", res.BatchDir)
}

// signalContext cancels on SIGINT/SIGTERM so in-flight containers are
// killed and partial results are still recorded
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	opts, err := batchOptions(cfg)
	if err != nil {
		return err
	}
	opts.ExtraArgs = extraArgs(cmd, args)

	ctx, cancel := signalContext()
	defer cancel()

	var onEvent func(driver.Event)
	if runLive {
		store, err := resultstore.New(cfg.General.DatabasePath)
		if err != nil {
			return err
		}
		defer store.Close()

		addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
		server := api.NewServer(store, addr)
		go func() {
			if err := server.Start(); err != nil {
				log.Printf("[benchdock] web server: %v", err)
			}
		}()
		onEvent = server.DriverSink()
		fmt.Printf("Streaming run events at http://%s/api/events and ws://%s/ws\n", addr, addr)
	}

	d := driver.New(runner.NewDockerRunner(cfg.Docker.Binary, cfg.General.Debug), onEvent, cfg.General.Debug)
	res, err := d.RunAll(ctx, opts)
	if err != nil {
		return err
	}

	finishBatch(cfg, res)
	printSummary(res)
	return nil
}

func runSuite(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := suiteFile
	if path == "" {
		path = cfg.General.SuitesFile
	}
	manifest, err := suite.Load(path)
	if err != nil {
		return err
	}

	s, ok := manifest.Get(args[0])
	if !ok {
		return fmt.Errorf("suite %q not found in %s", args[0], path)
	}

	defaultTimeout, err := domain.ParseTimeout(cfg.General.Timeout)
	if err != nil {
		return err
	}
	opts, err := s.Options(cfg.General.ResultsDir, defaultTimeout, cfg.General.Parallel)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	d := driver.New(runner.NewDockerRunner(cfg.Docker.Binary, cfg.General.Debug), nil, cfg.General.Debug)
	res, err := d.RunAll(ctx, opts)
	if err != nil {
		return err
	}

	finishBatch(cfg, res)
	printSummary(res)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := resultstore.New(cfg.General.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	if listBatch != "" {
		runs, err := store.ListRuns(listBatch)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "SEQ\tINPUT\tOUTCOME\tEXIT\tELAPSED")
		for _, r := range runs {
			fmt.Fprintf(w, "%04d\t%s\t%s\t%d\t%.2fs\n",
				r.Seq, r.InputPath, r.Outcome, r.ExitCode, r.Elapsed.Seconds())
		}
		return nil
	}

	batches, err := store.ListBatches(listLimit)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "ID\tIMAGE\tSTARTED\tTOTAL\tOK\tTIMEOUT\tFAILED")
	for _, b := range batches {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			b.Batch.ID, b.Batch.Image, b.Batch.StartedAt.Format(time.RFC3339),
			b.Summary.Total, b.Summary.Completed, b.Summary.TimedOut, b.Summary.LaunchFailed)
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	opts, err := batchOptions(cfg)
	if err != nil {
		return err
	}
	opts.ExtraArgs = extraArgs(cmd, args)
	if opts.Folder == "" {
		return domain.NewConfigError("folder", "folder is required")
	}

	ctx, cancel := signalContext()
	defer cancel()

	d := driver.New(runner.NewDockerRunner(cfg.Docker.Binary, cfg.General.Debug), nil, cfg.General.Debug)

	// New files are benchmarked one single-file batch at a time;
	// parallelism still applies within a flush of several files.
	jobs := make(chan []string, 16)
	cw, err := observer.NewCorpusWatcher(opts.Folder, opts.Pattern, func(files []string) {
		select {
		case jobs <- files:
		default:
			log.Printf("[watch] dropping %d files, dispatch queue full", len(files))
		}
	})
	if err != nil {
		return err
	}
	defer cw.Stop()
	cw.Start(ctx)

	fmt.Printf("Watching %s for %q instances\n", opts.Folder, opts.Pattern)
	for {
		select {
		case <-ctx.Done():
			return nil
		case files := <-jobs:
			for _, f := range files {
				batchOpts := opts
				batchOpts.Pattern = filepath.Base(f)
				res, err := d.RunAll(ctx, batchOpts)
				if err != nil {
					log.Printf("[watch] batch for %s: %v", f, err)
					continue
				}
				finishBatch(cfg, res)
				printSummary(res)
			}
		}
	}
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(cfg.Schedules) == 0 {
		return fmt.Errorf("no schedules configured")
	}

	path := suiteFile
	if path == "" {
		path = cfg.General.SuitesFile
	}
	manifest, err := suite.Load(path)
	if err != nil {
		return err
	}

	schedules := make([]batch.Schedule, 0, len(cfg.Schedules))
	for _, entry := range cfg.Schedules {
		if _, ok := manifest.Get(entry.Suite); !ok {
			return fmt.Errorf("scheduled suite %q not found in %s", entry.Suite, path)
		}
		schedules = append(schedules, batch.Schedule{Suite: entry.Suite, Cron: entry.Cron})
	}

	sched, err := batch.NewScheduler(schedules)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	go func() {
		<-ctx.Done()
		sched.Stop()
	}()

	defaultTimeout, err := domain.ParseTimeout(cfg.General.Timeout)
	if err != nil {
		return err
	}

	d := driver.New(runner.NewDockerRunner(cfg.Docker.Binary, cfg.General.Debug), nil, cfg.General.Debug)

	fmt.Printf("Scheduling %d suites\n", len(schedules))
	sched.Start(func(sc batch.Schedule) error {
		s, ok := manifest.Get(sc.Suite)
		if !ok {
			return fmt.Errorf("suite %q disappeared from manifest", sc.Suite)
		}
		opts, err := s.Options(cfg.General.ResultsDir, defaultTimeout, cfg.General.Parallel)
		if err != nil {
			return err
		}
		res, err := d.RunAll(ctx, opts)
		if err != nil {
			return err
		}
		finishBatch(cfg, res)
		return nil
	})
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := resultstore.New(cfg.General.DatabasePath)
	if err != nil {
		return err
	}

	port := servePort
	if port == 0 {
		port = cfg.Web.Port
	}

	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, port)
	server := api.NewServer(store, addr)

	fmt.Printf("Serving results at http://%s\n", addr)
	return server.Start()
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	opts, err := batchOptions(cfg)
	if err != nil {
		return err
	}
	opts.ExtraArgs = extraArgs(cmd, args)

	// Count the inputs up front so the dashboard can show progress
	inputs, err := driver.Enumerate(opts.Folder, opts.Pattern)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	events := make(chan driver.Event, 64)
	d := driver.New(
		runner.NewDockerRunner(cfg.Docker.Binary, cfg.General.Debug),
		func(ev driver.Event) {
			// Drop rather than block the driver once the dashboard
			// has gone away.
			select {
			case events <- ev:
			default:
			}
		},
		cfg.General.Debug,
	)

	resCh := make(chan *driver.BatchResult, 1)
	errCh := make(chan error, 1)
	go func() {
		res, err := d.RunAll(ctx, opts)
		close(events)
		if err != nil {
			errCh <- err
			return
		}
		resCh <- res
	}()

	model := tui.NewModel(tui.ModelConfig{
		Image:  opts.Image,
		Total:  len(inputs),
		Events: events,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		cancel()
		return err
	}

	// Leaving the dashboard early cancels the batch; partial results
	// are still recorded.
	cancel()

	select {
	case err := <-errCh:
		return err
	case res := <-resCh:
		finishBatch(cfg, res)
		printSummary(res)
		return nil
	}
}
