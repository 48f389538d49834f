package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"epigraph/internal/analysis"
	"epigraph/internal/dates"
	"epigraph/internal/ensemble"
	"epigraph/internal/graph"
	"epigraph/internal/logging"
	"epigraph/internal/paramio"
	"epigraph/internal/regions"
	"epigraph/internal/secihurd"
	"epigraph/internal/storage"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "simulate":
		return runSimulate(ctx, args[1:])
	case "study":
		return runStudy(ctx, args[1:])
	case "holidays":
		return runHolidays(ctx, args[1:])
	case "plot":
		return runPlot(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: epigraphctl <simulate|study|holidays|plot|export> [flags]", msg)
}

func runSimulate(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("simulate", flag.ContinueOnError)
	modelPath := fs.String("model", "", "model parameter tree (json)")
	t0 := fs.Float64("t0", 0, "start time in days")
	tmax := fs.Float64("tmax", 50, "end time in days")
	dt := fs.Float64("dt", 0.1, "initial integrator step in days")
	outDir := fs.String("out", "results", "output directory")
	verbose := fs.Bool("v", false, "verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *modelPath == "" {
		return fmt.Errorf("simulate: -model is required")
	}
	if *verbose {
		logging.SetLevel(logging.LevelInfo)
	}

	m, err := paramio.LoadModel(*modelPath)
	if err != nil {
		return err
	}
	m.ApplyConstraints()

	logging.Info("simulating t = %g .. %g with dt = %g", *t0, *tmax, *dt)
	result, err := secihurd.Simulate(*t0, *tmax, *dt, m)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", *outDir, err)
	}
	path := filepath.Join(*outDir, "result.csv")
	if err := paramio.WriteTimeSeriesCSV(path, result); err != nil {
		return err
	}
	fmt.Printf("wrote %d time points to %s\n", result.NumTimePoints(), path)
	return nil
}

func runStudy(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("study", flag.ContinueOnError)
	configPath := fs.String("config", "", "study configuration file (json)")
	graphPath := fs.String("graph", "", "graph description (json)")
	runs := fs.Int("runs", 10, "number of ensemble runs")
	t0 := fs.Float64("t0", 0, "start time in days")
	tmax := fs.Float64("tmax", 50, "end time in days")
	dt := fs.Float64("dt", graph.DefaultMigrationTick, "migration tick in days")
	seed := fs.Int64("seed", 1, "master random seed")
	workers := fs.Int("workers", 1, "parallel workers")
	sigma := fs.Float64("sigma", 0.2, "relative standard deviation attached to parameters")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "epigraph.db", "sqlite database path")
	outDir := fs.String("out", "results", "output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *configPath != "" {
		cfg, err := loadStudyConfig(*configPath)
		if err != nil {
			return err
		}
		explicit := map[string]bool{}
		fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
		if cfg.GraphPath != "" && !explicit["graph"] {
			*graphPath = cfg.GraphPath
		}
		if cfg.Runs > 0 && !explicit["runs"] {
			*runs = cfg.Runs
		}
		if cfg.T0 != nil && !explicit["t0"] {
			*t0 = *cfg.T0
		}
		if cfg.Tmax != nil && !explicit["tmax"] {
			*tmax = *cfg.Tmax
		}
		if cfg.Dt != nil && !explicit["dt"] {
			*dt = *cfg.Dt
		}
		if cfg.Seed != nil && !explicit["seed"] {
			*seed = *cfg.Seed
		}
		if cfg.Workers > 0 && !explicit["workers"] {
			*workers = cfg.Workers
		}
		if cfg.Sigma != nil && !explicit["sigma"] {
			*sigma = *cfg.Sigma
		}
		if cfg.StoreKind != "" && !explicit["store"] {
			*storeKind = cfg.StoreKind
		}
		if cfg.DBPath != "" && !explicit["db-path"] {
			*dbPath = cfg.DBPath
		}
		if cfg.OutDir != "" && !explicit["out"] {
			*outDir = cfg.OutDir
		}
	}
	if *graphPath == "" {
		return fmt.Errorf("study: -graph is required")
	}

	g, err := paramio.LoadGraph(*graphPath, *t0, *dt)
	if err != nil {
		return err
	}
	for _, n := range g.Nodes() {
		n.Sim.Model().ApplyConstraints()
		secihurd.SetParamsDistributionsNormal(n.Sim.Model(), *t0, *tmax, *sigma)
	}

	study, err := ensemble.NewParameterStudy(g, ensemble.StudyConfig{
		T0:      *t0,
		Tmax:    *tmax,
		Dt:      *dt,
		NumRuns: *runs,
		Workers: *workers,
		Seed:    *seed,
	})
	if err != nil {
		return err
	}
	results, err := study.Run(ctx)
	if err != nil {
		return err
	}

	store, err := storage.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()
	if err := store.Init(ctx); err != nil {
		return err
	}

	studyID := uuid.NewString()
	if err := store.SaveStudy(ctx, storage.StudyRecord{
		ID:      studyID,
		Seed:    *seed,
		NumRuns: *runs,
		T0:      *t0,
		Tmax:    *tmax,
		Dt:      *dt,
	}); err != nil {
		return err
	}
	failed := 0
	for _, r := range results {
		record := storage.RunRecord{StudyID: studyID, RunIndex: r.RunIndex, Failed: r.Err != nil, Results: r.Results}
		if r.Err != nil {
			failed++
		}
		if err := store.SaveRun(ctx, record); err != nil {
			return err
		}
	}

	ensembleResults := analysis.ExtractResults(results)
	mean := analysis.EnsembleMean(ensembleResults)
	if mean != nil {
		if err := paramio.SaveNodeResults(filepath.Join(*outDir, "mean"), mean); err != nil {
			return err
		}
	}
	for _, p := range []float64{0.05, 0.25, 0.5, 0.75, 0.95} {
		pct, err := analysis.EnsemblePercentile(ensembleResults, p)
		if err != nil {
			continue
		}
		dir := filepath.Join(*outDir, fmt.Sprintf("p%02d", int(p*100)))
		if err := paramio.SaveNodeResults(dir, pct); err != nil {
			return err
		}
	}

	fmt.Printf("study %s: %d runs (%d failed), results in %s\n", studyID, *runs, failed, *outDir)
	return nil
}

func runHolidays(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("holidays", flag.ContinueOnError)
	state := fs.Int("state", 0, "federal state id (1-16)")
	county := fs.Int("county", 0, "county id, alternative to -state")
	from := fs.String("from", "", "start date (YYYY-MM-DD)")
	to := fs.String("to", "", "end date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	stateID := regions.StateID(*state)
	if *county != 0 {
		stateID = regions.GetStateID(regions.CountyID(*county))
	}
	if stateID < 1 || stateID > 16 {
		return fmt.Errorf("holidays: state id %d outside 1-16", stateID)
	}

	var periods []regions.HolidayPeriod
	if *from != "" || *to != "" {
		start, err := parseDate(*from)
		if err != nil {
			return err
		}
		end, err := parseDate(*to)
		if err != nil {
			return err
		}
		periods = regions.GetHolidaysInRange(stateID, start, end)
	} else {
		periods = regions.GetHolidays(stateID)
	}

	for _, p := range periods {
		fmt.Printf("%s .. %s\n", p.Start, p.End)
	}
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "epigraph.db", "sqlite database path")
	studyID := fs.String("study", "", "study id to export")
	outDir := fs.String("out", "export", "output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *studyID == "" {
		return fmt.Errorf("export: -study is required")
	}

	store, err := storage.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()
	if err := store.Init(ctx); err != nil {
		return err
	}

	runs, err := store.ListRuns(ctx, *studyID)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		return fmt.Errorf("export: study %s has no runs", *studyID)
	}
	for _, r := range runs {
		if r.Failed {
			continue
		}
		dir := filepath.Join(*outDir, fmt.Sprintf("run%d", r.RunIndex))
		if err := paramio.SaveNodeResults(dir, r.Results); err != nil {
			return err
		}
	}
	fmt.Printf("exported %d runs to %s\n", len(runs), *outDir)
	return nil
}

func parseDate(s string) (dates.Date, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return dates.Date{}, fmt.Errorf("date %q: want YYYY-MM-DD", s)
	}
	var y, m, d int
	if _, err := fmt.Sscanf(s, "%d-%d-%d", &y, &m, &d); err != nil {
		return dates.Date{}, fmt.Errorf("date %q: %w", s, err)
	}
	date := dates.New(y, m, d)
	if !date.Valid() {
		return dates.Date{}, fmt.Errorf("date %q out of range", s)
	}
	return date, nil
}
