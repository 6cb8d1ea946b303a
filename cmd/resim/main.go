package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/resimlab/resim/internal/config"
	"github.com/resimlab/resim/internal/engine"
	"github.com/resimlab/resim/internal/stats"
	"github.com/resimlab/resim/internal/storage"
	"github.com/resimlab/resim/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	trials     int
	days       int
	dose       float64
	seed       int64
	workers    int
	regime     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "resim",
		Short: "chemoresistance simulation lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".resim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a control/case simulation",
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().IntVar(&trials, "trials", 0, "number of stochastic trials")
	runCmd.Flags().IntVar(&days, "days", 0, "simulation horizon in days")
	runCmd.Flags().Float64Var(&dose, "dose", -1, "drug dose (case regime)")
	runCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	runCmd.Flags().IntVar(&workers, "workers", 0, "parallel trial workers (0 = sequential)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot tumor burden and drug concentration",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	fhtCmd := &cobra.Command{
		Use:   "fht [run_id]",
		Short: "plot first-hitting-time distributions",
		Args:  cobra.ExactArgs(1),
		RunE:  plotFHT,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a regime's cell table to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVar(&regime, "regime", "case", "regime to export (control|case)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and hitting times to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
			return nil
		},
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "watch a single trial live",
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	liveCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	liveCmd.Flags().Float64Var(&dose, "dose", -1, "drug dose")
	liveCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	liveCmd.Flags().IntVar(&days, "days", 0, "simulation horizon in days")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, fhtCmd, exportCSVCmd, exportJSONCmd, presetsCmd, liveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfig assembles the effective config from preset, config file and
// CLI overrides, in that order of precedence.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("trials") {
		cfg.Trials = trials
	}
	if cmd.Flags().Changed("days") {
		cfg.HorizonDays = days
	}
	if cmd.Flags().Changed("dose") {
		cfg.DrugConstants[2] = dose
	}
	if cmd.Flags().Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	params, err := cfg.Parameters()
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("running %d trials over %d days...\n", params.Trials, params.HorizonDays)
	start := time.Now()

	out, err := engine.Simulate(context.Background(), params, engine.Config{
		Seed:    cfg.Seed,
		Workers: cfg.Workers,
	})
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(storage.RunMetadata{
		Seed:        cfg.Seed,
		Trials:      params.Trials,
		HorizonDays: params.HorizonDays,
		Dose:        params.Dose,
	}, out)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n\n", runID)
	printFHTSummary(out)
	return nil
}

func printFHTSummary(out *engine.Output) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "REGIME\tOBSERVED\tCENSORED\tMEDIAN\tMEAN")
	for _, r := range []struct {
		name string
		res  *engine.Result
	}{{"control", out.Control}, {"case", out.Case}} {
		sum := stats.SummarizeFHT(r.res.HittingTimes)
		median, mean := "-", "-"
		if sum.Observed > 0 {
			median = fmt.Sprintf("%.0f", sum.Median)
			mean = fmt.Sprintf("%.1f", sum.Mean)
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\n", r.name, sum.Observed, sum.Censored, median, mean)
	}
	w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tTRIALS\tDAYS\tDOSE\tSEED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.0f\t%d\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Trials,
			run.HorizonDays,
			run.Dose,
			run.Seed,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	out, err := st.LoadRun(args[0])
	if err != nil {
		return err
	}

	daysN := meta.HorizonDays + 1
	fmt.Printf("run: %s (%d trials, %d days)\n\n", meta.ID, meta.Trials, meta.HorizonDays)

	for _, r := range []struct {
		name string
		res  *engine.Result
	}{{"control", out.Control}, {"case", out.Case}} {
		band := stats.BurdenBand(r.res, daysN, 0.25, 0.75)
		graph := asciigraph.PlotMany(
			[][]float64{band.Lower, band.Median, band.Upper},
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s: total burden (25/50/75 pct)", r.name)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	conc := stats.ConcentrationBand(out.Case, daysN, 0.25, 0.75)
	graph := asciigraph.Plot(conc.Median,
		asciigraph.Height(8),
		asciigraph.Width(80),
		asciigraph.Caption("case: drug concentration (median)"),
	)
	fmt.Println(graph)
	return nil
}

func plotFHT(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	out, err := st.LoadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n\n", meta.ID)
	printFHTSummary(out)
	fmt.Println()

	for _, r := range []struct {
		name string
		res  *engine.Result
	}{{"control", out.Control}, {"case", out.Case}} {
		sum := stats.SummarizeFHT(r.res.HittingTimes)
		if sum.Observed == 0 {
			fmt.Printf("%s: no progression observed within horizon\n\n", r.name)
			continue
		}
		hist := histogram(sum.Days, meta.HorizonDays+1, 40)
		graph := asciigraph.Plot(hist,
			asciigraph.Height(8),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s: hitting-time distribution (day 0..%d)", r.name, meta.HorizonDays)),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

// histogram bins day values over [0, span) into the given number of bins.
func histogram(days []float64, span, bins int) []float64 {
	if bins > span {
		bins = span
	}
	hist := make([]float64, bins)
	width := float64(span) / float64(bins)
	for _, d := range days {
		idx := int(d / width)
		if idx >= bins {
			idx = bins - 1
		}
		hist[idx]++
	}
	return hist
}

func exportCSV(cmd *cobra.Command, args []string) error {
	if regime != "control" && regime != "case" {
		return fmt.Errorf("unknown regime: %s", regime)
	}

	st := storage.New(dataDir)
	out, err := st.LoadRun(args[0])
	if err != nil {
		return err
	}
	res := out.Control
	if regime == "case" {
		res = out.Case
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write([]string{"sensitive", "primary_resistant", "acquired_resistant", "quiescent", "total", "trial", "day"}); err != nil {
		return err
	}
	for _, r := range res.Cells {
		rec := []string{
			strconv.FormatFloat(r.Sensitive, 'f', 6, 64),
			strconv.FormatFloat(r.PrimaryResistant, 'f', 6, 64),
			strconv.FormatFloat(r.AcquiredResistant, 'f', 6, 64),
			strconv.FormatFloat(r.Quiescent, 'f', 6, 64),
			strconv.FormatFloat(r.Total, 'f', 6, 64),
			strconv.Itoa(r.Trial),
			strconv.Itoa(r.Day),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	out, err := st.LoadRun(args[0])
	if err != nil {
		return err
	}

	type regimeJSON struct {
		Observed     int                  `json:"observed"`
		Censored     int                  `json:"censored"`
		HittingTimes []engine.HittingTime `json:"hitting_times"`
	}
	payload := struct {
		Meta    *storage.RunMetadata `json:"meta"`
		Control regimeJSON           `json:"control"`
		Case    regimeJSON           `json:"case"`
	}{Meta: meta}

	ctrlSum := stats.SummarizeFHT(out.Control.HittingTimes)
	caseSum := stats.SummarizeFHT(out.Case.HittingTimes)
	payload.Control = regimeJSON{Observed: ctrlSum.Observed, Censored: ctrlSum.Censored, HittingTimes: out.Control.HittingTimes}
	payload.Case = regimeJSON{Observed: caseSum.Observed, Censored: caseSum.Censored, HittingTimes: out.Case.HittingTimes}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	params, err := cfg.Parameters()
	if err != nil {
		return err
	}

	m := viz.NewModel(params, cfg.Seed)
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
