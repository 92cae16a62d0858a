package main

import (
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"strings"

	"flex-valuation/internal/analysis"
	"flex-valuation/internal/config"
	"flex-valuation/internal/data"
	"flex-valuation/internal/model"
	"flex-valuation/internal/pipeline"
	"flex-valuation/internal/valuation"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "value":
		cmdValue(os.Args[2:])
	case "summary":
		cmdSummary(os.Args[2:])
	case "profiles":
		cmdProfiles(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli value --config examples/config.yaml --out results/money_shifted_heterogeneous.csv")
	fmt.Println("  cli summary --config examples/config.yaml")
	fmt.Println("  cli profiles --config examples/config.yaml")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - value writes the merged hourly table with phase-1/phase-2 savings per decision hour")
	fmt.Println("  - the last 36 rows have no full forward window and keep empty derived columns")
	fmt.Println("  - summary prints mean savings per heating season and temperature bucket")
}

func cmdValue(args []string) {
	fs := flag.NewFlagSet("value", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML config")
	outPath := fs.String("out", "", "Output path (default: output.path from config)")
	format := fs.String("format", "", "Output format csv|xlsx (default: output.format from config)")
	n := fs.Int("n", 0, "Optional: limit to first N merged rows (0=all)")
	avg := fs.Float64("avg", math.NaN(), "Optional: global average price override")
	workers := fs.Int("workers", 0, "Optional: engine workers (0=config)")
	_ = fs.Parse(args)

	cfg := mustLoad(*cfgPath)
	if *outPath != "" {
		cfg.Output.Path = *outPath
	}
	if *format != "" {
		cfg.Output.Format = strings.ToLower(*format)
	}
	if *workers > 0 {
		cfg.Engine.Workers = *workers
	}
	if err := cfg.Validate(); err != nil {
		fatal(err)
	}

	out, err := pipeline.Run(cfg, options(*n, *avg))
	if err != nil {
		fatal(err)
	}
	res := out.Result

	if err := valuation.WriteFile(cfg.Output.Path, cfg.Output.Format, res.Rows); err != nil {
		fatal(err)
	}

	fmt.Printf("Wrote %d rows to %s\n", len(res.Rows), cfg.Output.Path)
	fmt.Printf("Valued=%d Skipped=%d PriceGaps=%d Tail=%d GlobalAvg=%.4f\n",
		res.Valued, len(res.Skipped), len(res.PriceGaps), res.Tail, out.Dataset.GlobalAverage)
	for _, s := range res.Skipped {
		fmt.Fprintf(os.Stderr, "warning: %v\n", &s)
	}
	for _, g := range res.PriceGaps {
		fmt.Fprintf(os.Stderr, "warning: %v\n", &g)
	}
}

func cmdSummary(args []string) {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML config")
	n := fs.Int("n", 0, "Optional: limit to first N merged rows (0=all)")
	avg := fs.Float64("avg", math.NaN(), "Optional: global average price override")
	rank := fs.Bool("rank", false, "Sort groups by mean dynamic premium")
	_ = fs.Parse(args)

	cfg := mustLoad(*cfgPath)
	out, err := pipeline.Run(cfg, options(*n, *avg))
	if err != nil {
		fatal(err)
	}

	groups := out.Summary.Groups
	if *rank {
		groups = analysis.RankByPremium(groups)
	}

	fmt.Printf("%-6s %-5s %-7s %-7s %-12s %-12s %-12s %-12s %-10s %-8s\n",
		"season", "bin", "count", "priced", "p1_dynamic", "p1_flat", "p2_dynamic", "p2_flat", "premium", "t18h")
	for _, g := range append(groups, out.Summary.Total) {
		category := string(g.Category)
		if category == "" {
			category = "-"
		}
		fmt.Printf(
			"%-6s %-5s %-7d %-7d %-12.2f %-12.2f %-12.2f %-12.2f %-10.2f %-8.2f\n",
			g.Season,
			category,
			g.Count,
			g.Priced,
			g.MeanPhase1Dynamic,
			g.MeanPhase1Flat,
			g.MeanPhase2Dynamic,
			g.MeanPhase2Flat,
			g.MeanPremium,
			g.MeanTemp18h,
		)
	}
	fmt.Printf("Global average price=%.4f (%s)\n", out.Dataset.GlobalAverage, cfg.Pricing.AverageOver)
}

func cmdProfiles(args []string) {
	fs := flag.NewFlagSet("profiles", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML config")
	_ = fs.Parse(args)

	cfg := mustLoad(*cfgPath)
	paths := make(map[model.Bucket]string, len(cfg.Inputs.Profiles))
	for k, v := range cfg.Inputs.Profiles {
		paths[model.Bucket(k)] = v
	}
	set, err := data.LoadProfiles(paths, valuation.HorizonHours)
	if err != nil {
		fatal(err)
	}

	fmt.Printf("%-5s %-14s %-8s %-12s %-12s\n", "bin", "range_c", "offsets", "phase1", "phase2")
	for _, b := range model.Buckets {
		lo, hi := b.Bounds()
		p := set[b]
		fmt.Printf("%-5s %-14s %-8d %-12.4f %-12.4f\n",
			b,
			fmt.Sprintf("[%g, %g)", lo, hi),
			len(p),
			p.Sum(1, valuation.PhaseOneHours),
			p.Sum(1, valuation.HorizonHours),
		)
	}
}

func mustLoad(path string) *config.Config {
	if path == "" {
		fmt.Println("--config is required")
		os.Exit(2)
	}
	cfg, err := config.Load(path)
	if err != nil {
		fatal(err)
	}
	return cfg
}

func options(n int, avg float64) pipeline.Options {
	opts := pipeline.Options{LimitRows: n}
	if !math.IsNaN(avg) {
		opts.GlobalAverageOverride = &avg
	}
	return opts
}

// fatal exits non-zero; structural input errors exit with 3.
func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	if errors.Is(err, model.ErrStructural) {
		os.Exit(3)
	}
	os.Exit(1)
}
