package main

import (
	"flag"
	"fmt"
	"math"
	"time"

	"flex-valuation/internal/config"
	"flex-valuation/internal/data"
	"flex-valuation/internal/model"
	"flex-valuation/internal/valuation"
)

// Demo:
// - Build a synthetic 37-hour window (daily price curve, constant outdoor temperature)
// - Use flat potential profiles, or the configured ones with --config
// - Value the decision hour and show how each forward hour contributes
func main() {
	cfgPath := flag.String("config", "", "Path to YAML config (optional; uses its potential profiles)")
	temp := flag.Float64("temp", 4.5, "Outdoor temperature in °C for every hour of the window")
	base := flag.Float64("price", 100, "Base day-ahead price")
	swing := flag.Float64("swing", 40, "Daily price swing around the base")
	avg := flag.Float64("avg", 0, "Global average price (default: base price)")
	start := flag.String("start", "2023-01-10 06:00", "Decision hour (YYYY-MM-DD HH:MM, UTC)")
	flag.Parse()

	t0, err := time.Parse("2006-01-02 15:04", *start)
	if err != nil {
		panic(err)
	}
	if *avg == 0 {
		*avg = *base
	}

	profiles := flatProfiles(0.5)
	if *cfgPath != "" {
		cfg, err := config.Load(*cfgPath)
		if err != nil {
			panic(err)
		}
		paths := make(map[model.Bucket]string, len(cfg.Inputs.Profiles))
		for k, v := range cfg.Inputs.Profiles {
			paths[model.Bucket(k)] = v
		}
		profiles, err = data.LoadProfiles(paths, valuation.HorizonHours)
		if err != nil {
			panic(err)
		}
	}

	window := make([]model.HourlyRecord, valuation.WindowRows)
	for h := range window {
		ts := t0.Add(time.Duration(h) * time.Hour)
		// Cheapest at 03:00, dearest at 15:00.
		phase := 2 * math.Pi * float64(ts.Hour()-9) / 24
		window[h] = model.HourlyRecord{
			Time:     ts,
			DAMPrice: model.NullFloat(*base + *swing*math.Sin(phase)),
			Temp:     model.NullFloat(*temp),
		}
	}

	d, err := valuation.ValueHour(window, profiles, *avg)
	if err != nil {
		panic(err)
	}
	potential := profiles[d.Category]

	fmt.Printf("Decision hour %s, bucket=%s, avg_t_out_on_18h=%.2f\n",
		t0.Format("2006-01-02 15:04"), d.Category, d.AvgTOut18h.Float64)
	fmt.Printf("Global average price=%.2f\n\n", *avg)

	cumDynamic, cumFlat := 0.0, 0.0
	for h := 1; h <= valuation.HorizonHours; h++ {
		p := window[h].DAMPrice.Float64
		w := potential[h]
		cumDynamic += p * w
		cumFlat += *avg * w
		marker := ""
		if h == valuation.PhaseOneHours {
			marker = "  <- end of phase 1"
		}
		fmt.Printf(
			"+%02dh %s price=%7.2f  potential=%6.3f  dyn=%9.2f  flat=%9.2f%s\n",
			h,
			window[h].Time.Format("01-02 15:04"),
			p,
			w,
			cumDynamic,
			cumFlat,
			marker,
		)
	}

	fmt.Printf("\nphase1_avg_money=%.2f  phase1_mean=%.2f\n", d.Phase1AvgMoney.Float64, d.Phase1Mean.Float64)
	fmt.Printf("phase2_avg_money=%.2f  phase2_mean=%.2f\n", d.Phase2AvgMoney.Float64, d.Phase2Mean.Float64)
	fmt.Printf("\nDone. Dynamic premium over flat tariff=%.2f\n", d.Phase2AvgMoney.Float64-d.Phase2Mean.Float64)
}

func flatProfiles(v float64) model.ProfileSet {
	set := make(model.ProfileSet, len(model.Buckets))
	for _, b := range model.Buckets {
		p := make(model.Profile, valuation.HorizonHours)
		for h := 1; h <= valuation.HorizonHours; h++ {
			p[h] = v
		}
		set[b] = p
	}
	return set
}
