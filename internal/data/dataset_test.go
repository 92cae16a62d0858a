package data

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flex-valuation/internal/config"
	"flex-valuation/internal/model"
)

// writeFixture writes a small two-day dataset around the start of HS1 and returns a config for it.
func writeFixture(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	var prices strings.Builder
	prices.WriteString("time,DAM_price\n")
	// One out-of-season price the day before the padded window opens.
	prices.WriteString("13Nov2022 23:00:00,999\n")
	start := time.Date(2022, 11, 14, 0, 0, 0, 0, time.UTC)
	for h := 0; h < 48; h++ {
		fmt.Fprintf(&prices, "%s,%d\n", strings.ToUpper(start.Add(time.Duration(h)*time.Hour).Format("02Jan2006 15:04:05")), 100+h)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "DAM_prices.csv"), []byte(prices.String()), 0o644))

	var synop strings.Builder
	synop.WriteString("code,timestamp,temp,wind_speed,wind_speed_unit,humidity_relative,cloudiness,sun_duration_24hours\n")
	for h := 0; h < 48; h += 3 {
		ts := start.Add(time.Duration(h) * time.Hour).Format("2006-01-02 15:04:05")
		fmt.Fprintf(&synop, "6434,%s,%.1f,2.0,1,90,6,\n", ts, 2.0+float64(h)/10)
		fmt.Fprintf(&synop, "6407,%s,-10,2.0,1,90,6,\n", ts)
	}
	// half-hour observation that has no price
	fmt.Fprintf(&synop, "6434,2022-11-14 00:30:00,2.0,2.0,0,90,6,0.5\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "synop_data.csv"), []byte(synop.String()), 0o644))

	profiles := map[string]string{}
	for i, b := range model.Buckets {
		p := filepath.Join(dir, fmt.Sprintf("bin_%d.csv", i+1))
		require.NoError(t, os.WriteFile(p, []byte(profileCSV(0, 35, func(int) float64 { return 0.5 })), 0o644))
		profiles[string(b)] = p
	}

	cfg := config.Default()
	cfg.Inputs = config.InputsConfig{
		DAMPrices: filepath.Join(dir, "DAM_prices.csv"),
		Weather:   filepath.Join(dir, "synop_data.csv"),
		Profiles:  profiles,
	}
	cfg.Output.Path = filepath.Join(dir, "out.csv")
	require.NoError(t, cfg.Validate())
	return &cfg
}

func TestBuildDataset(t *testing.T) {
	cfg := writeFixture(t)

	ds, err := BuildDataset(cfg, 36)
	require.NoError(t, err)

	assert.Equal(t, 48, ds.PriceRows)
	assert.Equal(t, 17, ds.WeatherRows)
	// 48 hourly prices plus the half-hour weather row
	require.Len(t, ds.Records, 49)
	assert.InDelta(t, 100+47.0/2, ds.GlobalAverage, 1e-9)
	require.Len(t, ds.Profiles, 4)

	assert.Equal(t, time.Date(2022, 11, 14, 0, 0, 0, 0, time.UTC), ds.Records[0].Time)
	assert.Equal(t, time.Date(2022, 11, 14, 0, 30, 0, 0, time.UTC), ds.Records[1].Time)
	assert.False(t, ds.Records[1].DAMPrice.Valid)
	assert.InDelta(t, 2.0, ds.Records[0].Temp.Float64, 1e-12)
	assert.False(t, ds.Records[2].Temp.Valid)
	for _, r := range ds.Records {
		assert.Equal(t, "HS1", r.Season)
	}
}

func TestBuildDataset_AverageOverAllPrices(t *testing.T) {
	cfg := writeFixture(t)
	cfg.Pricing.AverageOver = config.AverageOverAll

	ds, err := BuildDataset(cfg, 36)
	require.NoError(t, err)

	sum := 999.0
	for h := 0; h < 48; h++ {
		sum += float64(100 + h)
	}
	assert.InDelta(t, sum/49, ds.GlobalAverage, 1e-9)
	assert.Len(t, ds.Records, 49)
}

func TestBuildDataset_UnknownStation(t *testing.T) {
	cfg := writeFixture(t)
	cfg.Weather.StationCode = 1

	_, err := BuildDataset(cfg, 36)
	var mie *model.MissingInputError
	require.True(t, errors.As(err, &mie))
}
