package data

import (
	"fmt"
	"log"

	"flex-valuation/internal/config"
	"flex-valuation/internal/model"
)

// Dataset is the prepared input of a valuation run.
type Dataset struct {
	Records       []model.HourlyRecord
	Profiles      model.ProfileSet
	GlobalAverage float64

	Seasons     model.Seasons
	PriceRows   int
	WeatherRows int
	StationRows int
}

// BuildDataset loads and prepares every input named in cfg:
//   - prices restricted to the season windows
//   - weather restricted to one station and the allowed wind-speed unit codes,
//     sun duration forward-filled per day, then restricted to the season windows
//   - both joined on timestamp (outer join)
//   - potential profiles shifted and validated for the given horizon
func BuildDataset(cfg *config.Config, horizon int) (*Dataset, error) {
	seasons, err := cfg.Seasons.Resolve()
	if err != nil {
		return nil, err
	}

	prices, err := LoadDAMPricesCSV(cfg.Inputs.DAMPrices)
	if err != nil {
		return nil, err
	}
	seasonPrices := FilterPrices(prices, seasons)

	avgSource := seasonPrices
	if cfg.Pricing.AverageOver == config.AverageOverAll {
		avgSource = prices
	}
	avg, err := GlobalAveragePrice(avgSource)
	if err != nil {
		return nil, err
	}

	obs, err := LoadWeatherCSV(cfg.Inputs.Weather)
	if err != nil {
		return nil, err
	}
	station := FilterStation(obs, cfg.Weather.StationCode, cfg.Weather.WindSpeedUnits)
	if len(station) == 0 {
		return nil, &model.MissingInputError{
			Input: fmt.Sprintf("weather for station %d", cfg.Weather.StationCode),
		}
	}
	seasonWeather := FilterWeather(ForwardFillSunDuration(station), seasons)

	paths := make(map[model.Bucket]string, len(cfg.Inputs.Profiles))
	for k, v := range cfg.Inputs.Profiles {
		paths[model.Bucket(k)] = v
	}
	profiles, err := LoadProfiles(paths, horizon)
	if err != nil {
		return nil, err
	}

	records := MergeOuter(seasonPrices, seasonWeather)
	log.Printf("[data] Dataset: %d prices in seasons (of %d), %d station observations in seasons (of %d), %d merged rows, global average price %.4f (%s)",
		len(seasonPrices), len(prices), len(seasonWeather), len(station), len(records), avg, cfg.Pricing.AverageOver)

	return &Dataset{
		Records:       records,
		Profiles:      profiles,
		GlobalAverage: avg,
		Seasons:       seasons,
		PriceRows:     len(seasonPrices),
		WeatherRows:   len(seasonWeather),
		StationRows:   len(station),
	}, nil
}
