package data

import (
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"flex-valuation/internal/model"
)

// LoadWeatherCSV reads SYNOP observations.
func LoadWeatherCSV(path string) ([]model.WeatherObservation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &model.MissingInputError{Input: path}
	}
	defer f.Close()
	return ParseWeather(path, f)
}

// ParseWeather parses a SYNOP table.
// Required columns: code, timestamp, temp, wind_speed_unit.
// Optional: wind_speed, humidity_relative, cloudiness, sun_duration_24hours.
func ParseWeather(input string, r io.Reader) ([]model.WeatherObservation, error) {
	t, err := readTable(input, r)
	if err != nil {
		return nil, err
	}
	codeCol, err := t.require("code")
	if err != nil {
		return nil, err
	}
	tsCol, err := t.require("timestamp")
	if err != nil {
		return nil, err
	}
	tempCol, err := t.require("temp")
	if err != nil {
		return nil, err
	}
	unitCol, err := t.require("wind_speed_unit")
	if err != nil {
		return nil, err
	}
	windCol := t.optional("wind_speed")
	humidityCol := t.optional("humidity_relative")
	cloudCol := t.optional("cloudiness")
	sunCol := t.optional("sun_duration_24hours")

	out := make([]model.WeatherObservation, 0, len(t.rows))
	for i, row := range t.rows {
		line := i + 2
		code, err := parseNullInt(cell(row, codeCol))
		if err != nil {
			return nil, fmt.Errorf("%s line %d: code: %w", input, line, err)
		}
		if !code.Valid {
			continue
		}
		ts, err := parseTime(cell(row, tsCol))
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", input, line, err)
		}
		obs := model.WeatherObservation{StationCode: int(code.Int64), Time: ts}

		if obs.Temp, err = parseNullFloat(cell(row, tempCol)); err != nil {
			return nil, fmt.Errorf("%s line %d: temp: %w", input, line, err)
		}
		if obs.WindSpeedUnit, err = parseNullInt(cell(row, unitCol)); err != nil {
			return nil, fmt.Errorf("%s line %d: wind_speed_unit: %w", input, line, err)
		}
		if obs.WindSpeed, err = parseNullFloat(cell(row, windCol)); err != nil {
			return nil, fmt.Errorf("%s line %d: wind_speed: %w", input, line, err)
		}
		if obs.HumidityRelative, err = parseNullFloat(cell(row, humidityCol)); err != nil {
			return nil, fmt.Errorf("%s line %d: humidity_relative: %w", input, line, err)
		}
		if obs.Cloudiness, err = parseNullFloat(cell(row, cloudCol)); err != nil {
			return nil, fmt.Errorf("%s line %d: cloudiness: %w", input, line, err)
		}
		if obs.SunDuration24h, err = parseNullFloat(cell(row, sunCol)); err != nil {
			return nil, fmt.Errorf("%s line %d: sun_duration_24hours: %w", input, line, err)
		}
		out = append(out, obs)
	}
	log.Printf("[data] Loaded %d weather observations from %s", len(out), input)
	return out, nil
}

// FilterStation keeps one station's observations whose wind-speed unit code is in units.
// Observations without a unit code are dropped.
func FilterStation(obs []model.WeatherObservation, station int, units []int) []model.WeatherObservation {
	allowed := make(map[int64]bool, len(units))
	for _, u := range units {
		allowed[int64(u)] = true
	}
	out := make([]model.WeatherObservation, 0, len(obs))
	for _, o := range obs {
		if o.StationCode != station {
			continue
		}
		if !o.WindSpeedUnit.Valid || !allowed[o.WindSpeedUnit.Int64] {
			continue
		}
		out = append(out, o)
	}
	return out
}

// ForwardFillSunDuration sorts observations by time and carries the last reported
// sun_duration_24hours forward within each calendar day. Values never cross midnight.
func ForwardFillSunDuration(obs []model.WeatherObservation) []model.WeatherObservation {
	out := make([]model.WeatherObservation, len(obs))
	copy(out, obs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })

	var day string
	var last sql.NullFloat64
	for i := range out {
		if d := out[i].Time.Format("2006-01-02"); d != day {
			day = d
			last = sql.NullFloat64{}
		}
		if out[i].SunDuration24h.Valid {
			last = out[i].SunDuration24h
		} else {
			out[i].SunDuration24h = last
		}
	}
	return out
}

// FilterWeather keeps observations inside any season and tags them with the season name.
func FilterWeather(obs []model.WeatherObservation, seasons model.Seasons) []model.WeatherObservation {
	out := make([]model.WeatherObservation, 0, len(obs))
	for _, o := range obs {
		name, ok := seasons.Match(o.Time)
		if !ok {
			continue
		}
		o.Season = name
		out = append(out, o)
	}
	return out
}
