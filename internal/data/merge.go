package data

import (
	"log"
	"sort"

	"flex-valuation/internal/model"
)

// MergeOuter joins prices and weather on timestamp, keeping timestamps present in
// either source, in chronological order. Fields of the absent side stay missing.
// When a source repeats a timestamp the later row wins.
func MergeOuter(prices []model.PriceRecord, weather []model.WeatherObservation) []model.HourlyRecord {
	byTime := make(map[int64]*model.HourlyRecord, len(prices)+len(weather))
	get := func(r *model.HourlyRecord) *model.HourlyRecord {
		key := r.Time.UnixNano()
		if existing, ok := byTime[key]; ok {
			return existing
		}
		byTime[key] = r
		return r
	}

	dupPrices := 0
	seenPrice := make(map[int64]bool, len(prices))
	for _, p := range prices {
		key := p.Time.UnixNano()
		if seenPrice[key] {
			dupPrices++
		}
		seenPrice[key] = true

		r := get(&model.HourlyRecord{Time: p.Time, Season: p.Season})
		r.DAMPrice = p.DAMPrice
	}

	dupWeather := 0
	seenWeather := make(map[int64]bool, len(weather))
	for _, o := range weather {
		key := o.Time.UnixNano()
		if seenWeather[key] {
			dupWeather++
		}
		seenWeather[key] = true

		r := get(&model.HourlyRecord{Time: o.Time, Season: o.Season})
		if r.Season == "" {
			r.Season = o.Season
		}
		r.Temp = o.Temp
		r.WindSpeed = o.WindSpeed
		r.WindSpeedUnit = o.WindSpeedUnit
		r.HumidityRelative = o.HumidityRelative
		r.Cloudiness = o.Cloudiness
		r.SunDuration24h = o.SunDuration24h
	}

	if dupPrices > 0 || dupWeather > 0 {
		log.Printf("[data] Merge: %d duplicate price timestamps, %d duplicate weather timestamps (later rows kept)",
			dupPrices, dupWeather)
	}

	out := make([]model.HourlyRecord, 0, len(byTime))
	for _, r := range byTime {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}
