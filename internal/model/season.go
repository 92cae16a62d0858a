package model

import "time"

// Season is an observation window with inclusive bounds.
type Season struct {
	Name  string
	Start time.Time
	End   time.Time
}

func (s Season) Contains(t time.Time) bool {
	return !t.Before(s.Start) && !t.After(s.End)
}

// Seasons is an ordered list of windows; the first match wins.
type Seasons []Season

// Match returns the name of the first season containing t.
func (ss Seasons) Match(t time.Time) (string, bool) {
	for _, s := range ss {
		if s.Contains(t) {
			return s.Name, true
		}
	}
	return "", false
}
