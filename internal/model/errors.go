package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrStructural is wrapped by errors that must abort a run before any row is valued.
var ErrStructural = errors.New("structural input error")

// MissingInputError reports an absent input table or column.
type MissingInputError struct {
	Input  string
	Column string
}

func (e *MissingInputError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("missing input %s: column %q not found", e.Input, e.Column)
	}
	return fmt.Sprintf("missing input %s", e.Input)
}

func (e *MissingInputError) Unwrap() error { return ErrStructural }

// IncompleteProfileError reports a potential profile that cannot cover the horizon.
// Missing is empty when the whole bucket profile is absent.
type IncompleteProfileError struct {
	Bucket  Bucket
	Missing []int
}

func (e *IncompleteProfileError) Error() string {
	if len(e.Missing) == 0 {
		return fmt.Sprintf("potential profile %s not provided", e.Bucket)
	}
	return fmt.Sprintf("potential profile %s incomplete: no value for hour offsets %v", e.Bucket, e.Missing)
}

func (e *IncompleteProfileError) Unwrap() error { return ErrStructural }

// UnclassifiableRowError is a row-level error: the forward mean temperature
// of the row is missing or not finite, so no bucket applies.
type UnclassifiableRowError struct {
	Index int
	Time  time.Time
}

func (e *UnclassifiableRowError) Error() string {
	return fmt.Sprintf("row %d (%s): forward mean temperature missing, cannot classify",
		e.Index, e.Time.Format(time.DateTime))
}

// MissingPriceError is a row-level error: one or more forward hours have no
// day-ahead price, so the dynamic savings of the row are undefined.
type MissingPriceError struct {
	Index   int
	Time    time.Time
	Offsets []int
}

func (e *MissingPriceError) Error() string {
	return fmt.Sprintf("row %d (%s): missing day-ahead price at hour offsets %v",
		e.Index, e.Time.Format(time.DateTime), e.Offsets)
}
