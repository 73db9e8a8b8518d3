package pedigree

import (
	"fmt"
	"time"
)

// Time is the imported_at column of the frequency database Metadata.
// CreateFrequencyDB stores unix seconds; databases assembled by hand may hold
// text timestamps instead, so both are accepted.
type Time time.Time

const metadataTimeLayout = "2006-01-02 15:04:05"

// Scan implements sql.Scanner.
func (t *Time) Scan(v interface{}) error {
	switch v := v.(type) {
	case int64:
		*t = Time(time.Unix(v, 0))
	case int:
		*t = Time(time.Unix(int64(v), 0))
	case time.Time:
		*t = Time(v)
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Time", v)
	}
	return nil
}

func (t *Time) parse(s string) error {
	parsed, err := time.Parse(metadataTimeLayout, s)
	if err != nil {
		return err
	}
	*t = Time(parsed)
	return nil
}

func (t Time) String() string {
	return time.Time(t).UTC().Format(metadataTimeLayout)
}
