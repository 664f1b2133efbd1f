package args

import (
	"fmt"
	"time"

	"github.com/tunefab/tunefab/pkg/api/types/misc/rfctime"
)

// Argslice collects repeated occurences of a flag.
type Argslice []string

func (s *Argslice) String() string {
	return fmt.Sprintf("%v", *s)
}

func (s *Argslice) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// OptionalLooseRFC3339 accepts RFC3339 date-time with abbreviated forms.
//
// Its Time() is nil until the flag is given.
type OptionalLooseRFC3339 struct {
	v     time.Time
	isSet bool
}

func (t *OptionalLooseRFC3339) String() string {
	if t == nil || !t.isSet {
		return ""
	}
	return t.v.Format(rfctime.RFC3339DateTimeFormatZ)
}

func (t *OptionalLooseRFC3339) Set(v string) error {
	got, err := rfctime.ParseLooseRFC3339(v)
	if err != nil {
		return err
	}
	t.v = got.Time()
	t.isSet = true
	return nil
}

func (t *OptionalLooseRFC3339) Time() *time.Time {
	if t == nil || !t.isSet {
		return nil
	}
	return &t.v
}

// OptionalDuration is nil-valued until the flag is given.
type OptionalDuration struct {
	d     time.Duration
	isSet bool
}

func (t *OptionalDuration) String() string {
	if t == nil || !t.isSet {
		return ""
	}
	return t.d.String()
}

func (t *OptionalDuration) Set(v string) error {
	d, err := time.ParseDuration(v)
	if err != nil {
		return err
	}
	t.d = d
	t.isSet = true
	return nil
}

func (t *OptionalDuration) Duration() *time.Duration {
	if t == nil || !t.isSet {
		return nil
	}
	return &t.d
}
