package data

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tunefab/tunefab/pkg/api/types/misc/rfctime"
)

var ErrInvalidLocation = errors.New("invalid object location")

// Location points an object in the hub's object store.
type Location struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

func (l Location) Equal(o Location) bool {
	return l.Bucket == o.Bucket && l.Key == o.Key
}

// String formats Location as "hub://BUCKET/KEY".
func (l Location) String() string {
	return fmt.Sprintf("hub://%s/%s", l.Bucket, l.Key)
}

// ParseLocation parses "hub://BUCKET/KEY" formatted string.
//
// KEY can contain "/".
func ParseLocation(s string) (Location, error) {
	rest, ok := strings.CutPrefix(s, "hub://")
	if !ok {
		return Location{}, fmt.Errorf(`%w: %s (should start with "hub://")`, ErrInvalidLocation, s)
	}

	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return Location{}, fmt.Errorf(
			"%w: %s (should be hub://BUCKET/KEY)", ErrInvalidLocation, s,
		)
	}

	return Location{Bucket: bucket, Key: key}, nil
}

// Detail is the metadata of an object stored in the hub.
type Detail struct {
	Location
	Size       int64           `json:"size"`
	Checksum   string          `json:"checksum"`
	UploadedAt rfctime.RFC3339 `json:"uploadedAt"`
}

func (d Detail) Equal(o Detail) bool {
	return d.Location.Equal(o.Location) &&
		d.Size == o.Size &&
		d.Checksum == o.Checksum &&
		d.UploadedAt.Equal(o.UploadedAt)
}
