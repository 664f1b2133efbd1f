package hubloc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tunefab/tunefab/pkg/api/types/data"
)

var ErrNoBucket = errors.New("no bucket is given")

// Resolve turns a user-given object reference into a Location.
//
// A reference is either a full "hub://BUCKET/KEY" location, or a bare KEY
// resolved against defaultBucket (usually from tuneenv).
func Resolve(ref string, defaultBucket string) (data.Location, error) {
	if strings.HasPrefix(ref, "hub://") {
		return data.ParseLocation(ref)
	}

	if defaultBucket == "" {
		return data.Location{}, fmt.Errorf(
			"%w: %s (set bucket in tuneenv or pass hub://BUCKET/KEY)",
			ErrNoBucket, ref,
		)
	}
	return data.Location{Bucket: defaultBucket, Key: ref}, nil
}
