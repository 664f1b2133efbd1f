package handlers

import (
	"bytes"
	"encoding/hex"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/tunefab/tunefab/cmd/tunehubd/hub"
	apidata "github.com/tunefab/tunefab/pkg/api/types/data"
	apierr "github.com/tunefab/tunefab/pkg/api/types/errors"
	kio "github.com/tunefab/tunefab/pkg/utils/io"
)

// objectLocation builds the Location of an object route:
// /buckets/:bucket/objects/<key...>/ . The wildcard keeps "/" in keys.
func objectLocation(c echo.Context) apidata.Location {
	return apidata.Location{
		Bucket: c.Param("bucket"),
		Key:    strings.TrimSuffix(c.Param("*"), "/"),
	}
}

// PutObjectHandler stores an uploaded object.
//
// When the request carries an x-checksum-md5 trailer, the stored bytes
// are verified against it.
func PutObjectHandler(h *hub.Hub) echo.HandlerFunc {
	return func(c echo.Context) error {
		loc := objectLocation(c)
		if loc.Bucket == "" || loc.Key == "" {
			return apierr.BadRequest("bucket and key are required", nil)
		}

		body := new(bytes.Buffer)
		chw := kio.NewMD5Writer(body)
		if _, err := io.Copy(chw, c.Request().Body); err != nil {
			return apierr.InternalServerError(err)
		}

		md5hash := c.Request().Trailer.Get("x-checksum-md5")
		if md5hash != "" && md5hash != hex.EncodeToString(chw.Sum()) {
			return apierr.BadRequest("checksum does not match the payload", nil)
		}

		detail := h.PutObject(loc, body.Bytes())

		return c.JSON(http.StatusOK, detail)
	}
}

// GetObjectHandler streams an object back, with its md5 as a trailer.
func GetObjectHandler(h *hub.Hub) echo.HandlerFunc {
	return func(c echo.Context) error {
		body, checksum, err := h.GetObject(objectLocation(c))
		if err != nil {
			return asAPIError(err)
		}

		resp := c.Response()
		resp.Header().Add("Trailer", "x-checksum-md5")
		resp.Header().Add("Content-Type", "text/csv")
		resp.WriteHeader(http.StatusOK)
		if _, err := resp.Write(body); err != nil {
			return err
		}
		resp.Header().Add("x-checksum-md5", checksum)
		return nil
	}
}
