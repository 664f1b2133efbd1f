package rest

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"

	apidata "github.com/tunefab/tunefab/pkg/api/types/data"
	tio "github.com/tunefab/tunefab/pkg/utils/io"
)

var (
	ErrChecksumUnmatch = errors.New("checksum unmatch")
)

type Progress[T any] interface {
	// EstimatedTotalSize returns the total size of the content to be sent,
	// in bytes.
	EstimatedTotalSize() int64

	// ProgressedSize returns bytes sent so far.
	//
	// This size is updated during uploading.
	ProgressedSize() int64

	// Error returns error caused during uploading.
	Error() error

	// Result returns the result of the operation.
	//
	// # Returns
	//
	// - T: the result of the operation.
	//
	// - bool: true if the operation has been done.
	Result() (T, bool)

	// Done returns a channel which is closed when the operation is over.
	Done() <-chan struct{}

	// Sent returns a channel which is closed when the whole content
	// has been sent to the server.
	Sent() <-chan struct{}
}

type progress struct {
	total    int64
	counter  *tio.CountReader
	e        error
	result   *apidata.Detail
	resultOk bool
	done     chan struct{}
	sent     chan struct{}
}

func (p *progress) EstimatedTotalSize() int64 {
	return p.total
}

func (p *progress) ProgressedSize() int64 {
	return p.counter.Count()
}

func (p *progress) Error() error {
	return p.e
}

func (p *progress) Result() (*apidata.Detail, bool) {
	return p.result, p.resultOk
}

func (p *progress) Done() <-chan struct{} {
	return p.done
}

func (p *progress) Sent() <-chan struct{} {
	return p.sent
}

func (c *client) PushObject(
	ctx context.Context, loc apidata.Location, source io.Reader, size int64,
) Progress[*apidata.Detail] {
	counter := tio.NewCountReader(source)
	md5reader := tio.NewMD5Reader(counter)
	treader := tio.NewTriggerReader(md5reader)

	prog := &progress{
		total:   size,
		counter: counter,
		sent:    make(chan struct{}, 1),
		done:    make(chan struct{}, 1),
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPut,
		c.apipath("buckets", loc.Bucket, "objects", loc.Key),
		treader,
	)
	if err != nil {
		prog.e = err
		close(prog.done)
		return prog
	}
	treader.OnEnd(func() {
		req.Trailer.Add("x-checksum-md5", hex.EncodeToString(md5reader.Sum()))
		close(prog.sent)
	})

	req.Trailer = http.Header{}
	req.Header.Add("Content-Type", "text/csv")
	req.Header.Add("Transfer-Encoding", "chunked")
	req.Header.Add("Trailer", "x-checksum-md5")

	go func() {
		defer close(prog.done)

		resp, err := c.send(req)
		if err != nil {
			prog.e = err
			return
		}
		defer resp.Body.Close()

		res := &apidata.Detail{}
		if err := unmarshalJsonResponse(
			resp, res,
			MessageFor{
				Status4xx: fmt.Sprintf("uploading %s is rejected by server (status code = %d)", loc, resp.StatusCode),
				Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
			},
		); err != nil {
			prog.e = err
			return
		}

		prog.result = res
		prog.resultOk = true
	}()

	return prog
}

func (c *client) PullObject(
	ctx context.Context, loc apidata.Location, handler func(io.Reader) error,
) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet,
		c.apipath("buckets", loc.Bucket, "objects", loc.Key),
		nil,
	)
	if err != nil {
		return err
	}

	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	r, err := unmarshalStreamResponse(
		resp,
		MessageFor{
			Status4xx: fmt.Sprintf("object %s is not found", loc),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	)
	if err != nil {
		return err
	}

	chr := tio.NewMD5Reader(r)
	tr := tio.NewTriggerReader(chr)
	var hasherr error
	tr.OnEnd(func() {
		serverChecksum := resp.Trailer.Get("x-checksum-md5")
		if serverChecksum == "" {
			hasherr = fmt.Errorf("%w: server response is incompleted", ErrChecksumUnmatch)
			return
		}

		actualChecksum := hex.EncodeToString(chr.Sum())
		if serverChecksum == actualChecksum {
			return
		}
		hasherr = fmt.Errorf(
			"%w: server sent: %s, calcurated: %s",
			ErrChecksumUnmatch, serverChecksum, actualChecksum,
		)
	})

	if err := handler(tr); err != nil {
		return err
	}
	if _, err := io.Copy(io.Discard, tr); err != nil {
		// drain rest of the entry.
		return err
	}

	return hasherr
}
