package rest

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tprof "github.com/tunefab/tunefab/cmd/tune/config/profiles"
	apidata "github.com/tunefab/tunefab/pkg/api/types/data"
	apiendpoints "github.com/tunefab/tunefab/pkg/api/types/endpoints"
	apijobs "github.com/tunefab/tunefab/pkg/api/types/jobs"
	apimodels "github.com/tunefab/tunefab/pkg/api/types/models"
	"github.com/tunefab/tunefab/pkg/utils"
)

type FindJobParameter struct {
	// Name of jobs to be found. Empty means "any".
	Name []string

	// Status of jobs to be found. Empty means "any".
	Status []string

	// Since filters jobs created at or after this time.
	Since *time.Time

	// Duration, with Since, limits the range to [Since, Since+Duration).
	Duration *time.Duration
}

type HubClient interface {
	// PushObject uploads a stream to an object on the hub.
	//
	// Args
	//
	// - context.Context
	//
	// - apidata.Location: where the object is stored
	//
	// - io.Reader: content of the object
	//
	// - int64: size of the content in bytes
	//
	// Returns
	//
	// - Progress[*apidata.Detail]: progress of uploading.
	// Its Result() is metadata of the stored object.
	PushObject(ctx context.Context, loc apidata.Location, source io.Reader, size int64) Progress[*apidata.Detail]

	// PullObject downloads an object from the hub and verifies its checksum.
	//
	// Args
	//
	// - context.Context
	//
	// - apidata.Location: where the object is stored
	//
	// - handler: function called with the raw stream.
	// If handler returns an error, downloading is stopped and the error is returned.
	//
	// Returns
	//
	// - error: error occured during downloading,
	// or ErrChecksumUnmatch when the received bytes do not match the stored checksum.
	PullObject(ctx context.Context, loc apidata.Location, handler func(io.Reader) error) error

	// SubmitJob registers a new tuning job on the hub.
	SubmitJob(ctx context.Context, spec apijobs.Spec) (apijobs.Detail, error)

	// GetJob gets job detail with given jobId.
	GetJob(ctx context.Context, jobId string) (apijobs.Detail, error)

	// FindJob finds jobs with given name, status and time range.
	FindJob(ctx context.Context, query FindJobParameter) ([]apijobs.Summary, error)

	// GetCandidates lists candidates the job has tried, best first.
	GetCandidates(ctx context.Context, jobId string) ([]apijobs.Candidate, error)

	// StopJob requests the hub to stop a job gently.
	//
	// The job will be "stopping" status after this operation.
	StopJob(ctx context.Context, jobId string) (apijobs.Detail, error)

	// DeleteJob deletes a job record with given jobId.
	DeleteJob(ctx context.Context, jobId string) error

	// CreateModel registers a model built from job artifacts.
	CreateModel(ctx context.Context, spec apimodels.Spec) (apimodels.Detail, error)

	// DeleteModel deletes a model with given name.
	DeleteModel(ctx context.Context, name string) error

	// CreateEndpointConfig registers an endpoint config.
	CreateEndpointConfig(ctx context.Context, spec apiendpoints.ConfigSpec) (apiendpoints.ConfigDetail, error)

	// DeleteEndpointConfig deletes an endpoint config with given name.
	DeleteEndpointConfig(ctx context.Context, name string) error

	// CreateEndpoint starts serving an endpoint for an endpoint config.
	CreateEndpoint(ctx context.Context, spec apiendpoints.Spec) (apiendpoints.Detail, error)

	// GetEndpoint gets endpoint detail with given name.
	GetEndpoint(ctx context.Context, name string) (apiendpoints.Detail, error)

	// DeleteEndpoint deletes an endpoint with given name.
	DeleteEndpoint(ctx context.Context, name string) error

	// Invoke sends a text/csv payload to an endpoint and
	// returns the text/csv prediction response.
	Invoke(ctx context.Context, endpoint string, payload string) (string, error)
}

type client struct {
	httpclient *http.Client
	api        string
	token      string
}

// create new hub client for TuneProfile
//
// # Args
//
// - *tprof.TuneProfile
//
// # Return
//
// - HubClient: created client
//
// - error: If given profile is invalid, ErrProfileInvalid is returned.
func NewClient(prof *tprof.TuneProfile) (HubClient, error) {
	if err := prof.Verify(); err != nil {
		return nil, err
	}
	httpclient := new(http.Client)

	if prof.Cert.CA != "" {
		hc, err := trustCa(httpclient, []string{prof.Cert.CA})
		if err != nil {
			return nil, err
		}
		httpclient = hc
	}

	c := &client{
		httpclient: httpclient,
		api:        strings.TrimSuffix(prof.ApiRoot, "/"),
		token:      prof.Token,
	}

	return c, nil
}

// build URL with path
func (c *client) apipath(path ...string) string {
	path = utils.Map(path, func(p string) string {
		return strings.TrimPrefix(strings.TrimSuffix(p, "/"), "/")
	})

	return strings.Join(append([]string{c.api}, path...), "/")
}

// send performs req, attaching the profile token when there is one.
func (c *client) send(req *http.Request) (*http.Response, error) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.httpclient.Do(req)
}

func trustCa(hc *http.Client, cacerts []string) (*http.Client, error) {
	if len(cacerts) <= 0 {
		return hc, nil
	}

	if hc.Transport == nil {
		hc.Transport = http.DefaultTransport
	}

	tran, ok := hc.Transport.(*http.Transport)
	if !ok {
		return nil, fmt.Errorf("failed to add ca cert")
	}
	tran = tran.Clone()

	tcc := tran.TLSClientConfig.Clone()
	if tcc == nil {
		tcc = &tls.Config{}
	}

	rootcas := tcc.RootCAs
	if rootcas == nil {
		rootcas = x509.NewCertPool()
		tcc.RootCAs = rootcas
	}
	for _, ca := range cacerts {
		bin, err := base64.StdEncoding.DecodeString(ca)
		if err != nil {
			return nil, err
		}

		if !rootcas.AppendCertsFromPEM(bin) {
			return nil, fmt.Errorf("failed to add cert")
		}
	}

	tran.TLSClientConfig = tcc
	hc.Transport = tran
	return hc, nil
}
