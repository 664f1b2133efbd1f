package mock

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/tunefab/tunefab/cmd/tune/rest"
	apidata "github.com/tunefab/tunefab/pkg/api/types/data"
	apiendpoints "github.com/tunefab/tunefab/pkg/api/types/endpoints"
	apijobs "github.com/tunefab/tunefab/pkg/api/types/jobs"
	apimodels "github.com/tunefab/tunefab/pkg/api/types/models"
)

type PushObjectArgs struct {
	Location apidata.Location
	Size     int64
}

type FindJobArgs struct {
	Name     []string
	Status   []string
	Since    *time.Time
	Duration *time.Duration
}

type InvokeArgs struct {
	Endpoint string
	Payload  string
}

func New(t *testing.T) *mockHubClient {
	return &mockHubClient{t: t}
}

type MockedPushObjectProgress struct {
	EstimatedTotalSize_ int64

	ProgressedSize_ int64

	Error_ error

	Result_ *apidata.Detail

	ResultOk_ bool

	Done_ <-chan struct{}

	Sent_ <-chan struct{}
}

func (m *MockedPushObjectProgress) EstimatedTotalSize() int64 {
	return m.EstimatedTotalSize_
}

func (m *MockedPushObjectProgress) ProgressedSize() int64 {
	return m.ProgressedSize_
}

func (m *MockedPushObjectProgress) Result() (*apidata.Detail, bool) {
	return m.Result_, m.ResultOk_
}

func (m *MockedPushObjectProgress) Error() error {
	return m.Error_
}

func (m *MockedPushObjectProgress) Done() <-chan struct{} {
	return m.Done_
}

func (m *MockedPushObjectProgress) Sent() <-chan struct{} {
	return m.Sent_
}

type mockHubClient struct {
	t    *testing.T
	Impl struct {
		PushObject           func(ctx context.Context, loc apidata.Location, source io.Reader, size int64) rest.Progress[*apidata.Detail]
		PullObject           func(ctx context.Context, loc apidata.Location, handler func(io.Reader) error) error
		SubmitJob            func(ctx context.Context, spec apijobs.Spec) (apijobs.Detail, error)
		GetJob               func(ctx context.Context, jobId string) (apijobs.Detail, error)
		FindJob              func(ctx context.Context, query rest.FindJobParameter) ([]apijobs.Summary, error)
		GetCandidates        func(ctx context.Context, jobId string) ([]apijobs.Candidate, error)
		StopJob              func(ctx context.Context, jobId string) (apijobs.Detail, error)
		DeleteJob            func(ctx context.Context, jobId string) error
		CreateModel          func(ctx context.Context, spec apimodels.Spec) (apimodels.Detail, error)
		DeleteModel          func(ctx context.Context, name string) error
		CreateEndpointConfig func(ctx context.Context, spec apiendpoints.ConfigSpec) (apiendpoints.ConfigDetail, error)
		DeleteEndpointConfig func(ctx context.Context, name string) error
		CreateEndpoint       func(ctx context.Context, spec apiendpoints.Spec) (apiendpoints.Detail, error)
		GetEndpoint          func(ctx context.Context, name string) (apiendpoints.Detail, error)
		DeleteEndpoint       func(ctx context.Context, name string) error
		Invoke               func(ctx context.Context, endpoint string, payload string) (string, error)
	}
	Calls struct {
		PushObject           []PushObjectArgs
		PullObject           []apidata.Location
		SubmitJob            []apijobs.Spec
		GetJob               []string
		FindJob              []FindJobArgs
		GetCandidates        []string
		StopJob              []string
		DeleteJob            []string
		CreateModel          []apimodels.Spec
		DeleteModel          []string
		CreateEndpointConfig []apiendpoints.ConfigSpec
		DeleteEndpointConfig []string
		CreateEndpoint       []apiendpoints.Spec
		GetEndpoint          []string
		DeleteEndpoint       []string
		Invoke               []InvokeArgs
	}
}

var _ rest.HubClient = &mockHubClient{}

func (m *mockHubClient) PushObject(
	ctx context.Context, loc apidata.Location, source io.Reader, size int64,
) rest.Progress[*apidata.Detail] {
	m.t.Helper()

	m.Calls.PushObject = append(m.Calls.PushObject, PushObjectArgs{Location: loc, Size: size})
	if m.Impl.PushObject == nil {
		m.t.Fatal("PushObject is not ready to be called")
	}
	return m.Impl.PushObject(ctx, loc, source, size)
}

func (m *mockHubClient) PullObject(
	ctx context.Context, loc apidata.Location, handler func(io.Reader) error,
) error {
	m.t.Helper()

	m.Calls.PullObject = append(m.Calls.PullObject, loc)
	if m.Impl.PullObject == nil {
		m.t.Fatal("PullObject is not ready to be called")
	}
	return m.Impl.PullObject(ctx, loc, handler)
}

func (m *mockHubClient) SubmitJob(ctx context.Context, spec apijobs.Spec) (apijobs.Detail, error) {
	m.t.Helper()

	m.Calls.SubmitJob = append(m.Calls.SubmitJob, spec)
	if m.Impl.SubmitJob == nil {
		m.t.Fatal("SubmitJob is not ready to be called")
	}
	return m.Impl.SubmitJob(ctx, spec)
}

func (m *mockHubClient) GetJob(ctx context.Context, jobId string) (apijobs.Detail, error) {
	m.t.Helper()

	m.Calls.GetJob = append(m.Calls.GetJob, jobId)
	if m.Impl.GetJob == nil {
		m.t.Fatal("GetJob is not ready to be called")
	}
	return m.Impl.GetJob(ctx, jobId)
}

func (m *mockHubClient) FindJob(
	ctx context.Context, query rest.FindJobParameter,
) ([]apijobs.Summary, error) {
	m.t.Helper()

	m.Calls.FindJob = append(
		m.Calls.FindJob,
		FindJobArgs{query.Name, query.Status, query.Since, query.Duration},
	)
	if m.Impl.FindJob == nil {
		m.t.Fatal("FindJob is not ready to be called")
	}
	return m.Impl.FindJob(ctx, query)
}

func (m *mockHubClient) GetCandidates(ctx context.Context, jobId string) ([]apijobs.Candidate, error) {
	m.t.Helper()

	m.Calls.GetCandidates = append(m.Calls.GetCandidates, jobId)
	if m.Impl.GetCandidates == nil {
		m.t.Fatal("GetCandidates is not ready to be called")
	}
	return m.Impl.GetCandidates(ctx, jobId)
}

func (m *mockHubClient) StopJob(ctx context.Context, jobId string) (apijobs.Detail, error) {
	m.t.Helper()

	m.Calls.StopJob = append(m.Calls.StopJob, jobId)
	if m.Impl.StopJob == nil {
		m.t.Fatal("StopJob is not ready to be called")
	}
	return m.Impl.StopJob(ctx, jobId)
}

func (m *mockHubClient) DeleteJob(ctx context.Context, jobId string) error {
	m.t.Helper()

	m.Calls.DeleteJob = append(m.Calls.DeleteJob, jobId)
	if m.Impl.DeleteJob == nil {
		m.t.Fatal("DeleteJob is not ready to be called")
	}
	return m.Impl.DeleteJob(ctx, jobId)
}

func (m *mockHubClient) CreateModel(ctx context.Context, spec apimodels.Spec) (apimodels.Detail, error) {
	m.t.Helper()

	m.Calls.CreateModel = append(m.Calls.CreateModel, spec)
	if m.Impl.CreateModel == nil {
		m.t.Fatal("CreateModel is not ready to be called")
	}
	return m.Impl.CreateModel(ctx, spec)
}

func (m *mockHubClient) DeleteModel(ctx context.Context, name string) error {
	m.t.Helper()

	m.Calls.DeleteModel = append(m.Calls.DeleteModel, name)
	if m.Impl.DeleteModel == nil {
		m.t.Fatal("DeleteModel is not ready to be called")
	}
	return m.Impl.DeleteModel(ctx, name)
}

func (m *mockHubClient) CreateEndpointConfig(
	ctx context.Context, spec apiendpoints.ConfigSpec,
) (apiendpoints.ConfigDetail, error) {
	m.t.Helper()

	m.Calls.CreateEndpointConfig = append(m.Calls.CreateEndpointConfig, spec)
	if m.Impl.CreateEndpointConfig == nil {
		m.t.Fatal("CreateEndpointConfig is not ready to be called")
	}
	return m.Impl.CreateEndpointConfig(ctx, spec)
}

func (m *mockHubClient) DeleteEndpointConfig(ctx context.Context, name string) error {
	m.t.Helper()

	m.Calls.DeleteEndpointConfig = append(m.Calls.DeleteEndpointConfig, name)
	if m.Impl.DeleteEndpointConfig == nil {
		m.t.Fatal("DeleteEndpointConfig is not ready to be called")
	}
	return m.Impl.DeleteEndpointConfig(ctx, name)
}

func (m *mockHubClient) CreateEndpoint(
	ctx context.Context, spec apiendpoints.Spec,
) (apiendpoints.Detail, error) {
	m.t.Helper()

	m.Calls.CreateEndpoint = append(m.Calls.CreateEndpoint, spec)
	if m.Impl.CreateEndpoint == nil {
		m.t.Fatal("CreateEndpoint is not ready to be called")
	}
	return m.Impl.CreateEndpoint(ctx, spec)
}

func (m *mockHubClient) GetEndpoint(ctx context.Context, name string) (apiendpoints.Detail, error) {
	m.t.Helper()

	m.Calls.GetEndpoint = append(m.Calls.GetEndpoint, name)
	if m.Impl.GetEndpoint == nil {
		m.t.Fatal("GetEndpoint is not ready to be called")
	}
	return m.Impl.GetEndpoint(ctx, name)
}

func (m *mockHubClient) DeleteEndpoint(ctx context.Context, name string) error {
	m.t.Helper()

	m.Calls.DeleteEndpoint = append(m.Calls.DeleteEndpoint, name)
	if m.Impl.DeleteEndpoint == nil {
		m.t.Fatal("DeleteEndpoint is not ready to be called")
	}
	return m.Impl.DeleteEndpoint(ctx, name)
}

func (m *mockHubClient) Invoke(ctx context.Context, endpoint string, payload string) (string, error) {
	m.t.Helper()

	m.Calls.Invoke = append(m.Calls.Invoke, InvokeArgs{Endpoint: endpoint, Payload: payload})
	if m.Impl.Invoke == nil {
		m.t.Fatal("Invoke is not ready to be called")
	}
	return m.Impl.Invoke(ctx, endpoint, payload)
}
