// Package hub is an in-memory emulation of the Tunefab hub.
//
// It keeps buckets of objects, Jobs, Models, Endpoint Configs and
// Endpoints, and simulates their lifecycles on a clock: statuses are
// derived from creation times and the configured timings, so no
// background goroutine is needed and tests can inject a fake clock.
package hub

import (
	"crypto/md5"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tunefab/tunefab/cmd/tunehubd/fixtures"
	apidata "github.com/tunefab/tunefab/pkg/api/types/data"
	apiep "github.com/tunefab/tunefab/pkg/api/types/endpoints"
	apijobs "github.com/tunefab/tunefab/pkg/api/types/jobs"
	apimodels "github.com/tunefab/tunefab/pkg/api/types/models"
	"github.com/tunefab/tunefab/pkg/api/types/misc/rfctime"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrBadInput = errors.New("bad input")
)

// DefaultObjective is the metric the hub ranks candidates by when a Job
// spec does not name one.
const DefaultObjective = "f1"

type Clock func() time.Time

type object struct {
	body       []byte
	checksum   string
	uploadedAt time.Time
}

type jobRecord struct {
	jobId     string
	spec      apijobs.Spec
	createdAt time.Time

	// stopRequestedAt is non-nil once a stop has been asked for.
	stopRequestedAt *time.Time
}

type endpointRecord struct {
	spec      apiep.Spec
	createdAt time.Time
}

type Hub struct {
	mu sync.Mutex

	now Clock
	fx  fixtures.Config

	buckets   map[string]map[string]object
	jobs      map[string]*jobRecord
	models    map[string]apimodels.Detail
	configs   map[string]apiep.ConfigDetail
	endpoints map[string]*endpointRecord
}

type Option func(*Hub) *Hub

// WithClock replaces time.Now, for tests.
func WithClock(now Clock) Option {
	return func(h *Hub) *Hub {
		h.now = now
		return h
	}
}

func New(fx fixtures.Config, opts ...Option) *Hub {
	h := &Hub{
		now:       time.Now,
		fx:        fx,
		buckets:   map[string]map[string]object{},
		jobs:      map[string]*jobRecord{},
		models:    map[string]apimodels.Detail{},
		configs:   map[string]apiep.ConfigDetail{},
		endpoints: map[string]*endpointRecord{},
	}
	for _, opt := range opts {
		h = opt(h)
	}
	return h
}

// PutObject stores body at loc, overwriting an existing object.
func (h *Hub) PutObject(loc apidata.Location, body []byte) apidata.Detail {
	h.mu.Lock()
	defer h.mu.Unlock()

	sum := md5.Sum(body)
	obj := object{
		body:       body,
		checksum:   hex.EncodeToString(sum[:]),
		uploadedAt: h.now(),
	}

	bucket, ok := h.buckets[loc.Bucket]
	if !ok {
		bucket = map[string]object{}
		h.buckets[loc.Bucket] = bucket
	}
	bucket[loc.Key] = obj

	return apidata.Detail{
		Location:   loc,
		Size:       int64(len(obj.body)),
		Checksum:   obj.checksum,
		UploadedAt: rfctime.New(obj.uploadedAt),
	}
}

// GetObject returns the body and md5 checksum of the object at loc.
func (h *Hub) GetObject(loc apidata.Location) ([]byte, string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	obj, ok := h.buckets[loc.Bucket][loc.Key]
	if !ok {
		return nil, "", fmt.Errorf("%w: object %s", ErrNotFound, loc)
	}
	return obj.body, obj.checksum, nil
}

func (h *Hub) hasObject(loc apidata.Location) bool {
	_, ok := h.buckets[loc.Bucket][loc.Key]
	return ok
}

// SubmitJob accepts a Job spec and queues a simulated Job.
//
// The input object should have been uploaded beforehand.
func (h *Hub) SubmitJob(spec apijobs.Spec) (apijobs.Detail, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if spec.Name == "" {
		return apijobs.Detail{}, fmt.Errorf("%w: job name is required", ErrBadInput)
	}
	if spec.MaxCandidates <= 0 {
		return apijobs.Detail{}, fmt.Errorf("%w: maxCandidates should be positive", ErrBadInput)
	}
	if spec.TargetColumn == "" {
		return apijobs.Detail{}, fmt.Errorf("%w: targetColumn is required", ErrBadInput)
	}
	if !h.hasObject(spec.Input) {
		return apijobs.Detail{}, fmt.Errorf("%w: input object %s is not uploaded", ErrBadInput, spec.Input)
	}
	for _, j := range h.jobs {
		if j.spec.Name == spec.Name {
			return apijobs.Detail{}, fmt.Errorf("%w: job named %s exists", ErrConflict, spec.Name)
		}
	}

	j := &jobRecord{
		jobId:     "job-" + uuid.NewString(),
		spec:      spec,
		createdAt: h.now(),
	}
	h.jobs[j.jobId] = j

	return h.composeJob(j), nil
}

func (h *Hub) GetJob(jobId string) (apijobs.Detail, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	j, ok := h.jobs[jobId]
	if !ok {
		return apijobs.Detail{}, fmt.Errorf("%w: job %s", ErrNotFound, jobId)
	}
	return h.composeJob(j), nil
}

// FindJobQuery filters Jobs. Zero-valued fields do not filter.
type FindJobQuery struct {
	Name         []string
	Status       []apijobs.Status
	CreatedSince *time.Time
	CreatedUntil *time.Time
}

// FindJobs returns Jobs matching all the conditions of the query,
// in ascending order of creation time.
func (h *Hub) FindJobs(query FindJobQuery) []apijobs.Detail {
	h.mu.Lock()
	defer h.mu.Unlock()

	found := []apijobs.Detail{}
	for _, j := range h.jobs {
		if 0 < len(query.Name) && !contains(query.Name, j.spec.Name) {
			continue
		}
		if query.CreatedSince != nil && j.createdAt.Before(*query.CreatedSince) {
			continue
		}
		if query.CreatedUntil != nil && !j.createdAt.Before(*query.CreatedUntil) {
			continue
		}

		detail := h.composeJob(j)
		if 0 < len(query.Status) && !contains(query.Status, detail.Status) {
			continue
		}
		found = append(found, detail)
	}

	// map order is random; present jobs oldest first.
	sort.Slice(found, func(i, k int) bool {
		return found[i].CreatedAt.Time().Before(found[k].CreatedAt.Time())
	})
	return found
}

// Candidates lists the candidate pipelines of a Job, best first.
//
// Candidates appear only once the Job has succeeded.
func (h *Hub) Candidates(jobId string) ([]apijobs.Candidate, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	j, ok := h.jobs[jobId]
	if !ok {
		return nil, fmt.Errorf("%w: job %s", ErrNotFound, jobId)
	}

	status, _ := h.jobStatusAt(j, h.now())
	if status != apijobs.Succeeded {
		return []apijobs.Candidate{}, nil
	}
	return h.fabricateCandidates(j), nil
}

// StopJob asks a Job to stop. Stopping a terminal Job is a conflict.
func (h *Hub) StopJob(jobId string) (apijobs.Detail, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	j, ok := h.jobs[jobId]
	if !ok {
		return apijobs.Detail{}, fmt.Errorf("%w: job %s", ErrNotFound, jobId)
	}

	now := h.now()
	if status, _ := h.jobStatusAt(j, now); status.IsTerminal() {
		return apijobs.Detail{}, fmt.Errorf("%w: job %s is already %s", ErrConflict, jobId, status)
	}
	if j.stopRequestedAt == nil {
		j.stopRequestedAt = &now
	}
	return h.composeJob(j), nil
}

// DeleteJob removes a terminal Job record.
func (h *Hub) DeleteJob(jobId string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	j, ok := h.jobs[jobId]
	if !ok {
		return fmt.Errorf("%w: job %s", ErrNotFound, jobId)
	}
	if status, _ := h.jobStatusAt(j, h.now()); !status.IsTerminal() {
		return fmt.Errorf("%w: job %s is %s, not terminal", ErrConflict, jobId, status)
	}
	delete(h.jobs, jobId)
	return nil
}

func (h *Hub) CreateModel(spec apimodels.Spec) (apimodels.Detail, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if spec.Name == "" {
		return apimodels.Detail{}, fmt.Errorf("%w: model name is required", ErrBadInput)
	}
	if len(spec.Containers) == 0 {
		return apimodels.Detail{}, fmt.Errorf("%w: model should have a container", ErrBadInput)
	}
	for _, c := range spec.Containers {
		if c.Image == "" || c.ModelArtifact.Key == "" {
			return apimodels.Detail{}, fmt.Errorf(
				"%w: each container should have an image and a model artifact", ErrBadInput,
			)
		}
	}
	if _, ok := h.models[spec.Name]; ok {
		return apimodels.Detail{}, fmt.Errorf("%w: model named %s exists", ErrConflict, spec.Name)
	}

	detail := apimodels.Detail{Spec: spec, CreatedAt: rfctime.New(h.now())}
	h.models[spec.Name] = detail
	return detail, nil
}

func (h *Hub) DeleteModel(name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.models[name]; !ok {
		return fmt.Errorf("%w: model %s", ErrNotFound, name)
	}
	for _, c := range h.configs {
		if c.Model == name {
			return fmt.Errorf(
				"%w: model %s is referenced by endpoint config %s", ErrConflict, name, c.Name,
			)
		}
	}
	delete(h.models, name)
	return nil
}

func (h *Hub) CreateEndpointConfig(spec apiep.ConfigSpec) (apiep.ConfigDetail, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if spec.Name == "" {
		return apiep.ConfigDetail{}, fmt.Errorf("%w: endpoint config name is required", ErrBadInput)
	}
	if spec.InstanceCount <= 0 {
		return apiep.ConfigDetail{}, fmt.Errorf("%w: instanceCount should be positive", ErrBadInput)
	}
	if _, ok := h.models[spec.Model]; !ok {
		return apiep.ConfigDetail{}, fmt.Errorf("%w: model %s is not registered", ErrBadInput, spec.Model)
	}
	if _, ok := h.configs[spec.Name]; ok {
		return apiep.ConfigDetail{}, fmt.Errorf("%w: endpoint config named %s exists", ErrConflict, spec.Name)
	}

	detail := apiep.ConfigDetail{ConfigSpec: spec, CreatedAt: rfctime.New(h.now())}
	h.configs[spec.Name] = detail
	return detail, nil
}

func (h *Hub) DeleteEndpointConfig(name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.configs[name]; !ok {
		return fmt.Errorf("%w: endpoint config %s", ErrNotFound, name)
	}
	for _, ep := range h.endpoints {
		if ep.spec.Config == name {
			return fmt.Errorf(
				"%w: endpoint config %s is referenced by endpoint %s", ErrConflict, name, ep.spec.Name,
			)
		}
	}
	delete(h.configs, name)
	return nil
}

func (h *Hub) CreateEndpoint(spec apiep.Spec) (apiep.Detail, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if spec.Name == "" {
		return apiep.Detail{}, fmt.Errorf("%w: endpoint name is required", ErrBadInput)
	}
	if _, ok := h.configs[spec.Config]; !ok {
		return apiep.Detail{}, fmt.Errorf("%w: endpoint config %s is not registered", ErrBadInput, spec.Config)
	}
	if _, ok := h.endpoints[spec.Name]; ok {
		return apiep.Detail{}, fmt.Errorf("%w: endpoint named %s exists", ErrConflict, spec.Name)
	}

	ep := &endpointRecord{spec: spec, createdAt: h.now()}
	h.endpoints[spec.Name] = ep
	return h.composeEndpoint(ep), nil
}

func (h *Hub) GetEndpoint(name string) (apiep.Detail, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ep, ok := h.endpoints[name]
	if !ok {
		return apiep.Detail{}, fmt.Errorf("%w: endpoint %s", ErrNotFound, name)
	}
	return h.composeEndpoint(ep), nil
}

func (h *Hub) DeleteEndpoint(name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.endpoints[name]; !ok {
		return fmt.Errorf("%w: endpoint %s", ErrNotFound, name)
	}
	delete(h.endpoints, name)
	return nil
}

// Invoke runs the canned predictor over text/csv rows (no header) and
// returns one predicted label per row, as text/csv.
//
// The Endpoint should be in-service.
func (h *Hub) Invoke(name string, payload string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ep, ok := h.endpoints[name]
	if !ok {
		return "", fmt.Errorf("%w: endpoint %s", ErrNotFound, name)
	}
	if state := h.endpointStateAt(ep, h.now()); state != apiep.InService {
		return "", fmt.Errorf("%w: endpoint %s is %s, not %s", ErrConflict, name, state, apiep.InService)
	}

	cr := csv.NewReader(strings.NewReader(payload))
	cr.FieldsPerRecord = -1

	sb := new(strings.Builder)
	cw := csv.NewWriter(sb)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: payload is not csv: %s", ErrBadInput, err)
		}
		if err := cw.Write([]string{h.predict(rec)}); err != nil {
			return "", err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (h *Hub) predict(row []string) string {
	for _, rule := range h.fx.Predictor.Rules {
		if rule.Column < 0 || len(row) <= rule.Column {
			continue
		}
		if row[rule.Column] == rule.Equals {
			return rule.Label
		}
	}
	return h.fx.Predictor.Default
}

// jobStatusAt derives the status of a Job at the given instant, with the
// time of the last status transition.
func (h *Hub) jobStatusAt(j *jobRecord, now time.Time) (apijobs.Status, time.Time) {
	queueEnd := j.createdAt.Add(h.fx.Timings.QueueLatency.Duration())
	runEnd := queueEnd.Add(h.fx.Timings.RunDuration.Duration())

	if j.stopRequestedAt != nil && j.stopRequestedAt.Before(runEnd) {
		stopEnd := j.stopRequestedAt.Add(h.fx.Timings.StopLatency.Duration())
		if now.Before(stopEnd) {
			return apijobs.Stopping, *j.stopRequestedAt
		}
		return apijobs.Stopped, stopEnd
	}

	switch {
	case now.Before(queueEnd):
		return apijobs.Queued, j.createdAt
	case now.Before(runEnd):
		return apijobs.Running, queueEnd
	}

	if h.fx.FailureMarker != "" && strings.Contains(j.spec.Name, h.fx.FailureMarker) {
		return apijobs.Failed, runEnd
	}
	return apijobs.Succeeded, runEnd
}

func (h *Hub) endpointStateAt(ep *endpointRecord, now time.Time) apiep.State {
	if now.Before(ep.createdAt.Add(h.fx.Timings.EndpointLatency.Duration())) {
		return apiep.Creating
	}
	return apiep.InService
}

func (h *Hub) composeJob(j *jobRecord) apijobs.Detail {
	status, updatedAt := h.jobStatusAt(j, h.now())

	detail := apijobs.Detail{
		Summary: apijobs.Summary{
			JobId:     j.jobId,
			Status:    status,
			CreatedAt: rfctime.New(j.createdAt),
			UpdatedAt: rfctime.New(updatedAt),
		},
		Spec: j.spec,
	}

	switch status {
	case apijobs.Succeeded:
		candidates := h.fabricateCandidates(j)
		if 0 < len(candidates) {
			detail.BestCandidate = &candidates[0]
		}
	case apijobs.Failed:
		detail.FailureReason = "simulated failure"
	}
	return detail
}

func (h *Hub) fabricateCandidates(j *jobRecord) []apijobs.Candidate {
	objective := j.spec.Objective
	if objective == "" {
		objective = DefaultObjective
	}

	seeds := h.fx.Candidates
	if j.spec.MaxCandidates < len(seeds) {
		seeds = seeds[:j.spec.MaxCandidates]
	}

	candidates := make([]apijobs.Candidate, 0, len(seeds))
	for _, seed := range seeds {
		candidates = append(candidates, apijobs.Candidate{
			Name:      seed.Name,
			Objective: apijobs.Metric{Name: objective, Value: seed.Objective},
			Image:     seed.Image,
			ModelArtifact: apidata.Location{
				Bucket: j.spec.Output.Bucket,
				Key:    path.Join(j.spec.Output.Key, seed.Name, "model.tar.gz"),
			},
		})
	}
	return candidates
}

func (h *Hub) composeEndpoint(ep *endpointRecord) apiep.Detail {
	state := h.endpointStateAt(ep, h.now())

	updatedAt := ep.createdAt
	if state == apiep.InService {
		updatedAt = ep.createdAt.Add(h.fx.Timings.EndpointLatency.Duration())
	}

	return apiep.Detail{
		Spec:      ep.spec,
		State:     state,
		CreatedAt: rfctime.New(ep.createdAt),
		UpdatedAt: rfctime.New(updatedAt),
	}
}

func contains[T comparable](haystack []T, needle T) bool {
	for _, h := range haystack {
		if h == needle {
			return true
		}
	}
	return false
}
