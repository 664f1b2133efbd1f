package hub_test

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/tunefab/tunefab/cmd/tunehubd/fixtures"
	"github.com/tunefab/tunefab/cmd/tunehubd/hub"
	apidata "github.com/tunefab/tunefab/pkg/api/types/data"
	apiep "github.com/tunefab/tunefab/pkg/api/types/endpoints"
	apijobs "github.com/tunefab/tunefab/pkg/api/types/jobs"
	apimodels "github.com/tunefab/tunefab/pkg/api/types/models"
	"github.com/tunefab/tunefab/pkg/utils/try"
)

// testFixtures has timings easy to step over with a fake clock.
func testFixtures() fixtures.Config {
	fx := fixtures.Default()
	fx.Timings = fixtures.Timings{
		QueueLatency:    fixtures.Duration(10 * time.Second),
		RunDuration:     fixtures.Duration(60 * time.Second),
		StopLatency:     fixtures.Duration(5 * time.Second),
		EndpointLatency: fixtures.Duration(30 * time.Second),
	}
	fx.FailureMarker = "doomed"
	return fx
}

func fakeClock(at *time.Time) hub.Clock {
	return func() time.Time { return *at }
}

func jobSpec(name string) apijobs.Spec {
	return apijobs.Spec{
		Name:          name,
		Input:         apidata.Location{Bucket: "b", Key: "datasets/train.csv"},
		TargetColumn:  "Churn?",
		Output:        apidata.Location{Bucket: "b", Key: "artifacts/" + name},
		MaxCandidates: 2,
		Objective:     "f1",
	}
}

func TestObjects(t *testing.T) {
	t.Run("it stores and returns an object with its md5", func(t *testing.T) {
		h := hub.New(testFixtures())
		body := []byte("a,b,c\n1,2,3\n")

		loc := apidata.Location{Bucket: "b", Key: "datasets/train.csv"}
		detail := h.PutObject(loc, body)

		sum := md5.Sum(body)
		wantChecksum := hex.EncodeToString(sum[:])

		if !detail.Location.Equal(loc) {
			t.Errorf("location: got %v, want %v", detail.Location, loc)
		}
		if detail.Size != int64(len(body)) {
			t.Errorf("size: got %d, want %d", detail.Size, len(body))
		}
		if detail.Checksum != wantChecksum {
			t.Errorf("checksum: got %s, want %s", detail.Checksum, wantChecksum)
		}

		got, checksum, err := h.GetObject(loc)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != string(body) {
			t.Errorf("body: got %s, want %s", got, body)
		}
		if checksum != wantChecksum {
			t.Errorf("checksum: got %s, want %s", checksum, wantChecksum)
		}
	})

	t.Run("it does not find objects never put", func(t *testing.T) {
		h := hub.New(testFixtures())
		_, _, err := h.GetObject(apidata.Location{Bucket: "b", Key: "no/such/key"})
		if !errors.Is(err, hub.ErrNotFound) {
			t.Errorf("error: got %v, want %v", err, hub.ErrNotFound)
		}
	})
}

func TestJobLifecycle(t *testing.T) {
	fx := testFixtures()

	t.Run("a job walks queued -> running -> succeeded on the clock", func(t *testing.T) {
		now := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
		h := hub.New(fx, hub.WithClock(fakeClock(&now)))
		h.PutObject(apidata.Location{Bucket: "b", Key: "datasets/train.csv"}, []byte("x\n1\n"))

		job := try.To(h.SubmitJob(jobSpec("churn-tuning"))).OrFatal(t)
		if job.Status != apijobs.Queued {
			t.Errorf("status: got %s, want %s", job.Status, apijobs.Queued)
		}
		if job.JobId == "" {
			t.Error("jobId is empty")
		}

		now = now.Add(11 * time.Second)
		job = try.To(h.GetJob(job.JobId)).OrFatal(t)
		if job.Status != apijobs.Running {
			t.Errorf("status: got %s, want %s", job.Status, apijobs.Running)
		}
		if job.BestCandidate != nil {
			t.Error("running job should not have a best candidate")
		}

		candidates := try.To(h.Candidates(job.JobId)).OrFatal(t)
		if len(candidates) != 0 {
			t.Errorf("candidates before success: got %d, want 0", len(candidates))
		}

		now = now.Add(61 * time.Second)
		job = try.To(h.GetJob(job.JobId)).OrFatal(t)
		if job.Status != apijobs.Succeeded {
			t.Errorf("status: got %s, want %s", job.Status, apijobs.Succeeded)
		}
		if job.BestCandidate == nil {
			t.Fatal("succeeded job should have a best candidate")
		}

		candidates = try.To(h.Candidates(job.JobId)).OrFatal(t)
		if len(candidates) != 2 { // capped by MaxCandidates
			t.Fatalf("candidates: got %d, want 2", len(candidates))
		}
		if !job.BestCandidate.Equal(candidates[0]) {
			t.Errorf(
				"best candidate: got %+v, want the first candidate %+v",
				job.BestCandidate, candidates[0],
			)
		}
		if candidates[0].Objective.Value < candidates[1].Objective.Value {
			t.Error("candidates should be ordered best first")
		}
		for _, c := range candidates {
			if c.Objective.Name != "f1" {
				t.Errorf("objective name: got %s, want f1", c.Objective.Name)
			}
			if c.ModelArtifact.Bucket != "b" {
				t.Errorf("artifact bucket: got %s, want b", c.ModelArtifact.Bucket)
			}
		}
	})

	t.Run("a job named with the failure marker fails", func(t *testing.T) {
		now := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
		h := hub.New(fx, hub.WithClock(fakeClock(&now)))
		h.PutObject(apidata.Location{Bucket: "b", Key: "datasets/train.csv"}, []byte("x\n1\n"))

		job := try.To(h.SubmitJob(jobSpec("doomed-tuning"))).OrFatal(t)

		now = now.Add(2 * time.Minute)
		job = try.To(h.GetJob(job.JobId)).OrFatal(t)
		if job.Status != apijobs.Failed {
			t.Errorf("status: got %s, want %s", job.Status, apijobs.Failed)
		}
		if job.FailureReason == "" {
			t.Error("failed job should have a failure reason")
		}
		if job.BestCandidate != nil {
			t.Error("failed job should not have a best candidate")
		}
	})

	t.Run("submitting is rejected for bad specs", func(t *testing.T) {
		now := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
		h := hub.New(fx, hub.WithClock(fakeClock(&now)))
		h.PutObject(apidata.Location{Bucket: "b", Key: "datasets/train.csv"}, []byte("x\n1\n"))

		{
			spec := jobSpec("no-input")
			spec.Input.Key = "datasets/nothing.csv"
			if _, err := h.SubmitJob(spec); !errors.Is(err, hub.ErrBadInput) {
				t.Errorf("error: got %v, want %v", err, hub.ErrBadInput)
			}
		}
		{
			spec := jobSpec("no-target")
			spec.TargetColumn = ""
			if _, err := h.SubmitJob(spec); !errors.Is(err, hub.ErrBadInput) {
				t.Errorf("error: got %v, want %v", err, hub.ErrBadInput)
			}
		}
		{
			if _, err := h.SubmitJob(jobSpec("twin")); err != nil {
				t.Fatal(err)
			}
			if _, err := h.SubmitJob(jobSpec("twin")); !errors.Is(err, hub.ErrConflict) {
				t.Errorf("error: got %v, want %v", err, hub.ErrConflict)
			}
		}
	})

	t.Run("stopping a running job settles it as stopped", func(t *testing.T) {
		now := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
		h := hub.New(fx, hub.WithClock(fakeClock(&now)))
		h.PutObject(apidata.Location{Bucket: "b", Key: "datasets/train.csv"}, []byte("x\n1\n"))

		job := try.To(h.SubmitJob(jobSpec("to-be-stopped"))).OrFatal(t)

		now = now.Add(11 * time.Second)
		job = try.To(h.StopJob(job.JobId)).OrFatal(t)
		if job.Status != apijobs.Stopping {
			t.Errorf("status: got %s, want %s", job.Status, apijobs.Stopping)
		}

		now = now.Add(6 * time.Second)
		job = try.To(h.GetJob(job.JobId)).OrFatal(t)
		if job.Status != apijobs.Stopped {
			t.Errorf("status: got %s, want %s", job.Status, apijobs.Stopped)
		}

		if _, err := h.StopJob(job.JobId); !errors.Is(err, hub.ErrConflict) {
			t.Errorf("stopping a terminal job: got %v, want %v", err, hub.ErrConflict)
		}
	})

	t.Run("only terminal jobs can be deleted", func(t *testing.T) {
		now := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
		h := hub.New(fx, hub.WithClock(fakeClock(&now)))
		h.PutObject(apidata.Location{Bucket: "b", Key: "datasets/train.csv"}, []byte("x\n1\n"))

		job := try.To(h.SubmitJob(jobSpec("short-lived"))).OrFatal(t)

		if err := h.DeleteJob(job.JobId); !errors.Is(err, hub.ErrConflict) {
			t.Errorf("deleting a queued job: got %v, want %v", err, hub.ErrConflict)
		}

		now = now.Add(2 * time.Minute)
		if err := h.DeleteJob(job.JobId); err != nil {
			t.Fatal(err)
		}
		if _, err := h.GetJob(job.JobId); !errors.Is(err, hub.ErrNotFound) {
			t.Errorf("getting a deleted job: got %v, want %v", err, hub.ErrNotFound)
		}
	})
}

func TestFindJobs(t *testing.T) {
	fx := testFixtures()

	now := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	h := hub.New(fx, hub.WithClock(fakeClock(&now)))
	h.PutObject(apidata.Location{Bucket: "b", Key: "datasets/train.csv"}, []byte("x\n1\n"))

	early := try.To(h.SubmitJob(jobSpec("early"))).OrFatal(t)

	now = now.Add(2 * time.Minute) // "early" has succeeded
	late := try.To(h.SubmitJob(jobSpec("late"))).OrFatal(t)

	t.Run("no conditions match everything, oldest first", func(t *testing.T) {
		found := h.FindJobs(hub.FindJobQuery{})
		if len(found) != 2 {
			t.Fatalf("found: got %d, want 2", len(found))
		}
		if found[0].JobId != early.JobId || found[1].JobId != late.JobId {
			t.Errorf("order: got [%s, %s]", found[0].JobId, found[1].JobId)
		}
	})

	t.Run("by name", func(t *testing.T) {
		found := h.FindJobs(hub.FindJobQuery{Name: []string{"late"}})
		if len(found) != 1 || found[0].JobId != late.JobId {
			t.Errorf("found: got %+v, want only %s", found, late.JobId)
		}
	})

	t.Run("by status", func(t *testing.T) {
		found := h.FindJobs(hub.FindJobQuery{Status: []apijobs.Status{apijobs.Succeeded}})
		if len(found) != 1 || found[0].JobId != early.JobId {
			t.Errorf("found: got %+v, want only %s", found, early.JobId)
		}
	})

	t.Run("by creation window", func(t *testing.T) {
		since := early.CreatedAt.Time().Add(time.Minute)
		found := h.FindJobs(hub.FindJobQuery{CreatedSince: &since})
		if len(found) != 1 || found[0].JobId != late.JobId {
			t.Errorf("found: got %+v, want only %s", found, late.JobId)
		}

		until := since
		found = h.FindJobs(hub.FindJobQuery{CreatedUntil: &until})
		if len(found) != 1 || found[0].JobId != early.JobId {
			t.Errorf("found: got %+v, want only %s", found, early.JobId)
		}
	})
}

func TestModelsAndEndpoints(t *testing.T) {
	fx := testFixtures()
	fx.Predictor = fixtures.Predictor{
		Default: "False.",
		Rules: []fixtures.Rule{
			{Column: 1, Equals: "yes", Label: "True."},
		},
	}

	modelSpec := apimodels.Spec{
		Name: "churn-predictor",
		Containers: []apimodels.Container{
			{
				Image:         "tunefab/automl-serving:1.2",
				ModelArtifact: apidata.Location{Bucket: "b", Key: "artifacts/j/cand-01/model.tar.gz"},
			},
		},
	}

	t.Run("a model, a config and an endpoint chain up", func(t *testing.T) {
		now := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
		h := hub.New(fx, hub.WithClock(fakeClock(&now)))

		model := try.To(h.CreateModel(modelSpec)).OrFatal(t)
		if !model.Spec.Equal(modelSpec) {
			t.Errorf("model: got %+v, want %+v", model.Spec, modelSpec)
		}
		if _, err := h.CreateModel(modelSpec); !errors.Is(err, hub.ErrConflict) {
			t.Errorf("duplicate model: got %v, want %v", err, hub.ErrConflict)
		}

		configSpec := apiep.ConfigSpec{
			Name: "churn-config", Model: model.Name,
			InstanceType: "standard.m", InstanceCount: 1,
		}
		{
			bad := configSpec
			bad.Model = "no-such-model"
			if _, err := h.CreateEndpointConfig(bad); !errors.Is(err, hub.ErrBadInput) {
				t.Errorf("config with unknown model: got %v, want %v", err, hub.ErrBadInput)
			}
		}
		config := try.To(h.CreateEndpointConfig(configSpec)).OrFatal(t)

		if err := h.DeleteModel(model.Name); !errors.Is(err, hub.ErrConflict) {
			t.Errorf("deleting a referenced model: got %v, want %v", err, hub.ErrConflict)
		}

		endpoint := try.To(h.CreateEndpoint(apiep.Spec{
			Name: "churn-endpoint", Config: config.Name,
		})).OrFatal(t)
		if endpoint.State != apiep.Creating {
			t.Errorf("state: got %s, want %s", endpoint.State, apiep.Creating)
		}

		if _, err := h.Invoke("churn-endpoint", "1,yes\n"); !errors.Is(err, hub.ErrConflict) {
			t.Errorf("invoking a creating endpoint: got %v, want %v", err, hub.ErrConflict)
		}

		now = now.Add(31 * time.Second)
		endpoint = try.To(h.GetEndpoint("churn-endpoint")).OrFatal(t)
		if endpoint.State != apiep.InService {
			t.Errorf("state: got %s, want %s", endpoint.State, apiep.InService)
		}

		predictions := try.To(h.Invoke("churn-endpoint", "1,yes\n2,no\n3,yes\n")).OrFatal(t)
		if predictions != "True.\nFalse.\nTrue.\n" {
			t.Errorf("predictions: got %q", predictions)
		}

		if err := h.DeleteEndpointConfig(config.Name); !errors.Is(err, hub.ErrConflict) {
			t.Errorf("deleting a referenced config: got %v, want %v", err, hub.ErrConflict)
		}

		// teardown, outside-in
		if err := h.DeleteEndpoint(endpoint.Name); err != nil {
			t.Fatal(err)
		}
		if err := h.DeleteEndpointConfig(config.Name); err != nil {
			t.Fatal(err)
		}
		if err := h.DeleteModel(model.Name); err != nil {
			t.Fatal(err)
		}

		if _, err := h.GetEndpoint(endpoint.Name); !errors.Is(err, hub.ErrNotFound) {
			t.Errorf("getting a deleted endpoint: got %v, want %v", err, hub.ErrNotFound)
		}
		if err := h.DeleteEndpoint(endpoint.Name); !errors.Is(err, hub.ErrNotFound) {
			t.Errorf("deleting twice: got %v, want %v", err, hub.ErrNotFound)
		}
	})

	t.Run("an endpoint needs a registered config", func(t *testing.T) {
		h := hub.New(fx)
		if _, err := h.CreateEndpoint(apiep.Spec{
			Name: "orphan", Config: "no-such-config",
		}); !errors.Is(err, hub.ErrBadInput) {
			t.Errorf("error: got %v, want %v", err, hub.ErrBadInput)
		}
	})
}
