package rest_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tprof "github.com/tunefab/tunefab/cmd/tune/config/profiles"
	trst "github.com/tunefab/tunefab/cmd/tune/rest"
	"github.com/tunefab/tunefab/pkg/api/types/data"
	apierr "github.com/tunefab/tunefab/pkg/api/types/errors"
	"github.com/tunefab/tunefab/pkg/api/types/jobs"
	"github.com/tunefab/tunefab/pkg/api/types/misc/rfctime"
	"github.com/tunefab/tunefab/pkg/utils/cmp"
	"github.com/tunefab/tunefab/pkg/utils/try"
)

func TestSubmitJob(t *testing.T) {
	t.Run("it posts the spec and returns the created job", func(t *testing.T) {
		spec := jobs.Spec{
			Name:          "churn-tuning",
			Input:         data.Location{Bucket: "churn", Key: "datasets/train.csv"},
			TargetColumn:  "Churn?",
			Output:        data.Location{Bucket: "churn", Key: "artifacts"},
			MaxCandidates: 3,
			Objective:     "f1",
		}
		expectedResponse := jobs.Detail{
			Summary: jobs.Summary{
				JobId:  "job-1",
				Status: jobs.Queued,
				CreatedAt: try.To(rfctime.ParseRFC3339DateTime(
					"2024-04-02T12:00:00+00:00",
				)).OrFatal(t),
				UpdatedAt: try.To(rfctime.ParseRFC3339DateTime(
					"2024-04-02T12:00:00+00:00",
				)).OrFatal(t),
			},
			Spec: spec,
		}

		var gotSpec jobs.Spec
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("request is not POST /jobs (actual method = %s)", r.Method)
			}
			if !strings.HasSuffix(r.URL.Path, "/jobs") {
				t.Errorf("request is not POST /jobs (actual path = %s)", r.URL.Path)
			}
			if err := json.NewDecoder(r.Body).Decode(&gotSpec); err != nil {
				t.Fatal(err.Error())
			}

			w.Header().Add("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(try.To(json.Marshal(expectedResponse)).OrFatal(t))
		}))
		defer server.Close()

		profile := tprof.TuneProfile{ApiRoot: server.URL}
		testee := try.To(trst.NewClient(&profile)).OrFatal(t)

		actualResponse := try.To(testee.SubmitJob(context.Background(), spec)).OrFatal(t)

		if !gotSpec.Equal(spec) {
			t.Errorf("sent spec is not equal (actual,expected): %+v,%+v", gotSpec, spec)
		}
		if !actualResponse.Equal(expectedResponse) {
			t.Errorf("response is not equal (actual,expected): %+v,%+v", actualResponse, expectedResponse)
		}
	})
}

func TestGetJob(t *testing.T) {
	t.Run("when server returns a job, it returns that as is", func(t *testing.T) {
		expectedResponse := jobs.Detail{
			Summary: jobs.Summary{
				JobId:  "test-jobId",
				Status: jobs.Succeeded,
				CreatedAt: try.To(rfctime.ParseRFC3339DateTime(
					"2024-04-02T12:00:00+00:00",
				)).OrFatal(t),
				UpdatedAt: try.To(rfctime.ParseRFC3339DateTime(
					"2024-04-02T13:34:56+00:00",
				)).OrFatal(t),
			},
			Spec: jobs.Spec{
				Name:          "churn-tuning",
				Input:         data.Location{Bucket: "churn", Key: "datasets/train.csv"},
				TargetColumn:  "Churn?",
				Output:        data.Location{Bucket: "churn", Key: "artifacts"},
				MaxCandidates: 3,
			},
			BestCandidate: &jobs.Candidate{
				Name:          "churn-tuning-001",
				Objective:     jobs.Metric{Name: "f1", Value: 0.91},
				Image:         "registry.example.com/serving/xgboost:1.7",
				ModelArtifact: data.Location{Bucket: "churn", Key: "artifacts/churn-tuning-001/model.tar.gz"},
			},
		}

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				t.Errorf("request is not GET /jobs/:jobId (actual method = %s)", r.Method)
			}
			if !strings.HasSuffix(r.URL.Path, "/jobs/test-jobId") {
				t.Errorf("request is not GET /jobs/:jobId (actual path = %s)", r.URL.Path)
			}

			w.Header().Add("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(try.To(json.Marshal(expectedResponse)).OrFatal(t))
		}))
		defer server.Close()

		profile := tprof.TuneProfile{ApiRoot: server.URL}
		testee := try.To(trst.NewClient(&profile)).OrFatal(t)

		actualResponse := try.To(testee.GetJob(context.Background(), "test-jobId")).OrFatal(t)
		if !actualResponse.Equal(expectedResponse) {
			t.Errorf("response is not equal (actual,expected): %+v,%+v", actualResponse, expectedResponse)
		}
	})

	t.Run("a server responding with error is given", func(t *testing.T) {
		handlerFactory := func(t *testing.T, status int, message string) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Helper()
				w.WriteHeader(status)
				w.Header().Set("Content-Type", "application/json")

				buf := try.To(json.Marshal(
					apierr.ErrorMessage{Reason: message},
				)).OrFatal(t)
				w.Write(buf)
			})
		}
		for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError} {
			t.Run(fmt.Sprintf("when server responding with %d, it returns error", status), func(t *testing.T) {
				ctx := context.Background()
				handler := handlerFactory(t, status, "something wrong")

				server := httptest.NewServer(handler)
				defer server.Close()

				profile := tprof.TuneProfile{ApiRoot: server.URL}
				testee := try.To(trst.NewClient(&profile)).OrFatal(t)

				if _, err := testee.GetJob(ctx, "test-Id"); err == nil {
					t.Errorf("no error occured")
				}
			})
		}
	})

	t.Run("when the profile has a token, it is sent as bearer", func(t *testing.T) {
		var gotAuth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			w.Header().Add("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"jobId":"j","status":"queued","createdAt":null,"updatedAt":null,"spec":{"name":"n","input":{"bucket":"b","key":"k"},"targetColumn":"t","output":{"bucket":"b","key":"o"},"maxCandidates":1}}`))
		}))
		defer server.Close()

		profile := tprof.TuneProfile{ApiRoot: server.URL, Token: "opaque-token"}
		testee := try.To(trst.NewClient(&profile)).OrFatal(t)

		try.To(testee.GetJob(context.Background(), "j")).OrFatal(t)

		if gotAuth != "Bearer opaque-token" {
			t.Errorf("Authorization header unmatch. actual = %s", gotAuth)
		}
	})
}

func TestFindJob(t *testing.T) {
	t.Run("it queries with name and status, and returns summaries", func(t *testing.T) {
		expectedResponse := []jobs.Summary{
			{
				JobId:  "job-1",
				Status: jobs.Running,
				CreatedAt: try.To(rfctime.ParseRFC3339DateTime(
					"2024-04-02T12:00:00+00:00",
				)).OrFatal(t),
				UpdatedAt: try.To(rfctime.ParseRFC3339DateTime(
					"2024-04-02T12:10:00+00:00",
				)).OrFatal(t),
			},
			{
				JobId:  "job-2",
				Status: jobs.Succeeded,
				CreatedAt: try.To(rfctime.ParseRFC3339DateTime(
					"2024-04-01T12:00:00+00:00",
				)).OrFatal(t),
				UpdatedAt: try.To(rfctime.ParseRFC3339DateTime(
					"2024-04-01T15:00:00+00:00",
				)).OrFatal(t),
			},
		}

		var gotQuery map[string][]string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				t.Errorf("request is not GET /jobs (actual method = %s)", r.Method)
			}
			gotQuery = r.URL.Query()

			w.Header().Add("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(try.To(json.Marshal(expectedResponse)).OrFatal(t))
		}))
		defer server.Close()

		profile := tprof.TuneProfile{ApiRoot: server.URL}
		testee := try.To(trst.NewClient(&profile)).OrFatal(t)

		actualResponse := try.To(testee.FindJob(context.Background(), trst.FindJobParameter{
			Name:   []string{"churn-tuning"},
			Status: []string{"running", "succeeded"},
		})).OrFatal(t)

		if !cmp.SliceEqWith(actualResponse, expectedResponse, jobs.Summary.Equal) {
			t.Errorf("response is not equal (actual,expected): %+v,%+v", actualResponse, expectedResponse)
		}
		if name := gotQuery["name"]; len(name) != 1 || name[0] != "churn-tuning" {
			t.Errorf("query name unmatch: %+v", gotQuery)
		}
		if status := gotQuery["status"]; len(status) != 1 || status[0] != "running,succeeded" {
			t.Errorf("query status unmatch: %+v", gotQuery)
		}
	})
}

func TestStopJob(t *testing.T) {
	t.Run("it puts to /jobs/:jobId/stop and returns the stopping job", func(t *testing.T) {
		expectedResponse := jobs.Detail{
			Summary: jobs.Summary{
				JobId:  "test-jobId",
				Status: jobs.Stopping,
				CreatedAt: try.To(rfctime.ParseRFC3339DateTime(
					"2024-04-02T12:00:00+00:00",
				)).OrFatal(t),
				UpdatedAt: try.To(rfctime.ParseRFC3339DateTime(
					"2024-04-02T12:30:00+00:00",
				)).OrFatal(t),
			},
			Spec: jobs.Spec{
				Name:          "churn-tuning",
				Input:         data.Location{Bucket: "churn", Key: "datasets/train.csv"},
				TargetColumn:  "Churn?",
				Output:        data.Location{Bucket: "churn", Key: "artifacts"},
				MaxCandidates: 3,
			},
		}

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPut {
				t.Errorf("request is not PUT /jobs/:jobId/stop (actual method = %s)", r.Method)
			}
			if !strings.HasSuffix(r.URL.Path, "/jobs/test-jobId/stop") {
				t.Errorf("request is not PUT /jobs/:jobId/stop (actual path = %s)", r.URL.Path)
			}

			w.Header().Add("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(try.To(json.Marshal(expectedResponse)).OrFatal(t))
		}))
		defer server.Close()

		profile := tprof.TuneProfile{ApiRoot: server.URL}
		testee := try.To(trst.NewClient(&profile)).OrFatal(t)

		actualResponse := try.To(testee.StopJob(context.Background(), "test-jobId")).OrFatal(t)
		if !actualResponse.Equal(expectedResponse) {
			t.Errorf("response is not equal (actual,expected): %+v,%+v", actualResponse, expectedResponse)
		}
	})
}

func TestDeleteJob(t *testing.T) {
	t.Run("it sends DELETE /jobs/:jobId", func(t *testing.T) {
		var gotPath string
		var gotMethod string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotPath = r.URL.Path
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		profile := tprof.TuneProfile{ApiRoot: server.URL}
		testee := try.To(trst.NewClient(&profile)).OrFatal(t)

		if err := testee.DeleteJob(context.Background(), "test-jobId"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotMethod != http.MethodDelete {
			t.Errorf("request is not DELETE (actual method = %s)", gotMethod)
		}
		if !strings.HasSuffix(gotPath, "/jobs/test-jobId") {
			t.Errorf("request path unmatch (actual path = %s)", gotPath)
		}
	})

	t.Run("when the job is not found, it returns error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message": {"reason": "no such job"}}`))
		}))
		defer server.Close()

		profile := tprof.TuneProfile{ApiRoot: server.URL}
		testee := try.To(trst.NewClient(&profile)).OrFatal(t)

		if err := testee.DeleteJob(context.Background(), "missing"); err == nil {
			t.Errorf("no error occured")
		}
	})
}
