package submit_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/tunefab/tunefab/cmd/tune/env"
	"github.com/tunefab/tunefab/cmd/tune/rest/mock"
	"github.com/tunefab/tunefab/cmd/tune/subcommands/internal/commandline"
	"github.com/tunefab/tunefab/cmd/tune/subcommands/job/submit"
	"github.com/tunefab/tunefab/cmd/tune/subcommands/logger"
	apidata "github.com/tunefab/tunefab/pkg/api/types/data"
	apijobs "github.com/tunefab/tunefab/pkg/api/types/jobs"
	"github.com/youta-t/flarc"
)

func TestSubmitCommand(t *testing.T) {

	t.Run("it submits a job composed from flags, env and args", func(t *testing.T) {
		ctx := context.Background()

		submitted := apijobs.Detail{
			Summary: apijobs.Summary{JobId: "job-1", Status: apijobs.Queued},
			Spec: apijobs.Spec{
				Name:          "churn-tuning",
				Input:         apidata.Location{Bucket: "churn-experiments", Key: "datasets/train.csv"},
				TargetColumn:  "Churn?",
				Output:        apidata.Location{Bucket: "churn-experiments", Key: "artifacts/churn-tuning"},
				MaxCandidates: 5,
				Objective:     "f1",
			},
		}

		client := mock.New(t)
		client.Impl.SubmitJob = func(_ context.Context, spec apijobs.Spec) (apijobs.Detail, error) {
			return submitted, nil
		}

		stdout := new(bytes.Buffer)
		cl := commandline.MockCommandline[submit.Flags]{
			Fullname_: "tune job submit",
			Stdout_:   stdout,
			Stderr_:   new(bytes.Buffer),
			Flags_: submit.Flags{
				Name:          "churn-tuning",
				TargetColumn:  "Churn?",
				MaxCandidates: 5,
				Objective:     "f1",
			},
			Args_: map[string][]string{
				submit.ARG_INPUT: {"datasets/train.csv"},
			},
		}

		testee := submit.Task()
		if err := testee(
			ctx, logger.Null(), env.TuneEnv{Bucket: "churn-experiments"},
			client, cl, nil,
		); err != nil {
			t.Fatal(err)
		}

		if len(client.Calls.SubmitJob) != 1 {
			t.Fatalf("SubmitJob: called %d times", len(client.Calls.SubmitJob))
		}
		if !client.Calls.SubmitJob[0].Equal(submitted.Spec) {
			t.Errorf(
				"submitted spec: got %+v, want %+v",
				client.Calls.SubmitJob[0], submitted.Spec,
			)
		}

		written := apijobs.Detail{}
		if err := json.Unmarshal(stdout.Bytes(), &written); err != nil {
			t.Fatal(err)
		}
		if !written.Equal(submitted) {
			t.Errorf("stdout: got %+v, want %+v", written, submitted)
		}
	})

	t.Run("it takes defaults from tuneenv", func(t *testing.T) {
		ctx := context.Background()

		client := mock.New(t)
		client.Impl.SubmitJob = func(_ context.Context, spec apijobs.Spec) (apijobs.Detail, error) {
			return apijobs.Detail{
				Summary: apijobs.Summary{JobId: "job-2", Status: apijobs.Queued},
				Spec:    spec,
			}, nil
		}

		cl := commandline.MockCommandline[submit.Flags]{
			Fullname_: "tune job submit",
			Stdout_:   new(bytes.Buffer),
			Stderr_:   new(bytes.Buffer),
			Flags_:    submit.Flags{},
			Args_: map[string][]string{
				submit.ARG_INPUT: {"hub://other-bucket/datasets/train.csv"},
			},
		}

		testee := submit.Task()
		if err := testee(
			ctx, logger.Null(),
			env.TuneEnv{
				Bucket:        "churn-experiments",
				TargetColumn:  "Churn?",
				MaxCandidates: 7,
				Objective:     "accuracy",
			},
			client, cl, nil,
		); err != nil {
			t.Fatal(err)
		}

		spec := client.Calls.SubmitJob[0]
		if spec.Name == "" {
			t.Error("name should be generated")
		}
		want := apidata.Location{Bucket: "other-bucket", Key: "datasets/train.csv"}
		if !spec.Input.Equal(want) {
			t.Errorf("input: got %v, want %v", spec.Input, want)
		}
		if spec.TargetColumn != "Churn?" {
			t.Errorf("targetColumn: got %s, want Churn?", spec.TargetColumn)
		}
		if spec.MaxCandidates != 7 {
			t.Errorf("maxCandidates: got %d, want 7", spec.MaxCandidates)
		}
		if spec.Objective != "accuracy" {
			t.Errorf("objective: got %s, want accuracy", spec.Objective)
		}
		if spec.Output.Bucket != "churn-experiments" || spec.Output.Key != "artifacts/"+spec.Name {
			t.Errorf("output: got %v", spec.Output)
		}
	})

	t.Run("it is a usage error when no target column is known", func(t *testing.T) {
		ctx := context.Background()
		client := mock.New(t)

		cl := commandline.MockCommandline[submit.Flags]{
			Fullname_: "tune job submit",
			Stdout_:   new(bytes.Buffer),
			Stderr_:   new(bytes.Buffer),
			Flags_:    submit.Flags{},
			Args_: map[string][]string{
				submit.ARG_INPUT: {"hub://b/datasets/train.csv"},
			},
		}

		testee := submit.Task()
		err := testee(ctx, logger.Null(), env.TuneEnv{}, client, cl, nil)
		if !errors.Is(err, flarc.ErrUsage) {
			t.Errorf("error: got %v, want %v", err, flarc.ErrUsage)
		}
		if len(client.Calls.SubmitJob) != 0 {
			t.Error("SubmitJob should not be called")
		}
	})
}
