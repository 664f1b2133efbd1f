package find_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/tunefab/tunefab/cmd/tune/env"
	trst "github.com/tunefab/tunefab/cmd/tune/rest"
	"github.com/tunefab/tunefab/cmd/tune/rest/mock"
	"github.com/tunefab/tunefab/cmd/tune/subcommands/internal/commandline"
	"github.com/tunefab/tunefab/cmd/tune/subcommands/job/find"
	"github.com/tunefab/tunefab/cmd/tune/subcommands/logger"
	apijobs "github.com/tunefab/tunefab/pkg/api/types/jobs"
	kargs "github.com/tunefab/tunefab/pkg/utils/args"
	"github.com/tunefab/tunefab/pkg/utils/cmp"
	"github.com/youta-t/flarc"
)

func TestFindCommand(t *testing.T) {

	t.Run("it queries jobs with the given conditions", func(t *testing.T) {
		ctx := context.Background()

		found := []apijobs.Summary{
			{JobId: "job-1", Status: apijobs.Running},
			{JobId: "job-2", Status: apijobs.Queued},
		}

		client := mock.New(t)
		client.Impl.FindJob = func(_ context.Context, _ trst.FindJobParameter) ([]apijobs.Summary, error) {
			return found, nil
		}

		since := &kargs.OptionalLooseRFC3339{}
		if err := since.Set("2024-04-01"); err != nil {
			t.Fatal(err)
		}
		duration := &kargs.OptionalDuration{}
		if err := duration.Set("2h"); err != nil {
			t.Fatal(err)
		}

		stdout := new(bytes.Buffer)
		cl := commandline.MockCommandline[find.Flags]{
			Fullname_: "tune job find",
			Stdout_:   stdout,
			Stderr_:   new(bytes.Buffer),
			Flags_: find.Flags{
				Name:     &kargs.Argslice{"churn-tuning"},
				Status:   &kargs.Argslice{"queued", "running"},
				Since:    since,
				Duration: duration,
			},
			Args_: map[string][]string{},
		}

		testee := find.Task()
		if err := testee(ctx, logger.Null(), env.TuneEnv{}, client, cl, nil); err != nil {
			t.Fatal(err)
		}

		if len(client.Calls.FindJob) != 1 {
			t.Fatalf("FindJob: called %d times", len(client.Calls.FindJob))
		}
		query := client.Calls.FindJob[0]
		if !cmp.SliceEq(query.Name, []string{"churn-tuning"}) {
			t.Errorf("name: got %v", query.Name)
		}
		if !cmp.SliceEq(query.Status, []string{"queued", "running"}) {
			t.Errorf("status: got %v", query.Status)
		}
		if query.Since == nil {
			t.Error("since should be set")
		}
		if query.Duration == nil || *query.Duration != 2*time.Hour {
			t.Errorf("duration: got %v", query.Duration)
		}

		written := []apijobs.Summary{}
		if err := json.Unmarshal(stdout.Bytes(), &written); err != nil {
			t.Fatal(err)
		}
		if !cmp.SliceEqWith(written, found, apijobs.Summary.Equal) {
			t.Errorf("stdout: got %+v, want %+v", written, found)
		}
	})

	t.Run("it is a usage error to give an unknown status", func(t *testing.T) {
		ctx := context.Background()
		client := mock.New(t)

		cl := commandline.MockCommandline[find.Flags]{
			Fullname_: "tune job find",
			Stdout_:   new(bytes.Buffer),
			Stderr_:   new(bytes.Buffer),
			Flags_: find.Flags{
				Name:     &kargs.Argslice{},
				Status:   &kargs.Argslice{"paused"},
				Since:    &kargs.OptionalLooseRFC3339{},
				Duration: &kargs.OptionalDuration{},
			},
			Args_: map[string][]string{},
		}

		testee := find.Task()
		err := testee(ctx, logger.Null(), env.TuneEnv{}, client, cl, nil)
		if !errors.Is(err, flarc.ErrUsage) {
			t.Errorf("error: got %v, want %v", err, flarc.ErrUsage)
		}
	})

	t.Run("it is a usage error to give duration without since", func(t *testing.T) {
		ctx := context.Background()
		client := mock.New(t)

		duration := &kargs.OptionalDuration{}
		if err := duration.Set("2h"); err != nil {
			t.Fatal(err)
		}

		cl := commandline.MockCommandline[find.Flags]{
			Fullname_: "tune job find",
			Stdout_:   new(bytes.Buffer),
			Stderr_:   new(bytes.Buffer),
			Flags_: find.Flags{
				Name:     &kargs.Argslice{},
				Status:   &kargs.Argslice{},
				Since:    &kargs.OptionalLooseRFC3339{},
				Duration: duration,
			},
			Args_: map[string][]string{},
		}

		testee := find.Task()
		err := testee(ctx, logger.Null(), env.TuneEnv{}, client, cl, nil)
		if !errors.Is(err, flarc.ErrUsage) {
			t.Errorf("error: got %v, want %v", err, flarc.ErrUsage)
		}
	})
}
