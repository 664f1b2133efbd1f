package pull_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tunefab/tunefab/cmd/tune/env"
	"github.com/tunefab/tunefab/cmd/tune/rest/mock"
	"github.com/tunefab/tunefab/cmd/tune/subcommands/dataset/pull"
	"github.com/tunefab/tunefab/cmd/tune/subcommands/internal/commandline"
	"github.com/tunefab/tunefab/cmd/tune/subcommands/logger"
	apidata "github.com/tunefab/tunefab/pkg/api/types/data"
)

func TestPullCommand(t *testing.T) {

	t.Run("it downloads an object into a file, counting progress", func(t *testing.T) {
		ctx := context.Background()

		content := "state,calls,Churn?\nOH,10,False.\nNY,3,True.\n"

		client := mock.New(t)
		client.Impl.PullObject = func(_ context.Context, loc apidata.Location, handler func(io.Reader) error) error {
			return handler(strings.NewReader(content))
		}

		output := filepath.Join(t.TempDir(), "train.csv")
		stderr := new(bytes.Buffer)
		cl := commandline.MockCommandline[pull.Flags]{
			Fullname_: "tune dataset pull",
			Stdout_:   new(bytes.Buffer),
			Stderr_:   stderr,
			Flags_:    pull.Flags{Output: output},
			Args_: map[string][]string{
				pull.ARG_LOCATION: {"hub://b/datasets/train.csv"},
			},
		}

		testee := pull.Task()
		if err := testee(ctx, logger.Null(), env.TuneEnv{}, client, cl, nil); err != nil {
			t.Fatal(err)
		}

		if len(client.Calls.PullObject) != 1 {
			t.Fatalf("PullObject: called %d times", len(client.Calls.PullObject))
		}
		want := apidata.Location{Bucket: "b", Key: "datasets/train.csv"}
		if !client.Calls.PullObject[0].Equal(want) {
			t.Errorf("location: got %v, want %v", client.Calls.PullObject[0], want)
		}

		written, err := os.ReadFile(output)
		if err != nil {
			t.Fatal(err)
		}
		if string(written) != content {
			t.Errorf("file content: got %q, want %q", string(written), content)
		}

		// progress counter is rendered while downloading
		if !strings.Contains(stderr.String(), "downloading hub://b/datasets/train.csv:") {
			t.Errorf("no progress on stderr: %q", stderr.String())
		}
	})

	t.Run("with -o - it writes the object to stdout, without progress", func(t *testing.T) {
		ctx := context.Background()

		content := "a,b\n1,2\n"

		client := mock.New(t)
		client.Impl.PullObject = func(_ context.Context, loc apidata.Location, handler func(io.Reader) error) error {
			return handler(strings.NewReader(content))
		}

		stdout := new(bytes.Buffer)
		stderr := new(bytes.Buffer)
		cl := commandline.MockCommandline[pull.Flags]{
			Fullname_: "tune dataset pull",
			Stdout_:   stdout,
			Stderr_:   stderr,
			Flags_:    pull.Flags{Output: "-"},
			Args_: map[string][]string{
				pull.ARG_LOCATION: {"hub://b/artifacts/predictions.csv"},
			},
		}

		testee := pull.Task()
		if err := testee(ctx, logger.Null(), env.TuneEnv{}, client, cl, nil); err != nil {
			t.Fatal(err)
		}

		if stdout.String() != content {
			t.Errorf("stdout: got %q, want %q", stdout.String(), content)
		}
		if stderr.Len() != 0 {
			t.Errorf("stderr should stay silent for stdout output: %q", stderr.String())
		}
	})
}
