package evaluate_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tunefab/tunefab/cmd/tune/env"
	"github.com/tunefab/tunefab/cmd/tune/rest/mock"
	"github.com/tunefab/tunefab/cmd/tune/subcommands/evaluate"
	"github.com/tunefab/tunefab/cmd/tune/subcommands/internal/commandline"
	"github.com/tunefab/tunefab/cmd/tune/subcommands/logger"
	"github.com/youta-t/flarc"
)

func testCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestEvaluateCommand(t *testing.T) {

	t.Run("it scores predictions batch by batch", func(t *testing.T) {
		ctx := context.Background()

		// 4 rows, batch size 3: two invocations.
		csv := testCSV(t, strings.Join([]string{
			"state,calls,Churn?",
			"OH,10,True.",
			"NY,3,False.",
			"CA,8,True.",
			"WA,1,False.",
			"",
		}, "\n"))

		answers := []string{"True.\nFalse.\nFalse.\n", "False.\n"}

		client := mock.New(t)
		client.Impl.Invoke = func(_ context.Context, endpoint string, payload string) (string, error) {
			nth := len(client.Calls.Invoke) - 1
			if len(answers) <= nth {
				t.Fatalf("Invoke is called too many times: %d", nth+1)
			}
			return answers[nth], nil
		}

		stdout := new(bytes.Buffer)
		cl := commandline.MockCommandline[evaluate.Flags]{
			Fullname_: "tune evaluate",
			Stdout_:   stdout,
			Stderr_:   new(bytes.Buffer),
			Flags_: evaluate.Flags{
				Endpoint:     "churn-endpoint",
				TargetColumn: "Churn?",
				Positive:     "True.",
				BatchSize:    3,
				JSON:         true,
			},
			Args_: map[string][]string{
				evaluate.ARG_TEST_DATASET: {csv},
			},
		}

		testee := evaluate.Task()
		if err := testee(ctx, logger.Null(), env.TuneEnv{}, client, cl, nil); err != nil {
			t.Fatal(err)
		}

		if len(client.Calls.Invoke) != 2 {
			t.Fatalf("Invoke: called %d times, want 2", len(client.Calls.Invoke))
		}
		for _, call := range client.Calls.Invoke {
			if call.Endpoint != "churn-endpoint" {
				t.Errorf("endpoint: got %s", call.Endpoint)
			}
			if strings.Contains(call.Payload, "Churn?") || strings.Contains(call.Payload, "True.") {
				t.Errorf("payload should not carry the label: %q", call.Payload)
			}
		}
		if !strings.HasPrefix(client.Calls.Invoke[0].Payload, "OH,10\n") {
			t.Errorf("first batch: got %q", client.Calls.Invoke[0].Payload)
		}

		// truth:     True., False., True., False.
		// predicted: True., False., False., False.
		// TP=1 FP=0 TN=2 FN=1
		report := struct {
			Samples   int     `json:"samples"`
			Accuracy  float64 `json:"accuracy"`
			Precision float64 `json:"precision"`
			Recall    float64 `json:"recall"`
			F1        float64 `json:"f1"`
		}{}
		if err := json.Unmarshal(stdout.Bytes(), &report); err != nil {
			t.Fatal(err)
		}
		if report.Samples != 4 {
			t.Errorf("samples: got %d, want 4", report.Samples)
		}
		if report.Accuracy != 0.75 {
			t.Errorf("accuracy: got %f, want 0.75", report.Accuracy)
		}
		if report.Precision != 1.0 {
			t.Errorf("precision: got %f, want 1.0", report.Precision)
		}
		if report.Recall != 0.5 {
			t.Errorf("recall: got %f, want 0.5", report.Recall)
		}
	})

	t.Run("it fails when predictions and truth differ in length", func(t *testing.T) {
		ctx := context.Background()

		csv := testCSV(t, "a,Churn?\n1,True.\n2,False.\n")

		client := mock.New(t)
		client.Impl.Invoke = func(_ context.Context, _ string, _ string) (string, error) {
			return "True.\n", nil // one prediction for two rows
		}

		cl := commandline.MockCommandline[evaluate.Flags]{
			Fullname_: "tune evaluate",
			Stdout_:   new(bytes.Buffer),
			Stderr_:   new(bytes.Buffer),
			Flags_: evaluate.Flags{
				Endpoint: "churn-endpoint",
				Positive: "True.",
			},
			Args_: map[string][]string{
				evaluate.ARG_TEST_DATASET: {csv},
			},
		}

		testee := evaluate.Task()
		err := testee(
			ctx, logger.Null(), env.TuneEnv{TargetColumn: "Churn?"}, client, cl, nil,
		)
		if err == nil {
			t.Fatal("no error occured")
		}
	})

	t.Run("it is a usage error without --endpoint or --positive", func(t *testing.T) {
		ctx := context.Background()
		client := mock.New(t)

		for name, flags := range map[string]evaluate.Flags{
			"no endpoint": {Positive: "True."},
			"no positive": {Endpoint: "churn-endpoint"},
		} {
			t.Run(name, func(t *testing.T) {
				cl := commandline.MockCommandline[evaluate.Flags]{
					Fullname_: "tune evaluate",
					Stdout_:   new(bytes.Buffer),
					Stderr_:   new(bytes.Buffer),
					Flags_:    flags,
					Args_: map[string][]string{
						evaluate.ARG_TEST_DATASET: {"test.csv"},
					},
				}

				testee := evaluate.Task()
				err := testee(
					ctx, logger.Null(), env.TuneEnv{TargetColumn: "Churn?"}, client, cl, nil,
				)
				if !errors.Is(err, flarc.ErrUsage) {
					t.Errorf("error: got %v, want %v", err, flarc.ErrUsage)
				}
			})
		}
	})
}
