package evaluate

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/tunefab/tunefab/cmd/tune/env"
	trst "github.com/tunefab/tunefab/cmd/tune/rest"
	"github.com/tunefab/tunefab/cmd/tune/subcommands/common"
	"github.com/tunefab/tunefab/pkg/dataset"
	"github.com/tunefab/tunefab/pkg/metrics"
	"github.com/youta-t/flarc"
)

type Flags struct {
	Endpoint     string `flag:"endpoint" alias:"e" help:"name of the Endpoint to be evaluated" metavar:"ENDPOINT"`
	TargetColumn string `flag:"target-column" alias:"t" help:"label column of the Dataset. Default: targetColumn of tuneenv" metavar:"COLUMN"`
	Positive     string `flag:"positive" alias:"p" help:"label counted as positive" metavar:"LABEL"`
	BatchSize    int    `flag:"batch-size" help:"rows sent per invocation. Default: 100" metavar:"N"`
	JSON         bool   `flag:"json" help:"print the report as JSON"`
}

const ARG_TEST_DATASET = "TEST_DATASET"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Score an Endpoint against a labelled test Dataset.",
		Flags{},
		flarc.Args{
			{
				Name: ARG_TEST_DATASET, Required: true,
				Help: "local CSV with a header, holding the label column",
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
Score an Endpoint against a labelled test Dataset.

The label column is cut out of the Dataset, the remaining rows are sent
to the Endpoint in batches, and the predictions are counted against the
held-out labels. Accuracy, precision, recall and F1 are reported, with
precision, recall and F1 counted against the --positive label.

Example:

	{{ .Command }} --endpoint churn-endpoint --positive "True." test.csv
`),
	)
}

func Task() common.Task[Flags] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		tuneEnv env.TuneEnv,
		client trst.HubClient,
		cl flarc.Commandline[Flags],
		params []any,
	) error {
		flags := cl.Flags()

		if flags.Endpoint == "" {
			return fmt.Errorf("%w: --endpoint is required", flarc.ErrUsage)
		}
		if flags.Positive == "" {
			return fmt.Errorf("%w: --positive is required", flarc.ErrUsage)
		}

		targetColumn := flags.TargetColumn
		if targetColumn == "" {
			targetColumn = tuneEnv.TargetColumn
		}
		if targetColumn == "" {
			return fmt.Errorf(
				"%w: no target column. Pass --target-column or set targetColumn in tuneenv",
				flarc.ErrUsage,
			)
		}

		batchSize := flags.BatchSize
		if batchSize == 0 {
			batchSize = 100
		}
		if batchSize < 0 {
			return fmt.Errorf("%w: --batch-size should be positive", flarc.ErrUsage)
		}

		table, err := dataset.LoadFile(cl.Args()[ARG_TEST_DATASET][0])
		if err != nil {
			return err
		}

		features, truth, err := table.PopColumn(targetColumn)
		if err != nil {
			return err
		}

		batches, err := features.EncodeBatches(batchSize)
		if err != nil {
			return err
		}

		predicted := make([]string, 0, len(truth))
		for nth, batch := range batches {
			resp, err := client.Invoke(ctx, flags.Endpoint, batch)
			if err != nil {
				return fmt.Errorf("%w: Endpoint:%s", err, flags.Endpoint)
			}
			p, err := parsePredictions(resp)
			if err != nil {
				return err
			}
			predicted = append(predicted, p...)
			logger.Printf("batch %d/%d: %d predictions", nth+1, len(batches), len(p))
		}

		report, err := metrics.BinaryReport(truth, predicted, flags.Positive)
		if err != nil {
			return err
		}

		if flags.JSON {
			enc := json.NewEncoder(cl.Stdout())
			enc.SetIndent("", "    ")
			return enc.Encode(struct {
				Endpoint  string  `json:"endpoint"`
				Positive  string  `json:"positive"`
				Samples   int     `json:"samples"`
				Accuracy  float64 `json:"accuracy"`
				Precision float64 `json:"precision"`
				Recall    float64 `json:"recall"`
				F1        float64 `json:"f1"`
			}{
				Endpoint:  flags.Endpoint,
				Positive:  report.Positive,
				Samples:   report.Total(),
				Accuracy:  report.Accuracy(),
				Precision: report.Precision(),
				Recall:    report.Recall(),
				F1:        report.F1(),
			})
		}

		_, err = fmt.Fprintln(cl.Stdout(), report.String())
		return err
	}
}

// parsePredictions reads an invocation response: CSV without header,
// one prediction in the first field of each line.
func parsePredictions(payload string) ([]string, error) {
	cr := csv.NewReader(strings.NewReader(payload))

	predictions := []string{}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) == 0 {
			continue
		}
		predictions = append(predictions, rec[0])
	}
	return predictions, nil
}
