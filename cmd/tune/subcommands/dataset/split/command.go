package split

import (
	"context"
	"fmt"
	"log"

	"github.com/tunefab/tunefab/cmd/tune/subcommands/common"
	"github.com/tunefab/tunefab/pkg/dataset"
	"github.com/youta-t/flarc"
)

type Flags struct {
	Ratio float64 `flag:"ratio" help:"fraction of rows going to TRAIN_FILE" metavar:"0.7"`
	Seed  int64   `flag:"seed" help:"seed of the shuffle. Same seed, same split." metavar:"42"`
}

const (
	ARG_SOURCE = "SOURCE_CSV"
	ARG_TRAIN  = "TRAIN_FILE"
	ARG_TEST   = "TEST_FILE"
)

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Shuffle and split a CSV Dataset into train and test files.",
		Flags{
			Ratio: 0.7,
			Seed:  42,
		},
		flarc.Args{
			{
				Name: ARG_SOURCE, Required: true,
				Help: "CSV file (with header) to be split",
			},
			{
				Name: ARG_TRAIN, Required: true,
				Help: "output CSV file receiving --ratio of the rows",
			},
			{
				Name: ARG_TEST, Required: true,
				Help: "output CSV file receiving the rest of the rows",
			},
		},
		common.NewTaskWithCommonFlag(Task()),
		flarc.WithDescription(`
Shuffle the rows of SOURCE_CSV and write them out into TRAIN_FILE and TEST_FILE.

Every row of SOURCE_CSV lands in exactly one of the outputs, and both outputs
keep the header of SOURCE_CSV. The shuffle is deterministic for a given --seed.

Example:

	{{ .Command }} --ratio 0.7 churn.csv train.csv test.csv
`),
	)
}

func Task() common.TuneTaskWithCommonFlag[Flags] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		cf common.CommonFlags,
		cl flarc.Commandline[Flags],
		params []any,
	) error {
		source := cl.Args()[ARG_SOURCE][0]
		trainOut := cl.Args()[ARG_TRAIN][0]
		testOut := cl.Args()[ARG_TEST][0]
		flags := cl.Flags()

		table, err := dataset.LoadFile(source)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", source, err)
		}

		train, test, err := table.Split(flags.Ratio, flags.Seed)
		if err != nil {
			return fmt.Errorf("%w: %s", flarc.ErrUsage, err)
		}

		if err := train.SaveFile(trainOut); err != nil {
			return fmt.Errorf("failed to write %s: %w", trainOut, err)
		}
		if err := test.SaveFile(testOut); err != nil {
			return fmt.Errorf("failed to write %s: %w", testOut, err)
		}

		logger.Printf(
			"%s (%d rows) -> %s (%d rows) + %s (%d rows)",
			source, len(table.Rows),
			trainOut, len(train.Rows),
			testOut, len(test.Rows),
		)
		return nil
	}
}
