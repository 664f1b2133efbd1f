package submit

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/tunefab/tunefab/cmd/tune/env"
	trst "github.com/tunefab/tunefab/cmd/tune/rest"
	"github.com/tunefab/tunefab/cmd/tune/subcommands/common"
	"github.com/tunefab/tunefab/cmd/tune/subcommands/internal/hubloc"
	apijobs "github.com/tunefab/tunefab/pkg/api/types/jobs"
	"github.com/youta-t/flarc"
)

type Flags struct {
	Name          string `flag:"name" alias:"n" help:"name of the Job, unique in the hub. Default: generated" metavar:"NAME"`
	TargetColumn  string `flag:"target-column" alias:"t" help:"label column of the Dataset. Default: targetColumn of tuneenv" metavar:"COLUMN"`
	Output        string `flag:"output" alias:"o" help:"artifact prefix: KEY or hub://BUCKET/KEY. Default: artifacts/<name>" metavar:"KEY"`
	MaxCandidates int    `flag:"max-candidates" help:"how many candidate pipelines to try. Default: maxCandidates of tuneenv, or 3" metavar:"N"`
	Objective     string `flag:"objective" help:"metric to rank candidates by. Default: objective of tuneenv, or the hub's default" metavar:"METRIC"`
}

const ARG_INPUT = "TRAINING_DATASET"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Submit a tuning Job against an uploaded Dataset.",
		Flags{},
		flarc.Args{
			{
				Name: ARG_INPUT, Required: true,
				Help: "training Dataset: hub://BUCKET/KEY, or KEY in the tuneenv bucket",
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
Submit a tuning Job. The hub explores candidate pipelines against the
training Dataset and ranks them by the objective metric.

The Job starts "queued" and this command returns immediately.
Use "tune job wait" to block until it reaches a terminal status.

Example:

	{{ .Command }} --target-column "Churn?" datasets/train.csv
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

		input, err := hubloc.Resolve(cl.Args()[ARG_INPUT][0], tuneEnv.Bucket)
		if err != nil {
			return fmt.Errorf("%w: %s", flarc.ErrUsage, err)
		}

		name := flags.Name
		if name == "" {
			name = "tune-" + uuid.NewString()
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

		outputRef := flags.Output
		if outputRef == "" {
			outputRef = "artifacts/" + name
		}
		output, err := hubloc.Resolve(outputRef, tuneEnv.Bucket)
		if err != nil {
			return fmt.Errorf("%w: %s", flarc.ErrUsage, err)
		}

		maxCandidates := flags.MaxCandidates
		if maxCandidates == 0 {
			maxCandidates = tuneEnv.MaxCandidates
		}
		if maxCandidates == 0 {
			maxCandidates = 3
		}
		if maxCandidates < 0 {
			return fmt.Errorf("%w: --max-candidates should be positive", flarc.ErrUsage)
		}

		objective := flags.Objective
		if objective == "" {
			objective = tuneEnv.Objective
		}

		job, err := client.SubmitJob(ctx, apijobs.Spec{
			Name:          name,
			Input:         input,
			TargetColumn:  targetColumn,
			Output:        output,
			MaxCandidates: maxCandidates,
			Objective:     objective,
		})
		if err != nil {
			return err
		}

		logger.Printf("submitted: %s (status: %s)", job.JobId, job.Status)

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		return enc.Encode(job)
	}
}
