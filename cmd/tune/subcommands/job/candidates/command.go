package candidates

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/tunefab/tunefab/cmd/tune/env"
	trst "github.com/tunefab/tunefab/cmd/tune/rest"
	"github.com/tunefab/tunefab/cmd/tune/subcommands/common"
	"github.com/youta-t/flarc"
)

const ARG_JOBID = "JOB_ID"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"List the candidate pipelines a Job has tried, best first.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_JOBID, Required: true,
				Help: "Id of the Job whose candidates are listed",
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
List the candidate pipelines a Job has tried, ordered by the Job's
objective metric, best first.

Each candidate names its serving image and the location of its trained
model artifact. Pass these to "tune model create".
`),
	)
}

func Task() common.Task[struct{}] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		tuneEnv env.TuneEnv,
		client trst.HubClient,
		cl flarc.Commandline[struct{}],
		params []any,
	) error {
		jobId := cl.Args()[ARG_JOBID][0]

		candidates, err := client.GetCandidates(ctx, jobId)
		if err != nil {
			return fmt.Errorf("%w: Job Id:%s", err, jobId)
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		return enc.Encode(candidates)
	}
}
