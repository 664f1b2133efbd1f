package show

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
		"Return the Job information for the specified Job Id.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_JOBID, Required: true,
				Help: "Id of the Job to be shown",
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
Return the Job information for the specified Job Id.

When the Job has succeeded, the output contains its best candidate.
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

		job, err := client.GetJob(ctx, jobId)
		if err != nil {
			return fmt.Errorf("%w: Job Id:%s", err, jobId)
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		return enc.Encode(job)
	}
}
