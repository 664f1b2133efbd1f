package rm

import (
	"context"
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
		"Delete a Job record from the hub.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_JOBID, Required: true, Repeatable: true,
				Help: "Id of the Job to be deleted",
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
Delete Job records from the hub.

Only terminal Jobs (succeeded, failed or stopped) can be deleted.
Artifacts in the object store are not removed.
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
		for _, jobId := range cl.Args()[ARG_JOBID] {
			if err := client.DeleteJob(ctx, jobId); err != nil {
				return fmt.Errorf("%w: Job Id:%s", err, jobId)
			}
			logger.Printf("deleted: %s", jobId)
		}
		return nil
	}
}
