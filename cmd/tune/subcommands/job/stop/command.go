package stop

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
		"Stop a Job gently.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_JOBID, Required: true,
				Help: "Id of the Job to be stopped",
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
Ask the hub to stop a Job.

The Job turns "stopping" at once and "stopped" after the hub has torn
its workers down. Candidates already finished remain available.
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

		job, err := client.StopJob(ctx, jobId)
		if err != nil {
			return fmt.Errorf("%w: Job Id:%s", err, jobId)
		}

		logger.Printf("stopping: %s (status: %s)", job.JobId, job.Status)

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		return enc.Encode(job)
	}
}
