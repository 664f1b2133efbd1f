package wait

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/tunefab/tunefab/cmd/tune/env"
	trst "github.com/tunefab/tunefab/cmd/tune/rest"
	"github.com/tunefab/tunefab/cmd/tune/subcommands/common"
	apijobs "github.com/tunefab/tunefab/pkg/api/types/jobs"
	"github.com/tunefab/tunefab/pkg/loop"
	kargs "github.com/tunefab/tunefab/pkg/utils/args"
	"github.com/youta-t/flarc"
)

type Flags struct {
	Interval *kargs.OptionalDuration `flag:"interval" help:"polling interval. Default: 10s" metavar:"10s"`
	Timeout  *kargs.OptionalDuration `flag:"timeout" help:"give up after this duration. Default: no limit" metavar:"1h"`
}

const ARG_JOBID = "JOB_ID"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Block until a Job reaches a terminal status.",
		Flags{
			Interval: &kargs.OptionalDuration{},
			Timeout:  &kargs.OptionalDuration{},
		},
		flarc.Args{
			{
				Name: ARG_JOBID, Required: true,
				Help: "Id of the Job to be waited for",
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
Poll the Job until its status is terminal: succeeded, failed or stopped.

The last seen Job information is printed on exit. This command fails
when the Job ends as failed or stopped, so it can guard the next step
of a script.

Example:

	{{ .Command }} --interval 30s job-1234
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
		jobId := cl.Args()[ARG_JOBID][0]
		flags := cl.Flags()

		interval := 10 * time.Second
		if d := flags.Interval.Duration(); d != nil {
			interval = *d
		}
		if timeout := flags.Timeout.Duration(); timeout != nil {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, *timeout)
			defer cancel()
		}

		type state struct {
			job  apijobs.Detail
			seen apijobs.Status
		}

		last, err := loop.Start(
			ctx, state{},
			func(ctx context.Context, s state) (state, loop.Next) {
				job, err := client.GetJob(ctx, jobId)
				if err != nil {
					return s, loop.Break(err)
				}

				if job.Status != s.seen {
					logger.Printf("%s: %s", job.JobId, job.Status)
				}
				s = state{job: job, seen: job.Status}

				if job.Status.IsTerminal() {
					return s, loop.Break(nil)
				}
				return s, loop.Continue(interval)
			},
		)
		if err != nil {
			return fmt.Errorf("%w: Job Id:%s", err, jobId)
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(last.job); err != nil {
			return err
		}

		switch last.job.Status {
		case apijobs.Failed:
			return fmt.Errorf("job %s has failed: %s", jobId, last.job.FailureReason)
		case apijobs.Stopped:
			return fmt.Errorf("job %s has been stopped", jobId)
		}
		return nil
	}
}
