package find

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/tunefab/tunefab/cmd/tune/env"
	trst "github.com/tunefab/tunefab/cmd/tune/rest"
	"github.com/tunefab/tunefab/cmd/tune/subcommands/common"
	apijobs "github.com/tunefab/tunefab/pkg/api/types/jobs"
	kargs "github.com/tunefab/tunefab/pkg/utils/args"
	"github.com/youta-t/flarc"
)

type Flags struct {
	Name     *kargs.Argslice             `flag:"name" alias:"n" help:"Find Jobs with this name. Repeatable." metavar:"NAME"`
	Status   *kargs.Argslice             `flag:"status" alias:"s" help:"Find Jobs in this status. Repeatable." metavar:"queued|running|stopping|succeeded|failed|stopped"`
	Since    *kargs.OptionalLooseRFC3339 `flag:"since" help:"Find Jobs only created at this time or later." metavar:"YYYY-mm-dd[THH[:MM[:SS]]][+TZ]"`
	Duration *kargs.OptionalDuration     `flag:"duration" help:"Find Jobs only created in '--duration' from '--since'." metavar:"1h30m"`
}

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Find Jobs that satisfy all specified conditions.",
		Flags{
			Name:     &kargs.Argslice{},
			Status:   &kargs.Argslice{},
			Since:    &kargs.OptionalLooseRFC3339{},
			Duration: &kargs.OptionalDuration{},
		},
		flarc.Args{},
		common.NewTask(Task()),
		flarc.WithDescription(`
Find Jobs that satisfy all specified conditions.
If no condition is specified, all Jobs are displayed.

When the same flag is given multiple times, Jobs satisfying any of the
values are found.

Example:

	{{ .Command }} --status running --status queued
	{{ .Command }} --name churn-tuning --since 2024-04-01 --duration 24h
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

		for _, s := range *flags.Status {
			if !apijobs.Status(s).Known() {
				return fmt.Errorf("%w: unknown status: %s", flarc.ErrUsage, s)
			}
		}

		since := flags.Since.Time()
		duration := flags.Duration.Duration()
		if duration != nil && since == nil {
			return fmt.Errorf("%w: --duration should be used with --since", flarc.ErrUsage)
		}

		found, err := client.FindJob(ctx, trst.FindJobParameter{
			Name:     *flags.Name,
			Status:   *flags.Status,
			Since:    since,
			Duration: duration,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		return enc.Encode(found)
	}
}
