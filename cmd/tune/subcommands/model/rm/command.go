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

const ARG_MODEL_NAME = "MODEL_NAME"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Unregister a Model from the hub.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_MODEL_NAME, Required: true, Repeatable: true,
				Help: "name of the Model to be unregistered",
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
Unregister Models from the hub.

A Model referenced by an Endpoint Config cannot be removed. Tear the
Endpoint and its Config down first.
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
		for _, name := range cl.Args()[ARG_MODEL_NAME] {
			if err := client.DeleteModel(ctx, name); err != nil {
				return fmt.Errorf("%w: Model:%s", err, name)
			}
			logger.Printf("deleted: %s", name)
		}
		return nil
	}
}
