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

type Flags struct {
	Config string `flag:"config" alias:"c" help:"also delete this Endpoint Config, after the Endpoint" metavar:"CONFIG"`
	Model  string `flag:"model" alias:"m" help:"also unregister this Model, after the Endpoint Config" metavar:"MODEL"`
}

const ARG_ENDPOINT_NAME = "ENDPOINT_NAME"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Tear an Endpoint down.",
		Flags{},
		flarc.Args{
			{
				Name: ARG_ENDPOINT_NAME, Required: true,
				Help: "name of the Endpoint to be deleted",
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
Delete an Endpoint, so it stops billing serving instances.

Teardown goes outside-in: the Endpoint first, then its Config, then the
Model. Pass --config and --model to remove all three at once:

	{{ .Command }} --config churn-endpoint-config --model churn-predictor churn-endpoint
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
		endpointName := cl.Args()[ARG_ENDPOINT_NAME][0]
		flags := cl.Flags()

		if err := client.DeleteEndpoint(ctx, endpointName); err != nil {
			return fmt.Errorf("%w: Endpoint:%s", err, endpointName)
		}
		logger.Printf("deleted endpoint: %s", endpointName)

		if flags.Config != "" {
			if err := client.DeleteEndpointConfig(ctx, flags.Config); err != nil {
				return fmt.Errorf("%w: Endpoint Config:%s", err, flags.Config)
			}
			logger.Printf("deleted endpoint config: %s", flags.Config)
		}

		if flags.Model != "" {
			if err := client.DeleteModel(ctx, flags.Model); err != nil {
				return fmt.Errorf("%w: Model:%s", err, flags.Model)
			}
			logger.Printf("deleted model: %s", flags.Model)
		}

		return nil
	}
}
