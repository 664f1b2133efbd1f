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

const ARG_ENDPOINT_NAME = "ENDPOINT_NAME"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Show an Endpoint.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_ENDPOINT_NAME, Required: true,
				Help: "name of the Endpoint to be shown",
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
Show the current state of an Endpoint as JSON.
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
		endpointName := cl.Args()[ARG_ENDPOINT_NAME][0]

		endpoint, err := client.GetEndpoint(ctx, endpointName)
		if err != nil {
			return fmt.Errorf("%w: Endpoint:%s", err, endpointName)
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		return enc.Encode(endpoint)
	}
}
