package deploy

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/tunefab/tunefab/cmd/tune/env"
	trst "github.com/tunefab/tunefab/cmd/tune/rest"
	"github.com/tunefab/tunefab/cmd/tune/subcommands/common"
	apiep "github.com/tunefab/tunefab/pkg/api/types/endpoints"
	"github.com/tunefab/tunefab/pkg/loop"
	kargs "github.com/tunefab/tunefab/pkg/utils/args"
	"github.com/youta-t/flarc"
)

type Flags struct {
	Model         string                  `flag:"model" alias:"m" help:"name of the Model to be served" metavar:"MODEL"`
	Config        string                  `flag:"config" alias:"c" help:"name of the new Endpoint Config. Default: <name>-config" metavar:"CONFIG"`
	InstanceType  string                  `flag:"instance-type" help:"serving instance type. Default: instanceType of tuneenv, or standard.m" metavar:"TYPE"`
	InstanceCount int                     `flag:"instance-count" help:"how many serving instances. Default: instanceCount of tuneenv, or 1" metavar:"N"`
	Wait          bool                    `flag:"wait" alias:"w" help:"block until the Endpoint is in-service"`
	Interval      *kargs.OptionalDuration `flag:"interval" help:"polling interval for --wait. Default: 10s" metavar:"10s"`
	Timeout       *kargs.OptionalDuration `flag:"timeout" help:"give up --wait after this duration. Default: no limit" metavar:"15m"`
}

const ARG_ENDPOINT_NAME = "ENDPOINT_NAME"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Deploy an inference Endpoint serving a Model.",
		Flags{
			Interval: &kargs.OptionalDuration{},
			Timeout:  &kargs.OptionalDuration{},
		},
		flarc.Args{
			{
				Name: ARG_ENDPOINT_NAME, Required: true,
				Help: "name of the new Endpoint, unique in the hub",
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
Deploy an inference Endpoint.

This creates an Endpoint Config binding the Model to serving resources,
then an Endpoint from that Config. The Endpoint starts "creating" and
turns "in-service" when it is ready to answer invocations.

Example:

	{{ .Command }} --model churn-predictor --wait churn-endpoint
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

		if flags.Model == "" {
			return fmt.Errorf("%w: --model is required", flarc.ErrUsage)
		}

		configName := flags.Config
		if configName == "" {
			configName = endpointName + "-config"
		}

		instanceType := flags.InstanceType
		if instanceType == "" {
			instanceType = tuneEnv.InstanceType
		}
		if instanceType == "" {
			instanceType = "standard.m"
		}

		instanceCount := flags.InstanceCount
		if instanceCount == 0 {
			instanceCount = tuneEnv.InstanceCount
		}
		if instanceCount == 0 {
			instanceCount = 1
		}
		if instanceCount < 0 {
			return fmt.Errorf("%w: --instance-count should be positive", flarc.ErrUsage)
		}

		config, err := client.CreateEndpointConfig(ctx, apiep.ConfigSpec{
			Name:          configName,
			Model:         flags.Model,
			InstanceType:  instanceType,
			InstanceCount: instanceCount,
		})
		if err != nil {
			return err
		}
		logger.Printf("created endpoint config: %s (model: %s)", config.Name, config.Model)

		endpoint, err := client.CreateEndpoint(ctx, apiep.Spec{
			Name:   endpointName,
			Config: config.Name,
		})
		if err != nil {
			return err
		}
		logger.Printf("created endpoint: %s (state: %s)", endpoint.Name, endpoint.State)

		if flags.Wait {
			endpoint, err = waitInService(ctx, logger, client, endpointName, flags)
			if err != nil {
				return err
			}
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(endpoint); err != nil {
			return err
		}

		switch endpoint.State {
		case apiep.Failed:
			return fmt.Errorf(
				"endpoint %s has failed: %s", endpointName, endpoint.FailureReason,
			)
		case apiep.Deleting:
			return fmt.Errorf("endpoint %s is being deleted", endpointName)
		}
		return nil
	}
}

func waitInService(
	ctx context.Context,
	logger *log.Logger,
	client trst.HubClient,
	endpointName string,
	flags Flags,
) (apiep.Detail, error) {
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
		endpoint apiep.Detail
		seen     apiep.State
	}

	last, err := loop.Start(
		ctx, state{},
		func(ctx context.Context, s state) (state, loop.Next) {
			endpoint, err := client.GetEndpoint(ctx, endpointName)
			if err != nil {
				return s, loop.Break(err)
			}

			if endpoint.State != s.seen {
				logger.Printf("%s: %s", endpoint.Name, endpoint.State)
			}
			s = state{endpoint: endpoint, seen: endpoint.State}

			switch endpoint.State {
			case apiep.InService, apiep.Failed, apiep.Deleting:
				return s, loop.Break(nil)
			}
			return s, loop.Continue(interval)
		},
	)
	if err != nil {
		return last.endpoint, fmt.Errorf("%w: Endpoint:%s", err, endpointName)
	}
	return last.endpoint, nil
}
