package endpoint

import (
	endpoint_deploy "github.com/tunefab/tunefab/cmd/tune/subcommands/endpoint/deploy"
	endpoint_rm "github.com/tunefab/tunefab/cmd/tune/subcommands/endpoint/rm"
	endpoint_show "github.com/tunefab/tunefab/cmd/tune/subcommands/endpoint/show"
	"github.com/youta-t/flarc"
)

func New() (flarc.Command, error) {

	deploy, err := endpoint_deploy.New()
	if err != nil {
		return nil, err
	}
	show, err := endpoint_show.New()
	if err != nil {
		return nil, err
	}
	rm, err := endpoint_rm.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Deploy and manage inference Endpoints.",
		struct{}{},
		flarc.WithSubcommand("deploy", deploy),
		flarc.WithSubcommand("show", show),
		flarc.WithSubcommand("rm", rm),
	)
}
