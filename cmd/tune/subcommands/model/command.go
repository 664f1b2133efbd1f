package model

import (
	model_create "github.com/tunefab/tunefab/cmd/tune/subcommands/model/create"
	model_rm "github.com/tunefab/tunefab/cmd/tune/subcommands/model/rm"
	"github.com/youta-t/flarc"
)

func New() (flarc.Command, error) {

	create, err := model_create.New()
	if err != nil {
		return nil, err
	}
	rm, err := model_rm.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Register and manage Models in the hub.",
		struct{}{},
		flarc.WithSubcommand("create", create),
		flarc.WithSubcommand("rm", rm),
	)
}
