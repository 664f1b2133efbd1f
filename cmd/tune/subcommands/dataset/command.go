package dataset

import (
	dataset_pull "github.com/tunefab/tunefab/cmd/tune/subcommands/dataset/pull"
	dataset_push "github.com/tunefab/tunefab/cmd/tune/subcommands/dataset/push"
	dataset_split "github.com/tunefab/tunefab/cmd/tune/subcommands/dataset/split"
	"github.com/youta-t/flarc"
)

func New() (flarc.Command, error) {

	split, err := dataset_split.New()
	if err != nil {
		return nil, err
	}
	push, err := dataset_push.New()
	if err != nil {
		return nil, err
	}
	pull, err := dataset_pull.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Prepare and move tabular Datasets.",
		struct{}{},
		flarc.WithSubcommand("split", split),
		flarc.WithSubcommand("push", push),
		flarc.WithSubcommand("pull", pull),
	)
}
