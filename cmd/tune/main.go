package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"

	"github.com/tunefab/tunefab/cmd/tune/subcommands/common"
	subdataset "github.com/tunefab/tunefab/cmd/tune/subcommands/dataset"
	subendpoint "github.com/tunefab/tunefab/cmd/tune/subcommands/endpoint"
	subevaluate "github.com/tunefab/tunefab/cmd/tune/subcommands/evaluate"
	subinit "github.com/tunefab/tunefab/cmd/tune/subcommands/init"
	subjob "github.com/tunefab/tunefab/cmd/tune/subcommands/job"
	"github.com/tunefab/tunefab/cmd/tune/subcommands/logger"
	submodel "github.com/tunefab/tunefab/cmd/tune/subcommands/model"
	subversion "github.com/tunefab/tunefab/cmd/tune/subcommands/version"
	"github.com/tunefab/tunefab/pkg/utils/try"
	"github.com/youta-t/flarc"
)

func main() {
	name := path.Base(os.Args[0])
	logger := logger.Default()
	logger.SetPrefix(fmt.Sprintf("[%s] ", name))

	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, os.Kill,
	)
	defer cancel()

	cf := try.To(common.Flags(".")).OrFatal(logger)
	init := try.To(subinit.New()).OrFatal(logger)
	dataset := try.To(subdataset.New()).OrFatal(logger)
	job := try.To(subjob.New()).OrFatal(logger)
	model := try.To(submodel.New()).OrFatal(logger)
	endpoint := try.To(subendpoint.New()).OrFatal(logger)
	evaluate := try.To(subevaluate.New()).OrFatal(logger)
	version := try.To(subversion.New()).OrFatal(logger)

	tune := try.To(
		flarc.NewCommandGroup(
			"Tunefab Commandline interface",
			cf,
			flarc.WithSubcommand("init", init),
			flarc.WithSubcommand("dataset", dataset),
			flarc.WithSubcommand("job", job),
			flarc.WithSubcommand("model", model),
			flarc.WithSubcommand("endpoint", endpoint),
			flarc.WithSubcommand("evaluate", evaluate),
			flarc.WithSubcommand("version", version),
		),
	).OrFatal(logger)

	os.Exit(flarc.Run(ctx, tune, flarc.WithHelp(true)))
}
