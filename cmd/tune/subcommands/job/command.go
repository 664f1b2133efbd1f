package job

import (
	job_candidates "github.com/tunefab/tunefab/cmd/tune/subcommands/job/candidates"
	job_find "github.com/tunefab/tunefab/cmd/tune/subcommands/job/find"
	job_rm "github.com/tunefab/tunefab/cmd/tune/subcommands/job/rm"
	job_show "github.com/tunefab/tunefab/cmd/tune/subcommands/job/show"
	job_stop "github.com/tunefab/tunefab/cmd/tune/subcommands/job/stop"
	job_submit "github.com/tunefab/tunefab/cmd/tune/subcommands/job/submit"
	job_wait "github.com/tunefab/tunefab/cmd/tune/subcommands/job/wait"
	"github.com/youta-t/flarc"
)

func New() (flarc.Command, error) {

	submit, err := job_submit.New()
	if err != nil {
		return nil, err
	}
	show, err := job_show.New()
	if err != nil {
		return nil, err
	}
	find, err := job_find.New()
	if err != nil {
		return nil, err
	}
	candidates, err := job_candidates.New()
	if err != nil {
		return nil, err
	}
	stop, err := job_stop.New()
	if err != nil {
		return nil, err
	}
	wait, err := job_wait.New()
	if err != nil {
		return nil, err
	}
	rm, err := job_rm.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Manipulate tuning Jobs on the hub.",
		struct{}{},
		flarc.WithSubcommand("submit", submit),
		flarc.WithSubcommand("show", show),
		flarc.WithSubcommand("find", find),
		flarc.WithSubcommand("candidates", candidates),
		flarc.WithSubcommand("stop", stop),
		flarc.WithSubcommand("wait", wait),
		flarc.WithSubcommand("rm", rm),
	)
}
