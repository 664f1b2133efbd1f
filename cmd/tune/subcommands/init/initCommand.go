package init

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/youta-t/flarc"
	"gopkg.in/yaml.v3"

	prof "github.com/tunefab/tunefab/cmd/tune/config/profiles"
	"github.com/tunefab/tunefab/cmd/tune/subcommands/common"
)

const ARG_TUNE_PROFILE_FILE = "TUNE_PROFILE_FILE"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"initialize this directory as a tunefab-powered project.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_TUNE_PROFILE_FILE, Required: true,
				Help: "filepath to tuneprofile file, which you received from your hub admin.",
			},
		},
		common.NewTaskWithCommonFlag(Task()),
		flarc.WithDescription(`
Register a new tuneprofile into your profile store.

"tuneprofile" is a file which contains information about a hub.
"{{ .Command }}" registers the given tuneprofile into your profile store.

The name of the profile is given by "--profile" ( default: current filepath ).
`),
	)
}

func Task() common.TuneTaskWithCommonFlag[struct{}] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		cf common.CommonFlags,
		cl flarc.Commandline[struct{}],
		params []any,
	) error {
		profFile := cl.Args()[ARG_TUNE_PROFILE_FILE][0]

		profStore, err := prof.LoadProfileStore(cf.ProfileStore)
		if errors.Is(err, prof.ErrProfileStoreNotFound) {
			// ok.
			profStore = prof.ProfileStore{}
		} else if err != nil {
			return fmt.Errorf(
				"failed to load profile store (%s): %w", cf.ProfileStore, err,
			)
		}

		profName := cf.Profile
		newProf := new(prof.TuneProfile)
		{
			content, err := os.ReadFile(profFile)
			if err != nil {
				return fmt.Errorf("failed to read profile file (%s): %w", profFile, err)
			}

			if err := yaml.Unmarshal(content, newProf); err != nil {
				return fmt.Errorf("failed to parse profile file (%s): %w", profFile, err)
			}
		}
		if err := newProf.Verify(); err != nil {
			return fmt.Errorf("%s: %w", profFile, err)
		}

		profStore[profName] = newProf
		if err := profStore.Save(cf.ProfileStore); err != nil {
			return fmt.Errorf(
				"failed to save profile store (%s): %w", cf.ProfileStore, err,
			)
		}
		logger.Printf("profile %s is saved to %s", profName, cf.ProfileStore)

		{
			f, err := os.OpenFile(".tuneprofile", os.O_RDWR|os.O_CREATE|os.O_TRUNC, os.FileMode(0600))
			if err != nil {
				return fmt.Errorf("failed to open .tuneprofile: %w", err)
			}
			defer f.Close()
			f.Write([]byte(profName))
		}

		return nil
	}
}
