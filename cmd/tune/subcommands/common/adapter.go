package common

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/tunefab/tunefab/cmd/tune/config/profiles"
	"github.com/tunefab/tunefab/cmd/tune/env"
	trest "github.com/tunefab/tunefab/cmd/tune/rest"
	"github.com/youta-t/flarc"
)

type TuneTaskWithCommonFlag[T any] func(
	ctx context.Context,
	logger *log.Logger,
	commonFlag CommonFlags,
	cl flarc.Commandline[T],
	params []any,
) error

func NewTaskWithCommonFlag[T any](task TuneTaskWithCommonFlag[T]) flarc.Task[T] {
	return func(ctx context.Context, cl flarc.Commandline[T], pos []any) error {
		var commonFlag CommonFlags
		found := false
		newpos := make([]any, 0, len(pos))
		for _, p := range pos {
			switch v := p.(type) {
			case CommonFlags:
				found = true
				commonFlag = v
			default:
				newpos = append(newpos, p)
			}
		}
		if !found {
			return errors.New("programming error: common flags not found")
		}

		logger := log.New(cl.Stderr(), "", log.LstdFlags)
		logger.SetPrefix(fmt.Sprintf("[%s] ", cl.Fullname()))

		return task(
			ctx,
			logger,
			commonFlag,
			cl,
			newpos,
		)
	}
}

type Task[T any] func(
	ctx context.Context,
	logger *log.Logger,
	tuneEnv env.TuneEnv,
	client trest.HubClient,
	cl flarc.Commandline[T],
	params []any,
) error

func NewTask[T any](task Task[T]) flarc.Task[T] {

	return NewTaskWithCommonFlag(func(
		ctx context.Context,
		logger *log.Logger,
		commonFlag CommonFlags,
		cl flarc.Commandline[T],
		params []any,
	) error {
		profile, err := profiles.LoadProfileStore(commonFlag.ProfileStore)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf(
					"%w: tuneprofile store (%s) is not found. Please try `tune init` first. Ask your hub admin to get tuneprofile",
					err, commonFlag.ProfileStore,
				)
			}
			return fmt.Errorf(
				"%w: failed to load tuneprofile store (%s)",
				err, commonFlag.ProfileStore,
			)
		}
		prof, ok := profile[commonFlag.Profile]
		if !ok {
			return fmt.Errorf(
				"profile '%s' not found in the profile store (%s)",
				commonFlag.Profile, commonFlag.ProfileStore,
			)
		}

		if exp, ok := prof.TokenExpiresAt(); ok && exp.Before(time.Now()) {
			logger.Printf(
				"token for profile '%s' has expired at %s. The hub may reject requests.",
				commonFlag.Profile, exp,
			)
		}

		e, err := env.LoadTuneEnv(commonFlag.Env)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("%w: failed to load tuneenv", err)
			}
		}

		client, err := trest.NewClient(prof)
		if err != nil {
			return fmt.Errorf(
				"%w: failed to create hub client. Your tuneprofile (%s in %s) can be broken.\n\nRemove it and try `tune init` again. Ask your hub admin to get tuneprofile",
				err, commonFlag.Profile, commonFlag.ProfileStore,
			)
		}
		return task(ctx, logger, *e, client, cl, params)
	})
}
