package pull

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path"

	"github.com/tunefab/tunefab/cmd/tune/env"
	trst "github.com/tunefab/tunefab/cmd/tune/rest"
	"github.com/tunefab/tunefab/cmd/tune/subcommands/common"
	"github.com/tunefab/tunefab/cmd/tune/subcommands/internal/hubloc"
	"github.com/youta-t/flarc"

	pb "github.com/cheggaaa/pb/v3"
)

type Flags struct {
	Output string `flag:"output" alias:"o" help:"output file. \"-\" means stdout. Default: basename of the key" metavar:"FILE"`
}

const ARG_LOCATION = "LOCATION"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Download an object from the hub's object store.",
		Flags{},
		flarc.Args{
			{
				Name: ARG_LOCATION, Required: true,
				Help: "object to be downloaded: hub://BUCKET/KEY, or KEY in the tuneenv bucket",
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
Download an object and verify its checksum.

Example:

	{{ .Command }} datasets/train.csv
	{{ .Command }} -o - hub://my-bucket/artifacts/predictions.csv
`),
	)
}

// the object size is not known upfront, so only a byte counter is shown.
const noBar pb.ProgressBarTemplate = `{{with string . "prefix"}}{{.}} {{end}}{{counters . }} {{with string . "suffix"}} {{.}}{{end}}`

func Task() common.Task[Flags] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		tuneEnv env.TuneEnv,
		client trst.HubClient,
		cl flarc.Commandline[Flags],
		params []any,
	) error {
		loc, err := hubloc.Resolve(cl.Args()[ARG_LOCATION][0], tuneEnv.Bucket)
		if err != nil {
			return fmt.Errorf("%w: %s", flarc.ErrUsage, err)
		}

		output := cl.Flags().Output
		if output == "" {
			output = path.Base(loc.Key)
		}

		if output == "-" {
			return client.PullObject(ctx, loc, func(r io.Reader) error {
				_, err := io.Copy(cl.Stdout(), r)
				return err
			})
		}

		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()

		if err := client.PullObject(ctx, loc, func(r io.Reader) error {
			bar := noBar.New(-1)
			bar.Set(pb.Bytes, true)
			bar.SetWriter(cl.Stderr())
			bar.Set("prefix", fmt.Sprintf("downloading %s:", loc))
			bar.Start()

			w := bar.NewProxyWriter(f)
			defer w.Close()
			_, err := io.Copy(w, r)
			return err
		}); err != nil {
			return err
		}

		logger.Printf("[OK] done: %s -> %s", loc, output)
		return nil
	}
}
