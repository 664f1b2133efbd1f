package push

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/tunefab/tunefab/cmd/tune/env"
	trst "github.com/tunefab/tunefab/cmd/tune/rest"
	"github.com/tunefab/tunefab/cmd/tune/subcommands/common"
	"github.com/tunefab/tunefab/cmd/tune/subcommands/internal/hubloc"
	"github.com/youta-t/flarc"

	pb "github.com/cheggaaa/pb/v3"
)

type Flags struct {
	Dest string `flag:"dest" alias:"d" help:"destination key or hub://BUCKET/KEY. Default: datasets/<filename>" metavar:"KEY"`
}

const ARG_SOURCE = "SOURCE_CSV"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Upload a Dataset file to the hub's object store.",
		Flags{},
		flarc.Args{
			{
				Name: ARG_SOURCE, Required: true,
				Help: "CSV file to be uploaded",
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
Upload SOURCE_CSV to the hub's object store.

The destination is --dest when given, or "datasets/<filename>" in the bucket
of your tuneenv otherwise. The hub verifies the md5 checksum sent along with
the content, so a truncated upload is never stored.

Example:

	{{ .Command }} train.csv
	{{ .Command }} --dest hub://my-bucket/datasets/train.csv train.csv
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
		source := cl.Args()[ARG_SOURCE][0]

		dest := cl.Flags().Dest
		if dest == "" {
			dest = "datasets/" + filepath.Base(source)
		}
		loc, err := hubloc.Resolve(dest, tuneEnv.Bucket)
		if err != nil {
			return fmt.Errorf("%w: %s", flarc.ErrUsage, err)
		}

		stat, err := os.Stat(source)
		if err != nil {
			return err
		}
		f, err := os.Open(source)
		if err != nil {
			return err
		}
		defer f.Close()

		prog := client.PushObject(ctx, loc, f, stat.Size())

		bar := pb.New64(prog.EstimatedTotalSize())
		bar.Set(pb.Bytes, true)
		bar.SetWriter(cl.Stderr())
		if err := bar.Err(); err != nil {
			return err
		}

		bar.Start()
		logger.Printf("sending... %s -> %s\n", source, loc)
		for {
			select {
			case <-time.NewTimer(1 * time.Second).C:
				bar.SetCurrent(prog.ProgressedSize())
				continue
			case <-prog.Sent():
				bar.SetCurrent(prog.ProgressedSize())
			}
			break
		}
		bar.Finish()
		select {
		case <-time.NewTimer(1 * time.Second).C:
			logger.Println("waiting server...")
		case <-prog.Done():
		}
		<-prog.Done()
		if err := prog.Error(); err != nil {
			return err
		}

		stored, ok := prog.Result()
		if !ok {
			return fmt.Errorf("failed to upload %s", source)
		}

		logger.Printf("[OK] done: %s -> %s", source, stored.Location)

		buf, err := json.MarshalIndent(stored, "", "    ")
		if err != nil {
			return err
		}
		cl.Stdout().Write(buf)
		return nil
	}
}
