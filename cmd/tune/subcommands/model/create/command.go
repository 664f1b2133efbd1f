package create

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	gcrname "github.com/google/go-containerregistry/pkg/name"
	"github.com/tunefab/tunefab/cmd/tune/env"
	trst "github.com/tunefab/tunefab/cmd/tune/rest"
	"github.com/tunefab/tunefab/cmd/tune/subcommands/common"
	"github.com/tunefab/tunefab/cmd/tune/subcommands/internal/hubloc"
	apijobs "github.com/tunefab/tunefab/pkg/api/types/jobs"
	apimodels "github.com/tunefab/tunefab/pkg/api/types/models"
	kargs "github.com/tunefab/tunefab/pkg/utils/args"
	"github.com/youta-t/flarc"
)

type Flags struct {
	FromJob  string          `flag:"from-job" alias:"j" help:"take image and artifact from the best candidate of this Job" metavar:"JOB_ID"`
	Image    string          `flag:"image" alias:"i" help:"serving container image. Overrides --from-job" metavar:"IMAGE:TAG"`
	Artifact string          `flag:"artifact" alias:"a" help:"trained model artifact: KEY or hub://BUCKET/KEY. Overrides --from-job" metavar:"KEY"`
	Env      *kargs.Argslice `flag:"env" alias:"e" help:"environment variable for the serving container. Repeatable." metavar:"KEY=VALUE"`
}

const ARG_MODEL_NAME = "MODEL_NAME"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Register a Model from a trained candidate.",
		Flags{
			Env: &kargs.Argslice{},
		},
		flarc.Args{
			{
				Name: ARG_MODEL_NAME, Required: true,
				Help: "name of the new Model, unique in the hub",
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
Register a Model: a serving container image paired with a trained model
artifact. Endpoints are deployed from Models.

Usually a Model is made from the best candidate of a succeeded Job:

	{{ .Command }} --from-job job-1234 churn-predictor

To register a hand-picked candidate, pass the image and the artifact
found with "tune job candidates" explicitly:

	{{ .Command }} --image automl-serving:1.2 --artifact artifacts/job-1234/cand-3/model.tar.gz churn-predictor
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
		modelName := cl.Args()[ARG_MODEL_NAME][0]
		flags := cl.Flags()

		container := apimodels.Container{}

		if flags.FromJob != "" {
			job, err := client.GetJob(ctx, flags.FromJob)
			if err != nil {
				return fmt.Errorf("%w: Job Id:%s", err, flags.FromJob)
			}
			if job.Status != apijobs.Succeeded {
				return fmt.Errorf(
					"job %s is %s, not %s", flags.FromJob, job.Status, apijobs.Succeeded,
				)
			}
			if job.BestCandidate == nil {
				return fmt.Errorf("job %s has no best candidate", flags.FromJob)
			}
			container.Image = job.BestCandidate.Image
			container.ModelArtifact = job.BestCandidate.ModelArtifact
			logger.Printf(
				"using candidate %s of job %s (%s: %f)",
				job.BestCandidate.Name, flags.FromJob,
				job.BestCandidate.Objective.Name, job.BestCandidate.Objective.Value,
			)
		}

		if flags.Image != "" {
			container.Image = flags.Image
		}
		if flags.Artifact != "" {
			artifact, err := hubloc.Resolve(flags.Artifact, tuneEnv.Bucket)
			if err != nil {
				return fmt.Errorf("%w: %s", flarc.ErrUsage, err)
			}
			container.ModelArtifact = artifact
		}

		if container.Image == "" || container.ModelArtifact.Key == "" {
			return fmt.Errorf(
				"%w: no source. Pass --from-job, or both --image and --artifact",
				flarc.ErrUsage,
			)
		}

		if _, err := gcrname.NewTag(container.Image, gcrname.WithDefaultRegistry("")); err != nil {
			return fmt.Errorf("%w: bad image '%s': %s", flarc.ErrUsage, container.Image, err)
		}

		if 0 < len(*flags.Env) {
			container.Environment = map[string]string{}
			for _, kv := range *flags.Env {
				k, v, ok := strings.Cut(kv, "=")
				if !ok || k == "" {
					return fmt.Errorf("%w: --env should be KEY=VALUE: %s", flarc.ErrUsage, kv)
				}
				container.Environment[k] = v
			}
		}

		model, err := client.CreateModel(ctx, apimodels.Spec{
			Name:       modelName,
			Containers: []apimodels.Container{container},
		})
		if err != nil {
			return err
		}

		logger.Printf("created: %s", model.Name)

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		return enc.Encode(model)
	}
}
