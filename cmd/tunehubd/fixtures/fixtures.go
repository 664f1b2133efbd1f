package fixtures

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration written as a Go duration string in yaml.
type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	expr := new(string)
	if err := node.Decode(expr); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(*expr)
	if err != nil {
		return fmt.Errorf("bad duration %q: %w", *expr, err)
	}
	*d = Duration(parsed)
	return nil
}

// Timings drive the simulated lifecycles.
//
// A Job is queued for QueueLatency, runs for RunDuration and then
// terminates. A stopped Job takes StopLatency to settle. An Endpoint is
// creating for EndpointLatency before turning in-service.
type Timings struct {
	QueueLatency    Duration `yaml:"queueLatency"`
	RunDuration     Duration `yaml:"runDuration"`
	StopLatency     Duration `yaml:"stopLatency"`
	EndpointLatency Duration `yaml:"endpointLatency"`
}

// CandidateSeed is a canned candidate pipeline. Succeeded Jobs report
// their candidates from these seeds, in order, best first.
type CandidateSeed struct {
	Name      string  `yaml:"name"`
	Image     string  `yaml:"image"`
	Objective float64 `yaml:"objective"`
}

// Rule labels a row when the field at Column equals Equals.
type Rule struct {
	Column int    `yaml:"column"`
	Equals string `yaml:"equals"`
	Label  string `yaml:"label"`
}

// Predictor is the canned rule-based classifier behind invocations.
//
// The first matching rule wins; rows matching no rule get Default.
type Predictor struct {
	Default string `yaml:"default"`
	Rules   []Rule `yaml:"rules"`
}

type Config struct {
	Timings Timings `yaml:"timings"`

	// FailureMarker makes Jobs whose name contains it end as failed.
	// Empty disables the simulation.
	FailureMarker string `yaml:"failureMarker,omitempty"`

	Candidates []CandidateSeed `yaml:"candidates"`
	Predictor  Predictor       `yaml:"predictor"`
}

func Default() Config {
	return Config{
		Timings: Timings{
			QueueLatency:    Duration(1 * time.Second),
			RunDuration:     Duration(3 * time.Second),
			StopLatency:     Duration(1 * time.Second),
			EndpointLatency: Duration(2 * time.Second),
		},
		FailureMarker: "",
		Candidates: []CandidateSeed{
			{Name: "cand-01-xgb", Image: "tunefab/automl-serving:1.2", Objective: 0.92},
			{Name: "cand-02-linear", Image: "tunefab/automl-serving:1.2", Objective: 0.87},
			{Name: "cand-03-mlp", Image: "tunefab/automl-serving:1.1", Objective: 0.81},
		},
		Predictor: Predictor{
			Default: "False.",
		},
	}
}

// Load reads a Config from a yaml file. Fields left out of the file keep
// their Default() values. An empty path yields Default() as is.
func Load(path string) (Config, error) {
	conf := Default()
	if path == "" {
		return conf, nil
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(buf, &conf); err != nil {
		return Config{}, fmt.Errorf("bad fixtures file %s: %w", path, err)
	}
	return conf, nil
}
