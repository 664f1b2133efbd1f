package env

import (
	"os"

	"gopkg.in/yaml.v3"
)

// TuneEnv holds per-project defaults, loaded from a "tuneenv" file.
//
// Commands use these values when the corresponding flags are not given.
type TuneEnv struct {
	// Bucket is the default bucket for datasets and artifacts.
	Bucket string `yaml:"bucket,omitempty"`

	// TargetColumn is the default label column of the project dataset.
	TargetColumn string `yaml:"targetColumn,omitempty"`

	// Objective is the default tuning objective metric.
	Objective string `yaml:"objective,omitempty"`

	// MaxCandidates limits how many candidates a tuning job tries.
	MaxCandidates int `yaml:"maxCandidates,omitempty"`

	// InstanceType is the default instance type for serving endpoints.
	InstanceType string `yaml:"instanceType,omitempty"`

	// InstanceCount is the default instance count for serving endpoints.
	InstanceCount int `yaml:"instanceCount,omitempty"`
}

// LoadTuneEnv loads a TuneEnv from filepath.
//
// When the file is missing, it returns an empty TuneEnv without error.
func LoadTuneEnv(filepath string) (*TuneEnv, error) {

	env := TuneEnv{}

	content, err := os.ReadFile(filepath)
	if err != nil {
		return &env, nil
	}

	err = yaml.Unmarshal(content, &env)
	if err != nil {
		return nil, err
	}

	return &env, nil
}
