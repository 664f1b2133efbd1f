package env_test

import (
	"testing"

	tenv "github.com/tunefab/tunefab/cmd/tune/env"
)

func TestLoadTuneEnv(t *testing.T) {

	t.Run("read tuneenv. and it should return the project defaults.", func(t *testing.T) {

		result, err := tenv.LoadTuneEnv("./testdata/tuneenv_test.yaml")

		if err != nil {
			t.Errorf("failed to parse config.: %v", err)
		}

		expected := tenv.TuneEnv{
			Bucket:        "churn-experiments",
			TargetColumn:  "Churn?",
			Objective:     "f1",
			MaxCandidates: 5,
			InstanceType:  "standard.m",
			InstanceCount: 1,
		}

		if *result != expected {
			t.Errorf("unmatch. actual:%+v, expected:%+v", *result, expected)
		}
	})

	t.Run("when incorrect filepath given empty TuneEnv should be created.", func(t *testing.T) {
		env, err := tenv.LoadTuneEnv("./testdata/no-such-file.yaml")

		if err != nil {
			t.Errorf("unexpected error occured:%v", err)
		}

		if *env != (tenv.TuneEnv{}) {
			t.Errorf("unexpected data:%v", env)
		}
	})
}
