package models

import (
	"github.com/tunefab/tunefab/pkg/api/types/data"
	"github.com/tunefab/tunefab/pkg/api/types/misc/rfctime"
	"github.com/tunefab/tunefab/pkg/utils/cmp"
)

// Container is a serving container and the artifact it loads.
type Container struct {
	Image         string            `json:"image"`
	ModelArtifact data.Location     `json:"modelArtifact"`
	Environment   map[string]string `json:"environment,omitempty"`
}

func (c Container) Equal(o Container) bool {
	return c.Image == o.Image &&
		c.ModelArtifact.Equal(o.ModelArtifact) &&
		cmp.MapEq(c.Environment, o.Environment)
}

type Spec struct {
	// Name is unique in the hub.
	Name string `json:"name"`

	// Containers are applied in order as an inference pipeline.
	Containers []Container `json:"containers"`
}

func (s Spec) Equal(o Spec) bool {
	return s.Name == o.Name &&
		cmp.SliceEqWith(s.Containers, o.Containers, Container.Equal)
}

type Detail struct {
	Spec
	CreatedAt rfctime.RFC3339 `json:"createdAt"`
}

func (d Detail) Equal(o Detail) bool {
	return d.Spec.Equal(o.Spec) && d.CreatedAt.Equal(o.CreatedAt)
}
