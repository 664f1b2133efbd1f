package endpoints

import (
	"github.com/tunefab/tunefab/pkg/api/types/misc/rfctime"
)

// State of an Endpoint. It is owned by the hub; clients only read it.
type State string

const (
	Creating  State = "creating"
	InService State = "in-service"
	Failed    State = "failed"
	Deleting  State = "deleting"
)

func (s State) Known() bool {
	switch s {
	case Creating, InService, Failed, Deleting:
		return true
	default:
		return false
	}
}

// ConfigSpec binds a Model to serving resources.
type ConfigSpec struct {
	// Name is unique in the hub.
	Name string `json:"name"`

	// Model is the name of the Model to be served.
	Model string `json:"model"`

	InstanceType  string `json:"instanceType"`
	InstanceCount int    `json:"instanceCount"`
}

func (s ConfigSpec) Equal(o ConfigSpec) bool {
	return s.Name == o.Name &&
		s.Model == o.Model &&
		s.InstanceType == o.InstanceType &&
		s.InstanceCount == o.InstanceCount
}

type ConfigDetail struct {
	ConfigSpec
	CreatedAt rfctime.RFC3339 `json:"createdAt"`
}

func (d ConfigDetail) Equal(o ConfigDetail) bool {
	return d.ConfigSpec.Equal(o.ConfigSpec) && d.CreatedAt.Equal(o.CreatedAt)
}

type Spec struct {
	// Name is unique in the hub.
	Name string `json:"name"`

	// Config is the name of the endpoint config to deploy.
	Config string `json:"config"`
}

func (s Spec) Equal(o Spec) bool {
	return s.Name == o.Name && s.Config == o.Config
}

type Detail struct {
	Spec
	State State `json:"state"`

	// FailureReason is set when State is Failed.
	FailureReason string `json:"failureReason,omitempty"`

	CreatedAt rfctime.RFC3339 `json:"createdAt"`
	UpdatedAt rfctime.RFC3339 `json:"updatedAt"`
}

func (d Detail) Equal(o Detail) bool {
	return d.Spec.Equal(o.Spec) &&
		d.State == o.State &&
		d.FailureReason == o.FailureReason &&
		d.CreatedAt.Equal(o.CreatedAt) &&
		d.UpdatedAt.Equal(o.UpdatedAt)
}
