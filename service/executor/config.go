package executor

import "github.com/viant/conduit/service/projector"

// ServiceCallConfig is the typed config of a service_call step. The
// serviceName/payload spellings are accepted as aliases of service/body.
type ServiceCallConfig struct {
	Service     string                 `json:"service" yaml:"service"`
	ServiceName string                 `json:"serviceName,omitempty" yaml:"serviceName,omitempty"`
	Version     string                 `json:"version,omitempty" yaml:"version,omitempty"`
	Method      string                 `json:"method,omitempty" yaml:"method,omitempty"`
	Path        string                 `json:"path,omitempty" yaml:"path,omitempty"`
	Headers     map[string]string      `json:"headers,omitempty" yaml:"headers,omitempty"`
	QueryParams map[string]string      `json:"queryParams,omitempty" yaml:"queryParams,omitempty"`
	Body        interface{}            `json:"body,omitempty" yaml:"body,omitempty"`
	Payload     interface{}            `json:"payload,omitempty" yaml:"payload,omitempty"`
	Projection  *projector.Projection  `json:"projection,omitempty" yaml:"projection,omitempty"`
	ClientID    string                 `json:"clientId,omitempty" yaml:"clientId,omitempty"`
	MaxRetries  int                    `json:"maxRetries,omitempty" yaml:"maxRetries,omitempty"`
	Extra       map[string]interface{} `json:"-" yaml:"-"`
}

// normalize folds the alias spellings into the canonical fields.
func (c *ServiceCallConfig) normalize() {
	if c.Service == "" {
		c.Service = c.ServiceName
	}
	if c.Body == nil {
		c.Body = c.Payload
	}
}

// ConditionConfig is the typed config of a condition step. Required turns a
// false result into a step failure so that onFailure edges can react to it.
type ConditionConfig struct {
	Expression string `json:"expression" yaml:"expression"`
	Required   bool   `json:"required,omitempty" yaml:"required,omitempty"`
}

// ParallelConfig declares the concurrently executed branches; each branch is
// a partial step override.
type ParallelConfig struct {
	Branches []*BranchConfig `json:"branches" yaml:"branches"`
}

// BranchConfig is one parallel branch.
type BranchConfig struct {
	ID     string                 `json:"id,omitempty" yaml:"id,omitempty"`
	Name   string                 `json:"name,omitempty" yaml:"name,omitempty"`
	Type   string                 `json:"type" yaml:"type"`
	Config map[string]interface{} `json:"config,omitempty" yaml:"config,omitempty"`
}

// DelayConfig is the typed config of a delay step.
type DelayConfig struct {
	Duration int `json:"duration" yaml:"duration"`
}

// TransformConfig is the typed config of a transform step.
type TransformConfig struct {
	Transformations []*Transformation `json:"transformations" yaml:"transformations"`
}

// Transformation is one declarative context operation: a field mapping or a
// top-level key filter.
type Transformation struct {
	Type    string     `json:"type" yaml:"type"`
	Mapping []*Mapping `json:"mapping,omitempty" yaml:"mapping,omitempty"`
	Fields  []string   `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Mapping renames or selects a single field.
type Mapping struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}
