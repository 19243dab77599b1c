package api

import (
	"github.com/samcharles93/prngcl/internal/device"
	"github.com/samcharles93/prngcl/internal/prng"
	"github.com/samcharles93/prngcl/internal/quality"
)

type ResponseError struct {
	Message string `json:"message,omitempty"`
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}

type GeneratorInfo struct {
	Object           string   `json:"object"`
	Name             string   `json:"name"`
	Bitness          int      `json:"bitness"`
	Output           string   `json:"output"`
	MinUint          uint32   `json:"min_uint"`
	MaxUint          uint32   `json:"max_uint"`
	MinFP            float64  `json:"min_fp"`
	MaxFP            float64  `json:"max_fp"`
	Divisor          float64  `json:"divisor"`
	K                float64  `json:"k"`
	StateSize        int      `json:"state_size"`
	Parameters       []string `json:"parameters"`
	Source           string   `json:"source"`
	InitKernel       string   `json:"init_kernel,omitempty"`
	ProductionKernel string   `json:"production_kernel"`
}

// NewGeneratorInfo is the wire form of d.
func NewGeneratorInfo(d *prng.Descriptor) GeneratorInfo {
	params := d.Params
	if params == nil {
		params = []string{}
	}
	return GeneratorInfo{
		Object:           "generator",
		Name:             d.Name,
		Bitness:          d.Bitness,
		Output:           d.Output.String(),
		MinUint:          d.MinUint,
		MaxUint:          d.MaxUint,
		MinFP:            d.MinFP,
		MaxFP:            d.MaxFP,
		Divisor:          d.Divisor,
		K:                d.K,
		StateSize:        d.StateSize,
		Parameters:       params,
		Source:           d.Source,
		InitKernel:       d.InitKernel,
		ProductionKernel: d.ProductionKernel,
	}
}

type ListResponse struct {
	Object string          `json:"object"`
	Data   []GeneratorInfo `json:"data"`
}

// SeedRequest is shared by every request that instantiates an engine.
type SeedRequest struct {
	Seed       uint32   `json:"seed"`
	Parameters []string `json:"parameters,omitempty"`
}

type SampleRequest struct {
	SeedRequest
	Count int `json:"count"`
	// Raw returns Uint32 draws instead of Float64 draws.
	Raw bool `json:"raw,omitempty"`
}

type SampleResponse struct {
	Object    string    `json:"object"`
	Generator string    `json:"generator"`
	Seed      uint32    `json:"seed"`
	Uints     []uint32  `json:"uints,omitempty"`
	Values    []float64 `json:"values,omitempty"`
}

type OptionsRequest struct {
	SeedRequest
	Instances int    `json:"instances"`
	Samples   int    `json:"samples"`
	Precision string `json:"precision,omitempty"`
}

type OptionsResponse struct {
	Object    string            `json:"object"`
	Generator string            `json:"generator"`
	Options   string            `json:"options"`
	Defines   map[string]string `json:"defines"`
}

type RunRequest struct {
	OptionsRequest
	Bins          int  `json:"bins,omitempty"`
	IncludeValues bool `json:"include_values,omitempty"`
}

type BufferInfo struct {
	Handle   int    `json:"handle"`
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Count    int    `json:"count"`
	ElemSize int    `json:"elem_size"`
}

// BufferInfos converts an accelerator buffer table to its wire form.
func BufferInfos(in []device.BufferInfo) []BufferInfo {
	out := make([]BufferInfo, 0, len(in))
	for _, b := range in {
		out = append(out, BufferInfo{
			Handle:   int(b.Handle),
			Name:     b.Name,
			Kind:     b.Kind.String(),
			Count:    b.Count,
			ElemSize: b.ElemSize,
		})
	}
	return out
}

type RunResponse struct {
	ID          string         `json:"id"`
	Object      string         `json:"object"`
	CreatedAt   int64          `json:"created_at"`
	Generator   string         `json:"generator"`
	Accelerator string         `json:"accelerator"`
	Instances   int            `json:"instances"`
	Samples     int            `json:"samples"`
	Precision   string         `json:"precision"`
	Options     string         `json:"options"`
	Buffers     []BufferInfo   `json:"buffers"`
	Report      quality.Report `json:"report"`
	DurationMS  float64        `json:"duration_ms"`
	Values      []float64      `json:"values,omitempty"`
}
