package runbook

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/viant/gator/model/types"
	"github.com/viant/gator/service/tool"
)

const name = "generate_runbook"

// Service generates an operational runbook for a topic.
type Service struct{}

type Input struct {
	Topic string `json:"topic"`
}

func (i *Input) Init() {
	if i.Topic == "" {
		i.Topic = "general"
	}
}

// Output represents the generation outcome.
type Output struct {
	tool.Output
}

// New creates a new runbook service
func New() *Service {
	return &Service{}
}

// Name returns the service name
func (s *Service) Name() string {
	return name
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        tool.RunMethod,
			Description: "Generates a runbook for the given topic.",
			Input:       reflect.TypeOf(&Input{}),
			Output:      reflect.TypeOf(&Output{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case tool.RunMethod:
		return s.run, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

func (s *Service) run(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*Input)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*Output)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	input.Init()
	output.Done(fmt.Sprintf("Generated runbook for %v.", input.Topic))
	return nil
}
