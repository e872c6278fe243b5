package ticket

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/viant/gator/model/types"
	"github.com/viant/gator/service/tool"
)

const name = "create_ticket"

// Service files a ticket in the issue tracker.
type Service struct{}

type Input struct {
	Summary string `json:"summary"`
}

func (i *Input) Init() {
	if i.Summary == "" {
		i.Summary = "No summary provided."
	}
}

// Output represents the ticket creation outcome.
type Output struct {
	tool.Output
}

// New creates a new ticket service
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
			Description: "Creates a ticket with the supplied summary.",
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
	output.Done(fmt.Sprintf("Created ticket: %v", input.Summary))
	return nil
}
