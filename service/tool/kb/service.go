package kb

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/viant/gator/model/types"
	"github.com/viant/gator/service/tool"
)

const name = "kb_search"

// Service searches the knowledge base for snippets matching a query.
type Service struct{}

type Input struct {
	Query string `json:"query"`
}

// Output represents the search outcome.
type Output struct {
	tool.Output
}

// New creates a new kb search service
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
			Description: "Searches the knowledge base for the given query.",
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
	output.Done(fmt.Sprintf("Found KB snippets for '%v'.", input.Query))
	return nil
}
