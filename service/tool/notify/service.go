package notify

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/viant/gator/model/types"
	"github.com/viant/gator/service/tool"
)

const name = "notify"

// Service posts a notification to an operational channel.
type Service struct{}

type Input struct {
	Channel string `json:"channel"`
	Message string `json:"message"`
}

func (i *Input) Init() {
	if i.Channel == "" {
		i.Channel = "ops"
	}
}

// Output represents the notification outcome.
type Output struct {
	tool.Output
}

// New creates a new notify service
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
			Description: "Notifies the given channel with a message.",
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
	output.Done(fmt.Sprintf("Notified %v: %v", input.Channel, input.Message))
	return nil
}
