package draft

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	sgdiff "github.com/sourcegraph/go-diff/diff"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/gator/model/types"
	"github.com/viant/gator/service/tool"
)

const name = "publish_draft"

type Input struct {
	Path    string `json:"path"`
	Current string `json:"current,omitempty"`
	Draft   string `json:"draft"`
	// DestURL, when set, receives the draft content on publish.
	DestURL      string `json:"destURL,omitempty"`
	ContextLines int    `json:"contextLines,omitempty"`
}

func (i *Input) Init() {
	if i.Path == "" {
		i.Path = "draft"
	}
	if i.ContextLines <= 0 {
		i.ContextLines = 3
	}
}

// Output carries the publish outcome with the unified diff preview.
type Output struct {
	tool.Output
	Patch      string `json:"patch,omitempty"`
	Insertions int    `json:"insertions,omitempty"`
	Deletions  int    `json:"deletions,omitempty"`
}

// Service publishes content drafts. It renders a unified diff against the
// current content and refuses drafts whose diff does not parse back cleanly.
type Service struct {
	fs afs.Service
}

// New creates a new draft service
func New() *Service {
	return &Service{fs: afs.New()}
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
			Description: "Publishes a content draft with a unified diff preview.",
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

	if input.Current == input.Draft {
		output.Done(fmt.Sprintf("Draft for %v has no changes.", input.Path))
		return nil
	}

	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(input.Current),
		B:        difflib.SplitLines(input.Draft),
		FromFile: "a/" + input.Path,
		ToFile:   "b/" + input.Path,
		Context:  input.ContextLines,
	}
	patch, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return fmt.Errorf("diff generation: %w", err)
	}
	if _, err = sgdiff.ParseFileDiff([]byte(patch)); err != nil {
		output.Failed(fmt.Sprintf("draft for %v produced an unparseable diff: %v", input.Path, err))
		return nil
	}

	insertions, deletions := countChanges(patch)
	if input.DestURL != "" {
		if err = s.fs.Upload(ctx, input.DestURL, file.DefaultFileOsMode, strings.NewReader(input.Draft)); err != nil {
			return fmt.Errorf("failed to publish draft to %v: %w", input.DestURL, err)
		}
	}
	output.Patch = patch
	output.Insertions = insertions
	output.Deletions = deletions
	output.Done(fmt.Sprintf("Published draft for %v (+%d/-%d).", input.Path, insertions, deletions))
	return nil
}

func countChanges(patch string) (insertions, deletions int) {
	for _, line := range strings.Split(patch, "\n") {
		switch {
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			insertions++
		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			deletions++
		}
	}
	return insertions, deletions
}
