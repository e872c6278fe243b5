package event

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
)

// Journal persists lifecycle events as JSON documents under a base URL so a
// trace can be audited after the fact. File names embed the event timestamp
// to keep listing order stable.
type Journal struct {
	fs      afs.Service
	baseURL string
}

// NewJournal creates a journal rooted at baseURL (file://, mem://, s3:// and
// any other scheme the storage service supports).
func NewJournal(baseURL string) *Journal {
	return &Journal{fs: afs.New(), baseURL: baseURL}
}

// Append persists a single event.
func (j *Journal) Append(ctx context.Context, anEvent *Event) error {
	data, err := json.Marshal(anEvent)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	name := fmt.Sprintf("%v-%v.json", anEvent.CreatedAt.UTC().Format("20060102T150405.000000000"), uuid.New().String())
	URL := url.Join(j.baseURL, name)
	if err = j.fs.Upload(ctx, URL, file.DefaultFileOsMode, strings.NewReader(string(data))); err != nil {
		return fmt.Errorf("failed to journal event to %v: %w", URL, err)
	}
	return nil
}

// List returns journaled events in append order, optionally filtered by
// trace.
func (j *Journal) List(ctx context.Context, traceID string) ([]*Event, error) {
	if ok, _ := j.fs.Exists(ctx, j.baseURL); !ok {
		return nil, nil
	}
	objects, err := j.fs.List(ctx, j.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal %v: %w", j.baseURL, err)
	}
	sort.Slice(objects, func(i, k int) bool {
		return objects[i].Name() < objects[k].Name()
	})
	var ret []*Event
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := j.fs.Download(ctx, object)
		if err != nil {
			return nil, err
		}
		anEvent := &Event{}
		if err = json.Unmarshal(data, anEvent); err != nil {
			continue
		}
		if traceID != "" && anEvent.TraceID != traceID {
			continue
		}
		ret = append(ret, anEvent)
	}
	return ret, nil
}
