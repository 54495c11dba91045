// Package catalog loads the audit question catalog and resolves the question
// list a session is scored against.
package catalog

import (
	"adaudit/internal/model"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

var (
	ErrInvalidCatalog       = errors.New("invalid catalog")
	ErrUnknownBusinessModel = errors.New("unknown business model")
	ErrUnknownChannel       = errors.New("unknown channel")
)

// Segment is the ordered question list offered to one business model
type Segment struct {
	Model       model.BusinessModel `json:"model"`
	Description string              `json:"description"`
	Questions   []model.Question    `json:"questions"`
}

// Catalog is read-only once loaded
type Catalog struct {
	Version  string
	segments []Segment
	index    map[model.BusinessModel]int
}

type fileSegment struct {
	Model       model.BusinessModel `yaml:"model"`
	Description string              `yaml:"description"`
	Groups      []string            `yaml:"groups"`
}

type file struct {
	Version  string                      `yaml:"version"`
	Groups   map[string][]model.Question `yaml:"groups"`
	Segments []fileSegment               `yaml:"segments"`
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default returns the catalog compiled into the binary
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCat, defaultErr = Parse(defaultCatalog)
	})
	return defaultCat, defaultErr
}

// LoadFile parses a catalog from a YAML file on disk
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if f.Version == "" {
		return nil, fmt.Errorf("%w: missing version", ErrInvalidCatalog)
	}
	if len(f.Segments) == 0 {
		return nil, fmt.Errorf("%w: no segments", ErrInvalidCatalog)
	}

	c := &Catalog{
		Version: f.Version,
		index:   make(map[model.BusinessModel]int, len(f.Segments)),
	}
	for _, fs := range f.Segments {
		if fs.Model == "" {
			return nil, fmt.Errorf("%w: segment without model", ErrInvalidCatalog)
		}
		if _, dup := c.index[fs.Model]; dup {
			return nil, fmt.Errorf("%w: segment %q declared twice", ErrInvalidCatalog, fs.Model)
		}
		seg := Segment{Model: fs.Model, Description: fs.Description}
		for _, g := range fs.Groups {
			questions, ok := f.Groups[g]
			if !ok {
				return nil, fmt.Errorf("%w: segment %q references unknown group %q", ErrInvalidCatalog, fs.Model, g)
			}
			seg.Questions = append(seg.Questions, questions...)
		}
		if err := validate(seg); err != nil {
			return nil, err
		}
		c.index[fs.Model] = len(c.segments)
		c.segments = append(c.segments, seg)
	}
	return c, nil
}

func validate(seg Segment) error {
	if len(seg.Questions) == 0 {
		return fmt.Errorf("%w: segment %q has no questions", ErrInvalidCatalog, seg.Model)
	}
	seen := make(map[string]bool, len(seg.Questions))
	for _, q := range seg.Questions {
		switch {
		case q.ID == "":
			return fmt.Errorf("%w: segment %q has a question without id", ErrInvalidCatalog, seg.Model)
		case seen[q.ID]:
			return fmt.Errorf("%w: segment %q repeats question %q", ErrInvalidCatalog, seg.Model, q.ID)
		case len(q.Options) == 0:
			return fmt.Errorf("%w: question %q has no options", ErrInvalidCatalog, q.ID)
		}
		switch q.Category {
		case model.CategoryMeta, model.CategoryGoogle, model.CategoryGeneral:
		default:
			return fmt.Errorf("%w: question %q has unknown category %q", ErrInvalidCatalog, q.ID, q.Category)
		}
		for _, o := range q.Options {
			if o.Score < 0 || o.Score > 100 {
				return fmt.Errorf("%w: question %q option %q scores outside 0-100", ErrInvalidCatalog, q.ID, o.Label)
			}
			if o.ActionPlan != nil && o.ActionPlan.Severity != model.SeverityHigh && o.ActionPlan.Severity != model.SeverityMedium {
				return fmt.Errorf("%w: question %q has action plan with severity %q", ErrInvalidCatalog, q.ID, o.ActionPlan.Severity)
			}
		}
		seen[q.ID] = true
	}
	return nil
}

// Segments returns all segments in catalog order
func (c *Catalog) Segments() []Segment {
	return c.segments
}

// Segment returns the unfiltered segment for a business model
func (c *Catalog) Segment(bm model.BusinessModel) (*Segment, error) {
	i, ok := c.index[bm]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBusinessModel, bm)
	}
	return &c.segments[i], nil
}

// Questions returns the business model's questions filtered by channel
func (c *Catalog) Questions(bm model.BusinessModel, ch model.Channel) ([]model.Question, error) {
	seg, err := c.Segment(bm)
	if err != nil {
		return nil, err
	}
	if !ch.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChannel, ch)
	}
	return Filter(seg.Questions, ch), nil
}

// Filter keeps the questions belonging to the channel, preserving order.
// General questions are always kept.
func Filter(questions []model.Question, ch model.Channel) []model.Question {
	out := make([]model.Question, 0, len(questions))
	for _, q := range questions {
		if ch.Includes(q.Category) {
			out = append(out, q)
		}
	}
	return out
}
