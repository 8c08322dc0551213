package workflow

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/dryad-restoration/dryad-backend/internal/domain/jobs"
	"github.com/dryad-restoration/dryad-backend/internal/domain/users"
)

//go:embed workflow.yaml
var defaultYAML []byte

// Task is a role-scoped unit of work attached to a job status.
type Task struct {
	ID            string       `yaml:"id" json:"id"`
	Label         string       `yaml:"label" json:"label"`
	RequiredRoles []users.Role `yaml:"requiredRoles" json:"requiredRoles"`
	ChecklistKey  string       `yaml:"checklistKey,omitempty" json:"checklistKey,omitempty"`
	Description   string       `yaml:"description,omitempty" json:"description,omitempty"`
	DependsOn     []string     `yaml:"dependsOn,omitempty" json:"dependsOn,omitempty"`
}

func (t Task) AllowsRole(role users.Role) bool {
	return slices.Contains(t.RequiredRoles, role)
}

type Step struct {
	Status jobs.JobStatus `yaml:"status" json:"status"`
	Label  string         `yaml:"label" json:"label"`
}

// Config is the parsed workflow table. It is read-only after Load.
type Config struct {
	Steps      []Step                    `yaml:"steps" json:"steps"`
	SideStates map[jobs.JobStatus]string `yaml:"sideStates" json:"sideStates"`
	Tasks      map[jobs.JobStatus][]Task `yaml:"tasks" json:"tasks"`

	index map[jobs.JobStatus]int
}

var (
	defaultOnce sync.Once
	defaultCfg  *Config
	defaultErr  error
)

// Default returns the built-in workflow table. It panics if the embedded
// table does not parse, which only a bad edit to workflow.yaml can cause.
func Default() *Config {
	defaultOnce.Do(func() {
		defaultCfg, defaultErr = Load(bytes.NewReader(defaultYAML))
	})
	if defaultErr != nil {
		panic(fmt.Sprintf("workflow: embedded table: %v", defaultErr))
	}
	return defaultCfg
}

// Load parses and validates a workflow table.
func Load(r io.Reader) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode workflow: %w", err)
	}
	if err := cfg.init(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) init() error {
	if len(c.Steps) == 0 {
		return fmt.Errorf("workflow has no steps")
	}
	c.index = make(map[jobs.JobStatus]int, len(c.Steps))
	for i, s := range c.Steps {
		if !s.Status.Valid() {
			return fmt.Errorf("step %d: unknown status %q", i, s.Status)
		}
		if _, dup := c.index[s.Status]; dup {
			return fmt.Errorf("step %d: duplicate status %q", i, s.Status)
		}
		c.index[s.Status] = i
	}
	for status := range c.SideStates {
		if !status.Valid() {
			return fmt.Errorf("side state: unknown status %q", status)
		}
		if _, ok := c.index[status]; ok {
			return fmt.Errorf("side state %q is also a step", status)
		}
	}
	var probe jobs.CompletionTasks
	for status, tasks := range c.Tasks {
		if !status.Valid() {
			return fmt.Errorf("tasks: unknown status %q", status)
		}
		ids := make(map[string]bool, len(tasks))
		for _, t := range tasks {
			if t.ID == "" {
				return fmt.Errorf("tasks[%s]: task without id", status)
			}
			ids[t.ID] = true
			if len(t.RequiredRoles) == 0 {
				return fmt.Errorf("task %s: no required roles", t.ID)
			}
			for _, r := range t.RequiredRoles {
				if !r.Valid() {
					return fmt.Errorf("task %s: unknown role %q", t.ID, r)
				}
			}
			if t.ChecklistKey != "" {
				if _, ok := probe.Flag(t.ChecklistKey); !ok {
					return fmt.Errorf("task %s: unknown checklist key %q", t.ID, t.ChecklistKey)
				}
			}
		}
		for _, t := range tasks {
			for _, dep := range t.DependsOn {
				if !ids[dep] {
					return fmt.Errorf("task %s: dependency %q not defined for %s", t.ID, dep, status)
				}
			}
		}
	}
	return nil
}

// Index is the position of status in the main line, or -1 for side states.
func (c *Config) Index(status jobs.JobStatus) int {
	if i, ok := c.index[status]; ok {
		return i
	}
	return -1
}

// IsAtOrPast reports whether status has reached ref in the main line.
// Side states are never at or past anything.
func (c *Config) IsAtOrPast(status, ref jobs.JobStatus) bool {
	si, ri := c.Index(status), c.Index(ref)
	return si >= 0 && ri >= 0 && si >= ri
}

func (c *Config) Label(status jobs.JobStatus) string {
	if i := c.Index(status); i >= 0 {
		return c.Steps[i].Label
	}
	if l, ok := c.SideStates[status]; ok {
		return l
	}
	return string(status)
}

// Next returns the status after status in the main line.
func (c *Config) Next(status jobs.JobStatus) (jobs.JobStatus, bool) {
	i := c.Index(status)
	if i < 0 || i+1 >= len(c.Steps) {
		return "", false
	}
	return c.Steps[i+1].Status, true
}

func (c *Config) TasksFor(status jobs.JobStatus) []Task {
	return c.Tasks[status]
}

func (c *Config) findTask(status jobs.JobStatus, id string) (Task, bool) {
	for _, t := range c.Tasks[status] {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}
