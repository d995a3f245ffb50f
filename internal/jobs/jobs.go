// Package jobs loads the named grouping reports from a YAML file.
package jobs

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

var ErrJobNotFound = errors.New("job not found")

// Job is one report: three aligned input ranges, an optional filter and an
// optional output cell the result is written to.
type Job struct {
	Name            string `yaml:"name" json:"name"`
	Range           string `yaml:"range" json:"range"`
	GroupByRange    string `yaml:"group_by_range" json:"group_by_range"`
	GroupByValues   string `yaml:"group_by_values" json:"group_by_values"`
	FilterText      string `yaml:"filter_text,omitempty" json:"filter_text,omitempty"`
	FilterColNumber int    `yaml:"filter_col_number,omitempty" json:"filter_col_number,omitempty"`
	Output          string `yaml:"output,omitempty" json:"output,omitempty"`
	Schedule        string `yaml:"schedule,omitempty" json:"schedule,omitempty"`
}

// Ranges returns the input ranges in the order the grouping routine takes them.
func (j Job) Ranges() []string {
	return []string{j.Range, j.GroupByRange, j.GroupByValues}
}

// NextRun returns the first activation of the job's schedule after t.
// Jobs without a valid schedule report false.
func (j Job) NextRun(t time.Time) (time.Time, bool) {
	if j.Schedule == "" {
		return time.Time{}, false
	}
	sched, err := cron.ParseStandard(j.Schedule)
	if err != nil {
		return time.Time{}, false
	}
	return sched.Next(t), true
}

// Set is the decoded jobs file.
type Set struct {
	Jobs []Job `yaml:"jobs"`
}

// Load reads and validates the jobs file at path.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read jobs file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a jobs document.
func Parse(data []byte) (*Set, error) {
	var set Set
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("decode jobs: %w", err)
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return &set, nil
}

// Validate reports every problem in the set at once.
func (s *Set) Validate() error {
	var problems []string
	seen := make(map[string]bool, len(s.Jobs))

	for i, j := range s.Jobs {
		label := j.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
			problems = append(problems, fmt.Sprintf("job %s: name is required", label))
		} else if seen[j.Name] {
			problems = append(problems, fmt.Sprintf("job %s: duplicate name", label))
		}
		seen[j.Name] = true

		if j.Range == "" {
			problems = append(problems, fmt.Sprintf("job %s: range is required", label))
		}
		if j.GroupByRange == "" {
			problems = append(problems, fmt.Sprintf("job %s: group_by_range is required", label))
		}
		if j.GroupByValues == "" {
			problems = append(problems, fmt.Sprintf("job %s: group_by_values is required", label))
		}
		if j.FilterColNumber < 0 {
			problems = append(problems, fmt.Sprintf("job %s: filter_col_number must be >= 0", label))
		}
		if j.Schedule != "" {
			if _, err := cron.ParseStandard(j.Schedule); err != nil {
				problems = append(problems, fmt.Sprintf("job %s: invalid schedule %q: %v", label, j.Schedule, err))
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("jobs validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// Find returns the job called name.
func (s *Set) Find(name string) (Job, error) {
	if s != nil {
		for _, j := range s.Jobs {
			if j.Name == name {
				return j, nil
			}
		}
	}
	return Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, name)
}

// Names returns the job names sorted.
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.Jobs))
	for _, j := range s.Jobs {
		names = append(names, j.Name)
	}
	sort.Strings(names)
	return names
}

// Scheduled returns the jobs that carry a cron schedule.
func (s *Set) Scheduled() []Job {
	if s == nil {
		return nil
	}
	var out []Job
	for _, j := range s.Jobs {
		if j.Schedule != "" {
			out = append(out, j)
		}
	}
	return out
}
