// Package seed loads the first-run catalog of students, syllabus topics and
// events.
package seed

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"github.com/stemsi/faculty-backend/internal/model"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Event is a seed calendar entry. Its date is assigned when seeding.
type Event struct {
	Title       string `yaml:"title"`
	Time        string `yaml:"time"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
}

// Catalog is the full seed dataset.
type Catalog struct {
	Students []model.CohortRoster   `yaml:"students"`
	Syllabus []model.CohortSyllabus `yaml:"syllabus"`
	Events   []Event                `yaml:"events"`
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from path, or the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and checks a YAML catalog. Unknown keys are rejected so a
// misspelt section does not silently seed nothing.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("parse seed catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	rolls := make(map[string]bool)
	for _, cohort := range c.Students {
		if cohort.Year == "" {
			return fmt.Errorf("seed catalog: student cohort without year")
		}
		for _, s := range cohort.Students {
			if s.Name == "" || s.Roll == "" {
				return fmt.Errorf("seed catalog: cohort %s has a student without name or roll", cohort.Year)
			}
			if rolls[s.Roll] {
				return fmt.Errorf("seed catalog: duplicate roll number %s", s.Roll)
			}
			rolls[s.Roll] = true
		}
	}
	for _, cohort := range c.Syllabus {
		if cohort.Year == "" {
			return fmt.Errorf("seed catalog: syllabus cohort without year")
		}
		for _, sub := range cohort.Subjects {
			if sub.Subject == "" {
				return fmt.Errorf("seed catalog: cohort %s has a subject without name", cohort.Year)
			}
		}
	}
	for _, e := range c.Events {
		if e.Title == "" || e.Time == "" || e.Type == "" {
			return fmt.Errorf("seed catalog: event needs title, time and type")
		}
	}
	return nil
}

// TopicCount returns the number of syllabus topics in the catalog.
func (c *Catalog) TopicCount() int {
	n := 0
	for _, cohort := range c.Syllabus {
		for _, sub := range cohort.Subjects {
			n += len(sub.Topics)
		}
	}
	return n
}
