package goals

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/squagol/squadgoals/internal/core/goal"
	"github.com/squagol/squadgoals/internal/core/partition"
)

// TemplateGoal is one pre-configured goal inside a template.
type TemplateGoal struct {
	Name      string  `yaml:"name" json:"name"`
	Type      string  `yaml:"type" json:"type"`
	Target    *string `yaml:"target" json:"target,omitempty"`
	TargetMax *string `yaml:"target_max" json:"target_max,omitempty"`
	IsPrivate bool    `yaml:"is_private" json:"is_private"`
}

// GoalTemplate is a ready-made goal group definition users can instantiate
// instead of configuring a group by hand. Templates are loaded at startup
// from YAML files and cached in memory.
type GoalTemplate struct {
	Name           string         `yaml:"name" json:"name"`
	Description    string         `yaml:"description" json:"description,omitempty"`
	PartitionType  string         `yaml:"partition_type" json:"partition_type"`
	PartitionLabel string         `yaml:"partition_label" json:"partition_label,omitempty"`
	Goals          []TemplateGoal `yaml:"goals" json:"goals"`
}

// FileSystemTemplateRepository loads goal templates from *.yaml files in a
// directory. Each file contains exactly one template at the top level.
type FileSystemTemplateRepository struct {
	dir       string
	templates map[string]GoalTemplate // keyed by Name
}

// NewFileSystemTemplateRepository creates a new repository and eagerly loads
// all templates from dir. Returns an error if any template file is malformed.
func NewFileSystemTemplateRepository(dir string) (*FileSystemTemplateRepository, error) {
	repo := &FileSystemTemplateRepository{
		dir:       dir,
		templates: make(map[string]GoalTemplate),
	}
	if err := repo.load(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *FileSystemTemplateRepository) load() error {
	info, err := os.Stat(r.dir)
	if os.IsNotExist(err) {
		return nil // no template directory — valid (zero templates configured)
	}
	if err != nil {
		return fmt.Errorf("template dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("template path %q is not a directory", r.dir)
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return fmt.Errorf("reading template dir: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || (!strings.HasSuffix(e.Name(), ".yaml") && !strings.HasSuffix(e.Name(), ".yml")) {
			continue
		}

		path := filepath.Join(r.dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading template file %s: %w", path, err)
		}

		var tmpl GoalTemplate
		if err := yaml.Unmarshal(data, &tmpl); err != nil {
			return fmt.Errorf("parsing template file %s: %w", path, err)
		}
		if tmpl.Name == "" {
			continue // skip empty / comment-only files
		}

		if _, err := partition.ParseType(tmpl.PartitionType); err != nil {
			return fmt.Errorf("template %q: %w", tmpl.Name, err)
		}
		if len(tmpl.Goals) == 0 {
			return fmt.Errorf("template %q: must define at least one goal", tmpl.Name)
		}
		for _, g := range tmpl.Goals {
			if g.Name == "" {
				return fmt.Errorf("template %q: goal name must not be empty", tmpl.Name)
			}
			if !goal.KnownKind(g.Type) {
				return fmt.Errorf("template %q: goal %q has unknown type %q", tmpl.Name, g.Name, g.Type)
			}
		}

		if _, exists := r.templates[tmpl.Name]; exists {
			return fmt.Errorf("template %q: duplicate template name (check multiple YAML files)", tmpl.Name)
		}
		r.templates[tmpl.Name] = tmpl
	}
	return nil
}

// Get returns the template with the given name, or an error if not found.
func (r *FileSystemTemplateRepository) Get(name string) (*GoalTemplate, error) {
	tmpl, ok := r.templates[name]
	if !ok {
		return nil, fmt.Errorf("goal template %q not found", name)
	}
	return &tmpl, nil
}

// List returns all loaded templates sorted by name.
func (r *FileSystemTemplateRepository) List() []GoalTemplate {
	out := make([]GoalTemplate, 0, len(r.templates))
	for _, tmpl := range r.templates {
		out = append(out, tmpl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
