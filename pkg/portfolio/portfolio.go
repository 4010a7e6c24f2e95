// Package portfolio holds the site owner's profile, projects, skills and
// experience. The data feeds the model's system instruction and the project
// link catalog used by the open_project_link action.
package portfolio

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile is the site owner's identity and contact details.
type Profile struct {
	Name     string `yaml:"name" json:"name"`
	Role     string `yaml:"role" json:"role"`
	About    string `yaml:"about" json:"about"`
	Location string `yaml:"location" json:"location"`
	Email    string `yaml:"email" json:"email"`
	Phone    string `yaml:"phone" json:"phone"`
	LinkedIn string `yaml:"linkedin" json:"linkedin"`
	GitHub   string `yaml:"github" json:"github"`
}

// Project is one entry of the project catalog.
type Project struct {
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Tags        []string `yaml:"tags" json:"tags"`
	Link        string   `yaml:"link" json:"link"`
	GitHub      string   `yaml:"github" json:"github"`
}

// Skill is a named skill in a category such as frontend, backend or tools.
type Skill struct {
	Name     string `yaml:"name" json:"name"`
	Category string `yaml:"category" json:"category"`
}

// Experience is one position held.
type Experience struct {
	Role        string   `yaml:"role" json:"role"`
	Company     string   `yaml:"company" json:"company"`
	Period      string   `yaml:"period" json:"period"`
	Description []string `yaml:"description" json:"description"`
}

// Section is a scroll target on the page.
type Section struct {
	ID          string `yaml:"id" json:"id"`
	Description string `yaml:"description" json:"description"`
}

// Data is the complete portfolio content.
type Data struct {
	Profile    Profile      `yaml:"profile" json:"profile"`
	Projects   []Project    `yaml:"projects" json:"projects"`
	Skills     []Skill      `yaml:"skills" json:"skills"`
	Experience []Experience `yaml:"experience" json:"experience"`
	Sections   []Section    `yaml:"sections" json:"sections"`
}

// Load reads a YAML portfolio file. Top-level keys absent from the file keep
// their Default values.
func Load(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read portfolio file: %w", err)
	}

	data := Default()
	if err := yaml.Unmarshal(raw, data); err != nil {
		return nil, fmt.Errorf("failed to parse portfolio file %s: %w", path, err)
	}
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("invalid portfolio file %s: %w", path, err)
	}
	return data, nil
}

// Validate checks that the data can drive the assistant.
func (d *Data) Validate() error {
	if strings.TrimSpace(d.Profile.Name) == "" {
		return fmt.Errorf("profile name is required")
	}
	seen := make(map[string]bool)
	for i, p := range d.Projects {
		if strings.TrimSpace(p.Title) == "" {
			return fmt.Errorf("project %d has no title", i+1)
		}
		key := strings.ToLower(p.Title)
		if seen[key] {
			return fmt.Errorf("duplicate project title %q", p.Title)
		}
		seen[key] = true
	}
	for _, s := range d.Sections {
		if strings.TrimSpace(s.ID) == "" {
			return fmt.Errorf("section id is required")
		}
	}
	return nil
}

// ProjectTitles returns the project titles in catalog order.
func (d *Data) ProjectTitles() []string {
	titles := make([]string, len(d.Projects))
	for i, p := range d.Projects {
		titles[i] = p.Title
	}
	return titles
}

// SectionIDs returns the scroll target ids in page order.
func (d *Data) SectionIDs() []string {
	ids := make([]string, len(d.Sections))
	for i, s := range d.Sections {
		ids[i] = s.ID
	}
	return ids
}

// FindProject matches query against the catalog, case-insensitively: a
// title containing the query wins, as does a query containing a title's
// first word. The first matching project in catalog order is returned.
func (d *Data) FindProject(query string) (Project, bool) {
	q := strings.ToLower(query)
	for _, p := range d.Projects {
		title := strings.ToLower(p.Title)
		if strings.Contains(title, q) {
			return p, true
		}
		if first := strings.Split(title, " ")[0]; first != "" && strings.Contains(q, first) {
			return p, true
		}
	}
	return Project{}, false
}
