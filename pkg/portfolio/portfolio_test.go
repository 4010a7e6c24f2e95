package portfolio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	d := Default()
	require.NoError(t, d.Validate())
	assert.Equal(t, []string{"about", "desktop", "contact"}, d.SectionIDs())
	assert.Equal(t, []string{"MockMate - AI Interview Platform", "Nutriguard Web App", "Discord Clone"}, d.ProjectTitles())

	d.Projects[0].Title = "changed"
	assert.Equal(t, "MockMate - AI Interview Platform", Default().Projects[0].Title, "Default must return a fresh copy")
}

func TestFindProject(t *testing.T) {
	d := Default()

	tests := []struct {
		query     string
		wantTitle string
		wantOK    bool
	}{
		{query: "mockmate", wantTitle: "MockMate - AI Interview Platform", wantOK: true},
		{query: "NUTRIGUARD", wantTitle: "Nutriguard Web App", wantOK: true},
		{query: "discord clone", wantTitle: "Discord Clone", wantOK: true},
		{query: "the discord app", wantTitle: "Discord Clone", wantOK: true},
		{query: "interview", wantTitle: "MockMate - AI Interview Platform", wantOK: true},
		{query: "weather station", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			p, ok := d.FindProject(tt.query)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantTitle, p.Title)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Data)
		wantErr string
	}{
		{name: "missing name", mutate: func(d *Data) { d.Profile.Name = " " }, wantErr: "profile name is required"},
		{name: "untitled project", mutate: func(d *Data) { d.Projects[1].Title = "" }, wantErr: "project 2 has no title"},
		{name: "duplicate project", mutate: func(d *Data) { d.Projects[1].Title = "discord clone" }, wantErr: "duplicate project title"},
		{name: "empty section id", mutate: func(d *Data) { d.Sections[0].ID = "" }, wantErr: "section id is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Default()
			tt.mutate(d)
			err := d.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "portfolio.yaml")
	content := `
profile:
  name: Ada Lovelace
  role: Analyst
projects:
  - title: Analytical Engine
    link: https://example.com/engine
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", d.Profile.Name)
	assert.Equal(t, []string{"Analytical Engine"}, d.ProjectTitles())
	assert.Equal(t, Default().Skills, d.Skills, "absent keys keep defaults")

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("profile: [broken"), 0600))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestInstruction(t *testing.T) {
	d := Default()

	client := d.Instruction(VariantClient)
	assert.Contains(t, client, "use the scroll_to_section or scroll_window tool immediately")
	assert.Contains(t, client, `- "desktop": Windows-style desktop`)
	assert.Contains(t, client, "Name: Nitin Jangid")
	assert.Contains(t, client, "1. MockMate - AI Interview Platform:")
	assert.Contains(t, client, "- Postman (tools)")
	assert.NotContains(t, client, "scrollToSection")

	server := d.Instruction(VariantServer)
	assert.Contains(t, server, "embedded in Nitin Jangid's portfolio website")
	assert.Contains(t, server, `When a user asks about projects → call scrollToSection({ sectionId: "desktop" })`)
	assert.Contains(t, server, "1. Software Engineer Intern at Roxiler Systems")

	assert.Equal(t, client, Default().Instruction(VariantClient), "instruction is deterministic")
}
