package manifest

// ComponentManifest describes one scaffoldable component (component.yaml).
type ComponentManifest struct {
	Name        string   `yaml:"name" json:"name"`
	Skill       string   `yaml:"skill,omitempty" json:"skill,omitempty"`
	Version     string   `yaml:"version" json:"version"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Directories []string `yaml:"directories,omitempty" json:"directories,omitempty"`
	Requires    string   `yaml:"requires,omitempty" json:"requires,omitempty"`
}

// SkillDoc holds the frontmatter fields of a SKILL.md document.
type SkillDoc struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Body        string `yaml:"-" json:"-"`
}

// File names recognized inside a skill directory.
const (
	ComponentFile = "component.yaml"
	SkillFile     = "SKILL.md"
	TemplatesDir  = "templates"
)
