package library

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/sdd-labs/sdd-scaffold/internal/manifest"
)

// Sentinel errors for library operations.
var (
	// ErrUnknownComponent is returned when a requested component is not
	// defined by the library.
	ErrUnknownComponent = errors.New("library: unknown component")

	// ErrTemplateRead is returned when a library file cannot be read.
	ErrTemplateRead = errors.New("library: cannot read template")
)

// conventionSuffix marks skill directories that define a component without
// a manifest, e.g. "database-scaffolding" defines "database".
const conventionSuffix = "-scaffolding"

// Library is a read-only set of component templates.
type Library struct {
	name       string
	fsys       fs.FS
	components map[string]*Component
}

// Component is one scaffoldable unit discovered in a library.
type Component struct {
	Name        string   // component identifier, e.g. "database"
	Skill       string   // skill directory name, e.g. "database-scaffolding"
	Version     string   // manifest version, "" for convention-only skills
	Description string   // from the manifest, else from SKILL.md
	Directories []string // subdirectories always created under the component dir
	Requires    string   // semver constraint on the scaffolder version
	Doc         *manifest.SkillDoc

	templatesDir string // fs path of the templates/ directory
}

// Open loads the library rooted at dir on disk.
func Open(dir string) (*Library, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: skills directory %s: %v", ErrTemplateRead, dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: skills directory %s is not a directory", ErrTemplateRead, dir)
	}
	return Load(os.DirFS(dir), dir)
}

// Load discovers components in fsys. name identifies the library in
// messages (a path or BuiltinName).
func Load(fsys fs.FS, name string) (*Library, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s: %v", ErrTemplateRead, name, err)
	}

	lib := &Library{
		name:       name,
		fsys:       fsys,
		components: make(map[string]*Component),
	}

	for _, entry := range entries {
		if !entry.IsDir() || shouldExclude(entry.Name()) {
			continue
		}
		c, err := lib.loadSkill(entry.Name())
		if err != nil {
			return nil, err
		}
		if c == nil {
			continue
		}
		if existing, ok := lib.components[c.Name]; ok {
			return nil, fmt.Errorf("%w: component %q is defined by both %s and %s",
				manifest.ErrInvalidManifest, c.Name, existing.Skill, c.Skill)
		}
		lib.components[c.Name] = c
	}

	return lib, nil
}

// loadSkill builds a Component from one skill directory. It returns nil
// for skills that do not define a component.
func (l *Library) loadSkill(skill string) (*Component, error) {
	templatesDir := path.Join(skill, manifest.TemplatesDir)
	hasTemplates := isDir(l.fsys, templatesDir)

	manifestPath := path.Join(skill, manifest.ComponentFile)
	data, err := fs.ReadFile(l.fsys, manifestPath)
	switch {
	case err == nil:
		m, err := manifest.Load(data, l.display(manifestPath))
		if err != nil {
			return nil, err
		}
		doc, err := l.readSkillDoc(skill)
		if err != nil {
			return nil, err
		}
		if !hasTemplates {
			return nil, fmt.Errorf("%w: %s has no %s/ directory",
				manifest.ErrInvalidManifest, l.display(skill), manifest.TemplatesDir)
		}
		if err := checkDirectories(m.Directories); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", manifest.ErrInvalidManifest, l.display(manifestPath), err)
		}
		c := &Component{
			Name:         m.Name,
			Skill:        skill,
			Version:      m.Version,
			Description:  m.Description,
			Directories:  m.Directories,
			Requires:     m.Requires,
			Doc:          doc,
			templatesDir: templatesDir,
		}
		if m.Skill != "" && m.Skill != skill {
			return nil, fmt.Errorf("%w: %s declares skill %q but lives in %q",
				manifest.ErrInvalidManifest, l.display(manifestPath), m.Skill, skill)
		}
		if c.Description == "" && doc != nil {
			c.Description = doc.Description
		}
		return c, nil

	case errors.Is(err, fs.ErrNotExist):
		name := strings.TrimSuffix(skill, conventionSuffix)
		if !hasTemplates || name == skill || name == "" {
			return nil, nil
		}
		if !manifest.ValidName(name) {
			return nil, fmt.Errorf("%w: %s: component name %q derived from the directory must match [a-z0-9][a-z0-9-]*",
				manifest.ErrInvalidManifest, l.display(skill), name)
		}
		doc, err := l.readSkillDoc(skill)
		if err != nil {
			return nil, err
		}
		dirs, err := l.templateSubdirs(templatesDir)
		if err != nil {
			return nil, err
		}
		c := &Component{
			Name:         name,
			Skill:        skill,
			Directories:  dirs,
			Doc:          doc,
			templatesDir: templatesDir,
		}
		if doc != nil {
			c.Description = doc.Description
		}
		return c, nil

	default:
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateRead, l.display(manifestPath), err)
	}
}

func (l *Library) readSkillDoc(skill string) (*manifest.SkillDoc, error) {
	docPath := path.Join(skill, manifest.SkillFile)
	data, err := fs.ReadFile(l.fsys, docPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateRead, l.display(docPath), err)
	}
	return manifest.ParseSkillDoc(data, l.display(docPath))
}

// templateSubdirs lists the top-level subdirectories of a templates/ dir.
func (l *Library) templateSubdirs(templatesDir string) ([]string, error) {
	entries, err := fs.ReadDir(l.fsys, templatesDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateRead, l.display(templatesDir), err)
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() && !shouldExclude(e.Name()) {
			dirs = append(dirs, e.Name())
		}
	}
	return dirs, nil
}

// Name returns the library's display name.
func (l *Library) Name() string { return l.name }

// Components returns all components sorted by name.
func (l *Library) Components() []*Component {
	out := make([]*Component, 0, len(l.components))
	for _, c := range l.components {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the sorted component identifiers.
func (l *Library) Names() []string {
	comps := l.Components()
	names := make([]string, len(comps))
	for i, c := range comps {
		names[i] = c.Name
	}
	return names
}

// Lookup returns the named component.
func (l *Library) Lookup(name string) (*Component, error) {
	c, ok := l.components[name]
	if !ok {
		return nil, fmt.Errorf("%w %q in %s (known: %s)",
			ErrUnknownComponent, name, l.name, strings.Join(l.Names(), ", "))
	}
	return c, nil
}

// Resolve looks up every name, preserving order. All unknown names are
// reported in a single error.
func (l *Library) Resolve(names []string) ([]*Component, error) {
	var unknown []string
	out := make([]*Component, 0, len(names))
	for _, n := range names {
		c, ok := l.components[n]
		if !ok {
			unknown = append(unknown, n)
			continue
		}
		out = append(out, c)
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s in %s (known: %s)",
			ErrUnknownComponent, strings.Join(quoteAll(unknown), ", "), l.name, strings.Join(l.Names(), ", "))
	}
	return out, nil
}

func (l *Library) display(p string) string {
	return l.name + "/" + p
}

// checkDirectories rejects declared directories that would escape the
// component directory.
func checkDirectories(dirs []string) error {
	for _, d := range dirs {
		if !fs.ValidPath(d) || d == "." {
			return fmt.Errorf("directory %q must be a relative path inside the component", d)
		}
	}
	return nil
}

func isDir(fsys fs.FS, p string) bool {
	info, err := fs.Stat(fsys, p)
	return err == nil && info.IsDir()
}

func quoteAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = fmt.Sprintf("%q", s)
	}
	return out
}
