package library

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// excludedNames are files/directories skipped when reading templates.
var excludedNames = map[string]bool{
	"node_modules": true,
	".git":         true,
	".DS_Store":    true,
}

// TemplateFile is one file read from a component's templates/ directory.
type TemplateFile struct {
	Path       string // slash-separated, relative to templates/
	Data       []byte
	Executable bool // script under scripts/, a .sh file, or executable in the source
}

// Templates reads every template file of c, sorted by path. Symlinks and
// other special files are skipped.
func (l *Library) Templates(c *Component) ([]TemplateFile, error) {
	var files []TemplateFile

	err := fs.WalkDir(l.fsys, c.templatesDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrTemplateRead, l.display(p), err)
		}
		if shouldExclude(d.Name()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		data, err := fs.ReadFile(l.fsys, p)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrTemplateRead, l.display(p), err)
		}

		rel := strings.TrimPrefix(p, c.templatesDir+"/")
		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrTemplateRead, l.display(p), err)
		}

		files = append(files, TemplateFile{
			Path:       rel,
			Data:       data,
			Executable: IsScript(rel) || info.Mode().Perm()&0o111 != 0,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// IsScript reports whether a template path is a shell script: any .sh file
// or any file directly under scripts/.
func IsScript(rel string) bool {
	if strings.HasSuffix(rel, ".sh") {
		return true
	}
	dir := path.Dir(rel)
	return dir == "scripts"
}

// shouldExclude returns true if the name should be skipped.
func shouldExclude(name string) bool {
	return excludedNames[name]
}
