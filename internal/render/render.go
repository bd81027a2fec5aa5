package render

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrUnresolvedPlaceholder is returned in strict mode when a template
// contains a placeholder token with no value.
var ErrUnresolvedPlaceholder = errors.New("render: unresolved placeholder")

// tokenPattern matches placeholder tokens such as {{PROJECT_NAME}}.
var tokenPattern = regexp.MustCompile(`\{\{([A-Z][A-Z0-9_]*)\}\}`)

// Recognized token names.
const (
	TokenProjectName        = "PROJECT_NAME"
	TokenProjectTitle       = "PROJECT_TITLE"
	TokenProjectDescription = "PROJECT_DESCRIPTION"
	TokenPrimaryDomain      = "PRIMARY_DOMAIN"
	TokenComponentName      = "COMPONENT_NAME"
	TokenPackageName        = "PACKAGE_NAME"
)

// Values maps token names (without braces) to their substitution.
type Values map[string]string

// Project holds the configuration fields that feed placeholder values.
type Project struct {
	Name        string
	Description string
	Domain      string
}

// ComponentValues returns the token values for one component of a project.
func ComponentValues(p Project, component string) Values {
	return Values{
		TokenProjectName:        p.Name,
		TokenProjectTitle:       Title(p.Name),
		TokenProjectDescription: p.Description,
		TokenPrimaryDomain:      p.Domain,
		TokenComponentName:      component,
		TokenPackageName:        p.Name + "-" + component,
	}
}

// Title converts a project identifier such as "my-app" into "My App".
func Title(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_' || r == '.'
	})
	return cases.Title(language.English).String(strings.Join(words, " "))
}

// Renderer substitutes placeholder tokens in template content.
type Renderer struct {
	values Values
	strict bool
}

// New creates a Renderer. In strict mode unknown tokens are an error;
// otherwise they are left in place and reported by Render.
func New(values Values, strict bool) *Renderer {
	return &Renderer{values: values, strict: strict}
}

// Render replaces every recognized token in content. The returned slice
// lists unresolved token names (sorted, deduplicated) when not strict.
// Content that looks binary is returned unchanged.
func (r *Renderer) Render(name string, content []byte) ([]byte, []string, error) {
	if IsBinary(content) {
		return content, nil, nil
	}

	unresolved := make(map[string]bool)
	out := tokenPattern.ReplaceAllFunc(content, func(match []byte) []byte {
		token := string(match[2 : len(match)-2])
		if v, ok := r.values[token]; ok {
			return []byte(v)
		}
		unresolved[token] = true
		return match
	})

	if len(unresolved) == 0 {
		return out, nil, nil
	}

	tokens := make([]string, 0, len(unresolved))
	for tok := range unresolved {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)

	if r.strict {
		return nil, nil, fmt.Errorf("%w in %s: %s", ErrUnresolvedPlaceholder, name, formatTokens(tokens))
	}
	return out, tokens, nil
}

// Tokens returns the distinct placeholder names present in content, sorted.
func Tokens(content []byte) []string {
	seen := make(map[string]bool)
	var tokens []string
	for _, m := range tokenPattern.FindAllSubmatch(content, -1) {
		tok := string(m[1])
		if !seen[tok] {
			seen[tok] = true
			tokens = append(tokens, tok)
		}
	}
	sort.Strings(tokens)
	return tokens
}

// IsBinary reports whether content contains a NUL byte in its first 8 KiB.
func IsBinary(content []byte) bool {
	head := content
	if len(head) > 8192 {
		head = head[:8192]
	}
	return bytes.IndexByte(head, 0) >= 0
}

func formatTokens(tokens []string) string {
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = "{{" + t + "}}"
	}
	return strings.Join(quoted, ", ")
}
