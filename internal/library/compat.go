package library

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ErrIncompatibleComponent is returned when a component's requires
// constraint excludes the running scaffolder version.
var ErrIncompatibleComponent = errors.New("library: component requires a different scaffolder version")

// CheckCompatible verifies c.Requires against the scaffolder version.
// Development builds ("dev" or any non-semver version) skip the check.
func CheckCompatible(c *Component, scaffolderVersion string) error {
	if c.Requires == "" {
		return nil
	}

	constraint, err := semver.NewConstraint(c.Requires)
	if err != nil {
		return fmt.Errorf("%w: component %q has invalid requires %q: %v",
			ErrIncompatibleComponent, c.Name, c.Requires, err)
	}

	v, err := semver.NewVersion(strings.TrimPrefix(scaffolderVersion, "v"))
	if err != nil {
		return nil
	}
	if !constraint.Check(v) {
		return fmt.Errorf("%w: component %q requires %s, running %s",
			ErrIncompatibleComponent, c.Name, c.Requires, v.String())
	}
	return nil
}
