package session

import (
	"fmt"
	"regexp"
)

const maxNameLen = 64

var namePattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// ValidateName checks that a session name is safe to use as a directory
// component: lowercase alphanumerics, dash and underscore only.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("session name is empty")
	}
	if len(name) > maxNameLen {
		return fmt.Errorf("session name %q exceeds %d characters", name, maxNameLen)
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("session name %q may only contain [a-z0-9_-]", name)
	}
	return nil
}
