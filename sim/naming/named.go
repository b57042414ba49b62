// Package naming gives devices and recorders a printable identity.
package naming

import (
	"errors"
	"fmt"
	"strings"
)

// Named describes an object that has a name.
type Named interface {
	// Name returns the name of the object.
	Name() string
}

// NamedBase is a base implementation of Named.
type NamedBase struct {
	name string
}

// Name returns the name.
func (b NamedBase) Name() string {
	return b.name
}

// MakeNamedBase creates a new NamedBase.
func MakeNamedBase(name string) NamedBase {
	NameMustBeValid(name)
	return NamedBase{name: name}
}

// ValidName returns an error if name is empty or contains white space or
// slashes. Names are used as URL path elements and table keys.
func ValidName(name string) error {
	if name == "" {
		return errors.New("name must not be empty")
	}

	if strings.ContainsAny(name, " \t\n/") {
		return fmt.Errorf("name %q must not contain spaces or slashes", name)
	}

	return nil
}

// NameMustBeValid panics if ValidName rejects name.
func NameMustBeValid(name string) {
	if err := ValidName(name); err != nil {
		panic(err)
	}
}
