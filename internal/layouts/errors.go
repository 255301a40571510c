package layouts

import (
	"fmt"
	"strings"
)

// UnknownLayoutError is returned when a layout name is not registered.
type UnknownLayoutError struct {
	Name  string
	Known []string
}

func (e *UnknownLayoutError) Error() string {
	return fmt.Sprintf("unknown layout %q (available: %s)", e.Name, strings.Join(e.Known, ", "))
}

// UnknownThemeError is returned when a theme name is not registered.
type UnknownThemeError struct {
	Name  string
	Known []string
}

func (e *UnknownThemeError) Error() string {
	return fmt.Sprintf("unknown theme %q (available: %s)", e.Name, strings.Join(e.Known, ", "))
}
