package errs

import "fmt"

// UnicornError is raised by the unicorn endpoint for the name "yolo" and is
// rendered by its own registered error handler.
type UnicornError struct {
	Name string
}

func (e *UnicornError) Error() string {
	return fmt.Sprintf("unicorn %q misbehaved", e.Name)
}

func (e *UnicornError) Message() string {
	return fmt.Sprintf("Oops! %s did something. There goes a rainbow...", e.Name)
}
