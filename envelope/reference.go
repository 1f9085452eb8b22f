package envelope

import (
	"fmt"
	"strings"
)

// Reference points at an envelope body stored outside the primary channel.
type Reference struct {
	EnvelopeID string
	Container  string
	Location   string
}

// Validate checks that no field contains the CRLF line terminator used by the
// reference text form.
func (r Reference) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"envelope id", r.EnvelopeID},
		{"container", r.Container},
		{"location", r.Location},
	}
	for _, f := range fields {
		if strings.Contains(f.value, "\r\n") {
			return fmt.Errorf("%w: %s contains a line terminator", ErrInvalidReference, f.name)
		}
	}
	return nil
}

func (r Reference) String() string {
	return fmt.Sprintf("%s -> %s/%s", r.EnvelopeID, r.Container, r.Location)
}
