package spectrum

import "fmt"

// ConfigurationError reports a bar/threshold/interval combination that cannot
// be mapped onto the FFT output of a track.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("spectrum: invalid %s: %s", e.Field, e.Reason)
}
