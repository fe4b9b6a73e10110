package visualizer

// Visualizer renders normalized bar heights as text.
type Visualizer interface {
	Name() string
	// Update takes one height per bar, each in [0, 1].
	Update(bars []float64, width, height int)
	View() string
}

// Modes returns all available visualizers.
func Modes() []Visualizer {
	return []Visualizer{
		NewBarChart(),
		NewMirror(),
		NewWaterfall(),
	}
}

// ModeIndex returns the index in Modes of the visualizer called name, or 0.
func ModeIndex(name string) int {
	for i, v := range Modes() {
		if v.Name() == name {
			return i
		}
	}
	return 0
}

// ModeNames lists the names of all visualizers in Modes order.
func ModeNames() []string {
	modes := Modes()
	names := make([]string, len(modes))
	for i, v := range modes {
		names[i] = v.Name()
	}
	return names
}
