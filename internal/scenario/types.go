package scenario

// Set represents a loaded scenario set with its configuration and scenarios.
type Set struct {
	Name          string `yaml:"name"`
	Description   string `yaml:"description"`
	Version       string `yaml:"version"`
	ScenariosFile string `yaml:"scenarios_file"`

	Scenarios []Scenario `yaml:"-"` // loaded separately from JSON
}

// Turn is one recorded utterance of a prior conversation.
type Turn struct {
	Role string `json:"role"` // "user" or "assistant"
	Text string `json:"text"`
}

// Scenario is a single canned consultation: a domain-tagged question with
// optional prior conversation and an optional reference answer used by the
// rubric. Immutable once loaded.
type Scenario struct {
	ID      string `json:"id"`
	Domain  string `json:"domain"`
	Query   string `json:"query"`
	History []Turn `json:"history,omitempty"`
	// Reference is the ground-truth answer, when one exists.
	Reference string `json:"reference,omitempty"`
	// FocusAreas are keywords a good answer is expected to cover.
	FocusAreas []string `json:"focus_areas,omitempty"`
}
