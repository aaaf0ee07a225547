package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a declarative end-to-end test: a sequence of concept actions
// and agent passes run against a fresh in-memory stack, with assertions on
// the resulting events, queues, and notifications.
type Scenario struct {
	// Name uniquely identifies the scenario; it names the golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario demonstrates.
	Description string `yaml:"description,omitempty"`

	// Steps run in order. See Step for the action vocabulary.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state after all steps ran.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one scenario action. Args values of the form "$alias" are
// replaced by the id captured under that alias by an earlier step's `as`.
type Step struct {
	// Action names the operation: create_user, watch, create_idea,
	// update_idea, archive_idea, update_summary, create_challenge,
	// create_approach, create_action, complete_action, create_objective,
	// retire_objective, link, unlink, start_session, end_session,
	// run_agent.
	Action string `yaml:"action"`

	// As captures the id the step produced for later "$alias" references.
	As string `yaml:"as,omitempty"`

	// Args are the action's arguments.
	Args map[string]any `yaml:"args,omitempty"`
}

// Assertion checks the final state of a run.
type Assertion struct {
	// Type selects the check: event_count, queue_count,
	// notification_count, relationship_count.
	Type string `yaml:"type"`

	// Event names the event for event_count.
	Event string `yaml:"event,omitempty"`

	// Queue and Status select the lane for queue_count.
	Queue  string `yaml:"queue,omitempty"`
	Status string `yaml:"status,omitempty"`

	// User (an alias reference) and NotificationType narrow
	// notification_count.
	User             string `yaml:"user,omitempty"`
	NotificationType string `yaml:"notification_type,omitempty"`

	// Count is the expected number in every check.
	Count int `yaml:"count"`
}

// LoadScenario reads one scenario from a YAML file. Unknown keys are
// rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("scenario %s: name is required", path)
	}
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s: steps are required", path)
	}
	return &s, nil
}
