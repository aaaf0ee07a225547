// Package registry declares the event-to-handler wiring. The wiring is
// data, not code: an ordered list of (event, handlers) entries that the
// dispatcher resolves against the handler table at startup. Changing what
// reacts to what means editing the registry, never the concepts.
package registry

import (
	"fmt"

	"github.com/justingibbs/crabgrass/internal/event"
)

// HandlerID names a handler in the dispatcher's table.
type HandlerID string

const (
	// Queue routing
	EnqueueConnection           HandlerID = "enqueue_connection"
	EnqueueNurture              HandlerID = "enqueue_nurture"
	EnqueueNurtureCheck         HandlerID = "enqueue_nurture_check"
	EnqueueNurtureIfSummaryOnly HandlerID = "enqueue_nurture_if_summary_only"
	RemoveFromConnectionQueue   HandlerID = "remove_from_connection_queue"
	RemoveFromNurtureQueue      HandlerID = "remove_from_nurture_queue"
	EnqueueObjectiveReview      HandlerID = "enqueue_objective_review"

	// Embeddings
	GenerateSummaryEmbedding   HandlerID = "generate_summary_embedding"
	GenerateChallengeEmbedding HandlerID = "generate_challenge_embedding"
	GenerateApproachEmbedding  HandlerID = "generate_approach_embedding"
	GenerateObjectiveEmbedding HandlerID = "generate_objective_embedding"

	// Surfacing lane
	EnqueueSurfacingIdeaArchived     HandlerID = "enqueue_surfacing_idea_archived"
	EnqueueSurfacingIdeaLinked       HandlerID = "enqueue_surfacing_idea_linked"
	EnqueueSurfacingSharedContent    HandlerID = "enqueue_surfacing_shared_content"
	EnqueueSurfacingActionCompleted  HandlerID = "enqueue_surfacing_action_completed"
	EnqueueSurfacingObjectiveCreated HandlerID = "enqueue_surfacing_objective_created"
	EnqueueSurfacingObjectiveUpdated HandlerID = "enqueue_surfacing_objective_updated"
	EnqueueSurfacingObjectiveRetired HandlerID = "enqueue_surfacing_objective_retired"
	EnqueueSurfacingSimilarity       HandlerID = "enqueue_surfacing_similarity"
	EnqueueSurfacingUserInterest     HandlerID = "enqueue_surfacing_user_interest"

	// Agent discoveries
	CreateSimilarityRelationship   HandlerID = "create_similarity_relationship"
	CreateInterestRelationship     HandlerID = "create_interest_relationship"
	CreateReconnectionNotification HandlerID = "create_reconnection_notification"
	CreateOrphanNotification       HandlerID = "create_orphan_notification"
)

// Entry binds one event to its handlers. Handler order is execution order.
type Entry struct {
	Event    event.Name
	Handlers []HandlerID
}

// Registry is an ordered set of entries. Order matters twice: entries are
// wired in declaration order, and handlers within an entry run in listed
// order.
type Registry struct {
	entries []Entry
	index   map[event.Name]int
}

// New builds a registry from entries. A duplicate event name is a
// configuration error.
func New(entries []Entry) (*Registry, error) {
	r := &Registry{
		entries: entries,
		index:   make(map[event.Name]int, len(entries)),
	}
	var problems []string
	for i, e := range entries {
		if _, dup := r.index[e.Event]; dup {
			problems = append(problems, fmt.Sprintf("duplicate entry for event %q", e.Event))
			continue
		}
		r.index[e.Event] = i
	}
	if len(problems) > 0 {
		return nil, NewConfigurationError(problems)
	}
	return r, nil
}

// Entries returns the wiring in declaration order.
func (r *Registry) Entries() []Entry { return r.entries }

// Handlers returns the handler ids wired to name, nil when the event has no
// entry.
func (r *Registry) Handlers(name event.Name) []HandlerID {
	i, ok := r.index[name]
	if !ok {
		return nil
	}
	return r.entries[i].Handlers
}

// Events returns every event name that has an entry, in declaration order.
func (r *Registry) Events() []event.Name {
	names := make([]event.Name, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Event
	}
	return names
}

// Validate checks every referenced handler against known and every event
// name against the event table. All problems are collected into a single
// ConfigurationError so a bad registry fails loudly once, not one problem
// per restart.
func (r *Registry) Validate(known func(HandlerID) bool) error {
	valid := make(map[event.Name]bool, len(event.AllNames()))
	for _, n := range event.AllNames() {
		valid[n] = true
	}

	var problems []string
	for _, e := range r.entries {
		if !valid[e.Event] {
			problems = append(problems, fmt.Sprintf("unknown event %q", e.Event))
		}
		if len(e.Handlers) == 0 {
			problems = append(problems, fmt.Sprintf("event %q has no handlers", e.Event))
		}
		for _, h := range e.Handlers {
			if !known(h) {
				problems = append(problems, fmt.Sprintf("event %q references unknown handler %q", e.Event, h))
			}
		}
	}
	if len(problems) > 0 {
		return NewConfigurationError(problems)
	}
	return nil
}

// Default returns the production wiring.
func Default() *Registry {
	r, err := New([]Entry{
		{event.IdeaCreated, []HandlerID{EnqueueConnection, EnqueueNurtureIfSummaryOnly}},
		{event.IdeaUpdated, []HandlerID{EnqueueNurtureCheck}},
		{event.IdeaArchived, []HandlerID{RemoveFromConnectionQueue, RemoveFromNurtureQueue, EnqueueSurfacingIdeaArchived}},
		{event.IdeaStructureAdded, []HandlerID{RemoveFromNurtureQueue}},
		{event.IdeaLinkedToObjective, []HandlerID{EnqueueSurfacingIdeaLinked, RemoveFromNurtureQueue}},
		{event.SummaryCreated, []HandlerID{GenerateSummaryEmbedding, EnqueueNurture}},
		{event.SummaryUpdated, []HandlerID{GenerateSummaryEmbedding, EnqueueConnection, EnqueueNurtureCheck}},
		{event.ChallengeCreated, []HandlerID{GenerateChallengeEmbedding, EnqueueConnection}},
		{event.ChallengeUpdated, []HandlerID{GenerateChallengeEmbedding, EnqueueSurfacingSharedContent}},
		{event.ApproachCreated, []HandlerID{GenerateApproachEmbedding, EnqueueConnection}},
		{event.ApproachUpdated, []HandlerID{GenerateApproachEmbedding, EnqueueSurfacingSharedContent}},
		{event.ActionCompleted, []HandlerID{EnqueueSurfacingActionCompleted}},
		{event.ObjectiveCreated, []HandlerID{GenerateObjectiveEmbedding, EnqueueSurfacingObjectiveCreated}},
		{event.ObjectiveUpdated, []HandlerID{GenerateObjectiveEmbedding, EnqueueSurfacingObjectiveUpdated}},
		{event.ObjectiveRetired, []HandlerID{EnqueueObjectiveReview, EnqueueSurfacingObjectiveRetired}},
		{event.AgentFoundSimilarity, []HandlerID{CreateSimilarityRelationship, EnqueueSurfacingSimilarity}},
		{event.AgentFoundRelevantUser, []HandlerID{CreateInterestRelationship, EnqueueSurfacingUserInterest}},
		{event.AgentSuggestReconnection, []HandlerID{CreateReconnectionNotification}},
		{event.AgentFlagOrphan, []HandlerID{CreateOrphanNotification}},
	})
	if err != nil {
		panic(err) // the default wiring is statically well-formed
	}
	return r
}
