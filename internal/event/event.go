// Package event defines the typed events that concept actions publish and
// the in-process bus that delivers them to subscribed handlers.
package event

import "context"

// Name identifies an event kind. The string form ("idea.created") is what
// appears in registry files and log lines.
type Name string

const (
	IdeaCreated               Name = "idea.created"
	IdeaUpdated               Name = "idea.updated"
	IdeaArchived              Name = "idea.archived"
	IdeaStructureAdded        Name = "idea.structure_added"
	IdeaLinkedToObjective     Name = "idea.linked_to_objective"
	IdeaUnlinkedFromObjective Name = "idea.unlinked_from_objective"
	SummaryCreated            Name = "summary.created"
	SummaryUpdated            Name = "summary.updated"
	ChallengeCreated          Name = "challenge.created"
	ChallengeUpdated          Name = "challenge.updated"
	ApproachCreated           Name = "approach.created"
	ApproachUpdated           Name = "approach.updated"
	ActionCreated             Name = "action.created"
	ActionUpdated             Name = "action.updated"
	ActionCompleted           Name = "action.completed"
	ObjectiveCreated          Name = "objective.created"
	ObjectiveUpdated          Name = "objective.updated"
	ObjectiveRetired          Name = "objective.retired"
	SessionStarted            Name = "session.started"
	SessionEnded              Name = "session.ended"
	AgentFoundSimilarity      Name = "agent.found_similarity"
	AgentFoundRelevantUser    Name = "agent.found_relevant_user"
	AgentSuggestReconnection  Name = "agent.suggest_reconnection"
	AgentFlagOrphan           Name = "agent.flag_orphan"
)

// AllNames returns every event name in declaration order. The harness uses
// this to tap the full stream.
func AllNames() []Name {
	return []Name{
		IdeaCreated, IdeaUpdated, IdeaArchived, IdeaStructureAdded,
		IdeaLinkedToObjective, IdeaUnlinkedFromObjective,
		SummaryCreated, SummaryUpdated,
		ChallengeCreated, ChallengeUpdated,
		ApproachCreated, ApproachUpdated,
		ActionCreated, ActionUpdated, ActionCompleted,
		ObjectiveCreated, ObjectiveUpdated, ObjectiveRetired,
		SessionStarted, SessionEnded,
		AgentFoundSimilarity, AgentFoundRelevantUser,
		AgentSuggestReconnection, AgentFlagOrphan,
	}
}

// Payload is the tagged-union interface implemented by every event payload.
// Fields returns the payload as snake_case keys for digests, queue payloads
// and structured logging; optional fields that are unset are omitted.
type Payload interface {
	EventName() Name
	Fields() map[string]any
}

// Handler processes one published event. Returning an error marks the
// delivery failed for this handler only; sibling handlers still run.
type Handler func(ctx context.Context, p Payload) error

type IdeaCreatedPayload struct {
	IdeaID   string
	Title    string
	AuthorID string
}

func (p IdeaCreatedPayload) EventName() Name { return IdeaCreated }
func (p IdeaCreatedPayload) Fields() map[string]any {
	return map[string]any{"idea_id": p.IdeaID, "title": p.Title, "author_id": p.AuthorID}
}

type IdeaUpdatedPayload struct {
	IdeaID  string
	Changes map[string]any
}

func (p IdeaUpdatedPayload) EventName() Name { return IdeaUpdated }
func (p IdeaUpdatedPayload) Fields() map[string]any {
	return map[string]any{"idea_id": p.IdeaID, "changes": p.Changes}
}

type IdeaArchivedPayload struct {
	IdeaID string
}

func (p IdeaArchivedPayload) EventName() Name { return IdeaArchived }
func (p IdeaArchivedPayload) Fields() map[string]any {
	return map[string]any{"idea_id": p.IdeaID}
}

type IdeaStructureAddedPayload struct {
	IdeaID string
}

func (p IdeaStructureAddedPayload) EventName() Name { return IdeaStructureAdded }
func (p IdeaStructureAddedPayload) Fields() map[string]any {
	return map[string]any{"idea_id": p.IdeaID}
}

type IdeaLinkedToObjectivePayload struct {
	IdeaID      string
	ObjectiveID string
}

func (p IdeaLinkedToObjectivePayload) EventName() Name { return IdeaLinkedToObjective }
func (p IdeaLinkedToObjectivePayload) Fields() map[string]any {
	return map[string]any{"idea_id": p.IdeaID, "objective_id": p.ObjectiveID}
}

type IdeaUnlinkedFromObjectivePayload struct {
	IdeaID      string
	ObjectiveID string
}

func (p IdeaUnlinkedFromObjectivePayload) EventName() Name { return IdeaUnlinkedFromObjective }
func (p IdeaUnlinkedFromObjectivePayload) Fields() map[string]any {
	return map[string]any{"idea_id": p.IdeaID, "objective_id": p.ObjectiveID}
}

type SummaryCreatedPayload struct {
	SummaryID string
	IdeaID    string
	Content   string
}

func (p SummaryCreatedPayload) EventName() Name { return SummaryCreated }
func (p SummaryCreatedPayload) Fields() map[string]any {
	return map[string]any{"summary_id": p.SummaryID, "idea_id": p.IdeaID, "content": p.Content}
}

type SummaryUpdatedPayload struct {
	SummaryID string
	IdeaID    string
	Content   string
}

func (p SummaryUpdatedPayload) EventName() Name { return SummaryUpdated }
func (p SummaryUpdatedPayload) Fields() map[string]any {
	return map[string]any{"summary_id": p.SummaryID, "idea_id": p.IdeaID, "content": p.Content}
}

type ChallengeCreatedPayload struct {
	ChallengeID string
	IdeaID      string
	Content     string
}

func (p ChallengeCreatedPayload) EventName() Name { return ChallengeCreated }
func (p ChallengeCreatedPayload) Fields() map[string]any {
	return map[string]any{"challenge_id": p.ChallengeID, "idea_id": p.IdeaID, "content": p.Content}
}

type ChallengeUpdatedPayload struct {
	ChallengeID string
	IdeaID      string
	Content     string
}

func (p ChallengeUpdatedPayload) EventName() Name { return ChallengeUpdated }
func (p ChallengeUpdatedPayload) Fields() map[string]any {
	return map[string]any{"challenge_id": p.ChallengeID, "idea_id": p.IdeaID, "content": p.Content}
}

type ApproachCreatedPayload struct {
	ApproachID string
	IdeaID     string
	Content    string
}

func (p ApproachCreatedPayload) EventName() Name { return ApproachCreated }
func (p ApproachCreatedPayload) Fields() map[string]any {
	return map[string]any{"approach_id": p.ApproachID, "idea_id": p.IdeaID, "content": p.Content}
}

type ApproachUpdatedPayload struct {
	ApproachID string
	IdeaID     string
	Content    string
}

func (p ApproachUpdatedPayload) EventName() Name { return ApproachUpdated }
func (p ApproachUpdatedPayload) Fields() map[string]any {
	return map[string]any{"approach_id": p.ApproachID, "idea_id": p.IdeaID, "content": p.Content}
}

type ActionCreatedPayload struct {
	ActionID string
	IdeaID   string
	Content  string
}

func (p ActionCreatedPayload) EventName() Name { return ActionCreated }
func (p ActionCreatedPayload) Fields() map[string]any {
	return map[string]any{"action_id": p.ActionID, "idea_id": p.IdeaID, "content": p.Content}
}

type ActionUpdatedPayload struct {
	ActionID string
	IdeaID   string
	Changes  map[string]any
}

func (p ActionUpdatedPayload) EventName() Name { return ActionUpdated }
func (p ActionUpdatedPayload) Fields() map[string]any {
	return map[string]any{"action_id": p.ActionID, "idea_id": p.IdeaID, "changes": p.Changes}
}

type ActionCompletedPayload struct {
	ActionID string
	IdeaID   string
}

func (p ActionCompletedPayload) EventName() Name { return ActionCompleted }
func (p ActionCompletedPayload) Fields() map[string]any {
	return map[string]any{"action_id": p.ActionID, "idea_id": p.IdeaID}
}

type ObjectiveCreatedPayload struct {
	ObjectiveID string
	Title       string
	AuthorID    string
	ParentID    string // empty for top-level objectives
}

func (p ObjectiveCreatedPayload) EventName() Name { return ObjectiveCreated }
func (p ObjectiveCreatedPayload) Fields() map[string]any {
	f := map[string]any{"objective_id": p.ObjectiveID, "title": p.Title, "author_id": p.AuthorID}
	if p.ParentID != "" {
		f["parent_id"] = p.ParentID
	}
	return f
}

type ObjectiveUpdatedPayload struct {
	ObjectiveID string
	Changes     map[string]any
}

func (p ObjectiveUpdatedPayload) EventName() Name { return ObjectiveUpdated }
func (p ObjectiveUpdatedPayload) Fields() map[string]any {
	return map[string]any{"objective_id": p.ObjectiveID, "changes": p.Changes}
}

type ObjectiveRetiredPayload struct {
	ObjectiveID string
}

func (p ObjectiveRetiredPayload) EventName() Name { return ObjectiveRetired }
func (p ObjectiveRetiredPayload) Fields() map[string]any {
	return map[string]any{"objective_id": p.ObjectiveID}
}

type SessionStartedPayload struct {
	SessionID string
	UserID    string
	IdeaID    string // empty for sessions not attached to an idea
}

func (p SessionStartedPayload) EventName() Name { return SessionStarted }
func (p SessionStartedPayload) Fields() map[string]any {
	f := map[string]any{"session_id": p.SessionID, "user_id": p.UserID}
	if p.IdeaID != "" {
		f["idea_id"] = p.IdeaID
	}
	return f
}

type SessionEndedPayload struct {
	SessionID string
	UserID    string
}

func (p SessionEndedPayload) EventName() Name { return SessionEnded }
func (p SessionEndedPayload) Fields() map[string]any {
	return map[string]any{"session_id": p.SessionID, "user_id": p.UserID}
}

// AgentFoundSimilarityPayload reports one similarity discovery. FromType and
// ToType name the matched content kind (summary, challenge, approach);
// IdeaID and OtherIdeaID identify the owning ideas on each side.
type AgentFoundSimilarityPayload struct {
	FromType    string
	FromID      string
	ToType      string
	ToID        string
	IdeaID      string
	OtherIdeaID string
	Score       float64
}

func (p AgentFoundSimilarityPayload) EventName() Name { return AgentFoundSimilarity }
func (p AgentFoundSimilarityPayload) Fields() map[string]any {
	return map[string]any{
		"from_type":     p.FromType,
		"from_id":       p.FromID,
		"to_type":       p.ToType,
		"to_id":         p.ToID,
		"idea_id":       p.IdeaID,
		"other_idea_id": p.OtherIdeaID,
		"score":         p.Score,
	}
}

type AgentFoundRelevantUserPayload struct {
	UserID string
	IdeaID string
	Score  float64
}

func (p AgentFoundRelevantUserPayload) EventName() Name { return AgentFoundRelevantUser }
func (p AgentFoundRelevantUserPayload) Fields() map[string]any {
	return map[string]any{"user_id": p.UserID, "idea_id": p.IdeaID, "score": p.Score}
}

// AgentSuggestReconnectionPayload proposes re-linking an orphaned idea to an
// active objective. Reason is the human-readable justification shown to
// contributors; the suggestion is advisory and never re-links on its own.
type AgentSuggestReconnectionPayload struct {
	IdeaID      string
	ObjectiveID string
	Score       float64
	Reason      string
}

func (p AgentSuggestReconnectionPayload) EventName() Name { return AgentSuggestReconnection }
func (p AgentSuggestReconnectionPayload) Fields() map[string]any {
	return map[string]any{
		"idea_id":      p.IdeaID,
		"objective_id": p.ObjectiveID,
		"score":        p.Score,
		"reason":       p.Reason,
	}
}

type AgentFlagOrphanPayload struct {
	IdeaID string
}

func (p AgentFlagOrphanPayload) EventName() Name { return AgentFlagOrphan }
func (p AgentFlagOrphanPayload) Fields() map[string]any {
	return map[string]any{"idea_id": p.IdeaID}
}
