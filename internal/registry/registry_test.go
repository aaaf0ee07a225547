package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justingibbs/crabgrass/internal/event"
)

func allKnown(HandlerID) bool { return true }

func TestDefaultRegistryIsComplete(t *testing.T) {
	r := Default()

	// Every agent-facing lifecycle event the system reacts to has an entry.
	for _, name := range []event.Name{
		event.IdeaCreated, event.IdeaUpdated, event.IdeaArchived,
		event.IdeaStructureAdded, event.IdeaLinkedToObjective,
		event.SummaryCreated, event.SummaryUpdated,
		event.ChallengeCreated, event.ChallengeUpdated,
		event.ApproachCreated, event.ApproachUpdated,
		event.ActionCompleted,
		event.ObjectiveCreated, event.ObjectiveUpdated, event.ObjectiveRetired,
		event.AgentFoundSimilarity, event.AgentFoundRelevantUser,
		event.AgentSuggestReconnection, event.AgentFlagOrphan,
	} {
		assert.NotEmpty(t, r.Handlers(name), "no handlers for %s", name)
	}

	require.NoError(t, r.Validate(allKnown))
}

func TestDefaultRegistryWiring(t *testing.T) {
	r := Default()

	assert.Equal(t,
		[]HandlerID{EnqueueConnection, EnqueueNurtureIfSummaryOnly},
		r.Handlers(event.IdeaCreated))
	assert.Equal(t,
		[]HandlerID{EnqueueObjectiveReview, EnqueueSurfacingObjectiveRetired},
		r.Handlers(event.ObjectiveRetired))
	assert.Equal(t,
		[]HandlerID{CreateSimilarityRelationship, EnqueueSurfacingSimilarity},
		r.Handlers(event.AgentFoundSimilarity))
	assert.Equal(t,
		[]HandlerID{CreateInterestRelationship, EnqueueSurfacingUserInterest},
		r.Handlers(event.AgentFoundRelevantUser))

	// Leaving the nascent state, by any route, withdraws the nurture pass.
	assert.Contains(t, r.Handlers(event.IdeaStructureAdded), RemoveFromNurtureQueue)
	assert.Contains(t, r.Handlers(event.IdeaLinkedToObjective), RemoveFromNurtureQueue)
	assert.Contains(t, r.Handlers(event.IdeaArchived), RemoveFromNurtureQueue)

	// A revised summary re-enters the nurture flow while still nascent.
	assert.Contains(t, r.Handlers(event.SummaryUpdated), EnqueueNurtureCheck)
}

func TestHandlersForUnregisteredEvent(t *testing.T) {
	r := Default()
	assert.Nil(t, r.Handlers(event.SessionStarted))
}

func TestNewRejectsDuplicateEvents(t *testing.T) {
	_, err := New([]Entry{
		{event.IdeaCreated, []HandlerID{EnqueueConnection}},
		{event.IdeaCreated, []HandlerID{EnqueueNurture}},
	})
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
}

func TestValidateCollectsAllProblems(t *testing.T) {
	r, err := New([]Entry{
		{event.Name("idea.exploded"), []HandlerID{EnqueueConnection}},
		{event.IdeaCreated, []HandlerID{HandlerID("send_carrier_pigeon"), HandlerID("page_oncall")}},
		{event.IdeaArchived, nil},
	})
	require.NoError(t, err)

	err = r.Validate(func(h HandlerID) bool { return h == EnqueueConnection })
	require.Error(t, err)

	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Len(t, ce.Problems, 4)
	assert.Contains(t, err.Error(), "idea.exploded")
	assert.Contains(t, err.Error(), "send_carrier_pigeon")
	assert.Contains(t, err.Error(), "page_oncall")
	assert.Contains(t, err.Error(), "no handlers")
}

func TestEntriesPreserveDeclarationOrder(t *testing.T) {
	r, err := New([]Entry{
		{event.ObjectiveRetired, []HandlerID{EnqueueObjectiveReview}},
		{event.IdeaCreated, []HandlerID{EnqueueConnection}},
	})
	require.NoError(t, err)

	assert.Equal(t, []event.Name{event.ObjectiveRetired, event.IdeaCreated}, r.Events())
}
