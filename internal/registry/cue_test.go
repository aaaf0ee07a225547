package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justingibbs/crabgrass/internal/event"
)

func TestCompileCUEBasicRegistry(t *testing.T) {
	src := []byte(`
synchronizations: {
	"idea.created": ["enqueue_connection", "enqueue_nurture_if_summary_only"]
	"idea.archived": ["remove_from_connection_queue"]
}
`)
	r, err := CompileCUE("registry.cue", src)
	require.NoError(t, err)

	assert.Equal(t, []event.Name{event.IdeaCreated, event.IdeaArchived}, r.Events())
	assert.Equal(t,
		[]HandlerID{EnqueueConnection, EnqueueNurtureIfSummaryOnly},
		r.Handlers(event.IdeaCreated))
}

func TestCompileCUEMissingSynchronizations(t *testing.T) {
	_, err := CompileCUE("registry.cue", []byte(`wiring: {}`))
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
	assert.Contains(t, err.Error(), "synchronizations")
}

func TestCompileCUEUnknownEvent(t *testing.T) {
	src := []byte(`
synchronizations: {
	"idea.vanished": ["enqueue_connection"]
}
`)
	_, err := CompileCUE("registry.cue", src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "idea.vanished")
	assert.Contains(t, err.Error(), "registry.cue")
}

func TestCompileCUERejectsNonListHandlers(t *testing.T) {
	src := []byte(`
synchronizations: {
	"idea.created": "enqueue_connection"
}
`)
	_, err := CompileCUE("registry.cue", src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a list")
}

func TestCompileCUERejectsEmptyHandlerList(t *testing.T) {
	src := []byte(`
synchronizations: {
	"idea.created": []
}
`)
	_, err := CompileCUE("registry.cue", src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no handlers")
}

func TestCompileCUESyntaxErrorCarriesPosition(t *testing.T) {
	_, err := CompileCUE("registry.cue", []byte(`synchronizations: {`))
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
}
