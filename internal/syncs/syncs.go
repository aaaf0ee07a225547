// Package syncs binds handler names from the registry to executable
// handlers. Handlers react to events by feeding queues, maintaining
// embeddings, and writing discovery artifacts; they never publish events of
// their own.
package syncs

import (
	"log/slog"

	"github.com/justingibbs/crabgrass/internal/agent"
	"github.com/justingibbs/crabgrass/internal/event"
	"github.com/justingibbs/crabgrass/internal/id"
	"github.com/justingibbs/crabgrass/internal/queue"
	"github.com/justingibbs/crabgrass/internal/registry"
	"github.com/justingibbs/crabgrass/internal/store"
)

// Handlers carries the dependencies every handler shares. One instance
// serves the whole registry.
type Handlers struct {
	store    *store.Store
	queues   *queue.Queues
	embedder agent.EmbeddingProvider
	ids      id.Generator
	logger   *slog.Logger
}

// NewHandlers builds the handler set. A nil gen falls back to UUIDv7, a
// nil logger to slog.Default().
func NewHandlers(st *store.Store, q *queue.Queues, embedder agent.EmbeddingProvider, gen id.Generator, logger *slog.Logger) *Handlers {
	if gen == nil {
		gen = id.NewUUIDv7Generator()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{store: st, queues: q, embedder: embedder, ids: gen, logger: logger}
}

// Table maps every known handler id to its implementation. The dispatcher
// validates registries against this table before wiring.
func (h *Handlers) Table() map[registry.HandlerID]event.Handler {
	return map[registry.HandlerID]event.Handler{
		registry.EnqueueConnection:           h.enqueueConnection,
		registry.EnqueueNurture:              h.enqueueNurture,
		registry.EnqueueNurtureCheck:         h.enqueueNurtureCheck,
		registry.EnqueueNurtureIfSummaryOnly: h.enqueueNurtureIfSummaryOnly,
		registry.RemoveFromConnectionQueue:   h.removeFromConnectionQueue,
		registry.RemoveFromNurtureQueue:      h.removeFromNurtureQueue,
		registry.EnqueueObjectiveReview:      h.enqueueObjectiveReview,

		registry.GenerateSummaryEmbedding:   h.generateSummaryEmbedding,
		registry.GenerateChallengeEmbedding: h.generateChallengeEmbedding,
		registry.GenerateApproachEmbedding:  h.generateApproachEmbedding,
		registry.GenerateObjectiveEmbedding: h.generateObjectiveEmbedding,

		registry.EnqueueSurfacingIdeaArchived:     h.enqueueSurfacingIdeaArchived,
		registry.EnqueueSurfacingIdeaLinked:       h.enqueueSurfacingIdeaLinked,
		registry.EnqueueSurfacingSharedContent:    h.enqueueSurfacingSharedContent,
		registry.EnqueueSurfacingActionCompleted:  h.enqueueSurfacingActionCompleted,
		registry.EnqueueSurfacingObjectiveCreated: h.enqueueSurfacingObjectiveCreated,
		registry.EnqueueSurfacingObjectiveUpdated: h.enqueueSurfacingObjectiveUpdated,
		registry.EnqueueSurfacingObjectiveRetired: h.enqueueSurfacingObjectiveRetired,
		registry.EnqueueSurfacingSimilarity:       h.enqueueSurfacingSimilarity,
		registry.EnqueueSurfacingUserInterest:     h.enqueueSurfacingUserInterest,

		registry.CreateSimilarityRelationship:   h.createSimilarityRelationship,
		registry.CreateInterestRelationship:     h.createInterestRelationship,
		registry.CreateReconnectionNotification: h.createReconnectionNotification,
		registry.CreateOrphanNotification:       h.createOrphanNotification,
	}
}

// str pulls a string field out of a payload, "" when absent. Handlers read
// payloads through Fields so a registry override can rewire them onto any
// event that carries the fields they need.
func str(p event.Payload, key string) string {
	v, _ := p.Fields()[key].(string)
	return v
}

func num(p event.Payload, key string) float64 {
	v, _ := p.Fields()[key].(float64)
	return v
}
