package agent

// Surfacing payload types. Each value names one shape of `{type, source_type,
// source_id, ...}` payload on the surfacing queue and determines how the
// surfacing agent resolves recipients.
const (
	SurfacingIdeaArchived     = "idea_archived"
	SurfacingIdeaLinked       = "idea_linked"
	SurfacingSharedContent    = "shared_content"
	SurfacingActionCompleted  = "action_completed"
	SurfacingObjectiveCreated = "objective_created"
	SurfacingObjectiveUpdated = "objective_updated"
	SurfacingObjectiveRetired = "objective_retired"
	SurfacingSimilarity       = "similarity"
	SurfacingUserInterest     = "user_interest"

	SurfacingNurtureChallengeHint       = "nurture_challenge_hint"
	SurfacingNurtureSimilarFound        = "nurture_similar_found"
	SurfacingNurtureObjectiveSuggestion = "nurture_objective_suggestion"
)
