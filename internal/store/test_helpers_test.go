package store

import (
	"context"
	"path/filepath"
	"testing"
)

// createTestStore creates a fresh on-disk store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestIdea(t *testing.T, s *Store, ideaID, summaryID, authorID string) {
	t.Helper()
	idea := Idea{ID: ideaID, Title: "Idea " + ideaID, Status: IdeaStatusDraft, AuthorID: authorID}
	summary := Summary{ID: summaryID, IdeaID: ideaID, Content: "Summary for " + ideaID}
	if err := s.CreateIdeaWithSummary(context.Background(), idea, summary); err != nil {
		t.Fatalf("CreateIdeaWithSummary() failed: %v", err)
	}
}
