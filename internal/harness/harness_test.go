package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioNurturePrompt(t *testing.T) {
	RunWithGolden(t, "testdata/scenarios/nurture_prompt.yaml")
}

func TestScenarioChallengeSimilarity(t *testing.T) {
	RunWithGolden(t, "testdata/scenarios/challenge_similarity.yaml")
}

func TestScenarioObjectiveReview(t *testing.T) {
	RunWithGolden(t, "testdata/scenarios/objective_review.yaml")
}

func TestLoadScenarioRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: x\nsteps: []\nsurprise: true\n"), 0o644))

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "surprise")
}

func TestLoadScenarioRequiresNameAndSteps(t *testing.T) {
	dir := t.TempDir()

	noName := filepath.Join(dir, "noname.yaml")
	require.NoError(t, os.WriteFile(noName, []byte("steps:\n  - action: run_agent\n"), 0o644))
	_, err := LoadScenario(noName)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")

	noSteps := filepath.Join(dir, "nosteps.yaml")
	require.NoError(t, os.WriteFile(noSteps, []byte("name: empty\n"), 0o644))
	_, err = LoadScenario(noSteps)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "steps are required")
}

func TestRunRejectsUnknownAction(t *testing.T) {
	s := &Scenario{
		Name:  "bad-action",
		Steps: []Step{{Action: "summon_kraken"}},
	}
	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "summon_kraken")
}

func TestVerifyReportsEveryFailure(t *testing.T) {
	s := &Scenario{
		Name: "verify-failures",
		Steps: []Step{
			{Action: "create_user", As: "ada", Args: map[string]any{
				"name": "Ada", "email": "ada@example.com", "role": "Frontline",
			}},
		},
	}
	r, err := Run(s)
	require.NoError(t, err)
	defer r.Close()

	err = r.Verify([]Assertion{
		{Type: "event_count", Event: "idea.created", Count: 3},
		{Type: "relationship_count", Count: 7},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want 3, got 0")
	assert.Contains(t, err.Error(), "want 7, got 0")
}

func TestResolveLeavesLiteralsAlone(t *testing.T) {
	r := &Result{refs: map[string]string{"ada": "id-1"}}
	assert.Equal(t, "id-1", r.resolve("$ada"))
	assert.Equal(t, "plain", r.resolve("plain"))
	assert.Equal(t, "$missing", r.resolve("$missing"))
}
