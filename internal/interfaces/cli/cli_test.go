package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexicon-health/lexicon/internal/application/cds"
	"github.com/lexicon-health/lexicon/internal/application/terminology"
	"github.com/lexicon-health/lexicon/internal/domain/claim"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSearchCommand_JSON(t *testing.T) {
	out, err := runCommand(t, "search", "dbd", "-o", "json")
	require.NoError(t, err)

	var results []terminology.ScoredConcept
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.NotEmpty(t, results)
	assert.Equal(t, int64(1), results[0].Concept.ID)
}

func TestSearchCommand_Table(t *testing.T) {
	out, err := runCommand(t, "search", "trombosit")
	require.NoError(t, err)
	assert.Contains(t, out, "Platelet Count")
	assert.Contains(t, out, "Total results:")
}

func TestSearchCommand_NoMatches(t *testing.T) {
	out, err := runCommand(t, "search", "xylophone")
	require.NoError(t, err)
	assert.Contains(t, out, "No concepts matched")
}

func TestRecommendCommand(t *testing.T) {
	out, err := runCommand(t, "recommend", "1",
		"--location", "Manado", "--season", "wet", "-o", "json")
	require.NoError(t, err)

	var set cds.RecommendationSet
	require.NoError(t, json.Unmarshal([]byte(out), &set))
	require.Len(t, set.Recommendations, 3)
	assert.Equal(t, int64(2), set.Recommendations[0].Concept.ID)
	assert.InDelta(t, 1.0, set.Recommendations[0].PriorityScore, 1e-9)
}

func TestRecommendCommand_UnknownDiagnosis(t *testing.T) {
	_, err := runCommand(t, "recommend", "99")
	require.Error(t, err)
}

func TestRecommendCommand_NonNumericDiagnosis(t *testing.T) {
	_, err := runCommand(t, "recommend", "dengue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be an integer")
}

func TestResolveCommand(t *testing.T) {
	out, err := runCommand(t, "resolve",
		"--claim-id", "claim-1",
		"--diagnosis-codes", "A90",
		"--location", "Manado",
		"--service-date", "2026-01-15",
		"-o", "json")
	require.NoError(t, err)

	var r claim.Resolution
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, "claim-1", r.ClaimID)
	assert.Equal(t, claim.DecisionManualReview, r.Decision)
	assert.InDelta(t, 0.725, r.ConfidenceScore, 1e-9)
}

func TestResolveCommand_BadServiceDate(t *testing.T) {
	_, err := runCommand(t, "resolve",
		"--claim-id", "claim-1",
		"--diagnosis-codes", "A90",
		"--service-date", "15/01/2026")
	require.Error(t, err)
}

func TestResolveCommand_MissingRequiredFlags(t *testing.T) {
	_, err := runCommand(t, "resolve")
	require.Error(t, err)
}
