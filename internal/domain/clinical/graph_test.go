package clinical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexicon-health/lexicon/internal/domain/concept"
	apperrors "github.com/lexicon-health/lexicon/pkg/errors"
)

func dengueCatalog(t *testing.T) *concept.Catalog {
	t.Helper()
	cat, err := concept.NewCatalog([]concept.Concept{
		{ID: 1, Name: "Dengue Fever", LocalizedName: "Demam Berdarah Dengue", Type: concept.TypeDiagnosis, Synonyms: []string{"DBD", "Demam Denggi", "Dengue"}},
		{ID: 2, Name: "Complete Blood Count", LocalizedName: "Pemeriksaan Darah Lengkap", Type: concept.TypeLabTest, Synonyms: []string{"CBC", "DL", "Darah Lengkap"}},
		{ID: 3, Name: "Paracetamol", LocalizedName: "Parasetamol", Type: concept.TypeMedication, Synonyms: []string{"Panadol", "Acetaminophen", "Sanmol"}},
		{ID: 4, Name: "Platelet Count", LocalizedName: "Hitung Trombosit", Type: concept.TypeLabTest, Synonyms: []string{"PLT", "Trombosit"}},
	})
	require.NoError(t, err)
	return cat
}

func dengueRelationships() []Relationship {
	return []Relationship{
		{SourceID: 1, TargetID: 2, Type: RelationHasDiagnosticTest, BasePriority: 0.98, ContextBoosts: map[string]float64{"Manado_WET": 0.15}},
		{SourceID: 1, TargetID: 3, Type: RelationHasTreatment, BasePriority: 0.85, ContextBoosts: map[string]float64{"Jakarta_DRY": 0.10}},
		{SourceID: 1, TargetID: 4, Type: RelationHasDiagnosticTest, BasePriority: 0.95, ContextBoosts: map[string]float64{"WET": 0.20}},
	}
}

func dengueGraph(t *testing.T) *Graph {
	t.Helper()
	g, err := NewGraph(dengueRelationships(), dengueCatalog(t))
	require.NoError(t, err)
	return g
}

func TestParseRelationType(t *testing.T) {
	got, err := ParseRelationType("has_treatment")
	require.NoError(t, err)
	assert.Equal(t, RelationHasTreatment, got)

	_, err = ParseRelationType("CURES")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeRelationInvalid))
}

func TestNewGraph(t *testing.T) {
	g := dengueGraph(t)
	assert.Equal(t, 3, g.Len())
	assert.Len(t, g.Relations(1), 3)
	assert.Empty(t, g.Relations(2))
	assert.Empty(t, g.Relations(99))
}

func TestNewGraph_Rejections(t *testing.T) {
	cat := dengueCatalog(t)
	tests := []struct {
		name string
		rel  Relationship
	}{
		{"unknown source", Relationship{SourceID: 99, TargetID: 2, Type: RelationHasTreatment, BasePriority: 0.5}},
		{"unknown target", Relationship{SourceID: 1, TargetID: 99, Type: RelationHasTreatment, BasePriority: 0.5}},
		{"bad type", Relationship{SourceID: 1, TargetID: 2, Type: "CURES", BasePriority: 0.5}},
		{"priority above one", Relationship{SourceID: 1, TargetID: 2, Type: RelationHasTreatment, BasePriority: 1.2}},
		{"priority below zero", Relationship{SourceID: 1, TargetID: 2, Type: RelationHasTreatment, BasePriority: -0.1}},
		{"zero ids", Relationship{Type: RelationHasTreatment, BasePriority: 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGraph([]Relationship{tt.rel}, cat)
			assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeRelationInvalid))
		})
	}
}

func TestRelationshipBoost(t *testing.T) {
	rel := Relationship{ContextBoosts: map[string]float64{"Manado_WET": 0.15, "WET": 0.05}}

	// Exact location+season match wins over the bare-season fallback.
	assert.InDelta(t, 0.15, rel.boost(Context{Location: "Manado", Season: SeasonWet}), 1e-9)
	assert.InDelta(t, 0.05, rel.boost(Context{Location: "Jakarta", Season: SeasonWet}), 1e-9)
	assert.InDelta(t, 0.05, rel.boost(Context{Season: SeasonWet}), 1e-9)
	assert.Zero(t, rel.boost(Context{Location: "Jakarta", Season: SeasonDry}))
	assert.Zero(t, rel.boost(Context{}))
	assert.Zero(t, Relationship{}.boost(Context{Season: SeasonWet}))
}

func TestSeasonForMonth(t *testing.T) {
	wet := []int{11, 12, 1, 2, 3, 4}
	for _, m := range wet {
		assert.Equal(t, SeasonWet, SeasonForMonth(m, wet), m)
	}
	for _, m := range []int{5, 6, 7, 8, 9, 10} {
		assert.Equal(t, SeasonDry, SeasonForMonth(m, wet), m)
	}
}

func TestContextKey(t *testing.T) {
	assert.Equal(t, "Manado_WET", Context{Location: "Manado", Season: SeasonWet}.Key())
	assert.Equal(t, "_WET", Context{Season: SeasonWet}.Key())
	assert.Equal(t, "_", Context{}.Key())
}
