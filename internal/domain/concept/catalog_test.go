package concept

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lexicon-health/lexicon/pkg/errors"
)

func sampleConcepts() []Concept {
	return []Concept{
		{
			ID:            1,
			Name:          "Dengue Fever",
			LocalizedName: "Demam Berdarah Dengue",
			Type:          TypeDiagnosis,
			Synonyms:      []string{"DBD", "Demam Denggi", "Dengue"},
			Codes:         map[string]string{"icd10": "A90"},
		},
		{
			ID:            2,
			Name:          "Complete Blood Count",
			LocalizedName: "Pemeriksaan Darah Lengkap",
			Type:          TypeLabTest,
			Synonyms:      []string{"CBC", "DL", "Darah Lengkap"},
			Codes:         map[string]string{"loinc": "58410-2"},
		},
		{
			ID:            3,
			Name:          "Paracetamol",
			LocalizedName: "Parasetamol",
			Type:          TypeMedication,
			Synonyms:      []string{"Panadol", "Acetaminophen", "Sanmol"},
		},
		{
			ID:            4,
			Name:          "Platelet Count",
			LocalizedName: "Hitung Trombosit",
			Type:          TypeLabTest,
			Synonyms:      []string{"PLT", "Trombosit"},
		},
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		raw     string
		want    Type
		wantErr bool
	}{
		{"DIAGNOSIS", TypeDiagnosis, false},
		{"lab_test", TypeLabTest, false},
		{" Medication ", TypeMedication, false},
		{"procedure", TypeProcedure, false},
		{"SYMPTOM", TypeSymptom, false},
		{"vital_sign", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseType(tt.raw)
		if tt.wantErr {
			assert.Error(t, err, tt.raw)
			continue
		}
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got)
	}
}

func TestConceptSearchText(t *testing.T) {
	c := &Concept{Name: "Dengue Fever", LocalizedName: "Demam Berdarah Dengue", Synonyms: []string{"DBD"}}
	assert.Equal(t, "dengue fever demam berdarah dengue dbd", c.SearchText())

	noSyn := &Concept{Name: "Paracetamol"}
	assert.Equal(t, "paracetamol", noSyn.SearchText())
}

func TestConceptDisplayName(t *testing.T) {
	c := &Concept{Name: "Platelet Count", LocalizedName: "Hitung Trombosit"}
	assert.Equal(t, "Hitung Trombosit", c.DisplayName())
	assert.Equal(t, "Platelet Count", (&Concept{Name: "Platelet Count"}).DisplayName())
}

func TestConceptCode(t *testing.T) {
	c := &Concept{Codes: map[string]string{"ICD10": "A90"}}
	assert.Equal(t, "A90", c.Code("icd10"))
	assert.Equal(t, "", c.Code("loinc"))
	assert.Equal(t, "", (&Concept{}).Code("icd10"))
}

func TestNewCatalog(t *testing.T) {
	cat, err := NewCatalog(sampleConcepts())
	require.NoError(t, err)
	assert.Equal(t, 4, cat.Len())

	got, err := cat.Get(2)
	require.NoError(t, err)
	assert.Equal(t, "Complete Blood Count", got.Name)

	_, err = cat.Get(99)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestNewCatalog_Empty(t *testing.T) {
	_, err := NewCatalog(nil)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeCatalogEmpty))
}

func TestNewCatalog_DuplicateID(t *testing.T) {
	concepts := sampleConcepts()
	concepts[1].ID = concepts[0].ID
	_, err := NewCatalog(concepts)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeConflict))
}

func TestNewCatalog_InvalidConcept(t *testing.T) {
	concepts := sampleConcepts()
	concepts[2].Type = "POTION"
	_, err := NewCatalog(concepts)
	assert.True(t, apperrors.IsValidation(err))
}

func TestCatalogConcepts_IsCopy(t *testing.T) {
	cat, err := NewCatalog(sampleConcepts())
	require.NoError(t, err)

	out := cat.Concepts()
	out[0].Name = "mutated"

	got, err := cat.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "Dengue Fever", got.Name)
}
