package snapshot

import (
	"context"

	"github.com/lexicon-health/lexicon/internal/domain/clinical"
	"github.com/lexicon-health/lexicon/internal/domain/concept"
)

// SampleSource serves the built-in demo dataset: a small dengue-fever
// vocabulary for Indonesian primary care.  It backs the "sample" snapshot
// source and lets the service run with zero external infrastructure.
type SampleSource struct{}

// NewSampleSource creates the built-in demo source.
func NewSampleSource() *SampleSource {
	return &SampleSource{}
}

// Load returns a fresh copy of the sample dataset.
func (s *SampleSource) Load(_ context.Context) (*Data, error) {
	return SampleData(), nil
}

// SampleData returns the demo dataset.  Callers own the returned value; it is
// rebuilt on every call so mutation cannot leak between loads.
func SampleData() *Data {
	return &Data{
		Concepts: []concept.Concept{
			{
				ID:            1,
				Name:          "Dengue Fever",
				LocalizedName: "Demam Berdarah Dengue",
				Type:          concept.TypeDiagnosis,
				Synonyms:      []string{"DBD", "Demam Denggi", "Dengue"},
				Codes:         map[string]string{"icd10": "A90"},
			},
			{
				ID:            2,
				Name:          "Complete Blood Count",
				LocalizedName: "Pemeriksaan Darah Lengkap",
				Type:          concept.TypeLabTest,
				Synonyms:      []string{"CBC", "DL", "Darah Lengkap"},
				Codes:         map[string]string{"loinc": "58410-2"},
			},
			{
				ID:            3,
				Name:          "Paracetamol",
				LocalizedName: "Parasetamol",
				Type:          concept.TypeMedication,
				Synonyms:      []string{"Panadol", "Acetaminophen", "Sanmol"},
			},
			{
				ID:            4,
				Name:          "Platelet Count",
				LocalizedName: "Hitung Trombosit",
				Type:          concept.TypeLabTest,
				Synonyms:      []string{"PLT", "Trombosit"},
			},
		},
		Relationships: []clinical.Relationship{
			{
				SourceID:      1,
				TargetID:      2,
				Type:          clinical.RelationHasDiagnosticTest,
				BasePriority:  0.98,
				ContextBoosts: map[string]float64{"Manado_WET": 0.15},
			},
			{
				SourceID:      1,
				TargetID:      3,
				Type:          clinical.RelationHasTreatment,
				BasePriority:  0.85,
				ContextBoosts: map[string]float64{"Jakarta_DRY": 0.10},
			},
			{
				SourceID:      1,
				TargetID:      4,
				Type:          clinical.RelationHasDiagnosticTest,
				BasePriority:  0.95,
				ContextBoosts: map[string]float64{"WET": 0.20},
			},
		},
	}
}
