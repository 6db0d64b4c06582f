// Package concept holds the core terminology model: the Concept entity, the
// immutable Catalog and the TF-IDF similarity index used for fuzzy search.
package concept

import (
	"strconv"
	"strings"

	apperrors "github.com/lexicon-health/lexicon/pkg/errors"
)

// Type classifies a concept by its clinical role.
type Type string

// Concept types.
const (
	TypeDiagnosis  Type = "DIAGNOSIS"
	TypeLabTest    Type = "LAB_TEST"
	TypeMedication Type = "MEDICATION"
	TypeProcedure  Type = "PROCEDURE"
	TypeSymptom    Type = "SYMPTOM"
)

// ParseType converts a raw string into a Type, accepting any casing.
func ParseType(raw string) (Type, error) {
	switch Type(strings.ToUpper(strings.TrimSpace(raw))) {
	case TypeDiagnosis:
		return TypeDiagnosis, nil
	case TypeLabTest:
		return TypeLabTest, nil
	case TypeMedication:
		return TypeMedication, nil
	case TypeProcedure:
		return TypeProcedure, nil
	case TypeSymptom:
		return TypeSymptom, nil
	default:
		return "", apperrors.New(apperrors.ErrCodeValidation, "unknown concept type").
			WithDetail(raw)
	}
}

// Valid reports whether t is one of the defined concept types.
func (t Type) Valid() bool {
	switch t {
	case TypeDiagnosis, TypeLabTest, TypeMedication, TypeProcedure, TypeSymptom:
		return true
	}
	return false
}

// Concept is a single terminology entry: a canonical name, its localized
// display name, and the synonyms and code-system identifiers it is known by.
type Concept struct {
	ID            int64             `json:"id"`
	Name          string            `json:"name"`
	LocalizedName string            `json:"localized_name,omitempty"`
	Type          Type              `json:"type"`
	Synonyms      []string          `json:"synonyms,omitempty"`
	Codes         map[string]string `json:"codes,omitempty"` // code system -> code, e.g. "icd10" -> "A90"
}

// DisplayName returns the localized name when present, the canonical name
// otherwise.  Reasoning text prefers the localized form.
func (c *Concept) DisplayName() string {
	if c.LocalizedName != "" {
		return c.LocalizedName
	}
	return c.Name
}

// SearchText returns the text the similarity index is built over: canonical
// name, localized name and every synonym, space-joined and lower-cased.
func (c *Concept) SearchText() string {
	parts := make([]string, 0, 2+len(c.Synonyms))
	parts = append(parts, c.Name)
	if c.LocalizedName != "" {
		parts = append(parts, c.LocalizedName)
	}
	parts = append(parts, c.Synonyms...)
	return strings.ToLower(strings.Join(parts, " "))
}

// Code returns the concept's code in the given code system, or "" when the
// concept carries no code for that system.  System lookup is case-insensitive.
func (c *Concept) Code(system string) string {
	if len(c.Codes) == 0 {
		return ""
	}
	system = strings.ToLower(system)
	for sys, code := range c.Codes {
		if strings.ToLower(sys) == system {
			return code
		}
	}
	return ""
}

// Validate checks the structural invariants of a concept.
func (c *Concept) Validate() error {
	if c.ID <= 0 {
		return apperrors.New(apperrors.ErrCodeValidation, "concept id must be positive")
	}
	if c.Name == "" {
		return apperrors.New(apperrors.ErrCodeValidation, "concept name must not be empty").
			WithDetail("id=" + strconv.FormatInt(c.ID, 10))
	}
	if !c.Type.Valid() {
		return apperrors.New(apperrors.ErrCodeValidation, "concept type is invalid").
			WithDetail("id=" + strconv.FormatInt(c.ID, 10) + " type=" + string(c.Type))
	}
	return nil
}
