package terminology

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/lexicon-health/lexicon/internal/domain/claim"
	"github.com/lexicon-health/lexicon/internal/snapshot"
	apperrors "github.com/lexicon-health/lexicon/pkg/errors"
)

// Client talks to an external terminology service over HTTP.  It implements
// both claim.CodeMapper and claim.TreatmentValidator; the remote service
// returns concept ids, which are resolved against the active snapshot so the
// pipeline always works with catalog-owned concepts.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	store   *snapshot.Store
}

// NewClient creates a terminology service client.
func NewClient(baseURL, apiKey string, timeout time.Duration, store *snapshot.Store) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		store:   store,
	}
}

type mappingResponse struct {
	ConceptID  int64   `json:"concept_id"`
	Confidence float64 `json:"confidence"`
}

// MapCode implements claim.CodeMapper via
// GET {base}/api/v1/mappings/{system}/{code}.
func (c *Client) MapCode(ctx context.Context, system, code string) (*claim.Mapping, error) {
	snap := c.store.Current()
	if snap == nil {
		return nil, apperrors.New(apperrors.ErrCodeMapperUnavailable, "no snapshot loaded")
	}

	endpoint := fmt.Sprintf("%s/api/v1/mappings/%s/%s",
		c.baseURL, url.PathEscape(system), url.PathEscape(code))

	var resp mappingResponse
	if err := c.get(ctx, endpoint, &resp); err != nil {
		return nil, err
	}

	resolved, err := snap.Catalog.Get(resp.ConceptID)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeMappingNotFound, "mapped concept is not in the catalog").
			WithDetail(strconv.FormatInt(resp.ConceptID, 10))
	}
	return &claim.Mapping{Concept: resolved, Confidence: resp.Confidence}, nil
}

type validationRequest struct {
	DiagnosisID     int64    `json:"diagnosis_id"`
	ProcedureCodes  []string `json:"procedure_codes"`
	MedicationCodes []string `json:"medication_codes,omitempty"`
}

type validationResponse struct {
	Valid      bool    `json:"valid"`
	Confidence float64 `json:"confidence"`
}

// ValidateTreatment implements claim.TreatmentValidator via
// POST {base}/api/v1/validations.
func (c *Client) ValidateTreatment(ctx context.Context, plan claim.TreatmentPlan) (*claim.ValidationResult, error) {
	body, err := json.Marshal(validationRequest{
		DiagnosisID:     plan.DiagnosisID,
		ProcedureCodes:  plan.ProcedureCodes,
		MedicationCodes: plan.MedicationCodes,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "cannot encode validation request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/validations", bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidatorUnavailable, "cannot build validation request")
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidatorUnavailable, "terminology service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Newf(apperrors.ErrCodeValidatorUnavailable,
			"terminology service returned status %d", resp.StatusCode)
	}

	var out validationResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "cannot decode validation response")
	}
	return &claim.ValidationResult{Valid: out.Valid, Confidence: out.Confidence}, nil
}

func (c *Client) get(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeMapperUnavailable, "cannot build mapping request")
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeMapperUnavailable, "terminology service unreachable")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return apperrors.New(apperrors.ErrCodeMappingNotFound, "terminology service has no mapping for code")
	default:
		return apperrors.Newf(apperrors.ErrCodeMapperUnavailable,
			"terminology service returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "cannot decode mapping response")
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
