package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/lexicon-health/lexicon/internal/domain/claim"
	"github.com/lexicon-health/lexicon/internal/infrastructure/monitoring/logging"
	apperrors "github.com/lexicon-health/lexicon/pkg/errors"
	"github.com/lexicon-health/lexicon/pkg/types/common"
)

// messageWriter is the slice of kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// ClaimResolvedEvent is the wire schema of a claim-resolution event.
type ClaimResolvedEvent struct {
	EventID             string    `json:"event_id"`
	ClaimID             string    `json:"claim_id"`
	Decision            string    `json:"decision"`
	ConfidenceScore     float64   `json:"confidence_score"`
	MappedCodes         []string  `json:"mapped_codes"`
	RecommendationCount int       `json:"recommendation_count"`
	ResolvedAt          time.Time `json:"resolved_at"`
}

// Publisher emits one ClaimResolvedEvent per resolved claim.
type Publisher struct {
	writer messageWriter
	log    logging.Logger
}

// NewPublisher creates an event publisher over the given writer.
func NewPublisher(writer messageWriter, log logging.Logger) *Publisher {
	return &Publisher{writer: writer, log: log}
}

// PublishClaimResolved emits the event for res.
func (p *Publisher) PublishClaimResolved(ctx context.Context, res *claim.Resolution) error {
	codes := make([]string, 0, len(res.MappedConcepts))
	for _, m := range res.MappedConcepts {
		codes = append(codes, m.SourceCode)
	}

	event := ClaimResolvedEvent{
		EventID:             common.GenerateID("evt"),
		ClaimID:             res.ClaimID,
		Decision:            string(res.Decision),
		ConfidenceScore:     res.ConfidenceScore,
		MappedCodes:         codes,
		RecommendationCount: len(res.Recommendations),
		ResolvedAt:          res.Timestamp,
	}

	value, err := json.Marshal(event)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "cannot encode claim event")
	}

	msg := kafka.Message{
		Key:   []byte(res.ClaimID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("claim.resolved")},
			{Key: "event_id", Value: []byte(event.EventID)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeExternalService, "claim event publish failed")
	}

	p.log.Debug("claim event published",
		logging.String("claim_id", res.ClaimID),
		logging.String("event_id", event.EventID))
	return nil
}
