package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Triggers recorded on ModelTrainedEvent
const (
	TriggerTrain    = "train"
	TriggerTrainAll = "train_all"
	TriggerOnDemand = "on_demand"
)

// ModelTrainedEvent announces that a cached model was (re)written
type ModelTrainedEvent struct {
	ID        string    `json:"id"`
	Commodity string    `json:"commodity"`
	Key       string    `json:"key"`
	RowsUsed  int       `json:"rows_used"`
	StoredAt  time.Time `json:"stored_at"`
	Trigger   string    `json:"trigger"`
}

// PublishModelTrained encodes evt and publishes it on SubjectModelTrained.
// An empty ID is filled in.
func PublishModelTrained(ctx context.Context, pub Publisher, evt ModelTrainedEvent) error {
	if evt.ID == "" {
		evt.ID = uuid.New().String()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to encode model event: %w", err)
	}
	return pub.Publish(ctx, SubjectModelTrained, data)
}

// DecodeModelTrained parses a ModelTrainedEvent payload
func DecodeModelTrained(data []byte) (ModelTrainedEvent, error) {
	var evt ModelTrainedEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return evt, fmt.Errorf("failed to decode model event: %w", err)
	}
	if evt.Key == "" {
		return evt, fmt.Errorf("model event %s has no key", evt.ID)
	}
	return evt, nil
}
