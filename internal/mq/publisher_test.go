package mq_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/septivank/solar-telemetry-ingest/internal/mq"
)

func TestRoutingKey(t *testing.T) {
	if got := mq.RoutingKey("weather"); got != "weather.readings.submitted" {
		t.Errorf("Expected weather.readings.submitted, got %s", got)
	}
}

func TestSubmissionEvent_JSON(t *testing.T) {
	event := mq.SubmissionEvent{
		EventID:     "evt-1",
		Domain:      "meter",
		RowCount:    3,
		Written:     2,
		Failed:      1,
		SubmittedAt: time.Date(2024, 12, 1, 9, 30, 0, 0, time.UTC),
	}

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	expected := `{"event_id":"evt-1","domain":"meter","row_count":3,"written":2,"skipped":0,"failed":1,"submitted_at":"2024-12-01T09:30:00Z"}`
	if string(data) != expected {
		t.Errorf("Expected %s, got %s", expected, data)
	}
}

func TestConnection_HealthyOnNil(t *testing.T) {
	var conn *mq.Connection
	if conn.Healthy() {
		t.Error("Expected nil connection to be unhealthy")
	}
}
