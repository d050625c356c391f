package service_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/septivank/solar-telemetry-ingest/internal/cell"
	"github.com/septivank/solar-telemetry-ingest/internal/domain"
	"github.com/septivank/solar-telemetry-ingest/internal/mq"
	"github.com/septivank/solar-telemetry-ingest/internal/record"
	"github.com/septivank/solar-telemetry-ingest/internal/service"
	"github.com/septivank/solar-telemetry-ingest/internal/service/servicetest"
)

type recordingPublisher struct {
	events []mq.SubmissionEvent
	err    error
}

func (p *recordingPublisher) PublishSubmission(_ context.Context, event mq.SubmissionEvent) error {
	p.events = append(p.events, event)
	return p.err
}

func meterRow(date string, export float64) record.Row {
	return *record.NewRow().
		Set("Date", cell.NewText(date)).
		Set("ActiveEnergyExport", cell.NewNumber(export))
}

func weatherRow(date, tm string, moduleTemp float64) record.Row {
	return *record.NewRow().
		Set("Date", cell.NewText(date)).
		Set("Time", cell.NewText(tm)).
		Set("POA", cell.NewNumber(850)).
		Set("ModuleTemp", cell.NewNumber(moduleTemp))
}

func TestSubmit_MeterUpsertCounts(t *testing.T) {
	store := servicetest.NewMemoryStore()
	store.Seed("02-12-2024", "00:00", map[string]float64{"activeEnergyExport": 1})
	pub := &recordingPublisher{}
	sub := service.NewSubmitter(domain.MeterRules(), store, pub, zap.NewNop())

	rows := []record.Row{
		meterRow("01-12-2024", 100),
		meterRow("02-12-2024", 200),
	}

	summary, err := sub.Submit(context.Background(), rows)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	got, ok := summary.(service.UpsertSummary)
	if !ok {
		t.Fatalf("Expected UpsertSummary, got %T", summary)
	}
	if !got.Acknowledged {
		t.Error("Expected summary to be acknowledged")
	}
	if got.UpsertedCount != 1 || got.MatchedCount != 1 || got.ModifiedCount != 1 {
		t.Errorf("Expected 1 upserted and 1 modified, got %+v", got)
	}

	stored, ok := store.Find("01-12-2024", "00:00")
	if !ok {
		t.Fatal("Expected row without time to be stored at 00:00")
	}
	if stored.Fields["activeEnergyExport"] != 100 {
		t.Errorf("Expected activeEnergyExport 100, got %v", stored.Fields["activeEnergyExport"])
	}
	if stored.Fields["voltage"] != 0 {
		t.Errorf("Expected missing voltage to default to 0, got %v", stored.Fields["voltage"])
	}

	if len(pub.events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(pub.events))
	}
	if pub.events[0].Domain != "meter" || pub.events[0].RowCount != 2 || pub.events[0].Written != 2 {
		t.Errorf("Unexpected event %+v", pub.events[0])
	}
}

func TestSubmit_MeterResubmitIsUnchanged(t *testing.T) {
	store := servicetest.NewMemoryStore()
	sub := service.NewSubmitter(domain.MeterRules(), store, nil, zap.NewNop())
	rows := []record.Row{meterRow("01-12-2024", 100)}

	if _, err := sub.Submit(context.Background(), rows); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	summary, err := sub.Submit(context.Background(), rows)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	got := summary.(service.UpsertSummary)
	if got.MatchedCount != 1 || got.ModifiedCount != 0 || got.UpsertedCount != 0 {
		t.Errorf("Expected 1 matched and nothing modified, got %+v", got)
	}
	if store.Len() != 1 {
		t.Errorf("Expected 1 stored reading, got %d", store.Len())
	}
}

func TestSubmit_MeterNegativeStoredAsIs(t *testing.T) {
	store := servicetest.NewMemoryStore()
	sub := service.NewSubmitter(domain.MeterRules(), store, nil, zap.NewNop())

	if _, err := sub.Submit(context.Background(), []record.Row{meterRow("01-12-2024", -5)}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	stored, _ := store.Find("01-12-2024", "00:00")
	if stored.Fields["activeEnergyExport"] != -5 {
		t.Errorf("Expected -5 to be stored unchanged, got %v", stored.Fields["activeEnergyExport"])
	}
}

func TestSubmit_MeterMissingDateFailsWholeBatch(t *testing.T) {
	store := servicetest.NewMemoryStore()
	pub := &recordingPublisher{}
	sub := service.NewSubmitter(domain.MeterRules(), store, pub, zap.NewNop())

	rows := []record.Row{
		meterRow("01-12-2024", 100),
		*record.NewRow().Set("ActiveEnergyExport", cell.NewNumber(1)),
	}

	_, err := sub.Submit(context.Background(), rows)
	if !errors.Is(err, service.ErrMissingDate) {
		t.Fatalf("Expected ErrMissingDate, got %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("Expected nothing written, got %d readings", store.Len())
	}
	if len(pub.events) != 0 {
		t.Errorf("Expected no event on failure, got %d", len(pub.events))
	}
}

func TestSubmit_MeterRowFailureIsCounted(t *testing.T) {
	store := servicetest.NewMemoryStore()
	store.FailUpsert[servicetest.Key("02-12-2024", "00:00")] = errors.New("connection reset")
	sub := service.NewSubmitter(domain.MeterRules(), store, nil, zap.NewNop())

	summary, err := sub.Submit(context.Background(), []record.Row{
		meterRow("01-12-2024", 1),
		meterRow("02-12-2024", 2),
		meterRow("03-12-2024", 3),
	})
	if err != nil {
		t.Fatalf("Expected per-row failures to be absorbed, got %v", err)
	}

	got := summary.(service.UpsertSummary)
	if got.UpsertedCount != 2 || got.FailedCount != 1 {
		t.Errorf("Expected 2 upserted and 1 failed, got %+v", got)
	}
}

func TestSubmit_WeatherSkipsExisting(t *testing.T) {
	store := servicetest.NewMemoryStore()
	store.Seed("01-Dec-24", "09:30", map[string]float64{"moduleTemp": 40})
	pub := &recordingPublisher{}
	sub := service.NewSubmitter(domain.WeatherRules(), store, pub, zap.NewNop())

	summary, err := sub.Submit(context.Background(), []record.Row{
		weatherRow("01-Dec-24", "09:30", 45),
		weatherRow("01-Dec-24", "09:45", 46),
		*record.NewRow().Set("Date", cell.NewText("01-Dec-24")),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	got, ok := summary.(service.InsertSummary)
	if !ok {
		t.Fatalf("Expected InsertSummary, got %T", summary)
	}
	if got.Inserted != 1 || got.Skipped != 2 {
		t.Errorf("Expected 1 inserted and 2 skipped, got %+v", got)
	}
	if got.Message != "Weather data submission completed" {
		t.Errorf("Unexpected message %q", got.Message)
	}

	existing, _ := store.Find("01-Dec-24", "09:30")
	if existing.Fields["moduleTemp"] != 40 {
		t.Errorf("Expected existing reading to be left alone, got moduleTemp %v", existing.Fields["moduleTemp"])
	}

	if len(pub.events) != 1 || pub.events[0].Written != 1 || pub.events[0].Skipped != 2 {
		t.Errorf("Unexpected events %+v", pub.events)
	}
}

func TestSubmit_WeatherEmpty(t *testing.T) {
	store := servicetest.NewMemoryStore()
	pub := &recordingPublisher{}
	sub := service.NewSubmitter(domain.WeatherRules(), store, pub, zap.NewNop())

	summary, err := sub.Submit(context.Background(), nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	got := summary.(service.InsertSummary)
	if got.Message != "No data provided" || got.Inserted != 0 {
		t.Errorf("Unexpected summary %+v", got)
	}
	if len(pub.events) != 0 {
		t.Errorf("Expected no event for an empty submit, got %d", len(pub.events))
	}
}

func TestSubmit_WeatherExistsError(t *testing.T) {
	store := servicetest.NewMemoryStore()
	store.ExistsErr = errors.New("timeout")
	sub := service.NewSubmitter(domain.WeatherRules(), store, nil, zap.NewNop())

	_, err := sub.Submit(context.Background(), []record.Row{weatherRow("01-Dec-24", "09:30", 45)})
	if err == nil {
		t.Fatal("Expected error when the existence check fails")
	}
}

func TestSubmit_PublishErrorIsLogged(t *testing.T) {
	store := servicetest.NewMemoryStore()
	pub := &recordingPublisher{err: errors.New("channel closed")}
	sub := service.NewSubmitter(domain.MeterRules(), store, pub, zap.NewNop())

	if _, err := sub.Submit(context.Background(), []record.Row{meterRow("01-12-2024", 1)}); err != nil {
		t.Fatalf("Expected publish failure not to fail the submit, got %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("Expected the reading to be stored, got %d", store.Len())
	}
}
