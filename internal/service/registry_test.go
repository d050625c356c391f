package service_test

import (
	"testing"

	"go.uber.org/zap"

	"github.com/septivank/solar-telemetry-ingest/internal/domain"
	"github.com/septivank/solar-telemetry-ingest/internal/service"
	"github.com/septivank/solar-telemetry-ingest/internal/service/servicetest"
)

func TestRegistry_Lookup(t *testing.T) {
	reg := service.NewRegistryWithStores(map[domain.Name]service.ReadingStore{
		domain.Meter:   servicetest.NewMemoryStore(),
		domain.Weather: servicetest.NewMemoryStore(),
	}, nil, 20, zap.NewNop())

	d, ok := reg.Lookup("Weather")
	if !ok {
		t.Fatal("Expected weather to be registered")
	}
	if d.Rules.Name != domain.Weather || d.Pipeline == nil || d.Submitter == nil || d.Readings == nil {
		t.Errorf("Expected a fully wired domain, got %+v", d)
	}

	if _, ok := reg.Lookup("inverter"); ok {
		t.Error("Expected unknown domain lookup to fail")
	}

	names := reg.Names()
	if len(names) != 2 || names[0] != "meter" || names[1] != "weather" {
		t.Errorf("Expected [meter weather], got %v", names)
	}
}

func TestRegistry_SkipsDomainsWithoutStore(t *testing.T) {
	reg := service.NewRegistryWithStores(map[domain.Name]service.ReadingStore{
		domain.Meter: servicetest.NewMemoryStore(),
	}, nil, 20, zap.NewNop())

	if _, ok := reg.Lookup("weather"); ok {
		t.Error("Expected weather to be missing")
	}
}
