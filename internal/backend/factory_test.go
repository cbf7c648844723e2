package backend

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"spendwise/internal/config"
	applog "spendwise/internal/log"
	"spendwise/internal/storage"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}

	cfg := &config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db", LedgerSlot: "s", DataDir: "d"}
	got, err := FromAppConfig(cfg)
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	want := Config{Type: SQLiteBackend, SlotName: "s", DataDirectory: "d", SQLiteDBPath: "x.db"}
	if got != want {
		t.Fatalf("FromAppConfig() = %+v, want %+v", got, want)
	}

	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestBackendTypesMatchConfig(t *testing.T) {
	types := GetBackendTypes()
	if len(types) != len(config.Backends) {
		t.Fatalf("GetBackendTypes() = %v, config.Backends = %v", types, config.Backends)
	}
	for i, bt := range types {
		if !bt.IsValid() {
			t.Errorf("%s should be valid", bt)
		}
		if bt.String() != config.Backends[i] {
			t.Errorf("backend %d = %s, config accepts %s", i, bt, config.Backends[i])
		}
	}
	if BackendType("sheets").IsValid() {
		t.Error("sheets should not be a valid backend")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"file", Config{Type: FileBackend, SlotName: "s"}, false},
		{"memory", Config{Type: MemoryBackend, SlotName: "s"}, false},
		{"sqlite", Config{Type: SQLiteBackend, SlotName: "s", SQLiteDBPath: "x.db"}, false},
		{"sqlite without path", Config{Type: SQLiteBackend, SlotName: "s"}, true},
		{"missing slot", Config{Type: FileBackend}, true},
		{"bad type", Config{Type: "sheets", SlotName: "s"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateSlot(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	factory := NewFactory(applog.Discard())

	for _, cfg := range []Config{
		{Type: FileBackend, SlotName: "ledger", DataDirectory: filepath.Join(dir, "files")},
		{Type: SQLiteBackend, SlotName: "ledger", SQLiteDBPath: filepath.Join(dir, "db", "ledger.db")},
		{Type: MemoryBackend, SlotName: "ledger"},
	} {
		t.Run(cfg.Type.String(), func(t *testing.T) {
			res, err := factory.CreateSlot(ctx, cfg)
			if err != nil {
				t.Fatalf("CreateSlot: %v", err)
			}
			if res.Cleanup != nil {
				defer res.Cleanup()
			}

			if _, err := res.Slot.Read(ctx); !errors.Is(err, storage.ErrSlotNotFound) {
				t.Fatalf("fresh slot should be empty, got %v", err)
			}
			if err := res.Slot.Write(ctx, []byte(`[]`)); err != nil {
				t.Fatalf("Write: %v", err)
			}
		})
	}

	if _, err := factory.CreateSlot(ctx, Config{Type: "sheets", SlotName: "x"}); err == nil {
		t.Fatal("expected error for unsupported backend")
	}
}
