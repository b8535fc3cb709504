package config

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"sizekit/misc"
)

func TestComponentCore(t *testing.T) {
	obs, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(newComponentCore(obs, map[string]string{
		"pool":    "none",
		"sizing":  "normal",
		"manager": "debug",
	})).Named("sizekit")

	sizing := log.Named("sizing")
	sizing.Debug("dropped, sizing is normal")
	sizing.Info("kept")
	sizing.Named("pool").Error("dropped, pool is none")
	log.Named("manager").With(zap.String("k", "v")).Debug("kept, manager is debug")
	log.Named("manager").Named("css-reader").Debug("kept, inherits manager")
	log.Debug("kept, not configured")

	var got []string
	for _, e := range logs.All() {
		got = append(got, e.Message)
	}
	want := []string{"kept", "kept, manager is debug", "kept, inherits manager", "kept, not configured"}
	if len(got) != len(want) {
		t.Fatalf("logged %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLoggingConfig_Prepare(t *testing.T) {
	conf := LoggingConfig{
		ConsoleLogger: LoggerConfig{Level: "none"},
		FileLogger:    LoggerConfig{Level: "none"},
		Components:    map[string]string{"store": "debug"},
	}
	log, err := conf.Prepare(nil)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if log.Name() != misc.GetAppName() {
		t.Errorf("logger name = %q", log.Name())
	}
	log.Named("store").Info("nowhere to go")
}
