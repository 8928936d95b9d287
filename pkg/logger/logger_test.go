package logger

import (
	"testing"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/config"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	app := config.AppConfig{Name: "pharmaflow-api", Environment: "test", Version: "1.2.3"}
	tests := []struct {
		name    string
		cfg     config.LogConfig
		wantErr bool
		enabled zapcore.Level
	}{
		{"json info", config.LogConfig{Level: "info", Format: "json", OutputPath: "stdout"}, false, zapcore.InfoLevel},
		{"console debug", config.LogConfig{Level: "debug", Format: "console", OutputPath: "stderr"}, false, zapcore.DebugLevel},
		{"bad level", config.LogConfig{Level: "loud", Format: "json", OutputPath: "stdout"}, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.cfg, app)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if !log.Core().Enabled(tt.enabled) {
				t.Errorf("level %s not enabled", tt.enabled)
			}
			if log.Core().Enabled(tt.enabled - 1) {
				t.Errorf("level below %s enabled", tt.enabled)
			}
		})
	}
}
