package cmd

import (
	"context"
	"flag"
	"testing"
)

type testConfig struct {
	BusURL   string `env:"ENTRYPOINT_TEST_BUS_URL" envDefault:"ws://127.0.0.1:5672/events"`
	HTTPAddr string `env:"ENTRYPOINT_TEST_HTTP_ADDR" envDefault:":8080"`
}

func TestParseConfigReadsEnvAndFlags(t *testing.T) {
	t.Setenv("ENTRYPOINT_TEST_BUS_URL", "ws://env-host/events")
	t.Setenv("ENTRYPOINT_TEST_HTTP_ADDR", "env:9000")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg := testConfig{}
	if err := ParseConfig(&cfg); err != nil {
		t.Fatalf("load config defaults: %v", err)
	}
	fs.StringVar(&cfg.BusURL, "bus-url", cfg.BusURL, "bus url")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "http addr")

	if err := ParseArgs(fs, []string{"-http-addr", "flag:9001"}); err != nil {
		t.Fatalf("parse args: %v", err)
	}

	if cfg.BusURL != "ws://env-host/events" {
		t.Errorf("bus url = %q, want env value", cfg.BusURL)
	}
	if cfg.HTTPAddr != "flag:9001" {
		t.Errorf("http addr = %q, want flag override", cfg.HTTPAddr)
	}
}

func TestParseConfigNilTarget(t *testing.T) {
	if err := ParseConfig[testConfig](nil); err == nil {
		t.Fatal("expected error for nil config target")
	}
}

func TestRunWithTelemetryRequiresService(t *testing.T) {
	err := RunWithTelemetry(context.Background(), "  ", func(context.Context) error { return nil })
	if err == nil {
		t.Fatal("expected error for empty service name")
	}
}

func TestRunWithTelemetryRequiresRun(t *testing.T) {
	if err := RunWithTelemetry(context.Background(), ServiceViewer, nil); err == nil {
		t.Fatal("expected error for nil run function")
	}
}

func TestRunWithTelemetryExecutesRun(t *testing.T) {
	ran := false
	err := RunWithTelemetry(context.Background(), ServiceViewer, func(context.Context) error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("run with telemetry: %v", err)
	}
	if !ran {
		t.Error("run function was not executed")
	}
}
