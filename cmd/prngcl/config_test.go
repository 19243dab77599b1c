package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v3"
)

func writeConfig(t *testing.T, body string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(envConfigPath, path)
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing file is empty config", func(t *testing.T) {
		t.Setenv(envConfigPath, filepath.Join(t.TempDir(), "absent.yaml"))
		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig returned error: %v", err)
		}
		if cfg.Generator != nil || cfg.Seed != nil || len(cfg.Parameters) != 0 {
			t.Fatalf("expected zero config, got %+v", cfg)
		}
	})

	t.Run("fields parse", func(t *testing.T) {
		writeConfig(t, `
generator: XOR128
seed: 7
parameters: ["seed1=42"]
instances: 3
precision: double
accelerator: host
align: 8
log_level: debug
server_address: 127.0.0.1:9999
`)
		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig returned error: %v", err)
		}
		if cfg.Generator == nil || *cfg.Generator != "XOR128" {
			t.Fatalf("generator = %v", cfg.Generator)
		}
		if cfg.Seed == nil || *cfg.Seed != 7 {
			t.Fatalf("seed = %v", cfg.Seed)
		}
		if cfg.Instances == nil || *cfg.Instances != 3 {
			t.Fatalf("instances = %v", cfg.Instances)
		}
		if cfg.Samples != nil {
			t.Fatalf("samples should be unset, got %d", *cfg.Samples)
		}
		if len(cfg.Parameters) != 1 || cfg.Parameters[0] != "seed1=42" {
			t.Fatalf("parameters = %v", cfg.Parameters)
		}
		if cfg.LogLevel != "debug" || cfg.ServerAddress != "127.0.0.1:9999" {
			t.Fatalf("unexpected strings: %+v", cfg)
		}
	})

	t.Run("malformed file is an error", func(t *testing.T) {
		writeConfig(t, "generator: [unterminated\n")
		if _, err := LoadConfig(); err == nil {
			t.Fatal("expected parse error")
		}
	})
}

func TestApplyCommandConfigRespectsFlags(t *testing.T) {
	gen, seed := "TAUS", int64(99)
	cfg := Config{Generator: &gen, Seed: &seed}

	var gotGenerator string
	var gotSeed int64
	cmd := &cli.Command{
		Name:  "probe",
		Flags: generatorFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyCommandConfig(cmd, cfg)
			gotGenerator, gotSeed = generatorName, seedValue
			return nil
		},
	}
	if err := cmd.Run(context.Background(), []string{"probe", "--seed", "5"}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if gotGenerator != "TAUS" {
		t.Fatalf("generator = %q, want config value TAUS", gotGenerator)
	}
	if gotSeed != 5 {
		t.Fatalf("seed = %d, want flag value 5", gotSeed)
	}
}

func TestApplyServeConfigAddress(t *testing.T) {
	cfg := Config{ServerAddress: "0.0.0.0:7000"}

	addr := "127.0.0.1:8080"
	cmd := &cli.Command{
		Name:  "probe",
		Flags: []cli.Flag{&cli.StringFlag{Name: "addr", Destination: &addr, Value: addr}},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyServeConfig(cmd, cfg, &addr)
			return nil
		},
	}
	if err := cmd.Run(context.Background(), []string{"probe"}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if addr != "0.0.0.0:7000" {
		t.Fatalf("addr = %q, want config address", addr)
	}
}
