// Package main generates the Grafana dashboard and Prometheus rule files
// for the storeflow gateway deploy directory.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/storeflow/gateway/tools/dashgen/dashboards"
	"github.com/storeflow/gateway/tools/dashgen/rules"
	"github.com/storeflow/gateway/tools/dashgen/validate"
)

const generatedHeader = "# Code generated by dashgen. DO NOT EDIT.\n"

func main() {
	validateOnly := flag.Bool("validate", false, "validate generated artifacts without writing files")
	outputDir := flag.String("output", "", "override output directory")
	flag.Parse()

	cfg := DefaultConfig()
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, *validateOnly); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg Config, validateOnly bool) error {
	dash, err := dashboards.BuildOverview().Build()
	if err != nil {
		return fmt.Errorf("building overview dashboard: %w", err)
	}

	recording := rules.RecordingRules()
	alerts := rules.AlertRules()

	for name, result := range map[string]validate.Result{
		"dashboard":       validate.Dashboard(dash, KnownMetrics),
		"recording rules": validate.Rules(recording, KnownMetrics),
		"alert rules":     validate.Rules(alerts, KnownMetrics),
	} {
		if !result.Ok() {
			return fmt.Errorf("%s validation failed: %v", name, result.Errors)
		}
	}

	if validateOnly {
		fmt.Println("validation passed")
		return nil
	}

	if cfg.DashboardEnabled {
		dashJSON, err := json.MarshalIndent(dash, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling dashboard: %w", err)
		}
		dashJSON = append(dashJSON, '\n')

		path := filepath.Join(cfg.OutputDir, "grafana", "data", "storeflow-overview.json")
		if err := writeFile(path, dashJSON); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
	}

	if cfg.RulesEnabled {
		for name, cr := range map[string]rules.PrometheusRule{
			"storeflow-recording-rules.yaml": recording,
			"storeflow-alerts.yaml":          alerts,
		} {
			data, err := yaml.Marshal(cr)
			if err != nil {
				return fmt.Errorf("marshaling %s: %w", name, err)
			}
			data = append([]byte(generatedHeader), data...)

			path := filepath.Join(cfg.OutputDir, "prometheus", name)
			if err := writeFile(path, data); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
		}
	}

	return nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
