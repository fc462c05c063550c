// Package main provides tests for the dashgen CLI.
package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/leapstack-labs/dashgen/internal/cli"
)

func TestVersionCommand(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"version"})

	err := cmd.Execute()
	if err != nil {
		t.Errorf("version command error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "dashgen") {
		t.Errorf("version output should contain 'dashgen', got: %s", output)
	}
}

func TestHelpCommand(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	err := cmd.Execute()
	if err != nil {
		t.Errorf("help command error = %v", err)
	}

	output := buf.String()
	expectedCommands := []string{"generate", "check", "components", "fetch", "serve", "history", "init"}
	for _, expected := range expectedCommands {
		if !strings.Contains(output, expected) {
			t.Errorf("help output should contain '%s', got: %s", expected, output)
		}
	}
}

func TestComponentsCommandJSON(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"components", "--output", "json", "--state", ":memory:"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("components command error = %v", err)
	}
	if !strings.Contains(buf.String(), `"name": "WeatherWidget"`) {
		t.Errorf("components output should list WeatherWidget, got: %s", buf.String())
	}
}
