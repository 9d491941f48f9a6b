package main

import (
	"testing"
)

func TestRootCommandWiring(t *testing.T) {
	for _, flag := range []string{"verbose", "dir", "config", "repo", "timeout"} {
		if rootCmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing persistent flag %q", flag)
		}
	}

	found := false
	for _, c := range rootCmd.Commands() {
		if c.Use == "generate" {
			found = true
		}
	}
	if !found {
		t.Error("generate subcommand not registered")
	}
}

func TestConfigFlagDefault(t *testing.T) {
	f := rootCmd.PersistentFlags().Lookup("config")
	if f == nil {
		t.Fatal("config flag missing")
	}
	if f.DefValue != "geninfo.yaml" {
		t.Errorf("config default = %q, want geninfo.yaml", f.DefValue)
	}
}
