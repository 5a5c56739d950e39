package main

import (
	"strings"
	"testing"
)

func TestAnalyzeCmd_RequiresInput(t *testing.T) {
	cmd := newAnalyzeCmd()

	err := cmd.RunE(cmd, nil)
	if err == nil || !strings.Contains(err.Error(), "--input") {
		t.Fatalf("analyze without --input must fail, got %v", err)
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range []string{
		newGenerateCmd().Use,
		newCleanCmd().Use,
		newAnalyzeCmd().Use,
		newRunCmd().Use,
	} {
		names[c] = true
	}

	for _, want := range []string{"generate", "clean", "analyze", "run"} {
		if !names[want] {
			t.Errorf("missing subcommand %s", want)
		}
	}
}
