package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/go-ttsr/internal/config"
)

func TestVoicesCmd_ListsCatalogAndCustom(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	manifest := filepath.Join(dir, "voices.json")
	if err := os.WriteFile(manifest, []byte(`{"voices":[{"id":"raihan","name":"R J Raihan","style":"Warm radio host"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	orig := activeCfg
	t.Cleanup(func() { activeCfg = orig })

	activeCfg = config.DefaultConfig()
	activeCfg.TTS.VoicesManifest = manifest

	cmd := newVoicesCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := cmd.RunE(cmd, nil); err != nil {
		t.Fatalf("voices: %v", err)
	}

	got := out.String()
	for _, want := range []string{"ID", "Kore", "Puck", "Soft, Narrative", "raihan", "R J Raihan"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}
