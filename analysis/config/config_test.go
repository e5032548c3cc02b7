// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestNewDefault(t *testing.T) {
	c := NewDefault()
	if c.EntryMethod != DefaultEntryMethod {
		t.Errorf("EntryMethod = %q", c.EntryMethod)
	}
	if c.MaxPasses != DefaultMaxPasses || c.MaxLocalIterations != DefaultMaxLocalIterations {
		t.Errorf("bounds = %d/%d", c.MaxPasses, c.MaxLocalIterations)
	}
	if c.LogLevel != int(InfoLevel) {
		t.Errorf("LogLevel = %d", c.LogLevel)
	}
	if c.Verbose() {
		t.Error("default config should not be verbose")
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
entry-method: start
max-passes: 3
log-level: 4
skip-ipa-opts: true
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.EntryMethod != "start" {
		t.Errorf("EntryMethod = %q", c.EntryMethod)
	}
	if c.MaxPasses != 3 {
		t.Errorf("MaxPasses = %d", c.MaxPasses)
	}
	if !c.SkipIpaOpts || c.SkipLocalOpts {
		t.Errorf("skip flags = %v/%v", c.SkipLocalOpts, c.SkipIpaOpts)
	}
	if !c.Verbose() {
		t.Error("log-level 4 should be verbose")
	}
	// unset fields fall back to the defaults
	if c.MaxLocalIterations != DefaultMaxLocalIterations {
		t.Errorf("MaxLocalIterations = %d", c.MaxLocalIterations)
	}
}

func TestLoadDefaultsEmptyFile(t *testing.T) {
	c, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.EntryMethod != DefaultEntryMethod || c.MaxPasses != DefaultMaxPasses {
		t.Errorf("empty config did not apply defaults: %+v", c.Options)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load accepted a missing file")
	}
}

func TestLoadCreatesDumpDir(t *testing.T) {
	c, err := Load(writeConfig(t, "dump-graphs: true\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.DumpDir == "" {
		t.Fatal("dump-graphs without dump-dir should mint a directory")
	}
	if info, err := os.Stat(c.DumpDir); err != nil || !info.IsDir() {
		t.Errorf("DumpDir %q is not a directory: %v", c.DumpDir, err)
	}
}

func TestRelPath(t *testing.T) {
	path := writeConfig(t, "")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := filepath.Join(filepath.Dir(path), "script.yaml")
	if got := c.RelPath("script.yaml"); got != want {
		t.Errorf("RelPath = %q, want %q", got, want)
	}
}

func TestLoadGlobal(t *testing.T) {
	path := writeConfig(t, "entry-method: start\n")
	SetGlobalConfig(path)
	c, err := LoadGlobal()
	if err != nil {
		t.Fatalf("LoadGlobal: %v", err)
	}
	if c.EntryMethod != "start" {
		t.Errorf("EntryMethod = %q, want %q", c.EntryMethod, "start")
	}
}
