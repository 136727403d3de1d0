package interpreter

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tide/interpreter-go/pkg/diag"
	"tide/interpreter-go/pkg/runtime"
)

const fixturesRoot = "testdata/fixtures"

// fixtureManifest is the manifest.json next to each fixture program.
type fixtureManifest struct {
	Description string `json:"description"`
	Entry       string `json:"entry"`
	Options     struct {
		WhileLimit               *int `json:"whileLimit"`
		FenceLoopBodies          bool `json:"fenceLoopBodies"`
		MemberCompoundAssignment bool `json:"memberCompoundAssignment"`
	} `json:"options"`
	Expect struct {
		Result *string  `json:"result"`
		Stdout []string `json:"stdout"`
		Error  *struct {
			Kind    diag.Kind `json:"kind"`
			Message string    `json:"message"`
			File    string    `json:"file"`
			Line    int       `json:"line"`
		} `json:"error"`
	} `json:"expect"`
}

func TestFixtures(t *testing.T) {
	entries, err := os.ReadDir(fixturesRoot)
	if err != nil {
		t.Fatalf("read fixtures: %v", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(fixturesRoot, entry.Name())
		t.Run(entry.Name(), func(t *testing.T) {
			runFixture(t, dir)
		})
	}
}

func readFixtureManifest(t *testing.T, dir string) fixtureManifest {
	t.Helper()
	manifestPath := filepath.Join(dir, "manifest.json")
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		t.Fatalf("read manifest %s: %v", manifestPath, err)
	}
	var manifest fixtureManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		t.Fatalf("parse manifest %s: %v", manifestPath, err)
	}
	return manifest
}

func (m fixtureManifest) interpreterOptions() []Option {
	opts := []Option{
		WithRandomSeed(1),
		WithFencedLoopBodies(m.Options.FenceLoopBodies),
		WithMemberCompoundAssignment(m.Options.MemberCompoundAssignment),
	}
	if m.Options.WhileLimit != nil {
		opts = append(opts, WithMaxWhileIterations(*m.Options.WhileLimit))
	}
	return opts
}

func runFixture(t *testing.T, dir string) {
	t.Helper()
	manifest := readFixtureManifest(t, dir)
	entry := manifest.Entry
	if entry == "" {
		entry = "main.tide"
	}

	var stdout bytes.Buffer
	interp := New(append(manifest.interpreterOptions(), WithStdout(&stdout))...)
	value, err := interp.RunFile(filepath.Join(dir, entry))

	if manifest.Expect.Stdout != nil {
		got := strings.Split(strings.TrimSuffix(stdout.String(), "\n"), "\n")
		if stdout.Len() == 0 {
			got = []string{}
		}
		if diff := cmp.Diff(manifest.Expect.Stdout, got); diff != "" {
			t.Fatalf("%s: stdout mismatch (-want +got):\n%s", manifest.Description, diff)
		}
	}

	if want := manifest.Expect.Error; want != nil {
		var de *diag.Error
		if !errors.As(err, &de) {
			t.Fatalf("%s: expected a %s, got %v", manifest.Description, want.Kind, err)
		}
		if de.Kind != want.Kind || !strings.Contains(de.Message, want.Message) {
			t.Fatalf("%s: expected %s containing %q, got %s", manifest.Description, want.Kind, want.Message, diag.Describe(de))
		}
		if want.Line != 0 && de.Location.Line != want.Line {
			t.Fatalf("%s: expected line %d, got %s", manifest.Description, want.Line, de.Location)
		}
		if want.File != "" && filepath.Base(de.Location.File) != want.File {
			t.Fatalf("%s: expected file %s, got %s", manifest.Description, want.File, de.Location)
		}
		return
	}
	if err != nil {
		t.Fatalf("%s: evaluation failed: %s", manifest.Description, diag.Describe(err))
	}
	if want := manifest.Expect.Result; want != nil {
		if got := runtime.Stringify(value); got != *want {
			t.Fatalf("%s: expected result %s, got %s", manifest.Description, *want, got)
		}
	}
}
