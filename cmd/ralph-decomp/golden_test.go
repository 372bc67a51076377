package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

// GoldenTestSpec is one case of testdata/decomp.yaml
type GoldenTestSpec struct {
	Name   string   `yaml:"name"`
	Args   []string `yaml:"args"`
	Input  string   `yaml:"input"`
	Expect string   `yaml:"expect"`          // exact stdout
	Error  string   `yaml:"error,omitempty"` // expected failure, matched against stderr
	Skip   string   `yaml:"skip,omitempty"`
}

// GoldenTestFile is the decomp.yaml file structure
type GoldenTestFile struct {
	Tests []GoldenTestSpec `yaml:"tests"`
}

func TestGolden(t *testing.T) {
	data, err := os.ReadFile("../../testdata/decomp.yaml")
	if err != nil {
		t.Fatalf("failed to read decomp.yaml: %v", err)
	}

	var testFile GoldenTestFile
	if err := yaml.Unmarshal(data, &testFile); err != nil {
		t.Fatalf("failed to parse decomp.yaml: %v", err)
	}
	if len(testFile.Tests) == 0 {
		t.Fatal("decomp.yaml has no tests")
	}

	for _, tc := range testFile.Tests {
		t.Run(tc.Name, func(t *testing.T) {
			if tc.Skip != "" {
				t.Skip(tc.Skip)
			}

			tmpDir := t.TempDir()
			inputFile := filepath.Join(tmpDir, "functions.yaml")
			if err := os.WriteFile(inputFile, []byte(tc.Input), 0644); err != nil {
				t.Fatalf("failed to write input: %v", err)
			}

			var out, errOut bytes.Buffer
			cmd := newRootCmd(&out, &errOut)
			cmd.SetArgs(normalizeFlags(append(append([]string{}, tc.Args...), inputFile)))
			err := cmd.Execute()

			if tc.Error != "" {
				if err == nil {
					t.Fatalf("expected an error, got output:\n%s", out.String())
				}
				if !strings.Contains(errOut.String(), tc.Error) {
					t.Errorf("expected stderr to contain %q, got:\n%s", tc.Error, errOut.String())
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v\n%s", err, errOut.String())
			}
			if got := out.String(); got != tc.Expect {
				t.Errorf("output mismatch\ngot:\n%s\nwant:\n%s", got, tc.Expect)
			}
		})
	}
}
