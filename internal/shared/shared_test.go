package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeSearchTerm(t *testing.T) {
	tc := []struct {
		name string
		term string
		want string
	}{
		{
			name: "basic normalization",
			term: "Sugar",
			want: "sugar",
		},
		{
			name: "extra whitespace",
			term: "  brown   sugar  ",
			want: "brown sugar",
		},
		{
			name: "mixed case",
			term: "BrOwN SuGaR",
			want: "brown sugar",
		},
		{
			name: "empty",
			term: "   ",
			want: "",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeSearchTerm(tt.term)
			if got != tt.want {
				t.Errorf("NormalizeSearchTerm() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGenerateID(t *testing.T) {
	a := GenerateID()
	b := GenerateID()

	if a == "" || b == "" {
		t.Fatal("expected non-empty IDs")
	}
	if a == b {
		t.Errorf("expected unique IDs, got %s twice", a)
	}
}

func TestNewFileLogger(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "logs", "tally.log")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create file logger: %v", err)
	}
	if logger == nil {
		t.Fatal("expected a logger")
	}

	logger.Info("hello")

	if _, err := os.Stat(path); err != nil {
		t.Errorf("log file should exist: %v", err)
	}
}
