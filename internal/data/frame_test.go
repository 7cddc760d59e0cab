package data

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewFrameRejectsRaggedRows(t *testing.T) {
	_, err := NewFrame([]string{"a", "b"}, [][]string{{"1", "2"}, {"3"}})
	if err == nil {
		t.Fatal("expected error for ragged rows")
	}
}

func TestPartitionDropsOutcomeColumn(t *testing.T) {
	frame, err := NewFrame(
		[]string{"age", "target", "weight"},
		[][]string{
			{"30", "yes", "70.5"},
			{"40", "no", "82"},
		},
	)
	if err != nil {
		t.Fatalf("NewFrame: %v", err)
	}

	X, labels, inputOrder, err := frame.Partition("target")
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}

	if len(inputOrder) != 2 || inputOrder[0] != "age" || inputOrder[1] != "weight" {
		t.Fatalf("inputOrder = %v, want [age weight]", inputOrder)
	}
	if labels[0] != "yes" || labels[1] != "no" {
		t.Fatalf("labels = %v", labels)
	}
	if len(X) != 2 || len(X[0]) != 2 {
		t.Fatalf("X dims = %dx%d, want 2x2", len(X), len(X[0]))
	}
	if v, _ := X[1][1].Float64(); v != 82 {
		t.Errorf("X[1][1] = %v, want 82", v)
	}
}

func TestPartitionMissingColumn(t *testing.T) {
	frame, err := NewFrame([]string{"a"}, [][]string{{"1"}})
	if err != nil {
		t.Fatalf("NewFrame: %v", err)
	}

	if _, _, _, err := frame.Partition("missing"); err == nil {
		t.Fatal("expected error for missing outcome column")
	}
}

func TestLoadFrameSkipsIncompleteRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	content := "a,b,target\n1,2,yes\n3,,no\n5,6,no\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	frame, err := LoadFrame(path)
	if err != nil {
		t.Fatalf("LoadFrame: %v", err)
	}

	if frame.NumRows() != 2 {
		t.Fatalf("NumRows = %d, want 2 (row with empty cell skipped)", frame.NumRows())
	}
	if !frame.HasColumn("target") {
		t.Fatal("expected target column")
	}
}

func TestLoadFrameEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, []byte("a,b\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := LoadFrame(path); err == nil {
		t.Fatal("expected error for file without data rows")
	}
}
