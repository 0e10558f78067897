package util

import (
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestAddUniquePrefixToFileName(t *testing.T) {
	filename := "testfile.txt"
	result := AddUniquePrefixToFileName(filename)

	if !strings.HasSuffix(result, "_testfile.txt") {
		t.Errorf("Expected filename to have unique prefix, got %s", result)
	}

	prefix := strings.Split(result, "_")[0]
	if len(prefix) == 0 {
		t.Errorf("Expected a non-empty unique prefix, got %s", prefix)
	}
}

func TestExportFileName(t *testing.T) {
	now := time.Date(2024, 5, 1, 23, 0, 0, 0, time.UTC)

	got, err := ExportFileName("aide_2017", ".xlsx", now)
	if err != nil {
		t.Fatalf("ExportFileName() error = %v", err)
	}

	re := regexp.MustCompile(`^dossiers_aide_2017_2024-05-01_[0-9a-z]{6}\.xlsx$`)
	if !re.MatchString(got) {
		t.Errorf("ExportFileName() = %q", got)
	}
}
