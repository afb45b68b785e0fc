// pkg/version/version_test.go
package version

import (
	"strings"
	"testing"
	"time"
)

func TestInfo_ReturnsFormattedString(t *testing.T) {
	// vars set at build-time, here using defaults
	info := Info()

	if !strings.Contains(info, "Binsift") {
		t.Errorf("Expected info to contain 'Binsift', got: %s", info)
	}
	if !strings.Contains(info, Version) {
		t.Errorf("Expected info to contain version '%s'", Version)
	}
	if !strings.Contains(info, Commit) {
		t.Errorf("Expected info to contain commit '%s'", Commit)
	}
	if !strings.Contains(info, BuildDate) {
		t.Errorf("Expected info to contain build date '%s'", BuildDate)
	}
}

func TestGet_ReturnsCorrectStruct(t *testing.T) {
	v := Get()

	if v.Version != Version {
		t.Errorf("Expected version %s, got %s", Version, v.Version)
	}
	if v.Commit != Commit {
		t.Errorf("Expected commit %s, got %s", Commit, v.Commit)
	}
	if v.BuildDate != BuildDate {
		t.Errorf("Expected build date %s, got %s", BuildDate, v.BuildDate)
	}
}

func TestStartDate_IsInitialized(t *testing.T) {
	if time.Since(StartDate) > time.Minute {
		t.Errorf("StartDate is too old: %s", StartDate)
	}
}

func TestSatisfies(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "1.2.0"
	ok, err := Satisfies(">= 1.0.0")
	if err != nil || !ok {
		t.Errorf("Expected 1.2.0 to satisfy >= 1.0.0, got ok=%v err=%v", ok, err)
	}
	ok, err = Satisfies(">= 2.0.0")
	if err != nil || ok {
		t.Errorf("Expected 1.2.0 to fail >= 2.0.0, got ok=%v err=%v", ok, err)
	}

	// Empty constraints and non-semver dev versions always pass.
	if ok, _ := Satisfies(""); !ok {
		t.Error("Expected empty constraint to pass")
	}
	Version = "dev"
	if ok, _ := Satisfies(">= 99.0.0"); !ok {
		t.Error("Expected dev build to pass any constraint")
	}

	if _, err := Satisfies("not a constraint"); err == nil {
		t.Error("Expected constraint parse error")
	}
}
