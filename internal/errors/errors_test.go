package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestDevflowError_Error(t *testing.T) {
	err := New(CategoryCommand, CodeUnknownPrimary, "unknown primary")

	expected := "[command/UNKNOWN_PRIMARY] unknown primary"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}

func TestDevflowError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(cause, CategoryRuntime, CodeEngineMissing, "engine missing")

	if err.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}
}

func TestDevflowError_UserFriendly(t *testing.T) {
	err := New(CategoryConfig, CodeConfigError, "devflow.toml: unknown key").
		WithHint("remove the offending key").
		WithContext("path", "devflow.toml")

	friendly := err.UserFriendly()

	if !strings.Contains(friendly, "devflow.toml: unknown key") {
		t.Error("should contain message")
	}
	if !strings.Contains(friendly, "remove the offending key") {
		t.Error("should contain hint")
	}
	if !strings.Contains(friendly, "path: devflow.toml") {
		t.Error("should contain context")
	}
}

func TestDevflowError_WithCause(t *testing.T) {
	cause := errors.New("cause")
	err := New(CategoryRuntime, CodeEngineMissing, "error").WithCause(cause)

	if err.Cause != cause {
		t.Error("cause not set")
	}
}

func TestDevflowError_WithHint(t *testing.T) {
	err := New(CategoryRuntime, CodeEngineMissing, "error").WithHint("try this")

	if err.Hint != "try this" {
		t.Errorf("hint not set, got %q", err.Hint)
	}
}

func TestDevflowError_WithContext(t *testing.T) {
	err := New(CategoryRuntime, CodeEngineMissing, "error").
		WithContext("key1", "value1").
		WithContext("key2", "value2")

	if err.Context["key1"] != "value1" {
		t.Error("key1 not set")
	}
	if err.Context["key2"] != "value2" {
		t.Error("key2 not set")
	}
}

func TestNew(t *testing.T) {
	err := New(CategoryConfig, CodeConfigError, "not found")

	if err.Category != CategoryConfig {
		t.Errorf("wrong category: %v", err.Category)
	}
	if err.Code != CodeConfigError {
		t.Errorf("wrong code: %s", err.Code)
	}
	if err.Message != "not found" {
		t.Errorf("wrong message: %s", err.Message)
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryConfig, CodeConfigError, "file %s not found", "devflow.toml")

	if err.Message != "file devflow.toml not found" {
		t.Errorf("wrong message: %s", err.Message)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("original")
	err := Wrap(cause, CategoryRuntime, CodeEngineMissing, "wrapped")

	if err.Cause != cause {
		t.Error("cause not set")
	}
	if err.Message != "wrapped" {
		t.Errorf("wrong message: %s", err.Message)
	}
}

func TestWrapf(t *testing.T) {
	cause := errors.New("original")
	err := Wrapf(cause, CategoryRuntime, CodeEngineMissing, "wrapped %s", "error")

	if err.Message != "wrapped error" {
		t.Errorf("wrong message: %s", err.Message)
	}
}

func TestIs(t *testing.T) {
	err := New(CategoryConfig, CodeConfigError, "not found")

	if !Is(err, CodeConfigError) {
		t.Error("should match code")
	}
	if Is(err, CodeWorkflowDrift) {
		t.Error("should not match different code")
	}
	if Is(errors.New("other"), CodeConfigError) {
		t.Error("should not match non-DevflowError")
	}
}

func TestGetCategory(t *testing.T) {
	err := New(CategoryConfig, CodeConfigError, "not found")

	if GetCategory(err) != CategoryConfig {
		t.Errorf("wrong category: %v", GetCategory(err))
	}
	if GetCategory(errors.New("other")) != "" {
		t.Error("should return empty for non-DevflowError")
	}
}

func TestGetCode(t *testing.T) {
	err := New(CategoryConfig, CodeConfigError, "not found")

	if GetCode(err) != CodeConfigError {
		t.Errorf("wrong code: %s", GetCode(err))
	}
	if GetCode(errors.New("other")) != "" {
		t.Error("should return empty for non-DevflowError")
	}
}

func TestAsDevflowError(t *testing.T) {
	dfErr := New(CategoryConfig, CodeConfigError, "not found")

	result, ok := AsDevflowError(dfErr)
	if !ok {
		t.Error("should return true for DevflowError")
	}
	if result != dfErr {
		t.Error("should return the same error")
	}

	_, ok = AsDevflowError(errors.New("other"))
	if ok {
		t.Error("should return false for non-DevflowError")
	}
}

func TestClone(t *testing.T) {
	original := New(CategoryConfig, CodeConfigError, "not found").
		WithHint("hint").
		WithContext("key", "value")

	clone := original.Clone()

	// Modify clone
	clone.Message = "modified"
	clone.Context["key"] = "modified"
	clone.Context["new"] = "new"

	// Original should be unchanged
	if original.Message != "not found" {
		t.Error("original message should not change")
	}
	if original.Context["key"] != "value" {
		t.Error("original context should not change")
	}
	if _, ok := original.Context["new"]; ok {
		t.Error("original should not have new key")
	}
}

func TestConstructors(t *testing.T) {
	t.Run("ConfigError", func(t *testing.T) {
		cause := errors.New("unknown key \"stackz\"")
		err := ConfigError("unknown-field", "devflow.toml", cause)
		if err.Code != CodeConfigError {
			t.Errorf("wrong code: %s", err.Code)
		}
		if err.ConfigSubkind != "unknown-field" {
			t.Errorf("wrong subkind: %s", err.ConfigSubkind)
		}
		if err.Context["path"] != "devflow.toml" {
			t.Error("path context not set")
		}
	})

	t.Run("UnknownPrimary", func(t *testing.T) {
		err := UnknownPrimary("deploy")
		if err.Context["primary"] != "deploy" {
			t.Error("primary context not set")
		}
	})

	t.Run("UnknownSelector", func(t *testing.T) {
		err := UnknownSelector("check", "bogus")
		if err.Context["selector"] != "bogus" {
			t.Error("selector context not set")
		}
	})

	t.Run("NoCapableExtension", func(t *testing.T) {
		err := NoCapableExtension("lint")
		if err.Context["capability"] != "lint" {
			t.Error("capability context not set")
		}
	})

	t.Run("ExtensionDiscoveryFailure", func(t *testing.T) {
		cause := errors.New("timeout")
		err := ExtensionDiscoveryFailure("devflow-ext-go", cause)
		if err.Cause != cause {
			t.Error("cause not set")
		}
	})

	t.Run("ProtocolError", func(t *testing.T) {
		cause := errors.New("invalid json")
		err := ProtocolError("devflow-ext-go", cause)
		if err.Code != CodeProtocolError {
			t.Errorf("wrong code: %s", err.Code)
		}
	})

	t.Run("EngineMissing", func(t *testing.T) {
		err := EngineMissing("docker", nil)
		if err.Context["engine"] != "docker" {
			t.Error("engine context not set")
		}
	})

	t.Run("MissingFingerprintInput", func(t *testing.T) {
		err := MissingFingerprintInput("go.sum")
		if err.Context["path"] != "go.sum" {
			t.Error("path context not set")
		}
	})

	t.Run("WorkflowDrift", func(t *testing.T) {
		err := WorkflowDrift(".github/workflows/ci.yml", "--- a\n+++ b\n")
		if err.Diff == "" {
			t.Error("diff not set")
		}
	})

	t.Run("ScaffoldExists", func(t *testing.T) {
		err := ScaffoldExists("devflow.toml")
		if err.Context["path"] != "devflow.toml" {
			t.Error("path context not set")
		}
	})

	t.Run("CommandFailed", func(t *testing.T) {
		cause := errors.New("exit status 1")
		err := CommandFailed("gofmt -l .", 1, cause)
		if err.Context["exit_code"] != "1" {
			t.Errorf("exit_code context wrong: %s", err.Context["exit_code"])
		}
	})

	t.Run("Internal", func(t *testing.T) {
		cause := errors.New("bug")
		err := Internal("something went wrong", cause)
		if !strings.Contains(err.Hint, "issue") {
			t.Error("should have issue hint")
		}
	})
}

func TestErrorsAs(t *testing.T) {
	dfErr := New(CategoryConfig, CodeConfigError, "not found")
	err := Wrap(dfErr, CategoryRuntime, CodeEngineMissing, "higher level error")

	var target *DevflowError
	if !errors.As(err, &target) {
		t.Error("should be able to extract DevflowError with errors.As")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"generic", errors.New("boom"), ExitGenericFailure},
		{"config", New(CategoryConfig, CodeConfigError, "x"), ExitConfigError},
		{"unknown primary", UnknownPrimary("x"), ExitUnknownCommand},
		{"unknown selector", UnknownSelector("check", "x"), ExitUnknownCommand},
		{"extension discovery", ExtensionDiscoveryFailure("x", nil), ExitExtensionDiscovery},
		{"workflow drift", WorkflowDrift("x", "x"), ExitWorkflowDrift},
		{"engine missing", EngineMissing("docker", nil), ExitEngineMissing},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExitCode(tc.err); got != tc.want {
				t.Errorf("ExitCode() = %d, want %d", got, tc.want)
			}
		})
	}
}
