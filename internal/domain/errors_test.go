package domain

import (
	"errors"
	"testing"
)

func TestDataUnavailableError(t *testing.T) {
	baseErr := errors.New("feed gap")

	t.Run("always retriable", func(t *testing.T) {
		err := NewDataUnavailable("oracle price", baseErr)

		if !err.IsRetriable() {
			t.Error("Expected error to be retriable")
		}

		want := "data unavailable [oracle price]: feed gap"
		if err.Error() != want {
			t.Errorf("Error message = %q, want %q", err.Error(), want)
		}

		if !errors.Is(err, baseErr) {
			t.Error("Expected error to wrap baseErr")
		}
	})

	t.Run("without cause", func(t *testing.T) {
		err := NewDataUnavailable("bid side", nil)
		if err.Error() != "data unavailable [bid side]" {
			t.Errorf("Error message = %q", err.Error())
		}
	})
}

func TestSubmissionError(t *testing.T) {
	baseErr := errors.New("blockhash expired")

	t.Run("retriable rejection", func(t *testing.T) {
		err := NewSubmissionError("stale reference", baseErr)

		if !err.IsRetriable() {
			t.Error("Expected submission error to be retriable")
		}

		want := "submission failed [stale reference]: blockhash expired"
		if err.Error() != want {
			t.Errorf("Error message = %q, want %q", err.Error(), want)
		}
	})

	t.Run("IsRetriable helper", func(t *testing.T) {
		retriable := NewSubmissionError("timeout", baseErr)
		fatal := &ConfigError{Field: "private_key", Err: baseErr}
		plain := errors.New("plain error")

		if !IsRetriable(retriable) {
			t.Error("IsRetriable should return true for retriable error")
		}

		if IsRetriable(fatal) {
			t.Error("IsRetriable should return false for config error")
		}

		if IsRetriable(plain) {
			t.Error("IsRetriable should return false for plain error")
		}
	})
}

func TestConfigError(t *testing.T) {
	baseErr := errors.New("missing value")
	err := &ConfigError{Field: "target_market", Err: baseErr}

	if err.IsRetriable() {
		t.Error("ConfigError should never be retriable")
	}

	expected := "config error [target_market]: missing value"
	if err.Error() != expected {
		t.Errorf("Error message = %q, want %q", err.Error(), expected)
	}
}
