package cmd

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, exitCode(nil))
	assert.Equal(t, ExitConfigError, exitCode(errMergeFailed))
	assert.Equal(t, ExitConfigError, exitCode(fmt.Errorf("session: %w", errMergeFailed)))
	assert.Equal(t, ExitFailure, exitCode(errors.New("anything else")))
}

func TestParseExtensions(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected []string
	}{
		{name: "empty means default", in: "", expected: nil},
		{name: "single", in: ".py", expected: []string{".py"}},
		{name: "comma separated", in: ".py,.pyi", expected: []string{".py", ".pyi"}},
		{name: "missing dots added", in: "py, pyi", expected: []string{".py", ".pyi"}},
		{name: "blank entries dropped", in: ".py,,", expected: []string{".py"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseExtensions(tt.in))
		})
	}
}

func TestParseSpool(t *testing.T) {
	assert.Equal(t, time.Duration(0), parseSpool(""))
	assert.Equal(t, 500*time.Millisecond, parseSpool("500"))
	assert.Equal(t, time.Duration(0), parseSpool("not-a-number"))
	assert.Equal(t, time.Duration(0), parseSpool("-10"))
}
