package main

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

const testVersion = "1.2.3"

func TestPrintVersion(t *testing.T) {
	oldVersion, oldBuildTime, oldGitCommit := version, buildTime, gitCommit
	t.Cleanup(func() {
		version, buildTime, gitCommit = oldVersion, oldBuildTime, oldGitCommit
	})

	version = testVersion
	buildTime = "2024-03-14_09:00:00"
	gitCommit = "abc123"

	var buf bytes.Buffer
	printVersion(&buf)
	output := buf.String()

	for _, expected := range []string{
		"MCP Table Report",
		"Version: " + testVersion,
		"Build Time: 2024-03-14_09:00:00",
		"Git Commit: abc123",
		"Built with: " + runtime.Version(),
	} {
		assert.Contains(t, output, expected)
	}
}

func TestPrintVersionWithDefaults(t *testing.T) {
	var buf bytes.Buffer
	printVersion(&buf)

	assert.Contains(t, buf.String(), "Version: dev")
	assert.Contains(t, buf.String(), "Git Commit: unknown")
}
