package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"docdb-dashboard/internal/dashboard/domain/model"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsetDatabaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MONGODB_URI", "")
	t.Setenv("MONGODB_HOST", "")
	t.Setenv("REDIS_ENABLED", "false")
}

func TestRun_Usage(t *testing.T) {
	unsetDatabaseEnv(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no command", nil, "usage: collexport"},
		{"unknown command", []string{"drop"}, `unknown command "drop"`},
		{"bad flag", []string{"-nope", "list"}, "flag provided but not defined"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(context.Background(), tt.args, &stdout, &stderr)
			assert.Equal(t, exitUsage, code)
			assert.Contains(t, stderr.String(), tt.want)
		})
	}
}

func TestRun_Unconfigured(t *testing.T) {
	unsetDatabaseEnv(t)
	color.NoColor = true

	for _, cmd := range []string{"list", "export"} {
		t.Run(cmd, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(context.Background(), []string{cmd}, &stdout, &stderr)
			assert.Equal(t, exitError, code)
			assert.Contains(t, stderr.String(), "[ERROR] MongoDB connection is not configured")
			assert.Empty(t, stdout.String())
		})
	}
}

func TestRenderCollections(t *testing.T) {
	var buf bytes.Buffer
	err := renderCollections(&buf, []model.CollectionDescriptor{
		{Name: "users", DocumentCount: 3, SizeInMB: 0.01},
		{Name: "orders", DocumentCount: 1200, SizeInMB: 2.5},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Collection")
	assert.Contains(t, out, "users")
	assert.Contains(t, out, "1200")
	assert.Contains(t, out, "2.50")
	assert.Contains(t, out, "2 collections")
	assert.Contains(t, out, "1203")
	assert.Contains(t, out, "2.51")
}

func TestNotifyMsg(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	notifyMsg(&buf, "warning", "skipped users")
	notifyMsg(&buf, "unknown", "falls back to info")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "[WARNING] skipped users", lines[0])
	assert.Equal(t, "[UNKNOWN] falls back to info", lines[1])
}
