package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		contains    string
		expectError bool
	}{
		{name: "help", args: []string{"--help"}, contains: "Alumni platform API server"},
		{name: "version", args: []string{"version"}, contains: "Version:    dev"},
		{name: "migrate help lists subcommands", args: []string{"migrate", "--help"}, contains: "down"},
		{name: "unknown flag", args: []string{"--nope"}, expectError: true},
		{name: "down needs positive steps", args: []string{"migrate", "down", "--steps", "0"}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newRootCommand()
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, buf.String(), tt.contains)
		})
	}
}
