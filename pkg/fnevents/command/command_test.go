package command_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/randalmurphal/fnevents/pkg/fnevents/command"
)

func TestWarranted(t *testing.T) {
	tests := []struct {
		name string
		kind command.Kind
		args map[string]string
		want bool
	}{
		{"send manifest", command.SendManifest, nil, true},
		{"enable", command.Enable, nil, true},
		{"other", command.Other, nil, true},
		{"disable", command.Disable, nil, false},
		{"disable with unrelated arg", command.Disable, map[string]string{"Verbose": "1"}, false},
		{"disable with definitions arg", command.Disable, map[string]string{command.ArgSendFunctionDefinitions: ""}, true},
		{"disable with lowercase arg", command.Disable, map[string]string{"sendfunctiondefinitions": "1"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, command.Warranted(command.New(tt.kind, tt.args)))
		})
	}
}

func TestNewCopiesArgs(t *testing.T) {
	args := map[string]string{"a": "1"}
	cmd := command.New(command.Enable, args)
	args["b"] = "2"

	assert.False(t, cmd.HasArg("b"))
	assert.True(t, cmd.HasArg("a"))
	assert.True(t, strings.HasPrefix(cmd.ID, "cmd-"))
	assert.False(t, cmd.IssuedAt.IsZero())
	assert.NotEqual(t, cmd.ID, command.New(command.Enable, nil).ID)
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in     string
		want   command.Kind
		wantOK bool
	}{
		{"Enable", command.Enable, true},
		{"disable", command.Disable, true},
		{"SendManifest", command.SendManifest, true},
		{"send-manifest", command.SendManifest, true},
		{" other ", command.Other, true},
		{"reboot", command.Other, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := command.ParseKind(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestKindString(t *testing.T) {
	for _, k := range []command.Kind{command.Other, command.Enable, command.Disable, command.SendManifest} {
		got, ok := command.ParseKind(k.String())
		assert.True(t, ok)
		assert.Equal(t, k, got)
	}
	assert.Equal(t, "Other", command.Kind(42).String())
}
