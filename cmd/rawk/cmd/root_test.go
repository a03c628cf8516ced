package cmd

import (
	"testing"

	"github.com/rawklang/rawk/pkg/rawk"
	"github.com/stretchr/testify/assert"
)

func TestParseAssignmentSplitsOnFirstEquals(t *testing.T) {
	got := parseAssignment("OFS=,")
	assert.Equal(t, rawk.InputItem{Assign: true, Name: "OFS", Value: ","}, got)
}

func TestParseAssignmentUnescapesValue(t *testing.T) {
	got := parseAssignment(`x=a\tb`)
	assert.Equal(t, "a\tb", got.Value)
}

func TestAssignmentRegexDistinguishesNameValueFromFilePath(t *testing.T) {
	assert.True(t, assignRE.MatchString("x=1"))
	assert.True(t, assignRE.MatchString("_foo=bar"))
	assert.False(t, assignRE.MatchString("/etc/passwd"))
	assert.False(t, assignRE.MatchString("data.txt"))
	assert.False(t, assignRE.MatchString("1x=2"))
}
