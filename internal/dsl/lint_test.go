package dsl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codes(issues []Issue) []string {
	out := make([]string, 0, len(issues))
	for _, it := range issues {
		out = append(out, it.Code)
	}
	return out
}

func TestLintClean(t *testing.T) {
	ents, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)
	assert.Empty(t, Lint(ents))
	assert.NoError(t, Check(ents))
}

func TestLintIssues(t *testing.T) {
	src := `
entity User:
  name: string max_length=abc
  name: string
  kind: blob

entity Task table=users:
  id: id
  owner_id: ref[Ghost]
  state: enum[]
  stamp: date readonly required
`
	ents, err := Parse(strings.NewReader(src))
	require.NoError(t, err)

	got := codes(Lint(ents))
	assert.ElementsMatch(t, []string{
		"duplicate_table",
		"option_not_numeric",
		"duplicate_field",
		"unknown_type",
		"missing_id",
		"ref_target_unknown",
		"enum_empty",
		"required_readonly",
	}, got)

	err = Check(ents)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Task.owner_id")
}
