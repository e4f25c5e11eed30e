package view

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CoReason-AI/coreason-manifest-sub002/pkg/graph"
)

func TestParseOutputFormat(t *testing.T) {
	vt, err := ParseOutputFormat("")
	require.NoError(t, err)
	assert.Equal(t, ViewHuman, vt)

	vt, err = ParseOutputFormat("json")
	require.NoError(t, err)
	assert.Equal(t, ViewJSON, vt)

	_, err = ParseOutputFormat("xml")
	require.Error(t, err)
}

func TestValidateJSONViewRender(t *testing.T) {
	var buf bytes.Buffer
	v := NewViewer(ViewJSON, NewStream(&buf), LogLevelSilent)

	NewValidateView(v).Render(ValidateResult{
		FileCount: 2,
		Mode:      "strict",
		Files: []ValidateFileResult{
			{File: "good.yaml"},
			{File: "bad.yaml", Error: "graph is invalid"},
		},
	})

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "validate", out["type"])
	assert.Equal(t, "error", out["status"])
	assert.Equal(t, "strict", out["mode"])
	assert.Equal(t, float64(2), out["files"])
}

func TestValidateHumanViewRender(t *testing.T) {
	var buf bytes.Buffer
	v := NewViewer(ViewHuman, NewStream(&buf), LogLevelSilent)

	NewValidateView(v).Render(ValidateResult{
		FileCount: 1,
		Mode:      "loose",
		Files: []ValidateFileResult{
			{File: "draft.yaml", Warnings: []string{"warning dangling-edge steps[0].next: step \"a\" points to undefined step \"b\""}},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "draft.yaml")
	assert.Contains(t, out, "dangling-edge")
	assert.Contains(t, out, "Valid!")
}

func TestCompileJSONViewRender(t *testing.T) {
	var buf bytes.Buffer
	v := NewViewer(ViewJSON, NewStream(&buf), LogLevelSilent)

	NewCompileView(v).Render(CompileResult{
		Entry: "workflow.yaml",
		Mode:  "strict",
		Snapshot: &graph.Snapshot{
			EntryPoint: "a",
			Nodes:      []graph.SnapshotNode{{ID: "a", Kind: graph.StepKindAgent}},
		},
	})

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "compile", out["type"])
	g := out["graph"].(map[string]interface{})
	assert.Equal(t, "a", g["entryPoint"])
}
