package view

import (
	"encoding/json"
	"time"

	"github.com/fatih/color"
	"github.com/rodaine/table"

	"github.com/CoReason-AI/coreason-manifest-sub002/pkg/graph"
)

type CompileView interface {
	Render(result CompileResult)
}

type CompileResult struct {
	Entry       string
	Mode        string
	Snapshot    *graph.Snapshot
	Diagnostics graph.Diagnostics
}

// Human view implementation.

type compileHumanView struct {
	*HumanView
}

func newCompileHumanView(hv *HumanView) *compileHumanView {
	return &compileHumanView{HumanView: hv}
}

func (v *compileHumanView) Render(result CompileResult) {
	snap := result.Snapshot

	headerFmt := color.RGB(50, 108, 229).SprintfFunc()
	tbl := table.New("ID", "KIND", "DEPENDS ON")
	tbl.WithHeaderFormatter(headerFmt)
	tbl.WithWriter(v.Writer)
	for _, node := range snap.Nodes {
		deps := ""
		for i, dep := range snap.Dependencies[node.ID] {
			if i > 0 {
				deps += ", "
			}
			deps += dep
		}
		tbl.AddRow(node.ID, string(node.Kind), deps)
	}
	tbl.Print()

	v.Println()
	v.Printf("entry: %s, nodes: %d, edges: %d, cyclic: %v\n",
		snap.EntryPoint, len(snap.Nodes), len(snap.Edges), snap.HasCycles)

	for _, d := range result.Diagnostics.Warnings() {
		v.Println(color.YellowString("Warning"), d.String())
	}
}

// JSON view implementation.

type compileJSONView struct {
	*JSONView
}

func newCompileJSONView(jv *JSONView) *compileJSONView {
	return &compileJSONView{JSONView: jv}
}

type compileJSONResult struct {
	Type        string            `json:"type"`
	Timestamp   time.Time         `json:"timestamp"`
	Entry       string            `json:"entry"`
	Mode        string            `json:"mode"`
	Graph       *graph.Snapshot   `json:"graph"`
	Diagnostics graph.Diagnostics `json:"diagnostics,omitempty"`
}

func (v *compileJSONView) Render(result CompileResult) {
	out := compileJSONResult{
		Type:        "compile",
		Timestamp:   time.Now(),
		Entry:       result.Entry,
		Mode:        result.Mode,
		Graph:       result.Snapshot,
		Diagnostics: result.Diagnostics,
	}

	if data, err := json.Marshal(out); err == nil {
		v.Println(string(data))
	}
}

func NewCompileView(v Viewer) CompileView {
	switch vt := v.(type) {
	case *HumanView:
		return newCompileHumanView(vt)
	case *JSONView:
		return newCompileJSONView(vt)
	default:
		panic("unknown view type")
	}
}
