package view

import (
	"encoding/json"
	"time"

	"github.com/fatih/color"
)

type ValidateView interface {
	Render(result ValidateResult)
}

type ValidateResult struct {
	FileCount int
	Mode      string
	Files     []ValidateFileResult
}

type ValidateFileResult struct {
	File     string   `json:"file"`
	Error    string   `json:"error,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func (r ValidateResult) HasErrors() bool {
	for _, f := range r.Files {
		if f.Error != "" {
			return true
		}
	}
	return false
}

// Human view implementation.

type validateHumanView struct {
	*HumanView
}

func newValidateHumanView(hv *HumanView) *validateHumanView {
	return &validateHumanView{HumanView: hv}
}

func (v *validateHumanView) Render(result ValidateResult) {
	for _, f := range result.Files {
		if f.Error != "" {
			v.Println(color.RGB(229, 50, 50).Sprintf("Error!"), f.File+":", f.Error)
			continue
		}
		for _, w := range f.Warnings {
			v.Println(color.YellowString("Warning"), f.File+":", w)
		}
	}

	if !result.HasErrors() {
		v.Println(color.RGB(50, 108, 229).Sprintf("Valid!"), "no errors found.")
	}
}

// JSON view implementation.

type validateJSONView struct {
	*JSONView
}

func newValidateJSONView(jv *JSONView) *validateJSONView {
	return &validateJSONView{JSONView: jv}
}

type validateJSONResult struct {
	Type      string               `json:"type"`
	Status    string               `json:"status"`
	Timestamp time.Time            `json:"timestamp"`
	Mode      string               `json:"mode"`
	Files     int                  `json:"files"`
	Results   []ValidateFileResult `json:"results,omitempty"`
}

func (v *validateJSONView) Render(result ValidateResult) {
	out := validateJSONResult{
		Type:      "validate",
		Timestamp: time.Now(),
		Mode:      result.Mode,
		Files:     result.FileCount,
		Results:   result.Files,
	}

	if result.HasErrors() {
		out.Status = "error"
	} else {
		out.Status = "success"
	}

	if data, err := json.Marshal(out); err == nil {
		v.Println(string(data))
	}
}

func NewValidateView(v Viewer) ValidateView {
	switch vt := v.(type) {
	case *HumanView:
		return newValidateHumanView(vt)
	case *JSONView:
		return newValidateJSONView(vt)
	default:
		panic("unknown view type")
	}
}
