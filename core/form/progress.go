package form

import (
	"github.com/biglotteryfund/funding/core"
	"github.com/biglotteryfund/funding/core/fields"
)

type SectionStatus string

const (
	StatusEmpty      SectionStatus = "empty"
	StatusIncomplete SectionStatus = "incomplete"
	StatusComplete   SectionStatus = "complete"
)

type SectionProgress struct {
	Slug   string        `json:"slug"`
	Title  core.Copy     `json:"title"`
	Status SectionStatus `json:"status"`
}

type Progress struct {
	Sections   []SectionProgress `json:"sections"`
	Completed  int               `json:"completed"`
	IsComplete bool              `json:"isComplete"`
}

// Progress reports how far the answers have got through each section of the form.
// A section is complete when every field of the steps that apply is valid.
func (v *Validator) Progress(f *Form, data Data) Progress {
	var p Progress
	for _, sec := range f.Sections() {
		shown := sec.FieldsShown(data)
		res := v.ValidateFields(shown, data, core.LocaleEn)

		status := StatusComplete
		if !res.IsValid() {
			status = StatusEmpty
			for _, fld := range shown {
				if !fields.IsEmpty(data[fld.Name]) {
					status = StatusIncomplete
					break
				}
			}
		}
		if status == StatusComplete {
			p.Completed++
		}
		p.Sections = append(p.Sections, SectionProgress{Slug: sec.Slug, Title: sec.Title, Status: status})
	}
	p.IsComplete = len(p.Sections) > 0 && p.Completed == len(p.Sections)
	return p
}
