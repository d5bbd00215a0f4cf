package forms

import (
	"github.com/biglotteryfund/funding/core"
	"github.com/biglotteryfund/funding/core/fields"
	"github.com/biglotteryfund/funding/core/form"
)

// NewStandardEnquiry builds the funding proposal form for grants over £10,000.
func NewStandardEnquiry() (*form.Form, error) {
	return build(
		StandardEnquiryID,
		core.Copy{En: "Your funding proposal", Cy: "Eich cynnig am arian"},
		sectionDef{
			slug:  "your-organisation",
			title: core.Copy{En: "Your organisation", Cy: "Eich sefydliad"},
			steps: []*form.Step{{
				Title: core.Copy{En: "Your organisation", Cy: "Eich sefydliad"},
				Fieldsets: singleFieldset(
					core.Copy{En: "Your organisation", Cy: "Eich sefydliad"},
					form.Field{
						Name:  "organisationName",
						Label: core.Copy{En: "What is the name of your organisation?", Cy: "Beth yw enw eich sefydliad?"},
						Type:  fields.TypeText,
						Rules: "required,max=255",
					},
					addressField("organisationAddress", core.Copy{En: "What is your organisation's address?", Cy: "Beth yw cyfeiriad eich sefydliad?"}),
				),
			}},
		},
		sectionDef{
			slug:  "your-project",
			title: core.Copy{En: "Your project", Cy: "Eich prosiect"},
			steps: []*form.Step{
				{
					Title: core.Copy{En: "Project location", Cy: "Lleoliad y prosiect"},
					Fieldsets: singleFieldset(
						core.Copy{En: "Project location", Cy: "Lleoliad y prosiect"},
						form.Field{
							Name:    "projectCountries",
							Label:   core.Copy{En: "What countries will your project take place in?", Cy: "Ym mha wledydd fydd eich prosiect yn digwydd?"},
							Type:    fields.TypeCheckbox,
							Rules:   "required",
							Options: countries(true),
						},
						form.Field{
							Name:  "projectLocationDescription",
							Label: core.Copy{En: "Tell us the towns, villages or wards where your beneficiaries live", Cy: "Dywedwch wrthym y trefi, pentrefi neu wardiau lle mae eich buddiolwyr yn byw"},
							Type:  fields.TypeText,
							Rules: "required,max=255",
						},
					),
				},
				{
					Title: core.Copy{En: "Your idea", Cy: "Eich syniad"},
					Fieldsets: singleFieldset(
						core.Copy{En: "Your idea", Cy: "Eich syniad"},
						form.Field{
							Name:  "projectName",
							Label: core.Copy{En: "What is the name of your project?", Cy: "Beth yw enw eich prosiect?"},
							Type:  fields.TypeText,
							Rules: "required,max=80",
						},
						form.Field{
							Name:  "yourIdeaProject",
							Label: core.Copy{En: "What would you like to do?", Cy: "Beth hoffech chi ei wneud?"},
							Type:  fields.TypeTextarea,
							Rules: "required,minwords=50,maxwords=500",
						},
						form.Field{
							Name:  "projectCosts",
							Label: core.Copy{En: "How much funding do you need?", Cy: "Faint o arian sydd ei angen arnoch?"},
							Type:  fields.TypeCurrency,
							Rules: "required,currency,currencymin=10001",
							Messages: map[string]core.Copy{
								"currencymin": {En: "For £10,000 or less apply for National Lottery Awards for All", Cy: "Ar gyfer £10,000 neu lai, gwnewch gais am Arian i Bawb y Loteri Genedlaethol"},
							},
						},
						form.Field{
							Name:  "projectDurationYears",
							Label: core.Copy{En: "How long will your project run for?", Cy: "Am ba hyd fydd eich prosiect yn rhedeg?"},
							Type:  fields.TypeRadio,
							Rules: "required",
							Options: []fields.Option{
								{Value: "1", Label: core.Copy{En: "1 year", Cy: "1 flwyddyn"}},
								{Value: "2", Label: core.Copy{En: "2 years", Cy: "2 flynedd"}},
								{Value: "3", Label: core.Copy{En: "3 years", Cy: "3 blynedd"}},
								{Value: "4", Label: core.Copy{En: "4 years", Cy: "4 blynedd"}},
								{Value: "5", Label: core.Copy{En: "5 years", Cy: "5 mlynedd"}},
							},
						},
					),
				},
			},
		},
		sectionDef{
			slug:  "your-details",
			title: core.Copy{En: "Your details", Cy: "Eich manylion"},
			steps: []*form.Step{{
				Title: core.Copy{En: "Your details", Cy: "Eich manylion"},
				Fieldsets: singleFieldset(
					core.Copy{En: "Your details", Cy: "Eich manylion"},
					form.Field{
						Name:  "contactName",
						Label: core.Copy{En: "Full name", Cy: "Enw llawn"},
						Type:  fields.TypeText,
						Rules: "required,max=80",
					},
					emailField("contactEmail"),
					form.Field{
						Name:  "contactPhone",
						Label: core.Copy{En: "Telephone number", Cy: "Rhif ffôn"},
						Type:  fields.TypeTel,
						Rules: "omitempty,ukphone",
					},
					form.Field{
						Name:  "contactCommunicationNeeds",
						Label: core.Copy{En: "Communication needs", Cy: "Anghenion cyfathrebu"},
						Type:  fields.TypeText,
						Rules: "omitempty,max=255",
					},
				),
			}},
		},
	)
}
