package forms

import (
	"github.com/biglotteryfund/funding/core"
	"github.com/biglotteryfund/funding/core/fields"
	"github.com/biglotteryfund/funding/core/form"
)

// MaxAwardsForAllBudget is the most that can be asked for, in pounds.
const MaxAwardsForAllBudget = "10000"

// NewAwardsForAll builds the National Lottery Awards for All application form.
func NewAwardsForAll() (*form.Form, error) {
	return build(
		AwardsForAllID,
		core.Copy{En: "National Lottery Awards for All", Cy: "Arian i Bawb y Loteri Genedlaethol"},
		sectionDef{
			slug:  "your-project",
			title: core.Copy{En: "Your project", Cy: "Eich prosiect"},
			steps: []*form.Step{projectDetailsStep(), yourIdeaStep()},
		},
		sectionDef{
			slug:  "beneficiaries",
			title: core.Copy{En: "Who will benefit from your project?", Cy: "Pwy fydd yn elwa o'ch prosiect?"},
			steps: beneficiariesSteps(),
		},
		sectionDef{
			slug:  "organisation",
			title: core.Copy{En: "Your organisation", Cy: "Eich sefydliad"},
			steps: []*form.Step{organisationDetailsStep(), organisationFinancesStep()},
		},
		sectionDef{
			slug:  "main-contact",
			title: core.Copy{En: "Main contact", Cy: "Prif gyswllt"},
			steps: []*form.Step{mainContactStep()},
		},
		sectionDef{
			slug:  "budget",
			title: core.Copy{En: "Budget", Cy: "Cyllideb"},
			steps: []*form.Step{budgetStep()},
		},
		sectionDef{
			slug:  "terms",
			title: core.Copy{En: "Terms and conditions", Cy: "Telerau ac amodau"},
			steps: []*form.Step{termsStep()},
		},
	)
}

func projectDetailsStep() *form.Step {
	return &form.Step{
		Title: core.Copy{En: "Project details", Cy: "Manylion y prosiect"},
		Fieldsets: singleFieldset(
			core.Copy{En: "Project details", Cy: "Manylion y prosiect"},
			form.Field{
				Name:  "projectName",
				Label: core.Copy{En: "What is the name of your project?", Cy: "Beth yw enw eich prosiect?"},
				Type:  fields.TypeText,
				Rules: "required,max=80",
				Messages: map[string]core.Copy{
					"required": {En: "Enter a project name", Cy: "Rhowch enw prosiect"},
					"max":      {En: "Project name must be 80 characters or less", Cy: "Rhaid i enw'r prosiect fod yn llai na 80 nod"},
				},
			},
			form.Field{
				Name:        "projectDateRange",
				Label:       core.Copy{En: "When would you like to start and end your project?", Cy: "Pryd yr hoffech ddechrau a gorffen eich prosiect?"},
				Explanation: core.Copy{En: "Your project can last up to 12 months and start at least 12 weeks from today.", Cy: "Gall eich prosiect bara hyd at 12 mis a dechrau o leiaf 12 wythnos o heddiw."},
				Type:        fields.TypeDateRange,
				Rules:       "required,daterangeorder,startafter=84,maxspan=366",
				Messages: map[string]core.Copy{
					"base":      {En: "Enter a project start and end date", Cy: "Rhowch ddyddiad dechrau a gorffen y prosiect"},
					"daterange": {En: "Project start and end dates must be real dates", Cy: "Rhaid i ddyddiadau dechrau a gorffen y prosiect fod yn rhai go iawn"},
				},
			},
			form.Field{
				Name:    "projectCountry",
				Label:   core.Copy{En: "What country will your project be based in?", Cy: "Ym mha wlad fydd eich prosiect wedi'i leoli?"},
				Type:    fields.TypeRadio,
				Rules:   "required",
				Options: countries(false),
				Messages: map[string]core.Copy{
					"base": {En: "Select a country", Cy: "Dewiswch wlad"},
				},
			},
			form.Field{
				Name:  "projectPostcode",
				Label: core.Copy{En: "What is the postcode of where your project will take place?", Cy: "Beth yw cod post lleoliad eich prosiect?"},
				Type:  fields.TypeText,
				Rules: "required,postcode",
			},
		),
	}
}

func wordsField(name string, label core.Copy, min, max string) form.Field {
	return form.Field{
		Name:  name,
		Label: label,
		Type:  fields.TypeTextarea,
		Rules: "required,minwords=" + min + ",maxwords=" + max,
	}
}

func yourIdeaStep() *form.Step {
	return &form.Step{
		Title: core.Copy{En: "Your idea", Cy: "Eich syniad"},
		Fieldsets: singleFieldset(
			core.Copy{En: "Your idea", Cy: "Eich syniad"},
			wordsField("yourIdeaProject", core.Copy{En: "What would you like to do?", Cy: "Beth hoffech chi ei wneud?"}, "50", "300"),
			wordsField("yourIdeaPriorities", core.Copy{En: "How does your project meet at least one of our funding priorities?", Cy: "Sut mae eich prosiect yn bodloni o leiaf un o'n blaenoriaethau ariannu?"}, "50", "150"),
			wordsField("yourIdeaCommunity", core.Copy{En: "How does your project involve your community?", Cy: "Sut mae eich prosiect yn cynnwys eich cymuned?"}, "50", "200"),
		),
	}
}

func beneficiariesSteps() []*form.Step {
	return []*form.Step{
		{
			Title: core.Copy{En: "Specific groups of people", Cy: "Grwpiau penodol o bobl"},
			Fieldsets: singleFieldset(
				core.Copy{En: "Specific groups of people", Cy: "Grwpiau penodol o bobl"},
				form.Field{
					Name:    "beneficiariesGroupsCheck",
					Label:   core.Copy{En: "Is your project aimed at a specific group of people?", Cy: "A yw eich prosiect wedi'i anelu at grŵp penodol o bobl?"},
					Type:    fields.TypeRadio,
					Rules:   "required",
					Options: yesNo(),
				},
			),
		},
		{
			Title:     core.Copy{En: "Groups of people", Cy: "Grwpiau o bobl"},
			Condition: dataEquals("beneficiariesGroupsCheck", "yes"),
			Fieldsets: singleFieldset(
				core.Copy{En: "What specific groups is your project aimed at?", Cy: "At ba grwpiau penodol mae eich prosiect wedi'i anelu?"},
				form.Field{
					Name:  "beneficiariesGroups",
					Label: core.Copy{En: "What specific groups is your project aimed at?", Cy: "At ba grwpiau penodol mae eich prosiect wedi'i anelu?"},
					Type:  fields.TypeCheckbox,
					Rules: "required",
					Options: []fields.Option{
						{Value: "ethnic-background", Label: core.Copy{En: "People from a particular ethnic background", Cy: "Pobl o gefndir ethnig penodol"}},
						{Value: "gender", Label: core.Copy{En: "People of a particular gender", Cy: "Pobl o ryw penodol"}},
						{Value: "age", Label: core.Copy{En: "People of a particular age", Cy: "Pobl o oedran penodol"}},
						{Value: "disabled-people", Label: core.Copy{En: "Disabled people", Cy: "Pobl anabl"}},
						{Value: "religion", Label: core.Copy{En: "People with a particular religious belief", Cy: "Pobl â chred grefyddol benodol"}},
						{Value: "lgbt", Label: core.Copy{En: "Lesbian, gay, or bisexual people", Cy: "Pobl lesbiaidd, hoyw neu ddeurywiol"}},
						{Value: "caring-responsibilities", Label: core.Copy{En: "People with caring responsibilities", Cy: "Pobl â chyfrifoldebau gofalu"}},
					},
				},
				form.Field{
					Name:  "beneficiariesGroupsOther",
					Label: core.Copy{En: "Other", Cy: "Arall"},
					Type:  fields.TypeText,
					Rules: "omitempty,max=255",
				},
			),
		},
		{
			Title:     core.Copy{En: "Welsh language", Cy: "Yr iaith Gymraeg"},
			Condition: dataEquals("projectCountry", "wales"),
			Fieldsets: singleFieldset(
				core.Copy{En: "Welsh language", Cy: "Yr iaith Gymraeg"},
				form.Field{
					Name:  "beneficiariesWelshLanguage",
					Label: core.Copy{En: "How many of the people who will benefit from your project speak Welsh?", Cy: "Faint o'r bobl a fydd yn elwa o'ch prosiect sy'n siarad Cymraeg?"},
					Type:  fields.TypeRadio,
					Rules: "required",
					Options: []fields.Option{
						{Value: "all", Label: core.Copy{En: "All", Cy: "Pob un"}},
						{Value: "more-than-half", Label: core.Copy{En: "More than half", Cy: "Mwy na hanner"}},
						{Value: "less-than-half", Label: core.Copy{En: "Less than half", Cy: "Llai na hanner"}},
						{Value: "none", Label: core.Copy{En: "None", Cy: "Dim"}},
					},
				},
			),
		},
	}
}

func organisationDetailsStep() *form.Step {
	return &form.Step{
		Title: core.Copy{En: "Organisation details", Cy: "Manylion y sefydliad"},
		Fieldsets: []form.Fieldset{
			{
				Legend: core.Copy{En: "Organisation details", Cy: "Manylion y sefydliad"},
				Fields: []form.Field{
					{
						Name:  "organisationLegalName",
						Label: core.Copy{En: "What is the full legal name of your organisation?", Cy: "Beth yw enw cyfreithiol llawn eich sefydliad?"},
						Type:  fields.TypeText,
						Rules: "required,max=255",
					},
					{
						Name:    "organisationHasDifferentTradingName",
						Label:   core.Copy{En: "Does your organisation use a different name in your day-to-day work?", Cy: "A yw eich sefydliad yn defnyddio enw gwahanol yn eich gwaith o ddydd i ddydd?"},
						Type:    fields.TypeRadio,
						Rules:   "required",
						Options: yesNo(),
					},
					{
						Name:          "organisationTradingName",
						Label:         core.Copy{En: "Tell us the name your organisation uses day-to-day", Cy: "Dywedwch wrthym yr enw y mae eich sefydliad yn ei ddefnyddio o ddydd i ddydd"},
						Type:          fields.TypeText,
						Rules:         "required,max=255",
						ConditionalOn: &form.ConditionalOn{Name: "organisationHasDifferentTradingName", Value: "yes"},
					},
					{
						Name:  "organisationStartDate",
						Label: core.Copy{En: "When was your organisation set up?", Cy: "Pryd sefydlwyd eich sefydliad?"},
						Type:  fields.TypeMonthYear,
						Rules: "required,pastmonthyear",
					},
					addressField("organisationAddress", core.Copy{En: "What is the main or registered address of your organisation?", Cy: "Beth yw prif gyfeiriad neu gyfeiriad cofrestredig eich sefydliad?"}),
				},
			},
			{
				Legend: core.Copy{En: "Organisation type", Cy: "Math o sefydliad"},
				Fields: []form.Field{{
					Name:  "organisationType",
					Label: core.Copy{En: "What type of organisation are you?", Cy: "Pa fath o sefydliad ydych chi?"},
					Type:  fields.TypeRadio,
					Rules: "required",
					Options: []fields.Option{
						{Value: "unregistered-vco", Label: core.Copy{En: "Unregistered voluntary or community organisation", Cy: "Sefydliad gwirfoddol neu gymunedol anghofrestredig"}},
						{Value: "unincorporated-registered-charity", Label: core.Copy{En: "Registered charity (unincorporated)", Cy: "Elusen gofrestredig (anghorfforedig)"}},
						{Value: "charitable-incorporated-organisation", Label: core.Copy{En: "Charitable incorporated organisation (CIO)", Cy: "Sefydliad corfforedig elusennol (SCE)"}},
						{Value: "not-for-profit-company", Label: core.Copy{En: "Not-for-profit company", Cy: "Cwmni nid-er-elw"}},
						{Value: "school", Label: core.Copy{En: "School", Cy: "Ysgol"}},
						{Value: "statutory-body", Label: core.Copy{En: "Statutory body", Cy: "Corff statudol"}},
					},
				}},
			},
		},
	}
}

func organisationFinancesStep() *form.Step {
	return &form.Step{
		Title: core.Copy{En: "Organisation finances", Cy: "Cyllid y sefydliad"},
		Fieldsets: singleFieldset(
			core.Copy{En: "Organisation finances", Cy: "Cyllid y sefydliad"},
			form.Field{
				Name:  "accountingYearDate",
				Label: core.Copy{En: "What is your accounting year end date?", Cy: "Beth yw dyddiad gorffen eich blwyddyn ariannol?"},
				Type:  fields.TypeDayMonth,
				Rules: "required",
			},
			form.Field{
				Name:  "totalIncomeYear",
				Label: core.Copy{En: "What is your total income for the year?", Cy: "Beth yw cyfanswm eich incwm am y flwyddyn?"},
				Type:  fields.TypeCurrency,
				Rules: "required,currency",
			},
		),
	}
}

func mainContactStep() *form.Step {
	return &form.Step{
		Title: core.Copy{En: "Main contact", Cy: "Prif gyswllt"},
		Fieldsets: []form.Fieldset{
			{
				Legend: core.Copy{En: "Who is your main contact?", Cy: "Pwy yw eich prif gyswllt?"},
				Fields: []form.Field{
					{
						Name:  "mainContactName",
						Label: core.Copy{En: "Full name", Cy: "Enw llawn"},
						Type:  fields.TypeText,
						Rules: "required,max=80",
					},
					{
						Name:  "mainContactDateOfBirth",
						Label: core.Copy{En: "Date of birth", Cy: "Dyddiad geni"},
						Type:  fields.TypeDate,
						Rules: "required,pastdate,minage=16",
						Messages: map[string]core.Copy{
							"minage": {En: "Main contact must be at least 16 years old", Cy: "Rhaid i'r prif gyswllt fod yn o leiaf 16 oed"},
						},
					},
					addressField("mainContactAddress", core.Copy{En: "Home address", Cy: "Cyfeiriad cartref"}),
				},
			},
			{
				Legend: core.Copy{En: "Contact details", Cy: "Manylion cyswllt"},
				Fields: []form.Field{
					emailField("mainContactEmail"),
					{
						Name:  "mainContactPhone",
						Label: core.Copy{En: "Telephone number", Cy: "Rhif ffôn"},
						Type:  fields.TypeTel,
						Rules: "required,ukphone",
					},
					{
						Name:  "mainContactCommunicationNeeds",
						Label: core.Copy{En: "Communication needs", Cy: "Anghenion cyfathrebu"},
						Type:  fields.TypeText,
						Rules: "omitempty,max=255",
					},
				},
			},
		},
	}
}

func budgetStep() *form.Step {
	return &form.Step{
		Title: core.Copy{En: "Project budget", Cy: "Cyllideb y prosiect"},
		Fieldsets: singleFieldset(
			core.Copy{En: "Project budget", Cy: "Cyllideb y prosiect"},
			form.Field{
				Name:  "projectBudget",
				Label: core.Copy{En: "List the costs you would like us to fund", Cy: "Rhestrwch y costau yr hoffech i ni eu hariannu"},
				Type:  fields.TypeBudget,
				Rules: "required,min=1,max=10,budgetrows,budgettotalmin=300,budgettotalmax=" + MaxAwardsForAllBudget,
				Messages: map[string]core.Copy{
					"required": {En: "Enter a project budget", Cy: "Rhowch gyllideb prosiect"},
					"max":      {En: "You can only add up to 10 budget items", Cy: "Gallwch ychwanegu hyd at 10 eitem yn y gyllideb yn unig"},
				},
			},
			form.Field{
				Name:  "projectTotalCosts",
				Label: core.Copy{En: "Tell us the total cost of your project", Cy: "Dywedwch wrthym gyfanswm cost eich prosiect"},
				Type:  fields.TypeCurrency,
				Rules: "required,currency",
			},
		),
	}
}

func termsStep() *form.Step {
	return &form.Step{
		Title: core.Copy{En: "Terms and conditions", Cy: "Telerau ac amodau"},
		Fieldsets: singleFieldset(
			core.Copy{En: "Terms and conditions of your grant", Cy: "Telerau ac amodau eich grant"},
			form.Field{
				Name:  "termsAgreement",
				Label: core.Copy{En: "I agree", Cy: "Rwy'n cytuno"},
				Type:  fields.TypeCheckbox,
				Rules: "required,min=4",
				Options: []fields.Option{
					{Value: "terms", Label: core.Copy{En: "The terms and conditions of the grant", Cy: "Telerau ac amodau'r grant"}},
					{Value: "data", Label: core.Copy{En: "How my data will be used", Cy: "Sut y bydd fy nata yn cael ei ddefnyddio"}},
					{Value: "accurate", Label: core.Copy{En: "The information I gave is accurate", Cy: "Mae'r wybodaeth a roddais yn gywir"}},
					{Value: "authorised", Label: core.Copy{En: "I am authorised to apply", Cy: "Mae gennyf awdurdod i wneud cais"}},
				},
				Messages: map[string]core.Copy{
					"base": {En: "You must agree to every statement", Cy: "Rhaid i chi gytuno â phob datganiad"},
				},
			},
			form.Field{
				Name:  "termsPersonName",
				Label: core.Copy{En: "Full name of person completing this form", Cy: "Enw llawn y person sy'n cwblhau'r ffurflen hon"},
				Type:  fields.TypeText,
				Rules: "required,max=80",
			},
			form.Field{
				Name:  "termsPersonPosition",
				Label: core.Copy{En: "Position in organisation", Cy: "Safle yn y sefydliad"},
				Type:  fields.TypeText,
				Rules: "required,max=80",
			},
		),
	}
}
