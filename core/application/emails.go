package application

import (
	"fmt"
	"net/mail"

	"github.com/biglotteryfund/funding/core"
	"github.com/biglotteryfund/funding/core/fields"
)

type emailCopy struct {
	Subject core.Copy
	Body    core.Copy // %s is the expiry date
}

// expiryEmails holds the text of expiry reminders by form ID and email type.
var expiryEmails = map[string]map[EmailType]emailCopy{
	"awards-for-all": {
		EmailOneMonth: {
			Subject: core.Copy{
				En: "Your National Lottery Awards for All application will be deleted in one month",
				Cy: "Bydd eich cais Arian i Bawb y Loteri Genedlaethol yn cael ei ddileu mewn mis",
			},
			Body: core.Copy{
				En: "You have not submitted your application yet. It will be deleted on %s if you do not submit it.",
				Cy: "Nid ydych wedi cyflwyno eich cais eto. Bydd yn cael ei ddileu ar %s os na fyddwch yn ei gyflwyno.",
			},
		},
		EmailOneWeek: {
			Subject: core.Copy{
				En: "Your National Lottery Awards for All application will be deleted in one week",
				Cy: "Bydd eich cais Arian i Bawb y Loteri Genedlaethol yn cael ei ddileu mewn wythnos",
			},
			Body: core.Copy{
				En: "There is one week left to submit your application. It will be deleted on %s.",
				Cy: "Mae wythnos ar ôl i gyflwyno eich cais. Bydd yn cael ei ddileu ar %s.",
			},
		},
		EmailOneDay: {
			Subject: core.Copy{
				En: "Your National Lottery Awards for All application will be deleted tomorrow",
				Cy: "Bydd eich cais Arian i Bawb y Loteri Genedlaethol yn cael ei ddileu yfory",
			},
			Body: core.Copy{
				En: "This is your last chance to submit your application. It will be deleted on %s.",
				Cy: "Dyma eich cyfle olaf i gyflwyno eich cais. Bydd yn cael ei ddileu ar %s.",
			},
		},
	},
	"standard-enquiry": {
		EmailOneMonth: {
			Subject: core.Copy{
				En: "Your funding proposal will be deleted in one month",
				Cy: "Bydd eich cynnig am arian yn cael ei ddileu mewn mis",
			},
			Body: core.Copy{
				En: "You have not sent us your funding proposal yet. It will be deleted on %s if you do not send it.",
				Cy: "Nid ydych wedi anfon eich cynnig am arian atom eto. Bydd yn cael ei ddileu ar %s os na fyddwch yn ei anfon.",
			},
		},
		EmailOneWeek: {
			Subject: core.Copy{
				En: "Your funding proposal will be deleted in one week",
				Cy: "Bydd eich cynnig am arian yn cael ei ddileu mewn wythnos",
			},
			Body: core.Copy{
				En: "There is one week left to send us your funding proposal. It will be deleted on %s.",
				Cy: "Mae wythnos ar ôl i anfon eich cynnig am arian atom. Bydd yn cael ei ddileu ar %s.",
			},
		},
		EmailOneDay: {
			Subject: core.Copy{
				En: "Your funding proposal will be deleted tomorrow",
				Cy: "Bydd eich cynnig am arian yn cael ei ddileu yfory",
			},
			Body: core.Copy{
				En: "This is your last chance to send us your funding proposal. It will be deleted on %s.",
				Cy: "Dyma eich cyfle olaf i anfon eich cynnig am arian atom. Bydd yn cael ei ddileu ar %s.",
			},
		},
	},
}

var (
	continueText = core.Copy{En: "Continue your application", Cy: "Parhau â'ch cais"}

	submittedSubject = core.Copy{En: "Thank you for your application", Cy: "Diolch am eich cais"}
	submittedBody    = core.Copy{
		En: "We have received your application. Here is a copy of your answers.",
		Cy: "Rydym wedi derbyn eich cais. Dyma gopi o'ch atebion.",
	}
)

func applicationLink(app Application) string {
	return fmt.Sprintf("/apply/%s/%s", app.FormID, app.ID)
}

// newReminderEmail returns the expiry reminder of a queued email, false if the form has no such reminder.
func newReminderEmail(due DueEmail, to mail.Address) (*core.EmailMessage, bool) {
	app := due.Application
	text, ok := expiryEmails[app.FormID][due.Type]
	if !ok {
		return nil, false
	}
	l := app.Locale
	subject := text.Subject.In(l)
	return core.NewNotification([]mail.Address{to}, subject, l, core.Notification{
		Heading:    subject,
		Paragraphs: []string{fmt.Sprintf(text.Body.In(l), fields.FormatDate(app.ExpiresAt, l))},
		Link:       applicationLink(app),
		LinkText:   continueText.In(l),
	}), true
}

// newSubmittedEmail returns the confirmation of a submitted application, with the answers given.
func newSubmittedEmail(app Application, summary []Summary, to mail.Address) *core.EmailMessage {
	l := app.Locale
	var lines []string
	for _, sec := range summary {
		for _, f := range sec.Fields {
			lines = append(lines, f.Label+": "+f.Value)
		}
	}
	return core.NewNotification([]mail.Address{to}, submittedSubject.In(l), l, core.Notification{
		Heading:    submittedSubject.In(l),
		Paragraphs: []string{submittedBody.In(l)},
		Lines:      lines,
	})
}
