package materials

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/biglotteryfund/funding/core"
	"github.com/biglotteryfund/funding/core/fields"
	"github.com/biglotteryfund/funding/core/form"
)

type OrderItem struct {
	Code     string `json:"code"`
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
}

type Order struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	Phone       string         `json:"phone"`
	Address     fields.Address `json:"address"`
	GrantNumber string         `json:"grantNumber,omitempty"`
	Items       []OrderItem    `json:"items"`
	Locale      core.Locale    `json:"locale"`
	CreatedAt   time.Time      `json:"createdAt"` // UTC
}

type (
	Repository interface {
		CreateOrder(ctx context.Context, order Order) (Order, error)
		// QueryOrders returns every order, newest first.
		QueryOrders(ctx context.Context) ([]Order, error)
	}

	Service struct {
		repo      Repository
		catalogue *Catalogue
		validator *form.Validator
		mailSvc   core.EmailService
		conf      *core.Config
	}
)

func NewService(
	repo Repository,
	catalogue *Catalogue,
	validator *form.Validator,
	mailSvc core.EmailService,
	conf *core.Config,
) *Service {
	return &Service{
		repo:      repo,
		catalogue: catalogue,
		validator: validator,
		mailSvc:   mailSvc,
		conf:      conf,
	}
}

func (svc *Service) Catalogue() *Catalogue { return svc.catalogue }

// OrderFields are the contact details asked for when ordering.
var OrderFields = []form.Field{
	{
		Name:  "yourName",
		Label: core.Copy{En: "Your name", Cy: "Eich enw"},
		Type:  fields.TypeText,
		Rules: "required,max=255",
		Messages: map[string]core.Copy{
			"required": {En: "Enter your name", Cy: "Rhowch eich enw"},
		},
	},
	{
		Name:  "yourEmail",
		Label: core.Copy{En: "Email address", Cy: "Cyfeiriad e-bost"},
		Type:  fields.TypeEmail,
		Rules: "required,email",
	},
	{
		Name:  "yourPhone",
		Label: core.Copy{En: "Phone number", Cy: "Rhif ffôn"},
		Type:  fields.TypeTel,
		Rules: "required,ukphone",
	},
	{
		Name:  "yourAddress",
		Label: core.Copy{En: "Delivery address", Cy: "Cyfeiriad danfon"},
		Type:  fields.TypeAddress,
		Rules: "required",
	},
	{
		Name:  "yourGrantNumber",
		Label: core.Copy{En: "Grant reference number", Cy: "Cyfeirnod y grant"},
		Type:  fields.TypeText,
		Rules: "omitempty,max=40",
	},
}

var (
	emptyBasketText = core.Copy{En: "Your basket is empty", Cy: "Mae eich basged yn wag"}

	orderSubject = core.Copy{En: "Thank you for your order", Cy: "Diolch am eich archeb"}
	orderBody    = core.Copy{
		En: "We have received your order and will send it to you soon.",
		Cy: "Rydym wedi derbyn eich archeb a byddwn yn ei hanfon atoch yn fuan.",
	}
)

// PlaceOrder validates the contact details, stores the order of the basket's materials and emails
// it to the fulfilment address with a copy to the customer. Invalid details and empty baskets are
// returned as a core.ValidationError.
func (svc *Service) PlaceOrder(ctx context.Context, basket Basket, values form.Data, l core.Locale) (Order, error) {
	res := svc.validator.ValidateFields(OrderFields, values, l)
	if basket.IsEmpty() {
		res.Errors = append(res.Errors, core.FieldError{Field: "basket", Error: emptyBasketText.In(l), Code: "required"})
	}
	if !res.IsValid() {
		return Order{}, res.Err()
	}

	addr, err := fields.Coerce(fields.TypeAddress, res.Values["yourAddress"])
	if err != nil {
		return Order{}, errors.Wrap(err, "coercing address")
	}
	order := Order{
		ID:          uuid.NewString(),
		Name:        res.String("yourName"),
		Email:       res.String("yourEmail"),
		Phone:       res.String("yourPhone"),
		Address:     addr.(fields.Address),
		GrantNumber: res.String("yourGrantNumber"),
		Locale:      l,
		CreatedAt:   time.Now().UTC(),
	}
	for _, line := range basket.Lines(svc.catalogue, core.LocaleEn) {
		order.Items = append(order.Items, OrderItem{Code: line.Code, Title: line.Title, Quantity: line.Quantity})
	}

	order, err = svc.repo.CreateOrder(ctx, order)
	if err != nil {
		return Order{}, errors.Wrap(err, "creating order")
	}
	svc.mailSvc.SendMessages(svc.newFulfilmentEmail(order), newConfirmationEmail(order))
	return order, nil
}

func (svc *Service) Query(ctx context.Context) ([]Order, error) {
	return svc.repo.QueryOrders(ctx)
}

func orderLines(order Order) []string {
	lines := make([]string, 0, len(order.Items))
	for _, it := range order.Items {
		lines = append(lines, fmt.Sprintf("%d x %s (%s)", it.Quantity, it.Title, it.Code))
	}
	return lines
}

func (svc *Service) newFulfilmentEmail(order Order) *core.EmailMessage {
	to := []mail.Address{{Name: "Materials", Address: svc.conf.Email.MaterialsOrderEmail}}
	paragraphs := []string{
		"Name: " + order.Name,
		"Email: " + order.Email,
		"Phone: " + order.Phone,
		"Address: " + fields.Format(fields.TypeAddress, order.Address, fields.FormatOptions{}),
	}
	if order.GrantNumber != "" {
		paragraphs = append(paragraphs, "Grant reference: "+order.GrantNumber)
	}
	subject := fmt.Sprintf("Materials order %s", order.ID)
	return core.NewNotification(to, subject, core.LocaleEn, core.Notification{
		Heading:    subject,
		Paragraphs: paragraphs,
		Lines:      orderLines(order),
	})
}

func newConfirmationEmail(order Order) *core.EmailMessage {
	l := order.Locale
	to := []mail.Address{{Name: order.Name, Address: order.Email}}
	return core.NewNotification(to, orderSubject.In(l), l, core.Notification{
		Heading:    orderSubject.In(l),
		Paragraphs: []string{orderBody.In(l)},
		Lines:      orderLines(order),
	})
}
