// Package postcode looks up the addresses of a UK postcode with an external address service.
package postcode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/biglotteryfund/funding/core"
	"github.com/biglotteryfund/funding/core/fields"
)

var (
	ErrInvalidPostcode = errors.New("invalid postcode")
	// ErrLookupFailed means the address service could not answer. Callers fall back to manual entry.
	ErrLookupFailed = errors.New("address lookup failed")
)

type Lookuper interface {
	Lookup(ctx context.Context, postcode string) ([]fields.Address, error)
}

type Client struct {
	baseURL string
	apiKey  string
	client  *rest.Client
}

var _ Lookuper = (*Client)(nil)

func NewClient(conf core.PostcodeConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(conf.BaseURL, "/"),
		apiKey:  conf.ApiKey,
		client:  &rest.Client{HTTPClient: &http.Client{Timeout: conf.Timeout}},
	}
}

type addressResult struct {
	Postcode  string `json:"postcode"`
	Addresses []struct {
		Line1      string `json:"line_1"`
		Line2      string `json:"line_2"`
		TownOrCity string `json:"town_or_city"`
		County     string `json:"county"`
	} `json:"addresses"`
}

// NormalisePostcode upper-cases a postcode and puts the single space before its inward code.
func NormalisePostcode(pc string) string {
	pc = strings.ToUpper(strings.Join(strings.Fields(pc), ""))
	if len(pc) < 5 {
		return pc
	}
	return pc[:len(pc)-3] + " " + pc[len(pc)-3:]
}

func (c *Client) Lookup(ctx context.Context, postcode string) ([]fields.Address, error) {
	if !fields.IsValidPostcode(postcode) {
		return nil, ErrInvalidPostcode
	}
	postcode = NormalisePostcode(postcode)

	req := rest.Request{
		Method:      rest.Get,
		BaseURL:     c.baseURL + "/find/" + url.PathEscape(postcode),
		QueryParams: map[string]string{"api-key": c.apiKey, "expand": "true"},
		Headers:     map[string]string{"Accept": "application/json"},
	}
	hreq, err := rest.BuildRequestObject(req)
	if err != nil {
		return nil, errors.Wrap(ErrLookupFailed, err.Error())
	}
	hres, err := c.client.MakeRequest(hreq.WithContext(ctx))
	if err != nil {
		return nil, errors.Wrap(ErrLookupFailed, err.Error())
	}
	res, err := rest.BuildResponse(hres)
	if err != nil {
		return nil, errors.Wrap(ErrLookupFailed, err.Error())
	}
	switch {
	case res.StatusCode == http.StatusNotFound:
		return []fields.Address{}, nil
	case res.StatusCode == http.StatusBadRequest:
		return nil, ErrInvalidPostcode
	case res.StatusCode >= http.StatusMultipleChoices:
		return nil, errors.Wrapf(ErrLookupFailed, "status %d", res.StatusCode)
	}

	var result addressResult
	if err = json.Unmarshal([]byte(res.Body), &result); err != nil {
		return nil, errors.Wrap(ErrLookupFailed, err.Error())
	}
	addresses := make([]fields.Address, 0, len(result.Addresses))
	for _, a := range result.Addresses {
		addresses = append(addresses, fields.Address{
			Line1:    a.Line1,
			Line2:    a.Line2,
			TownCity: a.TownOrCity,
			County:   a.County,
			Postcode: postcode,
		})
	}
	sort.SliceStable(addresses, func(i, j int) bool { return addresses[i].Line1 < addresses[j].Line1 })
	return addresses, nil
}
