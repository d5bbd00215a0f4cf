package echoapi

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/biglotteryfund/funding/core/fields"
	"github.com/biglotteryfund/funding/services/postcode"
)

type addressApi struct {
	lookup postcode.Lookuper
}

func registerAddressAPI(g *echo.Group, lookup postcode.Lookuper) {
	api := addressApi{lookup: lookup}

	g.GET("/address-lookup", api.find)
}

type AddressLookupResponse struct {
	Addresses []fields.Address `json:"addresses"`
	// Fallback asks the client to let the user type the address in.
	Fallback bool `json:"fallback,omitempty"`
}

// manualAddressURL is where browsers without scripts are sent to type the address in.
// Only local paths are followed.
func manualAddressURL(redirect string) (string, bool) {
	if redirect == "" || !strings.HasPrefix(redirect, "/") || strings.HasPrefix(redirect, "//") {
		return "", false
	}
	u, err := url.Parse(redirect)
	if err != nil {
		return "", false
	}
	q := u.Query()
	q.Set("address", "manual")
	u.RawQuery = q.Encode()
	return u.String(), true
}

func (api *addressApi) find(ctx echo.Context) error {
	addrs, err := api.lookup.Lookup(ctx.Request().Context(), ctx.QueryParam("postcode"))
	if err != nil {
		switch errors.Cause(err) {
		case postcode.ErrInvalidPostcode:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case postcode.ErrLookupFailed:
			ctx.Logger().Warnf("%v", err)
			if u, ok := manualAddressURL(ctx.QueryParam("redirectUrl")); ok && !isAjax(ctx) {
				return ctx.Redirect(http.StatusFound, u)
			}
			return ctx.JSON(http.StatusOK, AddressLookupResponse{Addresses: []fields.Address{}, Fallback: true})
		default:
			return errors.Wrap(err, "looking up postcode")
		}
	}
	if addrs == nil {
		addrs = []fields.Address{}
	}
	return ctx.JSON(http.StatusOK, AddressLookupResponse{Addresses: addrs})
}
