package echoapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/biglotteryfund/funding/core"
	"github.com/biglotteryfund/funding/core/form"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// bindValues reads submitted answers from a JSON body or a url-encoded form,
// nesting bracketed names such as "projectDateRange[startDate][day]".
func bindValues(ctx echo.Context) (form.Data, error) {
	if strings.HasPrefix(ctx.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		values := make(form.Data)
		if err := json.NewDecoder(ctx.Request().Body).Decode(&values); err != nil && err != io.EOF {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body").SetInternal(err)
		}
		return values, nil
	}
	params, err := ctx.FormParams()
	if err != nil {
		return nil, errors.Wrap(err, "reading form params")
	}
	return form.ParseValues(params), nil
}
