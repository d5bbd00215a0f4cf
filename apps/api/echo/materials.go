package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/biglotteryfund/funding/core"
	"github.com/biglotteryfund/funding/core/form"
	"github.com/biglotteryfund/funding/core/materials"
	"github.com/biglotteryfund/funding/services/session"
)

var (
	materialsTitle = core.Copy{En: "Free materials", Cy: "Deunyddiau am ddim"}
	orderedFlash   = core.Copy{
		En: "Thank you for your order. We have emailed you a confirmation.",
		Cy: "Diolch am eich archeb. Rydym wedi anfon cadarnhad atoch drwy e-bost.",
	}
)

type materialsApi struct {
	svc *materials.Service
}

func registerMaterialsRoutes(g *echo.Group, svc *materials.Service) {
	api := materialsApi{svc: svc}

	g.GET("", api.catalogue)
	g.POST("/basket", api.updateBasket)
	g.POST("/order", api.order)
}

type (
	BasketRequest struct {
		Action materials.Action `json:"action" form:"action"`
		Code   string           `json:"code" form:"code"`
	}

	BasketResponse struct {
		Lines []materials.BasketLine `json:"lines"`
		Count int                    `json:"count"`
	}

	materialsPage struct {
		Items   []materials.Material   `json:"items"`
		Basket  []materials.BasketLine `json:"basket"`
		Count   int                    `json:"count"`
		Fields  []form.Field           `json:"fields"`
		Errors  []core.FieldError      `json:"errors"`
		BaseURL string                 `json:"baseUrl"`
	}
)

func requireSession(ctx echo.Context) (*session.Session, error) {
	sess := contextSession(ctx)
	if sess == nil {
		return nil, errors.New("session not found in echo.Context")
	}
	return sess, nil
}

func (api *materialsApi) basketResponse(ctx echo.Context, basket materials.Basket) BasketResponse {
	return BasketResponse{Lines: basket.Lines(api.svc.Catalogue(), contextLocale(ctx)), Count: basket.Count()}
}

func (api *materialsApi) render(ctx echo.Context, code int, sess *session.Session, values form.Data, errs []core.FieldError) error {
	flds := make([]form.Field, len(materials.OrderFields))
	for i, f := range materials.OrderFields {
		f.Value = values[f.Name]
		flds[i] = f
	}
	resp := api.basketResponse(ctx, sess.Basket)
	return ctx.Render(code, "materials", newPage(ctx, materialsTitle, materialsPage{
		Items:   api.svc.Catalogue().Items(),
		Basket:  resp.Lines,
		Count:   resp.Count,
		Fields:  flds,
		Errors:  errs,
		BaseURL: localePrefix(ctx) + "/materials",
	}))
}

// Handlers

func (api *materialsApi) catalogue(ctx echo.Context) error {
	sess, err := requireSession(ctx)
	if err != nil {
		return err
	}
	if wantsJSON(ctx) {
		return ctx.JSON(http.StatusOK, echo.Map{
			"materials": api.svc.Catalogue().Items(),
			"basket":    api.basketResponse(ctx, sess.Basket),
		})
	}
	return api.render(ctx, http.StatusOK, sess, nil, nil)
}

func (api *materialsApi) updateBasket(ctx echo.Context) error {
	sess, err := requireSession(ctx)
	if err != nil {
		return err
	}
	var data BasketRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BasketRequest")
	}

	if err = sess.Basket.Apply(api.svc.Catalogue(), data.Action, data.Code); err != nil {
		if errors.Cause(err) == materials.ErrUnknownAction {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return err
	}
	if wantsJSON(ctx) {
		return ctx.JSON(http.StatusOK, api.basketResponse(ctx, sess.Basket))
	}
	return ctx.Redirect(http.StatusSeeOther, localePrefix(ctx)+"/materials")
}

func (api *materialsApi) order(ctx echo.Context) error {
	sess, err := requireSession(ctx)
	if err != nil {
		return err
	}
	values, err := bindValues(ctx)
	if err != nil {
		return err
	}

	l := contextLocale(ctx)
	order, err := api.svc.PlaceOrder(ctx.Request().Context(), sess.Basket, values, l)
	if err != nil {
		if vErr, ok := errors.Cause(err).(*core.ValidationError); ok && !wantsJSON(ctx) {
			return api.render(ctx, http.StatusBadRequest, sess, values, vErr.Fields)
		}
		return err
	}

	_ = sess.Basket.Apply(api.svc.Catalogue(), materials.ActionClear, "")
	if wantsJSON(ctx) {
		return ctx.JSON(http.StatusCreated, order)
	}
	sess.AddFlash(orderedFlash.In(l))
	return ctx.Redirect(http.StatusSeeOther, localePrefix(ctx)+"/materials")
}
