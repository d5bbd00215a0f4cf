package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/biglotteryfund/funding/core"
	"github.com/biglotteryfund/funding/core/application"
	"github.com/biglotteryfund/funding/core/fields"
	"github.com/biglotteryfund/funding/core/form"
)

type applyApi struct {
	svc   *application.Service
	forms *form.Registry
	auth  *authenticator
}

func registerApplyRoutes(g *echo.Group, svc *application.Service, forms *form.Registry, auth *authenticator) {
	api := applyApi{svc: svc, forms: forms, auth: auth}

	g.GET("", api.dashboard)
	g.POST("/:formId", api.create)

	ag := g.Group("/:formId/:id", api.applicationMiddleware)
	ag.GET("", api.summary)
	ag.POST("/submit", api.submit)
	ag.POST("/delete", api.destroy)
	ag.GET("/:section/:step", api.step)
	ag.POST("/:section/:step", api.saveStep)
}

type (
	// StepResponse is what JSON clients get back after saving a step.
	StepResponse struct {
		Application application.Application `json:"application"`
		Next        *form.StepRef           `json:"next,omitempty"`
	}

	stepPage struct {
		Form           *form.Form              `json:"form"`
		Application    application.Application `json:"application"`
		Ref            form.StepRef            `json:"ref"`
		Step           form.Step               `json:"step"`
		Errors         []core.FieldError       `json:"errors"`
		FieldsetErrors [][]core.FieldError     `json:"fieldsetErrors"`
		BaseURL        string                  `json:"baseUrl"`
		PreviousURL    string                  `json:"previousUrl"`
	}

	summaryPage struct {
		Form        *form.Form              `json:"form"`
		Application application.Application `json:"application"`
		Submitted   bool                    `json:"submitted"`
		Progress    form.Progress           `json:"progress"`
		Summary     []application.Summary   `json:"summary"`
		Errors      []core.FieldError       `json:"errors"`
		BaseURL     string                  `json:"baseUrl"`
		StartURL    string                  `json:"startUrl"`
	}
)

func localePrefix(ctx echo.Context) string {
	if contextLocale(ctx) == core.LocaleCy {
		return welshPrefix
	}
	return ""
}

func applicationURL(ctx echo.Context, app application.Application) string {
	return fmt.Sprintf("%s/apply/%s/%s", localePrefix(ctx), app.FormID, app.ID)
}

func stepURL(base string, ref form.StepRef) string {
	return fmt.Sprintf("%s/%s/%d", base, ref.Section, ref.Number)
}

func contextUserID(ctx echo.Context) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// applicationMiddleware loads the application of the context user named in the path.
func (api *applyApi) applicationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		uid, err := contextUserID(ctx)
		if err != nil {
			return err
		}
		app, err := api.svc.GetForUser(ctx.Request().Context(), ctx.Param("id"), uid)
		if err != nil {
			return err
		}
		if app.FormID != ctx.Param("formId") {
			return application.ErrNotFound
		}
		ctx.Set(contextObjectKey, app)
		return next(ctx)
	}
}

func contextApplication(ctx echo.Context) (application.Application, error) {
	app, ok := ctx.Get(contextObjectKey).(application.Application)
	if !ok {
		return application.Application{}, errors.New("application not found in echo.Context")
	}
	return app, nil
}

// Handlers

func (api *applyApi) dashboard(ctx echo.Context) error {
	uid, err := contextUserID(ctx)
	if err != nil {
		return err
	}
	apps, err := api.svc.ListForUser(ctx.Request().Context(), uid)
	if err != nil {
		return errors.Wrap(err, "listing applications")
	}
	if apps == nil {
		apps = []application.Application{}
	}
	if wantsJSON(ctx) {
		return ctx.JSON(http.StatusOK, apps)
	}

	type entry struct {
		Application application.Application `json:"application"`
		Title       string                  `json:"title"`
		URL         string                  `json:"url"`
		Expires     string                  `json:"expires,omitempty"`
	}
	l := contextLocale(ctx)
	entries := make([]entry, 0, len(apps))
	for _, app := range apps {
		f, err := api.svc.Form(app)
		if err != nil {
			continue // the form was retired
		}
		e := entry{Application: app, Title: f.Title.In(l), URL: applicationURL(ctx, app)}
		if !app.IsComplete() {
			e.Expires = fields.FormatDate(app.ExpiresAt, l)
		}
		entries = append(entries, e)
	}
	return ctx.Render(http.StatusOK, "dashboard", newPage(ctx, core.Copy{
		En: "Your applications",
		Cy: "Eich ceisiadau",
	}, echo.Map{"applications": entries, "forms": api.forms.IDs()}))
}

func (api *applyApi) create(ctx echo.Context) error {
	uid, err := contextUserID(ctx)
	if err != nil {
		return err
	}
	app, err := api.svc.Create(ctx.Request().Context(), uid, ctx.Param("formId"), contextLocale(ctx))
	if err != nil {
		return err
	}
	if wantsJSON(ctx) {
		return ctx.JSON(http.StatusCreated, app)
	}

	f, err := api.svc.Form(app)
	if err != nil {
		return err
	}
	ref, ok := f.First()
	if !ok {
		return ctx.Redirect(http.StatusSeeOther, applicationURL(ctx, app))
	}
	return ctx.Redirect(http.StatusSeeOther, stepURL(applicationURL(ctx, app), ref))
}

func (api *applyApi) summary(ctx echo.Context) error {
	app, err := contextApplication(ctx)
	if err != nil {
		return err
	}
	return api.renderSummary(ctx, http.StatusOK, app, nil)
}

func (api *applyApi) renderSummary(ctx echo.Context, code int, app application.Application, errs []core.FieldError) error {
	f, err := api.svc.Form(app)
	if err != nil {
		return err
	}
	progress, err := api.svc.Progress(app)
	if err != nil {
		return errors.Wrap(err, "computing progress")
	}
	l := contextLocale(ctx)
	summary, err := api.svc.Summarise(app, l)
	if err != nil {
		return errors.Wrap(err, "summarising application")
	}

	if wantsJSON(ctx) {
		return ctx.JSON(code, echo.Map{"application": app, "progress": progress, "summary": summary, "errors": errs})
	}

	page := summaryPage{
		Form:        f,
		Application: app,
		Submitted:   app.IsComplete(),
		Progress:    progress,
		Summary:     summary,
		Errors:      errs,
		BaseURL:     applicationURL(ctx, app),
	}
	if ref, ok := f.First(); ok {
		page.StartURL = stepURL(page.BaseURL, ref)
	}
	return ctx.Render(code, "summary", newPage(ctx, f.Title, page))
}

func parseStepRef(ctx echo.Context) (form.StepRef, error) {
	if ctx.Param("step") == "" {
		return form.StepRef{}, form.ErrStepNotFound
	}
	return form.ParseStepRef(ctx.Param("section") + "/" + ctx.Param("step"))
}

func (api *applyApi) step(ctx echo.Context) error {
	app, err := contextApplication(ctx)
	if err != nil {
		return err
	}
	ref, err := parseStepRef(ctx)
	if err != nil {
		return err
	}
	return api.renderStep(ctx, http.StatusOK, app, ref, app.Data, form.StepResult{})
}

func (api *applyApi) renderStep(
	ctx echo.Context,
	code int,
	app application.Application,
	ref form.StepRef,
	values form.Data,
	res form.StepResult,
) error {
	f, err := api.svc.Form(app)
	if err != nil {
		return err
	}
	st, err := f.Step(ref)
	if err != nil {
		return err
	}
	if wantsJSON(ctx) {
		return ctx.JSON(code, echo.Map{"step": st.WithValues(values), "errors": res.Errors})
	}

	page := stepPage{
		Form:           f,
		Application:    app,
		Ref:            ref,
		Step:           st.WithValues(values),
		Errors:         res.Errors,
		FieldsetErrors: res.FieldsetErrors,
		BaseURL:        applicationURL(ctx, app),
	}
	if prev, ok := f.Previous(ref, app.Data); ok {
		page.PreviousURL = stepURL(page.BaseURL, prev)
	} else {
		page.PreviousURL = page.BaseURL
	}
	return ctx.Render(code, "step", newPage(ctx, st.Title, page))
}

func (api *applyApi) saveStep(ctx echo.Context) error {
	app, err := contextApplication(ctx)
	if err != nil {
		return err
	}
	ref, err := parseStepRef(ctx)
	if err != nil {
		return err
	}
	values, err := bindValues(ctx)
	if err != nil {
		return err
	}

	res, app, err := api.svc.SaveStep(ctx.Request().Context(), app, ref, values, contextLocale(ctx))
	if err != nil {
		return err
	}
	if !res.IsValid() {
		if wantsJSON(ctx) {
			return res.Err()
		}
		return api.renderStep(ctx, http.StatusBadRequest, app, ref, res.Values, res)
	}

	f, err := api.svc.Form(app)
	if err != nil {
		return err
	}
	next, hasNext := f.Next(ref, app.Data)
	if wantsJSON(ctx) {
		resp := StepResponse{Application: app}
		if hasNext {
			resp.Next = &next
		}
		return ctx.JSON(http.StatusOK, resp)
	}

	base := applicationURL(ctx, app)
	if !hasNext {
		return ctx.Redirect(http.StatusSeeOther, base)
	}
	return ctx.Redirect(http.StatusSeeOther, stepURL(base, next))
}

func (api *applyApi) submit(ctx echo.Context) error {
	app, err := contextApplication(ctx)
	if err != nil {
		return err
	}

	app, err = api.svc.Submit(ctx.Request().Context(), app, contextLocale(ctx))
	if err != nil {
		if vErr, ok := errors.Cause(err).(*core.ValidationError); ok && !wantsJSON(ctx) {
			return api.renderSummary(ctx, http.StatusBadRequest, app, vErr.Fields)
		}
		return err
	}
	if wantsJSON(ctx) {
		return ctx.JSON(http.StatusOK, app)
	}

	f, err := api.svc.Form(app)
	if err != nil {
		return err
	}
	return ctx.Render(http.StatusOK, "submitted", newPage(ctx, core.Copy{
		En: "Your application has been submitted",
		Cy: "Mae eich cais wedi'i gyflwyno",
	}, echo.Map{"form": f, "application": app}))
}

func (api *applyApi) destroy(ctx echo.Context) error {
	app, err := contextApplication(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), app); err != nil {
		return errors.Wrap(err, "deleting application")
	}
	if wantsJSON(ctx) {
		return ctx.NoContent(http.StatusNoContent)
	}
	return ctx.Redirect(http.StatusSeeOther, localePrefix(ctx)+"/apply")
}
