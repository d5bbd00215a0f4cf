package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/biglotteryfund/funding/core/application"
	"github.com/biglotteryfund/funding/core/feedback"
	"github.com/biglotteryfund/funding/core/materials"
	"github.com/biglotteryfund/funding/core/survey"
)

const queryDateLayout = "2006-01-02"

type staffApi struct {
	apps      *application.Service
	surveys   *survey.Service
	feedback  *feedback.Service
	materials *materials.Service
}

// registerStaffAPI registers the read-only tools staff use to follow applications and submissions.
func registerStaffAPI(
	g *echo.Group,
	apps *application.Service,
	surveys *survey.Service,
	fb *feedback.Service,
	mats *materials.Service,
) {
	api := staffApi{apps: apps, surveys: surveys, feedback: fb, materials: mats}

	g.GET("/applications", api.queryApplications)
	g.GET("/applications/:id", api.retrieveApplication)
	g.GET("/survey", api.surveySummary)
	g.GET("/survey/responses", api.queryResponses)
	g.GET("/feedback", api.queryFeedback)
	g.GET("/orders", api.queryOrders)
}

func (api *staffApi) queryApplications(ctx echo.Context) error {
	var filter application.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	apps, err := api.apps.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying applications")
	}
	if apps == nil {
		apps = []application.Application{}
	}
	return ctx.JSON(http.StatusOK, apps)
}

func (api *staffApi) retrieveApplication(ctx echo.Context) error {
	app, err := api.apps.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	progress, err := api.apps.Progress(app)
	if err != nil {
		return err
	}
	summary, err := api.apps.Summarise(app, contextLocale(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"application": app, "progress": progress, "summary": summary})
}

// surveyFilter reads the path and the inclusive date range of the survey responses wanted.
func surveyFilter(ctx echo.Context) (survey.QueryFilter, error) {
	filter := survey.QueryFilter{Path: ctx.QueryParam("path")}
	if from := ctx.QueryParam("from"); from != "" {
		t, err := time.Parse(queryDateLayout, from)
		if err != nil {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "invalid from date")
		}
		filter.From = t
	}
	if to := ctx.QueryParam("to"); to != "" {
		t, err := time.Parse(queryDateLayout, to)
		if err != nil {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "invalid to date")
		}
		filter.To = t.Add(24*time.Hour - time.Nanosecond)
	}
	return filter, nil
}

func (api *staffApi) surveySummary(ctx echo.Context) error {
	filter, err := surveyFilter(ctx)
	if err != nil {
		return err
	}
	summary, err := api.surveys.Summary(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "summarising survey")
	}
	if summary == nil {
		summary = []survey.PathSummary{}
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *staffApi) queryResponses(ctx echo.Context) error {
	filter, err := surveyFilter(ctx)
	if err != nil {
		return err
	}
	responses, err := api.surveys.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying survey responses")
	}
	if responses == nil {
		responses = []survey.Response{}
	}
	return ctx.JSON(http.StatusOK, responses)
}

func (api *staffApi) queryFeedback(ctx echo.Context) error {
	filter := feedback.QueryFilter{Description: ctx.QueryParam("description")}
	fbs, err := api.feedback.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying feedback")
	}
	if fbs == nil {
		fbs = []feedback.Feedback{}
	}
	return ctx.JSON(http.StatusOK, fbs)
}

func (api *staffApi) queryOrders(ctx echo.Context) error {
	orders, err := api.materials.Query(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying orders")
	}
	if orders == nil {
		orders = []materials.Order{}
	}
	return ctx.JSON(http.StatusOK, orders)
}
