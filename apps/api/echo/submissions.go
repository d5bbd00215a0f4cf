package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/biglotteryfund/funding/core/feedback"
	"github.com/biglotteryfund/funding/core/survey"
)

type submissionApi struct {
	surveys  *survey.Service
	feedback *feedback.Service
}

func registerSubmissionAPI(g *echo.Group, surveys *survey.Service, fb *feedback.Service) {
	api := submissionApi{surveys: surveys, feedback: fb}

	g.POST("/survey", api.submitSurvey)
	g.POST("/feedback", api.submitFeedback)
}

func (api *submissionApi) submitSurvey(ctx echo.Context) error {
	values, err := bindValues(ctx)
	if err != nil {
		return err
	}
	resp, err := api.surveys.Submit(ctx.Request().Context(), values, contextLocale(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, resp)
}

func (api *submissionApi) submitFeedback(ctx echo.Context) error {
	values, err := bindValues(ctx)
	if err != nil {
		return err
	}
	fb, err := api.feedback.Submit(ctx.Request().Context(), values, contextLocale(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, fb)
}
