package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ustawi/core/mood"
)

type moodApi struct {
	svc mood.ServiceInterface
}

// registerMoodAPI registers the mood log endpoints; they are reserved to students.
func registerMoodAPI(g *echo.Group, jwt, active echo.MiddlewareFunc, svc mood.ServiceInterface) {
	api := moodApi{svc: svc}

	mg := g.Group("/moods", jwt, active, studentMiddleware())
	mg.GET("", api.history)
	mg.POST("", api.log)
	mg.GET("/today", api.today)
	mg.GET("/stats", api.stats)
}

// Handlers

func (api *moodApi) log(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data mood.NewEntry
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEntry")
	}

	logged, err := api.svc.Log(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "logging mood")
	}
	return ctx.JSON(http.StatusCreated, logged)
}

func (api *moodApi) history(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	days := intQueryParam(ctx, daysParam, mood.DefaultHistoryDays)
	entries, err := api.svc.History(ctx.Request().Context(), claims.Subject, days)
	if err != nil {
		return errors.Wrap(err, "querying mood history")
	}
	if entries == nil {
		entries = []mood.Entry{}
	}
	return ctx.JSON(http.StatusOK, entries)
}

// today responds with `null` when no mood was logged today.
func (api *moodApi) today(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	entry, err := api.svc.Today(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "getting today's mood")
	}
	return ctx.JSON(http.StatusOK, entry)
}

func (api *moodApi) stats(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	stats, err := api.svc.Stats(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "computing mood stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}
