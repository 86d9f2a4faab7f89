package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ustawi/core/journal"
)

type journalApi struct {
	svc journal.ServiceInterface
}

func registerJournalAPI(g *echo.Group, jwt, active echo.MiddlewareFunc, svc journal.ServiceInterface) {
	api := journalApi{svc: svc}

	jg := g.Group("/journal", jwt, active)
	jg.GET("", api.query)
	jg.POST("", api.create)
	jg.GET("/stats/sentiment", api.stats)
	jg.GET("/:id", api.retrieve)
	jg.PUT("/:id", api.update)
	jg.DELETE("/:id", api.destroy)
}

// Handlers

func (api *journalApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	entries, err := api.svc.Query(ctx.Request().Context(), claims.Subject, boolQueryParam(ctx, refreshParam))
	if err != nil {
		return errors.Wrap(err, "querying journal entries")
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *journalApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data journal.NewEntry
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEntry")
	}

	entry, err := api.svc.Create(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "creating journal entry")
	}
	return ctx.JSON(http.StatusCreated, entry)
}

func (api *journalApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	entry, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "getting journal entry")
	}
	return ctx.JSON(http.StatusOK, entry)
}

func (api *journalApi) update(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data journal.UpdateEntry
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateEntry")
	}

	entry, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "updating journal entry")
	}
	return ctx.JSON(http.StatusOK, entry)
}

func (api *journalApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id"), claims.Subject); err != nil {
		return errors.Wrap(err, "deleting journal entry")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *journalApi) stats(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	stats, err := api.svc.Stats(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "computing sentiment stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}
