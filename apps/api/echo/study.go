package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ustawi/core/study"
)

type studyApi struct {
	svc study.ServiceInterface
}

func registerStudyAPI(g *echo.Group, jwt, active echo.MiddlewareFunc, svc study.ServiceInterface) {
	api := studyApi{svc: svc}

	sg := g.Group("/study", jwt, active, studentMiddleware())
	sg.GET("", api.query)
	sg.POST("", api.create)
	sg.GET("/stats", api.stats)
	sg.PUT("/:id", api.update)
	sg.DELETE("/:id", api.destroy)
}

// Handlers

func (api *studyApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	sessions, err := api.svc.Query(
		ctx.Request().Context(),
		claims.Subject,
		intQueryParam(ctx, daysParam, study.DefaultDays),
		ctx.QueryParam("subject"),
		ctx.QueryParam("type"),
	)
	if err != nil {
		return errors.Wrap(err, "querying study sessions")
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func (api *studyApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data study.NewSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSession")
	}

	session, err := api.svc.Create(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "logging study session")
	}
	return ctx.JSON(http.StatusCreated, session)
}

func (api *studyApi) update(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data study.UpdateSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSession")
	}

	session, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "updating study session")
	}
	return ctx.JSON(http.StatusOK, session)
}

func (api *studyApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id"), claims.Subject); err != nil {
		return errors.Wrap(err, "deleting study session")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studyApi) stats(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	stats, err := api.svc.Stats(ctx.Request().Context(), claims.Subject, ctx.QueryParam("period"))
	if err != nil {
		return errors.Wrap(err, "computing study stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}
