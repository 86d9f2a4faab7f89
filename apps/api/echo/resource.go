package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ustawi/core/resource"
)

type resourceApi struct {
	svc resource.ServiceInterface
}

func registerResourceAPI(g *echo.Group, jwt, active echo.MiddlewareFunc, svc resource.ServiceInterface) {
	api := resourceApi{svc: svc}

	rg := g.Group("/resources", jwt, active, studentMiddleware())
	rg.GET("", api.query)
	rg.POST("", api.create)
	rg.GET("/folders", api.folders)
	rg.GET("/subjects", api.subjects)
	rg.PUT("/:id", api.update)
	rg.DELETE("/:id", api.destroy)
}

// Handlers

func (api *resourceApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	filter := resource.QueryFilter{
		Subject: ctx.QueryParam("subject"),
		Folder:  ctx.QueryParam("folder"),
		Type:    ctx.QueryParam("type"),
		Search:  ctx.QueryParam("search"),
		Limit:   intQueryParam(ctx, "limit", resource.DefaultLimit),
	}
	resources, err := api.svc.Query(ctx.Request().Context(), claims.Subject, filter)
	if err != nil {
		return errors.Wrap(err, "querying resources")
	}
	return ctx.JSON(http.StatusOK, resources)
}

func (api *resourceApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data resource.NewResource
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewResource")
	}

	r, err := api.svc.Create(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "creating resource")
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *resourceApi) update(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data resource.UpdateResource
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateResource")
	}

	r, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "updating resource")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *resourceApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id"), claims.Subject); err != nil {
		return errors.Wrap(err, "deleting resource")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *resourceApi) folders(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	folders, err := api.svc.Folders(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "listing resource folders")
	}
	return ctx.JSON(http.StatusOK, folders)
}

func (api *resourceApi) subjects(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	subjects, err := api.svc.Subjects(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "listing resource subjects")
	}
	return ctx.JSON(http.StatusOK, subjects)
}
