package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ustawi/core/assignment"
)

type assignmentApi struct {
	svc assignment.ServiceInterface
}

func registerAssignmentAPI(g *echo.Group, jwt, active echo.MiddlewareFunc, svc assignment.ServiceInterface) {
	api := assignmentApi{svc: svc}

	ag := g.Group("/assignments", jwt, active)
	ag.POST("", api.create)
	ag.GET("", api.query)
	ag.GET("/stats/overview", api.stats)
	ag.GET("/upcoming", api.upcoming)
	ag.GET("/overdue", api.overdue)
	ag.GET("/:id", api.retrieve)
	ag.PUT("/:id", api.update)
	ag.DELETE("/:id", api.destroy)
	ag.PATCH("/:id/status", api.setStatus)
	ag.POST("/:id/ai-help", api.askForHelp)
	ag.GET("/:id/ai-help", api.helpHistory)
}

type helpReply struct {
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

// Handlers

func (api *assignmentApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var ordering Ordering
	ordering.Bind(ctx)
	filter := assignment.QueryFilter{Status: ctx.QueryParam("status"), Ordering: ordering.Orderings}

	assignments, err := api.svc.Query(ctx.Request().Context(), claims.Subject, filter)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *assignmentApi) upcoming(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	assignments, err := api.svc.Upcoming(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying upcoming assignments")
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *assignmentApi) overdue(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	assignments, err := api.svc.Overdue(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying overdue assignments")
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *assignmentApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data assignment.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}

	a, err := api.svc.Create(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *assignmentApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	a, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "getting assignment")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *assignmentApi) update(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data assignment.UpdateAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAssignment")
	}

	a, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "updating assignment")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *assignmentApi) setStatus(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data assignment.StatusUpdate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StatusUpdate")
	}

	a, err := api.svc.SetStatus(ctx.Request().Context(), ctx.Param("id"), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "setting assignment status")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *assignmentApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id"), claims.Subject); err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *assignmentApi) stats(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	stats, err := api.svc.Stats(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "computing assignment stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *assignmentApi) askForHelp(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data assignment.HelpRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to HelpRequest")
	}

	rec, err := api.svc.AskForHelp(ctx.Request().Context(), ctx.Param("id"), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "asking for assignment help")
	}
	return ctx.JSON(http.StatusOK, helpReply{
		Response:  rec.Response,
		Timestamp: rec.Timestamp,
	})
}

func (api *assignmentApi) helpHistory(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	history, err := api.svc.HelpHistory(ctx.Request().Context(), ctx.Param("id"), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "getting assignment help history")
	}
	return ctx.JSON(http.StatusOK, history)
}
