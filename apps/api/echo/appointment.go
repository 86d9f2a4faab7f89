package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ustawi/core/appointment"
)

type appointmentApi struct {
	svc appointment.ServiceInterface
}

func registerAppointmentAPI(g *echo.Group, jwt, active echo.MiddlewareFunc, svc appointment.ServiceInterface) {
	api := appointmentApi{svc: svc}

	ag := g.Group("/appointments", jwt, active)
	ag.GET("", api.query, studentOrCounselorMiddleware())
	ag.POST("", api.request, studentMiddleware())
	ag.GET("/counselors", api.counselors, studentMiddleware())
	ag.GET("/stats", api.stats, counselorMiddleware())
	ag.PUT("/:id/status", api.setStatus, counselorMiddleware())
	ag.PUT("/:id/cancel", api.cancel, studentOrCounselorMiddleware())
}

// Handlers

// query lists the appointments the user takes part in, as a student or as a counselor.
func (api *appointmentApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	appointments, err := api.svc.Query(
		ctx.Request().Context(),
		claims.Subject,
		ctx.QueryParam("status"),
		boolQueryParam(ctx, "upcoming"),
		intQueryParam(ctx, "limit", appointment.DefaultLimit),
	)
	if err != nil {
		return errors.Wrap(err, "querying appointments")
	}
	return ctx.JSON(http.StatusOK, appointments)
}

func (api *appointmentApi) counselors(ctx echo.Context) error {
	counselors, err := api.svc.Counselors(ctx.Request().Context(), ctx.QueryParam("specialization"))
	if err != nil {
		return errors.Wrap(err, "listing counselors")
	}
	return ctx.JSON(http.StatusOK, counselors)
}

func (api *appointmentApi) request(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data appointment.NewAppointment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAppointment")
	}

	appt, err := api.svc.Request(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "requesting appointment")
	}
	return ctx.JSON(http.StatusCreated, appt)
}

func (api *appointmentApi) setStatus(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data appointment.StatusUpdate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StatusUpdate")
	}

	appt, err := api.svc.SetStatus(ctx.Request().Context(), ctx.Param("id"), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "setting appointment status")
	}
	return ctx.JSON(http.StatusOK, appt)
}

func (api *appointmentApi) cancel(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	appt, err := api.svc.Cancel(ctx.Request().Context(), ctx.Param("id"), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "cancelling appointment")
	}
	return ctx.JSON(http.StatusOK, appt)
}

func (api *appointmentApi) stats(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	stats, err := api.svc.Stats(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "computing appointment stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}
