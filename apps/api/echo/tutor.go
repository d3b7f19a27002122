package echoapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tutorpost/backend/core"
	"github.com/tutorpost/backend/core/student"
	"github.com/tutorpost/backend/core/tutor"
)

type (
	tutorAPI struct {
		crudAPI[tutor.Tutor]
		svc        *tutor.Service
		studentSvc *student.Service
	}

	CoursePermissionsRequest struct {
		CourseIDs []string `json:"courseIds"`
	}
)

func registerTutorAPI(g *echo.Group, jwt, session echo.MiddlewareFunc, deps ServerDeps) {
	svc := deps.TutorSvc
	api := tutorAPI{
		crudAPI: crudAPI[tutor.Tutor]{
			conf:     deps.Conf,
			logger:   deps.Logger,
			validate: deps.Validate,
			kind:     KindTutor,
			param:    "tutorID",
			notFound: tutor.ErrNotFound,

			create: func(c echo.Context) (tutor.Tutor, error) {
				var data tutor.NewTutor
				if err := c.Bind(&data); err != nil {
					return tutor.Tutor{}, errors.Wrap(err, "binding to NewTutor")
				}
				if err := data.Validate(deps.Validate); err != nil {
					return tutor.Tutor{}, err
				}
				return svc.Create(c.Request().Context(), data)
			},
			queryAll: svc.QueryAll,
			getByID:  svc.GetByID,
			applyUpdate: func(c echo.Context, id string) error {
				orig, err := svc.GetByID(c.Request().Context(), id)
				if err != nil {
					return err
				}
				var data tutor.UpdateTutor
				if err = c.Bind(&data); err != nil {
					return errors.Wrap(err, "binding to UpdateTutor")
				}
				if err = data.Validate(deps.Validate, orig); err != nil {
					return err
				}
				_, err = svc.Update(c.Request().Context(), orig, data)
				return err
			},
			remove: svc.Delete,
			authenticate: func(ctx context.Context, email, pwd string) (tutor.Tutor, error) {
				return svc.Authenticate(ctx, email, pwd)
			},
			identify: func(t tutor.Tutor) (string, string) { return t.ID, t.Email },
		},
		svc:        svc,
		studentSvc: deps.StudentSvc,
	}

	tg := g.Group("/tutors")
	tg.POST("", api.createHandler)
	tg.GET("", api.listHandler)
	tg.POST("/login", api.loginHandler)
	tg.GET("/loggedin", api.loggedInHandler, session)
	tg.PUT("/:tutorID", api.updateHandler, jwt, selfOrAdminMiddleware(KindTutor, "tutorID"))
	tg.DELETE("/remove/:tutorID", api.remove, jwt, selfOrAdminMiddleware(KindTutor, "tutorID"))
	tg.PUT("/:tutorID/courses", api.updateCoursePermissions, jwt, adminMiddleware())
	tg.POST("/:tutorID/demote", api.demote, jwt, adminMiddleware())
}

// remove deletes a tutor, first scrubbing the tutor's id out of every
// student's tutor set. The scrub is best-effort: its failure is logged and
// the deletion proceeds, leaving dangling refs to be corrected on a later
// write rather than blocking the primary operation.
func (api *tutorAPI) remove(ctx echo.Context) error {
	id := ctx.Param("tutorID")
	if n, err := api.studentSvc.RemoveTutorRefs(ctx.Request().Context(), id); err != nil {
		api.logger.Error(fmt.Sprintf("removing refs to tutor %s: %v", id, err), err)
	} else if n > 0 {
		api.logger.Info(fmt.Sprintf("removed refs to tutor %s from %d users", id, n))
	}
	return api.removeHandler(ctx)
}

// updateCoursePermissions replaces the tutor's course-permission set with
// the request's, sanitized.
func (api *tutorAPI) updateCoursePermissions(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "tutorID")
	if err != nil {
		return err
	}
	var data CoursePermissionsRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CoursePermissionsRequest")
	}
	if data.CourseIDs == nil {
		return core.NewValidationError(nil, core.FieldError{Field: "courseIds", Error: "must be a list"})
	}

	sanitized, err := api.svc.SetCoursePermissions(ctx.Request().Context(), id, data.CourseIDs)
	if err != nil {
		if errors.Cause(err) == tutor.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "setting course permissions")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"coursePermissions": sanitized})
}

// demote converts a tutor into a user, carrying the password hash over, then
// deletes the tutor. A user already holding the tutor's email aborts with a
// conflict before anything is written.
func (api *tutorAPI) demote(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "tutorID")
	if err != nil {
		return err
	}
	t, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == tutor.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "loading tutor")
	}

	s, err := api.studentSvc.EnrollDemotedTutor(ctx.Request().Context(), t)
	if err != nil {
		return errors.Wrap(err, "enrolling demoted tutor")
	}
	if err = api.svc.Delete(ctx.Request().Context(), t.ID); err != nil {
		return errors.Wrap(err, "deleting demoted tutor")
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"user": s})
}
