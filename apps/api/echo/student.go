package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tutorpost/backend/core"
	"github.com/tutorpost/backend/core/student"
)

type (
	studentAPI struct {
		crudAPI[student.Student]
		svc *student.Service
	}

	TutorAssignmentRequest struct {
		Tutors []string `json:"tutors"`
	}
)

func registerStudentAPI(g *echo.Group, jwt, session echo.MiddlewareFunc, deps ServerDeps) {
	svc := deps.StudentSvc
	api := studentAPI{
		crudAPI: crudAPI[student.Student]{
			conf:     deps.Conf,
			logger:   deps.Logger,
			validate: deps.Validate,
			kind:     KindStudent,
			param:    "userID",
			notFound: student.ErrNotFound,

			create: func(c echo.Context) (student.Student, error) {
				var data student.NewStudent
				if err := c.Bind(&data); err != nil {
					return student.Student{}, errors.Wrap(err, "binding to NewStudent")
				}
				if err := data.Validate(deps.Validate); err != nil {
					return student.Student{}, err
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
				var data student.UpdateStudent
				if err = c.Bind(&data); err != nil {
					return errors.Wrap(err, "binding to UpdateStudent")
				}
				if err = data.Validate(deps.Validate, orig); err != nil {
					return err
				}
				_, err = svc.Update(c.Request().Context(), orig, data)
				return err
			},
			remove: svc.Delete,
			authenticate: func(ctx context.Context, email, pwd string) (student.Student, error) {
				return svc.Authenticate(ctx, email, pwd)
			},
			identify: func(s student.Student) (string, string) { return s.ID, s.Email },
		},
		svc: svc,
	}

	ug := g.Group("/users")
	ug.POST("", api.createHandler)
	ug.GET("", api.listHandler)
	ug.POST("/login", api.loginHandler)
	ug.GET("/loggedin", api.loggedIn, session)
	ug.PUT("/:userID", api.updateHandler, jwt, selfOrAdminMiddleware(KindStudent, "userID"))
	ug.DELETE("/remove/:userID", api.removeHandler, jwt, selfOrAdminMiddleware(KindStudent, "userID"))
	ug.GET("/oftutor/:tutorID", api.ofTutor, jwt, kindOrAdminMiddleware(KindTutor))
	ug.PUT("/:userID/tutors", api.updateTutors, jwt, adminMiddleware())
	ug.DELETE("/under/:tutorID", api.removeUnderTutor, jwt, adminMiddleware())
}

// loggedIn is the student variant of the generic handler: the tutor refs are
// expanded into {id, name, email} triples returned alongside the user.
func (api *studentAPI) loggedIn(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil || claims.Kind != KindStudent {
		return errHttpNotFound
	}
	s, infos, err := api.svc.GetWithTutors(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "loading current user")
	}
	if infos == nil {
		infos = []student.TutorInfo{}
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		KindStudent.ResponseKey(): s,
		"assignedTutors":          infos,
	})
}

func (api *studentAPI) ofTutor(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "tutorID")
	if err != nil {
		return err
	}
	students, err := api.svc.QueryByTutor(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying users by tutor")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

// updateTutors replaces the user's tutor set wholesale with the sanitized
// request set; ids left out are unassigned.
func (api *studentAPI) updateTutors(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "userID")
	if err != nil {
		return err
	}
	var data TutorAssignmentRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TutorAssignmentRequest")
	}
	if data.Tutors == nil {
		return core.NewValidationError(nil, core.FieldError{Field: "tutors", Error: "must be a list"})
	}

	s, err := api.svc.SetTutors(ctx.Request().Context(), id, data.Tutors)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "setting user tutors")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"user": s})
}

// removeUnderTutor scrubs a tutor id out of every user's tutor set. It is
// idempotent: matching no one still returns 200.
func (api *studentAPI) removeUnderTutor(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "tutorID")
	if err != nil {
		return err
	}
	if _, err = api.svc.RemoveTutorRefs(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "removing tutor refs")
	}
	return ctx.NoContent(http.StatusOK)
}
