package echoapi

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tutorpost/backend/core/admin"
)

type adminAPI struct {
	crudAPI[admin.Admin]
}

func registerAdminAPI(g *echo.Group, jwt, session echo.MiddlewareFunc, deps ServerDeps) {
	svc := deps.AdminSvc
	api := adminAPI{
		crudAPI: crudAPI[admin.Admin]{
			conf:     deps.Conf,
			logger:   deps.Logger,
			validate: deps.Validate,
			kind:     KindAdmin,
			param:    "adminID",
			notFound: admin.ErrNotFound,

			create: func(c echo.Context) (admin.Admin, error) {
				var data admin.NewAdmin
				if err := c.Bind(&data); err != nil {
					return admin.Admin{}, errors.Wrap(err, "binding to NewAdmin")
				}
				if err := data.Validate(deps.Validate); err != nil {
					return admin.Admin{}, err
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
				var data admin.UpdateAdmin
				if err = c.Bind(&data); err != nil {
					return errors.Wrap(err, "binding to UpdateAdmin")
				}
				if err = data.Validate(deps.Validate, orig); err != nil {
					return err
				}
				_, err = svc.Update(c.Request().Context(), orig, data)
				return err
			},
			remove: svc.Delete,
			authenticate: func(ctx context.Context, email, pwd string) (admin.Admin, error) {
				return svc.Authenticate(ctx, email, pwd)
			},
			identify: func(a admin.Admin) (string, string) { return a.ID, a.Email },
		},
	}

	ag := g.Group("/admins")
	ag.POST("", api.createHandler)
	ag.POST("/login", api.loginHandler)
	ag.GET("/loggedin", api.loggedInHandler, session)
	ag.GET("", api.listHandler, jwt, adminMiddleware())
	ag.PUT("/:adminID", api.updateHandler, jwt, adminMiddleware())
	ag.DELETE("/remove/:adminID", api.removeHandler, jwt, adminMiddleware())
}
