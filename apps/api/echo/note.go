package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tutorpost/backend/core/note"
)

type noteAPI struct {
	deps ServerDeps
}

func registerNoteAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := noteAPI{deps: deps}

	ng := g.Group("/notes", jwt, kindOrAdminMiddleware(KindTutor))
	ng.POST("/send", api.send)
	ng.GET("", api.list, adminMiddleware())
}

func (api *noteAPI) send(ctx echo.Context) error {
	var data note.NewNote
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewNote")
	}
	if err := data.Validate(api.deps.Validate, api.deps.Conf.Mail.AllowedRecipients); err != nil {
		return err
	}

	n, msgID, err := api.deps.NoteSvc.Send(ctx.Request().Context(), data)
	if err != nil {
		if n.ID != "" {
			// recorded but not delivered
			api.deps.Logger.Error(errors.Wrap(err, "dispatching note "+n.ID).Error(), err)
			return errSendFailed
		}
		return errors.Wrap(err, "recording note")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"ok": true, "messageId": msgID})
}

func (api *noteAPI) list(ctx echo.Context) error {
	notes, err := api.deps.NoteSvc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying notes")
	}
	if notes == nil {
		notes = []note.Note{}
	}
	return ctx.JSON(http.StatusOK, notes)
}
