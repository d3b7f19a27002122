package echoapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tutorpost/backend/core"
)

type (
	// crudAPI instantiates the uniform handler set for one principal kind.
	// The closures adapt it to that kind's service; route param name and
	// response key come from the Kind. One value is built per kind at boot,
	// so a mismatched kind/service pairing cannot appear at request time.
	// Reads return bare entities; where a kind needs relationship expansion
	// the embedding API registers its own handler instead (see the student
	// loggedin route).
	crudAPI[E any] struct {
		conf     *core.Config
		logger   core.Logger
		validate *validator.Validate

		kind     Kind
		param    string
		notFound error

		create       func(c echo.Context) (E, error)
		queryAll     func(ctx context.Context) ([]E, error)
		getByID      func(ctx context.Context, id string) (E, error)
		applyUpdate  func(c echo.Context, id string) error
		remove       func(ctx context.Context, id string) error
		authenticate func(ctx context.Context, email, pwd string) (E, error)
		identify     func(e E) (id, email string)
	}

	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}

// Handlers

// createHandler persists a new entity and opens a session for it: signup
// doubles as login. The persistence error message is surfaced verbatim; at
// creation time it is most likely a constraint message useful to the caller.
func (api *crudAPI[E]) createHandler(ctx echo.Context) error {
	e, err := api.create(ctx)
	if err != nil {
		cause := errors.Cause(err)
		switch cause.(type) {
		case validator.ValidationErrors, *core.ValidationError:
			return err
		}
		api.logger.Error(fmt.Sprintf("creating %s: %v", api.kind, err), err)
		return echo.NewHTTPError(http.StatusInternalServerError, cause.Error())
	}

	id, email := api.identify(e)
	token, err := GenerateToken(api.conf, NewSessionClaims(api.conf, api.kind, id, email))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusCreated, echo.Map{api.kind.ResponseKey(): e, "token": token})
}

func (api *crudAPI[E]) listHandler(ctx echo.Context) error {
	entities, err := api.queryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrapf(err, "querying %ss", api.kind)
	}
	if entities == nil {
		entities = []E{}
	}
	return ctx.JSON(http.StatusOK, entities)
}

func (api *crudAPI[E]) updateHandler(ctx echo.Context) error {
	id := ctx.Param(api.param)
	if _, err := uuid.Parse(id); err != nil {
		// an unparseable id cannot match any row
		return errHttpNotFound
	}
	if err := api.applyUpdate(ctx, id); err != nil {
		if errors.Cause(err) == api.notFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.NoContent(http.StatusOK)
}

func (api *crudAPI[E]) removeHandler(ctx echo.Context) error {
	id := ctx.Param(api.param)
	if _, err := uuid.Parse(id); err != nil {
		return errHttpNotFound
	}
	if err := api.remove(ctx.Request().Context(), id); err != nil {
		if errors.Cause(err) == api.notFound {
			return errHttpNotFound
		}
		return errors.Wrapf(err, "deleting %s", api.kind)
	}
	return ctx.NoContent(http.StatusOK)
}

// loggedInHandler resolves the session subject back to an entity. Anything
// short of a live, matching-kind session yields a 404.
func (api *crudAPI[E]) loggedInHandler(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil || claims.Kind != api.kind {
		return errHttpNotFound
	}
	e, err := api.getByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if errors.Cause(err) == api.notFound {
			return errHttpNotFound
		}
		return errors.Wrapf(err, "loading current %s", api.kind)
	}
	return ctx.JSON(http.StatusOK, echo.Map{api.kind.ResponseKey(): e})
}

func (api *crudAPI[E]) loginHandler(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	e, err := api.authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		if errors.Cause(err) == api.notFound {
			return core.NewValidationError(errors.New("invalid credentials"))
		}
		return errors.Wrap(err, "authenticating")
	}

	id, email := api.identify(e)
	token, err := GenerateToken(api.conf, NewSessionClaims(api.conf, api.kind, id, email))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, echo.Map{api.kind.ResponseKey(): e, "token": token})
}

// parseIDParam validates a route param that feeds a relationship endpoint;
// unlike the generic handlers above, these report a malformed id as a client
// error before any collaborator call.
func parseIDParam(ctx echo.Context, param string) (string, error) {
	id := ctx.Param(param)
	if _, err := uuid.Parse(id); err != nil {
		return "", core.NewValidationError(nil, core.FieldError{Field: param, Error: "invalid identifier"})
	}
	return id, nil
}
