package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// adminMiddleware lets only admin sessions through.
func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.Kind == KindAdmin {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// kindOrAdminMiddleware lets sessions of the given kind, or admins, through.
func kindOrAdminMiddleware(kind Kind) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.Kind == kind || claims.Kind == KindAdmin {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// selfOrAdminMiddleware lets admins through, or a session of the given kind
// whose subject matches the route param.
func selfOrAdminMiddleware(kind Kind, param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.Kind == KindAdmin {
				return next(ctx)
			}
			if claims.Kind == kind && claims.Subject == ctx.Param(param) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}
