package httputil

import (
	"context"
	"errors"
	"net/http"

	"github.com/martecommerce/backend/internal/pkg/ctxlog"
)

// StatusCoder is implemented by errors that know their HTTP status class.
type StatusCoder interface {
	error
	StatusCode() int
}

// HandleError writes err as a JSON failure response. Errors implementing
// StatusCoder are expected domain failures and keep their own status and
// message. Everything else is an infrastructure failure: logged, and
// surfaced as a generic 500. In dev mode the error chain rides along in the
// stack field for debugging.
func HandleError(ctx context.Context, w http.ResponseWriter, err error, dev bool) {
	var sc StatusCoder
	if errors.As(err, &sc) {
		Error(w, sc.StatusCode(), sc.Error())
		return
	}

	ctxlog.FromContext(ctx).Error("internal error", "error", err)

	if dev {
		ErrorWithStack(w, http.StatusInternalServerError, "internal error", err.Error())
		return
	}
	Error(w, http.StatusInternalServerError, "internal error")
}
