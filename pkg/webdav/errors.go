package webdav

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/studio-b12/gowebdav"
)

// Error taxonomy for remote operations. Anything not matching one of these
// sentinels is a network-level error; retry policy for those belongs to the
// HTTP transport, the run treats them as entry-level failures.
var (
	ErrNotFound   = errors.New("remote resource not found")
	ErrConflict   = errors.New("remote resource already exists")
	ErrPermission = errors.New("permission denied")
)

func mapError(err error) error {
	switch {
	case gowebdav.IsErrNotFound(err):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case gowebdav.IsErrCode(err, http.StatusPreconditionFailed),
		gowebdav.IsErrCode(err, http.StatusConflict):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case gowebdav.IsErrCode(err, http.StatusUnauthorized),
		gowebdav.IsErrCode(err, http.StatusForbidden):
		return fmt.Errorf("%w: %v", ErrPermission, err)
	}
	return err
}
