package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	sdkerrors "github.com/travelmate/tripplanner/client/internal/errors"
	"github.com/travelmate/tripplanner/client/internal/types"
)

// execute sends req and maps the response onto the transport contract:
// 401 yields types.ErrUnauthorized without reading the body, any other
// non-2xx yields a *ClassifiedError carrying the server message, and 204 is
// an empty success. out may be nil.
func execute(ctx context.Context, req *resty.Request, method, path, op string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// Note: Authorization header will be added by transport layer
	resp, err := req.SetContext(ctx).Execute(method, path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return sdkerrors.NewNetworkError(op, err)
	}

	code := resp.StatusCode()
	switch {
	case code == http.StatusUnauthorized:
		return fmt.Errorf("%s: %w", op, types.ErrUnauthorized)
	case code == http.StatusNoContent:
		return nil
	case code < 200 || code > 299:
		return sdkerrors.NewHTTPError(code, resp.Body(), op)
	}

	if out == nil || len(bytes.TrimSpace(resp.Body())) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
