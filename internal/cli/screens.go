package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jrsteele09/go-billing-console/backoffice"
	"github.com/jrsteele09/go-billing-console/guard"
	errs "github.com/jrsteele09/go-billing-console/internal/errors"
	"github.com/spf13/cobra"
)

// screenFunc performs one screen action and returns the backend's payload.
type screenFunc func(ctx context.Context, api *backoffice.API, args []string) (json.RawMessage, error)

// screen navigates to route and runs fn only if the guard renders it.
func screen(opts *RootOptions, route string, fn screenFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a := opts.app
		d, err := a.Guard.Navigate(route)
		if err != nil {
			return &ExitError{Code: ExitNotPermitted, Message: errs.Message(err), Err: err}
		}
		switch {
		case d.Path == guard.RouteLogin:
			return &ExitError{Code: ExitNotPermitted, Message: MsgNotLoggedIn}
		case d.Path != route:
			return &ExitError{Code: ExitNotPermitted, Message: fmt.Sprintf("%s is not available to you, landed on %s", route, d.Path)}
		}

		out, err := fn(cmd.Context(), a.API, args)
		if err != nil {
			return err
		}
		return writeRaw(cmd, out)
	}
}

func writeRaw(cmd *cobra.Command, raw json.RawMessage) error {
	if len(raw) == 0 {
		return nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		_, err = cmd.OutOrStdout().Write(append(raw, '\n'))
		return err
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(cmd.OutOrStdout())
	return err
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.Wrapf(errs.ErrInvalidRequest, "invalid id %q", s)
	}
	return id, nil
}

// parseBody accepts inline JSON or @file.
func parseBody(s string) (json.RawMessage, error) {
	raw := []byte(s)
	if path, ok := strings.CutPrefix(s, "@"); ok {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, errs.Wrapf(errs.ErrInvalidRequest, "read %s: %v", path, err)
		}
		raw = b
	}
	if !json.Valid(raw) {
		return nil, errs.Wrapf(errs.ErrInvalidRequest, "body is not valid JSON")
	}
	return json.RawMessage(raw), nil
}

func parseResource(s string) (backoffice.Resource, error) {
	res := backoffice.Resource(strings.ToLower(strings.TrimSpace(s)))
	switch res {
	case backoffice.ResourceUsers, backoffice.ResourceDevices, backoffice.ResourceSubscriptions:
		return res, nil
	}
	return "", errs.Wrapf(errs.ErrInvalidRequest, "unknown resource %q (want users, devices or subscriptions)", s)
}

func pageFlags(cmd *cobra.Command, p *backoffice.Page) {
	cmd.Flags().IntVar(&p.Page, "page", 0, "page number")
	cmd.Flags().IntVar(&p.Size, "size", 50, "page size")
}

// resourceRoute is the admin screen listing res.
func resourceRoute(res backoffice.Resource) string {
	switch res {
	case backoffice.ResourceDevices:
		return guard.RouteAdminDevices
	case backoffice.ResourceSubscriptions:
		return guard.RouteAdminSubscriptions
	default:
		return guard.RouteAdminUsers
	}
}

// resourceScreen is screen for commands whose route depends on the resource
// argument.
func resourceScreen(opts *RootOptions, fn func(ctx context.Context, api *backoffice.API, res backoffice.Resource, args []string) (json.RawMessage, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		res, err := parseResource(args[0])
		if err != nil {
			return err
		}
		return screen(opts, resourceRoute(res), func(ctx context.Context, api *backoffice.API, args []string) (json.RawMessage, error) {
			return fn(ctx, api, res, args[1:])
		})(cmd, args)
	}
}
