package apiclient

import (
	"context"
	"net/http"

	"github.com/ecocycle/connect/types"
)

// Dashboard fetches the role-dependent dashboard snapshot of the caller.
func (c *Client) Dashboard(ctx context.Context) (types.Dashboard, error) {
	var dashboard types.Dashboard
	if err := c.do(ctx, OpDashboard, http.MethodGet, "dashboard", nil, &dashboard); err != nil {
		return types.Dashboard{}, err
	}
	return dashboard, nil
}
