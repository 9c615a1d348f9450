package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/teslashibe/go-ptz/internal/httpc"
	"github.com/teslashibe/go-ptz/pkg/web"
)

// api is a small client for the daemon's REST endpoints.
type api struct {
	base   string
	client *http.Client
}

func newAPI(base string) *api {
	return &api{base: strings.TrimRight(base, "/"), client: httpc.NewClient(5 * time.Second)}
}

func (a *api) status(ctx context.Context) (web.StatusResponse, error) {
	var out web.StatusResponse
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.base+"/api/status", nil)
	if err != nil {
		return out, err
	}
	err = a.do(req, &out)
	return out, err
}

func (a *api) setEnabled(ctx context.Context, region string, enabled bool) error {
	action := "disable"
	if enabled {
		action = "enable"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/api/regions/%s/%s", a.base, region, action), nil)
	if err != nil {
		return err
	}
	return a.do(req, nil)
}

func (a *api) do(req *http.Request, out any) error {
	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !httpc.OK(resp.StatusCode) {
		var e web.ErrorResponse
		if json.Unmarshal([]byte(httpc.Drain(resp.Body, 4096)), &e) == nil && e.Error != "" {
			return fmt.Errorf("%s: %s", resp.Status, e.Error)
		}
		return fmt.Errorf("%s", resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func runStatus(cmd *cobra.Command, args []string) error {
	st, err := newAPI(flagAddr).status(cmd.Context())
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	for _, r := range st.Regions {
		camera := "-"
		if r.CameraIndex != nil {
			camera = fmt.Sprint(*r.CameraIndex)
		}
		fmt.Fprintf(w, "%-12s camera=%-3s active=%-5t enabled=%-5t phase=%-12s ticks=%d\n",
			r.ID, camera, r.Active, r.Enabled, r.Phase, r.Ticks)
	}
	fmt.Fprintf(w, "debug clients: %d (delivered %d, dropped %d, evicted %d)\n",
		st.Debug.Clients, st.Debug.Delivered, st.Debug.Dropped, st.Debug.Evicted)
	return nil
}

func runToggle(cmd *cobra.Command, region string, enabled bool) error {
	if err := newAPI(flagAddr).setEnabled(cmd.Context(), region, enabled); err != nil {
		return err
	}
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", region, state)
	return nil
}
