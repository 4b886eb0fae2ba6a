package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/oxprint/oxdash/internal/api"
	"github.com/oxprint/oxdash/internal/poller"
	"github.com/oxprint/oxdash/internal/state"
)

// CheckReport is the outcome of a one-shot health check.
type CheckReport struct {
	State   state.ConnectionState  `json:"state"`
	Label   string                 `json:"label"`
	BaseURL string                 `json:"base_url"`
	Result  *api.HealthCheckResult `json:"result,omitempty"`
	Error   string                 `json:"error,omitempty"`
	System  *api.SystemStatus      `json:"system,omitempty"`
}

// Check runs a single poll through the status poller and reports the
// derived state. System status is fetched best-effort once connected.
func Check(ctx context.Context, client *api.Client) (CheckReport, error) {
	p := poller.New(client, &state.Store{})
	p.Start(ctx, time.Hour)
	defer func() {
		p.Stop()
		p.Wait()
	}()

	snap, err := waitForResolution(ctx, p)
	if err != nil {
		return CheckReport{}, err
	}

	report := CheckReport{
		State:   snap.State,
		Label:   snap.State.Label(),
		BaseURL: client.BaseURL(),
	}
	if snap.HasResult {
		result := snap.LastResult
		report.Result = &result
	}
	if snap.LastError != nil {
		report.Error = snap.LastError.Error()
	}
	if snap.State == state.Connected {
		if sys, err := client.FetchSystemStatus(ctx); err == nil {
			report.System = &sys
		}
	}
	return report, nil
}

func waitForResolution(ctx context.Context, p *poller.Poller) (state.Snapshot, error) {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		if snap := p.Snapshot(); snap.Applied > 0 {
			return snap, nil
		}
		select {
		case <-ctx.Done():
			return state.Snapshot{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

// WriteReport prints report as text or indented JSON.
func WriteReport(w io.Writer, report CheckReport, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	if _, err := fmt.Fprintf(w, "Backend: %s (%s)\n", report.Label, report.BaseURL); err != nil {
		return err
	}
	if report.Error != "" {
		if _, err := fmt.Fprintf(w, "  error: %s\n", report.Error); err != nil {
			return err
		}
	}
	if report.System != nil {
		if _, err := fmt.Fprintf(w, "  version %s, database %s, uptime %ds\n",
			report.System.Version, report.System.Database, report.System.Uptime); err != nil {
			return err
		}
	}
	return nil
}
