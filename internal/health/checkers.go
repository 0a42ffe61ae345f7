package health

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Pinger is the subset of a database pool used by readiness checks.
// [github.com/jackc/pgx/v5/pgxpool.Pool] satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Database returns a [Checker] that pings the assessment store.
func Database(db Pinger) Checker {
	return Checker{
		Name: "database",
		Check: func(ctx context.Context) error {
			if err := db.Ping(ctx); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
			return nil
		},
	}
}

// Collaborator returns a [Checker] that probes a sidecar's /health endpoint.
// name appears as the check key in the /readyz response; baseURL is the
// collaborator's root URL as configured.
func Collaborator(name, baseURL string, client *http.Client) Checker {
	if client == nil {
		client = http.DefaultClient
	}
	return Checker{
		Name: name,
		Check: func(ctx context.Context) error {
			u, err := url.JoinPath(strings.TrimSuffix(baseURL, "/"), "health")
			if err != nil {
				return fmt.Errorf("build health url: %w", err)
			}
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
			if err != nil {
				return fmt.Errorf("build request: %w", err)
			}
			resp, err := client.Do(req)
			if err != nil {
				return fmt.Errorf("probe %s: %w", u, err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("probe %s: status %d", u, resp.StatusCode)
			}
			return nil
		},
	}
}
