package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/okian/gridiron/internal/domain/engine"
	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/types"
)

// pollInterval paces polling for applied commands and graded throws.
const pollInterval = 10 * time.Millisecond

// HTTPClient wraps http.Client for the service's JSON API.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// do sends a request with an optional JSON body and decodes a JSON reply
// into out when out is non-nil and the status is 2xx.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var rd io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	if out != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode %s %s: %w", method, path, err)
		}
	}
	return resp.StatusCode, nil
}

func (c *HTTPClient) expect(ctx context.Context, method, path string, body, out any, want ...int) error {
	status, err := c.do(ctx, method, path, body, out)
	if err != nil {
		return err
	}
	for _, w := range want {
		if status == w {
			return nil
		}
	}
	return fmt.Errorf("%s %s: unexpected status %d", method, path, status)
}

// checkHealth verifies the service is up.
func (c *HTTPClient) checkHealth(ctx context.Context) error {
	status, err := c.do(ctx, http.MethodGet, "/healthz", nil, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, status)
	}
	return nil
}

// Remote plays every snap in its own session on a running service.
type Remote struct {
	cfg    *Config
	client *HTTPClient
}

// NewRemote returns a Player that drives the service at cfg.BaseURL.
func NewRemote(cfg *Config) *Remote {
	return &Remote{cfg: cfg, client: newHTTPClient(cfg.BaseURL, cfg.Timeout)}
}

type remoteMeta struct {
	Blocking map[model.ReceiverID]model.DefenderID `json:"blocking"`
	Insights struct {
		FirstOpen map[model.ReceiverID]float64 `json:"first_open"`
	} `json:"insights"`
	Substitutions []string `json:"substitutions"`
}

// Play implements Player. The session is deleted once the throw is graded.
func (p *Remote) Play(ctx context.Context, seed uint64) (Run, error) {
	var sess struct {
		ID string `json:"id"`
	}
	if err := p.client.expect(ctx, http.MethodPost, "/sessions", map[string]uint64{"seed": seed}, &sess, http.StatusCreated); err != nil {
		return Run{}, err
	}
	base := "/sessions/" + url.PathEscape(sess.ID)
	defer func() {
		_, _ = p.client.do(context.WithoutCancel(ctx), http.MethodDelete, base, nil, nil)
	}()

	// Pausing in the same frame as the snap keeps the clock at zero.
	if err := p.send(ctx, base,
		engine.Command{Kind: engine.KindConfigure, Formation: p.cfg.Formation, Coverage: p.cfg.Coverage, Concept: p.cfg.Concept},
		engine.Command{Kind: engine.KindSnap},
		engine.Command{Kind: engine.KindPause},
	); err != nil {
		return Run{}, err
	}

	var meta remoteMeta
	if err := p.client.expect(ctx, http.MethodGet, base+"/meta", nil, &meta, http.StatusOK); err != nil {
		return Run{}, err
	}
	eligible := func(r model.ReceiverID) bool {
		_, blocking := meta.Blocking[r]
		return !blocking
	}
	openAt := func(r model.ReceiverID, t float64) (float64, error) {
		var rd struct {
			Score float64 `json:"score"`
		}
		q := url.Values{"receiver": {string(r)}, "t": {strconv.FormatFloat(t, 'f', -1, 64)}}
		err := p.client.expect(ctx, http.MethodGet, base+"/openness?"+q.Encode(), nil, &rd, http.StatusOK)
		return rd.Score, err
	}
	tg, err := pickTarget(meta.Insights.FirstOpen, eligible, openAt)
	if err != nil {
		return Run{}, err
	}

	if err := p.send(ctx, base,
		engine.Command{Kind: engine.KindSeek, T: tg.t},
		engine.Command{Kind: engine.KindThrow, Receiver: string(tg.receiver)},
		engine.Command{Kind: engine.KindSeek, T: 1},
	); err != nil {
		return Run{}, err
	}

	var frame struct {
		Summary *model.ThrowSummary `json:"summary"`
	}
	if err := p.client.expect(ctx, http.MethodGet, base+"/state", nil, &frame, http.StatusOK); err != nil {
		return Run{}, err
	}
	if frame.Summary == nil {
		return Run{}, ErrNotResolved
	}
	sum := *frame.Summary

	entry, err := p.graded(ctx, sum.ID)
	if err != nil {
		return Run{}, err
	}
	sum.Grade, sum.GradeScore = entry.Grade, entry.Score
	return newRun(seed, tg, sum, meta.Substitutions), nil
}

// send queues cmds in order and waits until the session has applied the
// last one. Any rejection fails the batch.
func (p *Remote) send(ctx context.Context, base string, cmds ...engine.Command) error {
	ids := make(map[string]engine.Kind, len(cmds))
	for i := range cmds {
		cmds[i].ID = uuid.NewString()
		ids[cmds[i].ID] = cmds[i].Kind
		if err := p.client.expect(ctx, http.MethodPost, base+"/commands", cmds[i], nil, http.StatusAccepted); err != nil {
			return err
		}
	}
	last := cmds[len(cmds)-1].ID

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		var results []engine.Result
		if err := p.client.expect(ctx, http.MethodGet, base+"/results", nil, &results, http.StatusOK); err != nil {
			return err
		}
		done := false
		for _, res := range results {
			if _, ours := ids[res.ID]; !ours {
				continue
			}
			if !res.Accepted {
				return fmt.Errorf("%w: %s: %s", ErrRejected, res.Kind, res.Reason)
			}
			done = done || res.ID == last
		}
		if done {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// graded waits for the service's graders to rank the throw.
func (p *Remote) graded(ctx context.Context, throwID string) (types.Entry, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		var e types.Entry
		status, err := p.client.do(ctx, http.MethodGet, "/throws/"+url.PathEscape(throwID), nil, &e)
		if err != nil {
			return types.Entry{}, err
		}
		switch status {
		case http.StatusOK:
			return e, nil
		case http.StatusNotFound:
		default:
			return types.Entry{}, fmt.Errorf("GET /throws/%s: unexpected status %d", throwID, status)
		}

		select {
		case <-ctx.Done():
			return types.Entry{}, ctx.Err()
		case <-ticker.C:
		}
	}
}
