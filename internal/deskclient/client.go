// Package deskclient talks to the archive API on behalf of a terminal desk. It
// provides the Session/Auth calls and the project and pin stores the workspace
// controller runs over.
package deskclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	authdomain "github.com/vox-librorum/vox-desk/internal/auth/domain"
	"github.com/vox-librorum/vox-desk/internal/projects/domain"
	"github.com/vox-librorum/vox-desk/internal/workspace"
)

var (
	// ErrUnreachable means the archive server could not be contacted.
	ErrUnreachable = errors.New("archive unreachable")
	// ErrDenied means the server answered but refused the request.
	ErrDenied = errors.New("request denied")
)

// Client is an archive API client. The session cookie set by Login is kept in its
// cookie jar and sent on every later call.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
	}, nil
}

type apiError struct {
	Error string `json:"error"`
}

// do sends a JSON request and returns the status and body. Transport failures are
// reported as ErrUnreachable.
func (c *Client) do(ctx context.Context, method, path string, in any) (int, []byte, error) {
	var body io.Reader
	if in != nil {
		jsonData, err := json.Marshal(in)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: failed to read response: %v", ErrUnreachable, err)
	}
	return resp.StatusCode, out, nil
}

func denied(status int, body []byte) error {
	var e apiError
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return fmt.Errorf("%w: %s", ErrDenied, e.Error)
	}
	return fmt.Errorf("%w: server returned status %d", ErrDenied, status)
}

func isSuccess(status int) bool { return status >= 200 && status < 300 }

// Register creates an account and returns its id.
func (c *Client) Register(ctx context.Context, username, email, password string) (string, error) {
	status, body, err := c.do(ctx, http.MethodPost, "/api/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	if err != nil {
		return "", err
	}
	if !isSuccess(status) {
		return "", denied(status, body)
	}

	var out struct {
		UserID string `json:"userId"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return out.UserID, nil
}

// Login signs in and stores the session cookie.
func (c *Client) Login(ctx context.Context, username, password string) (authdomain.User, error) {
	status, body, err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return authdomain.User{}, err
	}
	if !isSuccess(status) {
		return authdomain.User{}, denied(status, body)
	}

	var out struct {
		User authdomain.User `json:"user"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return authdomain.User{}, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return out.User, nil
}

// Logout ends the server session.
func (c *Client) Logout(ctx context.Context) error {
	status, body, err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil)
	if err != nil {
		return err
	}
	if !isSuccess(status) {
		return denied(status, body)
	}
	return nil
}

// storeError maps a failed project call. A missing or rejected session means the
// desk must return to sign-in.
func storeError(status int, body []byte) error {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return workspace.ErrUnauthenticated
	}
	return denied(status, body)
}

// ListProjects fetches the caller's projects with their resources parsed.
func (c *Client) ListProjects(ctx context.Context) ([]domain.Project, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/api/projects", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, storeError(status, body)
	}

	var recs []domain.Record
	if err := json.Unmarshal(body, &recs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	out := make([]domain.Project, 0, len(recs))
	for _, rec := range recs {
		p, err := rec.Project()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// CreateProject stores a new project on the server.
func (c *Client) CreateProject(ctx context.Context, p domain.Project) (domain.Project, error) {
	rec, err := domain.NewRecord("", p)
	if err != nil {
		return domain.Project{}, err
	}

	status, body, err := c.do(ctx, http.MethodPost, "/api/projects", rec)
	if err != nil {
		return domain.Project{}, err
	}
	if !isSuccess(status) {
		return domain.Project{}, storeError(status, body)
	}

	var out struct {
		Project domain.Record `json:"project"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return domain.Project{}, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return out.Project.Project()
}

// SaveProject writes the project's current fields and resource order.
func (c *Client) SaveProject(ctx context.Context, p domain.Project) error {
	rec, err := domain.NewRecord("", p)
	if err != nil {
		return err
	}

	status, body, err := c.do(ctx, http.MethodPut, "/api/projects/"+p.ID, rec)
	if err != nil {
		return err
	}
	if !isSuccess(status) {
		return storeError(status, body)
	}
	return nil
}
