// Package client is a typed HTTP client for the tournament API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tournament-platform/apperrors"
	"tournament-platform/models"
	"tournament-platform/services"
)

var ErrNotLoggedIn = errors.New("not logged in")

// Session is the one credential holder a Client works with.
type Session struct {
	BaseURL   string    `toml:"base_url"`
	Token     string    `toml:"token,omitempty"`
	UserID    string    `toml:"user_id,omitempty"`
	Username  string    `toml:"username,omitempty"`
	ExpiresAt time.Time `toml:"expires_at,omitempty"`
}

// Active reports whether the session holds a token that has not expired at now.
func (s *Session) Active(now time.Time) bool {
	return s.Token != "" && (s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt))
}

func (s *Session) clear() {
	s.Token = ""
	s.UserID = ""
	s.Username = ""
	s.ExpiresAt = time.Time{}
}

// APIError is a failure envelope returned by the server.
type APIError struct {
	Status  int
	Code    apperrors.Code
	Message string
	Fields  []apperrors.FieldError
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
	for _, f := range e.Fields {
		msg += fmt.Sprintf("\n  %s: %s", f.Field, f.Message)
	}
	return msg
}

// Is matches apperrors sentinels by code, so errors.Is(err, apperrors.ErrFull) works client side.
func (e *APIError) Is(target error) bool {
	var appErr *apperrors.Error
	if errors.As(target, &appErr) {
		return appErr.Code == e.Code
	}
	return false
}

type Client struct {
	session *Session
	http    *http.Client
	now     func() time.Time
}

// New returns a client bound to session. A nil httpClient uses a 15s timeout client.
func New(session *Session, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{session: session, http: httpClient, now: time.Now}
}

func (c *Client) Session() *Session { return c.session }

type envelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Error   apperrors.Code         `json:"error"`
	Errors  []apperrors.FieldError `json:"errors"`
	Data    json.RawMessage        `json:"data"`
}

type authResult struct {
	User      models.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// Login exchanges credentials for a token and stores it in the session.
func (c *Client) Login(ctx context.Context, identifier, password string) (*models.User, error) {
	var res authResult
	body := map[string]string{"identifier": identifier, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, body, &res, false); err != nil {
		return nil, err
	}
	c.session.Token = res.Token
	c.session.UserID = res.User.ID
	c.session.Username = res.User.Username
	c.session.ExpiresAt = res.ExpiresAt
	return &res.User, nil
}

// Logout tells the server and clears the session even if the call fails.
func (c *Client) Logout(ctx context.Context) error {
	defer c.session.clear()
	if !c.session.Active(c.now()) {
		return nil
	}
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil, true)
}

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &user, true); err != nil {
		return nil, err
	}
	return &user, nil
}

type ListOptions struct {
	Search   string
	Category string
	Game     string
	Status   string
	Type     string
	Page     int
	Limit    int
}

func (o ListOptions) values() url.Values {
	q := url.Values{}
	for k, v := range map[string]string{
		"search": o.Search, "category": o.Category, "game": o.Game, "status": o.Status, "type": o.Type,
	} {
		if v != "" {
			q.Set(k, v)
		}
	}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	return q
}

type TournamentPage struct {
	Tournaments []models.Tournament `json:"tournaments"`
	Pagination  services.Pagination `json:"pagination"`
}

type RegistrationPage struct {
	Registrations []models.Registration `json:"registrations"`
	Pagination    services.Pagination   `json:"pagination"`
}

func (c *Client) ListTournaments(ctx context.Context, opts ListOptions) (*TournamentPage, error) {
	var page TournamentPage
	if err := c.do(ctx, http.MethodGet, "/api/tournaments", opts.values(), nil, &page, false); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) Tournament(ctx context.Context, idOrSlug string) (*models.Tournament, error) {
	var t models.Tournament
	if err := c.do(ctx, http.MethodGet, "/api/tournaments/"+url.PathEscape(idOrSlug), nil, nil, &t, false); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) Register(ctx context.Context, tournamentID string, req services.RegisterRequest) (*models.Registration, error) {
	var reg models.Registration
	path := "/api/tournaments/" + url.PathEscape(tournamentID) + "/register"
	if err := c.do(ctx, http.MethodPost, path, nil, req, &reg, true); err != nil {
		return nil, err
	}
	return &reg, nil
}

func (c *Client) MyRegistrations(ctx context.Context, status string, page services.PageRequest) (*RegistrationPage, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	if page.Page > 0 {
		q.Set("page", strconv.Itoa(page.Page))
	}
	if page.Limit > 0 {
		q.Set("limit", strconv.Itoa(page.Limit))
	}
	var out RegistrationPage
	if err := c.do(ctx, http.MethodGet, "/api/tournaments/my-registrations", q, nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CancelRegistration(ctx context.Context, registrationID, notes string) (*models.Registration, error) {
	var reg models.Registration
	path := "/api/registrations/" + url.PathEscape(registrationID) + "/cancel"
	if err := c.do(ctx, http.MethodPost, path, nil, map[string]string{"notes": notes}, &reg, true); err != nil {
		return nil, err
	}
	return &reg, nil
}

// do sends one request and decodes the envelope's data into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any, auth bool) error {
	if c.session.BaseURL == "" {
		return errors.New("no server configured")
	}
	if auth && !c.session.Active(c.now()) {
		return ErrNotLoggedIn
	}

	u := strings.TrimRight(c.session.BaseURL, "/") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return fmt.Errorf("decode response (%d): %w", resp.StatusCode, err)
		}
	}
	if resp.StatusCode >= 400 || (len(raw) > 0 && !env.Success) {
		if resp.StatusCode == http.StatusUnauthorized {
			c.session.clear()
		}
		return &APIError{Status: resp.StatusCode, Code: env.Error, Message: env.Message, Fields: env.Errors}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}
