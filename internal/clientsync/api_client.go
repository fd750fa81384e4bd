package clientsync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/osse101/RespawnQueue_Go/internal/coordinator"
	"github.com/osse101/RespawnQueue_Go/internal/domain"
)

// RPCError is a domain failure the server reported as {success:false}.
// It is never retried.
type RPCError struct {
	Op      string
	Message string
}

func (e *RPCError) Error() string {
	return e.Op + ": " + e.Message
}

// StatusError is a transport or auth failure
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf(ErrMsgUnexpectedStatus, e.Status, e.Message)
}

// rpcResponse mirrors the server's RPC envelope
type rpcResponse struct {
	Success  bool               `json:"success"`
	Error    string             `json:"error,omitempty"`
	Claim    *domain.Claim      `json:"claim,omitempty"`
	Entry    *domain.QueueEntry `json:"entry,omitempty"`
	Position int                `json:"position,omitempty"`
}

// APIClient talks to the respawn queue API on behalf of one user
type APIClient struct {
	baseURL    string
	apiKey     string
	token      string
	httpClient *http.Client

	mu         sync.Mutex
	serverTime time.Time
}

// NewAPIClient creates a client that authenticates with the service key and a user token
func NewAPIClient(baseURL, apiKey, token string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		token:   token,
		httpClient: &http.Client{
			Timeout: DefaultRequestTimeout,
		},
	}
}

func (c *APIClient) newRequest(ctx context.Context, method, path string, query url.Values, body interface{}) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set(headerContentType, contentTypeJSON)
	}
	if c.apiKey != "" {
		req.Header.Set(headerAPIKey, c.apiKey)
	}
	if c.token != "" {
		req.Header.Set(headerAuthorization, bearerPrefix+c.token)
	}
	return req, nil
}

// do sends req and decodes a 2xx body into out
func (c *APIClient) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	c.recordServerTime(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// recordServerTime keeps the Date header of the latest response
func (c *APIClient) recordServerTime(resp *http.Response) {
	t, err := http.ParseTime(resp.Header.Get(headerDate))
	if err != nil {
		return
	}
	c.mu.Lock()
	c.serverTime = t
	c.mu.Unlock()
}

// ServerTime is the server clock as of the latest response, to the second.
// It reports false before any response carried a Date header.
func (c *APIClient) ServerTime() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.serverTime, !c.serverTime.IsZero()
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload struct {
		Error string `json:"error"`
	}
	msg := string(body)
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}
	return &StatusError{Status: resp.StatusCode, Message: msg}
}

func (c *APIClient) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// rpc calls one coordinator operation. Domain failures come back as *RPCError.
func (c *APIClient) rpc(ctx context.Context, op string, body interface{}) (*rpcResponse, error) {
	req, err := c.newRequest(ctx, http.MethodPost, PathRPCPrefix+op, nil, body)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var out rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	if !out.Success {
		return nil, &RPCError{Op: op, Message: out.Error}
	}
	return &out, nil
}

// Me returns the authenticated member
func (c *APIClient) Me(ctx context.Context) (*domain.Member, error) {
	var m domain.Member
	if err := c.get(ctx, PathMe, nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Overview returns every respawn with its claim and queue length
func (c *APIClient) Overview(ctx context.Context) ([]domain.RespawnOverview, error) {
	var out []domain.RespawnOverview
	if err := c.get(ctx, PathOverview, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UserState returns the caller's claims and queue entries
func (c *APIClient) UserState(ctx context.Context) (*coordinator.UserState, error) {
	var out coordinator.UserState
	if err := c.get(ctx, PathUserState, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Notifications returns notifications created after since, oldest first
func (c *APIClient) Notifications(ctx context.Context, since time.Time, limit int) ([]domain.Notification, error) {
	q := url.Values{}
	if !since.IsZero() {
		q.Set("since", since.UTC().Format(time.RFC3339Nano))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out []domain.Notification
	if err := c.get(ctx, PathNotifications, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRead flags one notification as read
func (c *APIClient) MarkRead(ctx context.Context, id int64) error {
	req, err := c.newRequest(ctx, http.MethodPost, fmt.Sprintf(PathMarkReadFmt, id), nil, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// ClaimRespawn claims a respawn for one of the caller's characters
func (c *APIClient) ClaimRespawn(ctx context.Context, respawnID, characterID int64) (*domain.Claim, error) {
	out, err := c.rpc(ctx, RPCClaimRespawn, map[string]int64{
		"p_respawn_id":   respawnID,
		"p_character_id": characterID,
	})
	if err != nil {
		return nil, err
	}
	return out.Claim, nil
}

// ReleaseClaim ends one of the caller's claims
func (c *APIClient) ReleaseClaim(ctx context.Context, claimID int64) error {
	_, err := c.rpc(ctx, RPCReleaseClaim, map[string]int64{"p_claim_id": claimID})
	return err
}

// JoinQueue queues the caller and returns the 1-based position
func (c *APIClient) JoinQueue(ctx context.Context, respawnID, characterID int64) (*domain.QueueEntry, int, error) {
	out, err := c.rpc(ctx, RPCJoinQueue, map[string]int64{
		"p_respawn_id":   respawnID,
		"p_character_id": characterID,
	})
	if err != nil {
		return nil, 0, err
	}
	return out.Entry, out.Position, nil
}

// LeaveQueue removes the caller from a respawn queue
func (c *APIClient) LeaveQueue(ctx context.Context, respawnID int64) error {
	_, err := c.rpc(ctx, RPCLeaveQueue, map[string]int64{"p_respawn_id": respawnID})
	return err
}

// feedRequest builds the long-lived change feed request
func (c *APIClient) feedRequest(ctx context.Context, tables []string) (*http.Request, error) {
	q := url.Values{}
	if len(tables) > 0 {
		q.Set("tables", strings.Join(tables, ","))
	}
	req, err := c.newRequest(ctx, http.MethodGet, PathFeed, q, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(headerAccept, contentTypeStream)
	req.Header.Set("Cache-Control", "no-cache")
	return req, nil
}
