package elevenlabs

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

	"elevenlabs-exporter/internal/common/metrics"
)

// Client is a thin wrapper over the ConvAI REST API. All calls are
// synchronous, honor the passed context and fail fast on non-2xx responses.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://api.elevenlabs.io"
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ListAgents fetches one page of the agent listing. An empty cursor starts
// from the beginning; pageSize 0 leaves the server default in place.
func (c *Client) ListAgents(ctx context.Context, pageSize int, cursor string) (*AgentsPage, error) {
	metrics.APIRequests.WithLabelValues("list_agents").Inc()

	query := url.Values{}
	if pageSize > 0 {
		query.Set("page_size", strconv.Itoa(pageSize))
	}
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	var page AgentsPage
	if err := c.get(ctx, "/v1/convai/agents", query, &page); err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	return &page, nil
}

// GetAgent fetches the full agent record, including platform settings.
func (c *Client) GetAgent(ctx context.Context, agentID string) (*AgentDetail, error) {
	metrics.APIRequests.WithLabelValues("get_agent").Inc()

	var detail AgentDetail
	if err := c.get(ctx, "/v1/convai/agents/"+url.PathEscape(agentID), nil, &detail); err != nil {
		return nil, fmt.Errorf("failed to get agent %s: %w", agentID, err)
	}
	return &detail, nil
}

// UpdateAgent patches the agent's platform settings. The data_collection
// mapping is replaced wholesale, so callers must send the full merged map.
func (c *Client) UpdateAgent(ctx context.Context, agentID string, settings *PlatformSettings) error {
	metrics.APIRequests.WithLabelValues("update_agent").Inc()

	payload := map[string]interface{}{
		"platform_settings": settings,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal agent update: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/convai/agents/%s", c.baseURL, url.PathEscape(agentID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to update agent %s (status %d): %s", agentID, resp.StatusCode, string(body))
	}

	return nil
}

// ListConversations fetches one page of the conversation listing, applying
// the optional time-range filters from the query.
func (c *Client) ListConversations(ctx context.Context, q ConversationListQuery) (*ConversationsPage, error) {
	metrics.APIRequests.WithLabelValues("list_conversations").Inc()

	query := url.Values{}
	if q.PageSize > 0 {
		query.Set("page_size", strconv.Itoa(q.PageSize))
	}
	if q.Cursor != "" {
		query.Set("cursor", q.Cursor)
	}
	if q.CallStartAfterUnix > 0 {
		query.Set("call_start_after_unix", strconv.FormatInt(q.CallStartAfterUnix, 10))
	}
	if q.CallStartBeforeUnix > 0 {
		query.Set("call_start_before_unix", strconv.FormatInt(q.CallStartBeforeUnix, 10))
	}

	var page ConversationsPage
	if err := c.get(ctx, "/v1/convai/conversations", query, &page); err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return &page, nil
}

// GetConversation fetches the full conversation record with transcript and
// analysis.
func (c *Client) GetConversation(ctx context.Context, conversationID string) (*ConversationDetail, error) {
	metrics.APIRequests.WithLabelValues("get_conversation").Inc()

	var detail ConversationDetail
	if err := c.get(ctx, "/v1/convai/conversations/"+url.PathEscape(conversationID), nil, &detail); err != nil {
		return nil, fmt.Errorf("failed to get conversation %s: %w", conversationID, err)
	}
	return &detail, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}
