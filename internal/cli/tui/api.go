package tui

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Messages for tea.Cmd
type healthMsg struct {
	data *HealthData
	err  error
}

type statusMsg struct {
	data *StatusData
	err  error
}

type tickMsg time.Time

// API client for TUI
type apiClient struct {
	baseURL  string
	client   *http.Client
	user     string
	password string
}

func newAPIClient(cfg Config) *apiClient {
	return &apiClient{
		baseURL: cfg.ServerURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		user:     cfg.User,
		password: cfg.Password,
	}
}

func (c *apiClient) get(path string) ([]byte, int, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, 0, err
	}

	if c.user != "" && c.password != "" {
		req.SetBasicAuth(c.user, c.password)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	return data, resp.StatusCode, nil
}

// fetchHealth fetches model health as tea.Cmd. A degraded server answers
// /health with 503 and a valid body, so non-200 is not an error here.
func fetchHealth(cfg Config) tea.Cmd {
	return func() tea.Msg {
		client := newAPIClient(cfg)
		data, _, err := client.get("/health")
		if err != nil {
			return healthMsg{err: err}
		}

		var health HealthData
		if err := json.Unmarshal(data, &health); err != nil {
			return healthMsg{err: fmt.Errorf("failed to parse health: %w", err)}
		}

		return healthMsg{data: &health}
	}
}

// fetchStatus fetches runtime status from API as tea.Cmd
func fetchStatus(cfg Config) tea.Cmd {
	return func() tea.Msg {
		client := newAPIClient(cfg)
		data, code, err := client.get("/status")
		if err != nil {
			return statusMsg{err: err}
		}
		if code != http.StatusOK {
			return statusMsg{err: fmt.Errorf("server returned status %d", code)}
		}

		var status StatusData
		if err := json.Unmarshal(data, &status); err != nil {
			return statusMsg{err: fmt.Errorf("failed to parse status: %w", err)}
		}

		return statusMsg{data: &status}
	}
}

// tick creates a periodic tick command
func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
