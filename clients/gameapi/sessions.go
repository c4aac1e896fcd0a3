package gameapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// CreateSessionResponse is the service response for session creation.
type CreateSessionResponse struct {
	SessionCode string `json:"session_code"`
	Theme       string `json:"theme"`
	Status      string `json:"status"`
}

// JoinSessionResponse is the service response for joining a session.
type JoinSessionResponse struct {
	PlayerID    int    `json:"player_id"`
	SessionCode string `json:"session_code"`
	PlayerName  string `json:"player_name"`
}

// SessionPlayer is one player entry in the session roster.
type SessionPlayer struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	IsReady           bool   `json:"is_ready,omitempty"`
	IsEliminated      bool   `json:"is_eliminated"`
	EliminationReason string `json:"elimination_reason,omitempty"`
}

// GetSessionResponse is the service response for session details.
type GetSessionResponse struct {
	SessionCode       string          `json:"session_code"`
	Theme             string          `json:"theme"`
	Status            string          `json:"status"`
	CurrentQuestion   int             `json:"current_question"`
	ActivePlayers     []SessionPlayer `json:"active_players"`
	EliminatedPlayers []SessionPlayer `json:"eliminated_players"`
	TotalPlayers      int             `json:"total_players"`
}

// CheckEliminationResponse reports whether a player has already been
// eliminated, e.g. by a prior round's verdict.
type CheckEliminationResponse struct {
	IsEliminated      bool   `json:"is_eliminated"`
	EliminationReason string `json:"elimination_reason,omitempty"`
	CanContinue       bool   `json:"can_continue"`
}

// CreateSession asks the service for a new game session with the given theme.
func (c *GameAPIClient) CreateSession(ctx context.Context, theme string) (*CreateSessionResponse, error) {
	endpoint := fmt.Sprintf("%s?theme=%s", createSessionPath, url.QueryEscape(theme))

	body, err := c.Post(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	var resp CreateSessionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("create session: failed to parse response: %w", err)
	}
	if resp.SessionCode == "" {
		return nil, fmt.Errorf("create session: empty session code in response")
	}
	return &resp, nil
}

// JoinSession registers playerName in an existing session.
func (c *GameAPIClient) JoinSession(ctx context.Context, sessionCode, playerName string) (*JoinSessionResponse, error) {
	endpoint := fmt.Sprintf(joinSessionPath, url.PathEscape(sessionCode))
	endpoint += "?player_name=" + url.QueryEscape(playerName)

	body, err := c.Post(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("join session %s: %w", sessionCode, err)
	}

	var resp JoinSessionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("join session %s: failed to parse response: %w", sessionCode, err)
	}
	if resp.PlayerID == 0 {
		return nil, fmt.Errorf("join session %s: missing player id in response", sessionCode)
	}
	return &resp, nil
}

// GetSession fetches the roster and status for a session.
func (c *GameAPIClient) GetSession(ctx context.Context, sessionCode string) (*GetSessionResponse, error) {
	endpoint := fmt.Sprintf(getSessionPath, url.PathEscape(sessionCode))

	body, err := c.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", sessionCode, err)
	}

	var resp GetSessionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("get session %s: failed to parse response: %w", sessionCode, err)
	}
	return &resp, nil
}

// CheckElimination asks whether the player may still play in the session.
func (c *GameAPIClient) CheckElimination(ctx context.Context, sessionCode string, playerID int) (*CheckEliminationResponse, error) {
	endpoint := fmt.Sprintf(checkEliminationPath, url.PathEscape(sessionCode), playerID)

	body, err := c.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("check elimination for player %d: %w", playerID, err)
	}

	var resp CheckEliminationResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("check elimination for player %d: failed to parse response: %w", playerID, err)
	}
	return &resp, nil
}
