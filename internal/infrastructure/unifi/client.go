package unifi

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/teich/phone-gate-bridge/domain"
)

// Config holds the connection settings for the UniFi Access developer API
type Config struct {
	Host        string
	Port        int
	Token       string
	Timeout     time.Duration
	InsecureTLS bool
}

// ClientImpl implements domain.DoorUnlockClient against the UniFi Access
// developer API. Each call is an independent outbound request with a bounded
// timeout; the hot path performs no retries.
type ClientImpl struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates an Access API client. InsecureTLS disables certificate
// validation for self-signed controller deployments.
func NewClient(cfg Config) domain.DoorUnlockClient {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.InsecureTLS},
	}
	return &ClientImpl{
		baseURL: fmt.Sprintf("https://%s:%d", cfg.Host, cfg.Port),
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
	}
}

type apiEnvelope struct {
	Code string          `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type doorRecord struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
}

// ListDoors implements domain.DoorUnlockClient
func (c *ClientImpl) ListDoors(ctx context.Context) ([]domain.Door, error) {
	envelope, err := c.send(ctx, http.MethodGet, "/api/v1/developer/doors", nil)
	if err != nil {
		return nil, err
	}
	if len(envelope.Data) == 0 {
		return nil, fmt.Errorf("%w: response missing doors data list", domain.ErrAccessAPI)
	}

	var records []doorRecord
	if err := json.Unmarshal(envelope.Data, &records); err != nil {
		return nil, fmt.Errorf("%w: response missing doors data list", domain.ErrAccessAPI)
	}

	doors := make([]domain.Door, 0, len(records))
	for _, rec := range records {
		doors = append(doors, domain.Door{
			ID:       rec.ID,
			Name:     strings.TrimSpace(rec.Name),
			FullName: strings.TrimSpace(rec.FullName),
		})
	}
	return doors, nil
}

// FindDoorID implements domain.DoorUnlockClient. Matching is exact and
// case-insensitive against the door name, then the full name. Absent or
// ambiguous matches are errors, never a best-effort guess.
func (c *ClientImpl) FindDoorID(ctx context.Context, doorName string) (string, error) {
	needle := strings.ToLower(strings.TrimSpace(doorName))
	if needle == "" {
		return "", fmt.Errorf("door name is required")
	}

	doors, err := c.ListDoors(ctx)
	if err != nil {
		return "", err
	}

	var nameMatches, fullMatches []domain.Door
	for _, door := range doors {
		switch needle {
		case strings.ToLower(door.Name):
			nameMatches = append(nameMatches, door)
		case strings.ToLower(door.FullName):
			fullMatches = append(fullMatches, door)
		}
	}

	matches := nameMatches
	if len(matches) == 0 {
		matches = fullMatches
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: %q", domain.ErrDoorNotFound, doorName)
	}
	if len(matches) > 1 {
		names := make([]string, 0, len(matches))
		for _, m := range matches {
			if m.FullName != "" {
				names = append(names, m.FullName)
			} else {
				names = append(names, m.Name)
			}
		}
		return "", fmt.Errorf("%w: %q matches %s", domain.ErrDoorAmbiguous, doorName, strings.Join(names, ", "))
	}

	id := strings.TrimSpace(matches[0].ID)
	if id == "" {
		return "", domain.ErrDoorMissingID
	}
	return id, nil
}

// Unlock implements domain.DoorUnlockClient
func (c *ClientImpl) Unlock(ctx context.Context, doorID, actorID, actorName string, extra map[string]string) error {
	if doorID == "" {
		return fmt.Errorf("door id is required")
	}
	if (actorID == "") != (actorName == "") {
		return fmt.Errorf("actor id and actor name must be provided together")
	}

	payload := map[string]interface{}{}
	if actorID != "" {
		payload["actor_id"] = actorID
		payload["actor_name"] = actorName
	}
	if extra != nil {
		payload["extra"] = extra
	}

	path := fmt.Sprintf("/api/v1/developer/doors/%s/unlock", doorID)
	_, err := c.send(ctx, http.MethodPut, path, payload)
	return err
}

func (c *ClientImpl) send(ctx context.Context, method, path string, payload interface{}) (*apiEnvelope, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request payload: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAccessAPI, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAccessAPI, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAccessAPI, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := strings.TrimSpace(string(raw))
		if detail == "" {
			detail = resp.Status
		}
		return nil, fmt.Errorf("%w: HTTP %d: %s", domain.ErrAccessAPI, resp.StatusCode, detail)
	}

	envelope := &apiEnvelope{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return envelope, nil
	}
	if err := json.Unmarshal(raw, envelope); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON response", domain.ErrAccessAPI)
	}
	if envelope.Code != "" && envelope.Code != "SUCCESS" {
		return nil, fmt.Errorf("%w: %s: %s", domain.ErrAccessAPI, envelope.Code, envelope.Msg)
	}
	return envelope, nil
}
