package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"

	"main/internal/model"
)

// DefaultPageSize matches the upstream default the service has always
// requested for activity pages.
const DefaultPageSize = 50

// Activity is one entry of the athlete activity list. StartDateLocal is
// kept as the raw ISO-8601 string because only the calendar date is
// ever extracted from it.
type Activity struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	KudosCount     int     `json:"kudos_count"`
	Distance       float64 `json:"distance"`
	MovingTime     int     `json:"moving_time"`
	StartDateLocal string  `json:"start_date_local"`
}

// ActivityDetail is the full single-activity record. The list endpoint
// does not carry the path geometry, so this is fetched separately.
type ActivityDetail struct {
	Activity
	Map struct {
		Polyline        string `json:"polyline"`
		SummaryPolyline string `json:"summary_polyline"`
	} `json:"map"`
}

// EncodedPolyline returns the best path geometry the record carries.
func (d ActivityDetail) EncodedPolyline() string {
	if d.Map.Polyline != "" {
		return d.Map.Polyline
	}
	return d.Map.SummaryPolyline
}

// API is the upstream surface the rest of the service depends on. The
// preview stub implements the same interface.
type API interface {
	GetAthlete(ctx context.Context, token string) (*model.AthleteProfile, error)
	GetActivities(ctx context.Context, token string, pageSize int) ([]Activity, error)
	GetActivityDetail(ctx context.Context, token string, activityID int64) (*ActivityDetail, error)
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

var _ API = (*Client)(nil)

func NewClient(baseURL string) *Client {
	return &Client{BaseURL: baseURL}
}

func (c *Client) GetAthlete(ctx context.Context, token string) (*model.AthleteProfile, error) {
	var payload struct {
		ID        int64  `json:"id"`
		Firstname string `json:"firstname"`
		Lastname  string `json:"lastname"`
		Profile   string `json:"profile"`
	}

	if err := c.getJSON(ctx, token, "/athlete", nil, &payload); err != nil {
		return nil, err
	}

	if payload.ID == 0 {
		return nil, ErrInvalidToken
	}

	return &model.AthleteProfile{
		ID:        payload.ID,
		Firstname: payload.Firstname,
		Lastname:  payload.Lastname,
		Profile:   payload.Profile,
	}, nil
}

// GetActivities walks the paged activity list starting at page 1 and
// concatenates the pages in upstream order (most recent first). A page
// with no items, or a non-list payload, ends the walk. A 429 on any
// page fails the whole call.
func (c *Client) GetActivities(ctx context.Context, token string, pageSize int) ([]Activity, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var all []Activity
	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("page", fmt.Sprintf("%d", page))
		params.Set("per_page", fmt.Sprintf("%d", pageSize))

		var raw json.RawMessage
		if err := c.getJSON(ctx, token, "/athlete/activities", params, &raw); err != nil {
			return nil, err
		}

		var items []Activity
		if err := json.Unmarshal(raw, &items); err != nil {
			// Error payloads come back as an object, not a list.
			break
		}
		if len(items) == 0 {
			break
		}
		all = append(all, items...)
	}

	return all, nil
}

func (c *Client) GetActivityDetail(ctx context.Context, token string, activityID int64) (*ActivityDetail, error) {
	var detail ActivityDetail
	if err := c.getJSON(ctx, token, fmt.Sprintf("/activities/%d", activityID), nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (c *Client) getJSON(ctx context.Context, token, path string, params url.Values, target interface{}) error {
	base := c.BaseURL
	if base == "" {
		base = "https://www.strava.com/api/v3"
	}

	endpoint := base + path
	if params != nil {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient(ctx, token).Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("strava error %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(target)
}

// httpClient wraps the configured client with a bearer-token transport.
func (c *Client) httpClient(ctx context.Context, token string) *http.Client {
	if c.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.HTTPClient)
	}
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
}
