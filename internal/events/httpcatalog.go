package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/mediauploader/internal/common"
)

const (
	queryLimit   = 100
	tokenTTL     = 2 * time.Minute
	requestTimeout = 30 * time.Second
)

// HTTPCatalog queries the event catalog's REST API. Every request carries a
// short-lived HS256 bearer token signed with the shared API secret.
type HTTPCatalog struct {
	baseURL string
	secret  []byte
	client  *http.Client
	now     func() time.Time
}

func NewHTTPCatalog(baseURL string, secret []byte) *HTTPCatalog {
	return &HTTPCatalog{
		baseURL: baseURL,
		secret:  secret,
		client:  &http.Client{Timeout: requestTimeout},
		now:     time.Now,
	}
}

type eventDTO struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	StartsAt string `json:"starts_at"`
	URL      string `json:"url"`
}

type eventListDTO struct {
	Values []eventDTO `json:"values"`
}

func (c *HTTPCatalog) QueryEvents(ctx context.Context, orgID int, startMin, startMax time.Time) ([]CandidateEvent, error) {
	q := url.Values{}
	q.Set("organization_ids", strconv.Itoa(orgID))
	q.Set("starts_at_min", startMin.Format(time.RFC3339))
	q.Set("starts_at_max", startMax.Format(time.RFC3339))
	q.Set("limit", strconv.Itoa(queryLimit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/events?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	token, err := c.signToken(orgID)
	if err != nil {
		return nil, fmt.Errorf("sign catalog token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: %s: %s", common.ErrorCatalogStatus, resp.Status, string(b))
	}

	var list eventListDTO
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}

	out := make([]CandidateEvent, 0, len(list.Values))
	for _, v := range list.Values {
		startsAt, err := time.Parse(time.RFC3339, v.StartsAt)
		if err != nil {
			return nil, fmt.Errorf("event %d: bad starts_at %q: %w", v.ID, v.StartsAt, err)
		}
		out = append(out, CandidateEvent{ID: v.ID, Name: v.Name, StartsAt: startsAt, URL: v.URL})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (c *HTTPCatalog) signToken(orgID int) (string, error) {
	now := c.now()
	claims := jwt.MapClaims{
		"org": orgID,
		"iat": now.Unix(),
		"exp": now.Add(tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}
