// Package ringcentral is a minimal RingCentral REST client covering the
// pieces the call sync needs: OAuth refresh-token rotation and paginated
// call-log retrieval.
package ringcentral

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"fieldops_backend/platform/apperr"
)

const (
	tokenEndpointPath   = "/restapi/oauth/token"
	callLogEndpointPath = "/restapi/v1.0/account/~/call-log"

	httpHeaderContentType     = "Content-Type"
	httpHeaderAccept          = "Accept"
	httpHeaderAuthorization   = "Authorization"
	mimeApplicationJSON       = "application/json"
	mimeFormURLEncoded        = "application/x-www-form-urlencoded"
	authorizationBearerPrefix = "Bearer "

	requestTimeout = 20 * time.Second
	maxBodyBytes   = 2 << 20
)

// TokenResponse is the result of a refresh-token exchange. RingCentral
// rotates the refresh token on every exchange, so the returned refresh
// token must be persisted before anything else happens.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// CallRecord is a single provider call-log entry reduced to the fields the
// correlation pipeline consumes.
type CallRecord struct {
	ID              string
	Direction       string
	StartTime       time.Time
	DurationSeconds *int
	Result          string
	FromNumber      string
	ToNumber        string
	RecordingID     string
}

type callLogResponse struct {
	Records []callLogRecord `json:"records"`
	Paging  struct {
		Page       int `json:"page"`
		TotalPages int `json:"totalPages"`
	} `json:"paging"`
}

type callLogRecord struct {
	ID        string `json:"id"`
	Direction string `json:"direction"`
	StartTime string `json:"startTime"`
	Duration  *int   `json:"duration"`
	Result    string `json:"result"`
	From      struct {
		PhoneNumber string `json:"phoneNumber"`
	} `json:"from"`
	To struct {
		PhoneNumber string `json:"phoneNumber"`
	} `json:"to"`
	Recording *struct {
		ID string `json:"id"`
	} `json:"recording"`
}

// Client talks to a single RingCentral environment. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// New builds a Client for the given platform base URL. RingCentral enforces
// roughly 10 requests per second per app; the limiter stays under that.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
		limiter:    rate.NewLimiter(rate.Limit(8), 8),
	}
}

// RefreshToken exchanges a refresh token for a fresh token pair using the
// app's client credentials. When the provider omits a new refresh token the
// old one is carried forward so callers always get a usable pair back.
func (c *Client) RefreshToken(ctx context.Context, clientID, clientSecret, refreshToken string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+tokenEndpointPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build refresh token request: %w", err)
	}
	req.SetBasicAuth(clientID, clientSecret)
	req.Header.Set(httpHeaderContentType, mimeFormURLEncoded)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("refresh token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest {
		return nil, apperr.Unauthorized("ringcentral rejected the refresh token")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperr.Upstream(fmt.Sprintf("ringcentral token endpoint returned %d", resp.StatusCode))
	}

	var tokens TokenResponse
	if err := json.Unmarshal(body, &tokens); err != nil {
		return nil, fmt.Errorf("decode refresh token response: %w", err)
	}
	if tokens.AccessToken == "" {
		return nil, apperr.Upstream("ringcentral returned empty access token")
	}
	if tokens.RefreshToken == "" {
		tokens.RefreshToken = refreshToken
	}
	return &tokens, nil
}

// FetchCallLog pages through the account call log between from and to.
// Pagination stops at the provider-reported last page or at maxPages,
// whichever comes first. When a page request fails mid-run the records
// gathered so far are returned alongside the error so the caller can still
// process the partial window.
func (c *Client) FetchCallLog(ctx context.Context, accessToken string, from, to time.Time, perPage, maxPages int) ([]CallRecord, error) {
	var records []CallRecord

	for page := 1; page <= maxPages; page++ {
		pageResp, err := c.fetchCallLogPage(ctx, accessToken, from, to, perPage, page)
		if err != nil {
			return records, err
		}

		for _, raw := range pageResp.Records {
			record, err := parseCallRecord(raw)
			if err != nil {
				continue
			}
			records = append(records, record)
		}

		if pageResp.Paging.TotalPages > 0 && page >= pageResp.Paging.TotalPages {
			break
		}
		if len(pageResp.Records) == 0 {
			break
		}
	}

	return records, nil
}

func (c *Client) fetchCallLogPage(ctx context.Context, accessToken string, from, to time.Time, perPage, page int) (*callLogResponse, error) {
	query := url.Values{}
	query.Set("dateFrom", from.UTC().Format(time.RFC3339))
	query.Set("dateTo", to.UTC().Format(time.RFC3339))
	query.Set("perPage", strconv.Itoa(perPage))
	query.Set("page", strconv.Itoa(page))

	endpoint := c.baseURL + callLogEndpointPath + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build call log request: %w", err)
	}
	req.Header.Set(httpHeaderAuthorization, authorizationBearerPrefix+accessToken)
	req.Header.Set(httpHeaderAccept, mimeApplicationJSON)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call log request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, apperr.Unauthorized("ringcentral rejected the access token")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperr.Upstream(fmt.Sprintf("ringcentral call log returned %d", resp.StatusCode))
	}

	var parsed callLogResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode call log response: %w", err)
	}
	return &parsed, nil
}

// DownloadRecording streams a call recording's content. The caller owns the
// returned reader and must close it.
func (c *Client) DownloadRecording(ctx context.Context, accessToken, recordingID string) (io.ReadCloser, string, error) {
	endpoint := fmt.Sprintf("%s/restapi/v1.0/account/~/recording/%s/content", c.baseURL, url.PathEscape(recordingID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build recording request: %w", err)
	}
	req.Header.Set(httpHeaderAuthorization, authorizationBearerPrefix+accessToken)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, "", fmt.Errorf("rate limiter wait: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("recording request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, "", apperr.Upstream(fmt.Sprintf("ringcentral recording returned %d", resp.StatusCode))
	}

	contentType := resp.Header.Get(httpHeaderContentType)
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	return resp.Body, contentType, nil
}

func parseCallRecord(raw callLogRecord) (CallRecord, error) {
	startTime, err := time.Parse(time.RFC3339, raw.StartTime)
	if err != nil {
		return CallRecord{}, fmt.Errorf("parse call start time: %w", err)
	}

	record := CallRecord{
		ID:              raw.ID,
		Direction:       strings.ToLower(raw.Direction),
		StartTime:       startTime,
		DurationSeconds: raw.Duration,
		Result:          raw.Result,
		FromNumber:      raw.From.PhoneNumber,
		ToNumber:        raw.To.PhoneNumber,
	}
	if raw.Recording != nil {
		record.RecordingID = raw.Recording.ID
	}
	return record, nil
}
