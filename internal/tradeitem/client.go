package tradeitem

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"cinsignal/internal/config"
)

const maxAttempts = 5

var (
	ErrNotFound       = errors.New("gtin not found")
	ErrNoCIN          = errors.New("trade item carries no CIN")
	ErrMissingSecrets = errors.New("missing trade item credentials")
)

// Client talks to the GS1 trade item information API.
type Client struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *RateLimiter

	mu    sync.Mutex
	token *oauth2.Token
}

// SearchResult is one hit of a GTIN search.
type SearchResult struct {
	GTIN           string `json:"gtin"`
	ItemID         int64  `json:"itemId"`
	IsConsumerUnit bool   `json:"isTradeItemAConsumerUnit"`
}

type searchRequest struct {
	GTINs      []string `json:"gtins"`
	ItemStatus []string `json:"itemStatus"`
}

type searchResponse struct {
	Results []SearchResult `json:"results"`
}

// Item is a trade item as returned by getItemById. Raw keeps the full
// payload; CIN is the base64 encoded notification message.
type Item struct {
	CIN string          `json:"cin"`
	Raw json.RawMessage `json:"-"`
}

// FetchResult is the outcome of FetchCIN.
type FetchResult struct {
	GTIN   string
	ItemID int64
	Item   json.RawMessage
	CIN    []byte
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.TradeItemTimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(cfg.TradeItemRateLimitRPS),
	}
}

// FetchCIN resolves gtin to an item and returns its decoded CIN. Among
// exact GTIN matches the consumer unit wins when it is the only one;
// otherwise the first match is used.
func (c *Client) FetchCIN(ctx context.Context, gtin string) (FetchResult, error) {
	results, err := c.SearchByGTIN(ctx, gtin)
	if err != nil {
		return FetchResult{}, err
	}
	match, ok := pickItem(results, gtin)
	if !ok {
		return FetchResult{}, fmt.Errorf("%w: %s", ErrNotFound, gtin)
	}

	item, err := c.GetItemByID(ctx, match.ItemID)
	if err != nil {
		return FetchResult{}, err
	}
	cin, err := DecodeCIN(item.CIN)
	if err != nil {
		return FetchResult{}, err
	}
	return FetchResult{GTIN: gtin, ItemID: match.ItemID, Item: item.Raw, CIN: cin}, nil
}

func pickItem(results []SearchResult, gtin string) (SearchResult, bool) {
	var matches, consumerUnits []SearchResult
	for _, r := range results {
		if r.GTIN != gtin {
			continue
		}
		matches = append(matches, r)
		if r.IsConsumerUnit {
			consumerUnits = append(consumerUnits, r)
		}
	}
	switch {
	case len(consumerUnits) == 1:
		return consumerUnits[0], true
	case len(matches) > 0:
		return matches[0], true
	default:
		return SearchResult{}, false
	}
}

// DecodeCIN decodes the base64 CIN payload.
func DecodeCIN(encoded string) ([]byte, error) {
	if strings.TrimSpace(encoded) == "" {
		return nil, ErrNoCIN
	}
	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode cin: %w", err)
	}
	return blob, nil
}

func (c *Client) SearchByGTIN(ctx context.Context, gtin string) ([]SearchResult, error) {
	payload, err := json.Marshal(searchRequest{GTINs: []string{gtin}, ItemStatus: []string{"published"}})
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, http.MethodPost, "TradeItemInformation/search", nil, payload)
	if err != nil {
		return nil, err
	}
	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (c *Client) GetItemByID(ctx context.Context, id int64) (Item, error) {
	query := map[string]string{
		"id":           strconv.FormatInt(id, 10),
		"dataType":     "Product",
		"allowInvalid": "true",
	}
	body, err := c.do(ctx, http.MethodGet, "TradeItemInformation/getItemById", query, nil)
	if err != nil {
		return Item{}, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return Item{}, err
	}
	if len(items) == 0 {
		return Item{}, fmt.Errorf("%w: item %d", ErrNotFound, id)
	}
	var item Item
	if err := json.Unmarshal(items[0], &item); err != nil {
		return Item{}, err
	}
	item.Raw = items[0]
	return item, nil
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token.Valid() {
		return c.token.AccessToken, nil
	}
	if c.cfg.TradeItemClientID == "" || c.cfg.TradeItemUsername == "" || c.cfg.TradeItemPassword == "" {
		return "", ErrMissingSecrets
	}

	oc := &oauth2.Config{
		ClientID:     c.cfg.TradeItemClientID,
		ClientSecret: c.cfg.TradeItemClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.cfg.TradeItemTokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Scopes: []string{c.cfg.TradeItemScope},
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := oc.PasswordCredentialsToken(ctx, c.cfg.TradeItemUsername, c.cfg.TradeItemPassword)
	if err != nil {
		return "", fmt.Errorf("trade item token: %w", err)
	}
	c.token = tok
	return tok.AccessToken, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, params map[string]string, payload []byte) ([]byte, error) {
	baseURL := strings.TrimRight(c.cfg.TradeItemBaseURL, "/") + "/"
	u, err := url.Parse(baseURL + endpoint)
	if err != nil {
		return nil, err
	}

	q := u.Query()
	for k, v := range params {
		if strings.TrimSpace(v) != "" {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()

	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.limiter.WaitTurn(ctx); err != nil {
			return nil, err
		}

		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < maxAttempts {
				lastErr = fmt.Errorf("trade item status %d", resp.StatusCode)
				backoff := time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
				if err := sleepCtx(ctx, backoff); err != nil {
					return nil, err
				}
				continue
			}
			return nil, fmt.Errorf("trade item api error: status=%d body=%s", resp.StatusCode, string(respBody))
		}
		return respBody, nil
	}

	if lastErr == nil {
		lastErr = errors.New("trade item request failed")
	}
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
