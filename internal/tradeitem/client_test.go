package tradeitem

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"cinsignal/internal/config"
	"cinsignal/internal/storage"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

const testCIN = `<catalogueItemNotificationMessage><tradeItem><gtin>07310865071811</gtin><brandName>Marabou</brandName></tradeItem></catalogueItemNotificationMessage>`

func jsonResponse(status int, v any) *http.Response {
	blob, _ := json.Marshal(v)
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(string(blob))), Header: h}
}

func testConfig() config.Config {
	return config.Config{
		ExportLanguage:        "sv",
		TradeItemBaseURL:      "https://example.test/tradeitem.api",
		TradeItemTokenURL:     "https://example.test/connect/token",
		TradeItemClientID:     "client",
		TradeItemClientSecret: "secret",
		TradeItemUsername:     "user",
		TradeItemPassword:     "pass",
		TradeItemScope:        "tradeitem.api",
		TradeItemRateLimitRPS: 1000,
		TradeItemTimeoutMs:    5000,
	}
}

type fakeAPI struct {
	tokenCalls  int
	searchCalls int
	itemID      string
}

func (f *fakeAPI) client(t *testing.T, cfg config.Config) *Client {
	c := NewClient(cfg)
	c.httpClient = &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		switch r.URL.Path {
		case "/connect/token":
			f.tokenCalls++
			require.NoError(t, r.ParseForm())
			require.Equal(t, "password", r.PostForm.Get("grant_type"))
			require.Equal(t, "user", r.PostForm.Get("username"))
			return jsonResponse(http.StatusOK, map[string]any{"access_token": "tok", "token_type": "Bearer", "expires_in": 3600}), nil
		case "/tradeitem.api/TradeItemInformation/search":
			f.searchCalls++
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			if f.searchCalls == 1 {
				return jsonResponse(http.StatusServiceUnavailable, map[string]any{"error": "busy"}), nil
			}
			var req searchRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, []string{"07310865071811"}, req.GTINs)
			require.Equal(t, []string{"published"}, req.ItemStatus)
			return jsonResponse(http.StatusOK, map[string]any{"results": []map[string]any{
				{"gtin": "07310865071811", "itemId": 10, "isTradeItemAConsumerUnit": false},
				{"gtin": "17310865071818", "itemId": 11, "isTradeItemAConsumerUnit": true},
				{"gtin": "07310865071811", "itemId": 12, "isTradeItemAConsumerUnit": true},
			}}), nil
		case "/tradeitem.api/TradeItemInformation/getItemById":
			f.itemID = r.URL.Query().Get("id")
			require.Equal(t, "Product", r.URL.Query().Get("dataType"))
			require.Equal(t, "true", r.URL.Query().Get("allowInvalid"))
			return jsonResponse(http.StatusOK, []map[string]any{
				{"itemId": 12, "cin": base64.StdEncoding.EncodeToString([]byte(testCIN))},
			}), nil
		}
		t.Fatalf("unexpected path %s", r.URL.Path)
		return nil, nil
	})}
	return c
}

func TestFetchCINPrefersConsumerUnitWithRetry(t *testing.T) {
	api := &fakeAPI{}
	client := api.client(t, testConfig())

	res, err := client.FetchCIN(context.Background(), "07310865071811")
	require.NoError(t, err)
	require.Equal(t, int64(12), res.ItemID)
	require.Equal(t, "12", api.itemID)
	require.Equal(t, testCIN, string(res.CIN))
	require.Contains(t, string(res.Item), `"itemId":12`)
	require.Equal(t, 2, api.searchCalls)
	require.Equal(t, 1, api.tokenCalls)
}

func TestPickItem(t *testing.T) {
	results := []SearchResult{
		{GTIN: "1", ItemID: 1},
		{GTIN: "2", ItemID: 2, IsConsumerUnit: true},
		{GTIN: "1", ItemID: 3},
	}
	got, ok := pickItem(results, "1")
	require.True(t, ok)
	require.Equal(t, int64(1), got.ItemID)

	_, ok = pickItem(results, "9")
	require.False(t, ok)

	single := []SearchResult{
		{GTIN: "1", ItemID: 1},
		{GTIN: "1", ItemID: 2, IsConsumerUnit: true},
	}
	got, ok = pickItem(single, "1")
	require.True(t, ok)
	require.Equal(t, int64(2), got.ItemID, "a lone consumer unit wins")

	ambiguous := []SearchResult{
		{GTIN: "1", ItemID: 1},
		{GTIN: "1", ItemID: 2, IsConsumerUnit: true},
		{GTIN: "1", ItemID: 3, IsConsumerUnit: true},
	}
	got, ok = pickItem(ambiguous, "1")
	require.True(t, ok)
	require.Equal(t, int64(1), got.ItemID, "several consumer units fall back to the first match")
}

func TestDecodeCIN(t *testing.T) {
	_, err := DecodeCIN("")
	require.ErrorIs(t, err, ErrNoCIN)

	_, err = DecodeCIN("%%%")
	require.Error(t, err)

	blob, err := DecodeCIN(base64.StdEncoding.EncodeToString([]byte("<a/>")))
	require.NoError(t, err)
	require.Equal(t, "<a/>", string(blob))
}

func TestMissingCredentials(t *testing.T) {
	cfg := testConfig()
	cfg.TradeItemPassword = ""

	_, err := NewClient(cfg).SearchByGTIN(context.Background(), "1")
	require.ErrorIs(t, err, ErrMissingSecrets)
}

type stubFetcher struct{ res FetchResult }

func (s stubFetcher) FetchCIN(context.Context, string) (FetchResult, error) { return s.res, nil }

func TestFetchServiceStoresDocument(t *testing.T) {
	db, err := storage.Open(filepath.Join(t.TempDir(), "cin.db"))
	require.NoError(t, err)
	defer db.Close()

	cfg := testConfig()
	cfg.OutputDir = t.TempDir()
	svc := NewFetchServiceWithClient(db, stubFetcher{res: FetchResult{
		GTIN: "07310865071811", ItemID: 12, Item: json.RawMessage(`{"itemId":12}`), CIN: []byte(testCIN),
	}}, cfg, nil)

	res, err := svc.Fetch(context.Background(), "07310865071811")
	require.NoError(t, err)
	require.Equal(t, "Marabou", *res.Signals.Identity.Brand)

	stored, err := db.GetDocumentByGTIN("07310865071811")
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, "tradeitem", stored.Source)

	for _, name := range []string{"cin.xml", "trade_item_raw.json", "signals.json", "row.csv"} {
		_, err := os.Stat(filepath.Join(cfg.OutputDir, "07310865071811", name))
		require.NoError(t, err, name)
	}

	last, err := db.GetMetadata("tradeitem.last_fetch.07310865071811")
	require.NoError(t, err)
	require.NotNil(t, last)
}
