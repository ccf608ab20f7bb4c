package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Zee-create-614/papertrader/engine"
	"github.com/Zee-create-614/papertrader/ledger"
	"github.com/Zee-create-614/papertrader/market"
	"github.com/Zee-create-614/papertrader/stats"
	"github.com/Zee-create-614/papertrader/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*httptest.Server, *market.StaticSource) {
	t.Helper()

	prices := market.NewStaticSource()
	eng := engine.New(store.NewMemory(),
		engine.WithClock(func() time.Time { return testNow }),
		engine.WithPriceSource(prices))

	srv := NewServer(":0", eng, zap.NewNop())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, prices
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	data := make([]byte, 0)
	if resp.Body != nil {
		defer resp.Body.Close()
		var out bytes.Buffer
		_, err = out.ReadFrom(resp.Body)
		require.NoError(t, err)
		data = out.Bytes()
	}
	return resp, data
}

func createAccount(t *testing.T, ts *httptest.Server) string {
	t.Helper()

	resp, data := doJSON(t, http.MethodPost, ts.URL+"/accounts", map[string]any{
		"starting_balance": "100000",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))

	var acct ledger.Account
	require.NoError(t, json.Unmarshal(data, &acct))
	require.NotEmpty(t, acct.ID)
	return acct.ID
}

func openCoveredCall(t *testing.T, ts *httptest.Server, acctID string) ledger.Trade {
	t.Helper()

	resp, data := doJSON(t, http.MethodPost, ts.URL+"/accounts/"+acctID+"/trades", map[string]any{
		"trade_type":  "option",
		"symbol":      "AAPL",
		"strategy":    "covered_call",
		"entry_price": "100",
		"strike":      "110",
		"contracts":   1,
		"premium":     "2",
		"expiration":  testNow.Add(30 * 24 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))

	var trade ledger.Trade
	require.NoError(t, json.Unmarshal(data, &trade))
	return trade
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	ts, _ := newTestServer(t)
	resp, data := doJSON(t, http.MethodGet, ts.URL+"/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(data))
}

func TestTradeLifecycleOverHTTP(t *testing.T) {
	t.Parallel()

	ts, _ := newTestServer(t)
	acctID := createAccount(t, ts)
	trade := openCoveredCall(t, ts, acctID)
	assert.Equal(t, ledger.StatusOpen, trade.Status)

	resp, data := doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/accounts/%s/trades/%s/close", ts.URL, acctID, trade.ID),
		map[string]any{"close_price": "115"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	var closed ledger.Trade
	require.NoError(t, json.Unmarshal(data, &closed))
	assert.Equal(t, ledger.StatusClosed, closed.Status)
	require.NotNil(t, closed.Pnl)
	assert.True(t, closed.Pnl.Equal(decimal.NewFromInt(1200)))

	resp, data = doJSON(t, http.MethodGet, ts.URL+"/accounts/"+acctID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var acct ledger.Account
	require.NoError(t, json.Unmarshal(data, &acct))
	assert.True(t, acct.Balance.Equal(decimal.NewFromInt(101200)), "balance %s", acct.Balance)

	resp, data = doJSON(t, http.MethodGet, ts.URL+"/accounts/"+acctID+"/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var summary stats.Summary
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, 1, summary.ClosedTrades)
	assert.InDelta(t, 100.0, summary.WinRate, 1e-9)
}

func TestValuationEndpoint(t *testing.T) {
	t.Parallel()

	ts, prices := newTestServer(t)
	acctID := createAccount(t, ts)

	resp, data := doJSON(t, http.MethodPost, ts.URL+"/accounts/"+acctID+"/trades", map[string]any{
		"trade_type":  "spot",
		"symbol":      "BTC",
		"direction":   "long",
		"entry_price": "100",
		"quantity":    "2",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))

	prices.Set(market.Quote{Symbol: "BTC", Price: decimal.NewFromInt(110), Time: testNow})

	resp, data = doJSON(t, http.MethodGet, ts.URL+"/accounts/"+acctID+"/valuation", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	var v engine.Valuation
	require.NoError(t, json.Unmarshal(data, &v))
	// 100000 - 200 entry cash, +20 unrealized on the 2-unit position.
	assert.True(t, v.Balance.Equal(decimal.NewFromInt(99800)), "balance %s", v.Balance)
	assert.True(t, v.UnrealizedPnl.Equal(decimal.NewFromInt(20)), "unrealized %s", v.UnrealizedPnl)
	assert.True(t, v.Equity.Equal(decimal.NewFromInt(99820)), "equity %s", v.Equity)
}

func TestExpireEndpoint(t *testing.T) {
	t.Parallel()

	ts, _ := newTestServer(t)
	acctID := createAccount(t, ts)
	trade := openCoveredCall(t, ts, acctID)

	// Expiration is 30 days out and the clock is pinned, so this is too early.
	resp, data := doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/accounts/%s/trades/%s/expire", ts.URL, acctID, trade.ID),
		map[string]any{"settlement_price": "100"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(data))
}

func TestErrorStatusMapping(t *testing.T) {
	t.Parallel()

	ts, _ := newTestServer(t)
	acctID := createAccount(t, ts)
	trade := openCoveredCall(t, ts, acctID)

	// Duplicate account id -> 409.
	body := map[string]any{"id": "taken", "starting_balance": "1000"}
	resp0, _ := doJSON(t, http.MethodPost, ts.URL+"/accounts", body)
	require.Equal(t, http.StatusCreated, resp0.StatusCode)
	resp0, _ = doJSON(t, http.MethodPost, ts.URL+"/accounts", body)
	assert.Equal(t, http.StatusConflict, resp0.StatusCode)

	// Unknown account -> 404.
	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/accounts/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Unknown trade -> 404.
	resp, _ = doJSON(t, http.MethodPost,
		ts.URL+"/accounts/"+acctID+"/trades/nope/close",
		map[string]any{"close_price": "100"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Invalid open request -> 400.
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/accounts/"+acctID+"/trades", map[string]any{
		"trade_type": "spot", "symbol": "BTC", "direction": "long",
		"entry_price": "0", "quantity": "1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Malformed body -> 400.
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/accounts/"+acctID+"/trades",
		bytes.NewBufferString("{not json"))
	require.NoError(t, err)
	raw, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	raw.Body.Close()
	assert.Equal(t, http.StatusBadRequest, raw.StatusCode)

	// Double close -> 409 the second time.
	url := fmt.Sprintf("%s/accounts/%s/trades/%s/close", ts.URL, acctID, trade.ID)
	resp, _ = doJSON(t, http.MethodPost, url, map[string]any{"close_price": "115"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodPost, url, map[string]any{"close_price": "115"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Delete is idempotent in effect but strict in status: 204 then 404.
	del := fmt.Sprintf("%s/accounts/%s/trades/%s", ts.URL, acctID, trade.ID)
	resp, _ = doJSON(t, http.MethodDelete, del, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodDelete, del, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
