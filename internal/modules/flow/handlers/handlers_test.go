package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oiflow/internal/clients/nse"
	"oiflow/internal/modules/flow"
	"oiflow/internal/sample"
)

// stubFetcher fails or answers every endpoint with one canned response.
type stubFetcher struct {
	payload json.RawMessage
	err     error
}

func (s *stubFetcher) OptionChain(context.Context, string, string, string) (json.RawMessage, error) {
	return s.payload, s.err
}

func (s *stubFetcher) IndexData(context.Context) (json.RawMessage, error) {
	return s.payload, s.err
}

func (s *stubFetcher) ContractInfo(context.Context, string) (json.RawMessage, error) {
	return s.payload, s.err
}

func newTestRouter(fetcher flow.Fetcher) chi.Router {
	service := flow.NewService(fetcher, sample.NewStore(), zerolog.Nop())
	handler := NewHandler(service, zerolog.Nop())

	r := chi.NewRouter()
	r.Route("/api", handler.RegisterRoutes)
	return r
}

func doGet(t *testing.T, router chi.Router, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleSummary_SampleMode(t *testing.T) {
	router := newTestRouter(&stubFetcher{err: &nse.AcquisitionError{Endpoint: "option chain", Cause: "offline"}})

	rec := doGet(t, router, "/api/option-chain/summary?use_sample=true")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Meta struct {
			Symbol string  `json:"symbol"`
			Expiry string  `json:"expiry"`
			Spot   float64 `json:"spot"`
		} `json:"meta"`
		TargetProjection *struct {
			Support    float64 `json:"support"`
			Resistance float64 `json:"resistance"`
		} `json:"target_projection"`
		Rows []json.RawMessage `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "NIFTY", body.Meta.Symbol)
	assert.Equal(t, "30-Sep-2026", body.Meta.Expiry)
	assert.Len(t, body.Rows, 5)
	require.NotNil(t, body.TargetProjection)
	assert.Equal(t, 24400.0, body.TargetProjection.Support)
	assert.Equal(t, 24600.0, body.TargetProjection.Resistance)
}

func TestHandleSummary_UpstreamFailureIsBadGateway(t *testing.T) {
	router := newTestRouter(&stubFetcher{err: &nse.AcquisitionError{Endpoint: "option chain", Cause: "HTTP 403"}})

	rec := doGet(t, router, "/api/option-chain/summary")

	require.Equal(t, http.StatusBadGateway, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["detail"], "HTTP 403")
}

func TestHandleSummary_EmptyChainIsBadGateway(t *testing.T) {
	router := newTestRouter(&stubFetcher{payload: json.RawMessage(`{"records":{"underlyingValue":24500}}`)})

	rec := doGet(t, router, "/api/option-chain/summary")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "no option chain data")
}

func TestHandleExpiries_Live(t *testing.T) {
	router := newTestRouter(&stubFetcher{payload: json.RawMessage(`{"expiryDates":["30-Sep-2026"],"strikePrice":[24400,24500]}`)})

	rec := doGet(t, router, "/api/option-chain/expiries?symbol=NIFTY")

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Symbol   string    `json:"symbol"`
		Expiries []string  `json:"expiries"`
		Strikes  []float64 `json:"strikes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "NIFTY", body.Symbol)
	assert.Equal(t, []string{"30-Sep-2026"}, body.Expiries)
	assert.Equal(t, []float64{24400, 24500}, body.Strikes)
}

func TestHandleTargetProjection_UnavailableIsBadGateway(t *testing.T) {
	router := newTestRouter(&stubFetcher{payload: json.RawMessage(`{"records":{
		"underlyingValue":24500,
		"data":[{"strikePrice":24500,"CE":{"totalTradedVolume":10},"PE":{"totalTradedVolume":10}}]
	}}`)})

	rec := doGet(t, router, "/api/option-chain/target-projection")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "target projection")
}

func TestHandleInterpretations_SampleMode(t *testing.T) {
	router := newTestRouter(&stubFetcher{})

	rec := doGet(t, router, "/api/option-chain/interpretations?use_sample=1")

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Interpretations []struct {
			StrikePrice float64 `json:"strikePrice"`
			OptionType  string  `json:"optionType"`
			Label       string  `json:"interpretationLabel"`
			Confidence  int     `json:"confidenceScore"`
		} `json:"interpretations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Interpretations, 10)
	assert.Equal(t, "CE", body.Interpretations[0].OptionType)
	assert.Equal(t, "PE", body.Interpretations[1].OptionType)
}

func TestHandleHealth_OK(t *testing.T) {
	router := newTestRouter(&stubFetcher{payload: json.RawMessage(`{"records":{
		"timestamp":"28-Aug-2026 15:30:00","underlyingValue":24512.35,
		"data":[{"strikePrice":24500}]
	}}`)})

	rec := doGet(t, router, "/api/health/nse")

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		OK        bool    `json:"ok"`
		Timestamp string  `json:"timestamp"`
		Spot      float64 `json:"spot"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.OK)
	assert.InDelta(t, 24512.35, body.Spot, 1e-9)
}

func TestHandleHealth_Failure(t *testing.T) {
	router := newTestRouter(&stubFetcher{err: &nse.AcquisitionError{Endpoint: "option chain", Cause: "timeout"}})

	rec := doGet(t, router, "/api/health/nse")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandleIndexData_Filtered(t *testing.T) {
	router := newTestRouter(&stubFetcher{payload: json.RawMessage(`{"data":[
		{"indexName":"NIFTY 50","last":24512.35},
		{"indexName":"NIFTY BANK","last":52400.10}
	]}`)})

	rec := doGet(t, router, "/api/index-data?names=NIFTY%2050")

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "NIFTY 50", body.Data[0]["indexName"])
}
