package nse

import "net/url"

// Endpoint describes one of the NSE API endpoints the client can hit.
// Descriptors are fixed at compile time; parameters are built per call.
type Endpoint struct {
	Name string // Human-readable, used in errors and logs
	Path string // Path under the base URL
}

var (
	// EndpointOptionChain serves the full per-strike CE/PE snapshot.
	EndpointOptionChain = Endpoint{Name: "option chain", Path: "/api/option-chain-v3"}

	// EndpointIndexData serves live index values.
	EndpointIndexData = Endpoint{Name: "index data", Path: "/api/NextApi/apiClient"}

	// EndpointContractInfo serves available expiries and the strike list.
	EndpointContractInfo = Endpoint{Name: "contract info", Path: "/api/option-chain-contract-info"}
)

func optionChainParams(symbol, expiry, instrumentType string) url.Values {
	params := url.Values{}
	params.Set("type", instrumentType)
	params.Set("symbol", symbol)
	if expiry != "" {
		params.Set("expiry", expiry)
	}
	return params
}

func indexDataParams() url.Values {
	params := url.Values{}
	params.Set("functionName", "getIndexData")
	params.Set("type", "All")
	return params
}

func contractInfoParams(symbol string) url.Values {
	params := url.Values{}
	params.Set("symbol", symbol)
	return params
}
