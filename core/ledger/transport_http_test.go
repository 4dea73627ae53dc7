package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackpredict/sdk-go/core/types"
)

func rpcServer(t *testing.T, handle func(method string, params map[string]string) (any, *rpcError)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			JSONRPC string            `json:"jsonrpc"`
			ID      string            `json:"id"`
			Method  string            `json:"method"`
			Params  map[string]string `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "2.0", req.JSONRPC)
		assert.NotEmpty(t, req.ID)

		result, rpcErr := handle(req.Method, req.Params)
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestHTTPTransportSimulate(t *testing.T) {
	srv := rpcServer(t, func(method string, params map[string]string) (any, *rpcError) {
		assert.Equal(t, "simulateTransaction", method)
		assert.Equal(t, "ZW52ZWxvcGU=", params["transaction"])
		return SimulateResponse{
			Results:        []SimulateResult{{ReturnXDR: "cmV0", Auth: []string{"YXV0aA=="}}},
			MinResourceFee: "5000",
			LatestLedger:   77,
		}, nil
	})
	defer srv.Close()

	transport := NewHTTPTransport(srv.URL)
	resp, err := transport.SimulateTransaction(context.Background(), "ZW52ZWxvcGU=")
	require.NoError(t, err)
	assert.Equal(t, "5000", resp.MinResourceFee)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "cmV0", resp.Results[0].ReturnXDR)
}

func TestHTTPTransportSendAndPoll(t *testing.T) {
	srv := rpcServer(t, func(method string, params map[string]string) (any, *rpcError) {
		switch method {
		case "sendTransaction":
			return SendResponse{Status: SendStatusPending, Hash: "abc123"}, nil
		case "getTransaction":
			assert.Equal(t, "abc123", params["hash"])
			return GetTransactionResponse{Status: TxStatusSuccess, ReturnValueXDR: "cmV0", Ledger: 80}, nil
		default:
			t.Fatalf("unexpected method %s", method)
			return nil, nil
		}
	})
	defer srv.Close()

	transport := NewHTTPTransport(srv.URL)
	sent, err := transport.SendTransaction(context.Background(), "c2lnbmVk")
	require.NoError(t, err)
	assert.Equal(t, "abc123", sent.Hash)

	tx, err := transport.GetTransaction(context.Background(), sent.Hash)
	require.NoError(t, err)
	assert.Equal(t, TxStatusSuccess, tx.Status)
}

func TestHTTPTransportGetAccountSequenceString(t *testing.T) {
	srv := rpcServer(t, func(method string, params map[string]string) (any, *rpcError) {
		assert.Equal(t, "getAccount", method)
		// the RPC encodes 64-bit sequence numbers as strings
		return map[string]string{"id": params["account"], "sequence": "9007199254740993"}, nil
	})
	defer srv.Close()

	transport := NewHTTPTransport(srv.URL)
	account, err := transport.GetAccount(context.Background(), "GAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")
	require.NoError(t, err)
	assert.Equal(t, int64(9007199254740993), account.Sequence)
}

func TestHTTPTransportRPCError(t *testing.T) {
	srv := rpcServer(t, func(method string, params map[string]string) (any, *rpcError) {
		return nil, &rpcError{Code: -32600, Message: "invalid request"}
	})
	defer srv.Close()

	transport := NewHTTPTransport(srv.URL)
	_, err := transport.SimulateTransaction(context.Background(), "eA==")
	require.Error(t, err)
	assert.NotErrorIs(t, err, types.ErrNetworkUnavailable)
}

func TestHTTPTransportNetworkErrors(t *testing.T) {
	// unreachable endpoint
	transport := NewHTTPTransport("http://127.0.0.1:1")
	_, err := transport.SimulateTransaction(context.Background(), "eA==")
	require.ErrorIs(t, err, types.ErrNetworkUnavailable)

	// http-level failure
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	transport = NewHTTPTransport(srv.URL)
	_, err = transport.GetTransaction(context.Background(), "abc")
	require.ErrorIs(t, err, types.ErrNetworkUnavailable)
}
