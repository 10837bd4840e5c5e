package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// JSON-RPC 2.0 error codes.
const (
	rpcParseError     = -32700
	rpcInvalidRequest = -32600
	rpcMethodNotFound = -32601
	rpcInvalidParams  = -32602
	rpcServerError    = -32000
)

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *rpcError   `json:"error,omitempty"`
}

// runRef identifies a run in status and cancel calls.
type runRef struct {
	RunID string `json:"run_id"`
}

// handleJSONRPC serves the JSON-RPC 2.0 endpoint with the methods
// optimization.start, optimization.status, and optimization.cancel.
func (s *Server) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondRPCError(w, nil, rpcParseError, "parse error")
		return
	}
	if req.JSONRPC != "2.0" {
		s.respondRPCError(w, req.ID, rpcInvalidRequest, "invalid request")
		return
	}

	var (
		result interface{}
		err    error
		code   = rpcServerError
	)

	switch req.Method {
	case "optimization.start":
		var params OptimizeRequest
		if uerr := unmarshalParams(req.Params, &params); uerr != nil {
			s.respondRPCError(w, req.ID, rpcInvalidParams, uerr.Error())
			return
		}
		var state *RunState
		if state, err = s.start(&params); err == nil {
			result = map[string]string{"run_id": state.ID, "status": state.Status}
		}
	case "optimization.status":
		var params runRef
		if uerr := unmarshalParams(req.Params, &params); uerr != nil {
			s.respondRPCError(w, req.ID, rpcInvalidParams, uerr.Error())
			return
		}
		result, err = s.status(params.RunID)
	case "optimization.cancel":
		var params runRef
		if uerr := unmarshalParams(req.Params, &params); uerr != nil {
			s.respondRPCError(w, req.ID, rpcInvalidParams, uerr.Error())
			return
		}
		if err = s.cancelRun(params.RunID); err == nil {
			result = map[string]string{"status": StatusCancelled}
		}
	default:
		s.respondRPCError(w, req.ID, rpcMethodNotFound, "method not found")
		return
	}

	if err != nil {
		s.respondRPCError(w, req.ID, code, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, rpcResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
	})
}

// unmarshalParams accepts either a params object or a single-element
// positional array wrapping one.
func unmarshalParams(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return json.Unmarshal([]byte("{}"), v)
	}
	if raw[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(raw, &list); err != nil {
			return err
		}
		if len(list) == 0 {
			return json.Unmarshal([]byte("{}"), v)
		}
		return json.Unmarshal(list[0], v)
	}
	return json.Unmarshal(raw, v)
}

func (s *Server) respondRPCError(w http.ResponseWriter, id interface{}, code int, message string) {
	s.logger.Error("rpc error",
		zap.Int("code", code),
		zap.String("message", message),
	)
	writeJSON(w, http.StatusOK, rpcResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &rpcError{Code: code, Message: message},
	})
}
