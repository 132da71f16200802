package agentrpc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// maxLineSize bounds a single stdio request line (1 MiB).
const maxLineSize = 1 << 20

// ServeStdio reads newline-delimited JSON-RPC requests from r and writes
// responses to w. Blocks until r is exhausted or the context is cancelled.
func (s *Server) ServeStdio(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if len(scanner.Bytes()) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			resp := Response{
				JSONRPC: "2.0",
				Error:   &Error{Code: ErrCodeParseError, Message: err.Error()},
			}
			if err := encoder.Encode(resp); err != nil {
				return fmt.Errorf("encoding error response: %w", err)
			}
			continue
		}

		if err := encoder.Encode(s.HandleRequest(ctx, req)); err != nil {
			return fmt.Errorf("encoding response: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading requests: %w", err)
	}
	return nil
}

// HTTPHandler returns an http.Handler that serves single JSON-RPC requests
// from POST bodies.
func (s *Server) HTTPHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var rpcReq Request
		if err := json.NewDecoder(req.Body).Decode(&rpcReq); err != nil {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(Response{
				JSONRPC: "2.0",
				Error:   &Error{Code: ErrCodeParseError, Message: err.Error()},
			})
			return
		}

		resp := s.HandleRequest(req.Context(), rpcReq)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})
}
