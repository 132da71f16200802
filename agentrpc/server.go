// Package agentrpc exposes the connector registry to agents over the MCP
// JSON-RPC 2.0 protocol. It supports the initialize, tools/list and
// tools/call methods, over stdio or HTTP.
package agentrpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/toolbridge/connectorkit/connector"
	ckerrors "github.com/toolbridge/connectorkit/internal/errors"
	"github.com/toolbridge/connectorkit/session"
)

// ProtocolVersion is the MCP protocol revision this server speaks.
const ProtocolVersion = "2024-11-05"

// JSON-RPC 2.0 error codes.
const (
	ErrCodeParseError     = -32700
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternal       = -32603
	ErrCodeToolNotFound   = -32001
	ErrCodeToolExecFailed = -32002
)

// Request is an incoming JSON-RPC request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is an outgoing JSON-RPC response.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error is a JSON-RPC error object.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ServerInfo names the server in the initialize handshake.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type qualifiedTool struct {
	connectorName string
	toolName      string
	tool          connector.Tool
}

// Server bridges the connector registry onto the agent protocol. Each Server
// owns one session: an agent process connected over stdio (or one HTTP
// bridge) is one agent session.
type Server struct {
	registry    *connector.Registry
	credentials map[string]map[string]string
	session     *session.Session
	info        ServerInfo

	// tools maps the agent-visible "{connector}_{tool}" name back to the
	// registry coordinates. Built once; registration happens at startup.
	tools map[string]qualifiedTool
	order []string
}

// NewServer builds a protocol server over the given registry. credentials
// maps connector name to its credential values. The session may be nil for a
// stateless server.
func NewServer(registry *connector.Registry, credentials map[string]map[string]string, sess *session.Session, info ServerInfo) *Server {
	s := &Server{
		registry:    registry,
		credentials: credentials,
		session:     sess,
		info:        info,
		tools:       make(map[string]qualifiedTool),
	}

	for _, c := range registry.List() {
		for _, tool := range c.Tools {
			name := c.Name + "_" + tool.Name
			s.tools[name] = qualifiedTool{connectorName: c.Name, toolName: tool.Name, tool: tool}
			s.order = append(s.order, name)
		}
	}
	return s
}

// HandleRequest processes one JSON-RPC request and returns its response.
func (s *Server) HandleRequest(ctx context.Context, req Request) Response {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req.ID)
	case "tools/list":
		return s.handleToolsList(req.ID)
	case "tools/call":
		return s.handleToolsCall(ctx, req.ID, req.Params)
	default:
		return errorResponse(req.ID, ErrCodeMethodNotFound, fmt.Sprintf("method %s not found", req.Method))
	}
}

func (s *Server) handleInitialize(id interface{}) Response {
	result := map[string]interface{}{
		"protocolVersion": ProtocolVersion,
		"capabilities": map[string]interface{}{
			"tools": map[string]interface{}{},
		},
		"serverInfo": map[string]interface{}{
			"name":    s.info.Name,
			"version": s.info.Version,
		},
	}
	return Response{JSONRPC: "2.0", ID: id, Result: result}
}

func (s *Server) handleToolsList(id interface{}) Response {
	tools := make([]map[string]interface{}, 0, len(s.order))
	for _, name := range s.order {
		qt := s.tools[name]
		tools = append(tools, map[string]interface{}{
			"name":        name,
			"description": qt.tool.Description,
			"inputSchema": qt.tool.InputSchema,
		})
	}
	return Response{JSONRPC: "2.0", ID: id, Result: map[string]interface{}{"tools": tools}}
}

type toolsCallParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

func (s *Server) handleToolsCall(ctx context.Context, id interface{}, params json.RawMessage) Response {
	var callParams toolsCallParams
	if err := json.Unmarshal(params, &callParams); err != nil {
		return errorResponse(id, ErrCodeInvalidParams, err.Error())
	}

	qt, exists := s.tools[callParams.Name]
	if !exists {
		return errorResponse(id, ErrCodeToolNotFound, fmt.Sprintf("tool %s not found", callParams.Name))
	}

	text, err := s.registry.Execute(ctx, qt.connectorName, qt.toolName, callParams.Arguments, s.credentials[qt.connectorName], s.session)
	if err != nil {
		code := ErrCodeToolExecFailed
		switch {
		case errors.Is(err, ckerrors.ErrToolNotFound), errors.Is(err, ckerrors.ErrConnectorNotFound):
			code = ErrCodeToolNotFound
		case errors.Is(err, ckerrors.ErrInvalidInput):
			code = ErrCodeInvalidParams
		}
		return errorResponse(id, code, err.Error())
	}

	result := map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": text},
		},
	}
	return Response{JSONRPC: "2.0", ID: id, Result: result}
}

func errorResponse(id interface{}, code int, message string) Response {
	return Response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &Error{Code: code, Message: message},
	}
}
