// Package connector defines the declarative connector model and the registry
// that executes connector tools on behalf of agents. A connector describes an
// upstream web API: the credentials it needs and the tools it exposes. The
// registry owns lookup and execution, including credential validation, so
// individual handlers only see fully validated calls.
package connector

import (
	"context"
	"net/http"
	"sort"
	"sync"

	"github.com/toolbridge/connectorkit/internal/errors"
	"github.com/toolbridge/connectorkit/session"
)

// CredentialField declares one credential a connector needs to reach its
// upstream API.
type CredentialField struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Secret   bool   `json:"secret"`
	Required bool   `json:"required"`
}

// Call carries everything a tool handler may need for one invocation. State is
// passed explicitly; handlers must not reach for globals.
type Call struct {
	// Args are the tool arguments as decoded JSON.
	Args map[string]interface{}

	// Credentials are the validated credential values for the connector.
	Credentials map[string]string

	// Session is the per-session state for this agent, or nil when the call
	// is sessionless.
	Session *session.Session

	// HTTPClient is the client handlers use for upstream requests.
	HTTPClient *http.Client
}

// StringArg returns the named argument as a string. Missing or non-string
// arguments return the fallback.
func (c Call) StringArg(name, fallback string) string {
	raw, ok := c.Args[name]
	if !ok {
		return fallback
	}
	value, ok := raw.(string)
	if !ok {
		return fallback
	}
	return value
}

// Handler executes one tool call and returns agent-readable text.
type Handler func(ctx context.Context, call Call) (string, error)

// Tool is one operation a connector exposes to agents.
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
	Handler     Handler                `json:"-"`
}

// Connector describes one upstream web API and the tools built on it.
type Connector struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Credentials []CredentialField `json:"credentials"`
	Tools       []Tool            `json:"tools"`
}

// Tool returns the named tool.
func (c *Connector) Tool(name string) (Tool, bool) {
	for _, tool := range c.Tools {
		if tool.Name == name {
			return tool, true
		}
	}
	return Tool{}, false
}

// Registry holds the registered connectors. Safe for concurrent use; in
// practice registration happens at startup and lookup at request time.
type Registry struct {
	mu         sync.RWMutex
	connectors map[string]*Connector
	httpClient *http.Client
}

// NewRegistry creates an empty registry. A nil client falls back to
// http.DefaultClient.
func NewRegistry(httpClient *http.Client) *Registry {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Registry{
		connectors: make(map[string]*Connector),
		httpClient: httpClient,
	}
}

// Register adds a connector. Registering a name twice replaces the earlier
// connector; the last registration wins.
func (r *Registry) Register(c *Connector) error {
	if c == nil {
		return errors.NewValidationError("connector", "must not be nil")
	}
	if c.Name == "" {
		return errors.NewValidationError("name", "must not be empty")
	}
	for _, tool := range c.Tools {
		if tool.Name == "" {
			return errors.NewValidationError("tools", "every tool needs a name")
		}
		if tool.Handler == nil {
			return errors.NewValidationError("tools", "tool '"+tool.Name+"' has no handler")
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.connectors[c.Name] = c
	return nil
}

// Get returns the named connector.
func (r *Registry) Get(name string) (*Connector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.connectors[name]
	if !exists {
		return nil, errors.NewConnectorNotFoundError(name)
	}
	return c, nil
}

// List returns all registered connectors sorted by name.
func (r *Registry) List() []*Connector {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]*Connector, 0, len(r.connectors))
	for _, c := range r.connectors {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// Execute runs one tool call. It resolves the connector and tool, validates
// that every required credential is present and non-empty, and invokes the
// handler with a fully populated Call.
func (r *Registry) Execute(ctx context.Context, connectorName, toolName string, args map[string]interface{}, credentials map[string]string, sess *session.Session) (string, error) {
	c, err := r.Get(connectorName)
	if err != nil {
		return "", err
	}

	tool, exists := c.Tool(toolName)
	if !exists {
		return "", errors.NewToolNotFoundError(toolName, connectorName)
	}

	for _, field := range c.Credentials {
		if !field.Required {
			continue
		}
		if credentials[field.Key] == "" {
			return "", errors.NewMissingCredentialError(connectorName, field.Key)
		}
	}

	if args == nil {
		args = map[string]interface{}{}
	}

	return tool.Handler(ctx, Call{
		Args:        args,
		Credentials: credentials,
		Session:     sess,
		HTTPClient:  r.httpClient,
	})
}
