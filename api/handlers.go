package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/toolbridge/connectorkit/agentrpc"
	"github.com/toolbridge/connectorkit/connector"
	ckerrors "github.com/toolbridge/connectorkit/internal/errors"
	"github.com/toolbridge/connectorkit/session"
)

// maxRequestBodySize bounds tool call request bodies (1 MiB).
const maxRequestBodySize = 1 << 20

// SessionHeader carries the session ID on tool execution requests.
const SessionHeader = "X-Session-ID"

// API holds dependencies for API handlers: the connector registry, the
// session store and the agent protocol bridge.
type API struct {
	registry *connector.Registry
	sessions *session.Store
	agent    *agentrpc.Server
}

// NewAPI creates a new API handler structure.
func NewAPI(registry *connector.Registry, sessions *session.Store, agent *agentrpc.Server) *API {
	return &API{
		registry: registry,
		sessions: sessions,
		agent:    agent,
	}
}

// SetupRoutes defines all the API routes for the connector service.
func SetupRoutes(router *gin.Engine, registry *connector.Registry, sessions *session.Store, agent *agentrpc.Server) {
	apiHandler := NewAPI(registry, sessions, agent)

	router.Use(RequestIDMiddleware())
	router.Use(CORSMiddleware())
	router.Use(RequestSizeLimitMiddleware(maxRequestBodySize))

	// Health check route
	router.GET("/health", apiHandler.HealthCheckHandler)

	// Connector routes
	connectorRoutes := router.Group("/connectors")
	{
		connectorRoutes.GET("", apiHandler.ListConnectorsHandler)                      // List all connectors
		connectorRoutes.GET("/:connectorName", apiHandler.GetConnectorHandler)         // Get connector details
		connectorRoutes.POST("/:connectorName/tools/:toolName", apiHandler.ExecuteToolHandler) // Execute a tool
	}

	// Session lifecycle routes
	sessionRoutes := router.Group("/sessions")
	{
		sessionRoutes.POST("", apiHandler.CreateSessionHandler)            // Start a session
		sessionRoutes.DELETE("/:sessionId", apiHandler.DeleteSessionHandler) // End a session
	}

	// Agent protocol bridge (JSON-RPC over HTTP)
	if agent != nil {
		router.POST("/agent", gin.WrapH(agent.HTTPHandler()))
	}
}

// HealthCheckHandler reports service liveness.
func (api *API) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"connectors": len(api.registry.List()),
	})
}

// connectorSummary is the wire shape for connector listings. Tool handlers
// are not serializable and stay out of responses.
type connectorSummary struct {
	Name        string                      `json:"name"`
	Description string                      `json:"description"`
	Credentials []connector.CredentialField `json:"credentials"`
	Tools       []toolSummary               `json:"tools"`
}

type toolSummary struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func summarize(c *connector.Connector) connectorSummary {
	tools := make([]toolSummary, 0, len(c.Tools))
	for _, tool := range c.Tools {
		tools = append(tools, toolSummary{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: tool.InputSchema,
		})
	}
	return connectorSummary{
		Name:        c.Name,
		Description: c.Description,
		Credentials: c.Credentials,
		Tools:       tools,
	}
}

// ListConnectorsHandler returns every registered connector.
func (api *API) ListConnectorsHandler(c *gin.Context) {
	connectors := api.registry.List()
	summaries := make([]connectorSummary, 0, len(connectors))
	for _, conn := range connectors {
		summaries = append(summaries, summarize(conn))
	}
	c.JSON(http.StatusOK, gin.H{"connectors": summaries})
}

// GetConnectorHandler returns one connector's description, credentials and tools.
func (api *API) GetConnectorHandler(c *gin.Context) {
	name := c.Param("connectorName")

	conn, err := api.registry.Get(name)
	if err != nil {
		SendConnectorNotFoundError(c, name)
		return
	}
	c.JSON(http.StatusOK, summarize(conn))
}

// toolCallRequest is the body of a tool execution request.
type toolCallRequest struct {
	Args        map[string]interface{} `json:"args"`
	Credentials map[string]string      `json:"credentials"`
}

// ExecuteToolHandler runs one connector tool and returns its text result.
// An optional X-Session-ID header attaches per-session state to the call.
func (api *API) ExecuteToolHandler(c *gin.Context) {
	connectorName := c.Param("connectorName")
	toolName := c.Param("toolName")

	var req toolCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	var sess *session.Session
	if sessionID := c.GetHeader(SessionHeader); sessionID != "" {
		var err error
		sess, err = api.sessions.Get(sessionID)
		if err != nil {
			SendSessionNotFoundError(c, sessionID)
			return
		}
	}

	result, err := api.registry.Execute(c.Request.Context(), connectorName, toolName, req.Args, req.Credentials, sess)
	if err != nil {
		switch {
		case errors.Is(err, ckerrors.ErrConnectorNotFound):
			SendConnectorNotFoundError(c, connectorName)
		case errors.Is(err, ckerrors.ErrToolNotFound):
			SendToolNotFoundError(c, toolName, connectorName)
		case errors.Is(err, ckerrors.ErrMissingCredential):
			SendMissingCredentialError(c, err)
		case errors.Is(err, ckerrors.ErrInvalidInput):
			SendValidationError(c, err)
		default:
			SendToolExecutionError(c, toolName, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"connector": connectorName,
		"tool":      toolName,
		"result":    result,
	})
}

// CreateSessionHandler starts a new agent session.
func (api *API) CreateSessionHandler(c *gin.Context) {
	sess := api.sessions.Create()
	c.JSON(http.StatusCreated, gin.H{"session_id": sess.ID})
}

// DeleteSessionHandler ends a session. Deleting an unknown session is
// idempotent and still returns 204.
func (api *API) DeleteSessionHandler(c *gin.Context) {
	api.sessions.Delete(c.Param("sessionId"))
	c.Status(http.StatusNoContent)
}
