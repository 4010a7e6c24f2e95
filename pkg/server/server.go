// Package server exposes the server-mediated variant of the loop over HTTP.
//
// POST /api/chat makes a single model call with the server tool catalog and
// returns the model's text together with the tool call intents, which the
// caller executes on its own page.
package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/entrhq/cobrowse/pkg/actions"
	"github.com/entrhq/cobrowse/pkg/agent"
	"github.com/entrhq/cobrowse/pkg/agent/tools"
	"github.com/entrhq/cobrowse/pkg/config"
	"github.com/entrhq/cobrowse/pkg/llm"
	"github.com/entrhq/cobrowse/pkg/logging"
	"github.com/entrhq/cobrowse/pkg/portfolio"
	"github.com/entrhq/cobrowse/pkg/ratelimit"
	"github.com/entrhq/cobrowse/pkg/types"
)

// ChatPath is the route of the chat endpoint.
const ChatPath = "/api/chat"

var serverLog *logging.Logger

func init() {
	serverLog = logging.MustNew("server")
}

// Config configures the Server.
type Config struct {
	ListenAddr string

	// Portfolio supplies the system instruction and the tool enums.
	// Defaults to portfolio.Default().
	Portfolio *portfolio.Data

	// Gate spaces model calls across all requests. Defaults to a gate
	// with the standard gap.
	Gate *ratelimit.Gate
}

// Server serves the chat endpoint.
type Server struct {
	config   Config
	provider llm.Provider
	registry *tools.Registry
	system   string
	app      *fiber.App
}

// New creates a server answering with provider. Tool calls are never
// executed server-side; the registry only describes them to the model.
func New(cfg Config, provider llm.Provider) (*Server, error) {
	if cfg.Portfolio == nil {
		cfg.Portfolio = portfolio.Default()
	}
	if cfg.Gate == nil {
		cfg.Gate = ratelimit.NewGate()
	}

	lib := actions.NewLibrary(nil, actions.WithPortfolio(cfg.Portfolio))
	registry, err := tools.NewRegistry(tools.ServerCatalog(lib)...)
	if err != nil {
		return nil, fmt.Errorf("failed to build tool registry: %w", err)
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:   cfg,
		provider: provider,
		registry: registry,
		system:   cfg.Portfolio.Instruction(portfolio.VariantServer),
		app:      app,
	}

	app.Post(ChatPath, s.handleChat)
	app.Get("/healthz", s.handleHealth)

	return s, nil
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run starts the server on the configured address.
func (s *Server) Run() error {
	serverLog.Infof("Starting chat server on %s (provider %s)", s.config.ListenAddr, s.provider.Name())
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// handleChat handles POST /api/chat.
func (s *Server) handleChat(c *fiber.Ctx) error {
	var req types.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrorResponse{
			Error: "invalid request body",
		})
	}
	if strings.TrimSpace(req.Message) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrorResponse{
			Error: "message is required",
		})
	}

	history, err := turnsFromWire(req.History)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrorResponse{
			Error: err.Error(),
		})
	}

	orchestrator := agent.New(s.provider, s.registry,
		agent.WithMode(agent.ModeServer),
		agent.WithGate(s.config.Gate),
		agent.WithSystemInstruction(s.system),
	)

	reply, err := orchestrator.Run(c.UserContext(), history, req.Message)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrorResponse{
			Error: errorMessage(err),
		})
	}

	calls := make([]types.WireFunctionCall, 0, len(reply.Intents))
	for _, intent := range reply.Intents {
		calls = append(calls, types.WireFunctionCall{Name: intent.Name, Args: intent.Args})
	}

	serverLog.Debugf("Chat reply with %d function calls", len(calls))
	return c.JSON(types.ChatResponse{
		Text:          reply.ModelText,
		FunctionCalls: calls,
	})
}

// errorMessage renders a loop failure for the client. A missing key keeps
// its configuration hint.
func errorMessage(err error) string {
	var missing *config.MissingAPIKeyError
	if errors.As(err, &missing) {
		return missing.Error()
	}
	serverLog.Errorf("Chat request failed: %v", err)
	return fmt.Sprintf("Failed to process chat request: %v", err)
}

// turnsFromWire converts request history to turns.
func turnsFromWire(history []types.WireMessage) ([]types.ConversationTurn, error) {
	turns := make([]types.ConversationTurn, 0, len(history))
	for i, msg := range history {
		role, ok := types.RoleFromWire(msg.Role)
		if !ok {
			return nil, fmt.Errorf("history[%d]: unknown role %q", i, msg.Role)
		}
		turns = append(turns, types.ConversationTurn{Role: role, Text: msg.Text()})
	}
	return turns, nil
}
