package main

import (
	"context"
	"fmt"
	"os"

	"github.com/entrhq/cobrowse/pkg/actions"
	"github.com/entrhq/cobrowse/pkg/agent"
	"github.com/entrhq/cobrowse/pkg/agent/tools"
	"github.com/entrhq/cobrowse/pkg/browser"
	"github.com/entrhq/cobrowse/pkg/config"
	"github.com/entrhq/cobrowse/pkg/dom"
	"github.com/entrhq/cobrowse/pkg/executor/cli"
	"github.com/entrhq/cobrowse/pkg/executor/headless"
	"github.com/entrhq/cobrowse/pkg/executor/tui"
	"github.com/entrhq/cobrowse/pkg/llm"
	"github.com/entrhq/cobrowse/pkg/llm/anthropic"
	"github.com/entrhq/cobrowse/pkg/llm/openai"
	"github.com/entrhq/cobrowse/pkg/llm/tokenizer"
	"github.com/entrhq/cobrowse/pkg/logging"
	"github.com/entrhq/cobrowse/pkg/portfolio"
	"github.com/entrhq/cobrowse/pkg/ratelimit"
	"github.com/entrhq/cobrowse/pkg/server"
	"github.com/entrhq/cobrowse/pkg/session"
	"github.com/entrhq/cobrowse/pkg/types"
)

var appLog *logging.Logger

func init() {
	appLog = logging.MustNew("cobrowse")
}

// loadConfig loads the configuration and applies flag overrides.
func loadConfig(flags *Flags) (*config.Config, error) {
	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		return nil, err
	}

	if flags.Mode != "" {
		cfg.Mode = flags.Mode
	}
	if flags.Provider != "" {
		cfg.Provider = flags.Provider
	}
	if flags.Model != "" {
		cfg.Model = flags.Model
	}
	if flags.URL != "" {
		cfg.Browser.URL = flags.URL
	}
	if flags.Portfolio != "" {
		cfg.PortfolioFile = flags.Portfolio
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logging.SetLevel(logging.ParseLevel(cfg.Logging.Level))
	return cfg, nil
}

// loadPortfolio returns the configured portfolio or the built-in one.
func loadPortfolio(cfg *config.Config) (*portfolio.Data, error) {
	if cfg.PortfolioFile == "" {
		return portfolio.Default(), nil
	}
	return portfolio.Load(cfg.PortfolioFile)
}

// buildProvider creates the model provider. A missing API key does not stop
// startup: every model call then fails with the key error, which the
// session shows as an error turn.
func buildProvider(cfg *config.Config) (llm.Provider, error) {
	if cfg.Provider == config.ProviderRemote {
		return server.NewClient(cfg.RemoteURL), nil
	}

	key, err := cfg.APIKey()
	if err != nil {
		appLog.Warnf("%v", err)
		return llm.Unavailable(cfg.Provider, err), nil
	}

	switch cfg.Provider {
	case config.ProviderAnthropic:
		var opts []anthropic.ProviderOption
		if cfg.Model != "" {
			opts = append(opts, anthropic.WithModel(cfg.Model))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
		}
		return anthropic.NewProvider(key, opts...)
	default:
		var opts []openai.ProviderOption
		if cfg.Model != "" {
			opts = append(opts, openai.WithModel(cfg.Model))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		return openai.NewProvider(key, opts...)
	}
}

// assistant is the wired loop behind one chat surface.
type assistant struct {
	orchestrator *agent.Orchestrator
	session      *session.Session
	registry     *tools.Registry

	// sink is set once the surface exists; events before that are dropped.
	sink types.EventSink
}

func (a *assistant) emit(event *types.AgentEvent) {
	if a.sink != nil {
		a.sink(event)
	}
}

// assistantOptions tunes newAssistant. The zero value is usable.
type assistantOptions struct {
	tokenizer *tokenizer.Tokenizer
	libOpts   []actions.Option

	// guard wraps the tool registry, e.g. with run constraints.
	guard func(agent.ToolExecutor) agent.ToolExecutor
}

// newAssistant wires the action library, tool catalog, orchestrator and
// session for page.
func newAssistant(cfg *config.Config, data *portfolio.Data, provider llm.Provider, page dom.Page, ao assistantOptions) (*assistant, error) {
	allowed, err := actions.CompileAllowList(cfg.Navigation.Allowed)
	if err != nil {
		return nil, err
	}

	opts := []actions.Option{
		actions.WithPortfolio(data),
		actions.WithContactSection(cfg.ContactSection),
		actions.WithAllowedPaths(allowed...),
	}
	lib := actions.NewLibrary(page, append(opts, ao.libOpts...)...)

	mode := agent.Mode(cfg.Mode)
	catalog := tools.ClientCatalog(lib)
	variant := portfolio.VariantClient
	if mode == agent.ModeServer {
		catalog = tools.ServerCatalog(lib)
		variant = portfolio.VariantServer
	}

	registry, err := tools.NewRegistry(catalog...)
	if err != nil {
		return nil, fmt.Errorf("failed to build tool registry: %w", err)
	}

	var executor agent.ToolExecutor = registry
	if ao.guard != nil {
		executor = ao.guard(registry)
	}

	a := &assistant{registry: registry}
	a.orchestrator = agent.New(provider, executor,
		agent.WithMode(mode),
		agent.WithMaxFollowUps(cfg.MaxFollowUps),
		agent.WithGate(ratelimit.NewGate(ratelimit.WithMinGap(cfg.MinCallGap))),
		agent.WithSystemInstruction(data.Instruction(variant)),
		agent.WithStateful(cfg.Stateful),
		agent.WithEventSink(a.emit),
	)
	a.session = session.New(a.orchestrator,
		session.WithGreeting(session.Greeting(mode, data.Profile.Name)),
		session.WithTokenizer(ao.tokenizer),
		session.WithHistoryBudget(cfg.History.MaxTokens),
		session.WithEventSink(a.emit),
	)
	return a, nil
}

// openPage returns the page the chat drives and a function releasing it.
func openPage(cfg *config.Config, pagePath string) (dom.Page, func(), error) {
	if pagePath != "" {
		raw, err := os.ReadFile(pagePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read page: %w", err)
		}
		page, err := dom.NewMemoryPage(string(raw))
		if err != nil {
			return nil, nil, err
		}
		return page, func() {}, nil
	}

	manager := browser.NewManager()
	if err := manager.Initialize(); err != nil {
		return nil, nil, err
	}
	page, err := manager.Open(browser.Options{
		URL:      cfg.Browser.URL,
		Headless: cfg.Browser.Headless,
	})
	if err != nil {
		_ = manager.Shutdown()
		return nil, nil, err
	}
	return page, func() {
		if err := manager.Shutdown(); err != nil {
			appLog.Warnf("Browser shutdown failed: %v", err)
		}
	}, nil
}

// runChat runs the interactive chat against a page.
func runChat(ctx context.Context, cfg *config.Config, flags *Flags) error {
	data, err := loadPortfolio(cfg)
	if err != nil {
		return err
	}
	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}

	page, release, err := openPage(cfg, flags.PagePath)
	if err != nil {
		return err
	}
	defer release()

	a, err := newAssistant(cfg, data, provider, page, assistantOptions{tokenizer: loadTokenizer()})
	if err != nil {
		return err
	}
	appLog.Infof("Session %s started (mode=%s provider=%s)", a.session.ID(), cfg.Mode, provider.Name())

	if flags.Plain {
		exec := cli.NewExecutor(a.session, cli.WithShowTools(flags.ShowTools))
		a.sink = exec.HandleEvent
		return exec.Run(ctx)
	}

	exec := tui.NewExecutor(a.session, fmt.Sprintf("%s · Co-Browse Assistant", data.Profile.Name))
	a.sink = exec.HandleEvent
	return exec.Run(ctx)
}

// runScript replays a scripted conversation against a page.
func runScript(ctx context.Context, cfg *config.Config, flags *Flags) error {
	if flags.Script == "" {
		return fmt.Errorf("the run command needs -script")
	}
	script, err := headless.LoadConfig(flags.Script)
	if err != nil {
		return err
	}
	constraints, err := headless.NewConstraintManager(script.Constraints)
	if err != nil {
		return err
	}

	data, err := loadPortfolio(cfg)
	if err != nil {
		return err
	}
	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}

	page, release, err := openPage(cfg, flags.PagePath)
	if err != nil {
		return err
	}
	defer release()

	a, err := newAssistant(cfg, data, provider, page, assistantOptions{
		tokenizer: loadTokenizer(),
		guard:     constraints.Wrap,
	})
	if err != nil {
		return err
	}

	exec, err := headless.NewExecutor(a.session, script, constraints)
	if err != nil {
		return err
	}
	a.sink = exec.HandleEvent
	return exec.Run(ctx)
}

// loadTokenizer returns the tiktoken counter, or nil for the estimate.
func loadTokenizer() *tokenizer.Tokenizer {
	tok, err := tokenizer.New()
	if err != nil {
		appLog.Warnf("Using approximate token counts: %v", err)
		return nil
	}
	return tok
}

// runServe serves the chat endpoint until ctx is canceled.
func runServe(ctx context.Context, cfg *config.Config) error {
	if cfg.Provider == config.ProviderRemote {
		return fmt.Errorf("serve needs a model provider, not %q", config.ProviderRemote)
	}

	data, err := loadPortfolio(cfg)
	if err != nil {
		return err
	}
	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		ListenAddr: cfg.ListenAddr,
		Portfolio:  data,
		Gate:       ratelimit.NewGate(ratelimit.WithMinGap(cfg.MinCallGap)),
	}, provider)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(); err != nil {
			appLog.Warnf("Server shutdown failed: %v", err)
		}
	}()

	fmt.Printf("Chat endpoint listening on %s%s\n", cfg.ListenAddr, server.ChatPath)
	return srv.Run()
}
