// Package zephyr wires the assistant's components into a running
// application: credential store, capability clients, voice session and
// web dashboard.
package zephyr

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"github.com/zephyrlabs/zephyr/internal/config"
	"github.com/zephyrlabs/zephyr/internal/log"
	"github.com/zephyrlabs/zephyr/pkg/assistant"
	"github.com/zephyrlabs/zephyr/pkg/credstore"
	"github.com/zephyrlabs/zephyr/pkg/gcal"
	"github.com/zephyrlabs/zephyr/pkg/gmail"
	"github.com/zephyrlabs/zephyr/pkg/googleauth"
	"github.com/zephyrlabs/zephyr/pkg/gtasks"
	"github.com/zephyrlabs/zephyr/pkg/realtime"
	"github.com/zephyrlabs/zephyr/pkg/web"
)

// App is the main application orchestrator.
type App struct {
	config Config

	store     credstore.Store
	assistant *assistant.Assistant

	webServer *web.Server
	rt        *realtime.Client
}

// New validates the configuration and creates the application.
func New(cfg Config) (*App, error) {
	if cfg.CredentialDB == "" {
		return nil, fmt.Errorf("credential store path is required")
	}
	if cfg.Identity == "" {
		return nil, fmt.Errorf("identity is required")
	}
	return &App{config: cfg}, nil
}

// Init opens the credential store and builds the component graph.
func (a *App) Init() error {
	level := "info"
	if a.config.Debug {
		level = "debug"
	}
	log.Init(level)

	store, err := credstore.NewSQLiteStore(a.config.CredentialDB)
	if err != nil {
		return fmt.Errorf("opening credential store: %w", err)
	}
	a.store = store

	oauthConf, err := googleauth.NewConfig(
		a.config.GoogleClientID,
		a.config.GoogleClientSecret,
		a.config.RedirectURL,
	)
	if err != nil {
		log.Warn("google consent flow disabled", "reason", err)
		oauthConf = nil
	}

	tz := config.Timezone()

	resolver := googleauth.NewResolver(store, oauthConf)

	a.assistant, err = assistant.New(assistant.Config{
		Store:    store,
		Resolver: resolver,
		Calendar: gcal.New(tz),
		Mail:     gmail.New(),
		Tasks:    gtasks.New(),
	})
	if err != nil {
		return fmt.Errorf("building assistant: %w", err)
	}

	a.webServer = a.buildWebServer(oauthConf)

	log.Info("zephyr initialized",
		"identity", a.config.Identity,
		"timezone", tz.String(),
		"consent_flow", oauthConf != nil,
	)
	return nil
}

// Run serves until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := a.webServer.Start(); err != nil {
			errCh <- fmt.Errorf("web server: %w", err)
		}
	}()
	log.Info("web dashboard listening", "port", a.config.Port)

	if a.config.OpenAIKey != "" {
		if err := a.startRealtime(); err != nil {
			return err
		}
	} else {
		log.Warn("OPENAI_API_KEY not set, voice session disabled")
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.webServer.Shutdown(shutdownCtx)
}

// Shutdown releases resources held across Run.
func (a *App) Shutdown() {
	if a.rt != nil {
		a.rt.Close()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			log.Error("closing credential store", "err", err)
		}
	}
}

// buildWebServer wires the dashboard and consent flow to the assistant.
func (a *App) buildWebServer(oauthConf *oauth2.Config) *web.Server {
	identity := a.config.Identity

	var tools []web.ToolInfo
	for _, t := range a.assistant.Tools(identity) {
		tools = append(tools, web.ToolInfo{Name: t.Name, Description: t.Description})
	}

	var flow *web.AuthFlow
	if oauthConf != nil {
		flow = web.NewAuthFlow(oauthConf, identity)
	}

	srv := web.NewServer(web.Config{
		Port:  a.config.Port,
		Tools: tools,
		OnToolTrigger: func(name string, args map[string]any) string {
			return a.assistant.Dispatch(identity, name, args)
		},
		Auth: flow,
	})

	if flow != nil {
		flow.OnCredentials = func(id string, blob []byte) error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := a.assistant.UpdateCredentials(ctx, id, blob); err != nil {
				return err
			}
			srv.AddLog("auth", "Google credentials stored for "+id)
			srv.UpdateState(func(st *web.State) {
				st.Authenticated = true
				st.Identity = id
			})
			return nil
		}
	}

	srv.UpdateState(func(st *web.State) { st.Identity = identity })
	return srv
}

// startRealtime connects the voice session and registers the tools.
func (a *App) startRealtime() error {
	identity := a.config.Identity
	rt := realtime.NewClient(a.config.OpenAIKey)

	for _, t := range a.assistant.Tools(identity) {
		rt.RegisterTool(realtime.Tool{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.Parameters,
			Handler:     t.Handler,
		})
	}

	rt.OnSessionCreated = func() {
		log.Info("voice session ready")
		a.webServer.UpdateState(func(st *web.State) { st.SessionConnected = true })
	}
	rt.OnTranscript = func(text string, isFinal bool) {
		if isFinal {
			a.webServer.AddConversation("user", text)
			a.webServer.UpdateState(func(st *web.State) { st.LastUserMessage = text })
		}
	}
	rt.OnToolResult = func(name, result string) {
		a.webServer.AddConversation("tool", name+": "+result)
		a.webServer.AddLog("tool", name+" → "+result)
	}
	rt.OnError = func(err error) {
		log.Error("voice session error", "err", err)
		a.webServer.AddLog("error", err.Error())
		a.webServer.UpdateState(func(st *web.State) { st.SessionConnected = false })
	}

	if err := rt.Connect(); err != nil {
		return fmt.Errorf("connecting voice session: %w", err)
	}
	if err := rt.ConfigureSession(assistant.Instructions, a.config.Voice); err != nil {
		rt.Close()
		return fmt.Errorf("configuring voice session: %w", err)
	}

	a.rt = rt
	return nil
}
