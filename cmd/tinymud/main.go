// Command tinymud runs the TinyMUD telnet server: it loads the persisted
// world, wires the command dispatcher, and drives the GOAP tick loop.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	"github.com/Deeves/TinyMUD/commands"
	"github.com/Deeves/TinyMUD/internal/game"
)

// config mirrors the option table (§6.5): every field is settable by
// environment variable, so a container deployment needs no flags at all.
// Tick, save-debounce, message-length, rate-limit, AI timeout/response
// length, listen address, TLS, state path and log level also have cobra
// flags with the same defaults; the other fields are environment-only.
type config struct {
	TickSeconds  int     `env:"TICK_SECONDS" envDefault:"60"`
	TickEnable   bool    `env:"TICK_ENABLE" envDefault:"false"`
	APMax        int     `env:"AP_MAX" envDefault:"3"`
	NeedDrop     float64 `env:"NEED_DROP" envDefault:"1.0"`
	SocialDrop   float64 `env:"SOCIAL_DROP" envDefault:"0.5"`
	SocialRefill float64 `env:"SOCIAL_REFILL" envDefault:"10"`
	SocialSim    float64 `env:"SOCIAL_SIM_TICK" envDefault:"5"`
	SleepDrop    float64 `env:"SLEEP_DROP" envDefault:"0.75"`
	SleepRefill  float64 `env:"SLEEP_REFILL" envDefault:"10"`
	SleepTicks   int     `env:"SLEEP_TICKS" envDefault:"3"`
	NeedThreshold float64 `env:"NEED_THRESHOLD" envDefault:"50"`

	SaveDebounceMS int  `env:"SAVE_DEBOUNCE_MS" envDefault:"5000"`
	MaxMessageLen  int  `env:"MAX_MESSAGE_LEN" envDefault:"1000"`
	RateEnable     bool `env:"RATE_ENABLE" envDefault:"false"`

	AITimeoutSeconds    int    `env:"AI_TIMEOUT_SECONDS" envDefault:"30"`
	AIMaxResponseLength int    `env:"AI_MAX_RESPONSE_LENGTH" envDefault:"10000"`
	OpenAIAPIKey        string `env:"OPENAI_API_KEY"`
	OpenAIModel         string `env:"OPENAI_MODEL"`

	ListenAddr string `env:"LISTEN_ADDR" envDefault:":4000"`
	TLSEnable  bool   `env:"TLS_ENABLE" envDefault:"false"`
	CertFile   string `env:"TLS_CERT_FILE" envDefault:"data/tls/cert.pem"`
	KeyFile    string `env:"TLS_KEY_FILE" envDefault:"data/tls/key.pem"`

	StatePath string `env:"STATE_PATH" envDefault:"world.json"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`

	OtelExporterEnable bool `env:"OTEL_EXPORTER_ENABLE" envDefault:"false"`
}

func (c config) tickConfig() game.TickConfig {
	return game.TickConfig{
		APMax:         c.APMax,
		NeedDrop:      c.NeedDrop,
		SocialDrop:    c.SocialDrop,
		SocialRefill:  c.SocialRefill,
		SocialSimTick: c.SocialSim,
		SleepDrop:     c.SleepDrop,
		SleepRefill:   c.SleepRefill,
		SleepTicks:    c.SleepTicks,
		NeedThreshold: c.NeedThreshold,
	}
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	cfg := config{}
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, "parse environment:", err)
		os.Exit(1)
	}

	root := newRootCmd(&cfg)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(cfg *config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tinymud",
		Short: "TinyMUD telnet server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	flags := cmd.PersistentFlags()
	flags.IntVar(&cfg.TickSeconds, "tick-seconds", cfg.TickSeconds, "world heartbeat interval")
	flags.BoolVar(&cfg.TickEnable, "tick-enable", cfg.TickEnable, "master enable for the tick")
	flags.IntVar(&cfg.SaveDebounceMS, "save-debounce-ms", cfg.SaveDebounceMS, "persistence coalescing window")
	flags.IntVar(&cfg.MaxMessageLen, "max-message-len", cfg.MaxMessageLen, "reject client messages exceeding this length")
	flags.BoolVar(&cfg.RateEnable, "rate-enable", cfg.RateEnable, "master enable for rate limiting")
	flags.IntVar(&cfg.AITimeoutSeconds, "ai-timeout-seconds", cfg.AITimeoutSeconds, "adapter hard timeout")
	flags.IntVar(&cfg.AIMaxResponseLength, "ai-max-response-length", cfg.AIMaxResponseLength, "adapter truncation threshold")
	flags.StringVar(&cfg.ListenAddr, "listen-addr", cfg.ListenAddr, "transport listen address")
	flags.BoolVar(&cfg.TLSEnable, "tls-enable", cfg.TLSEnable, "wrap the listener in TLS with a self-signed cert")
	flags.StringVar(&cfg.StatePath, "state-path", cfg.StatePath, "persisted document path")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "structured logger verbosity")

	return cmd
}

func run(ctx context.Context, cfg *config) error {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}))

	world, err := game.LoadWorld(cfg.StatePath, log)
	if err != nil {
		return fmt.Errorf("load world: %w", err)
	}

	persist := game.NewPersistence(cfg.StatePath, time.Duration(cfg.SaveDebounceMS)*time.Millisecond, log)
	limiter := game.NewRateLimiter(cfg.RateEnable, 10, 10*time.Second)

	var adapter game.AIAdapter = game.DeterministicFallback{}
	if cfg.OpenAIAPIKey != "" {
		adapter = game.NewOpenAIAdapter(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}

	runCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	appEnv := &commands.Env{
		World:            world,
		Persist:          persist,
		Limiter:          limiter,
		Cfg:              cfg.tickConfig(),
		Adapter:          adapter,
		AIMaxResponseLen: cfg.AIMaxResponseLength,
		AITimeout:        time.Duration(cfg.AITimeoutSeconds) * time.Second,
		MaxMessageLen:    cfg.MaxMessageLen,
		Log:              log,
		Ctx:              runCtx,
	}

	if cfg.TickEnable {
		go runTickLoop(runCtx, appEnv, time.Duration(cfg.TickSeconds)*time.Second, log)
	}

	dispatch := func(sessionID game.EntityID, line string) bool {
		return commands.Dispatch(appEnv, sessionID, line)
	}
	onDisconnect := commands.NewDisconnectHandler(appEnv)

	serveErr := make(chan error, 1)
	go func() {
		if cfg.TLSEnable {
			serveErr <- game.ListenAndServeTLS(cfg.ListenAddr, cfg.CertFile, cfg.KeyFile, world, dispatch, onDisconnect)
			return
		}
		serveErr <- game.ListenAndServe(cfg.ListenAddr, world, dispatch, onDisconnect)
	}()

	select {
	case <-runCtx.Done():
		log.Info("shutting down")
		if err := persist.SaveNow(world); err != nil {
			log.Error("final save failed", "error", err)
		}
		return nil
	case err := <-serveErr:
		return err
	}
}

// runTickLoop drives the GOAP heartbeat (§4.H) until ctx is cancelled,
// broadcasting each NPC's emission lines to its room.
func runTickLoop(ctx context.Context, env *commands.Env, interval time.Duration, log *slog.Logger) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			env.World.Lock()
			emissions := game.RunTick(ctx, env.World, env.Cfg, env.Adapter, env.AIMaxResponseLen, env.AITimeout, log)
			for _, e := range emissions {
				for _, line := range e.Lines {
					env.World.BroadcastToRoom(e.RoomID, line, "")
				}
			}
			env.World.Unlock()
			if len(emissions) > 0 {
				env.Persist.SaveDebounced(env.World)
			}
		}
	}
}
