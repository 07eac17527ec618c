// Command opennova is an interactive desktop automation agent: it reads
// natural-language commands, plans them with a language model, and executes
// the resulting action plans against the local desktop.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/term"

	"github.com/tarunerror/openNova/internal/llmimpl"
	"github.com/tarunerror/openNova/pkg/actions"
	"github.com/tarunerror/openNova/pkg/config"
	"github.com/tarunerror/openNova/pkg/exec"
	"github.com/tarunerror/openNova/pkg/input"
	"github.com/tarunerror/openNova/pkg/logx"
	"github.com/tarunerror/openNova/pkg/memory"
	"github.com/tarunerror/openNova/pkg/metrics"
	"github.com/tarunerror/openNova/pkg/planner"
	"github.com/tarunerror/openNova/pkg/router"
	"github.com/tarunerror/openNova/pkg/scheduler"
	"github.com/tarunerror/openNova/pkg/skills"
	"github.com/tarunerror/openNova/pkg/vision"
	"github.com/tarunerror/openNova/pkg/watcher"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to config file (default ~/.opennova/config.json)")
		metricsAddr = flag.String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090); empty disables")
	)
	flag.Parse()

	logger := logx.NewLogger("opennova")

	if err := run(*configPath, *metricsAddr, logger); err != nil {
		logger.Error("fatal: %v", err)
		os.Exit(1)
	}
}

func run(configPath, metricsAddr string, logger *logx.Logger) error {
	if configPath == "" {
		var err error
		configPath, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Metrics are optional; the recorder is nil-safe everywhere.
	var recorder *metrics.Recorder
	if metricsAddr != "" {
		reg := prometheus.NewRegistry()
		recorder = metrics.NewRecorder(reg)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn("metrics server: %v", err)
			}
		}()
		defer srv.Close()
		logger.Info("metrics on %s/metrics", metricsAddr)
	}

	client, err := llmimpl.NewClient(ctx, &cfg, logger)
	if err != nil {
		return fmt.Errorf("create model client: %w", err)
	}
	logger.Info("using %s model %s", cfg.LLM.Provider, client.GetModelName())

	runner := exec.NewLocalRunner(cfg.Safety.BlockedCommands)
	sim := input.NewShellSimulator(runner, logx.NewLogger("input"))
	locator := vision.NewChain(nil, nil)

	dispatcher := actions.NewDispatcher(sim, runner, locator, logx.NewLogger("dispatcher"))
	executor := actions.NewPlanExecutor(dispatcher, logx.NewLogger("executor"), recorder)
	executor.SetStepDelay(time.Duration(cfg.Executor.StepDelayMS) * time.Millisecond)

	synth := planner.NewSynthesizer(client, logx.NewLogger("planner"))
	gate := router.NewConfirmationGate(cfg.Safety.ConfirmationsRequired, logx.NewLogger("gate"))

	var store *memory.Store
	if cfg.Memory.Enabled {
		dbPath := cfg.Memory.DBPath
		if dbPath == "" {
			dbPath = filepath.Join(filepath.Dir(configPath), "memory.db")
		}
		store, err = memory.Open(dbPath, logx.NewLogger("memory"))
		if err != nil {
			logger.Warn("memory disabled: %v", err)
		} else {
			defer store.Close()
		}
	}

	sched := scheduler.New(logx.NewLogger("scheduler"))
	defer sched.Stop()

	manifest, err := skills.LoadManifest(cfg.Skills.ManifestPath)
	if err != nil {
		logger.Warn("skill manifest ignored: %v", err)
	}
	registry := skills.NewRegistry(logx.NewLogger("skills"))
	skills.RegisterBuiltins(registry, manifest, skills.BuiltinDeps{
		Memory:    store,
		Scheduler: sched,
		Notify:    func(msg string) { fmt.Println("\n" + msg) },
	})

	if cfg.Watcher.Enabled && cfg.Watcher.Path != "" {
		w, err := watcher.New(cfg.Watcher.Path, func(ev watcher.Event) {
			logger.Info("file %s: %s", strings.ToLower(ev.Op), ev.Path)
		}, logx.NewLogger("watcher"))
		if err != nil {
			logger.Warn("watcher disabled: %v", err)
		} else {
			defer w.Close()
		}
	}

	rt := router.NewRouter(gate, registry, synth, executor,
		planner.NewKeywordPolicy(), store, recorder, logx.NewLogger("router"))

	return commandLoop(ctx, rt, logger)
}

// commandLoop reads commands from stdin until EOF or interrupt. The prompt
// is only printed when stdin is a terminal.
func commandLoop(ctx context.Context, rt *router.Router, logger *logx.Logger) error {
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if interactive {
		fmt.Println("openNova ready. Type a command, or \"exit\" to quit.")
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lines := make(chan string)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		if interactive {
			fmt.Print("> ")
		}

		select {
		case <-ctx.Done():
			fmt.Println()
			logger.Info("shutting down")
			return nil
		case line, ok := <-lines:
			if !ok {
				logger.Info("input closed, shutting down")
				return scanner.Err()
			}

			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			if trimmed == "exit" || trimmed == "quit" {
				return nil
			}

			resp := rt.Process(ctx, trimmed)
			printResponse(resp)
		}
	}
}

// printResponse renders a router response for the terminal.
func printResponse(resp router.Response) {
	fmt.Println(resp.Message)

	if resp.Result != nil {
		for i, step := range resp.Result.StepOutcomes {
			marker := "ok"
			if !step.Succeeded {
				marker = "FAILED"
			}
			fmt.Printf("  step %d: %s (%s)\n", i+1, step.Message, marker)
		}
	}
}
