package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"quill/internal/config"
	"quill/internal/diagnostic"
	"quill/internal/diskcache"
	"quill/internal/editor"
	"quill/internal/job"
	"quill/internal/lsp"
	"quill/internal/pull"
	"quill/internal/watch"
)

var runCmd = &cobra.Command{
	Use:   "run [files...]",
	Short: "Run the diagnostics engine over the given files",
	Long: `Run launches the configured language servers, opens the given files,
and continuously pulls and prints their diagnostics until interrupted.`,
	RunE: runEngine,
}

func init() {
	runCmd.Flags().String("config", "", "path to quill.toml (defaults to <workspace>/quill.toml)")
}

func runEngine(cmd *cobra.Command, args []string) error {
	workspace, err := cmd.Flags().GetString("workspace")
	if err != nil {
		return err
	}
	root, err := filepath.Abs(workspace)
	if err != nil {
		return err
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	if configPath == "" {
		configPath = filepath.Join(root, config.FileName)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if len(cfg.Servers) == 0 {
		return fmt.Errorf("no language servers configured in %s", configPath)
	}

	registry := lsp.NewRegistry()
	ed := editor.New(registry)
	queue := job.NewQueue(ed)
	engine := pull.NewEngine(queue, pull.Config{
		DebounceDelay: cfg.Editor.DebounceDelay(),
		SweepDelay:    cfg.Editor.SweepDelay(),
		RetryDelay:    cfg.Editor.RetryDelay(),
	})
	engine.RegisterHooks(ed.Events())

	if dbPath, err := config.CacheDBPath(root); err != nil {
		log.Printf("diagnostics cache unavailable: %v", err)
	} else if cache, err := diskcache.Open(dbPath); err != nil {
		log.Printf("failed to open diagnostics cache: %v", err)
	} else {
		engine.UseCache(cache)
		defer cache.Close()
	}

	go queue.Run()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var view *editor.View
	queue.DispatchWait(func(ed *editor.Editor) {
		view = ed.NewView()
	})
	go printDiagnostics(queue, view)

	// Launch every configured server concurrently; one failed handshake
	// aborts the run.
	var mu sync.Mutex
	clients := make(map[string]*lsp.Client)
	var group errgroup.Group
	for _, sc := range cfg.Servers {
		sc := sc
		group.Go(func() error {
			client, err := launchServer(ctx, queue, registry, root, sc)
			if err != nil {
				return fmt.Errorf("failed to start %s: %w", sc.Name, err)
			}
			mu.Lock()
			clients[sc.Name] = client
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	for _, arg := range args {
		if err := openFile(ctx, queue, cfg, clients, arg); err != nil {
			return err
		}
	}

	watcher, err := watch.New(func(string) {
		engine.TriggerSweep()
	})
	if err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.AddRecursive(root); err != nil {
		log.Printf("failed to watch workspace: %v", err)
	}

	log.Printf("quill running in %s with %d server(s)", root, len(clients))
	<-ctx.Done()

	log.Println("shutting down")
	for _, client := range clients {
		if err := client.Shutdown(context.Background()); err != nil {
			log.Printf("shutdown failed: %v", err)
		}
	}
	queue.Close()
	<-queue.Done()
	return nil
}

// launchServer spawns one language server process, performs the LSP
// handshake, and registers the ready connection with the editor.
func launchServer(ctx context.Context, queue *job.Queue, registry *lsp.Registry, root string, sc config.ServerConfig) (*lsp.Client, error) {
	proc := exec.CommandContext(ctx, sc.Command, sc.Args...)
	proc.Dir = root
	proc.Stderr = os.Stderr

	stdin, err := proc.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := proc.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := proc.Start(); err != nil {
		return nil, err
	}

	id := registry.AllocID()
	client := lsp.NewClient(ctx, id, sc.Name, lsp.NewClientIO(stdout, stdin))
	if err := client.Initialize(ctx, "file://"+root); err != nil {
		_ = proc.Process.Kill()
		return nil, err
	}

	queue.DispatchWait(func(ed *editor.Editor) {
		ed.ServerInitialized(client)
	})

	go func() {
		<-client.DisconnectNotify()
		queue.Dispatch(func(ed *editor.Editor) {
			ed.ServerExited(id)
		})
	}()
	go func() {
		if err := proc.Wait(); err != nil {
			log.Printf("%s exited: %v", sc.Name, err)
		}
	}()

	return client, nil
}

// openFile opens one file in the editor and announces it to the servers
// claiming its language.
func openFile(ctx context.Context, queue *job.Queue, cfg config.Config, clients map[string]*lsp.Client, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	content, err := os.ReadFile(abs)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	uri := "file://" + abs
	languageID := languageFromPath(abs)

	for _, sc := range cfg.ServersForLanguage(languageID) {
		client, ok := clients[sc.Name]
		if !ok {
			continue
		}
		if err := client.DidOpen(ctx, uri, languageID, string(content), 1); err != nil {
			log.Printf("didOpen to %s failed: %v", sc.Name, err)
		}
	}

	queue.DispatchWait(func(ed *editor.Editor) {
		ed.OpenDocument(uri, languageID, string(content))
	})
	return nil
}

// printDiagnostics renders the merged findings whenever a view reports a
// refresh.
func printDiagnostics(queue *job.Queue, view *editor.View) {
	for range view.Events {
		queue.DispatchWait(func(ed *editor.Editor) {
			for _, uri := range ed.Diagnostics().URIs() {
				for _, item := range ed.Diagnostics().Get(uri) {
					fmt.Printf("%s:%d:%d: %s: %s\n",
						strings.TrimPrefix(uri, "file://"),
						item.Range.Start.Line+1, item.Range.Start.Character+1,
						severityLabel(item.EffectiveSeverity()), item.Message)
				}
			}
		})
	}
}

func severityLabel(severity diagnostic.Severity) string {
	switch severity {
	case diagnostic.SeverityError:
		return "error"
	case diagnostic.SeverityWarning:
		return "warning"
	case diagnostic.SeverityInfo:
		return "info"
	default:
		return "hint"
	}
}

var languageIDs = map[string]string{
	".go":   "go",
	".py":   "python",
	".rs":   "rust",
	".js":   "javascript",
	".ts":   "typescript",
	".tsx":  "typescriptreact",
	".jsx":  "javascriptreact",
	".c":    "c",
	".h":    "c",
	".cpp":  "cpp",
	".java": "java",
	".rb":   "ruby",
	".php":  "php",
	".json": "json",
	".yaml": "yaml",
	".yml":  "yaml",
	".toml": "toml",
	".md":   "markdown",
}

func languageFromPath(path string) string {
	if lang, ok := languageIDs[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return "plaintext"
}
