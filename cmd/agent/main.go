package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/sp4rkv/vscord-custom-image/internal/command"
	"github.com/sp4rkv/vscord-custom-image/internal/indicator"
	"github.com/sp4rkv/vscord-custom-image/internal/instance"
	"github.com/sp4rkv/vscord-custom-image/internal/language"
	"github.com/sp4rkv/vscord-custom-image/internal/notify"
	"github.com/sp4rkv/vscord-custom-image/internal/output"
	"github.com/sp4rkv/vscord-custom-image/internal/presence"
	"github.com/sp4rkv/vscord-custom-image/internal/settings"
	"github.com/sp4rkv/vscord-custom-image/internal/statusbar"
	"github.com/sp4rkv/vscord-custom-image/internal/ui"
)

var Version = "dev"

// SECURITY: token format — exactly 64 hex chars (256-bit)
var tokenRegex = regexp.MustCompile(`^[0-9a-f]{64}$`)

// prompter is the UI implementation used for setup and fatal errors
var prompter ui.Prompter

func main() {
	var (
		dataDir     string
		gatewayURL  string
		token       string
		showVersion bool
		setup       bool
	)

	flag.StringVar(&dataDir, "data-dir", defaultDataDir(), "Data directory for config, token, and logs")
	flag.StringVar(&gatewayURL, "gateway", "wss://gateway.vscord.dev/ws/agent", "Presence gateway URL")
	flag.StringVar(&token, "token", "", "Gateway authentication token")
	flag.BoolVar(&showVersion, "version", false, "Show version")
	flag.BoolVar(&setup, "setup", false, "Run interactive token setup")
	flag.Parse()

	if showVersion {
		fmt.Printf("vscord-agent %s\n", Version)
		os.Exit(0)
	}

	prompter = ui.New()

	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		fatalWait(fmt.Sprintf("[agent] Cannot create data dir: %v", err))
	}

	output.Setup(dataDir)

	// The editor extension respawns the daemon freely; a second instance
	// just defers to the first.
	lock, err := instance.Acquire(dataDir)
	if err != nil {
		log.Printf("[agent] %v — exiting", err)
		os.Exit(0)
	}
	defer lock.Release()

	token = resolveToken(dataDir, token, setup)
	if token == "" {
		fatalWait("[agent] Token is required. Use -token, VSCORD_TOKEN env var, or -setup")
	}
	if !tokenRegex.MatchString(token) {
		fatalWait("[agent] Invalid token format. Token must be 64 hex characters.")
	}

	st, err := settings.Load(dataDir)
	if err != nil {
		fatalWait(fmt.Sprintf("[agent] Cannot load settings: %v", err))
	}
	st.Watch()

	// SECURITY: never log the token
	log.Printf("[agent] vscord-agent %s starting", Version)
	log.Printf("[agent] Gateway: %s", gatewayURL)
	log.Printf("[agent] Token: %s...%s (verified format)", token[:4], token[60:])

	host := statusbar.NewHost(Version)
	host.Start()
	defer host.Stop()

	// The host falls back to a random port when the default is busy; record
	// the bound port so the editor extension can discover the endpoint.
	if port := host.Port(); port != 0 {
		portFile := filepath.Join(dataDir, "port")
		if err := os.WriteFile(portFile, []byte(strconv.Itoa(port)), 0o644); err != nil {
			log.Printf("[agent] Could not write port file: %v", err)
		}
	}

	ctrl := indicator.New(st, host)
	defer ctrl.Dispose()

	// Live config edits re-render the indicator (and rebuild it when the
	// alignment changed).
	st.OnChange(ctrl.ReconcileFromConfig)

	dispatcher := command.NewDispatcher()
	notifier := notify.New(st, prompter, dispatcher, output.Reveal)
	client := presence.New(gatewayURL, token, Version, st, ctrl, notifier)

	dispatcher.Register(indicator.CommandReconnect, client.Reconnect)
	dispatcher.Register(indicator.CommandDisconnect, client.Disconnect)

	host.HandleFunc("/api/activity", handleActivity(client, st))
	host.HandleFunc("/api/command", handleCommand(dispatcher))

	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Println("[agent] Shutting down...")
		cancel()
	}()

	if err := client.Run(ctx); err != nil {
		fatalWait(fmt.Sprintf("[agent] Fatal: %v", err))
	}
}

// resolveToken returns the gateway token from, in order: the -token flag
// (persisting it for next time), the environment, the encrypted token store,
// or an interactive setup prompt.
func resolveToken(dataDir, flagToken string, forceSetup bool) string {
	if flagToken != "" {
		if err := presence.SaveToken(dataDir, flagToken); err != nil {
			log.Printf("[agent] Warning: could not save token: %v", err)
		}
		return flagToken
	}

	if env := os.Getenv("VSCORD_TOKEN"); env != "" {
		return env
	}

	stored, err := presence.LoadToken(dataDir)
	if err != nil {
		log.Printf("[agent] Warning: could not load stored token: %v", err)
	}
	if stored != "" && !forceSetup {
		return stored
	}

	return runSetup(dataDir)
}

// runSetup prompts for a token until a valid one is entered, then stores it
// machine-locked.
func runSetup(dataDir string) string {
	for {
		val, ok := prompter.Entry(
			"VSCord Agent Setup",
			"Paste your 64-character gateway token\n(from the VSCord dashboard → Agents → Tokens)",
		)
		if !ok {
			return ""
		}
		val = strings.TrimSpace(val)
		if !tokenRegex.MatchString(val) {
			prompter.Error("Invalid Token", "Token must be exactly 64 hex characters. Try again.")
			continue
		}
		if err := presence.SaveToken(dataDir, val); err != nil {
			prompter.Error("Save Failed", fmt.Sprintf("Could not save token: %v", err))
		}
		prompter.Notify("VSCord Agent", "Token saved. The agent will connect automatically.")
		return val
	}
}

// defaultDataDir returns the platform config directory for the agent,
// falling back to ./.vscord-agent if it cannot be determined.
func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", ".vscord-agent")
	}
	return filepath.Join(dir, "vscord-agent")
}

// activityRequest is what the editor extension POSTs when the active file
// changes.
type activityRequest struct {
	Workspace string `json:"workspace"`
	Filename  string `json:"filename"`
	Language  string `json:"language,omitempty"`
}

// handleActivity turns editor activity reports into presence frames. Icon
// resolution honors the user's custom filename-to-icon mappings.
func handleActivity(client *presence.Client, st *settings.Store) http.HandlerFunc {
	started := time.Now().Unix()

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST only", http.StatusMethodNotAllowed)
			return
		}

		var req activityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")

		// No filename means the editor went idle; drop the presence
		// instead of rendering an empty activity.
		if req.Filename == "" {
			if err := client.ClearActivity(); err != nil {
				log.Printf("[agent] Could not clear activity: %v", err)
				fmt.Fprint(w, `{"ok":false}`)
				return
			}
			fmt.Fprint(w, `{"ok":true}`)
			return
		}

		icon := language.IconFor(req.Filename, st.IconMappings())
		smallText := req.Language
		if smallText == "" {
			smallText = language.TitleCase(icon)
		}

		act := presence.Activity{
			Details:    "Editing " + filepath.Base(req.Filename),
			State:      "in " + req.Workspace,
			LargeImage: "editor",
			SmallImage: icon,
			SmallText:  smallText,
			StartedAt:  started,
		}

		if err := client.SetActivity(act); err != nil {
			log.Printf("[agent] Could not publish activity: %v", err)
			fmt.Fprint(w, `{"ok":false}`)
			return
		}
		fmt.Fprint(w, `{"ok":true}`)
	}
}

// handleCommand executes an indicator click forwarded by the editor: the
// rendered item names the command, the editor posts it back here.
func handleCommand(d *command.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST only", http.StatusMethodNotAllowed)
			return
		}

		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := d.Execute(req.Name); err != nil {
			log.Printf("[agent] %v", err)
			fmt.Fprint(w, `{"ok":false,"error":"unknown command"}`)
			return
		}
		fmt.Fprint(w, `{"ok":true}`)
	}
}

// fatalWait shows an error via GUI dialog or stderr, then exits.
func fatalWait(msg string) {
	log.Println(msg)
	if prompter != nil && ui.IsGuiAvailable() {
		prompter.Error("VSCord Agent Error", msg)
	} else {
		fmt.Fprintln(os.Stderr, msg)
	}
	os.Exit(1)
}
