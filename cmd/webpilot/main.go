// Package main provides the webpilot runner: a stdin-driven executor that
// gives a controlling agent browser access through XML tool calls. Tool
// results are written to stdout; diagnostics go to the session log file.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/entrhq/webpilot/pkg/agent/tools"
	wbrowser "github.com/entrhq/webpilot/pkg/browser"
	appconfig "github.com/entrhq/webpilot/pkg/config"
	"github.com/entrhq/webpilot/pkg/logging"
	browsertools "github.com/entrhq/webpilot/pkg/tools/browser"
)

const version = "0.1.0"

// CLIConfig holds command-line configuration
type CLIConfig struct {
	HostURL     string
	ConfigFile  string
	TaskID      string
	Timeout     time.Duration
	ShowVersion bool
}

func main() {
	config := parseFlags()

	if config.ShowVersion {
		fmt.Printf("webpilot v%s\n", version)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nShutting down gracefully...")
		cancel()
	}()

	if err := run(ctx, config); err != nil {
		cancel()
		log.Printf("Execution failed: %v", err)
		os.Exit(1)
	}
	cancel()
}

// parseFlags parses command line flags
func parseFlags() *CLIConfig {
	config := &CLIConfig{}

	flag.StringVar(&config.HostURL, "host", "", "Browser host endpoint URL (overrides config file)")
	flag.StringVar(&config.ConfigFile, "config", "", "Path to configuration file (YAML)")
	flag.StringVar(&config.TaskID, "task-id", "", "Task identifier for page namespacing (overrides config file)")
	flag.DurationVar(&config.Timeout, "timeout", 0, "Overall execution timeout (0 means none)")
	flag.BoolVar(&config.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "webpilot - Browser control runner\n\n")
		fmt.Fprintf(os.Stderr, "Usage: webpilot [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Connect to a local browser host\n")
		fmt.Fprintf(os.Stderr, "  webpilot -host http://127.0.0.1:9224\n\n")
		fmt.Fprintf(os.Stderr, "  # Run with config file\n")
		fmt.Fprintf(os.Stderr, "  webpilot -config webpilot.yaml\n\n")
	}

	flag.Parse()
	return config
}

// run wires the connector, registry and tool set, then serves tool calls
// from stdin until EOF or cancellation.
func run(ctx context.Context, cliConfig *CLIConfig) error {
	execConfig, err := loadConfig(cliConfig)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if validationErr := execConfig.Validate(); validationErr != nil {
		return fmt.Errorf("invalid configuration: %w", validationErr)
	}

	logger, err := logging.NewLogger("webpilot")
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()
	logger.SetLevel(execConfig.Logging.Verbosity)

	matcher, err := execConfig.Navigation.Matcher()
	if err != nil {
		return fmt.Errorf("invalid navigation constraints: %w", err)
	}

	connector := wbrowser.NewConnector(execConfig.Host.URL, logger)
	connector.SetConnectTimeout(execConfig.Host.ConnectTimeout)
	defer func() {
		if closeErr := connector.Close(); closeErr != nil {
			logger.Warnf("connector close failed: %v", closeErr)
		}
	}()

	registry := wbrowser.NewRegistry(connector, execConfig.Host.URL, execConfig.Task.ID, logger)
	defer registry.CloseAll()

	box := browsertools.NewToolbox(registry, logger)
	box.AllowNavigate = matcher.Allow

	toolSet := browsertools.NewToolRegistry(box).RegisterTools()
	byName := make(map[string]tools.Tool, len(toolSet))
	for _, tool := range toolSet {
		byName[tool.Name()] = tool
	}

	if cliConfig.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cliConfig.Timeout)
		defer cancel()
	}

	logger.Debugf("serving %d tools for task %s against %s",
		len(toolSet), execConfig.Task.ID, execConfig.Host.URL)

	return serve(ctx, byName, logger)
}

// serve reads tool calls from stdin and writes results to stdout. Input is
// accumulated until a complete <tool>...</tool> element is present, so calls
// may span lines.
func serve(ctx context.Context, byName map[string]tools.Tool, logger *logging.Logger) error {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var pending strings.Builder
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		pending.WriteString(scanner.Text())
		pending.WriteString("\n")

		text := pending.String()
		if !tools.HasToolCall(text) {
			continue
		}

		call, remaining, err := tools.ParseToolCall(text)
		pending.Reset()
		pending.WriteString(remaining)
		if err != nil {
			writeResult(os.Stdout, nil, fmt.Errorf("malformed tool call: %w", err))
			continue
		}

		res, err := dispatch(ctx, byName, call, logger)
		writeResult(os.Stdout, res, err)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stdin read failed: %w", err)
	}
	return nil
}

// dispatch executes one parsed tool call.
func dispatch(ctx context.Context, byName map[string]tools.Tool, call *tools.ToolCall, logger *logging.Logger) (*tools.ToolResult, error) {
	tool, ok := byName[call.ToolName]
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", call.ToolName)
	}

	logger.Debugf("executing tool %s", call.ToolName)
	started := time.Now()
	output, metadata, err := tool.Execute(ctx, call.GetArgumentsXML())
	logger.Debugf("tool %s finished in %v (err=%v)", call.ToolName, time.Since(started), err)
	if err != nil {
		return nil, err
	}
	return &tools.ToolResult{Output: output, Metadata: metadata}, nil
}

// writeResult emits one framed tool result. Errors become result text so the
// calling agent always receives something actionable; metadata payloads such
// as screenshot image data follow the text in their own frame.
func writeResult(w io.Writer, res *tools.ToolResult, err error) {
	if err != nil {
		fmt.Fprintf(w, "<tool_result>\nError: %v\n</tool_result>\n", err)
		return
	}
	fmt.Fprintf(w, "<tool_result>\n%s\n</tool_result>\n", res.Output)
	if len(res.Metadata) > 0 {
		body, merr := json.Marshal(res.Metadata)
		if merr != nil {
			return
		}
		fmt.Fprintf(w, "<tool_metadata>\n%s\n</tool_metadata>\n", body)
	}
}

// loadConfig loads execution configuration from file or CLI arguments
func loadConfig(cliConfig *CLIConfig) (*appconfig.Config, error) {
	config := appconfig.DefaultConfig()
	if cliConfig.ConfigFile != "" {
		loaded, err := appconfig.Load(cliConfig.ConfigFile)
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	// CLI args override config file values
	if cliConfig.HostURL != "" {
		config.Host.URL = cliConfig.HostURL
	}
	if cliConfig.TaskID != "" {
		config.Task.ID = cliConfig.TaskID
	}

	return config, nil
}
