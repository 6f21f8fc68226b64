package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/volleyhq/volley/packages/core/config"
	"github.com/volleyhq/volley/packages/core/parser"
	"github.com/volleyhq/volley/packages/core/runner"
	"github.com/volleyhq/volley/packages/history"
	"github.com/volleyhq/volley/packages/http"
	"github.com/volleyhq/volley/packages/log"
	"github.com/volleyhq/volley/packages/metrics"
	"github.com/volleyhq/volley/packages/output"
)

var runCmd = &cobra.Command{
	Use:   "run <file|directory>...",
	Short: "Run entries from volley files",
	Long: `Run HTTP tests defined in .volley or .http files.

Examples:
  volley run api.volley
  volley run api.volley --env staging
  volley run ./tests/ --output junit --output-file report.xml
  volley run api.volley --repeat 100 --rate 10
  volley run api.volley --watch`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCommand,
}

// WatchDebounceDelay is the debounce delay for file watch events.
const WatchDebounceDelay = 300 * time.Millisecond

var (
	envFlag        string
	variableFlags  []string
	varsFileFlag   string
	configFlag     string
	outputFlag     string
	outputFileFlag string
	repeatFlag     int
	rateFlag       float64
	watchFlag      bool
	failFastFlag   bool
	insecureFlag   bool
	verboseFlag    bool
	noColorFlag    bool
	noHistoryFlag  bool
)

func init() {
	runCmd.Flags().StringVarP(&envFlag, "env", "e", getEnvString("VOLLEY_ENV", ""), "Environment from the config to load variables from (env: VOLLEY_ENV)")
	runCmd.Flags().StringArrayVar(&variableFlags, "variable", nil, "Define a variable as name=value (repeatable)")
	runCmd.Flags().StringVar(&varsFileFlag, "variables-file", getEnvString("VOLLEY_VARIABLES_FILE", ""), "File with one name=value variable per line (env: VOLLEY_VARIABLES_FILE)")
	runCmd.Flags().StringVar(&configFlag, "config", getEnvString("VOLLEY_CONFIG", ""), "Path to config file (env: VOLLEY_CONFIG)")
	runCmd.Flags().StringVarP(&outputFlag, "output", "o", getEnvString("VOLLEY_OUTPUT", "console"), "Output format: console, json, junit, tap (env: VOLLEY_OUTPUT)")
	runCmd.Flags().StringVar(&outputFileFlag, "output-file", "", "Write the report to a file (default: stdout)")
	runCmd.Flags().IntVar(&repeatFlag, "repeat", 0, "Run the files n times (0 uses the config default)")
	runCmd.Flags().Float64Var(&rateFlag, "rate", 0, "Cap repeat iterations per second (0 = no limit)")
	runCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch files for changes and re-run")
	runCmd.Flags().BoolVar(&failFastFlag, "fail-fast", getEnvBool("VOLLEY_FAIL_FAST", false), "Stop at the first failing entry (env: VOLLEY_FAIL_FAST)")
	runCmd.Flags().BoolVarP(&insecureFlag, "insecure", "k", getEnvBool("VOLLEY_INSECURE", false), "Disable TLS certificate verification (env: VOLLEY_INSECURE)")
	runCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", getEnvBool("VOLLEY_VERBOSE", false), "Log requests, cookies and captures to stderr (env: VOLLEY_VERBOSE)")
	runCmd.Flags().BoolVar(&noColorFlag, "no-color", getEnvBool("VOLLEY_NO_COLOR", false), "Disable colored output (env: VOLLEY_NO_COLOR)")
	runCmd.Flags().BoolVar(&noHistoryFlag, "no-history", false, "Do not record this run in the history store")
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func runCommand(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return exit(ExitUsageError, "%v", err)
	}
	if len(files) == 0 {
		return exit(ExitUsageError, "no .volley or .http files found")
	}

	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		return exit(ExitConfigError, "%v", err)
	}

	vars, err := cfg.Environment(envFlag)
	if err != nil {
		return exit(ExitConfigError, "%v", err)
	}
	if varsFileFlag != "" {
		fileVars, err := config.LoadVariablesFile(varsFileFlag)
		if err != nil {
			return exit(ExitConfigError, "%v", err)
		}
		for k, v := range fileVars {
			vars[k] = v
		}
	}
	for _, def := range variableFlags {
		name, value, err := config.ParseVariable(def)
		if err != nil {
			return exit(ExitUsageError, "%v", err)
		}
		vars[name] = value
	}

	if noColorFlag {
		color.NoColor = true
	}

	var outWriter io.Writer
	if outputFileFlag != "" {
		f, err := os.Create(outputFileFlag)
		if err != nil {
			return exit(ExitConfigError, "cannot create output file: %v", err)
		}
		defer f.Close()
		outWriter = f
	}

	formatter, err := newFormatter(outputFlag, outWriter)
	if err != nil {
		return exit(ExitUsageError, "%v", err)
	}
	formatter.FormatHeader(version)

	logger := log.NewConsole(verboseFlag)

	client := http.NewClient(
		http.WithTimeout(cfg.Defaults.GetTimeout()),
		http.WithFollowRedirects(cfg.Defaults.GetLocation()),
		http.WithMaxRedirects(cfg.Defaults.GetMaxRedirect()),
		http.WithInsecure(insecureFlag || cfg.Defaults.GetInsecure()),
	)

	var store *history.Store
	if cfg.History.Path != "" && !noHistoryFlag {
		store, err = history.Open(cfg.History.Path)
		if err != nil {
			return exit(ExitConfigError, "%v", err)
		}
		defer store.Close()
	}

	repeat := repeatFlag
	if repeat <= 0 {
		repeat = cfg.Defaults.GetRepeat()
	}

	var limiter *rate.Limiter
	if rateFlag > 0 {
		limiter = rate.NewLimiter(rate.Limit(rateFlag), 1)
	}

	collector := metrics.NewCollector()
	ctx := cmd.Context()

	runAll := func() int {
		exitCode := ExitSuccess
		raise := func(code int) {
			if severity(code) > severity(exitCode) {
				exitCode = code
			}
		}

		for i := 0; i < repeat; i++ {
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					return exitCode
				}
			}
			for _, file := range files {
				f, err := parser.ParseFile(file)
				if err != nil {
					formatter.FormatError(err)
					raise(ExitParseError)
					if failFastFlag {
						return exitCode
					}
					continue
				}

				opts := &runner.Options{Variables: cloneVars(vars), FailFast: failFastFlag}
				result := runner.RunFile(ctx, f, client, opts, logger)
				formatter.FormatResult(result)

				for _, e := range result.Entries {
					if e.Skipped {
						continue
					}
					if e.Response != nil {
						collector.Record(e.Elapsed)
					}
					for _, entryErr := range e.Errors {
						if entryErr.Kind == runner.ErrorHTTPConnection {
							raise(ExitNetworkError)
						}
					}
				}

				if store != nil {
					if _, err := store.Record(ctx, result); err != nil {
						logger.Warn("could not record run history: %v", err)
					}
				}

				if result.Failed > 0 {
					raise(ExitTestFailure)
					if failFastFlag {
						return exitCode
					}
				}
			}
		}
		return exitCode
	}

	finish := func(code int, duration time.Duration) error {
		if flushable, ok := formatter.(output.Flushable); ok {
			if err := flushable.Flush(duration); err != nil {
				return exit(ExitConfigError, "error writing output: %v", err)
			}
		}
		if repeat > 1 {
			fmt.Fprintf(cmd.OutOrStdout(), "\nLatency: %s\n", collector.Snapshot())
		}
		return nil
	}

	start := time.Now()
	code := runAll()
	if err := finish(code, time.Since(start)); err != nil {
		return err
	}

	if !watchFlag {
		if code != ExitSuccess {
			return exitSilent(code)
		}
		return nil
	}

	return watchAndRerun(cmd, files, args, func() {
		// Accumulating formatters need fresh state for each re-run.
		formatter, _ = newFormatter(outputFlag, outWriter)
		collector = metrics.NewCollector()
		start := time.Now()
		code := runAll()
		_ = finish(code, time.Since(start))
	})
}

// severity orders exit codes for aggregation across files: a parse
// error outranks a network error, which outranks entry failures.
func severity(code int) int {
	switch code {
	case ExitParseError:
		return 3
	case ExitNetworkError:
		return 2
	case ExitTestFailure:
		return 1
	default:
		return 0
	}
}

func cloneVars(vars map[string]any) map[string]any {
	clone := make(map[string]any, len(vars))
	for k, v := range vars {
		clone[k] = v
	}
	return clone
}

func newFormatter(format string, w io.Writer) (output.Formatter, error) {
	switch strings.ToLower(format) {
	case "json":
		opts := []output.JSONOption{}
		if w != nil {
			opts = append(opts, output.JSONWithWriter(w))
		}
		return output.NewJSONFormatter(opts...), nil
	case "junit":
		opts := []output.JUnitOption{}
		if w != nil {
			opts = append(opts, output.JUnitWithWriter(w))
		}
		return output.NewJUnitFormatter(opts...), nil
	case "tap":
		opts := []output.TAPOption{}
		if w != nil {
			opts = append(opts, output.TAPWithWriter(w))
		}
		return output.NewTAPFormatter(opts...), nil
	case "console":
		opts := []output.ConsoleOption{
			output.WithVerbose(verboseFlag),
			output.WithNoColor(noColorFlag),
		}
		if w != nil {
			opts = append(opts, output.WithWriter(w))
		}
		return output.NewConsoleFormatter(opts...), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (use console, json, junit or tap)", format)
	}
}

// watchAndRerun blocks watching the run files' directories, invoking
// rerun after each debounced write to a volley file.
func watchAndRerun(cmd *cobra.Command, files, args []string, rerun func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return exit(ExitConfigError, "failed to create file watcher: %v", err)
	}
	defer watcher.Close()

	watchedDirs := make(map[string]bool)
	addDir := func(dir string) {
		if !watchedDirs[dir] {
			if err := watcher.Add(dir); err == nil {
				watchedDirs[dir] = true
			}
		}
	}
	for _, file := range files {
		addDir(filepath.Dir(file))
	}
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err == nil && info.IsDir() {
			_ = filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if info.IsDir() {
					addDir(path)
				}
				return nil
			})
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n\n")

	var debounceTimer *time.Timer

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) && isVolleyFile(event.Name) {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
					fmt.Fprintf(cmd.OutOrStdout(), "\nFile changed: %s\nRe-running...\n", event.Name)
					rerun()
					fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n")
				})
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watcher error: %v\n", err)
		}
	}
}

func collectFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if info.IsDir() {
			err := filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && isVolleyFile(path) {
					files = append(files, path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else {
			files = append(files, arg)
		}
	}

	return files, nil
}

func isVolleyFile(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".volley" || ext == ".http"
}
