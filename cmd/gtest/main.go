// gtest runs the code generator over every test tree and compares its listing
// against the golden file recorded next to the input.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/xplshn/gpl0/internal/logger"
)

type Execution struct {
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr,omitempty"`
	ExitCode int           `json:"exitCode"`
	Duration time.Duration `json:"duration"`
	TimedOut bool          `json:"timed_out,omitempty"`
}

// Golden is the recorded outcome of compiling one tree. Stderr is not part of
// the comparison since diagnostics carry the absolute input path.
type Golden struct {
	Args     []string `json:"args,omitempty"`
	Stdout   string   `json:"stdout"`
	ExitCode int      `json:"exitCode"`
}

type FileTestResult struct {
	File    string     `json:"file"`
	Hash    string     `json:"hash"`
	Status  string     `json:"status"` // PASS, FAIL, SKIP, ERROR
	Message string     `json:"message,omitempty"`
	Diff    string     `json:"diff,omitempty"`
	Target  *Execution `json:"target,omitempty"`
}

type TestSuiteResults map[string]*FileTestResult

var (
	targetCompiler = flag.String("target-compiler", "./gpl0", "Path to the code generator to test.")
	targetArgs     = flag.String("target-args", "", "Extra arguments for the code generator (space-separated).")
	generateGolden = flag.String("generate-golden", "", "Generate golden files for the given tree(s) (space-separated globs).")
	testFiles      = flag.String("test-files", "tests/*.json", "Glob pattern(s) for trees to test (space-separated).")
	skipFiles      = flag.String("skip-files", "", "Files to skip (space-separated).")
	outputJSON     = flag.String("output", ".test_results.json", "Output file for the JSON test report.")
	goldenDir      = flag.String("dir", "", "Directory to store/read golden files (defaults to the tree's dir).")
	timeout        = flag.Duration("timeout", 5*time.Second, "Timeout for each compiler invocation.")
	jobs           = flag.Int("j", 4, "Number of parallel test jobs.")
	verbose        = flag.Bool("v", false, "Enable verbose logging.")
	useCache       = flag.Bool("cached", false, "Reuse passing results whose inputs, golden file and compiler are unchanged.")
	noColor        = flag.Bool("no-color", false, "Disable colored output.")
)

const (
	cRed   = "\x1b[91m"
	cGreen = "\x1b[92m"
	cCyan  = "\x1b[96m"
	cBold  = "\x1b[1m"
	cNone  = "\x1b[0m"
)

func main() {
	flag.Parse()
	logger.Init(*verbose, *noColor)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *generateGolden != "" {
		if err := handleGenerateGolden(ctx, *generateGolden); err != nil {
			log.Fatal("generating golden files", "err", err)
		}
		return
	}

	if !handleRunTestSuite(ctx) {
		os.Exit(1)
	}
}

func goldenPath(treeFile string) string {
	name := "." + strings.TrimSuffix(filepath.Base(treeFile), filepath.Ext(treeFile)) + ".golden"
	if *goldenDir != "" {
		return filepath.Join(*goldenDir, name)
	}
	return filepath.Join(filepath.Dir(treeFile), name)
}

// argsPath names the optional file holding per-test driver flags, such as
// -std=pl0 for trees that must be rejected by the base dialect.
func argsPath(treeFile string) string {
	return strings.TrimSuffix(treeFile, filepath.Ext(treeFile)) + ".args"
}

func testArgs(treeFile string) []string {
	args := strings.Fields(*targetArgs)
	if data, err := os.ReadFile(argsPath(treeFile)); err == nil {
		args = append(args, strings.Fields(string(data))...)
	}
	return args
}

// hashFiles computes the xxhash over the content of every existing path.
// Missing files hash as empty so a new golden file changes the digest.
func hashFiles(paths ...string) (string, error) {
	h := xxhash.New()
	for _, path := range paths {
		f, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", err
		}
		h.WriteString("\x00")
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}

func handleGenerateGolden(ctx context.Context, patterns string) error {
	files, err := expandGlobPatterns(patterns)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no trees match %q", patterns)
	}
	if *goldenDir != "" {
		if err := os.MkdirAll(*goldenDir, 0755); err != nil {
			return err
		}
	}
	for _, file := range files {
		args := testArgs(file)
		run := runCompiler(ctx, args, file)
		if run.TimedOut {
			return fmt.Errorf("%s: compiler timed out", file)
		}
		golden := Golden{Args: args, Stdout: run.Stdout, ExitCode: run.ExitCode}
		data, err := json.MarshalIndent(golden, "", "  ")
		if err != nil {
			return err
		}
		path := goldenPath(file)
		if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
			return err
		}
		log.Info("golden file written", "tree", file, "golden", path, "exit", run.ExitCode)
	}
	return nil
}

func handleRunTestSuite(ctx context.Context) bool {
	files, err := expandGlobPatterns(*testFiles)
	if err != nil {
		log.Fatal("invalid glob pattern", "err", err)
	}
	if len(files) == 0 {
		log.Warn("no test files found", "pattern", *testFiles)
		return true
	}

	compilerPath, err := exec.LookPath(*targetCompiler)
	if err != nil {
		log.Fatal("code generator not found", "path", *targetCompiler, "err", err)
	}

	outputFile := reportPath()
	previous := make(TestSuiteResults)
	if data, err := os.ReadFile(outputFile); err == nil {
		if json.Unmarshal(data, &previous) != nil {
			log.Warn("could not parse previous results; cache disabled", "file", outputFile)
			previous = make(TestSuiteResults)
		}
	}

	skipList := make(map[string]bool)
	for _, f := range strings.Fields(*skipFiles) {
		if abs, err := filepath.Abs(f); err == nil {
			skipList[abs] = true
		}
	}

	tasks := make(chan string, len(files))
	resultsChan := make(chan *FileTestResult, len(files))
	var wg sync.WaitGroup

	for i := 0; i < max(*jobs, 1); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range tasks {
				resultsChan <- testFile(ctx, file, compilerPath, previous)
			}
		}()
	}

	for _, file := range files {
		if skipList[file] {
			resultsChan <- &FileTestResult{File: file, Status: "SKIP", Message: "Explicitly skipped"}
			continue
		}
		tasks <- file
	}
	close(tasks)

	wg.Wait()
	close(resultsChan)

	var allResults []*FileTestResult
	for result := range resultsChan {
		allResults = append(allResults, result)
	}
	sort.Slice(allResults, func(i, j int) bool {
		return allResults[i].File < allResults[j].File
	})

	printSummary(allResults)
	return !hasFailures(writeJSONReport(allResults, outputFile))
}

func testFile(ctx context.Context, file, compilerPath string, previous TestSuiteResults) *FileTestResult {
	golden := goldenPath(file)
	hash, err := hashFiles(file, argsPath(file), golden, compilerPath)
	if err != nil {
		return &FileTestResult{File: file, Status: "ERROR", Message: fmt.Sprintf("Failed to hash inputs: %v", err)}
	}
	if *useCache {
		if prev, ok := previous[file]; ok && prev.Hash == hash && prev.Status == "PASS" {
			log.Debug("reusing cached result", "tree", file, "hash", hash)
			cached := *prev
			cached.Message = "cached"
			return &cached
		}
	}

	data, err := os.ReadFile(golden)
	if errors.Is(err, os.ErrNotExist) {
		return &FileTestResult{File: file, Hash: hash, Status: "SKIP", Message: "No golden file; run with -generate-golden"}
	}
	if err != nil {
		return &FileTestResult{File: file, Hash: hash, Status: "ERROR", Message: fmt.Sprintf("Could not read golden file %s: %v", golden, err)}
	}
	var want Golden
	if err := json.Unmarshal(data, &want); err != nil {
		return &FileTestResult{File: file, Hash: hash, Status: "ERROR", Message: fmt.Sprintf("Could not parse golden file %s: %v", golden, err)}
	}

	got := runCompiler(ctx, testArgs(file), file)
	result := &FileTestResult{File: file, Hash: hash, Target: &got}
	switch {
	case got.TimedOut:
		result.Status, result.Message = "FAIL", "Code generator timed out"
	case got.ExitCode != want.ExitCode:
		result.Status = "FAIL"
		result.Message = fmt.Sprintf("Exit code mismatch: want %d, got %d", want.ExitCode, got.ExitCode)
		result.Diff = got.Stderr
	default:
		if diff := cmp.Diff(strings.Split(want.Stdout, "\n"), strings.Split(got.Stdout, "\n")); diff != "" {
			result.Status, result.Message, result.Diff = "FAIL", "Listing mismatch (-want +got)", diff
		} else {
			result.Status = "PASS"
		}
	}
	return result
}

// runCompiler invokes the code generator in listing mode on one tree.
func runCompiler(ctx context.Context, args []string, file string) Execution {
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()
	allArgs := append([]string{"-d", "--no-color"}, args...)
	allArgs = append(allArgs, file)
	log.Debug("running", "compiler", *targetCompiler, "args", allArgs)
	return executeCommand(ctx, *targetCompiler, allArgs...)
}

// executeCommand runs a command with a timeout and captures its output
func executeCommand(ctx context.Context, command string, args ...string) Execution {
	startTime := time.Now()
	cmd := exec.CommandContext(ctx, command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Execution{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(startTime),
	}

	var exitErr *exec.ExitError
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		result.TimedOut = true
		result.ExitCode = -1
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	case err != nil:
		result.ExitCode = -2
		result.Stderr += "\nExecution error: " + err.Error()
	}
	return result
}

func printSummary(results []*FileTestResult) {
	counts := make(map[string]int)
	for _, r := range results {
		counts[r.Status]++
		rel := r.File
		if wd, err := os.Getwd(); err == nil {
			if p, err := filepath.Rel(wd, r.File); err == nil {
				rel = p
			}
		}
		switch r.Status {
		case "PASS":
			line := fmt.Sprintf("%s[PASS]%s %s", cGreen, cNone, rel)
			if r.Target != nil {
				line += fmt.Sprintf(" (%s)", formatDuration(r.Target.Duration))
			}
			if r.Message != "" {
				line += " " + r.Message
			}
			fmt.Println(line)
		case "SKIP":
			fmt.Printf("%s[SKIP]%s %s: %s\n", cCyan, cNone, rel, r.Message)
		default:
			fmt.Printf("%s[%s]%s %s: %s\n", cRed, r.Status, cNone, rel, r.Message)
			fmt.Print(formatDiff(r.Diff))
		}
	}
	fmt.Printf("\n%s%d passed, %d failed, %d errors, %d skipped%s\n",
		cBold, counts["PASS"], counts["FAIL"], counts["ERROR"], counts["SKIP"], cNone)
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.2fms", float64(d.Microseconds())/1000)
}

func formatDiff(diff string) string {
	if diff == "" {
		return ""
	}
	var builder strings.Builder
	builder.WriteString("    --- Diff ---\n")
	for _, line := range strings.Split(strings.TrimRight(diff, "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "-") {
			builder.WriteString(cRed)
		} else if strings.HasPrefix(trimmed, "+") {
			builder.WriteString(cGreen)
		}
		builder.WriteString("    " + line)
		builder.WriteString(cNone + "\n")
	}
	return builder.String()
}

func reportPath() string {
	if *goldenDir != "" {
		return filepath.Join(*goldenDir, *outputJSON)
	}
	return *outputJSON
}

func writeJSONReport(results []*FileTestResult, outputFile string) TestSuiteResults {
	resultsMap := make(TestSuiteResults, len(results))
	for _, r := range results {
		resultsMap[r.File] = r
	}
	data, err := json.MarshalIndent(resultsMap, "", "  ")
	if err != nil {
		log.Error("failed to marshal results", "err", err)
		return resultsMap
	}
	if err := os.WriteFile(outputFile, data, 0644); err != nil {
		log.Error("failed to write report", "file", outputFile, "err", err)
	} else {
		fmt.Printf("Full test report saved to %s\n", outputFile)
	}
	return resultsMap
}

func hasFailures(results TestSuiteResults) bool {
	for _, result := range results {
		if result.Status == "FAIL" || result.Status == "ERROR" {
			return true
		}
	}
	return false
}

func expandGlobPatterns(patterns string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]bool)
	for _, pattern := range strings.Fields(patterns) {
		files, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %s: %w", pattern, err)
		}
		for _, file := range files {
			absFile, err := filepath.Abs(file)
			if err != nil || seen[absFile] {
				continue
			}
			if info, err := os.Stat(absFile); err == nil && info.Mode().IsRegular() {
				allFiles = append(allFiles, absFile)
				seen[absFile] = true
			}
		}
	}
	return allFiles, nil
}
