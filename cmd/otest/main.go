package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/go-cmp/cmp"

	"github.com/xplshn/omnia/pkg/cli"
	"github.com/xplshn/omnia/pkg/config"
	"github.com/xplshn/omnia/pkg/eval"
	"github.com/xplshn/omnia/pkg/treefile"
	"github.com/xplshn/omnia/pkg/util"
)

type FileTestResult struct {
	File     string           `json:"file"`
	Status   string           `json:"status"` // PASS, FAIL, SKIP, ERROR
	Message  string           `json:"message,omitempty"`
	Diff     string           `json:"diff,omitempty"`
	Expected *treefile.Expect `json:"expected,omitempty"`
	Actual   *treefile.Expect `json:"actual,omitempty"`
	Duration time.Duration    `json:"duration"`
}

type TestSuiteResults map[string]*FileTestResult

type settings struct {
	testFiles      string
	skipFiles      string
	outputJSON     string
	jsonDir        string
	generateGolden string
	configPath     string
	jobs           int
	verbose        bool
}

var (
	cRed    = "\x1b[91m"
	cYellow = "\x1b[93m"
	cGreen  = "\x1b[92m"
	cCyan   = "\x1b[96m"
	cBold   = "\x1b[1m"
	cNone   = "\x1b[0m"
)

func disableColors() {
	cRed, cYellow, cGreen, cCyan, cBold, cNone = "", "", "", "", "", ""
}

func main() {
	log.SetFlags(0)
	if !util.IsTerminal(os.Stdout) {
		disableColors()
	}

	app := cli.NewApp("otest")
	app.Synopsis = "[options]"
	app.Description = "Evaluates every tree file and compares the result with its recorded expectation, either the document's 'expect' field or a golden .json file next to it."
	app.Examples = []string{
		"otest -j8",
		"otest --generate-golden testdata/vars.yaml",
	}

	var s settings
	fs := app.FlagSet
	fs.String(&s.testFiles, "test-files", "", "testdata/*.yaml testdata/*.json", "Glob pattern(s) for files to test (space-separated).", "glob")
	fs.String(&s.skipFiles, "skip-files", "", "", "Files to skip (space-separated).", "files")
	fs.String(&s.outputJSON, "output", "o", ".test_results.json", "Output file for the JSON test report.", "file")
	fs.String(&s.jsonDir, "dir", "", "", "Directory to store/read golden JSON files (defaults to the tree file's dir).", "dir")
	fs.String(&s.generateGolden, "generate-golden", "", "", "Generate a golden .json file for a given tree file.", "file")
	fs.String(&s.configPath, "config", "c", "", "Read evaluator settings from a YAML <file>.", "file")
	fs.Int(&s.jobs, "jobs", "j", 4, "Number of parallel test jobs.", "n")
	fs.Bool(&s.verbose, "verbose", "v", false, "Enable verbose logging.")

	cfg := config.NewConfig()
	warningFlags, featureFlags := cfg.SetupFlagGroups(fs)

	app.Action = func(args []string) error {
		if s.configPath != "" {
			loaded, err := config.Load(s.configPath)
			if err != nil {
				log.Printf("%s[ERROR]%s %v\n", cRed, cNone, err)
				return err
			}
			*cfg = *loaded
		}
		if err := cfg.ApplyFlagGroups(fs, warningFlags, featureFlags); err != nil {
			log.Printf("%s[ERROR]%s %v\n", cRed, cNone, err)
			return err
		}
		if s.jobs < 1 {
			s.jobs = 1
		}

		if s.generateGolden != "" {
			return handleGenerateGolden(s, cfg, s.generateGolden)
		}
		if len(args) > 0 {
			s.testFiles = strings.Join(args, " ")
		}
		return handleRunTestSuite(os.Stdout, s, cfg)
	}

	if err := app.Run(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

func getJSONPath(s settings, treeFile string) string {
	jsonFileName := "." + filepath.Base(treeFile) + ".json"
	if s.jsonDir != "" {
		return filepath.Join(s.jsonDir, jsonFileName)
	}
	return filepath.Join(filepath.Dir(treeFile), jsonFileName)
}

// hashFile computes the xxhash of a file's content
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum64()), nil
}

// evaluate loads a tree file and returns the decoded document with the
// recorded outcome of evaluating it.
func evaluate(cfg *config.Config, file string) (*treefile.Document, treefile.Expect, time.Duration, error) {
	doc, err := treefile.Load(file, 0)
	if err != nil {
		return nil, treefile.Expect{}, 0, err
	}
	scope, err := doc.Scope()
	if err != nil {
		return nil, treefile.Expect{}, 0, err
	}
	start := time.Now()
	v, err := eval.New(cfg, scope).Calc(doc.Tree)
	return doc, treefile.Result(v, err), time.Since(start), nil
}

func handleGenerateGolden(s settings, cfg *config.Config, treeFile string) error {
	log.Printf("Generating golden file for %s...\n", treeFile)

	_, got, _, err := evaluate(cfg, treeFile)
	if err != nil {
		log.Printf("%s[ERROR]%s Could not evaluate %s: %v\n", cRed, cNone, treeFile, err)
		return err
	}

	jsonData, err := json.MarshalIndent(got, "", "  ")
	if err != nil {
		log.Printf("%s[ERROR]%s Failed to marshal golden data to JSON: %v\n", cRed, cNone, err)
		return err
	}

	goldenFileName := getJSONPath(s, treeFile)
	if s.jsonDir != "" {
		if err := os.MkdirAll(s.jsonDir, 0755); err != nil {
			log.Printf("%s[ERROR]%s Failed to create directory %s: %v\n", cRed, cNone, s.jsonDir, err)
			return err
		}
	}
	if err := os.WriteFile(goldenFileName, jsonData, 0644); err != nil {
		log.Printf("%s[ERROR]%s Failed to write golden file %s: %v\n", cRed, cNone, goldenFileName, err)
		return err
	}

	log.Printf("%s[SUCCESS]%s Golden file created at %s\n", cGreen, cNone, goldenFileName)
	return nil
}

func handleRunTestSuite(out io.Writer, s settings, cfg *config.Config) error {
	files, err := expandGlobPatterns(s.testFiles)
	if err != nil {
		log.Printf("%s[ERROR]%s Invalid glob pattern(s): %v\n", cRed, cNone, err)
		return err
	}
	if len(files) == 0 {
		log.Println("No test files found matching the pattern(s).")
		return nil
	}

	results := runSuite(s, cfg, files)
	printSummary(out, s, results)
	resultsMap := writeJSONReport(out, s, results)

	if hasFailures(resultsMap) {
		return errors.New("test suite failed")
	}
	return nil
}

// runSuite tests files on a pool of s.jobs workers. Files whose content is
// identical to an earlier file are skipped.
func runSuite(s settings, cfg *config.Config, files []string) []*FileTestResult {
	skipList := make(map[string]bool)
	for _, f := range strings.Fields(s.skipFiles) {
		skipList[f] = true
		if abs, err := filepath.Abs(f); err == nil {
			skipList[abs] = true
		}
	}

	tasks := make(chan string, len(files))
	resultsChan := make(chan *FileTestResult, len(files))
	var wg sync.WaitGroup

	for i := 0; i < s.jobs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range tasks {
				resultsChan <- testFile(s, cfg, file)
			}
		}()
	}

	seenHashes := make(map[string]string)
	for _, file := range files {
		if skipList[file] {
			resultsChan <- &FileTestResult{File: file, Status: "SKIP", Message: "Explicitly skipped"}
			continue
		}
		fileHash, err := hashFile(file)
		if err != nil {
			resultsChan <- &FileTestResult{File: file, Status: "ERROR", Message: fmt.Sprintf("Failed to read file for hashing: %v", err)}
			continue
		}
		if originalFile, seen := seenHashes[fileHash]; seen {
			resultsChan <- &FileTestResult{File: file, Status: "SKIP", Message: fmt.Sprintf("Content is identical to %s", originalFile)}
			continue
		}
		seenHashes[fileHash] = file
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
	return allResults
}

func loadGolden(path string) (*treefile.Expect, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var golden treefile.Expect
	if err := json.Unmarshal(data, &golden); err != nil {
		return nil, fmt.Errorf("could not parse golden file %s: %w", path, err)
	}
	return &golden, nil
}

func testFile(s settings, cfg *config.Config, file string) *FileTestResult {
	doc, got, elapsed, err := evaluate(cfg, file)
	if err != nil {
		return &FileTestResult{File: file, Status: "ERROR", Message: err.Error()}
	}

	expect := doc.Expect
	if expect == nil {
		goldenFile := getJSONPath(s, file)
		golden, err := loadGolden(goldenFile)
		switch {
		case errors.Is(err, os.ErrNotExist):
			return &FileTestResult{File: file, Status: "SKIP", Message: "Cannot test without an 'expect' field or a .json golden file", Actual: &got}
		case err != nil:
			return &FileTestResult{File: file, Status: "ERROR", Message: err.Error()}
		}
		expect = golden
	}

	result := &FileTestResult{File: file, Expected: expect, Actual: &got, Duration: elapsed}
	if diff := cmp.Diff(*expect, got); diff != "" {
		result.Status = "FAIL"
		result.Message = "Result mismatch (-expected +actual)"
		result.Diff = diff
		return result
	}
	result.Status = "PASS"
	result.Message = describe(got)
	return result
}

func describe(e treefile.Expect) string {
	if e.Error != "" {
		return "failed with " + e.Error + " as expected"
	}
	return e.Kind + ": " + e.Value
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%6dµs", d.Microseconds())
	}
	return fmt.Sprintf("%6dms", d.Milliseconds())
}

func printSummary(out io.Writer, s settings, results []*FileTestResult) {
	var passed, failed, skipped, errored int
	var total time.Duration

	for _, result := range results {
		fmt.Fprintln(out, "----------------------------------------------------------------------")
		fmt.Fprintf(out, "Testing %s%s%s...\n", cCyan, result.File, cNone)

		switch result.Status {
		case "PASS":
			passed++
			fmt.Fprintf(out, "  [%sPASS%s] %s\n", cGreen, cNone, result.Message)
			if s.verbose {
				fmt.Fprintf(out, "  [%s]\n", formatDuration(result.Duration))
			}
		case "FAIL":
			failed++
			fmt.Fprintf(out, "  [%sFAIL%s] %s\n", cRed, cNone, result.Message)
			fmt.Fprintln(out, formatDiff(result.Diff))
		case "SKIP":
			skipped++
			fmt.Fprintf(out, "  [%sSKIP%s] %s\n", cYellow, cNone, result.Message)
		case "ERROR":
			errored++
			fmt.Fprintf(out, "  [%sERROR%s] %s\n", cRed, cNone, result.Message)
		}
		total += result.Duration
	}

	fmt.Fprintln(out, "----------------------------------------------------------------------")
	fmt.Fprintf(out, "%sTest Summary:%s %s%d Passed%s, %s%d Failed%s, %s%d Skipped%s, %s%d Errored%s, %d Total\n",
		cBold, cNone, cGreen, passed, cNone, cRed, failed, cNone, cYellow, skipped, cNone, cRed, errored, cNone, len(results))
	if s.verbose && passed+failed > 0 {
		fmt.Fprintf(out, "Evaluation took %s in total.\n", strings.TrimSpace(formatDuration(total)))
	}
}

func formatDiff(diff string) string {
	if diff == "" {
		return ""
	}
	var builder strings.Builder
	builder.WriteString("    --- Diff ---\n")
	for _, line := range strings.Split(diff, "\n") {
		trimmedLine := strings.TrimSpace(line)
		if strings.HasPrefix(trimmedLine, "-") {
			builder.WriteString(cRed)
		} else if strings.HasPrefix(trimmedLine, "+") {
			builder.WriteString(cGreen)
		}
		builder.WriteString("    " + line)
		builder.WriteString(cNone)
		builder.WriteString("\n")
	}
	return builder.String()
}

func writeJSONReport(out io.Writer, s settings, results []*FileTestResult) TestSuiteResults {
	resultsMap := make(TestSuiteResults, len(results))
	for _, r := range results {
		resultsMap[r.File] = r
	}

	jsonData, err := json.MarshalIndent(resultsMap, "", "  ")
	if err != nil {
		log.Printf("%s[ERROR]%s Failed to marshal results to JSON: %v\n", cRed, cNone, err)
		return resultsMap
	}

	outputFile := s.outputJSON
	if s.jsonDir != "" {
		if err := os.MkdirAll(s.jsonDir, 0755); err != nil {
			log.Printf("%s[ERROR]%s Failed to create dir %s: %v\n", cRed, cNone, s.jsonDir, err)
		}
		outputFile = filepath.Join(s.jsonDir, s.outputJSON)
	}

	if err := os.WriteFile(outputFile, jsonData, 0644); err != nil {
		log.Printf("%s[ERROR]%s Failed to write JSON report to %s: %v\n", cRed, cNone, outputFile, err)
	} else {
		fmt.Fprintf(out, "Full test report saved to %s\n", outputFile)
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
			// Golden files are hidden
			if strings.HasPrefix(filepath.Base(file), ".") {
				continue
			}
			absFile, err := filepath.Abs(file)
			if err != nil {
				continue
			}
			if !seen[absFile] {
				if info, err := os.Stat(absFile); err == nil && info.Mode().IsRegular() {
					allFiles = append(allFiles, absFile)
					seen[absFile] = true
				}
			}
		}
	}
	return allFiles, nil
}
