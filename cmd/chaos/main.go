// Package main is the CHAOS script runner. It validates and executes a
// script, prints the resulting environment as JSON, and can instead drop
// into an interactive shell or feed a long-lived agent.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/jwebster45206/chaos-engine/pkg/agent"
	"github.com/jwebster45206/chaos-engine/pkg/chaos"
	"github.com/jwebster45206/chaos-engine/pkg/report"
	"github.com/jwebster45206/chaos-engine/pkg/scripts"
)

// payload is the JSON shape written by --emit and nested by --report.
type payload struct {
	Environment *chaos.Environment `json:"environment"`
	Report      *report.Snapshot   `json:"report,omitempty"`
}

func main() {
	verbose := flag.Bool("verbose", false, "print the token stream during execution")
	agentMode := flag.Bool("agent", false, "feed the script to a fresh agent and start a REPL")
	withReport := flag.Bool("report", false, "append a rendered business report")
	noTimestamp := flag.Bool("no-timestamp", false, "omit the generation timestamp from the report")
	emitPath := flag.String("emit", "", "write the run payload as JSON to this path")
	name := flag.String("name", "Concord", "agent name for --agent mode")
	seed := flag.Int64("seed", 0, "agent seed for --agent mode, 0 picks a time-based one")
	flag.Parse()

	path := flag.Arg(0)

	if *agentMode {
		if err := runAgent(path, *name, *seed, *verbose, *emitPath); err != nil {
			fmt.Fprintf(os.Stderr, "chaos: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if path == "" {
		runShell(*verbose)
		return
	}

	source, err := scripts.Resolve(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chaos: %v\n", err)
		os.Exit(1)
	}
	if err := runScript(source, *verbose, *withReport, *noTimestamp, *emitPath); err != nil {
		fmt.Fprintf(os.Stderr, "chaos: %v\n", err)
		os.Exit(1)
	}
}

// runScript validates and executes one script, printing the environment
// and optionally a rendered report.
func runScript(source string, verbose, withReport, noTimestamp bool, emitPath string) error {
	if verbose {
		for _, tok := range chaos.Tokenize(source) {
			fmt.Fprintf(os.Stderr, "  %s\n", tok)
		}
	}

	if err := chaos.Validate(source); err != nil {
		return err
	}
	env, err := chaos.Run(source)
	if err != nil {
		return err
	}

	out := payload{Environment: env}
	if withReport {
		snap := report.Generate(env, report.Options{IncludeTimestamp: !noTimestamp})
		out.Report = &snap
	}

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("encode environment: %w", err)
	}
	fmt.Println(string(data))

	if out.Report != nil {
		for _, line := range report.RenderLines(*out.Report) {
			fmt.Println(line)
		}
	}

	if emitPath != "" {
		return writeJSON(emitPath, out)
	}
	return nil
}

// runShell is the interactive mode. Lines buffer until a blank line
// commits them as one script.
func runShell(verbose bool) {
	fmt.Println("CHAOS interactive shell. Blank line runs the buffer, /quit exits, /help lists commands.")

	scanner := bufio.NewScanner(os.Stdin)
	var buffer []string
	for {
		fmt.Print("CHAOS> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		line := scanner.Text()

		if cmd, ok := strings.CutPrefix(strings.TrimSpace(line), "/"); ok {
			switch strings.ToLower(cmd) {
			case "quit", "exit":
				return
			case "help":
				fmt.Println("  /help          show this help")
				fmt.Println("  /clear         drop the current buffer")
				fmt.Println("  /verbose       toggle token display")
				fmt.Println("  /quit, /exit   leave the shell")
			case "clear":
				buffer = buffer[:0]
				fmt.Println("Buffer cleared.")
			case "verbose":
				verbose = !verbose
				fmt.Printf("Token display: %v\n", verbose)
			default:
				fmt.Printf("Unknown command: /%s (use /help)\n", cmd)
			}
			continue
		}

		if strings.TrimSpace(line) == "" {
			if len(buffer) == 0 {
				continue
			}
			source := strings.Join(buffer, "\n")
			buffer = buffer[:0]
			if err := runScript(source, verbose, false, true, ""); err != nil {
				fmt.Printf("Error: %v\n", err)
			}
			continue
		}

		buffer = append(buffer, line)
	}
}

// runAgent merges the optional script into a fresh agent and starts the
// agent REPL. Typed lines buffer until a blank line commits them as
// perceived text.
func runAgent(path, name string, seed int64, verbose bool, emitPath string) error {
	a, err := agent.New(name, seed)
	if err != nil {
		return err
	}

	var last *agent.Report
	if path != "" {
		source, err := scripts.Resolve(path)
		if err != nil {
			return err
		}
		if err := chaos.Validate(source); err != nil {
			return err
		}
		last, err = a.Step(agent.StepInput{Script: source})
		if err != nil {
			return err
		}
		fmt.Println("Merged script into agent memory.")
		printStatus(last)
	}

	fmt.Printf("Agent %s ready. Blank line commits typed text, /quit exits.\n", name)

	scanner := bufio.NewScanner(os.Stdin)
	var buffer []string
loop:
	for {
		fmt.Print("agent> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := scanner.Text()

		if cmd, ok := strings.CutPrefix(strings.TrimSpace(line), "/"); ok {
			switch strings.ToLower(cmd) {
			case "quit", "exit":
				break loop
			case "help":
				fmt.Println("  /help          show this help")
				fmt.Println("  /clear         drop the current buffer")
				fmt.Println("  /quit, /exit   leave the REPL")
			case "clear":
				buffer = buffer[:0]
				fmt.Println("Buffer cleared.")
			default:
				fmt.Printf("Unknown command: /%s (use /help)\n", cmd)
			}
			continue
		}

		if strings.TrimSpace(line) == "" {
			text := strings.TrimSpace(strings.Join(buffer, "\n"))
			buffer = buffer[:0]
			// A blank commit with nothing typed and no history does
			// nothing; once the agent has stepped, it ticks the cycle.
			if text == "" && last == nil {
				continue
			}
			rep, err := a.Step(agent.StepInput{Text: text})
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			last = rep
			printStatus(last)
			if verbose {
				if data, err := json.MarshalIndent(last, "", "  "); err == nil {
					fmt.Println(string(data))
				}
			}
			continue
		}

		buffer = append(buffer, line)
	}

	if emitPath != "" && last != nil {
		return writeJSON(emitPath, last)
	}
	return nil
}

// printStatus prints the one-line summary after each agent step.
func printStatus(r *agent.Report) {
	action := "idle"
	if r.Action != nil {
		action = r.Action.Kind
	}
	fmt.Printf("✓ action: %s | %d emotions | %d dreams\n", action, len(r.Emotions), len(r.Dreams))
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}
	return nil
}
