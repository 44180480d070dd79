package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/lucienvoid/ai-hr-agent/internal/agent"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
	// filePrefix marks a field value that should be read from a file.
	filePrefix = "@"
)

var errExit = errors.New("exit requested")

var againPrompt = promptui.Select{
	Label: "Another request?",
	Items: []string{PromptYes, PromptNo},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single agent request, interactively or from flags",
	Long: `Run dispatches one request to the agent and prints the outcome as JSON.

Without --intent an interactive menu asks for the intent and its fields.
Field values starting with @ are read from the named file, e.g.
  hr-agent run --intent resume_screening --set resume_text=@cv.txt --set job_description=@jd.txt`,
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("intent", "i", "", "intent to run: resume_screening, interview_generation, interview_evaluation or hr_qa")
	runCmd.Flags().StringArrayP("set", "s", nil, "payload field as key=value (repeatable)")
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()
	logger := newLogger()

	config, err := getConfig(viper.GetViper())
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the hr-agent", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	hr, err := newApplication(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the agent", zap.Error(err))
	}
	defer hr.Close()

	intent, _ := cmd.Flags().GetString("intent")
	if intent != "" {
		sets, _ := cmd.Flags().GetStringArray("set")
		payload, err := parseAssignments(sets)
		if err != nil {
			logger.Fatal("parsing --set values", zap.Error(err))
		}
		if err := printOutcome(cmd.OutOrStdout(), hr.router.Dispatch(ctx, intent, payload)); err != nil {
			logger.Fatal("printing outcome", zap.Error(err))
		}
		return
	}

	for {
		if err := interactive(ctx, cmd.OutOrStdout(), hr.router); err != nil {
			if errors.Is(err, errExit) || errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				logger.Info("exiting")
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}

		_, again, err := againPrompt.Run()
		if err != nil || again == PromptNo {
			logger.Info("exiting")
			return
		}
	}
}

func interactive(ctx context.Context, out io.Writer, router *agent.Router) error {
	titles := make([]string, 0, len(agent.Intents)+1)
	for _, intent := range agent.Intents {
		titles = append(titles, intent.Title())
	}
	titles = append(titles, "Exit")

	menu := promptui.Select{Label: "What should the agent do?", Items: titles}
	idx, _, err := menu.Run()
	if err != nil {
		return err
	}
	if idx == len(agent.Intents) {
		return errExit
	}

	intent := agent.Intents[idx]
	payload := make(map[string]string, len(intent.Fields()))
	for _, field := range intent.Fields() {
		p := promptui.Prompt{Label: fieldLabel(field)}
		value, err := p.Run()
		if err != nil {
			return err
		}
		if payload[field], err = resolveValue(value); err != nil {
			return err
		}
	}

	return printOutcome(out, router.Dispatch(ctx, string(intent), payload))
}

func fieldLabel(field string) string {
	label := strings.ReplaceAll(field, "_", " ")
	switch field {
	case agent.FieldResumeText, agent.FieldJobDescription, agent.FieldAnswer:
		return label + " (text or @file)"
	case agent.FieldRoleLevel:
		return label + " (Junior, Mid or Senior)"
	default:
		return label
	}
}

// parseAssignments turns key=value pairs into a payload. Later keys win.
func parseAssignments(sets []string) (map[string]string, error) {
	payload := make(map[string]string, len(sets))
	for _, set := range sets {
		key, value, ok := strings.Cut(set, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", set)
		}

		resolved, err := resolveValue(value)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		payload[key] = resolved
	}
	return payload, nil
}

func resolveValue(value string) (string, error) {
	path, ok := strings.CutPrefix(value, filePrefix)
	if !ok || strings.TrimSpace(path) == "" {
		return value, nil
	}

	data, err := os.ReadFile(strings.TrimSpace(path))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

func printOutcome(w io.Writer, out agent.Outcome) error {
	pretty, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding outcome: %w", err)
	}
	_, err = fmt.Fprintln(w, string(pretty))
	return err
}
