package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/neutrobox/automaker/pkg/engine"
	"github.com/neutrobox/automaker/pkg/feature"
	"github.com/neutrobox/automaker/pkg/types"
)

func newRunCommand(flags *rootFlags) *cobra.Command {
	var commitAfter bool
	var maxFeatures int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Work through the feature backlog",
		Long:  "Selects the next workable feature and runs an implementation attempt. Repeats until the backlog is exhausted or an attempt fails. SIGINT cancels the in-flight attempt cleanly.",
		RunE: func(cmd *cobra.Command, args []string) error {
			controller, _, err := buildController(flags)
			if err != nil {
				return err
			}
			return runBacklog(cmd.Context(), controller, commitAfter, maxFeatures)
		},
	}

	cmd.Flags().BoolVar(&commitAfter, "commit", false, "run a commit attempt after each passing feature")
	cmd.Flags().IntVar(&maxFeatures, "max-features", 0, "stop after this many features (0 = no limit)")

	return cmd
}

func runBacklog(parent context.Context, controller *engine.Controller, commitAfter bool, maxFeatures int) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		renderEvents(controller.Events())
	}()
	defer func() {
		controller.Close()
		wg.Wait()
	}()

	exec := engine.NewExecution()
	go func() {
		<-ctx.Done()
		exec.Cancel()
	}()

	completed := 0
	for {
		if ctx.Err() != nil {
			fmt.Println("\nInterrupted.")
			return nil
		}

		features := controller.Store().Load()
		next := feature.SelectNext(features)
		if next == nil {
			fmt.Printf("\nBacklog exhausted: %d feature(s) completed this run.\n", completed)
			return nil
		}

		fmt.Printf("\n>>> %s: %s\n", next.ID, next.Description)

		result, err := runAttempt(ctx, controller, exec, next)
		if err != nil {
			return fmt.Errorf("attempt for %s failed: %w", next.ID, err)
		}

		fmt.Printf("<<< %s: passed=%v %s\n", next.ID, result.Passed, result.Message)
		if !result.Passed {
			if ctx.Err() != nil {
				fmt.Println("\nInterrupted.")
				return nil
			}
			// A failed feature stays in_progress and would be re-selected
			// immediately, so the run halts here instead of looping on it.
			return fmt.Errorf("feature %s did not pass verification: %s", next.ID, result.Message)
		}

		if commitAfter {
			commitResult, commitErr := controller.RunCommit(ctx, exec, next)
			if commitErr != nil {
				return fmt.Errorf("commit for %s failed: %w", next.ID, commitErr)
			}
			fmt.Printf("<<< commit: passed=%v %s\n", commitResult.Passed, commitResult.Message)
		}

		completed++
		if maxFeatures > 0 && completed >= maxFeatures {
			fmt.Printf("\nReached feature limit (%d).\n", maxFeatures)
			return nil
		}
	}
}

// runAttempt picks implement or resume depending on whether the feature
// already has session progress in its transcript.
func runAttempt(ctx context.Context, controller *engine.Controller, exec *engine.Execution, f *feature.Feature) (*engine.Result, error) {
	if f.Status == feature.StatusInProgress {
		prior, err := controller.ContextLog().Read(f.ID)
		if err == nil && prior != "" {
			return controller.RunResume(ctx, exec, f, prior)
		}
	}
	return controller.RunImplement(ctx, exec, f)
}

// renderEvents prints the controller's progress stream until it closes.
func renderEvents(events <-chan *types.ExecutionEvent) {
	for event := range events {
		switch {
		case event.IsPhase():
			fmt.Printf("\n[%s] %s: %s\n", event.FeatureID, strings.ToUpper(event.Phase), event.Message)
		case event.IsTool():
			fmt.Printf("\n[%s] tool: %s\n", event.FeatureID, event.Tool)
		case event.IsProgress():
			fmt.Print(event.Content)
		}
	}
}
