package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/neutrobox/automaker/pkg/engine"
)

func newCommitCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "commit <feature-id>",
		Short: "Run a commit-only attempt for a feature",
		Long:  "Runs an agent session that inspects the working tree and creates a conventional git commit for the work done on the given feature.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			controller, _, err := buildController(flags)
			if err != nil {
				return err
			}

			f := controller.Store().Find(args[0])
			if f == nil {
				return fmt.Errorf("feature %s not found", args[0])
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
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

			result, err := controller.RunCommit(ctx, exec, f)
			if err != nil {
				return err
			}

			fmt.Printf("\ncommit attempt: passed=%v %s\n", result.Passed, result.Message)
			return nil
		},
	}
}
