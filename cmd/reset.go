package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all sessions, statistics and language levels",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			fmt.Print("This deletes all progress. Type 'reset' to confirm: ")
			line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			if strings.TrimSpace(line) != "reset" {
				fmt.Println("Aborted.")
				return nil
			}
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Reset(context.Background()); err != nil {
			return err
		}
		logger.Info("learner data reset")
		fmt.Println("All progress deleted.")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
