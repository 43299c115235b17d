package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/focuslab/internal/difficulty"
)

var playCmd = &cobra.Command{
	Use:   "play <game>",
	Short: "Start a game directly",
	Long: `Start one of the timed attention games without going through the menu.

Games: ` + strings.Join(timedGameNames(), ", "),
	Args:      cobra.ExactArgs(1),
	ValidArgs: timedGameNames(),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := difficulty.ParseGameKind(args[0])
		if err != nil {
			return err
		}
		if !kind.Timed() {
			return fmt.Errorf("%s is not a timed game; open it from the menu", kind.DisplayName())
		}
		return runApp(cmd, &kind)
	},
}

func timedGameNames() []string {
	var names []string
	for _, k := range difficulty.AllKinds {
		if k.Timed() {
			names = append(names, k.String())
		}
	}
	return names
}
