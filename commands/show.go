package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zeu5/tictactoe-rl/artifact"
	"github.com/zeu5/tictactoe-rl/tictactoe"
)

// ShowCommand prints the candidate values O would consider for a board
func ShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <board>",
		Short: "Show O's candidate values for a 9 character board (' ', X, O)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			board, err := tictactoe.ParseBoard(args[0])
			if err != nil {
				return err
			}
			if err := board.CheckValid(); err != nil {
				return err
			}
			policy, err := loadPolicy(context.Background(), cfg)
			if err != nil {
				return err
			}
			fmt.Println(board)
			for _, c := range artifact.Candidates(policy, board) {
				if c.Known {
					fmt.Printf("(%d, %d): %.4f\n", c.Move.Row(), c.Move.Col(), c.Value)
				} else {
					fmt.Printf("(%d, %d): unknown\n", c.Move.Row(), c.Move.Col())
				}
			}
			return nil
		},
	}
}
