// File: cmd/process.go
package cmd

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/panelops/teller/api/schemas"
	"github.com/panelops/teller/internal/observability"
)

// newProcessCmd creates the `process` command: one transaction from
// flags, result printed as JSON on stdout.
func newProcessCmd() *cobra.Command {
	var (
		panelURL string
		username string
		amount   float64
		action   string
	)

	processCmd := &cobra.Command{
		Use:   "process",
		Short: "Run a single transaction and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			req := schemas.TransactionRequest{
				PanelURL:       panelURL,
				ClientUsername: username,
				Amount:         amount,
				Action:         schemas.ActionType(action),
			}
			if err := req.Validate(); err != nil {
				return err
			}

			eng, cleanup, err := buildEngine(ctx, appCfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			res := eng.Run(ctx, req)

			out, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(res, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode result: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			if res.Status != schemas.StatusSuccess {
				return fmt.Errorf("transaction failed: %s", res.Message)
			}
			return nil
		},
	}

	processCmd.Flags().StringVar(&panelURL, "url", "", "panel admin URL")
	processCmd.Flags().StringVar(&username, "client", "", "client username")
	processCmd.Flags().Float64Var(&amount, "amount", 0, "transaction amount")
	processCmd.Flags().StringVar(&action, "type", "", "transaction type: deposit or withdraw")
	_ = processCmd.MarkFlagRequired("url")
	_ = processCmd.MarkFlagRequired("client")
	_ = processCmd.MarkFlagRequired("amount")
	_ = processCmd.MarkFlagRequired("type")

	return processCmd
}
