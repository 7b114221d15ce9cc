package main

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"BloomStore/internal/cart"
	"BloomStore/internal/checkout"
)

var orderSession string

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Inspect submitted orders",
}

var orderLastCmd = &cobra.Command{
	Use:   "last",
	Short: "Print the last order a session submitted, as JSON",
	Args:  cobra.NoArgs,
	RunE:  runOrderLast,
}

func init() {
	orderLastCmd.Flags().StringVar(&orderSession, "session", "", "session id (s_...)")
	_ = orderLastCmd.MarkFlagRequired("session")

	orderCmd.AddCommand(orderLastCmd)
	rootCmd.AddCommand(orderCmd)
}

func runOrderLast(cmd *cobra.Command, _ []string) error {
	kv, err := openKV(cmd)
	if err != nil {
		return err
	}
	defer kv.Close()

	svc := checkout.NewService(cart.NewStore(kv, nil), kv, nil)
	o, err := svc.LastOrder(context.Background(), orderSession, "")
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(o)
}
