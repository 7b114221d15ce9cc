package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"BloomStore/internal/cart"
)

var cartSession string

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Inspect or reset a visitor's cart",
}

var cartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the cart of a session",
	Args:  cobra.NoArgs,
	RunE:  runCartShow,
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart of a session",
	Args:  cobra.NoArgs,
	RunE:  runCartClear,
}

func init() {
	for _, c := range []*cobra.Command{cartShowCmd, cartClearCmd} {
		c.Flags().StringVar(&cartSession, "session", "", "session id (s_...)")
		_ = c.MarkFlagRequired("session")
		cartCmd.AddCommand(c)
	}
	rootCmd.AddCommand(cartCmd)
}

func runCartShow(cmd *cobra.Command, _ []string) error {
	kv, err := openKV(cmd)
	if err != nil {
		return err
	}
	defer kv.Close()

	sum := cart.NewStore(kv, nil).Summary(context.Background(), cartSession)

	out := cmd.OutOrStdout()
	if len(sum.Items) == 0 {
		fmt.Fprintln(out, "Cart is empty.")
		return nil
	}
	for _, l := range sum.Items {
		fmt.Fprintf(out, "%-16s %-32s %3d x %-12s %s\n", l.ID, l.Title, l.Qty, l.PriceLabel, l.LineTotalLabel)
	}
	fmt.Fprintf(out, "%d items, total %s\n", sum.Count, sum.TotalLabel)
	return nil
}

func runCartClear(cmd *cobra.Command, _ []string) error {
	kv, err := openKV(cmd)
	if err != nil {
		return err
	}
	defer kv.Close()

	if err := cart.NewStore(kv, nil).Clear(context.Background(), cartSession); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cart of %s cleared.\n", cartSession)
	return nil
}
