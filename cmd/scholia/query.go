package scholia

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/soundprediction/scholia"
	"github.com/soundprediction/scholia/pkg/types"
)

var nodeCmd = &cobra.Command{
	Use:   "node <unique_id>",
	Short: "Print a node and its neighbours",
	Args:  cobra.ExactArgs(1),
	RunE:  runNode,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print node and relationship counts of the store",
	RunE:  runStats,
}

var nodeNeighbors bool

func init() {
	rootCmd.AddCommand(nodeCmd)
	rootCmd.AddCommand(statsCmd)

	nodeCmd.Flags().BoolVar(&nodeNeighbors, "neighbors", false, "Include neighbouring nodes")
}

func openReadClient(cmd *cobra.Command) (*environment, *scholia.Client, error) {
	env, err := setup(cmd)
	if err != nil {
		return nil, nil, err
	}
	store, err := env.openStore(commandContext(cmd))
	if err != nil {
		env.Close()
		return nil, nil, err
	}
	client, err := scholia.NewClient(store, nil, nil, env.logger)
	if err != nil {
		env.Close()
		return nil, nil, err
	}
	return env, client, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runNode(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	env, client, err := openReadClient(cmd)
	if err != nil {
		return err
	}
	defer env.Close()
	defer client.Close(ctx)

	node, err := client.GetNode(ctx, args[0])
	if err != nil {
		return err
	}
	if !nodeNeighbors {
		return printJSON(cmd, node)
	}

	neighbors, err := client.GetNeighbors(ctx, args[0])
	if err != nil {
		return err
	}
	return printJSON(cmd, struct {
		Node      *types.Node      `json:"node"`
		Neighbors []types.Neighbor `json:"neighbors"`
	}{node, neighbors})
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	env, client, err := openReadClient(cmd)
	if err != nil {
		return err
	}
	defer env.Close()
	defer client.Close(ctx)

	stats, err := client.GetStats(ctx)
	if err != nil {
		return err
	}
	return printJSON(cmd, stats)
}
