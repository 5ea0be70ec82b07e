package command

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ovaphlow/pitchfork/service-join-import/internal/importer"
	"github.com/ovaphlow/pitchfork/service-join-import/internal/store"
)

// NewImportCmd creates the one-shot import command.
func NewImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Run one import from JoinRPG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := runOptions(cmd)
			if err != nil {
				return err
			}
			npc, _ := cmd.Flags().GetBool("npc")

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.importer.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "listed %d, imported %d (created %d, updated %d), failed %d\n",
				res.Listed, res.Imported, res.Created, res.Updated, res.Failed)

			if npc {
				nres, err := a.importer.CreateNPCs(cmd.Context(), opts.IgnoreInGame)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "npc generated %d, exported %d, failed %d\n",
					nres.Generated, nres.Exported, nres.Failed)
			}
			return nil
		},
	}

	cmd.Flags().Int("id", 0, "import a single character")
	cmd.Flags().Bool("list", false, "only fetch the character list")
	cmd.Flags().Bool("no-export", false, "convert without writing to the store")
	cmd.Flags().Bool("refresh", false, "send a refresh event after each export")
	cmd.Flags().Bool("npc", false, "create NPCs after the import")
	cmd.Flags().Bool("ignore-in-game", false, "overwrite models already in game")
	cmd.Flags().String("since", "", "import characters modified since (2006-01-02T15:04)")
	return cmd
}

func runOptions(cmd *cobra.Command) (importer.RunOptions, error) {
	id, _ := cmd.Flags().GetInt("id")
	list, _ := cmd.Flags().GetBool("list")
	noExport, _ := cmd.Flags().GetBool("no-export")
	refresh, _ := cmd.Flags().GetBool("refresh")
	ignoreInGame, _ := cmd.Flags().GetBool("ignore-in-game")
	sinceText, _ := cmd.Flags().GetString("since")

	opts := importer.RunOptions{
		CharacterID:  id,
		ListOnly:     list,
		Export:       !noExport,
		Refresh:      refresh,
		IgnoreInGame: ignoreInGame,
	}
	if sinceText != "" {
		since, err := time.Parse(store.StatsTimeLayout, sinceText)
		if err != nil {
			return importer.RunOptions{}, fmt.Errorf("invalid --since %q: %w", sinceText, err)
		}
		opts.Since = since
	}
	if id < 0 {
		return importer.RunOptions{}, fmt.Errorf("invalid --id %d", id)
	}
	return opts, nil
}
