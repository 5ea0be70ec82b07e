package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ovaphlow/pitchfork/service-join-import/internal/magellan"
	"github.com/ovaphlow/pitchfork/service-join-import/internal/store"
)

// NewShowCmd prints stored data of the game store.
func NewShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the stored model or cached record of a character",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := cmd.Flags().GetInt("id")
			raw, _ := cmd.Flags().GetBool("raw")
			cached, _ := cmd.Flags().GetBool("cached")
			if id <= 0 && !cached {
				return errors.New("--id or --cached is required")
			}
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			w := cmd.OutOrStdout()
			switch {
			case cached:
				return showCached(cmd.Context(), w, a.store)
			case raw:
				return showRaw(cmd.Context(), w, a.store, id)
			default:
				return showModel(cmd.Context(), w, a.store, id)
			}
		},
	}
	cmd.Flags().Int("id", 0, "character id")
	cmd.Flags().Bool("raw", false, "print the cached JoinRPG record instead of the model")
	cmd.Flags().Bool("cached", false, "list cached characters and store totals")
	return cmd
}

func showModel(ctx context.Context, w io.Writer, s *store.Store, id int) error {
	d, err := s.Models.Get(ctx, strconv.Itoa(id))
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("character %d has no stored model", id)
	}
	if err != nil {
		return fmt.Errorf("model %d: %w", id, err)
	}
	m, err := magellan.DecodeModel([]byte(d.Doc))
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "# %s rev %s\n%s\n", m.Profile(), d.Rev, out)
	if queued, err := s.Events.Queued(ctx, d.ID); err == nil {
		fmt.Fprintf(w, "# %d queued events\n", len(queued))
	}
	return nil
}

func showRaw(ctx context.Context, w io.Writer, s *store.Store, id int) error {
	ch, err := s.Cache.Character(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("character %d is not cached", id)
	}
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(ch, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s\n", out)
	return nil
}

func showCached(ctx context.Context, w io.Writer, s *store.Store) error {
	models, err := s.Models.Count(ctx)
	if err != nil {
		return err
	}
	accounts, err := s.Accounts.Count(ctx)
	if err != nil {
		return err
	}
	ids, err := s.Cache.CharacterIDs(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "# %d models, %d accounts, %d cached characters\n", models, accounts, len(ids))
	for _, id := range ids {
		fmt.Fprintln(w, id)
	}
	return nil
}
