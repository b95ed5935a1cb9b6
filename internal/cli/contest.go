package cli

import (
	"encoding/json"
	"errors"

	"exam-prep-service/internal/config"
	"exam-prep-service/internal/domain"
	"github.com/spf13/cobra"
)

// NewContestCmd groups operator commands for contests.
func NewContestCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contest",
		Short: "Manage contests",
	}
	cmd.AddCommand(&cobra.Command{
		Use:       "create [daily|weekly]",
		Short:     "Create the contest of the current period if it does not exist",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"daily", "weekly"},
		RunE: func(cmd *cobra.Command, args []string) error {
			contestType, err := domain.ParseContestType(args[0])
			if err != nil {
				return err
			}
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			svc, release, err := buildServices(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer release()

			contest, err := svc.contests.CreateContest(cmd.Context(), contestType)
			if errors.Is(err, domain.ErrContestExists) {
				config.Logger().WithField("contest_type", contestType).Info("contest already exists for the current period")
				contest, err = svc.contests.ActiveContest(cmd.Context(), contestType)
			}
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(contest)
		},
	})
	return cmd
}
