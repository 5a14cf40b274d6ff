package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewRemindCommand sends tomorrow's event reminders once and exits.
func NewRemindCommand() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Email reminders for events taking place tomorrow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}
			now, err := reminderTime(at, loc, time.Now())
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.reminders.SendTomorrow(cmd.Context(), now)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "events=%d sent=%d failed=%d\n", res.Events, res.Sent, res.Failed)
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "pretend today is this date (YYYY-MM-DD)")
	return cmd
}

// reminderTime returns now, or midnight of the --at date in loc when one was given.
func reminderTime(at string, loc *time.Location, now time.Time) (time.Time, error) {
	if at == "" {
		return now, nil
	}
	parsed, err := time.ParseInLocation(time.DateOnly, at, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at %q: %w", at, err)
	}
	return parsed, nil
}
