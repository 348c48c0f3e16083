package soloq

import (
	"context"

	"github.com/oklahomer/go-sarah/v4"
	"github.com/rehabot/soloqbot/discord"
)

const (
	// TaskIdentifier identifies the daily report among scheduled tasks.
	TaskIdentifier = "soloq_report"

	// DefaultSchedule runs the report every day at 11:00 in the configured zone.
	DefaultSchedule = "0 11 * * *"
)

// TaskConfig configures the scheduled report.
type TaskConfig struct {
	Schedule    string
	Destination discord.ChannelID
	Format      Format
}

// NewReportTaskProps builds the scheduled task that posts the report to the destination channel.
func NewReportTaskProps(reporter *Reporter, players Players, config *TaskConfig) (*sarah.ScheduledTaskProps, error) {
	schedule := config.Schedule
	if schedule == "" {
		schedule = DefaultSchedule
	}

	return sarah.NewScheduledTaskPropsBuilder().
		BotType(discord.DISCORD).
		Identifier(TaskIdentifier).
		Func(func(ctx context.Context) ([]*sarah.ScheduledTaskResult, error) {
			rows := reporter.Report(ctx, players)
			return []*sarah.ScheduledTaskResult{
				{
					Content:     Content(rows, config.Format),
					Destination: config.Destination,
				},
			}, nil
		}).
		Schedule(schedule).
		Build()
}
