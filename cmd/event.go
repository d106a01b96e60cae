package cmd

import (
	"context"
	"time"

	"github.com/frahmantamala/donation-management/internal/core/events"
	"github.com/frahmantamala/donation-management/pkg/logger"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Donation event commands",
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a sample donation event",
	Long: `Publish a sample donation event on the in-process bus and, with --kafka, relay it to
the configured topic. Known types are donation.paid, donation.failed and
donation.notification_unrecognized; any other type is sent as a bare event.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishSampleEvent(cmd.Context(), args[0])
	},
}

var (
	eventOrderID   string
	eventProgramID int64
	eventAmount    string
	eventStatus    string
	eventKafka     bool
)

func sampleEvent(eventType string) events.Event {
	switch eventType {
	case events.EventTypeDonationPaid:
		return events.NewDonationPaidEvent(eventOrderID, eventProgramID, eventAmount, "0", "cli", eventStatus)
	case events.EventTypeDonationFailed:
		return events.NewDonationFailedEvent(eventOrderID, eventProgramID, eventAmount, "0", "cli", eventStatus)
	case events.EventTypeDonationNotificationUnrecognized:
		return events.NewNotificationUnrecognizedEvent(eventOrderID, eventStatus, "pending")
	}
	return events.BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      map[string]interface{}{"order_id": eventOrderID, "source": "cli"},
	}
}

func publishSampleEvent(ctx context.Context, eventType string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	lg := logger.LoggerWrapper()
	bus := events.NewEventBus(lg)
	bus.Subscribe(eventType, func(_ context.Context, event events.Event) error {
		lg.Info("event received", "event_id", event.EventID(), "payload", event.Payload())
		return nil
	})

	if eventKafka {
		cfg, err := loadConfig(".")
		if err != nil {
			return err
		}
		if cfg.Events.KafkaEnabled {
			writer := events.NewKafkaWriter(cfg.Events.Brokers, cfg.Events.Topic, cfg.Events.WriteTimeout, lg)
			relay := events.NewKafkaRelay(writer, cfg.Events.WriteTimeout, lg)
			defer relay.Close()
			relay.Register(bus, eventType)
		} else {
			lg.Warn("kafka relay is disabled in config, publishing in-process only")
		}
	}

	if err := bus.Publish(ctx, sampleEvent(eventType)); err != nil {
		return err
	}
	return bus.Wait(ctx)
}

func init() {
	publishEventCmd.Flags().StringVar(&eventOrderID, "order-id", "DONA-CLI", "order id, also the Kafka message key")
	publishEventCmd.Flags().Int64Var(&eventProgramID, "program-id", 1, "donation program id")
	publishEventCmd.Flags().StringVar(&eventAmount, "amount", "10000", "gross amount")
	publishEventCmd.Flags().StringVar(&eventStatus, "transaction-status", "settlement", "gateway transaction status")
	publishEventCmd.Flags().BoolVar(&eventKafka, "kafka", false, "also relay the event to Kafka when enabled in config")

	eventCmd.AddCommand(publishEventCmd)
	rootCmd.AddCommand(eventCmd)
}
