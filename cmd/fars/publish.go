package main

import (
	"fmt"

	"github.com/spf13/cobra"

	kafkaadapter "github.com/willojs/FARS/internal/adapter/kafka"
	"github.com/willojs/FARS/internal/domain"
)

func newPublishCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish YEAR...",
		Short: "Publish the accidents of each year to Kafka",
		Long: `Publish one Kafka message per accident of the requested years. The key is
<year>-<state>-<case> and the value is the record as JSON. Years that cannot
be read are logged and skipped.`,
		Args: cobra.MinimumNArgs(1),
		PreRunE: func(*cobra.Command, []string) error {
			if len(a.cfg.KafkaBrokers) == 0 {
				return fmt.Errorf("no kafka brokers configured")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			writer := kafkaadapter.NewWriter(a.cfg, a.logger)
			defer func() {
				if cerr := writer.Close(); cerr != nil && err == nil {
					err = fmt.Errorf("close kafka writer: %w", cerr)
				}
			}()

			n, err := a.service().PublishYears(cmd.Context(), domain.ParseYears(args), writer)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published %d records to %s\n", n, a.cfg.KafkaTopic)
			return nil
		},
	}

	cmd.Flags().String("kafka-brokers", "localhost:9092", "comma-separated Kafka brokers")
	cmd.Flags().String("kafka-topic", "fars-accidents", "topic to publish to")
	return cmd
}
