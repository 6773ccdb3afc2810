package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewEventCmd создаёт группу команд для отправки событий.
func NewEventCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Submit trigger events",
	}

	cmd.AddCommand(
		newEventSubmitCmd(clientFn, outputFn),
	)

	return cmd
}

func newEventSubmitCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var eventType string
	var branch string
	var tag string
	var commit string
	var descriptorFile string
	var idempotencyKey string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a trigger event and create a pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := SubmitEventRequest{
				Type:           eventType,
				Branch:         branch,
				Tag:            tag,
				Commit:         commit,
				IdempotencyKey: idempotencyKey,
			}

			if descriptorFile != "" {
				descriptor, err := readDescriptorFile(descriptorFile)
				if err != nil {
					return err
				}
				req.Descriptor = descriptor
			}

			pipeline, err := client.SubmitEvent(req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Pipeline created: %s", pipeline.ID))
			out.Print(
				[]string{"ID", "TYPE", "BRANCH", "TAG", "STATUS", "CREATED"},
				[][]string{{
					pipeline.ID, pipeline.Event.Type, pipeline.Event.Branch,
					pipeline.Event.Tag, pipeline.Status, pipeline.CreatedAt,
				}},
				pipeline,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&eventType, "type", "manual", "Event type (push, pull_request, manual)")
	cmd.Flags().StringVar(&branch, "branch", "", "Branch name")
	cmd.Flags().StringVar(&tag, "tag", "", "Tag name (for push events)")
	cmd.Flags().StringVar(&commit, "commit", "", "Commit hash")
	cmd.Flags().StringVar(&descriptorFile, "descriptor-file", "", "Path to descriptor file (YAML or JSON)")
	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency key")

	return cmd
}

// readDescriptorFile читает дескриптор из YAML или JSON файла
// и возвращает его в JSON для отправки в API.
func readDescriptorFile(path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor file: %w", err)
	}

	// JSON отправляем как есть
	if json.Valid(data) {
		return json.RawMessage(data), nil
	}

	// YAML конвертируем в JSON
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("descriptor file is not valid YAML or JSON: %w", err)
	}

	converted, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to convert descriptor to JSON: %w", err)
	}

	return json.RawMessage(converted), nil
}
