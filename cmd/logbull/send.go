package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"logbull/pkg/logbull"
)

func newSendCmd(root *rootFlags) *cobra.Command {
	var (
		level  string
		fields []string
	)

	cmd := &cobra.Command{
		Use:     "send [messages]",
		Aliases: []string{"s"},
		Short:   "Send messages; reads one message per line from stdin when none are given",
		RunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := logbull.ParseLevel(level)
			if err != nil {
				return err
			}
			parsed, err := parseFields(fields)
			if err != nil {
				return err
			}

			logger, err := buildLogger(root)
			if err != nil {
				return err
			}
			defer logger.Shutdown()

			return sendAll(cmd, logger, lvl, parsed, args)
		},
	}

	cmd.Flags().StringVarP(&level, "level", "l", "INFO",
		"message `LEVEL`: DEBUG, INFO, WARNING, ERROR or CRITICAL")
	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil,
		"attach a `KEY=VALUE` field; repeatable, JSON values are decoded")

	return cmd
}

func sendAll(cmd *cobra.Command, logger *logbull.Logger, level logbull.Level, fields map[string]any, args []string) error {
	sent, failed := 0, 0
	send := func(msg string) {
		if strings.TrimSpace(msg) == "" {
			return
		}
		if err := logger.Log(level, msg, fields); err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "skipped: %v\n", err)
			return
		}
		sent++
	}

	if len(args) > 0 {
		for _, arg := range args {
			send(arg)
		}
	} else {
		scanner := bufio.NewScanner(cmd.InOrStdin())
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			send(scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "queued %d message(s)\n", sent)
	if failed > 0 {
		return fmt.Errorf("%d message(s) were invalid", failed)
	}
	return nil
}

// parseFields turns KEY=VALUE pairs into a field map. Values that parse as
// JSON keep their type; anything else stays a string.
func parseFields(pairs []string) (map[string]any, error) {
	fields := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid field %q, expected KEY=VALUE", pair)
		}

		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err == nil {
			fields[key] = decoded
		} else {
			fields[key] = value
		}
	}
	return fields, nil
}
