package main

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rahul4469/cro-analyzer/internal/models"
)

func newChatCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "chat <domain> <question>",
		Short: "Ask a question about a site's landing page and stream the answer",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			site, err := c.svc.Site.Fetch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			req := models.ChatRequest{
				Message:        strings.Join(args[1:], " "),
				WebsiteContent: site.Text,
			}
			return c.svc.Chat.Relay(cmd.Context(), req, &writerSink{w: c.out})
		},
	}
}

// writerSink prints chunks as they arrive and ends the answer with a newline.
type writerSink struct {
	w io.Writer
}

func (s *writerSink) WriteChunk(chunk string) error {
	_, err := io.WriteString(s.w, chunk)
	return err
}

func (s *writerSink) Close() error {
	_, err := io.WriteString(s.w, "\n")
	return err
}
