package slack

import (
	"fmt"

	slacklib "github.com/slack-go/slack"

	"github.com/gosuda/honeypot/internal/messenger"
)

// BuildDetailBlocks builds Slack Block Kit blocks for a report detail message.
// Fields are rendered as a two-column section below the text.
func BuildDetailBlocks(text string, fields []messenger.Field) []slacklib.Block {
	textBlock := slacklib.NewSectionBlock(
		slacklib.NewTextBlockObject(slacklib.MarkdownType, text, false, false),
		nil,
		nil,
	)

	if len(fields) == 0 {
		return []slacklib.Block{textBlock}
	}

	objs := make([]*slacklib.TextBlockObject, 0, len(fields))
	for _, f := range fields {
		objs = append(objs, slacklib.NewTextBlockObject(
			slacklib.MarkdownType,
			fmt.Sprintf("*%s*\n%s", f.Label, f.Value),
			false,
			false,
		))
	}

	fieldBlock := slacklib.NewSectionBlock(nil, objs, nil)

	return []slacklib.Block{textBlock, fieldBlock}
}
