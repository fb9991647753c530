// Package ses sends operator alerts as email through Amazon SES.
package ses

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

const defaultSubject = "New purchase claim received"

// SendEmailAPI is the slice of the SES v2 client the notifier uses.
type SendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// Notifier emails the alert to a fixed list of operators.
type Notifier struct {
	client  SendEmailAPI
	from    string
	to      []string
	subject string
}

func New(client SendEmailAPI, from string, to []string) (*Notifier, error) {
	if client == nil {
		return nil, fmt.Errorf("ses client is required")
	}
	if from == "" {
		return nil, fmt.Errorf("sender address is required")
	}
	if len(to) == 0 {
		return nil, fmt.Errorf("at least one recipient is required")
	}
	return &Notifier{client: client, from: from, to: to, subject: defaultSubject}, nil
}

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// Send delivers text as the HTML body with a tag-stripped plain text part.
func (n *Notifier) Send(ctx context.Context, text string) error {
	htmlBody := strings.ReplaceAll(text, "\n", "<br>\n")
	plain := tagPattern.ReplaceAllString(text, "")

	_, err := n.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(n.from),
		Destination:      &types.Destination{ToAddresses: n.to},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(n.subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(htmlBody), Charset: aws.String("UTF-8")},
					Text: &types.Content{Data: aws.String(plain), Charset: aws.String("UTF-8")},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send: %w", err)
	}
	return nil
}
