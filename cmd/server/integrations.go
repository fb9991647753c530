package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	"fraudgate/internal/notify"
	"fraudgate/internal/notify/ses"
	"fraudgate/internal/notify/telegram"
	"fraudgate/internal/platform/config"
	"fraudgate/internal/verification/artifact"
	"fraudgate/internal/verification/classifier"
	"fraudgate/internal/verification/ports"
)

// integrations are the external collaborators of the pipeline. Each one
// falls back to a local stand-in when it is not configured.
type integrations struct {
	classifier ports.Classifier
	artifacts  ports.ArtifactStore
	notifier   ports.Notifier
}

func newIntegrations(ctx context.Context, cfg config.Config, log *slog.Logger) (*integrations, error) {
	out := &integrations{
		classifier: classifier.Disabled{},
		artifacts:  artifact.NewInMemory(),
	}
	channels := notify.Multi{}

	if tg := telegram.New(cfg.Telegram.BotToken, cfg.Telegram.ChatID,
		telegram.WithAPIBase(cfg.Telegram.APIBase),
		telegram.WithLogger(log),
	); tg.Configured() {
		channels = append(channels, tg)
	}

	if usesAWS(cfg.AWS) {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		if err := out.wireAWS(awsCfg, cfg, &channels); err != nil {
			return nil, err
		}
	}

	if _, ok := out.classifier.(classifier.Disabled); ok {
		log.Warn("no classifier configured, every claim goes to manual review")
	}
	if _, ok := out.artifacts.(*artifact.InMemoryStore); ok {
		log.Warn("no artifact bucket configured, screenshots are kept in memory")
	}
	if len(channels) == 0 {
		log.Warn("no notification channel configured")
		out.notifier = notify.Nop{}
	} else {
		out.notifier = channels
	}
	return out, nil
}

func usesAWS(cfg config.AWS) bool {
	return cfg.Bucket != "" || cfg.ModelID != "" || (cfg.SESFrom != "" && len(cfg.SESTo) > 0)
}

func (i *integrations) wireAWS(awsCfg aws.Config, cfg config.Config, channels *notify.Multi) error {
	if cfg.AWS.Bucket != "" {
		store, err := artifact.NewS3(s3.NewFromConfig(awsCfg), cfg.AWS.Bucket, cfg.AWS.ArtifactPrefix)
		if err != nil {
			return err
		}
		i.artifacts = store
	}
	if cfg.AWS.ModelID != "" {
		bedrock, err := classifier.NewBedrock(bedrockruntime.NewFromConfig(awsCfg), cfg.AWS.ModelID,
			classifier.WithAuthorizedAddresses(cfg.Verification.PaymentAddresses),
		)
		if err != nil {
			return err
		}
		i.classifier = bedrock
	}
	if cfg.AWS.SESFrom != "" && len(cfg.AWS.SESTo) > 0 {
		mailer, err := ses.New(sesv2.NewFromConfig(awsCfg), cfg.AWS.SESFrom, cfg.AWS.SESTo)
		if err != nil {
			return err
		}
		*channels = append(*channels, mailer)
	}
	return nil
}
