package sms

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// Publisher is the subset of the SNS client used by SNSSender.
type Publisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSSender publishes directly to phone numbers through AWS SNS.
type SNSSender struct {
	client   Publisher
	senderID string
}

// NewSNSSender loads the default AWS credential chain for cfg.Region.
func NewSNSSender(ctx context.Context, cfg Config) (*SNSSender, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("%w: region is required", ErrInvalidConfig)
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	return NewSNSSenderWithClient(sns.NewFromConfig(awsCfg), cfg.SenderID), nil
}

// NewSNSSenderWithClient wraps an existing publisher.
func NewSNSSenderWithClient(client Publisher, senderID string) *SNSSender {
	return &SNSSender{client: client, senderID: senderID}
}

// SendSMS publishes params.Message to params.PhoneNumber.
func (s *SNSSender) SendSMS(ctx context.Context, params SendSMSParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	smsType := "Promotional"
	if params.Transactional {
		smsType = "Transactional"
	}
	attrs := map[string]types.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {DataType: aws.String("String"), StringValue: aws.String(smsType)},
	}
	if s.senderID != "" {
		attrs["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(s.senderID),
		}
	}

	_, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber:       aws.String(normalizePhone(params.PhoneNumber)),
		Message:           aws.String(params.Message),
		MessageAttributes: attrs,
	})
	if err != nil {
		return errors.Join(ErrFailedToSend, err)
	}
	return nil
}

// normalizePhone strips separators and ensures a leading plus.
func normalizePhone(p string) string {
	p = strings.NewReplacer(" ", "", "-", "").Replace(p)
	if !strings.HasPrefix(p, "+") {
		p = "+" + p
	}
	return p
}
