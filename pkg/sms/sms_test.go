package sms_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyengine/pkg/sms"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*sns.PublishOutput)
	return out, args.Error(1)
}

func TestSendSMSParams_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		params  sms.SendSMSParams
		wantErr bool
	}{
		{name: "valid", params: sms.SendSMSParams{PhoneNumber: "+14155550100", Message: "hi"}},
		{name: "valid with separators", params: sms.SendSMSParams{PhoneNumber: "+1 415-555-0100", Message: "hi"}},
		{name: "missing phone", params: sms.SendSMSParams{Message: "hi"}, wantErr: true},
		{name: "letters in phone", params: sms.SendSMSParams{PhoneNumber: "call-me", Message: "hi"}, wantErr: true},
		{name: "empty message", params: sms.SendSMSParams{PhoneNumber: "+14155550100"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.params.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, sms.ErrInvalidParams)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", sms.Truncate("short", 10))
	assert.Equal(t, "abcdefg...", sms.Truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", sms.Truncate("abcdef", 2))
}

func TestSNSSender_SendSMS(t *testing.T) {
	t.Parallel()

	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		return aws.ToString(in.PhoneNumber) == "+14155550100" &&
			aws.ToString(in.Message) == "Payment failed: retry" &&
			aws.ToString(in.MessageAttributes["AWS.SNS.SMS.SMSType"].StringValue) == "Transactional" &&
			aws.ToString(in.MessageAttributes["AWS.SNS.SMS.SenderID"].StringValue) == "ACME"
	})).Return(&sns.PublishOutput{MessageId: aws.String("m-1")}, nil).Once()

	sender := sms.NewSNSSenderWithClient(pub, "ACME")
	err := sender.SendSMS(context.Background(), sms.SendSMSParams{
		PhoneNumber:   "1 415-555-0100",
		Message:       "Payment failed: retry",
		Transactional: true,
	})
	require.NoError(t, err)
	pub.AssertExpectations(t)
}

func TestSNSSender_PublishError(t *testing.T) {
	t.Parallel()

	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything).Return(nil, errors.New("throttled")).Once()

	err := sms.NewSNSSenderWithClient(pub, "").SendSMS(context.Background(), sms.SendSMSParams{
		PhoneNumber: "+14155550100",
		Message:     "x",
	})
	assert.ErrorIs(t, err, sms.ErrFailedToSend)
}

func TestSNSSender_InvalidParamsSkipPublish(t *testing.T) {
	t.Parallel()

	pub := &mockPublisher{}
	err := sms.NewSNSSenderWithClient(pub, "").SendSMS(context.Background(), sms.SendSMSParams{})
	assert.ErrorIs(t, err, sms.ErrInvalidParams)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestNewSNSSender_RequiresRegion(t *testing.T) {
	t.Parallel()

	_, err := sms.NewSNSSender(context.Background(), sms.Config{})
	assert.ErrorIs(t, err, sms.ErrInvalidConfig)
}

func TestLogSender(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	sender := sms.NewLogSender(slog.New(slog.NewTextHandler(&buf, nil)))

	err := sender.SendSMS(context.Background(), sms.SendSMSParams{PhoneNumber: "+14155550100", Message: "hello"})
	assert.ErrorIs(t, err, sms.ErrNotSent)
	assert.Contains(t, buf.String(), "SMS not sent")
	assert.NotContains(t, buf.String(), "+14155550100")
	assert.Contains(t, buf.String(), "********0100")
}
