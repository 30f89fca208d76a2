package sms

// Config holds SMS provider configuration. With an empty Region the service
// uses LogSender.
type Config struct {
	Region   string `env:"SMS_AWS_REGION"`
	SenderID string `env:"SMS_SENDER_ID"`
}

// Enabled reports whether SNS delivery is configured.
func (c Config) Enabled() bool {
	return c.Region != ""
}
