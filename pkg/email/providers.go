package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"

	"sphinx_backend/pkg/config"
)

const resendEndpoint = "https://api.resend.com/emails"

// NewSender builds the provider named in cfg.Provider.
func NewSender(ctx context.Context, cfg config.EmailConfig, log *logrus.Entry) (Sender, error) {
	switch cfg.Provider {
	case "resend":
		return NewResendSender(cfg.ResendAPIKey, fromAddress(cfg)), nil
	case "sendgrid":
		return NewSendGridSender(cfg.SendGridAPIKey, cfg.From, cfg.FromName), nil
	case "ses":
		return NewSESSender(ctx, cfg)
	case "log", "":
		return NewLogSender(log), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}

func fromAddress(cfg config.EmailConfig) string {
	if cfg.FromName == "" {
		return cfg.From
	}
	return fmt.Sprintf("%s <%s>", cfg.FromName, cfg.From)
}

// ResendSender posts messages to the Resend HTTP API.
type ResendSender struct {
	apiKey   string
	from     string
	endpoint string
	client   *http.Client
}

type resendPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Html    string `json:"html"`
}

func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{
		apiKey:   apiKey,
		from:     from,
		endpoint: resendEndpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *ResendSender) Name() string { return "resend" }

func (s *ResendSender) Send(ctx context.Context, msg *Message) error {
	jsonData, err := json.Marshal(resendPayload{From: s.from, To: msg.To, Subject: msg.Subject, Html: msg.HTML})
	if err != nil {
		return fmt.Errorf("error marshaling email data: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("error sending email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("resend API error %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// SendGridSender delivers through the SendGrid v3 mail API.
type SendGridSender struct {
	from   *mail.Email
	client *sendgrid.Client
}

func NewSendGridSender(apiKey, from, fromName string) *SendGridSender {
	return &SendGridSender{
		from:   mail.NewEmail(fromName, from),
		client: sendgrid.NewSendClient(apiKey),
	}
}

func (s *SendGridSender) Name() string { return "sendgrid" }

func (s *SendGridSender) Send(ctx context.Context, msg *Message) error {
	m := mail.NewSingleEmail(s.from, msg.Subject, mail.NewEmail("", msg.To), "", msg.HTML)

	// transactional mail: no link rewriting or open pixels
	tracking := mail.NewTrackingSettings()
	click := mail.NewClickTrackingSetting()
	click.SetEnable(false)
	tracking.SetClickTracking(click)
	open := mail.NewOpenTrackingSetting()
	open.SetEnable(false)
	tracking.SetOpenTracking(open)
	m.SetTrackingSettings(tracking)

	response, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return err
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid API error %d: %s", response.StatusCode, response.Body)
	}
	return nil
}

// SESSender delivers through AWS SES.
type SESSender struct {
	client *ses.Client
	source string
}

func NewSESSender(ctx context.Context, cfg config.EmailConfig) (*SESSender, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.AWS.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.AWS.Region))
	}
	// explicit keys win; otherwise the default credential chain applies
	if cfg.AWS.AccessKeyID != "" && cfg.AWS.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWS.AccessKeyID, cfg.AWS.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &SESSender{client: ses.NewFromConfig(awsCfg), source: fromAddress(cfg)}, nil
}

func (s *SESSender) Name() string { return "ses" }

func (s *SESSender) Send(ctx context.Context, msg *Message) error {
	input := &ses.SendEmailInput{
		Source:      aws.String(s.source),
		Destination: &types.Destination{ToAddresses: []string{msg.To}},
		Message: &types.Message{
			Subject: &types.Content{Charset: aws.String("UTF-8"), Data: aws.String(msg.Subject)},
			Body: &types.Body{
				Html: &types.Content{Charset: aws.String("UTF-8"), Data: aws.String(msg.HTML)},
			},
		},
	}
	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("SES send failed: %w", err)
	}
	return nil
}

// LogSender writes messages to the log instead of sending them. Used in development.
type LogSender struct {
	log *logrus.Entry
}

func NewLogSender(log *logrus.Entry) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Name() string { return "log" }

func (s *LogSender) Send(_ context.Context, msg *Message) error {
	s.log.WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
		"bytes":   len(msg.HTML),
	}).Info("email (log provider)")
	return nil
}
