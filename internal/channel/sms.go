package channel

import (
	"context"

	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"go.uber.org/zap"
)

// snsAPI is the subset of the SNS client the adapter calls.
type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
	GetSMSAttributes(ctx context.Context, params *sns.GetSMSAttributesInput, optFns ...func(*sns.Options)) (*sns.GetSMSAttributesOutput, error)
}

// SMSAdapter sends transactional SMS through AWS SNS.
type SMSAdapter struct {
	client   snsAPI
	senderID string
	log      *zap.Logger
}

func NewSMSAdapter(ctx context.Context, region, senderID string, log *zap.Logger) (*SMSAdapter, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &SMSAdapter{client: sns.NewFromConfig(cfg), senderID: senderID, log: log}, nil
}

func (a *SMSAdapter) Name() string {
	return domain.ChannelSMS
}

func (a *SMSAdapter) Deliver(ctx context.Context, rcpt Recipient, title, message string, _ map[string]string) (bool, string) {
	if rcpt.Phone == "" {
		return false, "recipient has no phone number"
	}
	body := title
	if message != "" {
		body = title + "\n" + message
	}
	_, err := a.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(rcpt.Phone),
		Message:     aws.String(body),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"AWS.SNS.SMS.SenderID": {
				DataType:    aws.String("String"),
				StringValue: aws.String(a.senderID),
			},
			"AWS.SNS.SMS.SMSType": {
				DataType:    aws.String("String"),
				StringValue: aws.String("Transactional"),
			},
		},
	})
	if err != nil {
		a.log.Warn("sms send failed", zap.String("phone", rcpt.Phone), zap.Error(err))
		return false, err.Error()
	}
	return true, ""
}

// ValidateSettings reads account SMS attributes, which exercises credentials
// and connectivity without publishing anything.
func (a *SMSAdapter) ValidateSettings(ctx context.Context) error {
	_, err := a.client.GetSMSAttributes(ctx, &sns.GetSMSAttributesInput{})
	return err
}
