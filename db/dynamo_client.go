package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// DefaultTableName is the table holding classroom notes.
const DefaultTableName = "classroom_notes"

// DynamoAPI is the part of *dynamodb.Client used by the provisioner and the
// notes service. It satisfies the SDK's DescribeTable and Scan client
// interfaces so waiters and paginators accept it.
type DynamoAPI interface {
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

var (
	_ DynamoAPI                       = (*dynamodb.Client)(nil)
	_ dynamodb.DescribeTableAPIClient = DynamoAPI(nil)
	_ dynamodb.ScanAPIClient          = DynamoAPI(nil)
)

// DynamoOptions configures the process-wide DynamoDB client.
type DynamoOptions struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Endpoint        string // Optional, e.g. DynamoDB Local
}

// NewDynamoClient builds the DynamoDB client shared by every request.
// Static credentials are required; requests are attempted exactly once.
func NewDynamoClient(ctx context.Context, opts DynamoOptions) (*dynamodb.Client, error) {
	if opts.AccessKeyID == "" || opts.SecretAccessKey == "" {
		return nil, errors.New("dynamodb credentials are not configured")
	}
	if opts.Region == "" {
		return nil, errors.New("dynamodb region is not configured")
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		),
		awsconfig.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	}), nil
}
