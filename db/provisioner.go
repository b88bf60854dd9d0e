package db

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

const (
	classroomIDAttr = "classroom_id"
	contentAttr     = "content"
	lastUpdatedAttr = "last_updated"

	defaultCapacityUnits = 5
	defaultMaxWait       = 5 * time.Minute
)

// Provisioner makes sure the notes table exists before traffic is accepted.
type Provisioner struct {
	client        DynamoAPI
	table         string
	capacityUnits int64
	maxWait       time.Duration
	waitMinDelay  time.Duration
	logger        *zap.Logger
}

// ProvisionerOption customizes a Provisioner.
type ProvisionerOption func(*Provisioner)

// WithCapacityUnits sets the read and write capacity of a created table.
func WithCapacityUnits(units int64) ProvisionerOption {
	return func(p *Provisioner) { p.capacityUnits = units }
}

// WithMaxWait bounds how long EnsureTable waits for a new table to become active.
func WithMaxWait(d time.Duration) ProvisionerOption {
	return func(p *Provisioner) { p.maxWait = d }
}

// WithWaitMinDelay sets the first polling delay of the table waiter.
func WithWaitMinDelay(d time.Duration) ProvisionerOption {
	return func(p *Provisioner) { p.waitMinDelay = d }
}

// NewProvisioner creates a Provisioner for table using the shared client.
func NewProvisioner(client DynamoAPI, table string, logger *zap.Logger, opts ...ProvisionerOption) *Provisioner {
	if table == "" {
		table = DefaultTableName
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Provisioner{
		client:        client,
		table:         table,
		capacityUnits: defaultCapacityUnits,
		maxWait:       defaultMaxWait,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// EnsureTable returns the description of the notes table, creating it and
// waiting for it to become ACTIVE if it does not exist yet. Any failure other
// than "not found" is returned as a *ProvisioningError.
func (p *Provisioner) EnsureTable(ctx context.Context) (*types.TableDescription, error) {
	out, err := p.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(p.table)})
	if err == nil {
		p.logger.Debug("Table already exists",
			zap.String("table", p.table),
			zap.String("status", string(out.Table.TableStatus)))
		return out.Table, nil
	}

	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return nil, &ProvisioningError{Table: p.table, Err: err}
	}

	p.logger.Info("Table not found, creating it", zap.String("table", p.table))
	_, err = p.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(p.table),
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(classroomIDAttr), KeyType: types.KeyTypeHash},
		},
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(classroomIDAttr), AttributeType: types.ScalarAttributeTypeS},
		},
		BillingMode: types.BillingModeProvisioned,
		ProvisionedThroughput: &types.ProvisionedThroughput{
			ReadCapacityUnits:  aws.Int64(p.capacityUnits),
			WriteCapacityUnits: aws.Int64(p.capacityUnits),
		},
	})
	if err != nil {
		return nil, &ProvisioningError{Table: p.table, Err: err}
	}

	waiter := dynamodb.NewTableExistsWaiter(p.client, func(o *dynamodb.TableExistsWaiterOptions) {
		if p.waitMinDelay > 0 {
			o.MinDelay = p.waitMinDelay
		}
	})
	desc, err := waiter.WaitForOutput(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(p.table)}, p.maxWait)
	if err != nil {
		return nil, &ProvisioningError{Table: p.table, Err: err}
	}

	p.logger.Info("Table created", zap.String("table", p.table))
	return desc.Table, nil
}
