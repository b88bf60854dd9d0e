package db

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"classroom-notes-go/models"
)

// DynamoService stores classroom notes in a DynamoDB table keyed by classroom_id.
type DynamoService struct {
	client DynamoAPI
	table  string
	now    Clock
	logger *zap.Logger
}

// NewDynamoService creates a DynamoService on top of the shared client.
// The table is expected to exist already, see Provisioner.
func NewDynamoService(client DynamoAPI, table string, logger *zap.Logger) *DynamoService {
	if table == "" {
		table = DefaultTableName
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DynamoService{
		client: client,
		table:  table,
		now:    time.Now,
		logger: logger,
	}
}

// WithClock returns a copy of the service that stamps writes with now.
func (s *DynamoService) WithClock(now Clock) *DynamoService {
	c := *s
	c.now = now
	return &c
}

// GetNotes retrieves the record of a classroom
func (s *DynamoService) GetNotes(ctx context.Context, classroomID string) (models.NoteRecord, error) {
	s.logger.Debug("Fetching notes", zap.String("classroom_id", classroomID))

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			classroomIDAttr: &types.AttributeValueMemberS{Value: classroomID},
		},
	})
	if err != nil {
		return models.NoteRecord{}, &StoreError{Op: "get", ClassroomID: classroomID, Err: err}
	}
	if len(out.Item) == 0 {
		return models.NoteRecord{}, nil // Not found
	}

	var record models.NoteRecord
	if err := attributevalue.UnmarshalMap(out.Item, &record); err != nil {
		return models.NoteRecord{}, &StoreError{Op: "get", ClassroomID: classroomID, Err: fmt.Errorf("decode item: %w", err)}
	}
	return record, nil
}

// PutNotes overwrites the record of a classroom, creating it if needed
func (s *DynamoService) PutNotes(ctx context.Context, classroomID, content string) error {
	stamp := models.FormatTimestamp(s.now())
	// Built by hand so an empty string is stored as "" rather than NULL.
	item := map[string]types.AttributeValue{
		classroomIDAttr: &types.AttributeValueMemberS{Value: classroomID},
		contentAttr:     &types.AttributeValueMemberS{Value: content},
		lastUpdatedAttr: &types.AttributeValueMemberS{Value: stamp},
	}

	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return &StoreError{Op: "put", ClassroomID: classroomID, Err: err}
	}
	s.logger.Debug("Saved notes",
		zap.String("classroom_id", classroomID),
		zap.String("last_updated", stamp))
	return nil
}

// ListClasses scans the whole table and returns classrooms with content,
// most recently updated first
func (s *DynamoService) ListClasses(ctx context.Context) ([]models.NoteRecord, error) {
	var records []models.NoteRecord

	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{TableName: aws.String(s.table)})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, &StoreError{Op: "list", Err: err}
		}

		var batch []models.NoteRecord
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, &StoreError{Op: "list", Err: fmt.Errorf("decode items: %w", err)}
		}
		records = append(records, batch...)
	}

	return models.SortByRecency(records), nil
}
