package db

import (
	"context"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo is an in-memory stand-in for a single DynamoDB table.
type fakeDynamo struct {
	mu sync.Mutex

	table    *types.TableDescription
	items    map[string]map[string]types.AttributeValue
	pageSize int32

	// creatingPolls is how many DescribeTable calls report CREATING after CreateTable.
	creatingPolls int

	describeErr error
	createErr   error
	getErr      error
	putErr      error
	scanErr     error

	describeCalls int
	createCalls   int
	scanCalls     int
	lastCreate    *dynamodb.CreateTableInput
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: make(map[string]map[string]types.AttributeValue)}
}

// withTable marks the table as existing and ACTIVE.
func (f *fakeDynamo) withTable(name string) *fakeDynamo {
	f.table = &types.TableDescription{TableName: aws.String(name), TableStatus: types.TableStatusActive}
	return f
}

func (f *fakeDynamo) DescribeTable(_ context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.describeCalls++

	if f.describeErr != nil {
		return nil, f.describeErr
	}
	if f.table == nil || aws.ToString(f.table.TableName) != aws.ToString(in.TableName) {
		return nil, &types.ResourceNotFoundException{Message: aws.String("Requested resource not found")}
	}
	if f.table.TableStatus == types.TableStatusCreating {
		if f.creatingPolls > 0 {
			f.creatingPolls--
		} else {
			f.table.TableStatus = types.TableStatusActive
		}
	}
	desc := *f.table
	return &dynamodb.DescribeTableOutput{Table: &desc}, nil
}

func (f *fakeDynamo) CreateTable(_ context.Context, in *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	f.lastCreate = in

	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.table != nil {
		return nil, &types.ResourceInUseException{Message: aws.String("Table already exists")}
	}
	f.table = &types.TableDescription{
		TableName:   in.TableName,
		TableStatus: types.TableStatusCreating,
		KeySchema:   in.KeySchema,
	}
	desc := *f.table
	return &dynamodb.CreateTableOutput{TableDescription: &desc}, nil
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return nil, f.getErr
	}
	item, ok := f.items[keyOf(in.Key)]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: copyItem(item)}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.putErr != nil {
		return nil, f.putErr
	}
	f.items[keyOf(in.Item)] = copyItem(in.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scanCalls++

	if f.scanErr != nil {
		return nil, f.scanErr
	}

	keys := make([]string, 0, len(f.items))
	for k := range f.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	start := 0
	if len(in.ExclusiveStartKey) > 0 {
		after := keyOf(in.ExclusiveStartKey)
		start = sort.SearchStrings(keys, after)
		if start < len(keys) && keys[start] == after {
			start++
		}
	}

	end := len(keys)
	if f.pageSize > 0 && start+int(f.pageSize) < end {
		end = start + int(f.pageSize)
	}

	out := &dynamodb.ScanOutput{}
	for _, k := range keys[start:end] {
		out.Items = append(out.Items, copyItem(f.items[k]))
	}
	out.Count = int32(len(out.Items))
	if end < len(keys) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			classroomIDAttr: &types.AttributeValueMemberS{Value: keys[end-1]},
		}
	}
	return out, nil
}

// putRaw stores an item as-is, bypassing the service.
func (f *fakeDynamo) putRaw(item map[string]types.AttributeValue) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[keyOf(item)] = item
}

func keyOf(item map[string]types.AttributeValue) string {
	if s, ok := item[classroomIDAttr].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func copyItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}
