// Package dynamodb implements the record store on AWS DynamoDB.
package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"records-backend/internal/domain"
	"records-backend/internal/repository"
	appErrors "records-backend/pkg/errors"
)

const (
	maxBatchRetries   = 3
	batchRetryBackoff = 100 * time.Millisecond
)

// DBClient is the subset of the DynamoDB API the store uses.
type DBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// Store is the DynamoDB-backed record store. The table is keyed by RecordID
// alone; there is no sort key and no secondary index.
type Store struct {
	client    DBClient
	tableName string
	logger    *zap.Logger
}

// NewStore creates a new record store on the given client and table.
func NewStore(client DBClient, tableName string, logger *zap.Logger) repository.RecordStore {
	return &Store{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

func recordKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"RecordID": &types.AttributeValueMemberS{Value: id},
	}
}

// Put writes a single record.
func (s *Store) Put(ctx context.Context, record domain.Record) error {
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return appErrors.Wrap(err, "failed to marshal record item")
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return appErrors.NewDatabaseError("put record", err)
	}
	return nil
}

// Get retrieves a record by id, returning (nil, nil) when absent.
func (s *Store) Get(ctx context.Context, id string) (*domain.Record, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       recordKey(id),
	})
	if err != nil {
		return nil, appErrors.NewDatabaseError("get record", err)
	}
	if result.Item == nil {
		return nil, nil // Not found
	}

	var record domain.Record
	if err := attributevalue.UnmarshalMap(result.Item, &record); err != nil {
		return nil, appErrors.Wrap(err, "failed to unmarshal record item")
	}
	return &record, nil
}

// Update writes name and email on the stored record and returns its full
// post-update state. A nil value is persisted as null rather than skipped,
// and a missing id results in a new partial item, not an error.
func (s *Store) Update(ctx context.Context, id string, name, email *string) (*domain.Record, error) {
	expr, err := buildUpdateExpression(name, email)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to build update expression")
	}

	result, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.tableName),
		Key:                       recordKey(id),
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		return nil, appErrors.NewDatabaseError("update record", err)
	}

	var record domain.Record
	if err := attributevalue.UnmarshalMap(result.Attributes, &record); err != nil {
		return nil, appErrors.Wrap(err, "failed to unmarshal updated record")
	}
	return &record, nil
}

// buildUpdateExpression builds the SET expression touching exactly the name
// and email attributes. Nil pointers marshal to the NULL attribute value.
func buildUpdateExpression(name, email *string) (expression.Expression, error) {
	update := expression.
		Set(expression.Name("Name"), expression.Value(name)).
		Set(expression.Name("Email"), expression.Value(email))
	return expression.NewBuilder().WithUpdate(update).Build()
}

// Delete removes a record by id. Deleting a nonexistent id is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       recordKey(id),
	})
	if err != nil {
		return appErrors.NewDatabaseError("delete record", err)
	}
	return nil
}

// Scan reads every record in the table, following pagination until exhausted.
// An empty table yields an empty slice, never nil.
func (s *Store) Scan(ctx context.Context) ([]domain.Record, error) {
	records := make([]domain.Record, 0)
	var lastEvaluatedKey map[string]types.AttributeValue

	for {
		result, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.tableName),
			ExclusiveStartKey: lastEvaluatedKey,
		})
		if err != nil {
			return nil, appErrors.NewDatabaseError("scan records", err)
		}

		for _, item := range result.Items {
			var record domain.Record
			if err := attributevalue.UnmarshalMap(item, &record); err != nil {
				s.logger.Warn("failed to unmarshal record during scan", zap.Error(err))
				continue
			}
			records = append(records, record)
		}

		lastEvaluatedKey = result.LastEvaluatedKey
		if lastEvaluatedKey == nil {
			break
		}
	}

	return records, nil
}

// BatchPut writes up to MaxBatchPutSize records in one BatchWriteItem call.
func (s *Store) BatchPut(ctx context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}
	if len(records) > repository.MaxBatchPutSize {
		return appErrors.NewValidationError(
			fmt.Sprintf("batch write limited to %d items, got %d", repository.MaxBatchPutSize, len(records)))
	}

	writeRequests := make([]types.WriteRequest, 0, len(records))
	for _, record := range records {
		item, err := attributevalue.MarshalMap(record)
		if err != nil {
			return appErrors.Wrap(err, "failed to marshal record for batch write")
		}
		writeRequests = append(writeRequests, types.WriteRequest{
			PutRequest: &types.PutRequest{Item: item},
		})
	}

	input := &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{s.tableName: writeRequests},
	}

	// DynamoDB may process only part of a batch under throttling; the
	// remainder comes back in UnprocessedItems and must be resubmitted.
	for retryCount := 0; ; retryCount++ {
		output, err := s.client.BatchWriteItem(ctx, input)
		if err != nil {
			return appErrors.NewDatabaseError("batch write records", err)
		}

		unprocessed := output.UnprocessedItems[s.tableName]
		if len(unprocessed) == 0 {
			return nil
		}

		if retryCount >= maxBatchRetries {
			s.logger.Error("unprocessed items remain after batch write retries",
				zap.Int("unprocessed", len(unprocessed)))
			return appErrors.NewDatabaseError("batch write records",
				fmt.Errorf("%d items unprocessed after %d retries", len(unprocessed), maxBatchRetries))
		}

		// Exponential backoff
		time.Sleep(time.Duration(1<<retryCount) * batchRetryBackoff)
		input.RequestItems[s.tableName] = unprocessed
	}
}
