package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"

	"github.com/electionwatch/candidate-dashboard/internal/config"
	"github.com/electionwatch/candidate-dashboard/internal/models"
)

// DynamoDBStorage implements Source using an AWS DynamoDB table that holds
// the same post documents as the Mongo collection
type DynamoDBStorage struct {
	client     dynamodbiface.DynamoDBAPI
	tableName  string
	projection bool
}

// NewDynamoDBStorage creates a new DynamoDB source
func NewDynamoDBStorage(cfg config.StorageConfig) (*DynamoDBStorage, error) {
	awsConfig := &aws.Config{
		Region: aws.String(cfg.Region),
	}

	// For local testing with DynamoDB Local
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.Timeout > 0 {
		awsConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	slog.Info("[DynamoDB] Session created",
		slog.String("region", cfg.Region),
		slog.String("table", cfg.TableName))

	return newDynamoDBStorage(dynamodb.New(sess), cfg.TableName, cfg.Projection), nil
}

func newDynamoDBStorage(client dynamodbiface.DynamoDBAPI, tableName string, projection bool) *DynamoDBStorage {
	return &DynamoDBStorage{
		client:     client,
		tableName:  tableName,
		projection: projection,
	}
}

// scanInput builds the scan request. Field names go through expression
// attribute names because "date" is a reserved word.
func (d *DynamoDBStorage) scanInput() *dynamodb.ScanInput {
	input := &dynamodb.ScanInput{
		TableName: aws.String(d.tableName),
	}
	if !d.projection {
		return input
	}

	names := make(map[string]*string, len(models.Projection))
	placeholders := make([]string, 0, len(models.Projection))
	for _, field := range models.Projection {
		placeholder := "#" + field
		names[placeholder] = aws.String(field)
		placeholders = append(placeholders, placeholder)
	}
	input.ProjectionExpression = aws.String(strings.Join(placeholders, ", "))
	input.ExpressionAttributeNames = names

	return input
}

// FetchPosts scans the whole table, following pagination until exhausted
func (d *DynamoDBStorage) FetchPosts(ctx context.Context) ([]models.Document, error) {
	var docs []models.Document
	var decodeErr error

	err := d.client.ScanPagesWithContext(ctx, d.scanInput(), func(page *dynamodb.ScanOutput, lastPage bool) bool {
		for _, item := range page.Items {
			var doc map[string]interface{}
			if err := dynamodbattribute.UnmarshalMap(item, &doc); err != nil {
				decodeErr = fmt.Errorf("failed to unmarshal post: %w", err)
				return false
			}
			docs = append(docs, models.Document(doc))
		}
		return true
	})
	if err != nil {
		return nil, classifyAWSError("scan posts", err)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}

	if docs == nil {
		docs = []models.Document{}
	}

	slog.Debug("[DynamoDB] Fetched posts", slog.Int("count", len(docs)))
	return docs, nil
}

// Ping checks that the table can be described
func (d *DynamoDBStorage) Ping(ctx context.Context) error {
	_, err := d.client.DescribeTableWithContext(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(d.tableName),
	})
	if err != nil {
		return classifyAWSError("describe table", err)
	}
	return nil
}

// Close closes the DynamoDB connection
func (d *DynamoDBStorage) Close() error {
	// DynamoDB client doesn't need explicit closing
	return nil
}

func classifyAWSError(op string, err error) error {
	if aerr, ok := err.(awserr.Error); ok {
		switch aerr.Code() {
		case request.ErrCodeRequestError, request.ErrCodeResponseTimeout, "ServiceUnavailable":
			return unavailable(op, err)
		}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
