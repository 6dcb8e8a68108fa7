/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"

	"github.com/suparena/docstore/datastore"
	storeerrors "github.com/suparena/docstore/errors"
	"github.com/suparena/docstore/keys"
	"github.com/suparena/docstore/records"
	"github.com/suparena/docstore/storagemodels"
)

// Client is the part of *dynamodb.Client the store uses.
type Client interface {
	GetItem(ctx context.Context, params *sdk.GetItemInput, optFns ...func(*sdk.Options)) (*sdk.GetItemOutput, error)
	PutItem(ctx context.Context, params *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *sdk.DeleteItemInput, optFns ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error)
	UpdateItem(ctx context.Context, params *sdk.UpdateItemInput, optFns ...func(*sdk.Options)) (*sdk.UpdateItemOutput, error)
	Query(ctx context.Context, params *sdk.QueryInput, optFns ...func(*sdk.Options)) (*sdk.QueryOutput, error)
	BatchGetItem(ctx context.Context, params *sdk.BatchGetItemInput, optFns ...func(*sdk.Options)) (*sdk.BatchGetItemOutput, error)
	BatchWriteItem(ctx context.Context, params *sdk.BatchWriteItemInput, optFns ...func(*sdk.Options)) (*sdk.BatchWriteItemOutput, error)
}

var _ Client = (*sdk.Client)(nil)

var _ datastore.DataStore = (*DynamodbDataStore)(nil)

// DynamodbDataStore implements datastore.DataStore on one DynamoDB table.
type DynamodbDataStore struct {
	client     Client
	tableName  string
	log        zerolog.Logger
	maxRetries int
}

// Option configures a DynamodbDataStore.
type Option func(*DynamodbDataStore)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(d *DynamodbDataStore) { d.log = log }
}

// WithMaxRetries sets how often unprocessed batch keys are resubmitted.
func WithMaxRetries(n int) Option {
	return func(d *DynamodbDataStore) {
		if n >= 0 {
			d.maxRetries = n
		}
	}
}

// ClientConfig holds what NewDynamoDBClient needs to reach the table.
type ClientConfig struct {
	Region    string
	AccessKey string
	SecretKey string
	// Endpoint overrides the service endpoint, e.g. DynamoDB Local.
	Endpoint string
}

// NewDynamoDBClient builds a DynamoDB client. Static credentials are used
// when both keys are set, otherwise the default credential chain.
func NewDynamoDBClient(ctx context.Context, cc ClientConfig) (*sdk.Client, error) {
	loaders := []func(*config.LoadOptions) error{config.WithRegion(cc.Region)}
	if cc.AccessKey != "" && cc.SecretKey != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cc.AccessKey, cc.SecretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return sdk.NewFromConfig(cfg, func(o *sdk.Options) {
		if cc.Endpoint != "" {
			o.BaseEndpoint = aws.String(cc.Endpoint)
		}
	}), nil
}

// NewDynamodbDataStore wraps client for table.
func NewDynamodbDataStore(client Client, table string, opts ...Option) *DynamodbDataStore {
	d := &DynamodbDataStore{
		client:     client,
		tableName:  table,
		log:        zerolog.Nop(),
		maxRetries: 3,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// TableName returns the table the store writes to.
func (d *DynamodbDataStore) TableName() string {
	return d.tableName
}

// Get retrieves a single item. It returns nil, nil when none exists.
func (d *DynamodbDataStore) Get(ctx context.Context, key records.Item) (records.Item, error) {
	out, err := d.client.GetItem(ctx, &sdk.GetItemInput{
		TableName: &d.tableName,
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("GetItem error: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	return out.Item, nil
}

// Put stores item, replacing any item with the same key.
func (d *DynamodbDataStore) Put(ctx context.Context, item records.Item) error {
	_, err := d.client.PutItem(ctx, &sdk.PutItemInput{
		TableName: &d.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("PutItem failed: %w", err)
	}
	d.log.Debug().Str("table", d.tableName).Str("key", keyString(item)).Msg("put item")
	return nil
}

// PutIfAbsent stores item unless its key is already taken.
func (d *DynamodbDataStore) PutIfAbsent(ctx context.Context, item records.Item) error {
	_, err := d.client.PutItem(ctx, &sdk.PutItemInput{
		TableName:                &d.tableName,
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{"#pk": keys.PK},
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return storeerrors.NewAlreadyExistsError("item", keyString(item))
		}
		return fmt.Errorf("PutItem failed: %w", err)
	}
	return nil
}

// Update applies SET and REMOVE clauses to an existing item.
func (d *DynamodbDataStore) Update(ctx context.Context, key records.Item, set records.Item, remove []string) error {
	expr, names, values, err := buildUpdateExpression(set, remove)
	if err != nil {
		return fmt.Errorf("failed to build update expression: %w", err)
	}
	names["#pk"] = keys.PK

	_, err = d.client.UpdateItem(ctx, &sdk.UpdateItemInput{
		TableName:                 &d.tableName,
		Key:                       key,
		UpdateExpression:          &expr,
		ConditionExpression:       aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return storeerrors.NewNotFoundError("item", keyString(key))
		}
		return fmt.Errorf("UpdateItem failed: %w", err)
	}
	return nil
}

// Delete removes the item with key. Deleting a missing item is not an error.
func (d *DynamodbDataStore) Delete(ctx context.Context, key records.Item) error {
	_, err := d.client.DeleteItem(ctx, &sdk.DeleteItemInput{
		TableName: &d.tableName,
		Key:       key,
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return storeerrors.NewConditionFailedError("delete", keyString(key))
		}
		return fmt.Errorf("failed to delete item in DynamoDB: %w", err)
	}
	d.log.Debug().Str("table", d.tableName).Str("key", keyString(key)).Msg("deleted item")
	return nil
}

// buildUpdateExpression transforms SET values and REMOVE names into an
// update expression with placeholder names and values. Fields are visited
// in sorted order so the expression is stable.
func buildUpdateExpression(set records.Item, remove []string) (string, map[string]string, map[string]types.AttributeValue, error) {
	if len(set) == 0 && len(remove) == 0 {
		return "", nil, nil, errors.New("no updates provided")
	}

	fields := make([]string, 0, len(set))
	for f := range set {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	names := make(map[string]string)
	values := make(map[string]types.AttributeValue)

	var clauses []string
	if len(fields) > 0 {
		setClauses := make([]string, 0, len(fields))
		for i, field := range fields {
			name := fmt.Sprintf("#f%d", i)
			value := fmt.Sprintf(":v%d", i)
			names[name] = field
			values[value] = set[field]
			setClauses = append(setClauses, fmt.Sprintf("%s = %s", name, value))
		}
		clauses = append(clauses, "SET "+strings.Join(setClauses, ", "))
	}

	if len(remove) > 0 {
		removeClauses := make([]string, 0, len(remove))
		for i, field := range remove {
			name := fmt.Sprintf("#r%d", i)
			names[name] = field
			removeClauses = append(removeClauses, name)
		}
		clauses = append(clauses, "REMOVE "+strings.Join(removeClauses, ", "))
	}

	if len(values) == 0 {
		values = nil
	}
	return strings.Join(clauses, " "), names, values, nil
}

// keyString renders the PK/SK of item for logs and errors.
func keyString(item records.Item) string {
	pk, sk, _ := storagemodels.KeyStrings(item)
	return pk + "/" + sk
}
