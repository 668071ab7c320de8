package dynamo

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbTypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/99minutos/client-console/internal/core/domain"
)

const (
	keyAttr        = "username"
	defaultTimeout = 10 * time.Second
)

// Config captures DynamoDB settings. Endpoint is only set for local
// emulators; static dummy credentials are used in that case.
type Config struct {
	Table    string
	Endpoint string
	Region   string
}

// Connect builds a client from the default AWS credential chain.
func Connect(ctx context.Context, cfg Config) (*dynamodb.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, domain.Err(domain.ErrStorageUnavailable, err, "load aws config")
	}

	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Region != "" {
			o.Region = cfg.Region
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			if o.Region == "" {
				o.Region = "us-east-1"
			}
			o.Credentials = credentials.NewStaticCredentialsProvider("local", "local", "")
		}
	}), nil
}

// EnsureTable creates the clients table keyed by username if it is missing
// and waits until it is active.
func EnsureTable(ctx context.Context, cli *dynamodb.Client, table string) error {
	_, err := cli.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(table),
		AttributeDefinitions: []ddbTypes.AttributeDefinition{
			{AttributeName: aws.String(keyAttr), AttributeType: ddbTypes.ScalarAttributeTypeS},
		},
		KeySchema: []ddbTypes.KeySchemaElement{
			{AttributeName: aws.String(keyAttr), KeyType: ddbTypes.KeyTypeHash},
		},
		BillingMode: ddbTypes.BillingModePayPerRequest,
	})
	var inUse *ddbTypes.ResourceInUseException
	if err != nil && !errors.As(err, &inUse) {
		return domain.Err(domain.ErrStorageUnavailable, err, "create table %s", table)
	}

	err = dynamodb.NewTableExistsWaiter(cli).Wait(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(table),
	}, 30*time.Second)
	if err != nil {
		return domain.Err(domain.ErrStorageUnavailable, err, "wait for table %s", table)
	}
	return nil
}
