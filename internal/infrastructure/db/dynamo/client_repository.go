// Package dynamo stores clients as DynamoDB items keyed by username.
package dynamo

import (
	"context"
	"errors"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbTypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/99minutos/client-console/internal/core/domain"
)

type ClientRepository struct {
	table string
	cli   *dynamodb.Client
}

func NewClientRepository(table string, cli *dynamodb.Client) *ClientRepository {
	return &ClientRepository{table: table, cli: cli}
}

type item struct {
	Username    string   `dynamodbav:"username"`
	Password    string   `dynamodbav:"password"`
	Role        string   `dynamodbav:"role"`
	ExpiryDate  string   `dynamodbav:"expiry_date"`
	Permissions []string `dynamodbav:"permissions"`
	Email       string   `dynamodbav:"email,omitempty"`
	LoginStatus bool     `dynamodbav:"login_status"`
	CreatedAt   int64    `dynamodbav:"created_at"`
	UpdatedAt   int64    `dynamodbav:"updated_at"`
}

func key(username string) map[string]ddbTypes.AttributeValue {
	return map[string]ddbTypes.AttributeValue{
		keyAttr: &ddbTypes.AttributeValueMemberS{Value: username},
	}
}

func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) error {
	av, err := attributevalue.MarshalMap(toItem(c))
	if err != nil {
		return domain.Err(domain.ErrValidation, err, "marshal client %s", c.Username)
	}
	_, err = r.cli.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#u)"),
		ExpressionAttributeNames: map[string]string{
			"#u": keyAttr,
		},
	})
	if isConditionFailed(err) {
		return domain.ErrClientExists
	}
	if err != nil {
		return storageErr(err, "put client %s", c.Username)
	}
	return nil
}

func (r *ClientRepository) Get(ctx context.Context, username string) (*domain.Client, error) {
	out, err := r.cli.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		Key:            key(username),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, storageErr(err, "get client %s", username)
	}
	if out.Item == nil {
		return nil, domain.ErrClientNotFound
	}
	var it item
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, storageErr(err, "unmarshal client %s", username)
	}
	return toDomain(it), nil
}

// List scans the whole table and returns clients sorted by username.
func (r *ClientRepository) List(ctx context.Context) ([]*domain.Client, error) {
	out := make([]*domain.Client, 0)
	p := dynamodb.NewScanPaginator(r.cli, &dynamodb.ScanInput{
		TableName:      aws.String(r.table),
		ConsistentRead: aws.Bool(true),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, storageErr(err, "scan %s", r.table)
		}
		var items []item
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, storageErr(err, "unmarshal scan page")
		}
		for _, it := range items {
			out = append(out, toDomain(it))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// Update rewrites every attribute except created_at, conditioned on the item
// already existing.
func (r *ClientRepository) Update(ctx context.Context, c *domain.Client) error {
	it := toItem(c)
	values, err := attributevalue.MarshalMap(map[string]any{
		":p":  it.Password,
		":r":  it.Role,
		":e":  it.ExpiryDate,
		":pm": it.Permissions,
		":m":  it.Email,
		":l":  it.LoginStatus,
		":ua": it.UpdatedAt,
	})
	if err != nil {
		return domain.Err(domain.ErrValidation, err, "marshal client %s", c.Username)
	}
	_, err = r.cli.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.table),
		Key:                 key(c.Username),
		ConditionExpression: aws.String("attribute_exists(#u)"),
		UpdateExpression: aws.String("SET #pw = :p, #role = :r, expiry_date = :e, #perms = :pm, " +
			"email = :m, login_status = :l, updated_at = :ua"),
		ExpressionAttributeNames: map[string]string{
			"#u":     keyAttr,
			"#pw":    "password",
			"#role":  "role",
			"#perms": "permissions",
		},
		ExpressionAttributeValues: values,
	})
	if isConditionFailed(err) {
		return domain.ErrClientNotFound
	}
	if err != nil {
		return storageErr(err, "update client %s", c.Username)
	}
	return nil
}

func (r *ClientRepository) Delete(ctx context.Context, username string) error {
	_, err := r.cli.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.table),
		Key:       key(username),
	})
	if err != nil {
		return storageErr(err, "delete client %s", username)
	}
	return nil
}

func (r *ClientRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.cli.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(r.table)}); err != nil {
		return storageErr(err, "describe table %s", r.table)
	}
	return nil
}

func (r *ClientRepository) Close(_ context.Context) error { return nil }

func isConditionFailed(err error) bool {
	var ccf *ddbTypes.ConditionalCheckFailedException
	return err != nil && errors.As(err, &ccf)
}

func storageErr(err error, format string, args ...any) error {
	return domain.Err(domain.ErrStorageUnavailable, err, format, args...)
}

func toItem(c *domain.Client) item {
	perms := c.Permissions
	if perms == nil {
		perms = []string{}
	}
	return item{
		Username:    c.Username,
		Password:    c.PasswordHash,
		Role:        domain.RoleClient,
		ExpiryDate:  c.ExpiryDate,
		Permissions: perms,
		Email:       c.Email,
		LoginStatus: c.LoginStatus,
		CreatedAt:   domain.UnixOrZero(c.CreatedAt),
		UpdatedAt:   domain.UnixOrZero(c.UpdatedAt),
	}
}

func toDomain(it item) *domain.Client {
	perms := it.Permissions
	if perms == nil {
		perms = []string{}
	}
	return &domain.Client{
		Username:     it.Username,
		PasswordHash: it.Password,
		Role:         it.Role,
		ExpiryDate:   it.ExpiryDate,
		Permissions:  perms,
		Email:        it.Email,
		LoginStatus:  it.LoginStatus,
		CreatedAt:    domain.FromUnix(it.CreatedAt),
		UpdatedAt:    domain.FromUnix(it.UpdatedAt),
	}
}
