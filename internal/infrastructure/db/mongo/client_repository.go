package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/client-console/internal/core/domain"
)

const collectionClients = "clients"

// ClientRepository implements ports.ClientRepository on a single collection
// with a unique index on username.
type ClientRepository struct {
	client *mongo.Client
	col    *mongo.Collection
}

// NewClientRepository wraps db. The client is kept so Close can disconnect it;
// pass nil when the caller owns the connection.
func NewClientRepository(client *mongo.Client, db *mongo.Database) *ClientRepository {
	return &ClientRepository{client: client, col: db.Collection(collectionClients)}
}

type mongoClient struct {
	Username     string   `bson:"username"`
	PasswordHash string   `bson:"password_hash"`
	Role         string   `bson:"role"`
	ExpiryDate   string   `bson:"expiry_date"`
	Permissions  []string `bson:"permissions"`
	Email        string   `bson:"email,omitempty"`
	LoginStatus  bool     `bson:"login_status"`
	CreatedAt    int64    `bson:"created_at"`
	UpdatedAt    int64    `bson:"updated_at"`
}

// EnsureIndexes creates the unique username index.
func (r *ClientRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("username_unique"),
	})
	if err != nil {
		return domain.Err(domain.ErrStorageUnavailable, err, "create clients index")
	}
	return nil
}

func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, toDocument(c)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrClientExists
		}
		return storageErr(err, "insert client %s", c.Username)
	}
	return nil
}

func (r *ClientRepository) Get(ctx context.Context, username string) (*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoClient
	if err := r.col.FindOne(ctx, bson.M{"username": username}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrClientNotFound
		}
		return nil, storageErr(err, "find client %s", username)
	}
	return toDomain(doc), nil
}

// List returns clients sorted by username.
func (r *ClientRepository) List(ctx context.Context) ([]*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "username", Value: 1}}))
	if err != nil {
		return nil, storageErr(err, "list clients")
	}
	defer cur.Close(ctx)

	out := make([]*domain.Client, 0)
	for cur.Next(ctx) {
		var doc mongoClient
		if err := cur.Decode(&doc); err != nil {
			return nil, storageErr(err, "decode client")
		}
		out = append(out, toDomain(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, storageErr(err, "iterate clients")
	}
	return out, nil
}

// Update replaces every field except created_at. It never upserts.
func (r *ClientRepository) Update(ctx context.Context, c *domain.Client) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toDocument(c)
	set := bson.M{
		"password_hash": doc.PasswordHash,
		"role":          doc.Role,
		"expiry_date":   doc.ExpiryDate,
		"permissions":   doc.Permissions,
		"email":         doc.Email,
		"login_status":  doc.LoginStatus,
		"updated_at":    doc.UpdatedAt,
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"username": c.Username}, bson.M{"$set": set})
	if err != nil {
		return storageErr(err, "update client %s", c.Username)
	}
	if res.MatchedCount == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

func (r *ClientRepository) Delete(ctx context.Context, username string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteOne(ctx, bson.M{"username": username}); err != nil {
		return storageErr(err, "delete client %s", username)
	}
	return nil
}

func (r *ClientRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := r.col.Database().Client().Ping(ctx, nil); err != nil {
		return storageErr(err, "mongo ping")
	}
	return nil
}

func (r *ClientRepository) Close(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	return r.client.Disconnect(ctx)
}

func storageErr(err error, format string, args ...any) error {
	return domain.Err(domain.ErrStorageUnavailable, err, format, args...)
}

func toDocument(c *domain.Client) mongoClient {
	perms := c.Permissions
	if perms == nil {
		perms = []string{}
	}
	return mongoClient{
		Username:     c.Username,
		PasswordHash: c.PasswordHash,
		Role:         domain.RoleClient,
		ExpiryDate:   c.ExpiryDate,
		Permissions:  perms,
		Email:        c.Email,
		LoginStatus:  c.LoginStatus,
		CreatedAt:    domain.UnixOrZero(c.CreatedAt),
		UpdatedAt:    domain.UnixOrZero(c.UpdatedAt),
	}
}

func toDomain(doc mongoClient) *domain.Client {
	perms := doc.Permissions
	if perms == nil {
		perms = []string{}
	}
	return &domain.Client{
		Username:     doc.Username,
		PasswordHash: doc.PasswordHash,
		Role:         doc.Role,
		ExpiryDate:   doc.ExpiryDate,
		Permissions:  perms,
		Email:        doc.Email,
		LoginStatus:  doc.LoginStatus,
		CreatedAt:    domain.FromUnix(doc.CreatedAt),
		UpdatedAt:    domain.FromUnix(doc.UpdatedAt),
	}
}
