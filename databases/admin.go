package databases

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/models"
)

const adminCollectionName = "admin_users"

// AdminDatabase defines the interface for admin user operations
type AdminDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.AdminUser, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.AdminUser, error)
	InsertOne(ctx context.Context, admin models.AdminUser, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

type adminDatabase struct {
	db DatabaseHelper
}

// NewAdminDatabase creates a new admin database wrapper
func NewAdminDatabase(db DatabaseHelper) AdminDatabase {
	return &adminDatabase{db: db}
}

func (a *adminDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.AdminUser, error) {
	admin := &models.AdminUser{}
	err := a.db.Collection(adminCollectionName).FindOne(ctx, filter, opts...).Decode(&admin)
	if err != nil {
		return nil, err
	}
	return admin, nil
}

func (a *adminDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.AdminUser, error) {
	var admins []models.AdminUser
	curr, err := a.db.Collection(adminCollectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	if err := curr.All(ctx, &admins); err != nil {
		return nil, err
	}
	return admins, nil
}

func (a *adminDatabase) InsertOne(ctx context.Context, admin models.AdminUser, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return a.db.Collection(adminCollectionName).InsertOne(ctx, admin, opts...)
}

func (a *adminDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return a.db.Collection(adminCollectionName).UpdateOne(ctx, filter, update, opts...)
}

func (a *adminDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return a.db.Collection(adminCollectionName).CountDocuments(ctx, filter, opts...)
}

// ErrAdminExists is returned when an admin with the same email is already registered
var ErrAdminExists = errors.New("admin already exists")

// CreateAdmin hashes the password and stores a new active admin
func CreateAdmin(ctx context.Context, adb AdminDatabase, email, name, password string, roles []string) (*models.AdminUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, errors.New("email and password are required")
	}
	_, err := adb.FindOne(ctx, bson.M{"email": email})
	if err == nil {
		return nil, ErrAdminExists
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		roles = []string{"admin"}
	}
	now := time.Now().UTC()
	admin := models.AdminUser{
		ID:           primitive.NewObjectID(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
		Active:       true,
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := adb.InsertOne(ctx, admin); err != nil {
		return nil, err
	}
	return &admin, nil
}

// EnsureHeadAdmin bootstraps a head admin if none is registered under email.
// An empty email disables the bootstrap.
func EnsureHeadAdmin(ctx context.Context, adb AdminDatabase, email, password string) error {
	if strings.TrimSpace(email) == "" {
		return nil
	}
	if password == "" {
		return errors.New("ADMIN_HEAD_PASSWORD must be set to bootstrap head admin")
	}
	_, err := CreateAdmin(ctx, adb, email, "Head Admin", password, []string{"owner", "admin"})
	if errors.Is(err, ErrAdminExists) {
		return nil
	}
	return err
}
