package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wa-assist/internal/common/models"
	"wa-assist/internal/database"
	"wa-assist/internal/features/user"
	"wa-assist/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AuthService interface {
	Register(ctx context.Context, username, password, email, workspaceName string) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, error)
}

type AuthServiceImpl struct {
	UserRepo user.UserRepository
	Mongo    *database.MongodbDB
}

func NewAuthService(userRepo user.UserRepository, mongodb *database.MongodbDB) AuthService {
	return &AuthServiceImpl{
		UserRepo: userRepo,
		Mongo:    mongodb,
	}
}

func (s *AuthServiceImpl) Register(ctx context.Context, username, password, email, workspaceName string) (*models.User, error) {
	// hash password placeholder (TODO: use bcrypt)
	hashedPassword := password

	if workspaceName == "" {
		workspaceName = fmt.Sprintf("%s's Workspace", username)
	}

	workspace := models.Workspace{
		ID:        primitive.NewObjectID(),
		Name:      workspaceName,
		Slug:      utils.Slugify(workspaceName),
		Plan:      "trial",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if _, err := s.Mongo.DB.Collection("workspaces").InsertOne(ctx, workspace); err != nil {
		return nil, err
	}

	newUser := models.User{
		ID:       primitive.NewObjectID(),
		TenantID: workspace.ID,
		Username: username,
		Password: hashedPassword,
		Email:    email,
		Status:   "active",
	}

	if err := s.UserRepo.Create(ctx, &newUser); err != nil {
		return nil, err
	}

	return &newUser, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (string, error) {
	usr, err := s.UserRepo.FindByUsername(ctx, username)
	if err != nil {
		return "", errors.New("invalid credentials")
	}

	// Check password (TODO: use bcrypt)
	if usr.Password != password {
		return "", errors.New("invalid credentials")
	}

	if usr.Status == "suspended" {
		return "", errors.New("account suspended")
	}
	if usr.Status == "inactive" {
		return "", errors.New("account inactive")
	}

	_ = s.UserRepo.TouchLastLogin(ctx, usr.ID)

	return utils.GenerateToken(usr.ID, usr.TenantID)
}
