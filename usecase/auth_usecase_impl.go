package usecase

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/fmpberger88/EnigmaTalk/dto/req"
	"github.com/fmpberger88/EnigmaTalk/dto/res"
	"github.com/fmpberger88/EnigmaTalk/entity"
	"github.com/fmpberger88/EnigmaTalk/exception"
	"github.com/fmpberger88/EnigmaTalk/repository"
	"github.com/fmpberger88/EnigmaTalk/security"
	"github.com/fmpberger88/EnigmaTalk/util"
)

type AuthUsecaseImpl struct {
	repository.Store
	*validator.Validate
	*logrus.Logger
	*security.JWT
}

func NewAuthUsecase(store repository.Store, validate *validator.Validate, logger *logrus.Logger, JWT *security.JWT) AuthUsecase {
	return &AuthUsecaseImpl{Store: store, Validate: validate, Logger: logger, JWT: JWT}
}

func (uc *AuthUsecaseImpl) RegisterUser(ctx context.Context, req *req.RegisterRequest) (res.RegisterResponse, error) {
	// validate request
	if err := uc.Validate.Struct(req); err != nil {
		uc.Logger.WithError(err).Errorf("Failed to validate register request: %v", err)
		return res.RegisterResponse{}, exception.InvalidRequestf("%v", err)
	}

	existing, err := uc.Store.FindUserByUsername(ctx, req.Username)
	if err != nil {
		return res.RegisterResponse{}, err
	}
	if existing != nil {
		return res.RegisterResponse{}, exception.Conflictf("username %s is already taken", req.Username)
	}

	hashPassword, err := util.HashPassword(req.Password)
	if err != nil {
		return res.RegisterResponse{}, err
	}

	newUser := &entity.User{
		Username: req.Username,
		Password: hashPassword,
	}
	if err := uc.Store.CreateUser(ctx, newUser); err != nil {
		uc.Logger.WithError(err).Errorf("Failed to save user: %v", err)
		return res.RegisterResponse{}, err
	}

	return res.RegisterResponse{
		ID:       newUser.ID,
		Username: newUser.Username,
	}, nil
}

func (uc *AuthUsecaseImpl) LoginUser(ctx context.Context, req *req.LoginRequest) (res.LoginResponse, error) {
	// validate request
	if err := uc.Validate.Struct(req); err != nil {
		uc.Logger.WithError(err).Errorf("Failed to validate login request: %v", err)
		return res.LoginResponse{}, exception.InvalidRequestf("%v", err)
	}

	currentUser, err := uc.Store.FindUserByUsername(ctx, req.Username)
	if err != nil {
		return res.LoginResponse{}, err
	}
	if currentUser == nil || !util.ComparePassword(currentUser.Password, req.Password) {
		uc.Logger.Warnf("Failed login attempt for username %s", req.Username)
		return res.LoginResponse{}, exception.ErrUnauthenticated
	}

	token, err := uc.JWT.GenerateToken(currentUser)
	if err != nil {
		uc.Logger.WithError(err).Errorf("Failed to generate token: %v", err)
		return res.LoginResponse{}, err
	}

	return res.LoginResponse{Token: token}, nil
}

func (uc *AuthUsecaseImpl) CurrentUser(ctx context.Context, token string) (*entity.User, error) {
	userID, err := uc.JWT.GetUserIdFromToken(token)
	if err != nil {
		return nil, exception.ErrUnauthenticated
	}

	user, err := uc.Store.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, exception.ErrUnauthenticated
	}
	return user, nil
}
