package usecase

import (
	"context"

	"github.com/fmpberger88/EnigmaTalk/config/logger"
	"github.com/fmpberger88/EnigmaTalk/dto/res"
	"github.com/fmpberger88/EnigmaTalk/exception"
	"github.com/fmpberger88/EnigmaTalk/repository"
	"github.com/fmpberger88/EnigmaTalk/security"
)

type UserUsecaseImpl struct {
	repository.Store
	Log *logger.AppLogger
	*security.JWT
}

func NewUserUsecase(store repository.Store, logger *logger.AppLogger, JWT *security.JWT) UserUsecase {
	return &UserUsecaseImpl{Store: store, Log: logger, JWT: JWT}
}

func (uc *UserUsecaseImpl) GetUserByToken(ctx context.Context, token string) (res.UserResponse, error) {
	userID, err := uc.JWT.GetUserIdFromToken(token)
	if err != nil {
		uc.Log.Http.Error.Error().
			Err(err).
			Msg("Failed to extract user ID from token")
		return res.UserResponse{}, exception.ErrUnauthenticated
	}

	user, err := uc.Store.FindUserByID(ctx, userID)
	if err != nil {
		uc.Log.Http.Error.Error().
			Err(err).
			Str("userId", userID).
			Msg("Failed to find user")
		return res.UserResponse{}, err
	}
	if user == nil {
		uc.Log.Http.Warning.Warn().
			Str("userId", userID).
			Msg("User not found")
		return res.UserResponse{}, exception.ErrUnauthenticated
	}

	return res.UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		CreatedAt: user.CreatedAt.Format(timeLayout),
	}, nil
}

func (uc *UserUsecaseImpl) GetAllUsers(ctx context.Context) ([]res.UserResponse, error) {
	users, err := uc.Store.ListUsers(ctx)
	if err != nil {
		uc.Log.Http.Error.Error().
			Err(err).
			Msg("Failed to get all users")
		return nil, err
	}

	userResponses := make([]res.UserResponse, 0, len(users))
	for _, user := range users {
		userResponses = append(userResponses, res.UserResponse{
			ID:        user.ID,
			Username:  user.Username,
			CreatedAt: user.CreatedAt.Format(timeLayout),
		})
	}
	return userResponses, nil
}
