package usecase

import (
	"context"

	"github.com/fmpberger88/EnigmaTalk/dto/res"
)

type UserUsecase interface {
	GetUserByToken(ctx context.Context, token string) (res.UserResponse, error)
	GetAllUsers(ctx context.Context) ([]res.UserResponse, error)
}
