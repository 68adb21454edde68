package usecase

import (
	"context"

	"github.com/fmpberger88/EnigmaTalk/dto/req"
	"github.com/fmpberger88/EnigmaTalk/dto/res"
	"github.com/fmpberger88/EnigmaTalk/entity"
)

type AuthUsecase interface {
	RegisterUser(ctx context.Context, req *req.RegisterRequest) (res.RegisterResponse, error)
	LoginUser(ctx context.Context, req *req.LoginRequest) (res.LoginResponse, error)
	// CurrentUser resolves a session token to its user, nil when the token
	// carries no valid identity.
	CurrentUser(ctx context.Context, token string) (*entity.User, error)
}
