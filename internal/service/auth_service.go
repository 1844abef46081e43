package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/RoyceAzure/lab/ordertracker/internal/constants"
	"github.com/RoyceAzure/lab/ordertracker/internal/errs"
	"github.com/RoyceAzure/lab/ordertracker/internal/model"
	"github.com/RoyceAzure/lab/ordertracker/internal/util"
	"github.com/RoyceAzure/rj/api/token"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

type IAuthService interface {
	// Register 註冊新用戶並回傳 token
	//
	// 錯誤:
	//   - errs.ValidationErrorCode 400: 欄位驗證失敗, 會列出所有欄位
	//   - errs.ConflictCode 409: userName 或 email 已被使用
	//   - errs.InternalErrorCode 500
	Register(ctx context.Context, input model.RegisterUserModel) (*model.TokenPairModel, error)
	// Login email + 密碼登入
	//
	// 錯誤:
	//   - errs.ValidationErrorCode 400
	//   - errs.NotFoundCode 404: email 不存在
	//   - errs.UnauthorizedCode 401: 密碼錯誤
	Login(ctx context.Context, input model.LoginModel) (*model.TokenPairModel, error)
	// VerifyToken 只驗證 token 本身, 不查詢用戶
	//
	// 錯誤:
	//   - errs.UnauthorizedCode 401: token 無效或過期
	VerifyToken(accessToken string) (*token.Payload[uuid.UUID], error)
	// IdentityFromPayload 以 token 內的 user id 載入目前的用戶資料
	//
	// 錯誤:
	//   - errs.UnauthorizedCode 401: 用戶已不存在
	IdentityFromPayload(ctx context.Context, payload *token.Payload[uuid.UUID]) (model.Identity, error)
	// Authenticate VerifyToken + IdentityFromPayload, websocket handshake 使用
	Authenticate(ctx context.Context, accessToken string) (model.Identity, error)
}

type AuthService struct {
	userService IUserService
	tokenMaker  token.Maker[uuid.UUID]
	logger      zerolog.Logger
	bcryptCost  int
}

func NewAuthService(userService IUserService, tokenMaker token.Maker[uuid.UUID], logger zerolog.Logger) IAuthService {
	if userService == nil || reflect.ValueOf(userService).IsNil() {
		panic("auth service initialization failed: userService cannot be nil")
	}
	if tokenMaker == nil || reflect.ValueOf(tokenMaker).IsNil() {
		panic("auth service initialization failed: tokenMaker cannot be nil")
	}
	return &AuthService{
		userService: userService,
		tokenMaker:  tokenMaker,
		logger:      logger.With().Str("service", "auth").Logger(),
		bcryptCost:  bcrypt.DefaultCost,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (a *AuthService) Register(ctx context.Context, input model.RegisterUserModel) (*model.TokenPairModel, error) {
	input.UserName = strings.TrimSpace(input.UserName)
	input.FullName = strings.TrimSpace(input.FullName)
	input.Email = normalizeEmail(input.Email)
	if err := util.Validate(input); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), a.bcryptCost)
	if err != nil {
		return nil, errs.Wrap(errs.InternalErrorCode, err, "Failed to register user.")
	}

	user := &model.User{
		UserName:     input.UserName,
		FullName:     input.FullName,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         model.RoleUser,
	}
	if err := a.userService.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	a.logger.Info().Str("user_id", user.ID.String()).Msg("user registered")
	return a.createTokenPair(user)
}

func (a *AuthService) Login(ctx context.Context, input model.LoginModel) (*model.TokenPairModel, error) {
	input.Email = normalizeEmail(input.Email)
	if err := util.Validate(input); err != nil {
		return nil, err
	}

	user, err := a.userService.GetUserByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, errs.New(errs.UnauthorizedCode, "Invalid email or password.")
	}

	return a.createTokenPair(user)
}

func (a *AuthService) VerifyToken(accessToken string) (*token.Payload[uuid.UUID], error) {
	payload, err := a.tokenMaker.VertifyToken(accessToken)
	if err != nil {
		if errors.Is(err, token.ErrExpiredToken) {
			return nil, errs.Wrap(errs.UnauthorizedCode, err, "Token has expired.")
		}
		return nil, errs.Wrap(errs.UnauthorizedCode, err, "Invalid token.")
	}
	return payload, nil
}

func (a *AuthService) IdentityFromPayload(ctx context.Context, payload *token.Payload[uuid.UUID]) (model.Identity, error) {
	if payload == nil {
		return model.Identity{}, errs.New(errs.UnauthorizedCode, "Authentication required.")
	}
	user, err := a.userService.GetUserByID(ctx, payload.UserId)
	if err != nil {
		if errors.Is(err, errs.NotFoundError) {
			return model.Identity{}, errs.Wrap(errs.UnauthorizedCode, err, "User not found.")
		}
		return model.Identity{}, err
	}
	return model.Identity{UserID: user.ID, Email: user.Email, Role: user.Role}, nil
}

func (a *AuthService) Authenticate(ctx context.Context, accessToken string) (model.Identity, error) {
	payload, err := a.VerifyToken(accessToken)
	if err != nil {
		return model.Identity{}, err
	}
	return a.IdentityFromPayload(ctx, payload)
}

func (a *AuthService) createTokenPair(user *model.User) (*model.TokenPairModel, error) {
	accessToken, _, err := a.tokenMaker.CreateToken(user.Email, user.ID, time.Duration(constants.AccessTokenDuration)*time.Hour)
	if err != nil {
		return nil, errs.Wrap(errs.InternalErrorCode, err, "Failed to create token.")
	}

	refreshToken, _, err := a.tokenMaker.CreateToken(user.Email, user.ID, time.Duration(constants.RefreshTokenDuration)*time.Hour)
	if err != nil {
		return nil, errs.Wrap(errs.InternalErrorCode, err, "Failed to create token.")
	}

	return &model.TokenPairModel{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
