package service

import (
	"context"
	"errors"
	"reflect"

	"github.com/RoyceAzure/lab/ordertracker/internal/errs"
	"github.com/RoyceAzure/lab/ordertracker/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/ordertracker/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IUserService interface {
	// CreateUser 建立用戶, 呼叫端需先完成密碼 hash
	//
	// 錯誤:
	//   - errs.ConflictCode 409: userName 或 email 已被使用
	//   - errs.InternalErrorCode 500
	CreateUser(ctx context.Context, user *model.User) error
	// 錯誤:
	//   - errs.NotFoundCode 404: 用戶不存在
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// 錯誤:
	//   - errs.NotFoundCode 404: 用戶不存在
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

type UserService struct {
	userRepo db.IUserRepository
}

func NewUserService(userRepo db.IUserRepository) IUserService {
	if userRepo == nil || reflect.ValueOf(userRepo).IsNil() {
		panic("user service initialization failed: userRepo cannot be nil")
	}
	return &UserService{
		userRepo: userRepo,
	}
}

func (u *UserService) CreateUser(ctx context.Context, user *model.User) error {
	// 先檢查 userName 與 email, 讓錯誤訊息可以分辨是哪一個重複
	if _, err := u.userRepo.GetUserByUserName(ctx, user.UserName); err == nil {
		return errs.New(errs.ConflictCode, "Username is already taken.")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.Wrap(errs.InternalErrorCode, err, "Failed to create user.")
	}

	if _, err := u.userRepo.GetUserByEmail(ctx, user.Email); err == nil {
		return errs.New(errs.ConflictCode, "Email is already registered.")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.Wrap(errs.InternalErrorCode, err, "Failed to create user.")
	}

	if err := u.userRepo.CreateUser(ctx, user); err != nil {
		// 並發註冊時由 unique index 擋下
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.Wrap(errs.ConflictCode, err, "Username or email is already registered.")
		}
		return errs.Wrap(errs.InternalErrorCode, err, "Failed to create user.")
	}
	return nil
}

func (u *UserService) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := u.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return nil, userLookupError(err)
	}
	return user, nil
}

func (u *UserService) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, userLookupError(err)
	}
	return user, nil
}

func userLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.Wrap(errs.NotFoundCode, err, "User not found.")
	}
	return errs.Wrap(errs.InternalErrorCode, err, "Failed to load user.")
}
