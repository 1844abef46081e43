package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/ordertracker/internal/api/dto"
	"github.com/RoyceAzure/lab/ordertracker/internal/api/response"
	"github.com/RoyceAzure/lab/ordertracker/internal/model"
	"github.com/RoyceAzure/lab/ordertracker/internal/service"
)

type AuthHandler struct {
	authService service.IAuthService
}

func NewAuthHandler(authService service.IAuthService) *AuthHandler {
	if authService == nil {
		panic("authService cannot be nil")
	}
	return &AuthHandler{
		authService: authService,
	}
}

// Register POST /api/auth/register
// 201 dto.TokenPairResponse; 400 欄位驗證; 409 userName/email 重複
func (a *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var registerDTO dto.RegisterDTO
	if err := decodeBody(r, &registerDTO); err != nil {
		response.ErrorJSON(w, r, err)
		return
	}

	tokens, err := a.authService.Register(r.Context(), model.RegisterUserModel{
		UserName: registerDTO.UserName,
		FullName: registerDTO.FullName,
		Email:    registerDTO.Email,
		Password: registerDTO.Password,
	})
	if err != nil {
		response.ErrorJSON(w, r, err)
		return
	}

	response.SuccessJSON(w, r, http.StatusCreated, "Registration successful.", dto.TokenPairResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

// Login POST /api/auth/login
// 200 dto.TokenPairResponse; 400 欄位驗證; 401 密碼錯誤; 404 email 不存在
func (a *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var loginDTO dto.LoginDTO
	if err := decodeBody(r, &loginDTO); err != nil {
		response.ErrorJSON(w, r, err)
		return
	}

	tokens, err := a.authService.Login(r.Context(), model.LoginModel{
		Email:    loginDTO.Email,
		Password: loginDTO.Password,
	})
	if err != nil {
		response.ErrorJSON(w, r, err)
		return
	}

	response.SuccessJSON(w, r, http.StatusOK, "Login successful.", dto.TokenPairResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}
