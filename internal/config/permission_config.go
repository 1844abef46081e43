package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/RoyceAzure/lab/ordertracker/internal/constants"
	"github.com/RoyceAzure/lab/ordertracker/internal/model"
	"gopkg.in/yaml.v3"
)

type RolePermission struct {
	Role        model.UserRole         `yaml:"role"`
	Permissions []constants.Permission `yaml:"permissions"`
}

type PermissionConfig struct {
	RolePermissions []RolePermission `yaml:"role_permissions"`
}

// DefaultPermissionConfig 找不到設定檔時使用
func DefaultPermissionConfig() *PermissionConfig {
	return &PermissionConfig{
		RolePermissions: []RolePermission{
			{
				Role: model.RoleUser,
				Permissions: []constants.Permission{
					constants.PermOrdersCreate,
					constants.PermOrdersRead,
					constants.PermOrdersUpdateStatus,
				},
			},
			{
				Role: model.RoleAdmin,
				Permissions: []constants.Permission{
					constants.PermOrdersCreate,
					constants.PermOrdersRead,
					constants.PermOrdersUpdateStatus,
					constants.PermProductsCreate,
				},
			},
		},
	}
}

// LoadPermissionConfig 檔案不存在時回傳預設設定, 格式錯誤時回傳 error
func LoadPermissionConfig(path string) (*PermissionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultPermissionConfig(), nil
		}
		return nil, err
	}

	config := &PermissionConfig{}
	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("parse permission file %s: %w", path, err)
	}

	return config, nil
}

// PermissionSet 角色 -> 權限集合
func (c *PermissionConfig) PermissionSet() map[model.UserRole]map[constants.Permission]struct{} {
	set := make(map[model.UserRole]map[constants.Permission]struct{}, len(c.RolePermissions))
	for _, rp := range c.RolePermissions {
		perms, ok := set[rp.Role]
		if !ok {
			perms = make(map[constants.Permission]struct{}, len(rp.Permissions))
			set[rp.Role] = perms
		}
		for _, p := range rp.Permissions {
			perms[p] = struct{}{}
		}
	}
	return set
}

func (c *PermissionConfig) HasPermission(role model.UserRole, perm constants.Permission) bool {
	for _, rp := range c.RolePermissions {
		if rp.Role != role {
			continue
		}
		for _, p := range rp.Permissions {
			if p == perm {
				return true
			}
		}
	}
	return false
}
