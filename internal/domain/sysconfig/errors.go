package sysconfig

import "errors"

var (
	ErrConfigNotFound   = errors.New("system configuration not found")
	ErrAdminOnlySetting = errors.New("setting can only be changed by an administrator")
	ErrForbidden        = errors.New("role cannot manage system configuration")
)
