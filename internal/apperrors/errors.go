package apperrors

import "errors"

var ErrUserExists = errors.New("user already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrTokenRevoked = errors.New("token revoked")
var ErrPathNotAssigned = errors.New("path not found or not assigned to user")
var ErrPathNotFound = errors.New("path not found")
var ErrModuleNotInPath = errors.New("module not found in this path")
var ErrPrerequisiteNotMet = errors.New("you must complete the previous module first")
