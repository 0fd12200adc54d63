package util

import "errors"

var (
	ErrStudentNotFound        = errors.New("student not found")
	ErrEmailRegistered        = errors.New("该邮箱已被注册")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidXPAmount        = errors.New("xp amount must be a positive integer")
	ErrStorageUnavailable     = errors.New("storage unavailable")
	ErrConcurrentUpdate       = errors.New("concurrent update, please retry")
	ErrQuizNotFound           = errors.New("quiz not found")
	ErrInvalidAnswers         = errors.New("answers do not match quiz")
	ErrInvalidDiagnostic      = errors.New("invalid diagnostic score")
	ErrRecommenderUnavailable = errors.New("recommendation service unavailable")
	ErrRecommenderDisabled    = errors.New("recommendation service disabled")
	ErrInvalidAvatar          = errors.New("头像必须是不超过 2MB 的图片")
)
