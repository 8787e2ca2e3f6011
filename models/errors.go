package models

import "errors"

var (
	ErrValidation         = errors.New("invalid request")
	ErrInvalidAction      = errors.New("invalid action")
	ErrInvalidCheckType   = errors.New("invalid check type")
	ErrInvalidLessonType  = errors.New("invalid lesson type for user progress initialization")
	ErrInvalidPayload     = errors.New("invalid payload")
	ErrNotAuthorized      = errors.New("not authorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrLessonNotFound     = errors.New("lesson not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrArticleNotFound    = errors.New("article not found")
	ErrProgressNotFound   = errors.New("user progress not found, please start the lesson first")

	ErrGraderNotConfigured = errors.New("AI service API key is not configured")
	ErrGraderEmptyResponse = errors.New("invalid or empty response from AI API")
)

var ErrProgressExists = errors.New("user progress already exists")
