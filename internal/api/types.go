package api

import "errors"

// ErrInvalidArgument is returned before any request is sent when input is unusable.
var ErrInvalidArgument = errors.New("invalid argument")

// QuestionReview is the body of POST /question/review.
type QuestionReview struct {
	QuestionCode int    `json:"questionCode"`
	UserCode     int    `json:"userCode"`
	Answer       string `json:"answer"`
}

// Declaration is a user report as listed for admins.
type Declaration struct {
	DeclarationCode   int    `json:"declarationCode"`
	DeclarationReason string `json:"declarationReason"`
	UserCode          int    `json:"userCode"`
	Nickname          string `json:"nickname"`
	ProfileImg        string `json:"profileImg"`
}
