package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// ReviewQuestion answers a user's question.
func (c *Client) ReviewQuestion(ctx context.Context, review QuestionReview) error {
	if review.QuestionCode <= 0 || review.UserCode <= 0 {
		return fmt.Errorf("%w: question and user codes must be positive", ErrInvalidArgument)
	}
	if strings.TrimSpace(review.Answer) == "" {
		return fmt.Errorf("%w: answer is empty", ErrInvalidArgument)
	}

	if err := c.send(ctx, http.MethodPost, "/question/review", nil, review); err != nil {
		return fmt.Errorf("review question %d: %w", review.QuestionCode, err)
	}

	c.logger.Info("question reviewed",
		"question_code", review.QuestionCode,
		"user_code", review.UserCode,
	)
	return nil
}

// DeleteDeclaration deletes a user report.
func (c *Client) DeleteDeclaration(ctx context.Context, declarationCode, userCode int) error {
	if declarationCode <= 0 || userCode <= 0 {
		return fmt.Errorf("%w: declaration and user codes must be positive", ErrInvalidArgument)
	}

	query := url.Values{}
	query.Set("declarationCode", strconv.Itoa(declarationCode))
	query.Set("userCode", strconv.Itoa(userCode))

	if err := c.send(ctx, http.MethodDelete, "/declaration", query, nil); err != nil {
		return fmt.Errorf("delete declaration %d: %w", declarationCode, err)
	}

	c.logger.Info("declaration deleted",
		"declaration_code", declarationCode,
		"user_code", userCode,
	)
	return nil
}

// ListDeclarations returns all open user reports.
func (c *Client) ListDeclarations(ctx context.Context) ([]Declaration, error) {
	var declarations []Declaration
	if err := c.get(ctx, "/declaration", nil, &declarations); err != nil {
		return nil, fmt.Errorf("list declarations: %w", err)
	}
	return declarations, nil
}
