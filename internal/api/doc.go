// Package api provides the debate server REST client used by admin tools.
//
// Admin endpoints:
//   - POST   /question/review   answer a user's question
//   - DELETE /declaration       delete a user report (declaration)
//   - GET    /declaration       list open reports
//
// Requests carry "Authorization: Bearer <token>" when a token is configured.
package api
