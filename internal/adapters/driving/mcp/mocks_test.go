package mcp

import (
	"context"

	"github.com/custodia-labs/isoguide/internal/core/domain"
)

// mockAskService is a mock implementation of driving.AskService.
type mockAskService struct {
	answer  *domain.Answer
	info    *domain.CollectionInfo
	err     error
	lastReq domain.AskRequest
}

func (m *mockAskService) Ask(_ context.Context, req domain.AskRequest) (*domain.Answer, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	if err := req.Validate(100); err != nil {
		return nil, err
	}
	if m.answer != nil {
		return m.answer, nil
	}
	return domain.NewAnswer(req.Question, nil), nil
}

func (m *mockAskService) Info(_ context.Context) (*domain.CollectionInfo, error) {
	return m.info, m.err
}
