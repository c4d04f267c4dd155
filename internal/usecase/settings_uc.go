package usecase

import (
	"context"

	"account-activation/internal/domain/model"
	"account-activation/internal/domain/ports/adapter"
)

// SettingsUseCase answers read-only questions about signup configuration.
type SettingsUseCase interface {
	SentPage(ctx context.Context) model.SentPageInfo
}

var _ SettingsUseCase = (*settingsUC)(nil)

type settingsUC struct {
	accessMode model.AccessMode
	captcha    adapter.CaptchaVerifier
}

func NewSettingsUseCase(accessMode model.AccessMode, captcha adapter.CaptchaVerifier) *settingsUC {
	return &settingsUC{accessMode: accessMode, captcha: captcha}
}

func (s *settingsUC) SentPage(ctx context.Context) model.SentPageInfo {
	info := model.SentPageInfo{
		AccessModeAny:  s.accessMode == model.AccessModeAny,
		AccessModeAuth: s.accessMode == model.AccessModeAuth,
	}
	if s.captcha != nil {
		if key := s.captcha.SiteKey(); key != "" {
			info.CaptchaKey = &key
		}
	}
	return info
}
