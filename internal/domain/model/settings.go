package model

// AccessMode controls who may use self-service signup.
type AccessMode string

const (
	AccessModeAny  AccessMode = "any"
	AccessModeAuth AccessMode = "auth"
)

// SentPageInfo is what the "activation sent" page needs to render its form.
type SentPageInfo struct {
	AccessModeAny  bool    `json:"accessModeAny"`
	AccessModeAuth bool    `json:"accessModeAuth"`
	CaptchaKey     *string `json:"captchaKey"`
}
