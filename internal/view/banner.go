package view

import "ifrs-console/internal/apiclient"

type BannerKind string

const (
	BannerError   BannerKind = "error"
	BannerSuccess BannerKind = "success"
	BannerInfo    BannerKind = "info"
)

// Banner is a dismissable message at the top of a page.
type Banner struct {
	Kind    BannerKind
	Message string
}

func ErrorBanner(err error, fallback string) *Banner {
	return &Banner{Kind: BannerError, Message: apiclient.Detail(err, fallback)}
}

func SuccessBanner(msg string) *Banner { return &Banner{Kind: BannerSuccess, Message: msg} }

func InfoBanner(msg string) *Banner { return &Banner{Kind: BannerInfo, Message: msg} }

func (b *Banner) Class() string {
	if b == nil {
		return ""
	}
	return "banner-" + string(b.Kind)
}
