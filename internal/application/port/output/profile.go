package output

import (
	"context"

	"browser-use-gologin/internal/domain/entity"
)

// Session is a running profile browser. Stop may be called more than once.
type Session interface {
	ProfileID() string
	Address() string
	// ProxyAuth is nil when the profile proxy needs no credentials.
	ProxyAuth() *entity.ProxyAuth
	Stop(ctx context.Context) error
}

type ProfileService interface {
	Start(ctx context.Context, opts entity.LaunchOptions) (Session, error)
	UploadCookies(ctx context.Context, profileID string, cookies []entity.Cookie) error
}

type CookieJar interface {
	Read(path string) ([]entity.Cookie, error)
	Write(path string, cookies []entity.Cookie) error
}

type ReadinessCheck interface {
	Check(ctx context.Context) error
}
