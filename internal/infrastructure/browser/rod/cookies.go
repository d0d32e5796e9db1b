package rod

import (
	"browser-use-gologin/internal/domain/entity"

	"github.com/go-rod/rod/lib/proto"
)

func FromNetworkCookies(cookies []*proto.NetworkCookie) []entity.Cookie {
	result := make([]entity.Cookie, 0, len(cookies))
	for _, c := range cookies {
		if c == nil {
			continue
		}
		expires := float64(c.Expires)
		if c.Session {
			expires = -1
		}
		result = append(result, entity.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: string(c.SameSite),
		})
	}
	return result
}

func ToCookieParams(cookies []entity.Cookie) []*proto.NetworkCookieParam {
	result := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		if c.Name == "" || c.Domain == "" {
			continue
		}
		p := &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
			SameSite: sameSite(c.SameSite),
		}
		if !c.IsSession() {
			p.Expires = proto.TimeSinceEpoch(c.Expires)
		}
		if p.Path == "" {
			p.Path = "/"
		}
		// Chrome rejects SameSite=None without Secure.
		if p.SameSite == proto.NetworkCookieSameSiteNone && !p.Secure {
			p.SameSite = ""
		}
		result = append(result, p)
	}
	return result
}

func sameSite(s string) proto.NetworkCookieSameSite {
	switch s {
	case "Strict", "strict":
		return proto.NetworkCookieSameSiteStrict
	case "Lax", "lax":
		return proto.NetworkCookieSameSiteLax
	case "None", "none", "no_restriction":
		return proto.NetworkCookieSameSiteNone
	default:
		return ""
	}
}
