package gologin

import (
	"strings"

	"browser-use-gologin/internal/domain/entity"
)

// apiCookie is the browser-extension style record the profile store uses.
type apiCookie struct {
	Name           string  `json:"name"`
	Value          string  `json:"value"`
	Domain         string  `json:"domain"`
	Path           string  `json:"path"`
	ExpirationDate float64 `json:"expirationDate,omitempty"`
	HostOnly       bool    `json:"hostOnly"`
	HTTPOnly       bool    `json:"httpOnly"`
	Secure         bool    `json:"secure"`
	Session        bool    `json:"session"`
	SameSite       string  `json:"sameSite,omitempty"`
}

func toAPICookies(cookies []entity.Cookie) []apiCookie {
	result := make([]apiCookie, 0, len(cookies))
	for _, c := range cookies {
		ac := apiCookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HostOnly: c.Domain != "" && !strings.HasPrefix(c.Domain, "."),
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			Session:  c.IsSession(),
			SameSite: toAPISameSite(c.SameSite),
		}
		if !ac.Session {
			ac.ExpirationDate = c.Expires
		}
		if ac.Path == "" {
			ac.Path = "/"
		}
		result = append(result, ac)
	}
	return result
}

func fromAPICookies(cookies []apiCookie) []entity.Cookie {
	result := make([]entity.Cookie, 0, len(cookies))
	for _, ac := range cookies {
		c := entity.Cookie{
			Name:     ac.Name,
			Value:    ac.Value,
			Domain:   ac.Domain,
			Path:     ac.Path,
			Expires:  -1,
			HTTPOnly: ac.HTTPOnly,
			Secure:   ac.Secure,
			SameSite: fromAPISameSite(ac.SameSite),
		}
		if !ac.Session && ac.ExpirationDate > 0 {
			c.Expires = ac.ExpirationDate
		}
		result = append(result, c)
	}
	return result
}

func toAPISameSite(s string) string {
	switch strings.ToLower(s) {
	case "strict":
		return "strict"
	case "lax":
		return "lax"
	case "none":
		return "no_restriction"
	default:
		return "unspecified"
	}
}

func fromAPISameSite(s string) string {
	switch strings.ToLower(s) {
	case "strict":
		return "Strict"
	case "lax":
		return "Lax"
	case "no_restriction", "none":
		return "None"
	default:
		return ""
	}
}
