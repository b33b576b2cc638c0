package i18n

import (
	"net/http"
	"time"

	"golang.org/x/text/language"
)

const CookieName = "mygens-lang"

var matcher = language.NewMatcher([]language.Tag{language.English, language.Spanish})

// FromRequest restores the visitor's language: the saved cookie first, then
// the browser's Accept-Language, then the bundle default.
func (b *Bundle) FromRequest(r *http.Request) Lang {
	if c, err := r.Cookie(CookieName); err == nil {
		if l, ok := Parse(c.Value); ok {
			return l
		}
	}
	if header := r.Header.Get("Accept-Language"); header != "" {
		tags, _, err := language.ParseAcceptLanguage(header)
		if err == nil && len(tags) > 0 {
			_, idx, conf := matcher.Match(tags...)
			if conf != language.No {
				return Supported[idx]
			}
		}
	}
	return b.def
}

// Remember persists the choice on the client.
func Remember(w http.ResponseWriter, l Lang) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    string(l),
		Path:     "/",
		Expires:  time.Now().Add(365 * 24 * time.Hour),
		SameSite: http.SameSiteLaxMode,
	})
}
