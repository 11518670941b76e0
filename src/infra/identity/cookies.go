package identity

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"returnsdesk/src/core/domain"
	"returnsdesk/src/core/ports"
)

const (
	// chunkSize is the largest value stored in a single cookie.
	chunkSize = 3180

	base64Prefix = "base64-"

	// cookieMaxAge matches the 400 day ceiling browsers enforce.
	cookieMaxAge = 400 * 24 * 60 * 60
)

// CookieName derives the session cookie name from the identity URL:
// sb-<first host label>-auth-token.
func CookieName(identityURL string) (string, error) {
	u, err := url.Parse(identityURL)
	if err != nil || u.Hostname() == "" {
		return "", fmt.Errorf("invalid identity url %q", identityURL)
	}
	ref := strings.SplitN(u.Hostname(), ".", 2)[0]
	return "sb-" + ref + "-auth-token", nil
}

// CookieStore stores the provider session in one cookie, or in numbered
// chunks (<name>.0, <name>.1, ...) when the encoded value is too long.
type CookieStore struct {
	name   string
	secure bool
}

var _ ports.SessionCookieStore = (*CookieStore)(nil)

// NewCookieStore creates a CookieStore for the named cookie family.
func NewCookieStore(name string, secure bool) *CookieStore {
	return &CookieStore{name: name, secure: secure}
}

// Name returns the base cookie name.
func (s *CookieStore) Name() string {
	return s.name
}

// Read implements ports.SessionCookieStore.
func (s *CookieStore) Read(cookies []*http.Cookie) (*domain.AuthSession, error) {
	raw, ok := s.combine(cookies)
	if !ok {
		return nil, nil
	}
	if raw == "" {
		return nil, errors.New("session cookie is empty or missing its first chunk")
	}

	payload, err := decodeValue(raw)
	if err != nil {
		return nil, err
	}

	var session domain.AuthSession
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("decode session cookie: %w", err)
	}
	if session.AccessToken == "" && session.RefreshToken == "" {
		return nil, errors.New("session cookie carries no tokens")
	}
	return &session, nil
}

// Write implements ports.SessionCookieStore.
func (s *CookieStore) Write(session *domain.AuthSession, existing []*http.Cookie) ([]*http.Cookie, error) {
	payload, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("encode session cookie: %w", err)
	}
	value := base64Prefix + base64.RawURLEncoding.EncodeToString(payload)

	var out []*http.Cookie
	written := make(map[string]bool)
	if len(value) <= chunkSize {
		out = append(out, s.cookie(s.name, value))
		written[s.name] = true
	} else {
		for i := 0; len(value) > 0; i++ {
			n := min(chunkSize, len(value))
			name := s.name + "." + strconv.Itoa(i)
			out = append(out, s.cookie(name, value[:n]))
			written[name] = true
			value = value[n:]
		}
	}

	for _, c := range existing {
		if s.owns(c.Name) && !written[c.Name] {
			out = append(out, s.expired(c.Name))
			written[c.Name] = true
		}
	}
	return out, nil
}

// Clear implements ports.SessionCookieStore.
func (s *CookieStore) Clear(existing []*http.Cookie) []*http.Cookie {
	var out []*http.Cookie
	seen := make(map[string]bool)
	for _, c := range existing {
		if s.owns(c.Name) && !seen[c.Name] {
			out = append(out, s.expired(c.Name))
			seen[c.Name] = true
		}
	}
	return out
}

// combine joins the single cookie or its chunks in index order.
func (s *CookieStore) combine(cookies []*http.Cookie) (string, bool) {
	chunks := make(map[int]string)
	for _, c := range cookies {
		if c.Name == s.name {
			return c.Value, true
		}
		if idx, ok := s.chunkIndex(c.Name); ok {
			chunks[idx] = c.Value
		}
	}
	if len(chunks) == 0 {
		return "", false
	}

	idxs := make([]int, 0, len(chunks))
	for i := range chunks {
		idxs = append(idxs, i)
	}
	sort.Ints(idxs)

	var b strings.Builder
	for want, got := range idxs {
		if got != want {
			// A gap means a chunk was lost; use the contiguous prefix only.
			break
		}
		b.WriteString(chunks[got])
	}
	return b.String(), true
}

func (s *CookieStore) owns(name string) bool {
	if name == s.name {
		return true
	}
	_, ok := s.chunkIndex(name)
	return ok
}

func (s *CookieStore) chunkIndex(name string) (int, bool) {
	suffix, ok := strings.CutPrefix(name, s.name+".")
	if !ok || suffix == "" {
		return 0, false
	}
	idx, err := strconv.Atoi(suffix)
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}

func (s *CookieStore) cookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   cookieMaxAge,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *CookieStore) expired(name string) *http.Cookie {
	c := s.cookie(name, "")
	c.MaxAge = -1
	return c
}

// decodeValue accepts the base64- form and the older URL-escaped JSON form.
func decodeValue(raw string) ([]byte, error) {
	if enc, ok := strings.CutPrefix(raw, base64Prefix); ok {
		enc = strings.TrimRight(enc, "=")
		b, err := base64.RawURLEncoding.DecodeString(enc)
		if err != nil {
			return nil, fmt.Errorf("decode session cookie: %w", err)
		}
		return b, nil
	}
	unescaped, err := url.QueryUnescape(raw)
	if err != nil {
		return nil, fmt.Errorf("decode session cookie: %w", err)
	}
	return []byte(unescaped), nil
}
