// Package credentials reads the OAuth credentials file maintained by Claude
// Code. The file is owned by an external tool and may be rewritten between
// reads, so callers re-read it on every poll instead of caching values.
package credentials

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"
)

// MaxFileSize bounds how much of the credentials file is read. Anything
// larger is treated as unreadable.
const MaxFileSize = 8 * 1024

type oauthFile struct {
	ClaudeAiOauth *struct {
		AccessToken      *string `json:"accessToken"`
		SubscriptionType *string `json:"subscriptionType"`
	} `json:"claudeAiOauth"`
}

func load(path string) (*oauthFile, bool) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() || info.Size() > MaxFileSize {
		return nil, false
	}
	// The size check above can race with a concurrent rewrite; the limit
	// reader keeps the bound regardless.
	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize+1))
	if err != nil || len(data) > MaxFileSize {
		return nil, false
	}

	var creds oauthFile
	if err := json.Unmarshal(data, &creds); err != nil || creds.ClaudeAiOauth == nil {
		return nil, false
	}
	return &creds, true
}

// ReadAccessToken returns claudeAiOauth.accessToken. The token string is not
// validated; the API rejects bad tokens.
func ReadAccessToken(path string) (string, bool) {
	creds, ok := load(path)
	if !ok || creds.ClaudeAiOauth.AccessToken == nil {
		return "", false
	}
	return *creds.ClaudeAiOauth.AccessToken, true
}

// ReadSubscriptionTier returns claudeAiOauth.subscriptionType ("pro", "max",
// "max_200", ...). It does not depend on the token being present.
func ReadSubscriptionTier(path string) (string, bool) {
	creds, ok := load(path)
	if !ok || creds.ClaudeAiOauth.SubscriptionType == nil {
		return "", false
	}
	return *creds.ClaudeAiOauth.SubscriptionType, true
}

// File is a credentials source bound to one path.
type File struct {
	Path string
}

func (f File) AccessToken() (string, bool) { return ReadAccessToken(f.Path) }

func (f File) SubscriptionTier() (string, bool) { return ReadSubscriptionTier(f.Path) }

// TierLabel turns a raw subscription type into a display label.
//
//	pro      -> Pro
//	max      -> Max
//	max_200  -> Max 20x
//	max_205  -> Max 205
//
// The max_NNN multiplier convention (NNN / 10) comes from observed values,
// not from the API contract, so anything that does not divide evenly is shown
// verbatim.
func TierLabel(tier string) string {
	tier = strings.TrimSpace(tier)
	if tier == "" {
		return ""
	}
	if rest, ok := strings.CutPrefix(tier, "max_"); ok {
		n, err := strconv.Atoi(rest)
		if err == nil && n > 0 && n%10 == 0 {
			return fmt.Sprintf("Max %dx", n/10)
		}
		return strings.TrimSpace("Max " + rest)
	}
	return titleCase(strings.ReplaceAll(tier, "_", " "))
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
