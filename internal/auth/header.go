package auth

import "strings"

// ExtractBearerToken pulls the token out of an "Authorization: Bearer X"
// header value, ported from original_source/src/utils/auth.rs
// extract_bearer_token.
func ExtractBearerToken(authHeader string) (string, *FailureCode) {
	if authHeader == "" {
		code := FailureMissingHeader
		return "", &code
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		code := FailureMalformedHeader
		return "", &code
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		code := FailureMalformedHeader
		return "", &code
	}
	return token, nil
}

// isBearerToken/isAPIKeyFormat/DetectAuthType are ported from
// original_source/src/utils/auth.rs: detect_auth_type, is_bearer_token,
// is_api_key_format. A "Bearer " prefix wins detection even when the
// bearer token itself happens to start with pk_, matching the original's
// check order.
func isBearerToken(authHeader string) bool {
	return strings.HasPrefix(authHeader, "Bearer ") && len(authHeader) > len("Bearer ")
}

func isAPIKeyFormat(authHeader string) bool {
	return strings.HasPrefix(authHeader, apiKeyPrefix+"_")
}

func DetectAuthType(authHeader string) AuthType {
	switch {
	case isBearerToken(authHeader):
		return AuthTypeBearerJWT
	case isAPIKeyFormat(authHeader):
		return AuthTypeAPIKey
	default:
		return AuthTypeUnknown
	}
}
