package token

import "brand_collab_service/pkg/config"

// Function variables so tests can swap in stubs.
var (
	GenerateJWTFunc = GenerateJWT
	ParseJWTFunc    = ParseJWT
)

// GenerateJWTWrapper issues a token with the service name as issuer.
func GenerateJWTWrapper(userID, role string) (string, error) {
	return GenerateJWTFunc(userID, role, config.EnvConfig.MessagingService)
}

// ParseJWTWrapper validates a token through the swappable parser.
func ParseJWTWrapper(t string) (*Claims, error) {
	return ParseJWTFunc(t)
}
