package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	id "tramita/pkg/domain"
	dErrors "tramita/pkg/domain-errors"
)

const tokenTTL = 8 * time.Hour

// Claims carry actor identity and working sector. The working sector rides
// in the token because a collaborator may operate from a sector other than
// their home sector for a whole session.
type Claims struct {
	ActiveSector string `json:"active_sector,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager issues and parses the HMAC-signed session tokens.
type TokenManager struct {
	signingKey []byte
}

func NewTokenManager(signingKey string) *TokenManager {
	return &TokenManager{signingKey: []byte(signingKey)}
}

// Issue signs a token for the collaborator operating from the given sector.
func (m *TokenManager) Issue(collaboratorID id.CollaboratorID, activeSector id.SectorID, now time.Time) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   collaboratorID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	if !activeSector.IsNil() {
		claims.ActiveSector = activeSector.String()
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token")
	}
	return signed, nil
}

// Identity is the parsed token payload.
type Identity struct {
	CollaboratorID id.CollaboratorID
	ActiveSector   id.SectorID
}

// Parse validates the signature and expiry and extracts the identity.
func (m *TokenManager) Parse(tokenString string) (*Identity, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, dErrors.New(dErrors.CodeUnauthenticated, "unexpected signing method")
		}
		return m.signingKey, nil
	})
	if err != nil || !token.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "invalid or expired token")
	}

	collaboratorID, err := id.ParseCollaboratorID(claims.Subject)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "token subject is not a collaborator id")
	}
	identity := &Identity{CollaboratorID: collaboratorID}
	if claims.ActiveSector != "" {
		sectorID, err := id.ParseSectorID(claims.ActiveSector)
		if err != nil {
			return nil, dErrors.New(dErrors.CodeUnauthenticated, "token sector is not a sector id")
		}
		identity.ActiveSector = sectorID
	}
	return identity, nil
}
