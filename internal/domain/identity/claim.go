package identity

// Tipos de claim bien conocidos que consume el flujo de reconciliación.
// Los valores siguen los URIs estándar que emiten los proveedores federados.
const (
	ClaimTypeEmail     = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/emailaddress"
	ClaimTypeGivenName = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/givenname"
	ClaimTypeSurname   = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/surname"
	ClaimTypeName      = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/name"
	ClaimTypeRole      = "http://schemas.microsoft.com/ws/2008/06/identity/claims/role"
)

// ClaimValueTypeString es el value-type por defecto de un claim.
const ClaimValueTypeString = "http://www.w3.org/2001/XMLSchema#string"

// Claim es una aserción tipada (type, value) sobre un sujeto, con metadata
// de emisor. Se usa tanto como concepto wire (del proveedor federado) como
// fila de storage (user_claims / role_claims).
type Claim struct {
	Type           string
	Value          string
	ValueType      string
	Issuer         string
	OriginalIssuer string
}

// NewClaim construye un claim string con issuer local.
func NewClaim(claimType, value string) Claim {
	return Claim{
		Type:           claimType,
		Value:          value,
		ValueType:      ClaimValueTypeString,
		Issuer:         "LOCAL AUTHORITY",
		OriginalIssuer: "LOCAL AUTHORITY",
	}
}

// Matches compara por (type, value): la identidad que usan Replace/Remove.
func (c Claim) Matches(other Claim) bool {
	return c.Type == other.Type && c.Value == other.Value
}

// FindFirst retorna el valor del primer claim del tipo dado, o "" si no hay.
func FindFirst(claims []Claim, claimType string) string {
	for _, c := range claims {
		if c.Type == claimType {
			return c.Value
		}
	}
	return ""
}

// HasClaim indica si existe al menos un claim del tipo dado.
func HasClaim(claims []Claim, claimType string) bool {
	for _, c := range claims {
		if c.Type == claimType {
			return true
		}
	}
	return false
}
