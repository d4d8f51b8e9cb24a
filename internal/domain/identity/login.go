package identity

import "time"

// UserLogin vincula un usuario local con una identidad externa.
// La clave compuesta (LoginProvider, ProviderKey) es globalmente única:
// un par provider+key identifica exactamente una identidad externa y
// mapea a lo sumo a un usuario local.
type UserLogin struct {
	LoginProvider       string
	ProviderKey         string
	ProviderDisplayName string
	UserID              int64
	LoginTime           time.Time
}

// UserToken es un valor opaco por usuario, con nombre y scope de provider.
// Clave compuesta: (UserID, LoginProvider, Name). Se usa genéricamente para
// tokens de autenticación guardados, la authenticator key de 2FA y la lista
// de recovery codes restantes (unidos por ";") bajo un par reservado.
type UserToken struct {
	UserID        int64
	LoginProvider string
	Name          string
	Value         string
}

// Pares reservados de provider/name para tokens internos.
const (
	InternalLoginProvider     = "[HelloJaneUserStore]"
	AuthenticatorKeyTokenName = "AuthenticatorKey"
	RecoveryCodesTokenName    = "RecoveryCodes"
)

// RecoveryCodeSeparator une los recovery codes restantes en un solo token.
// No se espera que aparezca dentro de un código.
const RecoveryCodeSeparator = ";"
