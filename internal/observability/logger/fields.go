package logger

import (
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// =================================================================================
// CAMPOS ESTÁNDAR - NEGOCIO
// =================================================================================

// UserID crea un campo para el ID numérico del usuario.
func UserID(v int64) zap.Field {
	return zap.String("user_id", strconv.FormatInt(v, 10))
}

// UserName crea un campo para el nombre de usuario.
func UserName(v string) zap.Field {
	return zap.String("user_name", v)
}

// RoleName crea un campo para el nombre de rol.
func RoleName(v string) zap.Field {
	return zap.String("role_name", v)
}

// Provider crea un campo para el proveedor de login externo.
func Provider(v string) zap.Field {
	return zap.String("provider", v)
}

// EmailMasked crea un campo para el email enmascarado (2 chars + dominio).
func EmailMasked(email string) zap.Field {
	return zap.String("email_masked", maskEmail(email))
}

func maskEmail(email string) string {
	if len(email) < 3 {
		return "***"
	}
	at := strings.IndexByte(email, '@')
	if at < 2 {
		return email[:2] + "***"
	}
	return email[:2] + "***" + email[at:]
}

// =================================================================================
// CAMPOS ESTÁNDAR - SISTEMA
// =================================================================================

// Component crea un campo para el componente/módulo.
func Component(v string) zap.Field {
	return zap.String("component", v)
}

// Op crea un campo para la operación actual.
func Op(v string) zap.Field {
	return zap.String("op", v)
}

// Layer crea un campo para la capa (service, store, client).
func Layer(v string) zap.Field {
	return zap.String("layer", v)
}

// Err crea un campo para un error.
func Err(err error) zap.Field {
	return zap.Error(err)
}

// Duration crea un campo para la duración.
func Duration(v time.Duration) zap.Field {
	return zap.Duration("duration", v)
}

// =================================================================================
// CAMPOS GENÉRICOS
// =================================================================================

// Count crea un campo para un conteo.
func Count(v int) zap.Field {
	return zap.Int("count", v)
}

// String crea un campo string genérico.
func String(key, v string) zap.Field {
	return zap.String(key, v)
}

// Int crea un campo int genérico.
func Int(key string, v int) zap.Field {
	return zap.Int(key, v)
}

// Bool crea un campo bool genérico.
func Bool(key string, v bool) zap.Field {
	return zap.Bool(key, v)
}
