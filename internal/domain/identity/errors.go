package identity

import "errors"

var (
	// ErrNotFound indica que el recurso solicitado no existe.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateLogin indica que el par (provider, key) ya está vinculado
	// a otro usuario. La operación aborta sin mutar estado.
	ErrDuplicateLogin = errors.New("login already associated with another user")

	// ErrConcurrency indica un mismatch del concurrency stamp en update/delete.
	// El caller puede decidir recargar y reintentar.
	ErrConcurrency = errors.New("optimistic concurrency failure")

	// ErrRoleNotFound indica que el rol referenciado no existe. Se trata como
	// error de programación/datos: los callers deben validar antes.
	ErrRoleNotFound = errors.New("role not found")

	// ErrPersistence envuelve cualquier otro fallo de storage (conectividad,
	// constraint violation no clasificada). Nunca se filtran los tipos de
	// error crudos del driver a través del boundary del store.
	ErrPersistence = errors.New("persistence failure")

	// ErrValidation indica datos del caller que violan una constraint.
	ErrValidation = errors.New("validation failure")

	// ErrExternalService indica fallo de un proveedor remoto (SMS, etc).
	// Se degrada a un mensaje genérico de reintento para el usuario final.
	ErrExternalService = errors.New("external service failure")
)

// IsNotFound verifica si el error es ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateLogin verifica si el error es ErrDuplicateLogin.
func IsDuplicateLogin(err error) bool {
	return errors.Is(err, ErrDuplicateLogin)
}

// IsConcurrency verifica si el error es ErrConcurrency.
func IsConcurrency(err error) bool {
	return errors.Is(err, ErrConcurrency)
}

// IsRoleNotFound verifica si el error es ErrRoleNotFound.
func IsRoleNotFound(err error) bool {
	return errors.Is(err, ErrRoleNotFound)
}

// FieldError describe un error a nivel de campo, apto para re-mostrar
// en un formulario. Nunca contiene stack traces ni detalle del driver.
type FieldError struct {
	Field       string
	Description string
}

func (e FieldError) Error() string {
	if e.Field == "" {
		return e.Description
	}
	return e.Field + ": " + e.Description
}
