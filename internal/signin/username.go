package signin

import (
	"strconv"
	"strings"

	"github.com/dropDatabas3/hellojane/internal/domain/identity"
)

// synthesizeUserName arma un username candidato para la cuenta nueva.
//
// Con nombre y apellido presentes: givenName + familyName + sufijo.
// Si no, la parte local del email + sufijo. El sufijo es uniforme en 0–999
// y NO se rellena con ceros ("7", "42", "999").
//
// Es una heurística de unicidad best-effort: una colisión contra el índice
// único de username se reporta como fallo de creación, no se reintenta.
func (f *Flow) synthesizeUserName(u *identity.User, email string) string {
	suffix := strconv.Itoa(f.randInt(1000))
	if u.GivenName != nil && strings.TrimSpace(*u.GivenName) != "" &&
		u.FamilyName != nil && strings.TrimSpace(*u.FamilyName) != "" {
		return *u.GivenName + *u.FamilyName + suffix
	}
	local := email
	if at := strings.IndexByte(email, '@'); at >= 0 {
		local = email[:at]
	}
	return local + suffix
}
