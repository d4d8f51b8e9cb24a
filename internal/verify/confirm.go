package verify

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/hellojane/internal/domain/identity"
	"github.com/dropDatabas3/hellojane/internal/observability/logger"
)

// Provider es la porción del cliente que usa el confirmador.
type Provider interface {
	Start(ctx context.Context, countryCode int, phoneNumber string) (*StartResponse, error)
	Check(ctx context.Context, countryCode int, phoneNumber, code string) (*CheckResponse, error)
}

// UserUpdater es la porción del store que necesita el confirmador.
type UserUpdater interface {
	UpdateUser(ctx context.Context, u *identity.User) error
}

// Confirmer orquesta el handshake de verificación y persiste el resultado.
type Confirmer struct {
	provider Provider
	store    UserUpdater
}

func NewConfirmer(p Provider, st UserUpdater) *Confirmer {
	return &Confirmer{provider: p, store: st}
}

// StartVerification dispara el SMS con el código. Un fallo del proveedor se
// reporta como ErrValidation con mensaje genérico: es recuperable, el usuario
// puede reintentar.
func (c *Confirmer) StartVerification(ctx context.Context, countryCode int, phoneNumber string) error {
	resp, err := c.provider.Start(ctx, countryCode, phoneNumber)
	if err != nil {
		return fmt.Errorf("%w: %s", identity.ErrValidation,
			"there was an error sending the verification code, please try again")
	}
	if !resp.Success {
		return fmt.Errorf("%w: there was an error sending the verification code: %s",
			identity.ErrValidation, resp.Message)
	}
	logger.From(ctx).Info("verification code sent",
		logger.Component("verify"), logger.String("carrier", resp.Carrier))
	return nil
}

// ConfirmPhone valida el código y, si el proveedor lo acepta, marca el
// teléfono como confirmado y persiste el usuario vía el store.
//
// Código rechazado → ErrValidation con el mensaje del proveedor. Respuesta
// malformada o proveedor caído → ErrValidation con mensaje genérico, nunca
// el error de transporte crudo.
func (c *Confirmer) ConfirmPhone(ctx context.Context, u *identity.User, countryCode int, phoneNumber, code string) error {
	resp, err := c.provider.Check(ctx, countryCode, phoneNumber, code)
	if err != nil {
		if errors.Is(err, identity.ErrExternalService) {
			return fmt.Errorf("%w: %s", identity.ErrValidation,
				"there was an error confirming the code, please check the verification code is correct and try again")
		}
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%w: there was an error confirming the verification code: %s",
			identity.ErrValidation, resp.Message)
	}

	u.PhoneNumberConfirmed = true
	if err := c.store.UpdateUser(ctx, u); err != nil {
		return fmt.Errorf("%w: %s", identity.ErrValidation,
			"there was an error confirming the verification code, please try again")
	}
	logger.From(ctx).Info("phone number confirmed",
		logger.Component("verify"), logger.UserID(u.ID))
	return nil
}
