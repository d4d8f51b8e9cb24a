package verify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/hellojane/internal/domain/identity"
)

// fakeProvider emula la API del servicio de verificación con chi.
type fakeProvider struct {
	*httptest.Server
	startCalls  int
	checkCalls  int
	lastAPIKey  string
	lastForm    map[string]string
	lastQuery   map[string]string
	validCode   string
	malformed   bool
	startDenied bool
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()
	fp := &fakeProvider{validCode: "123456"}

	r := chi.NewRouter()
	r.Post("/protected/json/phones/verification/start", func(w http.ResponseWriter, req *http.Request) {
		fp.startCalls++
		fp.lastAPIKey = req.Header.Get("X-Authy-API-Key")
		if err := req.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		fp.lastForm = map[string]string{
			"via":          req.PostFormValue("via"),
			"country_code": req.PostFormValue("country_code"),
			"phone_number": req.PostFormValue("phone_number"),
		}
		if fp.malformed {
			w.Write([]byte("<html>gateway error</html>"))
			return
		}
		if fp.startDenied {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"message":"Invalid API key","success":false}`))
			return
		}
		w.Write([]byte(`{"carrier":"Test Wireless","is_cellphone":true,"message":"Text message sent","seconds_to_expire":"599","uuid":"a1b2c3","success":true}`))
	})
	r.Get("/protected/json/phones/verification/check", func(w http.ResponseWriter, req *http.Request) {
		fp.checkCalls++
		fp.lastAPIKey = req.Header.Get("X-Authy-API-Key")
		q := req.URL.Query()
		fp.lastQuery = map[string]string{
			"country_code":      q.Get("country_code"),
			"phone_number":      q.Get("phone_number"),
			"verification_code": q.Get("verification_code"),
		}
		if fp.malformed {
			w.Write([]byte("not json at all"))
			return
		}
		if q.Get("verification_code") == fp.validCode {
			w.Write([]byte(`{"message":"Verification code is correct.","success":true}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Verification code is incorrect","success":false}`))
	})

	fp.Server = httptest.NewServer(r)
	t.Cleanup(fp.Server.Close)
	return fp
}

func newTestClient(fp *fakeProvider) *Client {
	return NewClient(Config{BaseURL: fp.URL, APIKey: "test-key"})
}

func TestStartSendsFormAndAPIKey(t *testing.T) {
	fp := newFakeProvider(t)
	c := newTestClient(fp)

	resp, err := c.Start(context.Background(), 1, "5551234567")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !resp.Success {
		t.Fatalf("success = false: %s", resp.Message)
	}
	if resp.Carrier != "Test Wireless" || resp.SecondsToExpire != "599" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if fp.lastAPIKey != "test-key" {
		t.Fatalf("api key header = %q", fp.lastAPIKey)
	}
	want := map[string]string{"via": "sms", "country_code": "1", "phone_number": "5551234567"}
	for k, v := range want {
		if fp.lastForm[k] != v {
			t.Fatalf("form[%s] = %q, want %q", k, fp.lastForm[k], v)
		}
	}
}

func TestCheckSendsQueryParams(t *testing.T) {
	fp := newFakeProvider(t)
	c := newTestClient(fp)

	resp, err := c.Check(context.Background(), 54, "91155512345", "123456")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !resp.Success {
		t.Fatalf("success = false: %s", resp.Message)
	}
	want := map[string]string{"country_code": "54", "phone_number": "91155512345", "verification_code": "123456"}
	for k, v := range want {
		if fp.lastQuery[k] != v {
			t.Fatalf("query[%s] = %q, want %q", k, fp.lastQuery[k], v)
		}
	}
}

// El proveedor reporta rechazos de negocio con success=false y status 4xx;
// eso NO es un error de transporte.
func TestCheckWrongCodeIsNotTransportError(t *testing.T) {
	fp := newFakeProvider(t)
	c := newTestClient(fp)

	resp, err := c.Check(context.Background(), 1, "5551234567", "000000")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if resp.Success {
		t.Fatal("wrong code must not succeed")
	}
	if resp.Message == "" {
		t.Fatal("expected a provider message")
	}
}

func TestMalformedResponseIsExternalServiceError(t *testing.T) {
	fp := newFakeProvider(t)
	fp.malformed = true
	c := newTestClient(fp)

	if _, err := c.Start(context.Background(), 1, "5551234567"); !errors.Is(err, identity.ErrExternalService) {
		t.Fatalf("start err = %v, want ErrExternalService", err)
	}
	if _, err := c.Check(context.Background(), 1, "5551234567", "123456"); !errors.Is(err, identity.ErrExternalService) {
		t.Fatalf("check err = %v, want ErrExternalService", err)
	}
}

func TestProviderUnreachableIsExternalServiceError(t *testing.T) {
	fp := newFakeProvider(t)
	c := newTestClient(fp)
	fp.Close() // el server ya no está

	if _, err := c.Start(context.Background(), 1, "5551234567"); !errors.Is(err, identity.ErrExternalService) {
		t.Fatalf("err = %v, want ErrExternalService", err)
	}
}

// --- Confirmer -------------------------------------------------------------

type fakeUpdater struct {
	updated []*identity.User
	fail    bool
}

func (f *fakeUpdater) UpdateUser(ctx context.Context, u *identity.User) error {
	if f.fail {
		return identity.ErrConcurrency
	}
	cp := *u
	f.updated = append(f.updated, &cp)
	return nil
}

func TestConfirmPhoneSuccessPersistsFlag(t *testing.T) {
	fp := newFakeProvider(t)
	st := &fakeUpdater{}
	cf := NewConfirmer(newTestClient(fp), st)

	u := &identity.User{ID: 7, UserName: "jane"}
	if err := cf.ConfirmPhone(context.Background(), u, 1, "5551234567", "123456"); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if !u.PhoneNumberConfirmed {
		t.Fatal("flag must be set on the principal")
	}
	if len(st.updated) != 1 || !st.updated[0].PhoneNumberConfirmed {
		t.Fatal("flag must be persisted through the store")
	}
}

func TestConfirmPhoneWrongCode(t *testing.T) {
	fp := newFakeProvider(t)
	st := &fakeUpdater{}
	cf := NewConfirmer(newTestClient(fp), st)

	u := &identity.User{ID: 7}
	err := cf.ConfirmPhone(context.Background(), u, 1, "5551234567", "000000")
	if !errors.Is(err, identity.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if !strings.Contains(err.Error(), "Verification code is incorrect") {
		t.Fatalf("error should carry the provider message, got %q", err)
	}
	if u.PhoneNumberConfirmed {
		t.Fatal("flag must stay false")
	}
	if len(st.updated) != 0 {
		t.Fatal("nothing should be persisted")
	}
}

func TestConfirmPhoneMalformedResponseIsGeneric(t *testing.T) {
	fp := newFakeProvider(t)
	fp.malformed = true
	st := &fakeUpdater{}
	cf := NewConfirmer(newTestClient(fp), st)

	u := &identity.User{ID: 7}
	err := cf.ConfirmPhone(context.Background(), u, 1, "5551234567", "123456")
	if !errors.Is(err, identity.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	// nunca el error de transporte crudo
	if strings.Contains(err.Error(), "invalid character") {
		t.Fatalf("raw decode error leaked: %q", err)
	}
	if !strings.Contains(err.Error(), "try again") {
		t.Fatalf("expected a retry-suggesting message, got %q", err)
	}
}

func TestStartVerificationDenied(t *testing.T) {
	fp := newFakeProvider(t)
	fp.startDenied = true
	cf := NewConfirmer(newTestClient(fp), &fakeUpdater{})

	err := cf.StartVerification(context.Background(), 1, "5551234567")
	if !errors.Is(err, identity.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if !strings.Contains(err.Error(), "Invalid API key") {
		t.Fatalf("expected provider message, got %q", err)
	}
}
