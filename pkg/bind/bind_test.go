package bind_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cupcakery/storefront/pkg/bind"
)

type signup struct {
	Username string `json:"username" form:"username" validate:"required"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=8"`
	Stars    int    `json:"estrelas" form:"estrelas" validate:"omitempty,min=1,max=5"`
	Age      *uint  `json:"idade" form:"idade"`
	Promos   bool   `json:"receber_promocoes" form:"receber_promocoes"`
}

func formRequest(values url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func TestFormDecodesAndValidates(t *testing.T) {
	var in signup
	errs, err := bind.Request(formRequest(url.Values{
		"username":          {" ana "},
		"email":             {"ana@example.com"},
		"password":          {"segredo123"},
		"estrelas":          {"4"},
		"idade":             {"30"},
		"receber_promocoes": {"on"},
	}), &in)
	require.NoError(t, err)
	assert.Empty(t, errs)

	assert.Equal(t, "ana", in.Username)
	assert.Equal(t, 4, in.Stars)
	require.NotNil(t, in.Age)
	assert.Equal(t, uint(30), *in.Age)
	assert.True(t, in.Promos)
}

func TestFormCheckboxSemantics(t *testing.T) {
	base := url.Values{"username": {"ana"}, "email": {"ana@example.com"}, "password": {"segredo123"}}

	cases := map[string]struct {
		value []string
		want  bool
	}{
		"absent":   {nil, false},
		"on":       {[]string{"on"}, true},
		"empty":    {[]string{""}, true},
		"false":    {[]string{"false"}, false},
		"zero":     {[]string{"0"}, false},
		"hidden+1": {[]string{"0", "1"}, true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			values := url.Values{}
			for k, v := range base {
				values[k] = v
			}
			if tc.value != nil {
				values["receber_promocoes"] = tc.value
			}
			in := signup{Promos: !tc.want}
			_, err := bind.Request(formRequest(values), &in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, in.Promos)
		})
	}
}

func TestValidationMessages(t *testing.T) {
	var in signup
	errs, err := bind.Request(formRequest(url.Values{
		"email":    {"nao-e-email"},
		"password": {"curta"},
		"estrelas": {"9"},
	}), &in)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"username": "campo obrigatório",
		"email":    "e-mail inválido",
		"password": "mínimo de 8 caracteres",
		"estrelas": "deve ser no máximo 5",
	}, errs)
}

func TestFormRejectsNonNumbers(t *testing.T) {
	var in signup
	errs, err := bind.Request(formRequest(url.Values{"estrelas": {"cinco"}}), &in)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"estrelas": "valor inválido"}, errs)
}

func TestJSONBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(
		`{"username":"ana","email":"ana@example.com","password":"segredo123","receber_promocoes":true}`))
	r.Header.Set("Content-Type", "application/json; charset=utf-8")

	var in signup
	errs, err := bind.Request(r, &in)
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.True(t, in.Promos)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":`))
	r.Header.Set("Content-Type", "application/json")
	_, err = bind.Request(r, &in)
	assert.Error(t, err)
}

func TestFormResetsDestination(t *testing.T) {
	age := uint(40)
	in := signup{Username: "antigo", Stars: 3, Age: &age, Promos: true}
	errs, err := bind.Request(formRequest(url.Values{
		"username": {"bia"},
		"email":    {"bia@example.com"},
		"password": {"segredo123"},
		"idade":    {""},
	}), &in)
	require.NoError(t, err)
	assert.Empty(t, errs)

	assert.Equal(t, "bia", in.Username)
	assert.Zero(t, in.Stars)
	assert.Nil(t, in.Age)
	assert.False(t, in.Promos)
}
