package bolt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"albumstore/internal/domain"
	"albumstore/internal/payment"
)

func proxy(t *testing.T, status int, reply string, seen *PixRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, transactionsPath, r.URL.Path)
		if seen != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCreatePixBuildsTransaction(t *testing.T) {
	var seen PixRequest
	srv := proxy(t, http.StatusOK, `{"id":"tx-1","status":"waiting_payment","pix":{"qrcode":"000201BR","expirationDate":"2026-10-16"}}`, &seen)

	out, err := New(srv.URL, time.Second).CreatePix(context.Background(), payment.Charge{
		Name: "Ana", Email: "ana@x.com", Phone: "(11) 98765-4321", CPF: "123.456.789-01",
		Amount: 13704,
		Items: []payment.LineItem{
			{ID: "kit-campeao", Title: "Kit Campeão", UnitPrice: 11832, Quantity: 1},
			{ID: "pac", Title: "Frete PAC", UnitPrice: 1872, Quantity: 1},
		},
		Shipping: &domain.Address{Street: "Av. Paulista", Number: "1000", Neighborhood: "Bela Vista", City: "São Paulo", State: "SP"},
		ZipCode:  "01310-100",
	})
	require.NoError(t, err)
	require.True(t, out.Success)

	assert.Equal(t, "PIX", seen.PaymentMethod)
	assert.Equal(t, "11987654321", seen.Customer.Phone)
	assert.Equal(t, "12345678901", seen.Customer.Document)
	assert.Equal(t, defaultDescription, seen.Description)
	assert.EqualValues(t, 13704, seen.Amount)
	require.Len(t, seen.Items, 2)
	assert.Equal(t, "kit-campeao", seen.Items[0].ExternalRef)
	require.NotNil(t, seen.Shipping)
	assert.Equal(t, "01310100", seen.Shipping.ZipCode)
	assert.Equal(t, "1000", seen.Shipping.StreetNumber)

	assert.Equal(t, "000201BR", *out.Result.PixCode)
	assert.Nil(t, out.Result.QRCodeURL)
	assert.Equal(t, "tx-1", *out.Result.ChargeID)
	assert.Equal(t, "2026-10-16", *out.Result.ExpiresAt)
}

func TestCreatePixChargeHTTPError(t *testing.T) {
	srv := proxy(t, http.StatusUnauthorized, `{"message":"invalid credentials"}`, nil)
	resp, err := New(srv.URL, time.Second).CreatePixCharge(context.Background(), PixRequest{})
	require.NoError(t, err)
	assert.Equal(t, "invalid credentials", resp.Error)

	srv = proxy(t, http.StatusInternalServerError, `{}`, nil)
	resp, err = New(srv.URL, time.Second).CreatePixCharge(context.Background(), PixRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Erro HTTP 500", resp.Error)

	out, err := New(srv.URL, time.Second).CreatePix(context.Background(), payment.Charge{Amount: 1})
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, "Erro HTTP 500", out.Message)
}

func TestCreatePixWithoutItemsSendsSingleLine(t *testing.T) {
	var seen PixRequest
	srv := proxy(t, http.StatusOK, `{"id":"tx-2"}`, &seen)
	_, err := New(srv.URL, time.Second).CreatePix(context.Background(), payment.Charge{Amount: 500, ProductID: "p"})
	require.NoError(t, err)
	require.Len(t, seen.Items, 1)
	assert.EqualValues(t, 500, seen.Items[0].UnitPrice)
	assert.Nil(t, seen.Shipping)
}

func TestExtractPixDataURLDoublesAsCode(t *testing.T) {
	r := ExtractPixData(PixResponse{ID: "tx-9", Pix: PixInfo{QRCode: "https://bolt/qr/tx-9.png"}})
	assert.Equal(t, "https://bolt/qr/tx-9.png", *r.QRCodeURL)
	assert.Equal(t, "https://bolt/qr/tx-9.png", *r.PixCode)
	assert.Equal(t, "tx-9", *r.ChargeID)
	assert.Nil(t, r.ExpiresAt)

	none := ExtractPixData(PixResponse{})
	assert.Nil(t, none.PixCode)
	assert.Nil(t, none.QRCodeURL)
	assert.Nil(t, none.ChargeID)
}
